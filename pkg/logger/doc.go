// Package logger provides slog attribute helpers for consistent structured
// logging across the toolkit.
//
// Helpers return an empty slog.Attr for nil or zero input, so call sites can
// pass values straight through without guarding:
//
//	log.Warn("receiver failed",
//		logger.Signal("user.created"),
//		logger.Receiver(r),
//		logger.Error(err),
//	)
//
// Attribute keys are fixed per helper (signal, sender, receiver, error,
// duration, attempt) so log output stays queryable across packages.
package logger
