package retry

import (
	"errors"
	"fmt"
)

// ErrExhausted is matched by errors returned after the retry budget ran out.
var ErrExhausted = errors.New("retry: budget exhausted")

// Error reports an operation that kept failing until the retry budget ran
// out. It wraps the last attempt's error and matches ErrExhausted.
type Error struct {
	Attempts int
	Cause    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("retry: budget exhausted after %d attempts: %v", e.Attempts, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

func (e *Error) Is(target error) bool { return target == ErrExhausted }

type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }

func (e *transientError) Unwrap() error { return e.err }

// MarkTransient wraps err so IsTransient reports true for it. Use at the
// point where a failure is known to be worth retrying, such as a network
// timeout or an overloaded downstream.
func MarkTransient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// IsTransient reports whether err or any error in its chain was marked with
// MarkTransient. It is the default retry predicate: unmarked errors are
// treated as permanent and propagate without retrying.
func IsTransient(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}
