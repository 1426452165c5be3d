// Package registry provides a thread-safe, process-wide store of named
// objects with mutation signals.
//
// A Registry maps string keys to arbitrary values and, when constructed with
// WithBus, broadcasts SignalItemSet and SignalItemRemoved through a dispatch
// bus after every mutation. The sender of those signals is the registry
// instance itself, so receivers can subscribe to one registry among several.
//
// Basic usage:
//
//	d := dispatch.New()
//	reg := registry.New(registry.WithBus(d))
//
//	d.Connect(registry.SignalItemSet, dispatch.ReceiverFunc(
//	    func(ctx context.Context, sender dispatch.Sender, data dispatch.Data) (any, error) {
//	        log.Printf("item set: %v", data["key"])
//	        return nil, nil
//	    },
//	), dispatch.WithSender(reg))
//
//	reg.Set("db", pool)
//	pool := reg.MustGet("db").(*Pool)
//
// Missing-key accesses return (or panic with) a *NoSuchItemError, matchable
// with errors.Is(err, registry.ErrNoSuchItem).
//
// Signals are emitted outside the registry's internal lock, so receivers may
// call back into the registry. Emission is synchronous: Set returns after all
// receivers ran. Receiver failures are logged, never propagated to the
// mutating caller.
package registry
