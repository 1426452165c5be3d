// Package dispatch provides an in-process, synchronous signal dispatcher:
// independent parts of an application register interest in named signals and
// are invoked directly when a matching signal is sent, without publisher and
// subscribers knowing about each other's types or lifetimes.
//
// # Core Components
//
// Signal is a named event category ("user.created"); SignalOf derives one
// from a value's type. Sender identifies who is dispatching; the Any sentinel
// matches every sender. Receiver is the unit of behavior invoked on dispatch,
// with ReceiverFunc, Weak, and Method adapters for functions, weakly-tracked
// pointer receivers, and bound methods.
//
// Dispatcher owns the registration table and the dispatch algorithm. Proxy
// wraps a swappable Bus so references can outlive reconfiguration. Decorators
// (Timeout, Logging) compose policies around individual receivers.
//
// # Basic Usage
//
//	d := dispatch.New(dispatch.WithLogger(logger))
//
//	audit := dispatch.ReceiverFunc(func(ctx context.Context, sender dispatch.Sender, data dispatch.Data) (any, error) {
//	    logger.Info("user created", "user_id", data["user_id"])
//	    return nil, nil
//	})
//	if err := d.Connect("user.created", audit); err != nil {
//	    log.Fatal(err)
//	}
//
//	outcomes, err := d.Send(ctx, "user.created", userService, dispatch.Data{"user_id": 42})
//
// # Receiver Identity
//
// Every registration is keyed by a canonical receiver identity, which makes
// reconnecting idempotent and lets Disconnect match by value:
//
//   - A pointer (or otherwise comparable) receiver is identified by its own
//     value.
//   - A ReceiverFunc is identified by its code pointer.
//   - A Weak receiver is identified by its referent, so wrapping the same
//     pointer twice yields the same identity.
//   - A Method receiver is identified by the (owner, method) pair, so a
//     freshly built Method(owner, fn) wrapper matches an earlier registration
//     of the same pair. The weak handle targets the owner object, never the
//     transient wrapper.
//
// A receiver whose type supports neither == nor a function identity is
// rejected with ErrUncomparableReceiver at Connect time.
//
// # Weak References and Sweeping
//
// Receivers built with Weak or Method do not keep their referent alive: once
// the rest of the program drops the owner, the registration is treated as
// absent and never invoked again. Everything else is held strongly by the
// table (the silent upgrade for receivers that cannot be weakly referenced)
// and must be removed with Disconnect; WithPinned forces the same strong
// holding for weak-capable receivers.
//
// Dead entries are reclaimed three ways: lazily when a Send or LiveReceivers
// call walks over them, by an amortized sweep every WithSweepEvery connects
// (default 64), and on demand via PurgeDead. None of these affect dispatch
// correctness, only when memory is reclaimed.
//
// # Ordering
//
// A dispatch invokes receivers connected for the concrete sender first, in
// connect order, then Any-connected receivers in connect order. The most
// specific interest fires first; this tie-break is part of the contract, not
// an accident of storage. A receiver matching through both a sender-specific
// and an Any registration is invoked once per dispatch.
//
// # Error Handling
//
// Send never fails because of a receiver: returned errors and panics are
// captured per receiver in Outcomes, and a failing receiver never prevents
// its siblings from running. SendStrict runs every receiver to completion and
// then returns a *DispatchError aggregating all failures. Misuse (empty
// signal, nil receiver, uncomparable sender) fails fast with errors matching
// ErrInvalidConfig.
//
// # Re-entrancy and Concurrency
//
// All methods are safe for concurrent use. The internal lock covers table
// bookkeeping only; receivers run outside it on the caller's goroutine, so a
// receiver may freely call Connect, Disconnect, or Send on the same
// dispatcher. Each Send operates on a snapshot of the matching set taken at
// its start: mutations made by a receiver take effect on the next dispatch,
// never the in-flight one.
//
// Dispatch is synchronous with no internal timeouts; a hung receiver blocks
// the calling goroutine. Wrap individual receivers with WithTimeout (or a
// retry policy such as pkg/retry) when that is not acceptable.
package dispatch
