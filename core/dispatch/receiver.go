package dispatch

import (
	"context"
	"reflect"
	"weak"
)

// Receiver is a unit of behavior invoked on dispatch. It receives the sender
// of the dispatch plus the signal's payload, and returns a result value or an
// error. Receivers must be safe for invocation from whichever goroutine calls
// Send.
type Receiver interface {
	Receive(ctx context.Context, sender Sender, data Data) (any, error)
}

// ReceiverFunc adapts a function to the Receiver interface.
//
// Identity caveat: a ReceiverFunc is identified by its code pointer, so two
// closures created from the same function literal share identity. Wrap the
// closure in a named type (or use Weak/Method) when distinct identities are
// needed.
type ReceiverFunc func(ctx context.Context, sender Sender, data Data) (any, error)

// Receive calls f.
func (f ReceiverFunc) Receive(ctx context.Context, sender Sender, data Data) (any, error) {
	return f(ctx, sender, data)
}

// receiverKey is the canonical identity of a registered receiver. It is what
// makes repeated registration idempotent and disconnect-by-value work even
// when the caller rebuilds the receiver wrapper.
//
// owner holds either the receiver's own comparable value or, for weak
// receivers, the weak pointer to the referent (weak pointers made from the
// same referent compare equal). fn holds the code pointer of the underlying
// function for func-based and bound-method receivers.
type receiverKey struct {
	owner any
	fn    uintptr
}

// weakable is implemented by receivers whose liveness is tied to an external
// owner. strengthen returns a receiver holding a strong reference to the
// referent for the duration of an invocation, or false when the referent has
// been collected.
type weakable interface {
	Receiver
	identity() receiverKey
	strengthen() (Receiver, bool)
}

// identityOf canonicalizes a receiver into its registration key.
func identityOf(r Receiver) (receiverKey, error) {
	if r == nil {
		return receiverKey{}, ErrNilReceiver
	}

	if w, ok := r.(weakable); ok {
		return w.identity(), nil
	}

	rv := reflect.ValueOf(r)
	if rv.Kind() == reflect.Func {
		return receiverKey{fn: rv.Pointer()}, nil
	}
	if !rv.Type().Comparable() {
		return receiverKey{}, ErrUncomparableReceiver
	}

	return receiverKey{owner: r}, nil
}

// Weak wraps a pointer receiver in a weak handle. The dispatcher does not
// keep the referent alive: once every other reference to it is gone, the
// registration is treated as absent and eventually swept.
//
// Wrapping the same pointer twice yields handles with equal identity, so
// reconnecting is idempotent and Disconnect matches a freshly built wrapper.
//
// Example:
//
//	svc := &MailService{}
//	d.Connect("user.created", dispatch.Weak(svc))
func Weak[T any, PT interface {
	*T
	Receiver
}](r PT) Receiver {
	return &weakReceiver[T, PT]{ref: weak.Make((*T)(r))}
}

type weakReceiver[T any, PT interface {
	*T
	Receiver
}] struct {
	ref weak.Pointer[T]
}

func (w *weakReceiver[T, PT]) Receive(ctx context.Context, sender Sender, data Data) (any, error) {
	target, ok := w.strengthen()
	if !ok {
		return nil, ErrReceiverGone
	}
	return target.Receive(ctx, sender, data)
}

func (w *weakReceiver[T, PT]) identity() receiverKey {
	return receiverKey{owner: w.ref}
}

func (w *weakReceiver[T, PT]) strengthen() (Receiver, bool) {
	p := w.ref.Value()
	if p == nil {
		return nil, false
	}
	return PT(p), true
}

// MethodFunc is a method expression over an owner of type T, e.g.
// (*MailService).OnUserCreated.
type MethodFunc[T any] func(owner *T, ctx context.Context, sender Sender, data Data) (any, error)

// Method wraps a bound method as a receiver. The weak handle targets the
// owner object, not the transient method wrapper, so identity and liveness
// follow the owner: Method(o, f) built twice from the same pair compares
// equal, and the registration dies with o.
//
// Example:
//
//	svc := &MailService{}
//	d.Connect("user.created", dispatch.Method(svc, (*MailService).OnUserCreated))
func Method[T any](owner *T, fn MethodFunc[T]) Receiver {
	return &methodReceiver[T]{
		ref:   weak.Make(owner),
		fn:    fn,
		fnPtr: reflect.ValueOf(fn).Pointer(),
	}
}

type methodReceiver[T any] struct {
	ref   weak.Pointer[T]
	fn    MethodFunc[T]
	fnPtr uintptr
}

func (m *methodReceiver[T]) Receive(ctx context.Context, sender Sender, data Data) (any, error) {
	target, ok := m.strengthen()
	if !ok {
		return nil, ErrReceiverGone
	}
	return target.Receive(ctx, sender, data)
}

func (m *methodReceiver[T]) identity() receiverKey {
	return receiverKey{owner: m.ref, fn: m.fnPtr}
}

func (m *methodReceiver[T]) strengthen() (Receiver, bool) {
	p := m.ref.Value()
	if p == nil {
		return nil, false
	}
	return &boundMethod[T]{owner: p, fn: m.fn, fnPtr: m.fnPtr}, true
}

// boundMethod pins the owner for the duration of an invocation. It reports
// the same identity as the weak wrapper it was strengthened from, so a
// receiver observed in an Outcome can still be disconnected by value.
type boundMethod[T any] struct {
	owner *T
	fn    MethodFunc[T]
	fnPtr uintptr
}

func (b *boundMethod[T]) Receive(ctx context.Context, sender Sender, data Data) (any, error) {
	return b.fn(b.owner, ctx, sender, data)
}

func (b *boundMethod[T]) identity() receiverKey {
	return receiverKey{owner: weak.Make(b.owner), fn: b.fnPtr}
}

func (b *boundMethod[T]) strengthen() (Receiver, bool) {
	return b, true
}
