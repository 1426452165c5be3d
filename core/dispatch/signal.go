package dispatch

import "reflect"

// Signal identifies an event category. Signals are plain strings so they can
// be declared as constants and used as map keys; the dispatcher never
// interprets their contents.
type Signal string

// Sender identifies who is dispatching. Senders are compared with == and must
// be comparable; use Any to match every sender.
type Sender = any

type anySender struct{}

func (anySender) String() string { return "dispatch.Any" }

// Any is the wildcard sender. A receiver connected with Any fires for every
// dispatch of its signal, and a Send with Any reaches only Any-connected
// receivers.
var Any Sender = anySender{}

// Data carries the named payload fields of a dispatch. The dispatcher is
// signature-agnostic and forwards it to receivers untouched; validating the
// field set is the caller's concern.
type Data map[string]any

// SignalOf derives a Signal from a value's type name, unwrapping pointers.
// It mirrors how event names are derived elsewhere in the toolkit: the bare
// type name without package path, so distinct packages must use distinct type
// names to avoid colliding signals.
//
// Example:
//
//	type UserCreated struct{ UserID string }
//
//	sig := dispatch.SignalOf(UserCreated{}) // "UserCreated"
func SignalOf(v any) Signal {
	t := reflect.TypeOf(v)
	if t == nil {
		return ""
	}

	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	return Signal(t.Name())
}
