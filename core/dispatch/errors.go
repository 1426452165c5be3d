package dispatch

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidConfig is the common ancestor of all connect/disconnect/send
	// misuse errors; errors.Is(err, ErrInvalidConfig) matches any of them.
	ErrInvalidConfig = errors.New("dispatch: invalid configuration")

	// ErrEmptySignal is returned when a signal name is empty.
	ErrEmptySignal = fmt.Errorf("%w: empty signal", ErrInvalidConfig)

	// ErrNilReceiver is returned when a nil receiver is passed.
	ErrNilReceiver = fmt.Errorf("%w: nil receiver", ErrInvalidConfig)

	// ErrUncomparableReceiver is returned when a receiver's type supports
	// neither == nor a function identity, so no stable registration key
	// exists for it.
	ErrUncomparableReceiver = fmt.Errorf("%w: receiver type is not comparable", ErrInvalidConfig)

	// ErrUncomparableSender is returned when a sender's type does not
	// support ==.
	ErrUncomparableSender = fmt.Errorf("%w: sender type is not comparable", ErrInvalidConfig)

	// ErrReceiverGone is returned when a weak receiver's referent has
	// already been garbage collected.
	ErrReceiverGone = errors.New("dispatch: receiver has been collected")

	// ErrReceiverPanic wraps a panic recovered from a receiver invocation.
	ErrReceiverPanic = errors.New("dispatch: receiver panicked")
)

// ReceiverError is a single receiver's captured failure. Send reports these
// inside Outcomes instead of raising them; SendStrict bundles them into a
// DispatchError.
type ReceiverError struct {
	Receiver Receiver
	Err      error
}

func (e *ReceiverError) Error() string {
	return fmt.Sprintf("dispatch: receiver %T failed: %v", e.Receiver, e.Err)
}

func (e *ReceiverError) Unwrap() error {
	return e.Err
}

// DispatchError aggregates every receiver failure from a single SendStrict
// call. It is returned only after all matching receivers have run.
type DispatchError struct {
	Signal   Signal
	Failures []*ReceiverError
}

func (e *DispatchError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "dispatch: signal %q: %d receiver(s) failed", e.Signal, len(e.Failures))
	for _, f := range e.Failures {
		sb.WriteString("\n\t")
		sb.WriteString(f.Error())
	}
	return sb.String()
}

// Unwrap exposes the individual failures so errors.Is and errors.As can see
// through the aggregate.
func (e *DispatchError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f
	}
	return errs
}
