package dispatch

// Outcome is the result of invoking one receiver during a dispatch. Exactly
// one of Value and Err is meaningful: Err is nil on success and a
// *ReceiverError on failure.
type Outcome struct {
	Receiver Receiver
	Value    any
	Err      error
}

// Failed reports whether the receiver's invocation failed.
func (o Outcome) Failed() bool {
	return o.Err != nil
}
