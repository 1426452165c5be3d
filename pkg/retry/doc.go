// Package retry runs failure-prone operations repeatedly with exponential
// backoff, jitter, and a bounded total budget.
//
// A Retrier holds the policy and is reused across operations:
//
//	r := retry.New(
//		retry.WithInitialDelay(200*time.Millisecond),
//		retry.WithMaxDelay(5*time.Second),
//		retry.WithTimeout(30*time.Second),
//	)
//
//	err := r.Do(ctx, func(ctx context.Context) error {
//		return retry.MarkTransient(callFlakyService(ctx))
//	})
//
// Operations returning values go through the generic form:
//
//	user, err := retry.Do(ctx, r, func(ctx context.Context) (*User, error) {
//		return fetchUser(ctx, id)
//	})
//
// # Retry Decisions
//
// By default only errors marked with MarkTransient are retried; anything else
// propagates immediately, so validation failures and business errors never
// burn the retry budget. WithRetryIf replaces the predicate, for example with
// one keyed on error codes from a client library.
//
// # Budget and Delays
//
// The delay starts at the initial delay and is multiplied after every failed
// attempt, capped at the max delay. With jitter enabled each wait is drawn
// uniformly from the upper half of the computed delay. The total budget set
// by WithTimeout clamps the final wait so no attempt starts past the
// deadline; once it is spent the last error comes back wrapped in an *Error
// matching ErrExhausted. Cancelling the context stops waiting immediately
// and returns ctx.Err().
package retry
