package retry

import (
	"context"
	"io"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/dmitrymomot/appkit/pkg/logger"
)

const (
	defaultInitialDelay = 2 * time.Second
	defaultMaxDelay     = 60 * time.Second
	defaultMultiplier   = 2.0
	defaultTimeout      = 5 * time.Minute
)

// Retrier repeats a failing operation with exponentially growing, jittered
// delays until it succeeds, the error is not retryable, or the retry budget
// runs out. A Retrier is immutable after New and safe for concurrent use.
//
// Only apply to idempotent operations.
type Retrier struct {
	initialDelay time.Duration
	maxDelay     time.Duration
	multiplier   float64
	timeout      time.Duration
	jitter       bool
	retryIf      func(error) bool
	logger       *slog.Logger
}

// Option configures a Retrier.
type Option func(*Retrier)

// WithInitialDelay sets the delay before the first retry. Defaults to 2s.
func WithInitialDelay(d time.Duration) Option {
	return func(r *Retrier) {
		if d > 0 {
			r.initialDelay = d
		}
	}
}

// WithMaxDelay caps the exponential growth of the delay. Defaults to 60s.
func WithMaxDelay(d time.Duration) Option {
	return func(r *Retrier) {
		if d > 0 {
			r.maxDelay = d
		}
	}
}

// WithMultiplier sets the factor applied to the delay after each attempt.
// Values below 1 are ignored. Defaults to 2.
func WithMultiplier(m float64) Option {
	return func(r *Retrier) {
		if m >= 1 {
			r.multiplier = m
		}
	}
}

// WithTimeout bounds the total time spent retrying; the last delay is
// shortened as needed so no attempt starts after the deadline. Zero disables
// the bound. Defaults to 5m.
func WithTimeout(d time.Duration) Option {
	return func(r *Retrier) {
		r.timeout = d
	}
}

// WithJitter toggles randomization of each delay within [delay/2, delay],
// spreading out retries from concurrent callers. Enabled by default.
func WithJitter(enabled bool) Option {
	return func(r *Retrier) {
		r.jitter = enabled
	}
}

// WithRetryIf sets the predicate deciding whether an error is retryable.
// Non-retryable errors propagate immediately. Defaults to IsTransient.
func WithRetryIf(predicate func(error) bool) Option {
	return func(r *Retrier) {
		if predicate != nil {
			r.retryIf = predicate
		}
	}
}

// WithLogger configures structured logging of retry attempts.
// If not set, logging is discarded.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retrier) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates a Retrier.
//
// Example:
//
//	r := retry.New(
//	    retry.WithInitialDelay(100*time.Millisecond),
//	    retry.WithTimeout(30*time.Second),
//	    retry.WithRetryIf(func(err error) bool { return true }),
//	)
func New(opts ...Option) *Retrier {
	r := &Retrier{
		initialDelay: defaultInitialDelay,
		maxDelay:     defaultMaxDelay,
		multiplier:   defaultMultiplier,
		timeout:      defaultTimeout,
		jitter:       true,
		retryIf:      IsTransient,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.maxDelay < r.initialDelay {
		r.maxDelay = r.initialDelay
	}

	return r
}

// Do runs fn, retrying per the policy. It returns nil on the first success,
// the original error when the predicate rejects it, ctx.Err() when the
// context is cancelled between attempts, and an *Error wrapping the last
// failure once the retry budget is exhausted.
func (r *Retrier) Do(ctx context.Context, fn func(context.Context) error) error {
	var deadline time.Time
	if r.timeout > 0 {
		deadline = time.Now().Add(r.timeout)
	}

	delay := r.initialDelay
	attempts := 0

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		attempts++
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if !r.retryIf(err) {
			return err
		}

		wait := delay
		if r.jitter {
			wait = delay/2 + rand.N(delay/2+1)
		}
		if !deadline.IsZero() {
			remaining := time.Until(deadline)
			if remaining <= 0 {
				return &Error{Attempts: attempts, Cause: err}
			}
			if wait > remaining {
				wait = remaining
			}
		}

		r.logger.Warn("retrying after failure",
			logger.Attempt(attempts),
			slog.Duration("wait", wait),
			logger.Error(err))

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay = time.Duration(float64(delay) * r.multiplier)
		if delay > r.maxDelay {
			delay = r.maxDelay
		}
	}
}

// Do runs fn with the given Retrier and returns its value. The zero value of
// T accompanies any error.
func Do[T any](ctx context.Context, r *Retrier, fn func(context.Context) (T, error)) (T, error) {
	var result T
	err := r.Do(ctx, func(ctx context.Context) error {
		var err error
		result, err = fn(ctx)
		return err
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}
