package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/appkit/pkg/logger"
)

// Decorator wraps a Receiver to add functionality around a single receiver's
// invocation. The dispatcher itself never retries or times out a receiver;
// these wrappers are how callers compose such policies externally.
//
// A decorated receiver is a new plain receiver with its own identity: connect
// and disconnect the decorated value, not the original.
type Decorator func(Receiver) Receiver

type decoratedReceiver struct {
	next Receiver
	fn   func(ctx context.Context, sender Sender, data Data) (any, error)
}

func (r *decoratedReceiver) Receive(ctx context.Context, sender Sender, data Data) (any, error) {
	return r.fn(ctx, sender, data)
}

// WithTimeout wraps a receiver to enforce a maximum invocation time. The
// receiver runs in its own goroutine; on timeout the wrapper returns an error
// while the abandoned invocation observes the cancelled context.
//
// Example:
//
//	d.Connect("report.requested", dispatch.WithTimeout(buildReport, 30*time.Second))
func WithTimeout(receiver Receiver, timeout time.Duration) Receiver {
	return &decoratedReceiver{
		next: receiver,
		fn: func(ctx context.Context, sender Sender, data Data) (any, error) {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			type result struct {
				value any
				err   error
			}
			resCh := make(chan result, 1)
			go func() {
				value, err := invoke(ctx, receiver, sender, data)
				resCh <- result{value: value, err: err}
			}()

			select {
			case res := <-resCh:
				return res.value, res.err
			case <-ctx.Done():
				return nil, fmt.Errorf("receiver timeout after %s: %w", timeout, ctx.Err())
			}
		},
	}
}

// WithLogging wraps a receiver to log every invocation with its duration and
// outcome.
func WithLogging(receiver Receiver, log *slog.Logger) Receiver {
	if log == nil {
		log = slog.Default()
	}
	return &decoratedReceiver{
		next: receiver,
		fn: func(ctx context.Context, sender Sender, data Data) (any, error) {
			start := time.Now()
			value, err := receiver.Receive(ctx, sender, data)
			if err != nil {
				log.ErrorContext(ctx, "receiver failed",
					logger.Receiver(receiver),
					logger.Elapsed(start),
					logger.Error(err))
				return value, err
			}
			log.DebugContext(ctx, "receiver completed",
				logger.Receiver(receiver),
				logger.Elapsed(start))
			return value, nil
		},
	}
}

// Timeout returns a Decorator applying WithTimeout, for use with Decorate.
func Timeout(timeout time.Duration) Decorator {
	return func(r Receiver) Receiver {
		return WithTimeout(r, timeout)
	}
}

// Logging returns a Decorator applying WithLogging, for use with Decorate.
func Logging(log *slog.Logger) Decorator {
	return func(r Receiver) Receiver {
		return WithLogging(r, log)
	}
}

// Decorate applies decorators left to right, the first one wrapping
// innermost.
//
// Example:
//
//	r := dispatch.Decorate(buildReport,
//	    dispatch.Timeout(30*time.Second),
//	    dispatch.Logging(log),
//	)
func Decorate(receiver Receiver, decorators ...Decorator) Receiver {
	for _, decorator := range decorators {
		receiver = decorator(receiver)
	}
	return receiver
}
