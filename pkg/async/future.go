package async

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	// ErrTimeout is returned when AwaitWithTimeout exceeds its duration.
	ErrTimeout = errors.New("async: await timed out")

	// ErrNoFutures is returned when WaitAny is called with no futures.
	ErrNoFutures = errors.New("async: no futures to wait for")

	// ErrPanic is matched by errors produced when an asynchronous function
	// panics. The panic value is captured in the error message.
	ErrPanic = errors.New("async: function panicked")
)

// Future represents the result of an asynchronous computation producing a
// value of type R. Safe for concurrent use; any number of goroutines may
// await the same future.
type Future[R any] struct {
	value R
	err   error
	once  sync.Once
	done  chan struct{}
}

// Await blocks until the computation completes and returns its result.
func (f *Future[R]) Await() (R, error) {
	<-f.done
	return f.value, f.err
}

// AwaitWithTimeout waits for completion up to the given duration. On timeout
// it returns the zero value and ErrTimeout; the computation keeps running and
// can still be awaited later.
func (f *Future[R]) AwaitWithTimeout(timeout time.Duration) (R, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-time.After(timeout):
		var zero R
		return zero, ErrTimeout
	}
}

// AwaitContext waits for completion or until ctx is done, whichever comes
// first. When ctx wins it returns the zero value and ctx.Err().
func (f *Future[R]) AwaitContext(ctx context.Context) (R, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero R
		return zero, ctx.Err()
	}
}

// IsComplete reports whether the computation has finished, without blocking.
func (f *Future[R]) IsComplete() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

func (f *Future[R]) complete(value R, err error) {
	f.once.Do(func() {
		f.value = value
		f.err = err
	})
}

// Async runs fn in its own goroutine and returns a Future for its result.
// A context cancelled before fn starts short-circuits the future with
// ctx.Err(). A panic inside fn is captured as an error matching ErrPanic
// instead of crashing the process.
func Async[T, R any](ctx context.Context, param T, fn func(context.Context, T) (R, error)) *Future[R] {
	f := &Future[R]{done: make(chan struct{})}

	go func() {
		defer close(f.done)
		defer func() {
			if rec := recover(); rec != nil {
				var zero R
				f.complete(zero, fmt.Errorf("%w: %v", ErrPanic, rec))
			}
		}()

		select {
		case <-ctx.Done():
			var zero R
			f.complete(zero, ctx.Err())
			return
		default:
		}

		value, err := fn(ctx, param)
		f.complete(value, err)
	}()

	return f
}

// WaitAll awaits every future and returns their results in argument order.
// Results are complete even on failure; the returned error joins all errors
// encountered.
func WaitAll[R any](futures ...*Future[R]) ([]R, error) {
	results := make([]R, len(futures))
	var errs []error
	for i, future := range futures {
		value, err := future.Await()
		results[i] = value
		if err != nil {
			errs = append(errs, err)
		}
	}
	return results, errors.Join(errs...)
}

// WaitAny returns the index and result of the first future to complete. With
// no futures it returns -1 and ErrNoFutures. One goroutine is spawned per
// future; all exit once their future finishes.
func WaitAny[R any](futures ...*Future[R]) (int, R, error) {
	if len(futures) == 0 {
		var zero R
		return -1, zero, ErrNoFutures
	}

	type completion struct {
		index int
		value R
		err   error
	}
	first := make(chan completion, 1)

	for i, future := range futures {
		go func(index int, f *Future[R]) {
			value, err := f.Await()
			select {
			case first <- completion{index: index, value: value, err: err}:
			default:
			}
		}(i, future)
	}

	res := <-first
	return res.index, res.value, res.err
}
