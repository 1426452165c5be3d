package retry_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/appkit/core/dispatch"
	"github.com/dmitrymomot/appkit/pkg/retry"
)

func quickRetrier(opts ...retry.Option) *retry.Retrier {
	base := []retry.Option{
		retry.WithInitialDelay(time.Millisecond),
		retry.WithMaxDelay(5 * time.Millisecond),
		retry.WithJitter(false),
	}
	return retry.New(append(base, opts...)...)
}

func TestRetrier_SucceedsFirstAttempt(t *testing.T) {
	t.Parallel()

	var calls int32
	err := quickRetrier().Do(context.Background(), func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})

	require.NoError(t, err)
	assert.EqualValues(t, 1, calls)
}

func TestRetrier_RetriesTransientErrors(t *testing.T) {
	t.Parallel()

	var calls int32
	err := quickRetrier().Do(context.Background(), func(ctx context.Context) error {
		if atomic.AddInt32(&calls, 1) < 3 {
			return retry.MarkTransient(errors.New("connection reset"))
		}
		return nil
	})

	require.NoError(t, err)
	assert.EqualValues(t, 3, calls)
}

func TestRetrier_PermanentErrorPropagatesImmediately(t *testing.T) {
	t.Parallel()

	permanent := errors.New("invalid argument")
	var calls int32
	err := quickRetrier().Do(context.Background(), func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return permanent
	})

	assert.ErrorIs(t, err, permanent)
	assert.NotErrorIs(t, err, retry.ErrExhausted)
	assert.EqualValues(t, 1, calls, "permanent errors must not be retried")
}

func TestRetrier_ExhaustsBudget(t *testing.T) {
	t.Parallel()

	cause := errors.New("still down")
	var calls int32
	err := quickRetrier(retry.WithTimeout(20 * time.Millisecond)).Do(
		context.Background(),
		func(ctx context.Context) error {
			atomic.AddInt32(&calls, 1)
			return retry.MarkTransient(cause)
		},
	)

	require.Error(t, err)
	assert.ErrorIs(t, err, retry.ErrExhausted)
	assert.ErrorIs(t, err, cause)

	var rerr *retry.Error
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, int(atomic.LoadInt32(&calls)), rerr.Attempts)
	assert.Greater(t, rerr.Attempts, 1)
}

func TestRetrier_ContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	var calls int32
	r := retry.New(
		retry.WithInitialDelay(time.Hour),
		retry.WithJitter(false),
		retry.WithTimeout(0),
	)

	done := make(chan error, 1)
	go func() {
		done <- r.Do(ctx, func(ctx context.Context) error {
			atomic.AddInt32(&calls, 1)
			return retry.MarkTransient(errors.New("boom"))
		})
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
		assert.EqualValues(t, 1, calls)
	case <-time.After(time.Second):
		t.Fatal("retrier did not observe cancellation")
	}
}

func TestRetrier_CancelledBeforeFirstAttempt(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls int32
	err := quickRetrier().Do(ctx, func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}

func TestRetrier_CustomPredicate(t *testing.T) {
	t.Parallel()

	retryable := errors.New("429 too many requests")
	var calls int32
	r := quickRetrier(retry.WithRetryIf(func(err error) bool {
		return errors.Is(err, retryable)
	}))

	err := r.Do(context.Background(), func(ctx context.Context) error {
		if atomic.AddInt32(&calls, 1) < 2 {
			return retryable
		}
		return nil
	})

	require.NoError(t, err)
	assert.EqualValues(t, 2, calls)
}

func TestDo_ReturnsValue(t *testing.T) {
	t.Parallel()

	var calls int32
	got, err := retry.Do(context.Background(), quickRetrier(), func(ctx context.Context) (string, error) {
		if atomic.AddInt32(&calls, 1) < 2 {
			return "", retry.MarkTransient(errors.New("not yet"))
		}
		return "ready", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ready", got)
}

func TestDo_ZeroValueOnFailure(t *testing.T) {
	t.Parallel()

	got, err := retry.Do(context.Background(), quickRetrier(), func(ctx context.Context) (int, error) {
		return 42, errors.New("broken")
	})

	require.Error(t, err)
	assert.Zero(t, got)
}

func TestMarkTransient(t *testing.T) {
	t.Parallel()

	assert.Nil(t, retry.MarkTransient(nil))

	base := errors.New("io timeout")
	marked := retry.MarkTransient(base)
	assert.True(t, retry.IsTransient(marked))
	assert.ErrorIs(t, marked, base)

	wrapped := errors.Join(errors.New("outer"), marked)
	assert.True(t, retry.IsTransient(wrapped), "marking survives wrapping")

	assert.False(t, retry.IsTransient(base))
	assert.False(t, retry.IsTransient(nil))
}

// A Retrier composes with dispatch receivers: the wrapper retries the inner
// Receive, and the dispatcher only ever sees the final outcome.
func TestRetrier_WrapsDispatchReceiver(t *testing.T) {
	t.Parallel()

	var attempts int32
	flaky := dispatch.ReceiverFunc(func(ctx context.Context, sender dispatch.Sender, data dispatch.Data) (any, error) {
		if atomic.AddInt32(&attempts, 1) < 3 {
			return nil, retry.MarkTransient(errors.New("downstream unavailable"))
		}
		return "delivered", nil
	})

	r := quickRetrier()
	retrying := dispatch.Decorate(flaky, func(inner dispatch.Receiver) dispatch.Receiver {
		return dispatch.ReceiverFunc(func(ctx context.Context, sender dispatch.Sender, data dispatch.Data) (any, error) {
			return retry.Do(ctx, r, func(ctx context.Context) (any, error) {
				return inner.Receive(ctx, sender, data)
			})
		})
	})

	d := dispatch.New()
	require.NoError(t, d.Connect("order.shipped", retrying))

	outcomes, err := d.Send(context.Background(), "order.shipped", dispatch.Any, nil)
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.NoError(t, outcomes[0].Err)
	assert.Equal(t, "delivered", outcomes[0].Value)
	assert.EqualValues(t, 3, attempts)
}
