package retry_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renliev/retry"
)

var errTest = errors.New("test error")

// fakeClock records sleep requests without actually sleeping.
type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Now()}
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		c.sleeps = append(c.sleeps, d)
		c.now = c.now.Add(d)
		return nil
	}
}

// brokenClock fails every wait with a non-context error.
type brokenClock struct {
	calls int
}

func (c *brokenClock) Now() time.Time {
	return time.Now()
}

func (c *brokenClock) Sleep(ctx context.Context, d time.Duration) error {
	c.calls++
	return errors.New("waiter exploded")
}

func fastPolicy(t *testing.T, clock retry.Clock, opts ...retry.Option) *retry.Policy {
	t.Helper()
	base := []retry.Option{
		retry.WithBaseDelay(time.Millisecond),
		retry.WithJitterFactor(0),
		retry.WithClock(clock),
	}
	p, err := retry.New(append(base, opts...)...)
	require.NoError(t, err)
	return p
}

func TestDo(t *testing.T) {
	t.Parallel()

	t.Run("succeeds on first attempt", func(t *testing.T) {
		t.Parallel()

		clock := newFakeClock()
		attempts := 0
		err := fastPolicy(t, clock).Do(context.Background(), func(ctx context.Context) error {
			attempts++
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 1, attempts)
		assert.Empty(t, clock.sleeps)
	})

	t.Run("succeeds after retries", func(t *testing.T) {
		t.Parallel()

		clock := newFakeClock()
		attempts := 0
		err := fastPolicy(t, clock, retry.WithMaxAttempts(3)).Do(context.Background(), func(ctx context.Context) error {
			attempts++
			if attempts < 3 {
				return errTest
			}
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 3, attempts)
		assert.Len(t, clock.sleeps, 2)
	})

	t.Run("exhausts attempts", func(t *testing.T) {
		t.Parallel()

		attempts := 0
		err := fastPolicy(t, newFakeClock(), retry.WithMaxAttempts(2)).Do(context.Background(), func(ctx context.Context) error {
			attempts++
			return errors.New("Always fails")
		})

		var exhausted *retry.ExhaustedError
		require.ErrorAs(t, err, &exhausted)
		assert.Equal(t, 2, exhausted.Attempts)
		assert.Equal(t, 2, attempts)
		assert.Equal(t, "Always fails", exhausted.Err.Error())
		assert.Equal(t, "Always fails", errors.Unwrap(err).Error())
	})

	t.Run("non-retryable error propagates unchanged", func(t *testing.T) {
		t.Parallel()

		fatal := errors.New("fatal")
		attempts := 0
		err := fastPolicy(t, newFakeClock(),
			retry.WithMaxAttempts(5),
			retry.If(retry.RetryOnErrors(errTest)),
		).Do(context.Background(), func(ctx context.Context) error {
			attempts++
			return fatal
		})

		assert.Same(t, fatal, err)
		assert.Equal(t, 1, attempts)
	})

	t.Run("classification precedes exhaustion on last attempt", func(t *testing.T) {
		t.Parallel()

		fatal := errors.New("fatal")
		attempts := 0
		err := fastPolicy(t, newFakeClock(),
			retry.WithMaxAttempts(2),
			retry.If(retry.RetryOnErrors(errTest)),
		).Do(context.Background(), func(ctx context.Context) error {
			attempts++
			if attempts == 1 {
				return errTest
			}
			return fatal
		})

		// The last allowed attempt failed non-retryably: the original
		// error comes back as-is, not wrapped as exhaustion.
		assert.Same(t, fatal, err)
		var exhausted *retry.ExhaustedError
		assert.False(t, errors.As(err, &exhausted))
		assert.Equal(t, 2, attempts)
	})

	t.Run("stops immediately with Stop error", func(t *testing.T) {
		t.Parallel()

		attempts := 0
		err := fastPolicy(t, newFakeClock(), retry.WithMaxAttempts(5)).Do(context.Background(), func(ctx context.Context) error {
			attempts++
			return retry.Stop(errTest)
		})

		assert.Same(t, errTest, err)
		assert.Equal(t, 1, attempts)
	})

	t.Run("respects context cancellation during wait", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		attempts := 0
		err := fastPolicy(t, newFakeClock(), retry.WithMaxAttempts(5)).Do(ctx, func(ctx context.Context) error {
			attempts++
			if attempts == 2 {
				cancel()
			}
			return errTest
		})

		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 2, attempts)
	})

	t.Run("non-context wait failure is swallowed", func(t *testing.T) {
		t.Parallel()

		clock := &brokenClock{}
		attempts := 0
		err := fastPolicy(t, clock, retry.WithMaxAttempts(3)).Do(context.Background(), func(ctx context.Context) error {
			attempts++
			if attempts < 3 {
				return errTest
			}
			return nil
		})

		// The broken waiter must not abort the sequence.
		require.NoError(t, err)
		assert.Equal(t, 3, attempts)
		assert.Equal(t, 2, clock.calls)
	})

	t.Run("zero delay never suspends", func(t *testing.T) {
		t.Parallel()

		clock := newFakeClock()
		attempts := 0
		err := fastPolicy(t, clock,
			retry.WithMaxAttempts(3),
			retry.WithBackoff(retry.Constant(0)),
		).Do(context.Background(), func(ctx context.Context) error {
			attempts++
			return errTest
		})

		assert.Error(t, err)
		assert.Equal(t, 3, attempts)
		assert.Empty(t, clock.sleeps)
	})

	t.Run("zero delay elapsed time is negligible", func(t *testing.T) {
		t.Parallel()

		p, err := retry.New(
			retry.WithMaxAttempts(5),
			retry.WithBackoff(retry.Constant(0)),
			retry.WithJitterFactor(0),
		)
		require.NoError(t, err)

		start := time.Now()
		_ = p.Do(context.Background(), func(ctx context.Context) error {
			return errTest
		})
		assert.Less(t, time.Since(start), 100*time.Millisecond)
	})

	t.Run("construction error from package-level Do", func(t *testing.T) {
		t.Parallel()

		err := retry.Do(context.Background(), func(ctx context.Context) error {
			t.Fatal("operation must not run")
			return nil
		}, retry.WithStrategy("bogus"))

		var strategyErr *retry.InvalidStrategyError
		assert.ErrorAs(t, err, &strategyErr)
	})
}

func TestDoValue(t *testing.T) {
	t.Parallel()

	t.Run("returns the success value and attempt count", func(t *testing.T) {
		t.Parallel()

		attempts := 0
		value, err := retry.DoValue(context.Background(), fastPolicy(t, newFakeClock(), retry.WithMaxAttempts(3)),
			func(ctx context.Context) (string, error) {
				attempts++
				if attempts < 3 {
					return "", errTest
				}
				return "payload", nil
			})

		require.NoError(t, err)
		assert.Equal(t, "payload", value)
		assert.Equal(t, 3, attempts)
	})

	t.Run("nil policy falls back to defaults", func(t *testing.T) {
		t.Parallel()

		value, err := retry.DoValue(context.Background(), nil, func(ctx context.Context) (int, error) {
			return 42, nil
		})

		require.NoError(t, err)
		assert.Equal(t, 42, value)
	})

	t.Run("zero value on failure", func(t *testing.T) {
		t.Parallel()

		value, err := retry.DoValue(context.Background(), fastPolicy(t, newFakeClock(), retry.WithMaxAttempts(2)),
			func(ctx context.Context) (int, error) {
				return 7, errTest
			})

		assert.Error(t, err)
		assert.Zero(t, value)
	})
}

func TestHooks(t *testing.T) {
	t.Parallel()

	t.Run("on_success receives result and attempts", func(t *testing.T) {
		t.Parallel()

		var gotResult any
		var gotAttempts int
		attempts := 0
		_, err := retry.DoValue(context.Background(), fastPolicy(t, newFakeClock(),
			retry.WithMaxAttempts(3),
			retry.OnSuccess(func(ctx context.Context, result any, n int) {
				gotResult = result
				gotAttempts = n
			}),
		), func(ctx context.Context) (string, error) {
			attempts++
			if attempts < 2 {
				return "", errTest
			}
			return "done", nil
		})

		require.NoError(t, err)
		assert.Equal(t, "done", gotResult)
		assert.Equal(t, 2, gotAttempts)
	})

	t.Run("on_retry receives error, attempt, and delay", func(t *testing.T) {
		t.Parallel()

		type call struct {
			attempt int
			err     error
			delay   time.Duration
		}
		var calls []call

		attempts := 0
		err := fastPolicy(t, newFakeClock(),
			retry.WithMaxAttempts(3),
			retry.WithBackoff(retry.Constant(5*time.Millisecond)),
			retry.OnRetry(func(ctx context.Context, attempt int, err error, delay time.Duration) {
				calls = append(calls, call{attempt, err, delay})
			}),
		).Do(context.Background(), func(ctx context.Context) error {
			attempts++
			if attempts < 3 {
				return errTest
			}
			return nil
		})

		require.NoError(t, err)
		require.Len(t, calls, 2)
		assert.Equal(t, 1, calls[0].attempt)
		assert.Equal(t, 2, calls[1].attempt)
		for _, c := range calls {
			assert.Same(t, errTest, c.err)
			assert.Equal(t, 5*time.Millisecond, c.delay)
		}
	})

	t.Run("on_failure fires for exhaustion with the original error", func(t *testing.T) {
		t.Parallel()

		var gotErr error
		var gotAttempts int
		err := fastPolicy(t, newFakeClock(),
			retry.WithMaxAttempts(2),
			retry.OnFailure(func(ctx context.Context, attempts int, err error) {
				gotErr = err
				gotAttempts = attempts
			}),
		).Do(context.Background(), func(ctx context.Context) error {
			return errTest
		})

		var exhausted *retry.ExhaustedError
		require.ErrorAs(t, err, &exhausted)
		assert.Same(t, errTest, gotErr)
		assert.Equal(t, 2, gotAttempts)
	})

	t.Run("on_failure fires for non-retryable errors", func(t *testing.T) {
		t.Parallel()

		var gotErr error
		fatal := errors.New("fatal")
		err := fastPolicy(t, newFakeClock(),
			retry.WithMaxAttempts(5),
			retry.If(retry.RetryOnErrors(errTest)),
			retry.OnFailure(func(ctx context.Context, attempts int, err error) {
				gotErr = err
			}),
		).Do(context.Background(), func(ctx context.Context) error {
			return fatal
		})

		assert.Same(t, fatal, err)
		assert.Same(t, fatal, gotErr)
	})

	t.Run("panicking hooks never alter the outcome", func(t *testing.T) {
		t.Parallel()

		attempts := 0
		err := fastPolicy(t, newFakeClock(),
			retry.WithMaxAttempts(2),
			retry.OnRetry(func(ctx context.Context, attempt int, err error, delay time.Duration) {
				panic("on_retry boom")
			}),
			retry.OnFailure(func(ctx context.Context, attempts int, err error) {
				panic("on_failure boom")
			}),
		).Do(context.Background(), func(ctx context.Context) error {
			attempts++
			return errors.New("Always fails")
		})

		// The hooks panicked on every invocation, yet the retry decision
		// and the terminal error are unaffected.
		var exhausted *retry.ExhaustedError
		require.ErrorAs(t, err, &exhausted)
		assert.Equal(t, 2, exhausted.Attempts)
		assert.Equal(t, 2, attempts)
	})

	t.Run("panicking on_success does not mask the result", func(t *testing.T) {
		t.Parallel()

		value, err := retry.DoValue(context.Background(), fastPolicy(t, newFakeClock(),
			retry.OnSuccess(func(ctx context.Context, result any, attempts int) {
				panic("on_success boom")
			}),
		), func(ctx context.Context) (int, error) {
			return 99, nil
		})

		require.NoError(t, err)
		assert.Equal(t, 99, value)
	})
}

func TestDo_nanJitterSurfacesOnFirstRetry(t *testing.T) {
	t.Parallel()

	attempts := 0
	p, err := retry.New(
		retry.WithMaxAttempts(3),
		retry.WithJitterFactor(math.NaN()),
		retry.WithClock(newFakeClock()),
	)
	require.NoError(t, err)

	err = p.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return errTest
	})

	assert.ErrorIs(t, err, retry.ErrInvalidJitterFactor)
	assert.Equal(t, 1, attempts)
}

func TestPolicy_concurrentCalls(t *testing.T) {
	t.Parallel()

	p := fastPolicy(t, nil, retry.WithMaxAttempts(3), retry.WithBackoff(retry.Constant(0)))

	done := make(chan struct{})
	for range 8 {
		go func() {
			defer func() { done <- struct{}{} }()
			attempts := 0
			err := p.Do(context.Background(), func(ctx context.Context) error {
				attempts++
				if attempts < 3 {
					return errTest
				}
				return nil
			})
			assert.NoError(t, err)
			assert.Equal(t, 3, attempts)
		}()
	}
	for range 8 {
		<-done
	}
}
