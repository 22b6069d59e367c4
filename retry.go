package retry

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Func is the function signature for retryable operations without a result.
type Func func(ctx context.Context) error

// Operation is the function signature for retryable operations that
// produce a value.
type Operation[T any] func(ctx context.Context) (T, error)

// OnRetryFunc is called before each retry sleep.
type OnRetryFunc func(ctx context.Context, attempt int, err error, delay time.Duration)

// OnSuccessFunc is called when the operation succeeds. result is the value
// produced by DoValue, or nil when invoked through Do.
type OnSuccessFunc func(ctx context.Context, result any, attempts int)

// OnFailureFunc is called once when the retry sequence terminates with a
// failure, whether the attempt budget was exhausted or the error was
// classified as non-retryable. err is the original operation failure.
type OnFailureFunc func(ctx context.Context, attempts int, err error)

// Do executes fn with retry using a policy built from opts.
func Do(ctx context.Context, fn Func, opts ...Option) error {
	p, err := New(opts...)
	if err != nil {
		return err
	}
	return p.Do(ctx, fn)
}

// Do executes fn with retry using this policy's configuration.
func (p *Policy) Do(ctx context.Context, fn Func) error {
	_, err := DoValue(ctx, p, func(ctx context.Context) (any, error) {
		return nil, fn(ctx)
	})
	return err
}

// DoValue executes op under the policy and returns its value.
//
// Attempts are sequential; the only suspension point is the backoff wait.
// Context interruption during that wait aborts the whole sequence and is
// propagated unchanged. Each invocation is independent and re-entrant.
func DoValue[T any](ctx context.Context, p *Policy, op Operation[T]) (T, error) {
	var zero T
	if p == nil {
		p = Default()
	}
	start := p.clock.Now()

	for attempt := 1; ; attempt++ {
		value, err := op(ctx)
		if p.name != "" {
			recordAttempt(p.name, attempt)
		}
		if err == nil {
			if p.onSuccess != nil {
				p.observe("on_success", func() { p.onSuccess(ctx, value, attempt) })
			}
			p.finish(start, true)
			return value, nil
		}

		// Terminal marker from the operation boundary.
		var stopped *stopError
		if errors.As(err, &stopped) {
			orig := stopped.Unwrap()
			p.fail(ctx, attempt, orig)
			p.finish(start, false)
			return zero, orig
		}

		// Classification comes strictly before the attempt budget: a
		// non-retryable failure on the last allowed attempt is still
		// propagated unchanged, never wrapped as exhaustion.
		if !p.retryable(err) {
			p.fail(ctx, attempt, err)
			p.finish(start, false)
			return zero, err
		}

		if attempt >= p.maxAttempts {
			p.fail(ctx, attempt, err)
			p.finish(start, false)
			return zero, &ExhaustedError{Attempts: attempt, Err: err}
		}

		delay, derr := p.Delay(attempt)
		if derr != nil {
			p.finish(start, false)
			return zero, derr
		}

		if p.onRetry != nil {
			p.observe("on_retry", func() { p.onRetry(ctx, attempt, err, delay) })
		}
		p.logger.Debug("retrying operation",
			zap.String("policy", p.name),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", p.maxAttempts),
			zap.Duration("delay", delay),
			zap.Error(err),
		)

		if delay > 0 {
			if p.name != "" {
				recordBackoff(p.name, delay)
			}
			if serr := p.clock.Sleep(ctx, delay); serr != nil {
				if ctx.Err() != nil {
					p.finish(start, false)
					return zero, serr
				}
				// Any other waiter failure counts as an elapsed wait.
			}
		}
	}
}

// fail reports a terminal failure to the on-failure hook and metrics.
func (p *Policy) fail(ctx context.Context, attempts int, err error) {
	if p.onFailure != nil {
		p.observe("on_failure", func() { p.onFailure(ctx, attempts, err) })
	}
	if p.name != "" {
		recordFailure(p.name)
	}
}

func (p *Policy) finish(start time.Time, success bool) {
	if p.name == "" {
		return
	}
	if success {
		recordSuccess(p.name)
	}
	recordDuration(p.name, success, p.clock.Now().Sub(start))
}

// observe runs an observer hook, discarding any panic so observers can
// never alter the retry decision or mask the real outcome.
func (p *Policy) observe(hook string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Warn("retry hook panicked",
				zap.String("policy", p.name),
				zap.String("hook", hook),
				zap.Any("panic", r),
			)
		}
	}()
	fn()
}
