package retry

import (
	"time"

	"go.uber.org/zap"
)

// config holds all policy configuration prior to validation.
type config struct {
	strategy    Strategy
	maxAttempts int
	baseDelay   time.Duration
	multiplier  float64
	maxDelay    time.Duration
	jitter      float64

	// backoff overrides the strategy-derived curve when set.
	backoff Backoff

	condition Condition
	onRetry   OnRetryFunc
	onSuccess OnSuccessFunc
	onFailure OnFailureFunc

	clock  Clock
	logger *zap.Logger
	name   string
}

func defaultConfig() config {
	return config{
		strategy:    StrategyExponential,
		maxAttempts: DefaultMaxAttempts,
		baseDelay:   DefaultBaseDelay,
		multiplier:  DefaultMultiplier,
		maxDelay:    DefaultMaxDelay,
		jitter:      DefaultJitterFactor,
		clock:       realClock{},
	}
}

// Option configures a policy.
type Option func(*config)

// WithStrategy selects the backoff strategy.
func WithStrategy(s Strategy) Option {
	return func(c *config) {
		c.strategy = s
	}
}

// WithMaxAttempts sets the maximum number of attempts. Must be at least 1.
func WithMaxAttempts(n int) Option {
	return func(c *config) {
		c.maxAttempts = n
	}
}

// WithBaseDelay sets the base delay fed to the backoff strategy.
func WithBaseDelay(d time.Duration) Option {
	return func(c *config) {
		c.baseDelay = d
	}
}

// WithMultiplier sets the exponential growth factor. It is ignored by the
// constant and fibonacci strategies.
func WithMultiplier(m float64) Option {
	return func(c *config) {
		c.multiplier = m
	}
}

// WithMaxDelay caps the raw delay of growing strategies before jitter.
func WithMaxDelay(d time.Duration) Option {
	return func(c *config) {
		c.maxDelay = d
	}
}

// WithJitterFactor sets the jitter blend factor.
//
// 0 yields the deterministic raw delay, 1 yields a delay drawn uniformly
// from [0, raw]. Out-of-range numeric values are clamped when the delay is
// computed; NaN makes the first delay computation fail with
// ErrInvalidJitterFactor.
func WithJitterFactor(f float64) Option {
	return func(c *config) {
		c.jitter = f
	}
}

// WithBackoff replaces the strategy-derived curve with a custom Backoff.
// Jitter and the retry loop behave exactly as with a built-in strategy,
// which makes this the injection point for accelerated or test curves.
func WithBackoff(b Backoff) Option {
	return func(c *config) {
		c.backoff = b
	}
}

// If sets the condition that determines whether an error should be retried.
// When the condition returns false the error is propagated unchanged.
func If(cond Condition) Option {
	return func(c *config) {
		c.condition = cond
	}
}

// IfNot sets a condition where matching errors are NOT retried.
func IfNot(cond Condition) Option {
	return If(Not(cond))
}

// OnRetry sets a hook that is called before each retry sleep.
func OnRetry(fn OnRetryFunc) Option {
	return func(c *config) {
		c.onRetry = fn
	}
}

// OnSuccess sets a hook that is called when the operation succeeds.
func OnSuccess(fn OnSuccessFunc) Option {
	return func(c *config) {
		c.onSuccess = fn
	}
}

// OnFailure sets a hook that is called when the retry sequence terminates
// with a failure, whether exhausted or non-retryable.
func OnFailure(fn OnFailureFunc) Option {
	return func(c *config) {
		c.onFailure = fn
	}
}

// WithClock sets the clock used for sleeping between attempts. Useful for
// testing and for cooperative schedulers.
func WithClock(clock Clock) Option {
	return func(c *config) {
		c.clock = clock
	}
}

// WithLogger sets the logger used for retry and hook diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithName labels the policy for metrics and logs. Policies without a name
// record no metrics.
func WithName(name string) Option {
	return func(c *config) {
		c.name = name
	}
}
