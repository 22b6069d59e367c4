package retry

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
)

// Default values.
const (
	DefaultMaxAttempts  = 3
	DefaultBaseDelay    = 100 * time.Millisecond
	DefaultMultiplier   = 2.0
	DefaultMaxDelay     = 10 * time.Second
	DefaultJitterFactor = 1.0
)

// Policy defines retry behavior. It is immutable once constructed and safe
// to share across concurrent callers; all per-call state lives on the
// calling goroutine's stack.
type Policy struct {
	strategy    Strategy
	maxAttempts int
	jitter      float64
	backoff     Backoff
	condition   Condition
	onRetry     OnRetryFunc
	onSuccess   OnSuccessFunc
	onFailure   OnFailureFunc
	clock       Clock
	logger      *zap.Logger
	name        string
}

// New creates a Policy with the given options.
//
// Construction fails for an unknown strategy tag, a max attempts below 1, or
// negative delay bounds. A NaN jitter factor is accepted here and rejected
// lazily by the first delay computation.
func New(opts ...Option) (*Policy, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.maxAttempts < 1 {
		return nil, &InvalidPolicyError{Reason: fmt.Sprintf("max attempts must be at least 1, got %d", cfg.maxAttempts)}
	}
	if cfg.baseDelay < 0 {
		return nil, &InvalidPolicyError{Reason: fmt.Sprintf("base delay must be non-negative, got %v", cfg.baseDelay)}
	}
	if cfg.maxDelay < 0 {
		return nil, &InvalidPolicyError{Reason: fmt.Sprintf("max delay must be non-negative, got %v", cfg.maxDelay)}
	}

	backoff := cfg.backoff
	if backoff == nil {
		b, err := newStrategyBackoff(cfg.strategy, cfg.baseDelay, cfg.multiplier, cfg.maxDelay)
		if err != nil {
			return nil, err
		}
		backoff = b
	}

	clock := cfg.clock
	if clock == nil {
		clock = realClock{}
	}
	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Policy{
		strategy:    cfg.strategy,
		maxAttempts: cfg.maxAttempts,
		jitter:      cfg.jitter,
		backoff:     backoff,
		condition:   cfg.condition,
		onRetry:     cfg.onRetry,
		onSuccess:   cfg.onSuccess,
		onFailure:   cfg.onFailure,
		clock:       clock,
		logger:      logger,
		name:        cfg.name,
	}, nil
}

// MustNew is like New but panics on a configuration error. Intended for
// wire-up code with static options.
func MustNew(opts ...Option) *Policy {
	p, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return p
}

// Never returns a policy that does not retry.
func Never() *Policy {
	return MustNew(WithMaxAttempts(1))
}

// Default returns a policy with the package defaults: three attempts of
// exponential backoff from 100ms, capped at 10s, with full jitter.
func Default() *Policy {
	return MustNew()
}

// Name returns the metrics label configured with WithName, if any.
func (p *Policy) Name() string {
	return p.name
}

// MaxAttempts returns the attempt budget.
func (p *Policy) MaxAttempts() int {
	return p.maxAttempts
}

// Strategy returns the configured backoff strategy tag.
func (p *Policy) Strategy() Strategy {
	return p.strategy
}

// Delay computes the jittered delay before the retry following the given
// attempt (1-indexed).
//
// The raw strategy delay is blended with one uniform random sample:
//
//	delay = raw * (1 - jitter + uniform(0,1)*jitter)
//
// A jitter factor of 0 returns raw exactly, with zero variance. A factor of
// 1 draws uniformly from [0, raw]. Out-of-range factors are clamped; a NaN
// factor fails with ErrInvalidJitterFactor.
func (p *Policy) Delay(attempt int) (time.Duration, error) {
	if math.IsNaN(p.jitter) {
		return 0, ErrInvalidJitterFactor
	}

	raw := p.backoff.Delay(attempt)
	if raw <= 0 {
		return 0, nil
	}

	jitter := p.jitter
	if jitter < 0 {
		jitter = 0
	} else if jitter > 1 {
		jitter = 1
	}
	if jitter == 0 {
		return raw, nil
	}

	blend := 1 - jitter + rand.Float64()*jitter
	return clampDuration(float64(raw) * blend), nil
}

// retryable reports whether an error should trigger another attempt.
// Without a configured condition every failure is retryable.
func (p *Policy) retryable(err error) bool {
	if p.condition == nil {
		return err != nil
	}
	return p.condition(err)
}
