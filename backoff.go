package retry

import (
	"math"
	"time"
)

// Strategy selects the raw backoff curve for a policy.
type Strategy string

const (
	// StrategyExponential grows the delay by a multiplier on every attempt.
	StrategyExponential Strategy = "exponential"

	// StrategyConstant waits the same base delay on every attempt.
	StrategyConstant Strategy = "constant"

	// StrategyFibonacci scales the base delay by the Fibonacci sequence.
	StrategyFibonacci Strategy = "fibonacci"
)

// Backoff calculates the raw (pre-jitter) delay between retry attempts.
// Attempts are 1-indexed.
type Backoff interface {
	Delay(attempt int) time.Duration
}

// BackoffFunc is an adapter that allows a function to be used as a Backoff.
type BackoffFunc func(attempt int) time.Duration

// Delay implements Backoff.
func (f BackoffFunc) Delay(attempt int) time.Duration {
	return f(attempt)
}

// Constant returns a backoff that always waits the same duration.
func Constant(d time.Duration) Backoff {
	return BackoffFunc(func(attempt int) time.Duration {
		return d
	})
}

// Exponential returns a backoff that grows by multiplier with each attempt.
// delay = base * multiplier^(attempt-1)
//
// Delays saturate at the maximum representable duration instead of
// overflowing for large attempt numbers.
func Exponential(base time.Duration, multiplier float64) Backoff {
	return BackoffFunc(func(attempt int) time.Duration {
		if attempt <= 1 {
			return base
		}
		d := float64(base) * math.Pow(multiplier, float64(attempt-1))
		return clampDuration(d)
	})
}

// Fibonacci returns a backoff that scales base by the Fibonacci sequence:
// base*1, base*1, base*2, base*3, base*5, ...
func Fibonacci(base time.Duration) Backoff {
	return BackoffFunc(func(attempt int) time.Duration {
		d := float64(base) * float64(fibonacci(attempt))
		return clampDuration(d)
	})
}

// WithCap wraps a backoff and caps the delay at a maximum value.
func WithCap(max time.Duration, b Backoff) Backoff {
	return BackoffFunc(func(attempt int) time.Duration {
		d := b.Delay(attempt)
		if d > max {
			return max
		}
		return d
	})
}

// WithMin wraps a backoff and ensures the delay is at least a minimum value.
func WithMin(min time.Duration, b Backoff) Backoff {
	return BackoffFunc(func(attempt int) time.Duration {
		d := b.Delay(attempt)
		if d < min {
			return min
		}
		return d
	})
}

// fibMaxIter is the last index for which fib(n) fits in an int64.
const fibMaxIter = 92

// fibonacci returns the nth Fibonacci number with saturating arithmetic.
// fib(0)=0, fib(1)=fib(2)=1.
func fibonacci(n int) int64 {
	switch {
	case n <= 0:
		return 0
	case n <= 2:
		return 1
	case n > fibMaxIter:
		return math.MaxInt64
	}
	a, b := int64(1), int64(1)
	for i := 2; i < n; i++ {
		a, b = b, a+b
	}
	return b
}

// clampDuration converts a float delay to a Duration, pinning non-finite or
// out-of-range values to the representable bounds.
func clampDuration(d float64) time.Duration {
	if math.IsNaN(d) || d < 0 {
		return 0
	}
	if d >= float64(math.MaxInt64) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(d)
}

// newStrategyBackoff builds the raw curve for a policy configuration.
// The cap applies to growing strategies only; a constant delay is taken
// as configured.
func newStrategyBackoff(strategy Strategy, base time.Duration, multiplier float64, max time.Duration) (Backoff, error) {
	switch strategy {
	case StrategyExponential:
		return WithCap(max, Exponential(base, multiplier)), nil
	case StrategyConstant:
		return Constant(base), nil
	case StrategyFibonacci:
		return WithCap(max, Fibonacci(base)), nil
	default:
		return nil, &InvalidStrategyError{Strategy: strategy}
	}
}
