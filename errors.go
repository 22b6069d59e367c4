package retry

import (
	"errors"
	"fmt"
)

// ErrInvalidJitterFactor reports a jitter factor that is not a number.
// Out-of-range numeric factors are clamped instead; only NaN is rejected,
// and only once a delay is actually computed.
var ErrInvalidJitterFactor = errors.New("retry: jitter factor is not a number")

// InvalidStrategyError reports an unrecognized backoff strategy tag.
// It is returned at policy construction, never at delay time.
type InvalidStrategyError struct {
	Strategy Strategy
}

func (e *InvalidStrategyError) Error() string {
	return fmt.Sprintf("retry: unknown backoff strategy %q", string(e.Strategy))
}

// InvalidPolicyError reports a policy configuration that violates a
// construction invariant.
type InvalidPolicyError struct {
	Reason string
}

func (e *InvalidPolicyError) Error() string {
	return "retry: invalid policy: " + e.Reason
}

// ExhaustedError is returned when every allowed attempt failed with a
// retryable error. It carries the last original failure and the total
// number of attempts made.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("retry: exhausted %d attempts: %v", e.Attempts, e.Err)
}

// Unwrap returns the last failure observed before giving up.
func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// UnknownPolicyError reports a registry lookup for a name that has no
// registered policy.
type UnknownPolicyError struct {
	Name string
}

func (e *UnknownPolicyError) Error() string {
	return fmt.Sprintf("retry: policy %q is not registered", e.Name)
}
