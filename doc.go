// Package retry re-executes fallible operations under a configurable
// backoff policy, spreading retries in time so a recovering dependency is
// not overwhelmed by synchronized clients.
//
// The package provides:
//
//   - Three backoff strategies: Exponential, Constant, and Fibonacci
//   - Full-jitter blending with an exact deterministic mode at factor 0
//   - Error classification via conditions, with an explicit Stop marker
//   - Lifecycle hooks: OnRetry, OnSuccess, OnFailure (panic-safe)
//   - A named-policy registry with YAML-driven construction
//   - Injectable Clock for tests and cooperative schedulers
//   - Structured logging (zap) and Prometheus metrics for named policies
//
// # Quick Start
//
// One-off retries with the package-level Do:
//
//	err := retry.Do(ctx, func(ctx context.Context) error {
//	    return client.Call(ctx)
//	})
//
// Reusable policies are built once at wire-up and shared freely; they are
// immutable and safe for concurrent callers:
//
//	policy, err := retry.New(
//	    retry.WithStrategy(retry.StrategyExponential),
//	    retry.WithMaxAttempts(5),
//	    retry.WithBaseDelay(100*time.Millisecond),
//	    retry.WithMaxDelay(10*time.Second),
//	    retry.WithJitterFactor(1.0),
//	)
//
//	err = policy.Do(ctx, func(ctx context.Context) error {
//	    return client.Call(ctx)
//	})
//
// Operations that produce a value use the generic form:
//
//	user, err := retry.DoValue(ctx, policy, func(ctx context.Context) (*User, error) {
//	    return client.FetchUser(ctx, id)
//	})
//
// # Delay Computation
//
// Each strategy maps the 1-indexed attempt number to a raw delay:
//
//	Exponential: base * multiplier^(attempt-1), capped at the max delay
//	Constant:    base
//	Fibonacci:   base * fib(attempt), capped at the max delay
//
// The raw delay is then blended with one uniform random sample:
//
//	delay = raw * (1 - jitter + uniform(0,1)*jitter)
//
// A jitter factor of 0 returns the raw delay exactly; a factor of 1 draws
// uniformly from [0, raw] ("full jitter"). Out-of-range factors are
// clamped; NaN fails the first delay computation with
// ErrInvalidJitterFactor.
//
// # Classifying Failures
//
// By default every error is retried until the attempt budget runs out.
// A condition narrows this; errors it rejects are propagated unchanged:
//
//	policy, err := retry.New(
//	    retry.If(retry.RetryOnNetworkErrors()),
//	)
//
// Conditions compose with AnyOf, AllOf, and Not, and ready-made conditions
// cover sentinel errors (RetryOnErrors), network failures, timeouts, and
// gRPC status codes. Operations can also classify a single failure as
// terminal at the call site:
//
//	if errors.Is(err, sql.ErrNoRows) {
//	    return retry.Stop(ErrNotFound) // propagated unwrapped, no retry
//	}
//
// When the budget is exhausted the call fails with *ExhaustedError, which
// wraps the last original failure:
//
//	var exhausted *retry.ExhaustedError
//	if errors.As(err, &exhausted) {
//	    log.Printf("gave up after %d attempts: %v", exhausted.Attempts, exhausted.Err)
//	}
//
// # Hooks
//
// Hooks observe the lifecycle without influencing it; a panicking hook is
// recovered and logged, never surfaced:
//
//	retry.OnRetry(func(ctx context.Context, attempt int, err error, delay time.Duration) {
//	    logger.Warn("retrying", zap.Int("attempt", attempt), zap.Duration("delay", delay))
//	})
//	retry.OnSuccess(func(ctx context.Context, result any, attempts int) { ... })
//	retry.OnFailure(func(ctx context.Context, attempts int, err error) { ... })
//
// # Named Policies
//
// A Registry organizes policies by name, typically built from YAML:
//
//	policies:
//	  payments:
//	    strategy: exponential
//	    maxAttempts: 5
//	    baseDelay: 100ms
//	    maxDelay: 10s
//	    jitterFactor: 1.0
//	  reports:
//	    strategy: fibonacci
//	    baseDelay: 250ms
//
//	cfg, err := retry.LoadConfig("retry.yaml")
//	reg, err := cfg.Registry(logger)
//
//	err = reg.Do(ctx, "payments", chargeCard)
//
// Named policies report Prometheus metrics (attempts, successes, terminal
// failures, wait and call durations) labeled by policy name.
//
// # Suspension and Cancellation
//
// The only blocking point is the wait between attempts. A computed delay of
// zero or less does not suspend at all. Cancelling the context during the
// wait aborts the whole retry sequence and propagates the context error;
// any other failure from a custom Clock is treated as a completed wait.
//
// Inject a Clock to control time in tests or to yield to a cooperative
// scheduler instead of blocking:
//
//	retry.WithClock(retry.ClockFunc(func(ctx context.Context, d time.Duration) error {
//	    return scheduler.Sleep(ctx, d)
//	}))
package retry
