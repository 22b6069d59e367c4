package retry

import (
	"context"
	"time"
)

// Clock abstracts the suspension point between attempts.
//
// Sleep must return the context error when the wait is interrupted; any
// other returned error is treated by the retry loop as a completed wait.
// The default implementation blocks the calling goroutine, but a Clock may
// instead yield to a cooperative scheduler, as long as it resumes the same
// logical call after the delay elapses.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

// ClockFunc adapts a sleep function into a Clock using the real time for
// Now. It is the integration point for custom schedulers and runtimes.
func ClockFunc(sleep func(ctx context.Context, d time.Duration) error) Clock {
	return funcClock{sleep: sleep}
}

type funcClock struct {
	sleep func(ctx context.Context, d time.Duration) error
}

func (c funcClock) Now() time.Time {
	return time.Now()
}

func (c funcClock) Sleep(ctx context.Context, d time.Duration) error {
	return c.sleep(ctx, d)
}

// realClock implements Clock using the standard time package.
type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		if !timer.Stop() {
			<-timer.C
		}
		return ctx.Err()
	}
}
