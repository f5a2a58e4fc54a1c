package service

import (
	"context"
	"time"
)

// RetryPolicy governs per-item extraction retries: a bounded number of
// attempts with linearly increasing delay (base * attempt number) between
// them. The sleep function is injectable so tests run with zero real delay.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Sleep       func(ctx context.Context, d time.Duration) error
}

// NewRetryPolicy creates a policy with the default context-aware sleeper.
func NewRetryPolicy(maxAttempts int, baseDelay time.Duration) RetryPolicy {
	return RetryPolicy{
		MaxAttempts: maxAttempts,
		BaseDelay:   baseDelay,
		Sleep:       sleepContext,
	}
}

// Run invokes fn until it succeeds or attempts are exhausted. It returns
// the number of attempts made and the last error (nil on success). A
// context cancellation during backoff cuts the run short with the
// context's error.
func (p RetryPolicy) Run(ctx context.Context, fn func(attempt int) error) (int, error) {
	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err = fn(attempt); err == nil {
			return attempt, nil
		}
		if attempt < maxAttempts {
			if sleepErr := sleep(ctx, p.BaseDelay*time.Duration(attempt)); sleepErr != nil {
				return attempt, sleepErr
			}
		}
	}
	return maxAttempts, err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
