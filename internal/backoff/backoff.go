// Package backoff holds the retry pacing shared by the config loader and the
// order workers.
package backoff

import (
	"context"
	"time"
)

// maxExponent caps the exponent so large attempt numbers cannot overflow.
const maxExponent = 10

// SleepFunc pauses for d or until ctx is done, whichever comes first.
// It returns ctx.Err() when the context ended the wait.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Exponential returns 2^attempt seconds. Attempts are 1-based, so the first
// retry waits 2s, then 4s, 8s and so on.
func Exponential(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > maxExponent {
		attempt = maxExponent
	}
	return time.Duration(1<<attempt) * time.Second
}

// Sleep is the default [SleepFunc]. A non-positive d returns immediately
// unless ctx is already done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
