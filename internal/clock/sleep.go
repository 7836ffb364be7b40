// Package clock provides helpers for time-related operations.
package clock

import (
	"context"
	"time"
)

// SleepWithContext waits for the duration or returns early if the context is canceled.
func SleepWithContext(ctx context.Context, d time.Duration) error {
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

// LinearBackoff returns the delay before retry attempt (1-based): attempt*base, capped at limit.
// A non-positive limit disables the cap.
func LinearBackoff(base time.Duration, attempt int, limit time.Duration) time.Duration {
	if base <= 0 || attempt <= 0 {
		return 0
	}
	d := time.Duration(attempt) * base
	if d/time.Duration(attempt) != base {
		d = limit
	}
	if limit > 0 && d > limit {
		d = limit
	}
	return d
}
