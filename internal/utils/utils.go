package utils

import (
	"context"
	"time"
)

// WaitFor pauses for d or until ctx ends, whichever comes first. A
// non-positive d returns at once, even for a finished ctx.
func WaitFor(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
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
