// Package backoff computes retry delays using exponential backoff with full jitter.
package backoff

import (
	"context"
	"math"
	"math/rand"
	"time"
)

const maxShift = 62

// Exponential returns base * 2^attempt, saturating instead of overflowing.
// Negative attempts count as zero.
func Exponential(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}
	if attempt < 0 {
		attempt = 0
	} else if attempt > maxShift {
		attempt = maxShift
	}

	multiplier := int64(1) << attempt
	if int64(base) > math.MaxInt64/multiplier {
		return time.Duration(math.MaxInt64)
	}
	return base * time.Duration(multiplier)
}

// FullJitter returns a random duration in [0, delay)
func FullJitter(delay time.Duration) time.Duration {
	if delay <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(delay))) // #nosec G404 -- jitter only
}

// Delay is the jittered wait before retry number attempt, capped at limit
func Delay(base, limit time.Duration, attempt int) time.Duration {
	d := Exponential(base, attempt)
	if limit > 0 && d > limit {
		d = limit
	}
	return FullJitter(d)
}

// Sleep waits for d or until ctx is done
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
