package backoff

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExponential(t *testing.T) {
	tests := []struct {
		name     string
		base     time.Duration
		attempt  int
		expected time.Duration
	}{
		{name: "attempt 0 returns base", base: 10 * time.Millisecond, attempt: 0, expected: 10 * time.Millisecond},
		{name: "attempt 3 is 8x base", base: 10 * time.Millisecond, attempt: 3, expected: 80 * time.Millisecond},
		{name: "negative attempt treated as 0", base: 10 * time.Millisecond, attempt: -2, expected: 10 * time.Millisecond},
		{name: "zero base returns 0", base: 0, attempt: 4, expected: 0},
		{name: "overflow saturates", base: time.Hour, attempt: 62, expected: time.Duration(math.MaxInt64)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Exponential(tt.base, tt.attempt))
		})
	}
}

func TestFullJitterRange(t *testing.T) {
	for i := 0; i < 200; i++ {
		d := FullJitter(50 * time.Millisecond)
		assert.GreaterOrEqual(t, d, time.Duration(0))
		assert.Less(t, d, 50*time.Millisecond)
	}
	assert.Zero(t, FullJitter(0))
	assert.Zero(t, FullJitter(-time.Second))
}

func TestDelayIsCapped(t *testing.T) {
	for attempt := 0; attempt < 20; attempt++ {
		assert.Less(t, Delay(time.Millisecond, 40*time.Millisecond, attempt), 40*time.Millisecond)
	}
}

func TestSleepHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := Sleep(ctx, time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)

	assert.NoError(t, Sleep(context.Background(), time.Millisecond))
}
