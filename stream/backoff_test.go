package stream

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackoffPolicy_ExponentialDoubling(t *testing.T) {
	b := newBackoffPolicy(500*time.Millisecond, 10*time.Second)
	now := time.Now()

	assert.Equal(t, 500*time.Millisecond, b.next(now), "expected first delay to equal base")
	assert.Equal(t, time.Second, b.next(now), "expected second delay to double")
	assert.Equal(t, 2*time.Second, b.next(now), "expected third delay to double again")
}

func TestBackoffPolicy_CapsAtMax(t *testing.T) {
	b := newBackoffPolicy(time.Second, 3*time.Second)
	now := time.Now()

	var last time.Duration
	for i := 0; i < 10; i++ {
		last = b.next(now)
	}
	require.LessOrEqual(t, last, 3*time.Second)
}

func TestBackoffPolicy_ResetOnSuccessfulOpen(t *testing.T) {
	b := newBackoffPolicy(500*time.Millisecond, 10*time.Second)
	now := time.Now()

	b.next(now)
	b.next(now)
	b.reset()

	assert.Equal(t, 500*time.Millisecond, b.next(now), "expected delay to reset to base after success")
}

func TestBackoffPolicy_ReconnectAtFloorDominates(t *testing.T) {
	b := newBackoffPolicy(500*time.Millisecond, 10*time.Second)
	now := time.Now()
	floor := now.Add(90 * time.Second)
	b.setReconnectAt(floor)

	d := b.next(now)
	assert.InDelta(t, 90.0, d.Seconds(), 1.0, "expected delay to honor reconnectAt floor")

	// The exponential arm must not have advanced while the floor governed.
	b.reconnectAt = time.Time{}
	assert.Equal(t, 500*time.Millisecond, b.next(now), "expected exponential arm untouched by floor path")
}

func TestBackoffPolicy_ReconnectAtClearedOnReset(t *testing.T) {
	b := newBackoffPolicy(500*time.Millisecond, 10*time.Second)
	now := time.Now()
	b.setReconnectAt(now.Add(time.Hour))
	b.reset()

	assert.Equal(t, 500*time.Millisecond, b.next(now), "expected reconnectAt to be cleared by reset")
}
