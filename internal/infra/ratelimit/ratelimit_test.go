package ratelimit

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func TestMemoryLimiterWindow(t *testing.T) {
	c := &clock{t: time.Unix(1_700_000_000, 0)}
	limiter := NewMemory(MemoryConfig{Now: c.now})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		d, err := limiter.Allow(ctx, "k", 2, time.Minute)
		require.NoError(t, err)
		assert.True(t, d.Allowed)
		assert.Equal(t, 1-i, d.Remaining)
	}
	d, err := limiter.Allow(ctx, "k", 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, c.t.Add(time.Minute), d.ResetAt)

	c.t = c.t.Add(time.Minute)
	d, err = limiter.Allow(ctx, "k", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestMemoryLimiterDisabledLimit(t *testing.T) {
	d, err := NewMemory(MemoryConfig{}).Allow(context.Background(), "k", 0, time.Minute)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestMemoryLimiterCapacity(t *testing.T) {
	c := &clock{t: time.Unix(1_700_000_000, 0)}
	limiter := NewMemory(MemoryConfig{Now: c.now, MaxKeys: 2})
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err := limiter.Allow(ctx, fmt.Sprintf("k%d", i), 1, time.Second)
		require.NoError(t, err)
	}
	_, err := limiter.Allow(ctx, "k3", 1, time.Second)
	require.ErrorIs(t, err, ErrCapacityExceeded)

	c.t = c.t.Add(time.Second)
	_, err = limiter.Allow(ctx, "k3", 1, time.Second)
	require.NoError(t, err)
}

func TestDecisionFromReply(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	d, err := decisionFromReply([]any{int64(3), int64(1500)}, 2, now)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)
	assert.Equal(t, now.Add(1500*time.Millisecond), d.ResetAt)

	_, err = decisionFromReply("OK", 2, now)
	require.Error(t, err)
}
