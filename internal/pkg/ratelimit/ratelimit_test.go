package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimiter(t *testing.T) (*RateLimiter, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRateLimiter(client, "test"), srv
}

func TestAllowWithinWindow(t *testing.T) {
	limiter, _ := newLimiter(t)
	ctx := context.Background()

	ok, remaining, err := limiter.Allow(ctx, "ip-1", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(1), remaining)

	ok, _, err = limiter.Allow(ctx, "ip-1", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, remaining, err = limiter.Allow(ctx, "ip-1", 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, remaining)

	ok, _, err = limiter.Allow(ctx, "ip-2", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "keys are counted independently")
}

func TestWindowExpiresAndReset(t *testing.T) {
	limiter, srv := newLimiter(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, _, err := limiter.Allow(ctx, "ip-1", 1, time.Minute)
		require.NoError(t, err)
	}
	srv.FastForward(2 * time.Minute)

	ok, _, err := limiter.Allow(ctx, "ip-1", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	_, _, _ = limiter.Allow(ctx, "ip-1", 1, time.Minute)
	require.NoError(t, limiter.Reset(ctx, "ip-1"))
	ok, _, err = limiter.Allow(ctx, "ip-1", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAllowFailsWhenRedisDown(t *testing.T) {
	limiter, srv := newLimiter(t)
	srv.Close()

	ok, _, err := limiter.Allow(context.Background(), "ip-1", 1, time.Minute)
	assert.Error(t, err)
	assert.False(t, ok)
}
