package ratelimit

import (
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newLimiter(t *testing.T) (Limiter, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return Limiter{Client: client, Prefix: "rl:test:"}, srv
}

func TestAllowWithinLimit(t *testing.T) {
	l, _ := newLimiter(t)
	ctx := t.Context()

	for i := 0; i < 3; i++ {
		allowed, remaining, _, err := l.Allow(ctx, "1.2.3.4", time.Minute, 3)
		require.NoError(t, err)
		require.True(t, allowed, "request %d should be allowed", i+1)
		require.Equal(t, 3-(i+1), remaining)
	}
}

func TestAllowBlocksOverLimit(t *testing.T) {
	l, _ := newLimiter(t)
	ctx := t.Context()

	for i := 0; i < 2; i++ {
		allowed, _, _, err := l.Allow(ctx, "1.2.3.4", time.Minute, 2)
		require.NoError(t, err)
		require.True(t, allowed)
	}
	allowed, remaining, reset, err := l.Allow(ctx, "1.2.3.4", time.Minute, 2)
	require.NoError(t, err)
	require.False(t, allowed)
	require.Zero(t, remaining)
	require.True(t, reset.After(time.Now()))
}

func TestAllowIsolatesKeys(t *testing.T) {
	l, _ := newLimiter(t)
	ctx := t.Context()

	allowed, _, _, err := l.Allow(ctx, "1.2.3.4", time.Minute, 1)
	require.NoError(t, err)
	require.True(t, allowed)

	allowed, _, _, err = l.Allow(ctx, "5.6.7.8", time.Minute, 1)
	require.NoError(t, err)
	require.True(t, allowed, "a different client has its own window")
}

func TestAllowWithoutClientFailsOpen(t *testing.T) {
	l := Limiter{}
	allowed, _, _, err := l.Allow(t.Context(), "1.2.3.4", time.Minute, 5)
	require.NoError(t, err)
	require.True(t, allowed)
}
