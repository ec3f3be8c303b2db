package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/jrsteele09/go-session-server/ratelimit"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreAllowsWithinLimit(t *testing.T) {
	store := ratelimit.NewMemoryStore()
	limit := ratelimit.Limit{Requests: 3, Window: time.Minute}
	ctx := context.Background()

	for range 3 {
		require.True(t, store.Allow(ctx, "key", limit))
	}
	require.False(t, store.Allow(ctx, "key", limit))
	require.False(t, store.Allow(ctx, "key", limit))
}

func TestMemoryStoreKeysAreIndependent(t *testing.T) {
	store := ratelimit.NewMemoryStore()
	limit := ratelimit.Limit{Requests: 1, Window: time.Minute}
	ctx := context.Background()

	require.True(t, store.Allow(ctx, "key-a", limit))
	require.False(t, store.Allow(ctx, "key-a", limit))
	require.True(t, store.Allow(ctx, "key-b", limit))
}

func TestMemoryStoreWindowRollover(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	store := ratelimit.NewMemoryStore(ratelimit.WithMemoryNowFunc(func() time.Time { return now }))
	limit := ratelimit.Limit{Requests: 1, Window: time.Minute}
	ctx := context.Background()

	require.True(t, store.Allow(ctx, "key", limit))
	require.False(t, store.Allow(ctx, "key", limit))

	now = now.Add(time.Minute)
	require.True(t, store.Allow(ctx, "key", limit))
}

func TestMemoryStoreReset(t *testing.T) {
	store := ratelimit.NewMemoryStore()
	limit := ratelimit.Limit{Requests: 1, Window: time.Minute}
	ctx := context.Background()

	require.True(t, store.Allow(ctx, "key", limit))
	require.False(t, store.Allow(ctx, "key", limit))

	require.NoError(t, store.Reset(ctx))
	require.True(t, store.Allow(ctx, "key", limit))
}
