package refresh_test

import (
	"context"
	"testing"
	"time"

	"github.com/jrsteele09/go-session-server/token/refresh"
	refreshrepofake "github.com/jrsteele09/go-session-server/token/refresh/repofake"
	"github.com/stretchr/testify/require"
)

const testAccountID = "account-1"

func setupManager(t *testing.T) (*refresh.Manager, *refreshrepofake.FakeRefreshTokenRepo) {
	t.Helper()
	repo := refreshrepofake.NewFakeRefreshTokenRepo()
	return refresh.NewManager(repo, 48), repo
}

func setNow(t *testing.T, now time.Time) {
	t.Helper()
	refresh.NowTimeFunc = func() time.Time { return now }
	t.Cleanup(func() { refresh.NowTimeFunc = time.Now })
}

func TestCreateReturnsUniqueOpaqueTokens(t *testing.T) {
	manager, repo := setupManager(t)
	ctx := context.Background()

	first, err := manager.Create(ctx, testAccountID, time.Hour)
	require.NoError(t, err)
	second, err := manager.Create(ctx, testAccountID, time.Hour)
	require.NoError(t, err)

	require.NotEqual(t, first, second)
	require.GreaterOrEqual(t, len(first), 64) // 48 bytes base64url encoded
	require.Equal(t, 2, repo.Len())
}

func TestCreateRejectsNonPositiveLifetime(t *testing.T) {
	manager, repo := setupManager(t)

	_, err := manager.Create(context.Background(), testAccountID, 0)
	require.Error(t, err)
	_, err = manager.Create(context.Background(), testAccountID, -time.Hour)
	require.Error(t, err)
	require.Equal(t, 0, repo.Len())
}

func TestValidateReturnsOwningAccount(t *testing.T) {
	manager, _ := setupManager(t)
	ctx := context.Background()

	tokenStr, err := manager.Create(ctx, testAccountID, time.Hour)
	require.NoError(t, err)

	accountID, ok, err := manager.Validate(ctx, tokenStr)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, testAccountID, accountID)
}

func TestValidateUnknownTokenIsNotAnError(t *testing.T) {
	manager, _ := setupManager(t)

	accountID, ok, err := manager.Validate(context.Background(), "never-issued")
	require.NoError(t, err)
	require.False(t, ok)
	require.Empty(t, accountID)
}

func TestValidatePurgesExpiredToken(t *testing.T) {
	manager, repo := setupManager(t)
	ctx := context.Background()

	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	setNow(t, start)

	tokenStr, err := manager.Create(ctx, testAccountID, time.Hour)
	require.NoError(t, err)

	setNow(t, start.Add(2*time.Hour))

	_, ok, err := manager.Validate(ctx, tokenStr)
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, 0, repo.Len(), "expired token should be deleted on validation")

	// Second validation of the purged token behaves like an unknown token.
	_, ok, err = manager.Validate(ctx, tokenStr)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestValidateAtExactExpiryIsNotOK(t *testing.T) {
	manager, _ := setupManager(t)
	ctx := context.Background()

	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	setNow(t, start)

	tokenStr, err := manager.Create(ctx, testAccountID, time.Hour)
	require.NoError(t, err)

	setNow(t, start.Add(time.Hour))

	_, ok, err := manager.Validate(ctx, tokenStr)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRevokeIsIdempotent(t *testing.T) {
	manager, _ := setupManager(t)
	ctx := context.Background()

	tokenStr, err := manager.Create(ctx, testAccountID, time.Hour)
	require.NoError(t, err)

	revoked, err := manager.Revoke(ctx, tokenStr)
	require.NoError(t, err)
	require.True(t, revoked)

	revoked, err = manager.Revoke(ctx, tokenStr)
	require.NoError(t, err)
	require.False(t, revoked)
}

func TestRevokeAllOnlyAffectsOneAccount(t *testing.T) {
	manager, repo := setupManager(t)
	ctx := context.Background()

	for range 3 {
		_, err := manager.Create(ctx, testAccountID, time.Hour)
		require.NoError(t, err)
	}
	otherToken, err := manager.Create(ctx, "account-2", time.Hour)
	require.NoError(t, err)

	count, err := manager.RevokeAll(ctx, testAccountID)
	require.NoError(t, err)
	require.Equal(t, int64(3), count)
	require.Equal(t, 1, repo.Len())

	_, ok, err := manager.Validate(ctx, otherToken)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestCleanupExpired(t *testing.T) {
	manager, repo := setupManager(t)
	ctx := context.Background()

	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	setNow(t, start)

	_, err := manager.Create(ctx, testAccountID, time.Hour)
	require.NoError(t, err)
	longLived, err := manager.Create(ctx, testAccountID, 30*24*time.Hour)
	require.NoError(t, err)

	setNow(t, start.Add(2*time.Hour))

	removed, err := manager.CleanupExpired(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), removed)
	require.Equal(t, 1, repo.Len())

	_, ok, err := manager.Validate(ctx, longLived)
	require.NoError(t, err)
	require.True(t, ok)
}
