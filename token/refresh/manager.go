package refresh

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/pkg/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

const defaultTokenLength = 48 // bytes of entropy, 384 bits

// Manager handles refresh token creation, validation, and revocation.
//
// A refresh token is the stateful half of the credential pair: it lives in the
// database and can be revoked instantly, unlike the stateless access tokens it
// is exchanged for. There is deliberately no rotation - validating a token
// does not consume or replace it.
type Manager struct {
	repo        Repo
	tokenLength int
}

// NewManager creates a new refresh token manager. tokenLength is the number
// of random bytes per token; values below 32 (256 bits) are raised to the
// default.
func NewManager(repo Repo, tokenLength int) *Manager {
	if tokenLength < 32 {
		tokenLength = defaultTokenLength
	}
	return &Manager{
		repo:        repo,
		tokenLength: tokenLength,
	}
}

// Create generates a new refresh token for the account and stores it with an
// expiry of now plus lifetime. The lifetime is caller-supplied per request -
// this is what makes "remember me" possible - not a global constant.
func (m *Manager) Create(ctx context.Context, accountID string, lifetime time.Duration) (string, error) {
	if lifetime <= 0 {
		return "", errors.New("Manager.Create non-positive lifetime")
	}

	tokenBytes := make([]byte, m.tokenLength)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", errors.Wrap(err, "Manager.Create rand.Read")
	}

	tokenStr := base64.RawURLEncoding.EncodeToString(tokenBytes)
	now := NowTimeFunc()
	if err := m.repo.Insert(ctx, &StoredRefreshToken{
		Token:     tokenStr,
		AccountID: accountID,
		CreatedAt: now,
		ExpiresAt: now.Add(lifetime),
	}); err != nil {
		return "", errors.Wrap(err, "Manager.Create Insert")
	}

	return tokenStr, nil
}

// Validate looks up a token and returns the owning account ID. An unknown
// token is simply not ok, never an error. An expired token is deleted on the
// spot (lazy cleanup, no background sweeper required) and reported not ok;
// a second call on the same token is still just not ok.
func (m *Manager) Validate(ctx context.Context, token string) (string, bool, error) {
	rt, err := m.repo.Get(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", false, nil
		}
		return "", false, errors.Wrap(err, "Manager.Validate Get")
	}

	if !rt.ExpiresAt.After(NowTimeFunc()) {
		if _, err := m.repo.Delete(ctx, token); err != nil {
			return "", false, errors.Wrap(err, "Manager.Validate Delete expired")
		}
		return "", false, nil
	}

	return rt.AccountID, true, nil
}

// Revoke deletes the token if present. Idempotent: revoking an unknown token
// reports false without error.
func (m *Manager) Revoke(ctx context.Context, token string) (bool, error) {
	deleted, err := m.repo.Delete(ctx, token)
	if err != nil {
		return false, errors.Wrap(err, "Manager.Revoke Delete")
	}
	return deleted, nil
}

// RevokeAll deletes every refresh token owned by the account and returns the
// number revoked. Used for "sign out everywhere".
func (m *Manager) RevokeAll(ctx context.Context, accountID string) (int64, error) {
	count, err := m.repo.DeleteByAccountID(ctx, accountID)
	if err != nil {
		return 0, errors.Wrap(err, "Manager.RevokeAll DeleteByAccountID")
	}
	return count, nil
}

// CleanupExpired removes all expired tokens in one pass. Optional maintenance
// call; expired tokens are also purged lazily by Validate.
func (m *Manager) CleanupExpired(ctx context.Context) (int64, error) {
	count, err := m.repo.DeleteExpired(ctx, NowTimeFunc())
	if err != nil {
		return 0, errors.Wrap(err, "Manager.CleanupExpired DeleteExpired")
	}
	return count, nil
}
