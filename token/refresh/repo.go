package refresh

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Repo.Get when the token string is unknown.
var ErrNotFound = errors.New("refresh token not found")

// StoredRefreshToken represents the server-side storage of a refresh token.
// The client only ever receives the Token field (an opaque random string);
// the remaining fields are server-side metadata. Rows are never mutated after
// creation - a token is either present and unchanged, or deleted.
type StoredRefreshToken struct {
	Token     string    // The opaque random token string (sent to client)
	AccountID string    // Owning account
	CreatedAt time.Time // Issue time
	ExpiresAt time.Time // CreatedAt plus the lifetime chosen at creation
}

// Repo manages server-side storage of refresh tokens, keyed by the token
// string.
type Repo interface {
	Insert(ctx context.Context, refreshToken *StoredRefreshToken) error
	Get(ctx context.Context, token string) (*StoredRefreshToken, error)
	// Delete removes a token, reporting whether a row existed.
	Delete(ctx context.Context, token string) (bool, error)
	// DeleteByAccountID removes every token owned by the account and returns
	// the number of rows removed.
	DeleteByAccountID(ctx context.Context, accountID string) (int64, error)
	// DeleteExpired removes every token whose expiry is at or before now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
