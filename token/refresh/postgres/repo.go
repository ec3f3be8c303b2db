package refreshpostgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jrsteele09/go-session-server/token/refresh"
)

var _ refresh.Repo = (*Repo)(nil)

// Repo is the postgres-backed refresh token repository. Every operation is a
// single statement, so each refresh-token operation is its own transaction.
type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Insert(ctx context.Context, rt *refresh.StoredRefreshToken) error {
	query := `
		INSERT INTO refresh_tokens (token, account_id, created_at, expires_at)
		VALUES ($1, $2, $3, $4)`

	_, err := r.db.Exec(ctx, query, rt.Token, rt.AccountID, rt.CreatedAt, rt.ExpiresAt)
	if err != nil {
		return fmt.Errorf("insert refresh token: %w", err)
	}
	return nil
}

func (r *Repo) Get(ctx context.Context, token string) (*refresh.StoredRefreshToken, error) {
	query := `
		SELECT token, account_id, created_at, expires_at
		FROM refresh_tokens
		WHERE token = $1`

	var rt refresh.StoredRefreshToken
	err := r.db.QueryRow(ctx, query, token).Scan(&rt.Token, &rt.AccountID, &rt.CreatedAt, &rt.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, refresh.ErrNotFound
		}
		return nil, fmt.Errorf("select refresh token: %w", err)
	}
	return &rt, nil
}

func (r *Repo) Delete(ctx context.Context, token string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM refresh_tokens WHERE token = $1`, token)
	if err != nil {
		return false, fmt.Errorf("delete refresh token: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *Repo) DeleteByAccountID(ctx context.Context, accountID string) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM refresh_tokens WHERE account_id = $1`, accountID)
	if err != nil {
		return 0, fmt.Errorf("delete refresh tokens for account: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *Repo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM refresh_tokens WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired refresh tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
