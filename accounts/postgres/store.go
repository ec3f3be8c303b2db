package accountspostgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jrsteele09/go-session-server/accounts"
)

const uniqueViolationCode = "23505"

var _ accounts.Store = (*Store)(nil)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, account *accounts.Account) error {
	query := `
		INSERT INTO accounts (id, email, password_hash, active, verified, superuser, external_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	err := s.db.QueryRow(ctx, query,
		account.ID, account.Email, account.PasswordHash,
		account.Active, account.Verified, account.Superuser, account.ExternalID,
	).Scan(&account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return accounts.ErrEmailTaken
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (s *Store) GetByID(ctx context.Context, id string) (*accounts.Account, error) {
	return s.getBy(ctx, "id = $1", id)
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*accounts.Account, error) {
	return s.getBy(ctx, "email = $1", email)
}

func (s *Store) GetByExternalID(ctx context.Context, externalID string) (*accounts.Account, error) {
	return s.getBy(ctx, "external_id = $1", externalID)
}

func (s *Store) getBy(ctx context.Context, where string, arg any) (*accounts.Account, error) {
	query := `
		SELECT id, email, password_hash, active, verified, superuser, external_id, created_at, updated_at
		FROM accounts
		WHERE ` + where

	var account accounts.Account
	err := s.db.QueryRow(ctx, query, arg).Scan(
		&account.ID, &account.Email, &account.PasswordHash,
		&account.Active, &account.Verified, &account.Superuser,
		&account.ExternalID, &account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, accounts.ErrNotFound
		}
		return nil, fmt.Errorf("select account: %w", err)
	}
	return &account, nil
}

func (s *Store) SetExternalID(ctx context.Context, id, externalID string) error {
	return s.patch(ctx, `UPDATE accounts SET external_id = $2, updated_at = NOW() WHERE id = $1`, id, externalID)
}

func (s *Store) SetPasswordHash(ctx context.Context, id, passwordHash string) error {
	return s.patch(ctx, `UPDATE accounts SET password_hash = $2, updated_at = NOW() WHERE id = $1`, id, passwordHash)
}

func (s *Store) patch(ctx context.Context, query string, args ...any) error {
	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return accounts.ErrNotFound
	}
	return nil
}
