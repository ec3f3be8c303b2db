package accounts

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when no account matches the lookup.
	ErrNotFound = errors.New("account not found")
	// ErrEmailTaken is returned by Create when the email violates the unique
	// constraint. Callers linking external identities retry as a lookup.
	ErrEmailTaken = errors.New("email already registered")
)

// Store owns account records. The token-lifecycle core only reads accounts
// and patches the external identity field; everything else about account CRUD
// belongs to the surrounding system.
type Store interface {
	Create(ctx context.Context, account *Account) error
	GetByID(ctx context.Context, id string) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	GetByExternalID(ctx context.Context, externalID string) (*Account, error)
	SetExternalID(ctx context.Context, id, externalID string) error
	SetPasswordHash(ctx context.Context, id, passwordHash string) error
}
