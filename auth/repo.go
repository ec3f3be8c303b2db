package auth

import (
	"context"

	"github.com/jrsteele09/go-session-server/accounts"
)

// CredentialStore is the narrow face of the account system this core logs
// users in through: verify a password, get back the account. Hashing
// algorithm and account CRUD stay on the other side of this interface.
type CredentialStore interface {
	VerifyPassword(ctx context.Context, email, password string) (*accounts.Account, error)
}
