package auth

import (
	"context"

	"github.com/jrsteele09/go-session-server/accounts"
	"github.com/pkg/errors"
)

var _ CredentialStore = (*StoreCredentials)(nil)

// StoreCredentials adapts an accounts.Store into a CredentialStore using the
// bcrypt helpers from the accounts package.
type StoreCredentials struct {
	store accounts.Store
}

func NewStoreCredentials(store accounts.Store) *StoreCredentials {
	return &StoreCredentials{store: store}
}

// VerifyPassword returns InvalidCredentialsErr for both an unknown email and
// a wrong password, so callers cannot distinguish the two.
func (c *StoreCredentials) VerifyPassword(ctx context.Context, email, password string) (*accounts.Account, error) {
	account, err := c.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, accounts.ErrNotFound) {
			return nil, InvalidCredentialsErr
		}
		return nil, errors.Wrap(err, "StoreCredentials.VerifyPassword GetByEmail")
	}

	if !accounts.CheckPasswordHash(password, account.PasswordHash) {
		return nil, InvalidCredentialsErr
	}

	return account, nil
}
