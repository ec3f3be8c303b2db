package accounts_test

import (
	"testing"

	"github.com/jrsteele09/go-session-server/accounts"
	"github.com/jrsteele09/go-session-server/internal/utils"
	"github.com/stretchr/testify/require"
)

func TestValidatePasswordStrength(t *testing.T) {
	t.Run("valid password", func(t *testing.T) {
		require.NoError(t, accounts.ValidatePasswordStrength("Password123"))
	})

	t.Run("too short", func(t *testing.T) {
		err := accounts.ValidatePasswordStrength("Pw1")
		require.Error(t, err)
		require.Contains(t, err.Error(), "at least 8 characters")
	})

	t.Run("no uppercase", func(t *testing.T) {
		require.Error(t, accounts.ValidatePasswordStrength("password123"))
	})

	t.Run("no lowercase", func(t *testing.T) {
		require.Error(t, accounts.ValidatePasswordStrength("PASSWORD123"))
	})

	t.Run("no number", func(t *testing.T) {
		require.Error(t, accounts.ValidatePasswordStrength("PasswordOnly"))
	})
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := accounts.HashPassword("Password123")
	require.NoError(t, err)
	require.NotEqual(t, "Password123", hash)

	require.True(t, accounts.CheckPasswordHash("Password123", hash))
	require.False(t, accounts.CheckPasswordHash("WrongPassword1", hash))
}

func TestRandomPasswordHash(t *testing.T) {
	first, err := accounts.RandomPasswordHash()
	require.NoError(t, err)
	second, err := accounts.RandomPasswordHash()
	require.NoError(t, err)

	require.NotEqual(t, first, second)
	// Nothing should ever match a random hash by guessing common inputs.
	require.False(t, accounts.CheckPasswordHash("", first))
	require.False(t, accounts.CheckPasswordHash("password", first))
}

func TestLinked(t *testing.T) {
	account := &accounts.Account{}
	require.False(t, account.Linked())

	account.ExternalID = utils.Ptr("")
	require.False(t, account.Linked())

	account.ExternalID = utils.Ptr("provider|abc123")
	require.True(t, account.Linked())
}
