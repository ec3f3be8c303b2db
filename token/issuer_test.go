package token_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-session-server/token"
	"github.com/stretchr/testify/require"
)

const (
	secretStr     = "test-secret-key"
	testAccountID = "account-1"
)

func TestIssueAndVerify(t *testing.T) {
	issuer := token.NewIssuer(token.NewHMACSigner(secretStr))

	raw, err := issuer.Issue(testAccountID)
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	verification := issuer.Verify(raw)
	require.Equal(t, token.StateValid, verification.State)
	require.Equal(t, testAccountID, verification.AccountID)
}

func TestVerifyExpiredToken(t *testing.T) {
	issued := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	now := issued

	issuer := token.NewIssuer(token.NewHMACSigner(secretStr),
		token.WithExpiry(15*time.Minute),
		token.WithNowFunc(func() time.Time { return now }),
	)

	raw, err := issuer.Issue(testAccountID)
	require.NoError(t, err)

	now = issued.Add(14 * time.Minute)
	require.Equal(t, token.StateValid, issuer.Verify(raw).State)

	now = issued.Add(16 * time.Minute)
	verification := issuer.Verify(raw)
	require.Equal(t, token.StateExpired, verification.State)
	require.Empty(t, verification.AccountID)
}

func TestVerifyMalformedToken(t *testing.T) {
	issuer := token.NewIssuer(token.NewHMACSigner(secretStr))

	for _, raw := range []string{"", "garbage", "a.b.c"} {
		require.Equal(t, token.StateMalformed, issuer.Verify(raw).State)
	}
}

func TestVerifyWrongKey(t *testing.T) {
	issuer := token.NewIssuer(token.NewHMACSigner(secretStr))
	other := token.NewIssuer(token.NewHMACSigner("a-different-secret"))

	raw, err := other.Issue(testAccountID)
	require.NoError(t, err)

	require.Equal(t, token.StateMalformed, issuer.Verify(raw).State)
}

func TestPeekSubjectUnverified(t *testing.T) {
	issuer := token.NewIssuer(token.NewHMACSigner(secretStr))

	raw, err := issuer.Issue(testAccountID)
	require.NoError(t, err)

	sub, err := issuer.PeekSubjectUnverified(raw)
	require.NoError(t, err)
	require.Equal(t, testAccountID, sub)
}

func TestPeekSubjectUnverifiedIgnoresExpiry(t *testing.T) {
	past := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	issuer := token.NewIssuer(token.NewHMACSigner(secretStr),
		token.WithNowFunc(func() time.Time { return past }),
	)

	raw, err := issuer.Issue(testAccountID)
	require.NoError(t, err)
	require.Equal(t, token.StateExpired, token.NewIssuer(token.NewHMACSigner(secretStr)).Verify(raw).State)

	sub, err := issuer.PeekSubjectUnverified(raw)
	require.NoError(t, err)
	require.Equal(t, testAccountID, sub)
}

func TestPeekSubjectUnverifiedRejectsGarbage(t *testing.T) {
	issuer := token.NewIssuer(token.NewHMACSigner(secretStr))

	_, err := issuer.PeekSubjectUnverified("not-a-token")
	require.Error(t, err)
}
