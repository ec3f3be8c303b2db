// Package oauthverify consumes provider-issued identity tokens. Provider
// trust configuration and key fetching live behind the Verifier interface;
// the session core only sees verified claims.
package oauthverify

import (
	"context"
	"errors"
)

// ErrInvalidToken is returned when an identity token fails signature, expiry,
// or audience checks.
var ErrInvalidToken = errors.New("invalid identity token")

// Claims are the verified assertions extracted from a provider identity
// token. Subject is the provider-scoped stable user ID.
type Claims struct {
	Subject       string
	Email         string
	EmailVerified bool
}

// Verifier validates a raw identity token and returns its claims.
type Verifier interface {
	Verify(ctx context.Context, rawIDToken string) (*Claims, error)
}

// CodeExchanger supports the authorization-code variant of external login:
// the provider redirects back with a code, which is exchanged for tokens and
// verified in one step.
type CodeExchanger interface {
	Exchange(ctx context.Context, code, codeVerifier string) (*Claims, error)
}
