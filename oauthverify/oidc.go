package oauthverify

import (
	"context"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

var (
	_ Verifier      = (*OidcVerifier)(nil)
	_ CodeExchanger = (*OidcVerifier)(nil)
)

// OidcVerifier verifies identity tokens against an OIDC provider's published
// keys. Discovery runs once at construction; per-token verification is local
// apart from JWKS refreshes handled by the oidc library.
type OidcVerifier struct {
	provider     *oidc.Provider
	verifier     *oidc.IDTokenVerifier
	oauth2Config *oauth2.Config
}

// NewOidcVerifier discovers the provider at issuerURL and prepares both the
// ID token verifier and the oauth2 config for code exchange.
func NewOidcVerifier(ctx context.Context, issuerURL, clientID, clientSecret, redirectURL string) (*OidcVerifier, error) {
	provider, err := oidc.NewProvider(ctx, issuerURL)
	if err != nil {
		return nil, errors.Wrap(err, "NewOidcVerifier oidc.NewProvider")
	}

	return &OidcVerifier{
		provider: provider,
		verifier: provider.Verifier(&oidc.Config{ClientID: clientID}),
		oauth2Config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
	}, nil
}

func (v *OidcVerifier) Verify(ctx context.Context, rawIDToken string) (*Claims, error) {
	idToken, err := v.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidToken, err.Error())
	}

	var claims struct {
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, errors.Wrap(ErrInvalidToken, err.Error())
	}

	return &Claims{
		Subject:       idToken.Subject,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
	}, nil
}

// Exchange trades an authorization code for provider tokens and verifies the
// ID token from the response.
func (v *OidcVerifier) Exchange(ctx context.Context, code, codeVerifier string) (*Claims, error) {
	opts := []oauth2.AuthCodeOption{}
	if codeVerifier != "" {
		opts = append(opts, oauth2.SetAuthURLParam("code_verifier", codeVerifier))
	}

	oauth2Token, err := v.oauth2Config.Exchange(ctx, code, opts...)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidToken, err.Error())
	}

	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		return nil, errors.Wrap(ErrInvalidToken, "no id_token in exchange response")
	}

	return v.Verify(ctx, rawIDToken)
}

// AuthCodeURL builds the provider authorization URL for front-channel login.
func (v *OidcVerifier) AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string {
	return v.oauth2Config.AuthCodeURL(state, opts...)
}
