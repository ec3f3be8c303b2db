package config

type OidcConfig interface {
	GetOidcIssuerURL() string
	GetOidcClientID() string
	GetOidcClientSecret() string
	GetOidcRedirectURL() string
	GetOidcEnabled() bool
}

type Oidc struct{}

var _ OidcConfig = Oidc{}

func (Oidc) GetOidcIssuerURL() string {
	return GetEnv("OIDC_ISSUER_URL", "")
}

func (Oidc) GetOidcClientID() string {
	return GetEnv("OIDC_CLIENT_ID", "")
}

func (Oidc) GetOidcClientSecret() string {
	return GetEnv("OIDC_CLIENT_SECRET", "")
}

func (o Oidc) GetOidcRedirectURL() string {
	return GetEnv("OIDC_REDIRECT_URL", EnvVars{}.GetBaseURL()+"/auth/oauth-callback")
}

// GetOidcEnabled reports whether external identity login is configured. When
// false the oauth endpoints answer 503.
func (o Oidc) GetOidcEnabled() bool {
	return o.GetOidcIssuerURL() != "" && o.GetOidcClientID() != ""
}
