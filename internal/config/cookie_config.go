package config

import (
	"net/http"
	"strings"
)

type CookieConfig interface {
	GetRefreshCookieName() string
	GetRefreshCookiePath() string
	GetRefreshCookieSecure() bool
	GetRefreshCookieSameSite() http.SameSite
	GetCSRFCookieName() string
}

type Cookies struct{}

var _ CookieConfig = Cookies{}

func (Cookies) GetRefreshCookieName() string {
	return GetEnv("REFRESH_COOKIE_NAME", "refresh_token")
}

// GetRefreshCookiePath scopes the refresh cookie to the auth endpoints only,
// so it is never sent with ordinary API requests.
func (Cookies) GetRefreshCookiePath() string {
	return GetEnv("REFRESH_COOKIE_PATH", "/auth")
}

func (c Cookies) GetRefreshCookieSecure() bool {
	return GetBoolEnv("REFRESH_COOKIE_SECURE", EnvVars{}.GetEnv() == "PROD")
}

func (Cookies) GetRefreshCookieSameSite() http.SameSite {
	switch strings.ToLower(GetEnv("REFRESH_COOKIE_SAMESITE", "lax")) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

func (Cookies) GetCSRFCookieName() string {
	return GetEnv("CSRF_COOKIE_NAME", "csrftoken")
}
