package config

import "time"

type TokenConfig interface {
	GetSecretKey() string
	GetAccessTokenExpiry() time.Duration
	GetRefreshTokenExpiry() time.Duration
	GetRememberMeRefreshTokenExpiry() time.Duration
	GetRefreshTokenLength() int
}

type Tokens struct{}

var _ TokenConfig = Tokens{}

// GetSecretKey returns the HMAC signing secret for access tokens. An empty
// value is a startup-fatal misconfiguration, checked in cmd/server.
func (Tokens) GetSecretKey() string {
	return GetEnv("SECRET_KEY", "")
}

func (Tokens) GetAccessTokenExpiry() time.Duration {
	return GetDurationEnv("ACCESS_TOKEN_EXPIRY", 1*time.Hour)
}

func (Tokens) GetRefreshTokenExpiry() time.Duration {
	return GetDurationEnv("REFRESH_TOKEN_EXPIRY", 7*24*time.Hour)
}

// GetRememberMeRefreshTokenExpiry returns the extended refresh lifetime used
// when the client sets remember_me on login.
func (Tokens) GetRememberMeRefreshTokenExpiry() time.Duration {
	return GetDurationEnv("REMEMBER_ME_REFRESH_TOKEN_EXPIRY", 30*24*time.Hour)
}

func (Tokens) GetRefreshTokenLength() int {
	return GetIntEnv("REFRESH_TOKEN_LENGTH", 48) // 48 bytes = 384 bits
}
