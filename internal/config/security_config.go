package config

import "time"

type SecurityConfig interface {
	GetLoginRateLimit() int
	GetDefaultRateLimit() int
	GetRateLimitWindow() time.Duration
	GetEnableRateLimiting() bool
}

type Security struct{}

var _ SecurityConfig = Security{}

func (Security) GetLoginRateLimit() int {
	return GetIntEnv("RATE_LIMIT_LOGIN", 5)
}

func (Security) GetDefaultRateLimit() int {
	return GetIntEnv("RATE_LIMIT_DEFAULT", 100)
}

func (Security) GetRateLimitWindow() time.Duration {
	return GetDurationEnv("RATE_LIMIT_WINDOW", time.Minute)
}

func (Security) GetEnableRateLimiting() bool {
	return GetBoolEnv("RATE_LIMIT_ENABLED", true)
}
