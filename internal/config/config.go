package config

type Config interface {
	EnvConfig
	CorsConfig
	TokenConfig
	CookieConfig
	SecurityConfig
	OidcConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetDatabaseURL() string
	GetBaseURL() string
	GetEnv() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	Tokens
	Cookies
	Security
	Oidc
}

func New() Config {
	return mainConfig{}
}
