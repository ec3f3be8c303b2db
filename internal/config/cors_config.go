package config

import "strings"

type Cors struct{}

var _ CorsConfig = Cors{}

type AllowedOrigins map[string]struct{}
type nullValue = struct{}

func (a AllowedOrigins) IsAllowedOrigin(origin string) bool {
	_, ok := a[origin]
	return ok
}

func (a AllowedOrigins) String() string {
	var origins []string
	for k := range a {
		origins = append(origins, k)
	}
	return strings.Join(origins, ", ")
}

func (Cors) GetAllowedOrigins() AllowedOrigins {
	origins := AllowedOrigins{
		"http://localhost:3000": nullValue{},
		"http://127.0.0.1:3000": nullValue{},
	}
	for _, o := range strings.Split(GetEnv("CORS_ORIGINS", ""), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			origins[o] = nullValue{}
		}
	}
	return origins
}

func (Cors) GetAllowedMethods() string {
	return "GET, POST, PUT, PATCH, DELETE"
}

func (Cors) GetAllowedHeaders() string {
	return "Content-Type, Authorization, X-CSRF-Token"
}
