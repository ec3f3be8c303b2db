package server

import (
	"net/http"
	"strings"

	"github.com/jrsteele09/go-session-server/auth"
	"github.com/jrsteele09/go-session-server/internal/config"
	"github.com/jrsteele09/go-session-server/oauthverify"
	"github.com/jrsteele09/go-session-server/ratelimit"
	"github.com/jrsteele09/go-session-server/token"
	"github.com/jrsteele09/go-session-server/token/refresh"
	"github.com/rs/zerolog/log"
)

type Server struct {
	env           string // Environment (e.g., "DEV", "PROD")
	mux           *http.ServeMux
	routes        []string
	config        config.Config
	sessions      *auth.SessionService
	issuer        *token.Issuer
	refreshTokens *refresh.Manager
	exchanger     oauthverify.CodeExchanger
	limiter       ratelimit.Store
}

type Option func(*Server)

// WithRateLimitStore swaps the default in-process counter store for a shared
// one.
func WithRateLimitStore(store ratelimit.Store) Option {
	return func(s *Server) {
		s.limiter = store
	}
}

// WithCodeExchanger enables the authorization-code variant of external login.
func WithCodeExchanger(exchanger oauthverify.CodeExchanger) Option {
	return func(s *Server) {
		s.exchanger = exchanger
	}
}

func New(cfg config.Config, sessions *auth.SessionService, issuer *token.Issuer, refreshTokens *refresh.Manager, options ...Option) *Server {
	s := &Server{
		mux:           http.NewServeMux(),
		config:        cfg,
		sessions:      sessions,
		issuer:        issuer,
		refreshTokens: refreshTokens,
		limiter:       ratelimit.NewMemoryStore(),
	}
	s.env = cfg.GetEnv()

	for _, opt := range options {
		opt(s)
	}

	s.initRoutes()
	s.logRoutes()

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)
		if len(parts) > 1 {
			log.Debug().Str("method", parts[0]).Str("path", parts[1]).Msg("route registered")
		} else {
			log.Debug().Str("path", parts[0]).Msg("route registered")
		}
	}
}
