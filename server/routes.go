package server

import "net/http"

func (s *Server) initRoutes() {
	// LOGIN
	// The login handler is wrapped with SessionAttach so a successful login
	// also receives a refresh cookie.
	s.RegisterRouteHandler("POST "+RouteAuthLogin, ChainMiddleware(
		s.LoginHandler(),
		append(s.APIMiddleware(), s.RateLimitMiddleware(s.config.GetLoginRateLimit()), s.SessionAttachMiddleware)...,
	))

	// SESSION LIFECYCLE
	// Non-login routes use the looser default rate limit.
	defaultLimit := s.RateLimitMiddleware(s.config.GetDefaultRateLimit())
	s.RegisterRouteHandler("POST "+RouteAuthRefresh, ChainMiddleware(s.RefreshHandler(), append(s.APIMiddleware(), defaultLimit)...))
	s.RegisterRouteHandler("POST "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), append(s.APIMiddleware(), defaultLimit, s.RequireAuth())...))
	s.RegisterRouteHandler("POST "+RouteAuthLogoutAll, ChainMiddleware(s.LogoutAllHandler(), append(s.APIMiddleware(), defaultLimit, s.RequireAuth())...))

	// EXTERNAL IDENTITY
	s.RegisterRouteHandler("POST "+RouteAuthOAuthLogin, ChainMiddleware(
		s.OAuthLoginHandler(),
		append(s.APIMiddleware(), s.RateLimitMiddleware(s.config.GetLoginRateLimit()))...,
	))
	s.RegisterRouteHandler("POST "+RouteAuthOAuthCallback, ChainMiddleware(
		s.OAuthCallbackHandler(),
		append(s.APIMiddleware(), s.RateLimitMiddleware(s.config.GetLoginRateLimit()))...,
	))

	// ACCOUNT
	s.RegisterRouteHandler("POST "+RouteAuthChangePassword, ChainMiddleware(s.ChangePasswordHandler(), append(s.APIMiddleware(), defaultLimit, s.RequireAuth())...))

	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())

	// Preflight requests never reach the method-scoped patterns above.
	s.RegisterRouteHandler("OPTIONS "+RouteAuthPrefix+"/", ChainMiddleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}, s.CorsMiddleware))
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
