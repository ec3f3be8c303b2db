package server

const (
	RouteAuthPrefix = "/auth"

	RouteAuthLogin          = RouteAuthPrefix + "/login"
	RouteAuthRefresh        = RouteAuthPrefix + "/refresh"
	RouteAuthLogout         = RouteAuthPrefix + "/logout"
	RouteAuthLogoutAll      = RouteAuthPrefix + "/logout-all"
	RouteAuthOAuthLogin     = RouteAuthPrefix + "/oauth-login"
	RouteAuthOAuthCallback  = RouteAuthPrefix + "/oauth-callback"
	RouteAuthChangePassword = RouteAuthPrefix + "/change-password"

	RouteHealth = "/health"
)
