package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-session-server/token"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyAccountID stores the authenticated account ID
	ContextKeyAccountID ContextKey = "account_id"
)

// RequireAuth validates a Bearer access token and injects the account ID into
// the request context.
func (s *Server) RequireAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, http.StatusUnauthorized, "TOKEN_MISSING", "missing authorization header")
				return
			}

			raw, found := strings.CutPrefix(authHeader, "Bearer ")
			if !found {
				writeError(w, http.StatusUnauthorized, "TOKEN_INVALID", "authorization header must use the Bearer scheme")
				return
			}

			verification := s.issuer.Verify(raw)
			switch verification.State {
			case token.StateValid:
				// fall through
			case token.StateExpired:
				writeError(w, http.StatusUnauthorized, "TOKEN_EXPIRED", "access token has expired")
				return
			default:
				writeError(w, http.StatusUnauthorized, "TOKEN_INVALID", "access token is invalid")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyAccountID, verification.AccountID)
			next(w, r.WithContext(ctx))
		}
	}
}

// AccountIDFromContext returns the account ID set by RequireAuth.
func AccountIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ContextKeyAccountID).(string)
	return id, ok
}
