package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/jrsteele09/go-session-server/auth"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// LoginHandler exchanges credentials for an access token. The refresh cookie
// is attached by SessionAttachMiddleware, not here.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "could not parse login form")
			return
		}

		email := r.PostFormValue("username")
		password := r.PostFormValue("password")

		_, accessToken, err := s.sessions.Login(r.Context(), email, password)
		switch {
		case errors.Is(err, auth.UserInactiveErr):
			writeError(w, http.StatusUnauthorized, "USER_INACTIVE", "account is inactive")
			return
		case err != nil:
			writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "incorrect email or password")
			return
		}

		writeJSON(w, http.StatusOK, tokenResponse{
			AccessToken: accessToken,
			TokenType:   "bearer",
			ExpiresIn:   int(s.issuer.Expiry() / time.Second),
		})
	}
}

// RefreshHandler mints a new access token from the refresh cookie. The
// refresh token itself is left untouched.
func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		refreshToken := s.refreshTokenFromRequest(r)

		accessToken, err := s.sessions.Refresh(r.Context(), refreshToken)
		switch {
		case errors.Is(err, auth.TokenMissingErr):
			writeError(w, http.StatusUnauthorized, "TOKEN_MISSING", "missing refresh token")
			return
		case errors.Is(err, auth.TokenInvalidErr):
			writeError(w, http.StatusUnauthorized, "TOKEN_INVALID", "invalid or expired refresh token")
			return
		case errors.Is(err, auth.UserInactiveErr):
			writeError(w, http.StatusUnauthorized, "USER_INACTIVE", "account is inactive")
			return
		case err != nil:
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "could not refresh session")
			return
		}

		writeJSON(w, http.StatusOK, tokenResponse{
			AccessToken: accessToken,
			TokenType:   "bearer",
			ExpiresIn:   int(s.issuer.Expiry() / time.Second),
		})
	}
}

// LogoutHandler revokes the presented refresh token and clears the cookie.
// Revocation is tolerant: a missing or unknown token still logs out.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		refreshToken := s.refreshTokenFromRequest(r)
		if refreshToken != "" {
			if err := s.sessions.Logout(r.Context(), refreshToken); err != nil {
				writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "could not revoke session")
				return
			}
		}

		http.SetCookie(w, s.clearRefreshCookie())
		writeJSON(w, http.StatusOK, map[string]string{"message": "Successfully logged out"})
	}
}

// LogoutAllHandler revokes every refresh token belonging to the
// authenticated account.
func (s *Server) LogoutAllHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID, ok := AccountIDFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "TOKEN_MISSING", "not authenticated")
			return
		}

		revoked, err := s.sessions.LogoutAll(r.Context(), accountID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "could not revoke sessions")
			return
		}

		http.SetCookie(w, s.clearRefreshCookie())
		writeJSON(w, http.StatusOK, map[string]any{
			"message": "Successfully logged out from all devices",
			"revoked": revoked,
		})
	}
}

type oauthLoginRequest struct {
	IDToken string `json:"id_token"`
}

type oauthLoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	IsNewUser   bool   `json:"is_new_user"`
	Email       string `json:"email"`
}

// OAuthLoginHandler signs in with an externally issued ID token, linking or
// creating the local account as needed.
func (s *Server) OAuthLoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req oauthLoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.IDToken == "" {
			writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "id_token is required")
			return
		}

		result, err := s.sessions.OAuthLogin(r.Context(), req.IDToken)
		if handled := s.writeOAuthError(w, err); handled {
			return
		}

		s.writeOAuthResult(w, result)
	}
}

// OAuthCallbackHandler completes an authorization-code flow: the code is
// exchanged for an ID token server-side, then handled like OAuthLoginHandler.
func (s *Server) OAuthCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.exchanger == nil {
			writeError(w, http.StatusServiceUnavailable, "OAUTH_DISABLED", "external login is not configured")
			return
		}

		if err := r.ParseForm(); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "could not parse callback form")
			return
		}
		code := r.PostFormValue("code")
		if code == "" {
			writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "code is required")
			return
		}

		claims, err := s.exchanger.Exchange(r.Context(), code, r.PostFormValue("code_verifier"))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "OAUTH_TOKEN_INVALID", "authorization code exchange failed")
			return
		}

		result, err := s.sessions.OAuthLoginWithClaims(r.Context(), claims)
		if handled := s.writeOAuthError(w, err); handled {
			return
		}

		s.writeOAuthResult(w, result)
	}
}

func (s *Server) writeOAuthError(w http.ResponseWriter, err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, auth.OAuthDisabledErr):
		writeError(w, http.StatusServiceUnavailable, "OAUTH_DISABLED", "external login is not configured")
	case errors.Is(err, auth.OAuthTokenInvalidErr):
		writeError(w, http.StatusUnauthorized, "OAUTH_TOKEN_INVALID", "external token could not be verified")
	case errors.Is(err, auth.OAuthEmailMissingErr):
		writeError(w, http.StatusBadRequest, "OAUTH_EMAIL_MISSING", "external identity has no email address")
	case errors.Is(err, auth.UserInactiveErr):
		writeError(w, http.StatusUnauthorized, "USER_INACTIVE", "account is inactive")
	default:
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "external login failed")
	}
	return true
}

func (s *Server) writeOAuthResult(w http.ResponseWriter, result *auth.OAuthLoginResult) {
	http.SetCookie(w, s.refreshCookie(result.RefreshToken, result.RefreshLifetime))
	writeJSON(w, http.StatusOK, oauthLoginResponse{
		AccessToken: result.AccessToken,
		TokenType:   "bearer",
		ExpiresIn:   int(s.issuer.Expiry() / time.Second),
		IsNewUser:   result.IsNewUser,
		Email:       result.Account.Email,
	})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (s *Server) ChangePasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID, ok := AccountIDFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "TOKEN_MISSING", "not authenticated")
			return
		}

		var req changePasswordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "could not parse request body")
			return
		}

		err := s.sessions.ChangePassword(r.Context(), accountID, req.CurrentPassword, req.NewPassword)
		switch {
		case errors.Is(err, auth.InvalidCredentialsErr):
			writeError(w, http.StatusBadRequest, "CHANGE_PASSWORD_INVALID_CURRENT", "current password is incorrect")
			return
		case errors.Is(err, auth.PasswordTooWeakErr):
			writeError(w, http.StatusBadRequest, "CHANGE_PASSWORD_TOO_WEAK", err.Error())
			return
		case err != nil:
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "could not change password")
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"message": "Password updated"})
	}
}

func (s *Server) refreshTokenFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(s.config.GetRefreshCookieName())
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (s *Server) refreshCookie(value string, lifetime time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     s.config.GetRefreshCookieName(),
		Value:    value,
		Path:     s.config.GetRefreshCookiePath(),
		MaxAge:   int(lifetime / time.Second),
		HttpOnly: true,
		Secure:   s.config.GetRefreshCookieSecure(),
		SameSite: s.config.GetRefreshCookieSameSite(),
	}
}

func (s *Server) clearRefreshCookie() *http.Cookie {
	return &http.Cookie{
		Name:     s.config.GetRefreshCookieName(),
		Value:    "",
		Path:     s.config.GetRefreshCookiePath(),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.config.GetRefreshCookieSecure(),
		SameSite: s.config.GetRefreshCookieSameSite(),
	}
}
