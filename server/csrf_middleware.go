package server

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"strings"
)

const csrfHeaderName = "X-CSRF-Token"

// CSRFMiddleware implements a double-submit cookie check. Requests carrying a
// Bearer token are exempt since cookies play no part in their authentication.
// Requests without a CSRF cookie are issued one so the client can echo it
// back on subsequent form posts.
func (s *Server) CSRFMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if isSafeMethod(r.Method) || strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			next(w, r)
			return
		}

		cookie, err := r.Cookie(s.config.GetCSRFCookieName())
		if err != nil {
			s.issueCSRFCookie(w)
			next(w, r)
			return
		}

		header := r.Header.Get(csrfHeaderName)
		if header == "" || subtle.ConstantTimeCompare([]byte(header), []byte(cookie.Value)) != 1 {
			writeError(w, http.StatusForbidden, "CSRF_FAILED", "csrf token missing or mismatched")
			return
		}

		next(w, r)
	}
}

func (s *Server) issueCSRFCookie(w http.ResponseWriter) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.config.GetCSRFCookieName(),
		Value:    base64.RawURLEncoding.EncodeToString(buf),
		Path:     "/",
		Secure:   s.config.GetRefreshCookieSecure(),
		SameSite: s.config.GetRefreshCookieSameSite(),
	})
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}
