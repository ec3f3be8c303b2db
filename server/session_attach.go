package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"
)

// bufferedResponseWriter captures a handler's full response so it can be
// inspected and replayed.
type bufferedResponseWriter struct {
	header http.Header
	body   bytes.Buffer
	status int
}

func newBufferedResponseWriter() *bufferedResponseWriter {
	return &bufferedResponseWriter{header: make(http.Header), status: http.StatusOK}
}

func (b *bufferedResponseWriter) Header() http.Header { return b.header }

func (b *bufferedResponseWriter) WriteHeader(status int) { b.status = status }

func (b *bufferedResponseWriter) Write(p []byte) (int, error) { return b.body.Write(p) }

// replay writes the captured response to w unmodified.
func (b *bufferedResponseWriter) replay(w http.ResponseWriter) {
	for key, values := range b.header {
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}
	w.WriteHeader(b.status)
	w.Write(b.body.Bytes()) //nolint:errcheck
}

// SessionAttachMiddleware wraps the login handler. It reads remember_me from
// the request form, runs the handler against a buffered writer, and on a
// successful login creates a refresh token for the subject of the returned
// access token and attaches it as a cookie. The access token subject is read
// without signature verification, which is safe only because the token was
// produced by our own issuer one frame down the stack.
//
// If anything about the rewrite fails the captured response is sent through
// untouched. Login must keep working even when refresh persistence is down.
func (s *Server) SessionAttachMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rememberMe, restored := s.readRememberMe(r)
		if restored != nil {
			r.Body = restored
		}

		buffered := newBufferedResponseWriter()
		next(buffered, r)

		if buffered.status < 200 || buffered.status >= 300 {
			buffered.replay(w)
			return
		}

		var payload struct {
			AccessToken string `json:"access_token"`
		}
		if err := json.Unmarshal(buffered.body.Bytes(), &payload); err != nil || payload.AccessToken == "" {
			buffered.replay(w)
			return
		}

		accountID, err := s.issuer.PeekSubjectUnverified(payload.AccessToken)
		if err != nil {
			log.Warn().Err(err).Msg("session attach: unreadable access token")
			buffered.replay(w)
			return
		}

		lifetime := s.config.GetRefreshTokenExpiry()
		if rememberMe {
			lifetime = s.config.GetRememberMeRefreshTokenExpiry()
		}

		refreshToken, err := s.refreshTokens.Create(r.Context(), accountID, lifetime)
		if err != nil {
			log.Warn().Err(err).Msg("session attach: refresh token creation failed")
			buffered.replay(w)
			return
		}

		for key, values := range buffered.header {
			for _, value := range values {
				w.Header().Add(key, value)
			}
		}
		http.SetCookie(w, s.refreshCookie(refreshToken, lifetime))
		w.WriteHeader(buffered.status)
		w.Write(buffered.body.Bytes()) //nolint:errcheck
	}
}

// readRememberMe consumes the request body looking for a remember_me form
// field and returns a replacement body so the handler still sees the original
// bytes. Unparseable bodies mean remember_me=false.
func (s *Server) readRememberMe(r *http.Request) (bool, io.ReadCloser) {
	if r.Body == nil {
		return false, nil
	}

	raw, err := io.ReadAll(r.Body)
	r.Body.Close() //nolint:errcheck
	restored := io.NopCloser(bytes.NewReader(raw))
	if err != nil {
		return false, restored
	}

	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/x-www-form-urlencoded") &&
		!strings.HasPrefix(contentType, "multipart/form-data") {
		return false, restored
	}
	if strings.HasPrefix(contentType, "multipart/form-data") {
		return multipartRememberMe(r, raw), io.NopCloser(bytes.NewReader(raw))
	}

	form, err := url.ParseQuery(string(raw))
	if err != nil {
		return false, restored
	}
	return parseRememberMe(form.Get("remember_me")), restored
}

func multipartRememberMe(r *http.Request, raw []byte) bool {
	clone := r.Clone(r.Context())
	clone.Body = io.NopCloser(bytes.NewReader(raw))
	if err := clone.ParseMultipartForm(1 << 20); err != nil {
		return false
	}
	return parseRememberMe(clone.FormValue("remember_me"))
}

func parseRememberMe(value string) bool {
	switch strings.ToLower(value) {
	case "true", "1", "yes", "on":
		return true
	}
	return false
}
