package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/jrsteele09/go-session-server/oauthverify"
	"github.com/jrsteele09/go-session-server/server"
	"github.com/jrsteele09/go-session-server/token"
	"github.com/jrsteele09/go-session-server/token/refresh"
	"github.com/stretchr/testify/require"
)

func (f *serverFixture) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	f.srv.ServeHTTP(rr, req)
	return rr
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body.Code
}

func TestRefreshHandlerMintsAccessToken(t *testing.T) {
	f := setupServer(t)
	f.createTestAccount(t, true)
	ctx := context.Background()

	refreshToken, err := f.refreshMgr.Create(ctx, testAccountID, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, server.RouteAuthRefresh, nil)
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: refreshToken})
	rr := f.do(t, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, "bearer", body.TokenType)
	require.Equal(t, testAccountID, f.issuer.Verify(body.AccessToken).AccountID)
}

func TestRefreshHandlerWithoutCookie(t *testing.T) {
	f := setupServer(t)

	rr := f.do(t, httptest.NewRequest(http.MethodPost, server.RouteAuthRefresh, nil))
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Equal(t, "TOKEN_MISSING", errorCode(t, rr))
}

func TestRefreshHandlerWithUnknownToken(t *testing.T) {
	f := setupServer(t)

	req := httptest.NewRequest(http.MethodPost, server.RouteAuthRefresh, nil)
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: "never-issued"})
	rr := f.do(t, req)

	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Equal(t, "TOKEN_INVALID", errorCode(t, rr))
}

func TestRefreshHandlerWithExpiredToken(t *testing.T) {
	f := setupServer(t)
	f.createTestAccount(t, true)
	ctx := context.Background()

	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	refresh.NowTimeFunc = func() time.Time { return start }
	t.Cleanup(func() { refresh.NowTimeFunc = time.Now })

	refreshToken, err := f.refreshMgr.Create(ctx, testAccountID, time.Hour)
	require.NoError(t, err)

	refresh.NowTimeFunc = func() time.Time { return start.Add(2 * time.Hour) }

	req := httptest.NewRequest(http.MethodPost, server.RouteAuthRefresh, nil)
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: refreshToken})
	rr := f.do(t, req)

	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Equal(t, "TOKEN_INVALID", errorCode(t, rr))
}

func TestRefreshHandlerInactiveAccount(t *testing.T) {
	f := setupServer(t)
	f.createTestAccount(t, false)
	ctx := context.Background()

	refreshToken, err := f.refreshMgr.Create(ctx, testAccountID, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, server.RouteAuthRefresh, nil)
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: refreshToken})
	rr := f.do(t, req)

	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Equal(t, "USER_INACTIVE", errorCode(t, rr))
}

func TestLogoutHandlerRevokesAndClearsCookie(t *testing.T) {
	f := setupServer(t)
	f.createTestAccount(t, true)
	ctx := context.Background()

	refreshToken, err := f.refreshMgr.Create(ctx, testAccountID, time.Hour)
	require.NoError(t, err)
	accessToken, err := f.issuer.Issue(testAccountID)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, server.RouteAuthLogout, nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: refreshToken})
	rr := f.do(t, req)

	require.Equal(t, http.StatusOK, rr.Code)

	cookie := refreshCookie(t, rr)
	require.NotNil(t, cookie)
	require.Empty(t, cookie.Value)
	require.Negative(t, cookie.MaxAge)

	_, ok, err := f.refreshMgr.Validate(ctx, refreshToken)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestLogoutHandlerRequiresAccessToken(t *testing.T) {
	f := setupServer(t)

	rr := f.do(t, httptest.NewRequest(http.MethodPost, server.RouteAuthLogout, nil))
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Equal(t, "TOKEN_MISSING", errorCode(t, rr))
}

func TestLogoutHandlerRejectsExpiredAccessToken(t *testing.T) {
	f := setupServer(t)

	past := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	expiredIssuer := token.NewIssuer(token.NewHMACSigner(secretStr),
		token.WithNowFunc(func() time.Time { return past }))
	accessToken, err := expiredIssuer.Issue(testAccountID)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, server.RouteAuthLogout, nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	rr := f.do(t, req)

	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Equal(t, "TOKEN_EXPIRED", errorCode(t, rr))
}

func TestLogoutAllHandler(t *testing.T) {
	f := setupServer(t)
	f.createTestAccount(t, true)
	ctx := context.Background()

	for range 3 {
		_, err := f.refreshMgr.Create(ctx, testAccountID, time.Hour)
		require.NoError(t, err)
	}
	otherToken, err := f.refreshMgr.Create(ctx, "account-2", time.Hour)
	require.NoError(t, err)

	accessToken, err := f.issuer.Issue(testAccountID)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, server.RouteAuthLogoutAll, nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	rr := f.do(t, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Revoked int64 `json:"revoked"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, int64(3), body.Revoked)

	_, ok, err := f.refreshMgr.Validate(ctx, otherToken)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestOAuthLoginHandler(t *testing.T) {
	f := setupServer(t)

	f.verifier.AddToken("id-token-1", &oauthverify.Claims{
		Subject:       "provider|abc123",
		Email:         "jane.doe@example.com",
		EmailVerified: true,
	})

	req := httptest.NewRequest(http.MethodPost, server.RouteAuthOAuthLogin,
		strings.NewReader(`{"id_token":"id-token-1"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := f.do(t, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		AccessToken string `json:"access_token"`
		IsNewUser   bool   `json:"is_new_user"`
		Email       string `json:"email"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.True(t, body.IsNewUser)
	require.Equal(t, "jane.doe@example.com", body.Email)
	require.Equal(t, token.StateValid, f.issuer.Verify(body.AccessToken).State)

	// External logins always get the long lifetime.
	cookie := refreshCookie(t, rr)
	require.NotNil(t, cookie)
	require.Equal(t, int(30*24*time.Hour/time.Second), cookie.MaxAge)
}

func TestOAuthLoginHandlerInvalidToken(t *testing.T) {
	f := setupServer(t)

	req := httptest.NewRequest(http.MethodPost, server.RouteAuthOAuthLogin,
		strings.NewReader(`{"id_token":"bogus"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := f.do(t, req)

	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Equal(t, "OAUTH_TOKEN_INVALID", errorCode(t, rr))
}

func TestOAuthLoginHandlerMissingEmail(t *testing.T) {
	f := setupServer(t)

	f.verifier.AddToken("no-email", &oauthverify.Claims{Subject: "provider|abc123"})

	req := httptest.NewRequest(http.MethodPost, server.RouteAuthOAuthLogin,
		strings.NewReader(`{"id_token":"no-email"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := f.do(t, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "OAUTH_EMAIL_MISSING", errorCode(t, rr))
}

func TestOAuthCallbackHandler(t *testing.T) {
	f := setupServer(t)

	f.verifier.AddToken("auth-code-1", &oauthverify.Claims{
		Subject: "provider|abc123",
		Email:   "jane.doe@example.com",
	})

	req := httptest.NewRequest(http.MethodPost, server.RouteAuthOAuthCallback,
		strings.NewReader("code=auth-code-1"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := f.do(t, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, refreshCookie(t, rr))
}

func TestChangePasswordHandler(t *testing.T) {
	f := setupServer(t)
	f.createTestAccount(t, true)

	accessToken, err := f.issuer.Issue(testAccountID)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, server.RouteAuthChangePassword,
		strings.NewReader(`{"current_password":"Password123","new_password":"NewPassword456"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)
	rr := f.do(t, req)

	require.Equal(t, http.StatusOK, rr.Code)
}

func TestChangePasswordHandlerWrongCurrent(t *testing.T) {
	f := setupServer(t)
	f.createTestAccount(t, true)

	accessToken, err := f.issuer.Issue(testAccountID)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, server.RouteAuthChangePassword,
		strings.NewReader(`{"current_password":"WrongPassword1","new_password":"NewPassword456"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)
	rr := f.do(t, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "CHANGE_PASSWORD_INVALID_CURRENT", errorCode(t, rr))
}

func TestLoginLogoutRefreshFlow(t *testing.T) {
	f := setupServer(t)
	f.createTestAccount(t, true)

	rr := f.postLogin(t, url.Values{"username": {testEmail}, "password": {testPassword}})
	require.Equal(t, http.StatusOK, rr.Code)
	cookie := refreshCookie(t, rr)
	require.NotNil(t, cookie)

	var login struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &login))

	logoutReq := httptest.NewRequest(http.MethodPost, server.RouteAuthLogout, nil)
	logoutReq.Header.Set("Authorization", "Bearer "+login.AccessToken)
	logoutReq.AddCookie(&http.Cookie{Name: cookie.Name, Value: cookie.Value})
	require.Equal(t, http.StatusOK, f.do(t, logoutReq).Code)

	refreshReq := httptest.NewRequest(http.MethodPost, server.RouteAuthRefresh, nil)
	refreshReq.AddCookie(&http.Cookie{Name: cookie.Name, Value: cookie.Value})
	rr = f.do(t, refreshReq)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Equal(t, "TOKEN_INVALID", errorCode(t, rr))
}

func TestHealthHandler(t *testing.T) {
	f := setupServer(t)

	rr := f.do(t, httptest.NewRequest(http.MethodGet, server.RouteHealth, nil))
	require.Equal(t, http.StatusOK, rr.Code)
}
