package auth

import "errors"

var (
	InvalidCredentialsErr = errors.New("invalid credentials")
	TokenMissingErr       = errors.New("refresh token missing")
	TokenInvalidErr       = errors.New("token invalid")
	UserInactiveErr       = errors.New("user inactive")
	OAuthTokenInvalidErr  = errors.New("oauth identity token invalid")
	OAuthEmailMissingErr  = errors.New("oauth identity token has no email")
	OAuthDisabledErr      = errors.New("oauth login not configured")
	PasswordTooWeakErr    = errors.New("password too weak")
)
