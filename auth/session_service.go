package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-session-server/accounts"
	"github.com/jrsteele09/go-session-server/internal/utils"
	"github.com/jrsteele09/go-session-server/oauthverify"
	"github.com/jrsteele09/go-session-server/token"
	"github.com/jrsteele09/go-session-server/token/refresh"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Deps holds all dependencies for the SessionService.
type Deps struct {
	Credentials   CredentialStore      // Password verification
	Accounts      accounts.Store       // Account lookups and external-id patching
	Issuer        *token.Issuer        // Access token minting and verification
	RefreshTokens *refresh.Manager     // Stateful refresh credential store
	Verifier      oauthverify.Verifier // Optional; nil disables OAuth login
}

// SessionService implements the session and token-lifecycle operations:
// password login, refresh token exchange, logout, and external identity
// linking. It holds no per-request state.
type SessionService struct {
	deps                 Deps
	events               accounts.Events
	oauthRefreshLifetime time.Duration
	nowTime              func() time.Time
}

// SessionServiceOption defines a function type to modify the SessionService instance.
type SessionServiceOption func(*SessionService)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) SessionServiceOption {
	return func(s *SessionService) {
		s.nowTime = nowFunc
	}
}

// WithEvents sets the account lifecycle event sink.
func WithEvents(events accounts.Events) SessionServiceOption {
	return func(s *SessionService) {
		s.events = events
	}
}

// WithOAuthRefreshLifetime sets the refresh token lifetime used for external
// identity logins, which default to the long ("remember me") duration.
func WithOAuthRefreshLifetime(lifetime time.Duration) SessionServiceOption {
	return func(s *SessionService) {
		if lifetime > 0 {
			s.oauthRefreshLifetime = lifetime
		}
	}
}

// NewSessionService initializes a new SessionService with required
// dependencies. Deps.Verifier may be nil when OAuth login is not configured.
func NewSessionService(deps Deps, options ...SessionServiceOption) (*SessionService, error) {
	if deps.Credentials == nil {
		return nil, errors.New("[NewSessionService] Credentials store is required")
	}
	if deps.Accounts == nil {
		return nil, errors.New("[NewSessionService] Accounts store is required")
	}
	if deps.Issuer == nil {
		return nil, errors.New("[NewSessionService] Issuer is required")
	}
	if deps.RefreshTokens == nil {
		return nil, errors.New("[NewSessionService] RefreshTokens manager is required")
	}

	service := &SessionService{
		deps:                 deps,
		events:               accounts.NopEvents{},
		oauthRefreshLifetime: 30 * 24 * time.Hour,
		nowTime:              time.Now,
	}

	for _, opt := range options {
		opt(service)
	}

	return service, nil
}

// Login verifies credentials and mints an access token. It deliberately does
// NOT create a refresh token: attaching the refresh cookie is the session
// attach middleware's job, because the chosen lifetime depends on a request
// parameter this handler never sees.
func (s *SessionService) Login(ctx context.Context, email, password string) (*accounts.Account, string, error) {
	account, err := s.deps.Credentials.VerifyPassword(ctx, email, password)
	if err != nil {
		return nil, "", err
	}

	if !account.Active {
		return nil, "", UserInactiveErr
	}

	accessToken, err := s.deps.Issuer.Issue(account.ID)
	if err != nil {
		return nil, "", errors.Wrap(err, "SessionService.Login Issue")
	}

	return account, accessToken, nil
}

// Refresh exchanges a refresh token for a new access token. The refresh token
// itself is neither consumed nor rotated.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", TokenMissingErr
	}

	accountID, ok, err := s.deps.RefreshTokens.Validate(ctx, refreshToken)
	if err != nil {
		return "", errors.Wrap(err, "SessionService.Refresh Validate")
	}
	if !ok {
		return "", TokenInvalidErr
	}

	account, err := s.deps.Accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, accounts.ErrNotFound) {
			return "", UserInactiveErr
		}
		return "", errors.Wrap(err, "SessionService.Refresh GetByID")
	}
	if !account.Active {
		return "", UserInactiveErr
	}

	accessToken, err := s.deps.Issuer.Issue(account.ID)
	if err != nil {
		return "", errors.Wrap(err, "SessionService.Refresh Issue")
	}
	return accessToken, nil
}

// Logout revokes the given refresh token. Tolerant of a missing or unknown
// token - logging out twice is not an error.
func (s *SessionService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if _, err := s.deps.RefreshTokens.Revoke(ctx, refreshToken); err != nil {
		return errors.Wrap(err, "SessionService.Logout Revoke")
	}
	return nil
}

// LogoutAll revokes every refresh token owned by the account and returns the
// number of sessions revoked.
func (s *SessionService) LogoutAll(ctx context.Context, accountID string) (int64, error) {
	count, err := s.deps.RefreshTokens.RevokeAll(ctx, accountID)
	if err != nil {
		return 0, errors.Wrap(err, "SessionService.LogoutAll RevokeAll")
	}
	return count, nil
}

// OAuthLoginResult is the outcome of an external identity login.
type OAuthLoginResult struct {
	Account      *accounts.Account
	AccessToken  string
	RefreshToken string
	// RefreshLifetime is the lifetime the refresh token was created with, so
	// the HTTP layer can set a matching cookie Max-Age.
	RefreshLifetime time.Duration
	IsNewUser       bool
}

// OAuthLogin verifies a provider identity token and signs the user in,
// linking or creating the local account as needed.
func (s *SessionService) OAuthLogin(ctx context.Context, rawIDToken string) (*OAuthLoginResult, error) {
	if s.deps.Verifier == nil {
		return nil, OAuthDisabledErr
	}

	claims, err := s.deps.Verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, OAuthTokenInvalidErr
	}

	return s.OAuthLoginWithClaims(ctx, claims)
}

// OAuthLoginWithClaims runs the identity linking and issue steps for already
// verified claims. Used directly by the authorization-code callback, which
// verifies through the exchanger.
func (s *SessionService) OAuthLoginWithClaims(ctx context.Context, claims *oauthverify.Claims) (*OAuthLoginResult, error) {
	if claims.Email == "" {
		return nil, OAuthEmailMissingErr
	}

	account, isNew, err := s.resolveExternalIdentity(ctx, claims)
	if err != nil {
		return nil, err
	}

	if !account.Active {
		return nil, UserInactiveErr
	}

	accessToken, err := s.deps.Issuer.Issue(account.ID)
	if err != nil {
		return nil, errors.Wrap(err, "SessionService.OAuthLogin Issue")
	}

	// External logins have no remember-me checkbox; they default to the long
	// lifetime.
	refreshToken, err := s.deps.RefreshTokens.Create(ctx, account.ID, s.oauthRefreshLifetime)
	if err != nil {
		return nil, errors.Wrap(err, "SessionService.OAuthLogin Create refresh token")
	}

	return &OAuthLoginResult{
		Account:         account,
		AccessToken:     accessToken,
		RefreshToken:    refreshToken,
		RefreshLifetime: s.oauthRefreshLifetime,
		IsNewUser:       isNew,
	}, nil
}

// resolveExternalIdentity maps verified claims to a local account. Resolution
// order, each a short-circuit: external uid, then email (link), then create.
func (s *SessionService) resolveExternalIdentity(ctx context.Context, claims *oauthverify.Claims) (*accounts.Account, bool, error) {
	account, err := s.deps.Accounts.GetByExternalID(ctx, claims.Subject)
	if err == nil {
		return account, false, nil
	}
	if !errors.Is(err, accounts.ErrNotFound) {
		return nil, false, errors.Wrap(err, "resolveExternalIdentity GetByExternalID")
	}

	account, err = s.deps.Accounts.GetByEmail(ctx, claims.Email)
	if err == nil {
		// Existing password account: attach the external identity and keep
		// the password credential. The account becomes dual-mode.
		if err := s.deps.Accounts.SetExternalID(ctx, account.ID, claims.Subject); err != nil {
			return nil, false, errors.Wrap(err, "resolveExternalIdentity SetExternalID")
		}
		account.ExternalID = utils.Ptr(claims.Subject)
		s.events.AccountLinked(ctx, account, claims.Subject)
		log.Info().Str("account_id", account.ID).Msg("linked external identity to existing account")
		return account, false, nil
	}
	if !errors.Is(err, accounts.ErrNotFound) {
		return nil, false, errors.Wrap(err, "resolveExternalIdentity GetByEmail")
	}

	account, err = s.createExternalAccount(ctx, claims)
	if err != nil {
		return nil, false, err
	}
	return account, true, nil
}

func (s *SessionService) createExternalAccount(ctx context.Context, claims *oauthverify.Claims) (*accounts.Account, error) {
	// The shared account schema requires a password hash; give the account
	// one nobody will ever know.
	passwordHash, err := accounts.RandomPasswordHash()
	if err != nil {
		return nil, errors.Wrap(err, "createExternalAccount RandomPasswordHash")
	}

	account := &accounts.Account{
		ID:           uuid.New().String(),
		Email:        claims.Email,
		PasswordHash: passwordHash,
		Active:       true,
		Verified:     true, // the provider already proved the email
		ExternalID:   utils.Ptr(claims.Subject),
		CreatedAt:    s.nowTime(),
	}

	err = s.deps.Accounts.Create(ctx, account)
	if err == nil {
		s.events.AccountCreated(ctx, account)
		log.Info().Str("account_id", account.ID).Msg("created account from external identity")
		return account, nil
	}

	// Concurrent duplicate login for a brand-new email: both requests pass
	// the not-found checks, one insert loses on the unique email constraint.
	// Retry as a lookup instead of trusting the earlier not-found result.
	if errors.Is(err, accounts.ErrEmailTaken) {
		existing, lookupErr := s.deps.Accounts.GetByEmail(ctx, claims.Email)
		if lookupErr != nil {
			return nil, errors.Wrap(lookupErr, "createExternalAccount retry lookup")
		}
		if !existing.Linked() {
			if err := s.deps.Accounts.SetExternalID(ctx, existing.ID, claims.Subject); err != nil {
				return nil, errors.Wrap(err, "createExternalAccount retry SetExternalID")
			}
			existing.ExternalID = utils.Ptr(claims.Subject)
		}
		return existing, nil
	}

	return nil, errors.Wrap(err, "createExternalAccount Create")
}

// ChangePassword verifies the current password and replaces it. The baseline
// design does not revoke existing sessions here; the PasswordChanged event is
// the seam for deployments that want to.
func (s *SessionService) ChangePassword(ctx context.Context, accountID, currentPassword, newPassword string) error {
	account, err := s.deps.Accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, accounts.ErrNotFound) {
			return InvalidCredentialsErr
		}
		return errors.Wrap(err, "SessionService.ChangePassword GetByID")
	}

	if !accounts.CheckPasswordHash(currentPassword, account.PasswordHash) {
		return InvalidCredentialsErr
	}
	if err := accounts.ValidatePasswordStrength(newPassword); err != nil {
		return errors.Wrap(PasswordTooWeakErr, err.Error())
	}

	passwordHash, err := accounts.HashPassword(newPassword)
	if err != nil {
		return errors.Wrap(err, "SessionService.ChangePassword HashPassword")
	}
	if err := s.deps.Accounts.SetPasswordHash(ctx, account.ID, passwordHash); err != nil {
		return errors.Wrap(err, "SessionService.ChangePassword SetPasswordHash")
	}

	s.events.PasswordChanged(ctx, account)
	return nil
}
