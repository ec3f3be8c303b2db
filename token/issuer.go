package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// State classifies the outcome of verifying an access token.
type State int

const (
	StateValid State = iota
	// StateExpired means the signature checked out but the token is past its
	// expiry. Reported separately from StateMalformed for observability; both
	// map to a 401 at the HTTP boundary.
	StateExpired
	// StateMalformed covers anything else: bad encoding, wrong signature,
	// missing claims.
	StateMalformed
)

// Verification is the tagged result of Issuer.Verify. AccountID is only
// populated when State is StateValid.
type Verification struct {
	State     State
	AccountID string
}

// Issuer mints and verifies short-lived stateless access tokens. An access
// token carries only a subject and an absolute expiry; validity is determined
// purely by signature and expiry, never by a database lookup. The flip side is
// that an issued token cannot be revoked before it expires naturally, which is
// why the expiry stays short.
type Issuer struct {
	signer  Signer
	expiry  time.Duration
	nowFunc func() time.Time
}

type IssuerOption func(*Issuer)

func WithExpiry(expiry time.Duration) IssuerOption {
	return func(i *Issuer) {
		if expiry > 0 {
			i.expiry = expiry
		}
	}
}

func WithNowFunc(now func() time.Time) IssuerOption {
	return func(i *Issuer) {
		i.nowFunc = now
	}
}

// NewIssuer creates an Issuer. The signer must be configured with a non-empty
// secret; checking that is the caller's startup responsibility.
func NewIssuer(signer Signer, options ...IssuerOption) *Issuer {
	i := &Issuer{
		signer:  signer,
		expiry:  time.Hour,
		nowFunc: time.Now,
	}
	for _, opt := range options {
		opt(i)
	}
	return i
}

// Issue mints a signed access token for accountID. No side effects; the only
// failure path is the signing operation itself.
func (i *Issuer) Issue(accountID string) (string, error) {
	now := i.nowFunc()
	claims := jwt.MapClaims{
		"sub": accountID,
		"iat": now.Unix(),
		"exp": now.Add(i.expiry).Unix(),
		"jti": uuid.New().String(),
	}
	signedToken, err := i.signer.Sign(claims)
	if err != nil {
		return "", errors.Wrap(err, "Issuer.Issue")
	}
	return signedToken, nil
}

// Expiry returns the configured access token lifetime.
func (i *Issuer) Expiry() time.Duration {
	return i.expiry
}

// Verify validates signature and expiry. Routine expiry is not an error: it is
// an ordinary Verification value.
func (i *Issuer) Verify(rawToken string) Verification {
	parser := jwt.NewParser(
		jwt.WithTimeFunc(i.nowFunc),
		jwt.WithValidMethods([]string{i.signer.GetSigningMethod().Alg()}),
	)

	parsed, err := parser.Parse(rawToken, i.signer.GetVerificationKey)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Verification{State: StateExpired}
		}
		return Verification{State: StateMalformed}
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Verification{State: StateMalformed}
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return Verification{State: StateMalformed}
	}
	return Verification{State: StateValid, AccountID: sub}
}

// PeekSubjectUnverified extracts the subject claim WITHOUT verifying the
// signature or expiry.
//
// Trust boundary: this is only safe on a token this process minted earlier in
// the same request (the session attach middleware peeking at a login response
// it just produced). It must never be called on externally supplied input -
// treat any new call site as a code review flag.
func (i *Issuer) PeekSubjectUnverified(rawToken string) (string, error) {
	unverified, _, err := jwt.NewParser().ParseUnverified(rawToken, jwt.MapClaims{})
	if err != nil {
		return "", errors.Wrap(err, "Issuer.PeekSubjectUnverified")
	}

	claims, ok := unverified.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("error extracting claims")
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", errors.New("token has no subject claim")
	}
	return sub, nil
}
