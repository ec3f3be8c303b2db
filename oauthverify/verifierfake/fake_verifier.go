package verifierfake

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-session-server/oauthverify"
)

var (
	_ oauthverify.Verifier      = (*FakeVerifier)(nil)
	_ oauthverify.CodeExchanger = (*FakeVerifier)(nil)
)

// FakeVerifier maps known raw tokens (or codes) to claims; everything else
// fails with ErrInvalidToken.
type FakeVerifier struct {
	claims map[string]*oauthverify.Claims
	lock   sync.RWMutex
}

func NewFakeVerifier() *FakeVerifier {
	return &FakeVerifier{
		claims: make(map[string]*oauthverify.Claims),
	}
}

// AddToken registers claims to be returned for rawToken.
func (f *FakeVerifier) AddToken(rawToken string, claims *oauthverify.Claims) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.claims[rawToken] = claims
}

func (f *FakeVerifier) Verify(_ context.Context, rawIDToken string) (*oauthverify.Claims, error) {
	f.lock.RLock()
	defer f.lock.RUnlock()

	claims, ok := f.claims[rawIDToken]
	if !ok {
		return nil, oauthverify.ErrInvalidToken
	}
	copied := *claims
	return &copied, nil
}

func (f *FakeVerifier) Exchange(ctx context.Context, code, _ string) (*oauthverify.Claims, error) {
	return f.Verify(ctx, code)
}
