package refreshrepofake

import (
	"context"
	"sync"
	"time"

	"github.com/jrsteele09/go-session-server/token/refresh"
)

var _ refresh.Repo = (*FakeRefreshTokenRepo)(nil)

type FakeRefreshTokenRepo struct {
	tokens map[string]*refresh.StoredRefreshToken
	lock   sync.RWMutex
}

func NewFakeRefreshTokenRepo() *FakeRefreshTokenRepo {
	return &FakeRefreshTokenRepo{
		tokens: make(map[string]*refresh.StoredRefreshToken),
	}
}

func (tr *FakeRefreshTokenRepo) Insert(_ context.Context, refreshToken *refresh.StoredRefreshToken) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	copied := *refreshToken
	tr.tokens[refreshToken.Token] = &copied
	return nil
}

func (tr *FakeRefreshTokenRepo) Get(_ context.Context, token string) (*refresh.StoredRefreshToken, error) {
	tr.lock.RLock()
	defer tr.lock.RUnlock()

	rt, ok := tr.tokens[token]
	if !ok {
		return nil, refresh.ErrNotFound
	}
	copied := *rt
	return &copied, nil
}

func (tr *FakeRefreshTokenRepo) Delete(_ context.Context, token string) (bool, error) {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	if _, ok := tr.tokens[token]; !ok {
		return false, nil
	}
	delete(tr.tokens, token)
	return true, nil
}

func (tr *FakeRefreshTokenRepo) DeleteByAccountID(_ context.Context, accountID string) (int64, error) {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	var count int64
	for token, rt := range tr.tokens {
		if rt.AccountID == accountID {
			delete(tr.tokens, token)
			count++
		}
	}
	return count, nil
}

func (tr *FakeRefreshTokenRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	var count int64
	for token, rt := range tr.tokens {
		if !rt.ExpiresAt.After(now) {
			delete(tr.tokens, token)
			count++
		}
	}
	return count, nil
}

// Len reports the number of stored tokens. Test helper.
func (tr *FakeRefreshTokenRepo) Len() int {
	tr.lock.RLock()
	defer tr.lock.RUnlock()
	return len(tr.tokens)
}
