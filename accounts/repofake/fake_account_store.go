package accountsrepofake

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-session-server/accounts"
)

var _ accounts.Store = (*FakeAccountStore)(nil)

type FakeAccountStore struct {
	byID   map[string]*accounts.Account
	emails map[string]string // email to account ID
	lock   sync.RWMutex
}

func NewFakeAccountStore() *FakeAccountStore {
	return &FakeAccountStore{
		byID:   make(map[string]*accounts.Account),
		emails: make(map[string]string),
	}
}

func (s *FakeAccountStore) Create(_ context.Context, account *accounts.Account) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, taken := s.emails[account.Email]; taken {
		return accounts.ErrEmailTaken
	}
	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now()
	}
	account.UpdatedAt = account.CreatedAt

	copied := *account
	s.byID[account.ID] = &copied
	s.emails[account.Email] = account.ID
	return nil
}

func (s *FakeAccountStore) GetByID(_ context.Context, id string) (*accounts.Account, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	account, ok := s.byID[id]
	if !ok {
		return nil, accounts.ErrNotFound
	}
	copied := *account
	return &copied, nil
}

func (s *FakeAccountStore) GetByEmail(_ context.Context, email string) (*accounts.Account, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	id, ok := s.emails[email]
	if !ok {
		return nil, accounts.ErrNotFound
	}
	copied := *s.byID[id]
	return &copied, nil
}

func (s *FakeAccountStore) GetByExternalID(_ context.Context, externalID string) (*accounts.Account, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	for _, account := range s.byID {
		if account.ExternalID != nil && *account.ExternalID == externalID {
			copied := *account
			return &copied, nil
		}
	}
	return nil, accounts.ErrNotFound
}

func (s *FakeAccountStore) SetExternalID(_ context.Context, id, externalID string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	account, ok := s.byID[id]
	if !ok {
		return accounts.ErrNotFound
	}
	account.ExternalID = &externalID
	account.UpdatedAt = time.Now()
	return nil
}

func (s *FakeAccountStore) SetPasswordHash(_ context.Context, id, passwordHash string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	account, ok := s.byID[id]
	if !ok {
		return accounts.ErrNotFound
	}
	account.PasswordHash = passwordHash
	account.UpdatedAt = time.Now()
	return nil
}
