package ratelimit

import (
	"context"
	"sync"
	"time"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore is a process-local fixed-window counter store.
//
// Known limitation: counters are NOT shared across server instances. Behind a
// load balancer each instance enforces the limit independently, multiplying
// the effective allowance by the instance count. Use PostgresStore (or
// another shared backend) when that matters.
type MemoryStore struct {
	nowFunc func() time.Time
	windows map[string]*window
	lock    sync.Mutex
}

type window struct {
	start time.Time
	count int
}

type MemoryStoreOption func(*MemoryStore)

func WithMemoryNowFunc(now func() time.Time) MemoryStoreOption {
	return func(s *MemoryStore) {
		s.nowFunc = now
	}
}

func NewMemoryStore(options ...MemoryStoreOption) *MemoryStore {
	s := &MemoryStore{
		nowFunc: time.Now,
		windows: make(map[string]*window),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *MemoryStore) Allow(_ context.Context, key string, limit Limit) bool {
	s.lock.Lock()
	defer s.lock.Unlock()

	now := s.nowFunc()
	w, ok := s.windows[key]
	if !ok || now.Sub(w.start) >= limit.Window {
		s.windows[key] = &window{start: now, count: 1}
		return true
	}

	w.count++
	return w.count <= limit.Requests
}

func (s *MemoryStore) Reset(context.Context) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.windows = make(map[string]*window)
	return nil
}
