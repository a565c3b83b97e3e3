package kv

import (
	"context"
	"sync"
	"time"
)

type MemoryFlagStore struct {
	mu      sync.Mutex
	expires map[string]time.Time
	now     func() time.Time
}

func NewMemoryFlagStore() *MemoryFlagStore {
	return &MemoryFlagStore{expires: make(map[string]time.Time), now: time.Now}
}

// WithClock swaps the time source; tests use it to step past a TTL.
func (s *MemoryFlagStore) WithClock(now func() time.Time) *MemoryFlagStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
	return s
}

func (s *MemoryFlagStore) Exists(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.liveLocked(key), nil
}

func (s *MemoryFlagStore) Set(_ context.Context, key string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expires[key] = s.expiryLocked(ttl)
	return nil
}

func (s *MemoryFlagStore) liveLocked(key string) bool {
	exp, ok := s.expires[key]
	if !ok {
		return false
	}
	if !exp.IsZero() && !s.now().Before(exp) {
		delete(s.expires, key)
		return false
	}
	return true
}

func (s *MemoryFlagStore) expiryLocked(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return s.now().Add(ttl)
}
