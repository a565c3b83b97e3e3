package kv

import (
	"context"
	"sort"
	"sync"
)

// MemoryRecencyStore orders like a Redis sorted set read with ZREVRANGE:
// score descending, ties broken by member descending.
type MemoryRecencyStore struct {
	mu     sync.Mutex
	scores map[string]float64
}

func NewMemoryRecencyStore() *MemoryRecencyStore {
	return &MemoryRecencyStore{scores: make(map[string]float64)}
}

func (s *MemoryRecencyStore) Add(_ context.Context, member string, score float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scores[member] = score
	return nil
}

func (s *MemoryRecencyStore) Remove(_ context.Context, members ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range members {
		delete(s.scores, m)
	}
	return nil
}

func (s *MemoryRecencyStore) Newest(_ context.Context, limit int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ranked := s.rankedLocked()
	if limit < len(ranked) {
		if limit < 0 {
			limit = 0
		}
		ranked = ranked[:limit]
	}
	return ranked, nil
}

func (s *MemoryRecencyStore) TrimTo(_ context.Context, keep int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ranked := s.rankedLocked()
	if keep < 0 {
		keep = 0
	}
	for i := keep; i < len(ranked); i++ {
		delete(s.scores, ranked[i])
	}
	return nil
}

func (s *MemoryRecencyStore) Len(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.scores)), nil
}

func (s *MemoryRecencyStore) rankedLocked() []string {
	out := make([]string, 0, len(s.scores))
	for m := range s.scores {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		si, sj := s.scores[out[i]], s.scores[out[j]]
		if si != sj {
			return si > sj
		}
		return out[i] > out[j]
	})
	return out
}
