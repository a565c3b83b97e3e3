package search

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/graduation-masterpiece/demo-repository/internal/data/kv"
	"github.com/graduation-masterpiece/demo-repository/internal/platform/apierr"
	"github.com/graduation-masterpiece/demo-repository/internal/platform/logger"
)

const (
	MaxSuggestions   = 10
	DefaultRetainMax = 1000
)

type Deps struct {
	Log   *logger.Logger
	Store kv.RecencyStore
	// RetainMax bounds the number of stored terms.
	RetainMax int
	// ScanWindow is how many of the newest terms a prefix query inspects.
	// Zero or anything above RetainMax means every retained term.
	ScanWindow int
	Now        func() time.Time
}

// Autocomplete records search terms by recency and answers prefix queries
// from the most recent window only.
type Autocomplete struct {
	deps Deps
	log  *logger.Logger

	mu        sync.Mutex
	lastScore int64
}

func New(deps Deps) *Autocomplete {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	if deps.RetainMax <= 0 {
		deps.RetainMax = DefaultRetainMax
	}
	if deps.ScanWindow <= 0 || deps.ScanWindow > deps.RetainMax {
		deps.ScanWindow = deps.RetainMax
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Autocomplete{deps: deps, log: deps.Log.With("service", "Autocomplete")}
}

// nextScore is the current time in microseconds, bumped so that two records
// in the same microsecond still rank in call order. Microseconds stay exact
// in a float64 score.
func (a *Autocomplete) nextScore() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	s := a.deps.Now().UnixMicro()
	if s <= a.lastScore {
		s = a.lastScore + 1
	}
	a.lastScore = s
	return float64(s)
}

// Record stores term as the newest entry, replacing any earlier copy, then
// prunes the store to RetainMax.
func (a *Autocomplete) Record(ctx context.Context, term string) error {
	t := Normalize(term)
	if t == "" {
		return apierr.Validation("search term is empty", map[string]string{"query": "must contain letters or digits"})
	}
	if err := a.deps.Store.Remove(ctx, t); err != nil {
		return apierr.Storage("remove previous search term", err)
	}
	if err := a.deps.Store.Add(ctx, t, a.nextScore()); err != nil {
		return apierr.Storage("record search term", err)
	}
	if err := a.deps.Store.TrimTo(ctx, a.deps.RetainMax); err != nil {
		// The term is stored; a failed prune is retried by the next write.
		a.log.Warn("search term prune failed", "error", err)
	}
	return nil
}

// Suggest returns up to MaxSuggestions recent terms starting with prefix,
// newest first. An empty prefix or store yields an empty list.
func (a *Autocomplete) Suggest(ctx context.Context, prefix string) ([]string, error) {
	p := Normalize(prefix)
	out := []string{}
	if p == "" {
		return out, nil
	}
	recent, err := a.deps.Store.Newest(ctx, a.deps.ScanWindow)
	if err != nil {
		return nil, apierr.Storage("load recent search terms", err)
	}
	seen := make(map[string]struct{}, MaxSuggestions)
	for _, term := range recent {
		if !strings.HasPrefix(term, p) {
			continue
		}
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}
		out = append(out, term)
		if len(out) == MaxSuggestions {
			break
		}
	}
	return out, nil
}
