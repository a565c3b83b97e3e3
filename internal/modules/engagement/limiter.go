package engagement

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/graduation-masterpiece/demo-repository/internal/data/kv"
	"github.com/graduation-masterpiece/demo-repository/internal/data/repos"
	"github.com/graduation-masterpiece/demo-repository/internal/observability"
	"github.com/graduation-masterpiece/demo-repository/internal/platform/apierr"
	"github.com/graduation-masterpiece/demo-repository/internal/platform/clientid"
	"github.com/graduation-masterpiece/demo-repository/internal/platform/logger"
)

const DefaultLockTTL = 24 * time.Hour

type Deps struct {
	Log   *logger.Logger
	Flags kv.FlagStore
	Cards repos.CardAssetRepo
	TTL   time.Duration
}

// Limiter allows one like per (card, client) per TTL window.
//
// The lock check and the lock write are separate commands. Two identical
// requests racing through the gap can both be counted; the lock is only
// written after the increment is durable.
type Limiter struct {
	deps Deps
	log  *logger.Logger
}

func New(deps Deps) *Limiter {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	if deps.TTL <= 0 {
		deps.TTL = DefaultLockTTL
	}
	return &Limiter{deps: deps, log: deps.Log.With("service", "LikeLimiter")}
}

// LockKey identifies the engagement lock for a card and client. The client
// identifier is hashed so raw addresses never reach the store.
func LockKey(bookID uuid.UUID, clientID string) string {
	return fmt.Sprintf("like:%s:%s", bookID, clientid.Hash(clientID))
}

// TryIncrement adds one like and returns the new total, or fails with
// AlreadyLiked while the client's lock for this card is live.
func (l *Limiter) TryIncrement(ctx context.Context, bookID uuid.UUID, clientID string) (int64, error) {
	if strings.TrimSpace(clientID) == "" {
		return 0, apierr.Validation("client identity unavailable", nil)
	}
	key := LockKey(bookID, clientID)

	locked, err := l.deps.Flags.Exists(ctx, key)
	if err != nil {
		return 0, apierr.Storage("check like lock", err)
	}
	if locked {
		observability.Current().IncLike("already_liked")
		return 0, apierr.AlreadyLiked("already liked")
	}

	likes, found, err := l.deps.Cards.IncrementLikes(ctx, nil, bookID)
	if err != nil {
		return 0, apierr.Storage("increment likes", err)
	}
	if !found {
		return 0, apierr.NotFound("card not found")
	}

	if err := l.deps.Flags.Set(ctx, key, l.deps.TTL); err != nil {
		// The like is already counted; without the lock a repeat may count again.
		l.log.Error("like lock write failed", "book_id", bookID, "error", err)
	}
	observability.Current().IncLike("counted")
	return likes, nil
}
