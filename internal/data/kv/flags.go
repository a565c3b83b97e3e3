package kv

import (
	"context"
	"time"
)

// FlagStore holds presence flags that expire after a TTL.
type FlagStore interface {
	Exists(ctx context.Context, key string) (bool, error)
	Set(ctx context.Context, key string, ttl time.Duration) error
}
