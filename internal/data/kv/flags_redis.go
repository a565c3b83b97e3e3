package kv

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisFlagStore struct {
	rdb    redis.Cmdable
	prefix string
}

func NewRedisFlagStore(rdb redis.Cmdable, prefix string) FlagStore {
	return &redisFlagStore{rdb: rdb, prefix: prefix}
}

func (s *redisFlagStore) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.rdb.Exists(ctx, s.prefix+key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *redisFlagStore) Set(ctx context.Context, key string, ttl time.Duration) error {
	return s.rdb.Set(ctx, s.prefix+key, "1", ttl).Err()
}
