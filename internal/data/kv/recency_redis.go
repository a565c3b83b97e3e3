package kv

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const DefaultRecencyKey = "search:recent_terms"

type redisRecencyStore struct {
	rdb redis.Cmdable
	key string
}

// NewRedisRecencyStore keeps the set in one sorted set under key.
func NewRedisRecencyStore(rdb redis.Cmdable, key string) RecencyStore {
	if key == "" {
		key = DefaultRecencyKey
	}
	return &redisRecencyStore{rdb: rdb, key: key}
}

func (s *redisRecencyStore) Add(ctx context.Context, member string, score float64) error {
	return s.rdb.ZAdd(ctx, s.key, redis.Z{Score: score, Member: member}).Err()
}

func (s *redisRecencyStore) Remove(ctx context.Context, members ...string) error {
	if len(members) == 0 {
		return nil
	}
	args := make([]interface{}, len(members))
	for i, m := range members {
		args[i] = m
	}
	return s.rdb.ZRem(ctx, s.key, args...).Err()
}

func (s *redisRecencyStore) Newest(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		return []string{}, nil
	}
	out, err := s.rdb.ZRevRange(ctx, s.key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

func (s *redisRecencyStore) TrimTo(ctx context.Context, keep int) error {
	if keep <= 0 {
		return s.rdb.Del(ctx, s.key).Err()
	}
	return s.rdb.ZRemRangeByRank(ctx, s.key, 0, int64(-(keep + 1))).Err()
}

func (s *redisRecencyStore) Len(ctx context.Context) (int64, error) {
	return s.rdb.ZCard(ctx, s.key).Result()
}
