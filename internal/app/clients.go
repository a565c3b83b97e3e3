package app

import (
	"context"
	"fmt"
	"io"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/graduation-masterpiece/demo-repository/internal/clients/redis"
	"github.com/graduation-masterpiece/demo-repository/internal/platform/logger"
	"github.com/graduation-masterpiece/demo-repository/internal/platform/objectstore"
	"github.com/graduation-masterpiece/demo-repository/internal/platform/openai"
)

type Clients struct {
	// Nil when REDIS_ADDR is unset; flag and recency stores fall back to memory.
	Redis  *goredis.Client
	OpenAI openai.Client
	Store  objectstore.Store
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	var out Clients
	if strings.TrimSpace(cfg.RedisAddr) != "" {
		rdb, err := redis.NewClient(ctx, redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, log)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis: %w", err)
		}
		out.Redis = rdb
	} else {
		log.Warn("REDIS_ADDR not set; like locks and search history are process-local")
	}

	llm, err := openai.NewClient(cfg.OpenAI, log)
	if err != nil {
		out.Close()
		return Clients{}, fmt.Errorf("init openai client: %w", err)
	}
	out.OpenAI = llm

	store, err := resolveObjectStore(ctx, log, cfg.Storage)
	if err != nil {
		out.Close()
		return Clients{}, err
	}
	out.Store = store
	return out, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if closer, ok := c.Store.(io.Closer); ok {
		_ = closer.Close()
	}
}
