// Package cache holds the Redis connections shared by the idempotency
// middleware and the job queue.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"doc-compliance/internal/config"
)

const pingTimeout = 5 * time.Second

func Options(c *config.Config) *redis.Options {
	return &redis.Options{Addr: c.RedisAddr, DB: c.RedisDB}
}

// Open connects and pings. The client is closed again when the ping fails.
func Open(ctx context.Context, c *config.Config) (*redis.Client, error) {
	if !c.RedisEnabled() {
		return nil, fmt.Errorf("redis: REDIS_ADDR is empty")
	}
	r := redis.NewClient(Options(c))
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := r.Ping(ctx).Err(); err != nil {
		_ = r.Close()
		return nil, fmt.Errorf("redis ping %s: %w", c.RedisAddr, err)
	}
	return r, nil
}

// QueueOpt points the job queue at the same Redis the API uses.
func QueueOpt(c *config.Config) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{Addr: c.RedisAddr, DB: c.RedisDB}
}
