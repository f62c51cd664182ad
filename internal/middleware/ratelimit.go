package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	memorystore "github.com/ulule/limiter/v3/drivers/store/memory"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"
)

const (
	defaultRatelimitRate = "10-S"
	ratelimitKeyPrefix   = "cleanplate_ratelimit"
)

// NewRedisClient connects to redisURL and verifies the connection.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

// NewLimiterStore returns a Redis-backed limiter store shared by every
// instance, or a process-local store when client is nil.
func NewLimiterStore(client *redis.Client) (limiter.Store, error) {
	if client == nil {
		return memorystore.NewStoreWithOptions(limiter.StoreOptions{
			Prefix:          ratelimitKeyPrefix,
			CleanUpInterval: time.Minute,
		}), nil
	}
	store, err := redisstore.NewStoreWithOptions(client, limiter.StoreOptions{
		Prefix: ratelimitKeyPrefix,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis limiter store: %w", err)
	}
	return store, nil
}
