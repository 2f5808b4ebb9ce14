package di

import (
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"

	"agency_backend/internal/platform/ratelimit"
)

// NewRateLimitStore creates the rate limit store.
// If Redis is available, it returns a Redis-backed store so limits hold across instances.
// Otherwise, or when the Redis store cannot be prepared, it falls back to process memory.
func NewRateLimitStore(rdb *redis.Client) limiter.Store {
	if rdb == nil {
		return ratelimit.NewMemoryStore()
	}

	store, err := ratelimit.NewRedisStore(rdb)
	if err != nil {
		slog.Warn("redis rate limit store unavailable, falling back to memory", "error", err)
		return ratelimit.NewMemoryStore()
	}
	return store
}
