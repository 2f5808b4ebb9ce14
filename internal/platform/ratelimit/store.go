// Package ratelimit applies per-client fixed-window request limits as gin middleware.
// Counting is delegated to ulule/limiter; counters live in Redis when it is available and in process memory otherwise.
package ratelimit

import (
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

const (
	// KeyPrefix namespaces every counter key.
	KeyPrefix = "ratelimit"

	memoryCleanUpInterval = time.Minute
)

// NewMemoryStore keeps counters in process memory. Expired windows are swept periodically.
func NewMemoryStore() limiter.Store {
	return memory.NewStoreWithOptions(limiter.StoreOptions{
		Prefix:          KeyPrefix,
		CleanUpInterval: memoryCleanUpInterval,
	})
}

// NewRedisStore keeps counters in Redis so limits hold across server instances.
func NewRedisStore(rdb *redis.Client) (limiter.Store, error) {
	return sredis.NewStoreWithOptions(rdb, limiter.StoreOptions{Prefix: KeyPrefix})
}
