// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"agency_backend/internal/feature/auth/domain/entity"
	"agency_backend/internal/feature/auth/usecase"
)

// DefaultUserTTL bounds how long a cached account may be served.
const DefaultUserTTL = 5 * time.Minute

// CachingUserRepository decorates a UserRepository with a Redis read-through cache for FindByID,
// which Protect calls on every authenticated request. Every mutation evicts the affected key,
// so deactivation and role changes take effect on the next request.
type CachingUserRepository struct {
	usecase.UserRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

// NewCachingUserRepository decorates a UserRepository with Redis caching.
// If ttl is 0, it defaults to DefaultUserTTL. If namespace is empty, it uses "users".
// A nil rdb disables caching entirely.
func NewCachingUserRepository(rdb *redis.Client, ttl time.Duration, inner usecase.UserRepository, namespace string) *CachingUserRepository {
	if ttl <= 0 {
		ttl = DefaultUserTTL
	}
	if namespace == "" {
		namespace = "users"
	}
	return &CachingUserRepository{
		UserRepository: inner,
		rdb:            rdb,
		ttl:            ttl,
		namespace:      namespace,
	}
}

// FindByID retrieves a user, checking the cache first then falling back to the database.
func (c *CachingUserRepository) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	if c.rdb == nil {
		return c.UserRepository.FindByID(ctx, id)
	}

	key := c.cacheKey(id)

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var u entity.User
		if err := json.Unmarshal(b, &u); err == nil {
			return &u, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to database
	u, err := c.UserRepository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(u); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}
	return u, nil
}

// UpdatePassword replaces the hash and evicts the cached account.
func (c *CachingUserRepository) UpdatePassword(ctx context.Context, id uint, hash string) error {
	if err := c.UserRepository.UpdatePassword(ctx, id, hash); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

// UpdateLastLogin records the login time and evicts the cached account.
func (c *CachingUserRepository) UpdateLastLogin(ctx context.Context, id uint, at time.Time) error {
	if err := c.UserRepository.UpdateLastLogin(ctx, id, at); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

// UpdateRole changes the role and evicts the cached account.
func (c *CachingUserRepository) UpdateRole(ctx context.Context, id uint, role entity.Role) error {
	if err := c.UserRepository.UpdateRole(ctx, id, role); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

// SetActive toggles the account and evicts the cached account.
func (c *CachingUserRepository) SetActive(ctx context.Context, id uint, active bool) error {
	if err := c.UserRepository.SetActive(ctx, id, active); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

// invalidate drops the cached entry. Failures are logged; the TTL bounds staleness.
func (c *CachingUserRepository) invalidate(ctx context.Context, id uint) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, c.cacheKey(id)).Err(); err != nil {
		slog.Warn("failed to evict cached user", "user_id", id, "error", err)
	}
}

// cacheKey generates the cache key for one account.
func (c *CachingUserRepository) cacheKey(id uint) string {
	return c.namespace + ":id:" + strconv.FormatUint(uint64(id), 10)
}
