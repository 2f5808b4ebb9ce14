package redis

import (
	"context"
	"log/slog"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds the Redis connection settings.
type Config struct {
	Host     string
	Port     string
	Password string
}

// Enabled reports whether a Redis host has been configured.
func (c Config) Enabled() bool {
	return c.Host != ""
}

// Addr returns host:port, defaulting the port to 6379.
func (c Config) Addr() string {
	port := c.Port
	if port == "" {
		port = "6379"
	}
	return net.JoinHostPort(c.Host, port)
}

// NewRedisClient connects to Redis and verifies the connection with PING.
// Callers treat an error as "run without Redis".
func NewRedisClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	addr := cfg.Addr()

	rdb := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    cfg.Password,
		DB:          0,
		DialTimeout: 3 * time.Second,
	})

	// 接続確認
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Error("Redis connection failed", "address", addr, "error", err)
		_ = rdb.Close()
		return nil, err
	}

	slog.Info("Redis connection successful", "address", addr)
	return rdb, nil
}
