package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfig_Addr(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"explicit port", Config{Host: "cache", Port: "6380"}, "cache:6380"},
		{"default port", Config{Host: "localhost"}, "localhost:6379"},
		{"ipv6 host", Config{Host: "::1", Port: "6379"}, "[::1]:6379"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.Addr())
		})
	}
}

func TestConfig_Enabled(t *testing.T) {
	assert.False(t, Config{}.Enabled())
	assert.False(t, Config{Port: "6379"}.Enabled())
	assert.True(t, Config{Host: "localhost"}.Enabled())
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	rdb, err := NewRedisClient(ctx, Config{Host: "127.0.0.1", Port: "1"})

	assert.Error(t, err)
	assert.Nil(t, rdb)
}
