package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCooldown implements Cooldown with SET NX PX so that every instance
// sharing the Redis database sees the same window
type RedisCooldown struct {
	client    redis.UniversalClient
	keyPrefix string
	window    time.Duration
}

// NewRedisCooldown creates a Redis-backed cooldown
func NewRedisCooldown(client redis.UniversalClient, keyPrefix string, window time.Duration) *RedisCooldown {
	if keyPrefix == "" {
		keyPrefix = "shopforge:cooldown:"
	}
	return &RedisCooldown{
		client:    client,
		keyPrefix: keyPrefix,
		window:    window,
	}
}

// Allow sets the key if absent. The first caller in a window wins.
func (c *RedisCooldown) Allow(ctx context.Context, key string) (bool, error) {
	ok, err := c.client.SetNX(ctx, c.keyPrefix+key, time.Now().UnixMilli(), c.window).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check cooldown: %w", err)
	}
	return ok, nil
}

var _ Cooldown = (*RedisCooldown)(nil)
