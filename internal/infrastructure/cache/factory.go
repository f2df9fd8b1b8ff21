package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopforge/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 3,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// NewCooldown returns a Redis cooldown when a client is available, otherwise
// an in-memory one. The in-memory variant does not share state between
// instances, so duplicate alerts are possible in a multi-instance deployment.
func NewCooldown(client redis.UniversalClient, window time.Duration, logger *zap.Logger) Cooldown {
	if client != nil {
		logger.Info("using Redis cooldown", zap.Duration("window", window))
		return NewRedisCooldown(client, "", window)
	}
	logger.Warn("Redis disabled, using in-memory cooldown", zap.Duration("window", window))
	return NewInMemoryCooldown(window, 0)
}
