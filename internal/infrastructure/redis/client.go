package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Aztech-1729/sliptads/config"
)

// NewClient creates a Redis client. Connectivity is checked by Ping.
func NewClient(cfg *config.RedisConfig) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
}

// Ping verifies the connection
func Ping(ctx context.Context, client *goredis.Client, logger zerolog.Logger) error {
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	logger.Info().Str("addr", client.Options().Addr).Msg("Connected to Redis")
	return nil
}
