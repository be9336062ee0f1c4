package redis

import (
	"context"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/Aztech-1729/sliptads/config"
	"github.com/Aztech-1729/sliptads/internal/infrastructure/http/server"
)

// Module provides the Redis client for fx DI. Without REDIS_ADDR the client is nil.
var Module = fx.Module("redis",
	fx.Provide(provideClient),
	fx.Invoke(registerHealthCheck),
)

func registerHealthCheck(srv *server.Server, client *goredis.Client) {
	if client == nil {
		return
	}
	srv.AddHealthCheck("redis", func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})
}

func provideClient(lc fx.Lifecycle, cfg *config.RedisConfig, logger zerolog.Logger) *goredis.Client {
	if cfg.Addr == "" {
		logger.Info().Msg("Redis not configured, worker leases are process local")
		return nil
	}

	client := NewClient(cfg)
	log := logger.With().Str("component", "redis").Logger()

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return Ping(ctx, client, log)
		},
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})

	return client
}
