package s3

import (
	"context"

	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/Aztech-1729/sliptads/config"
)

// Module provides the S3/MinIO client for fx DI. It is nil while S3 is disabled.
var Module = fx.Module("s3",
	fx.Provide(provideClient),
	fx.Invoke(registerLifecycle),
)

func provideClient(cfg *config.S3Config, logger zerolog.Logger) (*Client, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	return NewClient(&Config{
		Endpoint:  cfg.Endpoint,
		AccessKey: cfg.AccessKey,
		SecretKey: cfg.SecretKey,
		Bucket:    cfg.Bucket,
		UseSSL:    cfg.UseSSL,
	}, logger.With().Str("component", "s3").Logger())
}

func registerLifecycle(lc fx.Lifecycle, client *Client, logger zerolog.Logger) {
	if client == nil {
		return
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info().Msg("initializing S3/MinIO client...")
			if err := client.EnsureBucket(ctx); err != nil {
				return err
			}
			logger.Info().Msg("S3/MinIO client initialized successfully")
			return nil
		},
	})
}
