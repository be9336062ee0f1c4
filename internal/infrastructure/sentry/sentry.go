// Package sentry configures error reporting
package sentry

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/Aztech-1729/sliptads/config"
)

const flushTimeout = 2 * time.Second

// Module initializes the Sentry client when a DSN is configured
var Module = fx.Module("sentry",
	fx.Invoke(register),
)

// Init configures the global hub. An empty DSN leaves reporting disabled.
func Init(cfg *config.SentryConfig, release string) (bool, error) {
	if cfg.DSN == "" {
		return false, nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          release,
		AttachStacktrace: true,
	})
	return err == nil, err
}

func register(lc fx.Lifecycle, cfg *config.SentryConfig, svc *config.ServiceConfig, logger zerolog.Logger) error {
	enabled, err := Init(cfg, svc.Name)
	if err != nil {
		return err
	}
	if !enabled {
		logger.Info().Msg("Sentry DSN not set, error reporting disabled")
		return nil
	}

	logger.Info().Str("environment", cfg.Environment).Msg("Sentry error reporting enabled")

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			sentry.Flush(flushTimeout)
			return nil
		},
	})
	return nil
}
