package http

import (
	"context"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/Aztech-1729/sliptads/config"
	"github.com/Aztech-1729/sliptads/internal/infrastructure/http/server"
	pkgerrors "github.com/Aztech-1729/sliptads/pkg/errors"
)

// Module provides HTTP server for fx DI
var Module = fx.Module("http",
	fx.Provide(
		NewServerFx,
		pkgerrors.NewMapper,
	),
)

// NewServerFx creates HTTP server with lifecycle hooks for fx DI
func NewServerFx(
	lc fx.Lifecycle,
	serviceCfg *config.ServiceConfig,
	db *gorm.DB,
	logger zerolog.Logger,
) *server.Server {
	srv := server.NewServer(serviceCfg.Name, serviceCfg.Port, logger.With().Str("component", "http").Logger())

	// Register Prometheus metrics endpoint
	srv.RegisterMetrics()
	srv.RegisterHealth()
	srv.AddHealthCheck("database", func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return srv.Start()
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})

	return srv
}
