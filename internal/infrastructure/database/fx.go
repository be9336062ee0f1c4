package database

import (
	"context"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/Aztech-1729/sliptads/config"
)

// Module provides database components for fx dependency injection
var Module = fx.Module("database",
	fx.Provide(NewDBFx),
)

// NewDBFx opens the database with fx lifecycle management
func NewDBFx(
	lc fx.Lifecycle,
	cfg *config.DatabaseConfig,
	logger zerolog.Logger,
) (*gorm.DB, error) {
	db, err := NewDB(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Driver == "postgres" {
		if err := RunMigrations(db, cfg); err != nil {
			logger.Warn().Err(err).Msg("Failed to run migrations")
			// Don't fail startup if migrations fail - they might already be applied
		} else {
			logger.Info().Msg("Database migrations completed successfully")
		}
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("Closing database connection")
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})

	logger.Info().
		Str("driver", cfg.Driver).
		Str("database", cfg.DBName).
		Msg("Database connected successfully")

	return db, nil
}
