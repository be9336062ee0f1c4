package infrastructure

import (
	"go.uber.org/fx"

	"github.com/Aztech-1729/sliptads/internal/infrastructure/bot"
	"github.com/Aztech-1729/sliptads/internal/infrastructure/database"
	httpfx "github.com/Aztech-1729/sliptads/internal/infrastructure/http"
	"github.com/Aztech-1729/sliptads/internal/infrastructure/kafka"
	"github.com/Aztech-1729/sliptads/internal/infrastructure/logger"
	"github.com/Aztech-1729/sliptads/internal/infrastructure/metrics"
	"github.com/Aztech-1729/sliptads/internal/infrastructure/redis"
	"github.com/Aztech-1729/sliptads/internal/infrastructure/s3"
	"github.com/Aztech-1729/sliptads/internal/infrastructure/sentry"
	"github.com/Aztech-1729/sliptads/internal/infrastructure/telegram"
)

// Module aggregates all infrastructure modules
var Module = fx.Module("infrastructure",
	logger.Module,
	sentry.Module,
	database.Module, // Must be before http (health check pings *gorm.DB)
	metrics.Module,
	httpfx.Module,
	redis.Module,
	s3.Module,
	kafka.Module,
	bot.Module,
	telegram.Module,
)
