package ads

import (
	"context"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/Aztech-1729/sliptads/config"
	"github.com/Aztech-1729/sliptads/internal/domain"
	adshttp "github.com/Aztech-1729/sliptads/internal/domain/ads/delivery/http"
	adskafka "github.com/Aztech-1729/sliptads/internal/domain/ads/delivery/kafka"
	adstelegram "github.com/Aztech-1729/sliptads/internal/domain/ads/delivery/telegram"
	"github.com/Aztech-1729/sliptads/internal/domain/ads/deps"
	"github.com/Aztech-1729/sliptads/internal/domain/ads/repository/media"
	"github.com/Aztech-1729/sliptads/internal/domain/ads/repository/memory"
	"github.com/Aztech-1729/sliptads/internal/domain/ads/repository/notifier"
	adsredis "github.com/Aztech-1729/sliptads/internal/domain/ads/repository/redis"
	"github.com/Aztech-1729/sliptads/internal/domain/ads/usecase/business"
	sessiondeps "github.com/Aztech-1729/sliptads/internal/domain/session/deps"
	"github.com/Aztech-1729/sliptads/internal/infrastructure/bot"
	"github.com/Aztech-1729/sliptads/internal/infrastructure/http/server"
	"github.com/Aztech-1729/sliptads/internal/infrastructure/kafka"
	"github.com/Aztech-1729/sliptads/internal/infrastructure/metrics"
	"github.com/Aztech-1729/sliptads/internal/infrastructure/s3"
	pkgerrors "github.com/Aztech-1729/sliptads/pkg/errors"
)

// Module provides delivery worker components for fx DI
var Module = fx.Module("ads",
	fx.Provide(NewLeaseFx),
	fx.Provide(NewMediaStoreFx),
	fx.Provide(NewNotifierFx),
	fx.Provide(NewManagerFx),
	fx.Provide(NewAdsServiceFx),
	fx.Provide(NewCommandHandlerFx),
	fx.Provide(NewAdsHandlerFx),
	fx.Provide(NewAdsRouterFx),
	fx.Invoke(RegisterRoutes),
	fx.Invoke(RegisterBotRoutes),
)

// NewLeaseFx uses a Redis lease when Redis is configured
func NewLeaseFx(client *goredis.Client, cfg *config.RedisConfig, logger zerolog.Logger) deps.Lease {
	if client == nil {
		return memory.NewLease()
	}
	return adsredis.NewLease(client, cfg.LeaseTTL, logger)
}

// NewMediaStoreFx reads s3:// media only when object storage is enabled
func NewMediaStoreFx(client *s3.Client, logger zerolog.Logger) deps.MediaStore {
	if client == nil {
		return media.NewStore(nil, logger)
	}
	return media.NewStore(client, logger)
}

// NewNotifierFx fans events out to the logger bot and the events topic
func NewNotifierFx(b *bot.Bot, producer *kafka.EventProducer, cfg *config.NotifierConfig, m *metrics.Metrics, logger zerolog.Logger) deps.Notifier {
	var sinks []notifier.Sink
	if b != nil {
		sinks = append(sinks, notifier.Sink{Name: "bot", Notifier: b})
	}
	if producer != nil {
		sinks = append(sinks, notifier.Sink{Name: "kafka", Notifier: producer})
	}
	return notifier.New(logger, m, cfg.SendTimeout, sinks...)
}

// ManagerParams groups the manager's dependencies
type ManagerParams struct {
	fx.In

	LC          fx.Lifecycle
	Factory     domain.ClientFactory
	Sessions    sessiondeps.Service
	Access      sessiondeps.AccessGate
	Notifier    deps.Notifier
	Media       deps.MediaStore
	Lease       deps.Lease
	Delivery    *config.DeliveryConfig
	Telegram    *config.TelegramConfig
	NotifierCfg *config.NotifierConfig
	RedisCfg    *config.RedisConfig
	Redis       *goredis.Client
	Logger      zerolog.Logger
	Metrics     *metrics.Metrics
}

// NewManagerFx creates the worker manager and stops every worker on shutdown
func NewManagerFx(p ManagerParams) *business.Manager {
	opts := business.Options{
		Factory:       p.Factory,
		Sessions:      p.Sessions,
		Access:        p.Access,
		Notifier:      p.Notifier,
		Media:         p.Media,
		Lease:         p.Lease,
		Delivery:      p.Delivery,
		Telegram:      p.Telegram,
		RequireLogger: p.NotifierCfg.BotToken != "" && p.NotifierCfg.RequireStart,
		Logger:        p.Logger,
		Metrics:       p.Metrics,
	}
	if p.Redis != nil {
		opts.LeaseTTL = p.RedisCfg.LeaseTTL
	}

	mgr := business.NewManager(opts)

	p.LC.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return mgr.StopAll(ctx)
		},
	})

	return mgr
}

// NewAdsServiceFx exposes the manager as the ads service
func NewAdsServiceFx(mgr *business.Manager) deps.Service {
	return mgr
}

// NewCommandHandlerFx creates the command stream handler
func NewCommandHandlerFx(useCase deps.Service, logger zerolog.Logger) deps.CommandHandler {
	return adskafka.NewCommandHandler(useCase, logger)
}

// NewAdsHandlerFx creates the ads handler for fx DI
func NewAdsHandlerFx(useCase deps.Service, mapper *pkgerrors.Mapper, logger zerolog.Logger) *adshttp.AdsHandler {
	return adshttp.NewAdsHandler(useCase, mapper, logger)
}

// NewAdsRouterFx creates the ads router for fx DI
func NewAdsRouterFx(handler *adshttp.AdsHandler, logger zerolog.Logger) *adshttp.Router {
	return adshttp.NewRouter(handler, logger)
}

// RegisterRoutes registers ads routes on the server
func RegisterRoutes(server *server.Server, router *adshttp.Router) {
	router.RegisterRoutes(server.Users())
}

// RegisterBotRoutes registers the logger bot commands when the bot is enabled
func RegisterBotRoutes(b *bot.Bot, sessions sessiondeps.Service, useCase deps.Service, logger zerolog.Logger) {
	if b == nil {
		return
	}
	handlers := adstelegram.NewHandlers(sessions, useCase, b, logger)
	adstelegram.NewRouter(handlers, logger).RegisterRoutes(b.Raw())
}
