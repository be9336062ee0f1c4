package telegram

import (
	"context"

	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/Aztech-1729/sliptads/config"
	"github.com/Aztech-1729/sliptads/internal/domain"
	"github.com/Aztech-1729/sliptads/internal/domain/session/deps"
	"github.com/Aztech-1729/sliptads/internal/infrastructure/metrics"
)

// Module provides the Telegram client factory and the QR login manager
var Module = fx.Module("telegram",
	fx.Provide(
		NewFactoryFx,
		NewQRSessionStoreFx,
		NewQRAuthManagerFx,
	),
)

// NewFactoryFx binds the client factory to the session store
func NewFactoryFx(cfg *config.TelegramConfig, sessions deps.Service, logger zerolog.Logger) domain.ClientFactory {
	return NewFactory(cfg, sessions, logger.With().Str("component", "telegram").Logger())
}

// NewQRSessionStoreFx creates the QR session store and stops its cleanup on shutdown
func NewQRSessionStoreFx(lc fx.Lifecycle, cfg *config.AuthConfig, logger zerolog.Logger) *QRSessionStore {
	store := NewQRSessionStore(cfg.QRSessionTTL, cfg.CleanupInterval, cfg.QRMaxSessions, logger)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			store.Stop()
			return nil
		},
	})

	return store
}

// NewQRAuthManagerFx creates the QR manager promoting into the session store
func NewQRAuthManagerFx(sessions deps.Service, store *QRSessionStore, logger zerolog.Logger, m *metrics.Metrics) *QRAuthManager {
	return NewQRAuthManager(sessions, store, logger, m)
}
