package telegram

import (
	"context"

	"github.com/gotd/contrib/middleware/floodwait"
	"github.com/gotd/td/telegram"
	"github.com/rs/zerolog"

	"github.com/Aztech-1729/sliptads/config"
	"github.com/Aztech-1729/sliptads/internal/domain"
)

// Factory creates per-user remote clients
type Factory struct {
	cfg     *config.TelegramConfig
	source  SessionSource
	logger  zerolog.Logger
	newFunc func(cfg MTProtoClientConfig) (domain.RemoteClient, error)
}

// NewFactory creates a client factory bound to the session store
func NewFactory(cfg *config.TelegramConfig, source SessionSource, logger zerolog.Logger) *Factory {
	return &Factory{
		cfg:    cfg,
		source: source,
		logger: logger,
		newFunc: func(cfg MTProtoClientConfig) (domain.RemoteClient, error) {
			return NewMTProtoClient(cfg)
		},
	}
}

// NewLoginClient creates a client over a fresh in-memory session
func (f *Factory) NewLoginClient(creds domain.Credentials) (domain.RemoteClient, error) {
	return f.newFunc(MTProtoClientConfig{
		APIID:     creds.APIID,
		APIHash:   creds.APIHash,
		Storage:   NewMemorySessionStorage(),
		RateLimit: f.cfg.RateLimit,
		Logger:    f.logger.With().Str("client", "login").Logger(),
	})
}

// NewSessionClient creates a client over the user's durable session
func (f *Factory) NewSessionClient(ctx context.Context, userID int64) (domain.RemoteClient, error) {
	return f.durable(ctx, userID, nil)
}

// NewCatalogClient creates a durable client that waits out flood waits transparently
func (f *Factory) NewCatalogClient(ctx context.Context, userID int64) (domain.RemoteClient, error) {
	waiter := floodwait.NewSimpleWaiter().WithMaxRetries(3)
	return f.durable(ctx, userID, []telegram.Middleware{waiter})
}

func (f *Factory) durable(ctx context.Context, userID int64, middlewares []telegram.Middleware) (domain.RemoteClient, error) {
	s, err := f.source.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !s.HasHandle || s.APIID == 0 || s.APIHash == "" {
		return nil, domain.ErrLoginRequired
	}

	return f.newFunc(MTProtoClientConfig{
		APIID:       s.APIID,
		APIHash:     s.APIHash,
		Storage:     NewDurableSessionStorage(userID, f.source),
		RateLimit:   f.cfg.RateLimit,
		Middlewares: middlewares,
		Logger:      f.logger.With().Int64("user_id", userID).Logger(),
	})
}

var _ domain.ClientFactory = (*Factory)(nil)
