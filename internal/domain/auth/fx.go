package auth

import (
	"context"

	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/Aztech-1729/sliptads/config"
	"github.com/Aztech-1729/sliptads/internal/domain"
	authhttp "github.com/Aztech-1729/sliptads/internal/domain/auth/delivery/http"
	"github.com/Aztech-1729/sliptads/internal/domain/auth/deps"
	"github.com/Aztech-1729/sliptads/internal/domain/auth/repository/memory"
	"github.com/Aztech-1729/sliptads/internal/domain/auth/usecase/business"
	sessiondeps "github.com/Aztech-1729/sliptads/internal/domain/session/deps"
	"github.com/Aztech-1729/sliptads/internal/infrastructure/http/server"
	"github.com/Aztech-1729/sliptads/internal/infrastructure/metrics"
	pkgerrors "github.com/Aztech-1729/sliptads/pkg/errors"
)

// Module provides code login components for fx DI
var Module = fx.Module("auth",
	fx.Provide(NewAttemptStoreFx),
	fx.Provide(NewAuthUseCaseFx),
	fx.Provide(NewAuthHandlerFx),
	fx.Provide(NewAuthRouterFx),
	fx.Invoke(RegisterRoutes),
)

// NewAttemptStoreFx creates the in-memory attempt store and stops it with the app
func NewAttemptStoreFx(lc fx.Lifecycle, cfg *config.AuthConfig, logger zerolog.Logger) deps.AttemptStore {
	store := memory.NewStore(cfg.CleanupInterval, cfg.MaxAttempts, logger)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Info().Int("attempts", store.Count()).Msg("Stopping login attempt store")
			store.Stop()
			return nil
		},
	})

	return store
}

// NewAuthUseCaseFx creates the login use case for fx DI
func NewAuthUseCaseFx(
	store deps.AttemptStore,
	factory domain.ClientFactory,
	sessions sessiondeps.Service,
	authCfg *config.AuthConfig,
	tgCfg *config.TelegramConfig,
	logger zerolog.Logger,
	m *metrics.Metrics,
) deps.Service {
	return business.NewUseCase(store, factory, sessions, authCfg, tgCfg, logger, m)
}

// NewAuthHandlerFx creates the login handler for fx DI
func NewAuthHandlerFx(useCase deps.Service, mapper *pkgerrors.Mapper, logger zerolog.Logger) *authhttp.AuthHandler {
	return authhttp.NewAuthHandler(useCase, mapper, logger)
}

// NewAuthRouterFx creates the login router for fx DI
func NewAuthRouterFx(handler *authhttp.AuthHandler, logger zerolog.Logger) *authhttp.Router {
	return authhttp.NewRouter(handler, logger)
}

// RegisterRoutes registers login routes on the server
func RegisterRoutes(server *server.Server, router *authhttp.Router) {
	router.RegisterRoutes(server.Users())
}
