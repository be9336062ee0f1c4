package session

import (
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/Aztech-1729/sliptads/config"
	sessionhttp "github.com/Aztech-1729/sliptads/internal/domain/session/delivery/http"
	"github.com/Aztech-1729/sliptads/internal/domain/session/deps"
	"github.com/Aztech-1729/sliptads/internal/domain/session/repository/postgres"
	"github.com/Aztech-1729/sliptads/internal/domain/session/usecase/business"
	"github.com/Aztech-1729/sliptads/internal/infrastructure/http/server"
	pkgerrors "github.com/Aztech-1729/sliptads/pkg/errors"
	"github.com/Aztech-1729/sliptads/pkg/httputil"
	"github.com/Aztech-1729/sliptads/pkg/sealer"
)

// Module provides session store components for fx DI
var Module = fx.Module("session",
	fx.Provide(
		postgres.NewRepository,
		NewSealerFx,
		business.NewUseCase,
		func(uc *business.UseCase) deps.Service {
			return uc
		},
		NewAccessGateFx,
		NewAdminRouterFx,
	),
	fx.Invoke(RegisterAdminRoutes),
)

// NewSealerFx creates the handle sealer from database configuration
func NewSealerFx(cfg *config.DatabaseConfig) (*sealer.Sealer, error) {
	return sealer.New(cfg.EncryptionKey)
}

// NewAccessGateFx creates the premium access gate for fx DI
func NewAccessGateFx(cfg *config.AccessConfig) deps.AccessGate {
	return business.NewAccessGate(cfg)
}

// NewAdminRouterFx creates the admin router for fx DI
func NewAdminRouterFx(useCase deps.Service, mapper *pkgerrors.Mapper, logger zerolog.Logger) *sessionhttp.Router {
	return sessionhttp.NewRouter(sessionhttp.NewAdminHandler(useCase, mapper, logger), logger)
}

// RegisterAdminRoutes mounts the admin routes when an admin token is configured
func RegisterAdminRoutes(srv *server.Server, router *sessionhttp.Router, cfg *config.AccessConfig, logger zerolog.Logger) {
	if cfg.AdminToken == "" {
		logger.Info().Msg("ACCESS_ADMIN_TOKEN not set, admin routes disabled")
		return
	}
	router.RegisterRoutes(httputil.NewAdminGroup(srv.Router, cfg.AdminToken, httputil.AccessLog(logger)))
}
