package catalog

import (
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/Aztech-1729/sliptads/config"
	"github.com/Aztech-1729/sliptads/internal/domain"
	cataloghttp "github.com/Aztech-1729/sliptads/internal/domain/catalog/delivery/http"
	"github.com/Aztech-1729/sliptads/internal/domain/catalog/deps"
	"github.com/Aztech-1729/sliptads/internal/domain/catalog/usecase/business"
	sessiondeps "github.com/Aztech-1729/sliptads/internal/domain/session/deps"
	"github.com/Aztech-1729/sliptads/internal/infrastructure/http/server"
	"github.com/Aztech-1729/sliptads/internal/infrastructure/metrics"
	pkgerrors "github.com/Aztech-1729/sliptads/pkg/errors"
)

// Module provides destination catalog components for fx DI
var Module = fx.Module("catalog",
	fx.Provide(NewBuilderFx),
	fx.Provide(NewJoinerFx),
	fx.Provide(NewCatalogUseCaseFx),
	fx.Provide(NewCatalogHandlerFx),
	fx.Provide(NewCatalogRouterFx),
	fx.Invoke(RegisterRoutes),
)

// NewBuilderFx creates the catalog builder for fx DI
func NewBuilderFx(
	factory domain.ClientFactory,
	cfg *config.CatalogConfig,
	tgCfg *config.TelegramConfig,
	logger zerolog.Logger,
	m *metrics.Metrics,
) deps.Builder {
	return business.NewBuilder(factory, cfg, tgCfg, logger, m)
}

// NewJoinerFx creates the chat joiner for fx DI
func NewJoinerFx(
	factory domain.ClientFactory,
	cfg *config.CatalogConfig,
	tgCfg *config.TelegramConfig,
	logger zerolog.Logger,
	m *metrics.Metrics,
) deps.Joiner {
	return business.NewJoiner(factory, cfg, tgCfg, logger, m)
}

// NewCatalogUseCaseFx creates the catalog use case for fx DI
func NewCatalogUseCaseFx(
	builder deps.Builder,
	joiner deps.Joiner,
	sessions sessiondeps.Service,
	access sessiondeps.AccessGate,
	cfg *config.CatalogConfig,
	logger zerolog.Logger,
) deps.Service {
	return business.NewUseCase(builder, joiner, sessions, access, cfg, logger)
}

// NewCatalogHandlerFx creates the catalog handler for fx DI
func NewCatalogHandlerFx(useCase deps.Service, mapper *pkgerrors.Mapper, logger zerolog.Logger) *cataloghttp.CatalogHandler {
	return cataloghttp.NewCatalogHandler(useCase, mapper, logger)
}

// NewCatalogRouterFx creates the catalog router for fx DI
func NewCatalogRouterFx(handler *cataloghttp.CatalogHandler, logger zerolog.Logger) *cataloghttp.Router {
	return cataloghttp.NewRouter(handler, logger)
}

// RegisterRoutes registers catalog routes on the server
func RegisterRoutes(server *server.Server, router *cataloghttp.Router) {
	router.RegisterRoutes(server.Users())
}
