package campaign

import (
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/Aztech-1729/sliptads/config"
	"github.com/Aztech-1729/sliptads/internal/domain"
	campaignhttp "github.com/Aztech-1729/sliptads/internal/domain/campaign/delivery/http"
	"github.com/Aztech-1729/sliptads/internal/domain/campaign/deps"
	"github.com/Aztech-1729/sliptads/internal/domain/campaign/usecase/business"
	sessiondeps "github.com/Aztech-1729/sliptads/internal/domain/session/deps"
	"github.com/Aztech-1729/sliptads/internal/infrastructure/http/server"
	pkgerrors "github.com/Aztech-1729/sliptads/pkg/errors"
)

// Module provides ad configuration components for fx DI
var Module = fx.Module("campaign",
	fx.Provide(NewCampaignUseCaseFx),
	fx.Provide(NewCampaignHandlerFx),
	fx.Provide(NewCampaignRouterFx),
	fx.Invoke(RegisterRoutes),
)

// NewCampaignUseCaseFx creates the campaign use case for fx DI
func NewCampaignUseCaseFx(
	sessions sessiondeps.Service,
	factory domain.ClientFactory,
	cfg *config.DeliveryConfig,
	tgCfg *config.TelegramConfig,
	logger zerolog.Logger,
) deps.Service {
	return business.NewUseCase(sessions, factory, cfg, tgCfg, logger)
}

// NewCampaignHandlerFx creates the campaign handler for fx DI
func NewCampaignHandlerFx(useCase deps.Service, mapper *pkgerrors.Mapper, logger zerolog.Logger) *campaignhttp.CampaignHandler {
	return campaignhttp.NewCampaignHandler(useCase, mapper, logger)
}

// NewCampaignRouterFx creates the campaign router for fx DI
func NewCampaignRouterFx(handler *campaignhttp.CampaignHandler, logger zerolog.Logger) *campaignhttp.Router {
	return campaignhttp.NewRouter(handler, logger)
}

// RegisterRoutes registers campaign routes on the server
func RegisterRoutes(server *server.Server, router *campaignhttp.Router) {
	router.RegisterRoutes(server.Users())
}
