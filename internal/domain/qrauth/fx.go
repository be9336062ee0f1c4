package qrauth

import (
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	qrhttp "github.com/Aztech-1729/sliptads/internal/domain/qrauth/delivery/http"
	"github.com/Aztech-1729/sliptads/internal/domain/qrauth/deps"
	"github.com/Aztech-1729/sliptads/internal/domain/qrauth/usecase/business"
	"github.com/Aztech-1729/sliptads/internal/infrastructure/http/server"
	"github.com/Aztech-1729/sliptads/internal/infrastructure/telegram"
	pkgerrors "github.com/Aztech-1729/sliptads/pkg/errors"
)

// Module provides QR authentication components for fx DI
var Module = fx.Module("qrauth",
	fx.Provide(NewQRAuthUseCaseFx),
	fx.Provide(NewQRAuthHandlerFx),
	fx.Provide(NewQRAuthRouterFx),
	fx.Invoke(RegisterRoutes),
)

// NewQRAuthUseCaseFx creates a QR auth use case for fx DI
func NewQRAuthUseCaseFx(manager *telegram.QRAuthManager, logger zerolog.Logger) deps.QRAuthService {
	return business.NewQRAuthUseCase(manager, logger)
}

// NewQRAuthHandlerFx creates a QR auth handler for fx DI
func NewQRAuthHandlerFx(useCase deps.QRAuthService, mapper *pkgerrors.Mapper, logger zerolog.Logger) *qrhttp.QRAuthHandler {
	return qrhttp.NewQRAuthHandler(useCase, mapper, logger)
}

// NewQRAuthRouterFx creates a QR auth router for fx DI
func NewQRAuthRouterFx(handler *qrhttp.QRAuthHandler, logger zerolog.Logger) *qrhttp.Router {
	return qrhttp.NewRouter(handler, logger)
}

// RegisterRoutes registers QR auth routes on the server
func RegisterRoutes(server *server.Server, router *qrhttp.Router) {
	router.RegisterRoutes(server.Users())
}
