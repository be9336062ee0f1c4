package http

import (
	"github.com/rs/zerolog"

	"github.com/Aztech-1729/sliptads/pkg/httputil"
)

// Router registers admin routes
type Router struct {
	handler *AdminHandler
	logger  zerolog.Logger
}

// NewRouter creates a new admin router
func NewRouter(handler *AdminHandler, logger zerolog.Logger) *Router {
	return &Router{
		handler: handler,
		logger:  logger,
	}
}

// RegisterRoutes registers admin routes on the token-guarded group
func (r *Router) RegisterRoutes(admin *httputil.UserGroup) {
	admin.GET("/premium", r.handler.GetPremium)
	admin.PUT("/premium", r.handler.SetPremium)

	r.logger.Info().Msg("Admin routes registered")
}
