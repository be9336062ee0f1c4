package http

import (
	"github.com/rs/zerolog"

	"github.com/Aztech-1729/sliptads/pkg/httputil"
)

// Router registers ads routes
type Router struct {
	handler *AdsHandler
	logger  zerolog.Logger
}

// NewRouter creates a new ads router
func NewRouter(handler *AdsHandler, logger zerolog.Logger) *Router {
	return &Router{
		handler: handler,
		logger:  logger,
	}
}

// RegisterRoutes registers ads routes on the per-user group
func (r *Router) RegisterRoutes(users *httputil.UserGroup) {
	users.POST("/ads/start", r.handler.Start)
	users.POST("/ads/stop", r.handler.Stop)
	users.GET("/ads", r.handler.Status)

	r.logger.Info().Msg("Ads routes registered")
}
