package http

import (
	"github.com/rs/zerolog"

	"github.com/Aztech-1729/sliptads/pkg/httputil"
)

// Router registers campaign routes
type Router struct {
	handler *CampaignHandler
	logger  zerolog.Logger
}

// NewRouter creates a new campaign router
func NewRouter(handler *CampaignHandler, logger zerolog.Logger) *Router {
	return &Router{
		handler: handler,
		logger:  logger,
	}
}

// RegisterRoutes registers campaign routes on the per-user group
func (r *Router) RegisterRoutes(users *httputil.UserGroup) {
	users.GET("/campaign", r.handler.Get)
	users.PUT("/campaign/source/custom", r.handler.SetCustom)
	users.PUT("/campaign/source/saved", r.handler.SetSaved)
	users.PUT("/campaign/source/post-link", r.handler.SetPostLink)
	users.PUT("/campaign/fallback", r.handler.SetFallback)
	users.PUT("/campaign/timing", r.handler.SetTiming)

	r.logger.Info().Msg("Campaign routes registered")
}
