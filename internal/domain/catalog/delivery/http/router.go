package http

import (
	"github.com/rs/zerolog"

	"github.com/Aztech-1729/sliptads/pkg/httputil"
)

// Router registers catalog routes
type Router struct {
	handler *CatalogHandler
	logger  zerolog.Logger
}

// NewRouter creates a new catalog router
func NewRouter(handler *CatalogHandler, logger zerolog.Logger) *Router {
	return &Router{
		handler: handler,
		logger:  logger,
	}
}

// RegisterRoutes registers catalog routes on the per-user group
func (r *Router) RegisterRoutes(users *httputil.UserGroup) {
	users.POST("/catalog/refresh", r.handler.Refresh)
	users.GET("/catalog", r.handler.List)
	users.POST("/catalog/toggle", r.handler.Toggle)
	users.POST("/catalog/filter", r.handler.SetFilter)
	users.DELETE("/catalog/filter", r.handler.ClearFilter)
	users.POST("/catalog/select-all", r.handler.SelectAll)
	users.POST("/catalog/unselect-all", r.handler.UnselectAll)
	users.POST("/catalog/join", r.handler.Join)
	users.POST("/catalog/confirm", r.handler.Confirm)

	r.logger.Info().Msg("Catalog routes registered")
}
