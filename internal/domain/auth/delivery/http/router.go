package http

import (
	"github.com/rs/zerolog"

	"github.com/Aztech-1729/sliptads/pkg/httputil"
)

// Router registers login routes
type Router struct {
	handler *AuthHandler
	logger  zerolog.Logger
}

// NewRouter creates a new login router
func NewRouter(handler *AuthHandler, logger zerolog.Logger) *Router {
	return &Router{
		handler: handler,
		logger:  logger,
	}
}

// RegisterRoutes registers login routes on the per-user group
func (r *Router) RegisterRoutes(users *httputil.UserGroup) {
	users.POST("/auth/start", r.handler.Start)
	users.POST("/auth/input", r.handler.Input)
	users.POST("/auth/key", r.handler.Key)
	users.POST("/auth/password", r.handler.Password)
	users.DELETE("/auth", r.handler.Cancel)
	users.GET("/auth", r.handler.Status)

	r.logger.Info().Msg("Auth routes registered")
}
