package http

import (
	"github.com/rs/zerolog"

	"github.com/Aztech-1729/sliptads/pkg/httputil"
)

// Router registers QR auth HTTP routes
type Router struct {
	handler *QRAuthHandler
	logger  zerolog.Logger
}

// NewRouter creates a new QR auth router
func NewRouter(handler *QRAuthHandler, logger zerolog.Logger) *Router {
	return &Router{
		handler: handler,
		logger:  logger,
	}
}

// RegisterRoutes registers QR auth routes on the per-user group
func (r *Router) RegisterRoutes(users *httputil.UserGroup) {
	users.POST("/auth/qr", r.handler.StartAuth)
	users.GET("/auth/qr/{session_id}", r.handler.GetStatus)
	users.POST("/auth/qr/{session_id}/password", r.handler.SubmitPassword)
	users.DELETE("/auth/qr/{session_id}", r.handler.Cancel)

	r.logger.Info().Msg("QR auth routes registered")
}
