package http

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/Aztech-1729/sliptads/internal/domain/session/deps"
	"github.com/Aztech-1729/sliptads/internal/domain/session/dto"
	pkgerrors "github.com/Aztech-1729/sliptads/pkg/errors"
	"github.com/Aztech-1729/sliptads/pkg/httputil"
)

var errInvalidDays = pkgerrors.NewValidationError("days must not be negative")

// AdminHandler serves operator requests on user sessions
type AdminHandler struct {
	useCase deps.Service
	mapper  *pkgerrors.Mapper
	logger  zerolog.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(useCase deps.Service, mapper *pkgerrors.Mapper, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		useCase: useCase,
		mapper:  mapper,
		logger:  logger.With().Str("handler", "admin").Logger(),
	}
}

// SetPremium handles PUT /premium
func (h *AdminHandler) SetPremium(ctx *fasthttp.RequestCtx) {
	var req dto.PremiumRequest
	if err := httputil.DecodeJSON(ctx, &req); err != nil {
		httputil.WriteError(ctx, h.mapper, err)
		return
	}
	if req.Days < 0 {
		httputil.WriteError(ctx, h.mapper, errInvalidDays)
		return
	}

	s, err := h.useCase.ExtendPremium(ctx, httputil.UserID(ctx), time.Duration(req.Days)*24*time.Hour)
	if err != nil {
		httputil.WriteError(ctx, h.mapper, err)
		return
	}
	httputil.WriteResponse(ctx, dto.NewPremiumResponse(s, time.Now()))
}

// GetPremium handles GET /premium
func (h *AdminHandler) GetPremium(ctx *fasthttp.RequestCtx) {
	s, err := h.useCase.Get(ctx, httputil.UserID(ctx))
	if err != nil {
		httputil.WriteError(ctx, h.mapper, err)
		return
	}
	httputil.WriteResponse(ctx, dto.NewPremiumResponse(s, time.Now()))
}
