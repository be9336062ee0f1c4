package http

import (
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/Aztech-1729/sliptads/internal/domain/auth/deps"
	"github.com/Aztech-1729/sliptads/internal/domain/auth/dto"
	"github.com/Aztech-1729/sliptads/internal/domain/auth/entities"
	pkgerrors "github.com/Aztech-1729/sliptads/pkg/errors"
	"github.com/Aztech-1729/sliptads/pkg/httputil"
)

// AuthHandler handles code login HTTP requests
type AuthHandler struct {
	useCase deps.Service
	mapper  *pkgerrors.Mapper
	logger  zerolog.Logger
}

// NewAuthHandler creates a new login handler
func NewAuthHandler(useCase deps.Service, mapper *pkgerrors.Mapper, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		useCase: useCase,
		mapper:  mapper,
		logger:  logger.With().Str("handler", "auth").Logger(),
	}
}

// Start handles POST /auth/start
func (h *AuthHandler) Start(ctx *fasthttp.RequestCtx) {
	h.reply(ctx)(h.useCase.Start(ctx, httputil.UserID(ctx)))
}

// Input handles POST /auth/input
func (h *AuthHandler) Input(ctx *fasthttp.RequestCtx) {
	var req dto.InputRequest
	if err := httputil.DecodeJSON(ctx, &req); err != nil {
		httputil.WriteError(ctx, h.mapper, err)
		return
	}
	h.reply(ctx)(h.useCase.Input(ctx, httputil.UserID(ctx), req.Text))
}

// Key handles POST /auth/key
func (h *AuthHandler) Key(ctx *fasthttp.RequestCtx) {
	var req dto.KeyRequest
	if err := httputil.DecodeJSON(ctx, &req); err != nil {
		httputil.WriteError(ctx, h.mapper, err)
		return
	}
	h.reply(ctx)(h.useCase.Key(ctx, httputil.UserID(ctx), req.Key))
}

// Password handles POST /auth/password
func (h *AuthHandler) Password(ctx *fasthttp.RequestCtx) {
	var req dto.PasswordRequest
	if err := httputil.DecodeJSON(ctx, &req); err != nil {
		httputil.WriteError(ctx, h.mapper, err)
		return
	}
	h.reply(ctx)(h.useCase.Password(ctx, httputil.UserID(ctx), req.Password))
}

// Cancel handles DELETE /auth
func (h *AuthHandler) Cancel(ctx *fasthttp.RequestCtx) {
	h.reply(ctx)(h.useCase.Cancel(ctx, httputil.UserID(ctx)))
}

// Status handles GET /auth
func (h *AuthHandler) Status(ctx *fasthttp.RequestCtx) {
	h.reply(ctx)(h.useCase.Status(ctx, httputil.UserID(ctx)))
}

func (h *AuthHandler) reply(ctx *fasthttp.RequestCtx) func(*entities.LoginAttempt, error) {
	return func(attempt *entities.LoginAttempt, err error) {
		if err != nil {
			httputil.WriteError(ctx, h.mapper, err)
			return
		}
		httputil.WriteResponse(ctx, dto.NewAttemptResponse(attempt))
	}
}
