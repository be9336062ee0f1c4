package http

import (
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/Aztech-1729/sliptads/internal/domain"
	"github.com/Aztech-1729/sliptads/internal/domain/qrauth/deps"
	"github.com/Aztech-1729/sliptads/internal/domain/qrauth/dto"
	"github.com/Aztech-1729/sliptads/internal/domain/qrauth/entities"
	pkgerrors "github.com/Aztech-1729/sliptads/pkg/errors"
	"github.com/Aztech-1729/sliptads/pkg/httputil"
)

// QRAuthHandler handles QR authentication HTTP requests
type QRAuthHandler struct {
	useCase deps.QRAuthService
	mapper  *pkgerrors.Mapper
	logger  zerolog.Logger
}

// NewQRAuthHandler creates a new QR auth handler
func NewQRAuthHandler(useCase deps.QRAuthService, mapper *pkgerrors.Mapper, logger zerolog.Logger) *QRAuthHandler {
	return &QRAuthHandler{
		useCase: useCase,
		mapper:  mapper,
		logger:  logger.With().Str("handler", "qr_auth").Logger(),
	}
}

// StartAuth handles POST /auth/qr
func (h *QRAuthHandler) StartAuth(ctx *fasthttp.RequestCtx) {
	var req dto.StartQRAuthRequest
	if err := httputil.DecodeJSON(ctx, &req); err != nil {
		httputil.WriteError(ctx, h.mapper, err)
		return
	}

	session, err := h.useCase.StartAuth(ctx, httputil.UserID(ctx), domain.Credentials{
		APIID:   req.APIID,
		APIHash: req.APIHash,
	})
	if err != nil {
		httputil.WriteError(ctx, h.mapper, err)
		return
	}

	httputil.WriteResponse(ctx, dto.StartQRAuthResponse{
		SessionID:    session.ID,
		QRURL:        session.QRURL,
		QRCodeBase64: session.QRCodeBase64,
		Status:       string(session.Status),
		ExpiresAt:    session.ExpiresAt,
	})
}

// GetStatus handles GET /auth/qr/{session_id}
func (h *QRAuthHandler) GetStatus(ctx *fasthttp.RequestCtx) {
	sessionID, _ := ctx.UserValue("session_id").(string)

	session, err := h.useCase.GetStatus(ctx, httputil.UserID(ctx), sessionID)
	if err != nil {
		httputil.WriteError(ctx, h.mapper, err)
		return
	}

	httputil.WriteResponse(ctx, statusResponse(session))
}

// SubmitPassword handles POST /auth/qr/{session_id}/password
func (h *QRAuthHandler) SubmitPassword(ctx *fasthttp.RequestCtx) {
	sessionID, _ := ctx.UserValue("session_id").(string)

	var req dto.SubmitPasswordRequest
	if err := httputil.DecodeJSON(ctx, &req); err != nil {
		httputil.WriteError(ctx, h.mapper, err)
		return
	}

	session, err := h.useCase.SubmitPassword(ctx, httputil.UserID(ctx), sessionID, req.Password)
	if err != nil {
		httputil.WriteError(ctx, h.mapper, err)
		return
	}

	httputil.WriteResponse(ctx, statusResponse(session))
}

// Cancel handles DELETE /auth/qr/{session_id}
func (h *QRAuthHandler) Cancel(ctx *fasthttp.RequestCtx) {
	sessionID, _ := ctx.UserValue("session_id").(string)

	if err := h.useCase.Cancel(ctx, httputil.UserID(ctx), sessionID); err != nil {
		httputil.WriteError(ctx, h.mapper, err)
		return
	}

	ctx.SetStatusCode(fasthttp.StatusNoContent)
}

func statusResponse(session *entities.QRAuthSession) dto.QRAuthStatusResponse {
	resp := dto.QRAuthStatusResponse{
		SessionID: session.ID,
		Status:    string(session.Status),
	}
	if session.PhoneNumber != "" {
		resp.PhoneNumber = &session.PhoneNumber
	}
	if session.Error != "" {
		resp.Error = &session.Error
	}
	return resp
}
