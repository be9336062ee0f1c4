package http

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/Aztech-1729/sliptads/internal/domain/campaign/deps"
	"github.com/Aztech-1729/sliptads/internal/domain/campaign/dto"
	sessionentities "github.com/Aztech-1729/sliptads/internal/domain/session/entities"
	pkgerrors "github.com/Aztech-1729/sliptads/pkg/errors"
	"github.com/Aztech-1729/sliptads/pkg/httputil"
)

// CampaignHandler handles ad configuration HTTP requests
type CampaignHandler struct {
	useCase deps.Service
	mapper  *pkgerrors.Mapper
	logger  zerolog.Logger
}

// NewCampaignHandler creates a new campaign handler
func NewCampaignHandler(useCase deps.Service, mapper *pkgerrors.Mapper, logger zerolog.Logger) *CampaignHandler {
	return &CampaignHandler{
		useCase: useCase,
		mapper:  mapper,
		logger:  logger.With().Str("handler", "campaign").Logger(),
	}
}

// Get handles GET /campaign
func (h *CampaignHandler) Get(ctx *fasthttp.RequestCtx) {
	h.reply(ctx)(h.useCase.Get(ctx, httputil.UserID(ctx)))
}

// SetCustom handles PUT /campaign/source/custom
func (h *CampaignHandler) SetCustom(ctx *fasthttp.RequestCtx) {
	var req dto.CustomRequest
	if err := httputil.DecodeJSON(ctx, &req); err != nil {
		httputil.WriteError(ctx, h.mapper, err)
		return
	}
	h.reply(ctx)(h.useCase.SetCustom(ctx, httputil.UserID(ctx), deps.CustomMessage{
		Text:      req.Text,
		MediaPath: req.MediaPath,
		MediaKind: req.MediaKind,
	}))
}

// SetSaved handles PUT /campaign/source/saved
func (h *CampaignHandler) SetSaved(ctx *fasthttp.RequestCtx) {
	var req dto.SavedRequest
	if err := httputil.DecodeJSON(ctx, &req); err != nil {
		httputil.WriteError(ctx, h.mapper, err)
		return
	}
	h.reply(ctx)(h.useCase.SetSaved(ctx, httputil.UserID(ctx), req.AsCopy))
}

// SetPostLink handles PUT /campaign/source/post-link
func (h *CampaignHandler) SetPostLink(ctx *fasthttp.RequestCtx) {
	var req dto.PostLinkRequest
	if err := httputil.DecodeJSON(ctx, &req); err != nil {
		httputil.WriteError(ctx, h.mapper, err)
		return
	}
	h.reply(ctx)(h.useCase.SetPostLink(ctx, httputil.UserID(ctx), req.Link))
}

// SetFallback handles PUT /campaign/fallback
func (h *CampaignHandler) SetFallback(ctx *fasthttp.RequestCtx) {
	var req dto.FallbackRequest
	if err := httputil.DecodeJSON(ctx, &req); err != nil {
		httputil.WriteError(ctx, h.mapper, err)
		return
	}
	h.reply(ctx)(h.useCase.SetFallback(ctx, httputil.UserID(ctx), req.Text))
}

// SetTiming handles PUT /campaign/timing
func (h *CampaignHandler) SetTiming(ctx *fasthttp.RequestCtx) {
	var req dto.TimingRequest
	if err := httputil.DecodeJSON(ctx, &req); err != nil {
		httputil.WriteError(ctx, h.mapper, err)
		return
	}
	h.reply(ctx)(h.useCase.SetTiming(ctx, httputil.UserID(ctx),
		time.Duration(req.RoundDelaySeconds)*time.Second,
		time.Duration(req.SendGapSeconds*float64(time.Second)),
	))
}

func (h *CampaignHandler) reply(ctx *fasthttp.RequestCtx) func(*sessionentities.AdConfig, error) {
	return func(ad *sessionentities.AdConfig, err error) {
		if err != nil {
			httputil.WriteError(ctx, h.mapper, err)
			return
		}
		httputil.WriteResponse(ctx, dto.NewCampaignResponse(ad))
	}
}
