package http

import (
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/Aztech-1729/sliptads/internal/domain/ads/deps"
	"github.com/Aztech-1729/sliptads/internal/domain/ads/dto"
	"github.com/Aztech-1729/sliptads/internal/domain/ads/entities"
	pkgerrors "github.com/Aztech-1729/sliptads/pkg/errors"
	"github.com/Aztech-1729/sliptads/pkg/httputil"
)

// AdsHandler handles delivery worker HTTP requests
type AdsHandler struct {
	useCase deps.Service
	mapper  *pkgerrors.Mapper
	logger  zerolog.Logger
}

// NewAdsHandler creates a new ads handler
func NewAdsHandler(useCase deps.Service, mapper *pkgerrors.Mapper, logger zerolog.Logger) *AdsHandler {
	return &AdsHandler{
		useCase: useCase,
		mapper:  mapper,
		logger:  logger.With().Str("handler", "ads").Logger(),
	}
}

// Start handles POST /ads/start
func (h *AdsHandler) Start(ctx *fasthttp.RequestCtx) {
	h.reply(ctx)(h.useCase.Start(ctx, httputil.UserID(ctx)))
}

// Stop handles POST /ads/stop
func (h *AdsHandler) Stop(ctx *fasthttp.RequestCtx) {
	h.reply(ctx)(h.useCase.Stop(ctx, httputil.UserID(ctx)))
}

// Status handles GET /ads
func (h *AdsHandler) Status(ctx *fasthttp.RequestCtx) {
	h.reply(ctx)(h.useCase.Status(ctx, httputil.UserID(ctx)))
}

func (h *AdsHandler) reply(ctx *fasthttp.RequestCtx) func(*entities.Status, error) {
	return func(st *entities.Status, err error) {
		if err != nil {
			h.handleError(ctx, err)
			return
		}
		httputil.WriteResponse(ctx, dto.NewStatusResponse(st))
	}
}

func (h *AdsHandler) handleError(ctx *fasthttp.RequestCtx, err error) {
	if wait, ok := pkgerrors.RetryAfter(err); ok {
		h.logger.Warn().Err(err).Int64("user_id", httputil.UserID(ctx)).Dur("retry_after", wait).Msg("Ads request rate limited")
	}
	httputil.WriteError(ctx, h.mapper, err)
}
