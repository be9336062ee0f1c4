package http

import (
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/Aztech-1729/sliptads/internal/domain/catalog/deps"
	"github.com/Aztech-1729/sliptads/internal/domain/catalog/dto"
	"github.com/Aztech-1729/sliptads/internal/domain/catalog/entities"
	catalogerrors "github.com/Aztech-1729/sliptads/internal/domain/catalog/errors"
	pkgerrors "github.com/Aztech-1729/sliptads/pkg/errors"
	"github.com/Aztech-1729/sliptads/pkg/httputil"
)

// CatalogHandler handles destination catalog HTTP requests
type CatalogHandler struct {
	useCase deps.Service
	mapper  *pkgerrors.Mapper
	logger  zerolog.Logger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(useCase deps.Service, mapper *pkgerrors.Mapper, logger zerolog.Logger) *CatalogHandler {
	return &CatalogHandler{
		useCase: useCase,
		mapper:  mapper,
		logger:  logger.With().Str("handler", "catalog").Logger(),
	}
}

// Refresh handles POST /catalog/refresh
func (h *CatalogHandler) Refresh(ctx *fasthttp.RequestCtx) {
	h.reply(ctx)(h.useCase.Refresh(ctx, httputil.UserID(ctx)))
}

// List handles GET /catalog?page=&filter=
func (h *CatalogHandler) List(ctx *fasthttp.RequestCtx) {
	userID := httputil.UserID(ctx)

	if ctx.QueryArgs().Has("filter") {
		filter := string(ctx.QueryArgs().Peek("filter"))
		if _, err := h.useCase.SetFilter(ctx, userID, filter); err != nil {
			httputil.WriteError(ctx, h.mapper, err)
			return
		}
	}

	h.reply(ctx)(h.useCase.List(ctx, userID, httputil.QueryInt(ctx, "page", 0)))
}

// Toggle handles POST /catalog/toggle
func (h *CatalogHandler) Toggle(ctx *fasthttp.RequestCtx) {
	var req dto.ToggleRequest
	if err := httputil.DecodeJSON(ctx, &req); err != nil {
		httputil.WriteError(ctx, h.mapper, err)
		return
	}
	h.reply(ctx)(h.useCase.Toggle(ctx, httputil.UserID(ctx), req.DisplayID, req.Page))
}

// SetFilter handles POST /catalog/filter
func (h *CatalogHandler) SetFilter(ctx *fasthttp.RequestCtx) {
	var req dto.FilterRequest
	if err := httputil.DecodeJSON(ctx, &req); err != nil {
		httputil.WriteError(ctx, h.mapper, err)
		return
	}
	h.reply(ctx)(h.useCase.SetFilter(ctx, httputil.UserID(ctx), req.Filter))
}

// ClearFilter handles DELETE /catalog/filter
func (h *CatalogHandler) ClearFilter(ctx *fasthttp.RequestCtx) {
	h.reply(ctx)(h.useCase.ClearFilter(ctx, httputil.UserID(ctx)))
}

// SelectAll handles POST /catalog/select-all
func (h *CatalogHandler) SelectAll(ctx *fasthttp.RequestCtx) {
	h.bulk(ctx, true)
}

// UnselectAll handles POST /catalog/unselect-all
func (h *CatalogHandler) UnselectAll(ctx *fasthttp.RequestCtx) {
	h.bulk(ctx, false)
}

func (h *CatalogHandler) bulk(ctx *fasthttp.RequestCtx, selectAll bool) {
	var req dto.BulkRequest
	if err := httputil.DecodeJSON(ctx, &req); err != nil {
		httputil.WriteError(ctx, h.mapper, err)
		return
	}
	kind, ok := entities.ParseKind(req.Kind)
	if !ok {
		httputil.WriteError(ctx, h.mapper, catalogerrors.ErrInvalidKind)
		return
	}

	if selectAll {
		h.reply(ctx)(h.useCase.SelectAll(ctx, httputil.UserID(ctx), kind))
		return
	}
	h.reply(ctx)(h.useCase.UnselectAll(ctx, httputil.UserID(ctx), kind))
}

// Join handles POST /catalog/join
func (h *CatalogHandler) Join(ctx *fasthttp.RequestCtx) {
	var req dto.JoinRequest
	if err := httputil.DecodeJSON(ctx, &req); err != nil {
		httputil.WriteError(ctx, h.mapper, err)
		return
	}
	report, err := h.useCase.Join(ctx, httputil.UserID(ctx), req.Targets)
	if err != nil {
		httputil.WriteError(ctx, h.mapper, err)
		return
	}
	httputil.WriteResponse(ctx, dto.NewJoinResponse(report))
}

// Confirm handles POST /catalog/confirm
func (h *CatalogHandler) Confirm(ctx *fasthttp.RequestCtx) {
	targets, err := h.useCase.Confirm(ctx, httputil.UserID(ctx))
	if err != nil {
		httputil.WriteError(ctx, h.mapper, err)
		return
	}
	httputil.WriteResponse(ctx, dto.TargetsResponse{Targets: targets, Count: len(targets)})
}

func (h *CatalogHandler) reply(ctx *fasthttp.RequestCtx) func(*entities.Page, error) {
	return func(page *entities.Page, err error) {
		if err != nil {
			httputil.WriteError(ctx, h.mapper, err)
			return
		}
		httputil.WriteResponse(ctx, dto.NewPageResponse(page))
	}
}
