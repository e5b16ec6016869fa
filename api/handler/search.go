package handler

import (
	"net/http"
	"strconv"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/volunteer/api/transport"
	"github.com/fastygo/volunteer/pkg/httpcontext"
	searchUC "github.com/fastygo/volunteer/usecase/search"
)

const defaultRadiusKm = 10.0

type SearchHandler struct {
	baseHandler
	uc *searchUC.UseCase
}

func NewSearchHandler(uc *searchUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *SearchHandler {
	return &SearchHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Browse active tasks, optionally filtered by free text
// @Tags search
// @Router /api/v1/tasks [get]
func (h *SearchHandler) Browse(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	page, err := h.uc.TextSearch(stdCtx, string(ctx.QueryArgs().Peek("q")), pagination(ctx))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.NewPage(page))
}

// @Router /api/v1/tasks/featured [get]
func (h *SearchHandler) Featured(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks, err := h.uc.Featured(stdCtx)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, tasks)
}

// @Router /api/v1/tasks/nearby [get]
func (h *SearchHandler) Nearby(ctx *fasthttp.RequestCtx) {
	args := ctx.QueryArgs()
	lat, errLat := strconv.ParseFloat(string(args.Peek("lat")), 64)
	lng, errLng := strconv.ParseFloat(string(args.Peek("lng")), 64)
	if errLat != nil || errLng != nil {
		h.badRequest(ctx, "lat and lng are required")
		return
	}
	radius := defaultRadiusKm
	if raw := args.Peek("radius_km"); len(raw) > 0 {
		parsed, err := strconv.ParseFloat(string(raw), 64)
		if err != nil {
			h.badRequest(ctx, "radius_km must be a number")
			return
		}
		radius = parsed
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks, err := h.uc.Nearby(stdCtx, lat, lng, radius)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, tasks)
}

// @Router /api/v1/categories/{category}/tasks [get]
func (h *SearchHandler) ByCategory(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	page, err := h.uc.ByCategory(stdCtx, pathParam(ctx, "category"), pagination(ctx))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.NewPage(page))
}

// @Router /api/v1/organizations/{id}/tasks [get]
func (h *SearchHandler) ByOrganization(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	page, err := h.uc.ByOrganization(stdCtx, pathParam(ctx, "id"), pagination(ctx))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.NewPage(page))
}

// @Router /api/v1/me/tasks [get]
func (h *SearchHandler) Mine(ctx *fasthttp.RequestCtx) {
	identity, ok := h.identity(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	page, err := h.uc.ByCreator(stdCtx, identity.UserID, pagination(ctx))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.NewPage(page))
}
