package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/volunteer/api/transport"
	"github.com/fastygo/volunteer/domain"
	"github.com/fastygo/volunteer/pkg/httpcontext"
	registrationUC "github.com/fastygo/volunteer/usecase/registration"
	taskUC "github.com/fastygo/volunteer/usecase/task"
)

type RegistrationHandler struct {
	baseHandler
	uc    *registrationUC.UseCase
	tasks *taskUC.UseCase
}

func NewRegistrationHandler(uc *registrationUC.UseCase, tasks *taskUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *RegistrationHandler {
	return &RegistrationHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
		tasks:       tasks,
	}
}

// @Summary Apply to a task
// @Tags registrations
// @Router /api/v1/tasks/{id}/registrations [post]
func (h *RegistrationHandler) Register(ctx *fasthttp.RequestCtx) {
	identity, ok := h.identity(ctx)
	if !ok {
		return
	}
	var req transport.RegisterRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	reg, err := h.uc.Register(stdCtx, pathParam(ctx, "id"), identity.UserID, req.Message)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, reg)
}

// @Summary Withdraw from a task
// @Tags registrations
// @Router /api/v1/tasks/{id}/registrations [delete]
func (h *RegistrationHandler) Unregister(ctx *fasthttp.RequestCtx) {
	identity, ok := h.identity(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	reg, err := h.uc.Unregister(stdCtx, pathParam(ctx, "id"), identity.UserID)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, reg)
}

// @Summary List registrations of a task
// @Tags registrations
// @Router /api/v1/tasks/{id}/registrations [get]
func (h *RegistrationHandler) ListByTask(ctx *fasthttp.RequestCtx) {
	identity, ok := h.identity(ctx)
	if !ok {
		return
	}
	taskID := pathParam(ctx, "id")

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.tasks.GetTask(stdCtx, taskID)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	if !identity.CanManage(task.OrganizationID) {
		h.respondError(ctx, stdCtx, domain.ErrForbidden)
		return
	}

	page, err := h.uc.ListByTask(stdCtx, taskID, pagination(ctx))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.NewPage(page))
}

// @Summary List the caller's registrations
// @Tags registrations
// @Router /api/v1/me/registrations [get]
func (h *RegistrationHandler) ListMine(ctx *fasthttp.RequestCtx) {
	identity, ok := h.identity(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	page, err := h.uc.ListByUser(stdCtx, identity.UserID, pagination(ctx))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.NewPage(page))
}

// @Summary Pending registrations awaiting review
// @Tags registrations
// @Router /api/v1/organizations/{id}/registrations/pending [get]
func (h *RegistrationHandler) ListPending(ctx *fasthttp.RequestCtx) {
	identity, ok := h.identity(ctx)
	if !ok {
		return
	}
	orgID := pathParam(ctx, "id")

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if !identity.CanManage(orgID) {
		h.respondError(ctx, stdCtx, domain.ErrForbidden)
		return
	}
	pending, err := h.uc.ListPending(stdCtx, orgID)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, pending)
}

// @Summary Get registration
// @Tags registrations
// @Router /api/v1/registrations/{id} [get]
func (h *RegistrationHandler) GetRegistration(ctx *fasthttp.RequestCtx) {
	identity, ok := h.identity(ctx)
	if !ok {
		return
	}
	id := pathParam(ctx, "id")

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	reg, err := h.uc.GetRegistration(stdCtx, id)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	if reg.UserID != identity.UserID {
		if err := h.uc.AuthorizeReview(stdCtx, identity, id); err != nil {
			h.respondError(ctx, stdCtx, err)
			return
		}
	}
	h.respondSuccess(ctx, http.StatusOK, reg)
}

// @Summary Approve a pending registration
// @Tags registrations
// @Router /api/v1/registrations/{id}/approve [post]
func (h *RegistrationHandler) Approve(ctx *fasthttp.RequestCtx) {
	identity, ok := h.identity(ctx)
	if !ok {
		return
	}
	id := pathParam(ctx, "id")

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.AuthorizeReview(stdCtx, identity, id); err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	reg, err := h.uc.Approve(stdCtx, id, identity.UserID)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, reg)
}

// @Summary Reject a pending registration
// @Tags registrations
// @Router /api/v1/registrations/{id}/reject [post]
func (h *RegistrationHandler) Reject(ctx *fasthttp.RequestCtx) {
	identity, ok := h.identity(ctx)
	if !ok {
		return
	}
	var req transport.RejectRequest
	if !h.decode(ctx, &req) {
		return
	}
	id := pathParam(ctx, "id")

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.AuthorizeReview(stdCtx, identity, id); err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	reg, err := h.uc.Reject(stdCtx, id, identity.UserID, req.Reason)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, reg)
}

// @Summary Mark an approved registration as completed
// @Tags registrations
// @Router /api/v1/registrations/{id}/complete [post]
func (h *RegistrationHandler) Complete(ctx *fasthttp.RequestCtx) {
	identity, ok := h.identity(ctx)
	if !ok {
		return
	}
	var req transport.CompleteRequest
	if !h.decode(ctx, &req) {
		return
	}
	id := pathParam(ctx, "id")

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.AuthorizeReview(stdCtx, identity, id); err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	reg, err := h.uc.Complete(stdCtx, id, req.Rating, req.Feedback)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, reg)
}
