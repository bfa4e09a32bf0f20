package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/manacity/services-backend/internal/dto"
	"github.com/manacity/services-backend/internal/http/handlers/common"
	"github.com/manacity/services-backend/internal/service"
)

// RequestHandler обслуживает жизненный цикл заявок.
type RequestHandler struct {
	requests *service.RequestService
	contacts *service.ContactService
}

// NewRequestHandler создаёт новый хэндлер.
func NewRequestHandler(requests *service.RequestService, contacts *service.ContactService) *RequestHandler {
	return &RequestHandler{requests: requests, contacts: contacts}
}

// CreateTypeA обрабатывает POST /requests/type-a.
func (h *RequestHandler) CreateTypeA(c *gin.Context) {
	principal, err := common.CurrentPrincipal(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req dto.CreateTypeARequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	created, err := h.requests.CreateTypeA(c.Request.Context(), principal, req.CategoryID, req.RequestText)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusCreated, created)
}

// CreateTypeB обрабатывает POST /requests/type-b.
func (h *RequestHandler) CreateTypeB(c *gin.Context) {
	principal, err := common.CurrentPrincipal(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req dto.CreateTypeBRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	created, err := h.requests.CreateTypeB(c.Request.Context(), principal, req.RequestText, req.IsPublic)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusCreated, created)
}

// Get обрабатывает GET /requests/:id.
func (h *RequestHandler) Get(c *gin.Context) {
	principal, err := common.CurrentPrincipal(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	req, err := h.requests.Get(c.Request.Context(), principal, id)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusOK, req)
}

// PublicFeed обрабатывает GET /requests/public.
func (h *RequestHandler) PublicFeed(c *gin.Context) {
	principal, err := common.CurrentPrincipal(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	page, err := h.requests.PublicFeed(
		c.Request.Context(),
		principal,
		c.Query("cursor"),
		common.ParseIntQuery(c, "page", 0),
		common.ParseIntQuery(c, "limit", 0),
	)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusOK, page)
}

// ListMine обрабатывает GET /requests/my.
func (h *RequestHandler) ListMine(c *gin.Context) {
	principal, err := common.CurrentPrincipal(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	page, err := h.requests.ListMine(
		c.Request.Context(),
		principal,
		c.Query("cursor"),
		common.ParseIntQuery(c, "page", 0),
		common.ParseIntQuery(c, "limit", 0),
	)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusOK, page)
}

// transition — общий каркас для переходов по :id.
func (h *RequestHandler) transition(c *gin.Context, fn func(service.Principal, uuid.UUID) (interface{}, error)) {
	principal, err := common.CurrentPrincipal(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	result, err := fn(principal, id)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusOK, result)
}

// AcceptWork обрабатывает POST /requests/:id/accept.
func (h *RequestHandler) AcceptWork(c *gin.Context) {
	h.transition(c, func(p service.Principal, id uuid.UUID) (interface{}, error) {
		return h.requests.AcceptWork(c.Request.Context(), p, id)
	})
}

// StartWork обрабатывает POST /requests/:id/start.
func (h *RequestHandler) StartWork(c *gin.Context) {
	h.transition(c, func(p service.Principal, id uuid.UUID) (interface{}, error) {
		return h.requests.StartWork(c.Request.Context(), p, id)
	})
}

// CompleteWork обрабатывает POST /requests/:id/complete.
func (h *RequestHandler) CompleteWork(c *gin.Context) {
	h.transition(c, func(p service.Principal, id uuid.UUID) (interface{}, error) {
		return h.requests.CompleteWork(c.Request.Context(), p, id)
	})
}

// Cancel обрабатывает POST /requests/:id/cancel.
func (h *RequestHandler) Cancel(c *gin.Context) {
	h.transition(c, func(p service.Principal, id uuid.UUID) (interface{}, error) {
		return h.requests.CancelByUser(c.Request.Context(), p, id)
	})
}

// ContactCard обрабатывает GET /requests/:id/contact.
func (h *RequestHandler) ContactCard(c *gin.Context) {
	principal, err := common.CurrentPrincipal(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	card, err := h.contacts.Card(c.Request.Context(), principal, id)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusOK, card)
}
