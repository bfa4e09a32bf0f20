package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/manacity/services-backend/internal/dto"
	"github.com/manacity/services-backend/internal/http/handlers/common"
	"github.com/manacity/services-backend/internal/service"
)

// AdminHandler обслуживает административные операции над заявками.
type AdminHandler struct {
	admin *service.AdminService
}

// NewAdminHandler создаёт новый хэндлер.
func NewAdminHandler(admin *service.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// Assign обрабатывает POST /admin/requests/:id/assign.
func (h *AdminHandler) Assign(c *gin.Context) {
	principal, err := common.CurrentPrincipal(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	requestID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.AssignProviderRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	updated, err := h.admin.Assign(c.Request.Context(), principal, requestID, req.ProviderUserID, req.Note)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusOK, updated)
}

// History обрабатывает GET /admin/requests/:id/history.
func (h *AdminHandler) History(c *gin.Context) {
	principal, err := common.CurrentPrincipal(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	requestID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	entries, err := h.admin.History(c.Request.Context(), principal, requestID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusOK, entries)
}

// Queue обрабатывает GET /admin/queue.
func (h *AdminHandler) Queue(c *gin.Context) {
	principal, err := common.CurrentPrincipal(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	page, err := h.admin.Queue(
		c.Request.Context(),
		principal,
		c.Query("cursor"),
		common.ParseIntQuery(c, "limit", 0),
	)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusOK, page)
}

// Dashboard обрабатывает GET /admin/dashboard.
func (h *AdminHandler) Dashboard(c *gin.Context) {
	principal, err := common.CurrentPrincipal(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	query := service.DashboardQuery{
		Status:   c.Query("status"),
		Kind:     c.Query("type"),
		Assigned: common.ParseBoolQuery(c, "assigned"),
		Overdue:  strings.EqualFold(c.Query("overdue"), "true"),
		Page:     common.ParseIntQuery(c, "page", 1),
		Limit:    common.ParseIntQuery(c, "limit", 0),
	}

	page, err := h.admin.Dashboard(c.Request.Context(), principal, query)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusOK, page)
}

// Cancel обрабатывает POST /admin/requests/:id/cancel.
func (h *AdminHandler) Cancel(c *gin.Context) {
	principal, err := common.CurrentPrincipal(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	requestID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	updated, err := h.admin.Cancel(c.Request.Context(), principal, requestID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusOK, updated)
}
