package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/manacity/services-backend/internal/dto"
	"github.com/manacity/services-backend/internal/http/handlers/common"
	"github.com/manacity/services-backend/internal/service"
)

// CategoryHandler обслуживает справочник категорий услуг.
type CategoryHandler struct {
	categories *service.CategoryService
}

// NewCategoryHandler создаёт новый хэндлер.
func NewCategoryHandler(categories *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

// List обрабатывает GET /categories.
func (h *CategoryHandler) List(c *gin.Context) {
	principal, err := common.CurrentPrincipal(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	includeInactive := c.Query("include_inactive") == "true"
	categories, err := h.categories.List(c.Request.Context(), principal, includeInactive)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusOK, categories)
}

// Create обрабатывает POST /admin/categories.
func (h *CategoryHandler) Create(c *gin.Context) {
	principal, err := common.CurrentPrincipal(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req dto.CreateCategoryRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	category, err := h.categories.Create(c.Request.Context(), principal, req.Name, req.Description)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusCreated, category)
}

// SetActive обрабатывает PATCH /admin/categories/:id/active.
func (h *CategoryHandler) SetActive(c *gin.Context) {
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

	var req dto.SetCategoryActiveRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	category, err := h.categories.SetActive(c.Request.Context(), principal, id, *req.IsActive)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusOK, category)
}
