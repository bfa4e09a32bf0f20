// Package dto описывает тела HTTP запросов и ответов.
package dto

import "github.com/google/uuid"

// ErrorResponse — стандартный ответ с ошибкой.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// SuccessResponse — стандартный успешный ответ с полезной нагрузкой.
type SuccessResponse struct {
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// CreateTypeARequest — создание категорийной заявки.
type CreateTypeARequest struct {
	CategoryID  uuid.UUID `json:"category_id" binding:"required"`
	RequestText string    `json:"request_text" binding:"required"`
}

// CreateTypeBRequest — создание свободной заявки.
type CreateTypeBRequest struct {
	RequestText string `json:"request_text" binding:"required"`
	IsPublic    bool   `json:"is_public"`
}

// CreateOfferRequest — отклик исполнителя на публичную заявку.
type CreateOfferRequest struct {
	Message string `json:"message" binding:"required"`
}

// AssignProviderRequest — назначение исполнителя администратором.
type AssignProviderRequest struct {
	ProviderUserID uuid.UUID `json:"provider_user_id" binding:"required"`
	Note           *string   `json:"note"`
}

// CreateCategoryRequest — добавление категории услуг.
type CreateCategoryRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
}

// SetCategoryActiveRequest — включение или выключение категории.
type SetCategoryActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}
