// Package common содержит общие помощники HTTP хэндлеров.
package common

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/manacity/services-backend/internal/apperr"
	"github.com/manacity/services-backend/internal/dto"
	"github.com/manacity/services-backend/internal/http/middleware"
	"github.com/manacity/services-backend/internal/logger"
	"github.com/manacity/services-backend/internal/service"
)

// ErrNoPrincipal возвращается, когда в контексте нет субъекта запроса.
var ErrNoPrincipal = errors.New("субъект запроса не найден в контексте")

// CurrentPrincipal достаёт аутентифицированного субъекта из gin.Context.
func CurrentPrincipal(c *gin.Context) (service.Principal, error) {
	raw, exists := c.Get(middleware.ContextPrincipalKey)
	if !exists {
		return service.Principal{}, ErrNoPrincipal
	}

	principal, ok := raw.(service.Principal)
	if !ok {
		return service.Principal{}, ErrNoPrincipal
	}
	return principal, nil
}

// ParseUUIDParam разбирает UUID из параметра пути.
func ParseUUIDParam(c *gin.Context, paramName string) (uuid.UUID, error) {
	param := c.Param(paramName)
	if param == "" {
		return uuid.Nil, fmt.Errorf("параметр %s отсутствует", paramName)
	}

	parsed, err := uuid.Parse(param)
	if err != nil {
		return uuid.Nil, fmt.Errorf("неверный формат UUID")
	}
	return parsed, nil
}

// BindAndValidate привязывает JSON тело запроса.
func BindAndValidate(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return fmt.Errorf("ошибка валидации запроса: %w", err)
	}
	return nil
}

// ParseIntQuery читает целочисленный query-параметр с дефолтом.
func ParseIntQuery(c *gin.Context, key string, fallback int) int {
	if v := c.Query(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

// ParseBoolQuery читает необязательный булев query-параметр.
func ParseBoolQuery(c *gin.Context, key string) *bool {
	if v := c.Query(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return &parsed
		}
	}
	return nil
}

// kindToStatus — отображение вида ошибки в HTTP статус.
var kindToStatus = map[apperr.Kind]int{
	apperr.KindValidation:  http.StatusBadRequest,
	apperr.KindNotFound:    http.StatusNotFound,
	apperr.KindForbidden:   http.StatusForbidden,
	apperr.KindConflict:    http.StatusConflict,
	apperr.KindRateLimited: http.StatusTooManyRequests,
	apperr.KindExpired:     http.StatusConflict,
	apperr.KindInternal:    http.StatusInternalServerError,
}

// RespondAppError отвечает клиенту по виду ошибки. Внутренние сбои
// логируются с причиной, клиент получает обезличенное сообщение.
func RespondAppError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	status, ok := kindToStatus[kind]
	if !ok {
		status = http.StatusInternalServerError
	}

	if kind == apperr.KindInternal && logger.Log != nil {
		logger.Log.WithFields(logrus.Fields{
			"error":  err.Error(),
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		}).Error("внутренняя ошибка запроса")
	}

	c.JSON(status, dto.ErrorResponse{
		Error: apperr.ClientMessage(err),
		Code:  apperr.ClientCode(err),
	})
}

// RespondError отвечает ошибкой с заданным статусом.
func RespondError(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, dto.ErrorResponse{Error: message})
}

// RespondBadRequest отвечает 400.
func RespondBadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "некорректный запрос"
	}
	RespondError(c, http.StatusBadRequest, message)
}

// RespondUnauthorized отвечает 401.
func RespondUnauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "требуется авторизация"
	}
	RespondError(c, http.StatusUnauthorized, message)
}

// RespondJSON отвечает произвольной полезной нагрузкой.
func RespondJSON(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

// RespondSuccess отвечает стандартным успешным конвертом.
func RespondSuccess(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, dto.SuccessResponse{
		Message: message,
		Data:    data,
	})
}
