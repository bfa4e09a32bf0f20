// Package apperr задаёт единую таксономию ошибок сервисного ядра.
// Все ошибки восстановимы для вызывающей стороны; внутренние сбои
// сворачиваются в KindInternal, причина логируется только на сервере.
package apperr

import (
	"errors"
	"fmt"
)

// Kind — вид ошибки, определяющий реакцию клиента.
type Kind string

const (
	KindValidation  Kind = "VALIDATION"
	KindNotFound    Kind = "NOT_FOUND"
	KindForbidden   Kind = "FORBIDDEN"
	KindConflict    Kind = "CONFLICT"
	KindRateLimited Kind = "RATE_LIMITED"
	KindExpired     Kind = "EXPIRED"
	KindInternal    Kind = "INTERNAL"
)

// Error — ошибка с видом и необязательным машинным кодом.
type Error struct {
	Kind    Kind
	Code    string // машинно-читаемый код, например MAX_PENDING_OFFERS_REACHED
	Message string
	Err     error
}

// Error возвращает текст для логов; клиенту уходит только Message.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap отдаёт завёрнутую причину.
func (e *Error) Unwrap() error {
	return e.Err
}

// New создаёт ошибку заданного вида.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WithCode создаёт ошибку с машинным кодом.
func WithCode(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Wrap заворачивает причину, сохраняя вид.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Internal заворачивает внутренний сбой; message не показывается клиенту.
func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// KindOf определяет вид ошибки; всё неизвестное считается внутренним сбоем.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind проверяет, относится ли ошибка к заданному виду.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// ClientMessage возвращает текст, безопасный для выдачи клиенту.
func ClientMessage(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Kind != KindInternal {
		return appErr.Message
	}
	return "внутренняя ошибка сервера"
}

// ClientCode возвращает машинный код ошибки, если задан.
func ClientCode(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Kind != KindInternal {
		return appErr.Code
	}
	return ""
}
