// Package goroutine запускает фоновые горутины с перехватом panic.
package goroutine

import (
	"context"
	"runtime/debug"

	"github.com/sirupsen/logrus"
)

// RecoveryHandler перехватывает panic в фоновых горутинах и пишет их в лог,
// не роняя процесс. Используется для доставки уведомлений и прочей работы,
// исход которой не влияет на ответ клиенту.
type RecoveryHandler struct {
	logger *logrus.Logger
}

// NewRecoveryHandler создаёт обработчик.
func NewRecoveryHandler(logger *logrus.Logger) *RecoveryHandler {
	return &RecoveryHandler{logger: logger}
}

// SafeGo запускает функцию в горутине с перехватом panic.
func (rh *RecoveryHandler) SafeGo(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				rh.logger.WithFields(logrus.Fields{
					"panic": r,
					"stack": string(debug.Stack()),
				}).Error("panic в фоновой горутине")
			}
		}()
		fn()
	}()
}

// SafeGoWithContext запускает функцию с контекстом в горутине с перехватом panic.
func (rh *RecoveryHandler) SafeGoWithContext(ctx context.Context, fn func(context.Context)) {
	rh.SafeGo(func() { fn(ctx) })
}
