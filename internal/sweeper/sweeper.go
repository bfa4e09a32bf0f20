// Package sweeper закрывает просроченные заявки по расписанию.
package sweeper

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Expirer переводит просроченные открытые заявки в EXPIRED.
type Expirer interface {
	ExpireOverdue(ctx context.Context) (int64, error)
}

// runTimeout — предел одного прохода чистильщика.
const runTimeout = time.Minute

// Sweeper запускает чистку по cron-выражению. Просрочка применяется лениво
// при чтении, поэтому точность расписания не влияет на корректность.
type Sweeper struct {
	cron    *cron.Cron
	expirer Expirer
	logger  *logrus.Logger
}

// New создаёт чистильщик.
func New(expirer Expirer, logger *logrus.Logger) *Sweeper {
	return &Sweeper{
		cron:    cron.New(),
		expirer: expirer,
		logger:  logger,
	}
}

// Start регистрирует задачу и запускает планировщик.
func (s *Sweeper) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.WithField("spec", spec).Info("чистильщик просроченных заявок запущен")
	return nil
}

// Stop останавливает планировщик и возвращает контекст, закрываемый
// после завершения уже запущенных задач.
func (s *Sweeper) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Sweeper) run() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	if _, err := s.expirer.ExpireOverdue(ctx); err != nil {
		s.logger.WithError(err).Error("чистильщик: проход завершился ошибкой")
	}
}
