package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/manacity/services-backend/internal/goroutine"
	"github.com/manacity/services-backend/internal/models"
)

// SMSProvider — внешний шлюз доставки SMS.
type SMSProvider interface {
	Send(ctx context.Context, phone, message string) (providerRef string, err error)
}

// LogSMSProvider пишет сообщения в лог вместо отправки. Используется
// в development и в тестах.
type LogSMSProvider struct {
	Logger *logrus.Logger
}

// Send логирует сообщение и возвращает пустую ссылку провайдера.
func (p *LogSMSProvider) Send(_ context.Context, phone, message string) (string, error) {
	p.Logger.WithFields(logrus.Fields{
		"phone":   phone,
		"message": message,
	}).Info("sms-заглушка: сообщение не отправлено")
	return "", nil
}

// NotificationService фиксирует уведомления в журнале и передаёт их провайдеру.
// Доставка не влияет на переходы состояний: любой сбой здесь логируется и глотается.
type NotificationService struct {
	notifications NotificationStore
	users         UserStore
	provider      SMSProvider
	recovery      *goroutine.RecoveryHandler
	logger        *logrus.Logger
}

// NewNotificationService создаёт новый экземпляр.
func NewNotificationService(
	notifications NotificationStore,
	users UserStore,
	provider SMSProvider,
	logger *logrus.Logger,
) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		users:         users,
		provider:      provider,
		recovery:      goroutine.NewRecoveryHandler(logger),
		logger:        logger,
	}
}

// Тексты уведомлений сервисного ядра.
var notificationMessages = map[string]string{
	models.NotificationServiceAssigned:  "Вам назначена заявка на услугу. Подтвердите выполнение в приложении.",
	models.NotificationServiceAccepted:  "Исполнитель подтвердил вашу заявку на услугу.",
	models.NotificationServiceCompleted: "Ваша заявка на услугу выполнена.",
}

// Notify записывает уведомление и передаёт его в доставку в фоне.
// Метод никогда не возвращает ошибку вызывающему: бизнес-операция уже
// завершена, откатывать её из-за SMS нельзя.
func (s *NotificationService) Notify(ctx context.Context, locationID, userID uuid.UUID, notificationType string) {
	// Доставка переживает отмену исходного запроса.
	s.recovery.SafeGoWithContext(context.WithoutCancel(ctx), func(ctx context.Context) {
		s.deliver(ctx, locationID, userID, notificationType)
	})
}

// deliver выполняет полный цикл: журнал, отправка, отметка статуса.
func (s *NotificationService) deliver(ctx context.Context, locationID, userID uuid.UUID, notificationType string) {
	message, ok := notificationMessages[notificationType]
	if !ok {
		s.logger.WithField("type", notificationType).Warn("уведомление: неизвестный тип")
		return
	}

	log := s.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"type":    notificationType,
	})

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		log.WithError(err).Error("уведомление: получатель не найден")
		return
	}

	n := &models.Notification{
		LocationID: locationID,
		UserID:     userID,
		Channel:    "SMS",
		Type:       notificationType,
		Message:    message,
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		log.WithError(err).Error("уведомление: не удалось записать в журнал")
		return
	}

	if user.Phone == nil || *user.Phone == "" {
		log.Warn("уведомление: у получателя нет телефона")
		if err := s.notifications.MarkFailed(ctx, n.ID); err != nil {
			log.WithError(err).Error("уведомление: не удалось пометить FAILED")
		}
		return
	}

	providerRef, err := s.provider.Send(ctx, *user.Phone, message)
	if err != nil {
		log.WithError(err).Error("уведомление: провайдер вернул ошибку")
		if err := s.notifications.MarkFailed(ctx, n.ID); err != nil {
			log.WithError(err).Error("уведомление: не удалось пометить FAILED")
		}
		return
	}

	if err := s.notifications.MarkSent(ctx, n.ID, providerRef); err != nil {
		log.WithError(err).Error("уведомление: не удалось пометить SENT")
	}
}
