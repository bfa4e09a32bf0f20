package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/manacity/services-backend/internal/apperr"
	"github.com/manacity/services-backend/internal/models"
	"github.com/manacity/services-backend/internal/repository"
)

// ContactCard — контактные данные второй стороны заявки.
type ContactCard struct {
	Name  string  `json:"name"`
	Phone *string `json:"phone"`
	Role  string  `json:"role"` // роль второй стороны: REQUESTER или PROVIDER
}

// ErrContactsClosed возвращается, когда статус заявки ещё не открывает контакты.
var ErrContactsClosed = apperr.New(apperr.KindForbidden, "контакты недоступны в текущем статусе заявки")

// ContactService раскрывает контакты сторон после подтверждения исполнителем
// и пишет каждый просмотр в аудиторский журнал.
type ContactService struct {
	requests RequestStore
	users    UserStore
	audit    ContactAuditStore
	logger   *logrus.Logger
}

// NewContactService создаёт новый экземпляр.
func NewContactService(requests RequestStore, users UserStore, audit ContactAuditStore, logger *logrus.Logger) *ContactService {
	return &ContactService{
		requests: requests,
		users:    users,
		audit:    audit,
		logger:   logger,
	}
}

// Card возвращает контактную карточку второй стороны. Доступна только
// участникам заявки и только в статусах ACCEPTED, IN_PROGRESS, COMPLETED.
// Просмотр фиксируется в журнале; сбой записи отменяет раскрытие.
func (s *ContactService) Card(ctx context.Context, p Principal, requestID uuid.UUID) (*ContactCard, error) {
	req, err := s.requests.GetByID(ctx, p.LocationID, requestID)
	if err != nil {
		return nil, err
	}

	var (
		viewerRole   string
		counterparty uuid.UUID
	)
	switch {
	case req.RequesterID == p.UserID:
		if req.AssignedUserID == nil {
			return nil, ErrContactsClosed
		}
		viewerRole = models.ContactViewerRequester
		counterparty = *req.AssignedUserID
	case req.AssignedUserID != nil && *req.AssignedUserID == p.UserID:
		viewerRole = models.ContactViewerProvider
		counterparty = req.RequesterID
	default:
		// Посторонний не должен узнать даже о существовании заявки.
		return nil, repository.ErrRequestNotFound
	}

	if !models.IsContactVisibleStatus(req.Status) {
		return nil, ErrContactsClosed
	}

	user, err := s.users.GetByID(ctx, counterparty)
	if err != nil {
		return nil, err
	}

	entry := &models.ContactAudit{
		RequestID:    requestID,
		LocationID:   p.LocationID,
		ViewerUserID: p.UserID,
		ViewedUserID: counterparty,
		ViewerRole:   viewerRole,
	}
	if err := s.audit.Create(ctx, entry); err != nil {
		return nil, apperr.Internal("запись аудита контактов", err)
	}

	s.logger.WithFields(logrus.Fields{
		"request_id":  requestID,
		"viewer_id":   p.UserID,
		"viewer_role": viewerRole,
	}).Info("контактная карточка раскрыта")

	counterpartyRole := models.ContactViewerProvider
	if viewerRole == models.ContactViewerProvider {
		counterpartyRole = models.ContactViewerRequester
	}

	return &ContactCard{
		Name:  user.Name,
		Phone: user.Phone,
		Role:  counterpartyRole,
	}, nil
}
