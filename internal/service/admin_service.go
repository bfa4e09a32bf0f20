package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/manacity/services-backend/internal/apperr"
	"github.com/manacity/services-backend/internal/models"
	"github.com/manacity/services-backend/internal/pagination"
	"github.com/manacity/services-backend/internal/repository"
	"github.com/manacity/services-backend/internal/validation"
)

// AdminService — операции администратора локации: назначение исполнителей,
// журнал переназначений, очередь категорийных заявок, панель и отмена.
type AdminService struct {
	assignments AssignmentStore
	requests    RequestStore
	users       UserStore
	notifier    Notifier
	logger      *logrus.Logger
}

// NewAdminService создаёт новый экземпляр.
func NewAdminService(assignments AssignmentStore, requests RequestStore, users UserStore, notifier Notifier, logger *logrus.Logger) *AdminService {
	return &AdminService{
		assignments: assignments,
		requests:    requests,
		users:       users,
		notifier:    notifier,
		logger:      logger,
	}
}

// Assign назначает исполнителя на заявку. Переназначение ограничено
// потолком записей в журнале; каждое назначение уведомляет исполнителя.
func (s *AdminService) Assign(ctx context.Context, p Principal, requestID, providerID uuid.UUID, note *string) (*models.ServiceRequest, error) {
	note, err := validation.AssignmentNote(note)
	if err != nil {
		return nil, apperr.New(apperr.KindValidation, err.Error())
	}

	provider, err := s.users.GetInLocation(ctx, p.LocationID, providerID)
	if err != nil {
		return nil, err
	}

	req, oldProvider, err := s.assignments.Assign(ctx, repository.AssignParams{
		LocationID: p.LocationID,
		RequestID:  requestID,
		AdminID:    p.UserID,
		ProviderID: provider.ID,
		Note:       note,
	})
	if err != nil {
		return nil, err
	}

	fields := logrus.Fields{
		"request_id":  requestID,
		"provider_id": providerID,
		"admin_id":    p.UserID,
	}
	if oldProvider != nil {
		fields["old_provider_id"] = *oldProvider
	}
	s.logger.WithFields(fields).Info("исполнитель назначен")

	s.notifier.Notify(ctx, p.LocationID, provider.ID, models.NotificationServiceAssigned)
	return req, nil
}

// History возвращает журнал назначений заявки.
func (s *AdminService) History(ctx context.Context, p Principal, requestID uuid.UUID) ([]models.AssignmentHistoryEntry, error) {
	if _, err := s.requests.GetByID(ctx, p.LocationID, requestID); err != nil {
		return nil, err
	}

	entries, err := s.assignments.History(ctx, p.LocationID, requestID)
	if err != nil {
		return nil, apperr.Internal("журнал назначений", err)
	}
	return entries, nil
}

// Queue возвращает открытые категорийные заявки, ожидающие назначения.
func (s *AdminService) Queue(ctx context.Context, p Principal, cursorRaw string, limit int) (*pagination.Page[repository.OpenTypeARow], error) {
	cursor, err := pagination.ParseCursor(cursorRaw)
	if err != nil {
		return nil, apperr.New(apperr.KindValidation, "некорректный курсор")
	}
	limit = pagination.ClampLimit(limit)

	rows, err := s.requests.ListOpenTypeA(ctx, p.LocationID, cursor, limit)
	if err != nil {
		return nil, apperr.Internal("очередь назначения", err)
	}

	result := &pagination.Page[repository.OpenTypeARow]{Items: rows}
	if len(rows) > 0 {
		last := rows[len(rows)-1]
		result.NextCursor = pagination.NextCursor(len(rows), limit, last.CreatedAt, last.ID)
		result.HasMore = result.NextCursor != ""
	}
	return result, nil
}

// DashboardQuery — параметры панели заявок.
type DashboardQuery struct {
	Status   string
	Kind     string
	Assigned *bool
	Overdue  bool
	Page     int
	Limit    int
}

// Dashboard возвращает страницу панели заявок с фильтрами по статусу,
// типу, наличию исполнителя и просроченности.
func (s *AdminService) Dashboard(ctx context.Context, p Principal, q DashboardQuery) (*pagination.Page[repository.DashboardRow], error) {
	if q.Status != "" {
		q.Status = strings.ToUpper(q.Status)
		if !knownStatus(q.Status) {
			return nil, apperr.New(apperr.KindValidation, "неизвестный статус")
		}
	}
	if q.Kind != "" {
		q.Kind = strings.ToUpper(q.Kind)
		if q.Kind != models.RequestKindTypeA && q.Kind != models.RequestKindTypeB {
			return nil, apperr.New(apperr.KindValidation, "неизвестный тип заявки")
		}
	}

	page, limit, offset := pagination.LegacyParams(q.Page, q.Limit)
	filter := repository.DashboardFilter{
		Status:   q.Status,
		Kind:     q.Kind,
		Assigned: q.Assigned,
		Overdue:  q.Overdue,
		Limit:    limit,
		Offset:   offset,
	}

	total, err := s.requests.CountDashboard(ctx, p.LocationID, filter)
	if err != nil {
		return nil, apperr.Internal("подсчёт панели", err)
	}
	rows, err := s.requests.ListDashboard(ctx, p.LocationID, filter)
	if err != nil {
		return nil, apperr.Internal("панель заявок", err)
	}

	return &pagination.Page[repository.DashboardRow]{
		Items:   rows,
		Legacy:  &pagination.Legacy{Page: page, Limit: limit, Total: total},
		HasMore: pagination.HasMore(offset, len(rows), total),
	}, nil
}

// Cancel отменяет заявку от имени администратора. Заявки в OFFERED и
// IN_PROGRESS административной отмене не подлежат.
func (s *AdminService) Cancel(ctx context.Context, p Principal, requestID uuid.UUID) (*models.ServiceRequest, error) {
	affected, err := s.requests.Transition(ctx, repository.TransitionParams{
		RequestID:  requestID,
		LocationID: p.LocationID,
		NewStatus:  models.RequestStatusCancelledByAdm,
		FromStatuses: []string{
			models.RequestStatusOpen,
			models.RequestStatusAssigned,
			models.RequestStatusAccepted,
		},
		SetClosedAt: true,
	})
	if err != nil {
		return nil, apperr.Internal("отмена администратором", err)
	}

	req, getErr := s.requests.GetByID(ctx, p.LocationID, requestID)
	if getErr != nil {
		return nil, getErr
	}
	if affected == 0 {
		if models.IsTerminalStatus(req.Status) {
			return nil, apperr.New(apperr.KindConflict, "заявка уже закрыта")
		}
		return nil, apperr.WithCode(apperr.KindConflict, "INVALID_TRANSITION",
			fmt.Sprintf("отмена из статуса %s недоступна", req.Status))
	}

	s.logger.WithFields(logrus.Fields{
		"request_id": requestID,
		"admin_id":   p.UserID,
	}).Info("заявка отменена администратором")
	return req, nil
}

// knownStatus проверяет принадлежность строки к множеству статусов заявки.
func knownStatus(status string) bool {
	switch status {
	case models.RequestStatusOpen, models.RequestStatusOffered, models.RequestStatusAssigned,
		models.RequestStatusAccepted, models.RequestStatusInProgress, models.RequestStatusCompleted,
		models.RequestStatusCancelledByUser, models.RequestStatusCancelledByAdm,
		models.RequestStatusRejected, models.RequestStatusExpired:
		return true
	}
	return false
}
