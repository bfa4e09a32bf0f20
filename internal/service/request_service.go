package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/manacity/services-backend/internal/apperr"
	"github.com/manacity/services-backend/internal/models"
	"github.com/manacity/services-backend/internal/pagination"
	"github.com/manacity/services-backend/internal/repository"
	"github.com/manacity/services-backend/internal/validation"
)

// CreationCooldown — минимальный интервал между активными заявками одного жителя.
const CreationCooldown = 10 * time.Minute

// RequestService реализует жизненный цикл заявок: создание с кулдауном,
// переходы исполнителя и владельца, ленты с пагинацией и чистку просроченных.
type RequestService struct {
	requests   RequestStore
	categories CategoryStore
	notifier   Notifier
	logger     *logrus.Logger
	now        func() time.Time
}

// NewRequestService создаёт новый экземпляр.
func NewRequestService(requests RequestStore, categories CategoryStore, notifier Notifier, logger *logrus.Logger) *RequestService {
	return &RequestService{
		requests:   requests,
		categories: categories,
		notifier:   notifier,
		logger:     logger,
		now:        time.Now,
	}
}

// validateText нормализует и проверяет текст заявки.
func validateText(text string) (string, error) {
	text, err := validation.RequestText(text)
	if err != nil {
		return "", apperr.New(apperr.KindValidation, err.Error())
	}
	return text, nil
}

// checkCooldown отклоняет создание, если у жителя есть свежая активная заявка.
func (s *RequestService) checkCooldown(ctx context.Context, p Principal) error {
	recent, err := s.requests.HasRecentActive(ctx, p.LocationID, p.UserID, s.now().Add(-CreationCooldown))
	if err != nil {
		return apperr.Internal("проверка кулдауна", err)
	}
	if recent {
		return apperr.WithCode(apperr.KindRateLimited, "CREATION_COOLDOWN", "подождите перед созданием следующей заявки")
	}
	return nil
}

// CreateTypeA создаёт категорийную заявку. Она всегда приватная и попадает
// в очередь назначения администратора.
func (s *RequestService) CreateTypeA(ctx context.Context, p Principal, categoryID uuid.UUID, text string) (*models.ServiceRequest, error) {
	text, err := validateText(text)
	if err != nil {
		return nil, err
	}
	if err := s.checkCooldown(ctx, p); err != nil {
		return nil, err
	}

	category, err := s.categories.GetByID(ctx, p.LocationID, categoryID)
	if err != nil {
		return nil, err
	}
	if !category.IsActive {
		return nil, apperr.WithCode(apperr.KindConflict, "CATEGORY_INACTIVE", "категория отключена")
	}

	req := models.NewTypeARequest(p.LocationID, p.UserID, categoryID, text, s.now())
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, apperr.Internal("создание заявки", err)
	}

	s.logger.WithFields(logrus.Fields{
		"request_id": req.ID,
		"type":       req.Kind(),
	}).Info("заявка создана")
	return req, nil
}

// CreateTypeB создаёт свободную заявку, опционально видимую в публичной ленте.
func (s *RequestService) CreateTypeB(ctx context.Context, p Principal, text string, isPublic bool) (*models.ServiceRequest, error) {
	text, err := validateText(text)
	if err != nil {
		return nil, err
	}
	if err := s.checkCooldown(ctx, p); err != nil {
		return nil, err
	}

	req := models.NewTypeBRequest(p.LocationID, p.UserID, text, isPublic, s.now())
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, apperr.Internal("создание заявки", err)
	}

	s.logger.WithFields(logrus.Fields{
		"request_id": req.ID,
		"type":       req.Kind(),
		"is_public":  isPublic,
	}).Info("заявка создана")
	return req, nil
}

// Get возвращает заявку с проверкой видимости. Чужая приватная заявка
// неотличима от несуществующей.
func (s *RequestService) Get(ctx context.Context, p Principal, id uuid.UUID) (*models.ServiceRequest, error) {
	req, err := s.requests.GetByID(ctx, p.LocationID, id)
	if err != nil {
		return nil, err
	}

	switch {
	case req.RequesterID == p.UserID:
	case p.Role == models.RoleAdmin:
	case req.AssignedUserID != nil && *req.AssignedUserID == p.UserID:
	case req.IsPublic:
	default:
		return nil, repository.ErrRequestNotFound
	}

	return req, nil
}

// transitionParams — внутреннее описание перехода для двухфазного выполнения.
type transitionParams struct {
	newStatus    string
	fromStatuses []string
	byOwner      bool
	byAssignee   bool
	setClosedAt  bool
}

// transition выполняет условный UPDATE, а при нулевом результате читает заявку
// повторно и классифицирует причину отказа. Сама мутация остаётся атомарной,
// диагностика лишь подбирает точную ошибку для клиента.
func (s *RequestService) transition(ctx context.Context, p Principal, id uuid.UUID, tp transitionParams) (*models.ServiceRequest, error) {
	params := repository.TransitionParams{
		RequestID:    id,
		LocationID:   p.LocationID,
		NewStatus:    tp.newStatus,
		FromStatuses: tp.fromStatuses,
		SetClosedAt:  tp.setClosedAt,
	}
	if tp.byOwner {
		params.RequesterID = &p.UserID
	}
	if tp.byAssignee {
		params.AssigneeID = &p.UserID
	}

	affected, err := s.requests.Transition(ctx, params)
	if err != nil {
		return nil, apperr.Internal("переход заявки", err)
	}
	if affected == 0 {
		return nil, s.diagnose(ctx, p, id, tp)
	}

	req, err := s.requests.GetByID(ctx, p.LocationID, id)
	if err != nil {
		return nil, err
	}
	return req, nil
}

// diagnose выясняет, почему условный переход не затронул ни одной строки.
func (s *RequestService) diagnose(ctx context.Context, p Principal, id uuid.UUID, tp transitionParams) error {
	req, err := s.requests.GetByID(ctx, p.LocationID, id)
	if err != nil {
		return err
	}

	if tp.byOwner && req.RequesterID != p.UserID {
		return repository.ErrNotRequestOwner
	}
	if tp.byAssignee && (req.AssignedUserID == nil || *req.AssignedUserID != p.UserID) {
		return apperr.New(apperr.KindForbidden, "заявка назначена другому исполнителю")
	}
	if req.Status == models.RequestStatusExpired {
		return repository.ErrRequestExpired
	}
	// Закрытая заявка остаётся закрытой, даже если её дедлайн давно прошёл.
	if models.IsTerminalStatus(req.Status) {
		return apperr.New(apperr.KindConflict, "заявка уже закрыта")
	}
	if req.IsExpiredAt(s.now()) {
		return repository.ErrRequestExpired
	}
	return apperr.WithCode(apperr.KindConflict, "INVALID_TRANSITION",
		fmt.Sprintf("переход в %s из статуса %s невозможен", tp.newStatus, req.Status))
}

// AcceptWork — назначенный исполнитель подтверждает, что берёт заявку.
func (s *RequestService) AcceptWork(ctx context.Context, p Principal, id uuid.UUID) (*models.ServiceRequest, error) {
	req, err := s.transition(ctx, p, id, transitionParams{
		newStatus:    models.RequestStatusAccepted,
		fromStatuses: []string{models.RequestStatusAssigned},
		byAssignee:   true,
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, p.LocationID, req.RequesterID, models.NotificationServiceAccepted)
	return req, nil
}

// StartWork — исполнитель отмечает начало выполнения.
func (s *RequestService) StartWork(ctx context.Context, p Principal, id uuid.UUID) (*models.ServiceRequest, error) {
	return s.transition(ctx, p, id, transitionParams{
		newStatus:    models.RequestStatusInProgress,
		fromStatuses: []string{models.RequestStatusAssigned, models.RequestStatusAccepted},
		byAssignee:   true,
	})
}

// CompleteWork — исполнитель завершает заявку.
func (s *RequestService) CompleteWork(ctx context.Context, p Principal, id uuid.UUID) (*models.ServiceRequest, error) {
	req, err := s.transition(ctx, p, id, transitionParams{
		newStatus:    models.RequestStatusCompleted,
		fromStatuses: []string{models.RequestStatusAccepted, models.RequestStatusInProgress},
		byAssignee:   true,
		setClosedAt:  true,
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, p.LocationID, req.RequesterID, models.NotificationServiceCompleted)
	return req, nil
}

// CancelByUser — владелец отменяет заявку до начала выполнения.
func (s *RequestService) CancelByUser(ctx context.Context, p Principal, id uuid.UUID) (*models.ServiceRequest, error) {
	return s.transition(ctx, p, id, transitionParams{
		newStatus: models.RequestStatusCancelledByUser,
		fromStatuses: []string{
			models.RequestStatusOpen,
			models.RequestStatusOffered,
			models.RequestStatusAssigned,
			models.RequestStatusAccepted,
			models.RequestStatusInProgress,
		},
		byOwner:     true,
		setClosedAt: true,
	})
}

// PublicFeed возвращает публичную ленту открытых заявок.
// Режим выбирается клиентом: page > 0 включает легаси-пагинацию,
// иначе работает keyset-курсор.
func (s *RequestService) PublicFeed(ctx context.Context, p Principal, cursorRaw string, page, limit int) (*pagination.Page[repository.PublicRequestRow], error) {
	if page > 0 {
		page, limit, offset := pagination.LegacyParams(page, limit)

		total, err := s.requests.CountPublic(ctx, p.LocationID)
		if err != nil {
			return nil, apperr.Internal("подсчёт публичной ленты", err)
		}
		rows, err := s.requests.ListPublicOffset(ctx, p.LocationID, limit, offset)
		if err != nil {
			return nil, apperr.Internal("публичная лента", err)
		}

		return &pagination.Page[repository.PublicRequestRow]{
			Items:   rows,
			Legacy:  &pagination.Legacy{Page: page, Limit: limit, Total: total},
			HasMore: pagination.HasMore(offset, len(rows), total),
		}, nil
	}

	cursor, err := pagination.ParseCursor(cursorRaw)
	if err != nil {
		return nil, apperr.New(apperr.KindValidation, "некорректный курсор")
	}
	limit = pagination.ClampLimit(limit)

	rows, err := s.requests.ListPublicCursor(ctx, p.LocationID, cursor, limit)
	if err != nil {
		return nil, apperr.Internal("публичная лента", err)
	}

	result := &pagination.Page[repository.PublicRequestRow]{Items: rows}
	if len(rows) > 0 {
		last := rows[len(rows)-1]
		result.NextCursor = pagination.NextCursor(len(rows), limit, last.CreatedAt, last.ID)
		result.HasMore = result.NextCursor != ""
	}
	return result, nil
}

// ListMine возвращает заявки текущего пользователя с категорией, исполнителем
// и числом предложений.
func (s *RequestService) ListMine(ctx context.Context, p Principal, cursorRaw string, page, limit int) (*pagination.Page[repository.MyRequestRow], error) {
	if page > 0 {
		page, limit, offset := pagination.LegacyParams(page, limit)

		total, err := s.requests.CountMine(ctx, p.LocationID, p.UserID)
		if err != nil {
			return nil, apperr.Internal("подсчёт моих заявок", err)
		}
		rows, err := s.requests.ListMineOffset(ctx, p.LocationID, p.UserID, limit, offset)
		if err != nil {
			return nil, apperr.Internal("мои заявки", err)
		}

		return &pagination.Page[repository.MyRequestRow]{
			Items:   rows,
			Legacy:  &pagination.Legacy{Page: page, Limit: limit, Total: total},
			HasMore: pagination.HasMore(offset, len(rows), total),
		}, nil
	}

	cursor, err := pagination.ParseCursor(cursorRaw)
	if err != nil {
		return nil, apperr.New(apperr.KindValidation, "некорректный курсор")
	}
	limit = pagination.ClampLimit(limit)

	rows, err := s.requests.ListMineCursor(ctx, p.LocationID, p.UserID, cursor, limit)
	if err != nil {
		return nil, apperr.Internal("мои заявки", err)
	}

	result := &pagination.Page[repository.MyRequestRow]{Items: rows}
	if len(rows) > 0 {
		last := rows[len(rows)-1]
		result.NextCursor = pagination.NextCursor(len(rows), limit, last.CreatedAt, last.ID)
		result.HasMore = result.NextCursor != ""
	}
	return result, nil
}

// ExpireOverdue закрывает просроченные открытые заявки. Вызывается чистильщиком.
func (s *RequestService) ExpireOverdue(ctx context.Context) (int64, error) {
	expired, err := s.requests.ExpireOverdue(ctx, s.now())
	if err != nil {
		return 0, apperr.Internal("чистка просроченных заявок", err)
	}
	if expired > 0 {
		s.logger.WithField("count", expired).Info("просроченные заявки закрыты")
	}
	return expired, nil
}
