package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/manacity/services-backend/internal/models"
	"github.com/manacity/services-backend/internal/pagination"
	"github.com/manacity/services-backend/internal/repository"
)

// Интерфейсы хранилищ, от которых зависят сервисы. Конкретные реализации
// живут в пакете repository; в тестах подставляются моки.

// RequestStore — хранилище заявок.
type RequestStore interface {
	Create(ctx context.Context, req *models.ServiceRequest) error
	GetByID(ctx context.Context, locationID, id uuid.UUID) (*models.ServiceRequest, error)
	HasRecentActive(ctx context.Context, locationID, requesterID uuid.UUID, since time.Time) (bool, error)
	Transition(ctx context.Context, p repository.TransitionParams) (int64, error)
	ExpireOverdue(ctx context.Context, now time.Time) (int64, error)
	ListPublicCursor(ctx context.Context, locationID uuid.UUID, cursor *pagination.Cursor, limit int) ([]repository.PublicRequestRow, error)
	CountPublic(ctx context.Context, locationID uuid.UUID) (int, error)
	ListPublicOffset(ctx context.Context, locationID uuid.UUID, limit, offset int) ([]repository.PublicRequestRow, error)
	ListMineCursor(ctx context.Context, locationID, requesterID uuid.UUID, cursor *pagination.Cursor, limit int) ([]repository.MyRequestRow, error)
	CountMine(ctx context.Context, locationID, requesterID uuid.UUID) (int, error)
	ListMineOffset(ctx context.Context, locationID, requesterID uuid.UUID, limit, offset int) ([]repository.MyRequestRow, error)
	ListOpenTypeA(ctx context.Context, locationID uuid.UUID, cursor *pagination.Cursor, limit int) ([]repository.OpenTypeARow, error)
	CountDashboard(ctx context.Context, locationID uuid.UUID, f repository.DashboardFilter) (int, error)
	ListDashboard(ctx context.Context, locationID uuid.UUID, f repository.DashboardFilter) ([]repository.DashboardRow, error)
}

// OfferStore — хранилище предложений с транзакционным протоколом.
type OfferStore interface {
	Create(ctx context.Context, locationID, requestID, providerID uuid.UUID, message string) (*models.ServiceOffer, error)
	Accept(ctx context.Context, locationID, requestID, offerID, requesterID uuid.UUID) (*models.ServiceRequest, uuid.UUID, error)
	Reject(ctx context.Context, locationID, requestID, offerID, requesterID uuid.UUID) (*models.ServiceOffer, error)
	ListForRequest(ctx context.Context, requestID uuid.UUID) ([]models.OfferWithProvider, error)
}

// AssignmentStore — хранилище назначений и их журнала.
type AssignmentStore interface {
	Assign(ctx context.Context, p repository.AssignParams) (*models.ServiceRequest, *uuid.UUID, error)
	History(ctx context.Context, locationID, requestID uuid.UUID) ([]models.AssignmentHistoryEntry, error)
}

// CategoryStore — справочник категорий.
type CategoryStore interface {
	Create(ctx context.Context, c *models.ServiceCategory) error
	GetByID(ctx context.Context, locationID, id uuid.UUID) (*models.ServiceCategory, error)
	List(ctx context.Context, locationID uuid.UUID, activeOnly bool) ([]models.ServiceCategory, error)
	SetActive(ctx context.Context, locationID, id uuid.UUID, active bool) (*models.ServiceCategory, error)
}

// UserStore — чтение пользователей.
type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetInLocation(ctx context.Context, locationID, id uuid.UUID) (*models.User, error)
	Exists(ctx context.Context, locationID, id uuid.UUID) (bool, error)
}

// NotificationStore — журнал уведомлений.
type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	MarkSent(ctx context.Context, id uuid.UUID, providerRef string) error
	MarkFailed(ctx context.Context, id uuid.UUID) error
}

// ContactAuditStore — журнал раскрытия контактов.
type ContactAuditStore interface {
	Create(ctx context.Context, a *models.ContactAudit) error
}

// Notifier — отправка уведомлений после успешных переходов.
type Notifier interface {
	Notify(ctx context.Context, locationID, userID uuid.UUID, notificationType string)
}
