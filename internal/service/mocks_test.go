package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/manacity/services-backend/internal/models"
	"github.com/manacity/services-backend/internal/pagination"
	"github.com/manacity/services-backend/internal/repository"
)

type mockRequestStore struct {
	mock.Mock
}

func (m *mockRequestStore) Create(ctx context.Context, req *models.ServiceRequest) error {
	args := m.Called(ctx, req)
	if args.Error(0) == nil {
		req.ID = uuid.New()
		req.CreatedAt = time.Now()
		req.UpdatedAt = req.CreatedAt
	}
	return args.Error(0)
}

func (m *mockRequestStore) GetByID(ctx context.Context, locationID, id uuid.UUID) (*models.ServiceRequest, error) {
	args := m.Called(ctx, locationID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ServiceRequest), args.Error(1)
}

func (m *mockRequestStore) HasRecentActive(ctx context.Context, locationID, requesterID uuid.UUID, since time.Time) (bool, error) {
	args := m.Called(ctx, locationID, requesterID, since)
	return args.Bool(0), args.Error(1)
}

func (m *mockRequestStore) Transition(ctx context.Context, p repository.TransitionParams) (int64, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockRequestStore) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockRequestStore) ListPublicCursor(ctx context.Context, locationID uuid.UUID, cursor *pagination.Cursor, limit int) ([]repository.PublicRequestRow, error) {
	args := m.Called(ctx, locationID, cursor, limit)
	return args.Get(0).([]repository.PublicRequestRow), args.Error(1)
}

func (m *mockRequestStore) CountPublic(ctx context.Context, locationID uuid.UUID) (int, error) {
	args := m.Called(ctx, locationID)
	return args.Int(0), args.Error(1)
}

func (m *mockRequestStore) ListPublicOffset(ctx context.Context, locationID uuid.UUID, limit, offset int) ([]repository.PublicRequestRow, error) {
	args := m.Called(ctx, locationID, limit, offset)
	return args.Get(0).([]repository.PublicRequestRow), args.Error(1)
}

func (m *mockRequestStore) ListMineCursor(ctx context.Context, locationID, requesterID uuid.UUID, cursor *pagination.Cursor, limit int) ([]repository.MyRequestRow, error) {
	args := m.Called(ctx, locationID, requesterID, cursor, limit)
	return args.Get(0).([]repository.MyRequestRow), args.Error(1)
}

func (m *mockRequestStore) CountMine(ctx context.Context, locationID, requesterID uuid.UUID) (int, error) {
	args := m.Called(ctx, locationID, requesterID)
	return args.Int(0), args.Error(1)
}

func (m *mockRequestStore) ListMineOffset(ctx context.Context, locationID, requesterID uuid.UUID, limit, offset int) ([]repository.MyRequestRow, error) {
	args := m.Called(ctx, locationID, requesterID, limit, offset)
	return args.Get(0).([]repository.MyRequestRow), args.Error(1)
}

func (m *mockRequestStore) ListOpenTypeA(ctx context.Context, locationID uuid.UUID, cursor *pagination.Cursor, limit int) ([]repository.OpenTypeARow, error) {
	args := m.Called(ctx, locationID, cursor, limit)
	return args.Get(0).([]repository.OpenTypeARow), args.Error(1)
}

func (m *mockRequestStore) CountDashboard(ctx context.Context, locationID uuid.UUID, f repository.DashboardFilter) (int, error) {
	args := m.Called(ctx, locationID, f)
	return args.Int(0), args.Error(1)
}

func (m *mockRequestStore) ListDashboard(ctx context.Context, locationID uuid.UUID, f repository.DashboardFilter) ([]repository.DashboardRow, error) {
	args := m.Called(ctx, locationID, f)
	return args.Get(0).([]repository.DashboardRow), args.Error(1)
}

type mockOfferStore struct {
	mock.Mock
}

func (m *mockOfferStore) Create(ctx context.Context, locationID, requestID, providerID uuid.UUID, message string) (*models.ServiceOffer, error) {
	args := m.Called(ctx, locationID, requestID, providerID, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ServiceOffer), args.Error(1)
}

func (m *mockOfferStore) Accept(ctx context.Context, locationID, requestID, offerID, requesterID uuid.UUID) (*models.ServiceRequest, uuid.UUID, error) {
	args := m.Called(ctx, locationID, requestID, offerID, requesterID)
	if args.Get(0) == nil {
		return nil, uuid.Nil, args.Error(2)
	}
	return args.Get(0).(*models.ServiceRequest), args.Get(1).(uuid.UUID), args.Error(2)
}

func (m *mockOfferStore) Reject(ctx context.Context, locationID, requestID, offerID, requesterID uuid.UUID) (*models.ServiceOffer, error) {
	args := m.Called(ctx, locationID, requestID, offerID, requesterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ServiceOffer), args.Error(1)
}

func (m *mockOfferStore) ListForRequest(ctx context.Context, requestID uuid.UUID) ([]models.OfferWithProvider, error) {
	args := m.Called(ctx, requestID)
	return args.Get(0).([]models.OfferWithProvider), args.Error(1)
}

type mockAssignmentStore struct {
	mock.Mock
}

func (m *mockAssignmentStore) Assign(ctx context.Context, p repository.AssignParams) (*models.ServiceRequest, *uuid.UUID, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var old *uuid.UUID
	if args.Get(1) != nil {
		old = args.Get(1).(*uuid.UUID)
	}
	return args.Get(0).(*models.ServiceRequest), old, args.Error(2)
}

func (m *mockAssignmentStore) History(ctx context.Context, locationID, requestID uuid.UUID) ([]models.AssignmentHistoryEntry, error) {
	args := m.Called(ctx, locationID, requestID)
	return args.Get(0).([]models.AssignmentHistoryEntry), args.Error(1)
}

type mockCategoryStore struct {
	mock.Mock
}

func (m *mockCategoryStore) Create(ctx context.Context, c *models.ServiceCategory) error {
	args := m.Called(ctx, c)
	if args.Error(0) == nil {
		c.ID = uuid.New()
		c.IsActive = true
		c.CreatedAt = time.Now()
	}
	return args.Error(0)
}

func (m *mockCategoryStore) GetByID(ctx context.Context, locationID, id uuid.UUID) (*models.ServiceCategory, error) {
	args := m.Called(ctx, locationID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ServiceCategory), args.Error(1)
}

func (m *mockCategoryStore) List(ctx context.Context, locationID uuid.UUID, activeOnly bool) ([]models.ServiceCategory, error) {
	args := m.Called(ctx, locationID, activeOnly)
	return args.Get(0).([]models.ServiceCategory), args.Error(1)
}

func (m *mockCategoryStore) SetActive(ctx context.Context, locationID, id uuid.UUID, active bool) (*models.ServiceCategory, error) {
	args := m.Called(ctx, locationID, id, active)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ServiceCategory), args.Error(1)
}

type mockUserStore struct {
	mock.Mock
}

func (m *mockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserStore) GetInLocation(ctx context.Context, locationID, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, locationID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserStore) Exists(ctx context.Context, locationID, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, locationID, id)
	return args.Bool(0), args.Error(1)
}

type mockNotificationStore struct {
	mock.Mock
}

func (m *mockNotificationStore) Create(ctx context.Context, n *models.Notification) error {
	args := m.Called(ctx, n)
	if args.Error(0) == nil {
		n.ID = uuid.New()
		n.Status = models.NotificationStatusPending
	}
	return args.Error(0)
}

func (m *mockNotificationStore) MarkSent(ctx context.Context, id uuid.UUID, providerRef string) error {
	args := m.Called(ctx, id, providerRef)
	return args.Error(0)
}

func (m *mockNotificationStore) MarkFailed(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockContactAuditStore struct {
	mock.Mock
}

func (m *mockContactAuditStore) Create(ctx context.Context, a *models.ContactAudit) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Notify(ctx context.Context, locationID, userID uuid.UUID, notificationType string) {
	m.Called(ctx, locationID, userID, notificationType)
}

type mockSMSProvider struct {
	mock.Mock
}

func (m *mockSMSProvider) Send(ctx context.Context, phone, message string) (string, error) {
	args := m.Called(ctx, phone, message)
	return args.String(0), args.Error(1)
}
