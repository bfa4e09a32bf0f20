package service

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/manacity/services-backend/internal/apperr"
	"github.com/manacity/services-backend/internal/models"
	"github.com/manacity/services-backend/internal/pagination"
	"github.com/manacity/services-backend/internal/repository"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testPrincipal() Principal {
	return Principal{
		UserID:     uuid.New(),
		LocationID: uuid.New(),
		Role:       models.RoleUser,
	}
}

func newRequestService() (*RequestService, *mockRequestStore, *mockCategoryStore, *mockNotifier) {
	requests := new(mockRequestStore)
	categories := new(mockCategoryStore)
	notifier := new(mockNotifier)
	svc := NewRequestService(requests, categories, notifier, testLogger())
	return svc, requests, categories, notifier
}

func TestRequestService_CreateTypeB_Success(t *testing.T) {
	svc, requests, _, _ := newRequestService()
	ctx := context.Background()
	p := testPrincipal()

	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	requests.On("HasRecentActive", ctx, p.LocationID, p.UserID, now.Add(-CreationCooldown)).Return(false, nil)
	requests.On("Create", ctx, mock.AnythingOfType("*models.ServiceRequest")).Return(nil)

	req, err := svc.CreateTypeB(ctx, p, "  нужно починить кран на кухне  ", true)

	assert.NoError(t, err)
	assert.Equal(t, models.RequestStatusOpen, req.Status)
	assert.Equal(t, "нужно починить кран на кухне", req.RequestText)
	assert.True(t, req.IsPublic)
	assert.Nil(t, req.CategoryID)
	assert.Equal(t, now.Add(models.RequestTTL), req.ExpiresAt)
	requests.AssertExpectations(t)
}

func TestRequestService_CreateTypeB_Cooldown(t *testing.T) {
	svc, requests, _, _ := newRequestService()
	ctx := context.Background()
	p := testPrincipal()

	requests.On("HasRecentActive", ctx, p.LocationID, p.UserID, mock.AnythingOfType("time.Time")).Return(true, nil)

	_, err := svc.CreateTypeB(ctx, p, "нужно починить кран", false)

	assert.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindRateLimited))
	assert.Equal(t, "CREATION_COOLDOWN", apperr.ClientCode(err))
}

func TestRequestService_CreateTypeB_TextTooShort(t *testing.T) {
	svc, _, _, _ := newRequestService()

	_, err := svc.CreateTypeB(context.Background(), testPrincipal(), "   аб ", false)

	assert.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestRequestService_CreateTypeA_Success(t *testing.T) {
	svc, requests, categories, _ := newRequestService()
	ctx := context.Background()
	p := testPrincipal()
	categoryID := uuid.New()

	requests.On("HasRecentActive", ctx, p.LocationID, p.UserID, mock.AnythingOfType("time.Time")).Return(false, nil)
	categories.On("GetByID", ctx, p.LocationID, categoryID).Return(&models.ServiceCategory{
		ID:         categoryID,
		LocationID: p.LocationID,
		Name:       "Сантехника",
		IsActive:   true,
	}, nil)
	requests.On("Create", ctx, mock.AnythingOfType("*models.ServiceRequest")).Return(nil)

	req, err := svc.CreateTypeA(ctx, p, categoryID, "прорвало трубу в ванной")

	assert.NoError(t, err)
	assert.Equal(t, models.RequestKindTypeA, req.Kind())
	// Категорийная заявка никогда не публичная.
	assert.False(t, req.IsPublic)
	requests.AssertExpectations(t)
	categories.AssertExpectations(t)
}

func TestRequestService_CreateTypeA_InactiveCategory(t *testing.T) {
	svc, requests, categories, _ := newRequestService()
	ctx := context.Background()
	p := testPrincipal()
	categoryID := uuid.New()

	requests.On("HasRecentActive", ctx, p.LocationID, p.UserID, mock.AnythingOfType("time.Time")).Return(false, nil)
	categories.On("GetByID", ctx, p.LocationID, categoryID).Return(&models.ServiceCategory{
		ID:       categoryID,
		IsActive: false,
	}, nil)

	_, err := svc.CreateTypeA(ctx, p, categoryID, "прорвало трубу в ванной")

	assert.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
	assert.Equal(t, "CATEGORY_INACTIVE", apperr.ClientCode(err))
	requests.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRequestService_Get_PrivateHiddenFromStranger(t *testing.T) {
	svc, requests, _, _ := newRequestService()
	ctx := context.Background()
	p := testPrincipal()
	requestID := uuid.New()

	requests.On("GetByID", ctx, p.LocationID, requestID).Return(&models.ServiceRequest{
		ID:          requestID,
		LocationID:  p.LocationID,
		RequesterID: uuid.New(),
		IsPublic:    false,
		Status:      models.RequestStatusOpen,
	}, nil)

	_, err := svc.Get(ctx, p, requestID)

	assert.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestRequestService_AcceptWork_Success(t *testing.T) {
	svc, requests, _, notifier := newRequestService()
	ctx := context.Background()
	p := testPrincipal()
	requestID := uuid.New()
	requesterID := uuid.New()

	requests.On("Transition", ctx, mock.MatchedBy(func(tp repository.TransitionParams) bool {
		return tp.NewStatus == models.RequestStatusAccepted &&
			tp.AssigneeID != nil && *tp.AssigneeID == p.UserID
	})).Return(int64(1), nil)
	requests.On("GetByID", ctx, p.LocationID, requestID).Return(&models.ServiceRequest{
		ID:             requestID,
		LocationID:     p.LocationID,
		RequesterID:    requesterID,
		Status:         models.RequestStatusAccepted,
		AssignedUserID: &p.UserID,
	}, nil)
	notifier.On("Notify", ctx, p.LocationID, requesterID, models.NotificationServiceAccepted).Return()

	req, err := svc.AcceptWork(ctx, p, requestID)

	assert.NoError(t, err)
	assert.Equal(t, models.RequestStatusAccepted, req.Status)
	notifier.AssertExpectations(t)
}

func TestRequestService_AcceptWork_WrongAssignee(t *testing.T) {
	svc, requests, _, _ := newRequestService()
	ctx := context.Background()
	p := testPrincipal()
	requestID := uuid.New()
	otherProvider := uuid.New()

	requests.On("Transition", ctx, mock.AnythingOfType("repository.TransitionParams")).Return(int64(0), nil)
	requests.On("GetByID", ctx, p.LocationID, requestID).Return(&models.ServiceRequest{
		ID:             requestID,
		LocationID:     p.LocationID,
		RequesterID:    uuid.New(),
		Status:         models.RequestStatusAssigned,
		AssignedUserID: &otherProvider,
		ExpiresAt:      time.Now().Add(time.Hour),
	}, nil)

	_, err := svc.AcceptWork(ctx, p, requestID)

	assert.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
}

func TestRequestService_CompleteWork_AlreadyClosed(t *testing.T) {
	svc, requests, _, _ := newRequestService()
	ctx := context.Background()
	p := testPrincipal()
	requestID := uuid.New()

	requests.On("Transition", ctx, mock.AnythingOfType("repository.TransitionParams")).Return(int64(0), nil)
	requests.On("GetByID", ctx, p.LocationID, requestID).Return(&models.ServiceRequest{
		ID:             requestID,
		LocationID:     p.LocationID,
		RequesterID:    uuid.New(),
		Status:         models.RequestStatusCompleted,
		AssignedUserID: &p.UserID,
		ExpiresAt:      time.Now().Add(time.Hour),
	}, nil)

	_, err := svc.CompleteWork(ctx, p, requestID)

	assert.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestRequestService_CompleteWork_ClosedAndOverdue(t *testing.T) {
	svc, requests, _, _ := newRequestService()
	ctx := context.Background()
	p := testPrincipal()
	requestID := uuid.New()

	requests.On("Transition", ctx, mock.AnythingOfType("repository.TransitionParams")).Return(int64(0), nil)
	// Заявка завершена и старше суток: закрытие важнее просрочки.
	requests.On("GetByID", ctx, p.LocationID, requestID).Return(&models.ServiceRequest{
		ID:             requestID,
		LocationID:     p.LocationID,
		RequesterID:    uuid.New(),
		Status:         models.RequestStatusCompleted,
		AssignedUserID: &p.UserID,
		ExpiresAt:      time.Now().Add(-48 * time.Hour),
	}, nil)

	_, err := svc.CompleteWork(ctx, p, requestID)

	assert.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
	assert.False(t, apperr.IsKind(err, apperr.KindExpired))
}

func TestRequestService_CancelByUser_Expired(t *testing.T) {
	svc, requests, _, _ := newRequestService()
	ctx := context.Background()
	p := testPrincipal()
	requestID := uuid.New()

	requests.On("Transition", ctx, mock.AnythingOfType("repository.TransitionParams")).Return(int64(0), nil)
	requests.On("GetByID", ctx, p.LocationID, requestID).Return(&models.ServiceRequest{
		ID:          requestID,
		LocationID:  p.LocationID,
		RequesterID: p.UserID,
		Status:      models.RequestStatusOpen,
		ExpiresAt:   time.Now().Add(-time.Minute),
	}, nil)

	_, err := svc.CancelByUser(ctx, p, requestID)

	assert.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindExpired))
}

func TestRequestService_PublicFeed_CursorMode(t *testing.T) {
	svc, requests, _, _ := newRequestService()
	ctx := context.Background()
	p := testPrincipal()

	lastCreated := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	lastID := uuid.New()
	rows := []repository.PublicRequestRow{
		{ID: uuid.New(), CreatedAt: lastCreated.Add(time.Minute)},
		{ID: lastID, CreatedAt: lastCreated},
	}
	requests.On("ListPublicCursor", ctx, p.LocationID, (*pagination.Cursor)(nil), 2).Return(rows, nil)

	page, err := svc.PublicFeed(ctx, p, "", 0, 2)

	assert.NoError(t, err)
	assert.Len(t, page.Items, 2)
	// Полная страница — курсор указывает на последнюю строку.
	assert.NotEmpty(t, page.NextCursor)
	assert.True(t, page.HasMore)
	assert.Nil(t, page.Legacy)
}

func TestRequestService_PublicFeed_CursorLastPage(t *testing.T) {
	svc, requests, _, _ := newRequestService()
	ctx := context.Background()
	p := testPrincipal()

	rows := []repository.PublicRequestRow{{ID: uuid.New(), CreatedAt: time.Now()}}
	requests.On("ListPublicCursor", ctx, p.LocationID, (*pagination.Cursor)(nil), 20).Return(rows, nil)

	page, err := svc.PublicFeed(ctx, p, "", 0, 0)

	assert.NoError(t, err)
	// Неполная страница — конец данных, курсора нет.
	assert.Empty(t, page.NextCursor)
	assert.False(t, page.HasMore)
}

func TestRequestService_PublicFeed_BadCursor(t *testing.T) {
	svc, _, _, _ := newRequestService()

	_, err := svc.PublicFeed(context.Background(), testPrincipal(), "мусор", 0, 10)

	assert.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestRequestService_PublicFeed_LegacyMode(t *testing.T) {
	svc, requests, _, _ := newRequestService()
	ctx := context.Background()
	p := testPrincipal()

	rows := []repository.PublicRequestRow{{ID: uuid.New()}, {ID: uuid.New()}}
	requests.On("CountPublic", ctx, p.LocationID).Return(5, nil)
	requests.On("ListPublicOffset", ctx, p.LocationID, 2, 0).Return(rows, nil)

	page, err := svc.PublicFeed(ctx, p, "", 1, 2)

	assert.NoError(t, err)
	assert.NotNil(t, page.Legacy)
	assert.Equal(t, 5, page.Legacy.Total)
	assert.True(t, page.HasMore)
	assert.Empty(t, page.NextCursor)
}

func TestRequestService_ExpireOverdue(t *testing.T) {
	svc, requests, _, _ := newRequestService()
	ctx := context.Background()

	requests.On("ExpireOverdue", ctx, mock.AnythingOfType("time.Time")).Return(int64(3), nil)

	count, err := svc.ExpireOverdue(ctx)

	assert.NoError(t, err)
	assert.Equal(t, int64(3), count)
}
