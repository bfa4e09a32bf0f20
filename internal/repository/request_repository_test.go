package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manacity/services-backend/internal/models"
	"github.com/manacity/services-backend/internal/pagination"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })
	return sqlx.NewDb(mockDB, "sqlmock"), mock
}

func TestRequestRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRequestRepository(db)

	req := models.NewTypeBRequest(uuid.New(), uuid.New(), "нужен ремонт крана", true, time.Now())

	mock.ExpectQuery(`INSERT INTO service_requests`).
		WithArgs(req.LocationID, req.RequesterID, req.CategoryID, req.RequestText, req.IsPublic, req.Status, req.ExpiresAt).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow(uuid.New(), time.Now(), time.Now()))

	err := repo.Create(context.Background(), req)

	assert.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, req.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepository_GetByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRequestRepository(db)
	locationID := uuid.New()
	requestID := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM service_requests WHERE id = \$1 AND location_id = \$2`).
		WithArgs(requestID, locationID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByID(context.Background(), locationID, requestID)

	assert.True(t, errors.Is(err, ErrRequestNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepository_HasRecentActive(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRequestRepository(db)
	locationID := uuid.New()
	requesterID := uuid.New()
	since := time.Now().Add(-10 * time.Minute)

	// Кулдаун снимают только отмена и просрочка: недавно завершённая или
	// отклонённая заявка продолжает блокировать создание.
	mock.ExpectQuery(`SELECT EXISTS[\s\S]+status NOT IN \('CANCELLED_BY_USER', 'CANCELLED_BY_ADMIN', 'EXPIRED'\)`).
		WithArgs(requesterID, locationID, since).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	active, err := repo.HasRecentActive(context.Background(), locationID, requesterID, since)

	assert.NoError(t, err)
	assert.True(t, active)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepository_Transition_RowsAffected(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRequestRepository(db)
	requestID := uuid.New()
	locationID := uuid.New()
	requesterID := uuid.New()

	mock.ExpectExec(`UPDATE service_requests\s+SET status = \$1, updated_at = NOW\(\), closed_at = NOW\(\)\s+WHERE id = \$2 AND location_id = \$3 AND status = ANY\(\$4\)\s+AND requester_id = \$5`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	affected, err := repo.Transition(context.Background(), TransitionParams{
		RequestID:    requestID,
		LocationID:   locationID,
		NewStatus:    models.RequestStatusCancelledByUser,
		FromStatuses: []string{models.RequestStatusOpen, models.RequestStatusOffered},
		RequesterID:  &requesterID,
		SetClosedAt:  true,
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(1), affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepository_Transition_NoMatch(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRequestRepository(db)

	mock.ExpectExec(`UPDATE service_requests`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	affected, err := repo.Transition(context.Background(), TransitionParams{
		RequestID:    uuid.New(),
		LocationID:   uuid.New(),
		NewStatus:    models.RequestStatusAccepted,
		FromStatuses: []string{models.RequestStatusAssigned},
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(0), affected)
}

func TestRequestRepository_ExpireOverdue(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRequestRepository(db)
	now := time.Now()

	mock.ExpectExec(`UPDATE service_requests\s+SET status = 'EXPIRED', closed_at = \$1, updated_at = \$1\s+WHERE status = 'OPEN' AND expires_at <= \$1`).
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 3))

	affected, err := repo.ExpireOverdue(context.Background(), now)

	assert.NoError(t, err)
	assert.Equal(t, int64(3), affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepository_ListPublicCursor_AppendsKeyset(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRequestRepository(db)
	locationID := uuid.New()
	cursor := &pagination.Cursor{CreatedAt: time.Now(), ID: uuid.New()}

	mock.ExpectQuery(`AND \(sr\.created_at, sr\.id\) < \(\$2::timestamptz, \$3::uuid\)\s+ORDER BY sr\.created_at DESC, sr\.id DESC LIMIT \$4`).
		WithArgs(locationID, cursor.CreatedAt, cursor.ID, 20).
		WillReturnRows(sqlmock.NewRows([]string{"id", "request_text", "created_at", "expires_at", "requester_name"}).
			AddRow(uuid.New(), "нужна помощь с переездом", time.Now(), time.Now().Add(time.Hour), "Иван"))

	rows, err := repo.ListPublicCursor(context.Background(), locationID, cursor, 20)

	assert.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
