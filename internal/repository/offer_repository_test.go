package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/manacity/services-backend/internal/apperr"
	"github.com/manacity/services-backend/internal/models"
)

func requestRows(req *models.ServiceRequest) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "location_id", "requester_id", "request_text", "is_public", "status", "created_at", "updated_at", "expires_at",
	}).AddRow(
		req.ID, req.LocationID, req.RequesterID, req.RequestText, req.IsPublic, req.Status, req.CreatedAt, req.UpdatedAt, req.ExpiresAt,
	)
}

func offerRows(offer *models.ServiceOffer) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "request_id", "provider_user_id", "message", "status", "created_at",
	}).AddRow(
		offer.ID, offer.RequestID, offer.ProviderUserID, offer.Message, offer.Status, offer.CreatedAt,
	)
}

func TestOfferRepository_Create_SelfOffer(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOfferRepository(db)
	locationID := uuid.New()
	requesterID := uuid.New()
	req := &models.ServiceRequest{
		ID:          uuid.New(),
		LocationID:  locationID,
		RequesterID: requesterID,
		IsPublic:    true,
		Status:      models.RequestStatusOpen,
		ExpiresAt:   time.Now().Add(time.Hour),
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM service_requests WHERE id = \$1 AND location_id = \$2 FOR UPDATE`).
		WithArgs(req.ID, locationID).
		WillReturnRows(requestRows(req))
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), locationID, req.ID, requesterID, "сделаю сам")

	assert.True(t, errors.Is(err, ErrSelfOffer))
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOfferRepository_Create_PrivateRequestHidden(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOfferRepository(db)
	locationID := uuid.New()
	req := &models.ServiceRequest{
		ID:          uuid.New(),
		LocationID:  locationID,
		RequesterID: uuid.New(),
		IsPublic:    false,
		Status:      models.RequestStatusOpen,
		ExpiresAt:   time.Now().Add(time.Hour),
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WithArgs(req.ID, locationID).
		WillReturnRows(requestRows(req))
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), locationID, req.ID, uuid.New(), "готов взяться")

	// Приватная заявка для постороннего неотличима от несуществующей.
	assert.True(t, errors.Is(err, ErrRequestNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOfferRepository_Reject_DemotesToOpen(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOfferRepository(db)
	locationID := uuid.New()
	requesterID := uuid.New()
	req := &models.ServiceRequest{
		ID:          uuid.New(),
		LocationID:  locationID,
		RequesterID: requesterID,
		IsPublic:    true,
		Status:      models.RequestStatusOffered,
		ExpiresAt:   time.Now().Add(time.Hour),
	}
	offer := &models.ServiceOffer{
		ID:             uuid.New(),
		RequestID:      req.ID,
		ProviderUserID: uuid.New(),
		Message:        "возьмусь за работу",
		Status:         models.OfferStatusPending,
		CreatedAt:      time.Now(),
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM service_requests WHERE id = \$1 AND location_id = \$2 FOR UPDATE`).
		WithArgs(req.ID, locationID).
		WillReturnRows(requestRows(req))
	mock.ExpectQuery(`SELECT \* FROM service_offers WHERE id = \$1 AND request_id = \$2 FOR UPDATE`).
		WithArgs(offer.ID, req.ID).
		WillReturnRows(offerRows(offer))

	rejectedOffer := *offer
	rejectedOffer.Status = models.OfferStatusRejected
	mock.ExpectQuery(`UPDATE service_offers SET status = 'REJECTED' WHERE id = \$1 RETURNING \*`).
		WithArgs(offer.ID).
		WillReturnRows(offerRows(&rejectedOffer))

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM service_offers WHERE request_id = \$1 AND status = 'PENDING'`).
		WithArgs(req.ID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(`UPDATE service_requests SET status = 'OPEN', updated_at = NOW\(\) WHERE id = \$1`).
		WithArgs(req.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rejected, err := repo.Reject(context.Background(), locationID, req.ID, offer.ID, requesterID)

	assert.NoError(t, err)
	assert.Equal(t, models.OfferStatusRejected, rejected.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOfferRepository_Reject_NotOwner(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOfferRepository(db)
	locationID := uuid.New()
	req := &models.ServiceRequest{
		ID:          uuid.New(),
		LocationID:  locationID,
		RequesterID: uuid.New(),
		IsPublic:    true,
		Status:      models.RequestStatusOffered,
		ExpiresAt:   time.Now().Add(time.Hour),
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WithArgs(req.ID, locationID).
		WillReturnRows(requestRows(req))
	mock.ExpectRollback()

	_, err := repo.Reject(context.Background(), locationID, req.ID, uuid.New(), uuid.New())

	assert.True(t, errors.Is(err, ErrNotRequestOwner))
	assert.NoError(t, mock.ExpectationsWereMet())
}
