package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/manacity/services-backend/internal/apperr"
	"github.com/manacity/services-backend/internal/models"
	"github.com/manacity/services-backend/internal/repository/common"
)

// OfferRepository отвечает за протокол предложений по публичным заявкам.
// Все мутации идут через транзакции с блокировкой строки заявки (FOR UPDATE),
// чтобы гонки параллельных предложений и принятий разрешались в базе.
type OfferRepository struct {
	db *sqlx.DB
}

// Ошибки протокола предложений.
var (
	ErrOfferNotFound    = apperr.New(apperr.KindNotFound, "предложение не найдено")
	ErrOfferNotPending  = apperr.New(apperr.KindConflict, "предложение уже обработано")
	ErrNotAccepting     = apperr.New(apperr.KindConflict, "заявка не принимает предложения")
	ErrRequestExpired   = apperr.New(apperr.KindExpired, "срок заявки истёк")
	ErrSelfOffer        = apperr.New(apperr.KindForbidden, "нельзя откликнуться на собственную заявку")
	ErrDuplicateOffer   = apperr.New(apperr.KindConflict, "вы уже откликнулись на эту заявку")
	ErrPendingLimit     = apperr.WithCode(apperr.KindConflict, "MAX_PENDING_OFFERS_REACHED", "заявка уже набрала максимум предложений")
	ErrHourlyOfferQuota = apperr.New(apperr.KindRateLimited, "слишком много предложений за последний час")
	ErrNotRequestOwner  = apperr.New(apperr.KindForbidden, "заявка принадлежит другому пользователю")
)

// NewOfferRepository создаёт новый экземпляр.
func NewOfferRepository(db *sqlx.DB) *OfferRepository {
	return &OfferRepository{db: db}
}

// lockRequest блокирует строку заявки в рамках локации до конца транзакции.
func lockRequest(ctx context.Context, tx *sqlx.Tx, locationID, requestID uuid.UUID) (*models.ServiceRequest, error) {
	var req models.ServiceRequest
	query := `SELECT * FROM service_requests WHERE id = $1 AND location_id = $2 FOR UPDATE`
	if err := tx.GetContext(ctx, &req, query, requestID, locationID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("offer repository: lock request %w", err)
	}
	return &req, nil
}

// Create проводит все проверки протокола и сохраняет предложение одной транзакцией.
func (r *OfferRepository) Create(ctx context.Context, locationID, requestID, providerID uuid.UUID, message string) (*models.ServiceOffer, error) {
	offer := &models.ServiceOffer{
		RequestID:      requestID,
		ProviderUserID: providerID,
		Message:        message,
		Status:         models.OfferStatusPending,
	}

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		req, err := lockRequest(ctx, tx, locationID, requestID)
		if err != nil {
			return err
		}

		// Приватные заявки для чужих глаз не существуют.
		if !req.IsPublic {
			return ErrRequestNotFound
		}
		if req.RequesterID == providerID {
			return ErrSelfOffer
		}
		if req.Status != models.RequestStatusOpen && req.Status != models.RequestStatusOffered {
			return ErrNotAccepting
		}

		var expired bool
		if err := tx.GetContext(ctx, &expired, `SELECT expires_at <= NOW() FROM service_requests WHERE id = $1`, requestID); err != nil {
			return fmt.Errorf("offer repository: expiry check %w", err)
		}
		if expired {
			return ErrRequestExpired
		}

		var duplicate bool
		dupQuery := `SELECT EXISTS (SELECT 1 FROM service_offers WHERE request_id = $1 AND provider_user_id = $2)`
		if err := tx.GetContext(ctx, &duplicate, dupQuery, requestID, providerID); err != nil {
			return fmt.Errorf("offer repository: duplicate check %w", err)
		}
		if duplicate {
			return ErrDuplicateOffer
		}

		var pending int
		pendingQuery := `SELECT COUNT(*) FROM service_offers WHERE request_id = $1 AND status = 'PENDING'`
		if err := tx.GetContext(ctx, &pending, pendingQuery, requestID); err != nil {
			return fmt.Errorf("offer repository: pending count %w", err)
		}
		if pending >= models.MaxPendingOffersPerRequest {
			return ErrPendingLimit
		}

		var hourly int
		hourlyQuery := `SELECT COUNT(*) FROM service_offers WHERE provider_user_id = $1 AND created_at > NOW() - INTERVAL '1 hour'`
		if err := tx.GetContext(ctx, &hourly, hourlyQuery, providerID); err != nil {
			return fmt.Errorf("offer repository: hourly count %w", err)
		}
		if hourly >= models.MaxOffersPerProviderPerHour {
			return ErrHourlyOfferQuota
		}

		insertQuery := `
			INSERT INTO service_offers (request_id, provider_user_id, message, status)
			VALUES ($1, $2, $3, 'PENDING')
			RETURNING id, created_at
		`
		if err := tx.QueryRowxContext(ctx, insertQuery, requestID, providerID, message).Scan(&offer.ID, &offer.CreatedAt); err != nil {
			// Гонка двух одинаковых предложений упирается в уникальный индекс.
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == "23505" {
				return ErrDuplicateOffer
			}
			return fmt.Errorf("offer repository: insert %w", err)
		}

		if req.Status == models.RequestStatusOpen {
			if _, err := tx.ExecContext(ctx, `UPDATE service_requests SET status = 'OFFERED', updated_at = NOW() WHERE id = $1`, requestID); err != nil {
				return fmt.Errorf("offer repository: promote to offered %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return offer, nil
}

// Accept принимает предложение от имени владельца заявки: победитель получает
// ACCEPTED, остальные ожидающие — REJECTED, заявка переходит в ASSIGNED.
// Возвращает обновлённую заявку и идентификатор исполнителя-победителя.
func (r *OfferRepository) Accept(ctx context.Context, locationID, requestID, offerID, requesterID uuid.UUID) (*models.ServiceRequest, uuid.UUID, error) {
	var (
		updated  models.ServiceRequest
		provider uuid.UUID
	)

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		req, err := lockRequest(ctx, tx, locationID, requestID)
		if err != nil {
			return err
		}
		if req.RequesterID != requesterID {
			return ErrNotRequestOwner
		}
		if req.Status != models.RequestStatusOpen && req.Status != models.RequestStatusOffered {
			return ErrNotAccepting
		}

		var expired bool
		if err := tx.GetContext(ctx, &expired, `SELECT expires_at <= NOW() FROM service_requests WHERE id = $1`, requestID); err != nil {
			return fmt.Errorf("offer repository: expiry check %w", err)
		}
		if expired {
			return ErrRequestExpired
		}

		var offer models.ServiceOffer
		offerQuery := `SELECT * FROM service_offers WHERE id = $1 AND request_id = $2 FOR UPDATE`
		if err := tx.GetContext(ctx, &offer, offerQuery, offerID, requestID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrOfferNotFound
			}
			return fmt.Errorf("offer repository: lock offer %w", err)
		}
		if offer.Status != models.OfferStatusPending {
			return ErrOfferNotPending
		}
		provider = offer.ProviderUserID

		if _, err := tx.ExecContext(ctx, `UPDATE service_offers SET status = 'ACCEPTED' WHERE id = $1`, offerID); err != nil {
			return fmt.Errorf("offer repository: accept winner %w", err)
		}

		rejectQuery := `UPDATE service_offers SET status = 'REJECTED' WHERE request_id = $1 AND status = 'PENDING' AND id <> $2`
		if _, err := tx.ExecContext(ctx, rejectQuery, requestID, offerID); err != nil {
			return fmt.Errorf("offer repository: reject losers %w", err)
		}

		assignQuery := `
			UPDATE service_requests
			SET status = 'ASSIGNED', assigned_user_id = $1, assigned_at = NOW(), updated_at = NOW()
			WHERE id = $2
			RETURNING *
		`
		if err := tx.GetContext(ctx, &updated, assignQuery, provider, requestID); err != nil {
			return fmt.Errorf("offer repository: assign winner %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, uuid.Nil, err
	}

	return &updated, provider, nil
}

// Reject отклоняет ожидающее предложение от имени владельца заявки.
// Если ожидающих больше не осталось, заявка возвращается из OFFERED в OPEN.
func (r *OfferRepository) Reject(ctx context.Context, locationID, requestID, offerID, requesterID uuid.UUID) (*models.ServiceOffer, error) {
	var rejected models.ServiceOffer

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		req, err := lockRequest(ctx, tx, locationID, requestID)
		if err != nil {
			return err
		}
		if req.RequesterID != requesterID {
			return ErrNotRequestOwner
		}

		var offer models.ServiceOffer
		offerQuery := `SELECT * FROM service_offers WHERE id = $1 AND request_id = $2 FOR UPDATE`
		if err := tx.GetContext(ctx, &offer, offerQuery, offerID, requestID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrOfferNotFound
			}
			return fmt.Errorf("offer repository: lock offer %w", err)
		}
		if offer.Status != models.OfferStatusPending {
			return ErrOfferNotPending
		}

		if err := tx.GetContext(ctx, &rejected, `UPDATE service_offers SET status = 'REJECTED' WHERE id = $1 RETURNING *`, offerID); err != nil {
			return fmt.Errorf("offer repository: reject %w", err)
		}

		var pending int
		if err := tx.GetContext(ctx, &pending, `SELECT COUNT(*) FROM service_offers WHERE request_id = $1 AND status = 'PENDING'`, requestID); err != nil {
			return fmt.Errorf("offer repository: pending recount %w", err)
		}
		if pending == 0 && req.Status == models.RequestStatusOffered {
			if _, err := tx.ExecContext(ctx, `UPDATE service_requests SET status = 'OPEN', updated_at = NOW() WHERE id = $1`, requestID); err != nil {
				return fmt.Errorf("offer repository: demote to open %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &rejected, nil
}

// ListForRequest возвращает все предложения заявки вместе с данными исполнителей.
// Телефоны отдаются как есть: маскировкой по статусу занимается сервисный слой.
func (r *OfferRepository) ListForRequest(ctx context.Context, requestID uuid.UUID) ([]models.OfferWithProvider, error) {
	query := `
		SELECT so.*, u.name AS provider_name, u.phone AS provider_phone
		FROM service_offers so
		JOIN users u ON so.provider_user_id = u.id
		WHERE so.request_id = $1
		ORDER BY so.created_at ASC
	`
	var rows []models.OfferWithProvider
	if err := r.db.SelectContext(ctx, &rows, query, requestID); err != nil {
		return nil, fmt.Errorf("offer repository: list for request %w", err)
	}
	return rows, nil
}
