package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/manacity/services-backend/internal/apperr"
	"github.com/manacity/services-backend/internal/models"
	"github.com/manacity/services-backend/internal/repository/common"
)

// AssignmentRepository отвечает за административные назначения исполнителей
// и append-only журнал переназначений.
type AssignmentRepository struct {
	db *sqlx.DB
}

// Ошибки назначения.
var (
	ErrAssignmentLimit     = apperr.WithCode(apperr.KindConflict, "MAX_ASSIGNMENTS_REACHED", "исчерпан лимит переназначений по заявке")
	ErrNotAssignable       = apperr.New(apperr.KindConflict, "заявка в текущем статусе не допускает назначение")
	ErrSameProvider        = apperr.New(apperr.KindConflict, "этот исполнитель уже назначен на заявку")
	ErrProviderIsRequester = apperr.New(apperr.KindValidation, "нельзя назначить заявителя исполнителем его же заявки")
)

// NewAssignmentRepository создаёт новый экземпляр.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// AssignParams описывает административное назначение исполнителя.
type AssignParams struct {
	LocationID uuid.UUID
	RequestID  uuid.UUID
	AdminID    uuid.UUID
	ProviderID uuid.UUID
	Note       *string
}

// Assign назначает (или переназначает) исполнителя одной транзакцией:
// блокировка заявки, проверка потолка журнала, перевод в ASSIGNED и запись
// в журнал со старым и новым исполнителем.
func (r *AssignmentRepository) Assign(ctx context.Context, p AssignParams) (*models.ServiceRequest, *uuid.UUID, error) {
	var (
		updated     models.ServiceRequest
		oldProvider *uuid.UUID
	)

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		req, err := lockRequest(ctx, tx, p.LocationID, p.RequestID)
		if err != nil {
			return err
		}
		if req.RequesterID == p.ProviderID {
			return ErrProviderIsRequester
		}
		if req.Status != models.RequestStatusOpen && req.Status != models.RequestStatusAssigned {
			return ErrNotAssignable
		}
		if req.AssignedUserID != nil && *req.AssignedUserID == p.ProviderID {
			return ErrSameProvider
		}

		var expired bool
		if err := tx.GetContext(ctx, &expired, `SELECT expires_at <= NOW() FROM service_requests WHERE id = $1`, p.RequestID); err != nil {
			return fmt.Errorf("assignment repository: expiry check %w", err)
		}
		if expired {
			return ErrRequestExpired
		}

		var assignments int
		countQuery := `SELECT COUNT(*) FROM service_assignment_history WHERE request_id = $1`
		if err := tx.GetContext(ctx, &assignments, countQuery, p.RequestID); err != nil {
			return fmt.Errorf("assignment repository: history count %w", err)
		}
		if assignments >= models.MaxAssignmentsPerRequest {
			return ErrAssignmentLimit
		}

		oldProvider = req.AssignedUserID

		assignQuery := `
			UPDATE service_requests
			SET status = 'ASSIGNED', assigned_user_id = $1, assigned_at = NOW(), updated_at = NOW()
			WHERE id = $2
			RETURNING *
		`
		if err := tx.GetContext(ctx, &updated, assignQuery, p.ProviderID, p.RequestID); err != nil {
			return fmt.Errorf("assignment repository: assign %w", err)
		}

		historyQuery := `
			INSERT INTO service_assignment_history (request_id, location_id, assigned_by_admin_id, old_provider_user_id, new_provider_user_id, note)
			VALUES ($1, $2, $3, $4, $5, $6)
		`
		if _, err := tx.ExecContext(ctx, historyQuery, p.RequestID, p.LocationID, p.AdminID, oldProvider, p.ProviderID, p.Note); err != nil {
			return fmt.Errorf("assignment repository: history insert %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return &updated, oldProvider, nil
}

// History возвращает журнал назначений заявки с именами участников,
// от новых записей к старым.
func (r *AssignmentRepository) History(ctx context.Context, locationID, requestID uuid.UUID) ([]models.AssignmentHistoryEntry, error) {
	query := `
		SELECT h.id,
		       a.name AS admin_name,
		       op.name AS old_provider_name,
		       np.name AS new_provider_name,
		       h.note,
		       h.created_at
		FROM service_assignment_history h
		JOIN users a ON h.assigned_by_admin_id = a.id
		LEFT JOIN users op ON h.old_provider_user_id = op.id
		JOIN users np ON h.new_provider_user_id = np.id
		WHERE h.request_id = $1 AND h.location_id = $2
		ORDER BY h.created_at DESC
	`
	var rows []models.AssignmentHistoryEntry
	if err := r.db.SelectContext(ctx, &rows, query, requestID, locationID); err != nil {
		return nil, fmt.Errorf("assignment repository: history %w", err)
	}
	return rows, nil
}
