package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/manacity/services-backend/internal/models"
)

// ContactAuditRepository пишет append-only журнал раскрытия контактов.
type ContactAuditRepository struct {
	db *sqlx.DB
}

// NewContactAuditRepository создаёт новый экземпляр.
func NewContactAuditRepository(db *sqlx.DB) *ContactAuditRepository {
	return &ContactAuditRepository{db: db}
}

// Create фиксирует факт просмотра контактной карточки.
// Записывается каждый просмотр, а не только первый.
func (r *ContactAuditRepository) Create(ctx context.Context, a *models.ContactAudit) error {
	query := `
		INSERT INTO service_contact_audit (request_id, location_id, viewer_user_id, viewed_user_id, viewer_role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	if err := r.db.QueryRowxContext(ctx, query, a.RequestID, a.LocationID, a.ViewerUserID, a.ViewedUserID, a.ViewerRole).Scan(&a.ID, &a.CreatedAt); err != nil {
		return fmt.Errorf("contact audit repository: insert %w", err)
	}
	return nil
}
