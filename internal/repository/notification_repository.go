package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/manacity/services-backend/internal/models"
)

// NotificationRepository хранит журнал исходящих уведомлений.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository создаёт новый экземпляр.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create записывает уведомление в статусе PENDING до попытки отправки.
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	query := `
		INSERT INTO notifications (location_id, user_id, channel, type, message, status)
		VALUES ($1, $2, $3, $4, $5, 'PENDING')
		RETURNING id, created_at
	`
	if err := r.db.QueryRowxContext(ctx, query, n.LocationID, n.UserID, n.Channel, n.Type, n.Message).Scan(&n.ID, &n.CreatedAt); err != nil {
		return fmt.Errorf("notification repository: insert %w", err)
	}
	n.Status = models.NotificationStatusPending
	return nil
}

// MarkSent помечает уведомление отправленным и сохраняет ссылку провайдера.
func (r *NotificationRepository) MarkSent(ctx context.Context, id uuid.UUID, providerRef string) error {
	query := `UPDATE notifications SET status = 'SENT', provider_ref = $1 WHERE id = $2`
	if _, err := r.db.ExecContext(ctx, query, providerRef, id); err != nil {
		return fmt.Errorf("notification repository: mark sent %w", err)
	}
	return nil
}

// MarkFailed помечает уведомление неотправленным.
func (r *NotificationRepository) MarkFailed(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE notifications SET status = 'FAILED' WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("notification repository: mark failed %w", err)
	}
	return nil
}
