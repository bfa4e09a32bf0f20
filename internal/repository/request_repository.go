package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/manacity/services-backend/internal/apperr"
	"github.com/manacity/services-backend/internal/models"
	"github.com/manacity/services-backend/internal/pagination"
)

// RequestRepository отвечает за хранение заявок на услуги.
type RequestRepository struct {
	db *sqlx.DB
}

// Ошибки уровня репозитория.
var (
	ErrRequestNotFound = apperr.New(apperr.KindNotFound, "заявка не найдена")
)

// NewRequestRepository создаёт новый экземпляр.
func NewRequestRepository(db *sqlx.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

// Create сохраняет заявку и заполняет генерируемые базой поля.
func (r *RequestRepository) Create(ctx context.Context, req *models.ServiceRequest) error {
	query := `
		INSERT INTO service_requests (location_id, requester_id, category_id, request_text, is_public, status, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx,
		query,
		req.LocationID,
		req.RequesterID,
		req.CategoryID,
		req.RequestText,
		req.IsPublic,
		req.Status,
		req.ExpiresAt,
	).Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt); err != nil {
		return fmt.Errorf("request repository: insert %w", err)
	}

	return nil
}

// GetByID возвращает заявку в рамках локации. Чужая локация неотличима
// от отсутствующей заявки, чтобы не раскрывать существование чужих данных.
func (r *RequestRepository) GetByID(ctx context.Context, locationID, id uuid.UUID) (*models.ServiceRequest, error) {
	var req models.ServiceRequest
	query := `SELECT * FROM service_requests WHERE id = $1 AND location_id = $2`
	if err := r.db.GetContext(ctx, &req, query, id, locationID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("request repository: get by id %w", err)
	}
	return &req, nil
}

// HasRecentActive сообщает, есть ли у заявителя заявка, созданная после
// отметки since (кулдаун создания). Блокируют все статусы кроме отменённых
// и просроченных: завершённая недавно заявка тоже держит кулдаун.
func (r *RequestRepository) HasRecentActive(ctx context.Context, locationID, requesterID uuid.UUID, since time.Time) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1 FROM service_requests
			WHERE requester_id = $1
			  AND location_id = $2
			  AND created_at > $3
			  AND status NOT IN ('CANCELLED_BY_USER', 'CANCELLED_BY_ADMIN', 'EXPIRED')
		)
	`
	if err := r.db.GetContext(ctx, &exists, query, requesterID, locationID, since); err != nil {
		return false, fmt.Errorf("request repository: cooldown check %w", err)
	}
	return exists, nil
}

// TransitionParams описывает условный перевод заявки в новый статус.
// Все ограничения проверяются одним UPDATE: нулевой результат затем
// диагностируется повторным чтением (см. Diagnose в сервисном слое).
type TransitionParams struct {
	RequestID    uuid.UUID
	LocationID   uuid.UUID
	NewStatus    string
	FromStatuses []string
	RequesterID  *uuid.UUID // только владелец
	AssigneeID   *uuid.UUID // только назначенный исполнитель
	SetClosedAt  bool
}

// Transition выполняет условный переход и возвращает число затронутых строк.
func (r *RequestRepository) Transition(ctx context.Context, p TransitionParams) (int64, error) {
	query := `
		UPDATE service_requests
		SET status = $1, updated_at = NOW()`
	if p.SetClosedAt {
		query += `, closed_at = NOW()`
	}
	query += `
		WHERE id = $2 AND location_id = $3 AND status = ANY($4)
	`
	args := []interface{}{p.NewStatus, p.RequestID, p.LocationID, pq.Array(p.FromStatuses)}
	argIndex := 5

	if p.RequesterID != nil {
		query += fmt.Sprintf(" AND requester_id = $%d", argIndex)
		args = append(args, *p.RequesterID)
		argIndex++
	}
	if p.AssigneeID != nil {
		query += fmt.Sprintf(" AND assigned_user_id = $%d", argIndex)
		args = append(args, *p.AssigneeID)
		argIndex++
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("request repository: transition %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("request repository: transition rows affected %w", err)
	}
	return affected, nil
}

// ExpireOverdue переводит просроченные OPEN заявки в EXPIRED одним выражением.
// Заявки с предложениями или назначением чистильщик не трогает.
func (r *RequestRepository) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE service_requests
		SET status = 'EXPIRED', closed_at = $1, updated_at = $1
		WHERE status = 'OPEN' AND expires_at <= $1
	`
	result, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("request repository: expire overdue %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("request repository: expire rows affected %w", err)
	}
	return affected, nil
}

// PublicRequestRow — строка публичной ленты заявок.
type PublicRequestRow struct {
	ID            uuid.UUID `db:"id" json:"id"`
	RequestText   string    `db:"request_text" json:"request_text"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	ExpiresAt     time.Time `db:"expires_at" json:"expires_at"`
	RequesterName string    `db:"requester_name" json:"requester_name"`
}

// ListPublicCursor возвращает страницу публичных OPEN заявок по keyset-курсору.
func (r *RequestRepository) ListPublicCursor(ctx context.Context, locationID uuid.UUID, cursor *pagination.Cursor, limit int) ([]PublicRequestRow, error) {
	query := `
		SELECT sr.id, sr.request_text, sr.created_at, sr.expires_at, u.name AS requester_name
		FROM service_requests sr
		JOIN users u ON sr.requester_id = u.id
		WHERE sr.location_id = $1
		  AND sr.is_public = TRUE
		  AND sr.status IN ('OPEN', 'OFFERED')
		  AND sr.expires_at > NOW()
	`
	args := []interface{}{locationID}
	argIndex := 2

	if cursor != nil {
		query += fmt.Sprintf(" AND (sr.created_at, sr.id) < ($%d::timestamptz, $%d::uuid)", argIndex, argIndex+1)
		args = append(args, cursor.CreatedAt, cursor.ID)
		argIndex += 2
	}

	query += fmt.Sprintf(" ORDER BY sr.created_at DESC, sr.id DESC LIMIT $%d", argIndex)
	args = append(args, limit)

	var rows []PublicRequestRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("request repository: list public %w", err)
	}
	return rows, nil
}

// CountPublic считает публичные OPEN заявки для легаси-пагинации.
func (r *RequestRepository) CountPublic(ctx context.Context, locationID uuid.UUID) (int, error) {
	var total int
	query := `
		SELECT COUNT(*) FROM service_requests
		WHERE location_id = $1
		  AND is_public = TRUE
		  AND status IN ('OPEN', 'OFFERED')
		  AND expires_at > NOW()
	`
	if err := r.db.GetContext(ctx, &total, query, locationID); err != nil {
		return 0, fmt.Errorf("request repository: count public %w", err)
	}
	return total, nil
}

// ListPublicOffset возвращает страницу публичных заявок в легаси-режиме.
func (r *RequestRepository) ListPublicOffset(ctx context.Context, locationID uuid.UUID, limit, offset int) ([]PublicRequestRow, error) {
	query := `
		SELECT sr.id, sr.request_text, sr.created_at, sr.expires_at, u.name AS requester_name
		FROM service_requests sr
		JOIN users u ON sr.requester_id = u.id
		WHERE sr.location_id = $1
		  AND sr.is_public = TRUE
		  AND sr.status IN ('OPEN', 'OFFERED')
		  AND sr.expires_at > NOW()
		ORDER BY sr.created_at DESC, sr.id DESC
		LIMIT $2 OFFSET $3
	`
	var rows []PublicRequestRow
	if err := r.db.SelectContext(ctx, &rows, query, locationID, limit, offset); err != nil {
		return nil, fmt.Errorf("request repository: list public offset %w", err)
	}
	return rows, nil
}

// MyRequestRow — заявка в истории заявителя с категорией, исполнителем
// и маскированным по статусу телефоном.
type MyRequestRow struct {
	models.ServiceRequest
	CategoryName  *string `db:"category_name" json:"category_name,omitempty"`
	ProviderName  *string `db:"provider_name" json:"provider_name,omitempty"`
	ProviderPhone *string `db:"provider_phone" json:"provider_phone,omitempty"`
	OffersCount   int     `db:"offers_count" json:"offers_count"`
}

const myRequestSelect = `
	SELECT sr.*,
	       sc.name AS category_name,
	       p.name AS provider_name,
	       CASE WHEN sr.status IN ('ACCEPTED', 'IN_PROGRESS', 'COMPLETED') THEN p.phone ELSE NULL END AS provider_phone,
	       (SELECT COUNT(*) FROM service_offers so WHERE so.request_id = sr.id) AS offers_count
	FROM service_requests sr
	LEFT JOIN service_categories sc ON sr.category_id = sc.id
	LEFT JOIN users p ON sr.assigned_user_id = p.id
	WHERE sr.location_id = $1 AND sr.requester_id = $2
`

// ListMineCursor возвращает заявки пользователя по keyset-курсору.
func (r *RequestRepository) ListMineCursor(ctx context.Context, locationID, requesterID uuid.UUID, cursor *pagination.Cursor, limit int) ([]MyRequestRow, error) {
	query := myRequestSelect
	args := []interface{}{locationID, requesterID}
	argIndex := 3

	if cursor != nil {
		query += fmt.Sprintf(" AND (sr.created_at, sr.id) < ($%d::timestamptz, $%d::uuid)", argIndex, argIndex+1)
		args = append(args, cursor.CreatedAt, cursor.ID)
		argIndex += 2
	}

	query += fmt.Sprintf(" ORDER BY sr.created_at DESC, sr.id DESC LIMIT $%d", argIndex)
	args = append(args, limit)

	var rows []MyRequestRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("request repository: list mine %w", err)
	}
	return rows, nil
}

// CountMine считает заявки пользователя для легаси-пагинации.
func (r *RequestRepository) CountMine(ctx context.Context, locationID, requesterID uuid.UUID) (int, error) {
	var total int
	query := `SELECT COUNT(*) FROM service_requests WHERE location_id = $1 AND requester_id = $2`
	if err := r.db.GetContext(ctx, &total, query, locationID, requesterID); err != nil {
		return 0, fmt.Errorf("request repository: count mine %w", err)
	}
	return total, nil
}

// ListMineOffset возвращает заявки пользователя в легаси-режиме.
func (r *RequestRepository) ListMineOffset(ctx context.Context, locationID, requesterID uuid.UUID, limit, offset int) ([]MyRequestRow, error) {
	query := myRequestSelect + fmt.Sprintf(" ORDER BY sr.created_at DESC, sr.id DESC LIMIT $%d OFFSET $%d", 3, 4)

	var rows []MyRequestRow
	if err := r.db.SelectContext(ctx, &rows, query, locationID, requesterID, limit, offset); err != nil {
		return nil, fmt.Errorf("request repository: list mine offset %w", err)
	}
	return rows, nil
}

// OpenTypeARow — строка очереди категорийных заявок для администратора.
type OpenTypeARow struct {
	ID             uuid.UUID `db:"id" json:"id"`
	RequestText    string    `db:"request_text" json:"request_text"`
	Status         string    `db:"status" json:"status"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	ExpiresAt      time.Time `db:"expires_at" json:"expires_at"`
	RequesterName  string    `db:"requester_name" json:"requester_name"`
	RequesterPhone *string   `db:"requester_phone" json:"requester_phone"`
	CategoryName   string    `db:"category_name" json:"category_name"`
}

// ListOpenTypeA возвращает открытые категорийные заявки (очередь назначения).
func (r *RequestRepository) ListOpenTypeA(ctx context.Context, locationID uuid.UUID, cursor *pagination.Cursor, limit int) ([]OpenTypeARow, error) {
	query := `
		SELECT sr.id, sr.request_text, sr.status, sr.created_at, sr.expires_at,
		       u.name AS requester_name, u.phone AS requester_phone,
		       sc.name AS category_name
		FROM service_requests sr
		JOIN users u ON sr.requester_id = u.id
		JOIN service_categories sc ON sr.category_id = sc.id
		WHERE sr.location_id = $1
		  AND sr.category_id IS NOT NULL
		  AND sr.status = 'OPEN'
		  AND sr.expires_at > NOW()
	`
	args := []interface{}{locationID}
	argIndex := 2

	if cursor != nil {
		query += fmt.Sprintf(" AND (sr.created_at, sr.id) < ($%d::timestamptz, $%d::uuid)", argIndex, argIndex+1)
		args = append(args, cursor.CreatedAt, cursor.ID)
		argIndex += 2
	}

	query += fmt.Sprintf(" ORDER BY sr.created_at DESC, sr.id DESC LIMIT $%d", argIndex)
	args = append(args, limit)

	var rows []OpenTypeARow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("request repository: list open type a %w", err)
	}
	return rows, nil
}

// DashboardFilter — фильтры административной панели заявок.
type DashboardFilter struct {
	Status   string
	Kind     string // TYPE_A / TYPE_B
	Assigned *bool
	Overdue  bool
	Limit    int
	Offset   int
}

// DashboardRow — агрегированная строка административной панели.
type DashboardRow struct {
	ID             uuid.UUID `db:"id" json:"id"`
	Kind           string    `db:"kind" json:"type"`
	Status         string    `db:"status" json:"status"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	ExpiresAt      time.Time `db:"expires_at" json:"expires_at"`
	CategoryName   *string   `db:"category_name" json:"category_name,omitempty"`
	RequesterName  string    `db:"requester_name" json:"requester_name"`
	RequesterPhone *string   `db:"requester_phone" json:"requester_phone,omitempty"`
	ProviderName   *string   `db:"provider_name" json:"provider_name,omitempty"`
	ProviderPhone  *string   `db:"provider_phone" json:"provider_phone,omitempty"`
	OffersCount    int       `db:"offers_count" json:"offers_count"`
	IsOverdue      bool      `db:"is_overdue" json:"is_overdue"`
}

// dashboardWhere собирает общий WHERE для подсчёта и выборки панели.
func dashboardWhere(locationID uuid.UUID, f DashboardFilter) (string, []interface{}, int) {
	where := `WHERE sr.location_id = $1`
	args := []interface{}{locationID}
	argIndex := 2

	if f.Status != "" {
		where += fmt.Sprintf(" AND sr.status = $%d", argIndex)
		args = append(args, f.Status)
		argIndex++
	}

	switch f.Kind {
	case models.RequestKindTypeA:
		where += " AND sr.category_id IS NOT NULL"
	case models.RequestKindTypeB:
		where += " AND sr.category_id IS NULL"
	}

	if f.Assigned != nil {
		if *f.Assigned {
			where += " AND sr.assigned_user_id IS NOT NULL"
		} else {
			where += " AND sr.assigned_user_id IS NULL"
		}
	}

	if f.Overdue {
		where += ` AND sr.expires_at < NOW() AND sr.status NOT IN ('COMPLETED', 'CANCELLED_BY_USER', 'CANCELLED_BY_ADMIN', 'REJECTED', 'EXPIRED')`
	}

	return where, args, argIndex
}

// CountDashboard считает заявки под фильтрами панели.
func (r *RequestRepository) CountDashboard(ctx context.Context, locationID uuid.UUID, f DashboardFilter) (int, error) {
	where, args, _ := dashboardWhere(locationID, f)
	query := `SELECT COUNT(*) FROM service_requests sr ` + where

	var total int
	if err := r.db.GetContext(ctx, &total, query, args...); err != nil {
		return 0, fmt.Errorf("request repository: count dashboard %w", err)
	}
	return total, nil
}

// ListDashboard возвращает страницу административной панели.
func (r *RequestRepository) ListDashboard(ctx context.Context, locationID uuid.UUID, f DashboardFilter) ([]DashboardRow, error) {
	where, args, argIndex := dashboardWhere(locationID, f)
	query := `
		SELECT sr.id,
		       CASE WHEN sr.category_id IS NOT NULL THEN 'TYPE_A' ELSE 'TYPE_B' END AS kind,
		       sr.status,
		       sr.created_at,
		       sr.expires_at,
		       sc.name AS category_name,
		       u.name AS requester_name,
		       u.phone AS requester_phone,
		       p.name AS provider_name,
		       p.phone AS provider_phone,
		       COUNT(so.id) AS offers_count,
		       (sr.expires_at < NOW() AND sr.status NOT IN ('COMPLETED', 'CANCELLED_BY_USER', 'CANCELLED_BY_ADMIN', 'REJECTED', 'EXPIRED')) AS is_overdue
		FROM service_requests sr
		JOIN users u ON sr.requester_id = u.id
		LEFT JOIN users p ON sr.assigned_user_id = p.id
		LEFT JOIN service_categories sc ON sr.category_id = sc.id
		LEFT JOIN service_offers so ON sr.id = so.request_id
		` + where + `
		GROUP BY sr.id, u.id, p.id, sc.id
		ORDER BY sr.created_at DESC, sr.id DESC
	`
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, f.Limit, f.Offset)

	var rows []DashboardRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("request repository: list dashboard %w", err)
	}
	return rows, nil
}
