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

// CategoryRepository отвечает за справочник категорий услуг.
// Категории никогда не удаляются физически, только деактивируются.
type CategoryRepository struct {
	db *sqlx.DB
}

// Ошибки справочника категорий.
var (
	ErrCategoryNotFound  = apperr.New(apperr.KindNotFound, "категория не найдена")
	ErrCategoryDuplicate = apperr.New(apperr.KindConflict, "категория с таким названием уже существует")
)

// NewCategoryRepository создаёт новый экземпляр.
func NewCategoryRepository(db *sqlx.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Create сохраняет новую категорию в рамках локации.
func (r *CategoryRepository) Create(ctx context.Context, c *models.ServiceCategory) error {
	query := `
		INSERT INTO service_categories (location_id, name, description)
		VALUES ($1, $2, $3)
		RETURNING id, is_active, created_at
	`
	if err := r.db.QueryRowxContext(ctx, query, c.LocationID, c.Name, c.Description).Scan(&c.ID, &c.IsActive, &c.CreatedAt); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrCategoryDuplicate
		}
		return fmt.Errorf("category repository: insert %w", err)
	}
	return nil
}

// GetByID возвращает категорию в рамках локации.
func (r *CategoryRepository) GetByID(ctx context.Context, locationID, id uuid.UUID) (*models.ServiceCategory, error) {
	c, err := common.GetByField[models.ServiceCategory](ctx, r.db, "service_categories", "id", id, ErrCategoryNotFound)
	if err != nil {
		return nil, err
	}
	if c.LocationID != locationID {
		return nil, ErrCategoryNotFound
	}
	return c, nil
}

// List возвращает категории локации; activeOnly скрывает деактивированные.
func (r *CategoryRepository) List(ctx context.Context, locationID uuid.UUID, activeOnly bool) ([]models.ServiceCategory, error) {
	query := `SELECT * FROM service_categories WHERE location_id = $1`
	if activeOnly {
		query += ` AND is_active = TRUE`
	}
	query += ` ORDER BY name ASC`

	var categories []models.ServiceCategory
	if err := r.db.SelectContext(ctx, &categories, query, locationID); err != nil {
		return nil, fmt.Errorf("category repository: list %w", err)
	}
	return categories, nil
}

// SetActive включает или выключает категорию.
func (r *CategoryRepository) SetActive(ctx context.Context, locationID, id uuid.UUID, active bool) (*models.ServiceCategory, error) {
	var c models.ServiceCategory
	query := `
		UPDATE service_categories
		SET is_active = $1
		WHERE id = $2 AND location_id = $3
		RETURNING *
	`
	if err := r.db.GetContext(ctx, &c, query, active, id, locationID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("category repository: set active %w", err)
	}
	return &c, nil
}
