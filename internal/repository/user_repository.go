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

// UserRepository отвечает за чтение пользователей.
// Управление аккаунтами живёт в другом сервисе, здесь только выборки.
type UserRepository struct {
	db *sqlx.DB
}

// ErrUserNotFound возвращается, когда пользователь не существует.
var ErrUserNotFound = apperr.New(apperr.KindNotFound, "пользователь не найден")

// NewUserRepository создаёт новый экземпляр.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByID возвращает пользователя по идентификатору.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return common.GetByField[models.User](ctx, r.db, "users", "id", id, ErrUserNotFound)
}

// GetInLocation возвращает пользователя, если он принадлежит локации.
func (r *UserRepository) GetInLocation(ctx context.Context, locationID, id uuid.UUID) (*models.User, error) {
	u, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.LocationID != locationID {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// Exists проверяет существование пользователя в локации.
func (r *UserRepository) Exists(ctx context.Context, locationID, id uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1 AND location_id = $2)`
	if err := r.db.GetContext(ctx, &exists, query, id, locationID); err != nil {
		return false, fmt.Errorf("user repository: exists %w", err)
	}
	return exists, nil
}
