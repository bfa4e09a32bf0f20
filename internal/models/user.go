package models

import (
	"time"

	"github.com/google/uuid"
)

// User — минимальный срез пользователя, нужный сервисному ядру:
// контактные карточки, проверка существования исполнителя, имена в списках.
type User struct {
	ID         uuid.UUID `db:"id" json:"id"`
	LocationID uuid.UUID `db:"location_id" json:"location_id"`
	Name       string    `db:"name" json:"name"`
	Phone      *string   `db:"phone" json:"phone,omitempty"`
	Role       string    `db:"role" json:"role"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
