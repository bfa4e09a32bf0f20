package models

import (
	"time"

	"github.com/google/uuid"
)

// ServiceCategory — категория услуг в рамках локации.
// На категорию ссылаются исторические заявки, поэтому она никогда не удаляется,
// а только выключается флагом is_active.
type ServiceCategory struct {
	ID          uuid.UUID `db:"id" json:"id"`
	LocationID  uuid.UUID `db:"location_id" json:"location_id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
