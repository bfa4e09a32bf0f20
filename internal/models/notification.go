package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification — журнал переданных во внешнюю доставку уведомлений.
// Ядро только фиксирует факт и отдаёт сообщение провайдеру; успех доставки
// не влияет на переходы состояний.
type Notification struct {
	ID          uuid.UUID `db:"id" json:"id"`
	LocationID  uuid.UUID `db:"location_id" json:"location_id"`
	UserID      uuid.UUID `db:"user_id" json:"user_id"`
	Channel     string    `db:"channel" json:"channel"`
	Type        string    `db:"type" json:"type"`
	Message     string    `db:"message" json:"message"`
	Status      string    `db:"status" json:"status"`
	ProviderRef *string   `db:"provider_ref" json:"provider_ref,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
