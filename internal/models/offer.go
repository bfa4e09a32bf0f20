package models

import (
	"time"

	"github.com/google/uuid"
)

// ServiceOffer представляет предложение исполнителя по публичной заявке.
type ServiceOffer struct {
	ID             uuid.UUID `db:"id" json:"id"`
	RequestID      uuid.UUID `db:"request_id" json:"request_id"`
	ProviderUserID uuid.UUID `db:"provider_user_id" json:"provider_user_id"`
	Message        string    `db:"message" json:"message"`
	Status         string    `db:"status" json:"status"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// Лимиты протокола предложений.
const (
	// MaxPendingOffersPerRequest — потолок одновременно ожидающих предложений на заявку.
	MaxPendingOffersPerRequest = 3
	// MaxOffersPerProviderPerHour — квота предложений исполнителя за скользящий час.
	MaxOffersPerProviderPerHour = 5
)

// OfferWithProvider — предложение вместе с данными исполнителя для выдачи владельцу заявки.
// Телефон заполняется только для назначенного исполнителя в открытых для контактов статусах.
type OfferWithProvider struct {
	ServiceOffer
	ProviderName  string  `db:"provider_name" json:"provider_name"`
	ProviderPhone *string `db:"provider_phone" json:"provider_phone"`
}
