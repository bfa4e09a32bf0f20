package models

import (
	"time"

	"github.com/google/uuid"
)

// ServiceRequest описывает заявку жителя на услугу.
// Заявка типа A привязана к категории и никогда не бывает публичной,
// заявка типа B — свободный текст с опциональной публичной видимостью.
type ServiceRequest struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	LocationID     uuid.UUID  `db:"location_id" json:"location_id"`
	RequesterID    uuid.UUID  `db:"requester_id" json:"requester_id"`
	CategoryID     *uuid.UUID `db:"category_id" json:"category_id,omitempty"`
	RequestText    string     `db:"request_text" json:"request_text"`
	IsPublic       bool       `db:"is_public" json:"is_public"`
	Status         string     `db:"status" json:"status"`
	AssignedUserID *uuid.UUID `db:"assigned_user_id" json:"assigned_user_id,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
	AssignedAt     *time.Time `db:"assigned_at" json:"assigned_at,omitempty"`
	ClosedAt       *time.Time `db:"closed_at" json:"closed_at,omitempty"`
	ExpiresAt      time.Time  `db:"expires_at" json:"expires_at"`
}

// RequestTTL — срок жизни заявки с момента создания.
const RequestTTL = 24 * time.Hour

// NewTypeARequest собирает заявку типа A. Категорийная заявка всегда приватная,
// поэтому другого способа получить сочетание category_id + is_public нет.
func NewTypeARequest(locationID, requesterID, categoryID uuid.UUID, text string, now time.Time) *ServiceRequest {
	return &ServiceRequest{
		LocationID:  locationID,
		RequesterID: requesterID,
		CategoryID:  &categoryID,
		RequestText: text,
		IsPublic:    false,
		Status:      RequestStatusOpen,
		ExpiresAt:   now.Add(RequestTTL),
	}
}

// NewTypeBRequest собирает заявку типа B без категории.
func NewTypeBRequest(locationID, requesterID uuid.UUID, text string, isPublic bool, now time.Time) *ServiceRequest {
	return &ServiceRequest{
		LocationID:  locationID,
		RequesterID: requesterID,
		RequestText: text,
		IsPublic:    isPublic,
		Status:      RequestStatusOpen,
		ExpiresAt:   now.Add(RequestTTL),
	}
}

// Kind возвращает тип заявки, определяемый наличием категории.
func (r *ServiceRequest) Kind() string {
	if r.CategoryID != nil {
		return RequestKindTypeA
	}
	return RequestKindTypeB
}

// IsExpiredAt сообщает, истёк ли дедлайн заявки на момент now.
func (r *ServiceRequest) IsExpiredAt(now time.Time) bool {
	return !r.ExpiresAt.After(now)
}
