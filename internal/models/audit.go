package models

import (
	"time"

	"github.com/google/uuid"
)

// MaxAssignmentsPerRequest — жёсткий потолок назначений по одной заявке.
const MaxAssignmentsPerRequest = 3

// AssignmentHistory — запись append-only журнала назначений администратора.
type AssignmentHistory struct {
	ID                uuid.UUID  `db:"id" json:"id"`
	RequestID         uuid.UUID  `db:"request_id" json:"request_id"`
	LocationID        uuid.UUID  `db:"location_id" json:"location_id"`
	AssignedByAdminID uuid.UUID  `db:"assigned_by_admin_id" json:"assigned_by_admin_id"`
	OldProviderUserID *uuid.UUID `db:"old_provider_user_id" json:"old_provider_user_id,omitempty"`
	NewProviderUserID uuid.UUID  `db:"new_provider_user_id" json:"new_provider_user_id"`
	Note              *string    `db:"note" json:"note,omitempty"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
}

// AssignmentHistoryEntry — строка журнала с именами участников для выдачи администратору.
type AssignmentHistoryEntry struct {
	ID              uuid.UUID `db:"id" json:"id"`
	AdminName       string    `db:"admin_name" json:"admin_name"`
	OldProviderName *string   `db:"old_provider_name" json:"old_provider_name,omitempty"`
	NewProviderName string    `db:"new_provider_name" json:"new_provider_name"`
	Note            *string   `db:"note" json:"note,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// ContactAudit — запись append-only журнала раскрытия контактов.
// Пишется при каждом успешном просмотре, а не только при первом.
type ContactAudit struct {
	ID           uuid.UUID `db:"id" json:"id"`
	RequestID    uuid.UUID `db:"request_id" json:"request_id"`
	LocationID   uuid.UUID `db:"location_id" json:"location_id"`
	ViewerUserID uuid.UUID `db:"viewer_user_id" json:"viewer_user_id"`
	ViewedUserID uuid.UUID `db:"viewed_user_id" json:"viewed_user_id"`
	ViewerRole   string    `db:"viewer_role" json:"viewer_role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
