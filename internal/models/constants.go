package models

// Статусы заявки на услугу.
const (
	RequestStatusOpen            = "OPEN"
	RequestStatusOffered         = "OFFERED"
	RequestStatusAssigned        = "ASSIGNED"
	RequestStatusAccepted        = "ACCEPTED"
	RequestStatusInProgress      = "IN_PROGRESS"
	RequestStatusCompleted       = "COMPLETED"
	RequestStatusCancelledByUser = "CANCELLED_BY_USER"
	RequestStatusCancelledByAdm  = "CANCELLED_BY_ADMIN"
	RequestStatusRejected        = "REJECTED"
	RequestStatusExpired         = "EXPIRED"
)

// Статусы предложения исполнителя.
const (
	OfferStatusPending  = "PENDING"
	OfferStatusAccepted = "ACCEPTED"
	OfferStatusRejected = "REJECTED"
)

// Типы заявок.
const (
	RequestKindTypeA = "TYPE_A" // категория + назначение администратором
	RequestKindTypeB = "TYPE_B" // свободный текст + публичные предложения
)

// Роли пользователей.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Роли при просмотре контактной карточки.
const (
	ContactViewerRequester = "REQUESTER"
	ContactViewerProvider  = "PROVIDER"
)

// Типы уведомлений, которые порождает сервисное ядро.
const (
	NotificationServiceAssigned  = "SERVICE_ASSIGNED"
	NotificationServiceAccepted  = "SERVICE_ACCEPTED"
	NotificationServiceCompleted = "SERVICE_COMPLETED"
)

// Статусы уведомлений.
const (
	NotificationStatusPending = "PENDING"
	NotificationStatusSent    = "SENT"
	NotificationStatusFailed  = "FAILED"
)

// terminalStatuses — статусы, из которых заявка уже не выходит.
var terminalStatuses = map[string]bool{
	RequestStatusCompleted:       true,
	RequestStatusCancelledByUser: true,
	RequestStatusCancelledByAdm:  true,
	RequestStatusRejected:        true,
	RequestStatusExpired:         true,
}

// IsTerminalStatus сообщает, является ли статус заявки терминальным.
func IsTerminalStatus(status string) bool {
	return terminalStatuses[status]
}

// activeStatuses — статусы, в которых у заявки обязан быть исполнитель.
var activeStatuses = map[string]bool{
	RequestStatusAssigned:   true,
	RequestStatusAccepted:   true,
	RequestStatusInProgress: true,
}

// IsActiveStatus сообщает, находится ли заявка в активной фазе исполнения.
func IsActiveStatus(status string) bool {
	return activeStatuses[status]
}

// contactVisibleStatuses — статусы, в которых раскрываются контакты сторон.
// ASSIGNED сюда намеренно не входит: до подтверждения исполнителем контакты закрыты.
var contactVisibleStatuses = map[string]bool{
	RequestStatusAccepted:   true,
	RequestStatusInProgress: true,
	RequestStatusCompleted:  true,
}

// IsContactVisibleStatus сообщает, открыта ли контактная карточка в данном статусе.
func IsContactVisibleStatus(status string) bool {
	return contactVisibleStatuses[status]
}
