// Package pagination реализует keyset-пагинацию по паре (created_at DESC, id DESC)
// и сохраняет легаси-режим page/limit/total для старых клиентов.
package pagination

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Ограничения размера страницы.
const (
	DefaultLimit = 20
	MaxLimit     = 50
)

// Cursor — непрозрачная для клиента пара (created_at, id) последней выданной строки.
type Cursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

// ClampLimit приводит limit к диапазону [1, MaxLimit]; нули и мусор — к дефолту.
func ClampLimit(limit int) int {
	if limit < 1 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// ParseCursor разбирает курсор формата "<RFC3339-время>|<uuid>".
// Пустая строка означает отсутствие курсора.
func ParseCursor(raw string) (*Cursor, error) {
	if raw == "" {
		return nil, nil
	}

	parts := strings.SplitN(raw, "|", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("pagination: курсор должен иметь формат <время>|<id>")
	}

	createdAt, err := time.Parse(time.RFC3339Nano, parts[0])
	if err != nil {
		return nil, fmt.Errorf("pagination: неверное время в курсоре: %w", err)
	}

	id, err := uuid.Parse(parts[1])
	if err != nil {
		return nil, fmt.Errorf("pagination: неверный id в курсоре: %w", err)
	}

	return &Cursor{CreatedAt: createdAt, ID: id}, nil
}

// Encode сериализует курсор в строку для клиента.
func (c Cursor) Encode() string {
	return c.CreatedAt.UTC().Format(time.RFC3339Nano) + "|" + c.ID.String()
}

// NextCursor строит курсор следующей страницы по последней выданной строке.
// Возвращает пустую строку, если строк меньше лимита: это единственный надёжный
// признак конца данных, полная страница означает лишь «возможно, есть ещё».
func NextCursor(rowCount, limit int, lastCreatedAt time.Time, lastID uuid.UUID) string {
	if rowCount == 0 || rowCount < limit {
		return ""
	}
	return Cursor{CreatedAt: lastCreatedAt, ID: lastID}.Encode()
}

// Legacy — параметры и метаданные офсетной пагинации старого контракта.
type Legacy struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// LegacyParams нормализует page/limit легаси-режима.
func LegacyParams(page, limit int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	limit = ClampLimit(limit)
	offset := (page - 1) * limit
	return page, limit, offset
}

// HasMore сообщает, остались ли строки за пределами текущей страницы.
func HasMore(offset, returned, total int) bool {
	return offset+returned < total
}

// Page — страница выдачи в одном из двух режимов: keyset (NextCursor)
// или легаси (Legacy + HasMore).
type Page[T any] struct {
	Items      []T     `json:"items"`
	NextCursor string  `json:"next_cursor,omitempty"`
	Legacy     *Legacy `json:"pagination,omitempty"`
	HasMore    bool    `json:"has_more"`
}
