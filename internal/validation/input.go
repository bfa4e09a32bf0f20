// Package validation проверяет пользовательский ввод сервисного ядра.
package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Границы длин пользовательского ввода.
const (
	MinRequestTextLength  = 5
	MaxRequestTextLength  = 2000
	MinOfferMessageLength = 5
	MaxOfferMessageLength = 1000
	MinCategoryNameLength = 3
	MaxCategoryNameLength = 100
	MaxDescriptionLength  = 1000
	MaxNoteLength         = 500
)

// Length проверяет длину строки в рунах.
func Length(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s должен быть не менее %d символов", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s должен быть не более %d символов", fieldName, max)
	}
	return nil
}

// RequestText нормализует и проверяет текст заявки.
func RequestText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if err := Length("текст заявки", text, MinRequestTextLength, MaxRequestTextLength); err != nil {
		return "", err
	}
	return text, nil
}

// OfferMessage нормализует и проверяет сообщение предложения.
func OfferMessage(message string) (string, error) {
	message = strings.TrimSpace(message)
	if err := Length("сообщение", message, MinOfferMessageLength, MaxOfferMessageLength); err != nil {
		return "", err
	}
	return message, nil
}

// CategoryName нормализует и проверяет название категории.
func CategoryName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if err := Length("название категории", name, MinCategoryNameLength, MaxCategoryNameLength); err != nil {
		return "", err
	}
	return name, nil
}

// Description проверяет необязательное описание.
func Description(description *string) (*string, error) {
	if description == nil || strings.TrimSpace(*description) == "" {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*description)
	if err := Length("описание", trimmed, 0, MaxDescriptionLength); err != nil {
		return nil, err
	}
	return &trimmed, nil
}

// AssignmentNote проверяет необязательный комментарий к назначению.
func AssignmentNote(note *string) (*string, error) {
	if note == nil || strings.TrimSpace(*note) == "" {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*note)
	if err := Length("комментарий", trimmed, 0, MaxNoteLength); err != nil {
		return nil, err
	}
	return &trimmed, nil
}
