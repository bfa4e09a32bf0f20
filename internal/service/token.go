package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Principal — аутентифицированный субъект запроса.
// Локация зашита в токен и не принимается из параметров запроса.
type Principal struct {
	UserID     uuid.UUID
	LocationID uuid.UUID
	Role       string
}

// TokenManager выпускает и проверяет JWT доступа.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager создаёт менеджер токенов.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

// Generate выпускает подписанный токен доступа.
func (m *TokenManager) Generate(userID, locationID uuid.UUID, role string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  userID.String(),
		"loc":  locationID.String(),
		"role": role,
		"iat":  now.Unix(),
		"exp":  now.Add(m.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("token: не удалось подписать: %w", err)
	}
	return signed, nil
}

// Parse проверяет подпись и срок токена и возвращает субъекта.
func (m *TokenManager) Parse(tokenStr string) (*Principal, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("неожиданный метод подписи: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("token: невалидные claims")
	}

	userID, err := uuid.Parse(stringClaim(claims, "sub"))
	if err != nil {
		return nil, fmt.Errorf("token: неверный sub: %w", err)
	}
	locationID, err := uuid.Parse(stringClaim(claims, "loc"))
	if err != nil {
		return nil, fmt.Errorf("token: неверный loc: %w", err)
	}

	return &Principal{
		UserID:     userID,
		LocationID: locationID,
		Role:       stringClaim(claims, "role"),
	}, nil
}

// stringClaim безопасно достаёт строковый claim.
func stringClaim(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
