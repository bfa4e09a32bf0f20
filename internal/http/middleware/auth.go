package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/manacity/services-backend/internal/models"
	"github.com/manacity/services-backend/internal/service"
)

// ContextPrincipalKey — ключ субъекта запроса в gin.Context.
const ContextPrincipalKey = "principal"

// AuthMiddleware проверяет JWT access токен и кладёт субъекта в контекст.
// Локация берётся только из токена, никогда из параметров запроса.
func AuthMiddleware(tokens *service.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "требуется авторизация"})
			return
		}

		raw := strings.TrimPrefix(auth, "Bearer ")
		principal, err := tokens.Parse(raw)
		if err != nil || principal.UserID == uuid.Nil || principal.LocationID == uuid.Nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "токен невалиден"})
			return
		}

		c.Set(ContextPrincipalKey, *principal)
		c.Next()
	}
}

// RequireAdmin пускает дальше только администраторов.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, exists := c.Get(ContextPrincipalKey)
		principal, ok := raw.(service.Principal)
		if !exists || !ok || principal.Role != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "требуются права администратора"})
			return
		}
		c.Next()
	}
}
