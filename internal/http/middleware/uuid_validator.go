package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UUIDValidator отклоняет запрос до хэндлера, если параметр пути не UUID.
// Так невалидный идентификатор гарантированно даёт 400, а не попадает в SQL.
func UUIDValidator(paramName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := uuid.Parse(c.Param(paramName)); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error": "идентификатор " + paramName + " должен быть валидным UUID",
			})
			return
		}
		c.Next()
	}
}
