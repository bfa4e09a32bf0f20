package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// Транспортные дефолты на случай пустой конфигурации.
const (
	defaultRateLimit  = 10
	defaultRatePeriod = time.Minute
)

// RateLimitMiddleware ограничивает число запросов с одного IP.
// Это транспортный предохранитель; доменные квоты (кулдаун создания,
// почасовой лимит предложений) живут в сервисном слое и считаются по базе.
func RateLimitMiddleware(limit int64, period time.Duration) gin.HandlerFunc {
	if limit <= 0 {
		limit = defaultRateLimit
	}
	if period <= 0 {
		period = defaultRatePeriod
	}

	instance := limiter.New(memory.NewStore(), limiter.Rate{
		Period: period,
		Limit:  limit,
	})

	return func(c *gin.Context) {
		lctx, err := instance.Get(c, c.ClientIP())
		if err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(lctx.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(lctx.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(lctx.Reset, 10))

		if lctx.Reached {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "слишком много запросов, попробуйте позже",
				"code":  "RATE_LIMITED",
			})
			return
		}

		c.Next()
	}
}
