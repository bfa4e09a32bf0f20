// Package router собирает HTTP маршруты сервиса.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/manacity/services-backend/internal/config"
	"github.com/manacity/services-backend/internal/http/handlers"
	"github.com/manacity/services-backend/internal/http/middleware"
	"github.com/manacity/services-backend/internal/service"
)

// SetupRouter регистрирует все маршруты и middleware.
func SetupRouter(
	cfg *config.Config,
	healthHandler *handlers.HealthHandler,
	categoryHandler *handlers.CategoryHandler,
	requestHandler *handlers.RequestHandler,
	offerHandler *handlers.OfferHandler,
	adminHandler *handlers.AdminHandler,
	tokenManager *service.TokenManager,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)

	api := r.Group("/api")
	api.Use(middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod))

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	{
		protected.GET("/categories", categoryHandler.List)

		protected.POST("/requests/type-a", requestHandler.CreateTypeA)
		protected.POST("/requests/type-b", requestHandler.CreateTypeB)
		protected.GET("/requests/public", requestHandler.PublicFeed)
		protected.GET("/requests/my", requestHandler.ListMine)
		protected.GET("/requests/:id", middleware.UUIDValidator("id"), requestHandler.Get)
		protected.POST("/requests/:id/accept", middleware.UUIDValidator("id"), requestHandler.AcceptWork)
		protected.POST("/requests/:id/start", middleware.UUIDValidator("id"), requestHandler.StartWork)
		protected.POST("/requests/:id/complete", middleware.UUIDValidator("id"), requestHandler.CompleteWork)
		protected.POST("/requests/:id/cancel", middleware.UUIDValidator("id"), requestHandler.Cancel)
		protected.GET("/requests/:id/contact", middleware.UUIDValidator("id"), requestHandler.ContactCard)

		protected.GET("/requests/:id/offers", middleware.UUIDValidator("id"), offerHandler.List)
		protected.POST("/requests/:id/offers", middleware.UUIDValidator("id"), offerHandler.Create)
		protected.POST("/requests/:id/offers/:offerId/accept", middleware.UUIDValidator("id"), middleware.UUIDValidator("offerId"), offerHandler.Accept)
		protected.POST("/requests/:id/offers/:offerId/reject", middleware.UUIDValidator("id"), middleware.UUIDValidator("offerId"), offerHandler.Reject)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(tokenManager), middleware.RequireAdmin())
	{
		admin.POST("/categories", categoryHandler.Create)
		admin.PATCH("/categories/:id/active", middleware.UUIDValidator("id"), categoryHandler.SetActive)

		admin.GET("/queue", adminHandler.Queue)
		admin.GET("/dashboard", adminHandler.Dashboard)
		admin.POST("/requests/:id/assign", middleware.UUIDValidator("id"), adminHandler.Assign)
		admin.GET("/requests/:id/history", middleware.UUIDValidator("id"), adminHandler.History)
		admin.POST("/requests/:id/cancel", middleware.UUIDValidator("id"), adminHandler.Cancel)
	}

	return r
}
