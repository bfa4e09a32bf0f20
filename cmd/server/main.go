package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/manacity/services-backend/internal/config"
	"github.com/manacity/services-backend/internal/db"
	httpHandlers "github.com/manacity/services-backend/internal/http/handlers"
	httpRouter "github.com/manacity/services-backend/internal/http/router"
	"github.com/manacity/services-backend/internal/logger"
	"github.com/manacity/services-backend/internal/repository"
	"github.com/manacity/services-backend/internal/service"
	"github.com/manacity/services-backend/internal/sweeper"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера.
	logLevel := "info"
	if cfg.Env == "development" {
		logLevel = "debug"
		logger.Init(logLevel)
		logger.SetTextFormatter()
	} else {
		logger.Init(logLevel)
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL)

	// Репозитории.
	userRepo := repository.NewUserRepository(dbConn)
	categoryRepo := repository.NewCategoryRepository(dbConn)
	requestRepo := repository.NewRequestRepository(dbConn)
	offerRepo := repository.NewOfferRepository(dbConn)
	assignmentRepo := repository.NewAssignmentRepository(dbConn)
	contactAuditRepo := repository.NewContactAuditRepository(dbConn)
	notificationRepo := repository.NewNotificationRepository(dbConn)

	// Сервисы.
	notificationService := service.NewNotificationService(notificationRepo, userRepo, &service.LogSMSProvider{Logger: logger.Log}, logger.Log)
	categoryService := service.NewCategoryService(categoryRepo, logger.Log)
	requestService := service.NewRequestService(requestRepo, categoryRepo, notificationService, logger.Log)
	offerService := service.NewOfferService(offerRepo, requestRepo, notificationService, logger.Log)
	adminService := service.NewAdminService(assignmentRepo, requestRepo, userRepo, notificationService, logger.Log)
	contactService := service.NewContactService(requestRepo, userRepo, contactAuditRepo, logger.Log)

	// Чистильщик просроченных заявок.
	expirySweeper := sweeper.New(requestService, logger.Log)
	if err := expirySweeper.Start(cfg.SweeperSpec); err != nil {
		log.Fatalf("main: не удалось запустить чистильщик: %v", err)
	}

	// HTTP хэндлеры.
	healthHandler := httpHandlers.NewHealthHandler(dbConn)
	categoryHandler := httpHandlers.NewCategoryHandler(categoryService)
	requestHandler := httpHandlers.NewRequestHandler(requestService, contactService)
	offerHandler := httpHandlers.NewOfferHandler(offerService)
	adminHandler := httpHandlers.NewAdminHandler(adminService)

	engine := httpRouter.SetupRouter(cfg, healthHandler, categoryHandler, requestHandler, offerHandler, adminHandler, tokenManager)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()

		// Ждём завершения уже запущенных задач чистильщика.
		<-expirySweeper.Stop().Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	log.Printf("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
