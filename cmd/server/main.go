package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"it-incidents-backend/internal/adapters/http/middleware"
	"it-incidents-backend/internal/adapters/http/routes"
	"it-incidents-backend/internal/adapters/persistence/models"
	"it-incidents-backend/internal/adapters/persistence/repositories"
	"it-incidents-backend/internal/config"
	"it-incidents-backend/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	_ "it-incidents-backend/docs" // Swagger docs
)

// @title IT Incidents API
// @version 1.0
// @description Account authentication API of the IT incidents backend
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@incidents.example.com

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Connect to database
	db, err := config.ConnectDatabase(cfg, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer config.CloseDatabase(db)

	// Auto migrate (creates tables if not exist)
	if err := models.AutoMigrate(db); err != nil {
		logger.Fatal("failed to auto migrate", zap.Error(err))
	}
	logger.Info("database migration completed")

	// Start Cron Service for refresh token cleanup
	cronService := services.NewCronService(
		repositories.NewRefreshTokenRepository(db),
		cfg.Security.TokenCleanupCronExp,
		logger,
	)
	if err := cronService.Start(); err != nil {
		logger.Fatal("failed to start cron service", zap.Error(err))
	}
	defer cronService.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "IT Incidents API v1.0",
		ErrorHandler: middleware.NewErrorHandler(logger),
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes (pass db and cfg for dependency injection)
	if err := routes.Setup(app, db, cfg, logger); err != nil {
		logger.Fatal("failed to setup routes", zap.Error(err))
	}

	// Graceful shutdown
	go gracefulShutdown(app, logger)

	// Start server
	logger.Info("server starting", zap.String("port", cfg.Port), zap.String("mode", cfg.AppMode))
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Error("server stopped", zap.Error(err))
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	if err := app.Shutdown(); err != nil {
		logger.Error("error during shutdown", zap.Error(err))
	}
	logger.Info("server stopped gracefully")
}
