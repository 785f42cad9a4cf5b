package main

import (
	"context"
	"log"
	"time"

	"it-incidents-backend/internal/adapters/persistence/models"
	"it-incidents-backend/internal/adapters/persistence/repositories"
	"it-incidents-backend/internal/config"
	"it-incidents-backend/internal/core/services"
	"it-incidents-backend/internal/pkg/jwt"
	"it-incidents-backend/internal/pkg/password"

	"go.uber.org/zap"
)

// Seeds the admin and user accounts named by the SEED_* variables.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	db, err := config.ConnectDatabase(cfg, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer config.CloseDatabase(db)

	if err := models.AutoMigrate(db); err != nil {
		logger.Fatal("failed to auto migrate", zap.Error(err))
	}

	issuer, err := jwt.NewIssuer(cfg.IssuerConfig())
	if err != nil {
		logger.Fatal("failed to create token issuer", zap.Error(err))
	}

	accountRepo := repositories.NewAccountRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	policy := cfg.SecurityPolicy()
	authService := services.NewAuthService(
		accountRepo,
		refreshTokenRepo,
		services.NewLoginAttemptService(accountRepo, policy, logger),
		password.NewHasher(cfg.Security.BcryptCost),
		issuer,
		policy,
		logger,
	)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := config.NewSeeder(accountRepo, authService, logger).Run(ctx, config.SeedAccountsFromEnv()); err != nil {
		logger.Fatal("seeding failed", zap.Error(err))
	}
}
