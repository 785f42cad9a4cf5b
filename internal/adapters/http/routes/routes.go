package routes

import (
	"fmt"

	"it-incidents-backend/internal/adapters/http/handlers"
	"it-incidents-backend/internal/adapters/http/middleware"
	"it-incidents-backend/internal/adapters/persistence/repositories"
	"it-incidents-backend/internal/config"
	"it-incidents-backend/internal/core/services"
	"it-incidents-backend/internal/pkg/jwt"
	"it-incidents-backend/internal/pkg/metrics"
	"it-incidents-backend/internal/pkg/password"
	"it-incidents-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Handlers groups the HTTP handlers mounted by Register
type Handlers struct {
	Health  *handlers.HealthHandler
	Auth    *handlers.AuthHandler
	Account *handlers.AccountHandler
}

// Setup wires repositories, services and handlers and registers all routes
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config, log *zap.Logger) error {
	// Initialize repositories
	accountRepo := repositories.NewAccountRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)

	// Initialize security primitives
	issuer, err := jwt.NewIssuer(cfg.IssuerConfig())
	if err != nil {
		return fmt.Errorf("create token issuer: %w", err)
	}
	hasher := password.NewHasher(cfg.Security.BcryptCost)
	policy := cfg.SecurityPolicy()

	// Initialize services
	attemptService := services.NewLoginAttemptService(accountRepo, policy, log)
	authService := services.NewAuthService(accountRepo, refreshTokenRepo, attemptService, hasher, issuer, policy, log)
	accountService := services.NewAccountService(accountRepo, refreshTokenRepo, hasher, log)

	// Initialize handlers
	h := Handlers{
		Health:  handlers.NewHealthHandler(cfg.AppMode, func() error { return config.HealthCheck(db) }),
		Auth:    handlers.NewAuthHandler(authService, cfg, log),
		Account: handlers.NewAccountHandler(accountService, authService, log),
	}

	Register(app, h, middleware.AuthMiddleware(authService, log))
	return nil
}

// Register mounts every route. auth guards the authenticated groups.
func Register(app *fiber.App, h Handlers, auth fiber.Handler) {
	// ============================================================
	// Public routes
	// ============================================================
	app.Get("/", h.Health.Root)
	app.Get("/health", h.Health.HealthCheck)
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
	app.Get("/swagger/*", swagger.HandlerDefault)

	api := app.Group("/api/v1")

	// ============================================================
	// Auth routes
	// ============================================================
	authGroup := api.Group("/auth", middleware.NoStore())
	authGroup.Post("/login", middleware.AuthRateLimiter(), h.Auth.Login)
	authGroup.Post("/signup", middleware.AuthRateLimiter(), h.Auth.SignUp)
	authGroup.Post("/refresh", middleware.AuthRateLimiter(), h.Auth.RefreshToken)
	authGroup.Post("/change-expired-password", middleware.StrictRateLimiter(), h.Auth.ChangeExpiredPassword)
	authGroup.Post("/logout", h.Auth.Logout)

	// Protected auth routes
	authGroup.Post("/logout-all", auth, h.Auth.LogoutAll)
	authGroup.Get("/me", auth, h.Auth.Me)
	authGroup.Post("/change-password", auth, middleware.StrictRateLimiter(), h.Account.ChangePassword)

	// ============================================================
	// Admin routes
	// ============================================================
	admin := api.Group("/admin", auth, middleware.AdminOnly())
	admin.Get("/accounts", h.Account.ListAccounts)
	admin.Post("/accounts", h.Account.CreateAccount)
	admin.Get("/accounts/:id", h.Account.GetAccount)
	admin.Delete("/accounts/:id", h.Account.Delete)
	admin.Post("/accounts/:id/enable", h.Account.Enable)
	admin.Post("/accounts/:id/disable", h.Account.Disable)
	admin.Post("/accounts/:id/lock", h.Account.Lock)
	admin.Post("/accounts/:id/unlock", h.Account.Unlock)
	admin.Post("/accounts/:id/approve", h.Account.Approve)

	app.Use(func(c *fiber.Ctx) error {
		return response.NotFound(c, "Route not found")
	})
}
