package middleware

import (
	"context"
	"strings"

	"it-incidents-backend/internal/core/domain"
	"it-incidents-backend/internal/pkg/jwt"
	"it-incidents-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AccessGuard verifies access tokens and the live status of their account
type AccessGuard interface {
	ParseAccessToken(accessToken string) (*jwt.Claims, error)
	CheckAccess(ctx context.Context, accountID uint) (domain.AccessStatus, error)
}

// AuthMiddleware creates authentication middleware. Besides the token it
// re-checks the account on every request, so disable and lock apply immediately.
func AuthMiddleware(guard AccessGuard, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// 1. Token from Authorization header, falling back to cookie
		accessToken := bearerToken(c)
		if accessToken == "" {
			accessToken = c.Cookies("access_token")
		}

		if accessToken == "" {
			return response.Unauthorized(c, "Access token required")
		}

		// 2. Signature, structure, expiry and kind
		claims, err := guard.ParseAccessToken(accessToken)
		if err != nil {
			return response.Unauthorized(c, "Invalid or expired access token")
		}

		// 3. Live account status
		status, err := guard.CheckAccess(c.UserContext(), claims.AccountID)
		if err != nil {
			log.Error("check account access", zap.Uint("account_id", claims.AccountID), zap.Error(err))
			return response.InternalServerError(c, "Internal server error")
		}
		if status != domain.AccessGranted {
			log.Info("request rejected by account status",
				zap.Uint("account_id", claims.AccountID),
				zap.String("status", string(status)),
			)
			return response.Denied(c, status)
		}

		// 4. Set account info in context
		c.Locals("accountID", claims.AccountID)
		c.Locals("username", claims.Subject)
		c.Locals("role", claims.Role)

		return c.Next()
	}
}

func bearerToken(c *fiber.Ctx) string {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return ""
}

// RoleMiddleware creates role-based authorization middleware
func RoleMiddleware(allowedRoles ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals("role").(string)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}

		for _, allowedRole := range allowedRoles {
			if domain.Role(role) == allowedRole {
				return c.Next()
			}
		}

		return response.Forbidden(c, "You don't have permission to access this resource")
	}
}

// AdminOnly middleware allows only ADMIN role
func AdminOnly() fiber.Handler {
	return RoleMiddleware(domain.RoleAdmin)
}
