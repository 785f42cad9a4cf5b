package handlers

import (
	"it-incidents-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// handleError writes a domain failure with its own status and code. Anything
// else is logged and hidden behind a generic 500.
func handleError(c *fiber.Ctx, log *zap.Logger, err error, fallback string) error {
	if handled, writeErr := response.AuthError(c, err); handled {
		return writeErr
	}

	log.Error(fallback,
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return response.InternalServerError(c, "Internal server error")
}
