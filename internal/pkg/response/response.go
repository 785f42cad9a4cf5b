package response

import (
	"errors"

	"it-incidents-backend/internal/core/domain"

	"github.com/gofiber/fiber/v2"
)

// Response represents a standard API response
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ErrorResponse is the body of a domain failure
type ErrorResponse struct {
	Success          bool   `json:"success"`
	Error            string `json:"error"`
	Code             string `json:"code"`
	RemainingMinutes int    `json:"remainingMinutes,omitempty"`
	AccountID        uint   `json:"accountId,omitempty"`
}

// AccessDenied is the body returned when a live account status check fails
type AccessDenied struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Success sends a success response
func Success(c *fiber.Ctx, message string, data interface{}) error {
	return c.JSON(Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Created sends a 201 created response
func Created(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Error sends an error response
func Error(c *fiber.Ctx, statusCode int, message string) error {
	return c.Status(statusCode).JSON(Response{
		Success: false,
		Error:   message,
	})
}

// AuthError sends a domain failure with its status, kind and extra fields.
// It reports false when err is not a *domain.AuthError.
func AuthError(c *fiber.Ctx, err error) (bool, error) {
	var authErr *domain.AuthError
	if !errors.As(err, &authErr) {
		return false, nil
	}
	return true, c.Status(authErr.Status).JSON(ErrorResponse{
		Success:          false,
		Error:            authErr.Message,
		Code:             string(authErr.Kind),
		RemainingMinutes: authErr.RemainingMinutes,
		AccountID:        authErr.AccountID,
	})
}

// Denied sends a 403 with the account status code
func Denied(c *fiber.Ctx, status domain.AccessStatus) error {
	return c.Status(fiber.StatusForbidden).JSON(AccessDenied{
		Error:   string(status),
		Message: status.Message(),
	})
}

// BadRequest sends a 400 bad request response
func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, message)
}

// Unauthorized sends a 401 unauthorized response
func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusUnauthorized, message)
}

// Forbidden sends a 403 forbidden response
func Forbidden(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusForbidden, message)
}

// NotFound sends a 404 not found response
func NotFound(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusNotFound, message)
}

// TooManyRequests sends a 429 response
func TooManyRequests(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusTooManyRequests, message)
}

// InternalServerError sends a 500 internal server error response
func InternalServerError(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusInternalServerError, message)
}
