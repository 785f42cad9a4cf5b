package handlers

import (
	"context"
	"strconv"

	"it-incidents-backend/internal/core/domain"
	"it-incidents-backend/internal/core/services"
	"it-incidents-backend/internal/pkg/pagination"
	"it-incidents-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AccountService is the account administration use case consumed by AccountHandler
type AccountService interface {
	ListAccounts(ctx context.Context, params pagination.Params) (*pagination.Page[domain.AccountDetail], error)
	GetAccount(ctx context.Context, id uint) (*domain.AccountDetail, error)
	Enable(ctx context.Context, id, adminID uint) (*domain.AccountDetail, error)
	Disable(ctx context.Context, id, adminID uint) (*domain.AccountDetail, error)
	Lock(ctx context.Context, id, adminID uint) (*domain.AccountDetail, error)
	Unlock(ctx context.Context, id, adminID uint) (*domain.AccountDetail, error)
	Approve(ctx context.Context, id, adminID uint) (*domain.AccountDetail, error)
	SoftDelete(ctx context.Context, id, adminID uint, deletedBy string) (*domain.AccountDetail, error)
	ChangePassword(ctx context.Context, accountID uint, input *services.ChangePasswordInput) error
}

// AccountProvisioner creates accounts with an explicit role
type AccountProvisioner interface {
	CreateAccount(ctx context.Context, input *services.CreateAccountInput) (*domain.Account, error)
}

// AccountHandler handles account management endpoints
type AccountHandler struct {
	accountService AccountService
	provisioner    AccountProvisioner
	log            *zap.Logger
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(accountService AccountService, provisioner AccountProvisioner, log *zap.Logger) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		provisioner:    provisioner,
		log:            log,
	}
}

// CreateAccountRequest represents admin account creation body
type CreateAccountRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	Role      string `json:"role"`
	Approved  bool   `json:"approved"`
}

// ListAccounts handles listing all accounts (Admin only)
// @Summary List accounts
// @Description Get a paginated list of all accounts (Admin only)
// @Tags Accounts
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /admin/accounts [get]
func (h *AccountHandler) ListAccounts(c *fiber.Ctx) error {
	result, err := h.accountService.ListAccounts(c.UserContext(), pagination.FromQuery(c))
	if err != nil {
		return handleError(c, h.log, err, "Failed to list accounts")
	}

	return response.Success(c, "Accounts retrieved successfully", result)
}

// GetAccount handles getting an account by ID (Admin only)
// @Summary Get account by ID
// @Tags Accounts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Account ID"
// @Success 200 {object} response.Response{data=domain.AccountDetail}
// @Failure 404 {object} response.ErrorResponse
// @Router /admin/accounts/{id} [get]
func (h *AccountHandler) GetAccount(c *fiber.Ctx) error {
	id, err := accountIDParam(c)
	if err != nil {
		return response.BadRequest(c, "Invalid account ID")
	}

	account, err := h.accountService.GetAccount(c.UserContext(), id)
	if err != nil {
		return handleError(c, h.log, err, "Failed to get account")
	}

	return response.Success(c, "Account retrieved successfully", account)
}

// CreateAccount handles admin account provisioning
// @Summary Create account
// @Description Create an account with an explicit role and approval flag (Admin only)
// @Tags Accounts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateAccountRequest true "Account data"
// @Success 201 {object} response.Response{data=domain.AccountDetail}
// @Failure 400 {object} response.ErrorResponse
// @Router /admin/accounts [post]
func (h *AccountHandler) CreateAccount(c *fiber.Ctx) error {
	var req CreateAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	role := domain.RoleUser
	if req.Role != "" {
		role = domain.Role(req.Role)
	}

	account, err := h.provisioner.CreateAccount(c.UserContext(), &services.CreateAccountInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Role:      role,
		Approved:  req.Approved,
	})
	if err != nil {
		return handleError(c, h.log, err, "Failed to create account")
	}

	return response.Created(c, "Account created successfully", account.Detail())
}

// Enable re-enables an account
// @Summary Enable account
// @Tags Accounts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Account ID"
// @Success 200 {object} response.Response{data=domain.AccountDetail}
// @Router /admin/accounts/{id}/enable [post]
func (h *AccountHandler) Enable(c *fiber.Ctx) error {
	return h.transition(c, "Account enabled", h.accountService.Enable)
}

// Disable disables an account and revokes its sessions
// @Summary Disable account
// @Tags Accounts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Account ID"
// @Success 200 {object} response.Response{data=domain.AccountDetail}
// @Router /admin/accounts/{id}/disable [post]
func (h *AccountHandler) Disable(c *fiber.Ctx) error {
	return h.transition(c, "Account disabled", h.accountService.Disable)
}

// Lock sets the administrative lock
// @Summary Lock account
// @Tags Accounts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Account ID"
// @Success 200 {object} response.Response{data=domain.AccountDetail}
// @Router /admin/accounts/{id}/lock [post]
func (h *AccountHandler) Lock(c *fiber.Ctx) error {
	return h.transition(c, "Account locked", h.accountService.Lock)
}

// Unlock clears every lock on an account
// @Summary Unlock account
// @Tags Accounts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Account ID"
// @Success 200 {object} response.Response{data=domain.AccountDetail}
// @Router /admin/accounts/{id}/unlock [post]
func (h *AccountHandler) Unlock(c *fiber.Ctx) error {
	return h.transition(c, "Account unlocked", h.accountService.Unlock)
}

// Approve approves a pending account
// @Summary Approve account
// @Tags Accounts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Account ID"
// @Success 200 {object} response.Response{data=domain.AccountDetail}
// @Router /admin/accounts/{id}/approve [post]
func (h *AccountHandler) Approve(c *fiber.Ctx) error {
	return h.transition(c, "Account approved", h.accountService.Approve)
}

// Delete soft deletes an account
// @Summary Delete account
// @Tags Accounts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Account ID"
// @Success 200 {object} response.Response{data=domain.AccountDetail}
// @Failure 400 {object} response.ErrorResponse
// @Router /admin/accounts/{id} [delete]
func (h *AccountHandler) Delete(c *fiber.Ctx) error {
	username, _ := c.Locals("username").(string)
	return h.transition(c, "Account deleted", func(ctx context.Context, id, adminID uint) (*domain.AccountDetail, error) {
		return h.accountService.SoftDelete(ctx, id, adminID, username)
	})
}

// ChangePassword changes the password of the signed-in account
// @Summary Change password
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.ChangePasswordInput true "Current and new password"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Router /auth/change-password [post]
func (h *AccountHandler) ChangePassword(c *fiber.Ctx) error {
	accountID, ok := c.Locals("accountID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req services.ChangePasswordInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return response.BadRequest(c, "Current and new password are required")
	}

	if err := h.accountService.ChangePassword(c.UserContext(), accountID, &req); err != nil {
		return handleError(c, h.log, err, "Failed to change password")
	}

	return response.Success(c, "Password changed successfully", nil)
}

func (h *AccountHandler) transition(
	c *fiber.Ctx,
	message string,
	apply func(ctx context.Context, id, adminID uint) (*domain.AccountDetail, error),
) error {
	id, err := accountIDParam(c)
	if err != nil {
		return response.BadRequest(c, "Invalid account ID")
	}
	adminID, ok := c.Locals("accountID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	account, err := apply(c.UserContext(), id, adminID)
	if err != nil {
		return handleError(c, h.log, err, "Failed to update account")
	}

	return response.Success(c, message, account)
}

func accountIDParam(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
