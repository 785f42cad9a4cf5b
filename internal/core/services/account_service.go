package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"it-incidents-backend/internal/adapters/persistence/repositories"
	"it-incidents-backend/internal/core/domain"
	"it-incidents-backend/internal/pkg/pagination"
	"it-incidents-backend/internal/pkg/password"

	"go.uber.org/zap"
)

// AccountService handles account administration
type AccountService struct {
	accounts      repositories.AccountRepository
	refreshTokens repositories.RefreshTokenRepository
	hasher        PasswordHasher
	logger        *zap.Logger
	now           func() time.Time
}

// NewAccountService creates a new account service
func NewAccountService(
	accounts repositories.AccountRepository,
	refreshTokens repositories.RefreshTokenRepository,
	hasher PasswordHasher,
	logger *zap.Logger,
	opts ...Option,
) *AccountService {
	o := applyOptions(opts)
	return &AccountService{
		accounts:      accounts,
		refreshTokens: refreshTokens,
		hasher:        hasher,
		logger:        logger,
		now:           o.now,
	}
}

// ChangePasswordInput represents change password input
type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ListAccounts lists accounts ordered by ID
func (s *AccountService) ListAccounts(ctx context.Context, params pagination.Params) (*pagination.Page[domain.AccountDetail], error) {
	accounts, total, err := s.accounts.List(ctx, params.Offset, params.Limit)
	if err != nil {
		return nil, err
	}

	details := make([]domain.AccountDetail, len(accounts))
	for i, account := range accounts {
		details[i] = account.Detail()
	}
	return pagination.NewPage(details, params, total), nil
}

// GetAccount gets an account by ID
func (s *AccountService) GetAccount(ctx context.Context, id uint) (*domain.AccountDetail, error) {
	account, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	detail := account.Detail()
	return &detail, nil
}

// Enable re-enables a disabled account
func (s *AccountService) Enable(ctx context.Context, id, adminID uint) (*domain.AccountDetail, error) {
	return s.apply(ctx, "enable", id, adminID, false, func(a domain.Account, now time.Time) domain.Account {
		return a.WithEnabled(true, now)
	})
}

// Disable disables an account and revokes its refresh tokens
func (s *AccountService) Disable(ctx context.Context, id, adminID uint) (*domain.AccountDetail, error) {
	return s.apply(ctx, "disable", id, adminID, true, func(a domain.Account, now time.Time) domain.Account {
		return a.WithEnabled(false, now)
	})
}

// Lock sets the administrative lock and revokes the account's refresh tokens
func (s *AccountService) Lock(ctx context.Context, id, adminID uint) (*domain.AccountDetail, error) {
	return s.apply(ctx, "lock", id, adminID, true, func(a domain.Account, now time.Time) domain.Account {
		return a.WithAdminLock(true, now)
	})
}

// Unlock clears the administrative lock, the attempt counter and any temporary lock
func (s *AccountService) Unlock(ctx context.Context, id, adminID uint) (*domain.AccountDetail, error) {
	return s.apply(ctx, "unlock", id, adminID, false, func(a domain.Account, now time.Time) domain.Account {
		return a.WithAdminLock(false, now)
	})
}

// Approve approves a pending account
func (s *AccountService) Approve(ctx context.Context, id, adminID uint) (*domain.AccountDetail, error) {
	return s.apply(ctx, "approve", id, adminID, false, func(a domain.Account, now time.Time) domain.Account {
		return a.WithApproved(now)
	})
}

// SoftDelete flags an account deleted, disables it and revokes its refresh tokens
func (s *AccountService) SoftDelete(ctx context.Context, id, adminID uint, deletedBy string) (*domain.AccountDetail, error) {
	return s.apply(ctx, "soft_delete", id, adminID, true, func(a domain.Account, now time.Time) domain.Account {
		return a.WithSoftDelete(deletedBy, now)
	})
}

// apply runs an administrative transition under the account row lock
func (s *AccountService) apply(
	ctx context.Context,
	action string,
	id, adminID uint,
	revokeSessions bool,
	transition func(domain.Account, time.Time) domain.Account,
) (*domain.AccountDetail, error) {
	// Prevent admin from locking out own account
	if revokeSessions && id == adminID {
		return nil, domain.ErrCannotModifySelf
	}

	now := s.now()
	account, err := s.accounts.UpdateLocked(ctx, id, func(a *domain.Account) error {
		*a = transition(*a, now)
		return nil
	})
	if err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%s account: %w", action, err)
	}

	if revokeSessions {
		if err := s.refreshTokens.RevokeAllByAccountID(ctx, id, now); err != nil {
			return nil, fmt.Errorf("revoke refresh tokens: %w", err)
		}
	}

	s.logger.Info("account updated by admin",
		zap.String("action", action),
		zap.Uint("account_id", id),
		zap.Uint("admin_id", adminID),
	)

	detail := account.Detail()
	return &detail, nil
}

// ChangePassword changes the password of a signed-in account
func (s *AccountService) ChangePassword(ctx context.Context, accountID uint, input *ChangePasswordInput) error {
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			return domain.ErrNotFound
		}
		return err
	}

	// Verify current password
	if !s.hasher.Verify(input.CurrentPassword, account.PasswordHash) {
		return domain.ErrInvalidCredentials
	}

	// Validate new password
	if rule := password.CheckStrength(input.NewPassword); rule != nil {
		return domain.WeakPassword(rule.Description)
	}
	if s.hasher.Verify(input.NewPassword, account.PasswordHash) {
		return domain.ErrPasswordUnchanged
	}

	// Hash new password
	hash, err := s.hasher.Hash(input.NewPassword)
	if err != nil {
		return err
	}

	now := s.now()
	if _, err := s.accounts.UpdateLocked(ctx, accountID, func(a *domain.Account) error {
		*a = a.WithPassword(hash, now)
		return nil
	}); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	// Sessions opened with the old password end here
	if err := s.refreshTokens.RevokeAllByAccountID(ctx, accountID, now); err != nil {
		return fmt.Errorf("revoke refresh tokens: %w", err)
	}

	s.logger.Info("password changed", zap.Uint("account_id", accountID))
	return nil
}
