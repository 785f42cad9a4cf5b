package services

import (
	"context"
	"fmt"
	"time"

	"it-incidents-backend/internal/adapters/persistence/repositories"
	"it-incidents-backend/internal/core/domain"
	"it-incidents-backend/internal/pkg/metrics"

	"go.uber.org/zap"
)

// LoginAttemptService tracks failed logins and temporary lockouts.
// Every transition is committed through AccountRepository.UpdateLocked, so it
// runs in its own transaction under a row lock, independent of the caller.
type LoginAttemptService struct {
	accounts repositories.AccountRepository
	policy   domain.SecurityPolicy
	logger   *zap.Logger
	now      func() time.Time
}

// NewLoginAttemptService creates a new login attempt service
func NewLoginAttemptService(
	accounts repositories.AccountRepository,
	policy domain.SecurityPolicy,
	logger *zap.Logger,
	opts ...Option,
) *LoginAttemptService {
	o := applyOptions(opts)
	return &LoginAttemptService{
		accounts: accounts,
		policy:   policy,
		logger:   logger,
		now:      o.now,
	}
}

// RecordFailure increments the attempt counter and engages the lockout at the threshold
func (s *LoginAttemptService) RecordFailure(ctx context.Context, accountID uint) (*domain.Account, error) {
	now := s.now()
	var lockedNow bool

	account, err := s.accounts.UpdateLocked(ctx, accountID, func(a *domain.Account) error {
		wasLocked := a.IsTemporarilyLocked(now)
		*a = a.WithFailedAttempt(now, s.policy.LockoutThreshold, s.policy.LockoutDuration)
		lockedNow = !wasLocked && a.IsTemporarilyLocked(now)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("record failed login: %w", err)
	}

	s.logger.Warn("failed login attempt",
		zap.Uint("account_id", accountID),
		zap.Int("failed_attempts", account.FailedLoginAttempts),
	)
	if lockedNow {
		metrics.RecordLockout()
		s.logger.Warn("account temporarily locked",
			zap.Uint("account_id", accountID),
			zap.Time("locked_until", *account.LockedUntil),
		)
	}
	return account, nil
}

// RecordSuccess clears the counter and lock expiry and stamps the last login
func (s *LoginAttemptService) RecordSuccess(ctx context.Context, accountID uint) (*domain.Account, error) {
	now := s.now()
	account, err := s.accounts.UpdateLocked(ctx, accountID, func(a *domain.Account) error {
		*a = a.WithLogin(now)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("record successful login: %w", err)
	}
	return account, nil
}

// ClearExpiredLock resets the counter and expiry once a temporary lock has passed.
// Accounts without an expired lock are returned unchanged.
func (s *LoginAttemptService) ClearExpiredLock(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	now := s.now()
	if !account.LockExpired(now) {
		return account, nil
	}

	updated, err := s.accounts.UpdateLocked(ctx, account.ID, func(a *domain.Account) error {
		if a.LockExpired(now) {
			*a = a.WithReset(now)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("clear expired lock: %w", err)
	}

	s.logger.Info("temporary lock expired", zap.Uint("account_id", account.ID))
	return updated, nil
}
