package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"it-incidents-backend/internal/adapters/persistence/models"
	"it-incidents-backend/internal/core/domain"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

var (
	ErrAccountNotFound      = errors.New("account not found")
	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	ErrDuplicateUsername    = errors.New("duplicate username")
	ErrDuplicateEmail       = errors.New("duplicate email")
)

// AccountRepository defines account repository interface
type AccountRepository interface {
	FindByUsernameOrEmail(ctx context.Context, identifier string) (*domain.Account, error)
	FindByID(ctx context.Context, id uint) (*domain.Account, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, account *domain.Account) error
	// UpdateLocked loads the account under a row lock in its own transaction,
	// applies fn and persists the result.
	UpdateLocked(ctx context.Context, id uint, fn func(*domain.Account) error) (*domain.Account, error)
	List(ctx context.Context, offset, limit int) ([]*domain.Account, int64, error)
}

// RefreshTokenRepository defines refresh token allowlist interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *domain.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error)
	// Revoke returns ErrRefreshTokenNotFound when the token is missing or already revoked.
	Revoke(ctx context.Context, id uint, at time.Time) error
	RevokeByTokenHash(ctx context.Context, tokenHash string, at time.Time) error
	RevokeAllByAccountID(ctx context.Context, accountID uint, at time.Time) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// mysqlDuplicateEntry is the MySQL error number for a unique key violation
const mysqlDuplicateEntry = 1062

// translateDuplicate maps a unique index violation on accounts to the
// sentinel of the offending column. Other errors pass through.
func translateDuplicate(err error) error {
	var mysqlErr *mysqldriver.MySQLError
	if !errors.As(err, &mysqlErr) || mysqlErr.Number != mysqlDuplicateEntry {
		return err
	}
	switch {
	case strings.Contains(mysqlErr.Message, models.AccountUsernameIndex):
		return ErrDuplicateUsername
	case strings.Contains(mysqlErr.Message, models.AccountEmailIndex):
		return ErrDuplicateEmail
	}
	return err
}

func translateNotFound(err, notFound error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return err
}
