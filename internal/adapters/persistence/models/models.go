package models

import (
	"time"

	"it-incidents-backend/internal/core/domain"

	"gorm.io/gorm"
)

// Unique index names on accounts, matched against duplicate key errors
const (
	AccountUsernameIndex = "idx_accounts_username"
	AccountEmailIndex    = "idx_accounts_email"
)

// Account represents accounts table
type Account struct {
	ID                  uint       `gorm:"primaryKey" json:"id"`
	Username            string     `gorm:"uniqueIndex:idx_accounts_username;size:50;not null" json:"username"`
	Email               string     `gorm:"uniqueIndex:idx_accounts_email;size:100;not null" json:"email"`
	PasswordHash        string     `gorm:"column:password_hash;size:255;not null" json:"-"`
	FirstName           string     `gorm:"size:100" json:"first_name"`
	LastName            string     `gorm:"size:100" json:"last_name"`
	Phone               string     `gorm:"size:30" json:"phone"`
	Role                string     `gorm:"size:20;default:'USER';not null" json:"role"`
	Enabled             bool       `gorm:"not null" json:"enabled"`
	Approved            bool       `gorm:"not null;default:false" json:"approved"`
	Deleted             bool       `gorm:"not null;default:false;index" json:"deleted"`
	DeletedAt           *time.Time `json:"deleted_at"`
	DeletedBy           string     `gorm:"size:50" json:"deleted_by"`
	AccountLocked       bool       `gorm:"not null;default:false" json:"account_locked"`
	FailedLoginAttempts int        `gorm:"not null;default:0" json:"failed_login_attempts"`
	LockedUntil         *time.Time `json:"locked_until"`
	LastLoginAt         *time.Time `json:"last_login_at"`
	PasswordChangedAt   *time.Time `json:"password_changed_at"`
	CreatedAt           time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Account) TableName() string {
	return "accounts"
}

// ToDomain converts the row into the domain record
func (a *Account) ToDomain() *domain.Account {
	return &domain.Account{
		ID:                  a.ID,
		Username:            a.Username,
		Email:               a.Email,
		PasswordHash:        a.PasswordHash,
		FirstName:           a.FirstName,
		LastName:            a.LastName,
		Phone:               a.Phone,
		Role:                domain.Role(a.Role),
		Enabled:             a.Enabled,
		Approved:            a.Approved,
		Deleted:             a.Deleted,
		DeletedAt:           a.DeletedAt,
		DeletedBy:           a.DeletedBy,
		AdminLocked:         a.AccountLocked,
		FailedLoginAttempts: a.FailedLoginAttempts,
		LockedUntil:         a.LockedUntil,
		LastLoginAt:         a.LastLoginAt,
		PasswordChangedAt:   a.PasswordChangedAt,
		CreatedAt:           a.CreatedAt,
		UpdatedAt:           a.UpdatedAt,
	}
}

// NewAccount converts a domain record into a row
func NewAccount(a *domain.Account) *Account {
	return &Account{
		ID:                  a.ID,
		Username:            a.Username,
		Email:               a.Email,
		PasswordHash:        a.PasswordHash,
		FirstName:           a.FirstName,
		LastName:            a.LastName,
		Phone:               a.Phone,
		Role:                string(a.Role),
		Enabled:             a.Enabled,
		Approved:            a.Approved,
		Deleted:             a.Deleted,
		DeletedAt:           a.DeletedAt,
		DeletedBy:           a.DeletedBy,
		AccountLocked:       a.AdminLocked,
		FailedLoginAttempts: a.FailedLoginAttempts,
		LockedUntil:         a.LockedUntil,
		LastLoginAt:         a.LastLoginAt,
		PasswordChangedAt:   a.PasswordChangedAt,
		CreatedAt:           a.CreatedAt,
		UpdatedAt:           a.UpdatedAt,
	}
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	AccountID uint       `gorm:"index;not null" json:"account_id"`
	TokenID   string     `gorm:"size:36;not null;uniqueIndex" json:"token_id"`
	TokenHash string     `gorm:"size:64;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null;index" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

// ToDomain converts the row into the domain record
func (rt *RefreshToken) ToDomain() *domain.RefreshToken {
	return &domain.RefreshToken{
		ID:        rt.ID,
		AccountID: rt.AccountID,
		TokenID:   rt.TokenID,
		TokenHash: rt.TokenHash,
		ExpiresAt: rt.ExpiresAt,
		CreatedAt: rt.CreatedAt,
		RevokedAt: rt.RevokedAt,
	}
}

// AutoMigrate runs auto migration for the auth tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Account{},
		&RefreshToken{},
	)
}
