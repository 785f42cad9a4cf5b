package domain

import "time"

// Role represents an account role in the system
type Role string

const (
	RolePublic Role = "PUBLIC"
	RoleUser   Role = "USER"
	RoleAdmin  Role = "ADMIN"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RolePublic, RoleUser, RoleAdmin:
		return true
	}
	return false
}

// Account is the persisted security state of one registrable identity.
// It carries no persistence or framework behavior; state changes go through
// the With* transitions in account_state.go.
type Account struct {
	ID           uint
	Username     string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Phone        string
	Role         Role

	Enabled   bool
	Approved  bool
	Deleted   bool
	DeletedAt *time.Time
	DeletedBy string

	// AdminLocked is the persistent administrative lock, independent of
	// FailedLoginAttempts and LockedUntil.
	AdminLocked         bool
	FailedLoginAttempts int
	LockedUntil         *time.Time

	LastLoginAt       *time.Time
	PasswordChangedAt *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// AccountSummary is the non-sensitive view of an account returned to clients
type AccountSummary struct {
	ID        uint   `json:"accountId"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      Role   `json:"role"`
}

// Summary returns the client-safe view of the account
func (a Account) Summary() AccountSummary {
	return AccountSummary{
		ID:        a.ID,
		Username:  a.Username,
		Email:     a.Email,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Role:      a.Role,
	}
}

// AccountDetail is the administrative view of an account
type AccountDetail struct {
	AccountSummary
	Phone               string     `json:"phone,omitempty"`
	Enabled             bool       `json:"enabled"`
	Approved            bool       `json:"approved"`
	Deleted             bool       `json:"deleted"`
	DeletedAt           *time.Time `json:"deletedAt,omitempty"`
	DeletedBy           string     `json:"deletedBy,omitempty"`
	AccountLocked       bool       `json:"accountLocked"`
	FailedLoginAttempts int        `json:"failedLoginAttempts"`
	LockedUntil         *time.Time `json:"lockedUntil,omitempty"`
	LastLoginAt         *time.Time `json:"lastLoginAt,omitempty"`
	PasswordChangedAt   *time.Time `json:"passwordChangedAt,omitempty"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

// Detail returns the administrative view of the account
func (a Account) Detail() AccountDetail {
	return AccountDetail{
		AccountSummary:      a.Summary(),
		Phone:               a.Phone,
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

// RefreshToken is an allowlist entry for an issued refresh token.
// Only the SHA-256 fingerprint of the token is kept.
type RefreshToken struct {
	ID        uint
	AccountID uint
	TokenID   string
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
	RevokedAt *time.Time
}

// IsRevoked reports whether the token has been revoked
func (t RefreshToken) IsRevoked() bool {
	return t.RevokedAt != nil
}

// IsExpired reports whether the token expiry has passed at now
func (t RefreshToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
