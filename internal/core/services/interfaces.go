package services

import (
	"time"

	"it-incidents-backend/internal/pkg/jwt"
)

// PasswordHasher hashes and verifies credentials
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// TokenIssuer signs and inspects access and refresh tokens
type TokenIssuer interface {
	IssueAccess(username string, accountID uint, role string) (*jwt.Token, error)
	IssueRefresh(username string, accountID uint) (*jwt.Token, error)
	Parse(token string) (*jwt.Claims, error)
	Validate(token string) bool
	IsExpired(token string) bool
}

// Option configures a service
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock replaces the service time source
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func applyOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
