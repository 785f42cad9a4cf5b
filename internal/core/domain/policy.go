package domain

import "time"

// SecurityPolicy holds the credential-security thresholds used by the auth services
type SecurityPolicy struct {
	LockoutThreshold int
	LockoutDuration  time.Duration
	PasswordExpiry   time.Duration
	RequireApproval  bool
}

// DefaultSecurityPolicy returns the production defaults
func DefaultSecurityPolicy() SecurityPolicy {
	return SecurityPolicy{
		LockoutThreshold: 5,
		LockoutDuration:  15 * time.Minute,
		PasswordExpiry:   90 * 24 * time.Hour,
		RequireApproval:  true,
	}
}
