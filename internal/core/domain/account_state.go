package domain

import (
	"math"
	"time"
)

// LockState is the login lock state of an account, derived from its stored fields
type LockState int

const (
	LockStateActive LockState = iota
	LockStateTemporarilyLocked
	// LockStateLockExpiredPendingReset collapses to LockStateActive on the next login read.
	LockStateLockExpiredPendingReset
	LockStateAdministrativelyLocked
)

func (s LockState) String() string {
	switch s {
	case LockStateActive:
		return "ACTIVE"
	case LockStateTemporarilyLocked:
		return "TEMPORARILY_LOCKED"
	case LockStateLockExpiredPendingReset:
		return "LOCK_EXPIRED_PENDING_RESET"
	case LockStateAdministrativelyLocked:
		return "ADMINISTRATIVELY_LOCKED"
	default:
		return "UNKNOWN"
	}
}

// LockState derives the lock state at now
func (a Account) LockState(now time.Time) LockState {
	switch {
	case a.IsTemporarilyLocked(now):
		return LockStateTemporarilyLocked
	case a.AdminLocked:
		return LockStateAdministrativelyLocked
	case a.LockExpired(now):
		return LockStateLockExpiredPendingReset
	default:
		return LockStateActive
	}
}

// IsTemporarilyLocked reports whether the lockout expiry lies in the future
func (a Account) IsTemporarilyLocked(now time.Time) bool {
	return a.LockedUntil != nil && now.Before(*a.LockedUntil)
}

// LockExpired reports whether a temporary lock was set and has already passed
func (a Account) LockExpired(now time.Time) bool {
	return a.LockedUntil != nil && !now.Before(*a.LockedUntil)
}

// IsAccountNonLocked reports whether neither lock applies at now
func (a Account) IsAccountNonLocked(now time.Time) bool {
	return !a.AdminLocked && !a.IsTemporarilyLocked(now)
}

// RemainingLockMinutes is the ceiling of the minutes left on a temporary lock, 0 when not locked
func (a Account) RemainingLockMinutes(now time.Time) int {
	if !a.IsTemporarilyLocked(now) {
		return 0
	}
	return int(math.Ceil(a.LockedUntil.Sub(now).Minutes()))
}

// CanAuthenticate reports whether the account is enabled and not deleted
func (a Account) CanAuthenticate() bool {
	return a.Enabled && !a.Deleted
}

// IsPasswordExpired reports whether the password is older than window.
// A nil PasswordChangedAt never expires.
func (a Account) IsPasswordExpired(now time.Time, window time.Duration) bool {
	if a.PasswordChangedAt == nil || window <= 0 {
		return false
	}
	return now.Sub(*a.PasswordChangedAt) > window
}

// WithFailedAttempt records one failed credential check. Reaching threshold
// sets the lockout expiry to now+duration; an active lock is never extended.
func (a Account) WithFailedAttempt(now time.Time, threshold int, duration time.Duration) Account {
	a.FailedLoginAttempts++
	if threshold > 0 && a.FailedLoginAttempts >= threshold && !a.IsTemporarilyLocked(now) {
		until := now.Add(duration)
		a.LockedUntil = &until
	}
	a.UpdatedAt = now
	return a
}

// WithReset clears the attempt counter and the temporary lock
func (a Account) WithReset(now time.Time) Account {
	a.FailedLoginAttempts = 0
	a.LockedUntil = nil
	a.UpdatedAt = now
	return a
}

// NeedsReset reports whether the counter or temporary lock hold any state
func (a Account) NeedsReset() bool {
	return a.FailedLoginAttempts > 0 || a.LockedUntil != nil
}

// WithLogin resets attempt state and stamps the last login
func (a Account) WithLogin(now time.Time) Account {
	a = a.WithReset(now)
	a.LastLoginAt = &now
	return a
}

// WithPassword stores a new password hash, restarts the password age and resets attempt state
func (a Account) WithPassword(hash string, now time.Time) Account {
	a = a.WithReset(now)
	a.PasswordHash = hash
	a.PasswordChangedAt = &now
	return a
}

// WithEnabled sets the enabled flag
func (a Account) WithEnabled(enabled bool, now time.Time) Account {
	a.Enabled = enabled
	a.UpdatedAt = now
	return a
}

// WithAdminLock sets the administrative lock. Unlocking also clears attempt state.
func (a Account) WithAdminLock(locked bool, now time.Time) Account {
	if !locked {
		a = a.WithReset(now)
	}
	a.AdminLocked = locked
	a.UpdatedAt = now
	return a
}

// WithApproved marks the account approved
func (a Account) WithApproved(now time.Time) Account {
	a.Approved = true
	a.UpdatedAt = now
	return a
}

// WithSoftDelete flags the account deleted and disables it
func (a Account) WithSoftDelete(deletedBy string, now time.Time) Account {
	a.Deleted = true
	a.DeletedAt = &now
	a.DeletedBy = deletedBy
	a.Enabled = false
	a.UpdatedAt = now
	return a
}

// AccessStatus is the live status code checked on every authenticated request
type AccessStatus string

const (
	AccessGranted            AccessStatus = ""
	AccessAccountNotFound    AccessStatus = "ACCOUNT_NOT_FOUND"
	AccessAccountDeleted     AccessStatus = "ACCOUNT_DELETED"
	AccessAccountDisabled    AccessStatus = "ACCOUNT_DISABLED"
	AccessAccountLocked      AccessStatus = "ACCOUNT_LOCKED"
	AccessAccountNotApproved AccessStatus = "ACCOUNT_NOT_APPROVED"
)

// Message returns the client-facing text for the status
func (s AccessStatus) Message() string {
	switch s {
	case AccessAccountDisabled:
		return "Your account has been disabled by an administrator"
	case AccessAccountDeleted:
		return "Your account has been deleted"
	case AccessAccountLocked:
		return "Your account has been locked"
	case AccessAccountNotApproved:
		return "Your account is pending approval"
	case AccessAccountNotFound:
		return "Account not found"
	default:
		return ""
	}
}

// AccessStatus evaluates the account for an authenticated request
func (a Account) AccessStatus(now time.Time, requireApproval bool) AccessStatus {
	switch {
	case a.Deleted:
		return AccessAccountDeleted
	case !a.Enabled:
		return AccessAccountDisabled
	case a.AdminLocked, a.IsTemporarilyLocked(now):
		return AccessAccountLocked
	case requireApproval && !a.Approved:
		return AccessAccountNotApproved
	default:
		return AccessGranted
	}
}
