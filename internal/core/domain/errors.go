package domain

import (
	"fmt"
	"net/http"
)

// ErrorKind identifies a class of authentication failure
type ErrorKind string

const (
	KindInvalidCredentials    ErrorKind = "INVALID_CREDENTIALS"
	KindAccountDisabled       ErrorKind = "ACCOUNT_DISABLED"
	KindAccountNotApproved    ErrorKind = "ACCOUNT_NOT_APPROVED"
	KindAccountLocked         ErrorKind = "ACCOUNT_LOCKED"
	KindPasswordExpired       ErrorKind = "PASSWORD_EXPIRED"
	KindWeakPassword          ErrorKind = "WEAK_PASSWORD"
	KindUsernameTaken         ErrorKind = "USERNAME_TAKEN"
	KindEmailTaken            ErrorKind = "EMAIL_TAKEN"
	KindPasswordUnchanged     ErrorKind = "PASSWORD_UNCHANGED"
	KindInvalidOrExpiredToken ErrorKind = "INVALID_OR_EXPIRED_TOKEN"
	KindInvalidTokenType      ErrorKind = "INVALID_TOKEN_TYPE"
	KindNotFound              ErrorKind = "NOT_FOUND"
	KindAccountNotAccessible  ErrorKind = "ACCOUNT_NOT_ACCESSIBLE"
	KindInvalidInput          ErrorKind = "INVALID_INPUT"
	KindCannotModifySelf      ErrorKind = "CANNOT_MODIFY_SELF"
)

// AuthError is a domain failure carrying its HTTP status and a client-safe message
type AuthError struct {
	Kind    ErrorKind
	Status  int
	Message string

	// RemainingMinutes is set only for a temporary lock.
	RemainingMinutes int
	// AccountID is set only for PasswordExpired.
	AccountID uint
}

func (e *AuthError) Error() string {
	return e.Message
}

// Is matches any AuthError of the same kind
func (e *AuthError) Is(target error) bool {
	t, ok := target.(*AuthError)
	return ok && t.Kind == e.Kind
}

func newAuthError(kind ErrorKind, status int, message string) *AuthError {
	return &AuthError{Kind: kind, Status: status, Message: message}
}

// Auth errors
var (
	ErrInvalidCredentials    = newAuthError(KindInvalidCredentials, http.StatusUnauthorized, "Invalid username/email or password")
	ErrAccountDisabled       = newAuthError(KindAccountDisabled, http.StatusForbidden, "Account is disabled")
	ErrAccountNotApproved    = newAuthError(KindAccountNotApproved, http.StatusForbidden, "Account is pending approval")
	ErrAccountLocked         = newAuthError(KindAccountLocked, http.StatusLocked, "Account is locked")
	ErrPasswordExpired       = newAuthError(KindPasswordExpired, http.StatusForbidden, "Password has expired and must be changed")
	ErrWeakPassword          = newAuthError(KindWeakPassword, http.StatusBadRequest, "Password does not meet the strength requirements")
	ErrUsernameTaken         = newAuthError(KindUsernameTaken, http.StatusBadRequest, "Username already exists")
	ErrEmailTaken            = newAuthError(KindEmailTaken, http.StatusBadRequest, "Email already exists")
	ErrPasswordUnchanged     = newAuthError(KindPasswordUnchanged, http.StatusBadRequest, "New password must be different from the current password")
	ErrInvalidOrExpiredToken = newAuthError(KindInvalidOrExpiredToken, http.StatusUnauthorized, "Invalid or expired refresh token")
	ErrInvalidTokenType      = newAuthError(KindInvalidTokenType, http.StatusUnauthorized, "Invalid token type")
	ErrNotFound              = newAuthError(KindNotFound, http.StatusNotFound, "Account not found")
	ErrAccountNotAccessible  = newAuthError(KindAccountNotAccessible, http.StatusForbidden, "Account is disabled, deleted or locked")
	ErrInvalidInput          = newAuthError(KindInvalidInput, http.StatusBadRequest, "Invalid input")
	ErrCannotModifySelf      = newAuthError(KindCannotModifySelf, http.StatusBadRequest, "Cannot disable, lock or delete your own account")
)

// AccountLocked builds the lock error. remainingMinutes is 0 for an administrative lock.
func AccountLocked(remainingMinutes int) *AuthError {
	if remainingMinutes <= 0 {
		return newAuthError(KindAccountLocked, http.StatusLocked, "Account is locked. Please contact an administrator")
	}
	e := newAuthError(KindAccountLocked, http.StatusLocked,
		fmt.Sprintf("Account is temporarily locked due to too many failed login attempts. Try again in %d minute(s)", remainingMinutes))
	e.RemainingMinutes = remainingMinutes
	return e
}

// PasswordExpired builds the expiry error carrying the account id for the reset flow
func PasswordExpired(accountID uint) *AuthError {
	e := newAuthError(KindPasswordExpired, http.StatusForbidden, ErrPasswordExpired.Message)
	e.AccountID = accountID
	return e
}

// WeakPassword builds the strength error naming the violated rule
func WeakPassword(rule string) *AuthError {
	return newAuthError(KindWeakPassword, http.StatusBadRequest, "Password "+rule)
}

// InvalidInput builds a validation error for a request field
func InvalidInput(message string) *AuthError {
	return newAuthError(KindInvalidInput, http.StatusBadRequest, message)
}
