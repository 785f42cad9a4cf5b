package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"it-incidents-backend/internal/adapters/persistence/repositories"
	"it-incidents-backend/internal/core/domain"
	"it-incidents-backend/internal/pkg/jwt"
	"it-incidents-backend/internal/pkg/metrics"
	"it-incidents-backend/internal/pkg/password"

	"go.uber.org/zap"
)

// TokenTypeBearer is the token type returned with every token pair
const TokenTypeBearer = "Bearer"

// AuthService handles authentication business logic
type AuthService struct {
	accounts      repositories.AccountRepository
	refreshTokens repositories.RefreshTokenRepository
	attempts      *LoginAttemptService
	hasher        PasswordHasher
	tokens        TokenIssuer
	policy        domain.SecurityPolicy
	logger        *zap.Logger
	now           func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(
	accounts repositories.AccountRepository,
	refreshTokens repositories.RefreshTokenRepository,
	attempts *LoginAttemptService,
	hasher PasswordHasher,
	tokens TokenIssuer,
	policy domain.SecurityPolicy,
	logger *zap.Logger,
	opts ...Option,
) *AuthService {
	o := applyOptions(opts)
	return &AuthService{
		accounts:      accounts,
		refreshTokens: refreshTokens,
		attempts:      attempts,
		hasher:        hasher,
		tokens:        tokens,
		policy:        policy,
		logger:        logger,
		now:           o.now,
	}
}

// LoginInput represents login input
type LoginInput struct {
	Identifier string
	Password   string
}

// SignUpInput represents signup input
type SignUpInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

// ChangeExpiredPasswordInput represents the forced password change input
type ChangeExpiredPasswordInput struct {
	Identifier      string
	CurrentPassword string
	NewPassword     string
}

// AuthResponse represents authentication response
type AuthResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	domain.AccountSummary
}

// Authenticate logs an account in. The order of the checks is fixed: it
// decides what an unauthenticated caller can learn about an account.
func (s *AuthService) Authenticate(ctx context.Context, input *LoginInput) (*AuthResponse, error) {
	// 1. Find account by username or email
	account, err := s.accounts.FindByUsernameOrEmail(ctx, input.Identifier)
	if err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			metrics.RecordLogin("invalid_credentials")
			return nil, domain.ErrInvalidCredentials
		}
		metrics.RecordLogin("error")
		return nil, fmt.Errorf("find account: %w", err)
	}

	// 2-5. Account status and lock checks, all before the password is verified
	account, err = s.checkLoginAllowed(ctx, account)
	if err != nil {
		return nil, err
	}

	// 6. Verify password; a failure is recorded in its own transaction
	if !s.hasher.Verify(input.Password, account.PasswordHash) {
		if _, err := s.attempts.RecordFailure(ctx, account.ID); err != nil {
			metrics.RecordLogin("error")
			return nil, err
		}
		metrics.RecordLogin("invalid_credentials")
		return nil, domain.ErrInvalidCredentials
	}

	// 7. Password expiry, only after the password is proven
	if account.IsPasswordExpired(s.now(), s.policy.PasswordExpiry) {
		metrics.RecordLogin("password_expired")
		s.logger.Info("login rejected, password expired", zap.Uint("account_id", account.ID))
		return nil, domain.PasswordExpired(account.ID)
	}

	// 8. Reset attempts, stamp last login, issue tokens
	account, err = s.attempts.RecordSuccess(ctx, account.ID)
	if err != nil {
		metrics.RecordLogin("error")
		return nil, err
	}

	resp, err := s.issueTokens(ctx, account)
	if err != nil {
		metrics.RecordLogin("error")
		return nil, err
	}

	metrics.RecordLogin("success")
	s.logger.Info("account logged in",
		zap.Uint("account_id", account.ID),
		zap.String("username", account.Username),
	)
	return resp, nil
}

// checkLoginAllowed applies the pre-verification checks shared by Authenticate
// and ChangeExpiredPassword. It returns the account with any expired
// temporary lock already cleared.
func (s *AuthService) checkLoginAllowed(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	// Soft delete also disables, so a deleted account is matched first to stay
	// indistinguishable from an unknown one.
	if !account.Enabled && !account.Deleted {
		metrics.RecordLogin("disabled")
		return nil, domain.ErrAccountDisabled
	}

	if account.Deleted {
		metrics.RecordLogin("invalid_credentials")
		return nil, domain.ErrInvalidCredentials
	}

	if s.policy.RequireApproval && !account.Approved {
		metrics.RecordLogin("not_approved")
		return nil, domain.ErrAccountNotApproved
	}

	now := s.now()
	if account.IsTemporarilyLocked(now) {
		metrics.RecordLogin("locked")
		return nil, domain.AccountLocked(account.RemainingLockMinutes(now))
	}

	account, err := s.attempts.ClearExpiredLock(ctx, account)
	if err != nil {
		metrics.RecordLogin("error")
		return nil, err
	}

	if account.AdminLocked {
		metrics.RecordLogin("locked")
		return nil, domain.AccountLocked(0)
	}

	return account, nil
}

// SignUp registers a new USER account and logs it in
func (s *AuthService) SignUp(ctx context.Context, input *SignUpInput) (*AuthResponse, error) {
	account, err := s.createAccount(ctx, &CreateAccountInput{
		Username:  input.Username,
		Email:     input.Email,
		Password:  input.Password,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Phone:     input.Phone,
		Role:      domain.RoleUser,
		Approved:  false,
	})
	if err != nil {
		return nil, err
	}

	resp, err := s.issueTokens(ctx, account)
	if err != nil {
		return nil, err
	}

	metrics.RecordSignup()
	s.logger.Info("account signed up",
		zap.Uint("account_id", account.ID),
		zap.String("username", account.Username),
	)
	return resp, nil
}

// CreateAccountInput represents the fields of a new account
type CreateAccountInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
	Role      domain.Role
	Approved  bool
}

// CreateAccount provisions an account with an explicit role and approval flag.
// It applies the same uniqueness and strength rules as SignUp but issues no tokens.
func (s *AuthService) CreateAccount(ctx context.Context, input *CreateAccountInput) (*domain.Account, error) {
	account, err := s.createAccount(ctx, input)
	if err != nil {
		return nil, err
	}

	s.logger.Info("account provisioned",
		zap.Uint("account_id", account.ID),
		zap.String("username", account.Username),
		zap.String("role", string(account.Role)),
	)
	return account, nil
}

// createAccount checks uniqueness and strength, hashes the password and persists the account
func (s *AuthService) createAccount(ctx context.Context, input *CreateAccountInput) (*domain.Account, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)
	if username == "" || email == "" {
		return nil, domain.InvalidInput("Username and email are required")
	}
	if !input.Role.Valid() {
		return nil, domain.InvalidInput("Invalid role")
	}

	// 1. Uniqueness, before any hashing work
	exists, err := s.accounts.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if exists {
		return nil, domain.ErrUsernameTaken
	}

	exists, err = s.accounts.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, domain.ErrEmailTaken
	}

	// 2. Password strength
	if rule := password.CheckStrength(input.Password); rule != nil {
		return nil, domain.WeakPassword(rule.Description)
	}

	// 3. Hash password
	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	// 4. Create account
	now := s.now()
	account := &domain.Account{
		Username:          username,
		Email:             email,
		PasswordHash:      hash,
		FirstName:         strings.TrimSpace(input.FirstName),
		LastName:          strings.TrimSpace(input.LastName),
		Phone:             strings.TrimSpace(input.Phone),
		Role:              input.Role,
		Enabled:           true,
		Approved:          input.Approved,
		PasswordChangedAt: &now,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	// 5. Unique indexes catch a concurrent insert that passed step 1
	if err := s.accounts.Create(ctx, account); err != nil {
		switch {
		case errors.Is(err, repositories.ErrDuplicateUsername):
			return nil, domain.ErrUsernameTaken
		case errors.Is(err, repositories.ErrDuplicateEmail):
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("create account: %w", err)
	}
	return account, nil
}

// RefreshToken exchanges a refresh token for a new token pair and revokes the presented one
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	// 1. Signature, structure and expiry
	if !s.tokens.Validate(refreshToken) || s.tokens.IsExpired(refreshToken) {
		metrics.RecordRefresh("invalid")
		return nil, domain.ErrInvalidOrExpiredToken
	}
	claims, err := s.tokens.Parse(refreshToken)
	if err != nil {
		metrics.RecordRefresh("invalid")
		return nil, domain.ErrInvalidOrExpiredToken
	}

	// 2. Token kind
	if claims.Kind != jwt.KindRefresh {
		metrics.RecordRefresh("wrong_type")
		return nil, domain.ErrInvalidTokenType
	}

	// 3. Allowlist
	stored, err := s.refreshTokens.GetByTokenHash(ctx, password.HashToken(refreshToken))
	if err != nil {
		if errors.Is(err, repositories.ErrRefreshTokenNotFound) {
			metrics.RecordRefresh("unknown")
			return nil, domain.ErrInvalidOrExpiredToken
		}
		return nil, fmt.Errorf("find refresh token: %w", err)
	}
	if stored.IsRevoked() || stored.AccountID != claims.AccountID {
		metrics.RecordRefresh("revoked")
		s.logger.Warn("revoked refresh token presented", zap.Uint("account_id", claims.AccountID))
		return nil, domain.ErrInvalidOrExpiredToken
	}
	if stored.IsExpired(s.now()) {
		metrics.RecordRefresh("invalid")
		return nil, domain.ErrInvalidOrExpiredToken
	}

	// 4. Load account
	account, err := s.accounts.FindByID(ctx, claims.AccountID)
	if err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			metrics.RecordRefresh("not_found")
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}

	// 5. Re-check live status
	if !account.CanAuthenticate() || account.AdminLocked || (s.policy.RequireApproval && !account.Approved) {
		metrics.RecordRefresh("not_accessible")
		return nil, domain.ErrAccountNotAccessible
	}

	// 6. Rotate; only one concurrent exchange can revoke the token
	if err := s.refreshTokens.Revoke(ctx, stored.ID, s.now()); err != nil {
		if errors.Is(err, repositories.ErrRefreshTokenNotFound) {
			metrics.RecordRefresh("revoked")
			return nil, domain.ErrInvalidOrExpiredToken
		}
		return nil, fmt.Errorf("revoke refresh token: %w", err)
	}

	resp, err := s.issueTokens(ctx, account)
	if err != nil {
		return nil, err
	}

	metrics.RecordRefresh("success")
	s.logger.Info("token refreshed", zap.Uint("account_id", account.ID))
	return resp, nil
}

// ChangeExpiredPassword replaces the password of an account without a session
// and logs it in. The current password must still be proven.
func (s *AuthService) ChangeExpiredPassword(ctx context.Context, input *ChangeExpiredPasswordInput) (*AuthResponse, error) {
	// 1. Find account
	account, err := s.accounts.FindByUsernameOrEmail(ctx, input.Identifier)
	if err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find account: %w", err)
	}

	account, err = s.checkLoginAllowed(ctx, account)
	if err != nil {
		return nil, err
	}

	// 2. Prove possession of the current password
	if !s.hasher.Verify(input.CurrentPassword, account.PasswordHash) {
		if _, err := s.attempts.RecordFailure(ctx, account.ID); err != nil {
			return nil, err
		}
		return nil, domain.ErrInvalidCredentials
	}

	// 3. Strength of the new password
	if rule := password.CheckStrength(input.NewPassword); rule != nil {
		return nil, domain.WeakPassword(rule.Description)
	}

	// 4. Must differ from the current password
	if s.hasher.Verify(input.NewPassword, account.PasswordHash) {
		return nil, domain.ErrPasswordUnchanged
	}

	// 5. Rehash, restart the password age, reset attempts
	hash, err := s.hasher.Hash(input.NewPassword)
	if err != nil {
		return nil, err
	}
	now := s.now()
	account, err = s.accounts.UpdateLocked(ctx, account.ID, func(a *domain.Account) error {
		*a = a.WithPassword(hash, now).WithLogin(now)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update password: %w", err)
	}

	if err := s.refreshTokens.RevokeAllByAccountID(ctx, account.ID, now); err != nil {
		return nil, fmt.Errorf("revoke refresh tokens: %w", err)
	}

	// 6. Issue fresh tokens
	resp, err := s.issueTokens(ctx, account)
	if err != nil {
		return nil, err
	}

	s.logger.Info("expired password changed", zap.Uint("account_id", account.ID))
	return resp, nil
}

// Logout revokes the refresh token
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if err := s.refreshTokens.RevokeByTokenHash(ctx, password.HashToken(refreshToken), s.now()); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}

	s.logger.Info("account logged out")
	return nil
}

// LogoutAll revokes all refresh tokens for an account
func (s *AuthService) LogoutAll(ctx context.Context, accountID uint) error {
	if err := s.refreshTokens.RevokeAllByAccountID(ctx, accountID, s.now()); err != nil {
		return fmt.Errorf("revoke refresh tokens: %w", err)
	}

	s.logger.Info("all sessions revoked", zap.Uint("account_id", accountID))
	return nil
}

// CurrentAccount returns the summary of the account behind a session
func (s *AuthService) CurrentAccount(ctx context.Context, accountID uint) (*domain.AccountSummary, error) {
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	summary := account.Summary()
	return &summary, nil
}

// CheckAccess reports the live status of an account holding a valid access token
func (s *AuthService) CheckAccess(ctx context.Context, accountID uint) (domain.AccessStatus, error) {
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			return domain.AccessAccountNotFound, nil
		}
		return "", err
	}
	return account.AccessStatus(s.now(), s.policy.RequireApproval), nil
}

// ParseAccessToken returns the claims of a valid, unexpired access token
func (s *AuthService) ParseAccessToken(accessToken string) (*jwt.Claims, error) {
	if !s.tokens.Validate(accessToken) || s.tokens.IsExpired(accessToken) {
		return nil, domain.ErrInvalidOrExpiredToken
	}
	claims, err := s.tokens.Parse(accessToken)
	if err != nil {
		return nil, domain.ErrInvalidOrExpiredToken
	}
	if claims.Kind != jwt.KindAccess {
		return nil, domain.ErrInvalidTokenType
	}
	return claims, nil
}

// issueTokens signs a token pair and records the refresh token on the allowlist
func (s *AuthService) issueTokens(ctx context.Context, account *domain.Account) (*AuthResponse, error) {
	access, err := s.tokens.IssueAccess(account.Username, account.ID, string(account.Role))
	if err != nil {
		return nil, err
	}

	refresh, err := s.tokens.IssueRefresh(account.Username, account.ID)
	if err != nil {
		return nil, err
	}

	if err := s.refreshTokens.Create(ctx, &domain.RefreshToken{
		AccountID: account.ID,
		TokenID:   refresh.ID,
		TokenHash: password.HashToken(refresh.Value),
		ExpiresAt: refresh.ExpiresAt,
	}); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	metrics.RecordTokenIssued(string(jwt.KindAccess))
	metrics.RecordTokenIssued(string(jwt.KindRefresh))

	return &AuthResponse{
		AccessToken:    access.Value,
		RefreshToken:   refresh.Value,
		TokenType:      TokenTypeBearer,
		AccountSummary: account.Summary(),
	}, nil
}
