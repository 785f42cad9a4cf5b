package services

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"it-incidents-backend/internal/adapters/persistence/repositories"
	"it-incidents-backend/internal/core/domain"
	"it-incidents-backend/internal/pkg/jwt"
	"it-incidents-backend/internal/pkg/password"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"
)

const (
	testSecret   = "test-secret-key-at-least-32-bytes-long!!"
	testPassword = "Secret@123"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// fakeAccountRepository is an in-memory AccountRepository
type fakeAccountRepository struct {
	mu       sync.Mutex
	accounts map[uint]domain.Account
	nextID   uint
	// hideExisting makes the Exists checks miss, as when a concurrent insert
	// is not yet visible. Create still enforces uniqueness.
	hideExisting bool
}

func newFakeAccountRepository() *fakeAccountRepository {
	return &fakeAccountRepository{accounts: make(map[uint]domain.Account), nextID: 1}
}

func (r *fakeAccountRepository) FindByUsernameOrEmail(_ context.Context, identifier string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Username == identifier || a.Email == identifier {
			a := a
			return &a, nil
		}
	}
	return nil, repositories.ErrAccountNotFound
}

func (r *fakeAccountRepository) FindByID(_ context.Context, id uint) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, repositories.ErrAccountNotFound
	}
	return &a, nil
}

func (r *fakeAccountRepository) ExistsByUsername(_ context.Context, username string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.hideExisting {
		return false, nil
	}
	for _, a := range r.accounts {
		if a.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeAccountRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.hideExisting {
		return false, nil
	}
	for _, a := range r.accounts {
		if a.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeAccountRepository) Create(_ context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Username == account.Username {
			return repositories.ErrDuplicateUsername
		}
		if a.Email == account.Email {
			return repositories.ErrDuplicateEmail
		}
	}
	account.ID = r.nextID
	r.nextID++
	r.accounts[account.ID] = *account
	return nil
}

func (r *fakeAccountRepository) UpdateLocked(_ context.Context, id uint, fn func(*domain.Account) error) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, repositories.ErrAccountNotFound
	}
	if err := fn(&a); err != nil {
		return nil, err
	}
	r.accounts[id] = a
	return &a, nil
}

func (r *fakeAccountRepository) List(_ context.Context, offset, limit int) ([]*domain.Account, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]uint, 0, len(r.accounts))
	for id := range r.accounts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := []*domain.Account{}
	for i := offset; i < len(ids) && len(out) < limit; i++ {
		a := r.accounts[ids[i]]
		out = append(out, &a)
	}
	return out, int64(len(ids)), nil
}

func (r *fakeAccountRepository) get(t *testing.T, id uint) domain.Account {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	require.True(t, ok, "account %d missing", id)
	return a
}

// fakeRefreshTokenRepository is an in-memory RefreshTokenRepository
type fakeRefreshTokenRepository struct {
	mu     sync.Mutex
	tokens map[uint]domain.RefreshToken
	nextID uint
}

func newFakeRefreshTokenRepository() *fakeRefreshTokenRepository {
	return &fakeRefreshTokenRepository{tokens: make(map[uint]domain.RefreshToken), nextID: 1}
}

func (r *fakeRefreshTokenRepository) Create(_ context.Context, token *domain.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	token.ID = r.nextID
	r.nextID++
	r.tokens[token.ID] = *token
	return nil
}

func (r *fakeRefreshTokenRepository) GetByTokenHash(_ context.Context, tokenHash string) (*domain.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.TokenHash == tokenHash {
			t := t
			return &t, nil
		}
	}
	return nil, repositories.ErrRefreshTokenNotFound
}

func (r *fakeRefreshTokenRepository) Revoke(_ context.Context, id uint, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[id]
	if !ok || t.RevokedAt != nil {
		return repositories.ErrRefreshTokenNotFound
	}
	t.RevokedAt = &at
	r.tokens[id] = t
	return nil
}

func (r *fakeRefreshTokenRepository) RevokeByTokenHash(_ context.Context, tokenHash string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, t := range r.tokens {
		if t.TokenHash == tokenHash && t.RevokedAt == nil {
			t.RevokedAt = &at
			r.tokens[id] = t
		}
	}
	return nil
}

func (r *fakeRefreshTokenRepository) RevokeAllByAccountID(_ context.Context, accountID uint, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, t := range r.tokens {
		if t.AccountID == accountID && t.RevokedAt == nil {
			t.RevokedAt = &at
			r.tokens[id] = t
		}
	}
	return nil
}

func (r *fakeRefreshTokenRepository) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, t := range r.tokens {
		if t.ExpiresAt.Before(before) {
			delete(r.tokens, id)
			n++
		}
	}
	return n, nil
}

func (r *fakeRefreshTokenRepository) expireAll(accountID uint, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, t := range r.tokens {
		if t.AccountID == accountID {
			t.ExpiresAt = at
			r.tokens[id] = t
		}
	}
}

func (r *fakeRefreshTokenRepository) active(accountID uint) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, t := range r.tokens {
		if t.AccountID == accountID && t.RevokedAt == nil {
			n++
		}
	}
	return n
}

type fixture struct {
	clock         *fakeClock
	accounts      *fakeAccountRepository
	refreshTokens *fakeRefreshTokenRepository
	issuer        *jwt.Issuer
	attempts      *LoginAttemptService
	auth          *AuthService
	admin         *AccountService
	logs          *observer.ObservedLogs
}

func newFixture(t *testing.T, policy domain.SecurityPolicy) *fixture {
	t.Helper()

	clock := newFakeClock()
	accounts := newFakeAccountRepository()
	refreshTokens := newFakeRefreshTokenRepository()
	hasher := password.NewHasher(bcrypt.MinCost)
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)

	issuer, err := jwt.NewIssuer(jwt.Config{
		Secret:     testSecret,
		Issuer:     "it-incidents-test",
		AccessTTL:  24 * time.Hour,
		RefreshTTL: 7 * 24 * time.Hour,
	}, jwt.WithClock(clock.Now))
	require.NoError(t, err)

	attempts := NewLoginAttemptService(accounts, policy, logger, WithClock(clock.Now))

	return &fixture{
		clock:         clock,
		accounts:      accounts,
		refreshTokens: refreshTokens,
		issuer:        issuer,
		attempts:      attempts,
		logs:          logs,
		auth:          NewAuthService(accounts, refreshTokens, attempts, hasher, issuer, policy, logger, WithClock(clock.Now)),
		admin:         NewAccountService(accounts, refreshTokens, hasher, logger, WithClock(clock.Now)),
	}
}

// createApproved provisions an approved USER account with testPassword
func (f *fixture) createApproved(t *testing.T, username string) *domain.Account {
	t.Helper()
	account, err := f.auth.CreateAccount(context.Background(), &CreateAccountInput{
		Username:  username,
		Email:     username + "@x.com",
		Password:  testPassword,
		FirstName: "Test",
		LastName:  "User",
		Role:      domain.RoleUser,
		Approved:  true,
	})
	require.NoError(t, err)
	return account
}

func (f *fixture) login(identifier, pw string) (*AuthResponse, error) {
	return f.auth.Authenticate(context.Background(), &LoginInput{Identifier: identifier, Password: pw})
}
