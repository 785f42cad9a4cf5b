package config

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"it-incidents-backend/internal/adapters/persistence/repositories"
	"it-incidents-backend/internal/core/domain"
	"it-incidents-backend/internal/core/services"
	"it-incidents-backend/internal/pkg/jwt"
	"it-incidents-backend/internal/pkg/password"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// memoryAccounts is the slice of AccountRepository the seeder touches
type memoryAccounts struct {
	mu       sync.Mutex
	accounts []domain.Account
}

func (m *memoryAccounts) find(match func(domain.Account) bool) *domain.Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if match(a) {
			a := a
			return &a
		}
	}
	return nil
}

func (m *memoryAccounts) FindByUsernameOrEmail(_ context.Context, identifier string) (*domain.Account, error) {
	if a := m.find(func(a domain.Account) bool { return a.Username == identifier || a.Email == identifier }); a != nil {
		return a, nil
	}
	return nil, repositories.ErrAccountNotFound
}

func (m *memoryAccounts) FindByID(_ context.Context, id uint) (*domain.Account, error) {
	if a := m.find(func(a domain.Account) bool { return a.ID == id }); a != nil {
		return a, nil
	}
	return nil, repositories.ErrAccountNotFound
}

func (m *memoryAccounts) ExistsByUsername(_ context.Context, username string) (bool, error) {
	return m.find(func(a domain.Account) bool { return a.Username == username }) != nil, nil
}

func (m *memoryAccounts) ExistsByEmail(_ context.Context, email string) (bool, error) {
	return m.find(func(a domain.Account) bool { return a.Email == email }) != nil, nil
}

func (m *memoryAccounts) Create(_ context.Context, account *domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	account.ID = uint(len(m.accounts) + 1)
	m.accounts = append(m.accounts, *account)
	return nil
}

func (m *memoryAccounts) UpdateLocked(context.Context, uint, func(*domain.Account) error) (*domain.Account, error) {
	return nil, errors.New("not used by the seeder")
}

func (m *memoryAccounts) List(context.Context, int, int) ([]*domain.Account, int64, error) {
	return nil, 0, errors.New("not used by the seeder")
}

func newTestSeeder(t *testing.T, accounts *memoryAccounts) *Seeder {
	t.Helper()
	issuer, err := jwt.NewIssuer(jwt.Config{
		Secret:     validSecret,
		Issuer:     "seed-test",
		AccessTTL:  time.Hour,
		RefreshTTL: 24 * time.Hour,
	})
	require.NoError(t, err)

	policy := domain.DefaultSecurityPolicy()
	log := zap.NewNop()
	auth := services.NewAuthService(
		accounts,
		nil,
		services.NewLoginAttemptService(accounts, policy, log),
		password.NewHasher(bcrypt.MinCost),
		issuer,
		policy,
		log,
	)
	return NewSeeder(accounts, auth, log)
}

func TestSeeder_Run(t *testing.T) {
	ctx := context.Background()
	accounts := &memoryAccounts{}
	seeder := newTestSeeder(t, accounts)

	seeds := []SeedAccount{
		{Username: "admin", Email: "admin@incidents.local", Password: "Admin@123", Role: domain.RoleAdmin},
		{Username: "user", Email: "user@incidents.local", Password: "", Role: domain.RoleUser},
	}
	require.NoError(t, seeder.Run(ctx, seeds))

	require.Len(t, accounts.accounts, 1, "a seed without password is skipped")
	admin := accounts.accounts[0]
	assert.Equal(t, "admin", admin.Username)
	assert.Equal(t, domain.RoleAdmin, admin.Role)
	assert.True(t, admin.Approved)
	assert.True(t, admin.Enabled)
	assert.NotEqual(t, "Admin@123", admin.PasswordHash)

	// A second run leaves existing accounts alone
	seeds[0].Password = "Other@456"
	require.NoError(t, seeder.Run(ctx, seeds))
	require.Len(t, accounts.accounts, 1)
	assert.Equal(t, admin.PasswordHash, accounts.accounts[0].PasswordHash)
}

func TestSeeder_RunRejectsWeakPassword(t *testing.T) {
	seeder := newTestSeeder(t, &memoryAccounts{})

	err := seeder.Run(context.Background(), []SeedAccount{
		{Username: "admin", Email: "admin@incidents.local", Password: "admin", Role: domain.RoleAdmin},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrWeakPassword)
}

func TestSeedAccountsFromEnv(t *testing.T) {
	t.Setenv("SEED_ADMIN_USERNAME", "root")
	t.Setenv("SEED_ADMIN_EMAIL", "")
	t.Setenv("SEED_ADMIN_PASSWORD", "Admin@123")
	t.Setenv("SEED_USER_USERNAME", "")
	t.Setenv("SEED_USER_EMAIL", "")
	t.Setenv("SEED_USER_PASSWORD", "")

	seeds := SeedAccountsFromEnv()
	require.Len(t, seeds, 2)
	assert.Equal(t, SeedAccount{Username: "root", Email: "admin@incidents.local", Password: "Admin@123", Role: domain.RoleAdmin}, seeds[0])
	assert.Equal(t, "user", seeds[1].Username)
	assert.Empty(t, seeds[1].Password)
}
