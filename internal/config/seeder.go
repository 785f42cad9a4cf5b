package config

import (
	"context"
	"fmt"

	"it-incidents-backend/internal/adapters/persistence/repositories"
	"it-incidents-backend/internal/core/domain"
	"it-incidents-backend/internal/core/services"

	"go.uber.org/zap"
)

// SeedAccount describes one account the seeder provisions
type SeedAccount struct {
	Username string
	Email    string
	Password string
	Role     domain.Role
}

// SeedAccountsFromEnv returns the admin and user seed accounts. An empty
// password leaves that account out.
func SeedAccountsFromEnv() []SeedAccount {
	return []SeedAccount{
		{
			Username: getEnv("SEED_ADMIN_USERNAME", "admin"),
			Email:    getEnv("SEED_ADMIN_EMAIL", "admin@incidents.local"),
			Password: getEnv("SEED_ADMIN_PASSWORD", ""),
			Role:     domain.RoleAdmin,
		},
		{
			Username: getEnv("SEED_USER_USERNAME", "user"),
			Email:    getEnv("SEED_USER_EMAIL", "user@incidents.local"),
			Password: getEnv("SEED_USER_PASSWORD", ""),
			Role:     domain.RoleUser,
		},
	}
}

// Seeder handles database seeding
type Seeder struct {
	accounts repositories.AccountRepository
	auth     *services.AuthService
	log      *zap.Logger
}

// NewSeeder creates a new seeder instance
func NewSeeder(accounts repositories.AccountRepository, auth *services.AuthService, log *zap.Logger) *Seeder {
	return &Seeder{accounts: accounts, auth: auth, log: log}
}

// Run creates every seed account that does not exist yet. Seeded accounts are approved.
func (s *Seeder) Run(ctx context.Context, seeds []SeedAccount) error {
	s.log.Info("running database seeders")

	for _, seed := range seeds {
		if seed.Password == "" {
			s.log.Warn("seed account skipped, no password set", zap.String("username", seed.Username))
			continue
		}

		exists, err := s.accounts.ExistsByUsername(ctx, seed.Username)
		if err != nil {
			return fmt.Errorf("check seed account %s: %w", seed.Username, err)
		}
		if exists {
			continue
		}

		account, err := s.auth.CreateAccount(ctx, &services.CreateAccountInput{
			Username: seed.Username,
			Email:    seed.Email,
			Password: seed.Password,
			Role:     seed.Role,
			Approved: true,
		})
		if err != nil {
			return fmt.Errorf("seed account %s: %w", seed.Username, err)
		}
		s.log.Info("seed account created",
			zap.String("username", account.Username),
			zap.String("role", string(account.Role)),
		)
	}

	s.log.Info("database seeding completed")
	return nil
}
