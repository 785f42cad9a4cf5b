package repositories

import (
	"context"

	"it-incidents-backend/internal/adapters/persistence/models"
	"it-incidents-backend/internal/core/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// accountRepository implements AccountRepository interface
type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

// FindByUsernameOrEmail matches the identifier against both username and email
func (r *accountRepository) FindByUsernameOrEmail(ctx context.Context, identifier string) (*domain.Account, error) {
	var account models.Account
	err := r.db.WithContext(ctx).
		Where("username = ? OR email = ?", identifier, identifier).
		First(&account).Error
	if err != nil {
		return nil, translateNotFound(err, ErrAccountNotFound)
	}
	return account.ToDomain(), nil
}

// FindByID gets an account by ID
func (r *accountRepository) FindByID(ctx context.Context, id uint) (*domain.Account, error) {
	var account models.Account
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&account).Error
	if err != nil {
		return nil, translateNotFound(err, ErrAccountNotFound)
	}
	return account.ToDomain(), nil
}

// ExistsByUsername checks if username exists
func (r *accountRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Account{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

// ExistsByEmail checks if email exists
func (r *accountRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Account{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

// Create inserts a new account and copies the generated fields back.
// A unique index violation returns ErrDuplicateUsername or ErrDuplicateEmail.
func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	row := models.NewAccount(account)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return translateDuplicate(err)
	}
	account.ID = row.ID
	account.CreatedAt = row.CreatedAt
	account.UpdatedAt = row.UpdatedAt
	return nil
}

// UpdateLocked runs fn against the account inside its own transaction with SELECT ... FOR UPDATE
func (r *accountRepository) UpdateLocked(ctx context.Context, id uint, fn func(*domain.Account) error) (*domain.Account, error) {
	var updated *domain.Account
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row models.Account
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&row).Error; err != nil {
			return translateNotFound(err, ErrAccountNotFound)
		}

		account := row.ToDomain()
		if err := fn(account); err != nil {
			return err
		}

		next := models.NewAccount(account)
		if err := tx.Save(next).Error; err != nil {
			return err
		}
		account.UpdatedAt = next.UpdatedAt
		updated = account
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// List lists accounts with pagination
func (r *accountRepository) List(ctx context.Context, offset, limit int) ([]*domain.Account, int64, error) {
	var rows []*models.Account
	var total int64

	// Count total
	if err := r.db.WithContext(ctx).Model(&models.Account{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Get accounts with pagination
	if err := r.db.WithContext(ctx).Order("id ASC").Offset(offset).Limit(limit).Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	accounts := make([]*domain.Account, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, row.ToDomain())
	}
	return accounts, total, nil
}
