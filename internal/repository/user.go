// internal/repository/user.go
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/tomvanloon/signnet/internal/domain"
	"github.com/tomvanloon/signnet/internal/model"
	"gorm.io/gorm"
)

// UserAccountRepository reads and writes UserAccount rows. Constructed over
// either the root handle or a transaction handle; procedures that span
// entities build their repositories over the transaction.
type UserAccountRepository struct {
	db *gorm.DB
}

func NewUserAccountRepository(db *gorm.DB) *UserAccountRepository {
	return &UserAccountRepository{db: db}
}

func (r *UserAccountRepository) FindByIdentity(ctx context.Context, identity uuid.UUID) (*model.UserAccount, error) {
	var account model.UserAccount
	if err := r.db.WithContext(ctx).First(&account, "identity = ?", identity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("finding account: %w", err)
	}
	return &account, nil
}

func (r *UserAccountRepository) FindByEmail(ctx context.Context, email string) (*model.UserAccount, error) {
	var account model.UserAccount
	if err := r.db.WithContext(ctx).First(&account, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("finding account by email: %w", err)
	}
	return &account, nil
}

func (r *UserAccountRepository) Create(ctx context.Context, account *model.UserAccount) error {
	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		return fmt.Errorf("creating account: %w", err)
	}
	return nil
}

func (r *UserAccountRepository) Update(ctx context.Context, account *model.UserAccount) error {
	if err := r.db.WithContext(ctx).Save(account).Error; err != nil {
		return fmt.Errorf("updating account: %w", err)
	}
	return nil
}

// SetActiveCompany moves the account's active-company cursor. A nil id
// clears the cursor.
func (r *UserAccountRepository) SetActiveCompany(ctx context.Context, identity uuid.UUID, companyID *uint64) error {
	if err := r.db.WithContext(ctx).
		Model(&model.UserAccount{}).
		Where("identity = ?", identity).
		Update("active_company_id", companyID).Error; err != nil {
		return fmt.Errorf("setting active company: %w", err)
	}
	return nil
}
