// internal/repository/invite.go
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

type InviteCodeRepository struct {
	db *gorm.DB
}

func NewInviteCodeRepository(db *gorm.DB) *InviteCodeRepository {
	return &InviteCodeRepository{db: db}
}

func (r *InviteCodeRepository) FindByCode(ctx context.Context, code string) (*model.InviteCode, error) {
	var invite model.InviteCode
	if err := r.db.WithContext(ctx).First(&invite, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInviteCodeNotFound
		}
		return nil, fmt.Errorf("finding invite code: %w", err)
	}
	return &invite, nil
}

func (r *InviteCodeRepository) FindByCompany(ctx context.Context, companyID uint64) ([]model.InviteCode, error) {
	var invites []model.InviteCode
	if err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Find(&invites).Error; err != nil {
		return nil, fmt.Errorf("finding company invite codes: %w", err)
	}
	return invites, nil
}

func (r *InviteCodeRepository) Create(ctx context.Context, invite *model.InviteCode) error {
	if err := r.db.WithContext(ctx).Create(invite).Error; err != nil {
		return fmt.Errorf("creating invite code: %w", err)
	}
	return nil
}

func (r *InviteCodeRepository) Update(ctx context.Context, invite *model.InviteCode) error {
	if err := r.db.WithContext(ctx).Save(invite).Error; err != nil {
		return fmt.Errorf("updating invite code: %w", err)
	}
	return nil
}

func (r *InviteCodeRepository) Delete(ctx context.Context, code string) error {
	if err := r.db.WithContext(ctx).Delete(&model.InviteCode{}, "code = ?", code).Error; err != nil {
		return fmt.Errorf("deleting invite code: %w", err)
	}
	return nil
}

func (r *InviteCodeRepository) DeleteByCompany(ctx context.Context, companyID uint64) error {
	if err := r.db.WithContext(ctx).
		Delete(&model.InviteCode{}, "company_id = ?", companyID).Error; err != nil {
		return fmt.Errorf("deleting company invite codes: %w", err)
	}
	return nil
}

type UsedInviteCodeRepository struct {
	db *gorm.DB
}

func NewUsedInviteCodeRepository(db *gorm.DB) *UsedInviteCodeRepository {
	return &UsedInviteCodeRepository{db: db}
}

// WasUsedBy reports whether the identity has consumed this code before.
// The ledger is append-only, so a hit is permanent.
func (r *UsedInviteCodeRepository) WasUsedBy(ctx context.Context, identity uuid.UUID, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&model.UsedInviteCode{}).
		Where("identity = ? AND code = ?", identity, code).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("checking used invite code: %w", err)
	}
	return count > 0, nil
}

func (r *UsedInviteCodeRepository) Create(ctx context.Context, used *model.UsedInviteCode) error {
	if err := r.db.WithContext(ctx).Create(used).Error; err != nil {
		return fmt.Errorf("recording used invite code: %w", err)
	}
	return nil
}
