// internal/repository/member.go
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

type MembershipRepository struct {
	db *gorm.DB
}

func NewMembershipRepository(db *gorm.DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

func (r *MembershipRepository) Find(ctx context.Context, identity uuid.UUID, companyID uint64) (*model.CompanyMember, error) {
	var member model.CompanyMember
	if err := r.db.WithContext(ctx).
		First(&member, "identity = ? AND company_id = ?", identity, companyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrMembershipNotFound
		}
		return nil, fmt.Errorf("finding membership: %w", err)
	}
	return &member, nil
}

// FindByCompany returns every membership row of the company, index-backed
// on company_id.
func (r *MembershipRepository) FindByCompany(ctx context.Context, companyID uint64) ([]model.CompanyMember, error) {
	var members []model.CompanyMember
	if err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Find(&members).Error; err != nil {
		return nil, fmt.Errorf("finding company members: %w", err)
	}
	return members, nil
}

// FindByIdentity returns every membership the identity holds, across all
// companies.
func (r *MembershipRepository) FindByIdentity(ctx context.Context, identity uuid.UUID) ([]model.CompanyMember, error) {
	var members []model.CompanyMember
	if err := r.db.WithContext(ctx).
		Where("identity = ?", identity).
		Find(&members).Error; err != nil {
		return nil, fmt.Errorf("finding memberships: %w", err)
	}
	return members, nil
}

func (r *MembershipRepository) Create(ctx context.Context, member *model.CompanyMember) error {
	if err := r.db.WithContext(ctx).Create(member).Error; err != nil {
		return fmt.Errorf("creating membership: %w", err)
	}
	return nil
}

func (r *MembershipRepository) Update(ctx context.Context, member *model.CompanyMember) error {
	if err := r.db.WithContext(ctx).Save(member).Error; err != nil {
		return fmt.Errorf("updating membership: %w", err)
	}
	return nil
}

func (r *MembershipRepository) Delete(ctx context.Context, id uint64) error {
	if err := r.db.WithContext(ctx).Delete(&model.CompanyMember{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("deleting membership: %w", err)
	}
	return nil
}

func (r *MembershipRepository) DeleteByCompany(ctx context.Context, companyID uint64) error {
	if err := r.db.WithContext(ctx).
		Delete(&model.CompanyMember{}, "company_id = ?", companyID).Error; err != nil {
		return fmt.Errorf("deleting company memberships: %w", err)
	}
	return nil
}
