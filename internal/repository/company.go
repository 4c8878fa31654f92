// internal/repository/company.go
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomvanloon/signnet/internal/domain"
	"github.com/tomvanloon/signnet/internal/model"
	"gorm.io/gorm"
)

type CompanyRepository struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

func (r *CompanyRepository) FindByID(ctx context.Context, id uint64) (*model.Company, error) {
	var company model.Company
	if err := r.db.WithContext(ctx).First(&company, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCompanyNotFound
		}
		return nil, fmt.Errorf("finding company: %w", err)
	}
	return &company, nil
}

func (r *CompanyRepository) FindBySlug(ctx context.Context, slug string) (*model.Company, error) {
	var company model.Company
	if err := r.db.WithContext(ctx).First(&company, "slug = ?", slug).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCompanyNotFound
		}
		return nil, fmt.Errorf("finding company by slug: %w", err)
	}
	return &company, nil
}

func (r *CompanyRepository) Create(ctx context.Context, company *model.Company) error {
	if err := r.db.WithContext(ctx).Create(company).Error; err != nil {
		return fmt.Errorf("creating company: %w", err)
	}
	return nil
}

func (r *CompanyRepository) Update(ctx context.Context, company *model.Company) error {
	if err := r.db.WithContext(ctx).Save(company).Error; err != nil {
		return fmt.Errorf("updating company: %w", err)
	}
	return nil
}

func (r *CompanyRepository) Delete(ctx context.Context, id uint64) error {
	if err := r.db.WithContext(ctx).Delete(&model.Company{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("deleting company: %w", err)
	}
	return nil
}

type CapabilityRepository struct {
	db *gorm.DB
}

func NewCapabilityRepository(db *gorm.DB) *CapabilityRepository {
	return &CapabilityRepository{db: db}
}

func (r *CapabilityRepository) FindByCompany(ctx context.Context, companyID uint64) (*model.Capability, error) {
	var cap model.Capability
	if err := r.db.WithContext(ctx).First(&cap, "company_id = ?", companyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCompanyNotFound
		}
		return nil, fmt.Errorf("finding capabilities: %w", err)
	}
	return &cap, nil
}

func (r *CapabilityRepository) Create(ctx context.Context, cap *model.Capability) error {
	if err := r.db.WithContext(ctx).Create(cap).Error; err != nil {
		return fmt.Errorf("creating capabilities: %w", err)
	}
	return nil
}

func (r *CapabilityRepository) Update(ctx context.Context, cap *model.Capability) error {
	if err := r.db.WithContext(ctx).Save(cap).Error; err != nil {
		return fmt.Errorf("updating capabilities: %w", err)
	}
	return nil
}

func (r *CapabilityRepository) DeleteByCompany(ctx context.Context, companyID uint64) error {
	if err := r.db.WithContext(ctx).
		Delete(&model.Capability{}, "company_id = ?", companyID).Error; err != nil {
		return fmt.Errorf("deleting capabilities: %w", err)
	}
	return nil
}
