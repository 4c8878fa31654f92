// internal/repository/project.go
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomvanloon/signnet/internal/domain"
	"github.com/tomvanloon/signnet/internal/model"
	"gorm.io/gorm"
)

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) FindByID(ctx context.Context, id uint64) (*model.Project, error) {
	var project model.Project
	if err := r.db.WithContext(ctx).First(&project, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, fmt.Errorf("finding project: %w", err)
	}
	return &project, nil
}

func (r *ProjectRepository) FindByOwnerCompany(ctx context.Context, companyID uint64) ([]model.Project, error) {
	var projects []model.Project
	if err := r.db.WithContext(ctx).
		Where("owner_company_id = ?", companyID).
		Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("finding owned projects: %w", err)
	}
	return projects, nil
}

func (r *ProjectRepository) Create(ctx context.Context, project *model.Project) error {
	if err := r.db.WithContext(ctx).Create(project).Error; err != nil {
		return fmt.Errorf("creating project: %w", err)
	}
	return nil
}

func (r *ProjectRepository) Delete(ctx context.Context, id uint64) error {
	if err := r.db.WithContext(ctx).Delete(&model.Project{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	return nil
}

type ProjectMemberRepository struct {
	db *gorm.DB
}

func NewProjectMemberRepository(db *gorm.DB) *ProjectMemberRepository {
	return &ProjectMemberRepository{db: db}
}

// FindActive returns the Invited or Accepted row for (project, company).
// Terminal rows are history and do not match.
func (r *ProjectMemberRepository) FindActive(ctx context.Context, projectID, companyID uint64) (*model.ProjectMember, error) {
	var member model.ProjectMember
	if err := r.db.WithContext(ctx).
		Where("project_id = ? AND company_id = ? AND status IN ?",
			projectID, companyID,
			[]model.ProjectMemberStatus{model.ProjectInvited, model.ProjectAccepted}).
		First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrMembershipNotFound
		}
		return nil, fmt.Errorf("finding project member: %w", err)
	}
	return &member, nil
}

func (r *ProjectMemberRepository) ListByProject(ctx context.Context, projectID uint64) ([]model.ProjectMember, error) {
	var members []model.ProjectMember
	if err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Find(&members).Error; err != nil {
		return nil, fmt.Errorf("listing project members: %w", err)
	}
	return members, nil
}

// ListByCompany returns the project membership rows of one company across
// all projects, index-backed on company_id.
func (r *ProjectMemberRepository) ListByCompany(ctx context.Context, companyID uint64) ([]model.ProjectMember, error) {
	var members []model.ProjectMember
	if err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Find(&members).Error; err != nil {
		return nil, fmt.Errorf("listing company project memberships: %w", err)
	}
	return members, nil
}

func (r *ProjectMemberRepository) CountAccepted(ctx context.Context, projectID uint64) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&model.ProjectMember{}).
		Where("project_id = ? AND status = ?", projectID, model.ProjectAccepted).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("counting accepted project members: %w", err)
	}
	return count, nil
}

func (r *ProjectMemberRepository) Create(ctx context.Context, member *model.ProjectMember) error {
	if err := r.db.WithContext(ctx).Create(member).Error; err != nil {
		return fmt.Errorf("creating project member: %w", err)
	}
	return nil
}

func (r *ProjectMemberRepository) Update(ctx context.Context, member *model.ProjectMember) error {
	if err := r.db.WithContext(ctx).Save(member).Error; err != nil {
		return fmt.Errorf("updating project member: %w", err)
	}
	return nil
}

func (r *ProjectMemberRepository) Delete(ctx context.Context, id uint64) error {
	if err := r.db.WithContext(ctx).Delete(&model.ProjectMember{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("deleting project member: %w", err)
	}
	return nil
}

// DeleteTerminal sweeps Left/Kicked history rows for (project, company),
// clearing the way for a re-invite.
func (r *ProjectMemberRepository) DeleteTerminal(ctx context.Context, projectID, companyID uint64) error {
	if err := r.db.WithContext(ctx).
		Where("project_id = ? AND company_id = ? AND status IN ?",
			projectID, companyID,
			[]model.ProjectMemberStatus{model.ProjectLeft, model.ProjectKicked}).
		Delete(&model.ProjectMember{}).Error; err != nil {
		return fmt.Errorf("deleting terminal project members: %w", err)
	}
	return nil
}

func (r *ProjectMemberRepository) DeleteByProject(ctx context.Context, projectID uint64) error {
	if err := r.db.WithContext(ctx).
		Delete(&model.ProjectMember{}, "project_id = ?", projectID).Error; err != nil {
		return fmt.Errorf("deleting project members: %w", err)
	}
	return nil
}

type ProjectChatRepository struct {
	db *gorm.DB
}

func NewProjectChatRepository(db *gorm.DB) *ProjectChatRepository {
	return &ProjectChatRepository{db: db}
}

func (r *ProjectChatRepository) Create(ctx context.Context, msg *model.ProjectChat) error {
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return fmt.Errorf("creating project chat: %w", err)
	}
	return nil
}

func (r *ProjectChatRepository) ListByProject(ctx context.Context, projectID uint64) ([]model.ProjectChat, error) {
	var msgs []model.ProjectChat
	if err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("id").
		Find(&msgs).Error; err != nil {
		return nil, fmt.Errorf("listing project chat: %w", err)
	}
	return msgs, nil
}

func (r *ProjectChatRepository) DeleteByProject(ctx context.Context, projectID uint64) error {
	if err := r.db.WithContext(ctx).
		Delete(&model.ProjectChat{}, "project_id = ?", projectID).Error; err != nil {
		return fmt.Errorf("deleting project chat: %w", err)
	}
	return nil
}
