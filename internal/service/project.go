// internal/service/project.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/tomvanloon/signnet/internal/domain"
	"github.com/tomvanloon/signnet/internal/model"
	"github.com/tomvanloon/signnet/internal/repository"
	"gorm.io/gorm"
)

// ProjectService drives multi-company project rooms: invites piggyback on
// an accepted connection, membership transitions are per company, and a
// project that loses its last Accepted member is dissolved on the spot.
type ProjectService struct {
	db        *gorm.DB
	authority *Authority
	notifier  *Notifier
	validate  *validator.Validate
}

func NewProjectService(db *gorm.DB, authority *Authority, notifier *Notifier) *ProjectService {
	return &ProjectService{
		db:        db,
		authority: authority,
		notifier:  notifier,
		validate:  validator.New(),
	}
}

type CreateProjectInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=1000"`
}

// Create opens a project room owned by the caller's company, which starts
// as its first Accepted member.
func (s *ProjectService) Create(ctx context.Context, caller uuid.UUID, input CreateProjectInput) (*model.Project, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	var project *model.Project
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, companyID, err := s.authority.Resolve(ctx, tx, caller, model.RoleAdmin)
		if err != nil {
			return err
		}

		project = &model.Project{
			OwnerCompanyID: companyID,
			Name:           input.Name,
			Description:    input.Description,
			CreatedBy:      caller,
		}
		if err := repository.NewProjectRepository(tx).Create(ctx, project); err != nil {
			return err
		}
		return repository.NewProjectMemberRepository(tx).Create(ctx, &model.ProjectMember{
			ProjectID: project.ID,
			CompanyID: companyID,
			Status:    model.ProjectAccepted,
			InvitedBy: caller,
			JoinedAt:  time.Now(),
		})
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

// Invite asks another company into the project. Owner-company Admins only,
// and only across an already accepted connection: the invite rides on the
// bilateral trust the two companies established. Stale Left/Kicked history
// for the pair is swept so the company can be invited again.
func (s *ProjectService) Invite(ctx context.Context, caller uuid.UUID, projectID, targetCompanyID uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, myCompanyID, err := s.authority.Resolve(ctx, tx, caller, model.RoleAdmin)
		if err != nil {
			return err
		}

		project, err := repository.NewProjectRepository(tx).FindByID(ctx, projectID)
		if err != nil {
			return err
		}
		if project.OwnerCompanyID != myCompanyID {
			return domain.ErrNotOwnerCompany
		}
		if targetCompanyID == myCompanyID {
			return domain.ErrSelfTarget
		}
		if _, err := repository.NewCompanyRepository(tx).FindByID(ctx, targetCompanyID); err != nil {
			return err
		}

		conn, err := repository.NewConnectionRepository(tx).FindByPair(ctx, myCompanyID, targetCompanyID)
		if err != nil || conn.Status != model.ConnectionAccepted {
			return domain.ErrConnectionRequired
		}

		members := repository.NewProjectMemberRepository(tx)
		if _, err := members.FindActive(ctx, projectID, targetCompanyID); err == nil {
			return domain.ErrProjectInvitePending
		} else if !errors.Is(err, domain.ErrMembershipNotFound) {
			return err
		}
		if err := members.DeleteTerminal(ctx, projectID, targetCompanyID); err != nil {
			return err
		}

		if err := members.Create(ctx, &model.ProjectMember{
			ProjectID: projectID,
			CompanyID: targetCompanyID,
			Status:    model.ProjectInvited,
			InvitedBy: caller,
			JoinedAt:  time.Now(),
		}); err != nil {
			return err
		}

		return s.notifier.NotifyCompanyRole(ctx, tx, targetCompanyID, model.RoleAdmin, nil,
			model.NotifyProjectInvited, "Project invitation",
			fmt.Sprintf("Your company was invited to the project %q.", project.Name))
	})
}

// AcceptInvite turns the caller company's Invited row into Accepted,
// refreshing its joined-at.
func (s *ProjectService) AcceptInvite(ctx context.Context, caller uuid.UUID, projectID uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, myCompanyID, err := s.authority.Resolve(ctx, tx, caller, model.RoleAdmin)
		if err != nil {
			return err
		}

		project, err := repository.NewProjectRepository(tx).FindByID(ctx, projectID)
		if err != nil {
			return err
		}

		members := repository.NewProjectMemberRepository(tx)
		member, err := members.FindActive(ctx, projectID, myCompanyID)
		if err != nil {
			return domain.ErrNotInvited
		}
		if member.Status == model.ProjectAccepted {
			return domain.ErrProjectInvitePending
		}

		member.Status = model.ProjectAccepted
		member.JoinedAt = time.Now()
		if err := members.Update(ctx, member); err != nil {
			return err
		}

		return s.notifier.NotifyCompanyRole(ctx, tx, project.OwnerCompanyID, model.RoleAdmin, nil,
			model.NotifyProjectInviteAccepted, "Project invite accepted",
			fmt.Sprintf("A company joined the project %q.", project.Name))
	})
}

// DeclineInvite deletes the caller company's Invited row.
func (s *ProjectService) DeclineInvite(ctx context.Context, caller uuid.UUID, projectID uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, myCompanyID, err := s.authority.Resolve(ctx, tx, caller, model.RoleAdmin)
		if err != nil {
			return err
		}

		project, err := repository.NewProjectRepository(tx).FindByID(ctx, projectID)
		if err != nil {
			return err
		}

		members := repository.NewProjectMemberRepository(tx)
		member, err := members.FindActive(ctx, projectID, myCompanyID)
		if err != nil || member.Status != model.ProjectInvited {
			return domain.ErrNotInvited
		}

		if err := members.Delete(ctx, member.ID); err != nil {
			return err
		}

		return s.notifier.NotifyCompanyRole(ctx, tx, project.OwnerCompanyID, model.RoleAdmin, nil,
			model.NotifyProjectInviteDeclined, "Project invite declined",
			fmt.Sprintf("A company declined the invitation to %q.", project.Name))
	})
}

// Leave transitions the caller company's Accepted row to Left. The owner
// company cannot leave its own project; it deletes the project instead.
// If the departure leaves no Accepted rows at all, the project dissolves.
func (s *ProjectService) Leave(ctx context.Context, caller uuid.UUID, projectID uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, myCompanyID, err := s.authority.Resolve(ctx, tx, caller, model.RoleAdmin)
		if err != nil {
			return err
		}

		project, err := repository.NewProjectRepository(tx).FindByID(ctx, projectID)
		if err != nil {
			return err
		}
		if project.OwnerCompanyID == myCompanyID {
			return domain.ErrOwnerCompanyFixed
		}

		members := repository.NewProjectMemberRepository(tx)
		member, err := members.FindActive(ctx, projectID, myCompanyID)
		if err != nil || member.Status != model.ProjectAccepted {
			return domain.ErrNotProjectMember
		}

		member.Status = model.ProjectLeft
		if err := members.Update(ctx, member); err != nil {
			return err
		}

		dissolved, err := dissolveProjectIfAbandoned(ctx, tx, projectID)
		if err != nil {
			return err
		}
		if dissolved {
			return nil
		}

		return s.notifier.NotifyCompanyRole(ctx, tx, project.OwnerCompanyID, model.RoleAdmin, nil,
			model.NotifyProjectMemberLeft, "Company left project",
			fmt.Sprintf("A company left the project %q.", project.Name))
	})
}

// Kick transitions a member company's Accepted row to Kicked. Owner-company
// Admins only; the owner company cannot kick itself.
func (s *ProjectService) Kick(ctx context.Context, caller uuid.UUID, projectID, targetCompanyID uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, myCompanyID, err := s.authority.Resolve(ctx, tx, caller, model.RoleAdmin)
		if err != nil {
			return err
		}

		project, err := repository.NewProjectRepository(tx).FindByID(ctx, projectID)
		if err != nil {
			return err
		}
		if project.OwnerCompanyID != myCompanyID {
			return domain.ErrNotOwnerCompany
		}
		if targetCompanyID == myCompanyID {
			return domain.ErrSelfTarget
		}

		members := repository.NewProjectMemberRepository(tx)
		member, err := members.FindActive(ctx, projectID, targetCompanyID)
		if err != nil || member.Status != model.ProjectAccepted {
			return domain.ErrNotProjectMember
		}

		member.Status = model.ProjectKicked
		if err := members.Update(ctx, member); err != nil {
			return err
		}

		if _, err := dissolveProjectIfAbandoned(ctx, tx, projectID); err != nil {
			return err
		}

		if err := s.notifier.NotifyCompanyRole(ctx, tx, targetCompanyID, model.RoleAdmin, nil,
			model.NotifyProjectKicked, "Removed from project",
			fmt.Sprintf("Your company was removed from the project %q.", project.Name)); err != nil {
			return err
		}

		slog.InfoContext(ctx, "audit: project member kicked",
			"actor", idShort(caller), "project", projectID, "target", targetCompanyID)
		return nil
	})
}

// Delete cascades away a project unconditionally. Owner-company Admins
// only. Accepted member companies are told before the room vanishes.
func (s *ProjectService) Delete(ctx context.Context, caller uuid.UUID, projectID uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, myCompanyID, err := s.authority.Resolve(ctx, tx, caller, model.RoleAdmin)
		if err != nil {
			return err
		}

		project, err := repository.NewProjectRepository(tx).FindByID(ctx, projectID)
		if err != nil {
			return err
		}
		if project.OwnerCompanyID != myCompanyID {
			return domain.ErrNotOwnerCompany
		}

		members, err := repository.NewProjectMemberRepository(tx).ListByProject(ctx, projectID)
		if err != nil {
			return err
		}
		for _, member := range members {
			if member.CompanyID == myCompanyID || member.Status != model.ProjectAccepted {
				continue
			}
			if err := s.notifier.NotifyCompanyRole(ctx, tx, member.CompanyID, model.RoleAdmin, nil,
				model.NotifyProjectDeleted, "Project deleted",
				fmt.Sprintf("The project %q was deleted by its owner.", project.Name)); err != nil {
				return err
			}
		}

		if err := deleteProjectCascade(ctx, tx, projectID); err != nil {
			return err
		}

		slog.InfoContext(ctx, "audit: project deleted",
			"actor", idShort(caller), "project", projectID, "name", project.Name)
		return nil
	})
}

type SendProjectChatInput struct {
	ProjectID uint64 `json:"project_id" validate:"required"`
	Text      string `json:"text" validate:"required,max=500"`
}

// SendChat posts into a project room. Field role at minimum and an
// Accepted membership for the sender's company.
func (s *ProjectService) SendChat(ctx context.Context, caller uuid.UUID, input SendProjectChatInput) (*model.ProjectChat, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	var msg *model.ProjectChat
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, myCompanyID, err := s.authority.Resolve(ctx, tx, caller, model.RoleField)
		if err != nil {
			return err
		}

		if _, err := repository.NewProjectRepository(tx).FindByID(ctx, input.ProjectID); err != nil {
			return err
		}
		member, err := repository.NewProjectMemberRepository(tx).FindActive(ctx, input.ProjectID, myCompanyID)
		if err != nil || member.Status != model.ProjectAccepted {
			return domain.ErrNotProjectMember
		}

		msg = &model.ProjectChat{
			ProjectID: input.ProjectID,
			Sender:    caller,
			Text:      input.Text,
		}
		return repository.NewProjectChatRepository(tx).Create(ctx, msg)
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// List returns every project the caller's company participates in,
// including rooms it is only Invited to.
func (s *ProjectService) List(ctx context.Context, caller uuid.UUID) ([]model.Project, error) {
	var projects []model.Project
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, myCompanyID, err := s.authority.Resolve(ctx, tx, caller, model.RolePending)
		if err != nil {
			return err
		}
		rows, err := repository.NewProjectMemberRepository(tx).ListByCompany(ctx, myCompanyID)
		if err != nil {
			return err
		}
		repo := repository.NewProjectRepository(tx)
		for _, row := range rows {
			if row.Status != model.ProjectInvited && row.Status != model.ProjectAccepted {
				continue
			}
			project, err := repo.FindByID(ctx, row.ProjectID)
			if err != nil {
				return err
			}
			projects = append(projects, *project)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return projects, nil
}

// ListChat returns a project's messages to Accepted member companies.
func (s *ProjectService) ListChat(ctx context.Context, caller uuid.UUID, projectID uint64) ([]model.ProjectChat, error) {
	var msgs []model.ProjectChat
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, myCompanyID, err := s.authority.Resolve(ctx, tx, caller, model.RoleField)
		if err != nil {
			return err
		}
		member, err := repository.NewProjectMemberRepository(tx).FindActive(ctx, projectID, myCompanyID)
		if err != nil || member.Status != model.ProjectAccepted {
			return domain.ErrNotProjectMember
		}
		msgs, err = repository.NewProjectChatRepository(tx).ListByProject(ctx, projectID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return msgs, nil
}
