// internal/service/company.go
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

// CompanyService owns the company aggregate: creation, profile, the
// membership mutators, invite codes, and the full deletion cascade.
type CompanyService struct {
	db        *gorm.DB
	authority *Authority
	notifier  *Notifier
	codes     CodeGenerator
	validate  *validator.Validate
}

func NewCompanyService(db *gorm.DB, authority *Authority, notifier *Notifier, codes CodeGenerator) *CompanyService {
	return &CompanyService{
		db:        db,
		authority: authority,
		notifier:  notifier,
		codes:     codes,
		validate:  validator.New(),
	}
}

type CreateCompanyInput struct {
	Name     string `json:"name" validate:"required,max=50"`
	Slug     string `json:"slug" validate:"required,max=50"`
	Location string `json:"location" validate:"required,max=100"`
}

// Create registers a company, its capability row, and an Owner membership
// for the caller, and moves the caller's active-company cursor to it. A
// caller may own or belong to any number of companies.
func (s *CompanyService) Create(ctx context.Context, caller uuid.UUID, input CreateCompanyInput) (*model.Company, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	company := &model.Company{
		OwnerIdentity: caller,
		Name:          input.Name,
		Slug:          input.Slug,
		Location:      input.Location,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		accounts := repository.NewUserAccountRepository(tx)
		if _, err := accounts.FindByIdentity(ctx, caller); err != nil {
			return domain.ErrUnauthenticated
		}

		companies := repository.NewCompanyRepository(tx)
		if _, err := companies.FindBySlug(ctx, input.Slug); err == nil {
			return domain.ErrSlugTaken
		} else if !errors.Is(err, domain.ErrCompanyNotFound) {
			return err
		}

		if err := companies.Create(ctx, company); err != nil {
			return err
		}
		if err := repository.NewCapabilityRepository(tx).Create(ctx, &model.Capability{CompanyID: company.ID}); err != nil {
			return err
		}
		if err := repository.NewMembershipRepository(tx).Create(ctx, &model.CompanyMember{
			Identity:  caller,
			CompanyID: company.ID,
			Role:      model.RoleOwner,
			JoinedAt:  time.Now(),
		}); err != nil {
			return err
		}
		return accounts.SetActiveCompany(ctx, caller, &company.ID)
	})
	if err != nil {
		return nil, err
	}
	return company, nil
}

type UpdateCompanyInput struct {
	Name      string `json:"name" validate:"required,max=50"`
	Slug      string `json:"slug" validate:"required,max=50"`
	Location  string `json:"location" validate:"required,max=100"`
	Bio       string `json:"bio" validate:"max=500"`
	IsPublic  bool   `json:"is_public"`
	KvkNumber string `json:"kvk_number" validate:"max=20"`
}

func (s *CompanyService) UpdateProfile(ctx context.Context, caller uuid.UUID, input UpdateCompanyInput) (*model.Company, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	var company *model.Company
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, companyID, err := s.authority.Resolve(ctx, tx, caller, model.RoleAdmin)
		if err != nil {
			return err
		}

		companies := repository.NewCompanyRepository(tx)
		company, err = companies.FindByID(ctx, companyID)
		if err != nil {
			return err
		}

		if input.Slug != company.Slug {
			if _, err := companies.FindBySlug(ctx, input.Slug); err == nil {
				return domain.ErrSlugTaken
			} else if !errors.Is(err, domain.ErrCompanyNotFound) {
				return err
			}
		}

		company.Name = input.Name
		company.Slug = input.Slug
		company.Location = input.Location
		company.Bio = input.Bio
		company.IsPublic = input.IsPublic
		company.KvkNumber = input.KvkNumber
		return companies.Update(ctx, company)
	})
	if err != nil {
		return nil, err
	}
	return company, nil
}

type UpdateCapabilitiesInput struct {
	CanInstall     bool `json:"can_install"`
	HasCNC         bool `json:"has_cnc"`
	HasLargeFormat bool `json:"has_large_format"`
	HasBucketTruck bool `json:"has_bucket_truck"`
}

func (s *CompanyService) UpdateCapabilities(ctx context.Context, caller uuid.UUID, input UpdateCapabilitiesInput) (*model.Capability, error) {
	var cap *model.Capability
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, companyID, err := s.authority.Resolve(ctx, tx, caller, model.RoleAdmin)
		if err != nil {
			return err
		}

		caps := repository.NewCapabilityRepository(tx)
		cap, err = caps.FindByCompany(ctx, companyID)
		if err != nil {
			return err
		}
		cap.CanInstall = input.CanInstall
		cap.HasCNC = input.HasCNC
		cap.HasLargeFormat = input.HasLargeFormat
		cap.HasBucketTruck = input.HasBucketTruck
		return caps.Update(ctx, cap)
	})
	if err != nil {
		return nil, err
	}
	return cap, nil
}

func (s *CompanyService) Get(ctx context.Context, id uint64) (*model.Company, error) {
	return repository.NewCompanyRepository(s.db).FindByID(ctx, id)
}

// ListMembers returns the roster of the caller's active company. Pending
// members are quarantined and may not read it.
func (s *CompanyService) ListMembers(ctx context.Context, caller uuid.UUID) ([]model.CompanyMember, error) {
	var members []model.CompanyMember
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, companyID, err := s.authority.Resolve(ctx, tx, caller, model.RoleField)
		if err != nil {
			return err
		}
		members, err = repository.NewMembershipRepository(tx).FindByCompany(ctx, companyID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return members, nil
}

// GenerateInviteCode mints a consumable admission code for the caller's
// company. Zero requested uses is bumped to one.
func (s *CompanyService) GenerateInviteCode(ctx context.Context, caller uuid.UUID, maxUses uint32) (*model.InviteCode, error) {
	if maxUses == 0 {
		maxUses = 1
	}

	code, err := s.codes.Generate()
	if err != nil {
		return nil, err
	}

	invite := &model.InviteCode{
		Code:          code,
		CreatedBy:     caller,
		UsesRemaining: maxUses,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, companyID, err := s.authority.Resolve(ctx, tx, caller, model.RoleAdmin)
		if err != nil {
			return err
		}
		invite.CompanyID = companyID
		return repository.NewInviteCodeRepository(tx).Create(ctx, invite)
	})
	if err != nil {
		return nil, err
	}
	return invite, nil
}

func (s *CompanyService) ListInviteCodes(ctx context.Context, caller uuid.UUID) ([]model.InviteCode, error) {
	var invites []model.InviteCode
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, companyID, err := s.authority.Resolve(ctx, tx, caller, model.RoleAdmin)
		if err != nil {
			return err
		}
		invites, err = repository.NewInviteCodeRepository(tx).FindByCompany(ctx, companyID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return invites, nil
}

// DeleteInviteCode removes a code of the caller's own company. A code
// belonging to another company is reported as not found, not as forbidden.
func (s *CompanyService) DeleteInviteCode(ctx context.Context, caller uuid.UUID, code string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, companyID, err := s.authority.Resolve(ctx, tx, caller, model.RoleAdmin)
		if err != nil {
			return err
		}

		invites := repository.NewInviteCodeRepository(tx)
		invite, err := invites.FindByCode(ctx, code)
		if err != nil {
			return err
		}
		if invite.CompanyID != companyID {
			return domain.ErrInviteCodeNotFound
		}
		return invites.Delete(ctx, code)
	})
}

// Join admits the caller into the company an invite code is scoped to, at
// the Pending quarantine role. The uses counter is re-read and decremented
// inside the same transaction, so two racing joins cannot both consume the
// last use; the code row is deleted outright on its final use. The ledger
// blocks an identity from replaying a code it consumed before.
func (s *CompanyService) Join(ctx context.Context, caller uuid.UUID, code string) (*model.CompanyMember, error) {
	var member *model.CompanyMember
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		accounts := repository.NewUserAccountRepository(tx)
		account, err := accounts.FindByIdentity(ctx, caller)
		if err != nil {
			return domain.ErrUnauthenticated
		}

		invites := repository.NewInviteCodeRepository(tx)
		invite, err := invites.FindByCode(ctx, code)
		if err != nil {
			return err
		}
		if invite.UsesRemaining == 0 {
			return domain.ErrInviteCodeExhausted
		}

		memberships := repository.NewMembershipRepository(tx)
		if _, err := memberships.Find(ctx, caller, invite.CompanyID); err == nil {
			return domain.ErrAlreadyMember
		} else if !errors.Is(err, domain.ErrMembershipNotFound) {
			return err
		}

		used := repository.NewUsedInviteCodeRepository(tx)
		wasUsed, err := used.WasUsedBy(ctx, caller, code)
		if err != nil {
			return err
		}
		if wasUsed {
			return domain.ErrInviteCodeUsed
		}

		member = &model.CompanyMember{
			Identity:  caller,
			CompanyID: invite.CompanyID,
			Role:      model.RolePending,
			JoinedAt:  time.Now(),
		}
		if err := memberships.Create(ctx, member); err != nil {
			return err
		}
		if err := used.Create(ctx, &model.UsedInviteCode{
			Identity:  caller,
			Code:      code,
			CompanyID: invite.CompanyID,
			UsedAt:    time.Now(),
		}); err != nil {
			return err
		}

		if invite.UsesRemaining <= 1 {
			if err := invites.Delete(ctx, code); err != nil {
				return err
			}
		} else {
			invite.UsesRemaining--
			if err := invites.Update(ctx, invite); err != nil {
				return err
			}
		}

		if err := accounts.SetActiveCompany(ctx, caller, &invite.CompanyID); err != nil {
			return err
		}

		return s.notifier.NotifyCompanyRole(ctx, tx, invite.CompanyID, model.RoleAdmin, &caller,
			model.NotifyMemberJoined, "New member joined",
			fmt.Sprintf("%s joined your company and is awaiting a role.", account.Nickname))
	})
	if err != nil {
		return nil, err
	}
	return member, nil
}

// AddColleague attaches an existing account to the caller's company at the
// Member role without consuming an invite code.
func (s *CompanyService) AddColleague(ctx context.Context, caller, colleague uuid.UUID) (*model.CompanyMember, error) {
	var member *model.CompanyMember
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, companyID, err := s.authority.Resolve(ctx, tx, caller, model.RoleAdmin)
		if err != nil {
			return err
		}

		accounts := repository.NewUserAccountRepository(tx)
		target, err := accounts.FindByIdentity(ctx, colleague)
		if err != nil {
			return err
		}

		memberships := repository.NewMembershipRepository(tx)
		if _, err := memberships.Find(ctx, colleague, companyID); err == nil {
			return domain.ErrAlreadyMember
		} else if !errors.Is(err, domain.ErrMembershipNotFound) {
			return err
		}

		member = &model.CompanyMember{
			Identity:  colleague,
			CompanyID: companyID,
			Role:      model.RoleMember,
			JoinedAt:  time.Now(),
		}
		if err := memberships.Create(ctx, member); err != nil {
			return err
		}

		if target.ActiveCompanyID == nil {
			if err := accounts.SetActiveCompany(ctx, colleague, &companyID); err != nil {
				return err
			}
		}

		return s.notifier.NotifyCompanyRole(ctx, tx, companyID, model.RoleAdmin, &caller,
			model.NotifyMemberJoined, "New member added",
			fmt.Sprintf("%s was added to your company.", target.Nickname))
	})
	if err != nil {
		return nil, err
	}
	return member, nil
}

// RemoveColleague deletes a membership below the caller's own role and
// repairs the target's active-company cursor if it pointed here.
func (s *CompanyService) RemoveColleague(ctx context.Context, caller, colleague uuid.UUID) error {
	if caller == colleague {
		return domain.ErrSelfUser
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		me, companyID, err := s.authority.Resolve(ctx, tx, caller, model.RoleAdmin)
		if err != nil {
			return err
		}

		memberships := repository.NewMembershipRepository(tx)
		target, err := memberships.Find(ctx, colleague, companyID)
		if err != nil {
			return err
		}
		if target.Role.Level() >= me.Role.Level() {
			return domain.ErrRoleTooHigh
		}

		if err := memberships.Delete(ctx, target.ID); err != nil {
			return err
		}
		if err := reassignActiveCompany(ctx, tx, colleague, companyID); err != nil {
			return err
		}

		if err := s.notifier.Notify(ctx, tx, colleague, companyID,
			model.NotifyMemberRemoved, "Removed from company",
			"You were removed from the company."); err != nil {
			return err
		}

		slog.InfoContext(ctx, "audit: colleague removed",
			"actor", idShort(caller), "company", companyID, "target", idShort(colleague))
		return nil
	})
}

// Leave removes the caller's membership in their active company. Owners
// must transfer ownership first; a company is never left ownerless.
func (s *CompanyService) Leave(ctx context.Context, caller uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		me, companyID, err := s.authority.Resolve(ctx, tx, caller, model.RolePending)
		if err != nil {
			return err
		}
		if me.Role == model.RoleOwner {
			return domain.ErrOwnerCannotLeave
		}

		if err := repository.NewMembershipRepository(tx).Delete(ctx, me.ID); err != nil {
			return err
		}
		return reassignActiveCompany(ctx, tx, caller, companyID)
	})
}

// ChangeRole sets a colleague's role. Owner-only; the Owner role itself is
// granted exclusively through TransferOwnership.
func (s *CompanyService) ChangeRole(ctx context.Context, caller, target uuid.UUID, newRole model.Role) error {
	if caller == target {
		return domain.ErrSelfUser
	}
	if !newRole.Valid() {
		return fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, newRole)
	}
	if newRole == model.RoleOwner {
		return domain.ErrOwnerRoleReserved
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, companyID, err := s.authority.Resolve(ctx, tx, caller, model.RoleOwner)
		if err != nil {
			return err
		}

		memberships := repository.NewMembershipRepository(tx)
		member, err := memberships.Find(ctx, target, companyID)
		if err != nil {
			return err
		}
		if member.Role == model.RoleOwner {
			return domain.ErrOwnerRoleReserved
		}

		member.Role = newRole
		if err := memberships.Update(ctx, member); err != nil {
			return err
		}

		if err := s.notifier.Notify(ctx, tx, target, companyID,
			model.NotifyRoleChanged, "Role changed",
			fmt.Sprintf("Your role is now %s.", newRole)); err != nil {
			return err
		}

		slog.InfoContext(ctx, "audit: role changed",
			"actor", idShort(caller), "company", companyID, "target", idShort(target), "role", newRole)
		return nil
	})
}

// TransferOwnership demotes the caller to Admin, promotes the target to
// Owner, and updates the company's recorded owner, all in one transaction
// so the membership rows and Company.OwnerIdentity can never disagree.
func (s *CompanyService) TransferOwnership(ctx context.Context, caller, newOwner uuid.UUID) error {
	if caller == newOwner {
		return domain.ErrSelfUser
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		me, companyID, err := s.authority.Resolve(ctx, tx, caller, model.RoleOwner)
		if err != nil {
			return err
		}

		companies := repository.NewCompanyRepository(tx)
		company, err := companies.FindByID(ctx, companyID)
		if err != nil {
			return err
		}
		if company.OwnerIdentity != caller {
			return domain.ErrNotCompanyOwner
		}

		memberships := repository.NewMembershipRepository(tx)
		target, err := memberships.Find(ctx, newOwner, companyID)
		if err != nil {
			return err
		}

		company.OwnerIdentity = newOwner
		if err := companies.Update(ctx, company); err != nil {
			return err
		}
		me.Role = model.RoleAdmin
		if err := memberships.Update(ctx, me); err != nil {
			return err
		}
		target.Role = model.RoleOwner
		if err := memberships.Update(ctx, target); err != nil {
			return err
		}

		if err := s.notifier.Notify(ctx, tx, newOwner, companyID,
			model.NotifyOwnershipTransferred, "You are now the owner",
			fmt.Sprintf("Ownership of %s was transferred to you.", company.Name)); err != nil {
			return err
		}

		slog.InfoContext(ctx, "audit: ownership transferred",
			"actor", idShort(caller), "company", companyID, "newOwner", idShort(newOwner))
		return nil
	})
}

// Delete permanently removes the caller's company and everything that
// references it: invite codes, memberships (with cursor repair), the
// capability row, connections and their chat, notifications in this
// company's context, owned projects, and this company's membership rows in
// other companies' projects, dissolving those projects if this company was
// their last Accepted member.
func (s *CompanyService) Delete(ctx context.Context, caller uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, companyID, err := s.authority.Resolve(ctx, tx, caller, model.RoleOwner)
		if err != nil {
			return err
		}

		companies := repository.NewCompanyRepository(tx)
		company, err := companies.FindByID(ctx, companyID)
		if err != nil {
			return err
		}
		if company.OwnerIdentity != caller {
			return domain.ErrNotCompanyOwner
		}

		// 1. Invite codes scoped to the company.
		if err := repository.NewInviteCodeRepository(tx).DeleteByCompany(ctx, companyID); err != nil {
			return err
		}

		// 2. Memberships, then each affected identity's cursor.
		memberships := repository.NewMembershipRepository(tx)
		members, err := memberships.FindByCompany(ctx, companyID)
		if err != nil {
			return err
		}
		if err := memberships.DeleteByCompany(ctx, companyID); err != nil {
			return err
		}
		for _, member := range members {
			if err := reassignActiveCompany(ctx, tx, member.Identity, companyID); err != nil {
				return err
			}
		}

		// 3. Capability row.
		if err := repository.NewCapabilityRepository(tx).DeleteByCompany(ctx, companyID); err != nil {
			return err
		}

		// 4. Connections touching either side, chat included.
		conns, err := repository.NewConnectionRepository(tx).FindByCompany(ctx, companyID)
		if err != nil {
			return err
		}
		for _, conn := range conns {
			if err := deleteConnectionCascade(ctx, tx, conn.ID); err != nil {
				return err
			}
		}

		// 5. Notifications in this company's context.
		if err := repository.NewNotificationRepository(tx).DeleteByCompany(ctx, companyID); err != nil {
			return err
		}

		// 6. Projects this company owns.
		owned, err := repository.NewProjectRepository(tx).FindByOwnerCompany(ctx, companyID)
		if err != nil {
			return err
		}
		for _, project := range owned {
			if err := deleteProjectCascade(ctx, tx, project.ID); err != nil {
				return err
			}
		}

		// 7. Membership rows in other companies' projects; dissolve any
		// project this company was the last Accepted member of. Scoped to
		// the affected projects only.
		projectMembers := repository.NewProjectMemberRepository(tx)
		rows, err := projectMembers.ListByCompany(ctx, companyID)
		if err != nil {
			return err
		}
		for _, row := range rows {
			if err := projectMembers.Delete(ctx, row.ID); err != nil {
				return err
			}
			if _, err := dissolveProjectIfAbandoned(ctx, tx, row.ProjectID); err != nil {
				return err
			}
		}

		// 8. The company row itself.
		if err := companies.Delete(ctx, companyID); err != nil {
			return err
		}

		slog.InfoContext(ctx, "audit: company deleted",
			"actor", idShort(caller), "company", companyID, "name", company.Name,
			"membersUnlinked", len(members))
		return nil
	})
}

// reassignActiveCompany repairs an account's cursor after the membership it
// pointed at disappeared: any remaining membership wins, else the cursor
// clears.
func reassignActiveCompany(ctx context.Context, tx *gorm.DB, identity uuid.UUID, removedCompanyID uint64) error {
	accounts := repository.NewUserAccountRepository(tx)
	account, err := accounts.FindByIdentity(ctx, identity)
	if err != nil {
		return err
	}
	if account.ActiveCompanyID == nil || *account.ActiveCompanyID != removedCompanyID {
		return nil
	}

	remaining, err := repository.NewMembershipRepository(tx).FindByIdentity(ctx, identity)
	if err != nil {
		return err
	}
	for _, m := range remaining {
		if m.CompanyID != removedCompanyID {
			return accounts.SetActiveCompany(ctx, identity, &m.CompanyID)
		}
	}
	return accounts.SetActiveCompany(ctx, identity, nil)
}
