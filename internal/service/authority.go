// internal/service/authority.go
package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/tomvanloon/signnet/internal/domain"
	"github.com/tomvanloon/signnet/internal/model"
	"github.com/tomvanloon/signnet/internal/repository"
	"gorm.io/gorm"
)

// Authority resolves a caller identity to a membership in the caller's
// active company and enforces a minimum role. All procedures run it before
// any domain lookup, so a caller without permission can never probe for the
// existence of unrelated rows.
type Authority struct{}

func NewAuthority() *Authority {
	return &Authority{}
}

// Resolve authenticates the caller and gates on minRole. The account's
// active-company cursor selects the membership; a stale cursor (company
// deleted out from under it) resolves the same as no cursor at all.
func (a *Authority) Resolve(ctx context.Context, tx *gorm.DB, caller uuid.UUID, minRole model.Role) (*model.CompanyMember, uint64, error) {
	account, err := repository.NewUserAccountRepository(tx).FindByIdentity(ctx, caller)
	if err != nil {
		return nil, 0, domain.ErrUnauthenticated
	}

	if account.ActiveCompanyID == nil {
		return nil, 0, domain.ErrNoActiveCompany
	}
	companyID := *account.ActiveCompanyID

	if _, err := repository.NewCompanyRepository(tx).FindByID(ctx, companyID); err != nil {
		return nil, 0, domain.ErrNoActiveCompany
	}

	member, err := repository.NewMembershipRepository(tx).Find(ctx, caller, companyID)
	if err != nil {
		return nil, 0, domain.ErrNotAMember
	}

	if !member.Role.AtLeast(minRole) {
		return nil, 0, domain.ErrInsufficientRole
	}

	return member, companyID, nil
}
