package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomvanloon/signnet/internal/domain"
	"github.com/tomvanloon/signnet/internal/mocks"
	"github.com/tomvanloon/signnet/internal/model"
	"github.com/tomvanloon/signnet/internal/service"
	"go.uber.org/mock/gomock"
)

func TestCreateCompany(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.signup(t, "alice")

	t.Run("creates company with owner membership and cursor", func(t *testing.T) {
		company := f.createCompany(t, alice, "acme-signs")

		members, err := f.companies.ListMembers(ctx, alice)
		require.NoError(t, err)
		require.Len(t, members, 1)
		assert.Equal(t, model.RoleOwner, members[0].Role)

		account, err := f.accounts.Me(ctx, alice)
		require.NoError(t, err)
		require.NotNil(t, account.ActiveCompanyID)
		assert.Equal(t, company.ID, *account.ActiveCompanyID)
	})

	t.Run("rejects duplicate slug", func(t *testing.T) {
		_, err := f.companies.Create(ctx, alice, service.CreateCompanyInput{
			Name:     "Acme Again",
			Slug:     "acme-signs",
			Location: "Utrecht",
		})
		assert.ErrorIs(t, err, domain.ErrSlugTaken)
	})

	t.Run("one identity may own several companies", func(t *testing.T) {
		f.createCompany(t, alice, "acme-two")

		memberships, err := f.accounts.Memberships(ctx, alice)
		require.NoError(t, err)
		assert.Len(t, memberships, 2)
	})
}

func TestInviteCodeLifecycle(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newFixture(t)
	ctx := context.Background()

	codes := mocks.NewMockCodeGenerator(ctrl)
	companies := service.NewCompanyService(f.db, service.NewAuthority(), service.NewNotifier(), codes)

	owner := f.signup(t, "owner")
	f.createCompany(t, owner, "acme-signs")

	t.Run("zero requested uses becomes one", func(t *testing.T) {
		codes.EXPECT().Generate().Return("AAAA-BBBB-CCCC-DDDD", nil)

		invite, err := companies.GenerateInviteCode(ctx, owner, 0)
		require.NoError(t, err)
		assert.Equal(t, uint32(1), invite.UsesRemaining)
	})

	t.Run("join admits at pending and consumes a use", func(t *testing.T) {
		joiner := f.signup(t, "joiner")

		member, err := companies.Join(ctx, joiner, "AAAA-BBBB-CCCC-DDDD")
		require.NoError(t, err)
		assert.Equal(t, model.RolePending, member.Role)

		// Cursor followed the join.
		account, err := f.accounts.Me(ctx, joiner)
		require.NoError(t, err)
		require.NotNil(t, account.ActiveCompanyID)
		assert.Equal(t, member.CompanyID, *account.ActiveCompanyID)

		// Single-use code is gone on its final use.
		_, err = companies.Join(ctx, f.signup(t, "late"), "AAAA-BBBB-CCCC-DDDD")
		assert.ErrorIs(t, err, domain.ErrInviteCodeNotFound)
	})

	t.Run("multi-use code exhausts after its last use", func(t *testing.T) {
		codes.EXPECT().Generate().Return("EEEE-FFFF-GGGG-HHHH", nil)
		_, err := companies.GenerateInviteCode(ctx, owner, 2)
		require.NoError(t, err)

		_, err = companies.Join(ctx, f.signup(t, "first"), "EEEE-FFFF-GGGG-HHHH")
		require.NoError(t, err)
		_, err = companies.Join(ctx, f.signup(t, "second"), "EEEE-FFFF-GGGG-HHHH")
		require.NoError(t, err)

		_, err = companies.Join(ctx, f.signup(t, "third"), "EEEE-FFFF-GGGG-HHHH")
		assert.ErrorIs(t, err, domain.ErrInviteCodeNotFound)
	})

	t.Run("identity cannot replay a consumed code", func(t *testing.T) {
		codes.EXPECT().Generate().Return("IIII-JJJJ-KKKK-LLLL", nil)
		_, err := companies.GenerateInviteCode(ctx, owner, 5)
		require.NoError(t, err)

		replayer := f.signup(t, "replayer")
		_, err = companies.Join(ctx, replayer, "IIII-JJJJ-KKKK-LLLL")
		require.NoError(t, err)

		// Leave, then try the same code again.
		require.NoError(t, companies.Leave(ctx, replayer))
		_, err = companies.Join(ctx, replayer, "IIII-JJJJ-KKKK-LLLL")
		assert.ErrorIs(t, err, domain.ErrInviteCodeUsed)
	})

	t.Run("existing member cannot join again", func(t *testing.T) {
		codes.EXPECT().Generate().Return("MMMM-NNNN-PPPP-QQQQ", nil)
		_, err := companies.GenerateInviteCode(ctx, owner, 5)
		require.NoError(t, err)

		_, err = companies.Join(ctx, owner, "MMMM-NNNN-PPPP-QQQQ")
		assert.ErrorIs(t, err, domain.ErrAlreadyMember)
	})

	t.Run("deleting another company's code reports not found", func(t *testing.T) {
		codes.EXPECT().Generate().Return("RRRR-SSSS-TTTT-UUUU", nil)

		other := f.signup(t, "otherowner")
		f.createCompany(t, other, "other-signs")
		_, err := companies.GenerateInviteCode(ctx, other, 1)
		require.NoError(t, err)

		err = companies.DeleteInviteCode(ctx, owner, "RRRR-SSSS-TTTT-UUUU")
		assert.ErrorIs(t, err, domain.ErrInviteCodeNotFound)
	})
}

func TestGeneratedInviteCodeFormat(t *testing.T) {
	gen := service.NewCodeGenerator()

	code, err := gen.Generate()
	require.NoError(t, err)
	require.Len(t, code, 19)

	for i, r := range code {
		if i == 4 || i == 9 || i == 14 {
			assert.Equal(t, '-', r)
			continue
		}
		assert.Contains(t, "ABCDEFGHJKLMNPQRSTUVWXYZ23456789", string(r))
	}
}

func TestRoleManagement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	owner := f.signup(t, "owner")
	worker := f.signup(t, "worker")
	f.createCompany(t, owner, "acme-signs")
	_, err := f.companies.AddColleague(ctx, owner, worker)
	require.NoError(t, err)

	t.Run("owner promotes a colleague", func(t *testing.T) {
		require.NoError(t, f.companies.ChangeRole(ctx, owner, worker, model.RoleAdmin))

		members, err := f.companies.ListMembers(ctx, owner)
		require.NoError(t, err)
		for _, m := range members {
			if m.Identity == worker {
				assert.Equal(t, model.RoleAdmin, m.Role)
			}
		}
	})

	t.Run("admin cannot change roles", func(t *testing.T) {
		err := f.companies.ChangeRole(ctx, worker, owner, model.RoleMember)
		assert.ErrorIs(t, err, domain.ErrInsufficientRole)
	})

	t.Run("owner role is reserved", func(t *testing.T) {
		err := f.companies.ChangeRole(ctx, owner, worker, model.RoleOwner)
		assert.ErrorIs(t, err, domain.ErrOwnerRoleReserved)
	})

	t.Run("unknown role rejected", func(t *testing.T) {
		err := f.companies.ChangeRole(ctx, owner, worker, model.Role("superuser"))
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("cannot remove an equal or higher role", func(t *testing.T) {
		err := f.companies.RemoveColleague(ctx, worker, owner)
		assert.ErrorIs(t, err, domain.ErrRoleTooHigh)
	})

	t.Run("cannot remove yourself", func(t *testing.T) {
		err := f.companies.RemoveColleague(ctx, owner, owner)
		assert.ErrorIs(t, err, domain.ErrSelfUser)
	})

	t.Run("removal repairs the target cursor", func(t *testing.T) {
		require.NoError(t, f.companies.RemoveColleague(ctx, owner, worker))

		account, err := f.accounts.Me(ctx, worker)
		require.NoError(t, err)
		assert.Nil(t, account.ActiveCompanyID)
	})
}

func TestLeaveCompany(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	owner := f.signup(t, "owner")
	worker := f.signup(t, "worker")
	f.createCompany(t, owner, "acme-signs")
	_, err := f.companies.AddColleague(ctx, owner, worker)
	require.NoError(t, err)

	t.Run("owner cannot leave", func(t *testing.T) {
		err := f.companies.Leave(ctx, owner)
		assert.ErrorIs(t, err, domain.ErrOwnerCannotLeave)
	})

	t.Run("member leaves and cursor clears", func(t *testing.T) {
		require.NoError(t, f.companies.Leave(ctx, worker))

		account, err := f.accounts.Me(ctx, worker)
		require.NoError(t, err)
		assert.Nil(t, account.ActiveCompanyID)

		memberships, err := f.accounts.Memberships(ctx, worker)
		require.NoError(t, err)
		assert.Empty(t, memberships)
	})
}

func TestTransferOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	owner := f.signup(t, "owner")
	heir := f.signup(t, "heir")
	company := f.createCompany(t, owner, "acme-signs")
	_, err := f.companies.AddColleague(ctx, owner, heir)
	require.NoError(t, err)

	t.Run("non-owner cannot transfer", func(t *testing.T) {
		err := f.companies.TransferOwnership(ctx, heir, owner)
		assert.ErrorIs(t, err, domain.ErrInsufficientRole)
	})

	t.Run("transfer swaps roles and recorded owner atomically", func(t *testing.T) {
		require.NoError(t, f.companies.TransferOwnership(ctx, owner, heir))

		got, err := f.companies.Get(ctx, company.ID)
		require.NoError(t, err)
		assert.Equal(t, heir, got.OwnerIdentity)

		members, err := f.companies.ListMembers(ctx, heir)
		require.NoError(t, err)
		roles := map[string]model.Role{}
		for _, m := range members {
			roles[m.Identity.String()] = m.Role
		}
		assert.Equal(t, model.RoleOwner, roles[heir.String()])
		assert.Equal(t, model.RoleAdmin, roles[owner.String()])
	})

	t.Run("former owner may now leave", func(t *testing.T) {
		require.NoError(t, f.companies.Leave(ctx, owner))
	})
}
