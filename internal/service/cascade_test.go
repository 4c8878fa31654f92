package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomvanloon/signnet/internal/domain"
	"github.com/tomvanloon/signnet/internal/model"
	"github.com/tomvanloon/signnet/internal/service"
	"gorm.io/gorm"
)

func count(t *testing.T, db *gorm.DB, modelPtr interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(modelPtr).Where(query, args...).Count(&n).Error)
	return n
}

// Company deletion must leave no trace of the company behind: codes,
// memberships, capability, connections with chat, notifications, owned
// projects, and membership rows in other companies' projects.
func TestCompanyDeleteCascade(t *testing.T) {
	f := newProjectFixture(t)
	ctx := context.Background()

	// Invite codes and a pending hire for acme.
	invite, err := f.companies.GenerateInviteCode(ctx, f.alice, 5)
	require.NoError(t, err)
	hire := f.signup(t, "hire")
	_, err = f.companies.Join(ctx, hire, invite.Code)
	require.NoError(t, err)

	// Chat on the acme-bolt connection.
	conns, err := f.connections.List(ctx, f.alice)
	require.NoError(t, err)
	require.Len(t, conns, 1)
	connID := conns[0].ID
	_, err = f.connections.SendChat(ctx, f.alice, service.SendConnectionChatInput{
		ConnectionID: connID,
		Text:         "See you at the site.",
	})
	require.NoError(t, err)

	// A project acme owns, with bolt aboard.
	owned, err := f.projects.Create(ctx, f.alice, service.CreateProjectInput{Name: "Mall rebrand"})
	require.NoError(t, err)
	require.NoError(t, f.projects.Invite(ctx, f.alice, owned.ID, f.bolt.ID))
	require.NoError(t, f.projects.AcceptInvite(ctx, f.bob, owned.ID))

	// A project bolt owns, with acme aboard.
	foreign, err := f.projects.Create(ctx, f.bob, service.CreateProjectInput{Name: "Stadium boards"})
	require.NoError(t, err)
	require.NoError(t, f.projects.Invite(ctx, f.bob, foreign.ID, f.acme.ID))
	require.NoError(t, f.projects.AcceptInvite(ctx, f.alice, foreign.ID))

	t.Run("only the recorded owner deletes", func(t *testing.T) {
		require.NoError(t, f.companies.ChangeRole(ctx, f.alice, hire, model.RoleAdmin))
		err := f.companies.Delete(ctx, hire)
		assert.ErrorIs(t, err, domain.ErrInsufficientRole)
	})

	require.NoError(t, f.companies.Delete(ctx, f.alice))

	t.Run("company row and satellites are gone", func(t *testing.T) {
		_, err := f.companies.Get(ctx, f.acme.ID)
		assert.ErrorIs(t, err, domain.ErrCompanyNotFound)

		assert.Zero(t, count(t, f.db, &model.CompanyMember{}, "company_id = ?", f.acme.ID), "memberships")
		assert.Zero(t, count(t, f.db, &model.Capability{}, "company_id = ?", f.acme.ID), "capabilities")
		assert.Zero(t, count(t, f.db, &model.InviteCode{}, "company_id = ?", f.acme.ID), "invite codes")
		assert.Zero(t, count(t, f.db, &model.Notification{}, "company_id = ?", f.acme.ID), "notifications")
	})

	t.Run("connections and their chat are gone", func(t *testing.T) {
		assert.Zero(t, count(t, f.db, &model.Connection{}, "company_a = ? OR company_b = ?", f.acme.ID, f.acme.ID))
		assert.Zero(t, count(t, f.db, &model.ConnectionChat{}, "connection_id = ?", connID))
	})

	t.Run("owned projects are gone, foreign projects survive", func(t *testing.T) {
		assert.Zero(t, count(t, f.db, &model.Project{}, "id = ?", owned.ID))
		assert.Zero(t, count(t, f.db, &model.ProjectMember{}, "project_id = ?", owned.ID))

		assert.Equal(t, int64(1), count(t, f.db, &model.Project{}, "id = ?", foreign.ID))
		assert.Zero(t, count(t, f.db, &model.ProjectMember{}, "project_id = ? AND company_id = ?", foreign.ID, f.acme.ID))
	})

	t.Run("member cursors are repaired", func(t *testing.T) {
		account, err := f.accounts.Me(ctx, f.alice)
		require.NoError(t, err)
		assert.Nil(t, account.ActiveCompanyID)

		account, err = f.accounts.Me(ctx, hire)
		require.NoError(t, err)
		assert.Nil(t, account.ActiveCompanyID)
	})
}
