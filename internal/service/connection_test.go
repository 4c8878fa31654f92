package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomvanloon/signnet/internal/domain"
	"github.com/tomvanloon/signnet/internal/model"
	"github.com/tomvanloon/signnet/internal/service"
)

func TestConnectionRequestAndAccept(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice := f.signup(t, "alice")
	bob := f.signup(t, "bob")
	acme := f.createCompany(t, alice, "acme-signs")
	bolt := f.createCompany(t, bob, "bolt-signs")

	t.Run("cannot connect to own company", func(t *testing.T) {
		err := f.connections.Request(ctx, alice, service.RequestConnectionInput{
			TargetCompanyID: acme.ID,
		})
		assert.ErrorIs(t, err, domain.ErrSelfTarget)
	})

	t.Run("request creates a pending row visible to both sides", func(t *testing.T) {
		require.NoError(t, f.connections.Request(ctx, alice, service.RequestConnectionInput{
			TargetCompanyID: bolt.ID,
			Message:         "Looking for an installer in your area.",
		}))

		for _, caller := range []struct {
			identity  string
			connsFrom func() ([]model.Connection, error)
		}{
			{"requester", func() ([]model.Connection, error) { return f.connections.List(ctx, alice) }},
			{"target", func() ([]model.Connection, error) { return f.connections.List(ctx, bob) }},
		} {
			conns, err := caller.connsFrom()
			require.NoError(t, err, caller.identity)
			require.Len(t, conns, 1, caller.identity)
			assert.Equal(t, model.ConnectionPending, conns[0].Status, caller.identity)
		}
	})

	t.Run("duplicate request rejected", func(t *testing.T) {
		err := f.connections.Request(ctx, alice, service.RequestConnectionInput{
			TargetCompanyID: bolt.ID,
		})
		assert.ErrorIs(t, err, domain.ErrConnectionExists)
	})

	t.Run("requester side cannot accept", func(t *testing.T) {
		err := f.connections.Accept(ctx, alice, bolt.ID)
		assert.ErrorIs(t, err, domain.ErrIsRequester)
	})

	t.Run("target accepts", func(t *testing.T) {
		require.NoError(t, f.connections.Accept(ctx, bob, acme.ID))

		conns, err := f.connections.List(ctx, alice)
		require.NoError(t, err)
		require.Len(t, conns, 1)
		assert.Equal(t, model.ConnectionAccepted, conns[0].Status)
	})

	t.Run("row stores the pair in canonical order", func(t *testing.T) {
		conns, err := f.connections.List(ctx, alice)
		require.NoError(t, err)
		require.Len(t, conns, 1)
		assert.Less(t, conns[0].CompanyA, conns[0].CompanyB)
	})
}

func TestConnectionDeclineAllowsReRequest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice := f.signup(t, "alice")
	bob := f.signup(t, "bob")
	acme := f.createCompany(t, alice, "acme-signs")
	bolt := f.createCompany(t, bob, "bolt-signs")

	require.NoError(t, f.connections.Request(ctx, alice, service.RequestConnectionInput{
		TargetCompanyID: bolt.ID,
	}))
	require.NoError(t, f.connections.Decline(ctx, bob, acme.ID))

	// The declined row is gone entirely, so a fresh request succeeds.
	conns, err := f.connections.List(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, conns)

	require.NoError(t, f.connections.Request(ctx, alice, service.RequestConnectionInput{
		TargetCompanyID: bolt.ID,
	}))
}

func TestConnectionCancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice := f.signup(t, "alice")
	bob := f.signup(t, "bob")
	acme := f.createCompany(t, alice, "acme-signs")
	bolt := f.createCompany(t, bob, "bolt-signs")

	require.NoError(t, f.connections.Request(ctx, alice, service.RequestConnectionInput{
		TargetCompanyID: bolt.ID,
	}))

	t.Run("target side cannot cancel", func(t *testing.T) {
		err := f.connections.Cancel(ctx, bob, acme.ID)
		assert.ErrorIs(t, err, domain.ErrNotRequester)
	})

	t.Run("requester cancels", func(t *testing.T) {
		require.NoError(t, f.connections.Cancel(ctx, alice, bolt.ID))

		conns, err := f.connections.List(ctx, bob)
		require.NoError(t, err)
		assert.Empty(t, conns)
	})
}

func TestBlockingAndGhosting(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice := f.signup(t, "alice")
	bob := f.signup(t, "bob")
	acme := f.createCompany(t, alice, "acme-signs")
	bolt := f.createCompany(t, bob, "bolt-signs")

	require.NoError(t, f.connections.Block(ctx, alice, bolt.ID))

	t.Run("blocked side cannot see the row", func(t *testing.T) {
		conns, err := f.connections.List(ctx, bob)
		require.NoError(t, err)
		assert.Empty(t, conns)
	})

	t.Run("blocker sees the row", func(t *testing.T) {
		conns, err := f.connections.List(ctx, alice)
		require.NoError(t, err)
		require.Len(t, conns, 1)
		assert.Equal(t, model.ConnectionBlocked, conns[0].Status)
		require.NotNil(t, conns[0].BlockingCompanyID)
		assert.Equal(t, acme.ID, *conns[0].BlockingCompanyID)
	})

	t.Run("request into a block silently succeeds and changes nothing", func(t *testing.T) {
		require.NoError(t, f.connections.Request(ctx, bob, service.RequestConnectionInput{
			TargetCompanyID: acme.ID,
		}))

		conns, err := f.connections.List(ctx, alice)
		require.NoError(t, err)
		require.Len(t, conns, 1)
		assert.Equal(t, model.ConnectionBlocked, conns[0].Status)
	})

	t.Run("counter-block keeps the first blocker", func(t *testing.T) {
		require.NoError(t, f.connections.Block(ctx, bob, acme.ID))

		conns, err := f.connections.List(ctx, alice)
		require.NoError(t, err)
		require.Len(t, conns, 1)
		require.NotNil(t, conns[0].BlockingCompanyID)
		assert.Equal(t, acme.ID, *conns[0].BlockingCompanyID)
	})

	t.Run("only the recorded blocker can unblock", func(t *testing.T) {
		err := f.connections.Unblock(ctx, bob, acme.ID)
		assert.ErrorIs(t, err, domain.ErrNotBlocker)

		require.NoError(t, f.connections.Unblock(ctx, alice, bolt.ID))
		conns, err := f.connections.List(ctx, alice)
		require.NoError(t, err)
		assert.Empty(t, conns)
	})

	t.Run("block from accepted state", func(t *testing.T) {
		f.connect(t, alice, bolt.ID, bob, acme.ID)
		require.NoError(t, f.connections.Block(ctx, bob, acme.ID))

		conns, err := f.connections.List(ctx, bob)
		require.NoError(t, err)
		require.Len(t, conns, 1)
		assert.Equal(t, model.ConnectionBlocked, conns[0].Status)
		require.NotNil(t, conns[0].BlockingCompanyID)
		assert.Equal(t, bolt.ID, *conns[0].BlockingCompanyID)
	})
}

func TestConnectionChat(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice := f.signup(t, "alice")
	bob := f.signup(t, "bob")
	carol := f.signup(t, "carol")
	acme := f.createCompany(t, alice, "acme-signs")
	bolt := f.createCompany(t, bob, "bolt-signs")
	f.createCompany(t, carol, "carol-signs")
	f.connect(t, alice, bolt.ID, bob, acme.ID)

	conns, err := f.connections.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, conns, 1)
	connID := conns[0].ID

	t.Run("both parties exchange messages", func(t *testing.T) {
		_, err := f.connections.SendChat(ctx, alice, service.SendConnectionChatInput{
			ConnectionID: connID,
			Text:         "Can you install a facade sign next week?",
		})
		require.NoError(t, err)
		_, err = f.connections.SendChat(ctx, bob, service.SendConnectionChatInput{
			ConnectionID: connID,
			Text:         "Sure, send over the specs.",
		})
		require.NoError(t, err)

		msgs, err := f.connections.ListChat(ctx, alice, connID)
		require.NoError(t, err)
		require.Len(t, msgs, 2)
		assert.Equal(t, "Can you install a facade sign next week?", msgs[0].Text)
	})

	t.Run("outsider company is not a party", func(t *testing.T) {
		_, err := f.connections.SendChat(ctx, carol, service.SendConnectionChatInput{
			ConnectionID: connID,
			Text:         "Let me in.",
		})
		assert.ErrorIs(t, err, domain.ErrNotConnectionParty)
	})

	t.Run("blocked connection takes no messages", func(t *testing.T) {
		require.NoError(t, f.connections.Block(ctx, alice, bolt.ID))

		_, err := f.connections.SendChat(ctx, alice, service.SendConnectionChatInput{
			ConnectionID: connID,
			Text:         "One more thing.",
		})
		assert.ErrorIs(t, err, domain.ErrConnectionBlocked)
	})
}

func TestPendingMemberIsQuarantined(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice := f.signup(t, "alice")
	bob := f.signup(t, "bob")
	acme := f.createCompany(t, alice, "acme-signs")
	bolt := f.createCompany(t, bob, "bolt-signs")
	f.connect(t, alice, bolt.ID, bob, acme.ID)

	conns, err := f.connections.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, conns, 1)

	// Admit a new hire through an invite code; they land at Pending.
	invite, err := f.companies.GenerateInviteCode(ctx, alice, 1)
	require.NoError(t, err)
	hire := f.signup(t, "hire")
	_, err = f.companies.Join(ctx, hire, invite.Code)
	require.NoError(t, err)

	// Quarantined until someone assigns a real role.
	_, err = f.connections.SendChat(ctx, hire, service.SendConnectionChatInput{
		ConnectionID: conns[0].ID,
		Text:         "Hello?",
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientRole)

	_, err = f.companies.ListMembers(ctx, hire)
	assert.ErrorIs(t, err, domain.ErrInsufficientRole)

	// Promotion lifts the quarantine.
	require.NoError(t, f.companies.ChangeRole(ctx, alice, hire, model.RoleField))
	_, err = f.connections.SendChat(ctx, hire, service.SendConnectionChatInput{
		ConnectionID: conns[0].ID,
		Text:         "Hello!",
	})
	assert.NoError(t, err)
}

func TestDisconnectCascadesChat(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice := f.signup(t, "alice")
	bob := f.signup(t, "bob")
	acme := f.createCompany(t, alice, "acme-signs")
	bolt := f.createCompany(t, bob, "bolt-signs")
	f.connect(t, alice, bolt.ID, bob, acme.ID)

	conns, err := f.connections.List(ctx, alice)
	require.NoError(t, err)
	connID := conns[0].ID

	_, err = f.connections.SendChat(ctx, alice, service.SendConnectionChatInput{
		ConnectionID: connID,
		Text:         "Talk soon.",
	})
	require.NoError(t, err)

	require.NoError(t, f.connections.Disconnect(ctx, bob, acme.ID))

	var chatCount int64
	require.NoError(t, f.db.Model(&model.ConnectionChat{}).
		Where("connection_id = ?", connID).Count(&chatCount).Error)
	assert.Zero(t, chatCount)

	// Both sides are free to reconnect.
	require.NoError(t, f.connections.Request(ctx, bob, service.RequestConnectionInput{
		TargetCompanyID: acme.ID,
	}))
}
