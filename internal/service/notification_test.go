package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomvanloon/signnet/internal/domain"
	"github.com/tomvanloon/signnet/internal/model"
	"github.com/tomvanloon/signnet/internal/service"
)

func TestNotificationFanOut(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice := f.signup(t, "alice")
	bob := f.signup(t, "bob")
	f.createCompany(t, alice, "acme-signs")
	bolt := f.createCompany(t, bob, "bolt-signs")

	// Staff bolt with an admin and a field worker.
	admin := f.signup(t, "admin")
	fieldhand := f.signup(t, "fieldhand")
	_, err := f.companies.AddColleague(ctx, bob, admin)
	require.NoError(t, err)
	require.NoError(t, f.companies.ChangeRole(ctx, bob, admin, model.RoleAdmin))
	_, err = f.companies.AddColleague(ctx, bob, fieldhand)
	require.NoError(t, err)
	require.NoError(t, f.companies.ChangeRole(ctx, bob, fieldhand, model.RoleField))

	require.NoError(t, f.connections.Request(ctx, alice, service.RequestConnectionInput{
		TargetCompanyID: bolt.ID,
	}))

	t.Run("admins and up are notified, lower roles are not", func(t *testing.T) {
		countOf := func(identity uuid.UUID, typ model.NotificationType) int {
			notifs, err := f.notifications.List(ctx, identity)
			require.NoError(t, err)
			n := 0
			for _, notif := range notifs {
				if notif.Type == typ {
					n++
				}
			}
			return n
		}

		assert.Equal(t, 1, countOf(bob, model.NotifyConnectionRequested))
		assert.Equal(t, 1, countOf(admin, model.NotifyConnectionRequested))
		assert.Equal(t, 0, countOf(fieldhand, model.NotifyConnectionRequested))
	})
}

func TestNotificationMarkRead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice := f.signup(t, "alice")
	bob := f.signup(t, "bob")
	f.createCompany(t, alice, "acme-signs")
	bolt := f.createCompany(t, bob, "bolt-signs")

	require.NoError(t, f.connections.Request(ctx, alice, service.RequestConnectionInput{
		TargetCompanyID: bolt.ID,
	}))

	notifs, err := f.notifications.List(ctx, bob)
	require.NoError(t, err)
	require.Len(t, notifs, 1)
	require.False(t, notifs[0].Read)

	t.Run("someone else's notification reads as not found", func(t *testing.T) {
		err := f.notifications.MarkRead(ctx, alice, notifs[0].ID)
		assert.ErrorIs(t, err, domain.ErrNotificationNotFound)
	})

	t.Run("recipient marks it read", func(t *testing.T) {
		require.NoError(t, f.notifications.MarkRead(ctx, bob, notifs[0].ID))

		notifs, err := f.notifications.List(ctx, bob)
		require.NoError(t, err)
		require.Len(t, notifs, 1)
		assert.True(t, notifs[0].Read)
	})
}
