package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tomvanloon/signnet/internal/model"
)

func TestRoleOrder(t *testing.T) {
	ordered := []model.Role{
		model.RolePending,
		model.RoleField,
		model.RoleInstaller,
		model.RoleMember,
		model.RoleAdmin,
		model.RoleOwner,
	}

	for i := 1; i < len(ordered); i++ {
		assert.Greater(t, ordered[i].Level(), ordered[i-1].Level(),
			"%s must outrank %s", ordered[i], ordered[i-1])
	}

	// AtLeast is reflexive and follows the order.
	for i, role := range ordered {
		assert.True(t, role.AtLeast(role))
		for j, lower := range ordered[:i] {
			assert.True(t, role.AtLeast(lower), "%d vs %d", i, j)
			assert.False(t, lower.AtLeast(role), "%d vs %d", j, i)
		}
	}
}

func TestUnknownRoleRanksBelowEverything(t *testing.T) {
	bogus := model.Role("superuser")

	assert.False(t, bogus.Valid())
	assert.Equal(t, -1, bogus.Level())
	assert.False(t, bogus.AtLeast(model.RolePending))
}
