// internal/model/role.go
package model

// Role is the six-tier role a membership grants inside one company.
// Pending is a quarantine floor: users admitted through an invite code
// cannot act until an Admin or the Owner promotes them.
type Role string

const (
	RolePending   Role = "pending"
	RoleField     Role = "field"
	RoleInstaller Role = "installer"
	RoleMember    Role = "member"
	RoleAdmin     Role = "admin"
	RoleOwner     Role = "owner"
)

// roleLevels is the single source of truth for the role hierarchy.
// Higher means more privileged.
var roleLevels = map[Role]int{
	RolePending:   0,
	RoleField:     1,
	RoleInstaller: 2,
	RoleMember:    3,
	RoleAdmin:     4,
	RoleOwner:     5,
}

// Level returns the numeric rank of the role. Unknown roles rank below
// Pending so a corrupted row can never pass a gate.
func (r Role) Level() int {
	if lvl, ok := roleLevels[r]; ok {
		return lvl
	}
	return -1
}

// AtLeast reports whether r is at least as privileged as min.
func (r Role) AtLeast(min Role) bool {
	return r.Level() >= min.Level()
}

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool {
	_, ok := roleLevels[r]
	return ok
}
