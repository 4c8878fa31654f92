// internal/domain/errors.go
package domain

import (
	"errors"
	"fmt"
)

// Category sentinels. Every specific error below wraps exactly one of these,
// so callers can branch on the category with errors.Is without enumerating
// the specific failures.
var (
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrNoActiveCompany  = errors.New("no active company")
	ErrNotAMember       = errors.New("not a member")
	ErrInsufficientRole = errors.New("insufficient role")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrInvalidState     = errors.New("invalid state")
	ErrInvalidInput     = errors.New("invalid input")
)

var (
	// Lookup failures
	ErrAccountNotFound      = fmt.Errorf("%w: account", ErrNotFound)
	ErrCompanyNotFound      = fmt.Errorf("%w: company", ErrNotFound)
	ErrMembershipNotFound   = fmt.Errorf("%w: membership", ErrNotFound)
	ErrInviteCodeNotFound   = fmt.Errorf("%w: invite code", ErrNotFound)
	ErrConnectionNotFound   = fmt.Errorf("%w: connection", ErrNotFound)
	ErrProjectNotFound      = fmt.Errorf("%w: project", ErrNotFound)
	ErrNotificationNotFound = fmt.Errorf("%w: notification", ErrNotFound)

	// Invariant violations
	ErrAccountExists        = fmt.Errorf("%w: account already exists", ErrConflict)
	ErrSlugTaken            = fmt.Errorf("%w: slug is already taken", ErrConflict)
	ErrAlreadyMember        = fmt.Errorf("%w: already a member of this company", ErrConflict)
	ErrInviteCodeUsed       = fmt.Errorf("%w: invite code already used by this account", ErrConflict)
	ErrSelfTarget           = fmt.Errorf("%w: operation cannot target your own company", ErrConflict)
	ErrSelfUser             = fmt.Errorf("%w: operation cannot target yourself", ErrConflict)
	ErrConnectionExists     = fmt.Errorf("%w: a connection already exists between these companies", ErrConflict)
	ErrProjectInvitePending = fmt.Errorf("%w: company already invited or participating", ErrConflict)
	ErrOwnerRoleReserved    = fmt.Errorf("%w: the owner role is assigned via ownership transfer", ErrConflict)
	ErrRoleTooHigh          = fmt.Errorf("%w: target role is not below yours", ErrConflict)
	ErrOwnerCannotLeave     = fmt.Errorf("%w: transfer ownership before leaving", ErrConflict)
	ErrNotConnectionParty   = fmt.Errorf("%w: your company is not part of this connection", ErrConflict)
	ErrOwnerCompanyFixed    = fmt.Errorf("%w: the owner company cannot leave its own project", ErrConflict)

	// Authorization refinements
	ErrNotOwnerCompany = fmt.Errorf("%w: owner company only", ErrInsufficientRole)
	ErrNotCompanyOwner = fmt.Errorf("%w: only the recorded owner can do this", ErrInsufficientRole)

	// Lifecycle-state violations
	ErrConnectionNotPending  = fmt.Errorf("%w: connection is not pending", ErrInvalidState)
	ErrConnectionNotAccepted = fmt.Errorf("%w: connection is not accepted", ErrInvalidState)
	ErrConnectionNotBlocked  = fmt.Errorf("%w: connection is not blocked", ErrInvalidState)
	ErrConnectionBlocked     = fmt.Errorf("%w: connection is blocked", ErrInvalidState)
	ErrConnectionRequired    = fmt.Errorf("%w: an accepted connection is required", ErrInvalidState)
	ErrNotInvited            = fmt.Errorf("%w: company has no pending project invite", ErrInvalidState)
	ErrNotProjectMember      = fmt.Errorf("%w: company is not an accepted project member", ErrInvalidState)
	ErrNotRequester          = fmt.Errorf("%w: only the requesting company can do this", ErrInvalidState)
	ErrIsRequester           = fmt.Errorf("%w: the requesting company cannot do this", ErrInvalidState)
	ErrNotBlocker            = fmt.Errorf("%w: only the blocking company can unblock", ErrInvalidState)
	ErrInviteCodeExhausted   = fmt.Errorf("%w: invite code has been fully used", ErrInvalidState)
)
