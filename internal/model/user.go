// internal/model/user.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// UserAccount is one registered identity. ActiveCompanyID is a cursor
// selecting which membership authorizes the caller's next operation; it is
// never an authority on its own — the CompanyMember row is.
type UserAccount struct {
	Identity     uuid.UUID `gorm:"type:uuid;primaryKey" json:"identity"`
	FullName     string    `gorm:"type:text;not null" json:"full_name"`
	Nickname     string    `gorm:"type:text;not null" json:"nickname"`
	Email        string    `gorm:"type:text;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"type:text;not null" json:"-"`
	ActiveCompanyID *uint64 `gorm:"index" json:"active_company_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CompanyMember links one identity to one company with a role. A single
// identity may hold independent memberships, with independent roles, in
// many companies at once; at most one row exists per (identity, company).
type CompanyMember struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Identity  uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_member_identity_company" json:"identity"`
	CompanyID uint64    `gorm:"not null;index;uniqueIndex:idx_member_identity_company" json:"company_id"`
	Role      Role      `gorm:"type:text;not null" json:"role"`
	JoinedAt  time.Time `json:"joined_at"`
}
