// internal/model/company.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// Company is a sign shop in the directory. OwnerIdentity must always equal
// the identity of the CompanyMember row holding RoleOwner in this company;
// the pair is kept in sync explicitly, never derived.
type Company struct {
	ID            uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	OwnerIdentity uuid.UUID `gorm:"type:uuid;not null" json:"owner_identity"`
	Name          string    `gorm:"type:text;not null" json:"name"`
	Slug          string    `gorm:"type:text;uniqueIndex;not null" json:"slug"`
	Location      string    `gorm:"type:text" json:"location"`
	Bio           string    `gorm:"type:text" json:"bio"`
	IsPublic      bool      `gorm:"not null;default:false" json:"is_public"`
	KvkNumber     string    `gorm:"type:text" json:"kvk_number"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Capability holds the equipment and service flags for a company, 1:1 with
// Company. Created alongside it, deleted alongside it.
type Capability struct {
	CompanyID      uint64 `gorm:"primaryKey" json:"company_id"`
	CanInstall     bool   `gorm:"not null;default:false" json:"can_install"`
	HasCNC         bool   `gorm:"not null;default:false" json:"has_cnc"`
	HasLargeFormat bool   `gorm:"not null;default:false" json:"has_large_format"`
	HasBucketTruck bool   `gorm:"not null;default:false" json:"has_bucket_truck"`
}

// InviteCode is a consumable admission token. The row is deleted, not
// zeroed, when the last use is consumed.
type InviteCode struct {
	Code          string    `gorm:"type:text;primaryKey" json:"code"`
	CompanyID     uint64    `gorm:"not null;index" json:"company_id"`
	CreatedBy     uuid.UUID `gorm:"type:uuid;not null" json:"created_by"`
	UsesRemaining uint32    `gorm:"not null" json:"uses_remaining"`
	CreatedAt     time.Time `json:"created_at"`
}

// UsedInviteCode is an append-only ledger entry recording that an identity
// consumed a code; it blocks the same identity from reusing the code after
// leaving the company.
type UsedInviteCode struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Identity  uuid.UUID `gorm:"type:uuid;not null;index" json:"identity"`
	Code      string    `gorm:"type:text;not null;index" json:"code"`
	CompanyID uint64    `gorm:"not null" json:"company_id"`
	UsedAt    time.Time `json:"used_at"`
}
