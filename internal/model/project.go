// internal/model/project.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// Project is a multi-company collaboration room. The owner company is
// implicitly and permanently Accepted; it leaves only by deleting the
// whole project. A project with zero Accepted members is not permitted to
// persist and is dissolved by the transition that removed the last one.
type Project struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	OwnerCompanyID uint64    `gorm:"not null;index" json:"owner_company_id"`
	Name           string    `gorm:"type:text;not null" json:"name"`
	Description    string    `gorm:"type:text" json:"description"`
	CreatedBy      uuid.UUID `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type ProjectMemberStatus string

const (
	ProjectInvited  ProjectMemberStatus = "invited"
	ProjectAccepted ProjectMemberStatus = "accepted"
	ProjectLeft     ProjectMemberStatus = "left"
	ProjectKicked   ProjectMemberStatus = "kicked"
)

// Terminal reports whether the status is history rather than an active
// involvement. Terminal rows persist but are swept before a re-invite.
func (s ProjectMemberStatus) Terminal() bool {
	return s == ProjectLeft || s == ProjectKicked
}

// ProjectMember is the per-(project, company) membership row. At most one
// non-terminal (Invited or Accepted) row exists per pair.
type ProjectMember struct {
	ID        uint64              `gorm:"primaryKey;autoIncrement" json:"id"`
	ProjectID uint64              `gorm:"not null;index" json:"project_id"`
	CompanyID uint64              `gorm:"not null;index" json:"company_id"`
	Status    ProjectMemberStatus `gorm:"type:text;not null" json:"status"`
	InvitedBy uuid.UUID           `gorm:"type:uuid;not null" json:"invited_by"`
	JoinedAt  time.Time           `json:"joined_at"`
}

// ProjectChat is a message in a project room, valid only for senders whose
// company holds an Accepted membership.
type ProjectChat struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ProjectID uint64    `gorm:"not null;index" json:"project_id"`
	Sender    uuid.UUID `gorm:"type:uuid;not null" json:"sender"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
