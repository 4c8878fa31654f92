// internal/model/notification.go
package model

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotifyMemberJoined           NotificationType = "member_joined"
	NotifyMemberRemoved          NotificationType = "member_removed"
	NotifyRoleChanged            NotificationType = "role_changed"
	NotifyOwnershipTransferred   NotificationType = "ownership_transferred"
	NotifyConnectionRequested    NotificationType = "connection_requested"
	NotifyConnectionAccepted     NotificationType = "connection_accepted"
	NotifyConnectionDeclined     NotificationType = "connection_declined"
	NotifyConnectionDisconnected NotificationType = "connection_disconnected"
	NotifyProjectInvited         NotificationType = "project_invited"
	NotifyProjectInviteAccepted  NotificationType = "project_invite_accepted"
	NotifyProjectInviteDeclined  NotificationType = "project_invite_declined"
	NotifyProjectMemberLeft      NotificationType = "project_member_left"
	NotifyProjectKicked          NotificationType = "project_kicked"
	NotifyProjectDeleted         NotificationType = "project_deleted"
)

// Notification is a write-once row addressed to one recipient; the read
// flag is the only field that may change afterwards. CompanyID records the
// company context the event happened in.
type Notification struct {
	ID        uint64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Recipient uuid.UUID        `gorm:"type:uuid;not null;index" json:"recipient"`
	CompanyID uint64           `gorm:"not null;index" json:"company_id"`
	Type      NotificationType `gorm:"type:text;not null" json:"type"`
	Title     string           `gorm:"type:text;not null" json:"title"`
	Body      string           `gorm:"type:text" json:"body"`
	Read      bool             `gorm:"not null;default:false" json:"read"`
	CreatedAt time.Time        `json:"created_at"`
}
