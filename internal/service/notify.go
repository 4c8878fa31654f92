// internal/service/notify.go
package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/tomvanloon/signnet/internal/model"
	"github.com/tomvanloon/signnet/internal/repository"
	"gorm.io/gorm"
)

// Notifier inserts notification rows. Both entry points take the caller's
// transaction handle: fan-out is part of the triggering procedure, so an
// aborted transaction leaves no orphaned notifications behind.
type Notifier struct{}

func NewNotifier() *Notifier {
	return &Notifier{}
}

// Notify inserts a single notification row, unconditionally.
func (n *Notifier) Notify(ctx context.Context, tx *gorm.DB, recipient uuid.UUID, companyID uint64, typ model.NotificationType, title, body string) error {
	return repository.NewNotificationRepository(tx).Create(ctx, &model.Notification{
		Recipient: recipient,
		CompanyID: companyID,
		Type:      typ,
		Title:     title,
		Body:      body,
	})
}

// NotifyCompanyRole fans out one notification per member of companyID whose
// role is at least minRole, skipping the optional excluded identity
// (typically the acting user).
func (n *Notifier) NotifyCompanyRole(ctx context.Context, tx *gorm.DB, companyID uint64, minRole model.Role, exclude *uuid.UUID, typ model.NotificationType, title, body string) error {
	members, err := repository.NewMembershipRepository(tx).FindByCompany(ctx, companyID)
	if err != nil {
		return err
	}

	for _, member := range members {
		if !member.Role.AtLeast(minRole) {
			continue
		}
		if exclude != nil && member.Identity == *exclude {
			continue
		}
		if err := n.Notify(ctx, tx, member.Identity, companyID, typ, title, body); err != nil {
			return err
		}
	}
	return nil
}
