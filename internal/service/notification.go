// internal/service/notification.go
package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/tomvanloon/signnet/internal/domain"
	"github.com/tomvanloon/signnet/internal/model"
	"github.com/tomvanloon/signnet/internal/repository"
	"gorm.io/gorm"
)

// NotificationService is the read side of the notifier: a user's inbox.
type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// List returns the caller's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, caller uuid.UUID) ([]model.Notification, error) {
	return repository.NewNotificationRepository(s.db).ListByRecipient(ctx, caller)
}

// MarkRead flags a notification as read. Notifications addressed to
// someone else are reported as not found, not as forbidden.
func (s *NotificationService) MarkRead(ctx context.Context, caller uuid.UUID, id uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := repository.NewNotificationRepository(tx)
		notif, err := repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if notif.Recipient != caller {
			return domain.ErrNotificationNotFound
		}
		return repo.MarkRead(ctx, id)
	})
}
