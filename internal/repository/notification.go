// internal/repository/notification.go
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/tomvanloon/signnet/internal/domain"
	"github.com/tomvanloon/signnet/internal/model"
	"gorm.io/gorm"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *model.Notification) error {
	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("creating notification: %w", err)
	}
	return nil
}

func (r *NotificationRepository) FindByID(ctx context.Context, id uint64) (*model.Notification, error) {
	var n model.Notification
	if err := r.db.WithContext(ctx).First(&n, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotificationNotFound
		}
		return nil, fmt.Errorf("finding notification: %w", err)
	}
	return &n, nil
}

func (r *NotificationRepository) ListByRecipient(ctx context.Context, recipient uuid.UUID) ([]model.Notification, error) {
	var ns []model.Notification
	if err := r.db.WithContext(ctx).
		Where("recipient = ?", recipient).
		Order("id DESC").
		Find(&ns).Error; err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	return ns, nil
}

// MarkRead flips the read flag, the one mutation a notification row
// permits after insert.
func (r *NotificationRepository) MarkRead(ctx context.Context, id uint64) error {
	if err := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("id = ?", id).
		Update("read", true).Error; err != nil {
		return fmt.Errorf("marking notification read: %w", err)
	}
	return nil
}

func (r *NotificationRepository) DeleteByCompany(ctx context.Context, companyID uint64) error {
	if err := r.db.WithContext(ctx).
		Delete(&model.Notification{}, "company_id = ?", companyID).Error; err != nil {
		return fmt.Errorf("deleting company notifications: %w", err)
	}
	return nil
}
