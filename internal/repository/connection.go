// internal/repository/connection.go
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomvanloon/signnet/internal/domain"
	"github.com/tomvanloon/signnet/internal/model"
	"gorm.io/gorm"
)

type ConnectionRepository struct {
	db *gorm.DB
}

func NewConnectionRepository(db *gorm.DB) *ConnectionRepository {
	return &ConnectionRepository{db: db}
}

// FindByPair returns the connection between two companies regardless of
// argument order. The (company_a <= company_b) row invariant guarantees at
// most one row per unordered pair.
func (r *ConnectionRepository) FindByPair(ctx context.Context, a, b uint64) (*model.Connection, error) {
	lo, hi := model.OrderedPair(a, b)
	var conn model.Connection
	if err := r.db.WithContext(ctx).
		First(&conn, "company_a = ? AND company_b = ?", lo, hi).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrConnectionNotFound
		}
		return nil, fmt.Errorf("finding connection: %w", err)
	}
	return &conn, nil
}

func (r *ConnectionRepository) FindByID(ctx context.Context, id uint64) (*model.Connection, error) {
	var conn model.Connection
	if err := r.db.WithContext(ctx).First(&conn, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrConnectionNotFound
		}
		return nil, fmt.Errorf("finding connection: %w", err)
	}
	return &conn, nil
}

// FindByCompany returns every connection touching the company on either
// side, using the two side indexes rather than a table scan.
func (r *ConnectionRepository) FindByCompany(ctx context.Context, companyID uint64) ([]model.Connection, error) {
	var conns []model.Connection
	if err := r.db.WithContext(ctx).
		Where("company_a = ? OR company_b = ?", companyID, companyID).
		Find(&conns).Error; err != nil {
		return nil, fmt.Errorf("finding company connections: %w", err)
	}
	return conns, nil
}

func (r *ConnectionRepository) Create(ctx context.Context, conn *model.Connection) error {
	if err := r.db.WithContext(ctx).Create(conn).Error; err != nil {
		return fmt.Errorf("creating connection: %w", err)
	}
	return nil
}

func (r *ConnectionRepository) Update(ctx context.Context, conn *model.Connection) error {
	if err := r.db.WithContext(ctx).Save(conn).Error; err != nil {
		return fmt.Errorf("updating connection: %w", err)
	}
	return nil
}

func (r *ConnectionRepository) Delete(ctx context.Context, id uint64) error {
	if err := r.db.WithContext(ctx).Delete(&model.Connection{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("deleting connection: %w", err)
	}
	return nil
}

type ConnectionChatRepository struct {
	db *gorm.DB
}

func NewConnectionChatRepository(db *gorm.DB) *ConnectionChatRepository {
	return &ConnectionChatRepository{db: db}
}

func (r *ConnectionChatRepository) Create(ctx context.Context, msg *model.ConnectionChat) error {
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return fmt.Errorf("creating connection chat: %w", err)
	}
	return nil
}

func (r *ConnectionChatRepository) ListByConnection(ctx context.Context, connectionID uint64) ([]model.ConnectionChat, error) {
	var msgs []model.ConnectionChat
	if err := r.db.WithContext(ctx).
		Where("connection_id = ?", connectionID).
		Order("id").
		Find(&msgs).Error; err != nil {
		return nil, fmt.Errorf("listing connection chat: %w", err)
	}
	return msgs, nil
}

func (r *ConnectionChatRepository) DeleteByConnection(ctx context.Context, connectionID uint64) error {
	if err := r.db.WithContext(ctx).
		Delete(&model.ConnectionChat{}, "connection_id = ?", connectionID).Error; err != nil {
		return fmt.Errorf("deleting connection chat: %w", err)
	}
	return nil
}
