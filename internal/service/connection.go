// internal/service/connection.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/tomvanloon/signnet/internal/domain"
	"github.com/tomvanloon/signnet/internal/model"
	"github.com/tomvanloon/signnet/internal/repository"
	"gorm.io/gorm"
)

// ConnectionService drives the pairwise relationship between two companies
// through pending, accepted, and blocked, plus the attached chat.
type ConnectionService struct {
	db        *gorm.DB
	authority *Authority
	notifier  *Notifier
	validate  *validator.Validate
}

func NewConnectionService(db *gorm.DB, authority *Authority, notifier *Notifier) *ConnectionService {
	return &ConnectionService{
		db:        db,
		authority: authority,
		notifier:  notifier,
		validate:  validator.New(),
	}
}

// requesterCompanyID resolves which side of the connection the stored
// requester identity currently belongs to. Checked against both sides
// rather than the requester's cursor: their active company may have moved
// since the request.
func requesterCompanyID(ctx context.Context, tx *gorm.DB, conn *model.Connection) (uint64, error) {
	memberships := repository.NewMembershipRepository(tx)
	if _, err := memberships.Find(ctx, conn.RequestedBy, conn.CompanyA); err == nil {
		return conn.CompanyA, nil
	} else if !errors.Is(err, domain.ErrMembershipNotFound) {
		return 0, err
	}
	if _, err := memberships.Find(ctx, conn.RequestedBy, conn.CompanyB); err == nil {
		return conn.CompanyB, nil
	} else if !errors.Is(err, domain.ErrMembershipNotFound) {
		return 0, err
	}
	return 0, domain.ErrMembershipNotFound
}

type RequestConnectionInput struct {
	TargetCompanyID uint64 `json:"target_company_id" validate:"required"`
	Message         string `json:"message" validate:"max=500"`
}

// Request opens a pending connection to another company. If the target has
// blocked the caller's company the call succeeds without touching the row:
// the block is never revealed.
func (s *ConnectionService) Request(ctx context.Context, caller uuid.UUID, input RequestConnectionInput) error {
	if err := s.validate.Struct(input); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, myCompanyID, err := s.authority.Resolve(ctx, tx, caller, model.RoleAdmin)
		if err != nil {
			return err
		}
		if myCompanyID == input.TargetCompanyID {
			return domain.ErrSelfTarget
		}
		if _, err := repository.NewCompanyRepository(tx).FindByID(ctx, input.TargetCompanyID); err != nil {
			return err
		}

		conns := repository.NewConnectionRepository(tx)
		existing, err := conns.FindByPair(ctx, myCompanyID, input.TargetCompanyID)
		if err == nil {
			if existing.Status == model.ConnectionBlocked {
				// Ghosting: succeed silently, change nothing.
				return nil
			}
			return domain.ErrConnectionExists
		}
		if !errors.Is(err, domain.ErrConnectionNotFound) {
			return err
		}

		lo, hi := model.OrderedPair(myCompanyID, input.TargetCompanyID)
		if err := conns.Create(ctx, &model.Connection{
			CompanyA:       lo,
			CompanyB:       hi,
			Status:         model.ConnectionPending,
			RequestedBy:    caller,
			InitialMessage: input.Message,
		}); err != nil {
			return err
		}

		return s.notifier.NotifyCompanyRole(ctx, tx, input.TargetCompanyID, model.RoleAdmin, nil,
			model.NotifyConnectionRequested, "Connection request",
			"A company wants to connect with yours.")
	})
}

// Cancel withdraws a pending request. Requester side only.
func (s *ConnectionService) Cancel(ctx context.Context, caller uuid.UUID, targetCompanyID uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, myCompanyID, err := s.authority.Resolve(ctx, tx, caller, model.RoleAdmin)
		if err != nil {
			return err
		}

		conn, err := repository.NewConnectionRepository(tx).FindByPair(ctx, myCompanyID, targetCompanyID)
		if err != nil {
			return err
		}
		if conn.Status != model.ConnectionPending {
			return domain.ErrConnectionNotPending
		}
		requester, err := requesterCompanyID(ctx, tx, conn)
		if err != nil {
			return err
		}
		if requester != myCompanyID {
			return domain.ErrNotRequester
		}

		return deleteConnectionCascade(ctx, tx, conn.ID)
	})
}

// Accept moves a pending connection to accepted. Non-requester side only.
func (s *ConnectionService) Accept(ctx context.Context, caller uuid.UUID, targetCompanyID uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, myCompanyID, err := s.authority.Resolve(ctx, tx, caller, model.RoleAdmin)
		if err != nil {
			return err
		}

		conns := repository.NewConnectionRepository(tx)
		conn, err := conns.FindByPair(ctx, myCompanyID, targetCompanyID)
		if err != nil {
			return err
		}
		if conn.Status != model.ConnectionPending {
			return domain.ErrConnectionNotPending
		}
		requester, err := requesterCompanyID(ctx, tx, conn)
		if err != nil {
			return err
		}
		if requester == myCompanyID {
			return domain.ErrIsRequester
		}

		conn.Status = model.ConnectionAccepted
		if err := conns.Update(ctx, conn); err != nil {
			return err
		}

		return s.notifier.NotifyCompanyRole(ctx, tx, conn.Other(myCompanyID), model.RoleAdmin, nil,
			model.NotifyConnectionAccepted, "Connection accepted",
			"Your connection request was accepted.")
	})
}

// Decline rejects a pending request and deletes the row and its chat.
// Non-requester side only.
func (s *ConnectionService) Decline(ctx context.Context, caller uuid.UUID, targetCompanyID uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, myCompanyID, err := s.authority.Resolve(ctx, tx, caller, model.RoleAdmin)
		if err != nil {
			return err
		}

		conn, err := repository.NewConnectionRepository(tx).FindByPair(ctx, myCompanyID, targetCompanyID)
		if err != nil {
			return err
		}
		if conn.Status != model.ConnectionPending {
			return domain.ErrConnectionNotPending
		}
		requester, err := requesterCompanyID(ctx, tx, conn)
		if err != nil {
			return err
		}
		if requester == myCompanyID {
			return domain.ErrIsRequester
		}

		if err := deleteConnectionCascade(ctx, tx, conn.ID); err != nil {
			return err
		}

		return s.notifier.NotifyCompanyRole(ctx, tx, requester, model.RoleAdmin, nil,
			model.NotifyConnectionDeclined, "Connection declined",
			"Your connection request was declined.")
	})
}

// Disconnect tears down an accepted connection from either side.
func (s *ConnectionService) Disconnect(ctx context.Context, caller uuid.UUID, targetCompanyID uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, myCompanyID, err := s.authority.Resolve(ctx, tx, caller, model.RoleAdmin)
		if err != nil {
			return err
		}

		conn, err := repository.NewConnectionRepository(tx).FindByPair(ctx, myCompanyID, targetCompanyID)
		if err != nil {
			return err
		}
		if conn.Status != model.ConnectionAccepted {
			return domain.ErrConnectionNotAccepted
		}

		if err := deleteConnectionCascade(ctx, tx, conn.ID); err != nil {
			return err
		}

		return s.notifier.NotifyCompanyRole(ctx, tx, conn.Other(myCompanyID), model.RoleAdmin, nil,
			model.NotifyConnectionDisconnected, "Connection removed",
			"A connected company has disconnected from yours.")
	})
}

// Block works from any state: an existing row flips to blocked, a missing
// one is created blocked. Re-blocking an already blocked pair succeeds
// silently and keeps the original blocker — first blocker wins, and who
// blocked first is never exposed.
func (s *ConnectionService) Block(ctx context.Context, caller uuid.UUID, targetCompanyID uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, myCompanyID, err := s.authority.Resolve(ctx, tx, caller, model.RoleAdmin)
		if err != nil {
			return err
		}
		if myCompanyID == targetCompanyID {
			return domain.ErrSelfTarget
		}
		if _, err := repository.NewCompanyRepository(tx).FindByID(ctx, targetCompanyID); err != nil {
			return err
		}

		conns := repository.NewConnectionRepository(tx)
		conn, err := conns.FindByPair(ctx, myCompanyID, targetCompanyID)
		switch {
		case err == nil:
			if conn.Status == model.ConnectionBlocked {
				return nil
			}
			conn.Status = model.ConnectionBlocked
			conn.BlockingCompanyID = &myCompanyID
			if err := conns.Update(ctx, conn); err != nil {
				return err
			}
		case errors.Is(err, domain.ErrConnectionNotFound):
			lo, hi := model.OrderedPair(myCompanyID, targetCompanyID)
			if err := conns.Create(ctx, &model.Connection{
				CompanyA:          lo,
				CompanyB:          hi,
				Status:            model.ConnectionBlocked,
				RequestedBy:       caller,
				BlockingCompanyID: &myCompanyID,
			}); err != nil {
				return err
			}
		default:
			return err
		}

		slog.InfoContext(ctx, "audit: company blocked",
			"actor", idShort(caller), "company", myCompanyID, "target", targetCompanyID)
		return nil
	})
}

// Unblock removes a blocked row. Only the company recorded as the blocker
// may do it.
func (s *ConnectionService) Unblock(ctx context.Context, caller uuid.UUID, targetCompanyID uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, myCompanyID, err := s.authority.Resolve(ctx, tx, caller, model.RoleAdmin)
		if err != nil {
			return err
		}

		conn, err := repository.NewConnectionRepository(tx).FindByPair(ctx, myCompanyID, targetCompanyID)
		if err != nil {
			return err
		}
		if conn.Status != model.ConnectionBlocked {
			return domain.ErrConnectionNotBlocked
		}
		if conn.BlockingCompanyID == nil || *conn.BlockingCompanyID != myCompanyID {
			return domain.ErrNotBlocker
		}

		if err := deleteConnectionCascade(ctx, tx, conn.ID); err != nil {
			return err
		}

		slog.InfoContext(ctx, "audit: company unblocked",
			"actor", idShort(caller), "company", myCompanyID, "target", targetCompanyID)
		return nil
	})
}

type SendConnectionChatInput struct {
	ConnectionID uint64 `json:"connection_id" validate:"required"`
	Text         string `json:"text" validate:"required,max=500"`
}

// SendChat posts into a connection. Field role at minimum, sender's active
// company must be one of the two sides, and a blocked connection takes no
// messages from either.
func (s *ConnectionService) SendChat(ctx context.Context, caller uuid.UUID, input SendConnectionChatInput) (*model.ConnectionChat, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	var msg *model.ConnectionChat
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, myCompanyID, err := s.authority.Resolve(ctx, tx, caller, model.RoleField)
		if err != nil {
			return err
		}

		conn, err := repository.NewConnectionRepository(tx).FindByID(ctx, input.ConnectionID)
		if err != nil {
			return err
		}
		if !conn.Involves(myCompanyID) {
			return domain.ErrNotConnectionParty
		}
		if conn.Status == model.ConnectionBlocked {
			return domain.ErrConnectionBlocked
		}

		msg = &model.ConnectionChat{
			ConnectionID: conn.ID,
			Sender:       caller,
			Text:         input.Text,
		}
		return repository.NewConnectionChatRepository(tx).Create(ctx, msg)
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// ListChat returns the messages of a connection the caller's company is
// party to.
func (s *ConnectionService) ListChat(ctx context.Context, caller uuid.UUID, connectionID uint64) ([]model.ConnectionChat, error) {
	var msgs []model.ConnectionChat
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, myCompanyID, err := s.authority.Resolve(ctx, tx, caller, model.RoleField)
		if err != nil {
			return err
		}
		conn, err := repository.NewConnectionRepository(tx).FindByID(ctx, connectionID)
		if err != nil {
			return err
		}
		if !conn.Involves(myCompanyID) {
			return domain.ErrNotConnectionParty
		}
		msgs, err = repository.NewConnectionChatRepository(tx).ListByConnection(ctx, conn.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

// List returns the caller company's connections. A row blocked by the
// other side is omitted so a blocked company cannot learn of the block by
// listing.
func (s *ConnectionService) List(ctx context.Context, caller uuid.UUID) ([]model.Connection, error) {
	var visible []model.Connection
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, myCompanyID, err := s.authority.Resolve(ctx, tx, caller, model.RoleField)
		if err != nil {
			return err
		}
		conns, err := repository.NewConnectionRepository(tx).FindByCompany(ctx, myCompanyID)
		if err != nil {
			return err
		}
		for _, conn := range conns {
			if conn.Status == model.ConnectionBlocked &&
				(conn.BlockingCompanyID == nil || *conn.BlockingCompanyID != myCompanyID) {
				continue
			}
			visible = append(visible, conn)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return visible, nil
}
