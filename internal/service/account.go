// internal/service/account.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/tomvanloon/signnet/internal/auth"
	"github.com/tomvanloon/signnet/internal/domain"
	"github.com/tomvanloon/signnet/internal/email"
	"github.com/tomvanloon/signnet/internal/model"
	"github.com/tomvanloon/signnet/internal/repository"
	"gorm.io/gorm"
)

// AccountService owns sign-up, login, and account self-service. The engine
// procedures never see credentials; they receive the identity this service
// authenticates.
type AccountService struct {
	db           *gorm.DB
	hasher       *auth.PasswordHasher
	tokenManager *auth.TokenManager
	mailer       email.Sender
	validate     *validator.Validate
}

func NewAccountService(db *gorm.DB, hasher *auth.PasswordHasher, tokenManager *auth.TokenManager, mailer email.Sender) *AccountService {
	return &AccountService{
		db:           db,
		hasher:       hasher,
		tokenManager: tokenManager,
		mailer:       mailer,
		validate:     validator.New(),
	}
}

type SignupInput struct {
	FullName        string `json:"full_name" validate:"required,max=50"`
	Nickname        string `json:"nickname" validate:"required,max=25"`
	Email           string `json:"email" validate:"required,email,max=100"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

type SignupOutput struct {
	Account *model.UserAccount `json:"account"`
	Token   string             `json:"token"`
}

func (s *AccountService) Signup(ctx context.Context, input SignupInput) (*SignupOutput, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	account := &model.UserAccount{
		Identity:     uuid.New(),
		FullName:     input.FullName,
		Nickname:     input.Nickname,
		Email:        input.Email,
		PasswordHash: hash,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		accounts := repository.NewUserAccountRepository(tx)
		if _, err := accounts.FindByEmail(ctx, input.Email); err == nil {
			return domain.ErrAccountExists
		} else if !errors.Is(err, domain.ErrAccountNotFound) {
			return err
		}
		return accounts.Create(ctx, account)
	})
	if err != nil {
		return nil, err
	}

	token, err := s.tokenManager.Generate(account.Identity.String(), account.Email)
	if err != nil {
		return nil, fmt.Errorf("generating token: %w", err)
	}

	// Best effort; the account exists whether or not the welcome email lands.
	if err := s.mailer.Send(ctx, account.Email, "Welcome to signnet",
		fmt.Sprintf("Hi %s, your signnet account is ready.", account.Nickname)); err != nil {
		slog.WarnContext(ctx, "welcome email failed", "error", err)
	}

	return &SignupOutput{Account: account, Token: token}, nil
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginOutput struct {
	Account *model.UserAccount `json:"account"`
	Token   string             `json:"token"`
}

func (s *AccountService) Login(ctx context.Context, input LoginInput) (*LoginOutput, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	account, err := repository.NewUserAccountRepository(s.db).FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrUnauthenticated
		}
		return nil, err
	}

	verified, err := s.hasher.Verify(input.Password, account.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verifying password: %w", err)
	}
	if !verified {
		return nil, domain.ErrUnauthenticated
	}

	token, err := s.tokenManager.Generate(account.Identity.String(), account.Email)
	if err != nil {
		return nil, fmt.Errorf("generating token: %w", err)
	}

	return &LoginOutput{Account: account, Token: token}, nil
}

type UpdateProfileInput struct {
	Nickname string `json:"nickname" validate:"required,max=25"`
	Email    string `json:"email" validate:"required,email,max=100"`
}

func (s *AccountService) UpdateProfile(ctx context.Context, caller uuid.UUID, input UpdateProfileInput) (*model.UserAccount, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	var account *model.UserAccount
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		accounts := repository.NewUserAccountRepository(tx)
		var err error
		account, err = accounts.FindByIdentity(ctx, caller)
		if err != nil {
			return domain.ErrUnauthenticated
		}
		account.Nickname = input.Nickname
		account.Email = input.Email
		return accounts.Update(ctx, account)
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// SetActiveCompany moves the caller's active-company cursor. The cursor may
// only point at a company the caller actually holds a membership in.
func (s *AccountService) SetActiveCompany(ctx context.Context, caller uuid.UUID, companyID uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		accounts := repository.NewUserAccountRepository(tx)
		if _, err := accounts.FindByIdentity(ctx, caller); err != nil {
			return domain.ErrUnauthenticated
		}
		if _, err := repository.NewMembershipRepository(tx).Find(ctx, caller, companyID); err != nil {
			return domain.ErrNotAMember
		}
		return accounts.SetActiveCompany(ctx, caller, &companyID)
	})
}

func (s *AccountService) Me(ctx context.Context, caller uuid.UUID) (*model.UserAccount, error) {
	account, err := repository.NewUserAccountRepository(s.db).FindByIdentity(ctx, caller)
	if err != nil {
		return nil, domain.ErrUnauthenticated
	}
	return account, nil
}

// Memberships lists every company membership the caller holds.
func (s *AccountService) Memberships(ctx context.Context, caller uuid.UUID) ([]model.CompanyMember, error) {
	if _, err := repository.NewUserAccountRepository(s.db).FindByIdentity(ctx, caller); err != nil {
		return nil, domain.ErrUnauthenticated
	}
	return repository.NewMembershipRepository(s.db).FindByIdentity(ctx, caller)
}
