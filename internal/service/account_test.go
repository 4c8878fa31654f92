package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomvanloon/signnet/internal/auth"
	"github.com/tomvanloon/signnet/internal/domain"
	"github.com/tomvanloon/signnet/internal/mocks"
	"github.com/tomvanloon/signnet/internal/service"
	"go.uber.org/mock/gomock"
)

func TestSignup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("creates account and returns token", func(t *testing.T) {
		out, err := f.accounts.Signup(ctx, service.SignupInput{
			FullName:        "Tom van Loon",
			Nickname:        "tom",
			Email:           "tom@example.com",
			Password:        "correct_password",
			ConfirmPassword: "correct_password",
		})

		require.NoError(t, err)
		assert.NotEmpty(t, out.Token)
		assert.Equal(t, "tom@example.com", out.Account.Email)
		assert.Nil(t, out.Account.ActiveCompanyID)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		_, err := f.accounts.Signup(ctx, service.SignupInput{
			FullName:        "Other Tom",
			Nickname:        "tom2",
			Email:           "tom@example.com",
			Password:        "correct_password",
			ConfirmPassword: "correct_password",
		})

		assert.ErrorIs(t, err, domain.ErrAccountExists)
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("rejects mismatched password confirmation", func(t *testing.T) {
		_, err := f.accounts.Signup(ctx, service.SignupInput{
			FullName:        "Mismatch",
			Nickname:        "mismatch",
			Email:           "mismatch@example.com",
			Password:        "correct_password",
			ConfirmPassword: "different_password",
		})

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestSignupSendsWelcomeEmail(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mailer := mocks.NewMockSender(ctrl)
	mailer.EXPECT().
		Send(gomock.Any(), "greet@example.com", gomock.Any(), gomock.Any()).
		Return(nil)

	db := setupTestDB(t)
	svc := service.NewAccountService(
		db,
		auth.NewPasswordHasher(),
		auth.NewTokenManager("test_secret", time.Hour),
		mailer,
	)

	_, err := svc.Signup(context.Background(), service.SignupInput{
		FullName:        "Greeted User",
		Nickname:        "greet",
		Email:           "greet@example.com",
		Password:        "correct_password",
		ConfirmPassword: "correct_password",
	})
	require.NoError(t, err)
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.signup(t, "alice")

	t.Run("valid credentials", func(t *testing.T) {
		out, err := f.accounts.Login(ctx, service.LoginInput{
			Email:    "alice@example.com",
			Password: "correct_password",
		})

		require.NoError(t, err)
		assert.NotEmpty(t, out.Token)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := f.accounts.Login(ctx, service.LoginInput{
			Email:    "alice@example.com",
			Password: "wrong_password",
		})

		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := f.accounts.Login(ctx, service.LoginInput{
			Email:    "nobody@example.com",
			Password: "correct_password",
		})

		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})
}

func TestSetActiveCompany(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice := f.signup(t, "alice")
	bob := f.signup(t, "bob")
	acme := f.createCompany(t, alice, "acme-signs")

	t.Run("requires membership", func(t *testing.T) {
		err := f.accounts.SetActiveCompany(ctx, bob, acme.ID)
		assert.ErrorIs(t, err, domain.ErrNotAMember)
	})

	t.Run("moves the cursor for a member", func(t *testing.T) {
		second := f.createCompany(t, alice, "acme-two")

		require.NoError(t, f.accounts.SetActiveCompany(ctx, alice, acme.ID))
		account, err := f.accounts.Me(ctx, alice)
		require.NoError(t, err)
		require.NotNil(t, account.ActiveCompanyID)
		assert.Equal(t, acme.ID, *account.ActiveCompanyID)

		require.NoError(t, f.accounts.SetActiveCompany(ctx, alice, second.ID))
		account, err = f.accounts.Me(ctx, alice)
		require.NoError(t, err)
		assert.Equal(t, second.ID, *account.ActiveCompanyID)
	})
}
