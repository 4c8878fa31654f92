package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/tomvanloon/signnet/internal/auth"
	"github.com/tomvanloon/signnet/internal/email"
	"github.com/tomvanloon/signnet/internal/model"
	"github.com/tomvanloon/signnet/internal/service"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.UserAccount{},
		&model.Company{},
		&model.CompanyMember{},
		&model.Capability{},
		&model.InviteCode{},
		&model.UsedInviteCode{},
		&model.Connection{},
		&model.ConnectionChat{},
		&model.Project{},
		&model.ProjectMember{},
		&model.ProjectChat{},
		&model.Notification{},
	))
	return db
}

type fixture struct {
	db            *gorm.DB
	accounts      *service.AccountService
	companies     *service.CompanyService
	connections   *service.ConnectionService
	projects      *service.ProjectService
	notifications *service.NotificationService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := setupTestDB(t)
	authority := service.NewAuthority()
	notifier := service.NewNotifier()

	return &fixture{
		db: db,
		accounts: service.NewAccountService(
			db,
			auth.NewPasswordHasher(),
			auth.NewTokenManager("test_secret", time.Hour),
			email.NoopSender{},
		),
		companies:     service.NewCompanyService(db, authority, notifier, service.NewCodeGenerator()),
		connections:   service.NewConnectionService(db, authority, notifier),
		projects:      service.NewProjectService(db, authority, notifier),
		notifications: service.NewNotificationService(db),
	}
}

// signup creates an account and returns its identity.
func (f *fixture) signup(t *testing.T, nickname string) uuid.UUID {
	t.Helper()

	out, err := f.accounts.Signup(context.Background(), service.SignupInput{
		FullName:        nickname + " Tester",
		Nickname:        nickname,
		Email:           nickname + "@example.com",
		Password:        "correct_password",
		ConfirmPassword: "correct_password",
	})
	require.NoError(t, err)
	return out.Account.Identity
}

// createCompany registers a company owned by the given identity. The
// owner's active-company cursor lands on it.
func (f *fixture) createCompany(t *testing.T, owner uuid.UUID, slug string) *model.Company {
	t.Helper()

	company, err := f.companies.Create(context.Background(), owner, service.CreateCompanyInput{
		Name:     slug,
		Slug:     slug,
		Location: "Rotterdam",
	})
	require.NoError(t, err)
	return company
}

// connect establishes an accepted connection between the active companies
// of two owners.
func (f *fixture) connect(t *testing.T, requester uuid.UUID, targetCompanyID uint64, accepter uuid.UUID, requesterCompanyID uint64) {
	t.Helper()

	ctx := context.Background()
	require.NoError(t, f.connections.Request(ctx, requester, service.RequestConnectionInput{
		TargetCompanyID: targetCompanyID,
	}))
	require.NoError(t, f.connections.Accept(ctx, accepter, requesterCompanyID))
}
