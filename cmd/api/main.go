// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"time"

	"github.com/tomvanloon/signnet/internal/auth"
	"github.com/tomvanloon/signnet/internal/config"
	"github.com/tomvanloon/signnet/internal/email"
	"github.com/tomvanloon/signnet/internal/handler"
	"github.com/tomvanloon/signnet/internal/middleware"
	"github.com/tomvanloon/signnet/internal/model"
	"github.com/tomvanloon/signnet/internal/service"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var rootCmd = &cobra.Command{
	Use:   "signnet",
	Short: "Sign-shop directory and collaboration API",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		db, err := setupDatabase(cfg)
		if err != nil {
			return fmt.Errorf("setting up database: %w", err)
		}
		return migrate(db)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "startup error: %v\n", err)
		os.Exit(1)
	}
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
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
	)
}

func run() error {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     slog.LevelInfo,
		AddSource: true,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{
					Key:   a.Key,
					Value: slog.StringValue(a.Value.Time().Format(time.RFC3339)),
				}
			}
			return a
		},
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := setupDatabase(cfg)
	if err != nil {
		return fmt.Errorf("setting up database: %w", err)
	}

	// Initialize auth services
	passwordHasher := auth.NewPasswordHasher()
	tokenManager := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.ExpiryPeriod)

	// Initialize email sender
	var mailer email.Sender
	if cfg.Sendgrid.APIKey != "" {
		mailer = email.NewSendgridSender(cfg.Sendgrid.APIKey, cfg.Sendgrid.From, "Signnet")
	} else {
		mailer = email.NoopSender{}
	}

	// Initialize shared service plumbing
	authority := service.NewAuthority()
	notifier := service.NewNotifier()
	codes := service.NewCodeGenerator()

	// Initialize services
	accountService := service.NewAccountService(db, passwordHasher, tokenManager, mailer)
	companyService := service.NewCompanyService(db, authority, notifier, codes)
	connectionService := service.NewConnectionService(db, authority, notifier)
	projectService := service.NewProjectService(db, authority, notifier)
	notificationService := service.NewNotificationService(db)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(accountService)
	accountHandler := handler.NewAccountHandler(accountService)
	companyHandler := handler.NewCompanyHandler(companyService)
	connectionHandler := handler.NewConnectionHandler(connectionService)
	projectHandler := handler.NewProjectHandler(projectService)
	notificationHandler := handler.NewNotificationHandler(notificationService)

	// Create router
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(loggingMiddleware(logger))
	r.Use(recoveryMiddleware(logger))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(chimw.AllowContentType("application/json"))

				r.Post("/signup", authHandler.SignupHandler)
				r.Post("/login", authHandler.LoginHandler)
			})
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(tokenManager))

			r.Route("/me", func(r chi.Router) {
				r.Get("/", accountHandler.MeHandler)
				r.Put("/", accountHandler.UpdateProfileHandler)
				r.Get("/memberships", accountHandler.MembershipsHandler)
				r.Put("/active-company/{companyID}", accountHandler.SetActiveCompanyHandler)
			})

			r.Route("/companies", func(r chi.Router) {
				r.Post("/", companyHandler.CreateHandler)
				r.Get("/{companyID}", companyHandler.GetHandler)
				r.Post("/join", companyHandler.JoinHandler)
			})

			// Operations on the caller's active company
			r.Route("/company", func(r chi.Router) {
				r.Put("/", companyHandler.UpdateProfileHandler)
				r.Delete("/", companyHandler.DeleteHandler)
				r.Put("/capabilities", companyHandler.UpdateCapabilitiesHandler)
				r.Get("/members", companyHandler.ListMembersHandler)
				r.Post("/members", companyHandler.AddColleagueHandler)
				r.Delete("/members/{identity}", companyHandler.RemoveColleagueHandler)
				r.Post("/members/role", companyHandler.ChangeRoleHandler)
				r.Post("/ownership", companyHandler.TransferOwnershipHandler)
				r.Post("/leave", companyHandler.LeaveHandler)
				r.Get("/invite-codes", companyHandler.ListInviteCodesHandler)
				r.Post("/invite-codes", companyHandler.GenerateInviteCodeHandler)
				r.Delete("/invite-codes/{code}", companyHandler.DeleteInviteCodeHandler)
			})

			r.Route("/connections", func(r chi.Router) {
				r.Get("/", connectionHandler.ListHandler)
				r.Post("/", connectionHandler.RequestHandler)
				r.Post("/{companyID}/cancel", connectionHandler.CancelHandler())
				r.Post("/{companyID}/accept", connectionHandler.AcceptHandler())
				r.Post("/{companyID}/decline", connectionHandler.DeclineHandler())
				r.Post("/{companyID}/disconnect", connectionHandler.DisconnectHandler())
				r.Post("/{companyID}/block", connectionHandler.BlockHandler())
				r.Post("/{companyID}/unblock", connectionHandler.UnblockHandler())
				r.Post("/chat", connectionHandler.SendChatHandler)
				r.Get("/{connectionID}/chat", connectionHandler.ListChatHandler)
			})

			r.Route("/projects", func(r chi.Router) {
				r.Get("/", projectHandler.ListHandler)
				r.Post("/", projectHandler.CreateHandler)
				r.Post("/{projectID}/invite", projectHandler.InviteHandler)
				r.Post("/{projectID}/accept", projectHandler.AcceptInviteHandler())
				r.Post("/{projectID}/decline", projectHandler.DeclineInviteHandler())
				r.Post("/{projectID}/leave", projectHandler.LeaveHandler())
				r.Post("/{projectID}/kick", projectHandler.KickHandler)
				r.Delete("/{projectID}", projectHandler.DeleteHandler())
				r.Post("/{projectID}/chat", projectHandler.SendChatHandler)
				r.Get("/{projectID}/chat", projectHandler.ListChatHandler)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", notificationHandler.ListHandler)
				r.Post("/{notificationID}/read", notificationHandler.MarkReadHandler)
			})
		})
	})

	// Create server
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Server error channel
	serverErrors := make(chan error, 1)

	// Start server
	go func() {
		logger.Info("server starting", "port", cfg.Server.Port)
		serverErrors <- srv.ListenAndServe()
	}()

	// Shutdown channel
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt)

	// Wait for shutdown or error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info("shutdown started", "signal", sig)

		// Give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		// Gracefully shutdown the server
		if err := srv.Shutdown(ctx); err != nil {
			// If shutdown times out, forcefully close
			srv.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}

	return nil
}

func setupDatabase(cfg *config.Config) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting database instance: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return db, nil
}

func loggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				logger.Info("request completed",
					"method", r.Method,
					"path", r.URL.Path,
					"duration", time.Since(start),
					"status", ww.Status(),
					"size", ww.BytesWritten(),
					"requestID", chimw.GetReqID(r.Context()),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

func recoveryMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					err := errors.New("panic recovered")
					logger.Error("panic recovered",
						"error", err,
						"panic", rvr,
						"stack", string(debug.Stack()),
						"requestID", chimw.GetReqID(r.Context()),
					)

					w.Write([]byte("{\"error\":\"error encountered\"}"))
					return
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
