package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/example/attendance-console/internal/application"
	"github.com/example/attendance-console/internal/config"
	httptransport "github.com/example/attendance-console/internal/http"
	"github.com/example/attendance-console/internal/persistence"
	"github.com/example/attendance-console/internal/persistence/memory"
	"github.com/example/attendance-console/internal/persistence/sqlite"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand(logger).ExecuteContext(ctx); err != nil {
		logger.Error("command failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func newRootCommand(logger *slog.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:           "attendance",
		Short:         "Employee time and attendance service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCommand(logger))
	return root
}

func newServeCommand(logger *slog.Logger) *cobra.Command {
	var configPath string
	var useMemory bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the attendance HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), logger, configPath, useMemory)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to a YAML configuration file")
	cmd.Flags().BoolVar(&useMemory, "memory", false, "use the in-memory store instead of SQLite")
	return cmd
}

func runServe(ctx context.Context, logger *slog.Logger, configPath string, useMemory bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	location := cfg.Location()
	now := func() time.Time { return time.Now().In(location) }

	repos, err := openRepositories(ctx, cfg, useMemory)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := repos.close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := seedRootUser(ctx, repos, cfg, now(), logger); err != nil {
		return err
	}

	idGenerator := func() string { return uuid.NewString() }
	tokenGenerator := func() string { return randomHex(32) }

	userRepo := newUserRepositoryAdapter(repos.users)
	recordRepo := newAttendanceRepositoryAdapter(repos.records)
	rosterRepo := newRosterRepositoryAdapter(repos.rosters)
	sessionRepo := newSessionRepositoryAdapter(repos.sessions)
	auditRepo := newAuditRepositoryAdapter(repos.audit)
	credentials := newCredentialStoreAdapter(repos.users)

	auditService := application.NewAuditServiceWithLogger(auditRepo, idGenerator, now, logger)
	userService := application.NewUserServiceWithLogger(userRepo, auditService, idGenerator, now, logger)
	attendanceService := application.NewAttendanceServiceWithLogger(recordRepo, idGenerator, now, logger)
	rosterService := application.NewRosterServiceWithLogger(rosterRepo, userRepo, auditService, now, logger)
	reportService := application.NewReportServiceWithLogger(userRepo, recordRepo, now, logger)
	authService := application.NewAuthServiceWithLogger(credentials, sessionRepo, nil, tokenGenerator, now, cfg.SessionTTL, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:       httptransport.NewAuthHandler(authService, logger),
		Users:      httptransport.NewUserHandler(userService, logger),
		Attendance: httptransport.NewAttendanceHandler(attendanceService, userService, reportService, logger),
		Rosters:    httptransport.NewRosterHandler(rosterService, logger),
		Reports:    httptransport.NewReportHandler(reportService, auditService, logger),
	})

	protected := httptransport.RequireSession(authService, logger)(router)
	handler := httptransport.RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.EqualFold(r.URL.Path, "/login") {
			router.ServeHTTP(w, r)
			return
		}
		protected.ServeHTTP(w, r)
	}))

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("attendance API listening", "addr", server.Addr, "timezone", cfg.Timezone)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve http: %w", err)
	}
	return nil
}

func randomHex(bytes int) string {
	if bytes <= 0 {
		bytes = 16
	}
	buf := make([]byte, bytes)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}

// repositories bundles the persistence backends so serve can run against
// either SQLite or the in-memory store.
type repositories struct {
	users    persistence.UserRepository
	records  persistence.AttendanceRepository
	rosters  persistence.RosterRepository
	sessions persistence.SessionRepository
	audit    persistence.AuditRepository
	seedRoot func(ctx context.Context, user persistence.User) (bool, error)
	close    func() error
}

func openRepositories(ctx context.Context, cfg config.Config, useMemory bool) (*repositories, error) {
	if useMemory {
		store := memory.NewStore()
		return &repositories{
			users:    store,
			records:  store,
			rosters:  store,
			sessions: store,
			audit:    store,
			seedRoot: func(ctx context.Context, user persistence.User) (bool, error) {
				existing, err := store.ListUsers(ctx)
				if err != nil {
					return false, err
				}
				if len(existing) > 0 {
					return false, nil
				}
				if err := store.CreateUser(ctx, user); err != nil {
					return false, err
				}
				return true, nil
			},
			close: store.Close,
		}, nil
	}

	db, err := sqlite.Open(ctx, sqlite.DefaultConfig(cfg.SQLitePath))
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return &repositories{
		users:    sqlite.NewUserRepository(db),
		records:  sqlite.NewAttendanceRepository(db),
		rosters:  sqlite.NewRosterRepository(db),
		sessions: sqlite.NewSessionRepository(db),
		audit:    sqlite.NewAuditRepository(db),
		seedRoot: db.SeedRootUser,
		close:    db.Close,
	}, nil
}

func seedRootUser(ctx context.Context, repos *repositories, cfg config.Config, now time.Time, logger *slog.Logger) error {
	hash, err := application.CreatePasswordHash(cfg.RootPassword, application.DefaultArgon2idParams)
	if err != nil {
		return fmt.Errorf("hash root password: %w", err)
	}

	created, err := repos.seedRoot(ctx, persistence.User{
		ID:           application.RootUserID,
		Username:     "admin18",
		FullName:     "Administrador",
		Role:         string(application.RoleAdmin),
		PasswordHash: hash,
		ShiftType:    string(application.ShiftOff),
		IsActive:     true,
		CreatedAt:    now.UTC(),
		UpdatedAt:    now.UTC(),
	})
	if err != nil {
		return fmt.Errorf("seed root user: %w", err)
	}
	if created {
		logger.Info("root administrator seeded", "user_id", application.RootUserID)
	}
	return nil
}
