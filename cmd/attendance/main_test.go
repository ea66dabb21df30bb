package main

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/example/attendance-console/internal/application"
	"github.com/example/attendance-console/internal/config"
	"github.com/example/attendance-console/internal/persistence"
	"github.com/example/attendance-console/internal/persistence/memory"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func memoryRepositories(t *testing.T) *repositories {
	t.Helper()

	repos, err := openRepositories(context.Background(), config.Config{}, true)
	if err != nil {
		t.Fatalf("openRepositories returned error: %v", err)
	}
	t.Cleanup(func() { _ = repos.close() })
	return repos
}

func TestSeedRootUser(t *testing.T) {
	t.Parallel()

	cfg := config.Config{RootPassword: "PE18_admin_2024"}
	now := time.Date(2024, time.March, 4, 7, 0, 0, 0, time.UTC)

	t.Run("seeds an empty store", func(t *testing.T) {
		t.Parallel()

		repos := memoryRepositories(t)
		if err := seedRootUser(context.Background(), repos, cfg, now, testLogger()); err != nil {
			t.Fatalf("seedRootUser returned error: %v", err)
		}

		stored, err := repos.users.GetUser(context.Background(), application.RootUserID)
		if err != nil {
			t.Fatalf("expected root user to exist, got %v", err)
		}
		if stored.Username != "admin18" {
			t.Fatalf("expected username admin18, got %q", stored.Username)
		}
		if stored.Role != string(application.RoleAdmin) {
			t.Fatalf("expected admin role, got %q", stored.Role)
		}
		if !stored.IsActive {
			t.Fatal("expected root user to be active")
		}
		if err := application.VerifyPassword(stored.PasswordHash, cfg.RootPassword); err != nil {
			t.Fatalf("expected root password to verify, got %v", err)
		}
	})

	t.Run("leaves an existing credential alone", func(t *testing.T) {
		t.Parallel()

		repos := memoryRepositories(t)
		if err := seedRootUser(context.Background(), repos, cfg, now, testLogger()); err != nil {
			t.Fatalf("first seed returned error: %v", err)
		}
		before, err := repos.users.GetUser(context.Background(), application.RootUserID)
		if err != nil {
			t.Fatalf("expected root user to exist, got %v", err)
		}

		rotated := cfg
		rotated.RootPassword = "otra_clave"
		if err := seedRootUser(context.Background(), repos, rotated, now.Add(time.Hour), testLogger()); err != nil {
			t.Fatalf("second seed returned error: %v", err)
		}

		after, err := repos.users.GetUser(context.Background(), application.RootUserID)
		if err != nil {
			t.Fatalf("expected root user to exist, got %v", err)
		}
		if after.PasswordHash != before.PasswordHash {
			t.Fatal("expected stored credential to be unchanged")
		}
	})
}

func TestUserRepositoryAdapter(t *testing.T) {
	t.Parallel()

	baseUser := func() application.User {
		now := time.Date(2024, time.March, 4, 7, 0, 0, 0, time.UTC)
		return application.User{
			ID:          "user-1",
			Username:    "empleado001",
			FullName:    "Empleada Uno",
			Role:        application.RoleEmployee,
			ShiftType:   application.ShiftMorning,
			Areas:       []string{"Cocina"},
			DaysOff:     []int{0, 6},
			IsActive:    true,
			PrimaryRole: "Cocinera",
			CreatedAt:   now,
			UpdatedAt:   now,
		}
	}

	t.Run("round-trips a created user", func(t *testing.T) {
		t.Parallel()

		adapter := newUserRepositoryAdapter(memory.NewStore())
		created, err := adapter.CreateUser(context.Background(), baseUser(), "hash-1")
		if err != nil {
			t.Fatalf("CreateUser returned error: %v", err)
		}
		if created.PrimaryRole != "Cocinera" {
			t.Fatalf("expected primary role to survive, got %q", created.PrimaryRole)
		}
		if created.SecondaryRole != "" {
			t.Fatalf("expected empty secondary role, got %q", created.SecondaryRole)
		}
		if len(created.DaysOff) != 2 {
			t.Fatalf("expected two days off, got %v", created.DaysOff)
		}
	})

	t.Run("empty password hash keeps the stored credential", func(t *testing.T) {
		t.Parallel()

		store := memory.NewStore()
		adapter := newUserRepositoryAdapter(store)
		created, err := adapter.CreateUser(context.Background(), baseUser(), "hash-1")
		if err != nil {
			t.Fatalf("CreateUser returned error: %v", err)
		}

		created.FullName = "Empleada Renombrada"
		if _, err := adapter.UpdateUser(context.Background(), created, ""); err != nil {
			t.Fatalf("UpdateUser returned error: %v", err)
		}

		stored, err := store.GetUser(context.Background(), created.ID)
		if err != nil {
			t.Fatalf("GetUser returned error: %v", err)
		}
		if stored.PasswordHash != "hash-1" {
			t.Fatalf("expected credential hash-1 to be retained, got %q", stored.PasswordHash)
		}
		if stored.FullName != "Empleada Renombrada" {
			t.Fatalf("expected updated name, got %q", stored.FullName)
		}
	})
}

func TestRosterRepositoryAdapterSaveReturnsStoredRoster(t *testing.T) {
	t.Parallel()

	adapter := newRosterRepositoryAdapter(memory.NewStore())
	saved, err := adapter.SaveRoster(context.Background(), application.WeeklyRoster{
		UserID:    "user-1",
		WeekStart: "2024-03-03",
		Assignments: map[int]application.RosterAssignment{
			1: {Shift: application.ShiftMorning, Area: "Cocina"},
		},
	})
	if err != nil {
		t.Fatalf("SaveRoster returned error: %v", err)
	}
	cell, ok := saved.Assignments[1]
	if !ok {
		t.Fatal("expected monday assignment to be present")
	}
	if cell.Shift != application.ShiftMorning || cell.Area != "Cocina" {
		t.Fatalf("unexpected assignment %+v", cell)
	}
}

func TestCredentialStoreAdapter(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	now := time.Date(2024, time.March, 4, 7, 0, 0, 0, time.UTC)
	err := store.CreateUser(context.Background(), persistence.User{
		ID:           "user-1",
		Username:     "empleado001",
		FullName:     "Empleada Uno",
		Role:         string(application.RoleEmployee),
		PasswordHash: "hash-1",
		ShiftType:    string(application.ShiftMorning),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}

	adapter := newCredentialStoreAdapter(store)
	creds, err := adapter.GetUserCredentialsByUsername(context.Background(), "empleado001")
	if err != nil {
		t.Fatalf("GetUserCredentialsByUsername returned error: %v", err)
	}
	if creds.PasswordHash != "hash-1" {
		t.Fatalf("expected hash-1, got %q", creds.PasswordHash)
	}
	if creds.User.ShiftType != application.ShiftMorning {
		t.Fatalf("expected morning shift, got %q", creds.User.ShiftType)
	}
}

func TestRandomHex(t *testing.T) {
	t.Parallel()

	token := randomHex(32)
	if len(token) != 64 {
		t.Fatalf("expected 64 hex characters, got %d", len(token))
	}
	if token == randomHex(32) {
		t.Fatal("expected distinct values on consecutive calls")
	}

	if got := randomHex(0); len(got) != 32 {
		t.Fatalf("expected fallback length of 16 bytes, got %d characters", len(got))
	}
}
