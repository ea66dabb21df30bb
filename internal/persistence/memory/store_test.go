package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/attendance-console/internal/persistence"
)

func newTestUser(id, username string) persistence.User {
	return persistence.User{
		ID:        id,
		Username:  username,
		FullName:  "Test User",
		Role:      "EMPLOYEE",
		ShiftType: "MORNING",
		IsActive:  true,
		CreatedAt: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestStoreUsers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("create and get round-trip", func(t *testing.T) {
		t.Parallel()

		store := NewStore()
		user := newTestUser("user-1", "maria.lopez")

		if err := store.CreateUser(ctx, user); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got, err := store.GetUser(ctx, "user-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Username != "maria.lopez" {
			t.Fatalf("unexpected user %+v", got)
		}
	})

	t.Run("duplicate IDs are rejected", func(t *testing.T) {
		t.Parallel()

		store := NewStore()
		user := newTestUser("user-1", "maria.lopez")
		if err := store.CreateUser(ctx, user); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := store.CreateUser(ctx, user); !errors.Is(err, persistence.ErrDuplicate) {
			t.Fatalf("expected ErrDuplicate, got %v", err)
		}
	})

	t.Run("usernames are unique case-insensitively", func(t *testing.T) {
		t.Parallel()

		store := NewStore()
		if err := store.CreateUser(ctx, newTestUser("user-1", "maria.lopez")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		err := store.CreateUser(ctx, newTestUser("user-2", "Maria.Lopez"))
		if !errors.Is(err, persistence.ErrDuplicate) {
			t.Fatalf("expected ErrDuplicate, got %v", err)
		}
	})

	t.Run("lookup by username ignores case", func(t *testing.T) {
		t.Parallel()

		store := NewStore()
		if err := store.CreateUser(ctx, newTestUser("user-1", "maria.lopez")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got, err := store.GetUserByUsername(ctx, "MARIA.LOPEZ")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.ID != "user-1" {
			t.Fatalf("unexpected user %+v", got)
		}
	})

	t.Run("delete removes the user", func(t *testing.T) {
		t.Parallel()

		store := NewStore()
		if err := store.CreateUser(ctx, newTestUser("user-1", "maria.lopez")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := store.DeleteUser(ctx, "user-1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := store.GetUser(ctx, "user-1"); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("list orders by creation time", func(t *testing.T) {
		t.Parallel()

		store := NewStore()
		older := newTestUser("user-2", "zoe")
		older.CreatedAt = time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)
		newer := newTestUser("user-1", "ana")

		if err := store.CreateUser(ctx, newer); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := store.CreateUser(ctx, older); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		users, err := store.ListUsers(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(users) != 2 || users[0].ID != "user-2" {
			t.Fatalf("unexpected order %+v", users)
		}
	})

	t.Run("returned values are isolated copies", func(t *testing.T) {
		t.Parallel()

		store := NewStore()
		user := newTestUser("user-1", "maria.lopez")
		user.Areas = []string{"Cocina"}
		if err := store.CreateUser(ctx, user); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		got, err := store.GetUser(ctx, "user-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got.Areas[0] = "Salon"

		again, err := store.GetUser(ctx, "user-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if again.Areas[0] != "Cocina" {
			t.Fatalf("stored user was mutated through a returned copy")
		}
	})
}

func TestStoreAttendanceRecords(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	newRecord := func(id, userID, date string) persistence.AttendanceRecord {
		return persistence.AttendanceRecord{ID: id, UserID: userID, Date: date}
	}

	t.Run("save is an upsert", func(t *testing.T) {
		t.Parallel()

		store := NewStore()
		record := newRecord("rec-1", "user-1", "2024-03-04")
		if err := store.SaveRecord(ctx, record); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		record.TotalMinutes = 480
		if err := store.SaveRecord(ctx, record); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		got, err := store.GetRecord(ctx, "rec-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.TotalMinutes != 480 {
			t.Fatalf("expected upserted record, got %+v", got)
		}

		records, err := store.ListRecordsForUser(ctx, "user-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(records) != 1 {
			t.Fatalf("expected one record after upsert, got %d", len(records))
		}
	})

	t.Run("lookup by user and date", func(t *testing.T) {
		t.Parallel()

		store := NewStore()
		if err := store.SaveRecord(ctx, newRecord("rec-1", "user-1", "2024-03-04")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got, err := store.GetRecordForUserDate(ctx, "user-1", "2024-03-04")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.ID != "rec-1" {
			t.Fatalf("unexpected record %+v", got)
		}
		if _, err := store.GetRecordForUserDate(ctx, "user-1", "2024-03-05"); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("since filter is inclusive and ordered by date", func(t *testing.T) {
		t.Parallel()

		store := NewStore()
		for _, record := range []persistence.AttendanceRecord{
			newRecord("rec-3", "user-1", "2024-03-06"),
			newRecord("rec-1", "user-1", "2024-03-02"),
			newRecord("rec-2", "user-1", "2024-03-03"),
			newRecord("rec-4", "user-2", "2024-03-06"),
		} {
			if err := store.SaveRecord(ctx, record); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}

		records, err := store.ListRecordsForUserSince(ctx, "user-1", "2024-03-03")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("expected 2 records, got %d", len(records))
		}
		if records[0].Date != "2024-03-03" || records[1].Date != "2024-03-06" {
			t.Fatalf("unexpected order %+v", records)
		}
	})

	t.Run("records for one date span users", func(t *testing.T) {
		t.Parallel()

		store := NewStore()
		if err := store.SaveRecord(ctx, newRecord("rec-1", "user-1", "2024-03-04")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := store.SaveRecord(ctx, newRecord("rec-2", "user-2", "2024-03-04")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		records, err := store.ListRecordsForDate(ctx, "2024-03-04")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("expected 2 records, got %d", len(records))
		}
	})
}

func TestStoreRosters(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("save is an upsert on the user and week key", func(t *testing.T) {
		t.Parallel()

		store := NewStore()
		roster := persistence.WeeklyRoster{
			UserID:    "user-1",
			WeekStart: "2024-03-03",
			Assignments: map[int]persistence.RosterAssignment{
				1: {Shift: "MORNING", Area: "Cocina"},
			},
		}
		if err := store.SaveRoster(ctx, roster); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		roster.Assignments[2] = persistence.RosterAssignment{Shift: "CLOSING", Area: "Salon"}
		if err := store.SaveRoster(ctx, roster); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		got, err := store.GetRoster(ctx, "user-1", "2024-03-03")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got.Assignments) != 2 {
			t.Fatalf("expected 2 assignments, got %+v", got.Assignments)
		}

		week, err := store.ListRostersForWeek(ctx, "2024-03-03")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(week) != 1 {
			t.Fatalf("expected one roster row after upsert, got %d", len(week))
		}
	})

	t.Run("week listing is ordered by user", func(t *testing.T) {
		t.Parallel()

		store := NewStore()
		for _, userID := range []string{"user-2", "user-1"} {
			roster := persistence.WeeklyRoster{UserID: userID, WeekStart: "2024-03-03"}
			if err := store.SaveRoster(ctx, roster); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}

		week, err := store.ListRostersForWeek(ctx, "2024-03-03")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(week) != 2 || week[0].UserID != "user-1" {
			t.Fatalf("unexpected order %+v", week)
		}
	})
}

func TestStoreSessions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)

	newSession := func(id, token string, expiresAt time.Time) persistence.Session {
		return persistence.Session{ID: id, UserID: "user-1", Token: token, ExpiresAt: expiresAt, CreatedAt: now, UpdatedAt: now}
	}

	t.Run("create and get round-trip", func(t *testing.T) {
		t.Parallel()

		store := NewStore()
		if _, err := store.CreateSession(ctx, newSession("sess-1", "token-1", now.Add(time.Hour))); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got, err := store.GetSession(ctx, "token-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.ID != "sess-1" {
			t.Fatalf("unexpected session %+v", got)
		}
	})

	t.Run("revoke marks without deleting", func(t *testing.T) {
		t.Parallel()

		store := NewStore()
		if _, err := store.CreateSession(ctx, newSession("sess-1", "token-1", now.Add(time.Hour))); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		revoked, err := store.RevokeSession(ctx, "token-1", now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if revoked.RevokedAt == nil || !revoked.RevokedAt.Equal(now) {
			t.Fatalf("expected revocation stamp, got %+v", revoked)
		}
		if _, err := store.GetSession(ctx, "token-1"); err != nil {
			t.Fatalf("expected revoked session to remain readable: %v", err)
		}
	})

	t.Run("token rotation re-indexes the session", func(t *testing.T) {
		t.Parallel()

		store := NewStore()
		session := newSession("sess-1", "token-1", now.Add(time.Hour))
		if _, err := store.CreateSession(ctx, session); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		session.Token = "token-2"
		if _, err := store.UpdateSession(ctx, session); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := store.GetSession(ctx, "token-1"); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected old token to be gone, got %v", err)
		}
		if _, err := store.GetSession(ctx, "token-2"); err != nil {
			t.Fatalf("expected rotated token to resolve: %v", err)
		}
	})

	t.Run("expired sessions are pruned", func(t *testing.T) {
		t.Parallel()

		store := NewStore()
		if _, err := store.CreateSession(ctx, newSession("sess-1", "token-1", now.Add(-time.Minute))); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := store.CreateSession(ctx, newSession("sess-2", "token-2", now.Add(time.Hour))); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if err := store.DeleteExpiredSessions(ctx, now); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := store.GetSession(ctx, "token-1"); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected expired session to be pruned, got %v", err)
		}
		if _, err := store.GetSession(ctx, "token-2"); err != nil {
			t.Fatalf("expected live session to survive: %v", err)
		}
	})
}

func TestStoreAuditEntries(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	base := time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)

	store := NewStore()
	for i := 0; i < 3; i++ {
		entry := persistence.AuditEntry{
			ID:        string(rune('a' + i)),
			ActorID:   "root-admin",
			Action:    "user.create",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := store.AppendAuditEntry(ctx, entry); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	t.Run("newest entries come first", func(t *testing.T) {
		t.Parallel()

		entries, err := store.ListAuditEntries(ctx, 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(entries) != 3 {
			t.Fatalf("expected 3 entries, got %d", len(entries))
		}
		if !entries[0].CreatedAt.After(entries[1].CreatedAt) {
			t.Fatalf("unexpected order %+v", entries)
		}
	})

	t.Run("limit truncates the result", func(t *testing.T) {
		t.Parallel()

		entries, err := store.ListAuditEntries(ctx, 2)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(entries) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(entries))
		}
	})
}
