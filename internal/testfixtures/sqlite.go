package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/attendance-console/internal/persistence/sqlite"
)

// SQLiteHarness provides repository access backed by a temporary SQLite
// database for integration-style persistence tests.
type SQLiteHarness struct {
	DB       *sqlite.DB
	Users    *sqlite.UserRepository
	Records  *sqlite.AttendanceRepository
	Rosters  *sqlite.RosterRepository
	Sessions *sqlite.SessionRepository
	Audit    *sqlite.AuditRepository

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness constructs a SQLiteHarness on a temporary file that is
// migrated automatically. A cleanup callback is registered with the provided
// testing.TB; callers may also invoke Close directly.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "attendance.db")

	db, err := sqlite.Open(context.Background(), sqlite.DefaultConfig(path))
	if err != nil {
		tb.Fatalf("failed to open database: %v", err)
	}

	harness := &SQLiteHarness{
		DB:       db,
		Users:    sqlite.NewUserRepository(db),
		Records:  sqlite.NewAttendanceRepository(db),
		Rosters:  sqlite.NewRosterRepository(db),
		Sessions: sqlite.NewSessionRepository(db),
		Audit:    sqlite.NewAuditRepository(db),
		cleanup: func() {
			_ = db.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}
