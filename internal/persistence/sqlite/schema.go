package sqlite

import (
	"context"
	"fmt"
)

// migrations holds the ordered schema steps. The database's user_version
// pragma records how many have been applied; new steps are appended, never
// edited.
var migrations = []string{
	`CREATE TABLE users (
		id             TEXT PRIMARY KEY,
		username       TEXT NOT NULL COLLATE NOCASE UNIQUE,
		full_name      TEXT NOT NULL,
		role           TEXT NOT NULL,
		password_hash  TEXT NOT NULL,
		shift_type     TEXT NOT NULL,
		areas          TEXT NOT NULL DEFAULT '',
		days_off       TEXT NOT NULL DEFAULT '',
		is_active      INTEGER NOT NULL DEFAULT 1,
		primary_role   TEXT,
		secondary_role TEXT,
		created_at     TEXT NOT NULL,
		updated_at     TEXT NOT NULL
	)`,
	`CREATE TABLE attendance_records (
		id            TEXT PRIMARY KEY,
		user_id       TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		date          TEXT NOT NULL,
		clock_in      TEXT,
		meal_start    TEXT,
		meal_end      TEXT,
		clock_out     TEXT,
		is_late       INTEGER NOT NULL DEFAULT 0,
		total_minutes INTEGER NOT NULL DEFAULT 0,
		UNIQUE (user_id, date)
	)`,
	`CREATE INDEX idx_attendance_user_date ON attendance_records(user_id, date)`,
	`CREATE TABLE rosters (
		user_id     TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		week_start  TEXT NOT NULL,
		day         INTEGER NOT NULL CHECK (day BETWEEN 0 AND 6),
		shift       TEXT NOT NULL,
		area        TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (user_id, week_start, day)
	)`,
	`CREATE INDEX idx_rosters_week ON rosters(week_start)`,
	`CREATE TABLE sessions (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		token      TEXT NOT NULL UNIQUE,
		expires_at TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		revoked_at TEXT
	)`,
	`CREATE TABLE audit_entries (
		id         TEXT PRIMARY KEY,
		actor_id   TEXT NOT NULL,
		action     TEXT NOT NULL,
		details    TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX idx_audit_created ON audit_entries(created_at)`,
}

func (db *DB) migrate(ctx context.Context) error {
	var version int
	if err := db.conn.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("sqlite: read schema version: %w", err)
	}
	if version < 0 || version > len(migrations) {
		return fmt.Errorf("sqlite: unknown schema version %d", version)
	}

	for i := version; i < len(migrations); i++ {
		if _, err := db.conn.ExecContext(ctx, migrations[i]); err != nil {
			return fmt.Errorf("sqlite: apply migration %d: %w", i+1, err)
		}
		if _, err := db.conn.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", i+1)); err != nil {
			return fmt.Errorf("sqlite: bump schema version: %w", err)
		}
	}
	return nil
}
