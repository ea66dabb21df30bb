package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/attendance-console/internal/persistence"
)

// SeedRootUser inserts the given account when the users table is empty. It
// reports whether the insert happened, so restarts against an existing
// database leave the stored credential alone.
func (db *DB) SeedRootUser(ctx context.Context, user persistence.User) (bool, error) {
	if user.ID == "" || user.Username == "" || user.PasswordHash == "" {
		return false, persistence.ErrConstraintViolation
	}

	seeded := false
	err := db.WithTransaction(ctx, func(tx *sql.Tx) error {
		var count int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
			return mapError(err)
		}
		if count > 0 {
			return nil
		}

		_, err := tx.ExecContext(ctx,
			`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			user.ID,
			normalizeUsername(user.Username),
			user.FullName,
			user.Role,
			user.PasswordHash,
			user.ShiftType,
			joinStrings(user.Areas),
			joinInts(user.DaysOff),
			user.IsActive,
			user.PrimaryRole,
			user.SecondaryRole,
			user.CreatedAt.UTC().Format(time.RFC3339),
			user.UpdatedAt.UTC().Format(time.RFC3339),
		)
		if err != nil {
			return mapError(err)
		}
		seeded = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("sqlite: seed root user: %w", err)
	}
	return seeded, nil
}
