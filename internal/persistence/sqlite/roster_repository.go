package sqlite

import (
	"context"
	"database/sql"

	"github.com/example/attendance-console/internal/persistence"
)

// RosterRepository implements persistence.RosterRepository on SQLite. A
// weekly roster is stored as one row per assigned weekday.
type RosterRepository struct {
	db *DB
}

// NewRosterRepository returns a roster repository backed by db.
func NewRosterRepository(db *DB) *RosterRepository {
	return &RosterRepository{db: db}
}

// SaveRoster replaces the stored week for the roster's user. Assignments
// absent from the map are removed.
func (r *RosterRepository) SaveRoster(ctx context.Context, roster persistence.WeeklyRoster) error {
	if roster.UserID == "" || roster.WeekStart == "" {
		return persistence.ErrConstraintViolation
	}

	return r.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM rosters WHERE user_id = ? AND week_start = ?`,
			roster.UserID, roster.WeekStart); err != nil {
			return mapError(err)
		}

		for day, assignment := range roster.Assignments {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO rosters (user_id, week_start, day, shift, area) VALUES (?, ?, ?, ?, ?)`,
				roster.UserID, roster.WeekStart, day, assignment.Shift, assignment.Area); err != nil {
				return mapError(err)
			}
		}
		return nil
	})
}

// GetRoster retrieves the roster for one user and week. A week with no
// stored assignments yields ErrNotFound.
func (r *RosterRepository) GetRoster(ctx context.Context, userID, weekStart string) (persistence.WeeklyRoster, error) {
	rows, err := r.db.conn.QueryContext(ctx,
		`SELECT day, shift, area FROM rosters WHERE user_id = ? AND week_start = ? ORDER BY day ASC`,
		userID, weekStart)
	if err != nil {
		return persistence.WeeklyRoster{}, mapError(err)
	}
	defer rows.Close()

	roster := persistence.WeeklyRoster{
		UserID:      userID,
		WeekStart:   weekStart,
		Assignments: map[int]persistence.RosterAssignment{},
	}
	for rows.Next() {
		var day int
		var assignment persistence.RosterAssignment
		if err := rows.Scan(&day, &assignment.Shift, &assignment.Area); err != nil {
			return persistence.WeeklyRoster{}, mapError(err)
		}
		roster.Assignments[day] = assignment
	}
	if err := rows.Err(); err != nil {
		return persistence.WeeklyRoster{}, mapError(err)
	}
	if len(roster.Assignments) == 0 {
		return persistence.WeeklyRoster{}, persistence.ErrNotFound
	}
	return roster, nil
}

// ListRostersForWeek returns every user's roster for one week, ordered by
// user ID.
func (r *RosterRepository) ListRostersForWeek(ctx context.Context, weekStart string) ([]persistence.WeeklyRoster, error) {
	rows, err := r.db.conn.QueryContext(ctx,
		`SELECT user_id, day, shift, area FROM rosters WHERE week_start = ? ORDER BY user_id ASC, day ASC`,
		weekStart)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var rosters []persistence.WeeklyRoster
	for rows.Next() {
		var userID string
		var day int
		var assignment persistence.RosterAssignment
		if err := rows.Scan(&userID, &day, &assignment.Shift, &assignment.Area); err != nil {
			return nil, mapError(err)
		}

		if len(rosters) == 0 || rosters[len(rosters)-1].UserID != userID {
			rosters = append(rosters, persistence.WeeklyRoster{
				UserID:      userID,
				WeekStart:   weekStart,
				Assignments: map[int]persistence.RosterAssignment{},
			})
		}
		rosters[len(rosters)-1].Assignments[day] = assignment
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return rosters, nil
}
