package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/attendance-console/internal/persistence"
)

// AttendanceRepository implements persistence.AttendanceRepository on SQLite.
type AttendanceRepository struct {
	db *DB
}

// NewAttendanceRepository returns an attendance repository backed by db.
func NewAttendanceRepository(db *DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

const recordColumns = `id, user_id, date, clock_in, meal_start, meal_end, clock_out, is_late, total_minutes`

// SaveRecord upserts a punch record by ID. Creation and every later punch
// share this path.
func (r *AttendanceRepository) SaveRecord(ctx context.Context, record persistence.AttendanceRecord) error {
	if record.ID == "" || record.UserID == "" || record.Date == "" {
		return persistence.ErrConstraintViolation
	}

	query := `INSERT INTO attendance_records (` + recordColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			clock_in = excluded.clock_in,
			meal_start = excluded.meal_start,
			meal_end = excluded.meal_end,
			clock_out = excluded.clock_out,
			is_late = excluded.is_late,
			total_minutes = excluded.total_minutes`
	_, err := r.db.conn.ExecContext(ctx, query,
		record.ID,
		record.UserID,
		record.Date,
		formatNullableTime(record.ClockIn),
		formatNullableTime(record.MealStart),
		formatNullableTime(record.MealEnd),
		formatNullableTime(record.ClockOut),
		record.IsLate,
		record.TotalMinutes,
	)
	return mapError(err)
}

// GetRecord retrieves a punch record by ID.
func (r *AttendanceRepository) GetRecord(ctx context.Context, id string) (persistence.AttendanceRecord, error) {
	if id == "" {
		return persistence.AttendanceRecord{}, persistence.ErrNotFound
	}
	row := r.db.conn.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM attendance_records WHERE id = ?`, id)
	return scanRecord(row)
}

// GetRecordForUserDate retrieves the record for one user on one date.
func (r *AttendanceRepository) GetRecordForUserDate(ctx context.Context, userID, date string) (persistence.AttendanceRecord, error) {
	row := r.db.conn.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM attendance_records WHERE user_id = ? AND date = ?`, userID, date)
	return scanRecord(row)
}

// ListRecordsForUser returns all of one user's records ordered by date.
func (r *AttendanceRepository) ListRecordsForUser(ctx context.Context, userID string) ([]persistence.AttendanceRecord, error) {
	return r.listRecords(ctx,
		`SELECT `+recordColumns+` FROM attendance_records WHERE user_id = ? ORDER BY date ASC, id ASC`, userID)
}

// ListRecordsForUserSince returns one user's records with date >= fromDate.
// Date-only strings compare lexicographically.
func (r *AttendanceRepository) ListRecordsForUserSince(ctx context.Context, userID, fromDate string) ([]persistence.AttendanceRecord, error) {
	return r.listRecords(ctx,
		`SELECT `+recordColumns+` FROM attendance_records WHERE user_id = ? AND date >= ? ORDER BY date ASC, id ASC`,
		userID, fromDate)
}

// ListRecordsForDate returns every user's record for one date.
func (r *AttendanceRepository) ListRecordsForDate(ctx context.Context, date string) ([]persistence.AttendanceRecord, error) {
	return r.listRecords(ctx,
		`SELECT `+recordColumns+` FROM attendance_records WHERE date = ? ORDER BY user_id ASC, id ASC`, date)
}

func (r *AttendanceRepository) listRecords(ctx context.Context, query string, args ...any) ([]persistence.AttendanceRecord, error) {
	rows, err := r.db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var records []persistence.AttendanceRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return records, nil
}

func scanRecord(row rowScanner) (persistence.AttendanceRecord, error) {
	var record persistence.AttendanceRecord
	var clockIn, mealStart, mealEnd, clockOut sql.NullString

	err := row.Scan(
		&record.ID,
		&record.UserID,
		&record.Date,
		&clockIn,
		&mealStart,
		&mealEnd,
		&clockOut,
		&record.IsLate,
		&record.TotalMinutes,
	)
	if err != nil {
		return persistence.AttendanceRecord{}, mapError(err)
	}

	if record.ClockIn, err = parseNullableTime(clockIn); err != nil {
		return persistence.AttendanceRecord{}, fmt.Errorf("sqlite: parse clock_in: %w", err)
	}
	if record.MealStart, err = parseNullableTime(mealStart); err != nil {
		return persistence.AttendanceRecord{}, fmt.Errorf("sqlite: parse meal_start: %w", err)
	}
	if record.MealEnd, err = parseNullableTime(mealEnd); err != nil {
		return persistence.AttendanceRecord{}, fmt.Errorf("sqlite: parse meal_end: %w", err)
	}
	if record.ClockOut, err = parseNullableTime(clockOut); err != nil {
		return persistence.AttendanceRecord{}, fmt.Errorf("sqlite: parse clock_out: %w", err)
	}
	return record, nil
}

func formatNullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}

func parseNullableTime(value sql.NullString) (*time.Time, error) {
	if !value.Valid || value.String == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339Nano, value.String)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
