package persistence

import "context"
import "time"

// UserRepository exposes CRUD operations for staff accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	UpdateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByUsername(ctx context.Context, username string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	DeleteUser(ctx context.Context, id string) error
}

// AttendanceRepository stores daily punch records. SaveRecord upserts by
// record ID so transition writes and record creation share one path.
type AttendanceRepository interface {
	SaveRecord(ctx context.Context, record AttendanceRecord) error
	GetRecord(ctx context.Context, id string) (AttendanceRecord, error)
	GetRecordForUserDate(ctx context.Context, userID, date string) (AttendanceRecord, error)
	ListRecordsForUser(ctx context.Context, userID string) ([]AttendanceRecord, error)
	ListRecordsForUserSince(ctx context.Context, userID, fromDate string) ([]AttendanceRecord, error)
	ListRecordsForDate(ctx context.Context, date string) ([]AttendanceRecord, error)
}

// RosterRepository stores weekly shift rosters keyed by user and week start.
type RosterRepository interface {
	SaveRoster(ctx context.Context, roster WeeklyRoster) error
	GetRoster(ctx context.Context, userID, weekStart string) (WeeklyRoster, error)
	ListRostersForWeek(ctx context.Context, weekStart string) ([]WeeklyRoster, error)
}

// SessionRepository stores authentication session state.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, token string) (Session, error)
	UpdateSession(ctx context.Context, session Session) (Session, error)
	RevokeSession(ctx context.Context, token string, revokedAt time.Time) (Session, error)
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}

// AuditRepository stores the administrative audit trail.
type AuditRepository interface {
	AppendAuditEntry(ctx context.Context, entry AuditEntry) error
	ListAuditEntries(ctx context.Context, limit int) ([]AuditEntry, error)
}
