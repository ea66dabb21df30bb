package persistence

import "time"

// User represents a staff account as stored.
type User struct {
	ID            string
	Username      string
	FullName      string
	Role          string
	PasswordHash  string
	ShiftType     string
	Areas         []string
	DaysOff       []int
	IsActive      bool
	PrimaryRole   *string
	SecondaryRole *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// AttendanceRecord is one employee's punch record for a calendar date.
// Date is stored date-only as YYYY-MM-DD; the optional timestamps are nil
// until the corresponding punch happens.
type AttendanceRecord struct {
	ID           string
	UserID       string
	Date         string
	ClockIn      *time.Time
	MealStart    *time.Time
	MealEnd      *time.Time
	ClockOut     *time.Time
	IsLate       bool
	TotalMinutes int
}

// RosterAssignment is one weekday cell of a weekly roster.
type RosterAssignment struct {
	Shift string
	Area  string
}

// WeeklyRoster holds one user's shift assignments for the week starting on
// WeekStart (a Sunday, YYYY-MM-DD). Unassigned weekdays are absent from the
// map rather than recorded as an off shift.
type WeeklyRoster struct {
	UserID      string
	WeekStart   string
	Assignments map[int]RosterAssignment
}

// Session represents an authentication session persisted for a user.
type Session struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}

// AuditEntry records an administrative action for later review.
type AuditEntry struct {
	ID        string
	ActorID   string
	Action    string
	Details   string
	CreatedAt time.Time
}
