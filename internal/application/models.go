package application

import "time"

// Principal represents the authenticated user invoking a service method.
type Principal struct {
	UserID  string
	IsAdmin bool
}

// Role distinguishes administrators from clock-in staff.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleEmployee Role = "EMPLOYEE"
)

// RootUserID is the identifier of the seeded root administrator. The account
// can never be deleted or deactivated.
const RootUserID = "root-admin"

// User represents a staff account exposed by the application services.
type User struct {
	ID            string
	Username      string
	FullName      string
	Role          Role
	ShiftType     ShiftType
	Areas         []string
	DaysOff       []int
	IsActive      bool
	PrimaryRole   string
	SecondaryRole string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// UserInput captures caller provided user attributes. Password is optional on
// update; when empty the stored credential is retained.
type UserInput struct {
	Username      string
	FullName      string
	Password      string
	ShiftType     ShiftType
	Areas         []string
	DaysOff       []int
	IsActive      bool
	PrimaryRole   string
	SecondaryRole string
}

// CreateUserParams wraps the data required to create a user.
type CreateUserParams struct {
	Principal Principal
	Input     UserInput
}

// UpdateUserParams wraps the data required to update an existing user.
type UpdateUserParams struct {
	Principal Principal
	UserID    string
	Input     UserInput
}

// UserCredentials models the authentication attributes persisted for a user.
type UserCredentials struct {
	User         User
	PasswordHash string
}

// AttendanceStatus is the derived state of one employee's day. It is never
// stored; Status recomputes it from which timestamps are populated.
type AttendanceStatus string

const (
	StatusOut       AttendanceStatus = "OUT"
	StatusWorking   AttendanceStatus = "WORKING"
	StatusMealBreak AttendanceStatus = "MEAL_BREAK"
)

// AttendanceAction names a punch transition offered to the presentation layer.
type AttendanceAction string

const (
	ActionClockIn   AttendanceAction = "clock_in"
	ActionMealStart AttendanceAction = "meal_start"
	ActionMealEnd   AttendanceAction = "meal_end"
	ActionClockOut  AttendanceAction = "clock_out"
)

// AttendanceRecord is one employee's punch record for a calendar date.
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

// ClockInResult carries the created record and the confirmation message shown
// to the employee.
type ClockInResult struct {
	Record  AttendanceRecord
	Message string
}

// WeeklyStats aggregates one employee's attendance from the most recent
// Sunday onward. Hours is formatted with one decimal, matching the value the
// dashboard displays.
type WeeklyStats struct {
	Hours string
	Days  int
	Lates int
}

// ReportRow is one employee's all-time punctuality summary.
type ReportRow struct {
	User            User
	TotalHours      string
	TotalDays       int
	TotalLates      int
	PunctualityRate int
}

// RosterAssignment is one weekday cell of a weekly roster.
type RosterAssignment struct {
	Shift ShiftType
	Area  string
}

// WeeklyRoster holds one user's assignments for the week starting WeekStart
// (always a Sunday, date-only). Unassigned weekdays are absent from the map.
type WeeklyRoster struct {
	UserID      string
	WeekStart   string
	Assignments map[int]RosterAssignment
}

// AssignShiftParams wraps the data for editing a single roster cell.
type AssignShiftParams struct {
	UserID    string
	WeekStart string
	Day       int
	Shift     ShiftType
	Area      string
}

// Session represents an authenticated session issued to a user.
type Session struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}

// AuthenticateParams captures the data required to authenticate a user.
type AuthenticateParams struct {
	Username string
	Password string
}

// AuthenticateResult captures the outcome of a successful authentication.
type AuthenticateResult struct {
	User    User
	Session Session
}

// AuditEntry records an administrative action for later review.
type AuditEntry struct {
	ID        string
	ActorID   string
	Action    string
	Details   string
	CreatedAt time.Time
}
