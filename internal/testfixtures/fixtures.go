package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/attendance-console/internal/application"
	"github.com/example/attendance-console/internal/persistence"
)

var (
	userCounter    uint64
	recordCounter  uint64
	sessionCounter uint64
	auditCounter   uint64
)

var referenceTime = time.Date(2024, time.March, 4, 7, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures. It
// falls on a Monday so weekly aggregation windows start the day before.
func ReferenceTime() time.Time {
	return referenceTime
}

// ReferenceDate returns ReferenceTime formatted date-only.
func ReferenceDate() string {
	return referenceTime.Format(application.DateLayout)
}

// ----------------------------- User fixtures -----------------------------

// UserFixture represents a deterministic staff account that can be
// materialised for application or persistence tests.
type UserFixture struct {
	ID           string
	Username     string
	FullName     string
	Role         application.Role
	PasswordHash string
	ShiftType    application.ShiftType
	Areas        []string
	DaysOff      []int
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserOption configures the generated user fixture.
type UserOption func(*UserFixture)

// NewUserFixture returns a deterministic user fixture with optional overrides.
func NewUserFixture(opts ...UserOption) UserFixture {
	idx := atomic.AddUint64(&userCounter, 1)
	id := fmt.Sprintf("user-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := UserFixture{
		ID:           id,
		Username:     fmt.Sprintf("empleado%03d", idx),
		FullName:     fmt.Sprintf("Empleado %03d", idx),
		Role:         application.RoleEmployee,
		PasswordHash: fmt.Sprintf("hash-%03d", idx),
		ShiftType:    application.ShiftMorning,
		IsActive:     true,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithUserID overrides the generated user ID.
func WithUserID(id string) UserOption {
	return func(f *UserFixture) {
		f.ID = id
	}
}

// WithUsername overrides the generated username.
func WithUsername(username string) UserOption {
	return func(f *UserFixture) {
		f.Username = username
	}
}

// WithFullName overrides the generated full name.
func WithFullName(name string) UserOption {
	return func(f *UserFixture) {
		f.FullName = name
	}
}

// WithAdminRole marks the fixture as an administrator.
func WithAdminRole() UserOption {
	return func(f *UserFixture) {
		f.Role = application.RoleAdmin
	}
}

// WithShift overrides the assigned shift type.
func WithShift(shift application.ShiftType) UserOption {
	return func(f *UserFixture) {
		f.ShiftType = shift
	}
}

// WithAreas overrides the work areas.
func WithAreas(areas ...string) UserOption {
	return func(f *UserFixture) {
		f.Areas = areas
	}
}

// WithDaysOff overrides the weekly rest days.
func WithDaysOff(days ...int) UserOption {
	return func(f *UserFixture) {
		f.DaysOff = days
	}
}

// Deactivated marks the fixture inactive.
func Deactivated() UserOption {
	return func(f *UserFixture) {
		f.IsActive = false
	}
}

// WithPasswordHash overrides the stored credential.
func WithPasswordHash(hash string) UserOption {
	return func(f *UserFixture) {
		f.PasswordHash = hash
	}
}

// WithUserTimestamps overrides both timestamps.
func WithUserTimestamps(created, updated time.Time) UserOption {
	return func(f *UserFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// Application converts the fixture to the application layer representation.
func (f UserFixture) Application() application.User {
	return application.User{
		ID:        f.ID,
		Username:  f.Username,
		FullName:  f.FullName,
		Role:      f.Role,
		ShiftType: f.ShiftType,
		Areas:     append([]string(nil), f.Areas...),
		DaysOff:   append([]int(nil), f.DaysOff...),
		IsActive:  f.IsActive,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// Credentials converts the fixture to the credential representation used by
// the authentication service.
func (f UserFixture) Credentials() application.UserCredentials {
	return application.UserCredentials{
		User:         f.Application(),
		PasswordHash: f.PasswordHash,
	}
}

// Principal converts the fixture to an acting principal.
func (f UserFixture) Principal() application.Principal {
	return application.Principal{
		UserID:  f.ID,
		IsAdmin: f.Role == application.RoleAdmin,
	}
}

// Persistence converts the fixture to the stored representation.
func (f UserFixture) Persistence() persistence.User {
	return persistence.User{
		ID:           f.ID,
		Username:     f.Username,
		FullName:     f.FullName,
		Role:         string(f.Role),
		PasswordHash: f.PasswordHash,
		ShiftType:    string(f.ShiftType),
		Areas:        append([]string(nil), f.Areas...),
		DaysOff:      append([]int(nil), f.DaysOff...),
		IsActive:     f.IsActive,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// Input converts the fixture to caller provided attributes.
func (f UserFixture) Input() application.UserInput {
	return application.UserInput{
		Username:  f.Username,
		FullName:  f.FullName,
		Password:  "secreto-" + f.ID,
		ShiftType: f.ShiftType,
		Areas:     append([]string(nil), f.Areas...),
		DaysOff:   append([]int(nil), f.DaysOff...),
		IsActive:  f.IsActive,
	}
}

// ------------------------- Attendance fixtures ---------------------------

// RecordFixture represents a deterministic attendance record.
type RecordFixture struct {
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

// RecordOption configures the generated record fixture.
type RecordOption func(*RecordFixture)

// NewRecordFixture returns a record fixture clocked in at ReferenceTime.
func NewRecordFixture(opts ...RecordOption) RecordFixture {
	idx := atomic.AddUint64(&recordCounter, 1)
	clockIn := referenceTime
	fixture := RecordFixture{
		ID:      fmt.Sprintf("record-%03d", idx),
		UserID:  "user-001",
		Date:    ReferenceDate(),
		ClockIn: &clockIn,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithRecordID overrides the generated record ID.
func WithRecordID(id string) RecordOption {
	return func(f *RecordFixture) {
		f.ID = id
	}
}

// WithRecordUser overrides the owning user.
func WithRecordUser(userID string) RecordOption {
	return func(f *RecordFixture) {
		f.UserID = userID
	}
}

// WithRecordDate overrides the record date.
func WithRecordDate(date string) RecordOption {
	return func(f *RecordFixture) {
		f.Date = date
	}
}

// Late marks the record as a late arrival.
func Late() RecordOption {
	return func(f *RecordFixture) {
		f.IsLate = true
	}
}

// Completed stamps a full day: meal from the fourth to the fifth hour,
// clock-out after the given worked total.
func Completed(totalMinutes int) RecordOption {
	return func(f *RecordFixture) {
		if f.ClockIn == nil {
			clockIn := referenceTime
			f.ClockIn = &clockIn
		}
		mealStart := f.ClockIn.Add(4 * time.Hour)
		mealEnd := mealStart.Add(time.Hour)
		clockOut := f.ClockIn.Add(time.Duration(totalMinutes)*time.Minute + time.Hour)
		f.MealStart = &mealStart
		f.MealEnd = &mealEnd
		f.ClockOut = &clockOut
		f.TotalMinutes = totalMinutes
	}
}

// Application converts the fixture to the application layer representation.
func (f RecordFixture) Application() application.AttendanceRecord {
	return application.AttendanceRecord{
		ID:           f.ID,
		UserID:       f.UserID,
		Date:         f.Date,
		ClockIn:      cloneTime(f.ClockIn),
		MealStart:    cloneTime(f.MealStart),
		MealEnd:      cloneTime(f.MealEnd),
		ClockOut:     cloneTime(f.ClockOut),
		IsLate:       f.IsLate,
		TotalMinutes: f.TotalMinutes,
	}
}

// Persistence converts the fixture to the stored representation.
func (f RecordFixture) Persistence() persistence.AttendanceRecord {
	return persistence.AttendanceRecord{
		ID:           f.ID,
		UserID:       f.UserID,
		Date:         f.Date,
		ClockIn:      cloneTime(f.ClockIn),
		MealStart:    cloneTime(f.MealStart),
		MealEnd:      cloneTime(f.MealEnd),
		ClockOut:     cloneTime(f.ClockOut),
		IsLate:       f.IsLate,
		TotalMinutes: f.TotalMinutes,
	}
}

// --------------------------- Session fixtures ----------------------------

// SessionFixture represents a deterministic authentication session.
type SessionFixture struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}

// SessionOption configures the generated session fixture.
type SessionOption func(*SessionFixture)

// NewSessionFixture returns a session valid for a day from ReferenceTime.
func NewSessionFixture(opts ...SessionOption) SessionFixture {
	idx := atomic.AddUint64(&sessionCounter, 1)
	fixture := SessionFixture{
		ID:        fmt.Sprintf("session-%03d", idx),
		UserID:    "user-001",
		Token:     fmt.Sprintf("token-%03d", idx),
		ExpiresAt: referenceTime.Add(24 * time.Hour),
		CreatedAt: referenceTime,
		UpdatedAt: referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithSessionUser overrides the owning user.
func WithSessionUser(userID string) SessionOption {
	return func(f *SessionFixture) {
		f.UserID = userID
	}
}

// WithSessionToken overrides the generated token.
func WithSessionToken(token string) SessionOption {
	return func(f *SessionFixture) {
		f.Token = token
	}
}

// ExpiredAt moves the expiry to the supplied instant.
func ExpiredAt(at time.Time) SessionOption {
	return func(f *SessionFixture) {
		f.ExpiresAt = at
	}
}

// Revoked stamps the revocation instant.
func Revoked(at time.Time) SessionOption {
	return func(f *SessionFixture) {
		f.RevokedAt = &at
	}
}

// Application converts the fixture to the application layer representation.
func (f SessionFixture) Application() application.Session {
	return application.Session{
		ID:        f.ID,
		UserID:    f.UserID,
		Token:     f.Token,
		ExpiresAt: f.ExpiresAt,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
		RevokedAt: cloneTime(f.RevokedAt),
	}
}

// Persistence converts the fixture to the stored representation.
func (f SessionFixture) Persistence() persistence.Session {
	return persistence.Session{
		ID:        f.ID,
		UserID:    f.UserID,
		Token:     f.Token,
		ExpiresAt: f.ExpiresAt,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
		RevokedAt: cloneTime(f.RevokedAt),
	}
}

// ---------------------------- Audit fixtures -----------------------------

// AuditFixture represents a deterministic audit trail entry.
type AuditFixture struct {
	ID        string
	ActorID   string
	Action    string
	Details   string
	CreatedAt time.Time
}

// AuditOption configures the generated audit fixture.
type AuditOption func(*AuditFixture)

// NewAuditFixture returns a deterministic audit entry fixture.
func NewAuditFixture(opts ...AuditOption) AuditFixture {
	idx := atomic.AddUint64(&auditCounter, 1)
	fixture := AuditFixture{
		ID:        fmt.Sprintf("audit-%03d", idx),
		ActorID:   application.RootUserID,
		Action:    "user.create",
		CreatedAt: referenceTime.Add(time.Duration(idx) * time.Second),
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithAuditAction overrides the recorded action.
func WithAuditAction(action string) AuditOption {
	return func(f *AuditFixture) {
		f.Action = action
	}
}

// WithAuditDetails overrides the free-form details.
func WithAuditDetails(details string) AuditOption {
	return func(f *AuditFixture) {
		f.Details = details
	}
}

// Application converts the fixture to the application layer representation.
func (f AuditFixture) Application() application.AuditEntry {
	return application.AuditEntry{
		ID:        f.ID,
		ActorID:   f.ActorID,
		Action:    f.Action,
		Details:   f.Details,
		CreatedAt: f.CreatedAt,
	}
}

// Persistence converts the fixture to the stored representation.
func (f AuditFixture) Persistence() persistence.AuditEntry {
	return persistence.AuditEntry{
		ID:        f.ID,
		ActorID:   f.ActorID,
		Action:    f.Action,
		Details:   f.Details,
		CreatedAt: f.CreatedAt,
	}
}

func cloneTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}
