package main

import (
	"context"
	"time"

	"github.com/example/attendance-console/internal/application"
	"github.com/example/attendance-console/internal/persistence"
)

type userRepositoryAdapter struct {
	repo persistence.UserRepository
}

func newUserRepositoryAdapter(repo persistence.UserRepository) *userRepositoryAdapter {
	return &userRepositoryAdapter{repo: repo}
}

func (a *userRepositoryAdapter) CreateUser(ctx context.Context, user application.User, passwordHash string) (application.User, error) {
	if err := a.repo.CreateUser(ctx, toPersistenceUser(user, passwordHash)); err != nil {
		return application.User{}, err
	}
	stored, err := a.repo.GetUser(ctx, user.ID)
	if err != nil {
		return application.User{}, err
	}
	return toApplicationUser(stored), nil
}

func (a *userRepositoryAdapter) GetUser(ctx context.Context, id string) (application.User, error) {
	stored, err := a.repo.GetUser(ctx, id)
	if err != nil {
		return application.User{}, err
	}
	return toApplicationUser(stored), nil
}

// UpdateUser keeps the stored credential when passwordHash is empty.
func (a *userRepositoryAdapter) UpdateUser(ctx context.Context, user application.User, passwordHash string) (application.User, error) {
	if passwordHash == "" {
		current, err := a.repo.GetUser(ctx, user.ID)
		if err != nil {
			return application.User{}, err
		}
		passwordHash = current.PasswordHash
	}
	if err := a.repo.UpdateUser(ctx, toPersistenceUser(user, passwordHash)); err != nil {
		return application.User{}, err
	}
	stored, err := a.repo.GetUser(ctx, user.ID)
	if err != nil {
		return application.User{}, err
	}
	return toApplicationUser(stored), nil
}

func (a *userRepositoryAdapter) DeleteUser(ctx context.Context, id string) error {
	return a.repo.DeleteUser(ctx, id)
}

func (a *userRepositoryAdapter) ListUsers(ctx context.Context) ([]application.User, error) {
	models, err := a.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	users := make([]application.User, 0, len(models))
	for _, model := range models {
		users = append(users, toApplicationUser(model))
	}
	return users, nil
}

type attendanceRepositoryAdapter struct {
	repo persistence.AttendanceRepository
}

func newAttendanceRepositoryAdapter(repo persistence.AttendanceRepository) *attendanceRepositoryAdapter {
	return &attendanceRepositoryAdapter{repo: repo}
}

func (a *attendanceRepositoryAdapter) SaveRecord(ctx context.Context, record application.AttendanceRecord) error {
	return a.repo.SaveRecord(ctx, toPersistenceRecord(record))
}

func (a *attendanceRepositoryAdapter) GetRecord(ctx context.Context, id string) (application.AttendanceRecord, error) {
	stored, err := a.repo.GetRecord(ctx, id)
	if err != nil {
		return application.AttendanceRecord{}, err
	}
	return toApplicationRecord(stored), nil
}

func (a *attendanceRepositoryAdapter) GetRecordForUserDate(ctx context.Context, userID, date string) (application.AttendanceRecord, error) {
	stored, err := a.repo.GetRecordForUserDate(ctx, userID, date)
	if err != nil {
		return application.AttendanceRecord{}, err
	}
	return toApplicationRecord(stored), nil
}

func (a *attendanceRepositoryAdapter) ListRecordsForUser(ctx context.Context, userID string) ([]application.AttendanceRecord, error) {
	models, err := a.repo.ListRecordsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toApplicationRecords(models), nil
}

func (a *attendanceRepositoryAdapter) ListRecordsForUserSince(ctx context.Context, userID, fromDate string) ([]application.AttendanceRecord, error) {
	models, err := a.repo.ListRecordsForUserSince(ctx, userID, fromDate)
	if err != nil {
		return nil, err
	}
	return toApplicationRecords(models), nil
}

type rosterRepositoryAdapter struct {
	repo persistence.RosterRepository
}

func newRosterRepositoryAdapter(repo persistence.RosterRepository) *rosterRepositoryAdapter {
	return &rosterRepositoryAdapter{repo: repo}
}

func (a *rosterRepositoryAdapter) SaveRoster(ctx context.Context, roster application.WeeklyRoster) (application.WeeklyRoster, error) {
	if err := a.repo.SaveRoster(ctx, toPersistenceRoster(roster)); err != nil {
		return application.WeeklyRoster{}, err
	}
	stored, err := a.repo.GetRoster(ctx, roster.UserID, roster.WeekStart)
	if err != nil {
		return application.WeeklyRoster{}, err
	}
	return toApplicationRoster(stored), nil
}

func (a *rosterRepositoryAdapter) GetRoster(ctx context.Context, userID, weekStart string) (application.WeeklyRoster, error) {
	stored, err := a.repo.GetRoster(ctx, userID, weekStart)
	if err != nil {
		return application.WeeklyRoster{}, err
	}
	return toApplicationRoster(stored), nil
}

func (a *rosterRepositoryAdapter) ListRostersForWeek(ctx context.Context, weekStart string) ([]application.WeeklyRoster, error) {
	models, err := a.repo.ListRostersForWeek(ctx, weekStart)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	rosters := make([]application.WeeklyRoster, 0, len(models))
	for _, model := range models {
		rosters = append(rosters, toApplicationRoster(model))
	}
	return rosters, nil
}

type sessionRepositoryAdapter struct {
	repo persistence.SessionRepository
}

func newSessionRepositoryAdapter(repo persistence.SessionRepository) *sessionRepositoryAdapter {
	return &sessionRepositoryAdapter{repo: repo}
}

func (a *sessionRepositoryAdapter) CreateSession(ctx context.Context, session application.Session) (application.Session, error) {
	stored, err := a.repo.CreateSession(ctx, toPersistenceSession(session))
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) GetSession(ctx context.Context, token string) (application.Session, error) {
	stored, err := a.repo.GetSession(ctx, token)
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (application.Session, error) {
	stored, err := a.repo.RevokeSession(ctx, token, revokedAt)
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	return a.repo.DeleteExpiredSessions(ctx, reference)
}

type auditRepositoryAdapter struct {
	repo persistence.AuditRepository
}

func newAuditRepositoryAdapter(repo persistence.AuditRepository) *auditRepositoryAdapter {
	return &auditRepositoryAdapter{repo: repo}
}

func (a *auditRepositoryAdapter) AppendAuditEntry(ctx context.Context, entry application.AuditEntry) (application.AuditEntry, error) {
	if err := a.repo.AppendAuditEntry(ctx, toPersistenceAuditEntry(entry)); err != nil {
		return application.AuditEntry{}, err
	}
	return entry, nil
}

func (a *auditRepositoryAdapter) ListAuditEntries(ctx context.Context, limit int) ([]application.AuditEntry, error) {
	models, err := a.repo.ListAuditEntries(ctx, limit)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	entries := make([]application.AuditEntry, 0, len(models))
	for _, model := range models {
		entries = append(entries, toApplicationAuditEntry(model))
	}
	return entries, nil
}

type credentialStoreAdapter struct {
	repo persistence.UserRepository
}

func newCredentialStoreAdapter(repo persistence.UserRepository) *credentialStoreAdapter {
	return &credentialStoreAdapter{repo: repo}
}

func (a *credentialStoreAdapter) GetUserCredentialsByUsername(ctx context.Context, username string) (application.UserCredentials, error) {
	stored, err := a.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return application.UserCredentials{}, err
	}
	return application.UserCredentials{
		User:         toApplicationUser(stored),
		PasswordHash: stored.PasswordHash,
	}, nil
}

func (a *credentialStoreAdapter) GetUser(ctx context.Context, id string) (application.User, error) {
	stored, err := a.repo.GetUser(ctx, id)
	if err != nil {
		return application.User{}, err
	}
	return toApplicationUser(stored), nil
}

func toApplicationUser(model persistence.User) application.User {
	return application.User{
		ID:            model.ID,
		Username:      model.Username,
		FullName:      model.FullName,
		Role:          application.Role(model.Role),
		ShiftType:     application.ShiftType(model.ShiftType),
		Areas:         append([]string(nil), model.Areas...),
		DaysOff:       append([]int(nil), model.DaysOff...),
		IsActive:      model.IsActive,
		PrimaryRole:   derefString(model.PrimaryRole),
		SecondaryRole: derefString(model.SecondaryRole),
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}
}

func toPersistenceUser(user application.User, passwordHash string) persistence.User {
	return persistence.User{
		ID:            user.ID,
		Username:      user.Username,
		FullName:      user.FullName,
		Role:          string(user.Role),
		PasswordHash:  passwordHash,
		ShiftType:     string(user.ShiftType),
		Areas:         append([]string(nil), user.Areas...),
		DaysOff:       append([]int(nil), user.DaysOff...),
		IsActive:      user.IsActive,
		PrimaryRole:   optionalString(user.PrimaryRole),
		SecondaryRole: optionalString(user.SecondaryRole),
		CreatedAt:     user.CreatedAt,
		UpdatedAt:     user.UpdatedAt,
	}
}

func toApplicationRecord(model persistence.AttendanceRecord) application.AttendanceRecord {
	return application.AttendanceRecord{
		ID:           model.ID,
		UserID:       model.UserID,
		Date:         model.Date,
		ClockIn:      cloneTime(model.ClockIn),
		MealStart:    cloneTime(model.MealStart),
		MealEnd:      cloneTime(model.MealEnd),
		ClockOut:     cloneTime(model.ClockOut),
		IsLate:       model.IsLate,
		TotalMinutes: model.TotalMinutes,
	}
}

func toApplicationRecords(models []persistence.AttendanceRecord) []application.AttendanceRecord {
	if len(models) == 0 {
		return nil
	}
	records := make([]application.AttendanceRecord, 0, len(models))
	for _, model := range models {
		records = append(records, toApplicationRecord(model))
	}
	return records
}

func toPersistenceRecord(record application.AttendanceRecord) persistence.AttendanceRecord {
	return persistence.AttendanceRecord{
		ID:           record.ID,
		UserID:       record.UserID,
		Date:         record.Date,
		ClockIn:      cloneTime(record.ClockIn),
		MealStart:    cloneTime(record.MealStart),
		MealEnd:      cloneTime(record.MealEnd),
		ClockOut:     cloneTime(record.ClockOut),
		IsLate:       record.IsLate,
		TotalMinutes: record.TotalMinutes,
	}
}

func toApplicationRoster(model persistence.WeeklyRoster) application.WeeklyRoster {
	assignments := make(map[int]application.RosterAssignment, len(model.Assignments))
	for day, cell := range model.Assignments {
		assignments[day] = application.RosterAssignment{
			Shift: application.ShiftType(cell.Shift),
			Area:  cell.Area,
		}
	}
	return application.WeeklyRoster{
		UserID:      model.UserID,
		WeekStart:   model.WeekStart,
		Assignments: assignments,
	}
}

func toPersistenceRoster(roster application.WeeklyRoster) persistence.WeeklyRoster {
	assignments := make(map[int]persistence.RosterAssignment, len(roster.Assignments))
	for day, cell := range roster.Assignments {
		assignments[day] = persistence.RosterAssignment{
			Shift: string(cell.Shift),
			Area:  cell.Area,
		}
	}
	return persistence.WeeklyRoster{
		UserID:      roster.UserID,
		WeekStart:   roster.WeekStart,
		Assignments: assignments,
	}
}

func toApplicationSession(model persistence.Session) application.Session {
	return application.Session{
		ID:        model.ID,
		UserID:    model.UserID,
		Token:     model.Token,
		ExpiresAt: model.ExpiresAt,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
		RevokedAt: cloneTime(model.RevokedAt),
	}
}

func toPersistenceSession(session application.Session) persistence.Session {
	return persistence.Session{
		ID:        session.ID,
		UserID:    session.UserID,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
		RevokedAt: cloneTime(session.RevokedAt),
	}
}

func toApplicationAuditEntry(model persistence.AuditEntry) application.AuditEntry {
	return application.AuditEntry{
		ID:        model.ID,
		ActorID:   model.ActorID,
		Action:    model.Action,
		Details:   model.Details,
		CreatedAt: model.CreatedAt,
	}
}

func toPersistenceAuditEntry(entry application.AuditEntry) persistence.AuditEntry {
	return persistence.AuditEntry{
		ID:        entry.ID,
		ActorID:   entry.ActorID,
		Action:    entry.Action,
		Details:   entry.Details,
		CreatedAt: entry.CreatedAt,
	}
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	clone := value
	return &clone
}

func cloneTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}
