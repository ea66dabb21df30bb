// Package memory provides a map-backed implementation of the persistence
// repositories. It backs tests and the `serve --memory` development mode.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/example/attendance-console/internal/persistence"
)

// Store implements every repository interface in the persistence package
// using mutex-guarded maps.
type Store struct {
	mu       sync.RWMutex
	users    map[string]persistence.User
	records  map[string]persistence.AttendanceRecord
	rosters  map[string]persistence.WeeklyRoster
	sessions map[string]persistence.Session
	audit    []persistence.AuditEntry
}

// NewStore returns an empty in-memory store.
func NewStore() *Store {
	return &Store{
		users:    make(map[string]persistence.User),
		records:  make(map[string]persistence.AttendanceRecord),
		rosters:  make(map[string]persistence.WeeklyRoster),
		sessions: make(map[string]persistence.Session),
	}
}

// Close releases resources held by the store. No-op for the in-memory
// implementation.
func (s *Store) Close() error {
	return nil
}

// --- UserRepository implementation ---

// CreateUser stores a new user.
func (s *Store) CreateUser(ctx context.Context, user persistence.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.ID == "" {
		return persistence.ErrConstraintViolation
	}
	if _, ok := s.users[user.ID]; ok {
		return persistence.ErrDuplicate
	}
	if err := s.ensureUniqueUsernameLocked(user.ID, user.Username); err != nil {
		return err
	}

	s.users[user.ID] = cloneUser(user)
	return nil
}

// UpdateUser replaces an existing user.
func (s *Store) UpdateUser(ctx context.Context, user persistence.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; !ok {
		return persistence.ErrNotFound
	}
	if err := s.ensureUniqueUsernameLocked(user.ID, user.Username); err != nil {
		return err
	}

	s.users[user.ID] = cloneUser(user)
	return nil
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (persistence.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return persistence.User{}, persistence.ErrNotFound
	}
	return cloneUser(user), nil
}

// GetUserByUsername retrieves a user by login name, case-insensitively.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (persistence.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lower := strings.ToLower(username)
	for _, user := range s.users {
		if strings.ToLower(user.Username) == lower {
			return cloneUser(user), nil
		}
	}
	return persistence.User{}, persistence.ErrNotFound
}

// ListUsers returns all users ordered by CreatedAt ascending.
func (s *Store) ListUsers(ctx context.Context) ([]persistence.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]persistence.User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, cloneUser(user))
	}

	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].ID < users[j].ID
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})

	return users, nil
}

// DeleteUser removes a user by ID.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return persistence.ErrNotFound
	}

	delete(s.users, id)
	return nil
}

func (s *Store) ensureUniqueUsernameLocked(id, username string) error {
	lower := strings.ToLower(username)
	for existingID, user := range s.users {
		if existingID == id {
			continue
		}
		if strings.ToLower(user.Username) == lower {
			return persistence.ErrDuplicate
		}
	}
	return nil
}

// --- AttendanceRepository implementation ---

// SaveRecord upserts a punch record by ID.
func (s *Store) SaveRecord(ctx context.Context, record persistence.AttendanceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record.ID == "" {
		return persistence.ErrConstraintViolation
	}

	s.records[record.ID] = cloneRecord(record)
	return nil
}

// GetRecord retrieves a punch record by ID.
func (s *Store) GetRecord(ctx context.Context, id string) (persistence.AttendanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[id]
	if !ok {
		return persistence.AttendanceRecord{}, persistence.ErrNotFound
	}
	return cloneRecord(record), nil
}

// GetRecordForUserDate retrieves the record for one user on one date.
func (s *Store) GetRecordForUserDate(ctx context.Context, userID, date string) (persistence.AttendanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, record := range s.records {
		if record.UserID == userID && record.Date == date {
			return cloneRecord(record), nil
		}
	}
	return persistence.AttendanceRecord{}, persistence.ErrNotFound
}

// ListRecordsForUser returns all of one user's records ordered by date.
func (s *Store) ListRecordsForUser(ctx context.Context, userID string) ([]persistence.AttendanceRecord, error) {
	return s.listRecords(func(record persistence.AttendanceRecord) bool {
		return record.UserID == userID
	})
}

// ListRecordsForUserSince returns one user's records with Date >= fromDate.
// Date-only strings compare lexicographically, so no parsing is needed.
func (s *Store) ListRecordsForUserSince(ctx context.Context, userID, fromDate string) ([]persistence.AttendanceRecord, error) {
	return s.listRecords(func(record persistence.AttendanceRecord) bool {
		return record.UserID == userID && record.Date >= fromDate
	})
}

// ListRecordsForDate returns every user's record for the given date.
func (s *Store) ListRecordsForDate(ctx context.Context, date string) ([]persistence.AttendanceRecord, error) {
	return s.listRecords(func(record persistence.AttendanceRecord) bool {
		return record.Date == date
	})
}

func (s *Store) listRecords(match func(persistence.AttendanceRecord) bool) ([]persistence.AttendanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]persistence.AttendanceRecord, 0)
	for _, record := range s.records {
		if match(record) {
			records = append(records, cloneRecord(record))
		}
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].Date == records[j].Date {
			return records[i].ID < records[j].ID
		}
		return records[i].Date < records[j].Date
	})

	return records, nil
}

// --- RosterRepository implementation ---

// SaveRoster upserts a roster by its (user, week start) composite key.
func (s *Store) SaveRoster(ctx context.Context, roster persistence.WeeklyRoster) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if roster.UserID == "" || roster.WeekStart == "" {
		return persistence.ErrConstraintViolation
	}

	s.rosters[rosterKey(roster.UserID, roster.WeekStart)] = cloneRoster(roster)
	return nil
}

// GetRoster retrieves the roster for one user and week.
func (s *Store) GetRoster(ctx context.Context, userID, weekStart string) (persistence.WeeklyRoster, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	roster, ok := s.rosters[rosterKey(userID, weekStart)]
	if !ok {
		return persistence.WeeklyRoster{}, persistence.ErrNotFound
	}
	return cloneRoster(roster), nil
}

// ListRostersForWeek returns every user's roster for the given week start,
// ordered by user ID.
func (s *Store) ListRostersForWeek(ctx context.Context, weekStart string) ([]persistence.WeeklyRoster, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rosters := make([]persistence.WeeklyRoster, 0)
	for _, roster := range s.rosters {
		if roster.WeekStart == weekStart {
			rosters = append(rosters, cloneRoster(roster))
		}
	}

	sort.Slice(rosters, func(i, j int) bool {
		return rosters[i].UserID < rosters[j].UserID
	})

	return rosters, nil
}

func rosterKey(userID, weekStart string) string {
	return userID + "|" + weekStart
}

// --- SessionRepository implementation ---

// CreateSession stores a new session.
func (s *Store) CreateSession(ctx context.Context, session persistence.Session) (persistence.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session.Token == "" {
		return persistence.Session{}, persistence.ErrConstraintViolation
	}
	if _, ok := s.sessions[session.Token]; ok {
		return persistence.Session{}, persistence.ErrDuplicate
	}

	s.sessions[session.Token] = cloneSession(session)
	return cloneSession(session), nil
}

// GetSession retrieves a session by token.
func (s *Store) GetSession(ctx context.Context, token string) (persistence.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[token]
	if !ok {
		return persistence.Session{}, persistence.ErrNotFound
	}
	return cloneSession(session), nil
}

// UpdateSession replaces a stored session, re-indexing it when the token was
// rotated.
func (s *Store) UpdateSession(ctx context.Context, session persistence.Session) (persistence.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for token, existing := range s.sessions {
		if existing.ID == session.ID {
			delete(s.sessions, token)
			s.sessions[session.Token] = cloneSession(session)
			return cloneSession(session), nil
		}
	}
	return persistence.Session{}, persistence.ErrNotFound
}

// RevokeSession marks a session revoked without removing it.
func (s *Store) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (persistence.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[token]
	if !ok {
		return persistence.Session{}, persistence.ErrNotFound
	}

	at := revokedAt
	session.RevokedAt = &at
	session.UpdatedAt = revokedAt
	s.sessions[token] = session
	return cloneSession(session), nil
}

// DeleteExpiredSessions prunes sessions that expired at or before reference.
func (s *Store) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for token, session := range s.sessions {
		if !session.ExpiresAt.IsZero() && !session.ExpiresAt.After(reference) {
			delete(s.sessions, token)
		}
	}
	return nil
}

// --- AuditRepository implementation ---

// AppendAuditEntry records an administrative action.
func (s *Store) AppendAuditEntry(ctx context.Context, entry persistence.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.audit = append(s.audit, entry)
	return nil
}

// ListAuditEntries returns the newest entries first, up to limit. A
// non-positive limit returns everything.
func (s *Store) ListAuditEntries(ctx context.Context, limit int) ([]persistence.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]persistence.AuditEntry, len(s.audit))
	copy(entries, s.audit)

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].ID > entries[j].ID
		}
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// --- Helpers ---

func cloneUser(user persistence.User) persistence.User {
	areas := make([]string, len(user.Areas))
	copy(areas, user.Areas)
	daysOff := make([]int, len(user.DaysOff))
	copy(daysOff, user.DaysOff)

	return persistence.User{
		ID:            user.ID,
		Username:      user.Username,
		FullName:      user.FullName,
		Role:          user.Role,
		PasswordHash:  user.PasswordHash,
		ShiftType:     user.ShiftType,
		Areas:         areas,
		DaysOff:       daysOff,
		IsActive:      user.IsActive,
		PrimaryRole:   cloneString(user.PrimaryRole),
		SecondaryRole: cloneString(user.SecondaryRole),
		CreatedAt:     user.CreatedAt,
		UpdatedAt:     user.UpdatedAt,
	}
}

func cloneRecord(record persistence.AttendanceRecord) persistence.AttendanceRecord {
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

func cloneRoster(roster persistence.WeeklyRoster) persistence.WeeklyRoster {
	assignments := make(map[int]persistence.RosterAssignment, len(roster.Assignments))
	for day, assignment := range roster.Assignments {
		assignments[day] = assignment
	}
	return persistence.WeeklyRoster{
		UserID:      roster.UserID,
		WeekStart:   roster.WeekStart,
		Assignments: assignments,
	}
}

func cloneSession(session persistence.Session) persistence.Session {
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

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}

func cloneTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}
