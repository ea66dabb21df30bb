package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
)

// RosterRepository captures the persistence interactions for weekly rosters.
type RosterRepository interface {
	SaveRoster(ctx context.Context, roster WeeklyRoster) (WeeklyRoster, error)
	GetRoster(ctx context.Context, userID, weekStart string) (WeeklyRoster, error)
	ListRostersForWeek(ctx context.Context, weekStart string) ([]WeeklyRoster, error)
}

// RosterService manages weekly shift and area assignments.
type RosterService struct {
	rosters RosterRepository
	users   UserRepository
	audit   AuditRecorder
	now     func() time.Time
	logger  *slog.Logger
}

// NewRosterService constructs a RosterService with the provided dependencies.
func NewRosterService(rosters RosterRepository, users UserRepository, audit AuditRecorder, now func() time.Time) *RosterService {
	return NewRosterServiceWithLogger(rosters, users, audit, now, nil)
}

// NewRosterServiceWithLogger constructs a RosterService with a specified logger.
func NewRosterServiceWithLogger(rosters RosterRepository, users UserRepository, audit AuditRecorder, now func() time.Time, logger *slog.Logger) *RosterService {
	if now == nil {
		now = time.Now
	}
	return &RosterService{
		rosters: rosters,
		users:   users,
		audit:   audit,
		now:     now,
		logger:  defaultLogger(logger),
	}
}

func (s *RosterService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "RosterService", operation, attrs...)
}

// NormalizeWeekStart resolves any date in a week to that week's start date.
// Weeks begin on Sunday.
func NormalizeWeekStart(value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", &ValidationError{FieldErrors: map[string]string{"week_start": "week_start is required"}}
	}
	parsed, err := time.Parse(DateLayout, trimmed)
	if err != nil {
		return "", &ValidationError{FieldErrors: map[string]string{"week_start": "week_start must use the YYYY-MM-DD format"}}
	}
	return parsed.AddDate(0, 0, -int(parsed.Weekday())).Format(DateLayout), nil
}

// GetRoster returns the roster for a user and week. Employees may only read
// their own roster. A week with no stored assignments yields an empty roster.
func (s *RosterService) GetRoster(ctx context.Context, principal Principal, userID, weekStart string) (roster WeeklyRoster, err error) {
	if s == nil {
		err = fmt.Errorf("RosterService is nil")
		return
	}
	if s.rosters == nil {
		err = fmt.Errorf("roster repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "GetRoster",
		"actor_id", principal.UserID,
		"user_id", userID,
		"week_start", weekStart,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to get roster", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	if userID != principal.UserID && !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	var normalized string
	normalized, err = NormalizeWeekStart(weekStart)
	if err != nil {
		return
	}

	roster, err = s.rosters.GetRoster(ctx, userID, normalized)
	if err != nil {
		if errors.Is(mapRepoError(err), ErrNotFound) {
			roster = WeeklyRoster{
				UserID:      userID,
				WeekStart:   normalized,
				Assignments: map[int]RosterAssignment{},
			}
			err = nil
			return
		}
		err = mapRepoError(err)
		return
	}
	if roster.Assignments == nil {
		roster.Assignments = map[int]RosterAssignment{}
	}
	return
}

// ListRostersForWeek returns every stored roster for a week, ordered by user ID.
// Only administrators may list rosters.
func (s *RosterService) ListRostersForWeek(ctx context.Context, principal Principal, weekStart string) (rosters []WeeklyRoster, err error) {
	if s == nil {
		err = fmt.Errorf("RosterService is nil")
		return
	}
	if s.rosters == nil {
		err = fmt.Errorf("roster repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "ListRostersForWeek",
		"actor_id", principal.UserID,
		"week_start", weekStart,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list rosters", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	var normalized string
	normalized, err = NormalizeWeekStart(weekStart)
	if err != nil {
		return
	}

	rosters, err = s.rosters.ListRostersForWeek(ctx, normalized)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	sort.Slice(rosters, func(i, j int) bool { return rosters[i].UserID < rosters[j].UserID })
	return
}

// AssignShift records a shift and area for one weekday of a user's roster.
// The roster row is created on first assignment. Only administrators may
// assign shifts.
func (s *RosterService) AssignShift(ctx context.Context, principal Principal, params AssignShiftParams) (roster WeeklyRoster, err error) {
	if s == nil {
		err = fmt.Errorf("RosterService is nil")
		return
	}
	if s.rosters == nil {
		err = fmt.Errorf("roster repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "AssignShift",
		"actor_id", principal.UserID,
		"user_id", params.UserID,
		"week_start", params.WeekStart,
		"day", params.Day,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to assign shift", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "shift assigned")
	}()

	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	if err = validateAssignShiftParams(params); err != nil {
		return
	}

	var normalized string
	normalized, err = NormalizeWeekStart(params.WeekStart)
	if err != nil {
		return
	}

	if s.users != nil {
		if _, err = s.users.GetUser(ctx, params.UserID); err != nil {
			err = mapRepoError(err)
			return
		}
	}

	roster, err = s.rosters.GetRoster(ctx, params.UserID, normalized)
	if err != nil {
		if !errors.Is(mapRepoError(err), ErrNotFound) {
			err = mapRepoError(err)
			return
		}
		roster = WeeklyRoster{
			UserID:    params.UserID,
			WeekStart: normalized,
		}
		err = nil
	}
	if roster.Assignments == nil {
		roster.Assignments = map[int]RosterAssignment{}
	}

	roster.Assignments[params.Day] = RosterAssignment{
		Shift: ShiftType(strings.TrimSpace(string(params.Shift))),
		Area:  strings.TrimSpace(params.Area),
	}

	roster, err = s.rosters.SaveRoster(ctx, roster)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	s.recordAudit(ctx, principal.UserID, "roster.assign",
		fmt.Sprintf("user=%s week=%s day=%d shift=%s area=%s", params.UserID, normalized, params.Day, string(params.Shift), params.Area))
	return
}

func (s *RosterService) recordAudit(ctx context.Context, actorID, action, details string) {
	if s.audit == nil {
		return
	}
	if err := s.audit.RecordAction(ctx, actorID, action, details); err != nil {
		s.logger.WarnContext(ctx, "failed to record audit entry", "action", action, "error", err)
	}
}

func validateAssignShiftParams(params AssignShiftParams) error {
	validation := &ValidationError{}
	if strings.TrimSpace(params.UserID) == "" {
		validation.add("user_id", "user_id is required")
	}
	if params.Day < 0 || params.Day > 6 {
		validation.add("day", "day must be between 0 and 6")
	}
	shift := ShiftType(strings.TrimSpace(string(params.Shift)))
	if shift != "" && !shift.Valid() {
		validation.add("shift", "shift is not a recognized shift type")
	}
	if validation.HasErrors() {
		return validation
	}
	return nil
}
