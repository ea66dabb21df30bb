package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"
)

// AttendanceRepository captures the persistence operations needed by the
// attendance service.
type AttendanceRepository interface {
	SaveRecord(ctx context.Context, record AttendanceRecord) error
	GetRecord(ctx context.Context, id string) (AttendanceRecord, error)
	GetRecordForUserDate(ctx context.Context, userID, date string) (AttendanceRecord, error)
	ListRecordsForUserSince(ctx context.Context, userID, fromDate string) ([]AttendanceRecord, error)
}

// DateLayout is the date-only storage format for attendance records and
// roster week starts.
const DateLayout = "2006-01-02"

// AttendanceService executes the clock-in/meal/clock-out transitions and the
// time accounting derived from them. Status is never stored; it is recomputed
// from which timestamp fields are populated.
type AttendanceService struct {
	records     AttendanceRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewAttendanceService wires dependencies for the attendance service.
func NewAttendanceService(records AttendanceRepository, idGenerator func() string, now func() time.Time) *AttendanceService {
	return NewAttendanceServiceWithLogger(records, idGenerator, now, nil)
}

// NewAttendanceServiceWithLogger constructs an AttendanceService with a specified logger.
func NewAttendanceServiceWithLogger(records AttendanceRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *AttendanceService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &AttendanceService{
		records:     records,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *AttendanceService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AttendanceService", operation, attrs...)
}

// Status derives the attendance state from field presence. No record or a
// fully completed record yields StatusOut; an open meal interval yields
// StatusMealBreak; anything else with a clock-in yields StatusWorking.
func Status(record *AttendanceRecord) AttendanceStatus {
	if record == nil || record.ClockIn == nil {
		return StatusOut
	}
	if record.ClockOut != nil {
		return StatusOut
	}
	if record.MealStart != nil && record.MealEnd == nil {
		return StatusMealBreak
	}
	return StatusWorking
}

// AvailableActions maps the derived status to the transitions the
// presentation layer should offer. A completed day offers nothing.
func AvailableActions(record *AttendanceRecord) []AttendanceAction {
	switch Status(record) {
	case StatusWorking:
		return []AttendanceAction{ActionMealStart, ActionClockOut}
	case StatusMealBreak:
		return []AttendanceAction{ActionMealEnd}
	default:
		if record != nil && record.ClockOut != nil {
			return nil
		}
		return []AttendanceAction{ActionClockIn}
	}
}

// TodayRecord returns the user's record for the current calendar date, or
// found=false when the user has not clocked in today.
func (s *AttendanceService) TodayRecord(ctx context.Context, userID string) (AttendanceRecord, bool, error) {
	if s == nil {
		return AttendanceRecord{}, false, fmt.Errorf("AttendanceService is nil")
	}
	if s.records == nil {
		return AttendanceRecord{}, false, fmt.Errorf("attendance repository not configured")
	}

	today := s.now().Format(DateLayout)
	record, err := s.records.GetRecordForUserDate(ctx, userID, today)
	if err != nil {
		if errors.Is(mapRepoError(err), ErrNotFound) {
			return AttendanceRecord{}, false, nil
		}
		return AttendanceRecord{}, false, err
	}
	return record, true, nil
}

// ClockIn creates today's record for the user. A second clock-in on the same
// date is rejected with ErrAlreadyClockedIn rather than creating a duplicate
// record. Lateness is fixed here and never recomputed: the clock-in instant
// is compared against the shift's nominal start applied to today's date, so
// off and vacation shifts (00:00 sentinel) always come out late.
func (s *AttendanceService) ClockIn(ctx context.Context, user User) (result ClockInResult, err error) {
	if s == nil {
		err = fmt.Errorf("AttendanceService is nil")
		return
	}
	if s.records == nil {
		err = fmt.Errorf("attendance repository not configured")
		return
	}

	now := s.now()
	today := now.Format(DateLayout)

	logger := s.loggerWith(ctx, "ClockIn", "user_id", user.ID, "date", today)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "clock-in rejected", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("record_id", result.Record.ID, "is_late", result.Record.IsLate).InfoContext(ctx, "clock-in recorded")
	}()

	if _, getErr := s.records.GetRecordForUserDate(ctx, user.ID, today); getErr == nil {
		err = ErrAlreadyClockedIn
		return
	} else if !errors.Is(mapRepoError(getErr), ErrNotFound) {
		err = getErr
		return
	}

	clockIn := now
	record := AttendanceRecord{
		ID:      s.idGenerator(),
		UserID:  user.ID,
		Date:    today,
		ClockIn: &clockIn,
		IsLate:  now.After(user.ShiftType.NominalStartOn(now)),
	}

	if err = s.records.SaveRecord(ctx, record); err != nil {
		return
	}

	result = ClockInResult{
		Record:  record,
		Message: fmt.Sprintf("Entrada registrada a las %s", now.Format("15:04")),
	}
	return
}

// MealStart stamps the beginning of the meal break on the identified record.
// Unknown record identifiers surface ErrNotFound.
func (s *AttendanceService) MealStart(ctx context.Context, principal Principal, recordID string) error {
	return s.mutateRecord(ctx, "MealStart", principal, recordID, func(record *AttendanceRecord, now time.Time) error {
		at := now
		record.MealStart = &at
		return nil
	})
}

// MealEnd stamps the end of the meal break on the identified record.
func (s *AttendanceService) MealEnd(ctx context.Context, principal Principal, recordID string) error {
	return s.mutateRecord(ctx, "MealEnd", principal, recordID, func(record *AttendanceRecord, now time.Time) error {
		at := now
		record.MealEnd = &at
		return nil
	})
}

// ClockOut stamps the end of the day and fixes the worked-minutes total. The
// elapsed time is reduced by the meal interval only when both meal stamps are
// present; clocking out mid-meal deducts nothing, matching the documented
// accounting rule. The total is clamped at zero against clock skew.
func (s *AttendanceService) ClockOut(ctx context.Context, principal Principal, recordID string) error {
	return s.mutateRecord(ctx, "ClockOut", principal, recordID, func(record *AttendanceRecord, now time.Time) error {
		if record.ClockIn == nil {
			return ErrNotClockedIn
		}

		at := now
		record.ClockOut = &at

		minutes := now.Sub(*record.ClockIn).Minutes()
		if record.MealStart != nil && record.MealEnd != nil {
			minutes -= record.MealEnd.Sub(*record.MealStart).Minutes()
		}

		record.TotalMinutes = int(math.Round(minutes))
		if record.TotalMinutes < 0 {
			record.TotalMinutes = 0
		}
		return nil
	})
}

func (s *AttendanceService) mutateRecord(ctx context.Context, operation string, principal Principal, recordID string, apply func(record *AttendanceRecord, now time.Time) error) error {
	if s == nil {
		return fmt.Errorf("AttendanceService is nil")
	}
	if s.records == nil {
		return fmt.Errorf("attendance repository not configured")
	}

	logger := s.loggerWith(ctx, operation, "record_id", recordID, "principal_id", principal.UserID)

	record, err := s.records.GetRecord(ctx, recordID)
	if err != nil {
		err = mapRepoError(err)
		logger.ErrorContext(ctx, "record lookup failed", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	// Employees may only punch their own record; administrators may correct
	// anyone's.
	if record.UserID != principal.UserID && !principal.IsAdmin {
		logger.ErrorContext(ctx, "punch rejected for foreign record", "error_kind", "unauthorized")
		return ErrUnauthorized
	}

	if err := apply(&record, s.now()); err != nil {
		logger.ErrorContext(ctx, "transition rejected", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	if err := s.records.SaveRecord(ctx, record); err != nil {
		return err
	}

	logger.InfoContext(ctx, "record updated")
	return nil
}

// WeeklyStats aggregates the user's records from the most recent Sunday
// (midnight, local time) onward. The filter has no upper bound; in-progress
// days count toward Days and contribute zero minutes.
func (s *AttendanceService) WeeklyStats(ctx context.Context, userID string) (WeeklyStats, error) {
	if s == nil {
		return WeeklyStats{}, fmt.Errorf("AttendanceService is nil")
	}
	if s.records == nil {
		return WeeklyStats{}, fmt.Errorf("attendance repository not configured")
	}

	weekStart := WeekStart(s.now())
	records, err := s.records.ListRecordsForUserSince(ctx, userID, weekStart)
	if err != nil {
		return WeeklyStats{}, err
	}

	totalMinutes := 0
	lates := 0
	for _, record := range records {
		totalMinutes += record.TotalMinutes
		if record.IsLate {
			lates++
		}
	}

	return WeeklyStats{
		Hours: FormatHours(totalMinutes),
		Days:  len(records),
		Lates: lates,
	}, nil
}

// WeekStart returns the date of the most recent Sunday relative to the
// reference instant, formatted date-only.
func WeekStart(reference time.Time) string {
	start := reference.AddDate(0, 0, -int(reference.Weekday()))
	return start.Format(DateLayout)
}

// FormatHours renders minutes as hours with one decimal, e.g. 930 -> "15.5".
func FormatHours(totalMinutes int) string {
	return strconv.FormatFloat(float64(totalMinutes)/60, 'f', 1, 64)
}
