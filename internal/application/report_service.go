package application

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"
)

// ReportUserLister lists the users included in punctuality reports.
type ReportUserLister interface {
	ListUsers(ctx context.Context) ([]User, error)
}

// ReportRecordLister lists the attendance history of a single user.
type ReportRecordLister interface {
	ListRecordsForUser(ctx context.Context, userID string) ([]AttendanceRecord, error)
}

// ReportService computes all-time punctuality summaries across employees.
type ReportService struct {
	users   ReportUserLister
	records ReportRecordLister
	cache   *reportCache
	logger  *slog.Logger
}

// NewReportService constructs a ReportService with the provided dependencies.
func NewReportService(users ReportUserLister, records ReportRecordLister, now func() time.Time) *ReportService {
	return NewReportServiceWithLogger(users, records, now, nil)
}

// NewReportServiceWithLogger constructs a ReportService with a specified logger.
func NewReportServiceWithLogger(users ReportUserLister, records ReportRecordLister, now func() time.Time, logger *slog.Logger) *ReportService {
	return &ReportService{
		users:   users,
		records: records,
		cache:   newReportCache(30*time.Second, 64, now),
		logger:  defaultLogger(logger),
	}
}

func (s *ReportService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ReportService", operation, attrs...)
}

// InvalidateReports discards cached report rows. Call it after attendance
// records change so the next report reflects the new data immediately.
func (s *ReportService) InvalidateReports() {
	if s == nil {
		return
	}
	s.cache.Invalidate()
}

// PunctualityReport returns one row per active employee summarizing their
// entire attendance history. An employee with no records reports a
// punctuality rate of 100. Only administrators may run reports.
func (s *ReportService) PunctualityReport(ctx context.Context, principal Principal) (rows []ReportRow, err error) {
	if s == nil {
		err = fmt.Errorf("ReportService is nil")
		return
	}
	if s.users == nil || s.records == nil {
		err = fmt.Errorf("report repositories not configured")
		return
	}

	logger := s.loggerWith(ctx, "PunctualityReport", "actor_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to build punctuality report", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("rows", len(rows)).InfoContext(ctx, "punctuality report built")
	}()

	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	const cacheKey = "punctuality:all-employees"
	if cached, ok := s.cache.Get(cacheKey); ok {
		rows = cached
		return
	}

	var users []User
	users, err = s.users.ListUsers(ctx)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	for _, user := range users {
		if user.Role != RoleEmployee {
			continue
		}
		var records []AttendanceRecord
		records, err = s.records.ListRecordsForUser(ctx, user.ID)
		if err != nil {
			err = mapRepoError(err)
			rows = nil
			return
		}
		rows = append(rows, summarizeRecords(user, records))
	}

	sort.Slice(rows, func(i, j int) bool {
		return strings.ToLower(rows[i].User.FullName) < strings.ToLower(rows[j].User.FullName)
	})

	s.cache.Store(cacheKey, rows)
	return
}

func summarizeRecords(user User, records []AttendanceRecord) ReportRow {
	totalMinutes := 0
	days := 0
	lates := 0
	for _, record := range records {
		days++
		totalMinutes += record.TotalMinutes
		if record.IsLate {
			lates++
		}
	}
	return ReportRow{
		User:            user,
		TotalHours:      FormatHours(totalMinutes),
		TotalDays:       days,
		TotalLates:      lates,
		PunctualityRate: punctualityRate(days, lates),
	}
}

// punctualityRate is the percentage of recorded days that started on time,
// rounded to the nearest integer. No recorded days counts as fully punctual.
func punctualityRate(days, lates int) int {
	if days == 0 {
		return 100
	}
	return int(math.Round(100 * float64(days-lates) / float64(days)))
}
