package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/attendance-console/internal/application"
)

type attendanceService interface {
	ClockIn(ctx context.Context, user application.User) (application.ClockInResult, error)
	MealStart(ctx context.Context, principal application.Principal, recordID string) error
	MealEnd(ctx context.Context, principal application.Principal, recordID string) error
	ClockOut(ctx context.Context, principal application.Principal, recordID string) error
	TodayRecord(ctx context.Context, userID string) (application.AttendanceRecord, bool, error)
	WeeklyStats(ctx context.Context, userID string) (application.WeeklyStats, error)
}

type userDirectory interface {
	GetUser(ctx context.Context, principal application.Principal, userID string) (application.User, error)
}

type reportInvalidator interface {
	InvalidateReports()
}

type AttendanceHandler struct {
	service   attendanceService
	users     userDirectory
	reports   reportInvalidator
	responder responder
	logger    *slog.Logger
}

// NewAttendanceHandler wires the punch endpoints. reports may be nil; when set,
// cached report rows are invalidated after each successful punch mutation.
func NewAttendanceHandler(service attendanceService, users userDirectory, reports reportInvalidator, logger *slog.Logger) *AttendanceHandler {
	base := defaultLogger(logger)
	return &AttendanceHandler{
		service:   service,
		users:     users,
		reports:   reports,
		responder: newResponder(base),
		logger:    base,
	}
}

func (h *AttendanceHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AttendanceHandler", operation, attrs...)
}

func (h *AttendanceHandler) invalidateReports() {
	if h != nil && h.reports != nil {
		h.reports.InvalidateReports()
	}
}

// ClockIn opens today's record for the authenticated employee.
func (h *AttendanceHandler) ClockIn(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil || h.users == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "ClockIn", "principal_id", principal.UserID)

	user, err := h.users.GetUser(r.Context(), principal, principal.UserID)
	if err != nil {
		logger.ErrorContext(r.Context(), "clock-in user lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	result, err := h.service.ClockIn(r.Context(), user)
	if err != nil {
		logger.ErrorContext(r.Context(), "clock-in failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.invalidateReports()
	logger.With("record_id", result.Record.ID, "is_late", result.Record.IsLate).InfoContext(r.Context(), "clock-in recorded")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, clockInResponse{
		Record:  toRecordDTO(result.Record),
		Message: result.Message,
	})
}

// MealStart stamps the beginning of the meal break on the identified record.
func (h *AttendanceHandler) MealStart(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "MealStart", func(ctx context.Context, principal application.Principal, recordID string) error {
		return h.service.MealStart(ctx, principal, recordID)
	})
}

// MealEnd stamps the end of the meal break on the identified record.
func (h *AttendanceHandler) MealEnd(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "MealEnd", func(ctx context.Context, principal application.Principal, recordID string) error {
		return h.service.MealEnd(ctx, principal, recordID)
	})
}

// ClockOut closes the identified record and fixes its worked-minutes total.
func (h *AttendanceHandler) ClockOut(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "ClockOut", func(ctx context.Context, principal application.Principal, recordID string) error {
		return h.service.ClockOut(ctx, principal, recordID)
	})
}

func (h *AttendanceHandler) mutate(w http.ResponseWriter, r *http.Request, operation string, apply func(ctx context.Context, principal application.Principal, recordID string) error) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	recordID, ok := RecordIDFromContext(r.Context())
	if !ok || strings.TrimSpace(recordID) == "" {
		h.log(r.Context(), operation, "error_kind", "bad_request").ErrorContext(r.Context(), "missing record id for punch")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRecordID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), operation, "principal_id", principal.UserID, "record_id", recordID)

	if err := apply(r.Context(), principal, recordID); err != nil {
		logger.ErrorContext(r.Context(), "punch failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.invalidateReports()
	logger.InfoContext(r.Context(), "punch recorded")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// Today reports the authenticated employee's current record, derived status,
// and the punch transitions currently available.
func (h *AttendanceHandler) Today(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Today", "principal_id", principal.UserID)

	record, found, err := h.service.TodayRecord(r.Context(), principal.UserID)
	if err != nil {
		logger.ErrorContext(r.Context(), "today lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	resp := todayResponse{
		Status:  string(application.StatusOut),
		Actions: toActionStrings(application.AvailableActions(nil)),
	}
	if found {
		dto := toRecordDTO(record)
		resp.Record = &dto
		resp.Status = string(application.Status(&record))
		resp.Actions = toActionStrings(application.AvailableActions(&record))
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, resp)
}

// Stats reports the authenticated employee's aggregates for the current week.
func (h *AttendanceHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Stats", "principal_id", principal.UserID)

	stats, err := h.service.WeeklyStats(r.Context(), principal.UserID)
	if err != nil {
		logger.ErrorContext(r.Context(), "weekly stats failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, statsResponse{
		Hours: stats.Hours,
		Days:  stats.Days,
		Lates: stats.Lates,
	})
}

type clockInResponse struct {
	Record  recordDTO `json:"record"`
	Message string    `json:"message"`
}

type todayResponse struct {
	Record  *recordDTO `json:"record,omitempty"`
	Status  string     `json:"status"`
	Actions []string   `json:"available_actions"`
}

type statsResponse struct {
	Hours string `json:"hours"`
	Days  int    `json:"days"`
	Lates int    `json:"lates"`
}

type recordDTO struct {
	ID           string  `json:"id"`
	UserID       string  `json:"user_id"`
	Date         string  `json:"date"`
	ClockIn      *string `json:"clock_in"`
	MealStart    *string `json:"meal_start"`
	MealEnd      *string `json:"meal_end"`
	ClockOut     *string `json:"clock_out"`
	IsLate       bool    `json:"is_late"`
	TotalMinutes int     `json:"total_minutes"`
}

func toRecordDTO(record application.AttendanceRecord) recordDTO {
	return recordDTO{
		ID:           record.ID,
		UserID:       record.UserID,
		Date:         record.Date,
		ClockIn:      formatStamp(record.ClockIn),
		MealStart:    formatStamp(record.MealStart),
		MealEnd:      formatStamp(record.MealEnd),
		ClockOut:     formatStamp(record.ClockOut),
		IsLate:       record.IsLate,
		TotalMinutes: record.TotalMinutes,
	}
}

func formatStamp(value *time.Time) *string {
	if value == nil {
		return nil
	}
	formatted := value.UTC().Format(time.RFC3339Nano)
	return &formatted
}

func toActionStrings(actions []application.AttendanceAction) []string {
	out := make([]string, 0, len(actions))
	for _, action := range actions {
		out = append(out, string(action))
	}
	return out
}
