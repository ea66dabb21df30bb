package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/example/attendance-console/internal/application"
)

type reportService interface {
	PunctualityReport(ctx context.Context, principal application.Principal) ([]application.ReportRow, error)
}

type auditService interface {
	ListEntries(ctx context.Context, principal application.Principal, limit int) ([]application.AuditEntry, error)
}

type ReportHandler struct {
	reports   reportService
	audit     auditService
	responder responder
	logger    *slog.Logger
}

func NewReportHandler(reports reportService, audit auditService, logger *slog.Logger) *ReportHandler {
	base := defaultLogger(logger)
	return &ReportHandler{reports: reports, audit: audit, responder: newResponder(base), logger: base}
}

func (h *ReportHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ReportHandler", operation, attrs...)
}

// Punctuality returns the all-time punctuality summary for every employee,
// ordered by name.
func (h *ReportHandler) Punctuality(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.reports == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Punctuality", "principal_id", principal.UserID)

	rows, err := h.reports.PunctualityReport(r.Context(), principal)
	if err != nil {
		logger.ErrorContext(r.Context(), "punctuality report failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(rows)).InfoContext(r.Context(), "punctuality report generated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, reportResponse{Rows: toReportRowDTOs(rows)})
}

// AuditTrail returns the most recent administrative actions, newest first. The
// limit query parameter caps the result set.
func (h *ReportHandler) AuditTrail(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.audit == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			h.log(r.Context(), "AuditTrail", "error_kind", "bad_request").ErrorContext(r.Context(), "invalid audit limit", "limit", raw)
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
			return
		}
		limit = parsed
	}

	logger := h.log(r.Context(), "AuditTrail", "principal_id", principal.UserID, "limit", limit)

	entries, err := h.audit.ListEntries(r.Context(), principal, limit)
	if err != nil {
		logger.ErrorContext(r.Context(), "audit trail failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(entries)).InfoContext(r.Context(), "audit trail listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, auditResponse{Entries: toAuditEntryDTOs(entries)})
}

type reportResponse struct {
	Rows []reportRowDTO `json:"rows"`
}

type reportRowDTO struct {
	User            userDTO `json:"user"`
	TotalHours      string  `json:"total_hours"`
	TotalDays       int     `json:"total_days"`
	TotalLates      int     `json:"total_lates"`
	PunctualityRate int     `json:"punctuality_rate"`
}

func toReportRowDTOs(rows []application.ReportRow) []reportRowDTO {
	if len(rows) == 0 {
		return nil
	}
	out := make([]reportRowDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, reportRowDTO{
			User:            toUserDTO(row.User),
			TotalHours:      row.TotalHours,
			TotalDays:       row.TotalDays,
			TotalLates:      row.TotalLates,
			PunctualityRate: row.PunctualityRate,
		})
	}
	return out
}

type auditResponse struct {
	Entries []auditEntryDTO `json:"entries"`
}

type auditEntryDTO struct {
	ID        string `json:"id"`
	ActorID   string `json:"actor_id"`
	Action    string `json:"action"`
	Details   string `json:"details,omitempty"`
	CreatedAt string `json:"created_at"`
}

func toAuditEntryDTOs(entries []application.AuditEntry) []auditEntryDTO {
	if len(entries) == 0 {
		return nil
	}
	out := make([]auditEntryDTO, 0, len(entries))
	for _, entry := range entries {
		out = append(out, auditEntryDTO{
			ID:        entry.ID,
			ActorID:   entry.ActorID,
			Action:    entry.Action,
			Details:   entry.Details,
			CreatedAt: entry.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
	}
	return out
}
