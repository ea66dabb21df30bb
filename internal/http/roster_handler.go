package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/example/attendance-console/internal/application"
)

type rosterService interface {
	GetRoster(ctx context.Context, principal application.Principal, userID, weekStart string) (application.WeeklyRoster, error)
	ListRostersForWeek(ctx context.Context, principal application.Principal, weekStart string) ([]application.WeeklyRoster, error)
	AssignShift(ctx context.Context, principal application.Principal, params application.AssignShiftParams) (application.WeeklyRoster, error)
}

type RosterHandler struct {
	service   rosterService
	responder responder
	logger    *slog.Logger
}

func NewRosterHandler(service rosterService, logger *slog.Logger) *RosterHandler {
	base := defaultLogger(logger)
	return &RosterHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *RosterHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "RosterHandler", operation, attrs...)
}

// ListWeek returns every stored roster for the week identified by the week
// query parameter. Any date within the week selects it.
func (h *RosterHandler) ListWeek(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	week := strings.TrimSpace(r.URL.Query().Get("week"))
	logger := h.log(r.Context(), "ListWeek", "principal_id", principal.UserID, "week", week)

	rosters, err := h.service.ListRostersForWeek(r.Context(), principal, week)
	if err != nil {
		logger.ErrorContext(r.Context(), "roster list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(rosters)).InfoContext(r.Context(), "rosters listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listRostersResponse{Rosters: toRosterDTOs(rosters)})
}

// Get returns one user's roster for the requested week. Employees may only
// fetch their own.
func (h *RosterHandler) Get(w http.ResponseWriter, r *http.Request, userID string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	week := strings.TrimSpace(r.URL.Query().Get("week"))
	logger := h.log(r.Context(), "Get", "principal_id", principal.UserID, "user_id", userID, "week", week)

	roster, err := h.service.GetRoster(r.Context(), principal, userID, week)
	if err != nil {
		logger.ErrorContext(r.Context(), "roster fetch failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, rosterResponse{Roster: toRosterDTO(roster)})
}

// Assign writes one weekday cell of a user's roster.
func (h *RosterHandler) Assign(w http.ResponseWriter, r *http.Request, userID, day string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	dayIndex, err := strconv.Atoi(strings.TrimSpace(day))
	if err != nil {
		h.log(r.Context(), "Assign", "error_kind", "bad_request").ErrorContext(r.Context(), "invalid roster day segment", "day", day)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRosterPath)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req assignShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Assign", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode roster assignment", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Assign", "principal_id", principal.UserID, "user_id", userID, "day", dayIndex)

	roster, err := h.service.AssignShift(r.Context(), principal, application.AssignShiftParams{
		UserID:    userID,
		WeekStart: strings.TrimSpace(req.WeekStart),
		Day:       dayIndex,
		Shift:     application.ShiftType(strings.TrimSpace(strings.ToUpper(req.Shift))),
		Area:      strings.TrimSpace(req.Area),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "roster assignment failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "roster cell assigned")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, rosterResponse{Roster: toRosterDTO(roster)})
}

type assignShiftRequest struct {
	WeekStart string `json:"week_start"`
	Shift     string `json:"shift"`
	Area      string `json:"area"`
}

type rosterResponse struct {
	Roster rosterDTO `json:"roster"`
}

type listRostersResponse struct {
	Rosters []rosterDTO `json:"rosters"`
}

type assignmentDTO struct {
	Shift string `json:"shift"`
	Area  string `json:"area,omitempty"`
}

type rosterDTO struct {
	UserID      string                `json:"user_id"`
	WeekStart   string                `json:"week_start"`
	Assignments map[int]assignmentDTO `json:"assignments"`
}

func toRosterDTO(roster application.WeeklyRoster) rosterDTO {
	assignments := make(map[int]assignmentDTO, len(roster.Assignments))
	for day, assignment := range roster.Assignments {
		assignments[day] = assignmentDTO{
			Shift: string(assignment.Shift),
			Area:  assignment.Area,
		}
	}
	return rosterDTO{
		UserID:      roster.UserID,
		WeekStart:   roster.WeekStart,
		Assignments: assignments,
	}
}

func toRosterDTOs(rosters []application.WeeklyRoster) []rosterDTO {
	if len(rosters) == 0 {
		return nil
	}
	out := make([]rosterDTO, 0, len(rosters))
	for _, roster := range rosters {
		out = append(out, toRosterDTO(roster))
	}
	return out
}
