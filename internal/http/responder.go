package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/attendance-console/internal/application"
)

var (
	errBadRequestBody      = errors.New("El formato de la solicitud no es válido.")
	errInvalidUserID       = errors.New("El identificador de empleado no es válido.")
	errInvalidRecordID     = errors.New("El identificador de registro no es válido.")
	errInvalidRosterPath   = errors.New("La ruta del horario no es válida.")
	errMissingSessionToken = errors.New("Debes proporcionar un token de sesión")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := localizedStatusMessage(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	switch {
	case errors.Is(err, application.ErrUnauthorized):
		r.writeJSON(ctx, w, http.StatusForbidden, errorResponse{
			ErrorCode: "AUTH_FORBIDDEN",
			Message:   "No tienes permiso para realizar esta operación.",
		})
	case errors.Is(err, application.ErrRootUserProtected):
		r.writeJSON(ctx, w, http.StatusForbidden, errorResponse{
			ErrorCode: "USER_ROOT_PROTECTED",
			Message:   "La cuenta del administrador raíz no puede eliminarse ni desactivarse.",
		})
	case errors.Is(err, application.ErrAccountDisabled):
		r.writeJSON(ctx, w, http.StatusForbidden, errorResponse{
			ErrorCode: "AUTH_ACCOUNT_DISABLED",
			Message:   "La cuenta está desactivada. Contacta al administrador.",
		})
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Message: "El recurso solicitado no existe."})
	case errors.Is(err, application.ErrAlreadyClockedIn):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "ATTENDANCE_ALREADY_CLOCKED_IN",
			Message:   "Ya registraste tu entrada el día de hoy.",
		})
	case errors.Is(err, application.ErrNotClockedIn):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "ATTENDANCE_NOT_CLOCKED_IN",
			Message:   "Aún no has registrado tu entrada.",
		})
	case errors.Is(err, application.ErrAlreadyExists):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "USER_ALREADY_EXISTS",
			Message:   "El nombre de usuario ya está registrado.",
		})
	case errors.Is(err, application.ErrInvalidCredentials):
		r.writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{
			ErrorCode: "AUTH_INVALID_CREDENTIALS",
			Message:   "Usuario o contraseña incorrectos",
		})
	case errors.Is(err, application.ErrSessionExpired):
		r.writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{
			ErrorCode: "AUTH_SESSION_EXPIRED",
			Message:   "La sesión ha expirado. Inicia sesión de nuevo.",
		})
	case errors.Is(err, application.ErrSessionRevoked):
		r.writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{
			ErrorCode: "AUTH_SESSION_REVOKED",
			Message:   "La sesión fue revocada. Inicia sesión de nuevo.",
		})
	default:
		var vErr *application.ValidationError
		if errors.As(err, &vErr) {
			details := localizeValidationErrors(vErr)
			r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
				Message: "Revisa los campos marcados.",
				Errors:  details,
			})
			return
		}

		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: "Ocurrió un error interno en el servidor."})
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

func localizedStatusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "La solicitud no es correcta."
	case http.StatusUnauthorized:
		return "Se requiere autenticación."
	case http.StatusForbidden:
		return "No tienes permiso para realizar esta operación."
	case http.StatusNotFound:
		return "El recurso solicitado no existe."
	case http.StatusConflict:
		return "La solicitud entra en conflicto con el estado actual del recurso."
	case http.StatusUnprocessableEntity:
		return "Revisa los campos marcados."
	default:
		return "Ocurrió un error interno en el servidor."
	}
}

func localizeValidationErrors(vErr *application.ValidationError) map[string]string {
	if vErr == nil || len(vErr.FieldErrors) == 0 {
		return nil
	}

	translated := make(map[string]string, len(vErr.FieldErrors))
	for field, msg := range vErr.FieldErrors {
		translated[field] = translateValidationMessage(msg)
	}
	return translated
}

func translateValidationMessage(message string) string {
	switch message {
	case "username is required":
		return "El nombre de usuario es obligatorio."
	case "full name is required":
		return "El nombre completo es obligatorio."
	case "password is required":
		return "La contraseña es obligatoria."
	case "shift type is invalid":
		return "El tipo de turno no es válido."
	case "weekday indices must be between 0 and 6":
		return "Los días de descanso deben estar entre 0 (domingo) y 6 (sábado)."
	case "secondary role must differ from primary role":
		return "El rol secundario debe ser distinto del rol principal."
	case "user_id is required":
		return "El identificador de empleado es obligatorio."
	case "day must be between 0 and 6":
		return "El día debe estar entre 0 (domingo) y 6 (sábado)."
	case "shift is not a recognized shift type":
		return "El turno indicado no es un tipo de turno reconocido."
	case "week_start is required":
		return "La semana es obligatoria."
	case "week_start must use the YYYY-MM-DD format":
		return "La semana debe tener el formato YYYY-MM-DD."
	case "action is required":
		return "La acción es obligatoria."
	case "record is missing required fields":
		return "El registro no contiene los campos requeridos."
	default:
		return message
	}
}

type errorResponse struct {
	ErrorCode string            `json:"error_code,omitempty"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
}
