package notifications

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/modernmen/notifier/pkg/logger"
	notify "github.com/modernmen/notifier/pkg/notifications"
	"github.com/modernmen/notifier/pkg/requestid"
	"github.com/modernmen/notifier/pkg/validator"
)

var (
	ErrBadRequest       = errors.New("bad request")
	ErrRecipientMissing = errors.New("recipient query parameter is required")
)

// ErrorBody is the JSON body of every error response. Fields lists the
// failed field rules of a validation error.
type ErrorBody struct {
	Code      string                     `json:"code"`
	Message   string                     `json:"message"`
	Fields    validator.ValidationErrors `json:"fields,omitempty"`
	RequestID string                     `json:"request_id,omitempty"`
}

// classify maps an error to its status, code and client message.
// Server side failures never leak their cause.
func classify(err error) (int, string, string) {
	switch {
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request", err.Error()
	case errors.Is(err, notify.ErrInvalidInput):
		return http.StatusUnprocessableEntity, "validation_failed", err.Error()
	case errors.Is(err, notify.ErrNotificationNotFound):
		return http.StatusNotFound, "not_found", err.Error()
	case errors.Is(err, notify.ErrInvalidTransition):
		return http.StatusConflict, "invalid_transition", err.Error()
	case errors.Is(err, notify.ErrHubClosed):
		return http.StatusServiceUnavailable, "unavailable", "notification stream is shutting down"
	default:
		return http.StatusInternalServerError, "internal_error", http.StatusText(http.StatusInternalServerError)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, msg := classify(err)
	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.log.LogAttrs(r.Context(), level, "request failed",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Int("status", status),
		logger.Error(err),
	)
	writeJSON(w, status, ErrorBody{
		Code:      code,
		Message:   msg,
		Fields:    validator.ExtractValidationErrors(err),
		RequestID: requestid.FromContext(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
