package hub

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/storefront/pkg/logger"
	"github.com/dmitrymomot/storefront/pkg/notifications"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Hub) respond(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.LogAttrs(r.Context(), slog.LevelWarn, "Failed to write response", logger.Error(err))
	}
}

func (h *Hub) respondError(w http.ResponseWriter, r *http.Request, status int, err error) {
	if status >= http.StatusInternalServerError {
		h.logger.LogAttrs(r.Context(), slog.LevelError, "Request failed",
			logger.RequestID(middleware.GetReqID(r.Context())),
			slog.String("path", r.URL.Path),
			logger.Error(err),
		)
		h.respond(w, r, status, errorResponse{Error: http.StatusText(status)})
		return
	}
	h.respond(w, r, status, errorResponse{Error: err.Error()})
}

// fail maps domain errors to HTTP statuses.
func (h *Hub) fail(w http.ResponseWriter, r *http.Request, err error) {
	h.respondError(w, r, statusFor(err), err)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, notifications.ErrNotificationNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrInvalidBody),
		errors.Is(err, ErrInvalidQuery),
		errors.Is(err, notifications.ErrMissingUserID),
		errors.Is(err, notifications.ErrMissingTitle),
		errors.Is(err, notifications.ErrInvalidPriority):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
