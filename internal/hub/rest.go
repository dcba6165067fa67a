package hub

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/storefront/pkg/jwt"
	"github.com/dmitrymomot/storefront/pkg/notifications"
)

// RoleAdmin may send notifications to any user.
const RoleAdmin = "admin"

const maxBodySize = 1 << 20

type listResponse struct {
	Notifications []notifications.Notification `json:"notifications"`
	Total         int                          `json:"total"`
	Page          int                          `json:"page"`
	Limit         int                          `json:"limit"`
}

type countResponse struct {
	Count int `json:"count"`
}

type resultResponse struct {
	Success bool `json:"success"`
	Count   int  `json:"count,omitempty"`
}

func (h *Hub) listNotifications(w http.ResponseWriter, r *http.Request) {
	opts, err := parseListOptions(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	userID := currentUser(r)
	items, total, err := h.manager.List(r.Context(), userID, opts)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if items == nil {
		items = []notifications.Notification{}
	}

	opts = opts.Normalize()
	h.respond(w, r, http.StatusOK, listResponse{
		Notifications: items,
		Total:         total,
		Page:          opts.Page,
		Limit:         opts.Limit,
	})
}

func (h *Hub) unreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.manager.CountUnread(r.Context(), currentUser(r), r.URL.Query().Get("type"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, countResponse{Count: count})
}

func (h *Hub) markRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.manager.MarkRead(r.Context(), currentUser(r), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, n)
}

func (h *Hub) markAllRead(w http.ResponseWriter, r *http.Request) {
	count, err := h.manager.MarkAllRead(r.Context(), currentUser(r), r.URL.Query().Get("type"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, resultResponse{Success: true, Count: count})
}

func (h *Hub) deleteNotification(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.Delete(r.Context(), currentUser(r), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, resultResponse{Success: true})
}

// sendNotification lets an admin create a notification for any user. Other
// users may only notify themselves.
func (h *Hub) sendNotification(w http.ResponseWriter, r *http.Request) {
	var in notifications.Notification
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err := dec.Decode(&in); err != nil {
		h.fail(w, r, fmt.Errorf("%w: %w", ErrInvalidBody, err))
		return
	}

	claims, ok := jwt.GetClaims(r.Context())
	if !ok {
		h.respondError(w, r, http.StatusUnauthorized, jwt.ErrMissingClaims)
		return
	}
	if in.UserID == "" {
		in.UserID = claims.UserID()
	}
	if in.UserID != claims.UserID() && claims.Role != RoleAdmin {
		h.fail(w, r, ErrForbidden)
		return
	}

	created, err := h.manager.Send(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, http.StatusCreated, created)
}

func parseListOptions(r *http.Request) (notifications.ListOptions, error) {
	q := r.URL.Query()
	opts := notifications.ListOptions{
		Type:     q.Get("type"),
		Priority: notifications.Priority(q.Get("priority")),
	}

	var err error
	if opts.Page, err = intParam(q.Get("page")); err != nil {
		return opts, fmt.Errorf("%w: page", ErrInvalidQuery)
	}
	if opts.Limit, err = intParam(q.Get("limit")); err != nil {
		return opts, fmt.Errorf("%w: limit", ErrInvalidQuery)
	}
	if opts.Priority != "" && !opts.Priority.Valid() {
		return opts, notifications.ErrInvalidPriority
	}
	if raw := q.Get("read"); raw != "" {
		read, err := strconv.ParseBool(raw)
		if err != nil {
			return opts, fmt.Errorf("%w: read", ErrInvalidQuery)
		}
		opts.Read = &read
	}
	return opts, nil
}

func intParam(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, ErrInvalidQuery
	}
	return n, nil
}

func currentUser(r *http.Request) string {
	id, _ := jwt.UserID(r.Context())
	return id
}
