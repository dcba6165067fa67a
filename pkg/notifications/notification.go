package notifications

import (
	"time"
)

// Priority represents the notification priority level.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is one of the known priority levels.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Common notification type tags used by the storefront dashboard.
// The set is open: any non-empty string is a valid type.
const (
	TypeSystem  = "system"
	TypeWelcome = "welcome"
	TypeOrder   = "order"
	TypePayment = "payment"
)

// Notification is the notification entity shared by the hub, the REST API and
// the real-time client. ID is stable across every representation.
type Notification struct {
	ID        string         `json:"id"`
	UserID    string         `json:"userId,omitempty"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Type      string         `json:"type"`
	Priority  Priority       `json:"priority"`
	Read      bool           `json:"read"`
	ReadAt    *time.Time     `json:"readAt,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// MarkAsRead marks the notification as read with the current timestamp.
func (n *Notification) MarkAsRead() {
	n.Read = true
	now := time.Now()
	n.ReadAt = &now
}

// Validate checks the fields a notification needs before it is stored.
func (n Notification) Validate() error {
	if n.UserID == "" {
		return ErrMissingUserID
	}
	if n.Title == "" {
		return ErrMissingTitle
	}
	if n.Priority != "" && !n.Priority.Valid() {
		return ErrInvalidPriority
	}
	return nil
}
