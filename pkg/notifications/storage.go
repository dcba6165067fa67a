package notifications

import (
	"context"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// Storage handles notification persistence and retrieval.
type Storage interface {
	// Create stores a new notification.
	Create(ctx context.Context, notif Notification) error

	// Get retrieves a single notification.
	Get(ctx context.Context, userID, notifID string) (*Notification, error)

	// List returns one page of notifications, newest first, and the total
	// number of notifications matching the filter.
	List(ctx context.Context, userID string, opts ListOptions) ([]Notification, int, error)

	// MarkRead marks a notification as read.
	MarkRead(ctx context.Context, userID, notifID string) error

	// MarkAllRead marks every unread notification as read, optionally scoped
	// to one type, and returns how many changed.
	MarkAllRead(ctx context.Context, userID, notifType string) (int, error)

	// Delete removes a notification.
	Delete(ctx context.Context, userID, notifID string) error

	// CountUnread returns the unread count, optionally scoped to one type.
	CountUnread(ctx context.Context, userID, notifType string) (int, error)
}

// ListOptions provides filtering and pagination options for listing notifications.
type ListOptions struct {
	Page     int      // 1-based page number
	Limit    int      // page size, clamped to MaxPageLimit
	Type     string   // only this type when set
	Priority Priority // only this priority when set
	Read     *bool    // only read (true) or unread (false) when set
}

// Normalize applies paging defaults and bounds.
func (o ListOptions) Normalize() ListOptions {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.Limit <= 0 {
		o.Limit = DefaultPageLimit
	}
	if o.Limit > MaxPageLimit {
		o.Limit = MaxPageLimit
	}
	return o
}

// Offset returns the number of rows to skip for the current page.
func (o ListOptions) Offset() int {
	o = o.Normalize()
	return (o.Page - 1) * o.Limit
}

// Matches reports whether n passes the type, priority and read filters.
func (o ListOptions) Matches(n Notification) bool {
	if o.Type != "" && n.Type != o.Type {
		return false
	}
	if o.Priority != "" && n.Priority != o.Priority {
		return false
	}
	if o.Read != nil && n.Read != *o.Read {
		return false
	}
	return true
}
