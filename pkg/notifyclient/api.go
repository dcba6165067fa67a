package notifyclient

import (
	"context"

	"github.com/dmitrymomot/storefront/pkg/notifications"
)

// API is the REST backend used by the façade methods of Client.
type API interface {
	MarkAsRead(ctx context.Context, id string) (notifications.Notification, error)
	MarkAllAsRead(ctx context.Context, notifType string) (Result, error)
	Delete(ctx context.Context, id string) (Result, error)
	List(ctx context.Context, opts notifications.ListOptions) (Page, error)
	UnreadCount(ctx context.Context, notifType string) (int, error)
}

// Result is the body of mutating endpoints that do not return a notification.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Count   int    `json:"count,omitempty"`
}

// Page is one page of the notification list.
type Page struct {
	Notifications []notifications.Notification `json:"notifications"`
	Total         int                          `json:"total"`
	Page          int                          `json:"page"`
	Limit         int                          `json:"limit"`
}

// Source tells whether a read result came from the backend or is a placeholder.
type Source string

const (
	SourceLive     Source = "live"
	SourceFallback Source = "fallback"
)

// ListResponse is the normalized result of Client.GetNotifications.
type ListResponse struct {
	Status string `json:"status"`
	Data   Page   `json:"data"`
	Source Source `json:"source"`
}

// UnreadCountResponse is the result of Client.GetUnreadCount.
type UnreadCountResponse struct {
	Count  int    `json:"count"`
	Source Source `json:"source"`
}

// FallbackUnreadCount is reported when the unread count cannot be fetched.
const FallbackUnreadCount = 3

// Placeholder notification ids returned when the list cannot be fetched.
const (
	FallbackID1 = "mock1"
	FallbackID2 = "mock2"
)
