package notifyclient

import (
	"time"

	"github.com/dmitrymomot/storefront/pkg/notifications"
)

// fallbackList is shown while the backend is unreachable. The fixed ids let
// callers and tests tell it apart from real data.
func fallbackList(opts notifications.ListOptions, now time.Time) ListResponse {
	opts = opts.Normalize()
	return ListResponse{
		Status: "success",
		Source: SourceFallback,
		Data: Page{
			Notifications: []notifications.Notification{
				{
					ID:        FallbackID1,
					Title:     "Welcome to the dashboard",
					Message:   "Notifications will appear here as soon as the server is reachable.",
					Type:      notifications.TypeWelcome,
					Priority:  notifications.PriorityMedium,
					CreatedAt: now,
				},
				{
					ID:        FallbackID2,
					Title:     "System update",
					Message:   "Live notifications are temporarily unavailable.",
					Type:      notifications.TypeSystem,
					Priority:  notifications.PriorityLow,
					Read:      true,
					CreatedAt: now.Add(-time.Hour),
				},
			},
			Total: 2,
			Page:  opts.Page,
			Limit: opts.Limit,
		},
	}
}
