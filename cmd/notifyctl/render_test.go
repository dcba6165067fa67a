package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/storefront/pkg/notifications"
	"github.com/dmitrymomot/storefront/pkg/notifyclient"
)

func TestToastPresenter(t *testing.T) {
	var out bytes.Buffer
	p := newToastPresenter(&out)

	p.Present(notifyclient.NewToast(notifications.Notification{
		ID: "n1", Title: "Order placed", Message: "Thanks!", Priority: notifications.PriorityMedium,
	}, 5*time.Second))

	s := out.String()
	assert.Contains(t, s, "Order placed")
	assert.Contains(t, s, "Thanks!")
	assert.Contains(t, s, "medium, hides after 5s")
	assert.NotContains(t, s, "\x1b[", "no escape codes for a non-terminal writer")
}

func TestRenderList(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, renderList(&out, notifyclient.ListResponse{
			Status: "success",
			Data:   notifyclient.Page{Notifications: []notifications.Notification{}, Page: 1, Limit: 10},
			Source: notifyclient.SourceLive,
		}))
		assert.Contains(t, out.String(), "No notifications")
		assert.Contains(t, out.String(), "page 1, limit 10, 0 total")
	})

	t.Run("read and unread", func(t *testing.T) {
		var out bytes.Buffer
		created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		require.NoError(t, renderList(&out, notifyclient.ListResponse{
			Data: notifyclient.Page{
				Notifications: []notifications.Notification{
					{ID: "a", Title: "Unread one", Type: "order", Priority: notifications.PriorityHigh, CreatedAt: created},
					{ID: "b", Title: "Read one", Type: "system", Priority: notifications.PriorityLow, Read: true, CreatedAt: created},
				},
				Total: 2, Page: 1, Limit: 10,
			},
			Source: notifyclient.SourceLive,
		}))
		s := out.String()
		assert.Contains(t, s, "* a")
		assert.Contains(t, s, "  b")
		assert.Contains(t, s, "Unread one")
		assert.Contains(t, s, "Read one")
		assert.NotContains(t, s, "placeholder")
	})
}
