package notifyclient

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/storefront/pkg/notifications"
)

func TestNewToast(t *testing.T) {
	n := notifications.Notification{ID: "n1", Title: "Order shipped", Message: "On its way", Priority: notifications.PriorityLow}

	toast := NewToast(n, 3*time.Second)
	assert.Equal(t, "n1", toast.NotificationID)
	assert.Equal(t, "Order shipped", toast.Title)
	assert.False(t, toast.Persistent)
	assert.Equal(t, 3*time.Second, toast.Duration)

	n.Priority = notifications.PriorityHigh
	toast = NewToast(n, 3*time.Second)
	assert.True(t, toast.Persistent)
	assert.Zero(t, toast.Duration)
}

func TestLogPresenter(t *testing.T) {
	log, buf := testLogger()
	LogPresenter{Logger: log}.Present(Toast{NotificationID: "n1", Title: "Hello", Persistent: true})

	out := buf.String()
	assert.Contains(t, out, `"msg":"Hello"`)
	assert.Contains(t, out, `"notification_id":"n1"`)
	assert.Contains(t, out, `"persistent":true`)
}
