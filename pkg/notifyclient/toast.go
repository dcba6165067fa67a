package notifyclient

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/storefront/pkg/logger"
	"github.com/dmitrymomot/storefront/pkg/notifications"
)

// Toast is an ephemeral on-screen message for a pushed notification.
type Toast struct {
	NotificationID string
	Title          string
	Message        string
	Priority       notifications.Priority
	// Persistent toasts stay until dismissed; others hide after Duration.
	Persistent bool
	Duration   time.Duration
}

// NewToast maps a notification to its toast. High priority is persistent.
func NewToast(n notifications.Notification, autoDismiss time.Duration) Toast {
	t := Toast{
		NotificationID: n.ID,
		Title:          n.Title,
		Message:        n.Message,
		Priority:       n.Priority,
	}
	if n.Priority == notifications.PriorityHigh {
		t.Persistent = true
	} else {
		t.Duration = autoDismiss
	}
	return t
}

// Presenter shows toasts. Present must not block.
type Presenter interface {
	Present(t Toast)
}

// PresenterFunc adapts a function to Presenter.
type PresenterFunc func(t Toast)

func (f PresenterFunc) Present(t Toast) { f(t) }

// NopPresenter discards toasts.
type NopPresenter struct{}

func (NopPresenter) Present(Toast) {}

// LogPresenter writes toasts to a logger.
type LogPresenter struct {
	Logger *slog.Logger
}

func (p LogPresenter) Present(t Toast) {
	log := p.Logger
	if log == nil {
		log = slog.Default()
	}
	log.LogAttrs(context.Background(), slog.LevelInfo, t.Title,
		logger.NotificationID(t.NotificationID),
		slog.String("message", t.Message),
		slog.String("priority", string(t.Priority)),
		slog.Bool("persistent", t.Persistent),
	)
}
