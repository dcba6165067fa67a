package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/storefront/pkg/logger"
)

// Manager orchestrates notification storage and delivery.
type Manager struct {
	storage   Storage
	deliverer Deliverer
	logger    *slog.Logger
	now       func() time.Time
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithManagerLogger sets the logger for the Manager.
func WithManagerLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithClock overrides the time source used for CreatedAt.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager creates a new notification manager.
func NewManager(storage Storage, deliverer Deliverer, opts ...ManagerOption) *Manager {
	if deliverer == nil {
		deliverer = NoOpDeliverer{}
	}

	m := &Manager{
		storage:   storage,
		deliverer: deliverer,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Send stores the notification and then attempts real-time delivery.
// Delivery failures are logged; the stored notification is returned either way.
func (m *Manager) Send(ctx context.Context, notif Notification) (Notification, error) {
	notif = m.prepare(notif)
	if err := notif.Validate(); err != nil {
		return Notification{}, err
	}

	// Store first so the notification is listable even if the push fails
	if err := m.storage.Create(ctx, notif); err != nil {
		return Notification{}, fmt.Errorf("failed to store notification: %w", err)
	}

	if err := m.deliverer.Deliver(ctx, notif); err != nil {
		m.logger.LogAttrs(ctx, slog.LevelWarn, "Failed to deliver notification, but it was stored successfully",
			logger.NotificationID(notif.ID),
			logger.UserID(notif.UserID),
			logger.Error(err),
		)
	}

	return notif, nil
}

// SendToUsers fans a template out to several users, one stored copy each.
func (m *Manager) SendToUsers(ctx context.Context, userIDs []string, template Notification) ([]Notification, error) {
	sent := make([]Notification, 0, len(userIDs))
	for _, userID := range userIDs {
		notif := template
		notif.ID = ""
		notif.UserID = userID
		stored, err := m.Send(ctx, notif)
		if err != nil {
			return sent, fmt.Errorf("failed to send notification to user %s: %w", userID, err)
		}
		sent = append(sent, stored)
	}
	return sent, nil
}

func (m *Manager) Get(ctx context.Context, userID, notifID string) (*Notification, error) {
	return m.storage.Get(ctx, userID, notifID)
}

// List returns one page of notifications and the total matching count.
func (m *Manager) List(ctx context.Context, userID string, opts ListOptions) ([]Notification, int, error) {
	return m.storage.List(ctx, userID, opts.Normalize())
}

// MarkRead marks one notification as read and returns its updated state.
func (m *Manager) MarkRead(ctx context.Context, userID, notifID string) (*Notification, error) {
	if err := m.storage.MarkRead(ctx, userID, notifID); err != nil {
		return nil, err
	}
	return m.storage.Get(ctx, userID, notifID)
}

// MarkAllRead marks all notifications as read for a user, optionally scoped to a type.
func (m *Manager) MarkAllRead(ctx context.Context, userID, notifType string) (int, error) {
	return m.storage.MarkAllRead(ctx, userID, notifType)
}

func (m *Manager) Delete(ctx context.Context, userID, notifID string) error {
	return m.storage.Delete(ctx, userID, notifID)
}

func (m *Manager) CountUnread(ctx context.Context, userID, notifType string) (int, error) {
	return m.storage.CountUnread(ctx, userID, notifType)
}

// Storage returns the underlying notification storage.
func (m *Manager) Storage() Storage {
	return m.storage
}

// Deliverer returns the underlying notification deliverer.
func (m *Manager) Deliverer() Deliverer {
	return m.deliverer
}

func (m *Manager) prepare(notif Notification) Notification {
	if notif.ID == "" {
		notif.ID = uuid.New().String()
	}
	if notif.CreatedAt.IsZero() {
		notif.CreatedAt = m.now()
	}
	if notif.Priority == "" {
		notif.Priority = PriorityMedium
	}
	if notif.Type == "" {
		notif.Type = TypeSystem
	}
	return notif
}
