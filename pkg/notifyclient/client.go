package notifyclient

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/storefront/pkg/logger"
	"github.com/dmitrymomot/storefront/pkg/notifications"
	"github.com/dmitrymomot/storefront/pkg/statemachine"
)

// Client is the notification session of one application: it owns the
// transport connection, the pending queue, the unread counter and the
// listener registry. Build one at startup and pass it to whoever needs it.
//
// Every state change runs under one step lock. The listener fan-out it causes
// is queued and delivered after the lock is released, in the order the
// changes happened, so listeners may call any client method.
type Client struct {
	cfg       Config
	creds     CredentialStore
	api       API
	dialer    Dialer
	presenter Presenter
	logger    *slog.Logger
	listeners *Registry
	now       func() time.Time

	step    sync.Mutex
	fanout  dispatcher
	machine *statemachine.SimpleStateMachine

	mu        sync.RWMutex
	transport Transport
	token     string
	queue     []notifications.Notification
	unread    int
}

// New creates a disconnected client.
func New(opts ...Option) *Client {
	c := &Client{
		cfg:       DefaultConfig(),
		creds:     noCredentials{},
		presenter: NopPresenter{},
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(logger.Component("notifyclient"))
	c.listeners = NewRegistry(c.logger)
	c.machine = newStatusMachine(c.logger)
	if c.api == nil {
		c.api = NewHTTPAPI(c.cfg.ServerURL, c.creds, WithRequestTimeout(c.cfg.RequestTimeout))
	}
	return c
}

// Init starts a session for the stored credential. Without a credential it
// logs a warning and returns nil without creating a transport. An existing
// transport is torn down before the new one is created. The error is
// non-nil only when no transport could be created.
func (c *Client) Init(ctx context.Context, serverURL string) error {
	token, err := c.creds.Token(ctx)
	if err != nil || token == "" {
		attrs := []slog.Attr{}
		if err != nil && !errors.Is(err, ErrNoCredential) {
			attrs = append(attrs, logger.Error(err))
		}
		c.logger.LogAttrs(ctx, slog.LevelWarn, "No stored credential, notifications disabled", attrs...)
		return nil
	}

	c.Disconnect()

	if serverURL == "" {
		serverURL = c.cfg.ServerURL
	}
	if c.dialer == nil {
		return ErrNoDialer
	}

	opts := c.cfg.transportOptions()
	opts.Logger = c.logger
	t, err := c.dialer(serverURL, opts)
	if err != nil {
		c.logger.LogAttrs(ctx, slog.LevelError, "Failed to create transport",
			slog.String("server_url", serverURL),
			logger.Error(err),
		)
		return err
	}
	c.bind(t)

	c.lockStep()
	c.mu.Lock()
	c.transport = t
	c.token = token
	c.mu.Unlock()
	c.unlockStep()

	c.Connect()
	return nil
}

// Connect starts the transport. It is a no-op without a transport. Results
// are observed through listeners and Status.
func (c *Client) Connect() {
	c.lockStep()
	t := c.currentTransport()
	if t == nil {
		c.unlockStep()
		return
	}
	c.setStatus(StatusConnecting)
	c.unlockStep()

	t.Connect()
}

// Disconnect tears the transport down and drops it. Init creates a new one.
// Calling it again is a no-op.
func (c *Client) Disconnect() {
	c.lockStep()
	c.mu.Lock()
	t := c.transport
	c.transport = nil
	c.mu.Unlock()
	c.setStatus(StatusDisconnected)
	c.unlockStep()

	if t == nil {
		return
	}
	// Outside the step lock: the transport may be waiting for a handler.
	if err := t.Disconnect(); err != nil {
		c.logger.LogAttrs(context.Background(), slog.LevelWarn, "Transport disconnect failed", logger.Error(err))
	}
}

// Logout disconnects and clears the stored credential.
func (c *Client) Logout(ctx context.Context) error {
	c.Disconnect()
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
	return c.creds.Clear(ctx)
}

// Status returns the connection status.
func (c *Client) Status() Status {
	return Status(c.machine.Current().Name())
}

// UnreadCount returns the local unread counter.
func (c *Client) UnreadCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.unread
}

// PendingCount returns the number of queued notifications.
func (c *Client) PendingCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.queue)
}

// Pending returns a copy of the queue in arrival order.
func (c *Client) Pending() []notifications.Notification {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]notifications.Notification(nil), c.queue...)
}

// AddEventListener registers fn for an event name and returns its unsubscribe function.
func (c *Client) AddEventListener(name string, fn func(any)) func() {
	return c.listeners.AddEventListener(name, fn)
}

// NotifyListeners fans data out to the listeners of name.
func (c *Client) NotifyListeners(name string, data any) {
	c.listeners.NotifyListeners(name, data)
}

// Listeners exposes the registry for typed Subscribe calls.
func (c *Client) Listeners() *Registry {
	return c.listeners
}

// OnNotification subscribes to notifications shown to the user.
func (c *Client) OnNotification(fn func(notifications.Notification)) func() {
	return Subscribe(c.listeners, NotificationEvent, fn)
}

// OnUnreadCount subscribes to unread counter changes.
func (c *Client) OnUnreadCount(fn func(int)) func() {
	return Subscribe(c.listeners, UnreadCountEvent, fn)
}

func (c *Client) currentTransport() Transport {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.transport
}

// lockStep and unlockStep bracket a state change. unlockStep delivers the
// fan-out queued while the lock was held.
func (c *Client) lockStep() {
	c.step.Lock()
}

func (c *Client) unlockStep() {
	c.step.Unlock()
	c.fanout.drain()
}

// setStatus fires the status machine towards to. Invalid transitions are
// logged and ignored. Callers hold the step lock.
func (c *Client) setStatus(to Status) bool {
	from := c.Status()
	if err := c.machine.Fire(context.Background(), to.event(), nil); err != nil {
		c.logger.LogAttrs(context.Background(), slog.LevelWarn, "Ignoring invalid status transition",
			slog.String("from", from.String()),
			slog.String("to", to.String()),
			logger.Error(err),
		)
		return false
	}
	return true
}

// setUnread stores n (clamped at zero) and queues its publish. Callers hold the step lock.
func (c *Client) setUnread(n int) {
	n = max(n, 0)
	c.mu.Lock()
	c.unread = n
	c.mu.Unlock()
	c.fanout.enqueue(func() { Publish(c.listeners, UnreadCountEvent, n) })
}
