package hub

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/storefront/pkg/httpserver"
	"github.com/dmitrymomot/storefront/pkg/jwt"
	"github.com/dmitrymomot/storefront/pkg/logger"
	"github.com/dmitrymomot/storefront/pkg/notifications"
)

// Hub wires storage, delivery, tokens and the HTTP surface together.
type Hub struct {
	cfg       Config
	tokens    *jwt.Service
	storage   notifications.Storage
	deliverer notifications.Deliverer
	manager   *notifications.Manager
	feeds     *notifications.BroadcastDeliverer
	checks    []httpserver.Check
	logger    *slog.Logger
	now       func() time.Time
	onAck     func(userID, notificationID string)

	// ctx bounds every socket session; Close cancels it.
	ctx    context.Context
	cancel context.CancelFunc
}

// Option configures a Hub.
type Option func(*Hub)

// WithLogger sets the hub logger.
func WithLogger(log *slog.Logger) Option {
	return func(h *Hub) {
		if log != nil {
			h.logger = log
		}
	}
}

// WithStorage replaces the default in-memory storage.
func WithStorage(storage notifications.Storage) Option {
	return func(h *Hub) {
		if storage != nil {
			h.storage = storage
		}
	}
}

// WithDeliverer routes sends through d instead of straight into the local
// feeds. Used with a RedisDeliverer whose relay feeds Feeds().
func WithDeliverer(d notifications.Deliverer) Option {
	return func(h *Hub) { h.deliverer = d }
}

// WithHealthCheck adds a readiness check to /healthz.
func WithHealthCheck(name string, fn func(context.Context) error) Option {
	return func(h *Hub) {
		h.checks = append(h.checks, httpserver.Check{Name: name, Func: fn})
	}
}

// WithAckHook is called whenever a client confirms a pushed notification.
func WithAckHook(fn func(userID, notificationID string)) Option {
	return func(h *Hub) { h.onAck = fn }
}

// WithClock overrides the time source for tokens and notifications.
func WithClock(now func() time.Time) Option {
	return func(h *Hub) {
		if now != nil {
			h.now = now
		}
	}
}

// New creates a hub. Sockets opened through it are closed by Close.
func New(cfg Config, opts ...Option) (*Hub, error) {
	if cfg.JWTSecret == "" {
		return nil, ErrMissingJWTSecret
	}
	cfg = cfg.withDefaults()

	h := &Hub{
		cfg:    cfg,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = h.logger.With(logger.Component("hub"))

	tokens, err := jwt.NewFromString(cfg.JWTSecret,
		jwt.WithIssuer(cfg.JWTIssuer),
		jwt.WithTTL(cfg.TokenTTL),
		jwt.WithClock(h.now),
	)
	if err != nil {
		return nil, err
	}
	h.tokens = tokens

	h.feeds = notifications.NewBroadcastDeliverer(cfg.SubscriberBuf,
		notifications.WithMaxFeeds(cfg.MaxFeeds),
		notifications.WithBroadcastLogger(h.logger),
	)
	if h.deliverer == nil {
		h.deliverer = h.feeds
	}

	if h.storage == nil {
		h.storage = notifications.NewMemoryStorage()
	}
	h.manager = notifications.NewManager(h.storage, h.deliverer,
		notifications.WithManagerLogger(h.logger),
		notifications.WithClock(h.now),
	)

	h.ctx, h.cancel = context.WithCancel(context.Background())
	return h, nil
}

// Manager exposes the notification manager, e.g. for seeding.
func (h *Hub) Manager() *notifications.Manager { return h.manager }

// Feeds is the local fan-out that sockets subscribe to.
func (h *Hub) Feeds() *notifications.BroadcastDeliverer { return h.feeds }

// Tokens is the bearer token service.
func (h *Hub) Tokens() *jwt.Service { return h.tokens }

// Close disconnects every socket and closes the feeds.
func (h *Hub) Close() error {
	h.cancel()
	return h.feeds.Close()
}

// Handler returns the HTTP surface of the hub.
func (h *Hub) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", httpserver.HealthCheckHandler(h.logger, h.checks...))
	r.HandleFunc("/socket.io/", h.serveSocket)

	r.Route("/notifications", func(r chi.Router) {
		r.Use(jwt.MiddlewareWithConfig(jwt.MiddlewareConfig{
			Service: h.tokens,
			OnError: func(w http.ResponseWriter, r *http.Request, err error) {
				h.respondError(w, r, http.StatusUnauthorized, err)
			},
		}))
		r.Get("/", h.listNotifications)
		r.Post("/", h.sendNotification)
		r.Get("/unread-count", h.unreadCount)
		r.Patch("/read-all", h.markAllRead)
		r.Patch("/{id}/read", h.markRead)
		r.Delete("/{id}", h.deleteNotification)
	})
	return r
}
