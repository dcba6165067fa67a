package notifications

import (
	"context"
	"log/slog"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dmitrymomot/storefront/pkg/broadcast"
	"github.com/dmitrymomot/storefront/pkg/logger"
)

const defaultMaxFeeds = 10000

// Feed is the per-user stream a connection subscribes to.
type Feed = broadcast.Subscriber[Notification]

// BroadcastDeliverer fans notifications out to in-process subscribers, one
// broadcaster per user. Broadcasters are kept in an LRU; evicting one closes
// its subscribers.
type BroadcastDeliverer struct {
	feeds      *lru.Cache[string, *broadcast.MemoryBroadcaster[Notification]]
	bufferSize int
	maxFeeds   int
	logger     *slog.Logger
	closed     bool
	mu         sync.Mutex
}

// BroadcastDelivererOption configures a BroadcastDeliverer.
type BroadcastDelivererOption func(*BroadcastDeliverer)

// WithBroadcastLogger sets the logger for the BroadcastDeliverer.
func WithBroadcastLogger(logger *slog.Logger) BroadcastDelivererOption {
	return func(b *BroadcastDeliverer) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithMaxFeeds sets the maximum number of user feeds kept in memory.
// Default is 10,000.
func WithMaxFeeds(limit int) BroadcastDelivererOption {
	return func(b *BroadcastDeliverer) {
		if limit > 0 {
			b.maxFeeds = limit
		}
	}
}

// NewBroadcastDeliverer creates a new broadcast-based deliverer. bufferSize is
// the per-subscriber channel buffer; a full buffer drops the notification for
// that subscriber only.
func NewBroadcastDeliverer(bufferSize int, opts ...BroadcastDelivererOption) *BroadcastDeliverer {
	b := &BroadcastDeliverer{
		bufferSize: max(bufferSize, 1),
		maxFeeds:   defaultMaxFeeds,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}

	feeds, err := lru.NewWithEvict(b.maxFeeds, func(userID string, f *broadcast.MemoryBroadcaster[Notification]) {
		_ = f.Close()
		b.logger.LogAttrs(context.Background(), slog.LevelDebug, "Evicted notification feed",
			logger.UserID(userID),
		)
	})
	if err != nil {
		// Only returned for a non-positive size, which the option guards against.
		panic(err)
	}
	b.feeds = feeds
	return b
}

func (d *BroadcastDeliverer) Deliver(ctx context.Context, notif Notification) error {
	f, ok := d.feeds.Get(notif.UserID)
	if !ok {
		// Nobody is listening; the notification stays in storage.
		return nil
	}
	dropped, err := f.Broadcast(ctx, broadcast.Message[Notification]{Data: notif})
	if err != nil {
		// Evicted between Get and Broadcast.
		return nil
	}
	if dropped > 0 {
		d.logger.LogAttrs(ctx, slog.LevelWarn, "Dropped notification for slow subscribers",
			logger.NotificationID(notif.ID),
			logger.UserID(notif.UserID),
			slog.Int("dropped", dropped),
		)
	}
	return nil
}

// Subscribe returns a feed of the user's notifications. It is closed when
// ctx is cancelled, when Close is called or when the user's broadcaster is
// evicted. After Close the returned feed is already closed.
func (d *BroadcastDeliverer) Subscribe(ctx context.Context, userID string) Feed {
	d.mu.Lock()
	f, ok := d.feeds.Get(userID)
	if !ok {
		f = broadcast.NewMemoryBroadcaster[Notification](d.bufferSize)
		if d.closed {
			_ = f.Close()
		} else {
			d.feeds.Add(userID, f)
		}
	}
	d.mu.Unlock()

	return f.Subscribe(ctx)
}

// Subscribers returns the number of live subscriptions for a user.
func (d *BroadcastDeliverer) Subscribers(userID string) int {
	f, ok := d.feeds.Peek(userID)
	if !ok {
		return 0
	}
	return f.Len()
}

// Close closes all user feeds.
func (d *BroadcastDeliverer) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	// Purge calls the eviction callback for each broadcaster.
	d.feeds.Purge()
	return nil
}
