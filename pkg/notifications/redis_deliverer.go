package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/storefront/pkg/logger"
)

const defaultChannelPrefix = "storefront:notifications:"

// RedisDeliverer publishes notifications on a per-user Redis channel so that
// every hub node can push them to its own sockets. Pair it with Relay on each
// node to forward received messages into a local deliverer.
type RedisDeliverer struct {
	client redis.UniversalClient
	prefix string
	logger *slog.Logger
}

// RedisDelivererOption configures a RedisDeliverer.
type RedisDelivererOption func(*RedisDeliverer)

// WithChannelPrefix overrides the pub/sub channel prefix.
func WithChannelPrefix(prefix string) RedisDelivererOption {
	return func(r *RedisDeliverer) {
		if prefix != "" {
			r.prefix = prefix
		}
	}
}

// WithRedisLogger sets the logger for the RedisDeliverer.
func WithRedisLogger(logger *slog.Logger) RedisDelivererOption {
	return func(r *RedisDeliverer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRedisDeliverer creates a Redis pub/sub deliverer.
func NewRedisDeliverer(client redis.UniversalClient, opts ...RedisDelivererOption) *RedisDeliverer {
	r := &RedisDeliverer{
		client: client,
		prefix: defaultChannelPrefix,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Channel returns the pub/sub channel for a user.
func (r *RedisDeliverer) Channel(userID string) string {
	return r.prefix + userID
}

func (r *RedisDeliverer) Deliver(ctx context.Context, notif Notification) error {
	payload, err := json.Marshal(notif)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}
	if err := r.client.Publish(ctx, r.Channel(notif.UserID), payload).Err(); err != nil {
		return errors.Join(ErrDeliveryFailed, err)
	}
	return nil
}

// Relay subscribes to every user channel and hands each decoded notification
// to target. It blocks until ctx is cancelled or the subscription fails.
func (r *RedisDeliverer) Relay(ctx context.Context, target Deliverer) error {
	sub := r.client.PSubscribe(ctx, r.prefix+"*")
	defer func() { _ = sub.Close() }()

	// Wait for the subscription confirmation so callers know relaying is live.
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s*: %w", r.prefix, err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			r.forward(ctx, target, msg)
		}
	}
}

func (r *RedisDeliverer) forward(ctx context.Context, target Deliverer, msg *redis.Message) {
	var notif Notification
	if err := json.Unmarshal([]byte(msg.Payload), &notif); err != nil {
		r.logger.LogAttrs(ctx, slog.LevelWarn, "Dropping malformed relayed notification",
			slog.String("channel", msg.Channel),
			logger.Error(err),
		)
		return
	}
	if notif.UserID == "" {
		notif.UserID = strings.TrimPrefix(msg.Channel, r.prefix)
	}
	if err := target.Deliver(ctx, notif); err != nil {
		r.logger.LogAttrs(ctx, slog.LevelWarn, "Failed to deliver relayed notification",
			logger.NotificationID(notif.ID),
			logger.UserID(notif.UserID),
			logger.Error(err),
		)
	}
}
