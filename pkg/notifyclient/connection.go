package notifyclient

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/dmitrymomot/storefront/pkg/logger"
)

// bind registers the client handlers on t. Events from a transport that is
// no longer current are ignored.
func (c *Client) bind(t Transport) {
	c.on(t, EventConnect, c.handleConnect)
	c.on(t, EventAuthenticated, c.handleAuthenticated)
	c.on(t, EventDisconnect, c.handleDisconnect)
	c.on(t, EventReconnectAttempt, c.handleReconnectAttempt)
	c.on(t, EventReconnectFailed, c.handleReconnectFailed)
	c.on(t, EventError, c.handleError(EventError))
	c.on(t, EventConnectError, c.handleError(EventConnectError))
	c.on(t, EventNotification, c.handleNotification)
}

type stepHandler func(t Transport, payload json.RawMessage, ack AckFunc)

func (c *Client) on(t Transport, event string, fn stepHandler) {
	t.On(event, func(payload json.RawMessage, ack AckFunc) {
		c.lockStep()
		defer c.unlockStep()

		if c.currentTransport() != t {
			c.logger.LogAttrs(context.Background(), slog.LevelDebug, "Dropping event from stale transport", logger.Event(event))
			return
		}
		fn(t, payload, ack)
	})
}

func (c *Client) handleConnect(t Transport, _ json.RawMessage, _ AckFunc) {
	c.setStatus(StatusConnected)

	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()

	if err := t.Emit(EventAuthenticate, authenticatePayload{Token: token}); err != nil {
		c.logger.LogAttrs(context.Background(), slog.LevelError, "Failed to send authentication", logger.Error(err))
	}

	c.processQueue()
}

func (c *Client) handleAuthenticated(_ Transport, payload json.RawMessage, _ AckFunc) {
	ctx := context.Background()

	var res authenticatedPayload
	if err := json.Unmarshal(payload, &res); err != nil {
		c.logger.LogAttrs(ctx, slog.LevelError, "Malformed authentication response", logger.Error(err))
		return
	}
	if !res.Success {
		c.logger.LogAttrs(ctx, slog.LevelError, "Authentication rejected, staying connected without live updates",
			slog.String("reason", res.Error),
		)
		return
	}

	if !c.setStatus(StatusAuthenticated) {
		return
	}
	c.logger.LogAttrs(ctx, slog.LevelInfo, "Authenticated", slog.Int("unread_count", res.UnreadCount))
	c.setUnread(res.UnreadCount)
}

func (c *Client) handleDisconnect(_ Transport, payload json.RawMessage, _ AckFunc) {
	c.setStatus(StatusDisconnected)
	c.logger.LogAttrs(context.Background(), slog.LevelInfo, "Disconnected", slog.String("reason", reason(payload)))
}

func (c *Client) handleReconnectAttempt(_ Transport, payload json.RawMessage, _ AckFunc) {
	var attempt reconnectAttemptPayload
	_ = json.Unmarshal(payload, &attempt)

	c.setStatus(StatusConnecting)
	c.logger.LogAttrs(context.Background(), slog.LevelInfo, "Reconnecting", logger.Attempt(attempt.Attempt))
}

func (c *Client) handleReconnectFailed(_ Transport, _ json.RawMessage, _ AckFunc) {
	c.setStatus(StatusDisconnected)
	c.logger.LogAttrs(context.Background(), slog.LevelWarn, "Reconnection attempts exhausted, call Connect or Init to retry")
}

func (c *Client) handleError(event string) stepHandler {
	return func(_ Transport, payload json.RawMessage, _ AckFunc) {
		c.logger.LogAttrs(context.Background(), slog.LevelError, "Transport error",
			logger.Event(event),
			slog.String("reason", reason(payload)),
		)
	}
}

// reason renders an event payload for logs: JSON strings unquoted, objects
// with a message field reduced to it, anything else verbatim.
func reason(payload json.RawMessage) string {
	if len(payload) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(payload, &s) == nil {
		return s
	}
	var obj struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(payload, &obj) == nil && obj.Message != "" {
		return obj.Message
	}
	return string(payload)
}
