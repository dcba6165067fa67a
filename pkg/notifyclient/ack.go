package notifyclient

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/storefront/pkg/logger"
	"github.com/dmitrymomot/storefront/pkg/notifications"
)

// handleNotification stores a pushed notification, shows its toast and
// acknowledges it exactly once: through ack when the server asked for one,
// otherwise with a notification:ack event. Ack failures are logged only.
func (c *Client) handleNotification(t Transport, payload json.RawMessage, ack AckFunc) {
	ctx := context.Background()

	var n notifications.Notification
	if err := json.Unmarshal(payload, &n); err != nil || n.ID == "" {
		if err == nil {
			err = notifications.ErrMissingID
		}
		c.logger.LogAttrs(ctx, slog.LevelError, "Dropping undecodable notification", logger.Error(err))
		return
	}

	c.addNotification(n)
	c.fanout.enqueue(func() { c.present(n) })

	if ack != nil {
		if err := callAck(ack, ackReply{Success: true}); err != nil {
			c.logger.LogAttrs(ctx, slog.LevelWarn, "Acknowledgment callback failed",
				logger.NotificationID(n.ID),
				logger.Error(err),
			)
		}
		return
	}

	if err := t.Emit(EventNotificationAck, ackPayload{NotificationID: n.ID}); err != nil {
		c.logger.LogAttrs(ctx, slog.LevelWarn, "Failed to acknowledge notification",
			logger.NotificationID(n.ID),
			logger.Error(err),
		)
	}
}

func (c *Client) present(n notifications.Notification) {
	defer func() {
		if rec := recover(); rec != nil {
			c.logger.LogAttrs(context.Background(), slog.LevelError, "Toast presenter panicked",
				logger.NotificationID(n.ID),
				logger.Error(fmt.Errorf("%v", rec)),
			)
		}
	}()
	c.presenter.Present(NewToast(n, c.cfg.ToastDuration))
}

func callAck(ack AckFunc, reply any) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("ack panicked: %v", rec)
		}
	}()
	return ack(reply)
}
