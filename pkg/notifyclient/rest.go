package notifyclient

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/storefront/pkg/logger"
	"github.com/dmitrymomot/storefront/pkg/notifications"
)

// MarkAsRead marks one notification read on the server, then decrements the
// counter (never below zero). Errors are returned unchanged and leave local
// state untouched.
func (c *Client) MarkAsRead(ctx context.Context, id string) (notifications.Notification, error) {
	n, err := c.api.MarkAsRead(ctx, id)
	if err != nil {
		return notifications.Notification{}, err
	}

	c.lockStep()
	c.setUnread(c.UnreadCount() - 1)
	c.unlockStep()
	return n, nil
}

// MarkAllAsRead marks every notification (of notifType, when set) read on the
// server, then resets the counter to zero.
func (c *Client) MarkAllAsRead(ctx context.Context, notifType string) (Result, error) {
	res, err := c.api.MarkAllAsRead(ctx, notifType)
	if err != nil {
		return Result{}, err
	}

	c.lockStep()
	c.setUnread(0)
	c.unlockStep()
	return res, nil
}

// DeleteNotification deletes a notification on the server. The counter is
// not adjusted; callers that delete an unread item should refresh it with
// GetUnreadCount.
func (c *Client) DeleteNotification(ctx context.Context, id string) (Result, error) {
	return c.api.Delete(ctx, id)
}

// GetNotifications lists notifications. It never fails: when the backend
// errors or answers without a notification list, placeholder data with
// Source set to SourceFallback is returned.
func (c *Client) GetNotifications(ctx context.Context, opts notifications.ListOptions) ListResponse {
	page, err := c.api.List(ctx, opts)
	if err == nil && page.Notifications == nil {
		err = ErrMalformedResponse
	}
	if err != nil {
		c.logger.LogAttrs(ctx, slog.LevelWarn, "Failed to fetch notifications, using placeholder data", logger.Error(err))
		return fallbackList(opts, c.now())
	}

	normalized := opts.Normalize()
	if page.Page == 0 {
		page.Page = normalized.Page
	}
	if page.Limit == 0 {
		page.Limit = normalized.Limit
	}
	return ListResponse{Status: "success", Data: page, Source: SourceLive}
}

// GetUnreadCount fetches the unread count and publishes it. On failure the
// placeholder FallbackUnreadCount is stored and published instead.
func (c *Client) GetUnreadCount(ctx context.Context, notifType string) UnreadCountResponse {
	count, err := c.api.UnreadCount(ctx, notifType)
	if err == nil && count < 0 {
		err = ErrMalformedResponse
	}

	res := UnreadCountResponse{Count: count, Source: SourceLive}
	if err != nil {
		c.logger.LogAttrs(ctx, slog.LevelWarn, "Failed to fetch unread count, using placeholder", logger.Error(err))
		res = UnreadCountResponse{Count: FallbackUnreadCount, Source: SourceFallback}
	}

	c.lockStep()
	c.setUnread(res.Count)
	c.unlockStep()
	return res
}
