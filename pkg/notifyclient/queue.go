package notifyclient

import "github.com/dmitrymomot/storefront/pkg/notifications"

// AddNotification records a notification. While disconnected or connecting
// it is queued without touching the counter; otherwise the counter is
// incremented and published before the notification itself.
func (c *Client) AddNotification(n notifications.Notification) {
	c.lockStep()
	defer c.unlockStep()
	c.addNotification(n)
}

// ProcessNotificationQueue publishes every queued notification in arrival
// order, bumps the counter by the queue length with a single publish and
// empties the queue. An empty queue is a no-op.
func (c *Client) ProcessNotificationQueue() {
	c.lockStep()
	defer c.unlockStep()
	c.processQueue()
}

func (c *Client) addNotification(n notifications.Notification) {
	c.mu.Lock()
	if c.Status().queues() {
		c.queue = append(c.queue, n)
		c.mu.Unlock()
		return
	}
	c.unread++
	count := c.unread
	c.mu.Unlock()

	c.fanout.enqueue(func() {
		Publish(c.listeners, UnreadCountEvent, count)
		Publish(c.listeners, NotificationEvent, n)
	})
}

func (c *Client) processQueue() {
	c.mu.RLock()
	queued := append([]notifications.Notification(nil), c.queue...)
	c.mu.RUnlock()

	if len(queued) == 0 {
		return
	}

	c.mu.Lock()
	c.unread += len(queued)
	count := c.unread
	c.queue = nil
	c.mu.Unlock()

	c.fanout.enqueue(func() {
		for _, n := range queued {
			Publish(c.listeners, NotificationEvent, n)
		}
		Publish(c.listeners, UnreadCountEvent, count)
	})
}
