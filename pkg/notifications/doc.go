// Package notifications provides the server side of the storefront
// notification system: the Notification model, pluggable storage and
// real-time delivery.
//
// # Architecture
//
//   - Storage: persistence and CRUD (MemoryStorage here, Postgres in pgstore)
//   - Deliverer: pushes stored notifications to live connections
//   - Manager: fills defaults, validates, stores and then delivers
//
// # Basic Usage
//
//	storage := notifications.NewMemoryStorage()
//	deliverer := notifications.NewBroadcastDeliverer(16)
//	manager := notifications.NewManager(storage, deliverer)
//
//	n, err := manager.Send(ctx, notifications.Notification{
//	    UserID:   "user123",
//	    Type:     notifications.TypeOrder,
//	    Priority: notifications.PriorityHigh,
//	    Title:    "Order shipped",
//	    Message:  "Your order #1042 is on its way",
//	})
//
// Send stores first and delivers second. A delivery failure is logged and
// does not fail the call, so a notification is always listable once Send
// returns without error.
//
// # Live Delivery
//
// BroadcastDeliverer keeps one broadcast.MemoryBroadcaster per user in an
// LRU. Each websocket connection subscribes and reads its Feed:
//
//	sub := deliverer.Subscribe(ctx, userID)
//	defer sub.Close()
//	for msg := range sub.Receive() {
//	    push(msg.Data)
//	}
//
// Slow subscribers never block Deliver; notifications that do not fit in
// the subscriber buffer are dropped and remain available through List.
//
// # Multiple Nodes
//
// RedisDeliverer publishes to a per-user channel. Every node runs Relay to
// forward messages from Redis into its local BroadcastDeliverer:
//
//	local := notifications.NewBroadcastDeliverer(16)
//	remote := notifications.NewRedisDeliverer(rdb)
//	go remote.Relay(ctx, local)
//	manager := notifications.NewManager(store, remote)
package notifications
