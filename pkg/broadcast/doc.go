// Package broadcast fans typed messages out to many subscribers.
//
//	b := broadcast.NewMemoryBroadcaster[notifications.Notification](16)
//	defer b.Close()
//
//	sub := b.Subscribe(ctx)
//	defer sub.Close()
//
//	dropped, _ := b.Broadcast(ctx, broadcast.Message[notifications.Notification]{Data: n})
//
//	for msg := range sub.Receive() {
//		push(msg.Data)
//	}
//
// Broadcast never blocks. A subscriber whose buffer is full misses that
// message but stays subscribed. A subscription ends when its context is
// cancelled, when it is closed, or when the broadcaster is closed; in every
// case its channel is closed.
package broadcast
