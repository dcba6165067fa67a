// Package notifyclient is the real-time notification client of the
// storefront admin dashboard.
//
// A Client owns one transport connection and walks it through
// disconnected -> connecting -> connected -> authenticated. Notifications
// pushed before the transport is up are queued and published once it
// connects; after that every push bumps the unread counter, is published to
// listeners, shown as a toast and acknowledged to the server exactly once.
//
//	client := notifyclient.New(
//	    notifyclient.WithConfig(cfg),
//	    notifyclient.WithCredentials(store),
//	    notifyclient.WithDialer(wstransport.Dial),
//	    notifyclient.WithPresenter(presenter),
//	    notifyclient.WithLogger(log),
//	)
//	defer client.Disconnect()
//
//	unsubscribe := client.OnUnreadCount(func(n int) { badge.Set(n) })
//	defer unsubscribe()
//
//	if err := client.Init(ctx, ""); err != nil {
//	    return err
//	}
//
// # Listeners
//
// Listeners are keyed by event name and run in registration order. A
// panicking listener is logged and the fan-out continues. Typed events are
// declared with NewEvent and used through Subscribe and Publish; the two
// built-in events are NotificationEvent and UnreadCountEvent.
//
// Client changes queue their fan-out and deliver it once the step lock is
// released, in the order the changes happened. A listener may therefore call
// any client method, including MarkAsRead and Disconnect. The fan-out caused
// by such a call runs after the current listener returns.
//
// # REST façade
//
// MarkAsRead, MarkAllAsRead and DeleteNotification return backend errors to
// the caller and leave local state unchanged on failure. GetNotifications
// and GetUnreadCount never fail: on error they return placeholder data
// (ids "mock1" and "mock2", count 3) marked with SourceFallback.
package notifyclient
