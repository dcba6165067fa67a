// Package wstransport is a notifyclient.Transport speaking Socket.IO v5 over
// a single Engine.IO v4 websocket.
//
// Connect returns immediately and runs the connection in the background:
// dial, engine open, namespace connect, then a read loop that answers server
// pings and dispatches events to the registered handlers. When an
// established connection drops the transport retries with a constant delay
// up to ReconnectAttempts times, announcing each try with reconnect_attempt
// and giving up with reconnect_failed.
//
//	client := notifyclient.New(notifyclient.WithDialer(wstransport.Dial))
//
// Handlers run on the read goroutine, one at a time, in arrival order.
package wstransport
