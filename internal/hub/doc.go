// Package hub is the reference notification backend used for local
// development and end-to-end tests of the dashboard client.
//
// It serves the REST API under /notifications (bearer JWT, chi router), a
// Socket.IO endpoint under /socket.io/ and a /healthz probe. Notifications
// are stored in Postgres when PG_CONN_URL is set and in memory otherwise;
// with REDIS_URL set every send is published through Redis and relayed into
// the local per-user feeds, so any hub node reaches its own sockets.
//
// Socket protocol after the Engine.IO open and namespace connect:
//
//	client -> authenticate {token}
//	server -> authenticated {success, unreadCount, error}
//	server -> notification <Notification>   (with ack id)
//	client -> ack [{success:true}] or notification:ack {notificationId}
package hub
