package notifyclient

import (
	"encoding/json"
	"log/slog"
	"time"
)

// Transport event names.
const (
	EventConnect          = "connect"
	EventDisconnect       = "disconnect"
	EventError            = "error"
	EventConnectError     = "connect_error"
	EventReconnectAttempt = "reconnect_attempt"
	EventReconnectFailed  = "reconnect_failed"
	EventAuthenticate     = "authenticate"
	EventAuthenticated    = "authenticated"
	EventNotification     = "notification"
	EventNotificationAck  = "notification:ack"
)

// AckFunc answers a server event that requested an acknowledgment.
type AckFunc func(args ...any) error

// Handler receives the first argument of a transport event. ack is nil when
// the sender did not request an acknowledgment.
type Handler func(payload json.RawMessage, ack AckFunc)

// Transport is a bidirectional named-event channel with built-in
// reconnection. Connect must not block; progress is reported through the
// connect, disconnect and error events. Implementations must be comparable
// (pointer types); the client uses identity to ignore stale transports.
type Transport interface {
	On(event string, h Handler)
	Emit(event string, data any) error
	Connect()
	Disconnect() error
}

// TransportOptions configure a transport created by a Dialer. Transports are
// always created for manual connect.
type TransportOptions struct {
	ReconnectAttempts int
	ReconnectDelay    time.Duration
	Timeout           time.Duration
	Logger            *slog.Logger
}

// Dialer creates a transport for serverURL without connecting it.
type Dialer func(serverURL string, opts TransportOptions) (Transport, error)

type authenticatePayload struct {
	Token string `json:"token"`
}

type authenticatedPayload struct {
	Success     bool   `json:"success"`
	UnreadCount int    `json:"unreadCount"`
	Error       string `json:"error,omitempty"`
}

type ackPayload struct {
	NotificationID string `json:"notificationId"`
}

type ackReply struct {
	Success bool `json:"success"`
}

type reconnectAttemptPayload struct {
	Attempt int `json:"attempt"`
}
