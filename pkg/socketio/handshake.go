package socketio

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/url"
	"strings"
	"sync/atomic"
	"time"
)

// Path is the default endpoint path.
const Path = "/socket.io/"

// OpenPayload is the body of the engine open packet.
type OpenPayload struct {
	SID          string   `json:"sid"`
	Upgrades     []string `json:"upgrades"`
	PingInterval int      `json:"pingInterval"`
	PingTimeout  int      `json:"pingTimeout"`
	MaxPayload   int      `json:"maxPayload"`
}

// NewOpen builds the engine open frame for a fresh session.
func NewOpen(sid string, pingInterval, pingTimeout time.Duration, maxPayload int) string {
	raw, _ := json.Marshal(OpenPayload{
		SID:          sid,
		Upgrades:     []string{},
		PingInterval: int(pingInterval / time.Millisecond),
		PingTimeout:  int(pingTimeout / time.Millisecond),
		MaxPayload:   maxPayload,
	})
	return string(EngineOpen) + string(raw)
}

// ParseOpen decodes the payload of an engine open packet.
func ParseOpen(payload string) (OpenPayload, error) {
	var open OpenPayload
	if err := json.Unmarshal([]byte(payload), &open); err != nil {
		return OpenPayload{}, ErrMalformedPacket
	}
	if open.SID == "" {
		return OpenPayload{}, ErrMalformedPacket
	}
	return open, nil
}

// PingDeadline is how long a client may wait for the next server ping
// before treating the connection as dead.
func (o OpenPayload) PingDeadline() time.Duration {
	return time.Duration(o.PingInterval+o.PingTimeout) * time.Millisecond
}

// WebsocketURL turns an http(s) or ws(s) base URL into the websocket
// endpoint URL. Paths already pointing at the endpoint are kept.
func WebsocketURL(base string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", ErrInvalidURL
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", ErrInvalidURL
	}
	if u.Host == "" {
		return "", ErrInvalidURL
	}
	if !strings.HasSuffix(u.Path, Path) {
		u.Path = strings.TrimSuffix(u.Path, "/") + Path
	}
	q := u.Query()
	q.Set("EIO", "4")
	q.Set("transport", "websocket")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// NewSID returns a random session id.
func NewSID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "00000000000000000000000000000000"
	}
	return hex.EncodeToString(buf)
}

// AckSequence hands out ack ids for one connection.
type AckSequence struct {
	n atomic.Uint64
}

// Next returns the next id, starting at 0.
func (s *AckSequence) Next() uint64 {
	return s.n.Add(1) - 1
}
