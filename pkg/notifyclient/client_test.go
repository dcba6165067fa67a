package notifyclient

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/storefront/pkg/notifications"
)

func TestClient_InitWithoutCredential(t *testing.T) {
	log, buf := testLogger()
	dialer := &fakeDialer{}
	c := New(WithDialer(dialer.Dial), WithLogger(log), WithAPI(&mockAPI{}))
	r := record(c)

	require.NoError(t, c.Init(context.Background(), "http://hub.test"))

	assert.Empty(t, dialer.transports, "no transport should be created")
	assert.Equal(t, StatusDisconnected, c.Status())
	assert.Contains(t, buf.String(), "No stored credential")
	assert.Empty(t, r.events())

	c.Connect()
	assert.Equal(t, StatusDisconnected, c.Status(), "connect without transport is a no-op")
}

func TestClient_InitCredentialErrors(t *testing.T) {
	tests := []struct {
		name  string
		store CredentialStore
	}{
		{"empty token", StaticToken("")},
		{"store failure", failingStore{err: errors.New("disk unreadable")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dialer := &fakeDialer{}
			log, buf := testLogger()
			c := New(WithCredentials(tt.store), WithDialer(dialer.Dial), WithLogger(log), WithAPI(&mockAPI{}))

			require.NoError(t, c.Init(context.Background(), ""))
			assert.Empty(t, dialer.transports)
			assert.Contains(t, buf.String(), "No stored credential")
		})
	}
}

type failingStore struct{ err error }

func (s failingStore) Token(context.Context) (string, error) { return "", s.err }
func (s failingStore) Clear(context.Context) error           { return s.err }

func TestClient_InitCreatesAndConnectsTransport(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ServerURL = "http://default.test"
	cfg.ReconnectAttempts = 7
	c, dialer, _ := newTestClient(t, WithConfig(cfg))

	require.NoError(t, c.Init(context.Background(), ""))

	require.Len(t, dialer.transports, 1)
	assert.Equal(t, "http://default.test", dialer.urls[0], "empty url falls back to config")
	assert.Equal(t, 7, dialer.opts[0].ReconnectAttempts)
	assert.Equal(t, 3*time.Second, dialer.opts[0].ReconnectDelay)
	assert.Equal(t, 10*time.Second, dialer.opts[0].Timeout)

	connects, _ := dialer.last(t).counts()
	assert.Equal(t, 1, connects)
	assert.Equal(t, StatusConnecting, c.Status())
}

func TestClient_InitReplacesTransport(t *testing.T) {
	c, dialer, _ := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.Init(ctx, "http://hub.test"))
	first := dialer.last(t)
	first.fire(t, EventConnect, nil, nil)

	require.NoError(t, c.Init(ctx, "http://hub.test"))
	second := dialer.last(t)
	require.NotSame(t, first, second)

	_, disconnects := first.counts()
	assert.Equal(t, 1, disconnects, "old transport torn down before the new one")
	assert.Equal(t, StatusConnecting, c.Status())

	// Late events from the old transport no longer affect the session.
	first.fire(t, EventAuthenticated, map[string]any{"success": true, "unreadCount": 9}, nil)
	assert.Equal(t, StatusConnecting, c.Status())
	assert.Zero(t, c.UnreadCount())
}

func TestClient_InitDialerError(t *testing.T) {
	dialer := &fakeDialer{err: errors.New("bad url")}
	log, _ := testLogger()
	c := New(WithCredentials(StaticToken("t")), WithDialer(dialer.Dial), WithLogger(log), WithAPI(&mockAPI{}))

	err := c.Init(context.Background(), "::bad")
	require.Error(t, err)
	assert.Equal(t, StatusDisconnected, c.Status())
}

func TestClient_InitWithoutDialer(t *testing.T) {
	log, _ := testLogger()
	c := New(WithCredentials(StaticToken("t")), WithLogger(log), WithAPI(&mockAPI{}))
	assert.ErrorIs(t, c.Init(context.Background(), "http://hub.test"), ErrNoDialer)
}

func TestClient_AuthenticationHandshake(t *testing.T) {
	c, tr, _ := connectedClient(t)
	r := record(c)

	assert.Equal(t, StatusConnected, c.Status())

	auth := tr.sent(EventAuthenticate)
	require.Len(t, auth, 1)
	assert.JSONEq(t, `{"token":"token-123"}`, string(auth[0]))

	tr.fire(t, EventAuthenticated, map[string]any{"success": true, "unreadCount": 5}, nil)

	assert.Equal(t, StatusAuthenticated, c.Status())
	assert.Equal(t, 5, c.UnreadCount())
	assert.Equal(t, []int{5}, r.unreadCounts())
}

func TestClient_ReauthenticationReseedsCounter(t *testing.T) {
	c, tr, _ := connectedClient(t)
	r := record(c)

	tr.fire(t, EventAuthenticated, map[string]any{"success": true, "unreadCount": 2}, nil)
	tr.fire(t, EventAuthenticated, map[string]any{"success": true, "unreadCount": 5}, nil)

	assert.Equal(t, StatusAuthenticated, c.Status())
	assert.Equal(t, 5, c.UnreadCount())
	assert.Equal(t, []int{2, 5}, r.unreadCounts())
}

func TestClient_AuthenticatedAfterDisconnectIgnored(t *testing.T) {
	log, buf := testLogger()
	c, tr, _ := connectedClient(t, WithLogger(log))
	r := record(c)

	tr.fire(t, EventDisconnect, nil, nil)
	tr.fire(t, EventAuthenticated, map[string]any{"success": true, "unreadCount": 4}, nil)

	assert.Equal(t, StatusDisconnected, c.Status())
	assert.Zero(t, c.UnreadCount())
	assert.Empty(t, r.unreadCounts())
	assert.Contains(t, buf.String(), "Ignoring invalid status transition")
}

func TestClient_AuthenticationRejected(t *testing.T) {
	c, tr, _ := connectedClient(t)
	r := record(c)

	tr.fire(t, EventAuthenticated, map[string]any{"success": false, "error": "invalid token"}, nil)

	assert.Equal(t, StatusConnected, c.Status(), "stays connected but unauthenticated")
	assert.Zero(t, c.UnreadCount())
	assert.Empty(t, r.unreadCounts())
	_, disconnects := tr.counts()
	assert.Zero(t, disconnects)
}

func TestClient_MalformedAuthenticationResponse(t *testing.T) {
	c, tr, _ := connectedClient(t)
	handler := tr.handlers[EventAuthenticated]
	handler(json.RawMessage(`"nope"`), nil)
	assert.Equal(t, StatusConnected, c.Status())
}

func TestClient_DisconnectAndReconnect(t *testing.T) {
	c, tr, _ := connectedClient(t)
	r := record(c)
	tr.fire(t, EventAuthenticated, map[string]any{"success": true, "unreadCount": 1}, nil)

	tr.fire(t, EventDisconnect, "transport close", nil)
	assert.Equal(t, StatusDisconnected, c.Status())

	tr.fire(t, EventNotification, notif("n1"), nil)
	assert.Equal(t, 1, c.PendingCount(), "pushes while disconnected are queued")

	tr.fire(t, EventReconnectAttempt, map[string]int{"attempt": 1}, nil)
	assert.Equal(t, StatusConnecting, c.Status())

	tr.fire(t, EventConnect, nil, nil)
	assert.Equal(t, StatusConnected, c.Status())
	assert.Len(t, tr.sent(EventAuthenticate), 2, "re-authenticates on every connect")
	assert.Zero(t, c.PendingCount())
	assert.Equal(t, 2, c.UnreadCount())

	tr.fire(t, EventAuthenticated, map[string]any{"success": true, "unreadCount": 2}, nil)
	assert.Equal(t, StatusAuthenticated, c.Status())
	assert.Equal(t, []string{"n1"}, r.ids())
}

func TestClient_ReconnectFailedAndErrors(t *testing.T) {
	log, buf := testLogger()
	c, tr, _ := connectedClient(t, WithLogger(log))

	tr.fire(t, EventDisconnect, nil, nil)
	tr.fire(t, EventConnectError, map[string]string{"message": "dial tcp refused"}, nil)
	tr.fire(t, EventError, "boom", nil)
	tr.fire(t, EventReconnectFailed, nil, nil)

	assert.Equal(t, StatusDisconnected, c.Status())
	out := buf.String()
	assert.Contains(t, out, "dial tcp refused")
	assert.Contains(t, out, "boom")
	assert.Contains(t, out, "Reconnection attempts exhausted")
}

func TestClient_Disconnect(t *testing.T) {
	c, tr, _ := connectedClient(t)

	c.Disconnect()
	assert.Equal(t, StatusDisconnected, c.Status())
	_, disconnects := tr.counts()
	assert.Equal(t, 1, disconnects)

	c.Disconnect()
	_, disconnects = tr.counts()
	assert.Equal(t, 1, disconnects, "second disconnect is a no-op")

	c.Connect()
	assert.Equal(t, StatusDisconnected, c.Status(), "transport was dropped")

	tr.fire(t, EventConnect, nil, nil)
	assert.Equal(t, StatusDisconnected, c.Status(), "events from the dropped transport are ignored")
}

func TestClient_Logout(t *testing.T) {
	store := &memoryStore{token: "abc"}
	c, dialer, _ := newTestClient(t, WithCredentials(store))
	require.NoError(t, c.Init(context.Background(), "http://hub.test"))

	require.NoError(t, c.Logout(context.Background()))
	assert.Equal(t, StatusDisconnected, c.Status())
	assert.Empty(t, store.token)

	require.NoError(t, c.Init(context.Background(), "http://hub.test"))
	assert.Len(t, dialer.transports, 1, "no new transport without a credential")
}

type memoryStore struct{ token string }

func (s *memoryStore) Token(context.Context) (string, error) {
	if s.token == "" {
		return "", ErrNoCredential
	}
	return s.token, nil
}

func (s *memoryStore) Clear(context.Context) error {
	s.token = ""
	return nil
}

func TestClient_ListenersMayReadState(t *testing.T) {
	c, tr, _ := connectedClient(t)

	var seen []Status
	c.OnUnreadCount(func(int) {
		seen = append(seen, c.Status())
		_ = c.UnreadCount()
		_ = c.PendingCount()
	})

	tr.fire(t, EventAuthenticated, map[string]any{"success": true, "unreadCount": 2}, nil)
	assert.Equal(t, []Status{StatusAuthenticated}, seen)
}

func TestClient_ListenersMayCallMutatingMethods(t *testing.T) {
	c, tr, api := connectedClient(t)
	tr.fire(t, EventAuthenticated, map[string]any{"success": true, "unreadCount": 0}, nil)
	api.On("MarkAsRead", mock.Anything, "n1").Return(notif("n1"), nil).Once()
	r := record(c)

	c.OnNotification(func(n notifications.Notification) {
		_, err := c.MarkAsRead(context.Background(), n.ID)
		assert.NoError(t, err)
	})
	c.OnUnreadCount(func(n int) {
		if n == 0 {
			c.Disconnect()
		}
	})

	handler := tr.handlers[EventNotification]
	raw, err := json.Marshal(notif("n1"))
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		handler(raw, nil)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("listener calling back into the client blocked")
	}

	assert.Equal(t, StatusDisconnected, c.Status())
	assert.Zero(t, c.UnreadCount())
	assert.Equal(t, []int{1, 0}, r.unreadCounts(), "nested fan-out follows the outer one")
	assert.Equal(t, []string{"n1"}, r.ids())
	_, disconnects := tr.counts()
	assert.Equal(t, 1, disconnects)
	api.AssertExpectations(t)
}
