package notifyclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/storefront/pkg/logger"
	"github.com/dmitrymomot/storefront/pkg/notifications"
)

type emitted struct {
	event string
	data  json.RawMessage
}

type fakeTransport struct {
	mu          sync.Mutex
	handlers    map[string]Handler
	emits       []emitted
	connects    int
	disconnects int
	emitErr     error
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{handlers: make(map[string]Handler)}
}

func (f *fakeTransport) On(event string, h Handler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[event] = h
}

func (f *fakeTransport) Emit(event string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.emits = append(f.emits, emitted{event: event, data: raw})
	return f.emitErr
}

func (f *fakeTransport) Connect() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connects++
}

func (f *fakeTransport) Disconnect() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disconnects++
	return nil
}

// fire delivers an event as the transport goroutine would.
func (f *fakeTransport) fire(t *testing.T, event string, payload any, ack AckFunc) {
	t.Helper()
	f.mu.Lock()
	h := f.handlers[event]
	f.mu.Unlock()
	require.NotNil(t, h, "no handler for %q", event)

	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		raw = b
	}
	h(raw, ack)
}

func (f *fakeTransport) sent(event string) []json.RawMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []json.RawMessage
	for _, e := range f.emits {
		if e.event == event {
			out = append(out, e.data)
		}
	}
	return out
}

func (f *fakeTransport) counts() (connects, disconnects int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connects, f.disconnects
}

// fakeDialer hands out fresh fake transports and remembers them.
type fakeDialer struct {
	mu         sync.Mutex
	transports []*fakeTransport
	urls       []string
	opts       []TransportOptions
	err        error
}

func (d *fakeDialer) Dial(serverURL string, opts TransportOptions) (Transport, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return nil, d.err
	}
	t := newFakeTransport()
	d.transports = append(d.transports, t)
	d.urls = append(d.urls, serverURL)
	d.opts = append(d.opts, opts)
	return t, nil
}

func (d *fakeDialer) last(t *testing.T) *fakeTransport {
	t.Helper()
	d.mu.Lock()
	defer d.mu.Unlock()
	require.NotEmpty(t, d.transports)
	return d.transports[len(d.transports)-1]
}

type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) MarkAsRead(ctx context.Context, id string) (notifications.Notification, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(notifications.Notification), args.Error(1)
}

func (m *mockAPI) MarkAllAsRead(ctx context.Context, notifType string) (Result, error) {
	args := m.Called(ctx, notifType)
	return args.Get(0).(Result), args.Error(1)
}

func (m *mockAPI) Delete(ctx context.Context, id string) (Result, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(Result), args.Error(1)
}

func (m *mockAPI) List(ctx context.Context, opts notifications.ListOptions) (Page, error) {
	args := m.Called(ctx, opts)
	return args.Get(0).(Page), args.Error(1)
}

func (m *mockAPI) UnreadCount(ctx context.Context, notifType string) (int, error) {
	args := m.Called(ctx, notifType)
	return args.Int(0), args.Error(1)
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func testLogger() (*slog.Logger, *lockedBuffer) {
	buf := &lockedBuffer{}
	return logger.New(logger.WithOutput(buf), logger.WithJSONFormatter(), logger.WithLevel(slog.LevelDebug)), buf
}

// recorder collects typed events in arrival order.
type recorder struct {
	mu     sync.Mutex
	notifs []notifications.Notification
	counts []int
	order  []string
}

func record(c *Client) *recorder {
	r := &recorder{}
	c.OnNotification(func(n notifications.Notification) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.notifs = append(r.notifs, n)
		r.order = append(r.order, "notification:"+n.ID)
	})
	c.OnUnreadCount(func(n int) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.counts = append(r.counts, n)
		r.order = append(r.order, "unreadCount")
	})
	return r
}

func (r *recorder) ids() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.notifs))
	for _, n := range r.notifs {
		ids = append(ids, n.ID)
	}
	return ids
}

func (r *recorder) unreadCounts() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.counts...)
}

func (r *recorder) events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.order...)
}

func notif(id string) notifications.Notification {
	return notifications.Notification{ID: id, Title: "Title " + id, Priority: notifications.PriorityMedium}
}

var errBackend = errors.New("backend down")

// newTestClient builds a client with a stored token, a fake dialer and a mock API.
func newTestClient(t *testing.T, opts ...Option) (*Client, *fakeDialer, *mockAPI) {
	t.Helper()
	dialer := &fakeDialer{}
	api := &mockAPI{}
	log, _ := testLogger()
	base := []Option{
		WithCredentials(StaticToken("token-123")),
		WithDialer(dialer.Dial),
		WithAPI(api),
		WithLogger(log),
	}
	return New(append(base, opts...)...), dialer, api
}

// connectedClient runs Init and fires transport connect.
func connectedClient(t *testing.T, opts ...Option) (*Client, *fakeTransport, *mockAPI) {
	t.Helper()
	c, dialer, api := newTestClient(t, opts...)
	require.NoError(t, c.Init(context.Background(), "http://hub.test"))
	tr := dialer.last(t)
	tr.fire(t, EventConnect, nil, nil)
	return c, tr, api
}
