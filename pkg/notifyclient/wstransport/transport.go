package wstransport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/sethvargo/go-retry"

	"github.com/dmitrymomot/storefront/pkg/logger"
	"github.com/dmitrymomot/storefront/pkg/notifyclient"
	"github.com/dmitrymomot/storefront/pkg/socketio"
)

const (
	defaultTimeout = 10 * time.Second
	defaultDelay   = 3 * time.Second
	// writeTimeout bounds a single frame write.
	writeTimeout = 5 * time.Second
)

// Transport is a reconnecting Socket.IO client connection.
type Transport struct {
	url      string
	opts     notifyclient.TransportOptions
	logger   *slog.Logger
	dialOpts *websocket.DialOptions

	mu       sync.Mutex
	handlers map[string]notifyclient.Handler
	conn     *websocket.Conn
	runCtx   context.Context
	cancel   context.CancelFunc
}

var _ notifyclient.Transport = (*Transport)(nil)

// Option configures a Transport.
type Option func(*Transport)

// WithDialOptions sets the websocket dial options (headers, http client).
func WithDialOptions(opts *websocket.DialOptions) Option {
	return func(t *Transport) {
		t.dialOpts = opts
	}
}

// New creates a transport for serverURL (http, https, ws or wss). It does not
// connect.
func New(serverURL string, opts notifyclient.TransportOptions, options ...Option) (*Transport, error) {
	endpoint, err := socketio.WebsocketURL(serverURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", err, serverURL)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.ReconnectDelay <= 0 {
		opts.ReconnectDelay = defaultDelay
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	t := &Transport{
		url:      endpoint,
		opts:     opts,
		logger:   log.With(logger.Component("wstransport")),
		handlers: make(map[string]notifyclient.Handler),
	}
	for _, opt := range options {
		opt(t)
	}
	return t, nil
}

// Dial is a notifyclient.Dialer.
func Dial(serverURL string, opts notifyclient.TransportOptions) (notifyclient.Transport, error) {
	return New(serverURL, opts)
}

// On registers h for event, replacing any previous handler.
func (t *Transport) On(event string, h notifyclient.Handler) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handlers[event] = h
}

// Emit sends an event with data as its only argument (none when nil).
func (t *Transport) Emit(event string, data any) error {
	var args []any
	if data != nil {
		args = append(args, data)
	}
	p, err := socketio.NewEvent(event, args...)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", event, err)
	}
	return t.send(p.Message())
}

// Connect starts the background connection. It is a no-op while running;
// after reconnection gave up it starts over.
func (t *Transport) Connect() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.runCtx, t.cancel = ctx, cancel
	go t.run(ctx)
}

// Disconnect stops the connection and any reconnection. No events are
// delivered afterwards. It does not wait for running handlers.
func (t *Transport) Disconnect() error {
	t.mu.Lock()
	cancel, conn := t.cancel, t.conn
	if cancel != nil {
		cancel()
	}
	t.cancel, t.runCtx, t.conn = nil, nil, nil
	t.mu.Unlock()

	if conn == nil {
		return nil
	}
	p := socketio.Packet{Type: socketio.SocketDisconnect, Namespace: socketio.DefaultNamespace}
	ctx, done := context.WithTimeout(context.Background(), time.Second)
	defer done()
	_ = conn.Write(ctx, websocket.MessageText, []byte(p.Message()))
	return conn.CloseNow()
}

func (t *Transport) run(ctx context.Context) {
	defer func() {
		t.mu.Lock()
		if t.runCtx == ctx {
			t.cancel, t.runCtx = nil, nil
		}
		t.mu.Unlock()
	}()

	_, _ = t.session(ctx)
	for ctx.Err() == nil && t.opts.ReconnectAttempts > 0 {
		if !t.reconnect(ctx) {
			return
		}
	}
}

// reconnect retries the session until one is established and later drops.
// It reports false when attempts are exhausted or the transport is stopped.
func (t *Transport) reconnect(ctx context.Context) bool {
	if !sleep(ctx, t.opts.ReconnectDelay) {
		return false
	}

	attempt := 0
	backoff := retry.WithMaxRetries(uint64(t.opts.ReconnectAttempts-1), retry.NewConstant(t.opts.ReconnectDelay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		t.fire(ctx, notifyclient.EventReconnectAttempt, map[string]int{"attempt": attempt}, nil)

		established, err := t.session(ctx)
		if established || ctx.Err() != nil {
			return nil
		}
		t.logger.LogAttrs(ctx, slog.LevelDebug, "Reconnect attempt failed", logger.Attempt(attempt), logger.Error(err))
		return retry.RetryableError(err)
	})
	if ctx.Err() != nil {
		return false
	}
	if err != nil {
		t.logger.LogAttrs(ctx, slog.LevelWarn, "Giving up reconnecting", logger.Attempt(attempt), logger.Error(err))
		t.fire(ctx, notifyclient.EventReconnectFailed, nil, nil)
		return false
	}
	return true
}

// session runs one connection from dial to drop. established reports whether
// the namespace connect succeeded.
func (t *Transport) session(ctx context.Context) (established bool, err error) {
	conn, open, err := t.handshake(ctx)
	if err != nil {
		if ctx.Err() == nil {
			t.fire(ctx, notifyclient.EventConnectError, map[string]string{"message": err.Error()}, nil)
		}
		return false, err
	}

	t.mu.Lock()
	if ctx.Err() != nil {
		t.mu.Unlock()
		_ = conn.CloseNow()
		return false, ctx.Err()
	}
	t.conn = conn
	t.mu.Unlock()

	t.logger.LogAttrs(ctx, slog.LevelDebug, "Connected", logger.SocketID(open.SID))
	t.fire(ctx, notifyclient.EventConnect, nil, nil)

	err = t.readLoop(ctx, conn, open)

	t.mu.Lock()
	if t.conn == conn {
		t.conn = nil
	}
	t.mu.Unlock()
	_ = conn.CloseNow()

	if ctx.Err() == nil {
		t.fire(ctx, notifyclient.EventDisconnect, disconnectReason(err), nil)
	}
	return true, err
}

func (t *Transport) handshake(ctx context.Context) (*websocket.Conn, socketio.OpenPayload, error) {
	hctx, cancel := context.WithTimeout(ctx, t.opts.Timeout)
	defer cancel()

	conn, _, err := websocket.Dial(hctx, t.url, t.dialOpts)
	if err != nil {
		return nil, socketio.OpenPayload{}, fmt.Errorf("failed to dial: %w", err)
	}

	open, err := t.negotiate(hctx, conn)
	if err != nil {
		_ = conn.CloseNow()
		return nil, socketio.OpenPayload{}, err
	}
	if open.MaxPayload > 0 {
		conn.SetReadLimit(int64(open.MaxPayload))
	}
	return conn, open, nil
}

func (t *Transport) negotiate(ctx context.Context, conn *websocket.Conn) (socketio.OpenPayload, error) {
	frame, err := readText(ctx, conn)
	if err != nil {
		return socketio.OpenPayload{}, errors.Join(ErrHandshakeFailed, err)
	}
	typ, payload, err := socketio.ParseEngine(frame)
	if err != nil || typ != socketio.EngineOpen {
		return socketio.OpenPayload{}, fmt.Errorf("%w: expected open, got %q", ErrHandshakeFailed, frame)
	}
	open, err := socketio.ParseOpen(payload)
	if err != nil {
		return socketio.OpenPayload{}, errors.Join(ErrHandshakeFailed, err)
	}

	connect, _ := socketio.NewConnect(socketio.DefaultNamespace, nil)
	if err := conn.Write(ctx, websocket.MessageText, []byte(connect.Message())); err != nil {
		return socketio.OpenPayload{}, errors.Join(ErrHandshakeFailed, err)
	}

	for {
		frame, err := readText(ctx, conn)
		if err != nil {
			return socketio.OpenPayload{}, errors.Join(ErrHandshakeFailed, err)
		}
		typ, payload, err := socketio.ParseEngine(frame)
		if err != nil {
			return socketio.OpenPayload{}, errors.Join(ErrHandshakeFailed, err)
		}
		switch typ {
		case socketio.EnginePing:
			if err := conn.Write(ctx, websocket.MessageText, []byte{byte(socketio.EnginePong)}); err != nil {
				return socketio.OpenPayload{}, errors.Join(ErrHandshakeFailed, err)
			}
			continue
		case socketio.EngineMessage:
		default:
			return socketio.OpenPayload{}, fmt.Errorf("%w: unexpected frame %q", ErrHandshakeFailed, frame)
		}

		p, err := socketio.ParseSocket(payload)
		if err != nil {
			return socketio.OpenPayload{}, errors.Join(ErrHandshakeFailed, err)
		}
		switch p.Type {
		case socketio.SocketConnect:
			return open, nil
		case socketio.SocketConnectError:
			return socketio.OpenPayload{}, fmt.Errorf("%w: %s", ErrConnectRejected, p.ConnectErrorMessage())
		}
	}
}

// readLoop reads until the connection fails. Reads are not bound to ctx:
// Disconnect closes the connection itself after saying goodbye.
func (t *Transport) readLoop(ctx context.Context, conn *websocket.Conn, open socketio.OpenPayload) error {
	deadline := open.PingDeadline()
	base := context.WithoutCancel(ctx)
	for {
		rctx, cancel := base, context.CancelFunc(func() {})
		if deadline > 0 {
			rctx, cancel = context.WithTimeout(base, deadline)
		}
		frame, err := readText(rctx, conn)
		timedOut := rctx.Err() != nil
		cancel()
		if err != nil {
			if timedOut {
				return ErrPingTimeout
			}
			return err
		}

		typ, payload, err := socketio.ParseEngine(frame)
		if err != nil {
			t.logger.LogAttrs(ctx, slog.LevelWarn, "Dropping malformed frame", logger.Error(err))
			continue
		}

		switch typ {
		case socketio.EnginePing:
			if err := t.send(string(socketio.EnginePong)); err != nil {
				return err
			}
		case socketio.EngineClose:
			return ErrServerDisconnect
		case socketio.EngineMessage:
			if err := t.dispatch(ctx, payload); err != nil {
				return err
			}
		}
	}
}

func (t *Transport) dispatch(ctx context.Context, payload string) error {
	p, err := socketio.ParseSocket(payload)
	if err != nil {
		t.logger.LogAttrs(ctx, slog.LevelWarn, "Dropping malformed packet", logger.Error(err))
		return nil
	}

	switch p.Type {
	case socketio.SocketEvent:
		name, args, err := p.Event()
		if err != nil {
			t.logger.LogAttrs(ctx, slog.LevelWarn, "Dropping malformed event", logger.Error(err))
			return nil
		}
		var ack notifyclient.AckFunc
		if p.HasAck {
			ack = t.ackFunc(p.Namespace, p.AckID)
		}
		t.fireRaw(ctx, name, socketio.FirstArg(args), ack)
	case socketio.SocketDisconnect:
		return ErrServerDisconnect
	case socketio.SocketConnectError:
		t.fire(ctx, notifyclient.EventConnectError, map[string]string{"message": p.ConnectErrorMessage()}, nil)
	}
	return nil
}

func (t *Transport) ackFunc(namespace string, id uint64) notifyclient.AckFunc {
	var once sync.Once
	return func(args ...any) error {
		err := ErrAlreadyAcked
		once.Do(func() {
			var p socketio.Packet
			p, err = socketio.NewAck(namespace, id, args...)
			if err != nil {
				return
			}
			err = t.send(p.Message())
		})
		return err
	}
}

func (t *Transport) send(frame string) error {
	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, []byte(frame))
}

func (t *Transport) fire(ctx context.Context, event string, payload any, ack notifyclient.AckFunc) {
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			t.logger.LogAttrs(ctx, slog.LevelError, "Failed to encode event payload", logger.Event(event), logger.Error(err))
			return
		}
		raw = b
	}
	t.fireRaw(ctx, event, raw, ack)
}

func (t *Transport) fireRaw(ctx context.Context, event string, payload json.RawMessage, ack notifyclient.AckFunc) {
	if ctx.Err() != nil {
		return
	}
	t.mu.Lock()
	h := t.handlers[event]
	t.mu.Unlock()
	if h == nil {
		t.logger.LogAttrs(ctx, slog.LevelDebug, "No handler for event", logger.Event(event))
		return
	}
	h(payload, ack)
}

func readText(ctx context.Context, conn *websocket.Conn) (string, error) {
	typ, data, err := conn.Read(ctx)
	if err != nil {
		return "", err
	}
	if typ != websocket.MessageText {
		return "", ErrUnsupportedBinary
	}
	return string(data), nil
}

func disconnectReason(err error) string {
	switch {
	case errors.Is(err, ErrPingTimeout):
		return "ping timeout"
	case errors.Is(err, ErrServerDisconnect):
		return "io server disconnect"
	case websocket.CloseStatus(err) != -1:
		return "transport close"
	default:
		return "transport error"
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
