package hub

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/dmitrymomot/storefront/pkg/logger"
	"github.com/dmitrymomot/storefront/pkg/notifications"
	"github.com/dmitrymomot/storefront/pkg/notifyclient"
	"github.com/dmitrymomot/storefront/pkg/socketio"
)

const socketWriteTimeout = 5 * time.Second

var errPongTimeout = errors.New("pong timeout")

type authenticateRequest struct {
	Token string `json:"token"`
}

type authenticatedResponse struct {
	Success     bool   `json:"success"`
	UnreadCount int    `json:"unreadCount"`
	Error       string `json:"error,omitempty"`
}

type ackEvent struct {
	NotificationID string `json:"notificationId"`
}

// session is one Socket.IO connection.
type session struct {
	hub    *Hub
	conn   *websocket.Conn
	sid    string
	logger *slog.Logger
	acks   socketio.AckSequence

	lastPong atomic.Int64

	mu       sync.Mutex
	userID   string
	stopPush context.CancelFunc
	pending  map[uint64]string
}

func (h *Hub) serveSocket(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("transport") != "websocket" || r.URL.Query().Get("EIO") != "4" {
		h.respondError(w, r, http.StatusBadRequest, errors.New("only EIO=4 websocket transport is supported"))
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: h.cfg.AllowedOrigins})
	if err != nil {
		h.logger.LogAttrs(r.Context(), slog.LevelWarn, "Websocket upgrade failed", logger.Error(err))
		return
	}
	if h.cfg.MaxPayload > 0 {
		conn.SetReadLimit(int64(h.cfg.MaxPayload))
	}

	// The socket outlives the request; the hub context ends it.
	ctx, cancel := context.WithCancel(h.ctx)
	defer cancel()

	s := &session{
		hub:     h,
		conn:    conn,
		sid:     uuid.NewString(),
		pending: make(map[uint64]string),
	}
	s.logger = h.logger.With(logger.SocketID(s.sid))
	s.lastPong.Store(time.Now().UnixNano())

	err = s.run(ctx)
	s.stop()
	_ = conn.CloseNow()

	level := slog.LevelInfo
	if err != nil && !isClosed(err) && ctx.Err() == nil {
		level = slog.LevelWarn
	}
	s.logger.LogAttrs(context.Background(), level, "Socket closed", logger.UserID(s.user()), logger.Error(err))
}

func (s *session) run(ctx context.Context) error {
	cfg := s.hub.cfg
	if err := s.write(ctx, socketio.NewOpen(s.sid, cfg.PingInterval, cfg.PingTimeout, cfg.MaxPayload)); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() { errCh <- s.pingLoop(ctx) }()

	readErr := make(chan error, 1)
	go func() { readErr <- s.readLoop(ctx) }()

	select {
	case err := <-readErr:
		return err
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *session) readLoop(ctx context.Context) error {
	authDeadline := time.AfterFunc(s.hub.cfg.AuthTimeout, func() {
		if s.user() == "" {
			s.logger.LogAttrs(ctx, slog.LevelInfo, "Closing unauthenticated socket")
			_ = s.conn.Close(websocket.StatusPolicyViolation, "authentication timeout")
		}
	})
	defer authDeadline.Stop()

	for {
		typ, data, err := s.conn.Read(ctx)
		if err != nil {
			return err
		}
		if typ != websocket.MessageText {
			continue
		}

		kind, payload, err := socketio.ParseEngine(string(data))
		if err != nil {
			s.logger.LogAttrs(ctx, slog.LevelDebug, "Dropping malformed frame", logger.Error(err))
			continue
		}
		switch kind {
		case socketio.EnginePong:
			s.lastPong.Store(time.Now().UnixNano())
		case socketio.EngineClose:
			return nil
		case socketio.EngineMessage:
			if done, err := s.handlePacket(ctx, payload); done || err != nil {
				return err
			}
		}
	}
}

// pingLoop sends engine pings and fails when a pong is overdue.
func (s *session) pingLoop(ctx context.Context) error {
	cfg := s.hub.cfg
	ticker := time.NewTicker(cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			last := time.Unix(0, s.lastPong.Load())
			if time.Since(last) > cfg.PingInterval+cfg.PingTimeout {
				return errPongTimeout
			}
			if err := s.write(ctx, string(socketio.EnginePing)); err != nil {
				return err
			}
		}
	}
}

func (s *session) handlePacket(ctx context.Context, payload string) (done bool, err error) {
	p, err := socketio.ParseSocket(payload)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelDebug, "Dropping malformed packet", logger.Error(err))
		return false, nil
	}

	switch p.Type {
	case socketio.SocketConnect:
		reply, _ := socketio.NewConnect(p.Namespace, map[string]string{"sid": s.sid})
		return false, s.write(ctx, reply.Message())
	case socketio.SocketDisconnect:
		return true, nil
	case socketio.SocketAck:
		s.confirm(ctx, p)
	case socketio.SocketEvent:
		name, args, err := p.Event()
		if err != nil {
			s.logger.LogAttrs(ctx, slog.LevelDebug, "Dropping malformed event", logger.Error(err))
			return false, nil
		}
		s.handleEvent(ctx, name, socketio.FirstArg(args))
	}
	return false, nil
}

func (s *session) handleEvent(ctx context.Context, name string, arg json.RawMessage) {
	switch name {
	case notifyclient.EventAuthenticate:
		s.authenticate(ctx, arg)
	case notifyclient.EventNotificationAck:
		var ack ackEvent
		if err := json.Unmarshal(arg, &ack); err != nil || ack.NotificationID == "" {
			s.logger.LogAttrs(ctx, slog.LevelDebug, "Dropping malformed acknowledgment")
			return
		}
		s.acknowledged(ctx, ack.NotificationID)
	default:
		s.logger.LogAttrs(ctx, slog.LevelDebug, "Ignoring unknown event", logger.Event(name))
	}
}

func (s *session) authenticate(ctx context.Context, arg json.RawMessage) {
	var req authenticateRequest
	_ = json.Unmarshal(arg, &req)

	claims, err := s.hub.tokens.Parse(req.Token)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelInfo, "Socket authentication failed", logger.Error(err))
		s.emit(ctx, notifyclient.EventAuthenticated, authenticatedResponse{Error: err.Error()})
		return
	}

	userID := claims.UserID()
	// Subscribe before counting so a notification sent in between is
	// either pushed or counted.
	s.subscribe(ctx, userID)
	count, err := s.hub.manager.CountUnread(ctx, userID, "")
	if err != nil {
		s.unsubscribe()
		s.logger.LogAttrs(ctx, slog.LevelError, "Failed to count unread notifications", logger.UserID(userID), logger.Error(err))
		s.emit(ctx, notifyclient.EventAuthenticated, authenticatedResponse{Error: "internal error"})
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "Socket authenticated", logger.UserID(userID), slog.Int("unread_count", count))
	s.emit(ctx, notifyclient.EventAuthenticated, authenticatedResponse{Success: true, UnreadCount: count})
}

// subscribe starts pushing the user's notifications, replacing any earlier
// subscription of this socket.
func (s *session) subscribe(ctx context.Context, userID string) {
	pushCtx, cancel := context.WithCancel(ctx)
	sub := s.hub.feeds.Subscribe(pushCtx, userID)

	s.mu.Lock()
	if s.stopPush != nil {
		s.stopPush()
	}
	s.userID, s.stopPush = userID, cancel
	s.mu.Unlock()

	go s.push(pushCtx, sub)
}

func (s *session) unsubscribe() {
	s.mu.Lock()
	if s.stopPush != nil {
		s.stopPush()
	}
	s.userID, s.stopPush = "", nil
	s.mu.Unlock()
}

func (s *session) push(ctx context.Context, sub notifications.Feed) {
	defer func() { _ = sub.Close() }()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-sub.Receive():
			if !ok {
				return
			}
			n := msg.Data
			id := s.acks.Next()
			p, err := socketio.NewEventWithAck(id, notifyclient.EventNotification, n)
			if err != nil {
				s.logger.LogAttrs(ctx, slog.LevelError, "Failed to encode notification", logger.NotificationID(n.ID), logger.Error(err))
				continue
			}

			s.mu.Lock()
			s.pending[id] = n.ID
			s.mu.Unlock()

			if err := s.write(ctx, p.Message()); err != nil {
				s.logger.LogAttrs(ctx, slog.LevelWarn, "Failed to push notification", logger.NotificationID(n.ID), logger.Error(err))
				return
			}
		}
	}
}

func (s *session) confirm(ctx context.Context, p socketio.Packet) {
	if !p.HasAck {
		return
	}
	s.mu.Lock()
	notifID, ok := s.pending[p.AckID]
	delete(s.pending, p.AckID)
	s.mu.Unlock()
	if !ok {
		s.logger.LogAttrs(ctx, slog.LevelDebug, "Ack for unknown push", slog.Uint64("ack_id", p.AckID))
		return
	}
	s.acknowledged(ctx, notifID)
}

func (s *session) acknowledged(ctx context.Context, notifID string) {
	userID := s.user()
	s.logger.LogAttrs(ctx, slog.LevelDebug, "Notification delivery confirmed",
		logger.UserID(userID),
		logger.NotificationID(notifID),
	)
	if s.hub.onAck != nil {
		s.hub.onAck(userID, notifID)
	}
}

func (s *session) emit(ctx context.Context, event string, data any) {
	p, err := socketio.NewEvent(event, data)
	if err == nil {
		err = s.write(ctx, p.Message())
	}
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "Failed to emit event", logger.Event(event), logger.Error(err))
	}
}

func (s *session) write(ctx context.Context, frame string) error {
	wctx, cancel := context.WithTimeout(ctx, socketWriteTimeout)
	defer cancel()
	return s.conn.Write(wctx, websocket.MessageText, []byte(frame))
}

func (s *session) user() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

func (s *session) stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopPush != nil {
		s.stopPush()
		s.stopPush = nil
	}
}

func isClosed(err error) bool {
	if err == nil {
		return true
	}
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return true
	}
	return false
}
