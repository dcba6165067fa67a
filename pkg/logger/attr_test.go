package logger_test

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/storefront/pkg/logger"
)

func TestGroup(t *testing.T) {
	attr := logger.Group("push", slog.String("id", "1"), slog.Int("n", 2))
	require.Equal(t, "push", attr.Key)
	require.Equal(t, slog.KindGroup, attr.Value.Kind())
	g := attr.Value.Group()
	require.Len(t, g, 2)
	assert.Equal(t, "id", g[0].Key)
	assert.Equal(t, "n", g[1].Key)
}

func TestError(t *testing.T) {
	err := errors.New("boom")
	attr := logger.Error(err)
	require.Equal(t, "error", attr.Key)
	assert.Equal(t, err, attr.Value.Any())

	assert.True(t, logger.Error(nil).Equal(slog.Attr{}))
}

func TestDomainAttrs(t *testing.T) {
	tests := []struct {
		name string
		attr slog.Attr
		key  string
		want any
	}{
		{"user id", logger.UserID("u1"), "user_id", "u1"},
		{"request id", logger.RequestID("req-1"), "request_id", "req-1"},
		{"notification id", logger.NotificationID("n1"), "notification_id", "n1"},
		{"status", logger.Status("connected"), "status", "connected"},
		{"socket id", logger.SocketID("abc"), "sid", "abc"},
		{"attempt", logger.Attempt(3), "attempt", int64(3)},
		{"component", logger.Component("notifyclient"), "component", "notifyclient"},
		{"event", logger.Event("notification"), "event", "notification"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.key, tt.attr.Key)
			assert.Equal(t, tt.want, tt.attr.Value.Any())
		})
	}
}

func TestEmptyAttrs(t *testing.T) {
	assert.True(t, logger.UserID(nil).Equal(slog.Attr{}))
	assert.True(t, logger.RequestID("").Equal(slog.Attr{}))
}
