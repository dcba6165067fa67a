package main

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/storefront/internal/hub"
	"github.com/dmitrymomot/storefront/pkg/logger"
)

const testSecret = "cli-test-secret-0123456789-abcdefgh"

// syncBuffer is a bytes.Buffer safe for the watch goroutine and the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// setupEnv points the CLI at a fresh hub and credential database.
func setupEnv(t *testing.T) *hub.Hub {
	t.Helper()
	cfg := hub.DefaultConfig()
	cfg.JWTSecret = testSecret
	h, err := hub.New(cfg, hub.WithLogger(logger.Nop()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })

	srv := httptest.NewServer(h.Handler())
	t.Cleanup(srv.Close)

	t.Setenv("HUB_JWT_SECRET", testSecret)
	t.Setenv("NOTIFY_SERVER_URL", srv.URL)
	t.Setenv("NOTIFY_RECONNECT_DELAY", "50ms")
	t.Setenv("NOTIFY_CREDENTIALS_PATH", filepath.Join(t.TempDir(), "credentials.db"))
	t.Setenv("NOTIFY_PROFILE", "test")
	return h
}

func execute(ctx context.Context, stdin io.Reader, stdout io.Writer, args ...string) error {
	cmd := newRootCmd(newApp())
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(io.Discard)
	return cmd.ExecuteContext(ctx)
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := execute(context.Background(), strings.NewReader(""), &out, args...)
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	require.NoError(t, err, "notifyctl %s", strings.Join(args, " "))
	return out
}

func login(t *testing.T, userID, role string) {
	t.Helper()
	args := []string{"token", userID}
	if role != "" {
		args = append(args, "--role", role)
	}
	token := strings.TrimSpace(mustRun(t, args...))
	mustRun(t, "login", token)
}
