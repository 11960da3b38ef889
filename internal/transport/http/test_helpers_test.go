package http

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"

	"github.com/chatrelay/chatrelay-server/internal/config"
	"github.com/chatrelay/chatrelay-server/internal/core"
)

func startTestServer(t *testing.T) (*httptest.Server, *core.State) {
	t.Helper()

	state := core.NewState(16)
	logger := zerolog.New(nil)
	cfg := config.Default()

	server := NewServer(state, cfg, &logger)
	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return ts, state
}

// syncBuffer collects log output safely across goroutines.
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

func startTestServerWithLogs(t *testing.T) (*httptest.Server, *core.State, *syncBuffer) {
	t.Helper()

	logs := &syncBuffer{}
	state := core.NewState(16)
	logger := zerolog.New(logs)
	cfg := config.Default()

	server := NewServer(state, cfg, &logger)
	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return ts, state, logs
}

func wsURL(ts *httptest.Server, path string) string {
	return strings.Replace(ts.URL, "http", "ws", 1) + path
}

func dialWS(t *testing.T, ctx context.Context, url string) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	t.Cleanup(func() {
		_ = conn.Close(websocket.StatusNormalClosure, "done")
	})
	return conn
}

func sendText(t *testing.T, ctx context.Context, conn *websocket.Conn, text string) {
	t.Helper()

	if err := conn.Write(ctx, websocket.MessageText, []byte(text)); err != nil {
		t.Fatalf("write %q: %v", text, err)
	}
}

func readText(t *testing.T, ctx context.Context, conn *websocket.Conn) string {
	t.Helper()

	typ, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if typ != websocket.MessageText {
		t.Fatalf("expected text frame, got %v", typ)
	}
	return string(data)
}

// expectNoFrame asserts nothing arrives within wait. The connection is
// unusable afterwards (the read context closes it), so only call this at
// the end of a connection's life.
func expectNoFrame(t *testing.T, conn *websocket.Conn, wait time.Duration) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), wait)
	defer cancel()

	if _, data, err := conn.Read(ctx); err == nil {
		t.Fatalf("unexpected frame: %q", data)
	}
}

// waitSubscribers polls until the bus has the wanted subscriber count.
// Subscription happens inside the handler after the upgrade, so tests must
// not publish before the sessions are actually attached.
func waitSubscribers(t *testing.T, state *core.State, want int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if state.Bus.Subscribers() == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected %d subscribers, have %d", want, state.Bus.Subscribers())
}
