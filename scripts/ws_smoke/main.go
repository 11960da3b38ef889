// One-shot smoke test against a running server: two clients join the same
// room, one sends a message, the other must receive it, and the view
// counter must have moved.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/chatrelay/chatrelay-server/internal/core"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

func run() error {
	base := flag.String("addr", "http://localhost:8080", "server base address")
	room := flag.Uint64("room", 99, "room id")
	text := flag.String("text", "hello from smoke test", "message text to send")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	wsBase := strings.Replace(*base, "http", "ws", 1)

	sender, _, err := websocket.Dial(ctx, fmt.Sprintf("%s/ws/room/%d/user/smoke-sender", wsBase, *room), nil)
	if err != nil {
		return fmt.Errorf("dial sender: %w", err)
	}
	defer sender.Close(websocket.StatusNormalClosure, "done")

	receiver, _, err := websocket.Dial(ctx, fmt.Sprintf("%s/ws/room/%d/user/smoke-receiver", wsBase, *room), nil)
	if err != nil {
		return fmt.Errorf("dial receiver: %w", err)
	}
	defer receiver.Close(websocket.StatusNormalClosure, "done")

	before, err := fetchViews(ctx, *base)
	if err != nil {
		return err
	}

	if err := wsjson.Write(ctx, sender, map[string]string{"message": *text}); err != nil {
		return fmt.Errorf("send: %w", err)
	}

	var body core.ChatMessageBody
	if err := wsjson.Read(ctx, receiver, &body); err != nil {
		return fmt.Errorf("receive: %w", err)
	}
	if body.User != "smoke-sender" || body.Message != *text {
		return fmt.Errorf("unexpected message: %+v", body)
	}

	after, err := fetchViews(ctx, *base)
	if err != nil {
		return err
	}
	if after == before {
		return fmt.Errorf("view counter did not move (still %s)", after)
	}

	fmt.Printf("ok: received %q, views %s -> %s\n", body.Message, before, after)
	return nil
}

func fetchViews(ctx context.Context, base string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/views", nil)
	if err != nil {
		return "", err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch views: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
