package core

import (
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"
)

func mustReceive(t *testing.T, sub *Subscription) ChatMessage {
	t.Helper()

	select {
	case msg, ok := <-sub.C():
		if !ok {
			t.Fatal("subscription channel closed unexpectedly")
		}
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("expected message not received")
	}
	return ChatMessage{}
}

func TestPublishWithoutSubscribers(t *testing.T) {
	bus := NewBus(8)

	err := bus.Publish(ChatMessage{Room: 1, Body: ChatMessageBody{User: "alice", Message: "hi"}})
	if !errors.Is(err, ErrNoSubscribers) {
		t.Fatalf("expected ErrNoSubscribers, got %v", err)
	}
}

func TestPublishDeliversInOrder(t *testing.T) {
	bus := NewBus(8)
	sub := bus.Subscribe()
	defer sub.Close()

	texts := []string{"one", "two", "three"}
	for _, text := range texts {
		if err := bus.Publish(ChatMessage{Room: 7, Body: ChatMessageBody{User: "alice", Message: text}}); err != nil {
			t.Fatalf("publish %q: %v", text, err)
		}
	}

	for _, want := range texts {
		msg := mustReceive(t, sub)
		if msg.Room != 7 || msg.Body.Message != want {
			t.Fatalf("expected room 7 message %q, got %+v", want, msg)
		}
	}
}

func TestPublishDeliversToAllSubscribers(t *testing.T) {
	bus := NewBus(8)
	first := bus.Subscribe()
	defer first.Close()
	second := bus.Subscribe()
	defer second.Close()

	if err := bus.Publish(ChatMessage{Room: 3, Body: ChatMessageBody{User: "bob", Message: "hey"}}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	for _, sub := range []*Subscription{first, second} {
		msg := mustReceive(t, sub)
		if msg.Body.User != "bob" || msg.Body.Message != "hey" {
			t.Fatalf("unexpected message: %+v", msg)
		}
	}
}

func TestSlowSubscriberLosesMessagesSilently(t *testing.T) {
	bus := NewBus(1)
	slow := bus.Subscribe()
	defer slow.Close()

	if err := bus.Publish(ChatMessage{Room: 1, Body: ChatMessageBody{Message: "kept"}}); err != nil {
		t.Fatalf("publish kept: %v", err)
	}
	// Buffer is full now; this one is lost for the slow subscriber only.
	if err := bus.Publish(ChatMessage{Room: 1, Body: ChatMessageBody{Message: "lost"}}); err != nil {
		t.Fatalf("publish lost: %v", err)
	}

	if got := bus.Dropped(); got != 1 {
		t.Fatalf("expected 1 dropped delivery, got %d", got)
	}

	msg := mustReceive(t, slow)
	if msg.Body.Message != "kept" {
		t.Fatalf("expected the buffered message, got %+v", msg)
	}

	select {
	case msg := <-slow.C():
		t.Fatalf("unexpected extra message: %+v", msg)
	default:
	}
}

func TestConcurrentPublishersShareOneOrder(t *testing.T) {
	const perPublisher = 200

	// Buffers hold every message so ordering is the only variable.
	bus := NewBus(2 * perPublisher)
	first := bus.Subscribe()
	defer first.Close()
	second := bus.Subscribe()
	defer second.Close()

	var wg sync.WaitGroup
	for _, user := range []string{"alice", "bob"} {
		wg.Add(1)
		go func(user string) {
			defer wg.Done()
			for i := range perPublisher {
				msg := ChatMessage{Room: 1, Body: ChatMessageBody{User: user, Message: strconv.Itoa(i)}}
				if err := bus.Publish(msg); err != nil {
					t.Errorf("publish %s/%d: %v", user, i, err)
					return
				}
			}
		}(user)
	}
	wg.Wait()

	// Both subscribers must see the exact same interleaving.
	for i := range 2 * perPublisher {
		a := mustReceive(t, first)
		b := mustReceive(t, second)
		if a != b {
			t.Fatalf("subscribers disagree at index %d: %+v vs %+v", i, a, b)
		}
	}
}

func TestCloseUnsubscribes(t *testing.T) {
	bus := NewBus(8)
	sub := bus.Subscribe()

	if got := bus.Subscribers(); got != 1 {
		t.Fatalf("expected 1 subscriber, got %d", got)
	}

	sub.Close()
	sub.Close() // idempotent

	if got := bus.Subscribers(); got != 0 {
		t.Fatalf("expected 0 subscribers after close, got %d", got)
	}
	if err := bus.Publish(ChatMessage{Room: 1}); !errors.Is(err, ErrNoSubscribers) {
		t.Fatalf("expected ErrNoSubscribers after close, got %v", err)
	}
	if _, ok := <-sub.C(); ok {
		t.Fatal("expected closed channel after Close")
	}
}

func TestViewCounter(t *testing.T) {
	state := NewState(8)

	if got := state.Views(); got != 0 {
		t.Fatalf("expected counter to start at 0, got %d", got)
	}

	for range 5 {
		state.AddView()
	}
	if got := state.Views(); got != 5 {
		t.Fatalf("expected 5 views, got %d", got)
	}

	state.ResetViews()
	if got := state.Views(); got != 0 {
		t.Fatalf("expected 0 views after reset, got %d", got)
	}
}
