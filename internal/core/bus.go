package core

import (
	"errors"
	"sync"
	"sync/atomic"
)

// ErrNoSubscribers is returned by Publish when nobody is currently
// subscribed. Normal when a room is momentarily empty.
var ErrNoSubscribers = errors.New("no subscribers")

// DefaultBusCapacity is the per-subscriber buffer size used when no
// capacity is configured.
const DefaultBusCapacity = 1024

// Bus fans published messages out to every current subscriber. Delivery is
// best effort and at most once: a subscriber whose buffer is full misses
// the message, nobody else is affected, and the loss is recorded in the
// dropped counter. Messages a subscriber does receive arrive in publish
// order.
type Bus struct {
	mu       sync.RWMutex
	subs     map[*Subscription]struct{}
	capacity int
	dropped  atomic.Uint64
}

// NewBus creates a bus whose subscribers each buffer up to capacity
// pending messages.
func NewBus(capacity int) *Bus {
	if capacity <= 0 {
		capacity = DefaultBusCapacity
	}
	return &Bus{
		subs:     make(map[*Subscription]struct{}),
		capacity: capacity,
	}
}

// Subscription is one subscriber's private receive handle.
type Subscription struct {
	bus  *Bus
	ch   chan ChatMessage
	once sync.Once
}

// C returns the channel messages are delivered on. It is closed by Close.
func (s *Subscription) C() <-chan ChatMessage {
	return s.ch
}

// Close unsubscribes from the bus and closes the receive channel.
// Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.bus.mu.Lock()
		delete(s.bus.subs, s)
		close(s.ch)
		s.bus.mu.Unlock()
	})
}

// Subscribe registers a new subscriber and returns its receive handle.
func (b *Bus) Subscribe() *Subscription {
	sub := &Subscription{
		bus: b,
		ch:  make(chan ChatMessage, b.capacity),
	}
	b.mu.Lock()
	b.subs[sub] = struct{}{}
	b.mu.Unlock()
	return sub
}

// Publish delivers msg to every current subscriber without blocking.
// Subscribers with a full buffer are skipped. Returns ErrNoSubscribers
// when the bus has no subscribers at all.
//
// Publishes take the exclusive lock so concurrent publishers are
// serialized into one shared order: every subscriber observes the same
// publish sequence. The fan-out loop never blocks, so the critical
// section stays short.
func (b *Bus) Publish(msg ChatMessage) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.subs) == 0 {
		return ErrNoSubscribers
	}
	for sub := range b.subs {
		select {
		case sub.ch <- msg:
		default:
			b.dropped.Add(1)
		}
	}
	return nil
}

// Subscribers returns the current subscriber count.
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Dropped reports how many per-subscriber deliveries were lost to full
// buffers since the bus was created.
func (b *Bus) Dropped() uint64 {
	return b.dropped.Load()
}
