package peer

import (
	"sync"

	"gitlab.com/arcanecrypto/noded/internal/lnproto"
)

// Subscriber receives events in the order they were published. Send must
// not block indefinitely; a subscriber that can't keep up is expected to
// drop itself via Unsubscribe rather than stall the bus.
type Subscriber interface {
	Send(event lnproto.NodeEvent)
}

// EventBus is a multi-producer, multi-subscriber fan-out: every
// published event reaches every currently-subscribed Subscriber, in
// publish order. A subscriber whose Send panics is dropped without
// affecting the others.
type EventBus struct {
	mu          sync.RWMutex
	subscribers map[int]Subscriber
	nextID      int
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: map[int]Subscriber{}}
}

// Subscribe registers a new subscriber and returns a token to
// Unsubscribe it later.
func (b *EventBus) Subscribe(sub Subscriber) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.subscribers[id] = sub
	return id
}

// Unsubscribe removes a previously-registered subscriber.
func (b *EventBus) Unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subscribers, id)
}

// Publish delivers event to every current subscriber. Per-subscriber
// delivery preserves publish order since Publish holds the read lock for
// the whole fan-out and callers are expected to invoke Publish
// sequentially from the single supervisor goroutine.
func (b *EventBus) Publish(event lnproto.NodeEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for id, sub := range b.subscribers {
		b.deliver(id, sub, event)
	}
}

func (b *EventBus) deliver(id int, sub Subscriber, event lnproto.NodeEvent) {
	defer func() {
		if r := recover(); r != nil {
			log.WithField("subscriberId", id).WithField("panic", r).
				Warn("subscriber panicked, dropping it")
			go b.Unsubscribe(id)
		}
	}()
	sub.Send(event)
}
