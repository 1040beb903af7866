package event

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

const defaultBufferSize = 64

// Bus fans out published events to all subscribers.
// Slow subscribers lose events instead of blocking the publisher.
type Bus struct {
	mu   sync.RWMutex
	subs map[string]*Subscription

	dropped atomic.Uint64
}

// Subscription delivers events on C until it is cancelled.
type Subscription struct {
	C <-chan Event

	id     string
	ch     chan Event
	filter func(Event) bool
	bus    *Bus
	once   sync.Once
}

func NewBus() *Bus {
	return &Bus{
		subs: make(map[string]*Subscription),
	}
}

// Subscribe registers a subscriber. A nil filter accepts every event.
// A buffer of zero or less uses the default size.
func (b *Bus) Subscribe(buffer int, filter func(Event) bool) *Subscription {
	if buffer <= 0 {
		buffer = defaultBufferSize
	}

	ch := make(chan Event, buffer)
	sub := &Subscription{
		C:      ch,
		id:     uuid.NewString(),
		ch:     ch,
		filter: filter,
		bus:    b,
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.subs[sub.id] = sub
	return sub
}

func (b *Bus) Publish(ctx context.Context, event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subs {
		if sub.filter != nil && !sub.filter(event) {
			continue
		}

		select {
		case sub.ch <- event:
		default:
			b.dropped.Add(1)
		}
	}
}

// Dropped returns the number of events lost to full subscriber buffers.
func (b *Bus) Dropped() uint64 {
	return b.dropped.Load()
}

// Len returns the number of active subscriptions.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.subs)
}

// Close cancels every subscription.
func (b *Bus) Close() {
	b.mu.Lock()
	subs := b.subs
	b.subs = make(map[string]*Subscription)
	b.mu.Unlock()

	for _, sub := range subs {
		sub.closeChannel()
	}
}

// Cancel removes the subscription and closes C.
func (s *Subscription) Cancel() {
	s.bus.mu.Lock()
	delete(s.bus.subs, s.id)
	s.bus.mu.Unlock()

	s.closeChannel()
}

func (s *Subscription) closeChannel() {
	s.once.Do(func() {
		close(s.ch)
	})
}
