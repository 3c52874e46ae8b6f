package events

import (
	"context"
	"sync"
	"sync/atomic"
)

// Broker delivers events to subscribers of a table over buffered
// channels. A subscriber that falls behind loses events rather than
// blocking the table.
type Broker struct {
	mu      sync.RWMutex
	subs    map[string]map[chan Event]struct{}
	buffer  int
	closed  bool
	dropped atomic.Uint64
}

// NewBroker creates a broker whose subscriber channels hold buffer events.
func NewBroker(buffer int) *Broker {
	if buffer <= 0 {
		buffer = 32
	}
	return &Broker{
		subs:   make(map[string]map[chan Event]struct{}),
		buffer: buffer,
	}
}

// Subscribe returns a channel of events for tableID and a function that
// ends the subscription. The channel is closed when the subscription ends
// or the broker closes.
func (b *Broker) Subscribe(tableID string) (<-chan Event, func()) {
	ch := make(chan Event, b.buffer)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	if b.subs[tableID] == nil {
		b.subs[tableID] = make(map[chan Event]struct{})
	}
	b.subs[tableID][ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if _, ok := b.subs[tableID][ch]; ok {
				delete(b.subs[tableID], ch)
				if len(b.subs[tableID]) == 0 {
					delete(b.subs, tableID)
				}
				close(ch)
			}
		})
	}
}

// Publish never blocks.
func (b *Broker) Publish(_ context.Context, ev Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs[ev.TableID] {
		select {
		case ch <- ev:
		default:
			b.dropped.Add(1)
		}
	}
	return nil
}

// Subscribers counts live subscriptions across all tables.
func (b *Broker) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := 0
	for _, set := range b.subs {
		n += len(set)
	}
	return n
}

// Dropped counts events lost to slow subscribers.
func (b *Broker) Dropped() uint64 {
	return b.dropped.Load()
}

// Close ends every subscription.
func (b *Broker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for id, set := range b.subs {
		for ch := range set {
			close(ch)
		}
		delete(b.subs, id)
	}
	return nil
}
