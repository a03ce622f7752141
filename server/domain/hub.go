package domain

import "sync"

const (
	hubBuffer        = 256
	subscriberBuffer = 64
)

// Subscription is one consumer's handle on a room hub. Events arrive on C;
// the channel is closed when the subscription ends, either through
// Unsubscribe, hub shutdown, or eviction for falling behind.
type Subscription struct {
	C    <-chan Event
	ch   chan Event
	kick func()
}

// Hub is the per-room fan-out bus. A single goroutine drains the room event
// queue and delivers to every subscriber, so all subscribers observe events
// from concurrent senders in the same relative order. A subscriber whose
// delivery queue is full is evicted rather than slowing the room down.
type Hub struct {
	events chan Event
	done   chan struct{}

	mu     sync.Mutex
	subs   map[*Subscription]struct{}
	closed bool
}

func NewHub() *Hub {
	h := &Hub{
		events: make(chan Event, hubBuffer),
		done:   make(chan struct{}),
		subs:   make(map[*Subscription]struct{}),
	}
	go h.fanout()
	return h
}

// Subscribe registers a consumer. kick, if non-nil, is called from a separate
// goroutine when the consumer is evicted for a full delivery queue.
func (h *Hub) Subscribe(kick func()) *Subscription {
	sub := &Subscription{ch: make(chan Event, subscriberBuffer), kick: kick}
	sub.C = sub.ch

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(sub.ch)
		return sub
	}
	h.subs[sub] = struct{}{}
	return sub
}

// Unsubscribe detaches a consumer. Safe to call more than once and after the
// subscription has already been evicted or the hub closed.
func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[sub]; ok {
		delete(h.subs, sub)
		close(sub.ch)
	}
}

// Publish enqueues an event for delivery to all current subscribers.
// Delivery order within the room follows enqueue order.
func (h *Hub) Publish(ev Event) {
	select {
	case h.events <- ev:
	case <-h.done:
	}
}

// SubscriberCount reports the number of attached consumers.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close stops the fan-out loop and closes every subscriber channel.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	close(h.done)
	for sub := range h.subs {
		delete(h.subs, sub)
		close(sub.ch)
	}
}

func (h *Hub) fanout() {
	for {
		select {
		case <-h.done:
			return
		case ev := <-h.events:
			h.deliver(ev)
		}
	}
}

func (h *Hub) deliver(ev Event) {
	var evicted []*Subscription

	h.mu.Lock()
	for sub := range h.subs {
		select {
		case sub.ch <- ev:
		default:
			evicted = append(evicted, sub)
		}
	}
	for _, sub := range evicted {
		delete(h.subs, sub)
		close(sub.ch)
	}
	h.mu.Unlock()

	// kick may re-enter the hub (Unsubscribe), so run it outside the lock.
	for _, sub := range evicted {
		if sub.kick != nil {
			go sub.kick()
		}
	}
}
