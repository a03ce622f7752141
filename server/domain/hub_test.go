package domain

import (
	"fmt"
	"testing"
	"time"
)

func recvEvent(t *testing.T, sub *Subscription) Event {
	t.Helper()
	select {
	case ev, ok := <-sub.C:
		if !ok {
			t.Fatal("subscription closed unexpectedly")
		}
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Event{}
}

func TestHubDeliversToAllSubscribers(t *testing.T) {
	h := NewHub()
	defer h.Close()

	a := h.Subscribe(nil)
	b := h.Subscribe(nil)

	h.Publish(NewJoinEvent("alice"))

	for _, sub := range []*Subscription{a, b} {
		ev := recvEvent(t, sub)
		if ev.Type != EventJoin || ev.Username != "alice" {
			t.Fatalf("unexpected event: %v", ev)
		}
	}
}

func TestHubPreservesOrderAcrossSubscribers(t *testing.T) {
	h := NewHub()
	defer h.Close()

	a := h.Subscribe(nil)
	b := h.Subscribe(nil)

	const n = 20
	for i := 0; i < n; i++ {
		h.Publish(NewMessageEvent("alice", fmt.Sprintf("rev-%d", i)))
	}

	for _, sub := range []*Subscription{a, b} {
		for i := 0; i < n; i++ {
			ev := recvEvent(t, sub)
			if want := fmt.Sprintf("rev-%d", i); ev.Value == nil || *ev.Value != want {
				t.Fatalf("event %d: got %v, want value %q", i, ev, want)
			}
		}
	}
}

func TestHubEvictsSlowConsumer(t *testing.T) {
	h := NewHub()
	defer h.Close()

	kicked := make(chan struct{})
	slow := h.Subscribe(func() { close(kicked) })

	fast := h.Subscribe(nil)
	done := make(chan int)
	go func() {
		n := 0
		for range fast.C {
			n++
		}
		done <- n
	}()

	// Overflow the slow consumer's queue without draining it.
	for i := 0; i < subscriberBuffer+10; i++ {
		h.Publish(NewMessageEvent("alice", "x"))
	}

	select {
	case <-kicked:
	case <-time.After(time.Second):
		t.Fatal("slow consumer was not kicked")
	}

	// Its channel must be closed by the eviction.
	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-slow.ch:
			if !ok {
				goto evicted
			}
		case <-deadline:
			t.Fatal("slow consumer channel never closed")
		}
	}
evicted:

	// The fast consumer keeps receiving everything.
	h.Close()
	if n := <-done; n != subscriberBuffer+10 {
		t.Fatalf("fast consumer got %d events, want %d", n, subscriberBuffer+10)
	}
}

func TestHubIsolationBetweenHubs(t *testing.T) {
	h1 := NewHub()
	defer h1.Close()
	h2 := NewHub()
	defer h2.Close()

	other := h2.Subscribe(nil)
	h1.Publish(NewMessageEvent("alice", "secret"))

	select {
	case ev := <-other.C:
		t.Fatalf("event leaked across hubs: %v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestUnsubscribeIdempotent(t *testing.T) {
	h := NewHub()
	defer h.Close()

	sub := h.Subscribe(nil)
	h.Unsubscribe(sub)
	h.Unsubscribe(sub)

	if _, ok := <-sub.C; ok {
		t.Fatal("expected closed channel after unsubscribe")
	}
	if n := h.SubscriberCount(); n != 0 {
		t.Fatalf("subscriber count = %d, want 0", n)
	}
}

func TestPublishAfterCloseDoesNotBlock(t *testing.T) {
	h := NewHub()
	h.Close()
	h.Close()

	finished := make(chan struct{})
	go func() {
		h.Publish(NewJoinEvent("alice"))
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("publish blocked after close")
	}

	if sub := h.Subscribe(nil); h.SubscriberCount() != 0 {
		t.Fatal("subscribe after close must not register")
	} else if _, ok := <-sub.C; ok {
		t.Fatal("subscription on closed hub must be closed")
	}
}
