package domain

import (
	"testing"
	"time"
)

func TestSessionAdvanceForwardOnly(t *testing.T) {
	s := NewSession("01ARZ3NDEKTSV4RRFFQ69G5FAV", "127.0.0.1:1234")

	if s.State() != StateAwaitingHello {
		t.Fatalf("initial state = %v, want %v", s.State(), StateAwaitingHello)
	}
	if !s.Advance(StateJoined) {
		t.Fatal("advance to joined must succeed")
	}
	if !s.Advance(StateClosing) {
		t.Fatal("advance to closing must succeed")
	}
	// Closing twice is the idempotence case: the second transition is stale.
	if s.Advance(StateClosing) {
		t.Fatal("repeated closing transition must report false")
	}
	if s.Advance(StateAwaitingHello) {
		t.Fatal("state machine must not move backwards")
	}
	if !s.Advance(StateClosed) {
		t.Fatal("advance to closed must succeed")
	}
}

func TestSessionLiveness(t *testing.T) {
	s := NewSession("01ARZ3NDEKTSV4RRFFQ69G5FAV", "127.0.0.1:1234")

	if s.Expired(time.Hour) {
		t.Fatal("fresh session must not be expired")
	}
	time.Sleep(20 * time.Millisecond)
	if !s.Expired(time.Millisecond) {
		t.Fatal("idle session must expire")
	}
	s.Touch()
	if s.Expired(time.Second) {
		t.Fatal("touched session must not be expired")
	}
}

func TestSessionBind(t *testing.T) {
	s := NewSession("01ARZ3NDEKTSV4RRFFQ69G5FAV", "127.0.0.1:1234")
	s.Bind("general", "alice")
	if s.RoomID() != "general" || s.Username() != "alice" {
		t.Fatalf("bind mismatch: %s", s.String())
	}
}
