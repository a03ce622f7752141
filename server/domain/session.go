package domain

import (
	"sync"
	"time"
)

type SessionState int

const (
	StateConnecting SessionState = iota
	StateAwaitingHello
	StateJoined
	StateClosing
	StateClosed
)

func (s SessionState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateAwaitingHello:
		return "awaiting-hello"
	case StateJoined:
		return "joined"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Session is the per-connection protocol state. It is created when a socket
// connects, bound to a room and username by the hello frame, and destroyed on
// disconnect. Never persisted.
type Session struct {
	ID       string
	Remote   string
	JoinedAt time.Time

	mu       sync.Mutex
	state    SessionState
	username string
	roomID   string
	lastSeen time.Time
}

func NewSession(id, remote string) *Session {
	return &Session{
		ID:       id,
		Remote:   remote,
		JoinedAt: time.Now(),
		state:    StateAwaitingHello,
		lastSeen: time.Now(),
	}
}

func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Advance moves the state machine forward. Transitions only ever go toward
// Closed; a stale transition (e.g. a second Closing) reports false.
func (s *Session) Advance(to SessionState) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if to <= s.state {
		return false
	}
	s.state = to
	return true
}

// Bind records the room and username claimed by the hello frame.
func (s *Session) Bind(roomID, username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roomID = roomID
	s.username = username
}

func (s *Session) RoomID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roomID
}

func (s *Session) Username() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.username
}

// Touch refreshes the liveness timestamp. Called on every inbound frame, not
// just pongs, so an actively typing client is never treated as dead.
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = time.Now()
}

// Expired reports whether no liveness evidence arrived within timeout.
func (s *Session) Expired(timeout time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Since(s.lastSeen) > timeout
}

func (s *Session) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.username + "@" + s.roomID + "(" + s.state.String() + ")"
}
