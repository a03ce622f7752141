package domain

import (
	"sort"
	"sync"
)

// Room holds the live state of one named shared buffer: the current content,
// a per-username presence refcount, and the room's broadcast hub. Presence is
// counted by username rather than by connection so that a user with several
// sessions under the same name does not flicker out when one of them closes.
type Room struct {
	ID string

	hub *Hub

	mu       sync.Mutex
	content  string
	presence map[string]int
}

// RoomInfo is the listing shape exposed by the rooms API.
type RoomInfo struct {
	ID    string   `json:"id"`
	Users []string `json:"users"`
}

func NewRoom(id string) *Room {
	return &Room{
		ID:       id,
		hub:      NewHub(),
		presence: make(map[string]int),
	}
}

func (r *Room) Hub() *Hub {
	return r.hub
}

// Join increments the username's presence count and reports whether this is
// the 0→1 transition, which gates the join broadcast.
func (r *Room) Join(username string) (first bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.presence[username]++
	return r.presence[username] == 1
}

// Leave decrements the username's presence count and reports whether this is
// the 1→0 transition, which gates the leave broadcast. A leave without a
// matching join is a no-op; counts never go negative.
func (r *Room) Leave(username string) (becameAbsent bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.presence[username]
	if !ok {
		return false
	}
	if n <= 1 {
		delete(r.presence, username)
		return true
	}
	r.presence[username] = n - 1
	return false
}

// Occupied reports whether any username has positive presence.
func (r *Room) Occupied() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.presence) > 0
}

// Users returns the present usernames, sorted.
func (r *Room) Users() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := make([]string, 0, len(r.presence))
	for name := range r.presence {
		users = append(users, name)
	}
	sort.Strings(users)
	return users
}

func (r *Room) Content() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.content
}

// SetContent replaces the buffer unconditionally; last write wins.
func (r *Room) SetContent(content string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.content = content
}

// Info snapshots the room for listing.
func (r *Room) Info() RoomInfo {
	return RoomInfo{ID: r.ID, Users: r.Users()}
}

// Close shuts down the room's hub.
func (r *Room) Close() {
	r.hub.Close()
}
