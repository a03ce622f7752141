package usecase

import (
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ponyo877/sharepad/server/domain"
)

// Registry is the process-wide authority over live rooms. Structural
// operations (create, delete, list) take a short-held lock over the room map;
// presence and content mutation are guarded per room, so activity in one room
// never serializes against another.
type Registry struct {
	catalog CatalogStore
	log     zerolog.Logger

	mu    sync.RWMutex
	rooms map[string]*domain.Room
	order []string
}

// NewRegistry seeds the registry from the catalog. Every cataloged id becomes
// an empty room (no presence, no content) so listings are correct before any
// connection arrives. A catalog that cannot be read is fatal: serving with an
// inconsistent catalog view is worse than not starting.
func NewRegistry(catalog CatalogStore, log zerolog.Logger) (*Registry, error) {
	ids, err := catalog.LoadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load room catalog: %w", err)
	}

	r := &Registry{
		catalog: catalog,
		log:     log,
		rooms:   make(map[string]*domain.Room, len(ids)),
	}
	for _, id := range ids {
		r.rooms[id] = domain.NewRoom(id)
		r.order = append(r.order, id)
	}
	if len(ids) > 0 {
		log.Info().Int("rooms", len(ids)).Msg("restored rooms from catalog")
	}
	return r, nil
}

// GetOrCreate returns the room for id, creating it empty if unknown.
// Creation catalogs the id asynchronously (best effort; membership and
// content broadcasts never wait on persistence) and tells the other rooms
// that the room list changed.
func (r *Registry) GetOrCreate(id string) (*domain.Room, bool) {
	r.mu.Lock()
	room, ok := r.rooms[id]
	if !ok {
		room = domain.NewRoom(id)
		r.rooms[id] = room
		r.order = append(r.order, id)
	}
	r.mu.Unlock()

	if ok {
		return room, false
	}

	r.log.Info().Str("room", id).Msg("room created")
	go func() {
		if err := r.catalog.Record(id); err != nil {
			r.log.Error().Err(err).Str("room", id).Msg("failed to catalog room")
		}
	}()
	r.NotifyRoomsListChanged(id)
	return room, true
}

// Room looks up a live room without creating it.
func (r *Registry) Room(id string) (*domain.Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[id]
	return room, ok
}

// List snapshots every room in insertion order.
func (r *Registry) List() []domain.RoomInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	infos := make([]domain.RoomInfo, 0, len(r.order))
	for _, id := range r.order {
		infos = append(infos, r.rooms[id].Info())
	}
	return infos
}

// Delete removes an empty room from the registry and the catalog. It fails
// with ErrRoomNotEmpty while any username has positive presence and with
// ErrRoomNotFound for unknown ids; neither failure mutates state.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	room, ok := r.rooms[id]
	if !ok {
		r.mu.Unlock()
		return domain.ErrRoomNotFound
	}
	if room.Occupied() {
		r.mu.Unlock()
		return domain.ErrRoomNotEmpty
	}
	delete(r.rooms, id)
	r.order = slices.DeleteFunc(r.order, func(s string) bool { return s == id })
	r.mu.Unlock()

	room.Close()
	if err := r.catalog.Remove(id); err != nil {
		r.log.Error().Err(err).Str("room", id).Msg("failed to remove room from catalog")
	}
	r.log.Info().Str("room", id).Msg("room deleted")
	r.NotifyRoomsListChanged("")
	return nil
}

// Join increments username's presence in the room, creating the room if
// needed. firstJoin is true only on the 0→1 transition and gates the join
// broadcast.
func (r *Registry) Join(roomID, username string) (room *domain.Room, firstJoin, created bool) {
	room, created = r.GetOrCreate(roomID)
	firstJoin = room.Join(username)
	return room, firstJoin, created
}

// Leave decrements username's presence. becameAbsent is true only on the
// 1→0 transition and gates the leave broadcast. Leaving an unknown room is a
// no-op (the room may have raced with a delete).
func (r *Registry) Leave(roomID, username string) (becameAbsent bool) {
	room, ok := r.Room(roomID)
	if !ok {
		return false
	}
	return room.Leave(username)
}

// UpdateContent replaces the room buffer unconditionally and returns the
// message event to broadcast to every subscriber, sender included.
func (r *Registry) UpdateContent(roomID, username, content string) (domain.Event, error) {
	room, ok := r.Room(roomID)
	if !ok {
		return domain.Event{}, domain.ErrRoomNotFound
	}
	room.SetContent(content)
	return domain.NewMessageEvent(username, content), nil
}

// NotifyRoomsListChanged publishes an update-rooms-list event to every room
// except the named one (empty string means all rooms).
func (r *Registry) NotifyRoomsListChanged(except string) {
	r.mu.RLock()
	hubs := make([]*domain.Hub, 0, len(r.rooms))
	for id, room := range r.rooms {
		if id == except {
			continue
		}
		hubs = append(hubs, room.Hub())
	}
	r.mu.RUnlock()

	for _, hub := range hubs {
		hub.Publish(domain.NewRoomsListChangedEvent())
	}
}
