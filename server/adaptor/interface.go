package adaptor

import "github.com/ponyo877/sharepad/server/domain"

// Usecase is what the transport layer needs from the room registry.
type Usecase interface {
	List() []domain.RoomInfo
	Delete(roomID string) error
	Join(roomID, username string) (room *domain.Room, firstJoin, created bool)
	Leave(roomID, username string) (becameAbsent bool)
	UpdateContent(roomID, username, content string) (domain.Event, error)
}
