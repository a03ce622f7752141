package domain

import "errors"

var (
	// ErrRoomNotFound is returned when an operation names a room id unknown
	// to the registry.
	ErrRoomNotFound = errors.New("room not found")

	// ErrRoomNotEmpty is returned when deletion is attempted while any
	// username still has positive presence in the room.
	ErrRoomNotEmpty = errors.New("room not empty")
)
