package domain

import "encoding/json"

type EventType int

const (
	EventJoin EventType = iota
	EventLeave
	EventMessage
	EventRoomsListChanged
	EventError
)

func (t EventType) String() string {
	switch t {
	case EventJoin:
		return "join"
	case EventLeave:
		return "leave"
	case EventMessage:
		return "message"
	case EventRoomsListChanged:
		return "update-rooms-list"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is one server-to-client notification. Each variant carries only the
// fields relevant to it: join/leave carry Username, message carries Username
// and Value, error carries Value, update-rooms-list carries nothing.
type Event struct {
	Type     EventType
	Username string
	Value    *string
}

func NewJoinEvent(username string) Event {
	return Event{Type: EventJoin, Username: username}
}

func NewLeaveEvent(username string) Event {
	return Event{Type: EventLeave, Username: username}
}

func NewMessageEvent(username, value string) Event {
	return Event{Type: EventMessage, Username: username, Value: &value}
}

func NewRoomsListChangedEvent() Event {
	return Event{Type: EventRoomsListChanged}
}

func NewErrorEvent(detail string) Event {
	return Event{Type: EventError, Value: &detail}
}

// wireEvent is the JSON shape on the socket. The type discriminator is always
// present, including on message events.
type wireEvent struct {
	Type     string  `json:"type"`
	Username string  `json:"username,omitempty"`
	Value    *string `json:"value,omitempty"`
}

func (e Event) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireEvent{
		Type:     e.Type.String(),
		Username: e.Username,
		Value:    e.Value,
	})
}

func (e *Event) UnmarshalJSON(data []byte) error {
	var w wireEvent
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	e.Username = w.Username
	e.Value = w.Value
	switch w.Type {
	case "join":
		e.Type = EventJoin
	case "leave":
		e.Type = EventLeave
	case "message":
		e.Type = EventMessage
	case "update-rooms-list":
		e.Type = EventRoomsListChanged
	default:
		e.Type = EventError
	}
	return nil
}

func (e Event) String() string {
	if e.Value != nil {
		return e.Type.String() + ": " + e.Username + " - " + *e.Value
	}
	return e.Type.String() + ": " + e.Username
}
