package domain

import (
	"encoding/json"
	"reflect"
	"testing"
)

func marshalToMap(t *testing.T, ev Event) map[string]any {
	t.Helper()
	data, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return m
}

func TestEventWireShape(t *testing.T) {
	cases := []struct {
		name string
		ev   Event
		want map[string]any
	}{
		{
			// The type discriminator is explicit even on content messages.
			name: "message",
			ev:   NewMessageEvent("alice", "hello"),
			want: map[string]any{"type": "message", "username": "alice", "value": "hello"},
		},
		{
			name: "empty content message keeps value",
			ev:   NewMessageEvent("Server", ""),
			want: map[string]any{"type": "message", "username": "Server", "value": ""},
		},
		{
			name: "join",
			ev:   NewJoinEvent("bob"),
			want: map[string]any{"type": "join", "username": "bob"},
		},
		{
			name: "leave",
			ev:   NewLeaveEvent("bob"),
			want: map[string]any{"type": "leave", "username": "bob"},
		},
		{
			name: "rooms list changed",
			ev:   NewRoomsListChangedEvent(),
			want: map[string]any{"type": "update-rooms-list"},
		},
		{
			name: "error",
			ev:   NewErrorEvent("Invalid JSON"),
			want: map[string]any{"type": "error", "value": "Invalid JSON"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := marshalToMap(t, tc.ev)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("wire shape = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestEventRoundTrip(t *testing.T) {
	orig := NewMessageEvent("alice", "content")
	data, err := json.Marshal(orig)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got Event
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Type != EventMessage || got.Username != "alice" || got.Value == nil || *got.Value != "content" {
		t.Fatalf("round trip mismatch: %v", got)
	}
}
