package adaptor

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/ponyo877/sharepad/server/domain"
)

const (
	writeWait     = 10 * time.Second
	sendQueueSize = 256

	// Application-level liveness frames, one byte each.
	pingByte = 0x9
	pongByte = 0xA
)

// helloPayload is the mandatory first text frame on a new connection.
type helloPayload struct {
	Channel  string `json:"channel"`
	Username string `json:"username"`
}

type outboundFrame struct {
	messageType int
	payload     []byte
}

// wsSession bridges one WebSocket connection to the registry and its room's
// hub. A read pump runs the protocol state machine, a write pump owns the
// socket for writes and doubles as the heartbeat monitor.
type wsSession struct {
	adaptor *Adaptor
	conn    *websocket.Conn
	state   *domain.Session
	log     zerolog.Logger

	send chan outboundFrame
	done chan struct{}

	mu   sync.Mutex
	room *domain.Room
	sub  *domain.Subscription

	closeOnce sync.Once
}

// ServeWS upgrades the connection and starts the session pumps.
func (a *Adaptor) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.log.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("websocket upgrade failed")
		return
	}

	s := &wsSession{
		adaptor: a,
		conn:    conn,
		state:   domain.NewSession(ulid.Make().String(), r.RemoteAddr),
		send:    make(chan outboundFrame, sendQueueSize),
		done:    make(chan struct{}),
	}
	s.log = a.log.With().Str("session", s.state.ID).Str("remote", r.RemoteAddr).Logger()
	s.log.Debug().Msg("session connected")

	go s.writePump()
	go s.readPump()
}

func (s *wsSession) readPump() {
	defer s.teardown()

	for {
		msgType, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.log.Warn().Err(err).Msg("unexpected websocket error")
			}
			return
		}
		s.state.Touch()

		switch msgType {
		case websocket.BinaryMessage:
			s.handleBinary(data)
		case websocket.TextMessage:
			if s.state.State() == domain.StateAwaitingHello {
				if !s.handleHello(data) {
					return
				}
			} else {
				s.handleContent(string(data))
			}
		}
	}
}

// handleBinary answers liveness pings; pongs only refresh the timestamp,
// which Touch already did.
func (s *wsSession) handleBinary(data []byte) {
	if len(data) > 0 && data[0] == pingByte {
		s.enqueue(outboundFrame{websocket.BinaryMessage, []byte{pongByte}})
	}
}

// handleHello decodes the first text frame, joins the room, and subscribes to
// its hub. A malformed hello gets a structured error event and false, which
// closes the connection without ever entering Joined.
func (s *wsSession) handleHello(data []byte) bool {
	var hello helloPayload
	if err := json.Unmarshal(data, &hello); err != nil {
		s.log.Warn().Err(err).Msg("malformed hello frame")
		s.enqueueEvent(domain.NewErrorEvent("Invalid JSON"))
		return false
	}
	if hello.Channel == "" || hello.Username == "" {
		s.log.Warn().Msg("hello frame missing channel or username")
		s.enqueueEvent(domain.NewErrorEvent("Missing channel or username"))
		return false
	}

	s.state.Bind(hello.Channel, hello.Username)
	room, firstJoin, _ := s.adaptor.uc.Join(hello.Channel, hello.Username)

	// Subscribe before broadcasting the join so this session sees its own
	// join event.
	sub := room.Hub().Subscribe(s.kick)
	s.mu.Lock()
	s.room = room
	s.sub = sub
	s.mu.Unlock()
	go s.forwardEvents(sub)

	s.state.Advance(domain.StateJoined)
	s.log.Info().Str("room", hello.Channel).Str("username", hello.Username).Msg("session joined room")

	// The newcomer gets the current buffer directly, attributed to the
	// server.
	s.enqueueEvent(domain.NewMessageEvent("Server", room.Content()))

	if firstJoin {
		room.Hub().Publish(domain.NewJoinEvent(hello.Username))
	}
	return true
}

// handleContent treats an inbound text frame as a full-buffer replacement and
// rebroadcasts it to every subscriber, the sender included.
func (s *wsSession) handleContent(content string) {
	ev, err := s.adaptor.uc.UpdateContent(s.state.RoomID(), s.state.Username(), content)
	if err != nil {
		s.log.Warn().Err(err).Msg("content update for missing room")
		return
	}

	s.mu.Lock()
	room := s.room
	s.mu.Unlock()
	if room != nil {
		room.Hub().Publish(ev)
	}
}

// forwardEvents drains the hub subscription onto the socket queue.
func (s *wsSession) forwardEvents(sub *domain.Subscription) {
	for ev := range sub.C {
		payload, err := json.Marshal(ev)
		if err != nil {
			s.log.Error().Err(err).Msg("failed to encode event")
			continue
		}
		s.enqueue(outboundFrame{websocket.TextMessage, payload})
	}
	// Channel closed: evicted, unsubscribed, or the hub shut down.
	s.teardown()
}

// kick is invoked by the hub when this session's delivery queue overflows.
// Policy: a slow consumer is disconnected, exactly like a heartbeat timeout.
func (s *wsSession) kick() {
	s.log.Info().Msg("session evicted as slow consumer")
	s.teardown()
}

func (s *wsSession) enqueueEvent(ev domain.Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to encode event")
		return
	}
	s.enqueue(outboundFrame{websocket.TextMessage, payload})
}

func (s *wsSession) enqueue(f outboundFrame) {
	select {
	case s.send <- f:
	case <-s.done:
	default:
		s.log.Info().Msg("send queue full, disconnecting session")
		s.teardown()
	}
}

// writePump owns all writes to the socket and runs the heartbeat check: every
// interval it verifies liveness and sends a ping; a session with no liveness
// evidence inside the timeout window is forced through teardown.
func (s *wsSession) writePump() {
	ticker := time.NewTicker(s.adaptor.cfg.HeartbeatInterval)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case f := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(f.messageType, f.payload); err != nil {
				s.teardown()
				return
			}
		case <-ticker.C:
			if s.state.Expired(s.adaptor.cfg.HeartbeatTimeout()) {
				s.log.Info().Msg("heartbeat timeout, disconnecting session")
				s.teardown()
				return
			}
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.BinaryMessage, []byte{pingByte}); err != nil {
				s.teardown()
				return
			}
		case <-s.done:
			s.flush()
			return
		}
	}
}

// flush drains queued frames (a protocol error event in particular) before
// the connection goes away.
func (s *wsSession) flush() {
	for {
		select {
		case f := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(f.messageType, f.payload); err != nil {
				return
			}
		default:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

// teardown is the single Closing transition: unsubscribe, decrement presence,
// broadcast the leave if this was the username's last session, and stop the
// pumps. Idempotent; every failure path funnels through here.
func (s *wsSession) teardown() {
	s.closeOnce.Do(func() {
		s.state.Advance(domain.StateClosing)

		s.mu.Lock()
		room, sub := s.room, s.sub
		s.mu.Unlock()

		if room != nil && sub != nil {
			room.Hub().Unsubscribe(sub)
		}
		if roomID := s.state.RoomID(); roomID != "" {
			if s.adaptor.uc.Leave(roomID, s.state.Username()) && room != nil {
				room.Hub().Publish(domain.NewLeaveEvent(s.state.Username()))
			}
		}

		close(s.done)
		s.state.Advance(domain.StateClosed)
		s.log.Debug().Msg("session closed")
	})
}
