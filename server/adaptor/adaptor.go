package adaptor

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/ponyo877/sharepad/server/domain"
)

// Adaptor exposes the registry over HTTP: the rooms API and the WebSocket
// session endpoint.
type Adaptor struct {
	uc       Usecase
	cfg      domain.Config
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

func NewAdaptor(uc Usecase, cfg domain.Config, log zerolog.Logger) *Adaptor {
	return &Adaptor{
		uc:  uc,
		cfg: cfg,
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (a *Adaptor) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/rooms", a.ListRooms).Methods(http.MethodGet)
	r.HandleFunc("/api/rooms/{id}", a.DeleteRoom).Methods(http.MethodDelete)
	r.HandleFunc("/ws", a.ServeWS).Methods(http.MethodGet)
	return r
}

// ListRooms returns every room with its present usernames.
func (a *Adaptor) ListRooms(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(a.uc.List()); err != nil {
		a.log.Error().Err(err).Msg("failed to encode rooms list")
	}
}

// DeleteRoom removes an empty room: 204 on success, 409 while occupied, 404
// for unknown ids.
func (a *Adaptor) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	switch err := a.uc.Delete(id); {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, domain.ErrRoomNotFound):
		writeError(w, http.StatusNotFound, "room not found")
	case errors.Is(err, domain.ErrRoomNotEmpty):
		writeError(w, http.StatusConflict, "room is not empty")
	default:
		a.log.Error().Err(err).Str("room", id).Msg("failed to delete room")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
