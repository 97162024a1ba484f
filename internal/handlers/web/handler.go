package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/cmnord/jep-sub001/internal/engine"
	"github.com/cmnord/jep-sub001/internal/models"
	roomService "github.com/cmnord/jep-sub001/internal/services/room"
)

// Config holds configuration for the web handler
type Config struct {
	// BaseURL is the externally visible URL, used for join QR codes
	BaseURL string

	// Verbose enables per-request logging
	Verbose bool
}

// Handler exposes the room service over HTTP and websockets.
type Handler struct {
	config *Config
	svc    roomService.Service

	mu   sync.Mutex
	hubs map[string]*hub
}

// New creates a new web handler
func New(cfg *Config, svc roomService.Service) (*Handler, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if svc == nil {
		return nil, errors.New("room service cannot be nil")
	}

	return &Handler{
		config: cfg,
		svc:    svc,
		hubs:   make(map[string]*hub),
	}, nil
}

// Router builds the HTTP routes.
func (h *Handler) Router() *httprouter.Router {
	router := httprouter.New()

	router.POST("/games", h.createGame)
	router.GET("/games", h.listGames)
	router.GET("/games/:id", h.getGame)
	router.POST("/rooms", h.createRoom)
	router.GET("/rooms/:name", h.getRoom)
	router.GET("/rooms/:name/events", h.roomEvents)
	router.GET("/rooms/:name/qr", h.roomQR)
	router.GET("/rooms/:name/ws", h.serveWS)

	return router
}

// clientMessage is what a connected player sends: an action to
// dispatch into the room.
type clientMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// eventMessage fans a confirmed event out to every client, along with
// the state derived from it. Clients that replay events themselves can
// ignore the state; thin clients can render it directly.
type eventMessage struct {
	Type  string            `json:"type"`
	Event *models.RoomEvent `json:"event,omitempty"`
	State *engine.State     `json:"state"`

	// LastEventID accompanies sync messages so the client knows where
	// to resume from
	LastEventID int64 `json:"lastEventId,omitempty"`
}

type createGameRequest struct {
	Title  string         `json:"title"`
	Boards []models.Board `json:"boards"`
}

type createRoomRequest struct {
	Name       string `json:"name"`
	GameID     string `json:"gameId"`
	HostUserID string `json:"hostUserId"`
}

func (h *Handler) createGame(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req createGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	out, err := h.svc.CreateGame(r.Context(), &roomService.CreateGameInput{
		Title:  req.Title,
		Boards: req.Boards,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.logf("created game %s (%q)", out.GameID, req.Title)
	h.writeJSON(w, http.StatusCreated, map[string]string{"id": out.GameID})
}

func (h *Handler) listGames(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	out, err := h.svc.ListGames(r.Context(), &roomService.ListGamesInput{})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, out.Games)
}

func (h *Handler) getGame(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	out, err := h.svc.GetGame(r.Context(), &roomService.GetGameInput{GameID: ps.ByName("id")})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, out.Game)
}

func (h *Handler) createRoom(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req createRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	out, err := h.svc.CreateRoom(r.Context(), &roomService.CreateRoomInput{
		Name:       req.Name,
		GameID:     req.GameID,
		HostUserID: req.HostUserID,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.logf("created room %s (%q)", out.Room.ID, out.Room.Name)
	h.writeJSON(w, http.StatusCreated, out.Room)
}

func (h *Handler) getRoom(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	found, err := h.svc.GetRoomByName(r.Context(), &roomService.GetRoomByNameInput{Name: ps.ByName("name")})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	state, err := h.svc.GetRoomState(r.Context(), &roomService.GetRoomStateInput{RoomID: found.Room.ID})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"room":        found.Room,
		"state":       state.State,
		"lastEventId": state.LastEventID,
	})
}

// roomEvents returns the events appended after a client-known insertion
// id, so a reconnecting client can catch up from the lastEventId in its
// sync message instead of pulling full state.
func (h *Handler) roomEvents(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	found, err := h.svc.GetRoomByName(r.Context(), &roomService.GetRoomByNameInput{Name: ps.ByName("name")})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	var after int64
	if raw := r.URL.Query().Get("after"); raw != "" {
		after, err = strconv.ParseInt(raw, 10, 64)
		if err != nil || after < 0 {
			http.Error(w, "invalid after parameter", http.StatusBadRequest)
			return
		}
	}

	out, err := h.svc.CatchUp(r.Context(), &roomService.CatchUpInput{
		RoomID:  found.Room.ID,
		AfterID: after,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"events": out.Events})
}

// roomQR serves a QR code for the room's join URL.
func (h *Handler) roomQR(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	name := ps.ByName("name")
	if _, err := h.svc.GetRoomByName(r.Context(), &roomService.GetRoomByNameInput{Name: name}); err != nil {
		h.writeServiceError(w, err)
		return
	}

	png, err := qrcode.Encode(fmt.Sprintf("%s/rooms/%s", h.config.BaseURL, name), qrcode.Medium, 256)
	if err != nil {
		http.Error(w, "failed to encode QR code", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(png); err != nil {
		h.logf("failed to write QR code: %v", err)
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func (h *Handler) serveWS(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	found, err := h.svc.GetRoomByName(r.Context(), &roomService.GetRoomByNameInput{Name: ps.ByName("name")})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	state, err := h.svc.GetRoomState(r.Context(), &roomService.GetRoomStateInput{RoomID: found.Room.ID})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logf("websocket upgrade failed: %v", err)
		return
	}

	roomHub := h.getHub(found.Room.ID)
	c := &client{
		conn: conn,
		send: make(chan []byte, 16),
	}
	roomHub.register(c)

	// First message is a full sync so a reconnecting client converges
	// before any live events arrive.
	if sync, err := json.Marshal(eventMessage{
		Type:        "sync",
		State:       state.State,
		LastEventID: state.LastEventID,
	}); err == nil {
		c.send <- sync
	}

	go c.writePump()
	c.readPump(r.Context(), h, roomHub)
}

func (h *Handler) getHub(roomID string) *hub {
	h.mu.Lock()
	defer h.mu.Unlock()

	if roomHub, ok := h.hubs[roomID]; ok {
		return roomHub
	}

	roomHub := newHub(roomID)
	h.hubs[roomID] = roomHub
	return roomHub
}

// releaseHub drops a hub once its last client has unregistered.
func (h *Handler) releaseHub(roomHub *hub) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if roomHub.empty() {
		delete(h.hubs, roomHub.roomID)
	}
}

// handleClientMessage dispatches one incoming action and fans the
// confirmed event out to the whole room.
func (h *Handler) handleClientMessage(ctx context.Context, roomHub *hub, raw []byte) error {
	var msg clientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return fmt.Errorf("invalid message: %w", err)
	}

	out, err := h.svc.Dispatch(ctx, &roomService.DispatchInput{
		RoomID:  roomHub.roomID,
		Type:    msg.Type,
		Payload: msg.Payload,
	})
	if err != nil {
		return err
	}

	fanout, err := json.Marshal(eventMessage{
		Type:  "event",
		Event: out.Event,
		State: out.State,
	})
	if err != nil {
		return err
	}

	roomHub.broadcast(fanout)
	return nil
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logf("failed to write response: %v", err)
	}
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, roomService.ErrRoomNotFound), errors.Is(err, roomService.ErrGameNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, roomService.ErrRoomAlreadyExists):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, roomService.ErrBadEvent), errors.Is(err, roomService.ErrInvalidGame):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.logf("internal error: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (h *Handler) logf(format string, v ...any) {
	if h.config.Verbose {
		log.Printf(format, v...)
	}
}
