package web

import (
	"context"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// hub fans room events out to every connected client of one room.
type hub struct {
	roomID string

	mu      sync.Mutex
	clients map[*client]bool
}

// client is one websocket connection subscribed to a room.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

func newHub(roomID string) *hub {
	return &hub{
		roomID:  roomID,
		clients: make(map[*client]bool),
	}
}

func (h *hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = true
}

func (h *hub) empty() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients) == 0
}

func (h *hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[c] {
		delete(h.clients, c)
		close(c.send)
	}
}

// broadcast queues a message for every client; clients that cannot
// keep up are dropped rather than blocking the room.
func (h *hub) broadcast(message []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- message:
		default:
			delete(h.clients, c)
			close(c.send)
		}
	}
}

func (c *client) writePump() {
	defer c.conn.Close()

	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
}

func (c *client) readPump(ctx context.Context, h *Handler, roomHub *hub) {
	defer func() {
		roomHub.unregister(c)
		h.releaseHub(roomHub)
		c.conn.Close()
	}()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		if err := h.handleClientMessage(ctx, roomHub, message); err != nil {
			log.Printf("room %s: dropped client message: %v", roomHub.roomID, err)
		}
	}
}
