package http

import (
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Envelope is the wire format for every outbound message.
type Envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Client is one websocket connection with its outbound queue. All writes to
// the socket go through the writer goroutine draining send.
type Client struct {
	ID   string
	conn *websocket.Conn
	send chan Envelope
}

func (c *Client) enqueue(msg Envelope) {
	select {
	case c.send <- msg:
	default:
		// Drop the oldest queued message so a slow client cannot block
		// broadcasts for the whole room.
		select {
		case <-c.send:
		default:
		}
		select {
		case c.send <- msg:
		default:
		}
	}
}

func (c *Client) writePump() {
	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			log.Printf("ws write error: %v", err)
			return
		}
	}
}

// Hub tracks which clients are in which broadcast rooms. It implements the
// engine's Publisher port.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*Client]struct{})}
}

// NewClient wraps a connection with an identity and outbound queue.
func (h *Hub) NewClient(conn *websocket.Conn) *Client {
	return &Client{
		ID:   uuid.NewString(),
		conn: conn,
		send: make(chan Envelope, 32),
	}
}

// Subscribe adds the client to a room. Subscribing twice is a no-op.
func (h *Hub) Subscribe(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Client]struct{})
	}
	h.rooms[room][c] = struct{}{}
}

// Remove drops the client from every room. After Remove returns no broadcast
// will enqueue to the client, so its send channel is safe to close.
func (h *Hub) Remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for room, clients := range h.rooms {
		delete(clients, c)
		if len(clients) == 0 {
			delete(h.rooms, room)
		}
	}
}

// Broadcast fans an event out to every client in the room.
func (h *Hub) Broadcast(room string, event string, payload any) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.rooms[room] {
		client.enqueue(Envelope{Type: event, Payload: payload})
	}
}
