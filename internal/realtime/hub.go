// Package realtime carries the best-effort notification channel for chat:
// clients join opaque rooms and events are broadcast to everyone in the room.
// Delivery is not acknowledged and is independent of the persisted messages.
package realtime

import (
	"encoding/json"
	"sync"
)

// Event is the wire format for the socket channel.
type Event struct {
	Type   string          `json:"type"` // join_room, leave_room, send_message, receive_message
	RoomID string          `json:"room_id"`
	Data   json.RawMessage `json:"data,omitempty"`
}

const (
	EventJoinRoom       = "join_room"
	EventLeaveRoom      = "leave_room"
	EventSendMessage    = "send_message"
	EventReceiveMessage = "receive_message"
)

type broadcast struct {
	roomID  string
	payload []byte
	from    *Client
}

type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	events     chan broadcast
}

func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		events:     make(chan broadcast, 64),
	}
}

// Run processes registration and broadcast events until the process exits.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			// Nothing to do until the client joins a room.
			_ = client
		case client := <-h.unregister:
			h.mu.Lock()
			for roomID := range client.rooms {
				h.removeFromRoom(roomID, client)
			}
			h.mu.Unlock()
			close(client.send)
		case ev := <-h.events:
			h.mu.RLock()
			for client := range h.rooms[ev.roomID] {
				if client == ev.from {
					continue
				}
				select {
				case client.send <- ev.payload:
				default:
					// Slow consumer; drop the event rather than block the hub.
				}
			}
			h.mu.RUnlock()
		}
	}
}

func (h *Hub) join(roomID string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[*Client]bool)
	}
	h.rooms[roomID][client] = true
	client.rooms[roomID] = true
}

func (h *Hub) leave(roomID string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeFromRoom(roomID, client)
	delete(client.rooms, roomID)
}

// caller must hold h.mu
func (h *Hub) removeFromRoom(roomID string, client *Client) {
	if members, ok := h.rooms[roomID]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

// RoomSize reports the current member count of a room.
func (h *Hub) RoomSize(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}
