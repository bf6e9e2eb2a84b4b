package realtime

import (
	"encoding/json"

	"github.com/gorilla/websocket"
)

// Client is one websocket connection attached to the hub.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID int64
	rooms  map[string]bool
}

func NewClient(hub *Hub, conn *websocket.Conn, userID int64) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, 256),
		userID: userID,
		rooms:  make(map[string]bool),
	}
}

// Start registers the client and runs both pumps. ReadPump blocks until the
// connection drops; writePump runs on its own goroutine.
func (c *Client) Start() {
	c.hub.register <- c
	go c.writePump()
	c.readPump()
}

func (c *Client) writePump() {
	defer c.conn.Close()
	for message := range c.send {
		w, err := c.conn.NextWriter(websocket.TextMessage)
		if err != nil {
			return
		}
		w.Write(message)
		if err := w.Close(); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			break
		}

		var ev Event
		if err := json.Unmarshal(raw, &ev); err != nil {
			continue
		}
		if ev.RoomID == "" {
			continue
		}

		switch ev.Type {
		case EventJoinRoom:
			c.hub.join(ev.RoomID, c)
		case EventLeaveRoom:
			c.hub.leave(ev.RoomID, c)
		case EventSendMessage:
			out, err := json.Marshal(Event{
				Type:   EventReceiveMessage,
				RoomID: ev.RoomID,
				Data:   ev.Data,
			})
			if err != nil {
				continue
			}
			c.hub.events <- broadcast{roomID: ev.RoomID, payload: out, from: c}
		}
	}
}
