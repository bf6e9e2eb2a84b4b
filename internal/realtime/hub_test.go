package realtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHub_JoinLeave(t *testing.T) {
	hub := NewHub()
	client := NewClient(hub, nil, 7)

	hub.join("chat:3:7", client)
	assert.Equal(t, 1, hub.RoomSize("chat:3:7"))
	assert.True(t, client.rooms["chat:3:7"])

	hub.leave("chat:3:7", client)
	assert.Equal(t, 0, hub.RoomSize("chat:3:7"))
	assert.False(t, client.rooms["chat:3:7"])
}

func TestHub_EmptyRoomIsDropped(t *testing.T) {
	hub := NewHub()
	a := NewClient(hub, nil, 7)
	b := NewClient(hub, nil, 3)

	hub.join("chat:3:7", a)
	hub.join("chat:3:7", b)
	assert.Equal(t, 2, hub.RoomSize("chat:3:7"))

	hub.leave("chat:3:7", a)
	hub.leave("chat:3:7", b)

	hub.mu.RLock()
	_, exists := hub.rooms["chat:3:7"]
	hub.mu.RUnlock()
	assert.False(t, exists)
}

func TestHub_BroadcastSkipsSender(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	sender := NewClient(hub, nil, 7)
	receiver := NewClient(hub, nil, 3)

	hub.join("chat:3:7", sender)
	hub.join("chat:3:7", receiver)

	hub.events <- broadcast{roomID: "chat:3:7", payload: []byte(`{"type":"receive_message"}`), from: sender}

	select {
	case msg := <-receiver.send:
		assert.JSONEq(t, `{"type":"receive_message"}`, string(msg))
	case msg := <-sender.send:
		t.Fatalf("sender received its own broadcast: %s", msg)
	case <-time.After(time.Second):
		t.Fatal("broadcast was not delivered")
	}
}
