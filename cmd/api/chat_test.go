package main

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"skillmatch/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSendMessage_Success(t *testing.T) {
	mocks, st := newMockStores()
	app := newTestApplication(t, st)
	user := testUser(7)
	receiver := testUser(3)
	receiver.Email = "bibek@example.com"

	mocks.users.On("GetByID", mock.Anything, int64(7)).Return(user, nil)
	mocks.users.On("GetByID", mock.Anything, int64(3)).Return(receiver, nil)
	mocks.messages.On("Create", mock.Anything, mock.MatchedBy(func(m *store.Message) bool {
		return m.SenderID == 7 && m.ReceiverID == 3 && m.Text == "see you at the court"
	})).Return(nil)

	payload := map[string]any{"receiver_id": 3, "text": "see you at the court"}
	req := jsonRequest(t, http.MethodPost, "/api/chat/messages", payload)
	req.Header.Set("Authorization", bearerToken(t, app, user))

	rr := executeRequest(app, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	mocks.messages.AssertExpectations(t)
}

func TestSendMessage_ReceiverMissing(t *testing.T) {
	mocks, st := newMockStores()
	app := newTestApplication(t, st)
	user := testUser(7)

	mocks.users.On("GetByID", mock.Anything, int64(7)).Return(user, nil)
	mocks.users.On("GetByID", mock.Anything, int64(404)).Return(nil, store.ErrNotFound)

	payload := map[string]any{"receiver_id": 404, "text": "hello?"}
	req := jsonRequest(t, http.MethodPost, "/api/chat/messages", payload)
	req.Header.Set("Authorization", bearerToken(t, app, user))

	rr := executeRequest(app, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	mocks.messages.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSendMessage_TooLong(t *testing.T) {
	mocks, st := newMockStores()
	app := newTestApplication(t, st)
	user := testUser(7)

	mocks.users.On("GetByID", mock.Anything, int64(7)).Return(user, nil)

	payload := map[string]any{"receiver_id": 3, "text": strings.Repeat("x", 2001)}
	req := jsonRequest(t, http.MethodPost, "/api/chat/messages", payload)
	req.Header.Set("Authorization", bearerToken(t, app, user))

	rr := executeRequest(app, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDeleteMessage_NotSender(t *testing.T) {
	mocks, st := newMockStores()
	app := newTestApplication(t, st)
	user := testUser(7)

	message := &store.Message{ID: 15, SenderID: 99, ReceiverID: 7, Text: "hi"}

	mocks.users.On("GetByID", mock.Anything, int64(7)).Return(user, nil)
	mocks.messages.On("GetByID", mock.Anything, int64(15)).Return(message, nil)

	req := jsonRequest(t, http.MethodDelete, "/api/chat/messages/15", nil)
	req.Header.Set("Authorization", bearerToken(t, app, user))

	rr := executeRequest(app, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	mocks.messages.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestGetConversations(t *testing.T) {
	mocks, st := newMockStores()
	app := newTestApplication(t, st)
	user := testUser(7)

	mocks.users.On("GetByID", mock.Anything, int64(7)).Return(user, nil)
	mocks.messages.On("GetConversations", mock.Anything, int64(7)).Return([]store.Conversation{
		{UserID: 3, FirstName: "Bibek", LastName: "KC", LastMessage: "see you"},
	}, nil)

	req := jsonRequest(t, http.MethodGet, "/api/chat/conversations", nil)
	req.Header.Set("Authorization", bearerToken(t, app, user))

	rr := executeRequest(app, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Conversations []store.Conversation `json:"conversations"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Conversations, 1)
	assert.Equal(t, int64(3), resp.Conversations[0].UserID)
}
