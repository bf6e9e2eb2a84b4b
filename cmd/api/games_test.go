package main

import (
	"encoding/json"
	"net/http"
	"testing"

	"skillmatch/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRegisterForGame_Full(t *testing.T) {
	mocks, st := newMockStores()
	app := newTestApplication(t, st)
	user := testUser(7)

	mocks.users.On("GetByID", mock.Anything, int64(7)).Return(user, nil)
	mocks.tickets.On("GetByGameAndUser", mock.Anything, int64(42), int64(7)).
		Return(nil, store.ErrNotFound)
	mocks.games.On("Register", mock.Anything, int64(42), int64(7), mock.Anything).
		Return(store.ErrGameFull)

	req := jsonRequest(t, http.MethodPost, "/api/games/42/register", nil)
	req.Header.Set("Authorization", bearerToken(t, app, user))

	rr := executeRequest(app, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "Game is full", resp.Message)
	mocks.games.AssertExpectations(t)
}

func TestRegisterForGame_Idempotent(t *testing.T) {
	mocks, st := newMockStores()
	app := newTestApplication(t, st)
	user := testUser(7)

	existing := &store.Ticket{
		ID:       11,
		TicketID: "GT-abc-def",
		GameID:   42,
		UserID:   7,
		Status:   store.TicketStatusActive,
	}

	mocks.users.On("GetByID", mock.Anything, int64(7)).Return(user, nil)
	mocks.tickets.On("GetByGameAndUser", mock.Anything, int64(42), int64(7)).
		Return(existing, nil)
	mocks.games.On("GetByID", mock.Anything, int64(42)).
		Return(&store.Game{ID: 42, Title: "Evening Futsal", Status: store.GameStatusUpcoming}, nil)

	req := jsonRequest(t, http.MethodPost, "/api/games/42/register", nil)
	req.Header.Set("Authorization", bearerToken(t, app, user))

	rr := executeRequest(app, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		AlreadyRegistered bool `json:"already_registered"`
		Ticket            struct {
			TicketID string `json:"ticket_id"`
		} `json:"ticket"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.AlreadyRegistered)
	assert.Equal(t, "GT-abc-def", resp.Ticket.TicketID)

	// No new registration is attempted on retry.
	mocks.games.AssertNotCalled(t, "Register", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRegisterForGame_Success(t *testing.T) {
	mocks, st := newMockStores()
	app := newTestApplication(t, st)
	user := testUser(7)

	game := &store.Game{ID: 42, Title: "Evening Futsal", OrganizerID: 3, MaxPlayers: 10, Status: store.GameStatusUpcoming}

	mocks.users.On("GetByID", mock.Anything, int64(7)).Return(user, nil)
	mocks.tickets.On("GetByGameAndUser", mock.Anything, int64(42), int64(7)).
		Return(nil, store.ErrNotFound)
	mocks.games.On("Register", mock.Anything, int64(42), int64(7), mock.Anything).Return(nil)
	mocks.games.On("GetByID", mock.Anything, int64(42)).Return(game, nil)
	mocks.games.On("GetPlayers", mock.Anything, int64(42)).
		Return([]store.GamePlayer{{UserID: 7, FirstName: "Asha", LastName: "Rai"}}, nil)
	mocks.pushTokens.On("GetTokensByUserIDs", mock.Anything, []int64{3}).
		Return(map[int64][]string{}, nil).Maybe()

	req := jsonRequest(t, http.MethodPost, "/api/games/42/register", nil)
	req.Header.Set("Authorization", bearerToken(t, app, user))

	rr := executeRequest(app, req)

	assert.Equal(t, http.StatusCreated, rr.Code)

	var resp struct {
		AlreadyRegistered bool `json:"already_registered"`
		Ticket            struct {
			TicketID string `json:"ticket_id"`
		} `json:"ticket"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.False(t, resp.AlreadyRegistered)
	assert.NotEmpty(t, resp.Ticket.TicketID)
	assert.Contains(t, resp.Ticket.TicketID, "GT-")
}

func TestRegisterForGame_AfterCancellation(t *testing.T) {
	mocks, st := newMockStores()
	app := newTestApplication(t, st)
	user := testUser(7)

	game := &store.Game{ID: 42, Title: "Evening Futsal", OrganizerID: 3, MaxPlayers: 10, Status: store.GameStatusUpcoming}

	mocks.users.On("GetByID", mock.Anything, int64(7)).Return(user, nil)
	mocks.games.On("GetByID", mock.Anything, int64(42)).Return(game, nil)
	mocks.games.On("GetPlayers", mock.Anything, int64(42)).Return([]store.GamePlayer{}, nil)
	mocks.pushTokens.On("GetTokensByUserIDs", mock.Anything, []int64{3}).
		Return(map[int64][]string{}, nil).Maybe()

	// First registration issues a ticket.
	mocks.tickets.On("GetByGameAndUser", mock.Anything, int64(42), int64(7)).
		Return(nil, store.ErrNotFound).Once()
	mocks.games.On("Register", mock.Anything, int64(42), int64(7), mock.Anything).
		Return(nil).Once()

	req := jsonRequest(t, http.MethodPost, "/api/games/42/register", nil)
	req.Header.Set("Authorization", bearerToken(t, app, user))
	rr := executeRequest(app, req)
	require.Equal(t, http.StatusCreated, rr.Code)

	var first struct {
		Ticket struct {
			TicketID string `json:"ticket_id"`
		} `json:"ticket"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &first))

	// Cancellation retires the ticket and frees the spot.
	mocks.games.On("CancelRegistration", mock.Anything, int64(42), int64(7)).
		Return(nil).Once()

	req = jsonRequest(t, http.MethodDelete, "/api/games/42/cancel-registration", nil)
	req.Header.Set("Authorization", bearerToken(t, app, user))
	rr = executeRequest(app, req)
	require.Equal(t, http.StatusOK, rr.Code)

	// Re-registering after cancel is a normal registration again, not a
	// retry of the old ticket: the cancelled one no longer counts.
	mocks.tickets.On("GetByGameAndUser", mock.Anything, int64(42), int64(7)).
		Return(nil, store.ErrNotFound).Once()
	mocks.games.On("Register", mock.Anything, int64(42), int64(7), mock.Anything).
		Return(nil).Once()

	req = jsonRequest(t, http.MethodPost, "/api/games/42/register", nil)
	req.Header.Set("Authorization", bearerToken(t, app, user))
	rr = executeRequest(app, req)
	require.Equal(t, http.StatusCreated, rr.Code)

	var second struct {
		AlreadyRegistered bool `json:"already_registered"`
		Ticket            struct {
			TicketID string `json:"ticket_id"`
		} `json:"ticket"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &second))
	assert.False(t, second.AlreadyRegistered)
	assert.NotEmpty(t, second.Ticket.TicketID)
	assert.NotEqual(t, first.Ticket.TicketID, second.Ticket.TicketID)
	mocks.games.AssertExpectations(t)
}

func TestUpdateGameStatus_InvalidTransition(t *testing.T) {
	mocks, st := newMockStores()
	app := newTestApplication(t, st)
	user := testUser(3)

	game := &store.Game{ID: 42, OrganizerID: 3, Status: store.GameStatusCompleted}

	mocks.users.On("GetByID", mock.Anything, int64(3)).Return(user, nil)
	mocks.games.On("GetByID", mock.Anything, int64(42)).Return(game, nil)

	req := jsonRequest(t, http.MethodPut, "/api/games/42/status", map[string]string{"status": "Ongoing"})
	req.Header.Set("Authorization", bearerToken(t, app, user))

	rr := executeRequest(app, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	mocks.games.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateGameStatus_NotOrganizer(t *testing.T) {
	mocks, st := newMockStores()
	app := newTestApplication(t, st)
	user := testUser(7)

	game := &store.Game{ID: 42, OrganizerID: 3, Status: store.GameStatusUpcoming}

	mocks.users.On("GetByID", mock.Anything, int64(7)).Return(user, nil)
	mocks.games.On("GetByID", mock.Anything, int64(42)).Return(game, nil)

	req := jsonRequest(t, http.MethodPut, "/api/games/42/status", map[string]string{"status": "Cancelled"})
	req.Header.Set("Authorization", bearerToken(t, app, user))

	rr := executeRequest(app, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestGetTicket_NotOwner(t *testing.T) {
	mocks, st := newMockStores()
	app := newTestApplication(t, st)
	user := testUser(7)

	mocks.users.On("GetByID", mock.Anything, int64(7)).Return(user, nil)
	mocks.tickets.On("GetByTicketID", mock.Anything, "GT-abc-def").
		Return(&store.Ticket{ID: 11, TicketID: "GT-abc-def", UserID: 99}, nil)

	req := jsonRequest(t, http.MethodGet, "/api/games/tickets/GT-abc-def", nil)
	req.Header.Set("Authorization", bearerToken(t, app, user))

	rr := executeRequest(app, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
}
