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

func TestRegisterUser_DuplicateEmail(t *testing.T) {
	mocks, st := newMockStores()
	app := newTestApplication(t, st)

	mocks.users.On("Create", mock.Anything, mock.Anything).Return(store.ErrDuplicateEmail)

	payload := map[string]any{
		"first_name": "Asha",
		"last_name":  "Rai",
		"email":      "asha@example.com",
		"phone":      "9800000000",
		"password":   "secret123",
		"user_type":  "Player",
	}
	req := jsonRequest(t, http.MethodPost, "/api/auth/register", payload)

	rr := executeRequest(app, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	mocks.users.AssertNotCalled(t, "SetRefreshToken", mock.Anything, mock.Anything, mock.Anything)
}

func TestRegisterUser_UnknownUserType(t *testing.T) {
	mocks, st := newMockStores()
	app := newTestApplication(t, st)

	payload := map[string]any{
		"first_name": "Asha",
		"last_name":  "Rai",
		"email":      "asha@example.com",
		"phone":      "9800000000",
		"password":   "secret123",
		"user_type":  "Referee",
	}
	req := jsonRequest(t, http.MethodPost, "/api/auth/register", payload)

	rr := executeRequest(app, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	mocks.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegisterUser_Success(t *testing.T) {
	mocks, st := newMockStores()
	app := newTestApplication(t, st)

	mocks.users.On("Create", mock.Anything, mock.MatchedBy(func(u *store.User) bool {
		u.ID = 7
		return u.Email == "asha@example.com" && u.UserType == "Player"
	})).Return(nil)
	mocks.users.On("SetRefreshToken", mock.Anything, int64(7), mock.Anything).Return(nil)

	payload := map[string]any{
		"first_name": "Asha",
		"last_name":  "Rai",
		"email":      "asha@example.com",
		"phone":      "9800000000",
		"password":   "secret123",
		"user_type":  "Player",
	}
	req := jsonRequest(t, http.MethodPost, "/api/auth/register", payload)

	rr := executeRequest(app, req)

	assert.Equal(t, http.StatusCreated, rr.Code)

	var resp struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
}

func TestLogin_WrongPassword(t *testing.T) {
	mocks, st := newMockStores()
	app := newTestApplication(t, st)

	user := testUser(7)
	require.NoError(t, user.Password.Set("right-password"))

	mocks.users.On("GetByEmail", mock.Anything, "asha@example.com").Return(user, nil)

	payload := map[string]any{"email": "asha@example.com", "password": "wrong-password"}
	req := jsonRequest(t, http.MethodPost, "/api/auth/login", payload)

	rr := executeRequest(app, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	mocks.users.AssertNotCalled(t, "SetRefreshToken", mock.Anything, mock.Anything, mock.Anything)
}

func TestLogin_UnknownEmail(t *testing.T) {
	mocks, st := newMockStores()
	app := newTestApplication(t, st)

	mocks.users.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, store.ErrNotFound)

	payload := map[string]any{"email": "ghost@example.com", "password": "whatever1"}
	req := jsonRequest(t, http.MethodPost, "/api/auth/login", payload)

	rr := executeRequest(app, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	_, st := newMockStores()
	app := newTestApplication(t, st)

	req := jsonRequest(t, http.MethodGet, "/api/auth/me", nil)

	rr := executeRequest(app, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRefreshToken(t *testing.T) {
	mocks, st := newMockStores()
	app := newTestApplication(t, st)
	user := testUser(7)

	_, refresh, err := app.authenticator.GenerateTokens(user.ID, user.UserType)
	require.NoError(t, err)

	mocks.users.On("GetByID", mock.Anything, int64(7)).Return(user, nil)
	mocks.users.On("GetRefreshToken", mock.Anything, int64(7)).Return(refresh, nil)
	mocks.users.On("SetRefreshToken", mock.Anything, int64(7), mock.Anything).Return(nil)

	payload := map[string]any{"refresh_token": refresh}
	req := jsonRequest(t, http.MethodPost, "/api/auth/refresh", payload)

	rr := executeRequest(app, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.AccessToken)
}

func TestRefreshToken_RotatedOut(t *testing.T) {
	mocks, st := newMockStores()
	app := newTestApplication(t, st)
	user := testUser(7)

	// A valid signature that is no longer the token on record.
	_, oldRefresh, err := app.authenticator.GenerateTokens(user.ID, user.UserType)
	require.NoError(t, err)

	mocks.users.On("GetByID", mock.Anything, int64(7)).Return(user, nil)
	mocks.users.On("GetRefreshToken", mock.Anything, int64(7)).Return("rotated-to-a-newer-token", nil)

	payload := map[string]any{"refresh_token": oldRefresh}
	req := jsonRequest(t, http.MethodPost, "/api/auth/refresh", payload)

	rr := executeRequest(app, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	mocks.users.AssertNotCalled(t, "SetRefreshToken", mock.Anything, mock.Anything, mock.Anything)
}

func TestRefreshToken_Revoked(t *testing.T) {
	mocks, st := newMockStores()
	app := newTestApplication(t, st)
	user := testUser(7)

	_, refresh, err := app.authenticator.GenerateTokens(user.ID, user.UserType)
	require.NoError(t, err)

	mocks.users.On("GetByID", mock.Anything, int64(7)).Return(user, nil)
	mocks.users.On("GetRefreshToken", mock.Anything, int64(7)).Return("", nil)

	payload := map[string]any{"refresh_token": refresh}
	req := jsonRequest(t, http.MethodPost, "/api/auth/refresh", payload)

	rr := executeRequest(app, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
