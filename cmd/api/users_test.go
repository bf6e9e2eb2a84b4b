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

func TestSearchUsers_LimitCapped(t *testing.T) {
	mocks, st := newMockStores()
	app := newTestApplication(t, st)
	user := testUser(7)

	mocks.users.On("GetByID", mock.Anything, int64(7)).Return(user, nil)
	// 500 is over the cap, so the default wins.
	mocks.users.On("Search", mock.Anything, "Futsal", "", 20).Return([]store.User{}, nil)

	req := jsonRequest(t, http.MethodGet, "/api/users/search?skill=Futsal&limit=500", nil)
	req.Header.Set("Authorization", bearerToken(t, app, user))

	rr := executeRequest(app, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	mocks.users.AssertExpectations(t)
}

func TestUpdateProfile_PartialUpdate(t *testing.T) {
	mocks, st := newMockStores()
	app := newTestApplication(t, st)
	user := testUser(7)

	mocks.users.On("GetByID", mock.Anything, int64(7)).Return(user, nil)
	mocks.users.On("Update", mock.Anything, int64(7), mock.MatchedBy(func(updates map[string]interface{}) bool {
		_, hasBio := updates["bio"]
		_, hasCity := updates["city"]
		return hasBio && !hasCity
	})).Return(nil)

	payload := map[string]any{"bio": "Weekend futsal player"}
	req := jsonRequest(t, http.MethodPut, "/api/users/profile", payload)
	req.Header.Set("Authorization", bearerToken(t, app, user))

	rr := executeRequest(app, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	mocks.users.AssertExpectations(t)
}

func TestAddSkill_UnknownProficiency(t *testing.T) {
	mocks, st := newMockStores()
	app := newTestApplication(t, st)
	user := testUser(7)

	mocks.users.On("GetByID", mock.Anything, int64(7)).Return(user, nil)

	payload := map[string]any{"skill_name": "Futsal", "proficiency_level": "Legendary"}
	req := jsonRequest(t, http.MethodPost, "/api/users/skill", payload)
	req.Header.Set("Authorization", bearerToken(t, app, user))

	rr := executeRequest(app, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	mocks.users.AssertNotCalled(t, "AddSkill", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetUser_NotFound(t *testing.T) {
	mocks, st := newMockStores()
	app := newTestApplication(t, st)
	user := testUser(7)

	mocks.users.On("GetByID", mock.Anything, int64(7)).Return(user, nil)
	mocks.users.On("GetByID", mock.Anything, int64(404)).Return(nil, store.ErrNotFound)

	req := jsonRequest(t, http.MethodGet, "/api/users/404", nil)
	req.Header.Set("Authorization", bearerToken(t, app, user))

	rr := executeRequest(app, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSavePushToken(t *testing.T) {
	mocks, st := newMockStores()
	app := newTestApplication(t, st)
	user := testUser(7)

	mocks.users.On("GetByID", mock.Anything, int64(7)).Return(user, nil)
	mocks.pushTokens.On("AddOrUpdate", mock.Anything, int64(7), "ExponentPushToken[abc]", mock.Anything).Return(nil)

	payload := map[string]any{
		"token":       "ExponentPushToken[abc]",
		"device_info": map[string]string{"os": "ios"},
	}
	req := jsonRequest(t, http.MethodPost, "/api/users/push-token", payload)
	req.Header.Set("Authorization", bearerToken(t, app, user))

	rr := executeRequest(app, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	mocks.pushTokens.AssertExpectations(t)
}

func TestNearbyUsers(t *testing.T) {
	mocks, st := newMockStores()
	app := newTestApplication(t, st)
	user := testUser(7)

	mocks.users.On("GetByID", mock.Anything, int64(7)).Return(user, nil)
	mocks.users.On("GetNearby", mock.Anything, 85.324, 27.7172, 10000, 20).Return([]store.User{
		*testUser(3),
	}, nil)

	req := jsonRequest(t, http.MethodGet, "/api/users/nearby?longitude=85.324&latitude=27.7172", nil)
	req.Header.Set("Authorization", bearerToken(t, app, user))

	rr := executeRequest(app, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Users []store.User `json:"users"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Len(t, resp.Users, 1)
}
