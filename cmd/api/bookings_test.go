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

func TestCreateBooking_ComputesTotalCost(t *testing.T) {
	mocks, st := newMockStores()
	app := newTestApplication(t, st)
	user := testUser(7)

	venue := &store.Venue{ID: 5, ManagerID: 3, Name: "Central Court", PricePerHour: 800, IsActive: true}

	mocks.users.On("GetByID", mock.Anything, int64(7)).Return(user, nil)
	mocks.venues.On("GetByID", mock.Anything, int64(5)).Return(venue, nil)
	mocks.bookings.On("Create", mock.Anything, mock.MatchedBy(func(b *store.Booking) bool {
		return b.VenueID == 5 && b.UserID == 7 && b.TotalCost == 1200 && b.Duration == 1.5
	})).Return(nil)
	mocks.pushTokens.On("GetTokensByUserIDs", mock.Anything, []int64{3}).
		Return(map[int64][]string{}, nil).Maybe()

	payload := map[string]any{
		"venue_id":     5,
		"booking_date": "2026-09-12",
		"start_time":   "18:00",
		"end_time":     "19:30",
		"duration":     1.5,
	}
	req := jsonRequest(t, http.MethodPost, "/api/bookings", payload)
	req.Header.Set("Authorization", bearerToken(t, app, user))

	rr := executeRequest(app, req)

	assert.Equal(t, http.StatusCreated, rr.Code)

	var resp struct {
		Booking struct {
			TotalCost float64 `json:"total_cost"`
			Status    string  `json:"status"`
		} `json:"booking"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, float64(1200), resp.Booking.TotalCost)
	mocks.bookings.AssertExpectations(t)
}

func TestCreateBooking_DurationMismatch(t *testing.T) {
	mocks, st := newMockStores()
	app := newTestApplication(t, st)
	user := testUser(7)

	mocks.users.On("GetByID", mock.Anything, int64(7)).Return(user, nil)

	payload := map[string]any{
		"venue_id":     5,
		"booking_date": "2026-09-12",
		"start_time":   "18:00",
		"end_time":     "19:30",
		"duration":     3.0,
	}
	req := jsonRequest(t, http.MethodPost, "/api/bookings", payload)
	req.Header.Set("Authorization", bearerToken(t, app, user))

	rr := executeRequest(app, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	mocks.bookings.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateBooking_EndBeforeStart(t *testing.T) {
	mocks, st := newMockStores()
	app := newTestApplication(t, st)
	user := testUser(7)

	mocks.users.On("GetByID", mock.Anything, int64(7)).Return(user, nil)

	payload := map[string]any{
		"venue_id":     5,
		"booking_date": "2026-09-12",
		"start_time":   "19:30",
		"end_time":     "18:00",
		"duration":     1.5,
	}
	req := jsonRequest(t, http.MethodPost, "/api/bookings", payload)
	req.Header.Set("Authorization", bearerToken(t, app, user))

	rr := executeRequest(app, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUpdateBookingStatus_InvalidTransition(t *testing.T) {
	mocks, st := newMockStores()
	app := newTestApplication(t, st)
	user := testUser(7)

	booking := &store.Booking{ID: 9, VenueID: 5, UserID: 7, Status: store.BookingStatusCancelled}

	mocks.users.On("GetByID", mock.Anything, int64(7)).Return(user, nil)
	mocks.bookings.On("GetByID", mock.Anything, int64(9)).Return(booking, nil)

	req := jsonRequest(t, http.MethodPut, "/api/bookings/9/status", map[string]string{"status": "Confirmed"})
	req.Header.Set("Authorization", bearerToken(t, app, user))

	rr := executeRequest(app, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	mocks.bookings.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetVenueBookings_NotManager(t *testing.T) {
	mocks, st := newMockStores()
	app := newTestApplication(t, st)
	user := testUser(7)

	venue := &store.Venue{ID: 5, ManagerID: 3}

	mocks.users.On("GetByID", mock.Anything, int64(7)).Return(user, nil)
	mocks.venues.On("GetByID", mock.Anything, int64(5)).Return(venue, nil)

	req := jsonRequest(t, http.MethodGet, "/api/bookings/venue/5", nil)
	req.Header.Set("Authorization", bearerToken(t, app, user))

	rr := executeRequest(app, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	mocks.bookings.AssertNotCalled(t, "GetByVenue", mock.Anything, mock.Anything)
}

func TestCancelBooking_AlreadyCompleted(t *testing.T) {
	mocks, st := newMockStores()
	app := newTestApplication(t, st)
	user := testUser(7)

	booking := &store.Booking{ID: 9, VenueID: 5, UserID: 7, Status: store.BookingStatusCompleted}

	mocks.users.On("GetByID", mock.Anything, int64(7)).Return(user, nil)
	mocks.bookings.On("GetByID", mock.Anything, int64(9)).Return(booking, nil)

	req := jsonRequest(t, http.MethodDelete, "/api/bookings/9", nil)
	req.Header.Set("Authorization", bearerToken(t, app, user))

	rr := executeRequest(app, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
