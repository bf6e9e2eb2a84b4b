package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"skillmatch/internal/notifications"
	"skillmatch/internal/store"

	"github.com/go-chi/chi/v5"
)

type CreateBookingPayload struct {
	VenueID      int64   `json:"venue_id" validate:"required"`
	BookingDate  string  `json:"booking_date" validate:"required"` // 2006-01-02
	StartTime    string  `json:"start_time" validate:"required"`   // 15:04
	EndTime      string  `json:"end_time" validate:"required"`     // 15:04
	Duration     float64 `json:"duration" validate:"required,gt=0"`
	ContactPhone *string `json:"contact_phone" validate:"omitempty,max=15"`
	Notes        *string `json:"notes" validate:"omitempty,max=1000"`
}

type UpdateBookingStatusPayload struct {
	Status string `json:"status" validate:"required,oneof=Confirmed Cancelled Completed"`
}

// bookingTransitions is the allowed status machine:
// Pending -> Confirmed | Cancelled, Confirmed -> Completed | Cancelled.
var bookingTransitions = map[string][]string{
	store.BookingStatusPending:   {store.BookingStatusConfirmed, store.BookingStatusCancelled},
	store.BookingStatusConfirmed: {store.BookingStatusCompleted, store.BookingStatusCancelled},
}

func validBookingTransition(from, to string) bool {
	for _, allowed := range bookingTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// CreateBooking godoc
//
//	@Summary		Creates a booking
//	@Description	Reserves a time slot; total cost is the venue's price per hour times the duration, and the duration must agree with the time range
//	@Tags			bookings
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		CreateBookingPayload		true	"Booking details"
//	@Success		201		{object}	map[string]any				"Booking created"
//	@Failure		400		{object}	ErrorBadRequestResponse		"Bad request"
//	@Failure		404		{object}	ErrorBadRequestResponse		"Venue not found"
//	@Failure		500		{object}	ErrorInternalServerResponse	"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/bookings [post]
func (app *application) createBookingHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	var payload CreateBookingPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	bookingDate, err := time.Parse("2006-01-02", payload.BookingDate)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid booking_date, expected YYYY-MM-DD"))
		return
	}

	start, err := time.Parse("15:04", payload.StartTime)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid start_time, expected HH:MM"))
		return
	}
	end, err := time.Parse("15:04", payload.EndTime)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid end_time, expected HH:MM"))
		return
	}
	if !end.After(start) {
		app.badRequestResponse(w, r, fmt.Errorf("end_time must be after start_time"))
		return
	}

	// The claimed duration has to match the time range, within a minute,
	// so a client cannot under-pay by misreporting it.
	rangeMinutes := end.Sub(start).Minutes()
	claimedMinutes := payload.Duration * 60
	if math.Abs(rangeMinutes-claimedMinutes) > 1 {
		app.badRequestResponse(w, r, fmt.Errorf("duration does not match the booking time range"))
		return
	}

	venue, err := app.store.Venues.GetByID(r.Context(), payload.VenueID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	booking := &store.Booking{
		VenueID:      venue.ID,
		UserID:       user.ID,
		BookingDate:  bookingDate,
		StartTime:    payload.StartTime,
		EndTime:      payload.EndTime,
		Duration:     payload.Duration,
		TotalCost:    venue.PricePerHour * payload.Duration,
		ContactPhone: payload.ContactPhone,
		Notes:        payload.Notes,
	}

	if err := app.store.Bookings.Create(r.Context(), booking); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := notifications.SendBookingNotification(ctx, app.push, app.store, venue.ManagerID, notifications.BookingCreated, booking.ID); err != nil {
			app.logger.Warnw("booking push notification failed", "booking_id", booking.ID, "error", err)
		}
	}()

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Booking created successfully",
		"booking": booking,
	})
}

// GetBooking godoc
//
//	@Summary		Fetches a booking
//	@Description	Only the booking owner or the venue manager may view it
//	@Tags			bookings
//	@Produce		json
//	@Param			bookingID	path		int							true	"Booking ID"
//	@Success		200			{object}	map[string]any				"Booking"
//	@Failure		403			{object}	ErrorBadRequestResponse		"Forbidden"
//	@Failure		404			{object}	ErrorBadRequestResponse		"Not found"
//	@Failure		500			{object}	ErrorInternalServerResponse	"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/bookings/{bookingID} [get]
func (app *application) getBookingHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	bookingID, err := strconv.ParseInt(chi.URLParam(r, "bookingID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	booking, err := app.store.Bookings.GetByID(r.Context(), bookingID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if booking.UserID != user.ID {
		venue, err := app.store.Venues.GetByID(r.Context(), booking.VenueID)
		if err != nil {
			app.internalServerError(w, r, err)
			return
		}
		if venue.ManagerID != user.ID {
			app.forbiddenResponse(w, r)
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Booking fetched successfully",
		"booking": booking,
	})
}

// GetUserBookings godoc
//
//	@Summary		Lists the current user's bookings
//	@Tags			bookings
//	@Produce		json
//	@Success		200	{object}	map[string]any				"Bookings"
//	@Failure		500	{object}	ErrorInternalServerResponse	"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/bookings/user [get]
func (app *application) getUserBookingsHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	bookings, err := app.store.Bookings.GetByUser(r.Context(), user.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	if bookings == nil {
		bookings = []store.UserBooking{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "Bookings fetched successfully",
		"bookings": bookings,
		"count":    len(bookings),
	})
}

// GetVenueBookings godoc
//
//	@Summary		Lists a venue's bookings
//	@Description	Manager-only view of every booking against the venue
//	@Tags			bookings
//	@Produce		json
//	@Param			venueID	path		int							true	"Venue ID"
//	@Success		200		{object}	map[string]any				"Bookings"
//	@Failure		403		{object}	ErrorBadRequestResponse		"Forbidden"
//	@Failure		404		{object}	ErrorBadRequestResponse		"Not found"
//	@Failure		500		{object}	ErrorInternalServerResponse	"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/bookings/venue/{venueID} [get]
func (app *application) getVenueBookingsHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	venueID, err := strconv.ParseInt(chi.URLParam(r, "venueID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	venue, err := app.store.Venues.GetByID(r.Context(), venueID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if venue.ManagerID != user.ID {
		app.forbiddenResponse(w, r)
		return
	}

	bookings, err := app.store.Bookings.GetByVenue(r.Context(), venueID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	if bookings == nil {
		bookings = []store.VenueBooking{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "Venue bookings fetched successfully",
		"bookings": bookings,
		"count":    len(bookings),
	})
}

// UpdateBookingStatus godoc
//
//	@Summary		Updates a booking's status
//	@Description	Owner-only; transitions follow Pending -> Confirmed | Cancelled -> Completed
//	@Tags			bookings
//	@Accept			json
//	@Produce		json
//	@Param			bookingID	path		int							true	"Booking ID"
//	@Param			payload		body		UpdateBookingStatusPayload	true	"New status"
//	@Success		200			{object}	map[string]any				"Updated booking"
//	@Failure		400			{object}	ErrorBadRequestResponse		"Invalid transition"
//	@Failure		403			{object}	ErrorBadRequestResponse		"Forbidden"
//	@Failure		404			{object}	ErrorBadRequestResponse		"Not found"
//	@Failure		500			{object}	ErrorInternalServerResponse	"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/bookings/{bookingID}/status [put]
func (app *application) updateBookingStatusHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	bookingID, err := strconv.ParseInt(chi.URLParam(r, "bookingID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var payload UpdateBookingStatusPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	booking, err := app.store.Bookings.GetByID(r.Context(), bookingID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if booking.UserID != user.ID {
		app.forbiddenResponse(w, r)
		return
	}

	if !validBookingTransition(booking.Status, payload.Status) {
		app.badRequestResponse(w, r, fmt.Errorf("cannot change booking status from %s to %s", booking.Status, payload.Status))
		return
	}

	if err := app.store.Bookings.UpdateStatus(r.Context(), bookingID, payload.Status); err != nil {
		app.internalServerError(w, r, err)
		return
	}
	booking.Status = payload.Status

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Booking status updated successfully",
		"booking": booking,
	})
}

// CancelBooking godoc
//
//	@Summary		Cancels a booking
//	@Description	Owner-only; marks the booking Cancelled
//	@Tags			bookings
//	@Produce		json
//	@Param			bookingID	path		int							true	"Booking ID"
//	@Success		200			{object}	map[string]any				"Cancelled"
//	@Failure		400			{object}	ErrorBadRequestResponse		"Already terminal"
//	@Failure		403			{object}	ErrorBadRequestResponse		"Forbidden"
//	@Failure		404			{object}	ErrorBadRequestResponse		"Not found"
//	@Failure		500			{object}	ErrorInternalServerResponse	"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/bookings/{bookingID} [delete]
func (app *application) cancelBookingHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	bookingID, err := strconv.ParseInt(chi.URLParam(r, "bookingID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	booking, err := app.store.Bookings.GetByID(r.Context(), bookingID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if booking.UserID != user.ID {
		app.forbiddenResponse(w, r)
		return
	}

	if !validBookingTransition(booking.Status, store.BookingStatusCancelled) {
		app.badRequestResponse(w, r, fmt.Errorf("booking is already %s", booking.Status))
		return
	}

	if err := app.store.Bookings.UpdateStatus(r.Context(), bookingID, store.BookingStatusCancelled); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Booking cancelled successfully",
	})
}
