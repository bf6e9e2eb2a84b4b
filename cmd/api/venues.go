package main

import (
	"errors"
	"net/http"
	"strconv"

	"skillmatch/internal/params"
	"skillmatch/internal/store"

	"github.com/go-chi/chi/v5"
)

type CreateVenuePayload struct {
	Name           string                `json:"name" validate:"required,max=255"`
	Description    *string               `json:"description" validate:"omitempty,max=2000"`
	Type           string                `json:"type" validate:"required,oneof=Stadium Gym Court Field Pool Track Other"`
	Address        *string               `json:"address" validate:"omitempty,max=255"`
	City           *string               `json:"city" validate:"omitempty,max=100"`
	State          *string               `json:"state" validate:"omitempty,max=100"`
	Longitude      float64               `json:"longitude" validate:"required"`
	Latitude       float64               `json:"latitude" validate:"required"`
	ContactEmail   *string               `json:"contact_email" validate:"omitempty,email"`
	ContactPhone   *string               `json:"contact_phone" validate:"omitempty,max=15"`
	Facilities     []string              `json:"facilities"`
	Amenities      []string              `json:"amenities"`
	Capacity       *int                  `json:"capacity" validate:"omitempty,min=1"`
	PricePerHour   float64               `json:"price_per_hour" validate:"required,min=0"`
	OperatingHours *store.OperatingHours `json:"operating_hours"`
}

type UpdateVenuePayload struct {
	Name           *string               `json:"name" validate:"omitempty,max=255"`
	Description    *string               `json:"description" validate:"omitempty,max=2000"`
	Type           *string               `json:"type" validate:"omitempty,oneof=Stadium Gym Court Field Pool Track Other"`
	Address        *string               `json:"address" validate:"omitempty,max=255"`
	City           *string               `json:"city" validate:"omitempty,max=100"`
	State          *string               `json:"state" validate:"omitempty,max=100"`
	ContactEmail   *string               `json:"contact_email" validate:"omitempty,email"`
	ContactPhone   *string               `json:"contact_phone" validate:"omitempty,max=15"`
	Facilities     *[]string             `json:"facilities"`
	Amenities      *[]string             `json:"amenities"`
	Capacity       *int                  `json:"capacity" validate:"omitempty,min=1"`
	PricePerHour   *float64              `json:"price_per_hour" validate:"omitempty,min=0"`
	OperatingHours *store.OperatingHours `json:"operating_hours"`
}

// CreateVenue godoc
//
//	@Summary		Creates a venue
//	@Description	Registers a venue managed by the current user
//	@Tags			venues
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		CreateVenuePayload			true	"Venue details"
//	@Success		201		{object}	map[string]any				"Venue created"
//	@Failure		400		{object}	ErrorBadRequestResponse		"Bad request"
//	@Failure		500		{object}	ErrorInternalServerResponse	"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/venues [post]
func (app *application) createVenueHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	var payload CreateVenuePayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	venue := &store.Venue{
		ManagerID:      user.ID,
		Name:           payload.Name,
		Description:    payload.Description,
		Type:           payload.Type,
		Address:        payload.Address,
		City:           payload.City,
		State:          payload.State,
		Longitude:      payload.Longitude,
		Latitude:       payload.Latitude,
		ContactEmail:   payload.ContactEmail,
		ContactPhone:   payload.ContactPhone,
		Facilities:     payload.Facilities,
		Amenities:      payload.Amenities,
		Capacity:       payload.Capacity,
		PricePerHour:   payload.PricePerHour,
		OperatingHours: payload.OperatingHours,
	}

	if err := app.store.Venues.Create(r.Context(), venue); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Venue created successfully",
		"venue":   venue,
	})
}

// ListVenues godoc
//
//	@Summary		Lists venues
//	@Description	Lists active venues, optionally filtered by type and city
//	@Tags			venues
//	@Produce		json
//	@Param			type	query		string						false	"Venue type"
//	@Param			city	query		string						false	"City (substring, case-insensitive)"
//	@Param			limit	query		int							false	"Page size (max 50)"
//	@Param			page	query		int							false	"Page number"
//	@Success		200		{object}	map[string]any				"Venues"
//	@Failure		500		{object}	ErrorInternalServerResponse	"Internal Server Error"
//	@Router			/venues [get]
func (app *application) listVenuesHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	pg := params.ParsePagination(q)

	filter := store.VenueFilter{
		Type:   q.Get("type"),
		City:   q.Get("city"),
		Limit:  pg.Limit,
		Offset: pg.Offset,
	}

	venues, total, err := app.store.Venues.List(r.Context(), filter)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	if venues == nil {
		venues = []store.Venue{}
	}
	pg.ComputeMeta(total)

	writeJSON(w, http.StatusOK, map[string]any{
		"message":    "Venues fetched successfully",
		"venues":     venues,
		"pagination": pg,
	})
}

// GetVenue godoc
//
//	@Summary		Fetches a venue
//	@Tags			venues
//	@Produce		json
//	@Param			venueID	path		int							true	"Venue ID"
//	@Success		200		{object}	map[string]any				"Venue"
//	@Failure		404		{object}	ErrorBadRequestResponse		"Not found"
//	@Failure		500		{object}	ErrorInternalServerResponse	"Internal Server Error"
//	@Router			/venues/{venueID} [get]
func (app *application) getVenueHandler(w http.ResponseWriter, r *http.Request) {
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

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Venue fetched successfully",
		"venue":   venue,
	})
}

// NearbyVenues godoc
//
//	@Summary		Finds nearby venues
//	@Description	Geospatial proximity search over active venues
//	@Tags			venues
//	@Produce		json
//	@Param			longitude		query		number						true	"Longitude"
//	@Param			latitude		query		number						true	"Latitude"
//	@Param			max_distance	query		int							false	"Max distance in meters (default 10000)"
//	@Param			limit			query		int							false	"Max results"
//	@Success		200				{object}	map[string]any				"Nearby venues"
//	@Failure		400				{object}	ErrorBadRequestResponse		"Bad request"
//	@Failure		500				{object}	ErrorInternalServerResponse	"Internal Server Error"
//	@Router			/venues/nearby [get]
func (app *application) nearbyVenuesHandler(w http.ResponseWriter, r *http.Request) {
	longitude, latitude, maxDistance, limit, err := parseNearbyParams(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	venues, err := app.store.Venues.GetNearby(r.Context(), longitude, latitude, maxDistance, limit)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	if venues == nil {
		venues = []store.Venue{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Nearby venues fetched successfully",
		"venues":  venues,
		"count":   len(venues),
	})
}

// UpdateVenue godoc
//
//	@Summary		Updates a venue
//	@Description	Partial update; only the venue's manager may update it
//	@Tags			venues
//	@Accept			json
//	@Produce		json
//	@Param			venueID	path		int							true	"Venue ID"
//	@Param			payload	body		UpdateVenuePayload			true	"Fields to update"
//	@Success		200		{object}	map[string]any				"Updated venue"
//	@Failure		400		{object}	ErrorBadRequestResponse		"Bad request"
//	@Failure		403		{object}	ErrorBadRequestResponse		"Forbidden"
//	@Failure		404		{object}	ErrorBadRequestResponse		"Not found"
//	@Failure		500		{object}	ErrorInternalServerResponse	"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/venues/{venueID} [put]
func (app *application) updateVenueHandler(w http.ResponseWriter, r *http.Request) {
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

	var payload UpdateVenuePayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	updates := map[string]interface{}{}
	if payload.Name != nil {
		updates["name"] = *payload.Name
	}
	if payload.Description != nil {
		updates["description"] = *payload.Description
	}
	if payload.Type != nil {
		updates["type"] = *payload.Type
	}
	if payload.Address != nil {
		updates["address"] = *payload.Address
	}
	if payload.City != nil {
		updates["city"] = *payload.City
	}
	if payload.State != nil {
		updates["state"] = *payload.State
	}
	if payload.ContactEmail != nil {
		updates["contact_email"] = *payload.ContactEmail
	}
	if payload.ContactPhone != nil {
		updates["contact_phone"] = *payload.ContactPhone
	}
	if payload.Facilities != nil {
		updates["facilities"] = *payload.Facilities
	}
	if payload.Amenities != nil {
		updates["amenities"] = *payload.Amenities
	}
	if payload.Capacity != nil {
		updates["capacity"] = *payload.Capacity
	}
	if payload.PricePerHour != nil {
		updates["price_per_hour"] = *payload.PricePerHour
	}
	if payload.OperatingHours != nil {
		updates["operating_hours"] = payload.OperatingHours
	}

	if err := app.store.Venues.Update(r.Context(), venueID, updates); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	updated, err := app.store.Venues.GetByID(r.Context(), venueID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Venue updated successfully",
		"venue":   updated,
	})
}

// DeleteVenue godoc
//
//	@Summary		Deactivates a venue
//	@Description	Soft delete; the venue disappears from listings but existing bookings keep their references
//	@Tags			venues
//	@Produce		json
//	@Param			venueID	path		int							true	"Venue ID"
//	@Success		200		{object}	map[string]any				"Deactivated"
//	@Failure		403		{object}	ErrorBadRequestResponse		"Forbidden"
//	@Failure		404		{object}	ErrorBadRequestResponse		"Not found"
//	@Failure		500		{object}	ErrorInternalServerResponse	"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/venues/{venueID} [delete]
func (app *application) deleteVenueHandler(w http.ResponseWriter, r *http.Request) {
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

	if err := app.store.Venues.Deactivate(r.Context(), venueID); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Venue deactivated successfully",
	})
}
