package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"skillmatch/internal/notifications"
	"skillmatch/internal/params"
	"skillmatch/internal/store"

	"github.com/go-chi/chi/v5"
)

type CreateGamePayload struct {
	Title       string  `json:"title" validate:"required,max=255"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	SportType   string  `json:"sport_type" validate:"required,max=50"`
	SkillLevel  string  `json:"skill_level" validate:"omitempty,oneof=Beginner Intermediate Advanced Mixed"`
	VenueID     int64   `json:"venue_id" validate:"required"`
	Date        string  `json:"date" validate:"required"`       // 2006-01-02
	StartTime   string  `json:"start_time" validate:"required"` // 15:04
	EndTime     string  `json:"end_time" validate:"required"`   // 15:04
	MaxPlayers  int     `json:"max_players" validate:"required,min=2,max=200"`
	EventType   string  `json:"event_type" validate:"omitempty,oneof=Friendly Tournament Training"`
	Cost        float64 `json:"cost" validate:"omitempty,min=0"`
}

type UpdateGameStatusPayload struct {
	Status string `json:"status" validate:"required,oneof=Ongoing Completed Cancelled"`
}

// gameTransitions: Upcoming -> Ongoing -> Completed, Cancelled only from Upcoming.
var gameTransitions = map[string][]string{
	store.GameStatusUpcoming: {store.GameStatusOngoing, store.GameStatusCancelled},
	store.GameStatusOngoing:  {store.GameStatusCompleted},
}

func validGameTransition(from, to string) bool {
	for _, allowed := range gameTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// CreateGame godoc
//
//	@Summary		Creates a game
//	@Description	Schedules a game at a venue with the current user as organizer
//	@Tags			games
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		CreateGamePayload			true	"Game details"
//	@Success		201		{object}	map[string]any				"Game created"
//	@Failure		400		{object}	ErrorBadRequestResponse		"Bad request"
//	@Failure		404		{object}	ErrorBadRequestResponse		"Venue not found"
//	@Failure		500		{object}	ErrorInternalServerResponse	"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/games [post]
func (app *application) createGameHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	var payload CreateGamePayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	date, err := time.Parse("2006-01-02", payload.Date)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid date, expected YYYY-MM-DD"))
		return
	}

	if _, err := app.store.Venues.GetByID(r.Context(), payload.VenueID); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	game := &store.Game{
		Title:       payload.Title,
		Description: payload.Description,
		SportType:   payload.SportType,
		SkillLevel:  payload.SkillLevel,
		VenueID:     payload.VenueID,
		OrganizerID: user.ID,
		Date:        date,
		StartTime:   payload.StartTime,
		EndTime:     payload.EndTime,
		MaxPlayers:  payload.MaxPlayers,
		EventType:   payload.EventType,
		Cost:        payload.Cost,
	}

	if err := app.store.Games.Create(r.Context(), game); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Game created successfully",
		"game":    game,
	})
}

// ListGames godoc
//
//	@Summary		Lists games
//	@Description	Lists games ordered by date, optionally filtered by sport, skill level, city and status
//	@Tags			games
//	@Produce		json
//	@Param			sport_type	query		string						false	"Sport type"
//	@Param			skill_level	query		string						false	"Skill level"
//	@Param			city		query		string						false	"Venue city"
//	@Param			status		query		string						false	"Game status"
//	@Param			limit		query		int							false	"Page size (max 50)"
//	@Param			page		query		int							false	"Page number"
//	@Success		200			{object}	map[string]any				"Games"
//	@Failure		500			{object}	ErrorInternalServerResponse	"Internal Server Error"
//	@Router			/games [get]
func (app *application) listGamesHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	pg := params.ParsePagination(q)

	filter := store.GameFilter{
		SportType:  q.Get("sport_type"),
		SkillLevel: q.Get("skill_level"),
		City:       q.Get("city"),
		Status:     q.Get("status"),
		Limit:      pg.Limit,
		Offset:     pg.Offset,
	}

	games, total, err := app.store.Games.List(r.Context(), filter)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	if games == nil {
		games = []store.Game{}
	}
	pg.ComputeMeta(total)

	writeJSON(w, http.StatusOK, map[string]any{
		"message":    "Games fetched successfully",
		"games":      games,
		"pagination": pg,
	})
}

// GetGame godoc
//
//	@Summary		Fetches a game
//	@Description	Returns the game with venue/organizer fields and the registered players list
//	@Tags			games
//	@Produce		json
//	@Param			gameID	path		int							true	"Game ID"
//	@Success		200		{object}	map[string]any				"Game"
//	@Failure		404		{object}	ErrorBadRequestResponse		"Not found"
//	@Failure		500		{object}	ErrorInternalServerResponse	"Internal Server Error"
//	@Router			/games/{gameID} [get]
func (app *application) getGameHandler(w http.ResponseWriter, r *http.Request) {
	gameID, err := strconv.ParseInt(chi.URLParam(r, "gameID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	game, err := app.store.Games.GetByID(r.Context(), gameID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	players, err := app.store.Games.GetPlayers(r.Context(), gameID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	game.RegisteredPlayers = players

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Game fetched successfully",
		"game":    game,
	})
}

// GetUserGames godoc
//
//	@Summary		Lists games organized by the current user
//	@Tags			games
//	@Produce		json
//	@Success		200	{object}	map[string]any				"Games"
//	@Failure		500	{object}	ErrorInternalServerResponse	"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/games/user/games [get]
func (app *application) getUserGamesHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	games, err := app.store.Games.GetByOrganizer(r.Context(), user.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	if games == nil {
		games = []store.Game{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Games fetched successfully",
		"games":   games,
		"count":   len(games),
	})
}

// UpdateGameStatus godoc
//
//	@Summary		Updates a game's status
//	@Description	Organizer-only; Upcoming -> Ongoing -> Completed, Cancelled only from Upcoming. Cancelling notifies registered players
//	@Tags			games
//	@Accept			json
//	@Produce		json
//	@Param			gameID	path		int							true	"Game ID"
//	@Param			payload	body		UpdateGameStatusPayload		true	"New status"
//	@Success		200		{object}	map[string]any				"Updated game"
//	@Failure		400		{object}	ErrorBadRequestResponse		"Invalid transition"
//	@Failure		403		{object}	ErrorBadRequestResponse		"Forbidden"
//	@Failure		404		{object}	ErrorBadRequestResponse		"Not found"
//	@Failure		500		{object}	ErrorInternalServerResponse	"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/games/{gameID}/status [put]
func (app *application) updateGameStatusHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	gameID, err := strconv.ParseInt(chi.URLParam(r, "gameID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var payload UpdateGameStatusPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	game, err := app.store.Games.GetByID(r.Context(), gameID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if game.OrganizerID != user.ID {
		app.forbiddenResponse(w, r)
		return
	}

	if !validGameTransition(game.Status, payload.Status) {
		app.badRequestResponse(w, r, fmt.Errorf("cannot change game status from %s to %s", game.Status, payload.Status))
		return
	}

	if err := app.store.Games.UpdateStatus(r.Context(), gameID, payload.Status); err != nil {
		app.internalServerError(w, r, err)
		return
	}
	game.Status = payload.Status

	if payload.Status == store.GameStatusCancelled {
		players, err := app.store.Games.GetPlayers(r.Context(), gameID)
		if err != nil {
			app.logger.Warnw("could not load players for cancellation push", "game_id", gameID, "error", err)
		} else if len(players) > 0 {
			playerIDs := make([]int64, 0, len(players))
			for _, p := range players {
				playerIDs = append(playerIDs, p.UserID)
			}
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := notifications.SendCancelGameToPlayers(ctx, app.push, app.store, gameID, playerIDs); err != nil {
					app.logger.Warnw("game cancellation push failed", "game_id", gameID, "error", err)
				}
			}()
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Game status updated successfully",
		"game":    game,
	})
}

// RegisterForGame godoc
//
//	@Summary		Registers for a game
//	@Description	Issues a ticket for the current user. Retrying is safe: an existing active ticket is returned with already_registered=true. Full games are rejected
//	@Tags			games
//	@Produce		json
//	@Param			gameID	path		int							true	"Game ID"
//	@Success		200		{object}	map[string]any				"Already registered, existing ticket returned"
//	@Success		201		{object}	map[string]any				"Registered, new ticket issued"
//	@Failure		400		{object}	ErrorBadRequestResponse		"Game is full or duplicate registration"
//	@Failure		404		{object}	ErrorBadRequestResponse		"Not found"
//	@Failure		500		{object}	ErrorInternalServerResponse	"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/games/{gameID}/register [post]
func (app *application) registerForGameHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	gameID, err := strconv.ParseInt(chi.URLParam(r, "gameID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	// Idempotent retry: an existing active ticket is returned as-is.
	existing, err := app.store.Tickets.GetByGameAndUser(r.Context(), gameID, user.ID)
	if err == nil {
		game, gerr := app.store.Games.GetByID(r.Context(), gameID)
		if gerr != nil {
			app.internalServerError(w, r, gerr)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"message":            "Already registered for this game",
			"already_registered": true,
			"game":               game,
			"ticket":             existing,
		})
		return
	}
	if !errors.Is(err, store.ErrNotFound) {
		app.internalServerError(w, r, err)
		return
	}

	ticketID, err := app.tickets.Generate()
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	tk := &store.Ticket{
		TicketID:    ticketID,
		PlayerName:  user.FirstName + " " + user.LastName,
		PlayerEmail: user.Email,
		PlayerPhone: user.Phone,
	}

	if err := app.store.Games.Register(r.Context(), gameID, user.ID, tk); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		case errors.Is(err, store.ErrAlreadyRegistered):
			app.badRequestResponse(w, r, err)
		case errors.Is(err, store.ErrGameFull):
			app.badRequestResponse(w, r, fmt.Errorf("Game is full"))
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	game, err := app.store.Games.GetByID(r.Context(), gameID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	players, err := app.store.Games.GetPlayers(r.Context(), gameID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	game.RegisteredPlayers = players

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := notifications.SendPlayerRegisteredToOrganizer(ctx, app.push, app.store, game.OrganizerID, gameID, tk.PlayerName); err != nil {
			app.logger.Warnw("registration push failed", "game_id", gameID, "error", err)
		}
	}()

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":            "Registered for game successfully",
		"already_registered": false,
		"game":               game,
		"ticket":             tk,
	})
}

// CancelRegistration godoc
//
//	@Summary		Cancels a game registration
//	@Description	Removes the current user from the players list and marks the active ticket Cancelled
//	@Tags			games
//	@Produce		json
//	@Param			gameID	path		int							true	"Game ID"
//	@Success		200		{object}	map[string]any				"Registration cancelled"
//	@Failure		404		{object}	ErrorBadRequestResponse		"Not registered"
//	@Failure		500		{object}	ErrorInternalServerResponse	"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/games/{gameID}/cancel-registration [delete]
func (app *application) cancelRegistrationHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	gameID, err := strconv.ParseInt(chi.URLParam(r, "gameID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.store.Games.CancelRegistration(r.Context(), gameID, user.ID); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, fmt.Errorf("not registered for this game"))
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Registration cancelled successfully",
	})
}

// GetUserTickets godoc
//
//	@Summary		Lists the current user's tickets
//	@Tags			games
//	@Produce		json
//	@Success		200	{object}	map[string]any				"Tickets"
//	@Failure		500	{object}	ErrorInternalServerResponse	"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/games/user/tickets [get]
func (app *application) getUserTicketsHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	tickets, err := app.store.Tickets.GetByUser(r.Context(), user.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	if tickets == nil {
		tickets = []store.Ticket{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Tickets fetched successfully",
		"tickets": tickets,
		"count":   len(tickets),
	})
}

// GetTicket godoc
//
//	@Summary		Fetches a ticket
//	@Description	Only the ticket's owner may view it
//	@Tags			games
//	@Produce		json
//	@Param			ticketID	path		string						true	"Ticket ID"
//	@Success		200			{object}	map[string]any				"Ticket"
//	@Failure		403			{object}	ErrorBadRequestResponse		"Forbidden"
//	@Failure		404			{object}	ErrorBadRequestResponse		"Not found"
//	@Failure		500			{object}	ErrorInternalServerResponse	"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/games/tickets/{ticketID} [get]
func (app *application) getTicketHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	ticketID := chi.URLParam(r, "ticketID")
	if ticketID == "" {
		app.badRequestResponse(w, r, fmt.Errorf("missing ticket ID"))
		return
	}

	tk, err := app.store.Tickets.GetByTicketID(r.Context(), ticketID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if tk.UserID != user.ID {
		app.forbiddenResponse(w, r)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Ticket fetched successfully",
		"ticket":  tk,
	})
}
