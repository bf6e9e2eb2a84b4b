package main

import (
	"errors"
	"net/http"
	"strconv"

	"skillmatch/internal/store"

	"github.com/go-chi/chi/v5"
)

type SendMessagePayload struct {
	ReceiverID int64  `json:"receiver_id" validate:"required"`
	Text       string `json:"text" validate:"required,max=2000"`
}

// GetChatUsers godoc
//
//	@Summary		Lists users available to chat with
//	@Description	Everyone except the current user, for the contact picker
//	@Tags			chat
//	@Produce		json
//	@Success		200	{object}	map[string]any				"Users"
//	@Failure		500	{object}	ErrorInternalServerResponse	"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/chat/users [get]
func (app *application) getChatUsersHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	users, err := app.store.Users.ListExcept(r.Context(), user.ID, 100)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	if users == nil {
		users = []store.User{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Users fetched successfully",
		"users":   users,
	})
}

// GetConversations godoc
//
//	@Summary		Lists the current user's conversations
//	@Description	One entry per counterpart, carrying the most recent message
//	@Tags			chat
//	@Produce		json
//	@Success		200	{object}	map[string]any				"Conversations"
//	@Failure		500	{object}	ErrorInternalServerResponse	"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/chat/conversations [get]
func (app *application) getConversationsHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	conversations, err := app.store.Messages.GetConversations(r.Context(), user.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	if conversations == nil {
		conversations = []store.Conversation{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":       "Conversations fetched successfully",
		"conversations": conversations,
	})
}

// GetThread godoc
//
//	@Summary		Fetches the message history with another user
//	@Description	Both directions, oldest first
//	@Tags			chat
//	@Produce		json
//	@Param			userID	path		int							true	"Counterpart user ID"
//	@Success		200		{object}	map[string]any				"Messages"
//	@Failure		400		{object}	ErrorBadRequestResponse		"Bad request"
//	@Failure		500		{object}	ErrorInternalServerResponse	"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/chat/messages/{userID} [get]
func (app *application) getThreadHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	otherUserID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	messages, err := app.store.Messages.GetThread(r.Context(), user.ID, otherUserID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	if messages == nil {
		messages = []store.Message{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "Messages fetched successfully",
		"messages": messages,
	})
}

// SendMessage godoc
//
//	@Summary		Sends a direct message
//	@Description	Persists the message; socket delivery to the receiver is best-effort
//	@Tags			chat
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		SendMessagePayload			true	"Message"
//	@Success		201		{object}	map[string]any				"Message sent"
//	@Failure		400		{object}	ErrorBadRequestResponse		"Bad request"
//	@Failure		404		{object}	ErrorBadRequestResponse		"Receiver not found"
//	@Failure		500		{object}	ErrorInternalServerResponse	"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/chat/messages [post]
func (app *application) sendMessageHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	var payload SendMessagePayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if _, err := app.store.Users.GetByID(r.Context(), payload.ReceiverID); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	message := &store.Message{
		SenderID:   user.ID,
		ReceiverID: payload.ReceiverID,
		Text:       payload.Text,
	}

	if err := app.store.Messages.Create(r.Context(), message); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Message sent successfully",
		"data":    message,
	})
}

// DeleteMessage godoc
//
//	@Summary		Deletes a message
//	@Description	Sender-only
//	@Tags			chat
//	@Produce		json
//	@Param			messageID	path		int							true	"Message ID"
//	@Success		200			{object}	map[string]any				"Deleted"
//	@Failure		403			{object}	ErrorBadRequestResponse		"Forbidden"
//	@Failure		404			{object}	ErrorBadRequestResponse		"Not found"
//	@Failure		500			{object}	ErrorInternalServerResponse	"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/chat/messages/{messageID} [delete]
func (app *application) deleteMessageHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	messageID, err := strconv.ParseInt(chi.URLParam(r, "messageID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	message, err := app.store.Messages.GetByID(r.Context(), messageID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if message.SenderID != user.ID {
		app.forbiddenResponse(w, r)
		return
	}

	if err := app.store.Messages.Delete(r.Context(), messageID); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Message deleted successfully",
	})
}
