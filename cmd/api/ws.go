package main

import (
	"fmt"
	"net/http"
	"strconv"

	"skillmatch/internal/realtime"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ServeWs godoc
//
//	@Summary		Upgrades to the realtime socket channel
//	@Description	Authenticates via the token query parameter, then speaks the room event protocol (join_room, leave_room, send_message, receive_message)
//	@Tags			chat
//	@Param			token	query	string	true	"Access token"
//	@Success		101		"Switching Protocols"
//	@Failure		401		{object}	ErrorBadRequestResponse	"Unauthorized"
//	@Router			/ws [get]
func (app *application) serveWsHandler(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		app.unauthorizedErrorResponse(w, r, fmt.Errorf("missing token query parameter"))
		return
	}

	jwtToken, err := app.authenticator.ValidateAccessToken(token)
	if err != nil {
		app.unauthorizedErrorResponse(w, r, err)
		return
	}

	claims, ok := jwtToken.Claims.(jwt.MapClaims)
	if !ok {
		app.unauthorizedErrorResponse(w, r, fmt.Errorf("invalid token claims"))
		return
	}

	userID, err := strconv.ParseInt(fmt.Sprintf("%.f", claims["sub"]), 10, 64)
	if err != nil {
		app.unauthorizedErrorResponse(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		app.logger.Errorw("websocket upgrade failed", "error", err)
		return
	}

	app.logger.Infow("websocket client connected", "user_id", userID)

	client := realtime.NewClient(app.hub, conn, userID)
	go client.Start()
}
