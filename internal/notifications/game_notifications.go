package notifications

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"skillmatch/internal/store"

	"github.com/9ssi7/exponent"
)

// SendPlayerRegisteredToOrganizer notifies the game organizer that a player
// has registered and taken a spot.
func SendPlayerRegisteredToOrganizer(ctx context.Context, push PushSender, storage store.Storage, organizerID int64, gameID int64, playerName string) error {
	tokensMap, err := storage.PushTokens.GetTokensByUserIDs(ctx, []int64{organizerID})
	if err != nil {
		return err
	}
	tokens := dedupe(tokensMap[organizerID])
	if len(tokens) == 0 {
		return errors.New("no push tokens")
	}

	title := "New player registered"
	body := fmt.Sprintf("%s has joined your game", playerName)
	screen := fmt.Sprintf("games/%s", strconv.FormatInt(gameID, 10))

	msgs := make([]*exponent.Message, 0, len(tokens))
	for _, t := range tokens {
		token := exponent.Token(t)
		msgs = append(msgs, &exponent.Message{
			To:    []*exponent.Token{&token},
			Title: title,
			Body:  body,
			Data: map[string]string{
				"type":    "game_player_registered",
				"game_id": strconv.FormatInt(gameID, 10),
				"screen":  screen,
			},
		})
	}

	_, err = push.Publish(ctx, msgs)
	return err
}

// SendCancelGameToPlayers notifies every registered player that a game
// has been cancelled by its organizer.
func SendCancelGameToPlayers(ctx context.Context, push PushSender, storage store.Storage, gameID int64, playerIDs []int64) error {
	if len(playerIDs) == 0 {
		return errors.New("no players found for the game")
	}

	tokensMap, err := storage.PushTokens.GetTokensByUserIDs(ctx, playerIDs)
	if err != nil {
		return fmt.Errorf("error getting player tokens: %w", err)
	}

	allTokens := make([]string, 0)
	for _, tokens := range tokensMap {
		allTokens = append(allTokens, tokens...)
	}
	compactTokens := dedupe(allTokens)
	if len(compactTokens) == 0 {
		return errors.New("no push tokens found for any players")
	}

	title := "Game Cancelled"
	body := "The game you were registered for has been cancelled"
	screen := fmt.Sprintf("games/%s", strconv.FormatInt(gameID, 10))

	msgs := make([]*exponent.Message, 0, len(compactTokens))
	for _, t := range compactTokens {
		token := exponent.Token(t)
		msgs = append(msgs, &exponent.Message{
			To:    []*exponent.Token{&token},
			Title: title,
			Body:  body,
			Data: map[string]string{
				"type":    "game_cancelled",
				"game_id": strconv.FormatInt(gameID, 10),
				"screen":  screen,
			},
		})
	}

	_, err = push.Publish(ctx, msgs)
	if err != nil {
		return fmt.Errorf("error sending cancellation notifications: %w", err)
	}
	return nil
}
