package main

import (
	"context"
	"time"
)

func (app *application) markCompletedGamesEvery30Mins() {
	go func() {
		ticker := time.NewTicker(30 * time.Minute)
		defer ticker.Stop()

		sweep := func() {
			n, err := app.store.Games.MarkCompletedGames(context.Background())
			if err != nil {
				app.logger.Errorf("Error marking games as completed: %v", err)
				return
			}
			if n > 0 {
				app.logger.Infof("Marked %d games as completed", n)
			}
		}

		// Run once immediately
		sweep()

		// Then run every 30 minutes
		for range ticker.C {
			sweep()
		}
	}()
}
