package main

import (
	"net/http"
)

// HealthCheck godoc
//
//	@Summary		Health check
//	@Description	Reports service status, environment and database reachability
//	@Tags			ops
//	@Produce		json
//	@Success		200	{object}	map[string]string	"Healthy"
//	@Failure		503	{object}	map[string]string	"Database unreachable"
//	@Router			/health [get]
func (app *application) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	data := map[string]string{
		"status":  "ok",
		"env":     app.config.env,
		"version": version,
	}

	if err := app.db.Ping(r.Context()); err != nil {
		app.logger.Errorw("health check failed", "error", err.Error())
		data["status"] = "unavailable"
		data["database"] = "unreachable"
		writeJSON(w, http.StatusServiceUnavailable, data)
		return
	}
	data["database"] = "ok"

	if err := writeJSON(w, http.StatusOK, data); err != nil {
		app.internalServerError(w, r, err)
	}
}
