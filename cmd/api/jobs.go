package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"skillmatch/internal/params"
	"skillmatch/internal/store"

	"github.com/go-chi/chi/v5"
)

type CreateJobPayload struct {
	Title          string   `json:"title" validate:"required,max=255"`
	Description    *string  `json:"description" validate:"omitempty,max=5000"`
	JobType        string   `json:"job_type" validate:"required,oneof=Coach Umpire Trainer Staff Other"`
	RequiredSkills []string `json:"required_skills"`
	VenueID        *int64   `json:"venue_id"`
	Location       *string  `json:"location" validate:"omitempty,max=255"`
	SalaryMin      *float64 `json:"salary_min" validate:"omitempty,min=0"`
	SalaryMax      *float64 `json:"salary_max" validate:"omitempty,min=0"`
	SalaryPeriod   *string  `json:"salary_period" validate:"omitempty,oneof=Hourly Daily Weekly Monthly"`
	StartDate      *string  `json:"start_date"` // 2006-01-02
	EndDate        *string  `json:"end_date"`   // 2006-01-02
}

type UpdateApplicationStatusPayload struct {
	ApplicantID int64  `json:"applicant_id" validate:"required"`
	Status      string `json:"status" validate:"required,oneof=Pending Shortlisted Accepted Rejected"`
}

// CreateJob godoc
//
//	@Summary		Creates a job posting
//	@Tags			jobs
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		CreateJobPayload			true	"Job details"
//	@Success		201		{object}	map[string]any				"Job created"
//	@Failure		400		{object}	ErrorBadRequestResponse		"Bad request"
//	@Failure		500		{object}	ErrorInternalServerResponse	"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/jobs [post]
func (app *application) createJobHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	var payload CreateJobPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if payload.SalaryMin != nil && payload.SalaryMax != nil && *payload.SalaryMin > *payload.SalaryMax {
		app.badRequestResponse(w, r, fmt.Errorf("salary_min cannot exceed salary_max"))
		return
	}

	job := &store.Job{
		Title:          payload.Title,
		Description:    payload.Description,
		JobType:        payload.JobType,
		RequiredSkills: payload.RequiredSkills,
		VenueID:        payload.VenueID,
		PostedByID:     user.ID,
		Location:       payload.Location,
		SalaryMin:      payload.SalaryMin,
		SalaryMax:      payload.SalaryMax,
		SalaryPeriod:   payload.SalaryPeriod,
	}

	if payload.StartDate != nil {
		start, err := time.Parse("2006-01-02", *payload.StartDate)
		if err != nil {
			app.badRequestResponse(w, r, fmt.Errorf("invalid start_date, expected YYYY-MM-DD"))
			return
		}
		job.StartDate = &start
	}
	if payload.EndDate != nil {
		end, err := time.Parse("2006-01-02", *payload.EndDate)
		if err != nil {
			app.badRequestResponse(w, r, fmt.Errorf("invalid end_date, expected YYYY-MM-DD"))
			return
		}
		job.EndDate = &end
	}

	if err := app.store.Jobs.Create(r.Context(), job); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Job created successfully",
		"job":     job,
	})
}

// ListJobs godoc
//
//	@Summary		Lists job postings
//	@Tags			jobs
//	@Produce		json
//	@Param			job_type	query		string						false	"Job type"
//	@Param			status		query		string						false	"Job status"
//	@Param			location	query		string						false	"Location (substring)"
//	@Param			limit		query		int							false	"Page size (max 50)"
//	@Param			page		query		int							false	"Page number"
//	@Success		200			{object}	map[string]any				"Jobs"
//	@Failure		500			{object}	ErrorInternalServerResponse	"Internal Server Error"
//	@Router			/jobs [get]
func (app *application) listJobsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	pg := params.ParsePagination(q)

	filter := store.JobFilter{
		JobType:  q.Get("job_type"),
		Status:   q.Get("status"),
		Location: q.Get("location"),
		Limit:    pg.Limit,
		Offset:   pg.Offset,
	}

	jobs, total, err := app.store.Jobs.List(r.Context(), filter)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	if jobs == nil {
		jobs = []store.Job{}
	}
	pg.ComputeMeta(total)

	writeJSON(w, http.StatusOK, map[string]any{
		"message":    "Jobs fetched successfully",
		"jobs":       jobs,
		"pagination": pg,
	})
}

// GetJob godoc
//
//	@Summary		Fetches a job posting
//	@Description	Includes the applicant list
//	@Tags			jobs
//	@Produce		json
//	@Param			jobID	path		int							true	"Job ID"
//	@Success		200		{object}	map[string]any				"Job"
//	@Failure		404		{object}	ErrorBadRequestResponse		"Not found"
//	@Failure		500		{object}	ErrorInternalServerResponse	"Internal Server Error"
//	@Router			/jobs/{jobID} [get]
func (app *application) getJobHandler(w http.ResponseWriter, r *http.Request) {
	jobID, err := strconv.ParseInt(chi.URLParam(r, "jobID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	job, err := app.store.Jobs.GetByID(r.Context(), jobID)
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
		"message": "Job fetched successfully",
		"job":     job,
	})
}

// ApplyForJob godoc
//
//	@Summary		Applies for a job
//	@Description	Appends the current user to the applicant list; duplicate applications are rejected
//	@Tags			jobs
//	@Produce		json
//	@Param			jobID	path		int							true	"Job ID"
//	@Success		201		{object}	map[string]any				"Applied"
//	@Failure		400		{object}	ErrorBadRequestResponse		"Already applied or job closed"
//	@Failure		404		{object}	ErrorBadRequestResponse		"Not found"
//	@Failure		500		{object}	ErrorInternalServerResponse	"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/jobs/{jobID}/apply [post]
func (app *application) applyForJobHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	jobID, err := strconv.ParseInt(chi.URLParam(r, "jobID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	job, err := app.store.Jobs.GetByID(r.Context(), jobID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if job.Status != store.JobStatusOpen {
		app.badRequestResponse(w, r, fmt.Errorf("job is no longer open"))
		return
	}

	if err := app.store.Jobs.Apply(r.Context(), jobID, user.ID); err != nil {
		switch {
		case errors.Is(err, store.ErrAlreadyApplied):
			app.badRequestResponse(w, r, fmt.Errorf("Already applied for this job"))
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Applied for job successfully",
	})
}

// UpdateApplicationStatus godoc
//
//	@Summary		Updates an applicant's status
//	@Description	Poster-only; targets a single applicant row by identity
//	@Tags			jobs
//	@Accept			json
//	@Produce		json
//	@Param			jobID	path		int								true	"Job ID"
//	@Param			payload	body		UpdateApplicationStatusPayload	true	"Applicant and new status"
//	@Success		200		{object}	map[string]any					"Updated"
//	@Failure		400		{object}	ErrorBadRequestResponse			"Bad request"
//	@Failure		403		{object}	ErrorBadRequestResponse			"Forbidden"
//	@Failure		404		{object}	ErrorBadRequestResponse			"Not found"
//	@Failure		500		{object}	ErrorInternalServerResponse		"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/jobs/{jobID}/application-status [put]
func (app *application) updateApplicationStatusHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	jobID, err := strconv.ParseInt(chi.URLParam(r, "jobID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var payload UpdateApplicationStatusPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	job, err := app.store.Jobs.GetByID(r.Context(), jobID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if job.PostedByID != user.ID {
		app.forbiddenResponse(w, r)
		return
	}

	if err := app.store.Jobs.UpdateApplicantStatus(r.Context(), jobID, payload.ApplicantID, payload.Status); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, fmt.Errorf("applicant not found"))
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Application status updated successfully",
	})
}

// CloseJob godoc
//
//	@Summary		Closes a job posting
//	@Description	Poster-only terminal transition
//	@Tags			jobs
//	@Produce		json
//	@Param			jobID	path		int							true	"Job ID"
//	@Success		200		{object}	map[string]any				"Closed"
//	@Failure		403		{object}	ErrorBadRequestResponse		"Forbidden"
//	@Failure		404		{object}	ErrorBadRequestResponse		"Not found"
//	@Failure		500		{object}	ErrorInternalServerResponse	"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/jobs/{jobID}/close [put]
func (app *application) closeJobHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	jobID, err := strconv.ParseInt(chi.URLParam(r, "jobID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	job, err := app.store.Jobs.GetByID(r.Context(), jobID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if job.PostedByID != user.ID {
		app.forbiddenResponse(w, r)
		return
	}

	if err := app.store.Jobs.Close(r.Context(), jobID); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Job closed successfully",
	})
}

// GetPostedJobs godoc
//
//	@Summary		Lists jobs posted by the current user
//	@Tags			jobs
//	@Produce		json
//	@Success		200	{object}	map[string]any				"Jobs"
//	@Failure		500	{object}	ErrorInternalServerResponse	"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/jobs/user/posted [get]
func (app *application) getPostedJobsHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	jobs, err := app.store.Jobs.GetByPoster(r.Context(), user.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	if jobs == nil {
		jobs = []store.Job{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Jobs fetched successfully",
		"jobs":    jobs,
		"count":   len(jobs),
	})
}

// GetAppliedJobs godoc
//
//	@Summary		Lists jobs the current user has applied to
//	@Tags			jobs
//	@Produce		json
//	@Success		200	{object}	map[string]any				"Jobs"
//	@Failure		500	{object}	ErrorInternalServerResponse	"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/jobs/user/applied [get]
func (app *application) getAppliedJobsHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	jobs, err := app.store.Jobs.GetAppliedBy(r.Context(), user.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	if jobs == nil {
		jobs = []store.Job{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Jobs fetched successfully",
		"jobs":    jobs,
		"count":   len(jobs),
	})
}
