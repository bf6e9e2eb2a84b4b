package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"skillmatch/internal/store"

	"github.com/go-chi/chi/v5"
)

type CreateReviewPayload struct {
	RevieweeID    int64  `json:"reviewee_id" validate:"required"`
	Rating        int    `json:"rating" validate:"required,min=1,max=5"`
	Comment       string `json:"comment" validate:"omitempty,max=2000"`
	RelatedGameID *int64 `json:"related_game_id"`
	RelatedJobID  *int64 `json:"related_job_id"`
}

type UpdateReviewPayload struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"omitempty,max=2000"`
}

// CreateReview godoc
//
//	@Summary		Creates a review
//	@Description	Persists the review and recomputes the reviewee's rating aggregate atomically
//	@Tags			reviews
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		CreateReviewPayload			true	"Review"
//	@Success		201		{object}	map[string]any				"Review created"
//	@Failure		400		{object}	ErrorBadRequestResponse		"Bad request"
//	@Failure		500		{object}	ErrorInternalServerResponse	"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/reviews [post]
func (app *application) createReviewHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	var payload CreateReviewPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if payload.RevieweeID == user.ID {
		app.badRequestResponse(w, r, fmt.Errorf("cannot review yourself"))
		return
	}

	review := &store.Review{
		ReviewerID:    user.ID,
		RevieweeID:    payload.RevieweeID,
		Rating:        payload.Rating,
		Comment:       payload.Comment,
		RelatedGameID: payload.RelatedGameID,
		RelatedJobID:  payload.RelatedJobID,
	}

	if err := app.store.Reviews.Create(r.Context(), review); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Review created successfully",
		"review":  review,
	})
}

// GetUserReviews godoc
//
//	@Summary		Lists reviews about a user
//	@Tags			reviews
//	@Produce		json
//	@Param			userID	path		int							true	"Reviewee user ID"
//	@Success		200		{object}	map[string]any				"Reviews"
//	@Failure		500		{object}	ErrorInternalServerResponse	"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/reviews/user/{userID} [get]
func (app *application) getUserReviewsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	reviews, err := app.store.Reviews.GetForUser(r.Context(), userID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	if reviews == nil {
		reviews = []store.Review{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Reviews fetched successfully",
		"reviews": reviews,
		"count":   len(reviews),
	})
}

// GetMyReviews godoc
//
//	@Summary		Lists reviews written by the current user
//	@Tags			reviews
//	@Produce		json
//	@Success		200	{object}	map[string]any				"Reviews"
//	@Failure		500	{object}	ErrorInternalServerResponse	"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/reviews [get]
func (app *application) getMyReviewsHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	reviews, err := app.store.Reviews.GetByReviewer(r.Context(), user.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	if reviews == nil {
		reviews = []store.Review{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Reviews fetched successfully",
		"reviews": reviews,
		"count":   len(reviews),
	})
}

// UpdateReview godoc
//
//	@Summary		Updates a review
//	@Description	Reviewer-only; the reviewee's rating aggregate is recomputed
//	@Tags			reviews
//	@Accept			json
//	@Produce		json
//	@Param			reviewID	path		int							true	"Review ID"
//	@Param			payload		body		UpdateReviewPayload			true	"New rating/comment"
//	@Success		200			{object}	map[string]any				"Updated review"
//	@Failure		400			{object}	ErrorBadRequestResponse		"Bad request"
//	@Failure		403			{object}	ErrorBadRequestResponse		"Forbidden"
//	@Failure		404			{object}	ErrorBadRequestResponse		"Not found"
//	@Failure		500			{object}	ErrorInternalServerResponse	"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/reviews/{reviewID} [put]
func (app *application) updateReviewHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	reviewID, err := strconv.ParseInt(chi.URLParam(r, "reviewID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var payload UpdateReviewPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	review, err := app.store.Reviews.GetByID(r.Context(), reviewID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if review.ReviewerID != user.ID {
		app.forbiddenResponse(w, r)
		return
	}

	review.Rating = payload.Rating
	review.Comment = payload.Comment

	if err := app.store.Reviews.Update(r.Context(), review); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Review updated successfully",
		"review":  review,
	})
}

// DeleteReview godoc
//
//	@Summary		Deletes a review
//	@Description	Reviewer-only; the reviewee's rating aggregate is recomputed, zero when no reviews remain
//	@Tags			reviews
//	@Produce		json
//	@Param			reviewID	path		int							true	"Review ID"
//	@Success		200			{object}	map[string]any				"Deleted"
//	@Failure		403			{object}	ErrorBadRequestResponse		"Forbidden"
//	@Failure		404			{object}	ErrorBadRequestResponse		"Not found"
//	@Failure		500			{object}	ErrorInternalServerResponse	"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/reviews/{reviewID} [delete]
func (app *application) deleteReviewHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	reviewID, err := strconv.ParseInt(chi.URLParam(r, "reviewID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	review, err := app.store.Reviews.GetByID(r.Context(), reviewID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if review.ReviewerID != user.ID {
		app.forbiddenResponse(w, r)
		return
	}

	if err := app.store.Reviews.Delete(r.Context(), reviewID); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Review deleted successfully",
	})
}
