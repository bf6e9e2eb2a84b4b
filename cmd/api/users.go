package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"skillmatch/internal/store"

	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/go-chi/chi/v5"
)

type userKey string

const userCtx userKey = "user"

type UpdateProfilePayload struct {
	FirstName *string        `json:"first_name" validate:"omitempty,max=50"`
	LastName  *string        `json:"last_name" validate:"omitempty,max=50"`
	Phone     *string        `json:"phone" validate:"omitempty,min=7,max=15"`
	Bio       *string        `json:"bio" validate:"omitempty,max=500"`
	City      *string        `json:"city" validate:"omitempty,max=100"`
	State     *string        `json:"state" validate:"omitempty,max=100"`
	Address   *string        `json:"address" validate:"omitempty,max=255"`
	UserType  *string        `json:"user_type" validate:"omitempty,oneof=Player Coach Umpire 'Venue Manager'"`
	Skills    *[]store.Skill `json:"skills"`
}

type AddSkillPayload struct {
	SkillName        string `json:"skill_name" validate:"required,max=100"`
	ProficiencyLevel string `json:"proficiency_level" validate:"required,oneof=Beginner Intermediate Advanced Professional"`
	YearsExperience  int    `json:"years_experience" validate:"omitempty,min=0,max=80"`
	Certification    string `json:"certification" validate:"omitempty,max=255"`
}

// GetUser godoc
//
//	@Summary		Fetches a user profile
//	@Description	Fetches a user profile by ID; credentials are never included
//	@Tags			users
//	@Produce		json
//	@Param			userID	path		int							true	"User ID"
//	@Success		200		{object}	map[string]any				"User profile"
//	@Failure		404		{object}	ErrorBadRequestResponse		"Not found"
//	@Failure		500		{object}	ErrorInternalServerResponse	"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/users/{userID} [get]
func (app *application) getUserHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	user, err := app.store.Users.GetByID(r.Context(), userID)
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
		"message": "User fetched successfully",
		"user":    user,
	})
}

// UpdateProfile godoc
//
//	@Summary		Updates the current user's profile
//	@Description	Partial update; only the provided fields are applied
//	@Tags			users
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		UpdateProfilePayload		true	"Fields to update"
//	@Success		200		{object}	map[string]any				"Updated profile"
//	@Failure		400		{object}	ErrorBadRequestResponse		"Bad request"
//	@Failure		500		{object}	ErrorInternalServerResponse	"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/users/profile [put]
func (app *application) updateProfileHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	var payload UpdateProfilePayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	updates := map[string]interface{}{}
	if payload.FirstName != nil {
		updates["first_name"] = *payload.FirstName
	}
	if payload.LastName != nil {
		updates["last_name"] = *payload.LastName
	}
	if payload.Phone != nil {
		updates["phone"] = *payload.Phone
	}
	if payload.Bio != nil {
		updates["bio"] = *payload.Bio
	}
	if payload.City != nil {
		updates["city"] = *payload.City
	}
	if payload.State != nil {
		updates["state"] = *payload.State
	}
	if payload.Address != nil {
		updates["address"] = *payload.Address
	}
	if payload.UserType != nil {
		updates["user_type"] = *payload.UserType
	}
	if payload.Skills != nil {
		updates["skills"] = *payload.Skills
	}

	if err := app.store.Users.Update(r.Context(), user.ID, updates); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		case errors.Is(err, store.ErrDuplicateEmail):
			app.badRequestResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	updated, err := app.store.Users.GetByID(r.Context(), user.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Profile updated successfully",
		"user":    updated,
	})
}

// AddSkill godoc
//
//	@Summary		Adds a skill
//	@Description	Appends one skill entry to the current user's skills list
//	@Tags			users
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		AddSkillPayload				true	"Skill"
//	@Success		200		{object}	map[string]any				"Updated profile"
//	@Failure		400		{object}	ErrorBadRequestResponse		"Bad request"
//	@Failure		500		{object}	ErrorInternalServerResponse	"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/users/skill [post]
func (app *application) addSkillHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	var payload AddSkillPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	skill := store.Skill{
		SkillName:        payload.SkillName,
		ProficiencyLevel: payload.ProficiencyLevel,
		YearsExperience:  payload.YearsExperience,
		Certification:    payload.Certification,
	}

	if err := app.store.Users.AddSkill(r.Context(), user.ID, skill); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	updated, err := app.store.Users.GetByID(r.Context(), user.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Skill added successfully",
		"user":    updated,
	})
}

// SearchUsers godoc
//
//	@Summary		Searches users
//	@Description	Case-insensitive substring match on skill name and/or city
//	@Tags			users
//	@Produce		json
//	@Param			skill	query		string						false	"Skill name"
//	@Param			city	query		string						false	"City"
//	@Param			limit	query		int							false	"Max results (default 20, cap 50)"
//	@Success		200		{object}	map[string]any				"Matching users"
//	@Failure		500		{object}	ErrorInternalServerResponse	"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/users/search [get]
func (app *application) searchUsersHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	skill := q.Get("skill")
	city := q.Get("city")

	limit := 20
	if limitStr := q.Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 && parsed <= 50 {
			limit = parsed
		}
	}

	users, err := app.store.Users.Search(r.Context(), skill, city, limit)
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
		"count":   len(users),
	})
}

// NearbyUsers godoc
//
//	@Summary		Finds nearby users
//	@Description	Geospatial proximity search bounded by max_distance meters
//	@Tags			users
//	@Produce		json
//	@Param			longitude		query		number						true	"Longitude"
//	@Param			latitude		query		number						true	"Latitude"
//	@Param			max_distance	query		int							false	"Max distance in meters (default 10000)"
//	@Param			limit			query		int							false	"Max results"
//	@Success		200				{object}	map[string]any				"Nearby users"
//	@Failure		400				{object}	ErrorBadRequestResponse		"Bad request"
//	@Failure		500				{object}	ErrorInternalServerResponse	"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/users/nearby [get]
func (app *application) nearbyUsersHandler(w http.ResponseWriter, r *http.Request) {
	longitude, latitude, maxDistance, limit, err := parseNearbyParams(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	users, err := app.store.Users.GetNearby(r.Context(), longitude, latitude, maxDistance, limit)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	if users == nil {
		users = []store.User{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Nearby users fetched successfully",
		"users":   users,
		"count":   len(users),
	})
}

// UploadProfilePhoto godoc
//
//	@Summary		Uploads a profile photo
//	@Description	Accepts a multipart image, stores it on Cloudinary and saves the URL
//	@Tags			users
//	@Accept			mpfd
//	@Produce		json
//	@Param			profile_photo	formData	file						true	"JPEG or PNG image, max 2MB"
//	@Success		200				{object}	map[string]any				"Photo URL"
//	@Failure		400				{object}	ErrorBadRequestResponse		"Bad request"
//	@Failure		500				{object}	ErrorInternalServerResponse	"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/users/profile-photo [post]
func (app *application) uploadProfilePhotoHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	overwrite := boolPtr(true)

	// Parse the multipart form
	err := r.ParseMultipartForm(2 << 20) // 2 MB
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("unable to parse form, file size limit is 2MB"))
		return
	}

	file, fileHeader, err := r.FormFile("profile_photo")
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("unable to retrieve file"))
		return
	}
	defer file.Close()

	// Validate file type (allow only JPEG & PNG)
	contentType := fileHeader.Header.Get("Content-Type")
	if contentType != "image/jpeg" && contentType != "image/png" {
		app.badRequestResponse(w, r, fmt.Errorf("only JPEG and PNG images are allowed"))
		return
	}

	uploadParams := uploader.UploadParams{
		PublicID:       fmt.Sprintf("/%d", user.ID), // Save with userID as filename
		Overwrite:      overwrite,
		Folder:         "profile_photos",
		Transformation: "w_300,h_300,c_fill,q_auto", // Resize to 300x300, auto quality
	}
	uploadResult, err := app.cld.Upload.Upload(context.Background(), file, uploadParams)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.store.Users.SetProfilePhoto(r.Context(), user.ID, uploadResult.SecureURL); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":           "Profile photo uploaded successfully",
		"profile_photo_url": uploadResult.SecureURL,
	})
}

// parseNearbyParams parses longitude/latitude/max_distance/limit query params
// shared by users and venues nearby endpoints.
func parseNearbyParams(r *http.Request) (longitude, latitude float64, maxDistance, limit int, err error) {
	q := r.URL.Query()

	longitude, err = strconv.ParseFloat(q.Get("longitude"), 64)
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("invalid longitude")
	}
	latitude, err = strconv.ParseFloat(q.Get("latitude"), 64)
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("invalid latitude")
	}

	maxDistance = 10000 // meters
	if v := q.Get("max_distance"); v != "" {
		parsed, perr := strconv.Atoi(v)
		if perr != nil || parsed <= 0 {
			return 0, 0, 0, 0, fmt.Errorf("invalid max_distance")
		}
		maxDistance = parsed
	}

	limit = 20
	if v := q.Get("limit"); v != "" {
		if parsed, perr := strconv.Atoi(v); perr == nil && parsed > 0 && parsed <= 50 {
			limit = parsed
		}
	}

	return longitude, latitude, maxDistance, limit, nil
}

func boolPtr(b bool) *bool {
	return &b
}

func getUserFromContext(r *http.Request) *store.User {
	user, _ := r.Context().Value(userCtx).(*store.User)
	return user
}
