package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OperatingHours holds the venue's daily open/close window.
type OperatingHours struct {
	Open  string `json:"open"`
	Close string `json:"close"`
}

type Venue struct {
	ID             int64           `json:"id"`
	ManagerID      int64           `json:"manager_id"`
	Name           string          `json:"name"`
	Description    *string         `json:"description,omitempty"`
	Type           string          `json:"type"`
	Address        *string         `json:"address,omitempty"`
	City           *string         `json:"city,omitempty"`
	State          *string         `json:"state,omitempty"`
	Longitude      float64         `json:"longitude"`
	Latitude       float64         `json:"latitude"`
	ContactEmail   *string         `json:"contact_email,omitempty"`
	ContactPhone   *string         `json:"contact_phone,omitempty"`
	Facilities     []string        `json:"facilities"`
	Amenities      []string        `json:"amenities"`
	Capacity       *int            `json:"capacity,omitempty"`
	PricePerHour   float64         `json:"price_per_hour"`
	OperatingHours *OperatingHours `json:"operating_hours,omitempty"`
	IsActive       bool            `json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`

	// Joined fields
	ManagerName string `json:"manager_name,omitempty"`
}

// VenueFilter narrows venue listings.
type VenueFilter struct {
	Type   string
	City   string
	Limit  int
	Offset int
}

type VenuesStore struct {
	db *pgxpool.Pool
}

const venueColumns = `
	v.id, v.manager_id, v.name, v.description, v.type, v.address, v.city, v.state,
	COALESCE(ST_X(v.location::geometry), 0), COALESCE(ST_Y(v.location::geometry), 0),
	v.contact_email, v.contact_phone, v.facilities, v.amenities, v.capacity,
	v.price_per_hour, v.operating_hours, v.is_active, v.created_at, v.updated_at,
	u.first_name || ' ' || u.last_name`

func scanVenue(row pgx.Row, venue *Venue) error {
	var hours []byte
	err := row.Scan(
		&venue.ID,
		&venue.ManagerID,
		&venue.Name,
		&venue.Description,
		&venue.Type,
		&venue.Address,
		&venue.City,
		&venue.State,
		&venue.Longitude,
		&venue.Latitude,
		&venue.ContactEmail,
		&venue.ContactPhone,
		&venue.Facilities,
		&venue.Amenities,
		&venue.Capacity,
		&venue.PricePerHour,
		&hours,
		&venue.IsActive,
		&venue.CreatedAt,
		&venue.UpdatedAt,
		&venue.ManagerName,
	)
	if err != nil {
		return err
	}
	if len(hours) > 0 {
		if err := json.Unmarshal(hours, &venue.OperatingHours); err != nil {
			return fmt.Errorf("decoding operating hours: %w", err)
		}
	}
	if venue.Facilities == nil {
		venue.Facilities = []string{}
	}
	if venue.Amenities == nil {
		venue.Amenities = []string{}
	}
	return nil
}

func (s *VenuesStore) Create(ctx context.Context, venue *Venue) error {
	var hours []byte
	if venue.OperatingHours != nil {
		raw, err := json.Marshal(venue.OperatingHours)
		if err != nil {
			return err
		}
		hours = raw
	}

	query := `
		INSERT INTO venues (
			manager_id, name, description, type, address, city, state, location,
			contact_email, contact_phone, facilities, amenities, capacity,
			price_per_hour, operating_hours
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7,
			ST_SetSRID(ST_MakePoint($8, $9), 4326)::geography,
			$10, $11, $12, $13, $14, $15, $16)
		RETURNING id, is_active, created_at, updated_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	return s.db.QueryRow(
		ctx, query,
		venue.ManagerID,
		venue.Name,
		venue.Description,
		venue.Type,
		venue.Address,
		venue.City,
		venue.State,
		venue.Longitude,
		venue.Latitude,
		venue.ContactEmail,
		venue.ContactPhone,
		venue.Facilities,
		venue.Amenities,
		venue.Capacity,
		venue.PricePerHour,
		hours,
	).Scan(&venue.ID, &venue.IsActive, &venue.CreatedAt, &venue.UpdatedAt)
}

func (s *VenuesStore) GetByID(ctx context.Context, venueID int64) (*Venue, error) {
	query := `SELECT ` + venueColumns + `
		FROM venues v
		JOIN users u ON u.id = v.manager_id
		WHERE v.id = $1`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	venue := &Venue{}
	if err := scanVenue(s.db.QueryRow(ctx, query, venueID), venue); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return venue, nil
}

// List returns active venues, optionally filtered by type and city.
func (s *VenuesStore) List(ctx context.Context, filter VenueFilter) ([]Venue, int, error) {
	where := ` WHERE v.is_active = TRUE`
	args := []interface{}{}
	i := 1

	if filter.Type != "" {
		where += fmt.Sprintf(` AND v.type = $%d`, i)
		args = append(args, filter.Type)
		i++
	}
	if filter.City != "" {
		where += fmt.Sprintf(` AND v.city ILIKE '%%' || $%d || '%%'`, i)
		args = append(args, filter.City)
		i++
	}

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var total int
	countQuery := `SELECT COUNT(*) FROM venues v` + where
	if err := s.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count venues: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + venueColumns + `
		FROM venues v
		JOIN users u ON u.id = v.manager_id` + where +
		fmt.Sprintf(` ORDER BY v.name LIMIT $%d OFFSET $%d`, i, i+1)
	args = append(args, limit, filter.Offset)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	venues, err := collectVenues(rows)
	if err != nil {
		return nil, 0, err
	}
	return venues, total, nil
}

// GetNearby returns active venues within maxDistance meters of the given point.
func (s *VenuesStore) GetNearby(ctx context.Context, longitude, latitude float64, maxDistance, limit int) ([]Venue, error) {
	query := `SELECT ` + venueColumns + `
		FROM venues v
		JOIN users u ON u.id = v.manager_id
		WHERE v.is_active = TRUE
		  AND ST_DWithin(v.location, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography, $3)
		ORDER BY v.location <-> ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography
		LIMIT $4`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.Query(ctx, query, longitude, latitude, maxDistance, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectVenues(rows)
}

var venueUpdatableColumns = map[string]string{
	"name":            "name",
	"description":     "description",
	"type":            "type",
	"address":         "address",
	"city":            "city",
	"state":           "state",
	"contact_email":   "contact_email",
	"contact_phone":   "contact_phone",
	"facilities":      "facilities",
	"amenities":       "amenities",
	"capacity":        "capacity",
	"price_per_hour":  "price_per_hour",
	"operating_hours": "operating_hours",
}

func (s *VenuesStore) Update(ctx context.Context, venueID int64, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}

	setClauses := make([]string, 0, len(updates)+1)
	args := make([]interface{}, 0, len(updates)+1)
	i := 1

	for key, value := range updates {
		column, ok := venueUpdatableColumns[key]
		if !ok {
			return fmt.Errorf("invalid update field: %s", key)
		}
		if column == "operating_hours" {
			raw, err := json.Marshal(value)
			if err != nil {
				return err
			}
			value = raw
		}
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, i))
		args = append(args, value)
		i++
	}

	setClauses = append(setClauses, "updated_at = NOW()")
	args = append(args, venueID)

	query := fmt.Sprintf(`UPDATE venues SET %s WHERE id = $%d`, strings.Join(setClauses, ", "), i)

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	res, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Deactivate soft-deletes a venue; bookings and games keep their references.
func (s *VenuesStore) Deactivate(ctx context.Context, venueID int64) error {
	query := `UPDATE venues SET is_active = FALSE, updated_at = NOW() WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	res, err := s.db.Exec(ctx, query, venueID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func collectVenues(rows pgx.Rows) ([]Venue, error) {
	var venues []Venue
	for rows.Next() {
		var venue Venue
		if err := scanVenue(rows, &venue); err != nil {
			return nil, err
		}
		venues = append(venues, venue)
	}
	return venues, rows.Err()
}
