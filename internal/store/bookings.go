package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Booking status lifecycle: Pending -> Confirmed | Cancelled -> Completed.
const (
	BookingStatusPending   = "Pending"
	BookingStatusConfirmed = "Confirmed"
	BookingStatusCancelled = "Cancelled"
	BookingStatusCompleted = "Completed"
)

type Booking struct {
	ID           int64     `json:"id"`
	VenueID      int64     `json:"venue_id"`
	UserID       int64     `json:"user_id"`
	BookingDate  time.Time `json:"booking_date"`
	StartTime    string    `json:"start_time"`
	EndTime      string    `json:"end_time"`
	Duration     float64   `json:"duration"`
	TotalCost    float64   `json:"total_cost"`
	ContactPhone *string   `json:"contact_phone,omitempty"`
	Notes        *string   `json:"notes,omitempty"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserBooking is the "my bookings" view with venue fields resolved.
type UserBooking struct {
	BookingID    int64     `json:"booking_id"`
	VenueID      int64     `json:"venue_id"`
	VenueName    string    `json:"venue_name"`
	VenueAddress *string   `json:"venue_address"`
	PricePerHour float64   `json:"price_per_hour"`
	BookingDate  time.Time `json:"booking_date"`
	StartTime    string    `json:"start_time"`
	EndTime      string    `json:"end_time"`
	Duration     float64   `json:"duration"`
	TotalCost    float64   `json:"total_cost"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// VenueBooking is the manager-side view with user fields resolved.
type VenueBooking struct {
	BookingID   int64     `json:"booking_id"`
	UserID      int64     `json:"user_id"`
	UserName    string    `json:"user_name"`
	UserEmail   string    `json:"user_email"`
	UserPhone   string    `json:"user_phone"`
	BookingDate time.Time `json:"booking_date"`
	StartTime   string    `json:"start_time"`
	EndTime     string    `json:"end_time"`
	TotalCost   float64   `json:"total_cost"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

type BookingsStore struct {
	db *pgxpool.Pool
}

func (s *BookingsStore) Create(ctx context.Context, booking *Booking) error {
	query := `
		INSERT INTO bookings (venue_id, user_id, booking_date, start_time, end_time, duration, total_cost, contact_phone, notes, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	if booking.Status == "" {
		booking.Status = BookingStatusPending
	}

	return s.db.QueryRow(ctx, query,
		booking.VenueID,
		booking.UserID,
		booking.BookingDate,
		booking.StartTime,
		booking.EndTime,
		booking.Duration,
		booking.TotalCost,
		booking.ContactPhone,
		booking.Notes,
		booking.Status,
	).Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)
}

func (s *BookingsStore) GetByID(ctx context.Context, bookingID int64) (*Booking, error) {
	query := `
		SELECT id, venue_id, user_id, booking_date, start_time, end_time, duration,
		       total_cost, contact_phone, notes, status, created_at, updated_at
		FROM bookings
		WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	booking := &Booking{}
	err := s.db.QueryRow(ctx, query, bookingID).Scan(
		&booking.ID,
		&booking.VenueID,
		&booking.UserID,
		&booking.BookingDate,
		&booking.StartTime,
		&booking.EndTime,
		&booking.Duration,
		&booking.TotalCost,
		&booking.ContactPhone,
		&booking.Notes,
		&booking.Status,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return booking, nil
}

func (s *BookingsStore) GetByUser(ctx context.Context, userID int64) ([]UserBooking, error) {
	const q = `
		SELECT
			b.id, b.venue_id, v.name, v.address, v.price_per_hour,
			b.booking_date, b.start_time, b.end_time, b.duration,
			b.total_cost, b.status, b.created_at
		FROM bookings b
		JOIN venues v ON v.id = b.venue_id
		WHERE b.user_id = $1
		ORDER BY b.booking_date DESC
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []UserBooking
	for rows.Next() {
		var ub UserBooking
		if err := rows.Scan(
			&ub.BookingID,
			&ub.VenueID,
			&ub.VenueName,
			&ub.VenueAddress,
			&ub.PricePerHour,
			&ub.BookingDate,
			&ub.StartTime,
			&ub.EndTime,
			&ub.Duration,
			&ub.TotalCost,
			&ub.Status,
			&ub.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, ub)
	}
	return out, rows.Err()
}

func (s *BookingsStore) GetByVenue(ctx context.Context, venueID int64) ([]VenueBooking, error) {
	const q = `
		SELECT
			b.id, b.user_id,
			u.first_name || ' ' || u.last_name AS user_name,
			u.email, u.phone,
			b.booking_date, b.start_time, b.end_time,
			b.total_cost, b.status, b.created_at
		FROM bookings b
		JOIN users u ON u.id = b.user_id
		WHERE b.venue_id = $1
		ORDER BY b.booking_date DESC
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.Query(ctx, q, venueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []VenueBooking
	for rows.Next() {
		var vb VenueBooking
		if err := rows.Scan(
			&vb.BookingID,
			&vb.UserID,
			&vb.UserName,
			&vb.UserEmail,
			&vb.UserPhone,
			&vb.BookingDate,
			&vb.StartTime,
			&vb.EndTime,
			&vb.TotalCost,
			&vb.Status,
			&vb.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, vb)
	}
	return out, rows.Err()
}

func (s *BookingsStore) UpdateStatus(ctx context.Context, bookingID int64, status string) error {
	const q = `
		UPDATE bookings
		SET status = $1,
		    updated_at = NOW()
		WHERE id = $2
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	res, err := s.db.Exec(ctx, q, status, bookingID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
