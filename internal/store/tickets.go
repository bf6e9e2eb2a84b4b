package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	TicketStatusActive    = "Active"
	TicketStatusUsed      = "Used"
	TicketStatusCancelled = "Cancelled"
)

// Ticket is the persisted proof of a user's registration for one game.
type Ticket struct {
	ID          int64     `json:"id"`
	TicketID    string    `json:"ticket_id"`
	GameID      int64     `json:"game_id"`
	UserID      int64     `json:"user_id"`
	PlayerName  string    `json:"player_name"`
	PlayerEmail string    `json:"player_email"`
	PlayerPhone string    `json:"player_phone"`
	BookingDate time.Time `json:"booking_date"`
	Status      string    `json:"status"`

	// Joined fields
	GameTitle string    `json:"game_title,omitempty"`
	SportType string    `json:"sport_type,omitempty"`
	GameDate  time.Time `json:"game_date,omitempty"`
	VenueName string    `json:"venue_name,omitempty"`
}

type TicketsStore struct {
	db *pgxpool.Pool
}

const ticketColumns = `
	t.id, t.ticket_id, t.game_id, t.user_id,
	t.player_name, t.player_email, t.player_phone,
	t.booking_date, t.status,
	g.title, g.sport_type, g.date, v.name`

func scanTicket(row pgx.Row, ticket *Ticket) error {
	return row.Scan(
		&ticket.ID,
		&ticket.TicketID,
		&ticket.GameID,
		&ticket.UserID,
		&ticket.PlayerName,
		&ticket.PlayerEmail,
		&ticket.PlayerPhone,
		&ticket.BookingDate,
		&ticket.Status,
		&ticket.GameTitle,
		&ticket.SportType,
		&ticket.GameDate,
		&ticket.VenueName,
	)
}

// GetByGameAndUser returns the user's active ticket for a game, if any.
func (s *TicketsStore) GetByGameAndUser(ctx context.Context, gameID, userID int64) (*Ticket, error) {
	query := `SELECT ` + ticketColumns + `
		FROM game_tickets t
		JOIN games g ON g.id = t.game_id
		JOIN venues v ON v.id = g.venue_id
		WHERE t.game_id = $1 AND t.user_id = $2 AND t.status = 'Active'`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	ticket := &Ticket{}
	if err := scanTicket(s.db.QueryRow(ctx, query, gameID, userID), ticket); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return ticket, nil
}

func (s *TicketsStore) GetByTicketID(ctx context.Context, ticketID string) (*Ticket, error) {
	query := `SELECT ` + ticketColumns + `
		FROM game_tickets t
		JOIN games g ON g.id = t.game_id
		JOIN venues v ON v.id = g.venue_id
		WHERE t.ticket_id = $1`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	ticket := &Ticket{}
	if err := scanTicket(s.db.QueryRow(ctx, query, ticketID), ticket); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return ticket, nil
}

func (s *TicketsStore) GetByUser(ctx context.Context, userID int64) ([]Ticket, error) {
	query := `SELECT ` + ticketColumns + `
		FROM game_tickets t
		JOIN games g ON g.id = t.game_id
		JOIN venues v ON v.id = g.venue_id
		WHERE t.user_id = $1
		ORDER BY t.booking_date DESC`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []Ticket
	for rows.Next() {
		var t Ticket
		if err := scanTicket(rows, &t); err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}
