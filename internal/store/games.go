package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrGameFull          = errors.New("game is full")
	ErrAlreadyRegistered = errors.New("already registered for this game")
)

// Game status lifecycle: Upcoming -> Ongoing -> Completed, with Cancelled
// reachable from Upcoming.
const (
	GameStatusUpcoming  = "Upcoming"
	GameStatusOngoing   = "Ongoing"
	GameStatusCompleted = "Completed"
	GameStatusCancelled = "Cancelled"
)

type Game struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	SportType   string    `json:"sport_type"`
	SkillLevel  string    `json:"skill_level"`
	VenueID     int64     `json:"venue_id"`
	OrganizerID int64     `json:"organizer_id"`
	Date        time.Time `json:"date"`
	StartTime   string    `json:"start_time"`
	EndTime     string    `json:"end_time"`
	MaxPlayers  int       `json:"max_players"`
	EventType   string    `json:"event_type"`
	Cost        float64   `json:"cost"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Joined fields
	VenueName         string       `json:"venue_name,omitempty"`
	VenueCity         *string      `json:"venue_city,omitempty"`
	OrganizerName     string       `json:"organizer_name,omitempty"`
	PlayerCount       int          `json:"player_count"`
	RegisteredPlayers []GamePlayer `json:"registered_players,omitempty"`
}

// GamePlayer is one entry in a game's registered players list.
type GamePlayer struct {
	UserID          int64     `json:"user_id"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	ProfilePhotoURL *string   `json:"profile_photo_url,omitempty"`
	Status          string    `json:"status"`
	JoinedAt        time.Time `json:"joined_at"`
}

// GameFilter narrows game listings.
type GameFilter struct {
	SportType  string
	SkillLevel string
	City       string
	Status     string
	Limit      int
	Offset     int
}

type GamesStore struct {
	db *pgxpool.Pool
}

const gameColumns = `
	g.id, g.title, g.description, g.sport_type, g.skill_level, g.venue_id,
	g.organizer_id, g.date, g.start_time, g.end_time, g.max_players,
	g.event_type, g.cost, g.status, g.created_at, g.updated_at,
	v.name, v.city,
	u.first_name || ' ' || u.last_name,
	(SELECT COUNT(*) FROM game_players gp WHERE gp.game_id = g.id)`

func scanGame(row pgx.Row, game *Game) error {
	return row.Scan(
		&game.ID,
		&game.Title,
		&game.Description,
		&game.SportType,
		&game.SkillLevel,
		&game.VenueID,
		&game.OrganizerID,
		&game.Date,
		&game.StartTime,
		&game.EndTime,
		&game.MaxPlayers,
		&game.EventType,
		&game.Cost,
		&game.Status,
		&game.CreatedAt,
		&game.UpdatedAt,
		&game.VenueName,
		&game.VenueCity,
		&game.OrganizerName,
		&game.PlayerCount,
	)
}

func (s *GamesStore) Create(ctx context.Context, game *Game) error {
	query := `
		INSERT INTO games (
			title, description, sport_type, skill_level, venue_id, organizer_id,
			date, start_time, end_time, max_players, event_type, cost, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	if game.SkillLevel == "" {
		game.SkillLevel = "Mixed"
	}
	if game.EventType == "" {
		game.EventType = "Friendly"
	}
	if game.Status == "" {
		game.Status = GameStatusUpcoming
	}

	err := s.db.QueryRow(
		ctx, query,
		game.Title,
		game.Description,
		game.SportType,
		game.SkillLevel,
		game.VenueID,
		game.OrganizerID,
		game.Date,
		game.StartTime,
		game.EndTime,
		game.MaxPlayers,
		game.EventType,
		game.Cost,
		game.Status,
	).Scan(&game.ID, &game.CreatedAt, &game.UpdatedAt)

	if err != nil {
		return fmt.Errorf("error creating game: %w", err)
	}
	return nil
}

func (s *GamesStore) GetByID(ctx context.Context, gameID int64) (*Game, error) {
	query := `SELECT ` + gameColumns + `
		FROM games g
		JOIN venues v ON v.id = g.venue_id
		JOIN users u ON u.id = g.organizer_id
		WHERE g.id = $1`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	game := &Game{}
	if err := scanGame(s.db.QueryRow(ctx, query, gameID), game); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return game, nil
}

func (s *GamesStore) GetPlayers(ctx context.Context, gameID int64) ([]GamePlayer, error) {
	query := `
		SELECT gp.user_id, u.first_name, u.last_name, u.profile_photo_url, gp.status, gp.joined_at
		FROM game_players gp
		JOIN users u ON u.id = gp.user_id
		WHERE gp.game_id = $1
		ORDER BY gp.joined_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.Query(ctx, query, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []GamePlayer
	for rows.Next() {
		var p GamePlayer
		if err := rows.Scan(&p.UserID, &p.FirstName, &p.LastName, &p.ProfilePhotoURL, &p.Status, &p.JoinedAt); err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func (s *GamesStore) List(ctx context.Context, filter GameFilter) ([]Game, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	i := 1

	if filter.SportType != "" {
		where += fmt.Sprintf(` AND g.sport_type = $%d`, i)
		args = append(args, filter.SportType)
		i++
	}
	if filter.SkillLevel != "" {
		where += fmt.Sprintf(` AND g.skill_level = $%d`, i)
		args = append(args, filter.SkillLevel)
		i++
	}
	if filter.City != "" {
		where += fmt.Sprintf(` AND v.city ILIKE '%%' || $%d || '%%'`, i)
		args = append(args, filter.City)
		i++
	}
	if filter.Status != "" {
		where += fmt.Sprintf(` AND g.status = $%d`, i)
		args = append(args, filter.Status)
		i++
	}

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var total int
	countQuery := `SELECT COUNT(*) FROM games g JOIN venues v ON v.id = g.venue_id` + where
	if err := s.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count games: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + gameColumns + `
		FROM games g
		JOIN venues v ON v.id = g.venue_id
		JOIN users u ON u.id = g.organizer_id` + where +
		fmt.Sprintf(` ORDER BY g.date ASC LIMIT $%d OFFSET $%d`, i, i+1)
	args = append(args, limit, filter.Offset)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	games, err := collectGames(rows)
	if err != nil {
		return nil, 0, err
	}
	return games, total, nil
}

func (s *GamesStore) GetByOrganizer(ctx context.Context, userID int64) ([]Game, error) {
	query := `SELECT ` + gameColumns + `
		FROM games g
		JOIN venues v ON v.id = g.venue_id
		JOIN users u ON u.id = g.organizer_id
		WHERE g.organizer_id = $1
		ORDER BY g.date DESC`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectGames(rows)
}

func (s *GamesStore) UpdateStatus(ctx context.Context, gameID int64, status string) error {
	query := `UPDATE games SET status = $1, updated_at = NOW() WHERE id = $2`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	res, err := s.db.Exec(ctx, query, status, gameID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Register runs the registration protocol atomically: the game row is locked
// for the duration of the transaction so two concurrent requests cannot both
// pass the capacity check. The caller fills ticket.TicketID and PlayerInfo;
// on success the ticket row and the player entry are both persisted.
func (s *GamesStore) Register(ctx context.Context, gameID, userID int64, ticket *Ticket) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var maxPlayers, playerCount int
	err = tx.QueryRow(ctx, `
		SELECT g.max_players,
		       (SELECT COUNT(*) FROM game_players gp WHERE gp.game_id = g.id)
		FROM games g
		WHERE g.id = $1
		FOR UPDATE OF g
	`, gameID).Scan(&maxPlayers, &playerCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	var alreadyPlayer bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM game_players WHERE game_id = $1 AND user_id = $2)
	`, gameID, userID).Scan(&alreadyPlayer)
	if err != nil {
		return err
	}
	if alreadyPlayer {
		return ErrAlreadyRegistered
	}

	if playerCount >= maxPlayers {
		return ErrGameFull
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO game_tickets (ticket_id, game_id, user_id, player_name, player_email, player_phone, status)
		VALUES ($1, $2, $3, $4, $5, $6, 'Active')
		RETURNING id, booking_date, status
	`, ticket.TicketID, gameID, userID, ticket.PlayerName, ticket.PlayerEmail, ticket.PlayerPhone).
		Scan(&ticket.ID, &ticket.BookingDate, &ticket.Status)
	if err != nil {
		return err
	}
	ticket.GameID = gameID
	ticket.UserID = userID

	_, err = tx.Exec(ctx, `
		INSERT INTO game_players (game_id, user_id, status, joined_at)
		VALUES ($1, $2, 'Registered', NOW())
	`, gameID, userID)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// CancelRegistration removes the player and marks any active ticket Cancelled
// in the same transaction, so a later re-registration issues a fresh ticket.
func (s *GamesStore) CancelRegistration(ctx context.Context, gameID, userID int64) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	res, err := tx.Exec(ctx, `
		DELETE FROM game_players WHERE game_id = $1 AND user_id = $2
	`, gameID, userID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}

	_, err = tx.Exec(ctx, `
		UPDATE game_tickets SET status = 'Cancelled'
		WHERE game_id = $1 AND user_id = $2 AND status = 'Active'
	`, gameID, userID)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// MarkCompletedGames flips past Upcoming/Ongoing games to Completed.
func (s *GamesStore) MarkCompletedGames(ctx context.Context) (int64, error) {
	query := `
		UPDATE games
		SET status = 'Completed', updated_at = NOW()
		WHERE status IN ('Upcoming', 'Ongoing')
		  AND date < NOW() - INTERVAL '1 day'
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	res, err := s.db.Exec(ctx, query)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected(), nil
}

func collectGames(rows pgx.Rows) ([]Game, error) {
	var games []Game
	for rows.Next() {
		var game Game
		if err := scanGame(rows, &game); err != nil {
			return nil, err
		}
		games = append(games, game)
	}
	return games, rows.Err()
}
