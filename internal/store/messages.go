package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Message struct {
	ID         int64     `json:"id"`
	SenderID   int64     `json:"sender_id"`
	ReceiverID int64     `json:"receiver_id"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`

	// Joined fields
	SenderName   string `json:"sender_name,omitempty"`
	ReceiverName string `json:"receiver_name,omitempty"`
}

// Conversation is the derived most-recent-message-per-counterpart view.
type Conversation struct {
	UserID          int64     `json:"user_id"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	ProfilePhotoURL *string   `json:"profile_photo_url,omitempty"`
	LastMessage     string    `json:"last_message"`
	LastSenderID    int64     `json:"last_sender_id"`
	LastMessageAt   time.Time `json:"last_message_at"`
}

type MessagesStore struct {
	db *pgxpool.Pool
}

func (s *MessagesStore) Create(ctx context.Context, message *Message) error {
	query := `
		INSERT INTO messages (sender_id, receiver_id, text)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	return s.db.QueryRow(ctx, query,
		message.SenderID,
		message.ReceiverID,
		message.Text,
	).Scan(&message.ID, &message.CreatedAt)
}

func (s *MessagesStore) GetByID(ctx context.Context, messageID int64) (*Message, error) {
	query := `
		SELECT id, sender_id, receiver_id, text, created_at
		FROM messages
		WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	message := &Message{}
	err := s.db.QueryRow(ctx, query, messageID).Scan(
		&message.ID,
		&message.SenderID,
		&message.ReceiverID,
		&message.Text,
		&message.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return message, nil
}

// GetThread returns the full pair history in both directions, oldest first.
func (s *MessagesStore) GetThread(ctx context.Context, userID, otherUserID int64) ([]Message, error) {
	query := `
		SELECT m.id, m.sender_id, m.receiver_id, m.text, m.created_at,
		       su.first_name || ' ' || su.last_name,
		       ru.first_name || ' ' || ru.last_name
		FROM messages m
		JOIN users su ON su.id = m.sender_id
		JOIN users ru ON ru.id = m.receiver_id
		WHERE (m.sender_id = $1 AND m.receiver_id = $2)
		   OR (m.sender_id = $2 AND m.receiver_id = $1)
		ORDER BY m.created_at ASC
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.Query(ctx, query, userID, otherUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []Message{}
	for rows.Next() {
		var m Message
		err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Text, &m.CreatedAt, &m.SenderName, &m.ReceiverName)
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (s *MessagesStore) Delete(ctx context.Context, messageID int64) error {
	query := `DELETE FROM messages WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	res, err := s.db.Exec(ctx, query, messageID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetConversations collapses the user's messages to the most recent one per
// counterpart, newest conversation first.
func (s *MessagesStore) GetConversations(ctx context.Context, userID int64) ([]Conversation, error) {
	query := `
		SELECT c.counterpart, u.first_name, u.last_name, u.profile_photo_url,
		       c.text, c.sender_id, c.created_at
		FROM (
			SELECT DISTINCT ON (counterpart) *
			FROM (
				SELECT CASE WHEN m.sender_id = $1 THEN m.receiver_id ELSE m.sender_id END AS counterpart,
				       m.text, m.sender_id, m.created_at
				FROM messages m
				WHERE m.sender_id = $1 OR m.receiver_id = $1
			) t
			ORDER BY counterpart, created_at DESC
		) c
		JOIN users u ON u.id = c.counterpart
		ORDER BY c.created_at DESC
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	conversations := []Conversation{}
	for rows.Next() {
		var c Conversation
		err := rows.Scan(
			&c.UserID,
			&c.FirstName,
			&c.LastName,
			&c.ProfilePhotoURL,
			&c.LastMessage,
			&c.LastSenderID,
			&c.LastMessageAt,
		)
		if err != nil {
			return nil, err
		}
		conversations = append(conversations, c)
	}
	return conversations, rows.Err()
}
