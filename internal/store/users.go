package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

var ErrDuplicateEmail = errors.New("a user with that email already exists")

// Skill is one entry in a user's skills list, stored as JSONB.
type Skill struct {
	SkillName        string `json:"skill_name"`
	ProficiencyLevel string `json:"proficiency_level"`
	YearsExperience  int    `json:"years_experience,omitempty"`
	Certification    string `json:"certification,omitempty"`
}

// Rating is the running review aggregate kept on the user row.
type Rating struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

type User struct {
	ID              int64     `json:"id"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	Password        password  `json:"-"`
	ProfilePhotoURL *string   `json:"profile_photo_url,omitempty"`
	Bio             string    `json:"bio"`
	Address         *string   `json:"address,omitempty"`
	City            *string   `json:"city,omitempty"`
	State           *string   `json:"state,omitempty"`
	Longitude       float64   `json:"longitude"`
	Latitude        float64   `json:"latitude"`
	Skills          []Skill   `json:"skills"`
	PreferredSports []string  `json:"preferred_sports"`
	Ratings         Rating    `json:"ratings"`
	UserType        string    `json:"user_type"`
	RefreshToken    string    `json:"-"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Password struct to store plain text and hash
type password struct {
	text *string `json:"-"`
	hash []byte  `json:"-"`
}

func (p *password) Set(text string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(text), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	p.text = &text
	p.hash = hash

	return nil
}

func (p *password) Compare(text string) error {
	return bcrypt.CompareHashAndPassword(p.hash, []byte(text))
}

type UsersStore struct {
	db *pgxpool.Pool
}

const userColumns = `
	id, first_name, last_name, email, phone, profile_photo_url, bio,
	address, city, state,
	COALESCE(ST_X(location::geometry), 0), COALESCE(ST_Y(location::geometry), 0),
	skills, preferred_sports, rating_average, rating_count, user_type,
	created_at, updated_at`

func scanUser(row pgx.Row, user *User) error {
	var skills []byte
	err := row.Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.Phone,
		&user.ProfilePhotoURL,
		&user.Bio,
		&user.Address,
		&user.City,
		&user.State,
		&user.Longitude,
		&user.Latitude,
		&skills,
		&user.PreferredSports,
		&user.Ratings.Average,
		&user.Ratings.Count,
		&user.UserType,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if len(skills) > 0 {
		if err := json.Unmarshal(skills, &user.Skills); err != nil {
			return fmt.Errorf("decoding skills: %w", err)
		}
	}
	if user.Skills == nil {
		user.Skills = []Skill{}
	}
	if user.PreferredSports == nil {
		user.PreferredSports = []string{}
	}
	return nil
}

func (s *UsersStore) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (first_name, last_name, email, phone, password, user_type, city, location)
		VALUES ($1, $2, LOWER($3), $4, $5, $6, $7, ST_SetSRID(ST_MakePoint($8, $9), 4326)::geography)
		RETURNING id, created_at, updated_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	if user.UserType == "" {
		user.UserType = "Player"
	}

	err := s.db.QueryRow(
		ctx, query,
		user.FirstName,
		user.LastName,
		user.Email,
		user.Phone,
		user.Password.hash,
		user.UserType,
		user.City,
		user.Longitude,
		user.Latitude,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "users_email_key" {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (s *UsersStore) GetByID(ctx context.Context, userID int64) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	user := &User{}
	if err := scanUser(s.db.QueryRow(ctx, query, userID), user); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// GetByEmail also loads the password hash so the caller can verify credentials.
func (s *UsersStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT id, first_name, last_name, email, phone, password, user_type, created_at
		FROM users WHERE email = LOWER($1)
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	user := &User{}
	err := s.db.QueryRow(ctx, query, email).Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.Phone,
		&user.Password.hash,
		&user.UserType,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

var userUpdatableColumns = map[string]string{
	"first_name": "first_name",
	"last_name":  "last_name",
	"email":      "email",
	"phone":      "phone",
	"bio":        "bio",
	"city":       "city",
	"state":      "state",
	"address":    "address",
	"user_type":  "user_type",
	"skills":     "skills",
}

// Update applies a partial update; only the provided keys are touched.
func (s *UsersStore) Update(ctx context.Context, userID int64, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}

	setClauses := make([]string, 0, len(updates)+1)
	args := make([]interface{}, 0, len(updates)+1)
	i := 1

	for key, value := range updates {
		column, ok := userUpdatableColumns[key]
		if !ok {
			return fmt.Errorf("invalid update field: %s", key)
		}
		if column == "skills" {
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
	args = append(args, userID)

	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d`, strings.Join(setClauses, ", "), i)

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	res, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateEmail
		}
		return err
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *UsersStore) AddSkill(ctx context.Context, userID int64, skill Skill) error {
	raw, err := json.Marshal(skill)
	if err != nil {
		return err
	}

	query := `
		UPDATE users
		SET skills = COALESCE(skills, '[]'::jsonb) || jsonb_build_array($1::jsonb),
		    updated_at = NOW()
		WHERE id = $2
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	res, err := s.db.Exec(ctx, query, raw, userID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Search matches skill names and cities case-insensitively by substring.
func (s *UsersStore) Search(ctx context.Context, skill, city string, limit int) ([]User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE 1=1`
	args := []interface{}{}
	i := 1

	if skill != "" {
		query += fmt.Sprintf(` AND EXISTS (
			SELECT 1 FROM jsonb_array_elements(COALESCE(skills, '[]'::jsonb)) AS s
			WHERE s->>'skill_name' ILIKE '%%' || $%d || '%%'
		)`, i)
		args = append(args, skill)
		i++
	}
	if city != "" {
		query += fmt.Sprintf(` AND city ILIKE '%%' || $%d || '%%'`, i)
		args = append(args, city)
		i++
	}

	query += fmt.Sprintf(` ORDER BY rating_average DESC, id LIMIT $%d`, i)
	args = append(args, limit)

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectUsers(rows)
}

// GetNearby returns users within maxDistance meters of the given point.
func (s *UsersStore) GetNearby(ctx context.Context, longitude, latitude float64, maxDistance, limit int) ([]User, error) {
	query := `SELECT ` + userColumns + ` FROM users
		WHERE ST_DWithin(location, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography, $3)
		ORDER BY location <-> ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography
		LIMIT $4`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.Query(ctx, query, longitude, latitude, maxDistance, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectUsers(rows)
}

func (s *UsersStore) SetProfilePhoto(ctx context.Context, userID int64, url string) error {
	query := `UPDATE users SET profile_photo_url = $1, updated_at = NOW() WHERE id = $2`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	_, err := s.db.Exec(ctx, query, url, userID)
	return err
}

func (s *UsersStore) SetRefreshToken(ctx context.Context, userID int64, token string) error {
	query := `UPDATE users SET refresh_token = $1, updated_at = NOW() WHERE id = $2`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	_, err := s.db.Exec(ctx, query, token, userID)
	return err
}

// GetRefreshToken returns the stored refresh token for the user, empty when
// none has been issued or it was revoked.
func (s *UsersStore) GetRefreshToken(ctx context.Context, userID int64) (string, error) {
	query := `SELECT COALESCE(refresh_token, '') FROM users WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var token string
	if err := s.db.QueryRow(ctx, query, userID).Scan(&token); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return token, nil
}

// ListExcept returns every user but the given one, for the chat contact list.
func (s *UsersStore) ListExcept(ctx context.Context, userID int64, limit int) ([]User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id != $1 ORDER BY first_name, last_name LIMIT $2`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectUsers(rows)
}

func collectUsers(rows pgx.Rows) ([]User, error) {
	var users []User
	for rows.Next() {
		var user User
		if err := scanUser(rows, &user); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}
