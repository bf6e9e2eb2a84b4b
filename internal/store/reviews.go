package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Review struct {
	ID            int64     `json:"id"`
	ReviewerID    int64     `json:"reviewer_id"`
	RevieweeID    int64     `json:"reviewee_id"`
	Rating        int       `json:"rating"` // 1-5
	Comment       string    `json:"comment"`
	RelatedGameID *int64    `json:"related_game_id,omitempty"`
	RelatedJobID  *int64    `json:"related_job_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Joined fields
	ReviewerName string `json:"reviewer_name,omitempty"`
	RevieweeName string `json:"reviewee_name,omitempty"`
}

type ReviewsStore struct {
	db *pgxpool.Pool
}

// refreshRevieweeRating recomputes the reviewee's aggregate from all of their
// remaining reviews: the arithmetic mean, zero when none remain. Runs inside
// the caller's transaction so the aggregate never drifts from the rows.
func refreshRevieweeRating(ctx context.Context, tx pgx.Tx, revieweeID int64) error {
	_, err := tx.Exec(ctx, `
		UPDATE users
		SET rating_average = COALESCE((SELECT AVG(rating) FROM reviews WHERE reviewee_id = $1), 0),
		    rating_count   = (SELECT COUNT(*) FROM reviews WHERE reviewee_id = $1),
		    updated_at     = NOW()
		WHERE id = $1
	`, revieweeID)
	return err
}

func (s *ReviewsStore) Create(ctx context.Context, review *Review) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO reviews (reviewer_id, reviewee_id, rating, comment, related_game_id, related_job_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`,
		review.ReviewerID,
		review.RevieweeID,
		review.Rating,
		review.Comment,
		review.RelatedGameID,
		review.RelatedJobID,
	).Scan(&review.ID, &review.CreatedAt, &review.UpdatedAt)
	if err != nil {
		return err
	}

	if err := refreshRevieweeRating(ctx, tx, review.RevieweeID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *ReviewsStore) GetByID(ctx context.Context, reviewID int64) (*Review, error) {
	query := `
		SELECT id, reviewer_id, reviewee_id, rating, comment,
		       related_game_id, related_job_id, created_at, updated_at
		FROM reviews
		WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	review := &Review{}
	err := s.db.QueryRow(ctx, query, reviewID).Scan(
		&review.ID,
		&review.ReviewerID,
		&review.RevieweeID,
		&review.Rating,
		&review.Comment,
		&review.RelatedGameID,
		&review.RelatedJobID,
		&review.CreatedAt,
		&review.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return review, nil
}

func (s *ReviewsStore) GetForUser(ctx context.Context, revieweeID int64) ([]Review, error) {
	query := `
		SELECT r.id, r.reviewer_id, r.reviewee_id, r.rating, r.comment,
		       r.related_game_id, r.related_job_id, r.created_at, r.updated_at,
		       ru.first_name || ' ' || ru.last_name,
		       ve.first_name || ' ' || ve.last_name
		FROM reviews r
		JOIN users ru ON ru.id = r.reviewer_id
		JOIN users ve ON ve.id = r.reviewee_id
		WHERE r.reviewee_id = $1
		ORDER BY r.created_at DESC
	`
	return s.collect(ctx, query, revieweeID)
}

func (s *ReviewsStore) GetByReviewer(ctx context.Context, reviewerID int64) ([]Review, error) {
	query := `
		SELECT r.id, r.reviewer_id, r.reviewee_id, r.rating, r.comment,
		       r.related_game_id, r.related_job_id, r.created_at, r.updated_at,
		       ru.first_name || ' ' || ru.last_name,
		       ve.first_name || ' ' || ve.last_name
		FROM reviews r
		JOIN users ru ON ru.id = r.reviewer_id
		JOIN users ve ON ve.id = r.reviewee_id
		WHERE r.reviewer_id = $1
		ORDER BY r.created_at DESC
	`
	return s.collect(ctx, query, reviewerID)
}

func (s *ReviewsStore) collect(ctx context.Context, query string, arg interface{}) ([]Review, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []Review
	for rows.Next() {
		var review Review
		err := rows.Scan(
			&review.ID,
			&review.ReviewerID,
			&review.RevieweeID,
			&review.Rating,
			&review.Comment,
			&review.RelatedGameID,
			&review.RelatedJobID,
			&review.CreatedAt,
			&review.UpdatedAt,
			&review.ReviewerName,
			&review.RevieweeName,
		)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, review)
	}
	return reviews, rows.Err()
}

func (s *ReviewsStore) Update(ctx context.Context, review *Review) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		UPDATE reviews
		SET rating = $1, comment = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING reviewee_id, updated_at
	`, review.Rating, review.Comment, review.ID).Scan(&review.RevieweeID, &review.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	if err := refreshRevieweeRating(ctx, tx, review.RevieweeID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *ReviewsStore) Delete(ctx context.Context, reviewID int64) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var revieweeID int64
	err = tx.QueryRow(ctx, `
		DELETE FROM reviews WHERE id = $1 RETURNING reviewee_id
	`, reviewID).Scan(&revieweeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	if err := refreshRevieweeRating(ctx, tx, revieweeID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
