package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrAlreadyApplied = errors.New("already applied for this job")

const (
	JobStatusOpen   = "Open"
	JobStatusClosed = "Closed"
)

type Job struct {
	ID             int64      `json:"id"`
	Title          string     `json:"title"`
	Description    *string    `json:"description,omitempty"`
	JobType        string     `json:"job_type"`
	RequiredSkills []string   `json:"required_skills"`
	VenueID        *int64     `json:"venue_id,omitempty"`
	PostedByID     int64      `json:"posted_by_id"`
	Location       *string    `json:"location,omitempty"`
	SalaryMin      *float64   `json:"salary_min,omitempty"`
	SalaryMax      *float64   `json:"salary_max,omitempty"`
	SalaryPeriod   *string    `json:"salary_period,omitempty"`
	StartDate      *time.Time `json:"start_date,omitempty"`
	EndDate        *time.Time `json:"end_date,omitempty"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	// Joined fields
	PostedByName   string         `json:"posted_by_name,omitempty"`
	VenueName      *string        `json:"venue_name,omitempty"`
	ApplicantCount int            `json:"applicant_count"`
	Applicants     []JobApplicant `json:"applicants,omitempty"`
}

// JobApplicant is one entry in a job's applicant list.
type JobApplicant struct {
	UserID          int64     `json:"user_id"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	ProfilePhotoURL *string   `json:"profile_photo_url,omitempty"`
	Status          string    `json:"status"`
	AppliedAt       time.Time `json:"applied_at"`
}

// JobFilter narrows job listings.
type JobFilter struct {
	JobType  string
	Status   string
	Location string
	Limit    int
	Offset   int
}

type JobsStore struct {
	db *pgxpool.Pool
}

const jobColumns = `
	j.id, j.title, j.description, j.job_type, j.required_skills, j.venue_id,
	j.posted_by, j.location, j.salary_min, j.salary_max, j.salary_period,
	j.start_date, j.end_date, j.status, j.created_at, j.updated_at,
	u.first_name || ' ' || u.last_name,
	v.name,
	(SELECT COUNT(*) FROM job_applicants ja WHERE ja.job_id = j.id)`

func scanJob(row pgx.Row, job *Job) error {
	err := row.Scan(
		&job.ID,
		&job.Title,
		&job.Description,
		&job.JobType,
		&job.RequiredSkills,
		&job.VenueID,
		&job.PostedByID,
		&job.Location,
		&job.SalaryMin,
		&job.SalaryMax,
		&job.SalaryPeriod,
		&job.StartDate,
		&job.EndDate,
		&job.Status,
		&job.CreatedAt,
		&job.UpdatedAt,
		&job.PostedByName,
		&job.VenueName,
		&job.ApplicantCount,
	)
	if err != nil {
		return err
	}
	if job.RequiredSkills == nil {
		job.RequiredSkills = []string{}
	}
	return nil
}

func (s *JobsStore) Create(ctx context.Context, job *Job) error {
	query := `
		INSERT INTO jobs (
			title, description, job_type, required_skills, venue_id, posted_by,
			location, salary_min, salary_max, salary_period, start_date, end_date, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	if job.Status == "" {
		job.Status = JobStatusOpen
	}

	return s.db.QueryRow(
		ctx, query,
		job.Title,
		job.Description,
		job.JobType,
		job.RequiredSkills,
		job.VenueID,
		job.PostedByID,
		job.Location,
		job.SalaryMin,
		job.SalaryMax,
		job.SalaryPeriod,
		job.StartDate,
		job.EndDate,
		job.Status,
	).Scan(&job.ID, &job.CreatedAt, &job.UpdatedAt)
}

func (s *JobsStore) GetByID(ctx context.Context, jobID int64) (*Job, error) {
	query := `SELECT ` + jobColumns + `
		FROM jobs j
		JOIN users u ON u.id = j.posted_by
		LEFT JOIN venues v ON v.id = j.venue_id
		WHERE j.id = $1`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	job := &Job{}
	if err := scanJob(s.db.QueryRow(ctx, query, jobID), job); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	applicants, err := s.getApplicants(ctx, jobID)
	if err != nil {
		return nil, err
	}
	job.Applicants = applicants

	return job, nil
}

func (s *JobsStore) getApplicants(ctx context.Context, jobID int64) ([]JobApplicant, error) {
	query := `
		SELECT ja.user_id, u.first_name, u.last_name, u.profile_photo_url, ja.status, ja.applied_at
		FROM job_applicants ja
		JOIN users u ON u.id = ja.user_id
		WHERE ja.job_id = $1
		ORDER BY ja.applied_at
	`

	rows, err := s.db.Query(ctx, query, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applicants := []JobApplicant{}
	for rows.Next() {
		var a JobApplicant
		if err := rows.Scan(&a.UserID, &a.FirstName, &a.LastName, &a.ProfilePhotoURL, &a.Status, &a.AppliedAt); err != nil {
			return nil, err
		}
		applicants = append(applicants, a)
	}
	return applicants, rows.Err()
}

func (s *JobsStore) List(ctx context.Context, filter JobFilter) ([]Job, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	i := 1

	if filter.JobType != "" {
		where += fmt.Sprintf(` AND j.job_type = $%d`, i)
		args = append(args, filter.JobType)
		i++
	}
	if filter.Status != "" {
		where += fmt.Sprintf(` AND j.status = $%d`, i)
		args = append(args, filter.Status)
		i++
	}
	if filter.Location != "" {
		where += fmt.Sprintf(` AND j.location ILIKE '%%' || $%d || '%%'`, i)
		args = append(args, filter.Location)
		i++
	}

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var total int
	countQuery := `SELECT COUNT(*) FROM jobs j` + where
	if err := s.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count jobs: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + jobColumns + `
		FROM jobs j
		JOIN users u ON u.id = j.posted_by
		LEFT JOIN venues v ON v.id = j.venue_id` + where +
		fmt.Sprintf(` ORDER BY j.created_at DESC LIMIT $%d OFFSET $%d`, i, i+1)
	args = append(args, limit, filter.Offset)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	jobs, err := collectJobs(rows)
	if err != nil {
		return nil, 0, err
	}
	return jobs, total, nil
}

// Apply appends an applicant entry; the unique index on (job_id, user_id)
// backs the duplicate check.
func (s *JobsStore) Apply(ctx context.Context, jobID, userID int64) error {
	query := `
		INSERT INTO job_applicants (job_id, user_id, status, applied_at)
		VALUES ($1, $2, 'Pending', NOW())
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	_, err := s.db.Exec(ctx, query, jobID, userID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return ErrAlreadyApplied
			case "23503":
				return ErrNotFound
			}
		}
		return err
	}
	return nil
}

// UpdateApplicantStatus targets a single applicant row by identity.
func (s *JobsStore) UpdateApplicantStatus(ctx context.Context, jobID, applicantID int64, status string) error {
	query := `
		UPDATE job_applicants
		SET status = $1
		WHERE job_id = $2 AND user_id = $3
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	res, err := s.db.Exec(ctx, query, status, jobID, applicantID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *JobsStore) Close(ctx context.Context, jobID int64) error {
	query := `UPDATE jobs SET status = 'Closed', updated_at = NOW() WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	res, err := s.db.Exec(ctx, query, jobID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *JobsStore) GetByPoster(ctx context.Context, userID int64) ([]Job, error) {
	query := `SELECT ` + jobColumns + `
		FROM jobs j
		JOIN users u ON u.id = j.posted_by
		LEFT JOIN venues v ON v.id = j.venue_id
		WHERE j.posted_by = $1
		ORDER BY j.created_at DESC`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectJobs(rows)
}

func (s *JobsStore) GetAppliedBy(ctx context.Context, userID int64) ([]Job, error) {
	query := `SELECT ` + jobColumns + `
		FROM jobs j
		JOIN users u ON u.id = j.posted_by
		LEFT JOIN venues v ON v.id = j.venue_id
		WHERE EXISTS (SELECT 1 FROM job_applicants ja WHERE ja.job_id = j.id AND ja.user_id = $1)
		ORDER BY j.created_at DESC`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectJobs(rows)
}

func collectJobs(rows pgx.Rows) ([]Job, error) {
	var jobs []Job
	for rows.Next() {
		var job Job
		if err := scanJob(rows, &job); err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}
