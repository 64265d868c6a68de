package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/clipcast/clipcast/internal/models"
)

// JobRepository also carries the status-update surface for the publishing
// worker, which runs outside this service.
type JobRepository interface {
	Create(ctx context.Context, tx *sql.Tx, job *models.Job) error
	ListByPostID(ctx context.Context, postID string) ([]*models.Job, error)
	UpdateStatus(ctx context.Context, status models.JobStatus, jobID string) error
	MarkTerminal(ctx context.Context, jobID string, status models.JobStatus, errorMessage *string) error
}

type jobRepository struct {
	db *sql.DB
}

func NewJobRepository(db *sql.DB) JobRepository {
	return &jobRepository{db: db}
}

func (r *jobRepository) Create(ctx context.Context, tx *sql.Tx, job *models.Job) error {
	query := `
		INSERT INTO jobs (id, post_id, platform, status, display_order, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, job.ID, job.PostID, job.Platform, job.Status, job.DisplayOrder, time.Now())
	} else {
		_, err = r.db.ExecContext(ctx, query, job.ID, job.PostID, job.Platform, job.Status, job.DisplayOrder, time.Now())
	}
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *jobRepository) ListByPostID(ctx context.Context, postID string) ([]*models.Job, error) {
	query := `
		SELECT id, post_id, platform, status, error_message, completed_at, display_order
		FROM jobs WHERE post_id = $1
		ORDER BY display_order ASC
	`
	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var jobs []*models.Job
	for rows.Next() {
		var job models.Job
		err := rows.Scan(&job.ID, &job.PostID, &job.Platform, &job.Status,
			&job.ErrorMessage, &job.CompletedAt, &job.DisplayOrder)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		jobs = append(jobs, &job)
	}
	return jobs, rows.Err()
}

func (r *jobRepository) UpdateStatus(ctx context.Context, status models.JobStatus, jobID string) error {
	query := `UPDATE jobs SET status = $1 WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, status, jobID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *jobRepository) MarkTerminal(ctx context.Context, jobID string, status models.JobStatus, errorMessage *string) error {
	query := `
		UPDATE jobs
		SET status = $1,
			error_message = $2,
			completed_at = $3
		WHERE id = $4
	`
	_, err := r.db.ExecContext(ctx, query, status, errorMessage, time.Now(), jobID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
