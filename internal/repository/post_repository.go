package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"github.com/clipcast/clipcast/internal/models"
)

type PostRepository interface {
	// CreateWithJobs persists the post and its platform jobs in one
	// transaction so a crash can never leave a post with a partial fan-out.
	CreateWithJobs(ctx context.Context, post *models.Post, jobs []*models.Job) error
	GetByUser(ctx context.Context, id, userID string) (*models.Post, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	// DeleteWithJobs removes the jobs and then the post inside one
	// transaction; storage cleanup is the caller's concern.
	DeleteWithJobs(ctx context.Context, id string) error
	AllVideoKeys(ctx context.Context) ([]*VideoRef, error)
}

// VideoRef is what the storage audit sweep needs from a post.
type VideoRef struct {
	PostID   string
	UserID   string
	VideoKey string
}

type postRepository struct {
	db   *sql.DB
	jobs JobRepository
}

func NewPostRepository(db *sql.DB, jobs JobRepository) PostRepository {
	return &postRepository{db: db, jobs: jobs}
}

func (r *postRepository) CreateWithJobs(ctx context.Context, post *models.Post, jobs []*models.Job) (err error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		} else if err != nil {
			tx.Rollback()
		}
	}()

	query := `
		INSERT INTO posts (id, user_id, video_key, video_filename, caption, platforms, status, scheduled_for, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
	`

	platforms := make([]string, len(post.Platforms))
	for i, p := range post.Platforms {
		platforms[i] = string(p)
	}

	_, err = tx.ExecContext(ctx, query,
		post.ID, post.UserID, post.VideoKey, post.VideoFilename, post.Caption,
		pq.Array(platforms), post.Status, post.ScheduledFor, post.CreatedAt)
	if err != nil {
		slog.Info(err.Error())
		return fmt.Errorf("error creating post: %w", err)
	}

	for _, job := range jobs {
		if err = r.jobs.Create(ctx, tx, job); err != nil {
			return fmt.Errorf("error creating job for %s: %w", job.Platform, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *postRepository) GetByUser(ctx context.Context, id, userID string) (*models.Post, error) {
	query := `
		SELECT id, user_id, video_key, video_filename, caption, platforms, status, scheduled_for, created_at, updated_at
		FROM posts WHERE id = $1 AND user_id = $2
	`
	row := r.db.QueryRowContext(ctx, query, id, userID)

	post, err := scanPost(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	post.Jobs, err = r.jobs.ListByPostID(ctx, post.ID)
	if err != nil {
		return nil, err
	}

	return post, nil
}

func (r *postRepository) ListByUser(ctx context.Context, userID string) ([]*models.Post, error) {
	query := `
		SELECT id, user_id, video_key, video_filename, caption, platforms, status, scheduled_for, created_at, updated_at
		FROM posts WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	for _, post := range posts {
		post.Jobs, err = r.jobs.ListByPostID(ctx, post.ID)
		if err != nil {
			return nil, err
		}
	}

	return posts, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	query := `
		UPDATE posts
		SET caption = $1,
			scheduled_for = $2,
			status = $3,
			updated_at = $4
		WHERE id = $5
	`
	_, err := r.db.ExecContext(ctx, query, post.Caption, post.ScheduledFor, post.Status, time.Now(), post.ID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) DeleteWithJobs(ctx context.Context, id string) (err error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		} else if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM jobs WHERE post_id = $1`, id); err != nil {
		slog.Info(err.Error())
		return err
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id); err != nil {
		slog.Info(err.Error())
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *postRepository) AllVideoKeys(ctx context.Context) ([]*VideoRef, error) {
	query := `SELECT id, user_id, video_key FROM posts`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var refs []*VideoRef
	for rows.Next() {
		var ref VideoRef
		if err := rows.Scan(&ref.PostID, &ref.UserID, &ref.VideoKey); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		refs = append(refs, &ref)
	}
	return refs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*models.Post, error) {
	var post models.Post
	var platforms pq.StringArray
	err := row.Scan(&post.ID, &post.UserID, &post.VideoKey, &post.VideoFilename,
		&post.Caption, &platforms, &post.Status, &post.ScheduledFor,
		&post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return nil, err
	}

	post.Platforms = make([]models.Platform, len(platforms))
	for i, p := range platforms {
		post.Platforms[i] = models.Platform(p)
	}
	return &post, nil
}
