package service

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"
	"unicode/utf8"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/clipcast/clipcast/internal/models"
	"github.com/clipcast/clipcast/internal/repository"
	"github.com/clipcast/clipcast/internal/transfer"
)

// MaxCaptionLength matches the tightest platform limit (Instagram).
const MaxCaptionLength = 2200

// MediaCleanup schedules best-effort removal of a storage object. Failures
// must never surface to the API caller.
type MediaCleanup interface {
	Schedule(key string) error
}

type PostService interface {
	Create(ctx context.Context, userID string, pc *transfer.PostCreation) (*models.Post, error)
	Update(ctx context.Context, postID, userID string, pu *transfer.PostUpdate) (*models.Post, error)
	Remove(ctx context.Context, userID, postID string) error
	List(ctx context.Context, userID string) ([]*models.Post, error)
	Info(ctx context.Context, postID, userID string) (*models.Post, error)
}

type postService struct {
	pr      repository.PostRepository
	storage StorageService
	cleanup MediaCleanup
	now     func() time.Time
}

func NewPostService(pr repository.PostRepository, storage StorageService, cleanup MediaCleanup) PostService {
	return &postService{
		pr:      pr,
		storage: storage,
		cleanup: cleanup,
		now:     time.Now,
	}
}

// Create persists a draft post and fans out one pending job per requested
// platform, preserving request order.
func (s *postService) Create(ctx context.Context, userID string, pc *transfer.PostCreation) (*models.Post, error) {
	if pc == nil || pc.VideoKey == "" {
		err := fmt.Errorf("%w: videoKey is required", ErrValidation)
		slog.Info(err.Error())
		return nil, err
	}

	platforms, err := parsePlatforms(pc.Platforms)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	if err := validateCaption(pc.Caption); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	filename := pc.VideoFilename
	if filename == "" {
		filename = path.Base(pc.VideoKey)
	}

	postID, err := gonanoid.New()
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		ID:            postID,
		UserID:        userID,
		VideoKey:      pc.VideoKey,
		VideoFilename: filename,
		Caption:       pc.Caption,
		Platforms:     platforms,
		Status:        models.PostStatusDraft,
		CreatedAt:     s.now(),
		UpdatedAt:     s.now(),
	}

	jobs := make([]*models.Job, len(platforms))
	for i, platform := range platforms {
		jobID, err := gonanoid.New()
		if err != nil {
			return nil, err
		}
		jobs[i] = &models.Job{
			ID:           jobID,
			PostID:       postID,
			Platform:     platform,
			Status:       models.JobStatusPending,
			DisplayOrder: i,
		}
	}

	if err := s.pr.CreateWithJobs(ctx, post, jobs); err != nil {
		return nil, err
	}

	post.Jobs = jobs
	return post, nil
}

func (s *postService) Update(ctx context.Context, postID, userID string, pu *transfer.PostUpdate) (*models.Post, error) {
	post, err := s.ownedPost(ctx, postID, userID)
	if err != nil {
		return nil, err
	}

	if !post.Status.Editable() {
		err = fmt.Errorf("%w: cannot edit a post in status %s", ErrInvalidState, post.Status)
		slog.Info(err.Error())
		return nil, err
	}

	if pu.HasCaption {
		if err := validateCaption(pu.Caption); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		post.Caption = pu.Caption
	}

	if pu.HasScheduledFor {
		post.ScheduledFor = pu.ScheduledFor
		if pu.ScheduledFor != nil {
			post.Status = models.PostStatusScheduled
		} else {
			post.Status = models.PostStatusDraft
		}
	}

	if err := s.pr.Update(ctx, post); err != nil {
		return nil, err
	}

	return post, nil
}

// Remove deletes the jobs and the post, then schedules storage cleanup.
// Cleanup failure is logged only: the aggregate deletion already committed.
func (s *postService) Remove(ctx context.Context, userID, postID string) error {
	post, err := s.ownedPost(ctx, postID, userID)
	if err != nil {
		return err
	}

	if post.Status == models.PostStatusPublished {
		err = fmt.Errorf("%w: cannot delete a published post", ErrInvalidState)
		slog.Info(err.Error())
		return err
	}

	if err := s.pr.DeleteWithJobs(ctx, post.ID); err != nil {
		return err
	}

	if err := s.cleanup.Schedule(post.VideoKey); err != nil {
		slog.Warn("failed to schedule video cleanup, deleting inline", "key", post.VideoKey, "error", err)
		if err := s.storage.Delete(ctx, post.VideoKey); err != nil {
			slog.Warn("failed to delete video from storage", "key", post.VideoKey, "error", err)
		}
	}

	return nil
}

func (s *postService) List(ctx context.Context, userID string) ([]*models.Post, error) {
	posts, err := s.pr.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing posts: %w", err)
	}
	return posts, nil
}

func (s *postService) Info(ctx context.Context, postID, userID string) (*models.Post, error) {
	return s.ownedPost(ctx, postID, userID)
}

// ownedPost is the single ownership predicate: a post that exists but
// belongs to someone else is indistinguishable from one that doesn't exist.
func (s *postService) ownedPost(ctx context.Context, postID, userID string) (*models.Post, error) {
	if postID == "" || userID == "" {
		return nil, fmt.Errorf("%w: post", ErrNotFound)
	}

	post, err := s.pr.GetByUser(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		err = fmt.Errorf("%w: post", ErrNotFound)
		slog.Info(err.Error())
		return nil, err
	}
	return post, nil
}

func parsePlatforms(raw []string) ([]models.Platform, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: platforms cannot be empty", ErrValidation)
	}

	var invalid []string
	seen := make(map[models.Platform]struct{}, len(raw))
	platforms := make([]models.Platform, 0, len(raw))

	for _, entry := range raw {
		platform, err := models.ParsePlatform(entry)
		if err != nil {
			invalid = append(invalid, entry)
			continue
		}
		if _, ok := seen[platform]; ok {
			return nil, fmt.Errorf("%w: duplicate platform %s", ErrValidation, platform)
		}
		seen[platform] = struct{}{}
		platforms = append(platforms, platform)
	}

	if len(invalid) > 0 {
		return nil, fmt.Errorf("%w: invalid platforms: %s", ErrValidation, strings.Join(invalid, ", "))
	}

	return platforms, nil
}

func validateCaption(caption *string) error {
	if caption != nil && utf8.RuneCountInString(*caption) > MaxCaptionLength {
		return fmt.Errorf("%w: caption exceeds %d characters", ErrValidation, MaxCaptionLength)
	}
	return nil
}
