package job

import (
	"context"
	"log/slog"
	"sync"

	"github.com/clipcast/clipcast/internal/repository"
	"github.com/clipcast/clipcast/internal/service"
)

// VideoLister is the slice of the post repository the audit needs.
type VideoLister interface {
	AllVideoKeys(ctx context.Context) ([]*repository.VideoRef, error)
}

// StorageAuditJob periodically verifies that every post still points at an
// existing storage object. Read-only: a missing object is reported, not
// repaired, since the video may simply not have finished uploading yet.
type StorageAuditJob struct {
	pr      VideoLister
	storage service.StorageService
}

func NewStorageAuditJob(pr VideoLister, storage service.StorageService) *StorageAuditJob {
	return &StorageAuditJob{
		pr:      pr,
		storage: storage,
	}
}

func (j *StorageAuditJob) AuditVideos() {
	ctx := context.Background()

	refs, err := j.pr.AllVideoKeys(ctx)
	if err != nil {
		slog.Info(err.Error())
		return
	}

	var wg sync.WaitGroup

	concurrencyLimit := 10
	semaphore := make(chan struct{}, concurrencyLimit)

	for _, ref := range refs {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(ref *repository.VideoRef) {
			defer wg.Done()
			defer func() { <-semaphore }()

			exists, err := j.storage.Exists(ctx, ref.VideoKey)
			if err != nil {
				slog.Info("Unable to check video object", "key", ref.VideoKey, "error", err)
				return
			}
			if !exists {
				slog.Warn("post references missing video object",
					"post_id", ref.PostID, "user_id", ref.UserID, "key", ref.VideoKey)
			}
		}(ref)
	}

	wg.Wait()
}
