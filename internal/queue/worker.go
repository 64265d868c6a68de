package queue

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
)

// HandleMediaCleanupTask removes a storage object left behind by a deleted
// post. Cleanup is best-effort: a failure is logged and the task completes.
func (q *Queue) HandleMediaCleanupTask(ctx context.Context, task *asynq.Task) error {
	var payload MediaCleanupPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	if err := q.storage.Delete(ctx, payload.Key); err != nil {
		slog.Warn("failed to delete video from storage", "key", payload.Key, "error", err)
	}

	return nil
}
