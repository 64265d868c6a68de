package queue

import (
	"encoding/json"
	"log"

	"github.com/hibiken/asynq"
)

// CleanupScheduler satisfies service.MediaCleanup by deferring storage
// deletes to the worker instead of blocking the request.
type CleanupScheduler struct {
	client *asynq.Client
}

func NewCleanupScheduler(client *asynq.Client) *CleanupScheduler {
	return &CleanupScheduler{client: client}
}

func (s *CleanupScheduler) Schedule(key string) error {
	return EnqueueMediaCleanup(s.client, MediaCleanupPayload{Key: key})
}

func EnqueueMediaCleanup(asynqClient *asynq.Client, payload MediaCleanupPayload) error {
	taskPayload, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	task := asynq.NewTask(TaskTypeMediaCleanup, taskPayload)

	_, err = asynqClient.Enqueue(task)
	if err != nil {
		return err
	}

	log.Printf("Task scheduled: %+v", payload)
	return nil
}
