package queue

import (
	"github.com/clipcast/clipcast/internal/service"
)

const TaskTypeMediaCleanup = "media:cleanup"

type MediaCleanupPayload struct {
	Key string `json:"key"`
}

type Queue struct {
	storage service.StorageService
}

func NewQueue(storage service.StorageService) *Queue {
	return &Queue{
		storage: storage,
	}
}
