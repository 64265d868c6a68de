package models

import (
	"fmt"
	"time"
)

// Platform is a closed enum; anything else must be rejected at the
// decoding edge via ParsePlatform.
type Platform string

const (
	PlatformInstagram Platform = "INSTAGRAM"
	PlatformTiktok    Platform = "TIKTOK"
	PlatformYoutube   Platform = "YOUTUBE"
)

func ParsePlatform(s string) (Platform, error) {
	switch Platform(s) {
	case PlatformInstagram, PlatformTiktok, PlatformYoutube:
		return Platform(s), nil
	}
	return "", fmt.Errorf("unknown platform: %s", s)
}

type PostStatus string

const (
	PostStatusDraft      PostStatus = "DRAFT"
	PostStatusScheduled  PostStatus = "SCHEDULED"
	PostStatusPublishing PostStatus = "PUBLISHING"
	PostStatusPublished  PostStatus = "PUBLISHED"
	PostStatusPartial    PostStatus = "PARTIAL"
	PostStatusFailed     PostStatus = "FAILED"
)

func ParsePostStatus(s string) (PostStatus, error) {
	switch PostStatus(s) {
	case PostStatusDraft, PostStatusScheduled, PostStatusPublishing,
		PostStatusPublished, PostStatusPartial, PostStatusFailed:
		return PostStatus(s), nil
	}
	return "", fmt.Errorf("unknown post status: %s", s)
}

// Editable reports whether caption/schedule edits are still allowed.
func (s PostStatus) Editable() bool {
	return s == PostStatusDraft || s == PostStatusScheduled
}

type JobStatus string

const (
	JobStatusPending    JobStatus = "PENDING"
	JobStatusProcessing JobStatus = "PROCESSING"
	JobStatusCompleted  JobStatus = "COMPLETED"
	JobStatusFailed     JobStatus = "FAILED"
)

func ParseJobStatus(s string) (JobStatus, error) {
	switch JobStatus(s) {
	case JobStatusPending, JobStatusProcessing, JobStatusCompleted, JobStatusFailed:
		return JobStatus(s), nil
	}
	return "", fmt.Errorf("unknown job status: %s", s)
}

type Post struct {
	ID            string     `db:"id" json:"id"`
	UserID        string     `db:"user_id" json:"user_id"`
	VideoKey      string     `db:"video_key" json:"videoKey"`
	VideoFilename string     `db:"video_filename" json:"videoFilename"`
	Caption       *string    `db:"caption" json:"caption"`
	Platforms     []Platform `db:"platforms" json:"platforms"`
	Status        PostStatus `db:"status" json:"status"`
	ScheduledFor  *time.Time `db:"scheduled_for" json:"scheduledFor"`
	CreatedAt     time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updatedAt"`
	Jobs          []*Job     `json:"jobs"`
}

type Job struct {
	ID           string     `db:"id" json:"id"`
	PostID       string     `db:"post_id" json:"post_id"`
	Platform     Platform   `db:"platform" json:"platform"`
	Status       JobStatus  `db:"status" json:"status"`
	ErrorMessage *string    `db:"error_message" json:"errorMessage"`
	CompletedAt  *time.Time `db:"completed_at" json:"completedAt"`
	DisplayOrder int        `db:"display_order" json:"-"`
}
