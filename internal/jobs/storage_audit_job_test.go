package job

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/clipcast/clipcast/internal/repository"
	"github.com/clipcast/clipcast/internal/transfer"
)

type stubVideoLister struct {
	refs []*repository.VideoRef
}

func (s *stubVideoLister) AllVideoKeys(ctx context.Context) ([]*repository.VideoRef, error) {
	return s.refs, nil
}

type auditStorage struct {
	mu       sync.Mutex
	checked  []string
	existing map[string]bool
}

func (s *auditStorage) Put(ctx context.Context, key string, file []byte, contentType string) (*transfer.UploadResult, error) {
	return nil, nil
}

func (s *auditStorage) SignedPutURL(ctx context.Context, key, contentType string, expires time.Duration) (string, error) {
	return "", nil
}

func (s *auditStorage) SignedGetURL(ctx context.Context, key string, expires time.Duration) (string, error) {
	return "", nil
}

func (s *auditStorage) Delete(ctx context.Context, key string) error { return nil }

func (s *auditStorage) Exists(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checked = append(s.checked, key)
	return s.existing[key], nil
}

func (s *auditStorage) EnsureBucket(ctx context.Context) error { return nil }

func TestAuditVideosChecksEveryKey(t *testing.T) {
	refs := []*repository.VideoRef{
		{PostID: "p1", UserID: "u1", VideoKey: "users/u1/videos/1-a.mp4"},
		{PostID: "p2", UserID: "u1", VideoKey: "users/u1/videos/2-b.mp4"},
		{PostID: "p3", UserID: "u2", VideoKey: "users/u2/videos/3-c.mp4"},
	}
	storage := &auditStorage{existing: map[string]bool{
		"users/u1/videos/1-a.mp4": true,
		"users/u2/videos/3-c.mp4": true,
	}}

	audit := NewStorageAuditJob(&stubVideoLister{refs: refs}, storage)
	audit.AuditVideos()

	assert.Len(t, storage.checked, len(refs))
}

func TestAuditVideosHandlesEmptyTable(t *testing.T) {
	audit := NewStorageAuditJob(&stubVideoLister{}, &auditStorage{})
	audit.AuditVideos()
}
