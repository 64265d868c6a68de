package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipcast/clipcast/internal/models"
	"github.com/clipcast/clipcast/internal/repository"
	"github.com/clipcast/clipcast/internal/service"
	"github.com/clipcast/clipcast/internal/transfer"
)

type memPostRepo struct {
	posts map[string]*models.Post
}

func newMemPostRepo() *memPostRepo {
	return &memPostRepo{posts: make(map[string]*models.Post)}
}

func (m *memPostRepo) CreateWithJobs(ctx context.Context, post *models.Post, jobs []*models.Job) error {
	cp := *post
	cp.Jobs = jobs
	m.posts[post.ID] = &cp
	return nil
}

func (m *memPostRepo) GetByUser(ctx context.Context, id, userID string) (*models.Post, error) {
	post, ok := m.posts[id]
	if !ok || post.UserID != userID {
		return nil, nil
	}
	return post, nil
}

func (m *memPostRepo) ListByUser(ctx context.Context, userID string) ([]*models.Post, error) {
	var posts []*models.Post
	for _, post := range m.posts {
		if post.UserID == userID {
			posts = append(posts, post)
		}
	}
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts, nil
}

func (m *memPostRepo) Update(ctx context.Context, post *models.Post) error {
	m.posts[post.ID] = post
	return nil
}

func (m *memPostRepo) DeleteWithJobs(ctx context.Context, id string) error {
	delete(m.posts, id)
	return nil
}

func (m *memPostRepo) AllVideoKeys(ctx context.Context) ([]*repository.VideoRef, error) {
	return nil, nil
}

type stubStorage struct {
	deletedKeys []string
}

func (s *stubStorage) Put(ctx context.Context, key string, file []byte, contentType string) (*transfer.UploadResult, error) {
	return &transfer.UploadResult{Key: key, Size: int64(len(file))}, nil
}

func (s *stubStorage) SignedPutURL(ctx context.Context, key, contentType string, expires time.Duration) (string, error) {
	return "https://storage.local/" + key + "?signature=abc", nil
}

func (s *stubStorage) SignedGetURL(ctx context.Context, key string, expires time.Duration) (string, error) {
	return "https://storage.local/" + key, nil
}

func (s *stubStorage) Delete(ctx context.Context, key string) error {
	s.deletedKeys = append(s.deletedKeys, key)
	return nil
}

func (s *stubStorage) Exists(ctx context.Context, key string) (bool, error) {
	return true, nil
}

func (s *stubStorage) EnsureBucket(ctx context.Context) error {
	return nil
}

type stubCleanup struct {
	keys []string
}

func (s *stubCleanup) Schedule(key string) error {
	s.keys = append(s.keys, key)
	return nil
}

// newTestApp wires the real services over in-memory stubs. The session
// middleware is replaced by a shim reading the X-Test-User header.
func newTestApp(t *testing.T) (*fiber.App, *memPostRepo) {
	t.Helper()

	repo := newMemPostRepo()
	storage := &stubStorage{}
	cleanup := &stubCleanup{}

	postService := service.NewPostService(repo, storage, cleanup)
	uploadService := service.NewUploadService(storage)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if user := c.Get("X-Test-User"); user != "" {
			c.Locals("user_id", utils.CopyString(user))
		}
		return c.Next()
	})

	upload := NewUploadHandler(uploadService)
	app.Post("/upload/presigned", upload.CreatePresignedURL)

	post := NewPostHandler(postService)
	app.Post("/posts", post.CreatePost)
	app.Get("/posts", post.ListPosts)
	app.Get("/posts/:id", post.GetPost)
	app.Patch("/posts/:id", post.UpdatePost)
	app.Delete("/posts/:id", post.RemovePost)

	return app, repo
}

func doJSON(t *testing.T, app *fiber.App, method, path, user string, body any) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

type postEnvelope struct {
	Post *models.Post `json:"post"`
}

type postsEnvelope struct {
	Posts []*models.Post `json:"posts"`
}

func TestUploadAndPostLifecycle(t *testing.T) {
	app, _ := newTestApp(t)

	// Negotiate an upload for a 10MB mp4.
	resp := doJSON(t, app, fiber.MethodPost, "/upload/presigned", "u1", fiber.Map{
		"filename":    "vacation.mp4",
		"contentType": "video/mp4",
		"size":        10 * 1024 * 1024,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var presigned transfer.PresignedUpload
	decodeBody(t, resp, &presigned)
	assert.Equal(t, 3600, presigned.ExpiresIn)
	assert.Regexp(t, `^users/u1/videos/\d{13}-vacation\.mp4$`, presigned.Key)
	assert.Contains(t, presigned.UploadURL, presigned.Key)

	// Create a post referencing the negotiated key.
	resp = doJSON(t, app, fiber.MethodPost, "/posts", "u1", fiber.Map{
		"videoKey":  presigned.Key,
		"caption":   "summer trip",
		"platforms": []string{"INSTAGRAM", "YOUTUBE"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created postEnvelope
	decodeBody(t, resp, &created)
	require.NotNil(t, created.Post)
	assert.Equal(t, models.PostStatusDraft, created.Post.Status)
	require.Len(t, created.Post.Jobs, 2)
	assert.Equal(t, models.PlatformInstagram, created.Post.Jobs[0].Platform)
	assert.Equal(t, models.PlatformYoutube, created.Post.Jobs[1].Platform)
	for _, job := range created.Post.Jobs {
		assert.Equal(t, models.JobStatusPending, job.Status)
	}

	// The listing shows the one post with both pending jobs.
	resp = doJSON(t, app, fiber.MethodGet, "/posts", "u1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var listed postsEnvelope
	decodeBody(t, resp, &listed)
	require.Len(t, listed.Posts, 1)
	assert.Len(t, listed.Posts[0].Jobs, 2)

	// Delete and verify the listing is empty again.
	resp = doJSON(t, app, fiber.MethodDelete, "/posts/"+created.Post.ID, "u1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var deleted struct {
		Success bool `json:"success"`
	}
	decodeBody(t, resp, &deleted)
	assert.True(t, deleted.Success)

	resp = doJSON(t, app, fiber.MethodGet, "/posts", "u1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	listed = postsEnvelope{}
	decodeBody(t, resp, &listed)
	assert.Len(t, listed.Posts, 0)
}

func TestPresignedRejectsInvalidRequests(t *testing.T) {
	app, _ := newTestApp(t)

	resp := doJSON(t, app, fiber.MethodPost, "/upload/presigned", "u1", fiber.Map{
		"filename":    "clip.avi",
		"contentType": "video/avi",
		"size":        1024,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, app, fiber.MethodPost, "/upload/presigned", "u1", fiber.Map{
		"filename":    "clip.mp4",
		"contentType": "video/mp4",
		"size":        524288001,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, app, fiber.MethodPost, "/upload/presigned", "u1", fiber.Map{
		"filename": "clip.mp4",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreatePostRejectsInvalidPlatforms(t *testing.T) {
	app, _ := newTestApp(t)

	resp := doJSON(t, app, fiber.MethodPost, "/posts", "u1", fiber.Map{
		"videoKey":  "users/u1/videos/1700000000000-clip.mp4",
		"platforms": []string{"INSTAGRAM", "MYSPACE"},
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body struct {
		Error string `json:"error"`
	}
	decodeBody(t, resp, &body)
	assert.Contains(t, body.Error, "MYSPACE")
}

func TestGetPostOwnershipScoping(t *testing.T) {
	app, _ := newTestApp(t)

	resp := doJSON(t, app, fiber.MethodPost, "/posts", "u1", fiber.Map{
		"videoKey":  "users/u1/videos/1700000000000-clip.mp4",
		"platforms": []string{"TIKTOK"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created postEnvelope
	decodeBody(t, resp, &created)

	resp = doJSON(t, app, fiber.MethodGet, "/posts/"+created.Post.ID, "u2", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, app, fiber.MethodGet, "/posts/"+created.Post.ID, "u1", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, fiber.MethodGet, "/posts/missing", "u1", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPatchPostScheduling(t *testing.T) {
	app, _ := newTestApp(t)

	resp := doJSON(t, app, fiber.MethodPost, "/posts", "u1", fiber.Map{
		"videoKey":  "users/u1/videos/1700000000000-clip.mp4",
		"platforms": []string{"TIKTOK"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created postEnvelope
	decodeBody(t, resp, &created)

	resp = doJSON(t, app, fiber.MethodPatch, "/posts/"+created.Post.ID, "u1", fiber.Map{
		"scheduledFor": "2025-06-01T10:00:00Z",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var updated postEnvelope
	decodeBody(t, resp, &updated)
	assert.Equal(t, models.PostStatusScheduled, updated.Post.Status)

	resp = doJSON(t, app, fiber.MethodPatch, "/posts/"+created.Post.ID, "u1", fiber.Map{
		"scheduledFor": nil,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	updated = postEnvelope{}
	decodeBody(t, resp, &updated)
	assert.Equal(t, models.PostStatusDraft, updated.Post.Status)
	assert.Nil(t, updated.Post.ScheduledFor)
}

func TestPatchAndDeleteBlockedForPublishedPost(t *testing.T) {
	app, repo := newTestApp(t)

	resp := doJSON(t, app, fiber.MethodPost, "/posts", "u1", fiber.Map{
		"videoKey":  "users/u1/videos/1700000000000-clip.mp4",
		"platforms": []string{"TIKTOK"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created postEnvelope
	decodeBody(t, resp, &created)

	repo.posts[created.Post.ID].Status = models.PostStatusPublished

	resp = doJSON(t, app, fiber.MethodPatch, "/posts/"+created.Post.ID, "u1", fiber.Map{
		"caption": "too late",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, app, fiber.MethodDelete, "/posts/"+created.Post.ID, "u1", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	_, ok := repo.posts[created.Post.ID]
	assert.True(t, ok, "published post must survive the delete attempt")
}

func TestListScopedToRequestingUser(t *testing.T) {
	app, _ := newTestApp(t)

	for i, user := range []string{"u1", "u1", "u2"} {
		resp := doJSON(t, app, fiber.MethodPost, "/posts", user, fiber.Map{
			"videoKey":  fmt.Sprintf("users/%s/videos/170000000000%d-clip.mp4", user, i),
			"platforms": []string{"TIKTOK"},
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	resp := doJSON(t, app, fiber.MethodGet, "/posts", "u2", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var listed postsEnvelope
	decodeBody(t, resp, &listed)
	require.Len(t, listed.Posts, 1)
	assert.Equal(t, "u2", listed.Posts[0].UserID)
}
