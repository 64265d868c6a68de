package service

import (
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	config "github.com/clipcast/clipcast/configs"
)

func TestGenerateVideoKeySanitizesFilename(t *testing.T) {
	key := GenerateVideoKey("u123", "my video!!.mp4")

	re := regexp.MustCompile(`^users/u123/videos/\d{13}-my_video__\.mp4$`)
	assert.Regexp(t, re, key)
}

func TestGenerateVideoKeyKeepsSafeCharacters(t *testing.T) {
	key := GenerateVideoKey("u1", "Clip-01.final.webm")

	require.True(t, strings.HasPrefix(key, "users/u1/videos/"))
	assert.True(t, strings.HasSuffix(key, "-Clip-01.final.webm"))
}

func TestPutRejectsUnrecognizedContent(t *testing.T) {
	svc := NewStorageService(config.Config{S3: config.S3{
		Endpoint:   "http://localhost:9000",
		Region:     "us-east-1",
		AccessKey:  "test",
		SecretKey:  "test",
		BucketName: "videos",
	}})

	// Sniffing happens before any storage call, so no bucket is needed.
	_, err := svc.Put(context.Background(), "k", []byte("definitely not a video"), "video/mp4")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPutRejectsNonVideoContent(t *testing.T) {
	svc := NewStorageService(config.Config{S3: config.S3{
		Endpoint:   "http://localhost:9000",
		Region:     "us-east-1",
		AccessKey:  "test",
		SecretKey:  "test",
		BucketName: "videos",
	}})

	png := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	_, err := svc.Put(context.Background(), "k", png, "image/png")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestGenerateVideoKeyDistinguishesIdenticalFilenames(t *testing.T) {
	// Millisecond timestamps keep repeated uploads apart; sub-millisecond
	// collisions are accepted, so only the format is asserted here.
	key := GenerateVideoKey("u1", "видео.mp4")

	re := regexp.MustCompile(`^users/u1/videos/\d{13}-_____\.mp4$`)
	assert.Regexp(t, re, key)
}
