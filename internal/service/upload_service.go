package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/clipcast/clipcast/internal/transfer"
)

// MaxUploadSize caps negotiated uploads at 500 MiB.
const MaxUploadSize int64 = 500 * 1024 * 1024

var allowedVideoTypes = map[string]struct{}{
	"video/mp4":       {},
	"video/quicktime": {},
	"video/webm":      {},
}

type UploadService interface {
	Negotiate(ctx context.Context, userID, filename, contentType string, size int64) (*transfer.PresignedUpload, error)
}

type uploadService struct {
	storage StorageService
}

func NewUploadService(storage StorageService) UploadService {
	return &uploadService{storage: storage}
}

// Negotiate validates the proposed upload and issues a scoped, time-limited
// write credential. It never touches bucket state: the byte transfer runs
// directly between the browser and storage.
func (s *uploadService) Negotiate(ctx context.Context, userID, filename, contentType string, size int64) (*transfer.PresignedUpload, error) {
	if _, ok := allowedVideoTypes[contentType]; !ok {
		err := fmt.Errorf("%w: invalid file type %s, allowed: MP4, MOV, WebM", ErrValidation, contentType)
		slog.Info(err.Error())
		return nil, err
	}

	if size > MaxUploadSize {
		err := fmt.Errorf("%w: file too large, maximum size is 500MB", ErrValidation)
		slog.Info(err.Error())
		return nil, err
	}

	key := GenerateVideoKey(userID, filename)

	uploadURL, err := s.storage.SignedPutURL(ctx, key, contentType, SignedURLTTL)
	if err != nil {
		return nil, err
	}

	return &transfer.PresignedUpload{
		UploadURL: uploadURL,
		Key:       key,
		ExpiresIn: int(SignedURLTTL.Seconds()),
	}, nil
}
