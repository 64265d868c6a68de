package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/h2non/filetype"
	ftypes "github.com/h2non/filetype/types"

	cfg "github.com/clipcast/clipcast/configs"
	"github.com/clipcast/clipcast/internal/transfer"
)

// SignedURLTTL is how long issued upload/download credentials stay valid.
const SignedURLTTL = time.Hour

type StorageService interface {
	Put(ctx context.Context, key string, file []byte, contentType string) (*transfer.UploadResult, error)
	SignedPutURL(ctx context.Context, key, contentType string, expires time.Duration) (string, error)
	SignedGetURL(ctx context.Context, key string, expires time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	EnsureBucket(ctx context.Context) error
}

type storageService struct {
	config  cfg.Config
	client  *s3.Client
	presign *s3.PresignClient
}

func NewStorageService(config cfg.Config) StorageService {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(config.S3.AccessKey, config.S3.SecretKey, "")),
		awsconfig.WithRegion(config.S3.Region),
	)
	if err != nil {
		slog.Info(err.Error())
		log.Fatal(err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(config.S3.Endpoint)
		// MinIO needs path-style addressing.
		o.UsePathStyle = config.S3.UsePathStyle
	})

	return &storageService{
		config:  config,
		client:  client,
		presign: s3.NewPresignClient(client),
	}
}

// Put uploads a buffer server-side. The browser upload path goes through
// SignedPutURL instead so video bytes never pass through this process.
func (s *storageService) Put(ctx context.Context, key string, file []byte, contentType string) (*transfer.UploadResult, error) {
	kind, err := filetype.Match(file)
	if err != nil || kind == ftypes.Unknown {
		return nil, fmt.Errorf("%w: unrecognized file content", ErrValidation)
	}
	if !strings.HasPrefix(kind.MIME.Value, "video/") {
		return nil, fmt.Errorf("%w: file type %s is not a video", ErrValidation, kind.MIME.Value)
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.config.S3.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(file),
		ContentType: aws.String(contentType),
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	return &transfer.UploadResult{
		Key:  key,
		URL:  fmt.Sprintf("%s/%s/%s", s.config.S3.Endpoint, s.config.S3.BucketName, key),
		Size: int64(len(file)),
	}, nil
}

func (s *storageService) SignedPutURL(ctx context.Context, key, contentType string, expires time.Duration) (string, error) {
	if expires <= 0 {
		expires = SignedURLTTL
	}

	req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.config.S3.BucketName),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		slog.Info(err.Error())
		return "", fmt.Errorf("%w: %v", ErrStorage, err)
	}

	return req.URL, nil
}

func (s *storageService) SignedGetURL(ctx context.Context, key string, expires time.Duration) (string, error) {
	if expires <= 0 {
		expires = SignedURLTTL
	}

	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.config.S3.BucketName),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		slog.Info(err.Error())
		return "", fmt.Errorf("%w: %v", ErrStorage, err)
	}

	return req.URL, nil
}

// Delete is idempotent: S3 DeleteObject succeeds whether or not the key
// exists, so callers can treat cleanup as best-effort.
func (s *storageService) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.config.S3.BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		slog.Info(err.Error())
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return nil
}

// Exists translates the not-found class of responses into (false, nil);
// only transport failures surface as errors.
func (s *storageService) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.config.S3.BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NotFound" {
			return false, nil
		}
		slog.Info(err.Error())
		return false, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return true, nil
}

func (s *storageService) EnsureBucket(ctx context.Context) error {
	_, err := s.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(s.config.S3.BucketName),
	})
	if err != nil {
		var owned *types.BucketAlreadyOwnedByYou
		var exists *types.BucketAlreadyExists
		if errors.As(err, &owned) || errors.As(err, &exists) {
			return nil
		}
		slog.Info(err.Error())
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return nil
}

// GenerateVideoKey builds a per-user storage key. The millisecond timestamp
// keeps keys distinct for repeated uploads of the same filename.
func GenerateVideoKey(userID, filename string) string {
	sanitized := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9',
			r == '.', r == '-':
			return r
		}
		return '_'
	}, filename)

	return fmt.Sprintf("users/%s/videos/%d-%s", userID, time.Now().UnixMilli(), sanitized)
}
