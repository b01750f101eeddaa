package storage

import (
	"context"
	"time"
)

type FileStorage interface {
	UploadFile(ctx context.Context, data []byte, prefix, filename string) (string, error)

	DeleteFile(ctx context.Context, fileURL string) error

	GetPresignedURL(ctx context.Context, fileURL string, expiry time.Duration) (string, error)
}
