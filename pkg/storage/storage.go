package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrObjectNotFound is returned when a stored artifact does not exist.
var ErrObjectNotFound = errors.New("storage: object not found")

// Object is an opened artifact.
type Object struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
}

// Store persists rendered export artifacts.
type Store interface {
	Save(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Open(ctx context.Context, key string) (*Object, error)
	Delete(ctx context.Context, key string) error
	CleanupOlderThan(ctx context.Context, ttl time.Duration) ([]string, error)
}
