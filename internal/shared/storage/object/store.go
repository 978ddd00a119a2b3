package object

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	// ErrNotFound means the key never existed or was purged. Not retryable.
	ErrNotFound = errors.New("object not found")
	// ErrUnavailable means the backing store could not be reached. Callers
	// may retry with backoff.
	ErrUnavailable = errors.New("object store unavailable")
)

// ObjectStore defines the contract for saving and retrieving binary artifacts.
// It is the only component that touches the blob store.
type ObjectStore interface {
	Put(ctx context.Context, key string, contentType string, r io.Reader) (int64, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	List(ctx context.Context, prefix string) ([]string, error)
	Delete(ctx context.Context, key string) error
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}
