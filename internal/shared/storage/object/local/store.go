package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"dealdocs-backend/internal/shared/storage/object"
	"dealdocs-backend/internal/shared/util"
)

// Store implements ObjectStore using the local filesystem. It exists for dev
// and tests; the signed URL it issues mirrors the S3/MinIO presign shape so
// callers behave identically across backends.
type Store struct {
	baseDir string
	secret  string
}

// New creates a new local object store rooted at baseDir.
func New(baseDir, urlSecret string) object.ObjectStore {
	return &Store{baseDir: baseDir, secret: urlSecret}
}

// Put writes the reader to disk under the given storage key.
func (s *Store) Put(ctx context.Context, key string, contentType string, r io.Reader) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	clean, err := s.cleanKey(key)
	if err != nil {
		return 0, err
	}

	fullPath := filepath.Join(s.baseDir, clean)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return 0, fmt.Errorf("%w: mkdir: %s", object.ErrUnavailable, err)
	}
	f, err := os.OpenFile(fullPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, fmt.Errorf("%w: open file: %s", object.ErrUnavailable, err)
	}
	defer f.Close()

	written, err := io.Copy(f, r)
	if err != nil {
		return 0, fmt.Errorf("%w: write body: %s", object.ErrUnavailable, err)
	}
	_ = contentType
	return written, nil
}

// Get opens a stored object for reading.
func (s *Store) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	clean, err := s.cleanKey(key)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(s.baseDir, clean))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", object.ErrNotFound, key)
		}
		return nil, fmt.Errorf("%w: %s", object.ErrUnavailable, err)
	}
	return f, nil
}

// List returns the storage keys under the given prefix, sorted.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var keys []string
	root := s.baseDir
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: walk: %s", object.ErrUnavailable, err)
	}
	sort.Strings(keys)
	return keys, nil
}

// Delete removes a stored object. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	clean, err := s.cleanKey(key)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.baseDir, clean)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", object.ErrUnavailable, err)
	}
	return nil
}

// SignedURL issues a token-guarded download URL. The token binds key and
// expiry the same way a presigned S3 URL does.
func (s *Store) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	clean, err := s.cleanKey(key)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(filepath.Join(s.baseDir, clean)); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", object.ErrNotFound, key)
		}
		return "", fmt.Errorf("%w: %s", object.ErrUnavailable, err)
	}

	expires := time.Now().UTC().Add(ttl).Unix()
	token := util.HashToken(s.secret + "|" + clean + "|" + strconv.FormatInt(expires, 10))
	return fmt.Sprintf("/api/v1/artifacts/%s?expires=%d&token=%s", clean, expires, token), nil
}

func (s *Store) cleanKey(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) || clean == "." {
		return "", fmt.Errorf("%w: invalid storage key", object.ErrNotFound)
	}
	return filepath.ToSlash(clean), nil
}

var _ object.ObjectStore = (*Store)(nil)
