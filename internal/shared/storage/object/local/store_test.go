package local

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"dealdocs-backend/internal/shared/storage/object"
)

func TestPutGetDelete(t *testing.T) {
	store := New(t.TempDir(), "secret")
	ctx := context.Background()

	written, err := store.Put(ctx, "documents/doc-1/CA_RPA.pdf", "application/pdf", strings.NewReader("%PDF-1.7 data"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if written != int64(len("%PDF-1.7 data")) {
		t.Fatalf("written = %d", written)
	}

	body, err := store.Get(ctx, "documents/doc-1/CA_RPA.pdf")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	data, err := io.ReadAll(body)
	body.Close()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "%PDF-1.7 data" {
		t.Fatalf("data = %q", data)
	}

	if err := store.Delete(ctx, "documents/doc-1/CA_RPA.pdf"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, "documents/doc-1/CA_RPA.pdf"); !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("err after delete = %v, want ErrNotFound", err)
	}
	// Deleting an already-gone key is not an error.
	if err := store.Delete(ctx, "documents/doc-1/CA_RPA.pdf"); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
}

func TestGetNeverWrittenKey(t *testing.T) {
	store := New(t.TempDir(), "secret")
	if _, err := store.Get(context.Background(), "documents/nope.pdf"); !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestListPrefix(t *testing.T) {
	store := New(t.TempDir(), "secret")
	ctx := context.Background()

	for _, key := range []string{"documents/a/x.pdf", "documents/b/y.pdf", "other/z.pdf"} {
		if _, err := store.Put(ctx, key, "application/pdf", strings.NewReader("data")); err != nil {
			t.Fatalf("Put %s: %v", key, err)
		}
	}

	keys, err := store.List(ctx, "documents/")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(keys) != 2 || keys[0] != "documents/a/x.pdf" || keys[1] != "documents/b/y.pdf" {
		t.Fatalf("keys = %v", keys)
	}
}

func TestSignedURLBindsKeyAndExpiry(t *testing.T) {
	store := New(t.TempDir(), "secret")
	ctx := context.Background()

	if _, err := store.Put(ctx, "documents/doc-1/CA_RPA.pdf", "application/pdf", strings.NewReader("data")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	url, err := store.SignedURL(ctx, "documents/doc-1/CA_RPA.pdf", 15*time.Minute)
	if err != nil {
		t.Fatalf("SignedURL: %v", err)
	}
	if !strings.HasPrefix(url, "/api/v1/artifacts/documents/doc-1/CA_RPA.pdf?") {
		t.Fatalf("url = %q", url)
	}
	if !strings.Contains(url, "expires=") || !strings.Contains(url, "token=") {
		t.Fatalf("url = %q", url)
	}

	// Signing a missing key fails rather than issuing a dead URL.
	if _, err := store.SignedURL(ctx, "documents/missing.pdf", time.Minute); !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestRejectsTraversalKeys(t *testing.T) {
	store := New(t.TempDir(), "secret")
	ctx := context.Background()

	for _, key := range []string{"../escape.pdf", "/abs/path.pdf", "."} {
		if _, err := store.Put(ctx, key, "application/pdf", strings.NewReader("data")); err == nil {
			t.Errorf("Put(%q) accepted", key)
		}
		if _, err := store.Get(ctx, key); err == nil {
			t.Errorf("Get(%q) accepted", key)
		}
	}
}

func TestExpiredContextSurfaces(t *testing.T) {
	store := New(t.TempDir(), "secret")

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	if _, err := store.Get(ctx, "documents/doc-1/CA_RPA.pdf"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Get err = %v, want DeadlineExceeded", err)
	}
	if _, err := store.Put(ctx, "documents/doc-1/CA_RPA.pdf", "application/pdf", strings.NewReader("data")); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Put err = %v, want DeadlineExceeded", err)
	}
}
