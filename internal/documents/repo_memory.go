package documents

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo stores documents in memory and is safe for concurrent use.
// It backs local development and tests when no database is configured.
type MemoryRepo struct {
	mu       sync.RWMutex
	byID     map[string]Document
	activity map[string][]Activity
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:     make(map[string]Document),
		activity: make(map[string][]Activity),
	}
}

// Create stores the document.
func (r *MemoryRepo) Create(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[doc.ID] = doc
	return nil
}

// GetByID returns a document by its ID.
func (r *MemoryRepo) GetByID(ctx context.Context, documentID string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.byID[documentID]
	if !ok {
		return Document{}, ErrNotFound
	}
	return doc, nil
}

// List returns documents newest-first, honoring the filter.
func (r *MemoryRepo) List(ctx context.Context, filter ListFilter) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var all []Document
	for _, doc := range r.byID {
		if filter.PropertyID != "" && doc.Meta.PropertyID != filter.PropertyID {
			continue
		}
		if filter.Status != "" && doc.Status != filter.Status {
			continue
		}
		all = append(all, doc)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID < all[j].ID
	})

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

// UpdateStatus applies an optimistic status transition.
func (r *MemoryRepo) UpdateStatus(ctx context.Context, documentID string, from DocumentStatus, expectedUpdatedAt time.Time, to DocumentStatus, now time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.byID[documentID]
	if !ok {
		return ErrNotFound
	}
	if doc.Status != from || !doc.UpdatedAt.Equal(expectedUpdatedAt) {
		return ErrStaleState
	}
	doc.Status = to
	doc.UpdatedAt = now
	r.byID[documentID] = doc
	return nil
}

// AppendActivity records one audit-trail entry.
func (r *MemoryRepo) AppendActivity(ctx context.Context, activity Activity) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.activity[activity.DocumentID] = append(r.activity[activity.DocumentID], activity)
	return nil
}

// ListActivity returns a document's audit trail oldest-first.
func (r *MemoryRepo) ListActivity(ctx context.Context, documentID string) ([]Activity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	entries := r.activity[documentID]
	out := make([]Activity, len(entries))
	copy(out, entries)
	return out, nil
}

var _ Repo = (*MemoryRepo)(nil)
