package documents

import (
	"context"
	"time"
)

// ListFilter narrows List results. Zero values mean "don't care".
type ListFilter struct {
	PropertyID string
	Status     DocumentStatus
	Limit      int
	Offset     int
}

// Repo defines persistence operations for documents. UpdateStatus must be
// optimistic: it only applies when the stored status and updatedAt still
// match the expected values, and returns ErrStaleState otherwise.
type Repo interface {
	Create(ctx context.Context, doc Document) error
	GetByID(ctx context.Context, documentID string) (Document, error)
	List(ctx context.Context, filter ListFilter) ([]Document, error)
	UpdateStatus(ctx context.Context, documentID string, from DocumentStatus, expectedUpdatedAt time.Time, to DocumentStatus, now time.Time) error
	AppendActivity(ctx context.Context, activity Activity) error
	ListActivity(ctx context.Context, documentID string) ([]Activity, error)
}
