package storage

import (
	"context"

	"github.com/bilgisen/adforge/internal/models"
)

// Page size bounds for listings
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// ContentStore persists content records. Owner-scoped methods treat an empty
// ownerID as "no scoping" for reads and reject it for writes that touch many rows.
type ContentStore interface {
	Insert(ctx context.Context, rec *models.ContentRecord) error
	Get(ctx context.Context, id, ownerID string) (*models.ContentRecord, error)
	List(ctx context.Context, q ListQuery) ([]models.ContentRecord, int, error)
	GetMany(ctx context.Context, ownerID string, ids []string) ([]models.ContentRecord, error)
	DeleteMany(ctx context.Context, ownerID string, ids []string) (int64, error)
	MarkProcessing(ctx context.Context, id, jobID string) error
	Complete(ctx context.Context, id, mediaURL, thumbnailURL string) error
	Fail(ctx context.Context, id, reason string) error
	Close() error
}

// ListQuery selects a page of records, newest first
type ListQuery struct {
	OwnerID string
	Kind    models.Kind
	Status  models.Status
	Limit   int
	Offset  int
}

// Normalize clamps paging to sane bounds
func (q ListQuery) Normalize() ListQuery {
	if q.Limit <= 0 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return q
}
