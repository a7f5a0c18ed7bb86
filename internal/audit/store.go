package audit

import (
	"context"
	"time"
)

// Store persists audit entries. Append must be durable; the list methods back
// the operational query surface.
type Store interface {
	Append(ctx context.Context, entry Entry) error
	ListRecent(ctx context.Context, limit int) ([]Entry, error)
	ListByEntityType(ctx context.Context, entityType string) ([]Entry, error)
	ListByActor(ctx context.Context, actorName string) ([]Entry, error)
	ListByTimeRange(ctx context.Context, from, to time.Time) ([]Entry, error)
}
