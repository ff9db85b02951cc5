package ports

import (
	"context"

	"github.com/bwils5/cloudbooks-manager/internal/core/domain"
)

// ActivityEntry is the DTO enqueued by handlers after a mutating action
// succeeded.
type ActivityEntry struct {
	Action string
	Detail string
}

// ActivityRepository handles append-only persistence of activity records.
type ActivityRepository interface {
	Insert(ctx context.Context, rec *domain.ActivityRecord) error
	List(ctx context.Context) ([]*domain.ActivityRecord, error)
}

// ActivityService records and lists audit-trail entries. Record is
// best-effort from the caller's point of view: a failure must never undo or
// fail the action that produced the entry.
type ActivityService interface {
	Record(ctx context.Context, action, detail string) error
	List(ctx context.Context) ([]*domain.ActivityRecord, error)
}

// ActivityRecorder is the fire-and-forget surface handlers use. The
// implementation queues entries and persists them asynchronously.
type ActivityRecorder interface {
	Enqueue(entry ActivityEntry)
}
