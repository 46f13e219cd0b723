package notifications

import (
	"context"
	"time"
)

// Storage persists notification records.
type Storage interface {
	// Create stores a new record. IDs are never reused.
	Create(ctx context.Context, n Notification) error

	// Get returns ErrNotificationNotFound for unknown ids.
	Get(ctx context.Context, id string) (*Notification, error)

	// UpdateStatus applies upd with first-write-wins timestamps and returns
	// the stored record afterwards.
	UpdateStatus(ctx context.Context, id string, upd StatusUpdate) (*Notification, error)

	// List returns one page of a recipient's notifications, newest first,
	// along with the total number matching the filters.
	List(ctx context.Context, recipient string, opts ListOptions) ([]Notification, int, error)

	// CountUnread counts sent, unexpired notifications.
	CountUnread(ctx context.Context, recipient string, now time.Time) (int, error)

	// MarkAllRead moves every sent notification of the recipient to read
	// and returns how many changed.
	MarkAllRead(ctx context.Context, recipient string, at time.Time) (int, error)
}

// ListOptions filters and pages List results.
type ListOptions struct {
	Limit           int // 0 means no limit
	Offset          int
	UnreadOnly      bool
	IncludeArchived bool
	IncludeExpired  bool
	Kinds           []Kind
	Now             time.Time // reference time for expiry, zero means time.Now
}

func (o ListOptions) now() time.Time {
	if o.Now.IsZero() {
		return time.Now()
	}
	return o.Now
}
