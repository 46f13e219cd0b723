package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/modernmen/notifier/pkg/statemachine"
)

// Event is a lifecycle action requested by a reader.
type Event string

const (
	EventRead    Event = "read"
	EventArchive Event = "archive"
)

// StatusUpdate is the change a transition writes. Nil timestamps leave the
// stored value untouched; stores only fill a timestamp that is still unset.
type StatusUpdate struct {
	Status     Status
	ReadAt     *time.Time
	ArchivedAt *time.Time
}

func (e Event) Name() string  { return string(e) }
func (s Status) Name() string { return string(s) }

// change is the data a lifecycle transition works on.
type change struct {
	n   Notification
	at  time.Time
	upd StatusUpdate
}

// lifecycle accepts read and archive on sent, read and archived records;
// every other status rejects them. Each edge is registered twice: a guarded
// variant that stamps the event's timestamp when it is still unset, then a
// plain fallback, so a stored timestamp is never overwritten.
var lifecycle = newLifecycle()

func newLifecycle() *statemachine.Machine {
	edges := []struct {
		from Status
		ev   Event
		to   Status
	}{
		{StatusSent, EventRead, StatusRead},
		{StatusRead, EventRead, StatusRead},
		{StatusArchived, EventRead, StatusArchived},
		{StatusSent, EventArchive, StatusArchived},
		{StatusRead, EventArchive, StatusArchived},
		{StatusArchived, EventArchive, StatusArchived},
	}

	opts := make([]statemachine.Option, 0, 2*len(edges))
	for _, e := range edges {
		guard, stamp := unset(readTime), stampRead
		if e.ev == EventArchive {
			guard, stamp = unset(archiveTime), stampArchived
		}
		opts = append(opts,
			statemachine.WithTransition(e.from, e.to, e.ev, statemachine.WithGuard(guard), statemachine.WithAction(stamp)),
			statemachine.WithTransition(e.from, e.to, e.ev),
		)
	}
	return statemachine.MustNew(opts...)
}

func readTime(n Notification) *time.Time    { return n.ReadAt }
func archiveTime(n Notification) *time.Time { return n.ArchivedAt }

func unset(field func(Notification) *time.Time) statemachine.Guard {
	return func(_ context.Context, _ statemachine.State, _ statemachine.Event, data any) bool {
		c, ok := data.(*change)
		return ok && field(c.n) == nil
	}
}

func stampRead(_ context.Context, _, _ statemachine.State, _ statemachine.Event, data any) error {
	c := data.(*change)
	c.upd.ReadAt = &c.at
	return nil
}

func stampArchived(_ context.Context, _, _ statemachine.State, _ statemachine.Event, data any) error {
	c := data.(*change)
	c.upd.ArchivedAt = &c.at
	return nil
}

// CanTransition reports whether ev is accepted in status from.
func CanTransition(from Status, ev Event) bool {
	return lifecycle.CanFire(context.Background(), from, ev, nil)
}

// Transition computes the update for applying ev to n at time at.
// changed is false when the event is a no-op, which makes repeated
// read and archive calls idempotent.
func Transition(n Notification, ev Event, at time.Time) (upd StatusUpdate, changed bool, err error) {
	c := &change{n: n, at: at}
	to, err := lifecycle.Fire(context.Background(), n.Status, ev, c)
	if err != nil {
		return StatusUpdate{}, false, fmt.Errorf("%w: cannot %s a %s notification: %w", ErrInvalidTransition, ev, n.Status, err)
	}

	upd = c.upd
	upd.Status = Status(to.Name())
	changed = upd.Status != n.Status || upd.ReadAt != nil || upd.ArchivedAt != nil
	return upd, changed, nil
}

// apply writes upd onto n with first-write-wins timestamps. An archived
// record is never moved back to another status.
func (upd StatusUpdate) apply(n *Notification) {
	if n.Status != StatusArchived || upd.Status == StatusArchived {
		n.Status = upd.Status
	}
	if n.ReadAt == nil && upd.ReadAt != nil {
		t := *upd.ReadAt
		n.ReadAt = &t
	}
	if n.ArchivedAt == nil && upd.ArchivedAt != nil {
		t := *upd.ArchivedAt
		n.ArchivedAt = &t
	}
}
