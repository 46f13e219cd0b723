package notifications

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"
)

// MemoryStorage keeps records in process memory. It backs tests and
// single-node development runs.
type MemoryStorage struct {
	mu     sync.RWMutex
	byID   map[string]*Notification
	byUser map[string][]string // recipient -> ids in insertion order
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		byID:   make(map[string]*Notification),
		byUser: make(map[string][]string),
	}
}

func (s *MemoryStorage) Create(_ context.Context, n Notification) error {
	if n.ID == "" || n.Recipient == "" {
		return fmt.Errorf("%w: id and recipient are required", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[n.ID]; exists {
		return fmt.Errorf("notification %s already exists", n.ID)
	}
	stored := clone(n)
	s.byID[n.ID] = &stored
	s.byUser[n.Recipient] = append(s.byUser[n.Recipient], n.ID)
	return nil
}

func (s *MemoryStorage) Get(_ context.Context, id string) (*Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.byID[id]
	if !ok {
		return nil, ErrNotificationNotFound
	}
	out := clone(*n)
	return &out, nil
}

func (s *MemoryStorage) UpdateStatus(_ context.Context, id string, upd StatusUpdate) (*Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.byID[id]
	if !ok {
		return nil, ErrNotificationNotFound
	}
	upd.apply(n)
	out := clone(*n)
	return &out, nil
}

func (s *MemoryStorage) List(_ context.Context, recipient string, opts ListOptions) ([]Notification, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := opts.now()
	var matched []Notification
	for _, id := range s.byUser[recipient] {
		n := s.byID[id]
		if !matches(*n, opts, now) {
			continue
		}
		matched = append(matched, clone(*n))
	}

	// Newest first; ties keep insertion order reversed so later creates lead.
	slices.Reverse(matched)
	slices.SortStableFunc(matched, func(a, b Notification) int {
		return cmp.Compare(b.CreatedAt.UnixNano(), a.CreatedAt.UnixNano())
	})

	total := len(matched)
	start := min(opts.Offset, total)
	end := total
	if opts.Limit > 0 {
		end = min(start+opts.Limit, total)
	}
	return matched[start:end], total, nil
}

func (s *MemoryStorage) CountUnread(_ context.Context, recipient string, now time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, id := range s.byUser[recipient] {
		n := s.byID[id]
		if n.Status == StatusSent && !n.IsExpired(now) {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStorage) MarkAllRead(_ context.Context, recipient string, at time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := 0
	for _, id := range s.byUser[recipient] {
		n := s.byID[id]
		if n.Status != StatusSent {
			continue
		}
		StatusUpdate{Status: StatusRead, ReadAt: &at}.apply(n)
		changed++
	}
	return changed, nil
}

func matches(n Notification, opts ListOptions, now time.Time) bool {
	if opts.UnreadOnly && n.Status != StatusSent {
		return false
	}
	if !opts.IncludeArchived && n.Status == StatusArchived {
		return false
	}
	if !opts.IncludeExpired && n.IsExpired(now) {
		return false
	}
	if len(opts.Kinds) > 0 && !slices.Contains(opts.Kinds, n.Kind) {
		return false
	}
	return true
}

// clone copies the pointer fields so callers cannot mutate stored state.
func clone(n Notification) Notification {
	n.Channels = slices.Clone(n.Channels)
	n.ExpiresAt = clonePtr(n.ExpiresAt)
	n.ReadAt = clonePtr(n.ReadAt)
	n.ArchivedAt = clonePtr(n.ArchivedAt)
	n.Data = maps.Clone(n.Data)
	return n
}

func clonePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
