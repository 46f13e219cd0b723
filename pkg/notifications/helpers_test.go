package notifications

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/modernmen/notifier/pkg/logger"
)

var errStreamBroken = errors.New("stream broken")

// recordingStream captures everything written to it. fail, when set, is
// consulted before each write.
type recordingStream struct {
	mu     sync.Mutex
	events []StreamEvent
	fail   func(ev StreamEvent) error
	block  chan struct{} // when non-nil, writes wait for it to close or ctx
}

func (s *recordingStream) Send(ctx context.Context, ev StreamEvent) error {
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		if err := s.fail(ev); err != nil {
			return err
		}
	}
	s.events = append(s.events, ev)
	return nil
}

func (s *recordingStream) snapshot() []StreamEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]StreamEvent(nil), s.events...)
}

func (s *recordingStream) types() []EventType {
	var out []EventType
	for _, ev := range s.snapshot() {
		out = append(out, ev.Type)
	}
	return out
}

// notificationIDs lists the ids of notification events in write order.
func (s *recordingStream) notificationIDs() []string {
	var out []string
	for _, ev := range s.snapshot() {
		if ev.Type == EventTypeNotification {
			out = append(out, ev.Notification.ID)
		}
	}
	return out
}

func waitForIDs(t *testing.T, s *recordingStream, want ...string) {
	t.Helper()
	require.Eventually(t, func() bool {
		return len(s.notificationIDs()) >= len(want)
	}, 2*time.Second, 5*time.Millisecond)
	require.Equal(t, want, s.notificationIDs())
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.HeartbeatInterval = time.Hour
	cfg.DispatchMode = DispatchWait
	cfg.DispatchTimeout = time.Second
	return cfg
}

func newTestHub(t *testing.T, cfg Config) *Hub {
	t.Helper()
	h := NewHub(cfg, WithHubLogger(logger.Discard()))
	t.Cleanup(func() { _ = h.Close() })
	return h
}

func note(id, recipient string) Notification {
	return Notification{
		ID:        id,
		Kind:      KindSystem,
		Title:     "title " + id,
		Recipient: recipient,
		Priority:  PriorityNormal,
		Channels:  Channels{ChannelLive},
		Status:    StatusSent,
		CreatedAt: time.Now(),
	}
}

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFixedClock() *fixedClock {
	return &fixedClock{now: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)}
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
