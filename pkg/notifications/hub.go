package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/modernmen/notifier/pkg/logger"
)

// LiveOutcome tells what happened to a notification handed to the hub.
type LiveOutcome string

const (
	LiveStreamed LiveOutcome = "streamed" // queued on the recipient's open stream
	LiveBuffered LiveOutcome = "buffered" // held in the pending queue
)

// Hub is the connection registry. It holds at most one connection per
// recipient and the pending queue for everyone else. Registration, delivery
// and release all run under one mutex, so a notification is either queued on
// the current connection or buffered, never both and never lost in between.
type Hub struct {
	mu      sync.Mutex
	conns   map[string]*Connection
	pending *PendingQueue
	closed  bool
	wg      sync.WaitGroup

	heartbeat time.Duration
	log       *slog.Logger
	now       func() time.Time
}

type HubOption func(*Hub)

func WithHubLogger(l *slog.Logger) HubOption {
	return func(h *Hub) { h.log = l }
}

func WithHubClock(now func() time.Time) HubOption {
	return func(h *Hub) { h.now = now }
}

func NewHub(cfg Config, opts ...HubOption) *Hub {
	h := &Hub{
		conns:     make(map[string]*Connection),
		pending:   NewPendingQueue(cfg.PendingLimit),
		heartbeat: cfg.HeartbeatInterval,
		log:       slog.Default(),
		now:       time.Now,
	}
	if h.heartbeat <= 0 {
		h.heartbeat = DefaultConfig().HeartbeatInterval
	}
	for _, opt := range opts {
		opt(h)
	}
	h.log = h.log.With(logger.Component("hub"))
	return h
}

// Register makes stream the recipient's live connection, replacing any
// previous one. The stream first receives a connection event, then every
// buffered notification in FIFO order, then new deliveries. A replacement
// writes nothing until the writer of the connection it replaced has exited.
// The connection stops when ctx is done or Close is called.
func (h *Hub) Register(ctx context.Context, recipient string, stream Stream) (*Connection, error) {
	if recipient == "" {
		return nil, fmt.Errorf("%w: recipient is required", ErrInvalidInput)
	}

	pumpCtx, cancel := context.WithCancel(ctx)
	c := &Connection{
		id:         uuid.NewString(),
		recipient:  recipient,
		stream:     stream,
		hub:        h,
		cancel:     cancel,
		done:       make(chan struct{}),
		wake:       make(chan struct{}, 1),
		superseded: make(chan struct{}),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		cancel()
		return nil, ErrHubClosed
	}

	replaced := ""
	if old, ok := h.conns[recipient]; ok {
		// Unsent events of the old stream move over ahead of the pending
		// queue, which is empty while a connection exists.
		old.detached = true
		c.queue = append(c.queue, old.queue...)
		old.queue = nil
		close(old.superseded)
		c.prev = old.done
		replaced = old.id
	}
	flushed := h.pending.Drain(recipient)
	c.queue = append(c.queue, flushed...)
	h.conns[recipient] = c

	h.wg.Add(1)
	go c.run(pumpCtx, h.heartbeat)
	h.mu.Unlock()

	h.log.LogAttrs(ctx, slog.LevelInfo, "live connection registered",
		logger.Recipient(recipient),
		logger.ConnectionID(c.id),
		slog.Int("flushed", len(flushed)),
		slog.String("replaced", replaced),
	)
	return c, nil
}

// Lookup returns the recipient's current connection.
func (h *Hub) Lookup(recipient string) (*Connection, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.conns[recipient]
	return c, ok
}

// Deregister drops the recipient's connection, if any. Unsent events are
// buffered. Calling it for an unknown recipient is a no-op.
func (h *Hub) Deregister(recipient string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c, ok := h.conns[recipient]; ok {
		h.detachLocked(c)
	}
}

// Deliver queues n on the recipient's connection or buffers it. The
// connection queue is unbounded; a stalled client is dropped by its stream's
// write deadline, not by queue length.
func (h *Hub) Deliver(ctx context.Context, n Notification) LiveOutcome {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.conns[n.Recipient]
	if !ok {
		h.enqueueLocked(ctx, n)
		return LiveBuffered
	}

	c.queue = append(c.queue, n)
	c.signal()
	return LiveStreamed
}

// Connected returns the number of registered connections.
func (h *Hub) Connected() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// PendingLen returns how many notifications are buffered for recipient.
func (h *Hub) PendingLen(recipient string) int {
	return h.pending.Len(recipient)
}

// Close stops every connection and waits for their writers to exit.
// Later registrations fail with ErrHubClosed.
func (h *Hub) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	for _, c := range h.conns {
		c.cancel()
	}
	h.mu.Unlock()

	h.wg.Wait()
	return nil
}

// take pops the next queued notification for c's writer.
func (h *Hub) take(c *Connection) (Notification, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c.detached || len(c.queue) == 0 {
		return Notification{}, false
	}
	n := c.queue[0]
	c.queue[0] = Notification{}
	c.queue = c.queue[1:]
	return n, true
}

// release is called by a connection's writer on exit. failed is the event
// whose write failed, if any. Nothing queued on c is lost: it goes to the
// successor connection when one exists, otherwise back to the pending queue.
// A successor has not written anything yet because it waits for c to exit,
// so putting leftovers at the head of its queue keeps creation order.
func (h *Hub) release(c *Connection, failed *Notification, cause error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var leftovers []Notification
	if failed != nil {
		leftovers = append(leftovers, *failed)
	}
	leftovers = append(leftovers, c.queue...)
	c.queue = nil

	cur, ok := h.conns[c.recipient]
	switch {
	case ok && cur == c:
		delete(h.conns, c.recipient)
		c.detached = true
		h.requeueLocked(c.recipient, leftovers)
	case ok:
		if len(leftovers) > 0 {
			cur.queue = append(leftovers, cur.queue...)
			cur.signal()
		}
	default:
		h.requeueLocked(c.recipient, leftovers)
	}

	level := slog.LevelDebug
	msg := "live connection closed"
	if cause != nil {
		level = slog.LevelWarn
		msg = "live stream write failed, connection dropped"
	}
	h.log.LogAttrs(context.Background(), level, msg,
		logger.Recipient(c.recipient),
		logger.ConnectionID(c.id),
		slog.Int("requeued", len(leftovers)),
		logger.Error(cause),
	)
}

func (h *Hub) detachLocked(c *Connection) {
	delete(h.conns, c.recipient)
	c.detached = true
	h.requeueLocked(c.recipient, c.queue)
	c.queue = nil
	c.cancel()
}

func (h *Hub) enqueueLocked(ctx context.Context, n Notification) {
	h.logDropped(ctx, n.Recipient, h.pending.Enqueue(n))
}

func (h *Hub) requeueLocked(recipient string, items []Notification) {
	h.logDropped(context.Background(), recipient, h.pending.Requeue(recipient, slices.Clone(items)))
}

func (h *Hub) logDropped(ctx context.Context, recipient string, dropped []Notification) {
	for _, d := range dropped {
		h.log.LogAttrs(ctx, slog.LevelWarn, "pending queue full, dropped oldest notification",
			logger.Recipient(recipient),
			logger.NotificationID(d.ID),
		)
	}
}
