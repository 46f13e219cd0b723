package notifications

import (
	"context"
	"time"
)

type EventType string

const (
	EventTypeConnection   EventType = "connection"
	EventTypeNotification EventType = "notification"
	EventTypeHeartbeat    EventType = "heartbeat"
)

// StreamEvent is one message written to a recipient's live stream.
type StreamEvent struct {
	Type         EventType     `json:"type"`
	Timestamp    time.Time     `json:"timestamp"`
	Message      string        `json:"message,omitempty"`
	Notification *Notification `json:"notification,omitempty"`
}

// Stream is the write side of a live connection. Send must return once ctx
// is done.
type Stream interface {
	Send(ctx context.Context, ev StreamEvent) error
}

// Connection is a registered live stream. A single goroutine owns the
// stream: it writes queued notifications in order and emits heartbeats.
type Connection struct {
	id        string
	recipient string
	stream    Stream
	hub       *Hub

	cancel     context.CancelFunc
	done       chan struct{}
	wake       chan struct{}
	superseded chan struct{}
	prev       <-chan struct{} // done of the replaced connection, if any

	// guarded by hub.mu
	queue    []Notification
	detached bool
}

func (c *Connection) ID() string        { return c.id }
func (c *Connection) Recipient() string { return c.recipient }

// Done is closed once the connection stopped writing, for any reason.
func (c *Connection) Done() <-chan struct{} { return c.done }

// Superseded is closed when a newer registration for the same recipient
// replaced this one. The owner should close its stream.
func (c *Connection) Superseded() <-chan struct{} { return c.superseded }

// Close stops the connection and waits until nothing writes to the stream
// any more. Unsent notifications go back to the pending queue.
func (c *Connection) Close() {
	c.cancel()
	<-c.done
}

func (c *Connection) signal() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

func (c *Connection) run(ctx context.Context, interval time.Duration) {
	defer c.hub.wg.Done()
	defer close(c.done)

	if c.prev != nil {
		// The replaced writer may still be in the middle of a write; if that
		// write fails its event comes back ahead of ours.
		<-c.prev
		if ctx.Err() != nil {
			c.hub.release(c, nil, nil)
			return
		}
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	hello := StreamEvent{
		Type:      EventTypeConnection,
		Timestamp: c.hub.now(),
		Message:   "Connected to notification stream",
	}
	if err := c.stream.Send(ctx, hello); err != nil {
		c.hub.release(c, nil, err)
		return
	}

	for {
		if err := c.flush(ctx); err != nil {
			return
		}

		select {
		case <-ctx.Done():
			c.hub.release(c, nil, nil)
			return
		case <-c.superseded:
			c.hub.release(c, nil, nil)
			return
		case <-c.wake:
		case <-ticker.C:
			// Queued notifications always precede the heartbeat.
			if err := c.flush(ctx); err != nil {
				return
			}
			beat := StreamEvent{Type: EventTypeHeartbeat, Timestamp: c.hub.now()}
			if err := c.stream.Send(ctx, beat); err != nil {
				c.hub.release(c, nil, err)
				return
			}
		}
	}
}

// flush writes queued notifications until the queue is empty. On a failed
// write the connection is released and the error returned.
func (c *Connection) flush(ctx context.Context) error {
	for {
		n, ok := c.hub.take(c)
		if !ok {
			return nil
		}
		ev := StreamEvent{Type: EventTypeNotification, Timestamp: c.hub.now(), Notification: &n}
		if err := c.stream.Send(ctx, ev); err != nil {
			c.hub.release(c, &n, err)
			return err
		}
	}
}
