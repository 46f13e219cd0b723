package notifications

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/sse"

	notify "github.com/modernmen/notifier/pkg/notifications"
)

// sseStream writes hub events to an open text/event-stream response. Only
// the connection's pump goroutine calls Send.
type sseStream struct {
	w            http.ResponseWriter
	rc           *http.ResponseController
	writeTimeout time.Duration
	retry        time.Duration
}

func newSSEStream(w http.ResponseWriter, cfg Config) *sseStream {
	return &sseStream{
		w:            w,
		rc:           http.NewResponseController(w),
		writeTimeout: cfg.StreamWriteTimeout,
		retry:        cfg.StreamRetry,
	}
}

// open sends the stream headers.
func (s *sseStream) open() error {
	h := s.w.Header()
	h.Set("Content-Type", sse.ContentType)
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	s.w.WriteHeader(http.StatusOK)
	return s.rc.Flush()
}

func (s *sseStream) Send(ctx context.Context, ev notify.StreamEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.writeTimeout > 0 {
		err := s.rc.SetWriteDeadline(time.Now().Add(s.writeTimeout))
		if err != nil && !errors.Is(err, http.ErrNotSupported) {
			return err
		}
	}

	out := sse.Event{Event: string(ev.Type), Data: ev}
	if ev.Notification != nil {
		out.Id = ev.Notification.ID
	}
	if ev.Type == notify.EventTypeConnection && s.retry > 0 {
		out.Retry = uint(s.retry / time.Millisecond)
	}
	if err := sse.Encode(s.w, out); err != nil {
		return err
	}
	return s.rc.Flush()
}
