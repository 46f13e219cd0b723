package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/modernmen/notifier/pkg/logger"
)

// DispatchResult is the outcome of one channel for one notification.
type DispatchResult struct {
	NotificationID string        `json:"notification_id"`
	Recipient      string        `json:"recipient"`
	Channel        Channel       `json:"channel"`
	OK             bool          `json:"ok"`
	Skipped        bool          `json:"skipped,omitempty"` // held back by recipient preferences
	Receipt        string        `json:"receipt,omitempty"`
	Detail         string        `json:"detail,omitempty"` // live outcome
	Err            error         `json:"-"`
	Duration       time.Duration `json:"duration"`
}

// OutcomeSink receives every DispatchResult. Record must not block for long
// and must be safe for concurrent use.
type OutcomeSink interface {
	Record(ctx context.Context, res DispatchResult)
}

// LogSink writes results to a logger: failures at warn, skips at info and
// the rest at debug.
type LogSink struct {
	log *slog.Logger
}

func NewLogSink(l *slog.Logger) *LogSink {
	return &LogSink{log: l.With(logger.Component("dispatch"))}
}

func (s *LogSink) Record(ctx context.Context, res DispatchResult) {
	attrs := []slog.Attr{
		logger.NotificationID(res.NotificationID),
		logger.Recipient(res.Recipient),
		logger.Channel(string(res.Channel)),
		logger.Duration(res.Duration),
	}
	switch {
	case res.Skipped:
		s.log.LogAttrs(ctx, slog.LevelInfo, "channel skipped", append(attrs, logger.Error(res.Err))...)
		return
	case !res.OK:
		s.log.LogAttrs(ctx, slog.LevelWarn, "channel dispatch failed", append(attrs, logger.Error(res.Err))...)
		return
	}
	if res.Detail != "" {
		attrs = append(attrs, slog.String("outcome", res.Detail))
	}
	s.log.LogAttrs(ctx, slog.LevelDebug, "channel dispatch succeeded", append(attrs, logger.Receipt(res.Receipt))...)
}

// ChannelStats counts outcomes for one channel.
type ChannelStats struct {
	OK      int `json:"ok"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// MemorySink keeps counters and the most recent results in memory.
type MemorySink struct {
	mu      sync.Mutex
	keep    int
	stats   map[Channel]ChannelStats
	results []DispatchResult
}

// NewMemorySink keeps up to keep recent results; counters are unbounded.
func NewMemorySink(keep int) *MemorySink {
	return &MemorySink{keep: max(keep, 1), stats: make(map[Channel]ChannelStats)}
}

func (s *MemorySink) Record(_ context.Context, res DispatchResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.stats[res.Channel]
	switch {
	case res.Skipped:
		st.Skipped++
	case res.OK:
		st.OK++
	default:
		st.Failed++
	}
	s.stats[res.Channel] = st

	s.results = append(s.results, res)
	if len(s.results) > s.keep {
		s.results = s.results[len(s.results)-s.keep:]
	}
}

func (s *MemorySink) Stats() map[Channel]ChannelStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[Channel]ChannelStats, len(s.stats))
	for k, v := range s.stats {
		out[k] = v
	}
	return out
}

// Results returns recent results, oldest first.
func (s *MemorySink) Results() []DispatchResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]DispatchResult(nil), s.results...)
}

// ResultsFor returns the recent results of one notification.
func (s *MemorySink) ResultsFor(notificationID string) []DispatchResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []DispatchResult
	for _, r := range s.results {
		if r.NotificationID == notificationID {
			out = append(out, r)
		}
	}
	return out
}

type hashIncrementer interface {
	HIncrBy(ctx context.Context, key, field string, incr int64) *redis.IntCmd
}

// RedisSink keeps daily per-channel counters in a Redis hash named
// "<prefix>:<YYYY-MM-DD>" with fields "<channel>:ok", "<channel>:failed"
// and "<channel>:skipped".
type RedisSink struct {
	client hashIncrementer
	prefix string
	log    *slog.Logger
}

func NewRedisSink(client hashIncrementer, prefix string, l *slog.Logger) *RedisSink {
	if prefix == "" {
		prefix = "notify:dispatch"
	}
	return &RedisSink{client: client, prefix: prefix, log: l}
}

func (s *RedisSink) Record(ctx context.Context, res DispatchResult) {
	field := string(res.Channel) + ":ok"
	switch {
	case res.Skipped:
		field = string(res.Channel) + ":skipped"
	case !res.OK:
		field = string(res.Channel) + ":failed"
	}
	key := fmt.Sprintf("%s:%s", s.prefix, time.Now().UTC().Format(time.DateOnly))
	if err := s.client.HIncrBy(ctx, key, field, 1).Err(); err != nil {
		s.log.LogAttrs(ctx, slog.LevelWarn, "failed to record dispatch outcome",
			logger.Channel(string(res.Channel)),
			logger.Error(err),
		)
	}
}

// MultiSink fans a result out to several sinks in order.
type MultiSink []OutcomeSink

func (m MultiSink) Record(ctx context.Context, res DispatchResult) {
	for _, s := range m {
		s.Record(ctx, res)
	}
}
