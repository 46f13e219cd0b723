package notifications

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/modernmen/notifier/pkg/validator"
)

// Preferences are a recipient's side-channel opt-outs and quiet hours. The
// live stream is never filtered.
type Preferences struct {
	Mail       bool        `json:"mail"`
	Text       bool        `json:"text"`
	Push       bool        `json:"push"`
	QuietHours *QuietHours `json:"quiet_hours,omitempty"`
}

// QuietHours is a daily window in which text and push are held back unless
// the notification is urgent. Start after End wraps past midnight; equal
// bounds disable the window.
type QuietHours struct {
	Start    string `json:"start"`              // HH:MM
	End      string `json:"end"`                // HH:MM
	Timezone string `json:"timezone,omitempty"` // IANA name, UTC when empty
}

// DefaultPreferences enables every channel without quiet hours. Unknown
// recipients get these.
func DefaultPreferences() Preferences {
	return Preferences{Mail: true, Text: true, Push: true}
}

const clockPattern = `^([01]\d|2[0-3]):[0-5]\d$`

// Validate reports every malformed quiet hours field, wrapped in
// ErrInvalidInput.
func (p Preferences) Validate() error {
	var q QuietHours
	if p.QuietHours != nil {
		q = *p.QuietHours
	}
	set := p.QuietHours != nil

	err := validator.Apply(
		validator.When(set, validator.MatchesRegex("quiet_hours.start", q.Start, clockPattern, "a time as HH:MM")),
		validator.When(set, validator.MatchesRegex("quiet_hours.end", q.End, clockPattern, "a time as HH:MM")),
		validator.When(set && q.Timezone != "", validator.MaxLen("quiet_hours.timezone", q.Timezone, 64)),
		validator.When(set && q.Timezone != "", validTimezone("quiet_hours.timezone", q.Timezone)),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return nil
}

func validTimezone(field, name string) validator.Rule {
	return validator.Rule{
		Check: func() bool {
			_, err := time.LoadLocation(name)
			return err == nil
		},
		Error: validator.ValidationError{
			Field:   field,
			Code:    "timezone",
			Message: "must be an IANA time zone name",
		},
	}
}

// Allow returns nil when ch may carry a notification of the given priority
// at now, otherwise ErrChannelOptedOut or ErrQuietHours.
func (p Preferences) Allow(ch Channel, priority Priority, now time.Time) error {
	enabled := true
	switch ch {
	case ChannelMail:
		enabled = p.Mail
	case ChannelText:
		enabled = p.Text
	case ChannelPush:
		enabled = p.Push
	}
	if !enabled {
		return fmt.Errorf("%w: %s", ErrChannelOptedOut, ch)
	}

	intrusive := ch == ChannelText || ch == ChannelPush
	if intrusive && priority != PriorityUrgent && p.QuietHours.Contains(now) {
		return fmt.Errorf("%w: %s", ErrQuietHours, ch)
	}
	return nil
}

// Contains reports whether t falls inside the window. A nil or malformed
// window contains nothing.
func (q *QuietHours) Contains(t time.Time) bool {
	if q == nil {
		return false
	}
	start, err := minuteOfDay(q.Start)
	if err != nil {
		return false
	}
	end, err := minuteOfDay(q.End)
	if err != nil || start == end {
		return false
	}

	loc := time.UTC
	if q.Timezone != "" {
		if l, err := time.LoadLocation(q.Timezone); err == nil {
			loc = l
		}
	}
	local := t.In(loc)
	m := local.Hour()*60 + local.Minute()

	if start < end {
		return m >= start && m < end
	}
	return m >= start || m < end
}

func minuteOfDay(clock string) (int, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

// PreferenceStore loads and saves Preferences per recipient.
type PreferenceStore interface {
	Get(ctx context.Context, recipient string) (Preferences, error)
	Save(ctx context.Context, recipient string, p Preferences) error
}

// MemoryPreferences keeps preferences in process memory.
type MemoryPreferences struct {
	mu    sync.RWMutex
	prefs map[string]Preferences
}

func NewMemoryPreferences() *MemoryPreferences {
	return &MemoryPreferences{prefs: make(map[string]Preferences)}
}

func (s *MemoryPreferences) Get(_ context.Context, recipient string) (Preferences, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.prefs[recipient]
	if !ok {
		return DefaultPreferences(), nil
	}
	if p.QuietHours != nil {
		q := *p.QuietHours
		p.QuietHours = &q
	}
	return p, nil
}

func (s *MemoryPreferences) Save(_ context.Context, recipient string, p Preferences) error {
	if p.QuietHours != nil {
		q := *p.QuietHours
		p.QuietHours = &q
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs[recipient] = p
	return nil
}

type preferenceHash interface {
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
	HSet(ctx context.Context, key string, values ...any) *redis.IntCmd
	HDel(ctx context.Context, key string, fields ...string) *redis.IntCmd
}

// RedisPreferences stores preferences in hashes named "<prefix>:<recipient>"
// with the boolean fields mail, text and push plus quiet_start, quiet_end
// and timezone. Missing channel fields count as enabled.
type RedisPreferences struct {
	client preferenceHash
	prefix string
}

func NewRedisPreferences(client preferenceHash, prefix string) *RedisPreferences {
	if prefix == "" {
		prefix = "notify:prefs"
	}
	return &RedisPreferences{client: client, prefix: prefix}
}

func (r *RedisPreferences) key(recipient string) string {
	return r.prefix + ":" + recipient
}

func (r *RedisPreferences) Get(ctx context.Context, recipient string) (Preferences, error) {
	fields, err := r.client.HGetAll(ctx, r.key(recipient)).Result()
	if err != nil {
		return DefaultPreferences(), fmt.Errorf("load preferences: %w", err)
	}

	p := DefaultPreferences()
	for name, dst := range map[string]*bool{"mail": &p.Mail, "text": &p.Text, "push": &p.Push} {
		raw, ok := fields[name]
		if !ok {
			continue
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return DefaultPreferences(), fmt.Errorf("load preferences: field %s: %w", name, err)
		}
		*dst = v
	}
	if start, end := fields["quiet_start"], fields["quiet_end"]; start != "" && end != "" {
		p.QuietHours = &QuietHours{Start: start, End: end, Timezone: fields["timezone"]}
	}
	return p, nil
}

func (r *RedisPreferences) Save(ctx context.Context, recipient string, p Preferences) error {
	key := r.key(recipient)
	values := []any{
		"mail", strconv.FormatBool(p.Mail),
		"text", strconv.FormatBool(p.Text),
		"push", strconv.FormatBool(p.Push),
	}
	if q := p.QuietHours; q != nil {
		values = append(values, "quiet_start", q.Start, "quiet_end", q.End, "timezone", q.Timezone)
	} else if err := r.client.HDel(ctx, key, "quiet_start", "quiet_end", "timezone").Err(); err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	if err := r.client.HSet(ctx, key, values...).Err(); err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}
