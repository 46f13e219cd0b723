package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"

	"github.com/modernmen/notifier/pkg/logger"
)

// DispatchMode selects whether Create waits for side channels.
type DispatchMode string

const (
	// DispatchDetached returns from Create right after live delivery; side
	// channels finish in the background and Close waits for them.
	DispatchDetached DispatchMode = "detached"
	// DispatchWait returns from Create once every side channel finished.
	DispatchWait DispatchMode = "wait"
)

func (m *DispatchMode) UnmarshalText(b []byte) error {
	switch mode := DispatchMode(strings.ToLower(strings.TrimSpace(string(b)))); mode {
	case DispatchDetached, DispatchWait:
		*m = mode
		return nil
	case "":
		*m = DispatchDetached
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidDispatchMode, string(b))
	}
}

// Manager coordinates a notify request: it persists the record, hands it to
// the hub for live delivery and fans it out to side channels. It also owns
// the read side of the lifecycle.
type Manager struct {
	storage     Storage
	hub         *Hub
	dispatchers map[Channel]Dispatcher
	contacts    ContactResolver
	prefs       PreferenceStore
	sink        OutcomeSink
	log         *slog.Logger
	mode        DispatchMode
	timeout     time.Duration
	now         func() time.Time

	mu       sync.Mutex
	closing  bool
	inflight conc.WaitGroup
}

type ManagerOption func(*Manager)

func WithManagerLogger(l *slog.Logger) ManagerOption {
	return func(m *Manager) { m.log = l }
}

// WithDispatcher registers d for d.Channel(), replacing an earlier one.
func WithDispatcher(d Dispatcher) ManagerOption {
	return func(m *Manager) { m.dispatchers[d.Channel()] = d }
}

func WithContactResolver(r ContactResolver) ManagerOption {
	return func(m *Manager) { m.contacts = r }
}

// WithPreferences sets where recipient preferences live. The default is an
// in-memory store.
func WithPreferences(p PreferenceStore) ManagerOption {
	return func(m *Manager) { m.prefs = p }
}

func WithOutcomeSink(s OutcomeSink) ManagerOption {
	return func(m *Manager) { m.sink = s }
}

func WithDispatchMode(mode DispatchMode) ManagerOption {
	return func(m *Manager) { m.mode = mode }
}

func WithDispatchTimeout(d time.Duration) ManagerOption {
	return func(m *Manager) { m.timeout = d }
}

func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) { m.now = now }
}

func NewManager(storage Storage, hub *Hub, opts ...ManagerOption) *Manager {
	def := DefaultConfig()
	m := &Manager{
		storage:     storage,
		hub:         hub,
		dispatchers: make(map[Channel]Dispatcher),
		log:         slog.Default(),
		mode:        def.DispatchMode,
		timeout:     def.DispatchTimeout,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.sink == nil {
		m.sink = NewLogSink(m.log)
	}
	if m.prefs == nil {
		m.prefs = NewMemoryPreferences()
	}
	return m
}

// Create validates and stores a notification, delivers it live and starts
// side-channel dispatch. Only validation and persistence errors are
// returned; live and side-channel failures are logged and reported to the
// outcome sink. In detached mode outcomes are recorded off the request path.
func (m *Manager) Create(ctx context.Context, in CreateInput) (*Notification, error) {
	n, err := in.build(m.now())
	if err != nil {
		return nil, err
	}

	if err := m.storage.Create(ctx, n); err != nil {
		m.log.LogAttrs(ctx, slog.LevelError, "failed to persist notification",
			logger.NotificationID(n.ID),
			logger.Recipient(n.Recipient),
			slog.String("status", string(StatusFailed)),
			logger.Error(err),
		)
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	var live *DispatchResult
	if n.Channels.Has(ChannelLive) {
		start := time.Now()
		outcome := m.hub.Deliver(ctx, n)
		live = &DispatchResult{
			NotificationID: n.ID,
			Recipient:      n.Recipient,
			Channel:        ChannelLive,
			OK:             true,
			Detail:         string(outcome),
			Duration:       time.Since(start),
		}
	}

	m.dispatch(ctx, n, in.Contact, n.Channels.Side(), live)
	return &n, nil
}

func (m *Manager) dispatch(ctx context.Context, n Notification, contact Contact, channels Channels, live *DispatchResult) {
	if live == nil && len(channels) == 0 {
		return
	}

	m.mu.Lock()
	detached := m.mode != DispatchWait && !m.closing
	if detached {
		dctx := context.WithoutCancel(ctx)
		m.inflight.Go(func() { m.fanOut(dctx, n, contact, channels, live) })
	}
	m.mu.Unlock()

	if !detached {
		m.fanOut(ctx, n, contact, channels, live)
	}
}

// fanOut records the live outcome, drops the channels the recipient's
// preferences hold back, then runs the rest concurrently and waits for all
// of them.
func (m *Manager) fanOut(ctx context.Context, n Notification, contact Contact, channels Channels, live *DispatchResult) {
	if live != nil {
		m.sink.Record(ctx, *live)
	}
	if len(channels) == 0 {
		return
	}

	allowed := m.filter(ctx, n, channels)
	if len(allowed) == 0 {
		return
	}
	contact = m.resolveContact(ctx, n.Recipient, contact)

	var wg conc.WaitGroup
	for _, ch := range allowed {
		wg.Go(func() {
			m.sink.Record(ctx, m.send(ctx, n, contact, ch))
		})
	}
	wg.Wait()
}

// filter returns the channels the recipient accepts right now. Each
// rejected channel is recorded as a skipped result. When preferences
// cannot be loaded every channel is kept.
func (m *Manager) filter(ctx context.Context, n Notification, channels Channels) Channels {
	prefs, err := m.prefs.Get(ctx, n.Recipient)
	if err != nil {
		m.log.LogAttrs(ctx, slog.LevelWarn, "failed to load recipient preferences",
			logger.Recipient(n.Recipient),
			logger.Error(err),
		)
		return channels
	}

	now := m.now()
	allowed := make(Channels, 0, len(channels))
	for _, ch := range channels {
		if err := prefs.Allow(ch, n.Priority, now); err != nil {
			m.sink.Record(ctx, DispatchResult{
				NotificationID: n.ID,
				Recipient:      n.Recipient,
				Channel:        ch,
				Skipped:        true,
				Err:            err,
			})
			continue
		}
		allowed = append(allowed, ch)
	}
	return allowed
}

// send runs one dispatcher under the dispatch timeout. A panic inside the
// dispatcher is turned into a failed result.
func (m *Manager) send(ctx context.Context, n Notification, contact Contact, ch Channel) DispatchResult {
	res := DispatchResult{NotificationID: n.ID, Recipient: n.Recipient, Channel: ch}
	start := time.Now()

	d, ok := m.dispatchers[ch]
	if !ok {
		res.Err = fmt.Errorf("%w: %s", ErrNoDispatcher, ch)
		res.Duration = time.Since(start)
		return res
	}

	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	var pc panics.Catcher
	pc.Try(func() {
		res.Receipt, res.Err = d.Send(ctx, n, contact)
	})
	if r := pc.Recovered(); r != nil {
		res.Receipt, res.Err = "", r.AsError()
	}
	res.OK = res.Err == nil
	res.Duration = time.Since(start)
	return res
}

func (m *Manager) resolveContact(ctx context.Context, recipient string, given Contact) Contact {
	if m.contacts == nil {
		return given
	}
	resolved, err := m.contacts.Resolve(ctx, recipient)
	if err != nil {
		m.log.LogAttrs(ctx, slog.LevelWarn, "failed to resolve recipient contact",
			logger.Recipient(recipient),
			logger.Error(err),
		)
		return given
	}
	return given.merge(resolved)
}

func (m *Manager) Get(ctx context.Context, id string) (*Notification, error) {
	return m.storage.Get(ctx, id)
}

// ListQuery selects a page of a recipient's notifications.
type ListQuery struct {
	Page            int
	PageSize        int
	UnreadOnly      bool
	IncludeArchived bool
	IncludeExpired  bool
	Kinds           []Kind
}

const (
	DefaultPageSize = 50
	MaxPageSize     = 100
)

func (q *ListQuery) normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
}

type Page struct {
	Items      []Notification `json:"items"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalPages int            `json:"total_pages"`
}

// List returns a page of notifications, newest first. Archived and expired
// records are hidden unless the query asks for them.
func (m *Manager) List(ctx context.Context, recipient string, q ListQuery) (*Page, error) {
	q.normalize()
	items, total, err := m.storage.List(ctx, recipient, ListOptions{
		Limit:           q.PageSize,
		Offset:          (q.Page - 1) * q.PageSize,
		UnreadOnly:      q.UnreadOnly,
		IncludeArchived: q.IncludeArchived,
		IncludeExpired:  q.IncludeExpired,
		Kinds:           q.Kinds,
		Now:             m.now(),
	})
	if err != nil {
		return nil, err
	}
	return &Page{
		Items:      items,
		Total:      total,
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: (total + q.PageSize - 1) / q.PageSize,
	}, nil
}

func (m *Manager) CountUnread(ctx context.Context, recipient string) (int, error) {
	return m.storage.CountUnread(ctx, recipient, m.now())
}

// MarkAsRead is idempotent: a second call returns the record with its
// original read time.
func (m *Manager) MarkAsRead(ctx context.Context, id string) (*Notification, error) {
	return m.transition(ctx, id, EventRead)
}

// Archive is idempotent and terminal.
func (m *Manager) Archive(ctx context.Context, id string) (*Notification, error) {
	return m.transition(ctx, id, EventArchive)
}

// MarkAllAsRead marks every unread notification of the recipient read and
// returns how many changed.
func (m *Manager) MarkAllAsRead(ctx context.Context, recipient string) (int, error) {
	return m.storage.MarkAllRead(ctx, recipient, m.now())
}

func (m *Manager) transition(ctx context.Context, id string, ev Event) (*Notification, error) {
	n, err := m.storage.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	upd, changed, err := Transition(*n, ev, m.now())
	if err != nil {
		return nil, err
	}
	if !changed {
		return n, nil
	}
	return m.storage.UpdateStatus(ctx, id, upd)
}

// Preferences returns the recipient's stored preferences, or the defaults.
func (m *Manager) Preferences(ctx context.Context, recipient string) (Preferences, error) {
	if strings.TrimSpace(recipient) == "" {
		return Preferences{}, fmt.Errorf("%w: recipient is required", ErrInvalidInput)
	}
	return m.prefs.Get(ctx, recipient)
}

// UpdatePreferences validates and replaces the recipient's preferences.
func (m *Manager) UpdatePreferences(ctx context.Context, recipient string, p Preferences) (Preferences, error) {
	if strings.TrimSpace(recipient) == "" {
		return Preferences{}, fmt.Errorf("%w: recipient is required", ErrInvalidInput)
	}
	if err := p.Validate(); err != nil {
		return Preferences{}, err
	}
	if err := m.prefs.Save(ctx, recipient, p); err != nil {
		return Preferences{}, err
	}
	return p, nil
}

// Close waits for detached dispatches to finish. Create keeps working after
// Close but dispatches synchronously.
func (m *Manager) Close() error {
	m.mu.Lock()
	m.closing = true
	m.mu.Unlock()

	m.inflight.Wait()
	return nil
}
