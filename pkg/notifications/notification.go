package notifications

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/modernmen/notifier/pkg/validator"
)

// Kind is the business category of a notification.
type Kind string

const (
	KindAppointment Kind = "appointment"
	KindInventory   Kind = "inventory"
	KindSystem      Kind = "system"
	KindCommission  Kind = "commission"
	KindCustomer    Kind = "customer"
	KindUrgent      Kind = "urgent"
)

var allKinds = []Kind{KindAppointment, KindInventory, KindSystem, KindCommission, KindCustomer, KindUrgent}

func (k Kind) Valid() bool { return slices.Contains(allKinds, k) }

// Priority is advisory. Delivery order does not depend on it.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

var allPriorities = []Priority{PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent}

func (p Priority) Valid() bool { return slices.Contains(allPriorities, p) }

// Channel is a delivery route. ChannelLive is the in-app event stream,
// the others are side channels.
type Channel string

const (
	ChannelLive Channel = "live"
	ChannelMail Channel = "mail"
	ChannelText Channel = "text"
	ChannelPush Channel = "push"
)

var allChannels = []Channel{ChannelLive, ChannelMail, ChannelText, ChannelPush}

func (c Channel) Valid() bool { return slices.Contains(allChannels, c) }

// Channels is an ordered set of channels.
type Channels []Channel

func (cs Channels) Has(c Channel) bool {
	return slices.Contains(cs, c)
}

// Side returns every channel except ChannelLive.
func (cs Channels) Side() Channels {
	out := make(Channels, 0, len(cs))
	for _, c := range cs {
		if c != ChannelLive {
			out = append(out, c)
		}
	}
	return out
}

// dedupe keeps the first occurrence of each channel.
func (cs Channels) dedupe() Channels {
	out := make(Channels, 0, len(cs))
	for _, c := range cs {
		if !out.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

type Status string

const (
	StatusPending  Status = "pending"
	StatusSent     Status = "sent"
	StatusRead     Status = "read"
	StatusArchived Status = "archived"
	StatusExpired  Status = "expired"
	StatusFailed   Status = "failed"
)

// Notification is the durable record of one notify request.
// Once stored only Status, ReadAt and ArchivedAt change.
type Notification struct {
	ID           string         `json:"id"`
	Kind         Kind           `json:"kind"`
	Title        string         `json:"title"`
	Body         string         `json:"body"`
	Recipient    string         `json:"recipient"`
	Priority     Priority       `json:"priority"`
	Channels     Channels       `json:"channels"`
	Status       Status         `json:"status"`
	ScheduledFor time.Time      `json:"scheduled_for"`
	ExpiresAt    *time.Time     `json:"expires_at,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	ReadAt       *time.Time     `json:"read_at,omitempty"`
	ArchivedAt   *time.Time     `json:"archived_at,omitempty"`
	ActionURL    string         `json:"action_url,omitempty"`
	ActionText   string         `json:"action_text,omitempty"`
	Data         map[string]any `json:"data,omitempty"`
}

// IsExpired reports whether ExpiresAt has passed at now.
func (n Notification) IsExpired(now time.Time) bool {
	return n.ExpiresAt != nil && !now.Before(*n.ExpiresAt)
}

// CurrentStatus is the status a reader should see at now. Expiry is derived,
// so an unread or read record past ExpiresAt reports StatusExpired while the
// stored status is left alone.
func (n Notification) CurrentStatus(now time.Time) Status {
	if (n.Status == StatusSent || n.Status == StatusRead) && n.IsExpired(now) {
		return StatusExpired
	}
	return n.Status
}

// Contact carries the side-channel addresses of a recipient.
type Contact struct {
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	PushToken string `json:"push_token,omitempty"`
}

// merge fills empty fields of c from other.
func (c Contact) merge(other Contact) Contact {
	if c.Email == "" {
		c.Email = other.Email
	}
	if c.Phone == "" {
		c.Phone = other.Phone
	}
	if c.PushToken == "" {
		c.PushToken = other.PushToken
	}
	return c
}

// CreateInput is a notify request.
type CreateInput struct {
	Kind         Kind           `json:"kind"`
	Title        string         `json:"title"`
	Body         string         `json:"body"`
	Recipient    string         `json:"recipient"`
	Priority     Priority       `json:"priority"`
	Channels     Channels       `json:"channels"`
	ScheduledFor *time.Time     `json:"scheduled_for,omitempty"`
	ExpiresAt    *time.Time     `json:"expires_at,omitempty"`
	ActionURL    string         `json:"action_url,omitempty"`
	ActionText   string         `json:"action_text,omitempty"`
	Data         map[string]any `json:"data,omitempty"`
	Contact      Contact        `json:"contact"`
}

// Validate checks every field and reports all problems at once. The error
// wraps ErrInvalidInput and validator.ValidationErrors; it wraps
// ErrEmptyChannels too when no channel was requested.
func (in CreateInput) Validate() error {
	return in.validate(time.Time{})
}

// validate also requires a future expiry when now is set and no schedule is
// given.
func (in CreateInput) validate(now time.Time) error {
	var expires, scheduled time.Time
	if in.ExpiresAt != nil {
		expires = *in.ExpiresAt
	}
	if in.ScheduledFor != nil {
		scheduled = *in.ScheduledFor
	}

	err := validator.Apply(
		validator.RequiredSlice("channels", in.Channels),
		validator.EachOneOf("channels", in.Channels, allChannels),
		validator.Required("recipient", in.Recipient),
		validator.Required("title", in.Title),
		validator.OneOf("kind", in.Kind, allKinds),
		validator.When(in.Priority != "", validator.OneOf("priority", in.Priority, allPriorities)),
		validator.When(in.ExpiresAt != nil && in.ScheduledFor != nil,
			validator.DateAfter("expires_at", expires, scheduled)),
		validator.When(in.ExpiresAt != nil && in.ScheduledFor == nil && !now.IsZero(),
			validator.DateAfter("expires_at", expires, now)),
	)
	switch {
	case err == nil:
		return nil
	case len(in.Channels) == 0:
		return fmt.Errorf("%w: %w", ErrEmptyChannels, err)
	default:
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
}

// build validates the input and returns the record to persist.
func (in CreateInput) build(now time.Time) (Notification, error) {
	if err := in.validate(now); err != nil {
		return Notification{}, err
	}

	n := Notification{
		ID:           uuid.NewString(),
		Kind:         in.Kind,
		Title:        strings.TrimSpace(in.Title),
		Body:         in.Body,
		Recipient:    strings.TrimSpace(in.Recipient),
		Priority:     in.Priority,
		Channels:     in.Channels.dedupe(),
		Status:       StatusSent,
		ScheduledFor: now,
		ExpiresAt:    in.ExpiresAt,
		CreatedAt:    now,
		ActionURL:    in.ActionURL,
		ActionText:   in.ActionText,
		Data:         in.Data,
	}
	if n.Priority == "" {
		n.Priority = PriorityNormal
	}
	if in.ScheduledFor != nil {
		n.ScheduledFor = *in.ScheduledFor
	}
	return n, nil
}
