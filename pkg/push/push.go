package push

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

var (
	ErrInvalidMessage  = errors.New("push: invalid message")
	ErrFailedToPublish = errors.New("push: failed to publish")
)

type Config struct {
	Stream    string `env:"PUSH_STREAM" envDefault:"notifications:push"`
	MaxLength int64  `env:"PUSH_STREAM_MAXLEN" envDefault:"100000"`
}

// Action is a button shown with the push message.
type Action struct {
	Action string `json:"action"`
	Title  string `json:"title"`
}

// Message is the payload handed to the push gateway.
type Message struct {
	Token   string         `json:"token"`
	Title   string         `json:"title"`
	Body    string         `json:"body"`
	Tag     string         `json:"tag,omitempty"`
	URL     string         `json:"url,omitempty"`
	Urgent  bool           `json:"urgent,omitempty"`
	Actions []Action       `json:"actions,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

// Publisher delivers a push message and returns a receipt.
type Publisher interface {
	Publish(ctx context.Context, msg Message) (string, error)
}

type streamAdder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

type StreamPublisher struct {
	client streamAdder
	cfg    Config
}

func NewStreamPublisher(client streamAdder, cfg Config) *StreamPublisher {
	return &StreamPublisher{client: client, cfg: cfg}
}

func (p *StreamPublisher) Publish(ctx context.Context, msg Message) (string, error) {
	if strings.TrimSpace(msg.Token) == "" {
		return "", fmt.Errorf("%w: device token is required", ErrInvalidMessage)
	}
	if strings.TrimSpace(msg.Title) == "" {
		return "", fmt.Errorf("%w: title is required", ErrInvalidMessage)
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return "", errors.Join(ErrFailedToPublish, err)
	}

	args := &redis.XAddArgs{
		Stream: p.cfg.Stream,
		Values: map[string]any{
			"token":   msg.Token,
			"payload": string(payload),
		},
	}
	if p.cfg.MaxLength > 0 {
		args.MaxLen = p.cfg.MaxLength
		args.Approx = true
	}

	id, err := p.client.XAdd(ctx, args).Result()
	if err != nil {
		return "", errors.Join(ErrFailedToPublish, err)
	}
	return id, nil
}
