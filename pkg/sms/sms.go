package sms

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/kavenegar/kavenegar-go"
)

var (
	ErrInvalidMessage = errors.New("sms: invalid message")
	ErrFailedToSend   = errors.New("sms: failed to send")
)

type Config struct {
	KavenegarAPIKey string `env:"KAVENEGAR_API_KEY"`
	Sender          string `env:"SMS_SENDER"`
}

// Sender delivers a single text message and returns the provider message id.
type Sender interface {
	Send(ctx context.Context, phone, text string) (string, error)
}

// messageAPI is the part of the Kavenegar client used here.
type messageAPI interface {
	Send(sender string, receptor []string, message string, params *kavenegar.MessageSendParam) ([]kavenegar.Message, error)
}

type KavenegarSender struct {
	api    messageAPI
	sender string
}

// New returns a Kavenegar sender, or a LogSender when the API key is empty.
func New(cfg Config, log *slog.Logger) Sender {
	if cfg.KavenegarAPIKey == "" {
		log.Warn("kavenegar api key is empty, text messages are only logged")
		return NewLogSender(log)
	}
	return NewKavenegarSender(kavenegar.New(cfg.KavenegarAPIKey).Message, cfg.Sender)
}

func NewKavenegarSender(api messageAPI, sender string) *KavenegarSender {
	return &KavenegarSender{api: api, sender: sender}
}

func (s *KavenegarSender) Send(ctx context.Context, phone, text string) (string, error) {
	if err := validate(phone, text); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", errors.Join(ErrFailedToSend, err)
	}

	res, err := s.api.Send(s.sender, []string{phone}, text, nil)
	if err != nil {
		var apiErr *kavenegar.APIError
		var httpErr *kavenegar.HTTPError
		switch {
		case errors.As(err, &apiErr):
			return "", errors.Join(ErrFailedToSend, fmt.Errorf("kavenegar api error: %w", err))
		case errors.As(err, &httpErr):
			return "", errors.Join(ErrFailedToSend, fmt.Errorf("kavenegar http error: %w", err))
		default:
			return "", errors.Join(ErrFailedToSend, err)
		}
	}
	if len(res) == 0 {
		return "", fmt.Errorf("%w: empty response from kavenegar", ErrFailedToSend)
	}
	return fmt.Sprintf("%d", res[0].MessageID), nil
}

// LogSender records messages in the log instead of sending them.
type LogSender struct {
	log *slog.Logger
}

func NewLogSender(log *slog.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(ctx context.Context, phone, text string) (string, error) {
	if err := validate(phone, text); err != nil {
		return "", err
	}
	id := uuid.NewString()
	s.log.InfoContext(ctx, "text message",
		slog.String("phone", phone),
		slog.String("text", text),
		slog.String("message_id", id),
	)
	return id, nil
}

func validate(phone, text string) error {
	if strings.TrimSpace(phone) == "" {
		return fmt.Errorf("%w: phone number is required", ErrInvalidMessage)
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: text is required", ErrInvalidMessage)
	}
	return nil
}
