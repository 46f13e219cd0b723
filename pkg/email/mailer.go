package email

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// EmailSender delivers one message and returns the provider's message id.
type EmailSender interface {
	SendEmail(ctx context.Context, params SendEmailParams) (string, error)
}

type SendEmailParams struct {
	SendTo   string `json:"send_to"`
	Subject  string `json:"subject"`
	BodyHTML string `json:"body_html"`
	Tag      string `json:"tag,omitempty"`
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Validate checks the fields every provider requires.
func (p SendEmailParams) Validate() error {
	switch {
	case strings.TrimSpace(p.SendTo) == "":
		return fmt.Errorf("%w: recipient is required", ErrInvalidParams)
	case !emailRegex.MatchString(p.SendTo):
		return fmt.Errorf("%w: recipient %q is not a valid address", ErrInvalidParams, p.SendTo)
	case strings.TrimSpace(p.Subject) == "":
		return fmt.Errorf("%w: subject is required", ErrInvalidParams)
	case strings.TrimSpace(p.BodyHTML) == "":
		return fmt.Errorf("%w: body is required", ErrInvalidParams)
	}
	return nil
}

// New returns the sender selected by cfg.Provider.
func New(cfg Config) (EmailSender, error) {
	switch cfg.Provider {
	case ProviderPostmark:
		return NewPostmarkClient(cfg)
	case ProviderResend:
		return NewResendClient(cfg)
	case ProviderDev, "":
		return NewDevSender(cfg.DevDir), nil
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrInvalidConfig, cfg.Provider)
	}
}

func validateSender(cfg Config) error {
	if cfg.SenderEmail == "" {
		return fmt.Errorf("%w: SenderEmail is required", ErrInvalidConfig)
	}
	if !emailRegex.MatchString(cfg.SenderEmail) {
		return fmt.Errorf("%w: SenderEmail must be a valid email address", ErrInvalidConfig)
	}
	if cfg.SupportEmail != "" && !emailRegex.MatchString(cfg.SupportEmail) {
		return fmt.Errorf("%w: SupportEmail must be a valid email address", ErrInvalidConfig)
	}
	return nil
}

func fromAddress(cfg Config) string {
	if cfg.SenderName == "" {
		return cfg.SenderEmail
	}
	return fmt.Sprintf("%s <%s>", cfg.SenderName, cfg.SenderEmail)
}
