package email

import (
	"context"
	"errors"
	"fmt"

	"github.com/resend/resend-go/v3"
)

type ResendClient struct {
	client *resend.Client
	config Config
}

func NewResendClient(cfg Config) (*ResendClient, error) {
	if cfg.ResendAPIKey == "" {
		return nil, fmt.Errorf("%w: ResendAPIKey is required", ErrInvalidConfig)
	}
	if err := validateSender(cfg); err != nil {
		return nil, err
	}

	return &ResendClient{
		client: resend.NewClient(cfg.ResendAPIKey),
		config: cfg,
	}, nil
}

func (c *ResendClient) SendEmail(ctx context.Context, params SendEmailParams) (string, error) {
	if err := params.Validate(); err != nil {
		return "", err
	}

	req := &resend.SendEmailRequest{
		From:    fromAddress(c.config),
		To:      []string{params.SendTo},
		Subject: params.Subject,
		Html:    params.BodyHTML,
	}

	resp, err := c.client.Emails.SendWithContext(ctx, req)
	if err != nil {
		return "", errors.Join(ErrFailedToSendEmail, err)
	}
	return resp.Id, nil
}
