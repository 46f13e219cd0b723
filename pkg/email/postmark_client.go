package email

import (
	"context"
	"errors"
	"fmt"

	"github.com/mrz1836/postmark"
)

type PostmarkClient struct {
	client *postmark.Client
	config Config
}

// NewPostmarkClient requires both Postmark tokens and a valid sender.
func NewPostmarkClient(cfg Config) (*PostmarkClient, error) {
	if cfg.PostmarkServerToken == "" {
		return nil, fmt.Errorf("%w: PostmarkServerToken is required", ErrInvalidConfig)
	}
	if cfg.PostmarkAccountToken == "" {
		return nil, fmt.Errorf("%w: PostmarkAccountToken is required", ErrInvalidConfig)
	}
	if err := validateSender(cfg); err != nil {
		return nil, err
	}

	return &PostmarkClient{
		client: postmark.NewClient(cfg.PostmarkServerToken, cfg.PostmarkAccountToken),
		config: cfg,
	}, nil
}

// WithBaseURL points the client at another API host.
func (c *PostmarkClient) WithBaseURL(u string) *PostmarkClient {
	c.client.BaseURL = u
	return c
}

// SendEmail tracks opens and HTML link clicks. Replies go to the support address.
func (c *PostmarkClient) SendEmail(ctx context.Context, params SendEmailParams) (string, error) {
	if err := params.Validate(); err != nil {
		return "", err
	}

	resp, err := c.client.SendEmail(ctx, postmark.Email{
		From:       fromAddress(c.config),
		ReplyTo:    c.config.SupportEmail,
		To:         params.SendTo,
		Subject:    params.Subject,
		Tag:        params.Tag,
		HTMLBody:   params.BodyHTML,
		TrackOpens: true,
		TrackLinks: "HtmlOnly",
	})
	if err != nil {
		return "", errors.Join(ErrFailedToSendEmail, err)
	}
	if resp.ErrorCode > 0 {
		return "", errors.Join(
			ErrFailedToSendEmail,
			fmt.Errorf("postmark error: %d - %s", resp.ErrorCode, resp.Message),
		)
	}
	return resp.MessageID, nil
}
