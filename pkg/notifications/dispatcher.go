package notifications

import (
	"context"
	"fmt"

	"github.com/modernmen/notifier/pkg/email"
	"github.com/modernmen/notifier/pkg/push"
	"github.com/modernmen/notifier/pkg/sms"
)

// Dispatcher delivers a notification over one side channel and returns the
// provider receipt.
type Dispatcher interface {
	Channel() Channel
	Send(ctx context.Context, n Notification, to Contact) (string, error)
}

type MailDispatcher struct {
	sender email.EmailSender
	brand  string
}

func NewMailDispatcher(sender email.EmailSender, brand string) *MailDispatcher {
	return &MailDispatcher{sender: sender, brand: brand}
}

func (d *MailDispatcher) Channel() Channel { return ChannelMail }

func (d *MailDispatcher) Send(ctx context.Context, n Notification, to Contact) (string, error) {
	if to.Email == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingContact, ChannelMail)
	}
	subject, html, err := RenderMail(n, d.brand)
	if err != nil {
		return "", err
	}
	return d.sender.SendEmail(ctx, email.SendEmailParams{
		SendTo:   to.Email,
		Subject:  subject,
		BodyHTML: html,
		Tag:      string(n.Kind),
	})
}

type TextDispatcher struct {
	sender sms.Sender
}

func NewTextDispatcher(sender sms.Sender) *TextDispatcher {
	return &TextDispatcher{sender: sender}
}

func (d *TextDispatcher) Channel() Channel { return ChannelText }

func (d *TextDispatcher) Send(ctx context.Context, n Notification, to Contact) (string, error) {
	if to.Phone == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingContact, ChannelText)
	}
	return d.sender.Send(ctx, to.Phone, RenderText(n))
}

type PushDispatcher struct {
	publisher push.Publisher
}

func NewPushDispatcher(publisher push.Publisher) *PushDispatcher {
	return &PushDispatcher{publisher: publisher}
}

func (d *PushDispatcher) Channel() Channel { return ChannelPush }

func (d *PushDispatcher) Send(ctx context.Context, n Notification, to Contact) (string, error) {
	if to.PushToken == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingContact, ChannelPush)
	}
	return d.publisher.Publish(ctx, RenderPush(n, to.PushToken))
}
