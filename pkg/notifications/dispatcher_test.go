package notifications

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/modernmen/notifier/pkg/email"
	"github.com/modernmen/notifier/pkg/push"
)

type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendEmail(ctx context.Context, params email.SendEmailParams) (string, error) {
	args := m.Called(ctx, params)
	return args.String(0), args.Error(1)
}

type MockTextSender struct {
	mock.Mock
}

func (m *MockTextSender) Send(ctx context.Context, phone, text string) (string, error) {
	args := m.Called(ctx, phone, text)
	return args.String(0), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, msg push.Message) (string, error) {
	args := m.Called(ctx, msg)
	return args.String(0), args.Error(1)
}

func reminder() Notification {
	n := note("n1", "u1")
	n.Kind = KindAppointment
	n.Title = "Appointment Reminder"
	n.Body = "Hi <Sam>, see you at 3pm"
	n.ActionURL = "https://salon.example/appointments"
	n.ActionText = "View Appointment"
	n.Data = map[string]any{"appointment_id": "a-1"}
	return n
}

func TestRenderMail(t *testing.T) {
	t.Parallel()

	subject, html, err := RenderMail(reminder(), "Modern Men")
	require.NoError(t, err)
	assert.Equal(t, "Appointment Reminder", subject)
	assert.Contains(t, html, "Modern Men")
	assert.Contains(t, html, "Hi &lt;Sam&gt;, see you at 3pm")
	assert.Contains(t, html, `href="https://salon.example/appointments"`)
	assert.Contains(t, html, "View Appointment")

	n := reminder()
	n.ActionURL = ""
	_, html, err = RenderMail(n, "Modern Men")
	require.NoError(t, err)
	assert.NotContains(t, html, "<a href")
}

func TestRenderText(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		"Appointment Reminder: Hi <Sam>, see you at 3pm https://salon.example/appointments",
		RenderText(reminder()),
	)

	n := note("n2", "u1")
	n.Title = "Ping"
	assert.Equal(t, "Ping", RenderText(n))

	n.Body = strings.Repeat("é", 2*MaxTextLength)
	out := RenderText(n)
	assert.Equal(t, MaxTextLength, len([]rune(out)))
	assert.True(t, strings.HasSuffix(out, "…"))
}

func TestRenderPush(t *testing.T) {
	t.Parallel()

	msg := RenderPush(reminder(), "tok")
	assert.Equal(t, "tok", msg.Token)
	assert.Equal(t, "appointment", msg.Tag)
	assert.False(t, msg.Urgent)
	require.Len(t, msg.Actions, 1)
	assert.Equal(t, "View Appointment", msg.Actions[0].Title)
	assert.Equal(t, "a-1", msg.Data["appointment_id"])

	n := note("n3", "u1")
	n.Priority = PriorityUrgent
	msg = RenderPush(n, "tok")
	assert.True(t, msg.Urgent)
	assert.Empty(t, msg.Actions)
}

func TestMailDispatcher(t *testing.T) {
	t.Parallel()

	sender := &MockEmailSender{}
	sender.On("SendEmail", mock.Anything, mock.MatchedBy(func(p email.SendEmailParams) bool {
		return p.SendTo == "sam@example.com" && p.Subject == "Appointment Reminder" && p.Tag == "appointment"
	})).Return("pm-1", nil).Once()

	d := NewMailDispatcher(sender, "Modern Men")
	assert.Equal(t, ChannelMail, d.Channel())

	receipt, err := d.Send(context.Background(), reminder(), Contact{Email: "sam@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "pm-1", receipt)

	_, err = d.Send(context.Background(), reminder(), Contact{})
	assert.ErrorIs(t, err, ErrMissingContact)
	sender.AssertExpectations(t)
}

func TestTextDispatcher(t *testing.T) {
	t.Parallel()

	sender := &MockTextSender{}
	sender.On("Send", mock.Anything, "+15550100", RenderText(reminder())).Return("", errors.New("quota")).Once()

	d := NewTextDispatcher(sender)
	assert.Equal(t, ChannelText, d.Channel())

	_, err := d.Send(context.Background(), reminder(), Contact{Phone: "+15550100"})
	assert.EqualError(t, err, "quota")

	_, err = d.Send(context.Background(), reminder(), Contact{Email: "x@y.z"})
	assert.ErrorIs(t, err, ErrMissingContact)
	sender.AssertExpectations(t)
}

func TestPushDispatcher(t *testing.T) {
	t.Parallel()

	pub := &MockPublisher{}
	pub.On("Publish", mock.Anything, mock.MatchedBy(func(m push.Message) bool {
		return m.Token == "device-1" && m.Title == "Appointment Reminder"
	})).Return("1-0", nil).Once()

	d := NewPushDispatcher(pub)
	assert.Equal(t, ChannelPush, d.Channel())

	receipt, err := d.Send(context.Background(), reminder(), Contact{PushToken: "device-1"})
	require.NoError(t, err)
	assert.Equal(t, "1-0", receipt)

	_, err = d.Send(context.Background(), reminder(), Contact{})
	assert.ErrorIs(t, err, ErrMissingContact)
	pub.AssertExpectations(t)
}
