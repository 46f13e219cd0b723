package notifications

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modernmen/notifier/pkg/validator"
)

func validInput() CreateInput {
	return CreateInput{
		Kind:      KindAppointment,
		Title:     "Appointment Reminder",
		Body:      "Tomorrow at 2pm",
		Recipient: "u1",
		Channels:  Channels{ChannelLive, ChannelMail},
	}
}

func TestCreateInput_Validate(t *testing.T) {
	t.Parallel()

	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	tests := []struct {
		name    string
		mutate  func(*CreateInput)
		wantErr error
	}{
		{name: "valid", mutate: func(*CreateInput) {}},
		{name: "empty channels", mutate: func(in *CreateInput) { in.Channels = nil }, wantErr: ErrEmptyChannels},
		{name: "unknown channel", mutate: func(in *CreateInput) { in.Channels = Channels{"fax"} }, wantErr: ErrInvalidInput},
		{name: "missing recipient", mutate: func(in *CreateInput) { in.Recipient = " " }, wantErr: ErrInvalidInput},
		{name: "missing title", mutate: func(in *CreateInput) { in.Title = "" }, wantErr: ErrInvalidInput},
		{name: "unknown kind", mutate: func(in *CreateInput) { in.Kind = "party" }, wantErr: ErrInvalidInput},
		{name: "unknown priority", mutate: func(in *CreateInput) { in.Priority = "meh" }, wantErr: ErrInvalidInput},
		{name: "expiry before schedule", mutate: func(in *CreateInput) {
			in.ScheduledFor = &future
			in.ExpiresAt = &past
		}, wantErr: ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			in := validInput()
			tt.mutate(&in)
			err := in.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	assert.ErrorIs(t, ErrEmptyChannels, ErrInvalidInput)
}

func TestCreateInput_ValidateReportsEveryField(t *testing.T) {
	t.Parallel()

	in := CreateInput{Kind: "party", Priority: "meh", Channels: Channels{ChannelLive, "fax"}}
	err := in.Validate()
	require.ErrorIs(t, err, ErrInvalidInput)

	verrs := validator.ExtractValidationErrors(err)
	require.NotNil(t, verrs)
	assert.Equal(t, []string{"channels", "recipient", "title", "kind", "priority"}, verrs.Fields())

	in.Channels = nil
	err = in.Validate()
	assert.ErrorIs(t, err, ErrEmptyChannels)
	assert.True(t, validator.ExtractValidationErrors(err).Has("channels"))
}

func TestCreateInput_Build(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	in := validInput()
	in.Channels = Channels{ChannelMail, ChannelLive, ChannelMail}
	n, err := in.build(now)
	require.NoError(t, err)

	assert.NotEmpty(t, n.ID)
	assert.Equal(t, StatusSent, n.Status)
	assert.Equal(t, PriorityNormal, n.Priority)
	assert.Equal(t, now, n.CreatedAt)
	assert.Equal(t, now, n.ScheduledFor)
	assert.Equal(t, Channels{ChannelMail, ChannelLive}, n.Channels)
	assert.Nil(t, n.ReadAt)

	other, err := in.build(now)
	require.NoError(t, err)
	assert.NotEqual(t, n.ID, other.ID)

	past := now.Add(-time.Minute)
	in.ExpiresAt = &past
	_, err = in.build(now)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.True(t, validator.ExtractValidationErrors(err).Has("expires_at"))
	assert.NoError(t, in.Validate(), "expiry against the clock is only checked on build")
}

func TestNotification_CurrentStatus(t *testing.T) {
	t.Parallel()

	now := time.Now()
	past := now.Add(-time.Second)

	n := Notification{Status: StatusSent, ExpiresAt: &past}
	assert.True(t, n.IsExpired(now))
	assert.Equal(t, StatusExpired, n.CurrentStatus(now))

	n.Status = StatusArchived
	assert.Equal(t, StatusArchived, n.CurrentStatus(now))

	n = Notification{Status: StatusRead}
	assert.False(t, n.IsExpired(now))
	assert.Equal(t, StatusRead, n.CurrentStatus(now))
}

func TestChannels(t *testing.T) {
	t.Parallel()

	cs := Channels{ChannelLive, ChannelText, ChannelPush}
	assert.True(t, cs.Has(ChannelText))
	assert.False(t, cs.Has(ChannelMail))
	assert.Equal(t, Channels{ChannelText, ChannelPush}, cs.Side())
}

func TestCreateInput_JSON(t *testing.T) {
	t.Parallel()

	raw := `{"kind":"inventory","title":"Low stock","recipient":"manager-1","channels":["live","text"],"contact":{"phone":"+15550100"}}`
	var in CreateInput
	require.NoError(t, json.Unmarshal([]byte(raw), &in))
	require.NoError(t, in.Validate())
	assert.Equal(t, "+15550100", in.Contact.Phone)
	assert.Equal(t, Channels{ChannelLive, ChannelText}, in.Channels)
}
