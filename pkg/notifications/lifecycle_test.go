package notifications

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modernmen/notifier/pkg/statemachine"
)

func TestTransition(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	earlier := at.Add(-time.Hour)

	tests := []struct {
		name        string
		from        Notification
		event       Event
		wantStatus  Status
		wantChanged bool
		wantReadAt  bool
		wantArchAt  bool
		wantErr     error
	}{
		{name: "read sent", from: Notification{Status: StatusSent}, event: EventRead, wantStatus: StatusRead, wantChanged: true, wantReadAt: true},
		{name: "read read is a no-op", from: Notification{Status: StatusRead, ReadAt: &earlier}, event: EventRead, wantStatus: StatusRead},
		{name: "archive sent", from: Notification{Status: StatusSent}, event: EventArchive, wantStatus: StatusArchived, wantChanged: true, wantArchAt: true},
		{name: "archive read", from: Notification{Status: StatusRead, ReadAt: &earlier}, event: EventArchive, wantStatus: StatusArchived, wantChanged: true, wantArchAt: true},
		{name: "archive archived is a no-op", from: Notification{Status: StatusArchived, ArchivedAt: &earlier}, event: EventArchive, wantStatus: StatusArchived},
		{name: "read archived sets read time only", from: Notification{Status: StatusArchived, ArchivedAt: &earlier}, event: EventRead, wantStatus: StatusArchived, wantChanged: true, wantReadAt: true},
		{name: "read pending rejected", from: Notification{Status: StatusPending}, event: EventRead, wantErr: ErrInvalidTransition},
		{name: "archive failed rejected", from: Notification{Status: StatusFailed}, event: EventArchive, wantErr: ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			upd, changed, err := Transition(tt.from, tt.event, at)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.False(t, CanTransition(tt.from.Status, tt.event))
				return
			}
			require.NoError(t, err)
			assert.True(t, CanTransition(tt.from.Status, tt.event))
			assert.Equal(t, tt.wantStatus, upd.Status)
			assert.Equal(t, tt.wantChanged, changed)
			assert.Equal(t, tt.wantReadAt, upd.ReadAt != nil)
			assert.Equal(t, tt.wantArchAt, upd.ArchivedAt != nil)
		})
	}
}

func TestTransition_KeepsStoredTimestamps(t *testing.T) {
	t.Parallel()

	stored := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	n := Notification{Status: StatusArchived, ReadAt: &stored, ArchivedAt: &stored}

	for _, ev := range []Event{EventRead, EventArchive} {
		upd, changed, err := Transition(n, ev, stored.Add(time.Hour))
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Nil(t, upd.ReadAt)
		assert.Nil(t, upd.ArchivedAt)
	}

	_, _, err := Transition(Notification{Status: StatusExpired}, EventRead, stored)
	require.ErrorIs(t, err, ErrInvalidTransition)
	assert.True(t, statemachine.IsNoTransitionAvailableError(err))
}

func TestStatusUpdateApply(t *testing.T) {
	t.Parallel()

	first := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	second := first.Add(time.Minute)

	t.Run("first read time wins", func(t *testing.T) {
		n := Notification{Status: StatusSent}
		StatusUpdate{Status: StatusRead, ReadAt: &first}.apply(&n)
		StatusUpdate{Status: StatusRead, ReadAt: &second}.apply(&n)
		require.NotNil(t, n.ReadAt)
		assert.Equal(t, first, *n.ReadAt)
	})

	t.Run("archived is never downgraded", func(t *testing.T) {
		n := Notification{Status: StatusSent}
		StatusUpdate{Status: StatusArchived, ArchivedAt: &first}.apply(&n)
		StatusUpdate{Status: StatusRead, ReadAt: &second}.apply(&n)
		assert.Equal(t, StatusArchived, n.Status)
		assert.Equal(t, second, *n.ReadAt)
		assert.Equal(t, first, *n.ArchivedAt)
	})
}
