package statemachine_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modernmen/notifier/pkg/statemachine"
)

const (
	queued    = statemachine.StringState("queued")
	delivered = statemachine.StringState("delivered")
	bounced   = statemachine.StringState("bounced")

	deliver = statemachine.StringEvent("deliver")
	bounce  = statemachine.StringEvent("bounce")
)

func TestMachine_Fire(t *testing.T) {
	t.Parallel()

	m := statemachine.MustNew(
		statemachine.WithTransition(queued, delivered, deliver),
		statemachine.WithTransition(queued, bounced, bounce),
	)
	ctx := context.Background()

	to, err := m.Fire(ctx, queued, deliver, nil)
	require.NoError(t, err)
	assert.Equal(t, delivered, to)

	assert.True(t, m.CanFire(ctx, queued, bounce, nil))
	assert.False(t, m.CanFire(ctx, delivered, bounce, nil))

	_, err = m.Fire(ctx, delivered, bounce, nil)
	require.Error(t, err)
	assert.True(t, statemachine.IsNoTransitionAvailableError(err))
}

func TestMachine_GuardsPickFirstPassingTransition(t *testing.T) {
	t.Parallel()

	type attempt struct{ tries int }
	exhausted := func(_ context.Context, _ statemachine.State, _ statemachine.Event, data any) bool {
		return data.(*attempt).tries >= 3
	}

	m := statemachine.MustNew(
		statemachine.WithTransition(queued, bounced, bounce, statemachine.WithGuard(exhausted)),
		statemachine.WithTransition(queued, queued, bounce),
	)
	ctx := context.Background()

	to, err := m.Fire(ctx, queued, bounce, &attempt{tries: 1})
	require.NoError(t, err)
	assert.Equal(t, queued, to)

	to, err = m.Fire(ctx, queued, bounce, &attempt{tries: 3})
	require.NoError(t, err)
	assert.Equal(t, bounced, to)
}

func TestMachine_GuardRejection(t *testing.T) {
	t.Parallel()

	never := func(context.Context, statemachine.State, statemachine.Event, any) bool { return false }
	m := statemachine.MustNew(statemachine.WithTransition(queued, delivered, deliver, statemachine.WithGuard(never)))

	_, err := m.Fire(context.Background(), queued, deliver, nil)
	require.Error(t, err)
	assert.True(t, statemachine.IsTransitionRejectedError(err))
	assert.False(t, m.CanFire(context.Background(), queued, deliver, nil))
}

func TestMachine_Actions(t *testing.T) {
	t.Parallel()

	var log []string
	record := func(_ context.Context, from, to statemachine.State, ev statemachine.Event, _ any) error {
		log = append(log, from.Name()+">"+ev.Name()+">"+to.Name())
		return nil
	}
	boom := errors.New("boom")
	fail := func(context.Context, statemachine.State, statemachine.State, statemachine.Event, any) error {
		return boom
	}

	m := statemachine.MustNew(
		statemachine.WithTransition(queued, delivered, deliver, statemachine.WithAction(record)),
		statemachine.WithTransition(queued, bounced, bounce, statemachine.WithAction(fail)),
	)
	ctx := context.Background()

	_, err := m.Fire(ctx, queued, deliver, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"queued>deliver>delivered"}, log)

	to, err := m.Fire(ctx, queued, bounce, nil)
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, to)

	assert.True(t, m.CanFire(ctx, queued, bounce, nil), "CanFire does not run actions")
}

func TestMachine_InvalidDefinitions(t *testing.T) {
	t.Parallel()

	_, err := statemachine.New(statemachine.WithTransition(nil, delivered, deliver))
	assert.ErrorIs(t, err, statemachine.ErrInvalidTransition)

	assert.Panics(t, func() {
		statemachine.MustNew(statemachine.WithTransition(queued, nil, deliver))
	})

	m := statemachine.MustNew()
	_, err = m.Fire(context.Background(), nil, deliver, nil)
	assert.ErrorIs(t, err, statemachine.ErrInvalidEvent)
	assert.False(t, m.CanFire(context.Background(), queued, nil, nil))
}

func TestMachine_ConcurrentFire(t *testing.T) {
	t.Parallel()

	m := statemachine.MustNew(statemachine.WithTransition(queued, delivered, deliver))

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			to, err := m.Fire(context.Background(), queued, deliver, nil)
			assert.NoError(t, err)
			assert.Equal(t, delivered, to)
		}()
	}
	wg.Wait()
}
