package statemachine

import (
	"context"
	"fmt"
)

// State is a named state.
type State interface {
	Name() string
}

// Event is a named trigger.
type Event interface {
	Name() string
}

// Guard decides at fire time whether a transition applies.
type Guard func(ctx context.Context, from State, event Event, data any) bool

// Action runs while a transition fires. An error aborts it.
type Action func(ctx context.Context, from, to State, event Event, data any) error

type Transition struct {
	From    State
	To      State
	Event   Event
	Guards  []Guard
	Actions []Action
}

// Machine maps (state, event) pairs to candidate transitions. It is safe
// for concurrent use once built.
type Machine struct {
	transitions map[string]map[string][]Transition
}

type Option func(*Machine) error

type TransitionOption func(*Transition)

// New builds a Machine from opts.
func New(opts ...Option) (*Machine, error) {
	m := &Machine{transitions: make(map[string]map[string][]Transition)}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// MustNew is New that panics on a bad definition.
func MustNew(opts ...Option) *Machine {
	m, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to build state machine: %v", err))
	}
	return m
}

// WithTransition registers a transition from -> to on event.
func WithTransition(from, to State, event Event, opts ...TransitionOption) Option {
	return func(m *Machine) error {
		if from == nil || to == nil || event == nil {
			return ErrInvalidTransition
		}
		t := Transition{From: from, To: to, Event: event}
		for _, opt := range opts {
			opt(&t)
		}
		byEvent, ok := m.transitions[from.Name()]
		if !ok {
			byEvent = make(map[string][]Transition)
			m.transitions[from.Name()] = byEvent
		}
		byEvent[event.Name()] = append(byEvent[event.Name()], t)
		return nil
	}
}

func WithGuard(g Guard) TransitionOption {
	return func(t *Transition) {
		if g != nil {
			t.Guards = append(t.Guards, g)
		}
	}
}

func WithAction(a Action) TransitionOption {
	return func(t *Transition) {
		if a != nil {
			t.Actions = append(t.Actions, a)
		}
	}
}

// Fire applies event to a record in state from and returns the new state.
func (m *Machine) Fire(ctx context.Context, from State, event Event, data any) (State, error) {
	if from == nil || event == nil {
		return nil, ErrInvalidEvent
	}

	t, err := m.match(ctx, from, event, data)
	if err != nil {
		return nil, err
	}
	for _, action := range t.Actions {
		if err := action(ctx, from, t.To, event, data); err != nil {
			return nil, fmt.Errorf("action failed: %w", err)
		}
	}
	return t.To, nil
}

// CanFire reports whether Fire would find a transition. Actions do not run.
func (m *Machine) CanFire(ctx context.Context, from State, event Event, data any) bool {
	if from == nil || event == nil {
		return false
	}
	_, err := m.match(ctx, from, event, data)
	return err == nil
}

func (m *Machine) match(ctx context.Context, from State, event Event, data any) (*Transition, error) {
	candidates := m.transitions[from.Name()][event.Name()]
	if len(candidates) == 0 {
		return nil, NewErrNoTransitionAvailable(from.Name(), event.Name())
	}

	for i := range candidates {
		if passes(ctx, &candidates[i], data) {
			return &candidates[i], nil
		}
	}
	return nil, NewErrTransitionRejected(from.Name(), event.Name())
}

func passes(ctx context.Context, t *Transition, data any) bool {
	for _, guard := range t.Guards {
		if !guard(ctx, t.From, t.Event, data) {
			return false
		}
	}
	return true
}

// StringState is a State backed by a string.
type StringState string

func (s StringState) Name() string { return string(s) }

// StringEvent is an Event backed by a string.
type StringEvent string

func (e StringEvent) Name() string { return string(e) }
