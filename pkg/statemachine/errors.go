package statemachine

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTransition = errors.New("invalid transition: from, to and event are required")
	ErrInvalidEvent      = errors.New("invalid event: state and event are required")
)

// ErrNoTransitionAvailable means no transition is registered for the pair.
type ErrNoTransitionAvailable struct {
	StateName string
	EventName string
}

func (e *ErrNoTransitionAvailable) Error() string {
	return fmt.Sprintf("no transition from state %q on event %q", e.StateName, e.EventName)
}

func NewErrNoTransitionAvailable(state, event string) *ErrNoTransitionAvailable {
	return &ErrNoTransitionAvailable{StateName: state, EventName: event}
}

// ErrTransitionRejected means every candidate transition failed a guard.
type ErrTransitionRejected struct {
	StateName string
	EventName string
}

func (e *ErrTransitionRejected) Error() string {
	return fmt.Sprintf("guards rejected every transition from state %q on event %q", e.StateName, e.EventName)
}

func NewErrTransitionRejected(state, event string) *ErrTransitionRejected {
	return &ErrTransitionRejected{StateName: state, EventName: event}
}

func IsNoTransitionAvailableError(err error) bool {
	var e *ErrNoTransitionAvailable
	return errors.As(err, &e)
}

func IsTransitionRejectedError(err error) bool {
	var e *ErrTransitionRejected
	return errors.As(err, &e)
}
