// Package statemachine is a finite state machine built as an immutable
// transition table.
//
// A Machine holds no current state. Fire takes the state a record is in and
// returns the state it moves to, so one Machine can drive any number of
// records concurrently, each persisting its own state.
//
// Several transitions may share a (from, event) pair. Fire picks the first
// one whose guards all pass, in registration order, and runs its actions
// before returning the target state. An action error aborts the transition.
//
//	m := statemachine.MustNew(
//		statemachine.WithTransition(draft, published, publish,
//			statemachine.WithGuard(hasTitle),
//			statemachine.WithAction(stampPublishedAt),
//		),
//	)
//	next, err := m.Fire(ctx, current, publish, record)
package statemachine
