// Package statemachine implements finite state machines for entities whose
// current state is persisted elsewhere (a database row, a document).
//
// A Machine is an immutable transition table built with options. It keeps no
// current state of its own: Fire takes the state loaded from storage and
// returns the state to store, so one Machine value is shared by every entity
// and by every goroutine.
//
//	type Status string
//	type Event string
//
//	m := statemachine.MustNew(
//		statemachine.WithTransition[Status, Event]("active", "cancelled", "cancel"),
//		statemachine.WithGuardedTransition[Status, Event]("active", "expired", "tick", isOverdue),
//	)
//	next, err := m.Fire(ctx, sub.Status, "cancel", sub)
//
// When several transitions share a source state and event, the first one
// whose guards all pass wins. Actions run in order before Fire returns; an
// action error aborts the transition.
//
// Errors distinguish an undefined transition (IsNoTransitionAvailableError)
// from one rejected by guards (IsTransitionRejectedError).
package statemachine
