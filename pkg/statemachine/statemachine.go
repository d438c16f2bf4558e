package statemachine

import (
	"context"
	"fmt"
)

// Guard decides whether a transition is allowed for the given payload.
type Guard[S, E ~string] func(ctx context.Context, from S, event E, data any) bool

// Action runs a side effect while transitioning. A non-nil error aborts the transition.
type Action[S, E ~string] func(ctx context.Context, from, to S, event E, data any) error

// Transition is one edge of the machine.
type Transition[S, E ~string] struct {
	From    S
	To      S
	Event   E
	Guards  []Guard[S, E]
	Actions []Action[S, E]
}

// Machine is an immutable transition table.
type Machine[S, E ~string] struct {
	transitions map[S]map[E][]Transition[S, E]
	terminal    map[S]bool
}

// Option configures a Machine.
type Option[S, E ~string] func(*Machine[S, E]) error

// New builds a Machine from options.
func New[S, E ~string](opts ...Option[S, E]) (*Machine[S, E], error) {
	m := &Machine[S, E]{
		transitions: make(map[S]map[E][]Transition[S, E]),
		terminal:    make(map[S]bool),
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// MustNew is New that panics on a malformed table.
func MustNew[S, E ~string](opts ...Option[S, E]) *Machine[S, E] {
	m, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("statemachine: %v", err))
	}
	return m
}

// Fire returns the state reached from current by event.
func (m *Machine[S, E]) Fire(ctx context.Context, current S, event E, data any) (S, error) {
	t, err := m.find(ctx, current, event, data)
	if err != nil {
		return current, err
	}
	for _, action := range t.Actions {
		if err := action(ctx, current, t.To, event, data); err != nil {
			return current, fmt.Errorf("action failed: %w", err)
		}
	}
	return t.To, nil
}

// CanFire reports whether Fire would succeed, without running actions.
func (m *Machine[S, E]) CanFire(ctx context.Context, current S, event E, data any) bool {
	_, err := m.find(ctx, current, event, data)
	return err == nil
}

// IsTerminal reports whether s was declared terminal with WithTerminal.
func (m *Machine[S, E]) IsTerminal(s S) bool {
	return m.terminal[s]
}

// Events lists the events defined for state s.
func (m *Machine[S, E]) Events(s S) []E {
	events := make([]E, 0, len(m.transitions[s]))
	for e := range m.transitions[s] {
		events = append(events, e)
	}
	return events
}

func (m *Machine[S, E]) find(ctx context.Context, current S, event E, data any) (*Transition[S, E], error) {
	candidates := m.transitions[current][event]
	if len(candidates) == 0 {
		return nil, NewErrNoTransitionAvailable(string(current), string(event))
	}
	for i := range candidates {
		if guardsPass(ctx, candidates[i], current, event, data) {
			return &candidates[i], nil
		}
	}
	return nil, NewErrTransitionRejected(string(current), string(event))
}

func guardsPass[S, E ~string](ctx context.Context, t Transition[S, E], from S, event E, data any) bool {
	for _, g := range t.Guards {
		if g != nil && !g(ctx, from, event, data) {
			return false
		}
	}
	return true
}
