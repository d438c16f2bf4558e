package statemachine

// WithTransition adds an unguarded edge.
func WithTransition[S, E ~string](from, to S, event E) Option[S, E] {
	return WithFullTransition(Transition[S, E]{From: from, To: to, Event: event})
}

// WithGuardedTransition adds an edge taken only when every guard passes.
func WithGuardedTransition[S, E ~string](from, to S, event E, guards ...Guard[S, E]) Option[S, E] {
	return WithFullTransition(Transition[S, E]{From: from, To: to, Event: event, Guards: guards})
}

// WithFullTransition adds an edge with guards and actions.
func WithFullTransition[S, E ~string](t Transition[S, E]) Option[S, E] {
	return func(m *Machine[S, E]) error {
		if t.From == "" || t.To == "" || t.Event == "" {
			return ErrInvalidTransition
		}
		if m.terminal[t.From] {
			return NewErrTerminalState(string(t.From))
		}
		if m.transitions[t.From] == nil {
			m.transitions[t.From] = make(map[E][]Transition[S, E])
		}
		m.transitions[t.From][t.Event] = append(m.transitions[t.From][t.Event], t)
		return nil
	}
}

// WithTerminal marks states that have no outgoing edges.
// Declaring an edge out of a terminal state fails at construction.
func WithTerminal[S, E ~string](states ...S) Option[S, E] {
	return func(m *Machine[S, E]) error {
		for _, s := range states {
			if len(m.transitions[s]) > 0 {
				return NewErrTerminalState(string(s))
			}
			m.terminal[s] = true
		}
		return nil
	}
}
