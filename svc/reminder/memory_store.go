package reminder

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// MemoryStore is an in-process RunStore. It enforces one active run per
// subscription the same way the partial unique index does in Postgres.
type MemoryStore struct {
	mu     sync.Mutex
	runs   map[uuid.UUID]Run
	order  []uuid.UUID
	active map[uuid.UUID]uuid.UUID // subscription id -> active run id
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		runs:   make(map[uuid.UUID]Run),
		active: make(map[uuid.UUID]uuid.UUID),
	}
}

func (m *MemoryStore) Create(_ context.Context, run Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.active[run.SubscriptionID]; exists && !run.Done() {
		return ErrActiveRunExists
	}
	m.runs[run.ID] = run.clone()
	m.order = append(m.order, run.ID)
	if !run.Done() {
		m.active[run.SubscriptionID] = run.ID
	}
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id uuid.UUID) (Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	run, ok := m.runs[id]
	if !ok {
		return Run{}, ErrRunNotFound
	}
	return run.clone(), nil
}

func (m *MemoryStore) Latest(_ context.Context, subscriptionID uuid.UUID) (Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := len(m.order) - 1; i >= 0; i-- {
		if run := m.runs[m.order[i]]; run.SubscriptionID == subscriptionID {
			return run.clone(), nil
		}
	}
	return Run{}, ErrRunNotFound
}

func (m *MemoryStore) ListActive(_ context.Context) ([]Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := lo.Filter(m.order, func(id uuid.UUID, _ int) bool { return !m.runs[id].Done() })
	return lo.Map(ids, func(id uuid.UUID, _ int) Run { return m.runs[id].clone() }), nil
}

func (m *MemoryStore) Save(_ context.Context, run Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.runs[run.ID]
	if !ok {
		return ErrRunNotFound
	}

	next := run.clone()
	next.Ledger = current.Ledger
	m.runs[run.ID] = next
	if next.Done() && m.active[next.SubscriptionID] == next.ID {
		delete(m.active, next.SubscriptionID)
	}
	return nil
}

func (m *MemoryStore) RecordDelivery(_ context.Context, runID uuid.UUID, label string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	run, ok := m.runs[runID]
	if !ok {
		return false, ErrRunNotFound
	}
	if _, exists := run.Ledger[label]; exists {
		return false, nil
	}
	if run.Ledger == nil {
		run.Ledger = make(map[string]time.Time)
	}
	run.Ledger[label] = at
	m.runs[runID] = run
	return true, nil
}
