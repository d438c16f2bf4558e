package subscription

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// MemoryStore is an in-process Store. Update and Delete hold the write lock
// for the whole callback, which makes them serializable per store.
type MemoryStore struct {
	mu   sync.RWMutex
	subs map[uuid.UUID]Subscription
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{subs: make(map[uuid.UUID]Subscription)}
}

func (m *MemoryStore) Create(_ context.Context, s Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.subs[s.ID]; exists {
		return ErrConflict
	}
	m.subs[s.ID] = s
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id uuid.UUID) (Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.subs[id]
	if !ok {
		return Subscription{}, ErrNotFound
	}
	return s, nil
}

func (m *MemoryStore) List(_ context.Context) ([]Subscription, error) {
	return m.filter(func(Subscription) bool { return true }), nil
}

func (m *MemoryStore) ListByOwner(_ context.Context, userID uuid.UUID) ([]Subscription, error) {
	return m.filter(func(s Subscription) bool { return s.UserID == userID }), nil
}

func (m *MemoryStore) ListByStatus(_ context.Context, status Status) ([]Subscription, error) {
	return m.filter(func(s Subscription) bool { return s.Status == status }), nil
}

func (m *MemoryStore) Update(_ context.Context, id uuid.UUID, fn func(*Subscription) error) (Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.subs[id]
	if !ok {
		return Subscription{}, ErrNotFound
	}

	working := current
	if err := fn(&working); err != nil {
		return Subscription{}, err
	}
	working.ID = current.ID
	m.subs[id] = working
	return working, nil
}

func (m *MemoryStore) Delete(_ context.Context, id uuid.UUID, check func(Subscription) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.subs[id]
	if !ok {
		return ErrNotFound
	}
	if check != nil {
		if err := check(current); err != nil {
			return err
		}
	}
	delete(m.subs, id)
	return nil
}

// filter returns matches newest first.
func (m *MemoryStore) filter(keep func(Subscription) bool) []Subscription {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := lo.Filter(lo.Values(m.subs), func(s Subscription, _ int) bool { return keep(s) })
	slices.SortFunc(out, func(a, b Subscription) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}
