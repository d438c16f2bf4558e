package queue

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStorage implements every repository interface in process.
// Expired locks are reclaimed lazily on ClaimTask.
type MemoryStorage struct {
	mu     sync.Mutex
	tasks  map[uuid.UUID]*Task
	dlq    map[uuid.UUID]*TasksDlq
	unique map[string]uuid.UUID
	now    func() time.Time
}

type MemoryStorageOption func(*MemoryStorage)

// WithMemoryClock sets the time source used to decide which tasks are due.
func WithMemoryClock(now func() time.Time) MemoryStorageOption {
	return func(ms *MemoryStorage) {
		if now != nil {
			ms.now = now
		}
	}
}

func NewMemoryStorage(opts ...MemoryStorageOption) *MemoryStorage {
	ms := &MemoryStorage{
		tasks:  make(map[uuid.UUID]*Task),
		dlq:    make(map[uuid.UUID]*TasksDlq),
		unique: make(map[string]uuid.UUID),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(ms)
	}
	return ms
}

func (ms *MemoryStorage) CreateTask(_ context.Context, task *Task) error {
	if task == nil {
		return errors.New("task cannot be nil")
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, exists := ms.tasks[task.ID]; exists {
		return fmt.Errorf("task with ID %s already exists", task.ID)
	}
	if task.UniqueKey != nil {
		if id, ok := ms.unique[*task.UniqueKey]; ok {
			if t, ok := ms.tasks[id]; ok && t.Active() {
				return ErrDuplicateTask
			}
		}
		ms.unique[*task.UniqueKey] = task.ID
	}

	taskCopy := *task
	ms.tasks[task.ID] = &taskCopy
	return nil
}

func (ms *MemoryStorage) ClaimTask(_ context.Context, workerID uuid.UUID, queues []string, lockDuration time.Duration) (*Task, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := ms.now()
	var candidates []*Task
	for _, t := range ms.tasks {
		if !slices.Contains(queues, t.Queue) {
			continue
		}
		switch {
		case t.Status == TaskStatusPending && !t.ScheduledAt.After(now):
		case t.Status == TaskStatusProcessing && t.LockedUntil != nil && t.LockedUntil.Before(now):
		default:
			continue
		}
		candidates = append(candidates, t)
	}
	if len(candidates) == 0 {
		return nil, ErrNoTaskToClaim
	}

	slices.SortFunc(candidates, func(a, b *Task) int {
		if c := cmp.Compare(b.Priority, a.Priority); c != 0 {
			return c
		}
		return a.ScheduledAt.Compare(b.ScheduledAt)
	})

	t := candidates[0]
	lockedUntil := now.Add(lockDuration)
	t.Status = TaskStatusProcessing
	t.LockedUntil = &lockedUntil
	t.LockedBy = &workerID

	claimed := *t
	return &claimed, nil
}

func (ms *MemoryStorage) CompleteTask(_ context.Context, taskID uuid.UUID) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	t, ok := ms.tasks[taskID]
	if !ok {
		return ErrTaskNotFound
	}
	if t.Status != TaskStatusProcessing {
		return ErrTaskNotProcessing
	}

	now := ms.now()
	t.Status = TaskStatusCompleted
	t.ProcessedAt = &now
	t.LockedUntil = nil
	t.LockedBy = nil
	return nil
}

func (ms *MemoryStorage) FailTask(_ context.Context, taskID uuid.UUID, errorMsg string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	t, ok := ms.tasks[taskID]
	if !ok {
		return ErrTaskNotFound
	}
	if t.Status != TaskStatusProcessing {
		return ErrTaskNotProcessing
	}

	t.RetryCount++
	t.Error = &errorMsg
	t.LockedUntil = nil
	t.LockedBy = nil

	if t.RetryCount >= t.MaxRetries {
		t.Status = TaskStatusFailed
		return nil
	}
	t.Status = TaskStatusPending
	t.ScheduledAt = ms.now().Add(retryBackoff(t.RetryCount))
	return nil
}

func (ms *MemoryStorage) MoveToDLQ(_ context.Context, taskID uuid.UUID) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	t, ok := ms.tasks[taskID]
	if !ok {
		return ErrTaskNotFound
	}

	now := ms.now()
	entry := &TasksDlq{
		ID:         uuid.New(),
		TaskID:     t.ID,
		Queue:      t.Queue,
		TaskType:   t.TaskType,
		TaskName:   t.TaskName,
		Payload:    t.Payload,
		Priority:   t.Priority,
		RetryCount: t.RetryCount,
		FailedAt:   now,
		CreatedAt:  t.CreatedAt,
	}
	if t.Error != nil {
		entry.Error = *t.Error
	}
	ms.dlq[entry.ID] = entry

	delete(ms.tasks, taskID)
	if t.UniqueKey != nil && ms.unique[*t.UniqueKey] == taskID {
		delete(ms.unique, *t.UniqueKey)
	}
	return nil
}

func (ms *MemoryStorage) ExtendLock(_ context.Context, taskID uuid.UUID, duration time.Duration) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	t, ok := ms.tasks[taskID]
	if !ok {
		return ErrTaskNotFound
	}
	if t.Status != TaskStatusProcessing {
		return ErrTaskNotProcessing
	}
	lockedUntil := ms.now().Add(duration)
	t.LockedUntil = &lockedUntil
	return nil
}

func (ms *MemoryStorage) GetPendingTaskByName(_ context.Context, taskName string) (*Task, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	for _, t := range ms.tasks {
		if t.TaskName == taskName && t.Active() {
			found := *t
			return &found, nil
		}
	}
	return nil, ErrTaskNotFound
}

// Tasks returns copies of all stored tasks ordered by ScheduledAt.
func (ms *MemoryStorage) Tasks() []Task {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	out := make([]Task, 0, len(ms.tasks))
	for _, t := range ms.tasks {
		out = append(out, *t)
	}
	slices.SortFunc(out, func(a, b Task) int { return a.ScheduledAt.Compare(b.ScheduledAt) })
	return out
}

// DLQ returns copies of all dead-lettered tasks.
func (ms *MemoryStorage) DLQ() []TasksDlq {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	out := make([]TasksDlq, 0, len(ms.dlq))
	for _, t := range ms.dlq {
		out = append(out, *t)
	}
	return out
}
