package queue_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/subreminder/pkg/queue"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTask(name string, at time.Time, priority queue.Priority) *queue.Task {
	return &queue.Task{
		ID:          uuid.New(),
		Queue:       queue.DefaultQueueName,
		TaskType:    queue.TaskTypeOneTime,
		TaskName:    name,
		Status:      queue.TaskStatusPending,
		Priority:    priority,
		MaxRetries:  2,
		ScheduledAt: at,
		CreatedAt:   at,
	}
}

func TestMemoryStorage_ClaimOrder(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	ms := queue.NewMemoryStorage(queue.WithMemoryClock(clock.Now))
	ctx := context.Background()
	worker := uuid.New()
	queues := []string{queue.DefaultQueueName}

	future := newTask("future", clock.Now().Add(time.Hour), queue.PriorityMax)
	low := newTask("low", clock.Now(), queue.PriorityLow)
	high := newTask("high", clock.Now(), queue.PriorityHigh)
	for _, task := range []*queue.Task{future, low, high} {
		require.NoError(t, ms.CreateTask(ctx, task))
	}

	got, err := ms.ClaimTask(ctx, worker, queues, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "high", got.TaskName)
	assert.Equal(t, queue.TaskStatusProcessing, got.Status)

	got, err = ms.ClaimTask(ctx, worker, queues, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "low", got.TaskName)

	_, err = ms.ClaimTask(ctx, worker, queues, time.Minute)
	assert.ErrorIs(t, err, queue.ErrNoTaskToClaim)

	clock.Advance(time.Hour)
	got, err = ms.ClaimTask(ctx, worker, queues, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "future", got.TaskName)
}

func TestMemoryStorage_ExpiredLockIsReclaimed(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	ms := queue.NewMemoryStorage(queue.WithMemoryClock(clock.Now))
	ctx := context.Background()
	queues := []string{queue.DefaultQueueName}

	require.NoError(t, ms.CreateTask(ctx, newTask("t", clock.Now(), queue.PriorityDefault)))
	_, err := ms.ClaimTask(ctx, uuid.New(), queues, time.Minute)
	require.NoError(t, err)

	_, err = ms.ClaimTask(ctx, uuid.New(), queues, time.Minute)
	assert.ErrorIs(t, err, queue.ErrNoTaskToClaim)

	clock.Advance(2 * time.Minute)
	_, err = ms.ClaimTask(ctx, uuid.New(), queues, time.Minute)
	assert.NoError(t, err)
}

func TestMemoryStorage_FailAndDLQ(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	ms := queue.NewMemoryStorage(queue.WithMemoryClock(clock.Now))
	ctx := context.Background()
	queues := []string{queue.DefaultQueueName}

	task := newTask("t", clock.Now(), queue.PriorityDefault)
	key := "unique"
	task.UniqueKey = &key
	require.NoError(t, ms.CreateTask(ctx, task))

	_, err := ms.ClaimTask(ctx, uuid.New(), queues, time.Minute)
	require.NoError(t, err)
	require.NoError(t, ms.FailTask(ctx, task.ID, "boom"))

	tasks := ms.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, queue.TaskStatusPending, tasks[0].Status)
	assert.Equal(t, clock.Now().Add(30*time.Second), tasks[0].ScheduledAt)

	clock.Advance(30 * time.Second)
	_, err = ms.ClaimTask(ctx, uuid.New(), queues, time.Minute)
	require.NoError(t, err)
	require.NoError(t, ms.FailTask(ctx, task.ID, "boom again"))
	assert.Equal(t, queue.TaskStatusFailed, ms.Tasks()[0].Status)

	require.NoError(t, ms.MoveToDLQ(ctx, task.ID))
	assert.Empty(t, ms.Tasks())
	dlq := ms.DLQ()
	require.Len(t, dlq, 1)
	assert.Equal(t, "boom again", dlq[0].Error)

	// the unique key is free again once the task leaves the active set
	again := newTask("t", clock.Now(), queue.PriorityDefault)
	again.UniqueKey = &key
	assert.NoError(t, ms.CreateTask(ctx, again))
}

func TestMemoryStorage_UniqueKeyReleasedAfterCompletion(t *testing.T) {
	t.Parallel()

	ms := queue.NewMemoryStorage()
	ctx := context.Background()
	key := "run-1@2025-01-01"

	first := newTask("t", time.Now().Add(-time.Second), queue.PriorityDefault)
	first.UniqueKey = &key
	require.NoError(t, ms.CreateTask(ctx, first))

	dup := newTask("t", time.Now(), queue.PriorityDefault)
	dup.UniqueKey = &key
	assert.ErrorIs(t, ms.CreateTask(ctx, dup), queue.ErrDuplicateTask)

	_, err := ms.ClaimTask(ctx, uuid.New(), []string{queue.DefaultQueueName}, time.Minute)
	require.NoError(t, err)
	require.NoError(t, ms.CompleteTask(ctx, first.ID))

	assert.NoError(t, ms.CreateTask(ctx, dup))
}

func TestMemoryStorage_StateErrors(t *testing.T) {
	t.Parallel()

	ms := queue.NewMemoryStorage()
	ctx := context.Background()

	assert.ErrorIs(t, ms.CompleteTask(ctx, uuid.New()), queue.ErrTaskNotFound)

	task := newTask("t", time.Now(), queue.PriorityDefault)
	require.NoError(t, ms.CreateTask(ctx, task))
	assert.ErrorIs(t, ms.CompleteTask(ctx, task.ID), queue.ErrTaskNotProcessing)
	assert.ErrorIs(t, ms.ExtendLock(ctx, task.ID, time.Minute), queue.ErrTaskNotProcessing)

	got, err := ms.GetPendingTaskByName(ctx, "t")
	require.NoError(t, err)
	assert.Equal(t, task.ID, got.ID)

	_, err = ms.GetPendingTaskByName(ctx, "missing")
	assert.ErrorIs(t, err, queue.ErrTaskNotFound)
}
