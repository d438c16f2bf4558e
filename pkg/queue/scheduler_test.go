package queue_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/subreminder/pkg/logger"
	"github.com/dmitrymomot/subreminder/pkg/queue"
)

func TestScheduler_CheckTasks(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}
	storage := queue.NewMemoryStorage(queue.WithMemoryClock(clock.Now))
	s, err := queue.NewScheduler(storage,
		queue.WithSchedulerClock(clock.Now),
		queue.WithSchedulerLogger(logger.Nop()),
	)
	require.NoError(t, err)

	require.NoError(t, s.AddTask("reconcile", queue.EveryMinutes(15)))
	assert.ErrorIs(t, s.AddTask("reconcile", queue.EveryMinutes(1)), queue.ErrTaskAlreadyRegistered)
	assert.Equal(t, []string{"reconcile"}, s.ListTasks())

	ctx := context.Background()
	s.CheckTasks(ctx)

	tasks := storage.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, queue.TaskTypePeriodic, tasks[0].TaskType)
	assert.Equal(t, clock.Now().Add(15*time.Minute), tasks[0].ScheduledAt)

	// nothing new while the instance is still pending
	clock.Advance(20 * time.Minute)
	s.CheckTasks(ctx)
	assert.Len(t, storage.Tasks(), 1)
}

func TestScheduler_StartWithoutTasks(t *testing.T) {
	t.Parallel()

	s, err := queue.NewScheduler(queue.NewMemoryStorage(), queue.WithSchedulerLogger(logger.Nop()))
	require.NoError(t, err)
	assert.ErrorIs(t, s.Start(context.Background()), queue.ErrSchedulerNotConfigured)

	_, err = queue.NewScheduler(nil)
	assert.ErrorIs(t, err, queue.ErrRepositoryNil)
}

func TestSchedules(t *testing.T) {
	t.Parallel()

	base := time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)

	assert.Equal(t, base.Add(5*time.Minute), queue.EveryMinutes(5).Next(base))
	assert.Equal(t, base.Add(time.Minute), queue.EveryInterval(0).Next(base))

	daily := queue.DailyAt(9, 0)
	assert.Equal(t, time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC), daily.Next(base))
	assert.Equal(t, time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC), daily.Next(base.Add(-2*time.Hour)))
	assert.Equal(t, "daily at 09:00", daily.String())
}
