package queue_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/subreminder/pkg/logger"
	"github.com/dmitrymomot/subreminder/pkg/queue"
)

func newWorkerFixture(t *testing.T) (*queue.MemoryStorage, *queue.Enqueuer, *queue.Worker) {
	t.Helper()

	storage := queue.NewMemoryStorage()
	enq, err := queue.NewEnqueuer(storage)
	require.NoError(t, err)
	w, err := queue.NewWorker(storage,
		queue.WithWorkerLogger(logger.Nop()),
		queue.WithPullInterval(10*time.Millisecond),
	)
	require.NoError(t, err)
	return storage, enq, w
}

func TestWorker_ProcessNext(t *testing.T) {
	t.Parallel()

	t.Run("dispatches payload to typed handler", func(t *testing.T) {
		t.Parallel()

		storage, enq, w := newWorkerFixture(t)
		var got samplePayload
		require.NoError(t, w.RegisterHandler(queue.NewTaskHandler(func(_ context.Context, p samplePayload) error {
			got = p
			return nil
		})))

		require.NoError(t, enq.Enqueue(context.Background(), samplePayload{ID: "42", Count: 1}))

		processed, err := w.ProcessNext(context.Background())
		require.NoError(t, err)
		assert.True(t, processed)
		assert.Equal(t, "42", got.ID)
		assert.Equal(t, queue.TaskStatusCompleted, storage.Tasks()[0].Status)

		processed, err = w.ProcessNext(context.Background())
		require.NoError(t, err)
		assert.False(t, processed)
	})

	t.Run("failed task is retried then dead-lettered", func(t *testing.T) {
		t.Parallel()

		storage, enq, w := newWorkerFixture(t)
		require.NoError(t, w.RegisterHandler(queue.NewTaskHandler(func(context.Context, samplePayload) error {
			return errors.New("boom")
		})))

		require.NoError(t, enq.Enqueue(context.Background(), samplePayload{}, queue.WithMaxRetries(1)))

		processed, err := w.ProcessNext(context.Background())
		require.NoError(t, err)
		assert.True(t, processed)
		assert.Empty(t, storage.Tasks())
		require.Len(t, storage.DLQ(), 1)
		assert.Equal(t, "boom", storage.DLQ()[0].Error)
	})

	t.Run("missing handler goes to DLQ", func(t *testing.T) {
		t.Parallel()

		storage, enq, w := newWorkerFixture(t)
		require.NoError(t, enq.Enqueue(context.Background(), samplePayload{}, queue.WithTaskName("unknown")))

		processed, err := w.ProcessNext(context.Background())
		require.NoError(t, err)
		assert.True(t, processed)
		assert.Len(t, storage.DLQ(), 1)
	})

	t.Run("undecodable payload skips retries", func(t *testing.T) {
		t.Parallel()

		storage, enq, w := newWorkerFixture(t)
		h := queue.NewTaskHandler(func(context.Context, samplePayload) error { return nil })
		require.NoError(t, w.RegisterHandler(h))
		require.NoError(t, enq.Enqueue(context.Background(), "not an object",
			queue.WithTaskName(h.Name()), queue.WithMaxRetries(3)))

		processed, err := w.ProcessNext(context.Background())
		require.NoError(t, err)
		assert.True(t, processed)
		assert.Empty(t, storage.Tasks())
		require.Len(t, storage.DLQ(), 1)
		assert.Contains(t, storage.DLQ()[0].Error, queue.ErrInvalidPayload.Error())
	})

	t.Run("panic is treated as failure", func(t *testing.T) {
		t.Parallel()

		storage, enq, w := newWorkerFixture(t)
		require.NoError(t, w.RegisterHandler(queue.NewTaskHandler(func(context.Context, samplePayload) error {
			panic("kaboom")
		})))
		require.NoError(t, enq.Enqueue(context.Background(), samplePayload{}, queue.WithMaxRetries(3)))

		_, err := w.ProcessNext(context.Background())
		require.Error(t, err)

		tasks := storage.Tasks()
		require.Len(t, tasks, 1)
		assert.Equal(t, int8(1), tasks[0].RetryCount)
		assert.Equal(t, queue.TaskStatusPending, tasks[0].Status)
	})
}

func TestWorker_Lifecycle(t *testing.T) {
	t.Parallel()

	_, enq, w := newWorkerFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	assert.ErrorIs(t, w.Start(ctx), queue.ErrNoHandlers)

	var handled atomic.Int32
	require.NoError(t, w.RegisterHandler(queue.NewTaskHandler(func(context.Context, samplePayload) error {
		handled.Add(1)
		return nil
	})))
	assert.ErrorIs(t, w.RegisterHandler(queue.NewTaskHandler(func(context.Context, samplePayload) error { return nil })),
		queue.ErrTaskAlreadyRegistered)

	for range 3 {
		require.NoError(t, enq.Enqueue(ctx, samplePayload{}))
	}

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx)() }()

	require.Eventually(t, func() bool { return handled.Load() == 3 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	assert.ErrorIs(t, w.Stop(), queue.ErrWorkerNotStarted)
}
