package reminder_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/subreminder/svc/reminder"
)

func TestMemoryStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := reminder.NewMemoryStore()
	subID := uuid.New()
	now := at(20, 12, 0)

	first := reminder.Run{ID: uuid.New(), SubscriptionID: subID, RenewalDate: renewal, Status: reminder.RunPending, CreatedAt: now}
	require.NoError(t, store.Create(ctx, first))

	t.Run("one active run per subscription", func(t *testing.T) {
		dup := first
		dup.ID = uuid.New()
		assert.ErrorIs(t, store.Create(ctx, dup), reminder.ErrActiveRunExists)
	})

	t.Run("ledger is insert once", func(t *testing.T) {
		label := reminder.StepLabel(7)
		inserted, err := store.RecordDelivery(ctx, first.ID, label, now)
		require.NoError(t, err)
		assert.True(t, inserted)

		inserted, err = store.RecordDelivery(ctx, first.ID, label, now.Add(time.Hour))
		require.NoError(t, err)
		assert.False(t, inserted)

		run, err := store.Get(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, now, run.Ledger[label])
	})

	t.Run("save keeps the ledger", func(t *testing.T) {
		run, err := store.Get(ctx, first.ID)
		require.NoError(t, err)
		run.Ledger = nil
		run.Status = reminder.RunDone
		run.DoneReason = reminder.DoneCompleted
		require.NoError(t, store.Save(ctx, run))

		got, err := store.Get(ctx, first.ID)
		require.NoError(t, err)
		assert.True(t, got.Delivered(reminder.StepLabel(7)))

		active, err := store.ListActive(ctx)
		require.NoError(t, err)
		assert.Empty(t, active)
	})

	t.Run("new run after the previous one is done", func(t *testing.T) {
		second := first
		second.ID = uuid.New()
		second.Ledger = nil
		require.NoError(t, store.Create(ctx, second))

		latest, err := store.Latest(ctx, subID)
		require.NoError(t, err)
		assert.Equal(t, second.ID, latest.ID)
		assert.Empty(t, latest.Ledger)
	})

	t.Run("returned runs are copies", func(t *testing.T) {
		run, err := store.Get(ctx, first.ID)
		require.NoError(t, err)
		run.Ledger["tampered"] = now

		again, err := store.Get(ctx, first.ID)
		require.NoError(t, err)
		assert.False(t, again.Delivered("tampered"))
	})

	t.Run("unknown run", func(t *testing.T) {
		_, err := store.Get(ctx, uuid.New())
		assert.ErrorIs(t, err, reminder.ErrRunNotFound)
		_, err = store.RecordDelivery(ctx, uuid.New(), "x", now)
		assert.ErrorIs(t, err, reminder.ErrRunNotFound)
		_, err = store.Latest(ctx, uuid.New())
		assert.ErrorIs(t, err, reminder.ErrRunNotFound)
	})
}
