package statemachine_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/subreminder/pkg/statemachine"
)

type (
	docState string
	docEvent string
)

const (
	draft     docState = "draft"
	inReview  docState = "in_review"
	published docState = "published"
	rejected  docState = "rejected"

	submit  docEvent = "submit"
	approve docEvent = "approve"
	reject  docEvent = "reject"
)

func TestMachine(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("fires defined transitions", func(t *testing.T) {
		t.Parallel()
		m := statemachine.MustNew(
			statemachine.WithTransition(draft, inReview, submit),
			statemachine.WithTransition(inReview, published, approve),
		)

		next, err := m.Fire(ctx, draft, submit, nil)
		require.NoError(t, err)
		assert.Equal(t, inReview, next)

		next, err = m.Fire(ctx, next, approve, nil)
		require.NoError(t, err)
		assert.Equal(t, published, next)
	})

	t.Run("undefined transition keeps state", func(t *testing.T) {
		t.Parallel()
		m := statemachine.MustNew(statemachine.WithTransition(draft, inReview, submit))

		next, err := m.Fire(ctx, draft, approve, nil)
		require.Error(t, err)
		assert.True(t, statemachine.IsNoTransitionAvailableError(err))
		assert.Equal(t, draft, next)
		assert.False(t, m.CanFire(ctx, draft, approve, nil))
	})

	t.Run("first passing guard wins", func(t *testing.T) {
		t.Parallel()
		isLong := func(_ context.Context, _ docState, _ docEvent, data any) bool {
			return data.(int) > 10
		}
		m := statemachine.MustNew(
			statemachine.WithGuardedTransition(inReview, rejected, approve, isLong),
			statemachine.WithTransition(inReview, published, approve),
		)

		next, err := m.Fire(ctx, inReview, approve, 20)
		require.NoError(t, err)
		assert.Equal(t, rejected, next)

		next, err = m.Fire(ctx, inReview, approve, 5)
		require.NoError(t, err)
		assert.Equal(t, published, next)
	})

	t.Run("guards reject", func(t *testing.T) {
		t.Parallel()
		never := func(context.Context, docState, docEvent, any) bool { return false }
		m := statemachine.MustNew(statemachine.WithGuardedTransition(draft, inReview, submit, never))

		_, err := m.Fire(ctx, draft, submit, nil)
		assert.True(t, statemachine.IsTransitionRejectedError(err))
	})

	t.Run("action error aborts", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("boom")
		var called []docState
		m := statemachine.MustNew(statemachine.WithFullTransition(statemachine.Transition[docState, docEvent]{
			From:  inReview,
			To:    rejected,
			Event: reject,
			Actions: []statemachine.Action[docState, docEvent]{
				func(_ context.Context, from, to docState, _ docEvent, _ any) error {
					called = append(called, from, to)
					return boom
				},
			},
		}))

		next, err := m.Fire(ctx, inReview, reject, nil)
		require.ErrorIs(t, err, boom)
		assert.Equal(t, inReview, next)
		assert.Equal(t, []docState{inReview, rejected}, called)
		assert.True(t, m.CanFire(ctx, inReview, reject, nil))
	})

	t.Run("terminal states", func(t *testing.T) {
		t.Parallel()
		m := statemachine.MustNew(
			statemachine.WithTransition(draft, published, approve),
			statemachine.WithTerminal[docState, docEvent](published),
		)
		assert.True(t, m.IsTerminal(published))
		assert.False(t, m.IsTerminal(draft))
		assert.Equal(t, []docEvent{approve}, m.Events(draft))

		_, err := statemachine.New(
			statemachine.WithTerminal[docState, docEvent](published),
			statemachine.WithTransition(published, draft, submit),
		)
		require.Error(t, err)

		_, err = statemachine.New(statemachine.WithTransition[docState, docEvent]("", draft, submit))
		assert.ErrorIs(t, err, statemachine.ErrInvalidTransition)
	})
}
