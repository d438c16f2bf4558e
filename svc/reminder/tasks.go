package reminder

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/dmitrymomot/subreminder/pkg/logger"
	"github.com/dmitrymomot/subreminder/pkg/queue"
)

// ReconcileTaskName is the periodic task that repairs runs.
const ReconcileTaskName = "reminder.reconcile"

// AdvanceTask is the queue payload that drives one Advance call.
type AdvanceTask struct {
	RunID uuid.UUID `json:"run_id"`
}

// Handlers returns the queue handlers the worker must register.
func (e *Engine) Handlers() []queue.Handler {
	return []queue.Handler{
		queue.NewTaskHandler(e.handleAdvance),
		queue.NewPeriodicTaskHandler(ReconcileTaskName, e.handleReconcile),
	}
}

// RegisterSchedule adds the reconcile task to the scheduler.
func (e *Engine) RegisterSchedule(s *queue.Scheduler) error {
	return s.AddTask(ReconcileTaskName, queue.EveryInterval(e.reconcileInterval()),
		queue.WithTaskQueue(e.cfg.Queue),
		queue.WithTaskPriority(queue.PriorityLow),
	)
}

func (e *Engine) handleAdvance(ctx context.Context, task AdvanceTask) error {
	_, err := e.Advance(ctx, task.RunID)
	if errors.Is(err, ErrRunNotFound) {
		e.log.WarnContext(ctx, "dropping task for unknown run", logger.RunID(task.RunID))
		return nil
	}
	return err
}

func (e *Engine) handleReconcile(ctx context.Context) error {
	_, err := e.Reconcile(ctx)
	return err
}

// Trigger makes sure the subscription has a run and advances it right away.
func (e *Engine) Trigger(ctx context.Context, subscriptionID uuid.UUID) (uuid.UUID, Outcome, error) {
	runID, err := e.ScheduleRun(ctx, subscriptionID)
	if err != nil {
		return uuid.Nil, Outcome{}, err
	}
	out, err := e.Advance(ctx, runID)
	return runID, out, err
}
