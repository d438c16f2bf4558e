package reminder

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dmitrymomot/subreminder/pkg/logger"
	"github.com/dmitrymomot/subreminder/pkg/queue"
)

// ReconcileReport counts what one Reconcile pass repaired.
type ReconcileReport struct {
	Created  int `json:"created"`
	Requeued int `json:"requeued"`
}

// Reconcile repairs runs that the regular flow would not resume on its own:
// it creates runs for active subscriptions that have none for their current
// renewal date, and re-enqueues wake-ups that are overdue. Wake-ups still
// waiting in the queue share the key and are not duplicated.
func (e *Engine) Reconcile(ctx context.Context) (ReconcileReport, error) {
	var (
		report ReconcileReport
		errs   []error
	)

	ids, err := e.subs.ActiveIDs(ctx)
	if err != nil {
		return report, err
	}
	for _, id := range ids {
		latest, err := e.runs.Latest(ctx, id)
		if err == nil && !latest.Done() {
			continue
		}
		if err != nil && !errors.Is(err, ErrRunNotFound) {
			errs = append(errs, err)
			continue
		}

		runID, err := e.ScheduleRun(ctx, id)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if runID != latest.ID {
			report.Created++
		}
	}

	runs, err := e.runs.ListActive(ctx)
	if err != nil {
		return report, errors.Join(append(errs, err)...)
	}
	now := e.now()
	stale := now.Add(-e.reconcileInterval())
	for _, run := range runs {
		var (
			queued bool
			err    error
		)
		switch {
		case run.Status == RunSuspended && run.WakeAt != nil && !run.WakeAt.After(now):
			queued, err = e.enqueue(ctx, run.ID, wakeKey(run.ID, *run.WakeAt), queue.WithScheduledAt(*run.WakeAt))
		case run.Status == RunPending && run.UpdatedAt.Before(stale):
			queued, err = e.enqueue(ctx, run.ID, nudgeKey(run.ID), queue.WithPriority(queue.PriorityHigh))
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if queued {
			report.Requeued++
			e.log.DebugContext(ctx, "reminder run requeued", logger.RunID(run.ID))
		}
	}

	e.log.InfoContext(ctx, "reminder runs reconciled",
		logger.Event("reconcile"),
		slog.Int("created", report.Created),
		slog.Int("requeued", report.Requeued),
	)
	return report, errors.Join(errs...)
}

func (e *Engine) reconcileInterval() time.Duration {
	if e.cfg.ReconcileInterval <= 0 {
		return 15 * time.Minute
	}
	return e.cfg.ReconcileInterval
}
