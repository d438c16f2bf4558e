// Package queue is a storage-agnostic task queue with delayed and periodic
// execution.
//
// Three components share a small set of repository interfaces:
//
//   - Enqueuer stores one-time tasks, optionally scheduled for a future
//     instant with WithScheduledAt or WithDelay.
//   - Worker claims due tasks, dispatches them to registered Handlers and
//     retries failures with a linear backoff before moving them to the dead
//     letter queue.
//   - Scheduler turns Schedule definitions into periodic task instances.
//
// MemoryStorage backs tests and single-process development setups.
// PGStorage persists tasks in PostgreSQL and claims them with
// FOR UPDATE SKIP LOCKED so any number of workers can share one table.
//
// Tasks carrying a unique key (WithUniqueKey) are deduplicated while pending
// or processing; Enqueue reports ErrDuplicateTask for the second copy.
//
//	enq, _ := queue.NewEnqueuer(storage)
//	err := enq.Enqueue(ctx, AdvanceTask{RunID: id},
//		queue.WithScheduledAt(wakeAt),
//		queue.WithUniqueKey(id.String()+"@"+wakeAt.Format(time.RFC3339)),
//	)
//
//	w, _ := queue.NewWorker(storage, queue.WithPullInterval(time.Second))
//	_ = w.RegisterHandlers(queue.NewTaskHandler(func(ctx context.Context, t AdvanceTask) error {
//		_, err := engine.Advance(ctx, t.RunID)
//		return err
//	}))
//	g.Go(w.Run(ctx))
//
// Handler names default to the payload's qualified type name, so the
// enqueued payload type and the handler's type parameter must match.
package queue
