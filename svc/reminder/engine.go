package reminder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/subreminder/pkg/logger"
	"github.com/dmitrymomot/subreminder/pkg/queue"
	"github.com/dmitrymomot/subreminder/svc/subscription"
)

// SubscriptionReader is the engine's view of the lifecycle manager.
type SubscriptionReader interface {
	Snapshot(ctx context.Context, id uuid.UUID) (subscription.Snapshot, error)
	ActiveIDs(ctx context.Context) ([]uuid.UUID, error)
}

// TaskEnqueuer stores queue tasks. *queue.Enqueuer satisfies it.
type TaskEnqueuer interface {
	Enqueue(ctx context.Context, payload any, opts ...queue.EnqueueOption) error
}

// Engine advances reminder runs. It never waits: suspension is a persisted
// wake time plus a queue task scheduled for it.
type Engine struct {
	runs     RunStore
	subs     SubscriptionReader
	notifier Notifier
	tasks    TaskEnqueuer
	locker   Locker
	cfg      Config
	loc      *time.Location
	log      *slog.Logger
	now      func() time.Time
}

type Option func(*Engine)

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithLocker replaces the default in-process locker.
func WithLocker(l Locker) Option {
	return func(e *Engine) {
		if l != nil {
			e.locker = l
		}
	}
}

// WithConfig applies timezone, retry delay and queue settings.
func WithConfig(cfg Config) Option {
	return func(e *Engine) {
		e.cfg = cfg
		e.loc = cfg.Location()
	}
}

// NewEngine creates an Engine. Panics if a required dependency is nil.
func NewEngine(runs RunStore, subs SubscriptionReader, notifier Notifier, tasks TaskEnqueuer, opts ...Option) *Engine {
	if runs == nil {
		panic("reminder: RunStore is required")
	}
	if subs == nil {
		panic("reminder: SubscriptionReader is required")
	}
	if notifier == nil {
		panic("reminder: Notifier is required")
	}
	if tasks == nil {
		panic("reminder: TaskEnqueuer is required")
	}

	e := &Engine{
		runs:     runs,
		subs:     subs,
		notifier: notifier,
		tasks:    tasks,
		locker:   NewMemoryLocker(),
		cfg: Config{
			RetryDelay: 15 * time.Minute,
			Queue:      queue.DefaultQueueName,
		},
		loc: time.UTC,
		log: slog.Default(),
		now: func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.cfg.RetryDelay <= 0 {
		e.cfg.RetryDelay = 15 * time.Minute
	}
	if e.cfg.Queue == "" {
		e.cfg.Queue = queue.DefaultQueueName
	}
	e.log = e.log.With(logger.Component("reminder.engine"))
	return e
}

// Run returns the stored run.
func (e *Engine) Run(ctx context.Context, runID uuid.UUID) (Run, error) {
	return e.runs.Get(ctx, runID)
}

// ScheduleRun makes sure the subscription has a run for its current renewal
// date and returns its id. An existing active run is nudged instead of
// duplicated. A finished run for the same renewal date is returned as is.
func (e *Engine) ScheduleRun(ctx context.Context, subscriptionID uuid.UUID) (uuid.UUID, error) {
	snap, err := e.subs.Snapshot(ctx, subscriptionID)
	if err != nil {
		return uuid.Nil, err
	}

	latest, err := e.runs.Latest(ctx, subscriptionID)
	switch {
	case err == nil && !latest.Done():
		return latest.ID, e.nudge(ctx, latest.ID)
	case err == nil && latest.RenewalDate.Equal(snap.RenewalDate):
		return latest.ID, nil
	case err != nil && !errors.Is(err, ErrRunNotFound):
		return uuid.Nil, err
	}

	return e.startRun(ctx, snap)
}

func (e *Engine) startRun(ctx context.Context, snap subscription.Snapshot) (uuid.UUID, error) {
	now := e.now()
	run := Run{
		ID:             uuid.New(),
		SubscriptionID: snap.ID,
		RenewalDate:    snap.RenewalDate,
		Status:         RunPending,
		Ledger:         map[string]time.Time{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := e.runs.Create(ctx, run); err != nil {
		if !errors.Is(err, ErrActiveRunExists) {
			return uuid.Nil, err
		}
		// Lost a creation race: hand back the winner.
		existing, lerr := e.runs.Latest(ctx, snap.ID)
		if lerr != nil {
			return uuid.Nil, errors.Join(err, lerr)
		}
		return existing.ID, e.nudge(ctx, existing.ID)
	}

	e.log.InfoContext(ctx, "reminder run created",
		logger.RunID(run.ID),
		logger.SubscriptionID(snap.ID),
		slog.Time("renewal_date", snap.RenewalDate),
	)
	return run.ID, e.nudge(ctx, run.ID)
}

// Advance moves the run forward as far as it can at the current time.
// It is safe to call any number of times and from concurrent callers.
func (e *Engine) Advance(ctx context.Context, runID uuid.UUID) (Outcome, error) {
	run, err := e.runs.Get(ctx, runID)
	if err != nil {
		return Outcome{}, err
	}
	if run.Done() {
		return Outcome{Done: true}, nil
	}

	release, err := e.locker.TryLock(ctx, lockKey(runID))
	if errors.Is(err, ErrLockHeld) {
		e.log.DebugContext(ctx, "run is being advanced elsewhere", logger.RunID(runID))
		return run.Outcome(), nil
	}
	if err != nil {
		return Outcome{}, errors.Join(ErrLockUnavailable, err)
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			e.log.WarnContext(ctx, "failed to release run lock", logger.RunID(runID), logger.Error(err))
		}
	}()

	// The holder we waited out may have moved the run.
	run, err = e.runs.Get(ctx, runID)
	if err != nil {
		return Outcome{}, err
	}
	if run.Done() {
		return Outcome{Done: true}, nil
	}

	return e.advance(ctx, run)
}

func (e *Engine) advance(ctx context.Context, run Run) (Outcome, error) {
	log := e.log.With(logger.RunID(run.ID), logger.SubscriptionID(run.SubscriptionID))

	snap, err := e.subs.Snapshot(ctx, run.SubscriptionID)
	if errors.Is(err, subscription.ErrNotFound) {
		return e.finish(ctx, run, DoneMissing)
	}
	if err != nil {
		return Outcome{}, fmt.Errorf("load subscription: %w", err)
	}
	if snap.Status != subscription.StatusActive {
		return e.finish(ctx, run, DoneInactive)
	}

	now := e.now()
	if !snap.RenewalDate.After(now) {
		return e.finish(ctx, run, DoneRenewalPassed)
	}
	if !snap.RenewalDate.Equal(run.RenewalDate) {
		out, err := e.finish(ctx, run, DoneRenewalChanged)
		if err != nil {
			return out, err
		}
		if _, err := e.startRun(ctx, snap); err != nil {
			return out, fmt.Errorf("start run for new renewal date: %w", err)
		}
		return out, nil
	}

	for _, offset := range Offsets {
		if run.settled(offset) {
			continue
		}

		remindAt := snap.RenewalDate.AddDate(0, 0, -offset)
		switch {
		case remindAt.After(now):
			return e.suspend(ctx, run, remindAt, SleepLabel(offset))

		case e.sameDay(remindAt, now):
			label := StepLabel(offset)
			if err := e.deliver(ctx, &run, snap, label, offset); err != nil {
				if !errors.Is(err, ErrTransientDelivery) {
					return Outcome{}, err
				}
				log.WarnContext(ctx, "reminder delivery failed, retrying later",
					logger.Label(label),
					logger.Error(err),
				)
				return e.suspend(ctx, run, e.retryAt(now), label)
			}

		default:
			log.InfoContext(ctx, "reminder day already passed, skipping",
				logger.Label(StepLabel(offset)),
				slog.Time("remind_at", remindAt),
			)
			run.Skipped = append(run.Skipped, offset)
		}
	}

	return e.finish(ctx, run, DoneCompleted)
}

// deliver is the memoized step: the label is recorded only after the
// notifier confirms the send, and never sent twice.
func (e *Engine) deliver(ctx context.Context, run *Run, snap subscription.Snapshot, label string, offset int) error {
	if run.Delivered(label) {
		return nil
	}

	err := e.notifier.SendReminder(ctx, ReminderEmail{
		To:           snap.OwnerEmail,
		Type:         label,
		DaysBefore:   offset,
		Subscription: snap,
	})
	if err != nil {
		return errors.Join(ErrTransientDelivery, err)
	}

	at := e.now()
	inserted, err := e.runs.RecordDelivery(ctx, run.ID, label, at)
	if err != nil {
		e.log.ErrorContext(ctx, "reminder sent but not recorded",
			logger.RunID(run.ID),
			logger.Label(label),
			logger.Error(err),
		)
		return errors.Join(ErrLedgerWriteFailed, err)
	}
	if !inserted {
		e.log.WarnContext(ctx, "reminder label was already recorded",
			logger.RunID(run.ID),
			logger.Label(label),
		)
	}
	run.Ledger[label] = at
	return nil
}

func (e *Engine) suspend(ctx context.Context, run Run, until time.Time, label string) (Outcome, error) {
	run.Status = RunSuspended
	run.WakeAt = &until
	run.WakeLabel = label
	run.UpdatedAt = e.now()
	if err := e.runs.Save(ctx, run); err != nil {
		return Outcome{}, err
	}

	e.log.InfoContext(ctx, "reminder run suspended",
		logger.RunID(run.ID),
		logger.Label(label),
		logger.WakeAt(until),
	)

	if err := e.enqueueWake(ctx, run.ID, until); err != nil {
		return run.Outcome(), err
	}
	return run.Outcome(), nil
}

func (e *Engine) finish(ctx context.Context, run Run, reason DoneReason) (Outcome, error) {
	run.Status = RunDone
	run.DoneReason = reason
	run.WakeAt = nil
	run.WakeLabel = ""
	run.UpdatedAt = e.now()
	if err := e.runs.Save(ctx, run); err != nil {
		return Outcome{}, err
	}

	e.log.InfoContext(ctx, "reminder run finished",
		logger.RunID(run.ID),
		logger.SubscriptionID(run.SubscriptionID),
		slog.String("reason", string(reason)),
		slog.Int("delivered", len(run.Ledger)),
		slog.Any("skipped", run.Skipped),
	)
	return Outcome{Done: true}, nil
}

// nudge asks for an immediate Advance.
func (e *Engine) nudge(ctx context.Context, runID uuid.UUID) error {
	_, err := e.enqueue(ctx, runID, nudgeKey(runID), queue.WithPriority(queue.PriorityHigh))
	return err
}

// enqueueWake schedules the Advance that resumes a suspension at until.
// Keys are derived from the wake instant, so repeats collapse into one task.
func (e *Engine) enqueueWake(ctx context.Context, runID uuid.UUID, until time.Time) error {
	_, err := e.enqueue(ctx, runID, wakeKey(runID, until), queue.WithScheduledAt(until))
	return err
}

// enqueue reports whether a new task was stored. A live task with the same
// key is not an error.
func (e *Engine) enqueue(ctx context.Context, runID uuid.UUID, key string, opts ...queue.EnqueueOption) (bool, error) {
	opts = append([]queue.EnqueueOption{
		queue.WithQueue(e.cfg.Queue),
		queue.WithUniqueKey(key),
	}, opts...)

	err := e.tasks.Enqueue(ctx, AdvanceTask{RunID: runID}, opts...)
	if errors.Is(err, queue.ErrDuplicateTask) {
		return false, nil
	}
	if err != nil {
		return false, errors.Join(ErrEnqueueFailed, err)
	}
	return true, nil
}

// retryAt is the next attempt after a failed send. It stays on the current
// calendar day when possible so the retry still counts as on-time.
func (e *Engine) retryAt(now time.Time) time.Time {
	next := now.Add(e.cfg.RetryDelay)
	local := now.In(e.loc)
	endOfDay := time.Date(local.Year(), local.Month(), local.Day(), 23, 59, 0, 0, e.loc)
	if next.After(endOfDay) && endOfDay.After(now) {
		return endOfDay
	}
	return next
}

func (e *Engine) sameDay(a, b time.Time) bool {
	ay, am, ad := a.In(e.loc).Date()
	by, bm, bd := b.In(e.loc).Date()
	return ay == by && am == bm && ad == bd
}

func lockKey(runID uuid.UUID) string {
	return "reminder:run:" + runID.String()
}

func nudgeKey(runID uuid.UUID) string {
	return "reminder:" + runID.String() + ":now"
}

func wakeKey(runID uuid.UUID, at time.Time) string {
	return fmt.Sprintf("reminder:%s:%d", runID, at.Unix())
}
