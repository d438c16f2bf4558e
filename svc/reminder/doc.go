// Package reminder implements the durable reminder workflow that emails
// subscription owners before each renewal.
//
// A Run belongs to one subscription and one renewal date. Each call to
// Engine.Advance re-reads the subscription, walks the fixed offsets
// (7, 5, 2 and 1 days before renewal) and does one of three things per offset:
//
//   - suspends the run until the offset's reminder instant when that instant
//     is still in the future, persisting the wake time and enqueueing a
//     queue task scheduled for it;
//   - sends the reminder when today is the reminder's calendar day and the
//     step label is not yet in the run's ledger;
//   - skips the offset when its day has already passed. Reminders are never
//     sent late.
//
// Advance never sleeps. It returns an Outcome telling the caller either that
// the run is done or when it wants to be invoked again. Re-invoking it any
// number of times is safe: a per-run lock serialises concurrent invocations
// and the ledger insert is conditional, so each label is delivered at most once.
//
// The run terminates when every offset is settled, when the subscription is
// missing or no longer active, or when the renewal date has passed.
//
// The queue integration lives in tasks.go: AdvanceTask is the one-time task
// that drives a run, and the periodic reconcile task repairs runs whose
// wake-up task was lost.
package reminder
