// Package subscription manages recurring billing subscriptions and their lifecycle.
//
// A Subscription moves between three states. It starts active, becomes
// expired once its renewal date is reached, and becomes cancelled only through
// an explicit Cancel call. Cancelled is terminal: later evaluations never turn
// it back into expired or active.
//
// Status is never stored as an independent input. It is re-derived from the
// renewal date on every read and every write, so a record that was active
// yesterday is reported as expired today without any background job.
//
// # Renewal dates
//
// When the caller omits a renewal date, it is derived from the start date and
// billing frequency:
//
//	daily   +1 day
//	weekly  +7 days
//	monthly +30 days
//	yearly  +365 days
//
// An explicit renewal date must be strictly after the start date.
//
// # Persistence
//
// Store has three implementations: MemoryStore for tests and local runs,
// PGStore backed by pgx, and MongoStore backed by the official driver.
// Update and Delete run the caller's checks inside the store's transaction,
// so a rejected authorization or validation never leaves a partial write.
//
// # Reminders
//
// Creating a subscription asks the configured RunScheduler for a reminder run.
// Changing the renewal date or status nudges the scheduler again. The reminder
// engine reads subscriptions back through Snapshot, which also resolves the
// owner's contact details through a ContactDirectory.
package subscription
