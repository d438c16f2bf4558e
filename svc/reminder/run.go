package reminder

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Offsets are the days before renewal at which reminders are due, in evaluation order.
var Offsets = []int{7, 5, 2, 1}

// StepLabel names the memoized send step for an offset.
func StepLabel(daysBefore int) string {
	return fmt.Sprintf("%d days before reminder", daysBefore)
}

// SleepLabel names the suspension that waits for an offset's reminder instant.
func SleepLabel(daysBefore int) string {
	return fmt.Sprintf("Reminder %d days before", daysBefore)
}

type RunStatus string

const (
	RunPending   RunStatus = "pending"
	RunSuspended RunStatus = "suspended"
	RunDone      RunStatus = "done"
)

type DoneReason string

const (
	DoneCompleted      DoneReason = "completed"
	DoneMissing        DoneReason = "subscription_missing"
	DoneInactive       DoneReason = "subscription_inactive"
	DoneRenewalPassed  DoneReason = "renewal_passed"
	DoneRenewalChanged DoneReason = "renewal_changed"
)

// Run is one reminder workflow for a subscription's renewal date.
type Run struct {
	ID             uuid.UUID            `json:"id"`
	SubscriptionID uuid.UUID            `json:"subscription_id"`
	RenewalDate    time.Time            `json:"renewal_date"`
	Status         RunStatus            `json:"status"`
	DoneReason     DoneReason           `json:"done_reason,omitempty"`
	Ledger         map[string]time.Time `json:"ledger"`
	Skipped        []int                `json:"skipped"`
	WakeAt         *time.Time           `json:"wake_at,omitempty"`
	WakeLabel      string               `json:"wake_label,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

func (r Run) Done() bool {
	return r.Status == RunDone
}

func (r Run) Delivered(label string) bool {
	_, ok := r.Ledger[label]
	return ok
}

// Outcome reports the run's current position to the invoker. A pending run
// is being advanced by another invocation and reports InProgress.
func (r Run) Outcome() Outcome {
	if r.Done() {
		return Outcome{Done: true}
	}
	if r.Status == RunSuspended && r.WakeAt != nil {
		t := *r.WakeAt
		return Outcome{SuspendedUntil: &t}
	}
	return Outcome{InProgress: true}
}

func (r Run) settled(offset int) bool {
	return r.Delivered(StepLabel(offset)) || slices.Contains(r.Skipped, offset)
}

// clone copies the mutable fields so callers can't alias store state.
func (r Run) clone() Run {
	r.Ledger = maps.Clone(r.Ledger)
	if r.Ledger == nil {
		r.Ledger = make(map[string]time.Time)
	}
	r.Skipped = slices.Clone(r.Skipped)
	if r.WakeAt != nil {
		t := *r.WakeAt
		r.WakeAt = &t
	}
	return r
}

// Outcome is the result of one Advance call. Exactly one field is set:
// SuspendedUntil when the run wants to be invoked again no earlier than that
// instant, Done when the run has ended, or InProgress when a concurrent
// invocation holds the run and will report its own outcome.
type Outcome struct {
	SuspendedUntil *time.Time `json:"suspended_until,omitempty"`
	Done           bool       `json:"done"`
	InProgress     bool       `json:"in_progress,omitempty"`
}
