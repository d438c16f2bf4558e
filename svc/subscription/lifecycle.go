package subscription

import (
	"context"
	"time"

	"github.com/dmitrymomot/subreminder/pkg/statemachine"
)

// Event drives the lifecycle machine.
type Event string

const (
	// EventEvaluate re-derives status from the renewal date.
	EventEvaluate Event = "evaluate"
	// EventCancel is the explicit user cancellation.
	EventCancel Event = "cancel"
)

// evaluation is the guard payload for EventEvaluate.
type evaluation struct {
	renewal time.Time
	now     time.Time
}

func renewalReached(_ context.Context, _ Status, _ Event, data any) bool {
	e, ok := data.(evaluation)
	return ok && !e.renewal.After(e.now)
}

func renewalAhead(_ context.Context, _ Status, _ Event, data any) bool {
	e, ok := data.(evaluation)
	return ok && e.renewal.After(e.now)
}

var lifecycle = statemachine.MustNew(
	statemachine.WithGuardedTransition(StatusActive, StatusExpired, EventEvaluate, renewalReached),
	statemachine.WithGuardedTransition(StatusExpired, StatusActive, EventEvaluate, renewalAhead),
	statemachine.WithTransition(StatusActive, StatusCancelled, EventCancel),
	statemachine.WithTransition(StatusExpired, StatusCancelled, EventCancel),
	statemachine.WithTerminal[Status, Event](StatusCancelled),
)

// DeriveStatus evaluates current against the renewal date at now.
// Cancelled is returned unchanged. An active subscription whose renewal date
// has been reached becomes expired, and an expired one whose renewal date was
// moved into the future becomes active again.
func DeriveStatus(ctx context.Context, current Status, renewal, now time.Time) Status {
	next, err := lifecycle.Fire(ctx, current, EventEvaluate, evaluation{renewal: renewal, now: now})
	if err != nil {
		return current
	}
	return next
}

// cancelStatus returns the status after an explicit cancel.
// Cancelling a cancelled subscription is a no-op.
func cancelStatus(ctx context.Context, current Status) (Status, error) {
	if lifecycle.IsTerminal(current) {
		return current, nil
	}
	next, err := lifecycle.Fire(ctx, current, EventCancel, nil)
	if err != nil {
		return current, ErrInvalidStatus
	}
	return next, nil
}

// evaluate applies DeriveStatus to s in place.
func evaluate(ctx context.Context, s *Subscription, now time.Time) {
	s.Status = DeriveStatus(ctx, s.Status, s.RenewalDate, now)
}
