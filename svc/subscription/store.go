package subscription

import (
	"context"

	"github.com/google/uuid"
)

// Store persists subscriptions.
//
// Update and Delete run their callback while the record is locked. A callback
// error aborts the operation and is returned unchanged, leaving the stored
// record untouched. Missing records return ErrNotFound.
type Store interface {
	Create(ctx context.Context, s Subscription) error
	Get(ctx context.Context, id uuid.UUID) (Subscription, error)
	List(ctx context.Context) ([]Subscription, error)
	ListByOwner(ctx context.Context, userID uuid.UUID) ([]Subscription, error)
	ListByStatus(ctx context.Context, status Status) ([]Subscription, error)
	Update(ctx context.Context, id uuid.UUID, fn func(*Subscription) error) (Subscription, error)
	Delete(ctx context.Context, id uuid.UUID, check func(Subscription) error) error
}

// ContactDirectory resolves a subscription owner's contact details.
// Implementations return ErrOwnerNotFound for unknown users.
type ContactDirectory interface {
	Contact(ctx context.Context, userID uuid.UUID) (Contact, error)
}

// RunScheduler starts or nudges the reminder run for a subscription.
type RunScheduler interface {
	ScheduleRun(ctx context.Context, subscriptionID uuid.UUID) (uuid.UUID, error)
}

// RunSchedulerFunc adapts a function to RunScheduler.
type RunSchedulerFunc func(ctx context.Context, subscriptionID uuid.UUID) (uuid.UUID, error)

func (f RunSchedulerFunc) ScheduleRun(ctx context.Context, subscriptionID uuid.UUID) (uuid.UUID, error) {
	return f(ctx, subscriptionID)
}

type noopScheduler struct{}

func (noopScheduler) ScheduleRun(context.Context, uuid.UUID) (uuid.UUID, error) {
	return uuid.Nil, nil
}
