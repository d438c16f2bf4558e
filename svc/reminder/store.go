package reminder

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RunStore persists runs and their delivery ledger.
type RunStore interface {
	// Create inserts a run. It returns ErrActiveRunExists when the subscription
	// already has a run that is not done.
	Create(ctx context.Context, run Run) error
	// Get returns the run with its ledger, or ErrRunNotFound.
	Get(ctx context.Context, id uuid.UUID) (Run, error)
	// Latest returns the most recently created run for a subscription, or ErrRunNotFound.
	Latest(ctx context.Context, subscriptionID uuid.UUID) (Run, error)
	// ListActive returns every run that is not done.
	ListActive(ctx context.Context) ([]Run, error)
	// Save writes status, wake point, skipped offsets and done reason.
	// The ledger is written only through RecordDelivery.
	Save(ctx context.Context, run Run) error
	// RecordDelivery inserts label into the run's ledger unless it is already
	// there. It reports whether this call inserted it.
	RecordDelivery(ctx context.Context, runID uuid.UUID, label string, at time.Time) (bool, error)
}
