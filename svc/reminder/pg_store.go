package reminder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/subreminder/pkg/pg"
)

// PGStore keeps runs in reminder_runs and their ledger in reminder_ledger.
// A partial unique index on reminder_runs(subscription_id) for runs that are
// not done enforces one active run per subscription.
type PGStore struct {
	pool *pgxpool.Pool
}

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	if pool == nil {
		panic("reminder: pgx pool is required")
	}
	return &PGStore{pool: pool}
}

const runColumns = `id, subscription_id, renewal_date, status, done_reason, skipped,
	wake_at, wake_label, created_at, updated_at`

func scanRun(row pgx.Row) (Run, error) {
	var r Run
	err := row.Scan(
		&r.ID, &r.SubscriptionID, &r.RenewalDate, &r.Status, &r.DoneReason, &r.Skipped,
		&r.WakeAt, &r.WakeLabel, &r.CreatedAt, &r.UpdatedAt,
	)
	return r, err
}

func (p *PGStore) Create(ctx context.Context, run Run) error {
	skipped := run.Skipped
	if skipped == nil {
		skipped = []int{}
	}
	_, err := p.pool.Exec(ctx, `
		INSERT INTO reminder_runs (`+runColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		run.ID, run.SubscriptionID, run.RenewalDate, run.Status, run.DoneReason, skipped,
		run.WakeAt, run.WakeLabel, run.CreatedAt, run.UpdatedAt,
	)
	if pg.IsDuplicateKeyError(err) {
		return ErrActiveRunExists
	}
	if err != nil {
		return errors.Join(ErrStoreFailure, err)
	}
	return nil
}

func (p *PGStore) Get(ctx context.Context, id uuid.UUID) (Run, error) {
	run, err := scanRun(p.pool.QueryRow(ctx, `SELECT `+runColumns+` FROM reminder_runs WHERE id = $1`, id))
	if pg.IsNotFoundError(err) {
		return Run{}, ErrRunNotFound
	}
	if err != nil {
		return Run{}, errors.Join(ErrStoreFailure, err)
	}
	if err := p.loadLedger(ctx, &run); err != nil {
		return Run{}, err
	}
	return run, nil
}

func (p *PGStore) Latest(ctx context.Context, subscriptionID uuid.UUID) (Run, error) {
	run, err := scanRun(p.pool.QueryRow(ctx, `
		SELECT `+runColumns+` FROM reminder_runs
		WHERE subscription_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1`, subscriptionID))
	if pg.IsNotFoundError(err) {
		return Run{}, ErrRunNotFound
	}
	if err != nil {
		return Run{}, errors.Join(ErrStoreFailure, err)
	}
	if err := p.loadLedger(ctx, &run); err != nil {
		return Run{}, err
	}
	return run, nil
}

func (p *PGStore) ListActive(ctx context.Context) ([]Run, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT `+runColumns+` FROM reminder_runs
		WHERE status <> 'done'
		ORDER BY created_at`)
	if err != nil {
		return nil, errors.Join(ErrStoreFailure, err)
	}
	runs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Run, error) {
		return scanRun(row)
	})
	if err != nil {
		return nil, errors.Join(ErrStoreFailure, err)
	}
	return runs, nil
}

func (p *PGStore) Save(ctx context.Context, run Run) error {
	skipped := run.Skipped
	if skipped == nil {
		skipped = []int{}
	}
	tag, err := p.pool.Exec(ctx, `
		UPDATE reminder_runs
		SET status = $2, done_reason = $3, skipped = $4, wake_at = $5, wake_label = $6, updated_at = $7
		WHERE id = $1`,
		run.ID, run.Status, run.DoneReason, skipped, run.WakeAt, run.WakeLabel, run.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save reminder run: %w", errors.Join(ErrStoreFailure, err))
	}
	if tag.RowsAffected() == 0 {
		return ErrRunNotFound
	}
	return nil
}

// RecordDelivery relies on the (run_id, label) primary key: a second insert
// for the same label is a no-op.
func (p *PGStore) RecordDelivery(ctx context.Context, runID uuid.UUID, label string, at time.Time) (bool, error) {
	tag, err := p.pool.Exec(ctx, `
		INSERT INTO reminder_ledger (run_id, label, delivered_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (run_id, label) DO NOTHING`,
		runID, label, at,
	)
	if pg.IsForeignKeyViolationError(err) {
		return false, ErrRunNotFound
	}
	if err != nil {
		return false, errors.Join(ErrStoreFailure, err)
	}
	return tag.RowsAffected() == 1, nil
}

func (p *PGStore) loadLedger(ctx context.Context, run *Run) error {
	rows, err := p.pool.Query(ctx, `SELECT label, delivered_at FROM reminder_ledger WHERE run_id = $1`, run.ID)
	if err != nil {
		return errors.Join(ErrStoreFailure, err)
	}
	defer rows.Close()

	run.Ledger = make(map[string]time.Time)
	for rows.Next() {
		var (
			label string
			at    time.Time
		)
		if err := rows.Scan(&label, &at); err != nil {
			return errors.Join(ErrStoreFailure, err)
		}
		run.Ledger[label] = at
	}
	if err := rows.Err(); err != nil {
		return errors.Join(ErrStoreFailure, err)
	}
	return nil
}
