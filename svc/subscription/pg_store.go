package subscription

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/dmitrymomot/subreminder/pkg/pg"
)

// PGStore keeps subscriptions in the subscriptions table.
type PGStore struct {
	pool *pgxpool.Pool
}

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	if pool == nil {
		panic("subscription: pgx pool is required")
	}
	return &PGStore{pool: pool}
}

const subscriptionColumns = `id, user_id, name, price::text, currency, frequency, category,
	payment_method, status, start_date, renewal_date, created_at, updated_at`

func scanSubscription(row pgx.Row) (Subscription, error) {
	var (
		s     Subscription
		price string
	)
	err := row.Scan(
		&s.ID, &s.UserID, &s.Name, &price, &s.Currency, &s.Frequency, &s.Category,
		&s.PaymentMethod, &s.Status, &s.StartDate, &s.RenewalDate, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return Subscription{}, err
	}
	if s.Price, err = decimal.NewFromString(price); err != nil {
		return Subscription{}, errors.Join(ErrInvalidPayload, err)
	}
	return s, nil
}

func (p *PGStore) Create(ctx context.Context, s Subscription) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO subscriptions (id, user_id, name, price, currency, frequency, category,
			payment_method, status, start_date, renewal_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4::numeric, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		s.ID, s.UserID, s.Name, s.Price.String(), s.Currency, s.Frequency, s.Category,
		s.PaymentMethod, s.Status, s.StartDate, s.RenewalDate, s.CreatedAt, s.UpdatedAt,
	)
	switch {
	case pg.IsDuplicateKeyError(err):
		return ErrConflict
	case pg.IsForeignKeyViolationError(err):
		return ErrOwnerNotFound
	case err != nil:
		return errors.Join(ErrStoreFailure, err)
	}
	return nil
}

func (p *PGStore) Get(ctx context.Context, id uuid.UUID) (Subscription, error) {
	s, err := scanSubscription(p.pool.QueryRow(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = $1`, id))
	if pg.IsNotFoundError(err) {
		return Subscription{}, ErrNotFound
	}
	if err != nil {
		return Subscription{}, errors.Join(ErrStoreFailure, err)
	}
	return s, nil
}

func (p *PGStore) List(ctx context.Context) ([]Subscription, error) {
	return p.query(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions ORDER BY created_at DESC`)
}

func (p *PGStore) ListByOwner(ctx context.Context, userID uuid.UUID) ([]Subscription, error) {
	return p.query(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions
		WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

func (p *PGStore) ListByStatus(ctx context.Context, status Status) ([]Subscription, error) {
	return p.query(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions
		WHERE status = $1 ORDER BY created_at DESC`, status)
}

func (p *PGStore) query(ctx context.Context, sql string, args ...any) ([]Subscription, error) {
	rows, err := p.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, errors.Join(ErrStoreFailure, err)
	}
	subs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Subscription, error) {
		return scanSubscription(row)
	})
	if err != nil {
		return nil, errors.Join(ErrStoreFailure, err)
	}
	return subs, nil
}

// Update locks the row with SELECT ... FOR UPDATE, applies fn and writes the
// result in the same transaction.
func (p *PGStore) Update(ctx context.Context, id uuid.UUID, fn func(*Subscription) error) (Subscription, error) {
	var out Subscription
	err := pg.WithTx(ctx, p.pool, func(tx pgx.Tx) error {
		s, err := scanSubscription(tx.QueryRow(ctx,
			`SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = $1 FOR UPDATE`, id))
		if pg.IsNotFoundError(err) {
			return ErrNotFound
		}
		if err != nil {
			return errors.Join(ErrStoreFailure, err)
		}

		if err := fn(&s); err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, `
			UPDATE subscriptions
			SET name = $2, price = $3::numeric, currency = $4, frequency = $5, category = $6,
				payment_method = $7, status = $8, start_date = $9, renewal_date = $10, updated_at = $11
			WHERE id = $1`,
			id, s.Name, s.Price.String(), s.Currency, s.Frequency, s.Category,
			s.PaymentMethod, s.Status, s.StartDate, s.RenewalDate, s.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("update subscription: %w", errors.Join(ErrStoreFailure, err))
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		s.ID = id
		out = s
		return nil
	})
	if err != nil {
		return Subscription{}, err
	}
	return out, nil
}

func (p *PGStore) Delete(ctx context.Context, id uuid.UUID, check func(Subscription) error) error {
	return pg.WithTx(ctx, p.pool, func(tx pgx.Tx) error {
		s, err := scanSubscription(tx.QueryRow(ctx,
			`SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = $1 FOR UPDATE`, id))
		if pg.IsNotFoundError(err) {
			return ErrNotFound
		}
		if err != nil {
			return errors.Join(ErrStoreFailure, err)
		}
		if check != nil {
			if err := check(s); err != nil {
				return err
			}
		}

		if _, err := tx.Exec(ctx, `DELETE FROM subscriptions WHERE id = $1`, id); err != nil {
			return fmt.Errorf("delete subscription: %w", errors.Join(ErrStoreFailure, err))
		}
		return nil
	})
}
