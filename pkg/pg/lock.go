package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TryAdvisoryLock takes a session level advisory lock keyed by hashtext(key).
// The lock pins one pooled connection until the returned release func is called.
// ErrLockNotAcquired is returned when another session holds the key.
func TryAdvisoryLock(ctx context.Context, pool *pgxpool.Pool, key string) (func(context.Context) error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	var ok bool
	if err := conn.QueryRow(ctx, `SELECT pg_try_advisory_lock(hashtext($1))`, key).Scan(&ok); err != nil {
		conn.Release()
		return nil, err
	}
	if !ok {
		conn.Release()
		return nil, ErrLockNotAcquired
	}

	release := func(ctx context.Context) error {
		defer conn.Release()
		var unlocked bool
		if err := conn.QueryRow(ctx, `SELECT pg_advisory_unlock(hashtext($1))`, key).Scan(&unlocked); err != nil {
			// Closing the session drops any lock it still holds.
			_ = conn.Conn().Close(ctx)
			return err
		}
		if !unlocked {
			return errors.New("advisory lock was not held at release")
		}
		return nil
	}
	return release, nil
}
