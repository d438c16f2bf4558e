package reminder

import (
	"context"
	"errors"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/subreminder/pkg/pg"
	"github.com/dmitrymomot/subreminder/pkg/redis"
)

// Locker hands out non-blocking exclusive locks. TryLock returns ErrLockHeld
// when another holder owns key.
type Locker interface {
	TryLock(ctx context.Context, key string) (release func(context.Context) error, err error)
}

// LockerFunc adapts a function to Locker.
type LockerFunc func(ctx context.Context, key string) (func(context.Context) error, error)

func (f LockerFunc) TryLock(ctx context.Context, key string) (func(context.Context) error, error) {
	return f(ctx, key)
}

// MemoryLocker is a process-local Locker.
type MemoryLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{held: make(map[string]struct{})}
}

func (l *MemoryLocker) TryLock(_ context.Context, key string) (func(context.Context) error, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, busy := l.held[key]; busy {
		return nil, ErrLockHeld
	}
	l.held[key] = struct{}{}

	var once sync.Once
	return func(context.Context) error {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
		return nil
	}, nil
}

// RedisLocker adapts a redis.Locker, which works across processes.
func RedisLocker(l *redis.Locker) Locker {
	return LockerFunc(func(ctx context.Context, key string) (func(context.Context) error, error) {
		release, err := l.TryLock(ctx, key)
		if errors.Is(err, redis.ErrLockNotAcquired) {
			return nil, ErrLockHeld
		}
		return release, err
	})
}

// PGLocker uses Postgres session advisory locks. It is the fallback when
// Redis is not configured and several workers share one database.
func PGLocker(pool *pgxpool.Pool) Locker {
	return LockerFunc(func(ctx context.Context, key string) (func(context.Context) error, error) {
		release, err := pg.TryAdvisoryLock(ctx, pool, key)
		if errors.Is(err, pg.ErrLockNotAcquired) {
			return nil, ErrLockHeld
		}
		return release, err
	})
}
