package account

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/subreminder/pkg/pg"
)

// PGStore keeps users in the users table. Email uniqueness is enforced by
// the users_email_key index.
type PGStore struct {
	pool *pgxpool.Pool
}

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	if pool == nil {
		panic("account: pgx pool is required")
	}
	return &PGStore{pool: pool}
}

const userColumns = `id, name, email, password_hash, role, created_at, updated_at`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (p *PGStore) Create(ctx context.Context, u User) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.CreatedAt, u.UpdatedAt,
	)
	if pg.IsDuplicateKeyError(err) {
		return ErrEmailTaken
	}
	if err != nil {
		return errors.Join(ErrStoreFailure, err)
	}
	return nil
}

func (p *PGStore) GetByID(ctx context.Context, id uuid.UUID) (User, error) {
	return p.get(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (p *PGStore) GetByEmail(ctx context.Context, email string) (User, error) {
	return p.get(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (p *PGStore) get(ctx context.Context, sql string, arg any) (User, error) {
	u, err := scanUser(p.pool.QueryRow(ctx, sql, arg))
	if pg.IsNotFoundError(err) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, errors.Join(ErrStoreFailure, err)
	}
	return u, nil
}

func (p *PGStore) List(ctx context.Context) ([]User, error) {
	rows, err := p.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, errors.Join(ErrStoreFailure, err)
	}
	users, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (User, error) {
		return scanUser(row)
	})
	if err != nil {
		return nil, errors.Join(ErrStoreFailure, err)
	}
	return users, nil
}
