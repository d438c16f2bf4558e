package account

import (
	"context"

	"github.com/google/uuid"
)

// Store persists users. Create returns ErrEmailTaken for a duplicate email,
// and lookups return ErrUserNotFound.
type Store interface {
	Create(ctx context.Context, u User) error
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	List(ctx context.Context) ([]User, error)
}

// TokenIssuer signs access tokens. *jwt.Service satisfies it.
type TokenIssuer interface {
	Issue(userID, role string) (string, error)
}
