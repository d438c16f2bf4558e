package account

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleAdministrator = "Administrator"
	RoleUser          = "User"
)

var Roles = []string{RoleAdministrator, RoleUser}

type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash []byte    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdministrator
}

// withoutSecret returns a copy safe to hand out of the package.
func (u User) withoutSecret() User {
	u.PasswordHash = nil
	return u
}

type SignUpParams struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignInParams struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
