package auth

import (
	"context"

	"recaudo/internal/core/id"
)

// UserRepository persists users.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, userID id.ID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, user *User) error

	// ListByRole returns active users with the given role.
	ListByRole(ctx context.Context, role string) ([]User, error)
}
