package user

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository reads accounts and writes provider balances.
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByIDForUpdate loads the user and locks the row for the rest of the
	// transaction.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*User, error)

	Exists(ctx context.Context, id uuid.UUID) (bool, error)

	// UpdateBalance persists the balance with optimistic locking.
	UpdateBalance(ctx context.Context, u *User) error
}
