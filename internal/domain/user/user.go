// Package user holds the account view the booking service needs: existence
// checks and the provider balance credited on settlement.
package user

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fixgo-platform/service-booking/internal/platform/apperror"
)

// Role is the account role.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleProvider Role = "provider"
	RoleAdmin    Role = "admin"
)

// User is an account. Balance is only meaningful for providers.
type User struct {
	id        uuid.UUID
	name      string
	role      Role
	balance   *string
	version   int64
	updatedAt time.Time
}

// Snapshot carries persisted user state.
type Snapshot struct {
	ID        uuid.UUID
	Name      string
	Role      Role
	Balance   *string
	Version   int64
	UpdatedAt time.Time
}

// Reconstruct rebuilds a User from persistence data.
func Reconstruct(s Snapshot) *User {
	return &User{
		id:        s.ID,
		name:      s.Name,
		role:      s.Role,
		balance:   s.Balance,
		version:   s.Version,
		updatedAt: s.UpdatedAt,
	}
}

// Snapshot exports the user state for persistence.
func (u *User) Snapshot() Snapshot {
	return Snapshot{
		ID:        u.id,
		Name:      u.name,
		Role:      u.role,
		Balance:   u.balance,
		Version:   u.version,
		UpdatedAt: u.updatedAt,
	}
}

func (u *User) ID() uuid.UUID { return u.id }

func (u *User) Name() string { return u.name }

func (u *User) Role() Role { return u.role }

// Version returns the entity version for optimistic locking.
func (u *User) Version() int64 { return u.version }

// Balance returns the stored balance as a decimal. A missing, non-numeric or
// negative stored value reads as zero.
func (u *User) Balance() decimal.Decimal {
	if u.balance == nil {
		return decimal.Zero
	}
	b, err := decimal.NewFromString(strings.TrimSpace(*u.balance))
	if err != nil || b.IsNegative() {
		return decimal.Zero
	}
	return b
}

// Credit adds amount to the balance and returns the new balance.
func (u *User) Credit(amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, apperror.NewInvalidStateError(
			fmt.Sprintf("credit amount must be positive, got %s", amount))
	}
	next := u.Balance().Add(amount)
	s := next.String()
	u.balance = &s
	u.updatedAt = time.Now().UTC()
	return next, nil
}

// IncrementVersion bumps the version for optimistic locking.
func (u *User) IncrementVersion() {
	u.version++
	u.updatedAt = time.Now().UTC()
}
