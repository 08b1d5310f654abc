package payment

import (
	"context"

	"github.com/google/uuid"
)

// PaymentRepository reads and updates payments linked to bookings.
type PaymentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)

	// FindByIDForUpdate loads the payment and locks its row until the
	// surrounding transaction ends.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Payment, error)

	// Update persists changes with optimistic locking.
	Update(ctx context.Context, p *Payment) error
}
