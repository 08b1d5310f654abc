package application

import (
	"context"

	"github.com/google/uuid"

	bookingDomain "github.com/fixgo-platform/service-booking/internal/domain/booking"
	paymentDomain "github.com/fixgo-platform/service-booking/internal/domain/payment"
	userDomain "github.com/fixgo-platform/service-booking/internal/domain/user"
	"github.com/fixgo-platform/service-booking/internal/platform/kafka"
)

// Stores are repositories bound to a single transaction.
type Stores struct {
	Bookings bookingDomain.BookingRepository
	Payments paymentDomain.PaymentRepository
	Users    userDomain.UserRepository
}

// UnitOfWork runs fn in one transaction. The transaction commits when fn
// returns nil and rolls back otherwise.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, tx Stores) error) error
}

// EventPublisher publishes CloudEvents. *kafka.Producer implements it.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, event kafka.CloudEvent) error
}

// ReferenceChecker checks catalog references owned by other modules.
type ReferenceChecker interface {
	CategoryExists(ctx context.Context, id uuid.UUID) (bool, error)
	VehicleTypeExists(ctx context.Context, id uuid.UUID) (bool, error)
}
