package booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fixgo-platform/service-booking/internal/platform/paging"
)

// LocationPoint is the map projection of a geolocated booking.
type LocationPoint struct {
	ID             uuid.UUID
	Latitude       float64
	Longitude      float64
	ApprovalStatus ApprovalStatus
	WorkStatus     WorkStatus
}

// Stats holds booking counts grouped per facet.
type Stats struct {
	Total      int64
	ByApproval map[ApprovalStatus]int64
	ByWork     map[WorkStatus]int64
	ByPayment  map[PaymentStatus]int64
}

// BookingRepository defines the persistence contract for booking aggregates.
type BookingRepository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByIDForUpdate retrieves a booking and locks its row for the rest
	// of the surrounding transaction.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Booking, error)

	// ListAll retrieves all bookings ordered by creation time.
	ListAll(ctx context.Context, req paging.Request) ([]*Booking, int64, error)

	// FindByUserID retrieves a customer's bookings, newest first.
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*Booking, error)

	// FindByProviderAndApproval retrieves a provider's bookings in the given
	// approval status, newest first.
	FindByProviderAndApproval(ctx context.Context, providerID uuid.UUID, status ApprovalStatus) ([]*Booking, error)

	// FindCompletedByProvider retrieves a provider's accepted bookings whose
	// work is completed.
	FindCompletedByProvider(ctx context.Context, providerID uuid.UUID) ([]*Booking, error)

	// FindLocations retrieves bookings with both coordinates set.
	FindLocations(ctx context.Context) ([]LocationPoint, error)

	// FindStuckRefunds retrieves bookings whose refund has been pending since
	// before the given time.
	FindStuckRefunds(ctx context.Context, before time.Time, limit int) ([]*Booking, error)

	// CountStats returns booking counts grouped by facet (admin).
	CountStats(ctx context.Context) (*Stats, error)

	// Save persists a new booking.
	Save(ctx context.Context, booking *Booking) error

	// Update persists changes to an existing booking with optimistic locking.
	Update(ctx context.Context, booking *Booking) error
}
