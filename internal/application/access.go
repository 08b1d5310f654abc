package application

import (
	"github.com/google/uuid"

	bookingDomain "github.com/fixgo-platform/service-booking/internal/domain/booking"
	"github.com/fixgo-platform/service-booking/internal/platform/apperror"
)

// Actor is the authenticated user behind a request.
type Actor struct {
	UserID uuid.UUID
	Admin  bool
}

// participates reports whether the actor may see and cancel bk.
func (a Actor) participates(bk *bookingDomain.Booking) bool {
	return a.Admin || bk.IsOwnedBy(a.UserID) || bk.IsAssignedTo(a.UserID)
}

func requireParticipant(bk *bookingDomain.Booking, actor Actor) error {
	if !actor.participates(bk) {
		return apperror.NewForbiddenError("not a participant of this booking")
	}
	return nil
}

func requireProvider(bk *bookingDomain.Booking, providerID uuid.UUID) error {
	if !bk.IsAssignedTo(providerID) {
		return apperror.NewForbiddenError("booking is not assigned to this provider")
	}
	return nil
}

func requireOwner(bk *bookingDomain.Booking, userID uuid.UUID) error {
	if !bk.IsOwnedBy(userID) {
		return apperror.NewForbiddenError("booking does not belong to this user")
	}
	return nil
}
