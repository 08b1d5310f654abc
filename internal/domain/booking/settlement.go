package booking

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fixgo-platform/service-booking/internal/domain/payment"
	"github.com/fixgo-platform/service-booking/internal/domain/user"
	"github.com/fixgo-platform/service-booking/internal/platform/apperror"
)

// Settlement records a provider credit for a completed booking.
type Settlement struct {
	BookingID       uuid.UUID
	ProviderID      uuid.UUID
	PaymentID       uuid.UUID
	Amount          decimal.Decimal
	PreviousBalance decimal.Decimal
	NewBalance      decimal.Decimal
	SettledAt       time.Time
}

// Complete moves the booking to completed and credits the provider with the
// payment amount. The payment row itself must be completed, whatever the
// booking's payment facet says. Nothing is changed unless every check
// passes. The caller must hold the booking and provider rows locked and
// persist both in one transaction.
func (b *Booking) Complete(pay *payment.Payment, provider *user.User) (*Settlement, error) {
	if err := b.CheckWorkTransition(WorkCompleted); err != nil {
		return nil, err
	}
	if pay == nil {
		return nil, apperror.NewInvalidStateError(
			fmt.Sprintf("booking %s has no payment to settle", b.id))
	}
	if pay.BookingID() != uuid.Nil && pay.BookingID() != b.id {
		return nil, apperror.NewInvalidStateError(
			fmt.Sprintf("payment %s belongs to another booking", pay.ID()))
	}
	if pay.Status() != payment.StatusCompleted {
		return nil, apperror.NewForbiddenError(
			fmt.Sprintf("payment %s is %s and cannot be settled", pay.ID(), pay.Status()))
	}
	amount, err := pay.Amount()
	if err != nil {
		return nil, err
	}
	if provider == nil || provider.ID() != b.providerID {
		return nil, apperror.NewInvalidStateError(
			fmt.Sprintf("provider %s not loaded for settlement", b.providerID))
	}

	previous := provider.Balance()
	next, err := provider.Credit(amount)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	b.workStatus = WorkCompleted
	b.settledAt = &now
	b.updatedAt = now

	return &Settlement{
		BookingID:       b.id,
		ProviderID:      b.providerID,
		PaymentID:       pay.ID(),
		Amount:          amount,
		PreviousBalance: previous,
		NewBalance:      next,
		SettledAt:       now,
	}, nil
}
