// Package payment holds the booking service's view of payments owned by the
// payment module, and the gateway contract used to refund them.
package payment

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fixgo-platform/service-booking/internal/platform/apperror"
)

// Status is the gateway-side settlement state of a payment.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusRefunded  Status = "refunded"
)

// IsValid returns true if the status is recognized.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusRefunded:
		return true
	}
	return false
}

// Payment is a charge captured for a booking. Amount is kept in its stored
// textual form and parsed only when it is used for money movement.
type Payment struct {
	id              uuid.UUID
	bookingID       uuid.UUID
	status          Status
	amount          *string
	currency        string
	chargeReference *string
	refundReference *string
	refundedAt      *time.Time
	version         int64
	createdAt       time.Time
	updatedAt       time.Time
}

// Snapshot carries persisted payment state.
type Snapshot struct {
	ID              uuid.UUID
	BookingID       uuid.UUID
	Status          Status
	Amount          *string
	Currency        string
	ChargeReference *string
	RefundReference *string
	RefundedAt      *time.Time
	Version         int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Reconstruct rebuilds a Payment from persistence data.
func Reconstruct(s Snapshot) *Payment {
	return &Payment{
		id:              s.ID,
		bookingID:       s.BookingID,
		status:          s.Status,
		amount:          s.Amount,
		currency:        s.Currency,
		chargeReference: s.ChargeReference,
		refundReference: s.RefundReference,
		refundedAt:      s.RefundedAt,
		version:         s.Version,
		createdAt:       s.CreatedAt,
		updatedAt:       s.UpdatedAt,
	}
}

// Snapshot exports the payment state for persistence.
func (p *Payment) Snapshot() Snapshot {
	return Snapshot{
		ID:              p.id,
		BookingID:       p.bookingID,
		Status:          p.status,
		Amount:          p.amount,
		Currency:        p.currency,
		ChargeReference: p.chargeReference,
		RefundReference: p.refundReference,
		RefundedAt:      p.refundedAt,
		Version:         p.version,
		CreatedAt:       p.createdAt,
		UpdatedAt:       p.updatedAt,
	}
}

// ID returns the payment identifier.
func (p *Payment) ID() uuid.UUID { return p.id }

// BookingID returns the booking this payment was made for.
func (p *Payment) BookingID() uuid.UUID { return p.bookingID }

// Status returns the gateway-side status.
func (p *Payment) Status() Status { return p.status }

// Currency returns the ISO currency code of the amount.
func (p *Payment) Currency() string { return p.currency }

// RefundReference returns the gateway refund ID, or nil before a refund.
func (p *Payment) RefundReference() *string { return p.refundReference }

// Version returns the entity version for optimistic locking.
func (p *Payment) Version() int64 { return p.version }

// ChargeReference returns the gateway charge (or payment intent) ID, if any.
func (p *Payment) ChargeReference() *string { return p.chargeReference }

// RawAmount returns the stored amount text.
func (p *Payment) RawAmount() *string { return p.amount }

// Amount parses the stored amount. Missing, non-numeric, zero and negative
// amounts are integrity errors.
func (p *Payment) Amount() (decimal.Decimal, error) {
	if p.amount == nil || strings.TrimSpace(*p.amount) == "" {
		return decimal.Zero, apperror.NewInvalidStateError(
			fmt.Sprintf("payment %s has no amount", p.id))
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(*p.amount))
	if err != nil {
		return decimal.Zero, apperror.NewInvalidStateError(
			fmt.Sprintf("payment %s has a non-numeric amount", p.id))
	}
	if !amount.IsPositive() {
		return decimal.Zero, apperror.NewInvalidStateError(
			fmt.Sprintf("payment %s amount must be positive, got %s", p.id, amount))
	}
	return amount, nil
}

// IsRefundable reports whether the gateway can refund this payment: it was
// captured and carries a charge reference.
func (p *Payment) IsRefundable() bool {
	return p.status == StatusCompleted &&
		p.chargeReference != nil && strings.TrimSpace(*p.chargeReference) != ""
}

// MarkRefunded records a successful gateway refund.
func (p *Payment) MarkRefunded(refundReference string) error {
	if p.status == StatusRefunded {
		return nil
	}
	if p.status != StatusCompleted {
		return apperror.NewInvalidTransitionError(
			fmt.Sprintf("payment in status %s cannot be refunded", p.status))
	}
	now := time.Now().UTC()
	p.status = StatusRefunded
	if refundReference != "" {
		p.refundReference = &refundReference
	}
	p.refundedAt = &now
	p.updatedAt = now
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (p *Payment) IncrementVersion() {
	p.version++
	p.updatedAt = time.Now().UTC()
}
