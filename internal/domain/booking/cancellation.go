package booking

import (
	"time"

	"github.com/fixgo-platform/service-booking/internal/domain/payment"
	"github.com/fixgo-platform/service-booking/internal/platform/apperror"
)

// CancelOutcome is what the first phase of a cancellation decided.
type CancelOutcome string

const (
	// CancelWithoutRefund: no refundable payment, payment facet reset to pending.
	CancelWithoutRefund CancelOutcome = "no_refund"
	// CancelRefundRequired: the gateway must be called, refund is pending.
	CancelRefundRequired CancelOutcome = "refund_required"
	// CancelAlreadyRefunded: the payment was refunded earlier.
	CancelAlreadyRefunded CancelOutcome = "already_refunded"
)

// BeginCancel rejects the booking and decides whether a refund is owed.
// pay may be nil when the booking has no payment.
//
// A payment that was already refunded is reported as CancelAlreadyRefunded
// and the booking's payment facet becomes refunded rather than pending, so
// the booking keeps matching the payment row.
func (b *Booking) BeginCancel(pay *payment.Payment) (CancelOutcome, error) {
	if b.IsSettled() {
		return "", apperror.NewInvalidTransitionError("settled booking cannot be cancelled")
	}
	if b.refundState == RefundPending {
		return "", apperror.NewConflictError("refund already in progress")
	}

	now := time.Now().UTC()
	b.approvalStatus = ApprovalRejected
	if b.cancelledAt == nil {
		b.cancelledAt = &now
	}
	b.updatedAt = now

	switch {
	case pay != nil && pay.Status() == payment.StatusRefunded:
		b.paymentStatus = PaymentRefunded
		b.refundState = RefundDone
		return CancelAlreadyRefunded, nil
	case pay != nil && pay.IsRefundable():
		b.refundState = RefundPending
		return CancelRefundRequired, nil
	default:
		b.paymentStatus = PaymentPending
		return CancelWithoutRefund, nil
	}
}

// CompleteRefund records a successful gateway refund. A refund marked failed
// can still complete when a retry with the same idempotency key succeeds.
func (b *Booking) CompleteRefund() error {
	switch b.refundState {
	case RefundDone:
		return nil
	case RefundPending, RefundFailed:
	default:
		return apperror.NewInvalidTransitionError("no refund in progress")
	}
	b.paymentStatus = PaymentRefunded
	b.refundState = RefundDone
	b.touch()
	return nil
}

// FailRefund records a failed gateway refund. The payment stays completed so
// the cancellation can be retried.
func (b *Booking) FailRefund() error {
	if b.refundState != RefundPending {
		return apperror.NewInvalidTransitionError("no refund in progress")
	}
	b.refundState = RefundFailed
	b.touch()
	return nil
}
