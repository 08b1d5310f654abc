package payment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RefundRequest asks the gateway to reverse a prior charge in full.
type RefundRequest struct {
	BookingID       uuid.UUID
	PaymentID       uuid.UUID
	ChargeReference string
	Amount          decimal.Decimal
	Currency        string
	// IdempotencyKey must be stable per booking so retries never double-refund.
	IdempotencyKey string
}

// RefundReceipt is the gateway's answer to a successful refund.
type RefundReceipt struct {
	RefundID string
	Status   string
}

// Gateway issues refunds against an external payment processor.
type Gateway interface {
	Refund(ctx context.Context, req RefundRequest) (*RefundReceipt, error)
}

// RefundIdempotencyKey derives the gateway idempotency key for a booking's refund.
func RefundIdempotencyKey(bookingID uuid.UUID) string {
	return fmt.Sprintf("booking-refund-%s", bookingID)
}
