// Package events defines the topics, CloudEvent types and payloads exchanged
// with other services.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Topics.
const (
	TopicBookingEvents = "booking.events"
	TopicPaymentEvents = "payment.events"
)

// Booking event types published by this service.
const (
	BookingCreated              = "booking.created"
	BookingUpdated              = "booking.updated"
	BookingApprovalUpdated      = "booking.approval_updated"
	BookingWorkStatusUpdated    = "booking.work_status_updated"
	BookingSettled              = "booking.settled"
	BookingPaymentStatusUpdated = "booking.payment_status_updated"
	BookingCancelled            = "booking.cancelled"
	BookingRefundFailed         = "booking.refund_failed"
)

// Payment event types consumed by this service.
const (
	PaymentCompleted = "payment.completed"
	PaymentRefunded  = "payment.refunded"
)

// BookingCreatedEvent is published when a customer books a provider.
type BookingCreatedEvent struct {
	BookingID     uuid.UUID `json:"booking_id"`
	BookingNumber string    `json:"booking_number"`
	UserID        uuid.UUID `json:"user_id"`
	ProviderID    uuid.UUID `json:"provider_id"`
	CategoryID    uuid.UUID `json:"category_id"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// BookingUpdatedEvent is published when a customer edits a booking request.
type BookingUpdatedEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	UserID     uuid.UUID `json:"user_id"`
	ProviderID uuid.UUID `json:"provider_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// BookingStatusChangedEvent is published when one facet of a booking changes.
type BookingStatusChangedEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	UserID     uuid.UUID `json:"user_id"`
	ProviderID uuid.UUID `json:"provider_id"`
	Facet      string    `json:"facet"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

// BookingSettledEvent is published once per booking when the provider is credited.
type BookingSettledEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	ProviderID uuid.UUID `json:"provider_id"`
	PaymentID  uuid.UUID `json:"payment_id"`
	Amount     string    `json:"amount"`
	NewBalance string    `json:"new_balance"`
	OccurredAt time.Time `json:"occurred_at"`
}

// BookingCancelledEvent is published after a cancellation is committed.
type BookingCancelledEvent struct {
	BookingID    uuid.UUID  `json:"booking_id"`
	UserID       uuid.UUID  `json:"user_id"`
	ProviderID   uuid.UUID  `json:"provider_id"`
	CancelledBy  *uuid.UUID `json:"cancelled_by,omitempty"`
	RefundIssued bool       `json:"refund_issued"`
	RefundID     string     `json:"refund_id,omitempty"`
	OccurredAt   time.Time  `json:"occurred_at"`
}

// BookingRefundFailedEvent is published when the gateway rejects a refund.
type BookingRefundFailedEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	PaymentID  uuid.UUID `json:"payment_id"`
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurred_at"`
}

// PaymentCompletedEvent is published by the payment service after capture.
type PaymentCompletedEvent struct {
	PaymentID       uuid.UUID `json:"payment_id"`
	BookingID       uuid.UUID `json:"booking_id"`
	Amount          string    `json:"amount"`
	ChargeReference string    `json:"charge_reference"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// PaymentRefundedEvent is published by the payment service for refunds made
// outside this service (dashboard, disputes).
type PaymentRefundedEvent struct {
	PaymentID  uuid.UUID `json:"payment_id"`
	BookingID  uuid.UUID `json:"booking_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
