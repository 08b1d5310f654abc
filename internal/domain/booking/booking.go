package booking

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fixgo-platform/service-booking/internal/platform/apperror"
)

const bookingNumberChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Location is the optional geographic position of the service address.
type Location struct {
	Latitude  float64
	Longitude float64
}

func (l *Location) inRange() bool {
	if l == nil {
		return true
	}
	return l.Latitude >= -90 && l.Latitude <= 90 && l.Longitude >= -180 && l.Longitude <= 180
}

// Booking is the aggregate root for the booking domain.
type Booking struct {
	id            uuid.UUID
	bookingNumber string
	userID        uuid.UUID
	providerID    uuid.UUID
	categoryID    uuid.UUID
	vehicleTypeID *uuid.UUID
	vehicleID     *uuid.UUID
	paymentID     *uuid.UUID

	description     string
	address         string
	location        *Location
	vehicleImageURL string
	scheduledAt     *time.Time

	approvalStatus ApprovalStatus
	workStatus     WorkStatus
	paymentStatus  PaymentStatus
	refundState    RefundState

	settledAt   *time.Time
	cancelledAt *time.Time

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// generateBookingNumber creates a booking number in the format "FX-XXXXXX".
func generateBookingNumber() (string, error) {
	result := make([]byte, 6)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(bookingNumberChars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate booking number: %w", err)
		}
		result[i] = bookingNumberChars[n.Int64()]
	}
	return "FX-" + string(result), nil
}

// NewBookingParams holds the customer-supplied data for a new booking.
type NewBookingParams struct {
	UserID          uuid.UUID
	ProviderID      uuid.UUID
	CategoryID      uuid.UUID
	VehicleTypeID   *uuid.UUID
	VehicleID       *uuid.UUID
	Description     string
	Address         string
	Location        *Location
	VehicleImageURL string
	ScheduledAt     *time.Time
}

// NewBooking creates a booking in (pending, not_started, pending).
func NewBooking(p NewBookingParams) (*Booking, error) {
	if p.UserID == uuid.Nil {
		return nil, apperror.NewValidationError("user ID is required")
	}
	if p.ProviderID == uuid.Nil {
		return nil, apperror.NewValidationError("provider ID is required")
	}
	if p.CategoryID == uuid.Nil {
		return nil, apperror.NewValidationError("category ID is required")
	}
	if p.ProviderID == p.UserID {
		return nil, apperror.NewValidationError("provider cannot book their own service")
	}
	if strings.TrimSpace(p.Address) == "" {
		return nil, apperror.NewValidationError("address is required")
	}
	if !p.Location.inRange() {
		return nil, apperror.NewValidationError("location out of range")
	}

	bookingNumber, err := generateBookingNumber()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Booking{
		id:              uuid.New(),
		bookingNumber:   bookingNumber,
		userID:          p.UserID,
		providerID:      p.ProviderID,
		categoryID:      p.CategoryID,
		vehicleTypeID:   p.VehicleTypeID,
		vehicleID:       p.VehicleID,
		description:     strings.TrimSpace(p.Description),
		address:         strings.TrimSpace(p.Address),
		location:        p.Location,
		vehicleImageURL: p.VehicleImageURL,
		scheduledAt:     p.ScheduledAt,
		approvalStatus:  ApprovalPending,
		workStatus:      WorkNotStarted,
		paymentStatus:   PaymentPending,
		refundState:     RefundNone,
		version:         1,
		createdAt:       now,
		updatedAt:       now,
	}, nil
}

// Snapshot carries persisted booking state into ReconstructBooking.
type Snapshot struct {
	ID              uuid.UUID
	BookingNumber   string
	UserID          uuid.UUID
	ProviderID      uuid.UUID
	CategoryID      uuid.UUID
	VehicleTypeID   *uuid.UUID
	VehicleID       *uuid.UUID
	PaymentID       *uuid.UUID
	Description     string
	Address         string
	Location        *Location
	VehicleImageURL string
	ScheduledAt     *time.Time
	ApprovalStatus  ApprovalStatus
	WorkStatus      WorkStatus
	PaymentStatus   PaymentStatus
	RefundState     RefundState
	SettledAt       *time.Time
	CancelledAt     *time.Time
	Version         int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(s Snapshot) *Booking {
	return &Booking{
		id:              s.ID,
		bookingNumber:   s.BookingNumber,
		userID:          s.UserID,
		providerID:      s.ProviderID,
		categoryID:      s.CategoryID,
		vehicleTypeID:   s.VehicleTypeID,
		vehicleID:       s.VehicleID,
		paymentID:       s.PaymentID,
		description:     s.Description,
		address:         s.Address,
		location:        s.Location,
		vehicleImageURL: s.VehicleImageURL,
		scheduledAt:     s.ScheduledAt,
		approvalStatus:  s.ApprovalStatus,
		workStatus:      s.WorkStatus,
		paymentStatus:   s.PaymentStatus,
		refundState:     s.RefundState,
		settledAt:       s.SettledAt,
		cancelledAt:     s.CancelledAt,
		version:         s.Version,
		createdAt:       s.CreatedAt,
		updatedAt:       s.UpdatedAt,
	}
}

// Snapshot exports the booking state for persistence.
func (b *Booking) Snapshot() Snapshot {
	return Snapshot{
		ID:              b.id,
		BookingNumber:   b.bookingNumber,
		UserID:          b.userID,
		ProviderID:      b.providerID,
		CategoryID:      b.categoryID,
		VehicleTypeID:   b.vehicleTypeID,
		VehicleID:       b.vehicleID,
		PaymentID:       b.paymentID,
		Description:     b.description,
		Address:         b.address,
		Location:        b.location,
		VehicleImageURL: b.vehicleImageURL,
		ScheduledAt:     b.scheduledAt,
		ApprovalStatus:  b.approvalStatus,
		WorkStatus:      b.workStatus,
		PaymentStatus:   b.paymentStatus,
		RefundState:     b.refundState,
		SettledAt:       b.settledAt,
		CancelledAt:     b.cancelledAt,
		Version:         b.version,
		CreatedAt:       b.createdAt,
		UpdatedAt:       b.updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// BookingNumber returns the human-readable booking number.
func (b *Booking) BookingNumber() string { return b.bookingNumber }

// UserID returns the customer who made the booking.
func (b *Booking) UserID() uuid.UUID { return b.userID }

// ProviderID returns the assigned provider.
func (b *Booking) ProviderID() uuid.UUID { return b.providerID }

// CategoryID returns the requested service category.
func (b *Booking) CategoryID() uuid.UUID { return b.categoryID }

// VehicleTypeID returns the vehicle type the service is for, or nil.
func (b *Booking) VehicleTypeID() *uuid.UUID { return b.vehicleTypeID }

// VehicleID returns the customer's vehicle, or nil.
func (b *Booking) VehicleID() *uuid.UUID { return b.vehicleID }

// Description returns the customer's description of the problem.
func (b *Booking) Description() string { return b.description }

// Address returns the service address.
func (b *Booking) Address() string { return b.address }

// Location returns the coordinates of the address, or nil if unknown.
func (b *Booking) Location() *Location { return b.location }

// VehicleImageURL returns the vehicle photo URL, or an empty string.
func (b *Booking) VehicleImageURL() string { return b.vehicleImageURL }

// ScheduledAt returns the requested service time, or nil for as soon as possible.
func (b *Booking) ScheduledAt() *time.Time { return b.scheduledAt }

// SettledAt returns when the provider was credited, or nil.
func (b *Booking) SettledAt() *time.Time { return b.settledAt }

// CancelledAt returns when the booking was first cancelled, or nil.
func (b *Booking) CancelledAt() *time.Time { return b.cancelledAt }

// ApprovalStatus returns the approval facet.
func (b *Booking) ApprovalStatus() ApprovalStatus { return b.approvalStatus }

// WorkStatus returns the fulfillment facet.
func (b *Booking) WorkStatus() WorkStatus { return b.workStatus }

// PaymentStatus returns the booking-side payment facet.
func (b *Booking) PaymentStatus() PaymentStatus { return b.paymentStatus }

// RefundState returns the progress of a cancellation refund.
func (b *Booking) RefundState() RefundState { return b.refundState }

// PaymentID returns the linked payment, or nil before the customer pays.
func (b *Booking) PaymentID() *uuid.UUID { return b.paymentID }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// IsSettled reports whether the provider has been credited for this booking.
func (b *Booking) IsSettled() bool { return b.settledAt != nil }

// IsCancelled reports whether the booking went through a cancellation.
func (b *Booking) IsCancelled() bool { return b.cancelledAt != nil || b.refundState != RefundNone }

// IsOwnedBy reports whether userID is the customer who made the booking.
func (b *Booking) IsOwnedBy(userID uuid.UUID) bool { return b.userID == userID }

// IsAssignedTo reports whether providerID is the booking's provider.
func (b *Booking) IsAssignedTo(providerID uuid.UUID) bool { return b.providerID == providerID }

// --- Behavior ---

// SetApprovalStatus sets the approval facet. Any valid value is accepted
// except while a cancellation refund is in flight.
func (b *Booking) SetApprovalStatus(status ApprovalStatus) error {
	if !status.IsValid() {
		return apperror.NewValidationError(fmt.Sprintf("invalid approval status: %s", status))
	}
	if b.refundState == RefundPending {
		return apperror.NewConflictError("approval cannot change while a refund is in progress")
	}
	b.approvalStatus = status
	b.touch()
	return nil
}

// SetPaymentStatus sets the payment facet. It never settles. The facet is
// owned by the refund while one is in flight.
func (b *Booking) SetPaymentStatus(status PaymentStatus) error {
	if !status.IsValid() {
		return apperror.NewValidationError(fmt.Sprintf("invalid payment status: %s", status))
	}
	if b.refundState == RefundPending {
		return apperror.NewConflictError("payment status cannot change while a refund is in progress")
	}
	b.paymentStatus = status
	b.touch()
	return nil
}

// LinkPayment attaches the payment created by the payment module.
func (b *Booking) LinkPayment(paymentID uuid.UUID) {
	b.paymentID = &paymentID
	b.touch()
}

// DetailsUpdate holds the customer-editable fields of a booking. Nil fields
// are left unchanged. Provider and payment are not editable.
type DetailsUpdate struct {
	CategoryID      *uuid.UUID
	VehicleTypeID   *uuid.UUID
	VehicleID       *uuid.UUID
	Description     *string
	Address         *string
	Location        *Location
	VehicleImageURL *string
	ScheduledAt     *time.Time
}

// UpdateDetails edits the request while approval is still pending.
func (b *Booking) UpdateDetails(u DetailsUpdate) error {
	if b.approvalStatus != ApprovalPending || b.IsCancelled() {
		return apperror.NewInvalidTransitionError(
			fmt.Sprintf("booking cannot be edited while approval is %s", b.approvalStatus))
	}
	if u.CategoryID != nil && *u.CategoryID == uuid.Nil {
		return apperror.NewValidationError("category ID is required")
	}
	if u.Address != nil && strings.TrimSpace(*u.Address) == "" {
		return apperror.NewValidationError("address is required")
	}
	if !u.Location.inRange() {
		return apperror.NewValidationError("location out of range")
	}

	if u.CategoryID != nil {
		b.categoryID = *u.CategoryID
	}
	if u.VehicleTypeID != nil {
		b.vehicleTypeID = u.VehicleTypeID
	}
	if u.VehicleID != nil {
		b.vehicleID = u.VehicleID
	}
	if u.Description != nil {
		b.description = strings.TrimSpace(*u.Description)
	}
	if u.Address != nil {
		b.address = strings.TrimSpace(*u.Address)
	}
	if u.Location != nil {
		b.location = u.Location
	}
	if u.VehicleImageURL != nil {
		b.vehicleImageURL = *u.VehicleImageURL
	}
	if u.ScheduledAt != nil {
		b.scheduledAt = u.ScheduledAt
	}
	b.touch()
	return nil
}

// CheckWorkTransition validates a move to status against the other facets
// without changing anything.
func (b *Booking) CheckWorkTransition(status WorkStatus) error {
	if !status.IsValid() {
		return apperror.NewValidationError(fmt.Sprintf("invalid work status: %s", status))
	}
	if b.IsCancelled() {
		return apperror.NewInvalidTransitionError("work status cannot change on a cancelled booking")
	}
	if b.workStatus == WorkCompleted && status == WorkCompleted {
		return apperror.NewConflictError("booking is already completed")
	}
	if b.approvalStatus != ApprovalAccepted {
		return apperror.NewInvalidTransitionError(
			fmt.Sprintf("work status cannot change while approval is %s", b.approvalStatus))
	}
	if b.workStatus == WorkCompleted {
		return apperror.NewInvalidTransitionError(
			fmt.Sprintf("completed booking cannot move back to %s", status))
	}
	if status == WorkCompleted {
		if b.paymentStatus != PaymentCompleted {
			return apperror.NewForbiddenError(
				fmt.Sprintf("booking cannot be completed while payment is %s", b.paymentStatus))
		}
		if b.IsSettled() {
			return apperror.NewConflictError("booking is already settled")
		}
	}
	return nil
}

// ChangeWorkStatus applies a non-completing work transition. It returns false
// when the booking is already in status. Completion goes through Complete.
func (b *Booking) ChangeWorkStatus(status WorkStatus) (bool, error) {
	if status == WorkCompleted {
		return false, apperror.NewInvalidTransitionError("completion requires settlement")
	}
	if err := b.CheckWorkTransition(status); err != nil {
		return false, err
	}
	if b.workStatus == status {
		return false, nil
	}
	b.workStatus = status
	b.touch()
	return true, nil
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}

func (b *Booking) touch() {
	b.updatedAt = time.Now().UTC()
}
