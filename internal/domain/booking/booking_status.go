package booking

import "fmt"

// ApprovalStatus records whether the provider accepted the booking request.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalAccepted ApprovalStatus = "accepted"
	ApprovalRejected ApprovalStatus = "rejected"
)

// IsValid returns true if the status is a recognized approval status.
func (s ApprovalStatus) IsValid() bool {
	switch s {
	case ApprovalPending, ApprovalAccepted, ApprovalRejected:
		return true
	}
	return false
}

func (s ApprovalStatus) String() string { return string(s) }

// ParseApprovalStatus converts a string to an ApprovalStatus.
func ParseApprovalStatus(s string) (ApprovalStatus, error) {
	status := ApprovalStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid approval status: %s", s)
	}
	return status, nil
}

// WorkStatus is the fulfillment progress of a booking.
type WorkStatus string

const (
	WorkNotStarted WorkStatus = "not_started"
	WorkInProgress WorkStatus = "in_progress"
	WorkCompleted  WorkStatus = "completed"
)

// IsValid returns true if the status is a recognized work status.
func (s WorkStatus) IsValid() bool {
	switch s {
	case WorkNotStarted, WorkInProgress, WorkCompleted:
		return true
	}
	return false
}

// IsTerminal reports whether no further work transition is possible.
func (s WorkStatus) IsTerminal() bool { return s == WorkCompleted }

func (s WorkStatus) String() string { return string(s) }

// ParseWorkStatus converts a string to a WorkStatus.
func ParseWorkStatus(s string) (WorkStatus, error) {
	status := WorkStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid work status: %s", s)
	}
	return status, nil
}

// PaymentStatus mirrors the settlement state of the linked payment.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// IsValid returns true if the status is a recognized payment status.
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentPending, PaymentCompleted, PaymentRefunded:
		return true
	}
	return false
}

func (s PaymentStatus) String() string { return string(s) }

// ParsePaymentStatus converts a string to a PaymentStatus.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	status := PaymentStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid payment status: %s", s)
	}
	return status, nil
}

// RefundState tracks the two-phase refund issued on cancellation.
type RefundState string

const (
	RefundNone    RefundState = "none"
	RefundPending RefundState = "pending"
	RefundDone    RefundState = "refunded"
	RefundFailed  RefundState = "failed"
)

// IsValid returns true if the state is recognized.
func (s RefundState) IsValid() bool {
	switch s {
	case RefundNone, RefundPending, RefundDone, RefundFailed:
		return true
	}
	return false
}

// ParseRefundState converts a string to a RefundState; empty means none.
func ParseRefundState(s string) (RefundState, error) {
	if s == "" {
		return RefundNone, nil
	}
	state := RefundState(s)
	if !state.IsValid() {
		return "", fmt.Errorf("invalid refund state: %s", s)
	}
	return state, nil
}
