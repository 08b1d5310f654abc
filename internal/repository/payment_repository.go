package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	paymentDomain "github.com/fixgo-platform/service-booking/internal/domain/payment"
	"github.com/fixgo-platform/service-booking/internal/platform/apperror"
)

// PaymentModel is the GORM model for the payments table. The payment service
// owns these rows; this service reads amounts and writes refund outcomes.
type PaymentModel struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey"`
	BookingID       uuid.UUID  `gorm:"type:uuid;index;not null"`
	Status          string     `gorm:"not null;size:20"`
	Amount          *string    `gorm:"type:numeric"`
	Currency        string     `gorm:"not null;size:3;default:'usd'"`
	ChargeReference *string    `gorm:"size:255"`
	RefundReference *string    `gorm:"size:255"`
	RefundedAt      *time.Time `gorm:""`
	Version         int64      `gorm:"not null;default:1"`
	CreatedAt       time.Time  `gorm:"not null"`
	UpdatedAt       time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (PaymentModel) TableName() string { return "payments" }

// GormPaymentRepository implements PaymentRepository using GORM.
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository.
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByID retrieves a payment by ID.
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*paymentDomain.Payment, error) {
	return r.findByID(r.db.WithContext(ctx), id)
}

// FindByIDForUpdate retrieves a payment and locks its row.
func (r *GormPaymentRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*paymentDomain.Payment, error) {
	return r.findByID(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormPaymentRepository) findByID(db *gorm.DB, id uuid.UUID) (*paymentDomain.Payment, error) {
	var model PaymentModel
	if err := db.Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFoundError("Payment", id.String())
		}
		return nil, fmt.Errorf("failed to find payment by ID: %w", err)
	}
	return toPaymentDomain(&model)
}

// Update writes the refund outcome with optimistic locking.
func (r *GormPaymentRepository) Update(ctx context.Context, p *paymentDomain.Payment) error {
	s := p.Snapshot()
	result := r.db.WithContext(ctx).
		Model(&PaymentModel{}).
		Where("id = ? AND version = ?", s.ID, s.Version-1).
		Updates(map[string]interface{}{
			"status":           string(s.Status),
			"refund_reference": s.RefundReference,
			"refunded_at":      s.RefundedAt,
			"version":          s.Version,
			"updated_at":       s.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update payment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NewConflictError("payment was modified by another transaction")
	}
	return nil
}

func toPaymentDomain(m *PaymentModel) (*paymentDomain.Payment, error) {
	status := paymentDomain.Status(m.Status)
	if !status.IsValid() {
		return nil, apperror.NewInvalidStateError(
			fmt.Sprintf("payment %s has unknown status %q", m.ID, m.Status))
	}
	return paymentDomain.Reconstruct(paymentDomain.Snapshot{
		ID:              m.ID,
		BookingID:       m.BookingID,
		Status:          status,
		Amount:          m.Amount,
		Currency:        m.Currency,
		ChargeReference: m.ChargeReference,
		RefundReference: m.RefundReference,
		RefundedAt:      m.RefundedAt,
		Version:         m.Version,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}), nil
}
