package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/fixgo-platform/service-booking/internal/application"
)

// GormUnitOfWork runs application work inside a database transaction.
type GormUnitOfWork struct {
	db *gorm.DB
}

// NewGormUnitOfWork creates a new GormUnitOfWork.
func NewGormUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

// Do commits when fn returns nil and rolls back otherwise. The stores handed
// to fn are bound to the transaction.
func (u *GormUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, tx application.Stores) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, application.Stores{
			Bookings: NewGormBookingRepository(tx),
			Payments: NewGormPaymentRepository(tx),
			Users:    NewGormUserRepository(tx),
		})
	})
}
