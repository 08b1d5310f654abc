package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	bookingDomain "github.com/fixgo-platform/service-booking/internal/domain/booking"
	"github.com/fixgo-platform/service-booking/internal/platform/apperror"
	"github.com/fixgo-platform/service-booking/internal/platform/paging"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey"`
	BookingNumber   string     `gorm:"uniqueIndex;not null;size:20"`
	UserID          uuid.UUID  `gorm:"type:uuid;index;not null"`
	ProviderID      uuid.UUID  `gorm:"type:uuid;index;not null"`
	CategoryID      uuid.UUID  `gorm:"type:uuid;not null"`
	VehicleTypeID   *uuid.UUID `gorm:"type:uuid"`
	VehicleID       *uuid.UUID `gorm:"type:uuid"`
	PaymentID       *uuid.UUID `gorm:"type:uuid"`
	Description     string     `gorm:"type:text"`
	Address         string     `gorm:"size:500;not null"`
	Latitude        *float64   `gorm:"type:double precision"`
	Longitude       *float64   `gorm:"type:double precision"`
	VehicleImageURL string     `gorm:"type:text"`
	ScheduledAt     *time.Time `gorm:""`
	ApprovalStatus  string     `gorm:"not null;size:20;index"`
	WorkStatus      string     `gorm:"not null;size:20;index"`
	PaymentStatus   string     `gorm:"not null;size:20"`
	RefundState     string     `gorm:"not null;size:20;default:'none'"`
	SettledAt       *time.Time `gorm:""`
	CancelledAt     *time.Time `gorm:""`
	Version         int64      `gorm:"not null;default:1"`
	CreatedAt       time.Time  `gorm:"not null"`
	UpdatedAt       time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	return r.findByID(r.db.WithContext(ctx), id)
}

// FindByIDForUpdate retrieves a booking with SELECT ... FOR UPDATE. It only
// locks when the repository is bound to a transaction.
func (r *GormBookingRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	return r.findByID(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormBookingRepository) findByID(db *gorm.DB, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := db.Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFoundError("Booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// ListAll retrieves all bookings with pagination (admin).
func (r *GormBookingRepository) ListAll(ctx context.Context, req paging.Request) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "created_at"}, Desc: req.Order != paging.OrderAsc}).
		Offset(req.Offset()).
		Limit(req.Limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	bookings, err := toDomainBookings(models)
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// FindByUserID retrieves a customer's bookings, newest first.
func (r *GormBookingRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*bookingDomain.Booking, error) {
	return r.find(ctx, "user bookings", "user_id = ?", userID)
}

// FindByProviderAndApproval retrieves a provider's bookings in one approval status.
func (r *GormBookingRepository) FindByProviderAndApproval(ctx context.Context, providerID uuid.UUID, status bookingDomain.ApprovalStatus) ([]*bookingDomain.Booking, error) {
	return r.find(ctx, "provider bookings",
		"provider_id = ? AND approval_status = ?", providerID, string(status))
}

// FindCompletedByProvider retrieves a provider's accepted bookings with completed work.
func (r *GormBookingRepository) FindCompletedByProvider(ctx context.Context, providerID uuid.UUID) ([]*bookingDomain.Booking, error) {
	return r.find(ctx, "completed bookings",
		"provider_id = ? AND approval_status = ? AND work_status = ?",
		providerID, string(bookingDomain.ApprovalAccepted), string(bookingDomain.WorkCompleted))
}

func (r *GormBookingRepository) find(ctx context.Context, what, query string, args ...interface{}) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Where(query, args...).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find %s: %w", what, err)
	}
	return toDomainBookings(models)
}

// FindLocations retrieves the map projection of geolocated bookings.
func (r *GormBookingRepository) FindLocations(ctx context.Context) ([]bookingDomain.LocationPoint, error) {
	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Select("id", "latitude", "longitude", "approval_status", "work_status").
		Where("latitude IS NOT NULL AND longitude IS NOT NULL").
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find booking locations: %w", err)
	}

	points := make([]bookingDomain.LocationPoint, len(models))
	for i, m := range models {
		points[i] = bookingDomain.LocationPoint{
			ID:             m.ID,
			Latitude:       *m.Latitude,
			Longitude:      *m.Longitude,
			ApprovalStatus: bookingDomain.ApprovalStatus(m.ApprovalStatus),
			WorkStatus:     bookingDomain.WorkStatus(m.WorkStatus),
		}
	}
	return points, nil
}

// FindStuckRefunds retrieves bookings whose refund is pending since before the given time, oldest first.
func (r *GormBookingRepository) FindStuckRefunds(ctx context.Context, before time.Time, limit int) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Where("refund_state = ? AND updated_at < ?", string(bookingDomain.RefundPending), before).
		Order("updated_at ASC").
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find stuck refunds: %w", err)
	}
	return toDomainBookings(models)
}

// CountStats returns booking counts grouped per facet (admin).
func (r *GormBookingRepository) CountStats(ctx context.Context) (*bookingDomain.Stats, error) {
	stats := &bookingDomain.Stats{
		ByApproval: make(map[bookingDomain.ApprovalStatus]int64),
		ByWork:     make(map[bookingDomain.WorkStatus]int64),
		ByPayment:  make(map[bookingDomain.PaymentStatus]int64),
	}
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Count(&stats.Total).Error; err != nil {
		return nil, fmt.Errorf("failed to count bookings: %w", err)
	}

	for column, add := range map[string]func(string, int64){
		"approval_status": func(s string, n int64) { stats.ByApproval[bookingDomain.ApprovalStatus(s)] = n },
		"work_status":     func(s string, n int64) { stats.ByWork[bookingDomain.WorkStatus(s)] = n },
		"payment_status":  func(s string, n int64) { stats.ByPayment[bookingDomain.PaymentStatus(s)] = n },
	} {
		counts, err := r.countBy(ctx, column)
		if err != nil {
			return nil, err
		}
		for status, n := range counts {
			add(status, n)
		}
	}
	return stats, nil
}

func (r *GormBookingRepository) countBy(ctx context.Context, column string) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select(column + " AS status, count(*) AS count").
		Group(column).
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by %s: %w", column, err)
	}

	counts := make(map[string]int64, len(results))
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// Save persists a new booking.
func (r *GormBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

// Update persists changes to an existing booking with optimistic locking.
func (r *GormBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)

	// IncrementVersion was called before Update, so the stored row carries version-1.
	expectedVersion := bk.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"category_id":       model.CategoryID,
			"vehicle_type_id":   model.VehicleTypeID,
			"vehicle_id":        model.VehicleID,
			"payment_id":        model.PaymentID,
			"description":       model.Description,
			"address":           model.Address,
			"latitude":          model.Latitude,
			"longitude":         model.Longitude,
			"vehicle_image_url": model.VehicleImageURL,
			"scheduled_at":      model.ScheduledAt,
			"approval_status":   model.ApprovalStatus,
			"work_status":       model.WorkStatus,
			"payment_status":    model.PaymentStatus,
			"refund_state":      model.RefundState,
			"settled_at":        model.SettledAt,
			"cancelled_at":      model.CancelledAt,
			"version":           model.Version,
			"updated_at":        model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NewConflictError("booking was modified by another transaction")
	}
	return nil
}

// --- Conversion Helpers ---

func toBookingModel(bk *bookingDomain.Booking) *BookingModel {
	s := bk.Snapshot()
	m := &BookingModel{
		ID:              s.ID,
		BookingNumber:   s.BookingNumber,
		UserID:          s.UserID,
		ProviderID:      s.ProviderID,
		CategoryID:      s.CategoryID,
		VehicleTypeID:   s.VehicleTypeID,
		VehicleID:       s.VehicleID,
		PaymentID:       s.PaymentID,
		Description:     s.Description,
		Address:         s.Address,
		VehicleImageURL: s.VehicleImageURL,
		ScheduledAt:     s.ScheduledAt,
		ApprovalStatus:  string(s.ApprovalStatus),
		WorkStatus:      string(s.WorkStatus),
		PaymentStatus:   string(s.PaymentStatus),
		RefundState:     string(s.RefundState),
		SettledAt:       s.SettledAt,
		CancelledAt:     s.CancelledAt,
		Version:         s.Version,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
	if s.Location != nil {
		lat, lng := s.Location.Latitude, s.Location.Longitude
		m.Latitude, m.Longitude = &lat, &lng
	}
	return m
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	approval, err := bookingDomain.ParseApprovalStatus(m.ApprovalStatus)
	if err != nil {
		return nil, err
	}
	work, err := bookingDomain.ParseWorkStatus(m.WorkStatus)
	if err != nil {
		return nil, err
	}
	payment, err := bookingDomain.ParsePaymentStatus(m.PaymentStatus)
	if err != nil {
		return nil, err
	}
	refund, err := bookingDomain.ParseRefundState(m.RefundState)
	if err != nil {
		return nil, err
	}

	s := bookingDomain.Snapshot{
		ID:              m.ID,
		BookingNumber:   m.BookingNumber,
		UserID:          m.UserID,
		ProviderID:      m.ProviderID,
		CategoryID:      m.CategoryID,
		VehicleTypeID:   m.VehicleTypeID,
		VehicleID:       m.VehicleID,
		PaymentID:       m.PaymentID,
		Description:     m.Description,
		Address:         m.Address,
		VehicleImageURL: m.VehicleImageURL,
		ScheduledAt:     m.ScheduledAt,
		ApprovalStatus:  approval,
		WorkStatus:      work,
		PaymentStatus:   payment,
		RefundState:     refund,
		SettledAt:       m.SettledAt,
		CancelledAt:     m.CancelledAt,
		Version:         m.Version,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
	if m.Latitude != nil && m.Longitude != nil {
		s.Location = &bookingDomain.Location{Latitude: *m.Latitude, Longitude: *m.Longitude}
	}
	return bookingDomain.ReconstructBooking(s), nil
}

func toDomainBookings(models []BookingModel) ([]*bookingDomain.Booking, error) {
	bookings := make([]*bookingDomain.Booking, len(models))
	for i := range models {
		bk, err := toDomainBooking(&models[i])
		if err != nil {
			return nil, err
		}
		bookings[i] = bk
	}
	return bookings, nil
}
