package application

import (
	"time"

	"github.com/google/uuid"

	bookingDomain "github.com/fixgo-platform/service-booking/internal/domain/booking"
	photoDomain "github.com/fixgo-platform/service-booking/internal/domain/photo"
)

// CreateBookingRequest holds the data needed to create a new booking.
type CreateBookingRequest struct {
	ProviderID      uuid.UUID  `json:"provider_id" binding:"required"`
	CategoryID      uuid.UUID  `json:"category_id" binding:"required"`
	VehicleTypeID   *uuid.UUID `json:"vehicle_type_id"`
	VehicleID       *uuid.UUID `json:"vehicle_id"`
	Description     string     `json:"description" binding:"max=2000"`
	Address         string     `json:"address" binding:"required,max=500"`
	Latitude        *float64   `json:"latitude" binding:"omitempty,latitude"`
	Longitude       *float64   `json:"longitude" binding:"omitempty,longitude"`
	ScheduledAt     *time.Time `json:"scheduled_at"`
	VehicleImageURL string     `json:"vehicle_image_url" binding:"omitempty,url"`
	DamageImageURLs []string   `json:"damage_image_urls" binding:"max=10,dive,url"`
}

// UpdateBookingRequest holds the customer-editable booking fields. Omitted
// fields are left unchanged.
type UpdateBookingRequest struct {
	CategoryID      *uuid.UUID `json:"category_id"`
	VehicleTypeID   *uuid.UUID `json:"vehicle_type_id"`
	VehicleID       *uuid.UUID `json:"vehicle_id"`
	Description     *string    `json:"description" binding:"omitempty,max=2000"`
	Address         *string    `json:"address" binding:"omitempty,max=500"`
	Latitude        *float64   `json:"latitude" binding:"omitempty,latitude"`
	Longitude       *float64   `json:"longitude" binding:"omitempty,longitude"`
	ScheduledAt     *time.Time `json:"scheduled_at"`
	VehicleImageURL *string    `json:"vehicle_image_url" binding:"omitempty,url"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID              uuid.UUID  `json:"id"`
	BookingNumber   string     `json:"booking_number"`
	UserID          uuid.UUID  `json:"user_id"`
	ProviderID      uuid.UUID  `json:"provider_id"`
	CategoryID      uuid.UUID  `json:"category_id"`
	VehicleTypeID   *uuid.UUID `json:"vehicle_type_id,omitempty"`
	VehicleID       *uuid.UUID `json:"vehicle_id,omitempty"`
	PaymentID       *uuid.UUID `json:"payment_id,omitempty"`
	Description     string     `json:"description,omitempty"`
	Address         string     `json:"address"`
	Latitude        *float64   `json:"latitude,omitempty"`
	Longitude       *float64   `json:"longitude,omitempty"`
	VehicleImageURL string     `json:"vehicle_image_url,omitempty"`
	ScheduledAt     *time.Time `json:"scheduled_at,omitempty"`
	ApprovalStatus  string     `json:"approval_status"`
	WorkStatus      string     `json:"work_status"`
	PaymentStatus   string     `json:"payment_status"`
	RefundState     string     `json:"refund_state"`
	SettledAt       *time.Time `json:"settled_at,omitempty"`
	CancelledAt     *time.Time `json:"cancelled_at,omitempty"`
	Photos          []PhotoDTO `json:"photos,omitempty"`
	Version         int64      `json:"version"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// CancelResult is returned by CancelBooking.
type CancelResult struct {
	Message      string     `json:"message"`
	RefundIssued bool       `json:"refund_issued"`
	Booking      BookingDTO `json:"booking"`
}

// LocationDTO is a geolocated booking for map views.
type LocationDTO struct {
	ID             uuid.UUID `json:"id"`
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	ApprovalStatus string    `json:"approval_status"`
	WorkStatus     string    `json:"work_status"`
}

// BookingStatsDTO holds booking statistics for the admin dashboard.
type BookingStatsDTO struct {
	TotalBookings int64            `json:"total_bookings"`
	ByApproval    map[string]int64 `json:"by_approval_status"`
	ByWork        map[string]int64 `json:"by_work_status"`
	ByPayment     map[string]int64 `json:"by_payment_status"`
}

// PhotoDTO is the API response representation of a booking photo.
type PhotoDTO struct {
	ID         uuid.UUID `json:"id"`
	BookingID  uuid.UUID `json:"booking_id"`
	UploadedBy uuid.UUID `json:"uploaded_by"`
	PhotoType  string    `json:"photo_type"`
	PhotoURL   string    `json:"photo_url"`
	Caption    string    `json:"caption,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	dto := BookingDTO{
		ID:              bk.ID(),
		BookingNumber:   bk.BookingNumber(),
		UserID:          bk.UserID(),
		ProviderID:      bk.ProviderID(),
		CategoryID:      bk.CategoryID(),
		VehicleTypeID:   bk.VehicleTypeID(),
		VehicleID:       bk.VehicleID(),
		PaymentID:       bk.PaymentID(),
		Description:     bk.Description(),
		Address:         bk.Address(),
		VehicleImageURL: bk.VehicleImageURL(),
		ScheduledAt:     bk.ScheduledAt(),
		ApprovalStatus:  string(bk.ApprovalStatus()),
		WorkStatus:      string(bk.WorkStatus()),
		PaymentStatus:   string(bk.PaymentStatus()),
		RefundState:     string(bk.RefundState()),
		SettledAt:       bk.SettledAt(),
		CancelledAt:     bk.CancelledAt(),
		Version:         bk.Version(),
		CreatedAt:       bk.CreatedAt(),
		UpdatedAt:       bk.UpdatedAt(),
	}
	if loc := bk.Location(); loc != nil {
		lat, lng := loc.Latitude, loc.Longitude
		dto.Latitude, dto.Longitude = &lat, &lng
	}
	return dto
}

func toBookingDTOs(bookings []*bookingDomain.Booking) []BookingDTO {
	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}
	return dtos
}

func toPhotoDTO(p *photoDomain.BookingPhoto) PhotoDTO {
	return PhotoDTO{
		ID:         p.ID(),
		BookingID:  p.BookingID(),
		UploadedBy: p.UploadedBy(),
		PhotoType:  string(p.PhotoType()),
		PhotoURL:   p.PhotoURL(),
		Caption:    p.Caption(),
		CreatedAt:  p.CreatedAt(),
	}
}
