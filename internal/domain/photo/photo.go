package photo

import (
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/fixgo-platform/service-booking/internal/platform/apperror"
)

// PhotoType tells what a booking photo shows.
type PhotoType string

const (
	// PhotoTypeDamage is a picture of the damage the customer wants fixed.
	PhotoTypeDamage PhotoType = "damage"
	// PhotoTypeVehicle is an overall picture of the vehicle.
	PhotoTypeVehicle PhotoType = "vehicle"
	// PhotoTypeResult is taken by the provider after the work.
	PhotoTypeResult PhotoType = "result"
)

// IsValid returns true if the photo type is recognized.
func (p PhotoType) IsValid() bool {
	switch p {
	case PhotoTypeDamage, PhotoTypeVehicle, PhotoTypeResult:
		return true
	}
	return false
}

// BookingPhoto is an image attached to a booking. Files are stored elsewhere;
// only the URL is kept here.
type BookingPhoto struct {
	id         uuid.UUID
	bookingID  uuid.UUID
	uploadedBy uuid.UUID
	photoType  PhotoType
	photoURL   string
	caption    string
	createdAt  time.Time
}

// NewBookingPhoto creates a new booking photo.
func NewBookingPhoto(bookingID, uploadedBy uuid.UUID, photoType PhotoType, photoURL, caption string) (*BookingPhoto, error) {
	if !photoType.IsValid() {
		return nil, apperror.NewValidationError("invalid photo type: " + string(photoType))
	}
	u, err := url.Parse(photoURL)
	if photoURL == "" || err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, apperror.NewValidationError("photo URL must be an absolute http(s) URL")
	}

	return &BookingPhoto{
		id:         uuid.New(),
		bookingID:  bookingID,
		uploadedBy: uploadedBy,
		photoType:  photoType,
		photoURL:   photoURL,
		caption:    caption,
		createdAt:  time.Now().UTC(),
	}, nil
}

// Reconstruct rebuilds a BookingPhoto from persistence.
func Reconstruct(id, bookingID, uploadedBy uuid.UUID, photoType PhotoType, photoURL, caption string, createdAt time.Time) *BookingPhoto {
	return &BookingPhoto{
		id:         id,
		bookingID:  bookingID,
		uploadedBy: uploadedBy,
		photoType:  photoType,
		photoURL:   photoURL,
		caption:    caption,
		createdAt:  createdAt,
	}
}

// Getters.
func (p *BookingPhoto) ID() uuid.UUID         { return p.id }
func (p *BookingPhoto) BookingID() uuid.UUID  { return p.bookingID }
func (p *BookingPhoto) UploadedBy() uuid.UUID { return p.uploadedBy }
func (p *BookingPhoto) PhotoType() PhotoType  { return p.photoType }
func (p *BookingPhoto) PhotoURL() string      { return p.photoURL }
func (p *BookingPhoto) Caption() string       { return p.caption }
func (p *BookingPhoto) CreatedAt() time.Time  { return p.createdAt }
