package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	photoDomain "github.com/fixgo-platform/service-booking/internal/domain/photo"
)

// PhotoModel is the GORM model for the booking_photos table.
type PhotoModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	BookingID  uuid.UUID `gorm:"type:uuid;not null;index"`
	UploadedBy uuid.UUID `gorm:"type:uuid;not null"`
	PhotoType  string    `gorm:"type:varchar(20);not null"`
	PhotoURL   string    `gorm:"type:text;not null"`
	Caption    string    `gorm:"type:text"`
	CreatedAt  time.Time `gorm:"not null"`
}

// TableName sets the table name.
func (PhotoModel) TableName() string { return "booking_photos" }

// GormPhotoRepository implements PhotoRepository using GORM.
type GormPhotoRepository struct {
	db *gorm.DB
}

// NewGormPhotoRepository creates a new GormPhotoRepository.
func NewGormPhotoRepository(db *gorm.DB) *GormPhotoRepository {
	return &GormPhotoRepository{db: db}
}

// Save persists a new booking photo.
func (r *GormPhotoRepository) Save(ctx context.Context, photo *photoDomain.BookingPhoto) error {
	model := toPhotoModel(photo)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("failed to save photo: %w", err)
	}
	return nil
}

// SaveAll persists several photos in one insert.
func (r *GormPhotoRepository) SaveAll(ctx context.Context, photos []*photoDomain.BookingPhoto) error {
	if len(photos) == 0 {
		return nil
	}
	models := make([]PhotoModel, len(photos))
	for i, p := range photos {
		models[i] = toPhotoModel(p)
	}
	if err := r.db.WithContext(ctx).Create(&models).Error; err != nil {
		return fmt.Errorf("failed to save photos: %w", err)
	}
	return nil
}

// FindByBookingID returns all photos for a booking, oldest first.
func (r *GormPhotoRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*photoDomain.BookingPhoto, error) {
	var models []PhotoModel
	if err := r.db.WithContext(ctx).Where("booking_id = ?", bookingID).Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find booking photos: %w", err)
	}

	photos := make([]*photoDomain.BookingPhoto, len(models))
	for i := range models {
		photos[i] = toPhotoDomain(&models[i])
	}
	return photos, nil
}

func toPhotoModel(p *photoDomain.BookingPhoto) PhotoModel {
	return PhotoModel{
		ID:         p.ID(),
		BookingID:  p.BookingID(),
		UploadedBy: p.UploadedBy(),
		PhotoType:  string(p.PhotoType()),
		PhotoURL:   p.PhotoURL(),
		Caption:    p.Caption(),
		CreatedAt:  p.CreatedAt(),
	}
}

func toPhotoDomain(m *PhotoModel) *photoDomain.BookingPhoto {
	return photoDomain.Reconstruct(
		m.ID,
		m.BookingID,
		m.UploadedBy,
		photoDomain.PhotoType(m.PhotoType),
		m.PhotoURL,
		m.Caption,
		m.CreatedAt,
	)
}
