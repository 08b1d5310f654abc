package application

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingDomain "github.com/fixgo-platform/service-booking/internal/domain/booking"
	photoDomain "github.com/fixgo-platform/service-booking/internal/domain/photo"
	"github.com/fixgo-platform/service-booking/internal/platform/apperror"
)

// AddPhotoRequest holds the data to attach a photo to a booking.
type AddPhotoRequest struct {
	PhotoType string `json:"photo_type" binding:"required,oneof=damage vehicle result"`
	PhotoURL  string `json:"photo_url" binding:"required,url"`
	Caption   string `json:"caption" binding:"max=500"`
}

// PhotoService handles booking photo use cases.
type PhotoService struct {
	repo     photoDomain.PhotoRepository
	bookings bookingDomain.BookingRepository
	logger   *zap.Logger
}

// NewPhotoService creates a new PhotoService.
func NewPhotoService(repo photoDomain.PhotoRepository, bookings bookingDomain.BookingRepository, logger *zap.Logger) *PhotoService {
	return &PhotoService{repo: repo, bookings: bookings, logger: logger}
}

// AddPhoto attaches a photo. Only the booking's customer and provider may add photos.
func (s *PhotoService) AddPhoto(ctx context.Context, bookingID, uploaderID uuid.UUID, req AddPhotoRequest) (*PhotoDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if uploaderID != bk.UserID() && uploaderID != bk.ProviderID() {
		return nil, apperror.NewForbiddenError("only the customer or provider of this booking can add photos")
	}

	photo, err := photoDomain.NewBookingPhoto(
		bookingID,
		uploaderID,
		photoDomain.PhotoType(req.PhotoType),
		req.PhotoURL,
		req.Caption,
	)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, photo); err != nil {
		return nil, err
	}

	s.logger.Info("photo added",
		zap.String("booking_id", bookingID.String()),
		zap.String("photo_type", req.PhotoType),
	)

	dto := toPhotoDTO(photo)
	return &dto, nil
}

// GetBookingPhotos returns all photos for a booking.
func (s *PhotoService) GetBookingPhotos(ctx context.Context, bookingID uuid.UUID) ([]PhotoDTO, error) {
	if _, err := s.bookings.FindByID(ctx, bookingID); err != nil {
		return nil, err
	}
	photos, err := s.repo.FindByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	dtos := make([]PhotoDTO, len(photos))
	for i, p := range photos {
		dtos[i] = toPhotoDTO(p)
	}
	return dtos, nil
}
