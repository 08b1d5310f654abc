package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	bookingDomain "github.com/fixgo-platform/service-booking/internal/domain/booking"
	"github.com/fixgo-platform/service-booking/internal/platform/paging"
)

// GetBooking retrieves a single booking with its photos. Only the booking's
// customer, its provider and admins may see it.
func (s *BookingService) GetBooking(ctx context.Context, actor Actor, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := requireParticipant(bk, actor); err != nil {
		return nil, err
	}
	return s.withPhotos(ctx, bk)
}

func (s *BookingService) withPhotos(ctx context.Context, bk *bookingDomain.Booking) (*BookingDTO, error) {
	photos, err := s.photos.FindByBookingID(ctx, bk.ID())
	if err != nil {
		return nil, fmt.Errorf("failed to load booking photos: %w", err)
	}

	result := toBookingDTO(bk)
	for _, p := range photos {
		result.Photos = append(result.Photos, toPhotoDTO(p))
	}
	return &result, nil
}

// ListAllBookings returns a page of all bookings ordered by creation time.
func (s *BookingService) ListAllBookings(ctx context.Context, req paging.Request) (*paging.Result[BookingDTO], error) {
	bookings, total, err := s.repo.ListAll(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	result := paging.NewResult(toBookingDTOs(bookings), total, req.Page, req.Limit)
	return &result, nil
}

// ListCustomerBookings returns a customer's bookings, newest first.
func (s *BookingService) ListCustomerBookings(ctx context.Context, userID uuid.UUID) ([]BookingDTO, error) {
	bookings, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list customer bookings: %w", err)
	}
	return toBookingDTOs(bookings), nil
}

// ListPendingBookings returns the provider's work queue: bookings whose
// approval_status is accepted. Requests still awaiting a decision are listed
// by ListAwaitingBookings.
func (s *BookingService) ListPendingBookings(ctx context.Context, providerID uuid.UUID) ([]BookingDTO, error) {
	bookings, err := s.repo.FindByProviderAndApproval(ctx, providerID, bookingDomain.ApprovalAccepted)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending bookings: %w", err)
	}
	return toBookingDTOs(bookings), nil
}

// ListAwaitingBookings returns a provider's requests that still need an
// accept or reject decision.
func (s *BookingService) ListAwaitingBookings(ctx context.Context, providerID uuid.UUID) ([]BookingDTO, error) {
	bookings, err := s.repo.FindByProviderAndApproval(ctx, providerID, bookingDomain.ApprovalPending)
	if err != nil {
		return nil, fmt.Errorf("failed to list awaiting bookings: %w", err)
	}
	return toBookingDTOs(bookings), nil
}

// ListCompletedBookings returns a provider's accepted bookings whose work is completed.
func (s *BookingService) ListCompletedBookings(ctx context.Context, providerID uuid.UUID) ([]BookingDTO, error) {
	bookings, err := s.repo.FindCompletedByProvider(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list completed bookings: %w", err)
	}
	return toBookingDTOs(bookings), nil
}

// ListBookingLocations returns all bookings that have coordinates.
func (s *BookingService) ListBookingLocations(ctx context.Context) ([]LocationDTO, error) {
	points, err := s.repo.FindLocations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list booking locations: %w", err)
	}
	dtos := make([]LocationDTO, len(points))
	for i, p := range points {
		dtos[i] = LocationDTO{
			ID:             p.ID,
			Latitude:       p.Latitude,
			Longitude:      p.Longitude,
			ApprovalStatus: string(p.ApprovalStatus),
			WorkStatus:     string(p.WorkStatus),
		}
	}
	return dtos, nil
}

// --- Admin methods ---

// GetBookingStats returns aggregate booking statistics (admin).
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	stats, err := s.repo.CountStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}

	dto := &BookingStatsDTO{
		TotalBookings: stats.Total,
		ByApproval:    make(map[string]int64, len(stats.ByApproval)),
		ByWork:        make(map[string]int64, len(stats.ByWork)),
		ByPayment:     make(map[string]int64, len(stats.ByPayment)),
	}
	for k, v := range stats.ByApproval {
		dto.ByApproval[string(k)] = v
	}
	for k, v := range stats.ByWork {
		dto.ByWork[string(k)] = v
	}
	for k, v := range stats.ByPayment {
		dto.ByPayment[string(k)] = v
	}
	return dto, nil
}
