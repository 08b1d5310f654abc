package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/fixgo-platform/service-booking/internal/application"
	bookingDomain "github.com/fixgo-platform/service-booking/internal/domain/booking"
	"github.com/fixgo-platform/service-booking/internal/platform/paging"
)

type mockBookingService struct{ mock.Mock }

func (m *mockBookingService) bookingResult(args mock.Arguments) (*application.BookingDTO, error) {
	dto, _ := args.Get(0).(*application.BookingDTO)
	return dto, args.Error(1)
}

func (m *mockBookingService) listResult(args mock.Arguments) ([]application.BookingDTO, error) {
	list, _ := args.Get(0).([]application.BookingDTO)
	return list, args.Error(1)
}

func (m *mockBookingService) CreateBooking(ctx context.Context, userID uuid.UUID, req application.CreateBookingRequest) (*application.BookingDTO, error) {
	return m.bookingResult(m.Called(ctx, userID, req))
}

func (m *mockBookingService) GetBooking(ctx context.Context, actor application.Actor, bookingID uuid.UUID) (*application.BookingDTO, error) {
	return m.bookingResult(m.Called(ctx, actor, bookingID))
}

func (m *mockBookingService) UpdateBooking(ctx context.Context, userID, bookingID uuid.UUID, req application.UpdateBookingRequest) (*application.BookingDTO, error) {
	return m.bookingResult(m.Called(ctx, userID, bookingID, req))
}

func (m *mockBookingService) ListCustomerBookings(ctx context.Context, userID uuid.UUID) ([]application.BookingDTO, error) {
	return m.listResult(m.Called(ctx, userID))
}

func (m *mockBookingService) ListPendingBookings(ctx context.Context, providerID uuid.UUID) ([]application.BookingDTO, error) {
	return m.listResult(m.Called(ctx, providerID))
}

func (m *mockBookingService) ListAwaitingBookings(ctx context.Context, providerID uuid.UUID) ([]application.BookingDTO, error) {
	return m.listResult(m.Called(ctx, providerID))
}

func (m *mockBookingService) ListCompletedBookings(ctx context.Context, providerID uuid.UUID) ([]application.BookingDTO, error) {
	return m.listResult(m.Called(ctx, providerID))
}

func (m *mockBookingService) ListBookingLocations(ctx context.Context) ([]application.LocationDTO, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]application.LocationDTO)
	return list, args.Error(1)
}

func (m *mockBookingService) UpdateApprovalStatus(ctx context.Context, providerID, bookingID uuid.UUID, status bookingDomain.ApprovalStatus) (*application.BookingDTO, error) {
	return m.bookingResult(m.Called(ctx, providerID, bookingID, status))
}

func (m *mockBookingService) UpdateWorkStatus(ctx context.Context, providerID, bookingID uuid.UUID, status bookingDomain.WorkStatus) (*application.BookingDTO, error) {
	return m.bookingResult(m.Called(ctx, providerID, bookingID, status))
}

func (m *mockBookingService) UpdatePaymentStatus(ctx context.Context, bookingID uuid.UUID, status bookingDomain.PaymentStatus) (*application.BookingDTO, error) {
	return m.bookingResult(m.Called(ctx, bookingID, status))
}

func (m *mockBookingService) CancelBooking(ctx context.Context, bookingID uuid.UUID, by *application.Actor) (*application.CancelResult, error) {
	args := m.Called(ctx, bookingID, by)
	res, _ := args.Get(0).(*application.CancelResult)
	return res, args.Error(1)
}

type mockAdminService struct{ mock.Mock }

func (m *mockAdminService) ListAllBookings(ctx context.Context, req paging.Request) (*paging.Result[application.BookingDTO], error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*paging.Result[application.BookingDTO])
	return res, args.Error(1)
}

func (m *mockAdminService) GetBookingStats(ctx context.Context) (*application.BookingStatsDTO, error) {
	args := m.Called(ctx)
	res, _ := args.Get(0).(*application.BookingStatsDTO)
	return res, args.Error(1)
}

type mockPhotoService struct{ mock.Mock }

func (m *mockPhotoService) AddPhoto(ctx context.Context, bookingID, uploaderID uuid.UUID, req application.AddPhotoRequest) (*application.PhotoDTO, error) {
	args := m.Called(ctx, bookingID, uploaderID, req)
	res, _ := args.Get(0).(*application.PhotoDTO)
	return res, args.Error(1)
}

func (m *mockPhotoService) GetBookingPhotos(ctx context.Context, bookingID uuid.UUID) ([]application.PhotoDTO, error) {
	args := m.Called(ctx, bookingID)
	res, _ := args.Get(0).([]application.PhotoDTO)
	return res, args.Error(1)
}

type mockVehicleService struct{ mock.Mock }

func (m *mockVehicleService) CreateVehicle(ctx context.Context, ownerID uuid.UUID, req application.CreateVehicleRequest) (*application.VehicleDTO, error) {
	args := m.Called(ctx, ownerID, req)
	res, _ := args.Get(0).(*application.VehicleDTO)
	return res, args.Error(1)
}

func (m *mockVehicleService) GetMyVehicles(ctx context.Context, ownerID uuid.UUID) ([]application.VehicleDTO, error) {
	args := m.Called(ctx, ownerID)
	res, _ := args.Get(0).([]application.VehicleDTO)
	return res, args.Error(1)
}

func (m *mockVehicleService) GetVehicle(ctx context.Context, ownerID, vehicleID uuid.UUID) (*application.VehicleDTO, error) {
	args := m.Called(ctx, ownerID, vehicleID)
	res, _ := args.Get(0).(*application.VehicleDTO)
	return res, args.Error(1)
}

func (m *mockVehicleService) UpdateVehicle(ctx context.Context, ownerID, vehicleID uuid.UUID, req application.UpdateVehicleRequest) (*application.VehicleDTO, error) {
	args := m.Called(ctx, ownerID, vehicleID, req)
	res, _ := args.Get(0).(*application.VehicleDTO)
	return res, args.Error(1)
}

func (m *mockVehicleService) ArchiveVehicle(ctx context.Context, ownerID, vehicleID uuid.UUID) error {
	return m.Called(ctx, ownerID, vehicleID).Error(0)
}
