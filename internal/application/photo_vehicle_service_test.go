package application

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	bookingDomain "github.com/fixgo-platform/service-booking/internal/domain/booking"
	"github.com/fixgo-platform/service-booking/internal/platform/apperror"
)

func TestPhotoService_AddPhoto(t *testing.T) {
	f := newFixture()
	bookingID, providerID, _ := f.addBooking(bookingSeed{
		approval: bookingDomain.ApprovalAccepted,
		work:     bookingDomain.WorkInProgress,
		payment:  bookingDomain.PaymentPending,
	})
	svc := NewPhotoService(&memPhotos{db: f.db}, &memBookings{db: f.db}, zap.NewNop())
	ctx := context.Background()

	dto, err := svc.AddPhoto(ctx, bookingID, providerID, AddPhotoRequest{
		PhotoType: "result",
		PhotoURL:  "https://cdn.example.com/after.jpg",
		Caption:   "bumper fixed",
	})
	require.NoError(t, err)
	assert.Equal(t, "result", dto.PhotoType)
	assert.Equal(t, providerID, dto.UploadedBy)

	photos, err := svc.GetBookingPhotos(ctx, bookingID)
	require.NoError(t, err)
	assert.Len(t, photos, 1)
}

func TestPhotoService_AddPhoto_Rejections(t *testing.T) {
	f := newFixture()
	bookingID, _, _ := f.addBooking(bookingSeed{
		approval: bookingDomain.ApprovalPending,
		work:     bookingDomain.WorkNotStarted,
		payment:  bookingDomain.PaymentPending,
	})
	svc := NewPhotoService(&memPhotos{db: f.db}, &memBookings{db: f.db}, zap.NewNop())
	ctx := context.Background()
	req := AddPhotoRequest{PhotoType: "damage", PhotoURL: "https://cdn.example.com/x.jpg"}

	_, err := svc.AddPhoto(ctx, bookingID, uuid.New(), req)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = svc.AddPhoto(ctx, uuid.New(), uuid.New(), req)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	owner := f.db.booking(bookingID).UserID()
	_, err = svc.AddPhoto(ctx, bookingID, owner, AddPhotoRequest{PhotoType: "selfie", PhotoURL: req.PhotoURL})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestVehicleService_Lifecycle(t *testing.T) {
	db := newMemDB()
	svc := NewVehicleService(&memVehicles{db: db}, &memRefs{db: db}, zap.NewNop())
	owner := uuid.New()
	ctx := context.Background()

	created, err := svc.CreateVehicle(ctx, owner, CreateVehicleRequest{
		Make:        "Toyota",
		Model:       "Avanza",
		Year:        2019,
		PlateNumber: "b 1234 xyz",
		Color:       "silver",
	})
	require.NoError(t, err)
	assert.Equal(t, "B1234XYZ", created.PlateNumber)
	assert.Equal(t, "active", created.Status)

	updated, err := svc.UpdateVehicle(ctx, owner, created.ID, UpdateVehicleRequest{Color: "black"})
	require.NoError(t, err)
	assert.Equal(t, "black", updated.Color)
	assert.Equal(t, "Toyota", updated.Make)

	list, err := svc.GetMyVehicles(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.ArchiveVehicle(ctx, owner, created.ID))
	list, err = svc.GetMyVehicles(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestVehicleService_OwnershipAndReferences(t *testing.T) {
	db := newMemDB()
	svc := NewVehicleService(&memVehicles{db: db}, &memRefs{db: db}, zap.NewNop())
	owner := uuid.New()
	ctx := context.Background()

	unknownType := uuid.New()
	_, err := svc.CreateVehicle(ctx, owner, CreateVehicleRequest{VehicleTypeID: &unknownType, Make: "Honda", Model: "Jazz"})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	knownType := uuid.New()
	db.vehicleTypes[knownType] = true
	created, err := svc.CreateVehicle(ctx, owner, CreateVehicleRequest{VehicleTypeID: &knownType, Make: "Honda", Model: "Jazz"})
	require.NoError(t, err)

	_, err = svc.GetVehicle(ctx, uuid.New(), created.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = svc.GetVehicle(ctx, owner, uuid.New())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
