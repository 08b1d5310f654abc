package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingDomain "github.com/fixgo-platform/service-booking/internal/domain/booking"
	paymentDomain "github.com/fixgo-platform/service-booking/internal/domain/payment"
	photoDomain "github.com/fixgo-platform/service-booking/internal/domain/photo"
	userDomain "github.com/fixgo-platform/service-booking/internal/domain/user"
	vehicleDomain "github.com/fixgo-platform/service-booking/internal/domain/vehicle"
	"github.com/fixgo-platform/service-booking/internal/platform/apperror"
	"github.com/fixgo-platform/service-booking/internal/platform/kafka"
	"github.com/fixgo-platform/service-booking/internal/proto/events"
)

const (
	serviceSource         = "service-booking"
	defaultGatewayTimeout = 10 * time.Second
)

// BookingServiceDeps are the collaborators of BookingService.
type BookingServiceDeps struct {
	Bookings  bookingDomain.BookingRepository
	Photos    photoDomain.PhotoRepository
	Users     userDomain.UserRepository
	Vehicles  vehicleDomain.VehicleRepository
	Refs      ReferenceChecker
	UoW       UnitOfWork
	Gateway   paymentDomain.Gateway
	Publisher EventPublisher
	Logger    *zap.Logger

	// GatewayTimeout bounds each refund call. Zero means 10s.
	GatewayTimeout time.Duration
}

// BookingService is the application service orchestrating booking use cases.
type BookingService struct {
	repo           bookingDomain.BookingRepository
	photos         photoDomain.PhotoRepository
	users          userDomain.UserRepository
	vehicles       vehicleDomain.VehicleRepository
	refs           ReferenceChecker
	uow            UnitOfWork
	gateway        paymentDomain.Gateway
	publisher      EventPublisher
	logger         *zap.Logger
	gatewayTimeout time.Duration
}

// NewBookingService creates a new BookingService.
func NewBookingService(deps BookingServiceDeps) *BookingService {
	timeout := deps.GatewayTimeout
	if timeout <= 0 {
		timeout = defaultGatewayTimeout
	}
	return &BookingService{
		repo:           deps.Bookings,
		photos:         deps.Photos,
		users:          deps.Users,
		vehicles:       deps.Vehicles,
		refs:           deps.Refs,
		uow:            deps.UoW,
		gateway:        deps.Gateway,
		publisher:      deps.Publisher,
		logger:         deps.Logger,
		gatewayTimeout: timeout,
	}
}

// CreateBooking creates a booking after checking that every referenced
// entity exists.
func (s *BookingService) CreateBooking(ctx context.Context, userID uuid.UUID, req CreateBookingRequest) (*BookingDTO, error) {
	if err := s.checkReferences(ctx, userID, req); err != nil {
		return nil, err
	}

	params := bookingDomain.NewBookingParams{
		UserID:          userID,
		ProviderID:      req.ProviderID,
		CategoryID:      req.CategoryID,
		VehicleTypeID:   req.VehicleTypeID,
		VehicleID:       req.VehicleID,
		Description:     req.Description,
		Address:         req.Address,
		VehicleImageURL: req.VehicleImageURL,
		ScheduledAt:     req.ScheduledAt,
	}
	if (req.Latitude == nil) != (req.Longitude == nil) {
		return nil, apperror.NewValidationError("latitude and longitude must be given together")
	}
	if req.Latitude != nil {
		params.Location = &bookingDomain.Location{Latitude: *req.Latitude, Longitude: *req.Longitude}
	}

	bk, err := bookingDomain.NewBooking(params)
	if err != nil {
		return nil, err
	}

	photos := make([]*photoDomain.BookingPhoto, 0, len(req.DamageImageURLs))
	for _, url := range req.DamageImageURLs {
		p, err := photoDomain.NewBookingPhoto(bk.ID(), userID, photoDomain.PhotoTypeDamage, url, "")
		if err != nil {
			return nil, err
		}
		photos = append(photos, p)
	}

	if err := s.repo.Save(ctx, bk); err != nil {
		return nil, fmt.Errorf("failed to save booking: %w", err)
	}
	if len(photos) > 0 {
		if err := s.photos.SaveAll(ctx, photos); err != nil {
			return nil, fmt.Errorf("failed to save booking photos: %w", err)
		}
	}

	s.logger.Info("booking created",
		zap.String("booking_id", bk.ID().String()),
		zap.String("user_id", userID.String()),
		zap.String("provider_id", req.ProviderID.String()),
	)

	s.publishEvent(ctx, events.BookingCreated, bk.ID(), events.BookingCreatedEvent{
		BookingID:     bk.ID(),
		BookingNumber: bk.BookingNumber(),
		UserID:        bk.UserID(),
		ProviderID:    bk.ProviderID(),
		CategoryID:    bk.CategoryID(),
		OccurredAt:    time.Now().UTC(),
	})

	result := toBookingDTO(bk)
	for _, p := range photos {
		result.Photos = append(result.Photos, toPhotoDTO(p))
	}
	return &result, nil
}

func (s *BookingService) checkReferences(ctx context.Context, userID uuid.UUID, req CreateBookingRequest) error {
	if err := s.checkVehicleType(ctx, req.VehicleTypeID); err != nil {
		return err
	}

	ok, err := s.users.Exists(ctx, req.ProviderID)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.NewValidationError("invalid provider_id: not found")
	}

	if err := s.checkCategory(ctx, req.CategoryID); err != nil {
		return err
	}

	ok, err = s.users.Exists(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.NewValidationError("invalid user_id: not found")
	}

	return s.checkVehicle(ctx, userID, req.VehicleID)
}

func (s *BookingService) checkCategory(ctx context.Context, id uuid.UUID) error {
	ok, err := s.refs.CategoryExists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.NewValidationError("invalid category_id: not found")
	}
	return nil
}

func (s *BookingService) checkVehicleType(ctx context.Context, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	ok, err := s.refs.VehicleTypeExists(ctx, *id)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.NewValidationError("invalid vehicle_type_id: not found")
	}
	return nil
}

func (s *BookingService) checkVehicle(ctx context.Context, userID uuid.UUID, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	v, err := s.vehicles.FindByID(ctx, *id)
	if errors.Is(err, apperror.ErrNotFound) {
		return apperror.NewValidationError("invalid vehicle_id: not found")
	}
	if err != nil {
		return err
	}
	if !v.IsOwnedBy(userID) || !v.IsActive() {
		return apperror.NewValidationError("invalid vehicle_id: not one of your vehicles")
	}
	return nil
}

// UpdateBooking edits a booking on behalf of its customer. Only bookings
// still awaiting approval can be edited; changed references are checked
// again. Provider and payment cannot be changed.
func (s *BookingService) UpdateBooking(ctx context.Context, userID, bookingID uuid.UUID, req UpdateBookingRequest) (*BookingDTO, error) {
	if (req.Latitude == nil) != (req.Longitude == nil) {
		return nil, apperror.NewValidationError("latitude and longitude must be given together")
	}
	update := bookingDomain.DetailsUpdate{
		CategoryID:      req.CategoryID,
		VehicleTypeID:   req.VehicleTypeID,
		VehicleID:       req.VehicleID,
		Description:     req.Description,
		Address:         req.Address,
		VehicleImageURL: req.VehicleImageURL,
		ScheduledAt:     req.ScheduledAt,
	}
	if req.Latitude != nil {
		update.Location = &bookingDomain.Location{Latitude: *req.Latitude, Longitude: *req.Longitude}
	}

	var bk *bookingDomain.Booking
	err := s.uow.Do(ctx, func(ctx context.Context, tx Stores) error {
		var err error
		bk, err = tx.Bookings.FindByIDForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if err := requireOwner(bk, userID); err != nil {
			return err
		}

		if req.CategoryID != nil {
			if err := s.checkCategory(ctx, *req.CategoryID); err != nil {
				return err
			}
		}
		if err := s.checkVehicleType(ctx, req.VehicleTypeID); err != nil {
			return err
		}
		if err := s.checkVehicle(ctx, userID, req.VehicleID); err != nil {
			return err
		}

		if err := bk.UpdateDetails(update); err != nil {
			return err
		}
		bk.IncrementVersion()
		return tx.Bookings.Update(ctx, bk)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("booking updated",
		zap.String("booking_id", bookingID.String()),
		zap.String("user_id", userID.String()),
	)
	s.publishEvent(ctx, events.BookingUpdated, bk.ID(), events.BookingUpdatedEvent{
		BookingID:  bk.ID(),
		UserID:     bk.UserID(),
		ProviderID: bk.ProviderID(),
		OccurredAt: time.Now().UTC(),
	})

	result := toBookingDTO(bk)
	return &result, nil
}

// UpdateApprovalStatus sets the approval facet on behalf of the booking's
// provider. Any valid status is accepted unless a cancellation refund is in
// flight.
func (s *BookingService) UpdateApprovalStatus(ctx context.Context, providerID, bookingID uuid.UUID, status bookingDomain.ApprovalStatus) (*BookingDTO, error) {
	var bk *bookingDomain.Booking
	err := s.uow.Do(ctx, func(ctx context.Context, tx Stores) error {
		var err error
		bk, err = tx.Bookings.FindByIDForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if err := requireProvider(bk, providerID); err != nil {
			return err
		}
		if err := bk.SetApprovalStatus(status); err != nil {
			return err
		}
		bk.IncrementVersion()
		return tx.Bookings.Update(ctx, bk)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("booking approval updated",
		zap.String("booking_id", bookingID.String()),
		zap.String("approval_status", string(status)),
	)
	s.publishStatusChanged(ctx, events.BookingApprovalUpdated, bk, "approval", string(status))

	result := toBookingDTO(bk)
	return &result, nil
}

// UpdateWorkStatus moves the work facet on behalf of the booking's provider.
// Moving to completed credits the provider with the payment amount in the
// same transaction.
func (s *BookingService) UpdateWorkStatus(ctx context.Context, providerID, bookingID uuid.UUID, status bookingDomain.WorkStatus) (*BookingDTO, error) {
	var (
		bk         *bookingDomain.Booking
		settlement *bookingDomain.Settlement
		changed    bool
	)
	err := s.uow.Do(ctx, func(ctx context.Context, tx Stores) error {
		var err error
		bk, err = tx.Bookings.FindByIDForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if err := requireProvider(bk, providerID); err != nil {
			return err
		}

		if status != bookingDomain.WorkCompleted {
			changed, err = bk.ChangeWorkStatus(status)
			if err != nil || !changed {
				return err
			}
			bk.IncrementVersion()
			return tx.Bookings.Update(ctx, bk)
		}

		if err := bk.CheckWorkTransition(status); err != nil {
			return err
		}
		pay, err := s.loadPayment(ctx, tx.Payments.FindByID, bk)
		if err != nil {
			return err
		}
		provider, err := tx.Users.FindByIDForUpdate(ctx, bk.ProviderID())
		if errors.Is(err, apperror.ErrNotFound) {
			return apperror.NewInvalidStateError(fmt.Sprintf("provider %s of booking %s does not exist", bk.ProviderID(), bk.ID()))
		}
		if err != nil {
			return err
		}

		settlement, err = bk.Complete(pay, provider)
		if err != nil {
			return err
		}

		provider.IncrementVersion()
		if err := tx.Users.UpdateBalance(ctx, provider); err != nil {
			return err
		}
		bk.IncrementVersion()
		changed = true
		return tx.Bookings.Update(ctx, bk)
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.logger.Info("booking work status updated",
			zap.String("booking_id", bookingID.String()),
			zap.String("work_status", string(status)),
		)
		s.publishStatusChanged(ctx, events.BookingWorkStatusUpdated, bk, "work", string(status))
	}
	if settlement != nil {
		s.logger.Info("provider credited",
			zap.String("booking_id", bookingID.String()),
			zap.String("provider_id", settlement.ProviderID.String()),
			zap.String("amount", settlement.Amount.String()),
			zap.String("new_balance", settlement.NewBalance.String()),
		)
		s.publishEvent(ctx, events.BookingSettled, bk.ID(), events.BookingSettledEvent{
			BookingID:  settlement.BookingID,
			ProviderID: settlement.ProviderID,
			PaymentID:  settlement.PaymentID,
			Amount:     settlement.Amount.String(),
			NewBalance: settlement.NewBalance.String(),
			OccurredAt: settlement.SettledAt,
		})
	}

	result := toBookingDTO(bk)
	return &result, nil
}

// UpdatePaymentStatus sets the booking-side payment facet. It never settles;
// settlement only follows work completion.
func (s *BookingService) UpdatePaymentStatus(ctx context.Context, bookingID uuid.UUID, status bookingDomain.PaymentStatus) (*BookingDTO, error) {
	return s.updatePaymentStatus(ctx, bookingID, nil, status)
}

// RecordPaymentCompleted links a captured payment to its booking and marks
// the booking paid. It only moves a pending payment facet, so a redelivered
// event never undoes a refund.
func (s *BookingService) RecordPaymentCompleted(ctx context.Context, bookingID, paymentID uuid.UUID) (*BookingDTO, error) {
	return s.updatePaymentStatus(ctx, bookingID, &paymentID, bookingDomain.PaymentCompleted)
}

func (s *BookingService) updatePaymentStatus(ctx context.Context, bookingID uuid.UUID, paymentID *uuid.UUID, status bookingDomain.PaymentStatus) (*BookingDTO, error) {
	var (
		bk      *bookingDomain.Booking
		applied bool
	)
	err := s.uow.Do(ctx, func(ctx context.Context, tx Stores) error {
		var err error
		bk, err = tx.Bookings.FindByIDForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if paymentID != nil {
			if cur := bk.PaymentID(); cur != nil && *cur != *paymentID {
				return apperror.NewConflictError(
					fmt.Sprintf("booking %s is linked to payment %s", bookingID, *cur))
			}
			if bk.PaymentStatus() != bookingDomain.PaymentPending || bk.RefundState() != bookingDomain.RefundNone {
				return nil
			}
			bk.LinkPayment(*paymentID)
		}
		applied = true
		if err := bk.SetPaymentStatus(status); err != nil {
			return err
		}
		bk.IncrementVersion()
		return tx.Bookings.Update(ctx, bk)
	})
	if err != nil {
		return nil, err
	}
	if !applied {
		s.logger.Info("payment event already applied",
			zap.String("booking_id", bookingID.String()),
			zap.String("payment_id", paymentID.String()),
			zap.String("payment_status", string(bk.PaymentStatus())),
		)
		result := toBookingDTO(bk)
		return &result, nil
	}

	s.logger.Info("booking payment status updated",
		zap.String("booking_id", bookingID.String()),
		zap.String("payment_status", string(status)),
	)
	s.publishStatusChanged(ctx, events.BookingPaymentStatusUpdated, bk, "payment", string(status))

	result := toBookingDTO(bk)
	return &result, nil
}

// loadPayment returns the booking's payment, or nil when none is linked or
// the linked row is gone.
func (s *BookingService) loadPayment(
	ctx context.Context,
	find func(context.Context, uuid.UUID) (*paymentDomain.Payment, error),
	bk *bookingDomain.Booking,
) (*paymentDomain.Payment, error) {
	id := bk.PaymentID()
	if id == nil {
		return nil, nil
	}
	pay, err := find(ctx, *id)
	if errors.Is(err, apperror.ErrNotFound) {
		s.logger.Warn("booking references missing payment",
			zap.String("booking_id", bk.ID().String()),
			zap.String("payment_id", id.String()),
		)
		return nil, nil
	}
	return pay, err
}

func (s *BookingService) publishStatusChanged(ctx context.Context, eventType string, bk *bookingDomain.Booking, facet, status string) {
	s.publishEvent(ctx, eventType, bk.ID(), events.BookingStatusChangedEvent{
		BookingID:  bk.ID(),
		UserID:     bk.UserID(),
		ProviderID: bk.ProviderID(),
		Facet:      facet,
		Status:     status,
		OccurredAt: time.Now().UTC(),
	})
}

// publishEvent is best effort: state is already committed, failures are logged.
func (s *BookingService) publishEvent(ctx context.Context, eventType string, bookingID uuid.UUID, data interface{}) {
	if s.publisher == nil {
		return
	}
	cloudEvent, err := kafka.NewCloudEvent(serviceSource, eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}
	cloudEvent.Subject = bookingID.String()

	if err := s.publisher.PublishEvent(ctx, events.TopicBookingEvents, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", events.TopicBookingEvents),
			zap.String("event_type", eventType),
			zap.String("booking_id", bookingID.String()),
			zap.Error(err),
		)
	}
}
