package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	vehicleDomain "github.com/fixgo-platform/service-booking/internal/domain/vehicle"
	"github.com/fixgo-platform/service-booking/internal/platform/apperror"
)

// CreateVehicleRequest is the request DTO for creating a vehicle profile.
type CreateVehicleRequest struct {
	VehicleTypeID *uuid.UUID `json:"vehicle_type_id"`
	Make          string     `json:"make" binding:"required,max=100"`
	Model         string     `json:"model" binding:"required,max=100"`
	Year          int        `json:"year" binding:"omitempty,gte=1900"`
	PlateNumber   string     `json:"plate_number" binding:"max=20"`
	Color         string     `json:"color" binding:"max=50"`
}

// UpdateVehicleRequest is the request DTO for updating a vehicle profile.
type UpdateVehicleRequest struct {
	VehicleTypeID *uuid.UUID `json:"vehicle_type_id"`
	Make          string     `json:"make" binding:"max=100"`
	Model         string     `json:"model" binding:"max=100"`
	Year          int        `json:"year" binding:"omitempty,gte=1900"`
	PlateNumber   string     `json:"plate_number" binding:"max=20"`
	Color         string     `json:"color" binding:"max=50"`
}

// VehicleDTO is the API response representation of a vehicle profile.
type VehicleDTO struct {
	ID            uuid.UUID  `json:"id"`
	OwnerID       uuid.UUID  `json:"owner_id"`
	VehicleTypeID *uuid.UUID `json:"vehicle_type_id,omitempty"`
	Make          string     `json:"make"`
	Model         string     `json:"model"`
	Year          int        `json:"year,omitempty"`
	PlateNumber   string     `json:"plate_number,omitempty"`
	Color         string     `json:"color,omitempty"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// VehicleService implements use cases for customer vehicle profiles.
type VehicleService struct {
	repo   vehicleDomain.VehicleRepository
	refs   ReferenceChecker
	logger *zap.Logger
}

// NewVehicleService creates a new VehicleService.
func NewVehicleService(repo vehicleDomain.VehicleRepository, refs ReferenceChecker, logger *zap.Logger) *VehicleService {
	return &VehicleService{repo: repo, refs: refs, logger: logger}
}

// CreateVehicle creates a new vehicle profile for the given owner.
func (s *VehicleService) CreateVehicle(ctx context.Context, ownerID uuid.UUID, req CreateVehicleRequest) (*VehicleDTO, error) {
	if err := s.checkVehicleType(ctx, req.VehicleTypeID); err != nil {
		return nil, err
	}

	v, err := vehicleDomain.NewVehicle(ownerID, req.VehicleTypeID, req.Make, req.Model, req.Year, req.PlateNumber, req.Color)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, v); err != nil {
		s.logger.Error("failed to create vehicle", zap.Error(err))
		return nil, fmt.Errorf("failed to create vehicle: %w", err)
	}

	s.logger.Info("vehicle profile created",
		zap.String("vehicle_id", v.ID().String()),
		zap.String("owner_id", ownerID.String()),
	)
	result := toVehicleDTO(v)
	return &result, nil
}

// GetMyVehicles returns all active vehicles of the given owner.
func (s *VehicleService) GetMyVehicles(ctx context.Context, ownerID uuid.UUID) ([]VehicleDTO, error) {
	vehicles, err := s.repo.FindByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get vehicles: %w", err)
	}
	dtos := make([]VehicleDTO, len(vehicles))
	for i, v := range vehicles {
		dtos[i] = toVehicleDTO(v)
	}
	return dtos, nil
}

// GetVehicle returns a single vehicle, verifying ownership.
func (s *VehicleService) GetVehicle(ctx context.Context, ownerID, vehicleID uuid.UUID) (*VehicleDTO, error) {
	v, err := s.ownedVehicle(ctx, ownerID, vehicleID)
	if err != nil {
		return nil, err
	}
	result := toVehicleDTO(v)
	return &result, nil
}

// UpdateVehicle updates a vehicle profile, verifying ownership.
func (s *VehicleService) UpdateVehicle(ctx context.Context, ownerID, vehicleID uuid.UUID, req UpdateVehicleRequest) (*VehicleDTO, error) {
	v, err := s.ownedVehicle(ctx, ownerID, vehicleID)
	if err != nil {
		return nil, err
	}
	if err := s.checkVehicleType(ctx, req.VehicleTypeID); err != nil {
		return nil, err
	}

	v.Update(req.VehicleTypeID, req.Make, req.Model, req.Year, req.PlateNumber, req.Color)

	if err := s.repo.Update(ctx, v); err != nil {
		s.logger.Error("failed to update vehicle", zap.Error(err))
		return nil, fmt.Errorf("failed to update vehicle: %w", err)
	}

	s.logger.Info("vehicle profile updated", zap.String("vehicle_id", vehicleID.String()))
	result := toVehicleDTO(v)
	return &result, nil
}

// ArchiveVehicle archives a vehicle profile, verifying ownership.
func (s *VehicleService) ArchiveVehicle(ctx context.Context, ownerID, vehicleID uuid.UUID) error {
	v, err := s.ownedVehicle(ctx, ownerID, vehicleID)
	if err != nil {
		return err
	}

	v.Archive()
	if err := s.repo.Update(ctx, v); err != nil {
		s.logger.Error("failed to archive vehicle", zap.Error(err))
		return fmt.Errorf("failed to archive vehicle: %w", err)
	}

	s.logger.Info("vehicle profile archived", zap.String("vehicle_id", vehicleID.String()))
	return nil
}

func (s *VehicleService) ownedVehicle(ctx context.Context, ownerID, vehicleID uuid.UUID) (*vehicleDomain.Vehicle, error) {
	v, err := s.repo.FindByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if !v.IsOwnedBy(ownerID) {
		return nil, apperror.NewForbiddenError("you do not own this vehicle")
	}
	return v, nil
}

func (s *VehicleService) checkVehicleType(ctx context.Context, id *uuid.UUID) error {
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

func toVehicleDTO(v *vehicleDomain.Vehicle) VehicleDTO {
	return VehicleDTO{
		ID:            v.ID(),
		OwnerID:       v.OwnerID(),
		VehicleTypeID: v.VehicleTypeID(),
		Make:          v.Make(),
		Model:         v.Model(),
		Year:          v.Year(),
		PlateNumber:   v.PlateNumber(),
		Color:         v.Color(),
		Status:        string(v.Status()),
		CreatedAt:     v.CreatedAt(),
		UpdatedAt:     v.UpdatedAt(),
	}
}
