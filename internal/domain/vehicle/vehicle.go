package vehicle

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fixgo-platform/service-booking/internal/platform/apperror"
)

// Status represents the lifecycle state of a vehicle profile.
type Status string

const (
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
)

// Vehicle is a customer's saved vehicle.
type Vehicle struct {
	id            uuid.UUID
	ownerID       uuid.UUID
	vehicleTypeID *uuid.UUID
	make          string
	model         string
	year          int
	plateNumber   string
	color         string
	status        Status
	version       int64
	createdAt     time.Time
	updatedAt     time.Time
}

// NewVehicle creates an active vehicle profile.
func NewVehicle(ownerID uuid.UUID, vehicleTypeID *uuid.UUID, vehicleMake, model string, year int, plateNumber, color string) (*Vehicle, error) {
	if ownerID == uuid.Nil {
		return nil, apperror.NewValidationError("owner ID is required")
	}
	if strings.TrimSpace(vehicleMake) == "" {
		return nil, apperror.NewValidationError("vehicle make is required")
	}
	if strings.TrimSpace(model) == "" {
		return nil, apperror.NewValidationError("vehicle model is required")
	}
	if year != 0 && (year < 1900 || year > time.Now().Year()+1) {
		return nil, apperror.NewValidationError("vehicle year out of range")
	}

	now := time.Now().UTC()
	return &Vehicle{
		id:            uuid.New(),
		ownerID:       ownerID,
		vehicleTypeID: vehicleTypeID,
		make:          strings.TrimSpace(vehicleMake),
		model:         strings.TrimSpace(model),
		year:          year,
		plateNumber:   normalizePlate(plateNumber),
		color:         color,
		status:        StatusActive,
		version:       1,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// Reconstruct rebuilds a Vehicle from persistence data (no validation).
func Reconstruct(
	id, ownerID uuid.UUID,
	vehicleTypeID *uuid.UUID,
	vehicleMake, model string,
	year int,
	plateNumber, color string,
	status Status,
	version int64,
	createdAt, updatedAt time.Time,
) *Vehicle {
	return &Vehicle{
		id:            id,
		ownerID:       ownerID,
		vehicleTypeID: vehicleTypeID,
		make:          vehicleMake,
		model:         model,
		year:          year,
		plateNumber:   plateNumber,
		color:         color,
		status:        status,
		version:       version,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

// --- Getters ---

func (v *Vehicle) ID() uuid.UUID             { return v.id }
func (v *Vehicle) OwnerID() uuid.UUID        { return v.ownerID }
func (v *Vehicle) VehicleTypeID() *uuid.UUID { return v.vehicleTypeID }
func (v *Vehicle) Make() string              { return v.make }
func (v *Vehicle) Model() string             { return v.model }
func (v *Vehicle) Year() int                 { return v.year }
func (v *Vehicle) PlateNumber() string       { return v.plateNumber }
func (v *Vehicle) Color() string             { return v.color }
func (v *Vehicle) Status() Status            { return v.status }
func (v *Vehicle) Version() int64            { return v.version }
func (v *Vehicle) CreatedAt() time.Time      { return v.createdAt }
func (v *Vehicle) UpdatedAt() time.Time      { return v.updatedAt }

// --- Behavior ---

// IsOwnedBy checks if the vehicle belongs to the given owner.
func (v *Vehicle) IsOwnedBy(ownerID uuid.UUID) bool {
	return v.ownerID == ownerID
}

// Update applies partial updates; empty values are left unchanged.
func (v *Vehicle) Update(vehicleTypeID *uuid.UUID, vehicleMake, model string, year int, plateNumber, color string) {
	if vehicleTypeID != nil {
		v.vehicleTypeID = vehicleTypeID
	}
	if vehicleMake != "" {
		v.make = vehicleMake
	}
	if model != "" {
		v.model = model
	}
	if year > 0 {
		v.year = year
	}
	if plateNumber != "" {
		v.plateNumber = normalizePlate(plateNumber)
	}
	if color != "" {
		v.color = color
	}
	v.version++
	v.updatedAt = time.Now().UTC()
}

// Archive marks the vehicle as archived.
func (v *Vehicle) Archive() {
	v.status = StatusArchived
	v.version++
	v.updatedAt = time.Now().UTC()
}

// IsActive returns true if the vehicle is active.
func (v *Vehicle) IsActive() bool {
	return v.status == StatusActive
}

func normalizePlate(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), ""))
}
