package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	vehicleDomain "github.com/fixgo-platform/service-booking/internal/domain/vehicle"
	"github.com/fixgo-platform/service-booking/internal/platform/apperror"
)

// VehicleModel is the GORM model for the vehicles table.
type VehicleModel struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	OwnerID       uuid.UUID  `gorm:"type:uuid;not null;index"`
	VehicleTypeID *uuid.UUID `gorm:"type:uuid"`
	Make          string     `gorm:"type:varchar(100);not null"`
	Model         string     `gorm:"type:varchar(100);not null"`
	Year          int        `gorm:"type:int"`
	PlateNumber   string     `gorm:"type:varchar(20)"`
	Color         string     `gorm:"type:varchar(50)"`
	Status        string     `gorm:"type:varchar(20);not null;default:'active'"`
	Version       int64      `gorm:"not null;default:1"`
	CreatedAt     time.Time  `gorm:"type:timestamptz;not null;default:now()"`
	UpdatedAt     time.Time  `gorm:"type:timestamptz;not null;default:now()"`
}

func (VehicleModel) TableName() string { return "vehicles" }

// GormVehicleRepository implements VehicleRepository using GORM.
type GormVehicleRepository struct {
	db *gorm.DB
}

func NewGormVehicleRepository(db *gorm.DB) *GormVehicleRepository {
	return &GormVehicleRepository{db: db}
}

func (r *GormVehicleRepository) FindByID(ctx context.Context, id uuid.UUID) (*vehicleDomain.Vehicle, error) {
	var model VehicleModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFoundError("Vehicle", id.String())
		}
		return nil, fmt.Errorf("failed to find vehicle by ID: %w", err)
	}
	return toVehicleDomain(&model), nil
}

func (r *GormVehicleRepository) FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*vehicleDomain.Vehicle, error) {
	var models []VehicleModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ? AND status = ?", ownerID, string(vehicleDomain.StatusActive)).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find owner vehicles: %w", err)
	}
	vehicles := make([]*vehicleDomain.Vehicle, len(models))
	for i := range models {
		vehicles[i] = toVehicleDomain(&models[i])
	}
	return vehicles, nil
}

func (r *GormVehicleRepository) Save(ctx context.Context, v *vehicleDomain.Vehicle) error {
	return r.db.WithContext(ctx).Create(toVehicleModel(v)).Error
}

func (r *GormVehicleRepository) Update(ctx context.Context, v *vehicleDomain.Vehicle) error {
	model := toVehicleModel(v)
	previousVersion := v.Version() - 1

	result := r.db.WithContext(ctx).
		Model(&VehicleModel{}).
		Where("id = ? AND version = ?", model.ID, previousVersion).
		Select("vehicle_type_id", "make", "model", "year", "plate_number", "color", "status", "version", "updated_at").
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperror.NewConflictError("vehicle was modified by another transaction")
	}
	return nil
}

// --- Conversions ---

func toVehicleModel(v *vehicleDomain.Vehicle) *VehicleModel {
	return &VehicleModel{
		ID:            v.ID(),
		OwnerID:       v.OwnerID(),
		VehicleTypeID: v.VehicleTypeID(),
		Make:          v.Make(),
		Model:         v.Model(),
		Year:          v.Year(),
		PlateNumber:   v.PlateNumber(),
		Color:         v.Color(),
		Status:        string(v.Status()),
		Version:       v.Version(),
		CreatedAt:     v.CreatedAt(),
		UpdatedAt:     v.UpdatedAt(),
	}
}

func toVehicleDomain(m *VehicleModel) *vehicleDomain.Vehicle {
	return vehicleDomain.Reconstruct(
		m.ID, m.OwnerID,
		m.VehicleTypeID,
		m.Make, m.Model,
		m.Year,
		m.PlateNumber, m.Color,
		vehicleDomain.Status(m.Status),
		m.Version,
		m.CreatedAt, m.UpdatedAt,
	)
}
