package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormReferenceRepository checks the catalog tables a booking points into.
type GormReferenceRepository struct {
	db *gorm.DB
}

// NewGormReferenceRepository creates a new GormReferenceRepository.
func NewGormReferenceRepository(db *gorm.DB) *GormReferenceRepository {
	return &GormReferenceRepository{db: db}
}

// CategoryExists reports whether a service category exists.
func (r *GormReferenceRepository) CategoryExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.exists(ctx, "categories", id)
}

// VehicleTypeExists reports whether a vehicle type exists.
func (r *GormReferenceRepository) VehicleTypeExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.exists(ctx, "vehicle_types", id)
}

func (r *GormReferenceRepository) exists(ctx context.Context, table string, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Table(table).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check %s: %w", table, err)
	}
	return count > 0, nil
}
