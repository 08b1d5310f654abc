package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	userDomain "github.com/fixgo-platform/service-booking/internal/domain/user"
	"github.com/fixgo-platform/service-booking/internal/platform/apperror"
)

// UserModel maps the columns of the users table this service touches.
type UserModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"size:255"`
	Role      string    `gorm:"not null;size:20"`
	Balance   *string   `gorm:"type:numeric"`
	Version   int64     `gorm:"not null;default:1"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (UserModel) TableName() string { return "users" }

// GormUserRepository implements UserRepository using GORM.
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository.
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// FindByID retrieves a user by ID.
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*userDomain.User, error) {
	return r.findByID(r.db.WithContext(ctx), id)
}

// FindByIDForUpdate retrieves a user and locks its row.
func (r *GormUserRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*userDomain.User, error) {
	return r.findByID(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormUserRepository) findByID(db *gorm.DB, id uuid.UUID) (*userDomain.User, error) {
	var model UserModel
	if err := db.Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFoundError("User", id.String())
		}
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	return userDomain.Reconstruct(userDomain.Snapshot{
		ID:        model.ID,
		Name:      model.Name,
		Role:      userDomain.Role(model.Role),
		Balance:   model.Balance,
		Version:   model.Version,
		UpdatedAt: model.UpdatedAt,
	}), nil
}

// Exists reports whether a user with the given ID exists.
func (r *GormUserRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&UserModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check user: %w", err)
	}
	return count > 0, nil
}

// UpdateBalance writes the balance with optimistic locking.
func (r *GormUserRepository) UpdateBalance(ctx context.Context, u *userDomain.User) error {
	s := u.Snapshot()
	result := r.db.WithContext(ctx).
		Model(&UserModel{}).
		Where("id = ? AND version = ?", s.ID, s.Version-1).
		Updates(map[string]interface{}{
			"balance":    s.Balance,
			"version":    s.Version,
			"updated_at": s.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update user balance: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NewConflictError("user was modified by another transaction")
	}
	return nil
}
