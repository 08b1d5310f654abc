package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fixgo-platform/service-booking/internal/application"
	"github.com/fixgo-platform/service-booking/internal/platform/middleware"
	"github.com/fixgo-platform/service-booking/internal/platform/response"
)

// VehicleService manages customer vehicle profiles.
type VehicleService interface {
	CreateVehicle(ctx context.Context, ownerID uuid.UUID, req application.CreateVehicleRequest) (*application.VehicleDTO, error)
	GetMyVehicles(ctx context.Context, ownerID uuid.UUID) ([]application.VehicleDTO, error)
	GetVehicle(ctx context.Context, ownerID, vehicleID uuid.UUID) (*application.VehicleDTO, error)
	UpdateVehicle(ctx context.Context, ownerID, vehicleID uuid.UUID, req application.UpdateVehicleRequest) (*application.VehicleDTO, error)
	ArchiveVehicle(ctx context.Context, ownerID, vehicleID uuid.UUID) error
}

// VehicleHandler handles HTTP requests for vehicle profile operations.
type VehicleHandler struct {
	service VehicleService
}

// NewVehicleHandler creates a new VehicleHandler.
func NewVehicleHandler(service VehicleService) *VehicleHandler {
	return &VehicleHandler{service: service}
}

// RegisterRoutes registers all vehicle profile routes.
func (h *VehicleHandler) RegisterRoutes(r *gin.RouterGroup) {
	vehicles := r.Group("/api/v1/vehicles")
	vehicles.Use(middleware.IdentityMiddleware(), middleware.RequireRole(middleware.RoleCustomer))
	{
		vehicles.POST("", h.CreateVehicle)
		vehicles.GET("", h.GetMyVehicles)
		vehicles.GET("/:id", h.GetVehicle)
		vehicles.PUT("/:id", h.UpdateVehicle)
		vehicles.DELETE("/:id", h.ArchiveVehicle)
	}
}

// CreateVehicle creates a new vehicle profile.
func (h *VehicleHandler) CreateVehicle(c *gin.Context) {
	ownerID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req application.CreateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindingMessage(err))
		return
	}

	result, err := h.service.CreateVehicle(c.Request.Context(), ownerID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// GetMyVehicles lists the caller's active vehicles.
func (h *VehicleHandler) GetMyVehicles(c *gin.Context) {
	ownerID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	result, err := h.service.GetMyVehicles(c.Request.Context(), ownerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetVehicle returns one of the caller's vehicles.
func (h *VehicleHandler) GetVehicle(c *gin.Context) {
	ownerID, vehicleID, ok := ownerAndVehicle(c)
	if !ok {
		return
	}

	result, err := h.service.GetVehicle(c.Request.Context(), ownerID, vehicleID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UpdateVehicle applies a partial update to a vehicle.
func (h *VehicleHandler) UpdateVehicle(c *gin.Context) {
	ownerID, vehicleID, ok := ownerAndVehicle(c)
	if !ok {
		return
	}

	var req application.UpdateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindingMessage(err))
		return
	}

	result, err := h.service.UpdateVehicle(c.Request.Context(), ownerID, vehicleID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ArchiveVehicle hides a vehicle from new bookings. Existing bookings keep
// their reference.
func (h *VehicleHandler) ArchiveVehicle(c *gin.Context) {
	ownerID, vehicleID, ok := ownerAndVehicle(c)
	if !ok {
		return
	}

	if err := h.service.ArchiveVehicle(c.Request.Context(), ownerID, vehicleID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "vehicle archived"})
}

func ownerAndVehicle(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	ownerID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return uuid.Nil, uuid.Nil, false
	}

	vehicleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid vehicle ID")
		return uuid.Nil, uuid.Nil, false
	}
	return ownerID, vehicleID, true
}
