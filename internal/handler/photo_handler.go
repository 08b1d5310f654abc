package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fixgo-platform/service-booking/internal/application"
	"github.com/fixgo-platform/service-booking/internal/platform/middleware"
	"github.com/fixgo-platform/service-booking/internal/platform/response"
)

// PhotoService attaches and lists booking photos.
type PhotoService interface {
	AddPhoto(ctx context.Context, bookingID, uploaderID uuid.UUID, req application.AddPhotoRequest) (*application.PhotoDTO, error)
	GetBookingPhotos(ctx context.Context, bookingID uuid.UUID) ([]application.PhotoDTO, error)
}

// PhotoHandler handles HTTP requests for booking photo operations.
type PhotoHandler struct {
	service PhotoService
}

// NewPhotoHandler creates a new PhotoHandler.
func NewPhotoHandler(service PhotoService) *PhotoHandler {
	return &PhotoHandler{service: service}
}

// RegisterRoutes registers all photo routes.
func (h *PhotoHandler) RegisterRoutes(r *gin.RouterGroup) {
	photos := r.Group("/api/v1/bookings")
	photos.Use(middleware.IdentityMiddleware())
	{
		photos.POST("/:id/photos", middleware.RequireRole(middleware.RoleCustomer, middleware.RoleProvider), h.AddPhoto)
		photos.GET("/:id/photos", h.GetBookingPhotos)
	}
}

// AddPhoto handles POST /api/v1/bookings/:id/photos.
func (h *PhotoHandler) AddPhoto(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	uploaderID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req application.AddPhotoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindingMessage(err))
		return
	}

	result, err := h.service.AddPhoto(c.Request.Context(), bookingID, uploaderID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// GetBookingPhotos handles GET /api/v1/bookings/:id/photos.
func (h *PhotoHandler) GetBookingPhotos(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	result, err := h.service.GetBookingPhotos(c.Request.Context(), bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
