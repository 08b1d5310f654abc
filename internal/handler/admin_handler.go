package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fixgo-platform/service-booking/internal/application"
	"github.com/fixgo-platform/service-booking/internal/platform/middleware"
	"github.com/fixgo-platform/service-booking/internal/platform/paging"
	"github.com/fixgo-platform/service-booking/internal/platform/response"
)

// AdminService is the admin view over bookings.
type AdminService interface {
	ListAllBookings(ctx context.Context, req paging.Request) (*paging.Result[application.BookingDTO], error)
	GetBookingStats(ctx context.Context) (*application.BookingStatsDTO, error)
}

// AdminBookingHandler handles admin HTTP requests for booking management.
type AdminBookingHandler struct {
	service AdminService
}

// NewAdminBookingHandler creates a new AdminBookingHandler.
func NewAdminBookingHandler(service AdminService) *AdminBookingHandler {
	return &AdminBookingHandler{service: service}
}

// RegisterRoutes registers admin booking routes.
func (h *AdminBookingHandler) RegisterRoutes(r *gin.RouterGroup) {
	admin := r.Group("/api/v1/admin")
	admin.Use(middleware.IdentityMiddleware(), middleware.RequireRole(middleware.RoleAdmin))
	{
		admin.GET("/bookings", h.ListBookings)
		admin.GET("/stats/bookings", h.BookingStats)
	}
}

// ListBookings handles GET /api/v1/admin/bookings?page=&limit=&order=asc|desc.
func (h *AdminBookingHandler) ListBookings(c *gin.Context) {
	result, err := h.service.ListAllBookings(c.Request.Context(), parsePaging(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// BookingStats handles GET /api/v1/admin/stats/bookings.
func (h *AdminBookingHandler) BookingStats(c *gin.Context) {
	stats, err := h.service.GetBookingStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}

// parsePaging reads page, limit and order. paging.NewRequest clamps the
// numbers.
func parsePaging(c *gin.Context) paging.Request {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	return paging.NewRequest(page, limit, paging.ParseOrder(c.Query("order")))
}
