package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fixgo-platform/service-booking/internal/application"
	bookingDomain "github.com/fixgo-platform/service-booking/internal/domain/booking"
	"github.com/fixgo-platform/service-booking/internal/platform/middleware"
	"github.com/fixgo-platform/service-booking/internal/platform/response"
)

// BookingService is the subset of the booking use cases served over HTTP.
type BookingService interface {
	CreateBooking(ctx context.Context, userID uuid.UUID, req application.CreateBookingRequest) (*application.BookingDTO, error)
	GetBooking(ctx context.Context, actor application.Actor, bookingID uuid.UUID) (*application.BookingDTO, error)
	UpdateBooking(ctx context.Context, userID, bookingID uuid.UUID, req application.UpdateBookingRequest) (*application.BookingDTO, error)
	ListCustomerBookings(ctx context.Context, userID uuid.UUID) ([]application.BookingDTO, error)
	ListPendingBookings(ctx context.Context, providerID uuid.UUID) ([]application.BookingDTO, error)
	ListAwaitingBookings(ctx context.Context, providerID uuid.UUID) ([]application.BookingDTO, error)
	ListCompletedBookings(ctx context.Context, providerID uuid.UUID) ([]application.BookingDTO, error)
	ListBookingLocations(ctx context.Context) ([]application.LocationDTO, error)
	UpdateApprovalStatus(ctx context.Context, providerID, bookingID uuid.UUID, status bookingDomain.ApprovalStatus) (*application.BookingDTO, error)
	UpdateWorkStatus(ctx context.Context, providerID, bookingID uuid.UUID, status bookingDomain.WorkStatus) (*application.BookingDTO, error)
	UpdatePaymentStatus(ctx context.Context, bookingID uuid.UUID, status bookingDomain.PaymentStatus) (*application.BookingDTO, error)
	CancelBooking(ctx context.Context, bookingID uuid.UUID, by *application.Actor) (*application.CancelResult, error)
}

type approvalRequest struct {
	Status string `json:"status" binding:"required,approval_status"`
}

type workStatusRequest struct {
	Status string `json:"status" binding:"required,work_status"`
}

type paymentStatusRequest struct {
	Status string `json:"status" binding:"required,payment_status"`
}

// BookingHandler handles HTTP requests for booking operations.
type BookingHandler struct {
	service BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(service BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// RegisterRoutes registers all booking routes on the given router group.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup) {
	customer := middleware.RequireRole(middleware.RoleCustomer)
	provider := middleware.RequireRole(middleware.RoleProvider)

	bookings := r.Group("/api/v1/bookings")
	bookings.Use(middleware.IdentityMiddleware())
	{
		bookings.POST("", customer, h.CreateBooking)
		bookings.GET("", customer, h.ListMyBookings)
		bookings.GET("/pending", provider, h.ListPending)
		bookings.GET("/awaiting", provider, h.ListAwaiting)
		bookings.GET("/completed", provider, h.ListCompleted)
		bookings.GET("/locations", middleware.RequireRole(middleware.RoleProvider, middleware.RoleAdmin), h.ListLocations)
		bookings.GET("/:id", h.GetBooking)
		bookings.PATCH("/:id", customer, h.UpdateBooking)
		bookings.PATCH("/:id/approval", provider, h.UpdateApproval)
		bookings.PATCH("/:id/work-status", provider, h.UpdateWorkStatus)
		bookings.PATCH("/:id/payment-status", middleware.RequireRole(middleware.RoleAdmin), h.UpdatePaymentStatus)
		bookings.POST("/:id/cancel", h.CancelBooking)
	}
}

// CreateBooking handles POST /api/v1/bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req application.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindingMessage(err))
		return
	}

	result, err := h.service.CreateBooking(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListMyBookings handles GET /api/v1/bookings for the calling customer.
func (h *BookingHandler) ListMyBookings(c *gin.Context) {
	h.listFor(c, h.service.ListCustomerBookings)
}

// ListPending handles GET /api/v1/bookings/pending. Despite the name these
// are accepted bookings the provider still has to work on.
func (h *BookingHandler) ListPending(c *gin.Context) {
	h.listFor(c, h.service.ListPendingBookings)
}

// ListAwaiting handles GET /api/v1/bookings/awaiting.
func (h *BookingHandler) ListAwaiting(c *gin.Context) {
	h.listFor(c, h.service.ListAwaitingBookings)
}

// ListCompleted handles GET /api/v1/bookings/completed.
func (h *BookingHandler) ListCompleted(c *gin.Context) {
	h.listFor(c, h.service.ListCompletedBookings)
}

func (h *BookingHandler) listFor(c *gin.Context, list func(context.Context, uuid.UUID) ([]application.BookingDTO, error)) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	result, err := list(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListLocations handles GET /api/v1/bookings/locations.
func (h *BookingHandler) ListLocations(c *gin.Context) {
	result, err := h.service.ListBookingLocations(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetBooking handles GET /api/v1/bookings/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	bookingID, actor, ok := bookingRequest(c)
	if !ok {
		return
	}

	result, err := h.service.GetBooking(c.Request.Context(), actor, bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UpdateBooking handles PATCH /api/v1/bookings/:id.
func (h *BookingHandler) UpdateBooking(c *gin.Context) {
	bookingID, actor, ok := bookingRequest(c)
	if !ok {
		return
	}

	var req application.UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindingMessage(err))
		return
	}

	result, err := h.service.UpdateBooking(c.Request.Context(), actor.UserID, bookingID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UpdateApproval handles PATCH /api/v1/bookings/:id/approval.
func (h *BookingHandler) UpdateApproval(c *gin.Context) {
	bookingID, actor, ok := bookingRequest(c)
	if !ok {
		return
	}

	var req approvalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindingMessage(err))
		return
	}

	result, err := h.service.UpdateApprovalStatus(c.Request.Context(), actor.UserID, bookingID, bookingDomain.ApprovalStatus(req.Status))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UpdateWorkStatus handles PATCH /api/v1/bookings/:id/work-status.
func (h *BookingHandler) UpdateWorkStatus(c *gin.Context) {
	bookingID, actor, ok := bookingRequest(c)
	if !ok {
		return
	}

	var req workStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindingMessage(err))
		return
	}

	result, err := h.service.UpdateWorkStatus(c.Request.Context(), actor.UserID, bookingID, bookingDomain.WorkStatus(req.Status))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UpdatePaymentStatus handles PATCH /api/v1/bookings/:id/payment-status.
func (h *BookingHandler) UpdatePaymentStatus(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	var req paymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindingMessage(err))
		return
	}

	result, err := h.service.UpdatePaymentStatus(c.Request.Context(), bookingID, bookingDomain.PaymentStatus(req.Status))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// CancelBooking handles POST /api/v1/bookings/:id/cancel.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	bookingID, actor, ok := bookingRequest(c)
	if !ok {
		return
	}

	result, err := h.service.CancelBooking(c.Request.Context(), bookingID, &actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// bookingRequest reads the :id parameter and the caller. It writes the error
// response itself.
func bookingRequest(c *gin.Context) (uuid.UUID, application.Actor, bool) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return uuid.Nil, application.Actor{}, false
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return uuid.Nil, application.Actor{}, false
	}

	role, _ := middleware.GetUserRole(c)
	return bookingID, application.Actor{UserID: userID, Admin: role == middleware.RoleAdmin}, true
}
