package booking

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"travel/internal/apperror"
)

type Service interface {
	CreateBooking(ctx context.Context, req CreateRequest) (*Response, error)
	CancelBooking(ctx context.Context, bookingID string) (*CancelResponse, error)
	ListUserBookings(ctx context.Context, userID string) (*UserBookings, error)
	GetBookingDetails(ctx context.Context, bookingID string) (*Detail, error)
}

type Handler struct {
	service Service
}

func NewHandler(s Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterRoutes(router gin.IRoutes) {
	router.POST("/api/book", h.CreateBookingHandler)
	router.POST("/api/cancel", h.CancelBookingHandler)
	router.GET("/api/bookings/:user_id", h.ListUserBookingsHandler)
	router.GET("/api/booking/:booking_id", h.GetBookingHandler)
}

// CreateBookingHandler godoc
// @Summary      Book a seat class on a schedule
// @Description  The booking outcome is derived from the seat class's availability text.
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Param        request body CreateRequest true "Booking request"
// @Success      200 {object} Response
// @Failure      400 {object} map[string]string
// @Failure      404 {object} map[string]string
// @Router       /api/book [post]
func (h *Handler) CreateBookingHandler(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperror.Validation("Invalid JSON body: "+err.Error()))
		return
	}

	resp, err := h.service.CreateBooking(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CancelBookingHandler godoc
// @Summary      Cancel a booking
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Param        request body CancelRequest true "Cancellation request"
// @Success      200 {object} CancelResponse
// @Failure      404 {object} map[string]string
// @Failure      409 {object} map[string]string
// @Router       /api/cancel [post]
func (h *Handler) CancelBookingHandler(c *gin.Context) {
	var req CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperror.Validation("Invalid JSON body: "+err.Error()))
		return
	}

	resp, err := h.service.CancelBooking(c.Request.Context(), req.BookingID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary  List a user's bookings
// @Tags     bookings
// @Produce  json
// @Param    user_id path string true "User ID"
// @Success  200 {object} UserBookings
// @Router   /api/bookings/{user_id} [get]
func (h *Handler) ListUserBookingsHandler(c *gin.Context) {
	resp, err := h.service.ListUserBookings(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary  Booking details with its schedule
// @Tags     bookings
// @Produce  json
// @Param    booking_id path string true "Booking ID"
// @Success  200 {object} Detail
// @Failure  404 {object} map[string]string
// @Router   /api/booking/{booking_id} [get]
func (h *Handler) GetBookingHandler(c *gin.Context) {
	resp, err := h.service.GetBookingDetails(c.Request.Context(), c.Param("booking_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// respondError keeps the booking response shape on failures: booking_id is
// present and empty.
func respondError(c *gin.Context, err error) {
	apperror.RespondWith(c, err, gin.H{"booking_id": ""})
}
