package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-kit/log"

	"rentals-api/dto"
	"rentals-api/services"
)

// BookingController serves /bookings.
type BookingController struct {
	bookings services.BookingService
	logger   log.Logger
}

func NewBookingController(bookings services.BookingService, logger log.Logger) *BookingController {
	return &BookingController{bookings: bookings, logger: logger}
}

// Create handles POST /bookings.
// The caller books as guest; overlapping dates answer 409.
func (ctrl *BookingController) Create(c *gin.Context) {
	// 1. Parse the stay
	var req dto.CreateBookingRequest
	if !bindJSON(c, &req) {
		return
	}

	// 2. The service checks dates, capacity and availability, then prices it
	booking, err := ctrl.bookings.Create(c.Request.Context(), actor(c), req)
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}

	// 3. 201 with the final price filled in
	c.JSON(http.StatusCreated, dto.OK("Booking created successfully", booking, dto.BookingLinks(booking.ID, booking.PropertyID)...))
}

// Get handles GET /bookings/:booking_id.
func (ctrl *BookingController) Get(c *gin.Context) {
	id, ok := pathID(c, "booking_id", "Booking")
	if !ok {
		return
	}

	// visible to its guest, the property owner and admins
	booking, err := ctrl.bookings.GetByID(c.Request.Context(), actor(c), id)
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK("", booking, dto.BookingLinks(booking.ID, booking.PropertyID)...))
}

// Rate handles PATCH /bookings/:booking_id/rating.
func (ctrl *BookingController) Rate(c *gin.Context) {
	id, ok := pathID(c, "booking_id", "Booking")
	if !ok {
		return
	}
	var req dto.RatingRequest
	if !bindJSON(c, &req) {
		return
	}

	booking, changed, err := ctrl.bookings.Rate(c.Request.Context(), actor(c), id, req)
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}
	// a repeated rating answers like any other no-op update
	c.JSON(http.StatusOK, dto.OK(updated(changed, "Rating saved successfully"), booking, dto.BookingLinks(booking.ID, booking.PropertyID)...))
}

// Delete handles DELETE /bookings/:booking_id.
func (ctrl *BookingController) Delete(c *gin.Context) {
	id, ok := pathID(c, "booking_id", "Booking")
	if !ok {
		return
	}
	if err := ctrl.bookings.Delete(c.Request.Context(), actor(c), id); err != nil {
		respondError(c, ctrl.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK("Booking cancelled successfully", nil))
}
