package handlers

import (
	"net/http"

	"neelosewa/internal/domain/models"
	"neelosewa/internal/services"

	"github.com/gin-gonic/gin"
)

// POST /api/user/bookings/bus
func (h *Handler) BookBus(c *gin.Context) {
	var req models.BusBookingRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	res, err := h.Bookings.BookBus(c.Request.Context(), currentUser(c).UserID, req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// POST /api/user/bookings/hotel
func (h *Handler) BookHotel(c *gin.Context) {
	var req models.HotelBookingRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	res, err := h.Bookings.BookHotel(c.Request.Context(), currentUser(c).UserID, req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// GET /api/user/bookings?status=Confirmed|Cancelled
func (h *Handler) ListBookings(c *gin.Context) {
	status, err := services.ParseStatus(c.Query("status"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	views, err := h.Query.ListBookings(c.Request.Context(), currentUser(c).UserID, status)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// PUT /api/user/bookings/:id/cancel
func (h *Handler) CancelBooking(c *gin.Context) {
	res, err := h.Bookings.Cancel(c.Request.Context(), currentUser(c).UserID, c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":      "Booking cancelled",
		"refundAmount": res.RefundAmount,
		"newBalance":   res.NewBalance,
	})
}
