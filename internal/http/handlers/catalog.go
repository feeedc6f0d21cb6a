package handlers

import (
	"net/http"

	"neelosewa/internal/domain/models"

	"github.com/gin-gonic/gin"
)

// GET /api/public/buses?from&to&date
func (h *Handler) SearchBuses(c *gin.Context) {
	list, err := h.Catalog.SearchBuses(c.Request.Context(), models.BusSearch{
		From: c.Query("from"),
		To:   c.Query("to"),
		Date: c.Query("date"),
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /api/public/buses/:id
func (h *Handler) GetBus(c *gin.Context) {
	bus, err := h.Catalog.GetBus(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, bus)
}

// GET /api/public/buses/:id/seats
func (h *Handler) GetSeatMap(c *gin.Context) {
	seats, err := h.Catalog.SeatMap(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, seats)
}

// GET /api/public/hotels?location&checkIn
func (h *Handler) SearchHotels(c *gin.Context) {
	list, err := h.Catalog.SearchHotels(c.Request.Context(), models.HotelSearch{
		Location: c.Query("location"),
		CheckIn:  c.Query("checkIn"),
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /api/public/hotels/:id
func (h *Handler) GetHotel(c *gin.Context) {
	hotel, err := h.Catalog.GetHotel(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, hotel)
}

// GET /api/tracking/:ticketNumber
func (h *Handler) TrackTicket(c *gin.Context) {
	view, err := h.Tracking.Track(c.Request.Context(), c.Param("ticketNumber"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
