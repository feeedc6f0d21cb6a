package handlers

import (
	"net/http"

	"neelosewa/internal/domain/models"

	"github.com/gin-gonic/gin"
)

type roleRequest struct {
	Role string `json:"role" binding:"required"`
}

func (h *Handler) CreateBus(c *gin.Context) {
	var in models.BusInput
	if !BindJSONOrError(c, &in) {
		return
	}
	bus, err := h.Admin.CreateBus(c.Request.Context(), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, bus)
}

func (h *Handler) UpdateBus(c *gin.Context) {
	var in models.BusInput
	if !BindJSONOrError(c, &in) {
		return
	}
	bus, err := h.Admin.UpdateBus(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, bus)
}

func (h *Handler) DeleteBus(c *gin.Context) {
	if err := h.Admin.DeleteBus(c.Request.Context(), c.Param("id")); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Bus removed"})
}

func (h *Handler) CreateHotel(c *gin.Context) {
	var in models.HotelInput
	if !BindJSONOrError(c, &in) {
		return
	}
	hotel, err := h.Admin.CreateHotel(c.Request.Context(), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, hotel)
}

func (h *Handler) UpdateHotel(c *gin.Context) {
	var in models.HotelInput
	if !BindJSONOrError(c, &in) {
		return
	}
	hotel, err := h.Admin.UpdateHotel(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, hotel)
}

func (h *Handler) DeleteHotel(c *gin.Context) {
	if err := h.Admin.DeleteHotel(c.Request.Context(), c.Param("id")); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Hotel removed"})
}

func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.Admin.ListUsers(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handler) UpdateUserRole(c *gin.Context) {
	var req roleRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	user, err := h.Admin.UpdateRole(c.Request.Context(), c.Param("id"), req.Role)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) ReconcileWallet(c *gin.Context) {
	rec, err := h.Wallet.Reconcile(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}
