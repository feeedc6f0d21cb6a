package handlers

import (
	"net/http"

	"neelosewa/internal/services"

	"github.com/gin-gonic/gin"
)

// POST /api/auth/register
func (h *Handler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	res, err := h.Auth.Register(c.Request.Context(), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// POST /api/auth/login
func (h *Handler) Login(c *gin.Context) {
	var req services.LoginRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	res, err := h.Auth.Login(c.Request.Context(), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
