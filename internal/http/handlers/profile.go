package handlers

import (
	"net/http"

	"neelosewa/internal/domain/models"

	"github.com/gin-gonic/gin"
)

// GET /api/user/profile
func (h *Handler) GetProfile(c *gin.Context) {
	user, err := h.Profile.Get(c.Request.Context(), currentUser(c).UserID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// PUT /api/user/profile
func (h *Handler) UpdateProfile(c *gin.Context) {
	var in models.ProfileUpdate
	if !BindJSONOrError(c, &in) {
		return
	}
	user, err := h.Profile.Update(c.Request.Context(), currentUser(c).UserID, in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
