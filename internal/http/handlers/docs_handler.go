package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GET /api/user/bookings/:id/e-ticket
func (h *Handler) GetETicketPDF(c *gin.Context) {
	pdf, filename, err := h.Docs.ETicket(c.Request.Context(), currentUser(c).UserID, c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
