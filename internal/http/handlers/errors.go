package handlers

import (
	"errors"
	"net/http"

	"neelosewa/internal/domain"
	"neelosewa/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// ErrorResponse standardizes error payloads.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func respondError(c *gin.Context, status int, code, message string, details any) {
	if code == "" {
		code = http.StatusText(status)
	}
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:     message,
		Code:      code,
		Details:   details,
		RequestID: middleware.GetRequestID(c),
	})
}

// RespondDomainError maps domain errors to HTTP responses. Internal errors
// never leak their cause.
func RespondDomainError(c *gin.Context, err error) {
	var funds domain.InsufficientFundsError
	switch {
	case domain.IsValidation(err):
		respondError(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case domain.IsUnauthorized(err):
		respondError(c, http.StatusUnauthorized, "unauthorized", err.Error(), nil)
	case errors.As(err, &funds):
		respondError(c, http.StatusPaymentRequired, "insufficient_funds", err.Error(), gin.H{
			"shortfall": funds.Shortfall(),
			"required":  funds.Required,
			"available": funds.Available,
		})
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, "not_found", err.Error(), nil)
	case domain.IsCapacityExceeded(err):
		respondError(c, http.StatusConflict, "capacity_exceeded", err.Error(), nil)
	case domain.IsSeatTaken(err):
		respondError(c, http.StatusConflict, "seat_taken", err.Error(), nil)
	case domain.IsAlreadyCancelled(err):
		respondError(c, http.StatusConflict, "already_cancelled", err.Error(), nil)
	case domain.IsConflict(err):
		respondError(c, http.StatusConflict, "conflict", err.Error(), nil)
	default:
		respondError(c, http.StatusInternalServerError, "internal_error", "something went wrong, please try again", nil)
	}
}
