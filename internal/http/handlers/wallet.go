package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type topUpRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// GET /api/user/wallet
func (h *Handler) GetBalance(c *gin.Context) {
	balance, err := h.Wallet.GetBalance(c.Request.Context(), currentUser(c).UserID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"walletBalance": balance})
}

// POST /api/user/wallet/add
func (h *Handler) TopUp(c *gin.Context) {
	var req topUpRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	balance, err := h.Wallet.TopUp(c.Request.Context(), currentUser(c).UserID, req.Amount)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Wallet topped up", "walletBalance": balance})
}

// GET /api/user/wallet/transactions
func (h *Handler) Transactions(c *gin.Context) {
	entries, err := h.Wallet.History(c.Request.Context(), currentUser(c).UserID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}
