package handler

import (
	"errors"
	"net/http"

	"refearn/internal/domain"
	"refearn/internal/service"
	"refearn/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type PurchaseHandler struct {
	distributor *service.DistributionService
	hub         *ws.Hub
}

func NewPurchaseHandler(distributor *service.DistributionService, hub *ws.Hub) *PurchaseHandler {
	return &PurchaseHandler{distributor: distributor, hub: hub}
}

type purchaseRequest struct {
	UserID string          `json:"user_id" binding:"required"`
	Amount decimal.Decimal `json:"amount"`
}

// Create records a purchase and distributes commissions up the referral
// chain. Live notifications go out only after the ledger has committed.
// POST /api/v1/purchases
func (h *PurchaseHandler) Create(c *gin.Context) {
	var req purchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id and a numeric amount are required"})
		return
	}

	receipt, err := h.distributor.Distribute(req.UserID, req.Amount)
	switch {
	case errors.Is(err, domain.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "invalid user id"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error processing purchase"})
		return
	}

	earnings := make([]gin.H, 0, len(receipt.Notifications))
	for _, n := range receipt.Notifications {
		h.hub.BroadcastToUser(n.Recipient, gin.H{
			"type":   "earningsUpdate",
			"amount": n.Amount,
			"level":  n.Level,
			"from":   n.From,
		})
		earnings = append(earnings, gin.H{
			"user_id": n.Recipient,
			"level":   n.Level,
			"amount":  n.Amount,
		})
	}

	c.JSON(http.StatusCreated, gin.H{
		"purchase_id": receipt.PurchaseID,
		"earnings":    earnings,
	})
}
