package handler

import (
	"net/http"

	"refearn/internal/repository"

	"github.com/gin-gonic/gin"
)

type EarningsHandler struct {
	ledger *repository.LedgerRepository
}

func NewEarningsHandler(ledger *repository.LedgerRepository) *EarningsHandler {
	return &EarningsHandler{ledger: ledger}
}

// Get returns a user's per-level totals and full earning history.
// GET /api/v1/earnings/:user_id
func (h *EarningsHandler) Get(c *gin.Context) {
	userID := c.Param("user_id")

	breakdown, err := h.ledger.SummaryByLevel(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load earnings"})
		return
	}
	history, err := h.ledger.History(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load earnings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":   userID,
		"breakdown": breakdown,
		"history":   history,
	})
}
