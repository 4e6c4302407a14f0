package handler

import (
	"errors"
	"net/http"

	"refearn/internal/domain"
	"refearn/internal/repository"

	"github.com/gin-gonic/gin"
)

type SignupHandler struct {
	userRepo *repository.UserRepository
}

func NewSignupHandler(userRepo *repository.UserRepository) *SignupHandler {
	return &SignupHandler{userRepo: userRepo}
}

type signupRequest struct {
	Name       string  `json:"name" binding:"required"`
	ReferrerID *string `json:"referrer_id"`
}

// Signup creates a user, optionally attached under a referrer.
// POST /api/v1/signup
func (h *SignupHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	user, err := h.userRepo.Create(req.Name, req.ReferrerID)
	switch {
	case errors.Is(err, domain.ErrReferralLimitExceeded):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "referrer not found"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not complete signup"})
	default:
		c.JSON(http.StatusCreated, gin.H{"user_id": user.ID})
	}
}
