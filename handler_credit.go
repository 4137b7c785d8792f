package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/willowyoga/studiobooking/model"
)

// ListUserCredits returns the authenticated user's credits and usable balance
func (h *Handler) ListUserCredits(c *gin.Context) {
	userID := actorUserID(c)
	if userID == nil {
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{
			Error:   "unauthorized",
			Message: "User ID not found in token",
		})
		return
	}

	credits, err := h.repo.ListUserCredits(*userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to list credits",
		})
		return
	}

	balance, err := h.repo.AvailableCredit(*userID, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to compute credit balance",
		})
		return
	}

	responses := make([]model.CreditResponse, 0, len(credits))
	for i := range credits {
		responses = append(responses, *credits[i].ToCreditResponse())
	}

	c.JSON(http.StatusOK, model.UserCreditsResponse{
		Credits:          responses,
		AvailableBalance: balance,
	})
}
