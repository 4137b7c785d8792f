package main

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/willowyoga/studiobooking/model"
	"github.com/willowyoga/studiobooking/repository"
	"github.com/willowyoga/studiobooking/service"
)

// PaymentWebhook receives processor callbacks. The signature is verified
// against the raw body before anything is parsed; unverifiable requests are
// rejected with no state change. Handled events are acked with 200 even when
// the booking can no longer be confirmed, because the processor retries on
// anything else and retrying will not fix those cases.
func (h *Handler) PaymentWebhook(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error:   "invalid_payload",
			Message: "Failed to read request body",
		})
		return
	}

	signature := c.GetHeader("Stripe-Signature")
	if err := h.gateway.VerifyWebhookSignature(payload, signature, time.Now()); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error:   "invalid_signature",
			Message: "Webhook signature verification failed",
		})
		return
	}

	event, err := h.gateway.ParseWebhookEvent(payload)
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error:   "invalid_payload",
			Message: "Failed to parse webhook payload",
		})
		return
	}

	switch event.Type {
	case service.WebhookCheckoutCompleted:
		h.handleCheckoutCompleted(c, event)
	case service.WebhookPaymentFailed:
		h.handlePaymentFailed(c, event)
	default:
		// Unhandled event types are acked so the processor stops retrying
		c.Status(http.StatusOK)
	}
}

// handleCheckoutCompleted confirms the pending booking referenced in the
// session metadata
func (h *Handler) handleCheckoutCompleted(c *gin.Context, event *service.WebhookEvent) {
	confirmReq := model.ConfirmCheckoutRequest{
		Provider:        "stripe",
		ProviderEventID: event.ID,
		EventType:       event.Type,
		Amount:          event.Amount,
		Currency:        event.Currency,
		PaymentMethod:   model.CheckoutMethodCard,
		Now:             time.Now(),
	}
	if event.SessionID != "" {
		sessionID := event.SessionID
		confirmReq.CheckoutSessionID = &sessionID
	}
	if event.PaymentIntentID != "" {
		intentID := event.PaymentIntentID
		confirmReq.PaymentIntentID = &intentID
	}

	if bookingID := event.Metadata["booking_id"]; bookingID != "" {
		confirmReq.BookingID = &bookingID
	}
	if userID := event.Metadata["user_id"]; userID != "" {
		confirmReq.UserID = &userID
	}
	if credit := event.Metadata["credit_applied"]; credit != "" {
		if parsed, err := strconv.ParseFloat(credit, 64); err == nil {
			confirmReq.CreditApplied = parsed
		}
	}
	confirmReq.Intake = model.IntakeDetails{Email: event.CustomerEmail}

	if confirmReq.BookingID == nil {
		log.Printf("Webhook %s has no booking reference, acking", event.ID)
		c.Status(http.StatusOK)
		return
	}

	result, err := h.repo.ConfirmCheckout(confirmReq)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEventAlreadyProcessed):
			// Redelivery, already applied
			c.Status(http.StatusOK)
		case errors.Is(err, repository.ErrBookingNotPending):
			log.Printf("Webhook %s: booking %s is not pending, acking", event.ID, *confirmReq.BookingID)
			c.Status(http.StatusOK)
		case errors.Is(err, repository.ErrEventFull):
			// The class filled before the customer finished paying. The
			// booking stays pending for the studio to resolve manually.
			log.Printf("Webhook %s: capacity exhausted for booking %s, manual resolution needed", event.ID, *confirmReq.BookingID)
			c.Status(http.StatusOK)
		default:
			log.Printf("Webhook %s: confirmation failed: %v", event.ID, err)
			c.JSON(http.StatusInternalServerError, model.ErrorResponse{
				Error:   "internal_error",
				Message: "Failed to apply webhook",
			})
		}
		return
	}

	h.cacheBookingStatus(result.Booking, "Booking confirmed")
	h.notifier.BookingConfirmed(result)

	c.Status(http.StatusOK)
}

// handlePaymentFailed stores the failure for observability and acks
func (h *Handler) handlePaymentFailed(c *gin.Context, event *service.WebhookEvent) {
	failReq := model.FailedPaymentRequest{
		Provider:        "stripe",
		ProviderEventID: event.ID,
		EventType:       event.Type,
		Amount:          event.Amount,
		Currency:        event.Currency,
		Reason:          event.FailureMessage,
		Now:             time.Now(),
	}
	if event.PaymentIntentID != "" {
		intentID := event.PaymentIntentID
		failReq.PaymentIntentID = &intentID
	}
	if bookingID := event.Metadata["booking_id"]; bookingID != "" {
		failReq.BookingID = &bookingID
	}

	if err := h.repo.RecordFailedPayment(failReq); err != nil && !errors.Is(err, repository.ErrEventAlreadyProcessed) {
		log.Printf("Webhook %s: failed to record payment failure: %v", event.ID, err)
	}

	c.Status(http.StatusOK)
}
