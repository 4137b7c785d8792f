package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/willowyoga/studiobooking/model"
	"github.com/willowyoga/studiobooking/repository"
	"github.com/willowyoga/studiobooking/service"
)

// checkoutTarget is the resolved subject of a checkout request
type checkoutTarget struct {
	booking  *model.Booking // existing pending booking, nil for fresh checkouts
	eventID  *string
	bundleID *string
	intake   model.IntakeDetails
	total    float64
	userID   *string
}

// resolveCheckoutTarget loads the booking or catalogue item being paid for
// and prices it. Responds with the API error itself and returns nil on
// failure.
func (h *Handler) resolveCheckoutTarget(c *gin.Context, req model.CheckoutAPIRequest) *checkoutTarget {
	actor := actorUserID(c)

	target := &checkoutTarget{userID: actor}

	if req.BookingID != "" {
		booking, err := h.repo.GetBookingByID(req.BookingID)
		if err != nil {
			if errors.Is(err, repository.ErrBookingNotFound) {
				c.JSON(http.StatusNotFound, model.ErrorResponse{
					Error:   "booking_not_found",
					Message: "Booking not found",
				})
				return nil
			}
			c.JSON(http.StatusInternalServerError, model.ErrorResponse{
				Error:   "internal_error",
				Message: "Failed to load booking",
			})
			return nil
		}

		if booking.PaymentStatus != model.PaymentStatusPending {
			c.JSON(http.StatusConflict, model.ErrorResponse{
				Error:   "booking_not_pending",
				Message: "This booking is not awaiting payment",
			})
			return nil
		}

		if booking.UserID != nil && (actor == nil || *actor != *booking.UserID) && !isAdmin(c) {
			c.JSON(http.StatusForbidden, model.ErrorResponse{
				Error:   "forbidden",
				Message: "This booking belongs to another user",
			})
			return nil
		}

		target.booking = booking
		target.eventID = booking.EventID
		target.bundleID = booking.BundleID
		target.userID = booking.UserID
		target.intake = model.IntakeDetails{
			Name:             booking.ContactName,
			Email:            booking.ContactEmail,
			Phone:            booking.ContactPhone,
			HealthConditions: booking.HealthConditions,
			AgreeTerms:       booking.AgreedToTerms,
		}
	} else {
		eventID, bundleID, err := bookingTargetIDs(req.EventID, req.BundleID)
		if err != nil {
			c.JSON(http.StatusBadRequest, model.ErrorResponse{
				Error:   "validation_failed",
				Message: err.Error(),
			})
			return nil
		}
		if req.Intake.Email == "" || req.Intake.Name == "" || !req.Intake.AgreeTerms {
			c.JSON(http.StatusBadRequest, model.ErrorResponse{
				Error:   "validation_failed",
				Message: "Intake details with agreed terms are required",
			})
			return nil
		}

		if err := h.repo.EnsureBookable(actor, eventID, bundleID); err != nil {
			writeBookingError(c, err)
			return nil
		}

		target.eventID = eventID
		target.bundleID = bundleID
		target.intake = req.Intake
	}

	if target.eventID != nil {
		event, err := h.repo.GetEventByID(*target.eventID)
		if err != nil {
			writeBookingError(c, err)
			return nil
		}
		target.total = event.Price
	} else {
		bundle, _, err := h.repo.GetBundleByID(*target.bundleID)
		if err != nil {
			writeBookingError(c, err)
			return nil
		}
		target.total = bundle.TotalPrice
	}

	return target
}

// Checkout starts payment for a booking. Card payments open a hosted payment
// page and complete through the webhook; wallet payments and fully-credited
// checkouts complete synchronously.
func (h *Handler) Checkout(c *gin.Context) {
	var req model.CheckoutAPIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error:   "validation_failed",
			Message: err.Error(),
		})
		return
	}

	target := h.resolveCheckoutTarget(c, req)
	if target == nil {
		return
	}

	now := time.Now()

	// Figure out how much stored credit covers before any money moves
	var creditToApply float64
	if req.UseCredit && target.userID != nil {
		available, err := h.repo.AvailableCredit(*target.userID, now)
		if err != nil {
			c.JSON(http.StatusInternalServerError, model.ErrorResponse{
				Error:   "internal_error",
				Message: "Failed to check credit balance",
			})
			return
		}
		creditToApply = available
		if creditToApply > target.total {
			creditToApply = target.total
		}
	}

	amountDue := target.total - creditToApply
	if amountDue > 0 && amountDue < service.MinimumChargeAmount {
		c.JSON(http.StatusUnprocessableEntity, model.ErrorResponse{
			Error:   "amount_too_low",
			Message: fmt.Sprintf("Remaining amount £%.2f is below the £%.2f processor minimum, pay without credit instead", amountDue, service.MinimumChargeAmount),
		})
		return
	}

	if amountDue == 0 && creditToApply > 0 {
		h.confirmSynchronously(c, target, model.ConfirmCheckoutRequest{
			Provider:        "credit",
			ProviderEventID: uuid.NewString(),
			EventType:       "credit.redemption",
			Amount:          0,
			Currency:        "gbp",
			PaymentMethod:   "credit",
			CreditApplied:   creditToApply,
			Now:             now,
		}, creditToApply)
		return
	}

	switch req.PaymentMethod {
	case model.CheckoutMethodWallet:
		h.walletCheckout(c, req, target, amountDue, creditToApply, now)
	case model.CheckoutMethodCard:
		h.hostedCheckout(c, target, amountDue, creditToApply)
	}
}

// walletCheckout charges a wallet payment method synchronously and confirms
// the booking in the same request.
func (h *Handler) walletCheckout(c *gin.Context, req model.CheckoutAPIRequest, target *checkoutTarget, amountDue, creditApplied float64, now time.Time) {
	if req.PaymentMethodID == "" {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error:   "validation_failed",
			Message: "payment_method_id is required for wallet payments",
		})
		return
	}

	charge, err := h.gateway.ChargePaymentMethod(service.ChargeRequest{
		Amount:          amountDue,
		Currency:        "gbp",
		PaymentMethodID: req.PaymentMethodID,
		CustomerEmail:   target.intake.Email,
		Description:     "Willow Yoga Studio booking",
	})
	if err != nil {
		if errors.Is(err, service.ErrAmountTooLow) {
			c.JSON(http.StatusUnprocessableEntity, model.ErrorResponse{
				Error:   "amount_too_low",
				Message: "Amount is below the processor minimum",
			})
			return
		}
		c.JSON(http.StatusBadGateway, model.ErrorResponse{
			Error:   "payment_error",
			Message: "Payment processor unavailable, please try again",
		})
		return
	}

	if !charge.Succeeded {
		intentID := charge.PaymentIntentID
		failReq := model.FailedPaymentRequest{
			Provider:        "stripe",
			ProviderEventID: intentID,
			EventType:       "payment_intent.payment_failed",
			PaymentIntentID: &intentID,
			Amount:          amountDue,
			Currency:        "gbp",
			Reason:          charge.FailureMessage,
			Now:             now,
		}
		if target.booking != nil {
			failReq.BookingID = &target.booking.ID
		}
		if err := h.repo.RecordFailedPayment(failReq); err != nil && !errors.Is(err, repository.ErrEventAlreadyProcessed) {
			log.Printf("Failed to record failed payment %s: %v", intentID, err)
		}

		c.JSON(http.StatusPaymentRequired, model.ErrorResponse{
			Error:   "payment_failed",
			Message: "Payment was declined: " + charge.FailureMessage,
		})
		return
	}

	intentID := charge.PaymentIntentID
	confirmReq := model.ConfirmCheckoutRequest{
		Provider:        "stripe",
		ProviderEventID: intentID,
		EventType:       "payment_intent.succeeded",
		Amount:          amountDue,
		Currency:        "gbp",
		PaymentMethod:   model.CheckoutMethodWallet,
		CreditApplied:   creditApplied,
		PaymentIntentID: &intentID,
		Now:             now,
	}

	h.confirmSynchronously(c, target, confirmReq, creditApplied)
}

// confirmSynchronously applies a completed payment in-request and replies
// with the paid booking. A confirmation failure after a successful charge
// triggers a best-effort refund.
func (h *Handler) confirmSynchronously(c *gin.Context, target *checkoutTarget, confirmReq model.ConfirmCheckoutRequest, creditApplied float64) {
	confirmReq.UserID = target.userID
	confirmReq.EventID = target.eventID
	confirmReq.BundleID = target.bundleID
	confirmReq.Intake = target.intake
	if target.booking != nil {
		confirmReq.BookingID = &target.booking.ID
	}

	result, err := h.repo.ConfirmCheckout(confirmReq)
	if err != nil {
		if confirmReq.Amount > 0 && confirmReq.PaymentIntentID != nil {
			if refundErr := h.gateway.RefundPayment(*confirmReq.PaymentIntentID, confirmReq.Amount); refundErr != nil {
				log.Printf("Refund after failed confirmation %s: %v", *confirmReq.PaymentIntentID, refundErr)
			}
		}

		if errors.Is(err, repository.ErrEventFull) {
			c.JSON(http.StatusConflict, model.ErrorResponse{
				Error:   "event_full",
				Message: "This class filled up before payment completed, your charge has been refunded",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to confirm booking",
		})
		return
	}

	h.cacheBookingStatus(result.Booking, "Booking confirmed")
	h.notifier.BookingConfirmed(result)

	c.JSON(http.StatusOK, model.CheckoutResponse{
		BookingID:     result.Booking.ID,
		Status:        result.Booking.Status,
		PaymentStatus: result.Booking.PaymentStatus,
		AmountDue:     confirmReq.Amount,
		CreditApplied: creditApplied,
		Message:       "Booking confirmed",
		StatusURL:     fmt.Sprintf("/api/bookings/%s/status", result.Booking.ID),
	})
}

// hostedCheckout creates a pending booking and opens a hosted payment page.
// The webhook completes the booking once the processor confirms payment.
func (h *Handler) hostedCheckout(c *gin.Context, target *checkoutTarget, amountDue, creditApplied float64) {
	booking := target.booking
	if booking == nil {
		created, err := h.repo.CreateBooking(model.CreateBookingRequest{
			UserID:   target.userID,
			EventID:  target.eventID,
			BundleID: target.bundleID,
			Intake:   target.intake,
		})
		if err != nil {
			writeBookingError(c, err)
			return
		}
		booking = created
	}

	metadata := map[string]string{
		"booking_id":     booking.ID,
		"credit_applied": fmt.Sprintf("%.2f", creditApplied),
	}
	if target.userID != nil {
		metadata["user_id"] = *target.userID
	}

	session, err := h.gateway.CreateCheckoutSession(service.CheckoutSessionRequest{
		Amount:        amountDue,
		Currency:      "gbp",
		Description:   "Willow Yoga Studio booking",
		CustomerEmail: target.intake.Email,
		Metadata:      metadata,
	})
	if err != nil {
		log.Printf("Failed to create checkout session for booking %s: %v", booking.ID, err)
		c.JSON(http.StatusBadGateway, model.ErrorResponse{
			Error:   "payment_error",
			Message: "Payment processor unavailable, retry checkout with booking_id " + booking.ID,
		})
		return
	}

	h.cacheBookingStatus(booking, "Awaiting payment")

	c.JSON(http.StatusOK, model.CheckoutResponse{
		BookingID:     booking.ID,
		Status:        booking.Status,
		PaymentStatus: booking.PaymentStatus,
		CheckoutURL:   session.URL,
		SessionID:     session.SessionID,
		AmountDue:     amountDue,
		CreditApplied: creditApplied,
		Message:       "Complete payment to confirm your booking",
		StatusURL:     fmt.Sprintf("/api/bookings/%s/status", booking.ID),
	})
}
