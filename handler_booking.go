package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/willowyoga/studiobooking/model"
	"github.com/willowyoga/studiobooking/repository"
)

// bookingTargetIDs validates the event/bundle choice from an API request.
// Exactly one target must be named.
func bookingTargetIDs(eventID, bundleID string) (*string, *string, error) {
	if (eventID == "") == (bundleID == "") {
		return nil, nil, errors.New("exactly one of event_id or bundle_id is required")
	}
	if eventID != "" {
		return &eventID, nil, nil
	}
	return nil, &bundleID, nil
}

// writeBookingError translates repository sentinels into API errors
func writeBookingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrEventNotFound):
		c.JSON(http.StatusNotFound, model.ErrorResponse{
			Error:   "event_not_found",
			Message: "Event not found or no longer active",
		})
	case errors.Is(err, repository.ErrBundleNotFound):
		c.JSON(http.StatusNotFound, model.ErrorResponse{
			Error:   "bundle_not_found",
			Message: "Bundle not found or no longer active",
		})
	case errors.Is(err, repository.ErrEventFull):
		c.JSON(http.StatusConflict, model.ErrorResponse{
			Error:   "event_full",
			Message: "This class is fully booked",
		})
	case errors.Is(err, repository.ErrDuplicateBooking):
		c.JSON(http.StatusConflict, model.ErrorResponse{
			Error:   "duplicate_booking",
			Message: "You already have a booking for this",
		})
	case errors.Is(err, repository.ErrBookingBlocked):
		c.JSON(http.StatusConflict, model.ErrorResponse{
			Error:   "booking_blocked",
			Message: "An earlier booking for this class is unresolved, please contact the studio",
		})
	default:
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to process booking",
		})
	}
}

// CreateBooking creates a pending booking for an event or bundle.
// Guests may book; payment happens through the checkout endpoint.
func (h *Handler) CreateBooking(c *gin.Context) {
	var req model.CreateBookingAPIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error:   "validation_failed",
			Message: err.Error(),
		})
		return
	}

	eventID, bundleID, err := bookingTargetIDs(req.EventID, req.BundleID)
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error:   "validation_failed",
			Message: err.Error(),
		})
		return
	}

	booking, err := h.repo.CreateBooking(model.CreateBookingRequest{
		UserID:   actorUserID(c),
		EventID:  eventID,
		BundleID: bundleID,
		Intake:   req.Intake,
	})
	if err != nil {
		writeBookingError(c, err)
		return
	}

	h.cacheBookingStatus(booking, "Booking created, awaiting payment")

	c.JSON(http.StatusCreated, model.BookingResponse{
		BookingID:     booking.ID,
		Status:        booking.Status,
		PaymentStatus: booking.PaymentStatus,
		Message:       "Booking created, awaiting payment",
		StatusURL:     fmt.Sprintf("/api/bookings/%s/status", booking.ID),
	})
}

// GetBookingStatus returns booking status, served from cache when possible
func (h *Handler) GetBookingStatus(c *gin.Context) {
	bookingID := c.Param("bookingId")

	if cached, err := h.cache.GetBookingStatus(bookingID); err == nil && cached != nil {
		c.JSON(http.StatusOK, cached)
		return
	}

	booking, err := h.repo.GetBookingByID(bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			c.JSON(http.StatusNotFound, model.ErrorResponse{
				Error:   "booking_not_found",
				Message: "Booking not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to get booking",
		})
		return
	}

	c.JSON(http.StatusOK, booking.ToBookingStatusResponse())
}

// ListUserBookings returns the authenticated user's bookings
func (h *Handler) ListUserBookings(c *gin.Context) {
	userID := actorUserID(c)
	if userID == nil {
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{
			Error:   "unauthorized",
			Message: "User ID not found in token",
		})
		return
	}

	limit, offset := parsePagination(c)

	bookings, total, err := h.repo.ListBookings(model.BookingFilter{
		UserID: *userID,
		Status: c.Query("status"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to list bookings",
		})
		return
	}

	responses := make([]model.BookingStatusResponse, 0, len(bookings))
	for i := range bookings {
		responses = append(responses, *bookings[i].ToBookingStatusResponse())
	}

	c.JSON(http.StatusOK, model.UserBookingsResponse{
		Bookings: responses,
		Total:    total,
	})
}

// CancelBooking cancels a booking. The default path applies the time-based
// refund/credit policy; apply_policy=false records a plain decline instead.
// Members can only cancel their own bookings; admins can cancel any.
func (h *Handler) CancelBooking(c *gin.Context) {
	bookingID := c.Param("bookingId")

	// Body is optional; the zero value selects the policy path
	var req model.CancelBookingAPIRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, model.ErrorResponse{
				Error:   "validation_failed",
				Message: err.Error(),
			})
			return
		}
	}

	applyPolicy := true
	if req.ApplyPolicy != nil {
		applyPolicy = *req.ApplyPolicy
	}

	var actor *string
	if !isAdmin(c) {
		actor = actorUserID(c)
		if actor == nil {
			c.JSON(http.StatusUnauthorized, model.ErrorResponse{
				Error:   "unauthorized",
				Message: "User ID not found in token",
			})
			return
		}
	}

	outcome, err := h.repo.CancelBooking(model.CancelBookingRequest{
		BookingID:   bookingID,
		ActorUserID: actor,
		Reason:      req.Reason,
		ApplyPolicy: applyPolicy,
		Now:         time.Now(),
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrBookingNotFound):
			c.JSON(http.StatusNotFound, model.ErrorResponse{
				Error:   "booking_not_found",
				Message: "Booking not found",
			})
		case errors.Is(err, repository.ErrNotBookingOwner):
			c.JSON(http.StatusForbidden, model.ErrorResponse{
				Error:   "forbidden",
				Message: "This booking belongs to another user",
			})
		case errors.Is(err, repository.ErrAlreadyCancelled):
			c.JSON(http.StatusConflict, model.ErrorResponse{
				Error:   "already_cancelled",
				Message: "This booking has already been cancelled",
			})
		default:
			c.JSON(http.StatusInternalServerError, model.ErrorResponse{
				Error:   "internal_error",
				Message: "Failed to cancel booking",
			})
		}
		return
	}

	h.cacheBookingStatus(outcome.Booking, "Booking cancelled")

	// Money movement back to the processor is best-effort after commit; the
	// refund intent is already recorded on the payment row.
	if outcome.RefundAmount > 0 && outcome.Payment != nil && outcome.Payment.PaymentIntentID != nil {
		if err := h.gateway.RefundPayment(*outcome.Payment.PaymentIntentID, outcome.RefundAmount); err != nil {
			log.Printf("Refund request failed for booking %s: %v", bookingID, err)
		}
	}

	if applyPolicy {
		h.notifier.BookingCancelled(outcome)
	} else {
		h.notifier.BookingDeclined(outcome)
	}

	message := "Booking cancelled"
	if outcome.RefundAmount > 0 {
		message += fmt.Sprintf(", £%.2f refund requested", outcome.RefundAmount)
	}
	if outcome.CreditAmount > 0 {
		message += fmt.Sprintf(", £%.2f studio credit issued", outcome.CreditAmount)
	}

	c.JSON(http.StatusOK, model.CancelBookingResponse{
		BookingID:    outcome.Booking.ID,
		RefundAmount: outcome.RefundAmount,
		CreditAmount: outcome.CreditAmount,
		Message:      message,
	})
}

// cacheBookingStatus refreshes the cached status record polled after checkout
func (h *Handler) cacheBookingStatus(booking *model.Booking, message string) {
	update := &model.BookingStatusUpdate{
		BookingID:     booking.ID,
		Status:        booking.Status,
		PaymentStatus: booking.PaymentStatus,
		Message:       message,
		UpdatedAt:     time.Now(),
	}
	if err := h.cache.SetBookingStatus(booking.ID, update, bookingStatusTTL); err != nil {
		log.Printf("Failed to cache booking status %s: %v", booking.ID, err)
	}
}
