package postgres

import (
	"errors"
	"fmt"
	"log"

	"github.com/lib/pq"
	"github.com/willowyoga/studiobooking/model"
	"github.com/willowyoga/studiobooking/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateBooking creates a pending booking for a single event or a bundle,
// guarding against duplicate paid bookings. The guard and the insert share
// one transaction; the partial unique index backs the guard up under
// concurrency.
func (r *Repository) CreateBooking(req model.CreateBookingRequest) (*model.Booking, error) {
	var booking model.Booking

	err := r.db.Transaction(func(tx *gorm.DB) error {
		eventIDs, err := ensureBookableTx(tx, req.UserID, req.EventID, req.BundleID)
		if err != nil {
			return err
		}

		booking = model.Booking{
			UserID:           req.UserID,
			EventID:          req.EventID,
			BundleID:         req.BundleID,
			EventIDs:         pq.StringArray(eventIDs),
			Status:           model.BookingStatusConfirmed,
			PaymentStatus:    model.PaymentStatusPending,
			ContactName:      req.Intake.Name,
			ContactEmail:     req.Intake.Email,
			ContactPhone:     req.Intake.Phone,
			HealthConditions: req.Intake.HealthConditions,
			AgreedToTerms:    req.Intake.AgreeTerms,
		}

		if err := tx.Create(&booking).Error; err != nil {
			return fmt.Errorf("failed to create booking: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &booking, nil
}

// GetBookingByID retrieves a booking by its ID
func (r *Repository) GetBookingByID(bookingID string) (*model.Booking, error) {
	var booking model.Booking
	if err := r.db.Where("id = ?", bookingID).First(&booking).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &booking, nil
}

// ListBookings retrieves bookings with filtering and pagination
func (r *Repository) ListBookings(filter model.BookingFilter) ([]model.Booking, int, error) {
	var bookings []model.Booking
	var total int64

	query := r.db.Model(&model.Booking{})

	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.PaymentStatus != "" {
		query = query.Where("payment_status = ?", filter.PaymentStatus)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	if err := query.Order("created_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&bookings).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	return bookings, int(total), nil
}

// EnsureBookable re-runs the duplicate and capacity guards without writing
// anything. The checkout path calls this before talking to the payment
// processor.
func (r *Repository) EnsureBookable(userID, eventID, bundleID *string) error {
	_, err := ensureBookableTx(r.db, userID, eventID, bundleID)
	return err
}

// ensureBookableTx validates the booking target and returns the member event
// IDs the booking would occupy a place in.
func ensureBookableTx(tx *gorm.DB, userID, eventID, bundleID *string) ([]string, error) {
	if eventID != nil {
		var event model.Event
		if err := tx.Where("id = ? AND status = ?", *eventID, model.EventStatusActive).
			First(&event).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, repository.ErrEventNotFound
			}
			return nil, fmt.Errorf("failed to load event: %w", err)
		}
		if event.SpotsRemaining() <= 0 {
			return nil, repository.ErrEventFull
		}

		if userID != nil {
			var existing model.Booking
			err := tx.Where("user_id = ? AND event_id = ? AND status <> ?",
				*userID, *eventID, model.BookingStatusCancelled).
				Order("created_at DESC").
				First(&existing).Error
			if err == nil {
				if existing.PaymentStatus == model.PaymentStatusPaid {
					return nil, repository.ErrDuplicateBooking
				}
				// A lingering pending/failed booking blocks rebooking; the
				// customer is told to contact the studio.
				return nil, repository.ErrBookingBlocked
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("failed to check existing bookings: %w", err)
			}
		}

		return []string{event.ID}, nil
	}

	var bundle model.Bundle
	if err := tx.Where("id = ? AND status = ?", *bundleID, model.BundleStatusActive).
		First(&bundle).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrBundleNotFound
		}
		return nil, fmt.Errorf("failed to load bundle: %w", err)
	}

	if userID != nil {
		var count int64
		err := tx.Model(&model.Booking{}).
			Where("user_id = ? AND bundle_id = ? AND status <> ?",
				*userID, *bundleID, model.BookingStatusCancelled).
			Count(&count).Error
		if err != nil {
			return nil, fmt.Errorf("failed to check existing bundle bookings: %w", err)
		}
		if count > 0 {
			return nil, repository.ErrDuplicateBooking
		}
	}

	var events []model.Event
	err := tx.Joins("JOIN bundle_events ON bundle_events.event_id = events.id").
		Where("bundle_events.bundle_id = ?", *bundleID).
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load bundle events: %w", err)
	}

	eventIDs := make([]string, 0, len(events))
	for i := range events {
		if events[i].SpotsRemaining() <= 0 {
			return nil, repository.ErrEventFull
		}
		eventIDs = append(eventIDs, events[i].ID)
	}

	return eventIDs, nil
}

// ConfirmCheckout applies a confirmed payment as one transaction:
// idempotency-ledger insert, booking transition or creation, client upsert,
// credit consumption, per-event counter increments and the Payment row.
// Redelivery of the same provider event conflicts on the ledger insert and
// returns ErrEventAlreadyProcessed with no state change.
func (r *Repository) ConfirmCheckout(req model.ConfirmCheckoutRequest) (*model.ConfirmCheckoutResult, error) {
	result := &model.ConfirmCheckoutResult{}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := markWebhookProcessedTx(tx, req.Provider, req.ProviderEventID, req.EventType, req.Now); err != nil {
			return err
		}

		booking, freshlyPaid, err := resolvePaidBookingTx(tx, req)
		if err != nil {
			return err
		}

		// The booking row is the authoritative contact record; hosted-checkout
		// callbacks only echo the customer email.
		if err := upsertClientTx(tx, clientIntake(booking, req.Intake)); err != nil {
			return err
		}

		var creditApplied float64
		if req.CreditApplied > 0 && req.UserID != nil {
			applied, err := consumeCreditTx(tx, *req.UserID, req.CreditApplied, req.Now)
			if err != nil {
				return err
			}
			if applied < req.CreditApplied {
				log.Printf("Credit shortfall on booking %s: requested %.2f, applied %.2f",
					booking.ID, req.CreditApplied, applied)
			}
			creditApplied = applied
		}

		if freshlyPaid {
			for _, eventID := range booking.EventIDs {
				if err := incrementEventBookings(tx, eventID); err != nil {
					return err
				}
			}
		}

		payment := model.Payment{
			BookingID:         &booking.ID,
			Amount:            req.Amount,
			Currency:          req.Currency,
			PaymentMethod:     req.PaymentMethod,
			Status:            model.PaymentRecordSucceeded,
			CreditApplied:     creditApplied,
			CheckoutSessionID: req.CheckoutSessionID,
			PaymentIntentID:   req.PaymentIntentID,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return fmt.Errorf("failed to create payment record: %w", err)
		}

		var events []model.Event
		if len(booking.EventIDs) > 0 {
			if err := tx.Where("id IN ?", []string(booking.EventIDs)).Find(&events).Error; err != nil {
				return fmt.Errorf("failed to load booked events: %w", err)
			}
		}

		result.Booking = booking
		result.Payment = &payment
		result.Events = events
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// resolvePaidBookingTx transitions the referenced pending booking to paid, or
// creates/reuses a paid booking for the direct-checkout path. freshlyPaid
// reports whether this call moved the booking into the paid state (and so
// whether counters still need incrementing). Cancellation is terminal: a late
// callback for a cancelled booking surfaces as ErrBookingNotPending.
func resolvePaidBookingTx(tx *gorm.DB, req model.ConfirmCheckoutRequest) (*model.Booking, bool, error) {
	if req.BookingID != nil {
		res := tx.Model(&model.Booking{}).
			Where("id = ? AND payment_status = ? AND status <> ?",
				*req.BookingID, model.PaymentStatusPending, model.BookingStatusCancelled).
			Updates(map[string]interface{}{
				"payment_status": model.PaymentStatusPaid,
				"status":         model.BookingStatusConfirmed,
			})
		if res.Error != nil {
			return nil, false, fmt.Errorf("failed to mark booking paid: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, false, repository.ErrBookingNotPending
		}

		var booking model.Booking
		if err := tx.Where("id = ?", *req.BookingID).First(&booking).Error; err != nil {
			return nil, false, fmt.Errorf("failed to load booking: %w", err)
		}
		return &booking, true, nil
	}

	// Direct checkout: guard against a paid booking that already exists for
	// this user and target before creating one.
	if req.UserID != nil {
		var existing model.Booking
		query := tx.Where("user_id = ? AND payment_status = ?", *req.UserID, model.PaymentStatusPaid)
		if req.EventID != nil {
			query = query.Where("event_id = ?", *req.EventID)
		} else {
			query = query.Where("bundle_id = ?", *req.BundleID)
		}
		err := query.First(&existing).Error
		if err == nil {
			return &existing, false, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, fmt.Errorf("failed to check existing bookings: %w", err)
		}
	}

	eventIDs, err := bookingEventIDsTx(tx, req.EventID, req.BundleID)
	if err != nil {
		return nil, false, err
	}

	booking := model.Booking{
		UserID:           req.UserID,
		EventID:          req.EventID,
		BundleID:         req.BundleID,
		EventIDs:         pq.StringArray(eventIDs),
		Status:           model.BookingStatusConfirmed,
		PaymentStatus:    model.PaymentStatusPaid,
		ContactName:      req.Intake.Name,
		ContactEmail:     req.Intake.Email,
		ContactPhone:     req.Intake.Phone,
		HealthConditions: req.Intake.HealthConditions,
		AgreedToTerms:    req.Intake.AgreeTerms,
	}
	if err := tx.Create(&booking).Error; err != nil {
		return nil, false, fmt.Errorf("failed to create paid booking: %w", err)
	}

	return &booking, true, nil
}

// bookingEventIDsTx resolves the member event IDs for a booking target
func bookingEventIDsTx(tx *gorm.DB, eventID, bundleID *string) ([]string, error) {
	if eventID != nil {
		var event model.Event
		if err := tx.Where("id = ?", *eventID).First(&event).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, repository.ErrEventNotFound
			}
			return nil, fmt.Errorf("failed to load event: %w", err)
		}
		return []string{event.ID}, nil
	}

	var links []model.BundleEvent
	if err := tx.Where("bundle_id = ?", *bundleID).Find(&links).Error; err != nil {
		return nil, fmt.Errorf("failed to load bundle events: %w", err)
	}
	if len(links) == 0 {
		return nil, repository.ErrBundleNotFound
	}

	eventIDs := make([]string, 0, len(links))
	for _, link := range links {
		eventIDs = append(eventIDs, link.EventID)
	}
	return eventIDs, nil
}

// RecordFailedPayment stores a failed Payment row for observability.
// No booking state is mutated on payment failure.
func (r *Repository) RecordFailedPayment(req model.FailedPaymentRequest) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := markWebhookProcessedTx(tx, req.Provider, req.ProviderEventID, req.EventType, req.Now); err != nil {
			return err
		}

		reason := req.Reason
		payment := model.Payment{
			BookingID:       req.BookingID,
			Amount:          req.Amount,
			Currency:        req.Currency,
			PaymentMethod:   "card",
			Status:          model.PaymentRecordFailed,
			PaymentIntentID: req.PaymentIntentID,
			FailureReason:   &reason,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return fmt.Errorf("failed to create failed payment record: %w", err)
		}

		return nil
	})
}

// CancelBooking cancels a booking in one transaction, applying the
// time-based refund/credit policy when requested. Cancelling an
// already-cancelled booking fails with ErrAlreadyCancelled.
func (r *Repository) CancelBooking(req model.CancelBookingRequest) (*model.CancelBookingOutcome, error) {
	outcome := &model.CancelBookingOutcome{}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var booking model.Booking
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", req.BookingID).
			First(&booking).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return repository.ErrBookingNotFound
			}
			return fmt.Errorf("failed to load booking: %w", err)
		}

		if req.ActorUserID != nil {
			if booking.UserID == nil || *booking.UserID != *req.ActorUserID {
				return repository.ErrNotBookingOwner
			}
		}

		if booking.Status == model.BookingStatusCancelled {
			return repository.ErrAlreadyCancelled
		}

		wasPaid := booking.PaymentStatus == model.PaymentStatusPaid

		var events []model.Event
		if len(booking.EventIDs) > 0 {
			if err := tx.Where("id IN ?", []string(booking.EventIDs)).Find(&events).Error; err != nil {
				return fmt.Errorf("failed to load booked events: %w", err)
			}
		}

		if req.ApplyPolicy && wasPaid {
			var payment model.Payment
			err := tx.Where("booking_id = ? AND status = ?", booking.ID, model.PaymentRecordSucceeded).
				Order("created_at DESC").
				First(&payment).Error
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("failed to load payment: %w", err)
			}

			if err == nil {
				terms := model.CancellationTermsAt(model.EarliestEventDate(events), req.Now)
				outcome.RefundAmount = terms.RefundAmount(payment.Amount)
				outcome.CreditAmount = terms.CreditAmount(payment.Amount)

				if outcome.CreditAmount > 0 && booking.UserID != nil {
					credit := model.EventCredit{
						UserID:       *booking.UserID,
						CreditAmount: outcome.CreditAmount,
						Reason:       "Cancellation of booking " + booking.ID,
						ExpiresAt:    req.Now.Add(model.CreditValidity),
						Status:       model.CreditStatusActive,
					}
					if err := tx.Create(&credit).Error; err != nil {
						return fmt.Errorf("failed to issue credit: %w", err)
					}
				}

				if outcome.RefundAmount > 0 {
					refundStatus := model.RefundStatusRequested
					if err := tx.Model(&payment).Updates(map[string]interface{}{
						"refund_status": refundStatus,
						"refund_amount": outcome.RefundAmount,
					}).Error; err != nil {
						return fmt.Errorf("failed to record refund intent: %w", err)
					}
					payment.RefundStatus = &refundStatus
					payment.RefundAmount = outcome.RefundAmount
				}

				outcome.Payment = &payment
			}
		}

		updates := map[string]interface{}{
			"status":       model.BookingStatusCancelled,
			"cancelled_at": req.Now,
		}
		if req.Reason != "" {
			updates["decline_reason"] = req.Reason
		}
		if err := tx.Model(&booking).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to cancel booking: %w", err)
		}

		if wasPaid {
			for _, eventID := range booking.EventIDs {
				if err := decrementEventBookings(tx, eventID); err != nil {
					return err
				}
			}
		}

		booking.Status = model.BookingStatusCancelled
		cancelledAt := req.Now
		booking.CancelledAt = &cancelledAt
		if req.Reason != "" {
			reason := req.Reason
			booking.DeclineReason = &reason
		}

		outcome.Booking = &booking
		outcome.Events = events
		return nil
	})
	if err != nil {
		return nil, err
	}

	return outcome, nil
}
