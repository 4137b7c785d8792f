package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/willowyoga/studiobooking/config"
	"github.com/willowyoga/studiobooking/model"
	"github.com/willowyoga/studiobooking/repository"
	"github.com/willowyoga/studiobooking/service/stripe"
)

const webhookSecret = "whsec_test"

// webhookGateway builds a real gateway so signature verification and payload
// parsing run for real in these tests
func webhookGateway() *stripe.StripeGateway {
	return stripe.NewStripeGateway(&config.Payments{
		SecretKey:      "sk_test",
		WebhookSecret:  webhookSecret,
		BaseURL:        "http://unused",
		RequestTimeout: 5,
	})
}

func completedSessionPayload(bookingID string) []byte {
	return []byte(fmt.Sprintf(`{
		"id": "evt_1",
		"type": "checkout.session.completed",
		"data": {"object": {
			"id": "cs_1",
			"payment_intent": "pi_1",
			"amount_total": 6375,
			"currency": "gbp",
			"customer_details": {"email": "anna@example.com"},
			"metadata": {"booking_id": %q, "credit_applied": "0.00"}
		}}
	}`, bookingID))
}

func postWebhook(env *testEnv, payload []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/api/webhooks/payments", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", signature)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func paidBookingResult(bookingID string) *model.ConfirmCheckoutResult {
	return &model.ConfirmCheckoutResult{
		Booking: &model.Booking{
			ID:            bookingID,
			Status:        model.BookingStatusConfirmed,
			PaymentStatus: model.PaymentStatusPaid,
			ContactName:   "Anna",
			ContactEmail:  "anna@example.com",
		},
		Payment: &model.Payment{Amount: 63.75, Currency: "gbp"},
		Events: []model.Event{
			{Name: "Vinyasa Flow", Location: "Studio 1", EventDate: time.Now().Add(72 * time.Hour)},
		},
	}
}

func TestPaymentWebhookInvalidSignature(t *testing.T) {
	confirmCalls := 0
	repo := &fakeRepo{
		confirmCheckoutFn: func(req model.ConfirmCheckoutRequest) (*model.ConfirmCheckoutResult, error) {
			confirmCalls++
			return paidBookingResult("b-1"), nil
		},
	}
	env := newTestEnv(repo, webhookGateway())

	payload := completedSessionPayload("b-1")
	forged := stripe.BuildSignatureHeader("whsec_wrong", time.Now(), payload)

	w := postWebhook(env, payload, forged)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if confirmCalls != 0 {
		t.Errorf("ConfirmCheckout called %d times on unverified payload", confirmCalls)
	}
	if len(env.repo.notifications) != 0 {
		t.Errorf("notifications queued for unverified payload: %d", len(env.repo.notifications))
	}
}

func TestPaymentWebhookCheckoutCompleted(t *testing.T) {
	var gotReq model.ConfirmCheckoutRequest
	repo := &fakeRepo{
		confirmCheckoutFn: func(req model.ConfirmCheckoutRequest) (*model.ConfirmCheckoutResult, error) {
			gotReq = req
			return paidBookingResult("b-1"), nil
		},
	}
	env := newTestEnv(repo, webhookGateway())

	payload := completedSessionPayload("b-1")
	w := postWebhook(env, payload, stripe.BuildSignatureHeader(webhookSecret, time.Now(), payload))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", w.Code, w.Body.String())
	}

	if gotReq.Provider != "stripe" || gotReq.ProviderEventID != "evt_1" {
		t.Errorf("ledger key = %s/%s", gotReq.Provider, gotReq.ProviderEventID)
	}
	if gotReq.BookingID == nil || *gotReq.BookingID != "b-1" {
		t.Errorf("BookingID = %v", gotReq.BookingID)
	}
	if gotReq.Amount != 63.75 {
		t.Errorf("Amount = %v, want 63.75", gotReq.Amount)
	}
	if gotReq.CheckoutSessionID == nil || *gotReq.CheckoutSessionID != "cs_1" {
		t.Errorf("CheckoutSessionID = %v", gotReq.CheckoutSessionID)
	}

	if len(env.repo.notifications) != 1 {
		t.Fatalf("notifications = %d, want 1", len(env.repo.notifications))
	}
	if env.repo.notifications[0].Type != model.NotificationBookingConfirmed {
		t.Errorf("notification type = %s", env.repo.notifications[0].Type)
	}
	if len(env.publisher.messages) != 1 {
		t.Errorf("published messages = %d, want 1", len(env.publisher.messages))
	}

	status, _ := env.cache.GetBookingStatus("b-1")
	if status == nil || status.PaymentStatus != model.PaymentStatusPaid {
		t.Errorf("cached status = %+v", status)
	}
}

func TestPaymentWebhookRedelivery(t *testing.T) {
	confirmCalls := 0
	repo := &fakeRepo{
		confirmCheckoutFn: func(req model.ConfirmCheckoutRequest) (*model.ConfirmCheckoutResult, error) {
			confirmCalls++
			if confirmCalls > 1 {
				return nil, repository.ErrEventAlreadyProcessed
			}
			return paidBookingResult("b-1"), nil
		},
	}
	env := newTestEnv(repo, webhookGateway())

	payload := completedSessionPayload("b-1")
	signature := stripe.BuildSignatureHeader(webhookSecret, time.Now(), payload)

	first := postWebhook(env, payload, signature)
	second := postWebhook(env, payload, signature)

	if first.Code != http.StatusOK || second.Code != http.StatusOK {
		t.Fatalf("statuses = %d, %d, want 200 both", first.Code, second.Code)
	}
	if confirmCalls != 2 {
		t.Errorf("ConfirmCheckout calls = %d, want 2", confirmCalls)
	}
	// Only the first delivery produces side effects
	if len(env.repo.notifications) != 1 {
		t.Errorf("notifications = %d, want 1", len(env.repo.notifications))
	}
}

func TestPaymentWebhookBookingNoLongerPending(t *testing.T) {
	repo := &fakeRepo{
		confirmCheckoutFn: func(req model.ConfirmCheckoutRequest) (*model.ConfirmCheckoutResult, error) {
			return nil, repository.ErrBookingNotPending
		},
	}
	env := newTestEnv(repo, webhookGateway())

	payload := completedSessionPayload("b-1")
	w := postWebhook(env, payload, stripe.BuildSignatureHeader(webhookSecret, time.Now(), payload))

	// Retrying will not fix this, so the event is acked. A late callback
	// for a cancelled booking lands here too and must leave no trace.
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if len(env.repo.notifications) != 0 {
		t.Errorf("notifications queued for non-pending booking: %d", len(env.repo.notifications))
	}
	if status, _ := env.cache.GetBookingStatus("b-1"); status != nil {
		t.Errorf("cached status written for non-pending booking: %+v", status)
	}
}

func TestPaymentWebhookEventFullLeavesBookingPending(t *testing.T) {
	repo := &fakeRepo{
		confirmCheckoutFn: func(req model.ConfirmCheckoutRequest) (*model.ConfirmCheckoutResult, error) {
			return nil, repository.ErrEventFull
		},
	}
	env := newTestEnv(repo, webhookGateway())

	payload := completedSessionPayload("b-1")
	w := postWebhook(env, payload, stripe.BuildSignatureHeader(webhookSecret, time.Now(), payload))

	// The class sold out between session creation and payment. The event
	// is acked so the processor stops retrying, the transaction rolled
	// back, and the booking is left pending for operator follow-up.
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if len(env.repo.notifications) != 0 {
		t.Errorf("confirmation queued for sold-out class: %d", len(env.repo.notifications))
	}
	if status, _ := env.cache.GetBookingStatus("b-1"); status != nil {
		t.Errorf("cached status written for sold-out class: %+v", status)
	}
}

func TestPaymentWebhookPaymentFailed(t *testing.T) {
	var gotReq model.FailedPaymentRequest
	repo := &fakeRepo{
		recordFailedPaymentFn: func(req model.FailedPaymentRequest) error {
			gotReq = req
			return nil
		},
	}
	env := newTestEnv(repo, webhookGateway())

	payload := []byte(`{
		"id": "evt_2",
		"type": "payment_intent.payment_failed",
		"data": {"object": {
			"id": "pi_2",
			"amount": 2500,
			"currency": "gbp",
			"last_payment_error": {"message": "card declined"},
			"metadata": {"booking_id": "b-9"}
		}}
	}`)

	w := postWebhook(env, payload, stripe.BuildSignatureHeader(webhookSecret, time.Now(), payload))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if gotReq.ProviderEventID != "evt_2" || gotReq.Reason != "card declined" {
		t.Errorf("recorded failure = %+v", gotReq)
	}
	if gotReq.BookingID == nil || *gotReq.BookingID != "b-9" {
		t.Errorf("BookingID = %v", gotReq.BookingID)
	}
	if len(env.repo.notifications) != 0 {
		t.Errorf("notifications queued on failure: %d", len(env.repo.notifications))
	}
}

func TestPaymentWebhookUnhandledEventType(t *testing.T) {
	env := newTestEnv(&fakeRepo{}, webhookGateway())

	payload := []byte(`{"id": "evt_3", "type": "charge.updated", "data": {"object": {"id": "ch_1"}}}`)
	w := postWebhook(env, payload, stripe.BuildSignatureHeader(webhookSecret, time.Now(), payload))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}
