package stripe

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/willowyoga/studiobooking/config"
	"github.com/willowyoga/studiobooking/service"
)

func testGateway(baseURL string) *StripeGateway {
	return NewStripeGateway(&config.Payments{
		SecretKey:      "sk_test_123",
		WebhookSecret:  "whsec_test",
		BaseURL:        baseURL,
		SuccessURL:     "http://localhost:3000/success",
		CancelURL:      "http://localhost:3000/cancel",
		RequestTimeout: 5,
	})
}

func TestVerifyWebhookSignature(t *testing.T) {
	g := testGateway("http://unused")
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed"}`)
	now := time.Now()

	header := BuildSignatureHeader("whsec_test", now, payload)
	if err := g.VerifyWebhookSignature(payload, header, now); err != nil {
		t.Fatalf("valid signature rejected: %v", err)
	}
}

func TestVerifyWebhookSignatureTamperedPayload(t *testing.T) {
	g := testGateway("http://unused")
	now := time.Now()

	header := BuildSignatureHeader("whsec_test", now, []byte(`{"amount":10}`))
	err := g.VerifyWebhookSignature([]byte(`{"amount":9999}`), header, now)
	if !errors.Is(err, service.ErrInvalidSignature) {
		t.Fatalf("tampered payload accepted, err = %v", err)
	}
}

func TestVerifyWebhookSignatureWrongSecret(t *testing.T) {
	g := testGateway("http://unused")
	payload := []byte(`{}`)
	now := time.Now()

	header := BuildSignatureHeader("whsec_other", now, payload)
	err := g.VerifyWebhookSignature(payload, header, now)
	if !errors.Is(err, service.ErrInvalidSignature) {
		t.Fatalf("signature from wrong secret accepted, err = %v", err)
	}
}

func TestVerifyWebhookSignatureStaleTimestamp(t *testing.T) {
	g := testGateway("http://unused")
	payload := []byte(`{}`)
	now := time.Now()

	header := BuildSignatureHeader("whsec_test", now.Add(-10*time.Minute), payload)
	err := g.VerifyWebhookSignature(payload, header, now)
	if !errors.Is(err, service.ErrInvalidSignature) {
		t.Fatalf("stale timestamp accepted, err = %v", err)
	}
}

func TestVerifyWebhookSignatureMalformedHeader(t *testing.T) {
	g := testGateway("http://unused")
	payload := []byte(`{}`)
	now := time.Now()

	for _, header := range []string{"", "garbage", "t=notanumber,v1=aa", "v1=deadbeef"} {
		err := g.VerifyWebhookSignature(payload, header, now)
		if !errors.Is(err, service.ErrInvalidSignature) {
			t.Errorf("header %q accepted, err = %v", header, err)
		}
	}
}

func TestParseWebhookEventCheckoutCompleted(t *testing.T) {
	g := testGateway("http://unused")

	payload := []byte(`{
		"id": "evt_42",
		"type": "checkout.session.completed",
		"data": {"object": {
			"id": "cs_test_1",
			"payment_intent": "pi_test_1",
			"amount_total": 6375,
			"currency": "gbp",
			"customer_details": {"email": "anna@example.com"},
			"metadata": {"booking_id": "b-1", "credit_applied": "0.00"}
		}}
	}`)

	event, err := g.ParseWebhookEvent(payload)
	if err != nil {
		t.Fatalf("ParseWebhookEvent: %v", err)
	}

	if event.ID != "evt_42" || event.Type != service.WebhookCheckoutCompleted {
		t.Errorf("envelope = %s/%s", event.ID, event.Type)
	}
	if event.SessionID != "cs_test_1" || event.PaymentIntentID != "pi_test_1" {
		t.Errorf("session = %s intent = %s", event.SessionID, event.PaymentIntentID)
	}
	if event.Amount != 63.75 {
		t.Errorf("Amount = %v, want 63.75", event.Amount)
	}
	if event.CustomerEmail != "anna@example.com" {
		t.Errorf("CustomerEmail = %q", event.CustomerEmail)
	}
	if event.Metadata["booking_id"] != "b-1" {
		t.Errorf("Metadata = %v", event.Metadata)
	}
}

func TestParseWebhookEventPaymentFailed(t *testing.T) {
	g := testGateway("http://unused")

	payload := []byte(`{
		"id": "evt_43",
		"type": "payment_intent.payment_failed",
		"data": {"object": {
			"id": "pi_test_2",
			"amount": 2500,
			"currency": "gbp",
			"last_payment_error": {"message": "card declined"}
		}}
	}`)

	event, err := g.ParseWebhookEvent(payload)
	if err != nil {
		t.Fatalf("ParseWebhookEvent: %v", err)
	}

	if event.PaymentIntentID != "pi_test_2" {
		t.Errorf("PaymentIntentID = %q", event.PaymentIntentID)
	}
	if event.Amount != 25 {
		t.Errorf("Amount = %v, want 25", event.Amount)
	}
}

func TestCreateCheckoutSession(t *testing.T) {
	var gotForm map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/checkout/sessions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk_test_123" {
			t.Errorf("Authorization = %q", auth)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("ParseForm: %v", err)
		}
		gotForm = r.PostForm

		json.NewEncoder(w).Encode(map[string]string{
			"id":             "cs_live_9",
			"url":            "https://pay.example.com/cs_live_9",
			"payment_intent": "pi_live_9",
		})
	}))
	defer server.Close()

	g := testGateway(server.URL)

	session, err := g.CreateCheckoutSession(service.CheckoutSessionRequest{
		Amount:        63.75,
		Currency:      "gbp",
		Description:   "Willow Yoga Studio booking",
		CustomerEmail: "anna@example.com",
		Metadata:      map[string]string{"booking_id": "b-1"},
	})
	if err != nil {
		t.Fatalf("CreateCheckoutSession: %v", err)
	}

	if session.SessionID != "cs_live_9" || session.URL != "https://pay.example.com/cs_live_9" {
		t.Errorf("session = %+v", session)
	}
	if got := gotForm["line_items[0][price_data][unit_amount]"]; len(got) != 1 || got[0] != "6375" {
		t.Errorf("unit_amount = %v, want 6375", got)
	}
	if got := gotForm["metadata[booking_id]"]; len(got) != 1 || got[0] != "b-1" {
		t.Errorf("metadata = %v", got)
	}
}

func TestChargePaymentMethodBelowMinimum(t *testing.T) {
	g := testGateway("http://unused")

	_, err := g.ChargePaymentMethod(service.ChargeRequest{
		Amount:          0.25,
		Currency:        "gbp",
		PaymentMethodID: "pm_1",
	})
	if !errors.Is(err, service.ErrAmountTooLow) {
		t.Fatalf("err = %v, want ErrAmountTooLow", err)
	}
}

func TestChargePaymentMethodDeclined(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":                 "pi_declined",
			"status":             "requires_payment_method",
			"last_payment_error": map[string]string{"message": "insufficient funds"},
		})
	}))
	defer server.Close()

	g := testGateway(server.URL)

	result, err := g.ChargePaymentMethod(service.ChargeRequest{
		Amount:          20,
		Currency:        "gbp",
		PaymentMethodID: "pm_1",
	})
	if err != nil {
		t.Fatalf("ChargePaymentMethod: %v", err)
	}
	if result.Succeeded {
		t.Error("declined charge reported as succeeded")
	}
	if result.FailureMessage != "insufficient funds" {
		t.Errorf("FailureMessage = %q", result.FailureMessage)
	}
}

func TestMinorUnitsRounding(t *testing.T) {
	cases := []struct {
		amount float64
		want   int64
	}{
		{63.75, 6375},
		{0.50, 50},
		{19.999999999, 2000},
		{0, 0},
	}

	for _, tc := range cases {
		if got := minorUnits(tc.amount); got != tc.want {
			t.Errorf("minorUnits(%v) = %d, want %d", tc.amount, got, tc.want)
		}
	}
}
