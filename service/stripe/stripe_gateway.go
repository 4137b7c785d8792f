package stripe

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/willowyoga/studiobooking/config"
	"github.com/willowyoga/studiobooking/service"
)

// signatureTolerance bounds how old a webhook timestamp may be before the
// signature is rejected as a possible replay.
const signatureTolerance = 5 * time.Minute

type StripeGateway struct {
	baseURL       string
	secretKey     string
	webhookSecret string
	successURL    string
	cancelURL     string
	httpClient    *http.Client
}

// NewStripeGateway creates a payment gateway client with connection pooling
func NewStripeGateway(cfg *config.Payments) *StripeGateway {
	transport := &http.Transport{
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:     time.Duration(cfg.IdleConnTimeout) * time.Second,
		ForceAttemptHTTP2:   true,
	}

	return &StripeGateway{
		baseURL:       cfg.BaseURL,
		secretKey:     cfg.SecretKey,
		webhookSecret: cfg.WebhookSecret,
		successURL:    cfg.SuccessURL,
		cancelURL:     cfg.CancelURL,
		httpClient: &http.Client{
			Timeout:   time.Duration(cfg.RequestTimeout) * time.Second,
			Transport: transport,
		},
	}
}

// minorUnits converts a decimal amount to the integer minor units the
// processor API expects.
func minorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// CreateCheckoutSession opens a hosted payment page
func (g *StripeGateway) CreateCheckoutSession(req service.CheckoutSessionRequest) (*service.CheckoutSession, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", g.successURL)
	form.Set("cancel_url", g.cancelURL)
	form.Set("line_items[0][quantity]", "1")
	form.Set("line_items[0][price_data][currency]", req.Currency)
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(minorUnits(req.Amount), 10))
	form.Set("line_items[0][price_data][product_data][name]", req.Description)
	if req.CustomerEmail != "" {
		form.Set("customer_email", req.CustomerEmail)
	}
	for key, value := range req.Metadata {
		form.Set(fmt.Sprintf("metadata[%s]", key), value)
	}

	var session service.CheckoutSession
	if err := g.post("/v1/checkout/sessions", form, &session); err != nil {
		return nil, err
	}

	return &session, nil
}

// chargeResponse is the processor's payment-intent representation
type chargeResponse struct {
	ID               string `json:"id"`
	Status           string `json:"status"`
	LatestCharge     string `json:"latest_charge"`
	LastPaymentError *struct {
		Message string `json:"message"`
	} `json:"last_payment_error"`
}

// ChargePaymentMethod synchronously charges a wallet payment method
func (g *StripeGateway) ChargePaymentMethod(req service.ChargeRequest) (*service.ChargeResult, error) {
	if req.Amount < service.MinimumChargeAmount {
		return nil, service.ErrAmountTooLow
	}

	form := url.Values{}
	form.Set("amount", strconv.FormatInt(minorUnits(req.Amount), 10))
	form.Set("currency", req.Currency)
	form.Set("payment_method", req.PaymentMethodID)
	form.Set("confirm", "true")
	form.Set("description", req.Description)
	if req.CustomerEmail != "" {
		form.Set("receipt_email", req.CustomerEmail)
	}
	for key, value := range req.Metadata {
		form.Set(fmt.Sprintf("metadata[%s]", key), value)
	}

	var intent chargeResponse
	if err := g.post("/v1/payment_intents", form, &intent); err != nil {
		return nil, err
	}

	result := &service.ChargeResult{
		ChargeID:        intent.LatestCharge,
		PaymentIntentID: intent.ID,
		Succeeded:       intent.Status == "succeeded",
	}
	if intent.LastPaymentError != nil {
		result.FailureMessage = intent.LastPaymentError.Message
	}

	return result, nil
}

// RefundPayment requests a refund against a captured payment
func (g *StripeGateway) RefundPayment(paymentIntentID string, amount float64) error {
	form := url.Values{}
	form.Set("payment_intent", paymentIntentID)
	form.Set("amount", strconv.FormatInt(minorUnits(amount), 10))

	return g.post("/v1/refunds", form, nil)
}

// post sends a form-encoded request to the processor API and decodes the
// response into out when it is non-nil
func (g *StripeGateway) post(path string, form url.Values, out interface{}) error {
	req, err := http.NewRequest("POST", g.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+g.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("payment processor error (status %d): %s", resp.StatusCode, string(body))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// VerifyWebhookSignature authenticates a webhook payload against the
// "t=<unix>,v1=<hex>" signature header. The HMAC covers "<t>.<payload>" and
// the timestamp must be within the replay tolerance.
func (g *StripeGateway) VerifyWebhookSignature(payload []byte, signatureHeader string, now time.Time) error {
	var timestamp string
	var signatures []string

	for _, part := range strings.Split(signatureHeader, ",") {
		pair := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(pair) != 2 {
			continue
		}
		switch pair[0] {
		case "t":
			timestamp = pair[1]
		case "v1":
			signatures = append(signatures, pair[1])
		}
	}

	if timestamp == "" || len(signatures) == 0 {
		return service.ErrInvalidSignature
	}

	unix, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return service.ErrInvalidSignature
	}
	age := now.Sub(time.Unix(unix, 0))
	if age > signatureTolerance || age < -signatureTolerance {
		return service.ErrInvalidSignature
	}

	expected := computeSignature(g.webhookSecret, timestamp, payload)
	for _, sig := range signatures {
		if hmac.Equal([]byte(sig), []byte(expected)) {
			return nil
		}
	}

	return service.ErrInvalidSignature
}

func computeSignature(secret, timestamp string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// BuildSignatureHeader produces a valid signature header for a payload.
// Used by integration tooling that replays recorded webhooks.
func BuildSignatureHeader(secret string, signedAt time.Time, payload []byte) string {
	timestamp := strconv.FormatInt(signedAt.Unix(), 10)
	return fmt.Sprintf("t=%s,v1=%s", timestamp, computeSignature(secret, timestamp, payload))
}

// webhookEnvelope is the wire form of a processor callback
type webhookEnvelope struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID              string            `json:"id"`
			PaymentIntent   string            `json:"payment_intent"`
			AmountTotal     int64             `json:"amount_total"`
			Amount          int64             `json:"amount"`
			Currency        string            `json:"currency"`
			CustomerEmail   string            `json:"customer_email"`
			Metadata        map[string]string `json:"metadata"`
			CustomerDetails *struct {
				Email string `json:"email"`
			} `json:"customer_details"`
			LastPaymentError *struct {
				Message string `json:"message"`
			} `json:"last_payment_error"`
		} `json:"object"`
	} `json:"data"`
}

// ParseWebhookEvent decodes a verified webhook payload
func (g *StripeGateway) ParseWebhookEvent(payload []byte) (*service.WebhookEvent, error) {
	var envelope webhookEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode webhook payload: %w", err)
	}

	object := envelope.Data.Object

	event := &service.WebhookEvent{
		ID:            envelope.ID,
		Type:          envelope.Type,
		Currency:      object.Currency,
		CustomerEmail: object.CustomerEmail,
		Metadata:      object.Metadata,
	}

	switch envelope.Type {
	case service.WebhookCheckoutCompleted:
		event.SessionID = object.ID
		event.PaymentIntentID = object.PaymentIntent
		event.Amount = float64(object.AmountTotal) / 100
	case service.WebhookPaymentFailed:
		event.PaymentIntentID = object.ID
		event.Amount = float64(object.Amount) / 100
		if object.LastPaymentError != nil {
			event.FailureMessage = object.LastPaymentError.Message
		}
	default:
		event.SessionID = object.ID
		event.Amount = float64(object.AmountTotal) / 100
	}

	if event.CustomerEmail == "" && object.CustomerDetails != nil {
		event.CustomerEmail = object.CustomerDetails.Email
	}

	return event, nil
}
