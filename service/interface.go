package service

import (
	"errors"
	"time"
)

// MinimumChargeAmount is the smallest card charge the processor accepts.
// Checkouts whose total after credit falls below it (but above zero) are
// rejected before any money movement.
const MinimumChargeAmount = 0.50

// Gateway-level sentinel errors
var (
	ErrAmountTooLow     = errors.New("amount below processor minimum")
	ErrInvalidSignature = errors.New("invalid webhook signature")
)

// PaymentGateway defines the interface for communicating with the payment
// processor. Hosted checkout goes through sessions and webhooks; wallet
// payments charge synchronously.
type PaymentGateway interface {
	// CreateCheckoutSession opens a hosted payment page for a pending booking
	CreateCheckoutSession(req CheckoutSessionRequest) (*CheckoutSession, error)

	// ChargePaymentMethod synchronously charges a wallet payment method
	ChargePaymentMethod(req ChargeRequest) (*ChargeResult, error)

	// RefundPayment requests a refund against a captured payment
	RefundPayment(paymentIntentID string, amount float64) error

	// VerifyWebhookSignature authenticates a webhook payload against its
	// signature header before any parsing happens
	VerifyWebhookSignature(payload []byte, signatureHeader string, now time.Time) error

	// ParseWebhookEvent decodes a verified webhook payload
	ParseWebhookEvent(payload []byte) (*WebhookEvent, error)
}

// CheckoutSessionRequest describes the hosted checkout to open
type CheckoutSessionRequest struct {
	Amount        float64
	Currency      string
	Description   string
	CustomerEmail string
	Metadata      map[string]string
}

// CheckoutSession represents an open hosted checkout
type CheckoutSession struct {
	SessionID       string `json:"id"`
	URL             string `json:"url"`
	PaymentIntentID string `json:"payment_intent"`
}

// ChargeRequest describes a synchronous wallet charge
type ChargeRequest struct {
	Amount          float64
	Currency        string
	PaymentMethodID string
	CustomerEmail   string
	Description     string
	Metadata        map[string]string
}

// ChargeResult reports the outcome of a synchronous charge
type ChargeResult struct {
	ChargeID        string
	PaymentIntentID string
	Succeeded       bool
	FailureMessage  string
}

// WebhookEvent is the decoded form of a processor callback
type WebhookEvent struct {
	ID              string
	Type            string
	SessionID       string
	PaymentIntentID string
	Amount          float64
	Currency        string
	CustomerEmail   string
	Metadata        map[string]string
	FailureMessage  string
}

// Webhook event types the handler acts on
const (
	WebhookCheckoutCompleted = "checkout.session.completed"
	WebhookPaymentFailed     = "payment_intent.payment_failed"
)

// EmailProvider defines the interface for the transactional email service
type EmailProvider interface {
	SendEmail(to, subject, htmlBody string) error
}
