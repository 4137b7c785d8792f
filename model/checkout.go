package model

import (
	"time"
)

// ===============================
// Repository DTOs (Internal)
// ===============================

// ConfirmCheckoutRequest is the input for the single transaction that turns a
// completed payment into durable money state: idempotency-ledger insert,
// client upsert, booking transition/creation, credit consumption, counter
// increments and the Payment row. Used by both the webhook consumer and the
// synchronous wallet branch.
type ConfirmCheckoutRequest struct {
	Provider        string
	ProviderEventID string
	EventType       string

	// BookingID references a pending booking carried in session metadata.
	// When nil, a paid booking is created directly (legacy direct-checkout
	// path).
	BookingID *string

	UserID   *string
	EventID  *string
	BundleID *string
	Intake   IntakeDetails

	Amount        float64
	Currency      string
	PaymentMethod string
	CreditApplied float64

	CheckoutSessionID *string
	PaymentIntentID   *string

	Now time.Time
}

// ConfirmCheckoutResult reports the state written by a confirmed checkout
type ConfirmCheckoutResult struct {
	Booking *Booking
	Payment *Payment
	Events  []Event
}

// FailedPaymentRequest records a payment-failure callback for observability.
// No booking state is mutated.
type FailedPaymentRequest struct {
	Provider        string
	ProviderEventID string
	EventType       string
	BookingID       *string
	PaymentIntentID *string
	Amount          float64
	Currency        string
	Reason          string
	Now             time.Time
}

// CancelBookingRequest is the input for the cancellation transaction.
// When ActorUserID is set the booking must belong to that user; admins pass
// nil. ApplyPolicy selects the refund/credit policy path; the decline path
// only flips status and stores the reason.
type CancelBookingRequest struct {
	BookingID   string
	ActorUserID *string
	Reason      string
	ApplyPolicy bool
	Now         time.Time
}

// CancelBookingOutcome reports what the cancellation wrote
type CancelBookingOutcome struct {
	Booking      *Booking
	Payment      *Payment
	Events       []Event
	RefundAmount float64
	CreditAmount float64
}

// ===============================
// API DTOs (External)
// ===============================

// Checkout payment methods
const (
	CheckoutMethodCard   = "card"
	CheckoutMethodWallet = "wallet"
)

// CheckoutAPIRequest represents the API request to start a checkout. The
// target is either an existing pending booking or an event/bundle to book.
type CheckoutAPIRequest struct {
	BookingID string        `json:"booking_id"`
	EventID   string        `json:"event_id"`
	BundleID  string        `json:"bundle_id"`
	Intake    IntakeDetails `json:"intake"`

	PaymentMethod   string `json:"payment_method" binding:"required,oneof=card wallet"`
	PaymentMethodID string `json:"payment_method_id"`
	UseCredit       bool   `json:"use_credit"`
}

// CheckoutResponse reports the outcome of a checkout request. Card checkouts
// return a hosted payment page URL; wallet and fully-credited checkouts
// complete synchronously.
type CheckoutResponse struct {
	BookingID     string  `json:"booking_id"`
	Status        string  `json:"status"`
	PaymentStatus string  `json:"payment_status"`
	CheckoutURL   string  `json:"checkout_url,omitempty"`
	SessionID     string  `json:"session_id,omitempty"`
	AmountDue     float64 `json:"amount_due"`
	CreditApplied float64 `json:"credit_applied"`
	Message       string  `json:"message,omitempty"`
	StatusURL     string  `json:"status_url,omitempty"`
}
