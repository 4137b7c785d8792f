package model

import (
	"time"
)

// ===============================
// Database Entities (Internal)
// ===============================

// Payment record statuses
const (
	PaymentRecordSucceeded = "succeeded"
	PaymentRecordFailed    = "failed"
)

// Refund intent statuses recorded against a payment
const (
	RefundStatusRequested = "requested"
	RefundStatusSubmitted = "submitted"
)

// Payment summarises one completed (or failed) checkout with the processor.
// Exactly one succeeded row is written per confirmed checkout session.
type Payment struct {
	ID                string  `gorm:"primary_key;default:gen_random_uuid()"`
	BookingID         *string `gorm:"index"`
	Amount            float64 `gorm:"type:decimal(10,2);not null"`
	Currency          string  `gorm:"type:varchar(3);not null;default:'gbp'"`
	PaymentMethod     string  `gorm:"type:varchar(50);not null"`
	Status            string  `gorm:"type:varchar(20);not null"`
	CreditApplied     float64 `gorm:"type:decimal(10,2);not null;default:0"`
	CheckoutSessionID *string `gorm:"uniqueIndex"`
	PaymentIntentID   *string `gorm:"index"`
	RefundStatus      *string `gorm:"type:varchar(20)"`
	RefundAmount      float64 `gorm:"type:decimal(10,2);not null;default:0"`
	FailureReason     *string `gorm:"type:text"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// TableName sets the table name for GORM
func (Payment) TableName() string {
	return "payments"
}

// ===============================
// API DTOs (External)
// ===============================

// PaymentFilter represents filtering options for payment queries
type PaymentFilter struct {
	BookingID string
	Status    string
	Limit     int
	Offset    int
}

// PaymentResponse represents payment data in API responses
type PaymentResponse struct {
	PaymentID     string    `json:"payment_id"`
	BookingID     *string   `json:"booking_id,omitempty"`
	Amount        float64   `json:"amount"`
	Currency      string    `json:"currency"`
	PaymentMethod string    `json:"payment_method"`
	Status        string    `json:"status"`
	CreditApplied float64   `json:"credit_applied,omitempty"`
	RefundStatus  *string   `json:"refund_status,omitempty"`
	RefundAmount  float64   `json:"refund_amount,omitempty"`
	FailureReason *string   `json:"failure_reason,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// ToPaymentResponse converts database Payment to API response
func (p *Payment) ToPaymentResponse() *PaymentResponse {
	return &PaymentResponse{
		PaymentID:     p.ID,
		BookingID:     p.BookingID,
		Amount:        p.Amount,
		Currency:      p.Currency,
		PaymentMethod: p.PaymentMethod,
		Status:        p.Status,
		CreditApplied: p.CreditApplied,
		RefundStatus:  p.RefundStatus,
		RefundAmount:  p.RefundAmount,
		FailureReason: p.FailureReason,
		CreatedAt:     p.CreatedAt,
	}
}

// PaymentListResponse represents the admin payment listing
type PaymentListResponse struct {
	Payments   []PaymentResponse `json:"payments"`
	Pagination Pagination        `json:"pagination"`
}
