package model

import (
	"time"
)

// ===============================
// Database Entities (Internal)
// ===============================

// Credit statuses
const (
	CreditStatusActive  = "active"
	CreditStatusUsed    = "used"
	CreditStatusExpired = "expired"
)

// EventCredit is stored value issued to a user, usually from a cancellation,
// redeemable against future bookings until it expires.
// Invariant: UsedAmount <= CreditAmount, enforced by conditional updates.
type EventCredit struct {
	ID           string  `gorm:"primary_key;default:gen_random_uuid()"`
	UserID       string  `gorm:"not null;index"`
	CreditAmount float64 `gorm:"type:decimal(10,2);not null"`
	UsedAmount   float64 `gorm:"type:decimal(10,2);not null;default:0"`
	Reason       string  `gorm:"type:text"`
	ExpiresAt    time.Time
	Status       string `gorm:"type:varchar(20);not null;default:'active'"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName sets the table name for GORM
func (EventCredit) TableName() string {
	return "event_credits"
}

// Remaining returns the unspent balance on the credit.
func (c *EventCredit) Remaining() float64 {
	return c.CreditAmount - c.UsedAmount
}

// Expired reports whether the credit has passed its expiry.
func (c *EventCredit) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// ===============================
// API DTOs (External)
// ===============================

// CreditResponse represents credit data in API responses
type CreditResponse struct {
	CreditID     string    `json:"credit_id"`
	CreditAmount float64   `json:"credit_amount"`
	UsedAmount   float64   `json:"used_amount"`
	Remaining    float64   `json:"remaining"`
	Reason       string    `json:"reason,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
	Status       string    `json:"status"`
}

// ToCreditResponse converts database EventCredit to API response
func (c *EventCredit) ToCreditResponse() *CreditResponse {
	return &CreditResponse{
		CreditID:     c.ID,
		CreditAmount: c.CreditAmount,
		UsedAmount:   c.UsedAmount,
		Remaining:    c.Remaining(),
		Reason:       c.Reason,
		ExpiresAt:    c.ExpiresAt,
		Status:       c.Status,
	}
}

// UserCreditsResponse represents the list of a user's credits
type UserCreditsResponse struct {
	Credits          []CreditResponse `json:"credits"`
	AvailableBalance float64          `json:"available_balance"`
}
