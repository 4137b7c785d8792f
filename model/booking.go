package model

import (
	"time"

	"github.com/lib/pq"
)

// ===============================
// Database Entities (Internal)
// ===============================

// Booking lifecycle statuses. "confirmed" means the booking was accepted for
// payment, not that money has moved; the orthogonal payment status below is
// the source of truth for money state.
const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
)

// Booking payment statuses
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
)

// Booking represents a reservation for a single event or a bundle.
// Exactly one of EventID / BundleID is set. EventIDs is a denormalized
// snapshot of every member event the booking occupies a place in (one entry
// for event bookings, all members for bundle bookings); counter updates on
// cancellation run off this snapshot.
type Booking struct {
	ID               string         `gorm:"primary_key;default:gen_random_uuid()"`
	UserID           *string        `gorm:"index"`
	EventID          *string        `gorm:"index"`
	BundleID         *string        `gorm:"index"`
	EventIDs         pq.StringArray `gorm:"type:text[]"`
	Status           string         `gorm:"type:varchar(20);not null;default:'confirmed'"`
	PaymentStatus    string         `gorm:"type:varchar(20);not null;default:'pending'"`
	ContactName      string         `gorm:"type:varchar(255);not null"`
	ContactEmail     string         `gorm:"type:varchar(255);not null;index"`
	ContactPhone     string         `gorm:"type:varchar(50)"`
	HealthConditions string         `gorm:"type:text"`
	AgreedToTerms    bool           `gorm:"not null;default:false"`
	DeclineReason    *string        `gorm:"type:text"`
	CancelledAt      *time.Time
	CreatedAt        time.Time `gorm:"default:CURRENT_TIMESTAMP"`
	UpdatedAt        time.Time
}

// TableName sets the table name for GORM
func (Booking) TableName() string {
	return "bookings"
}

// ===============================
// Repository DTOs (Internal)
// ===============================

// IntakeDetails carries the contact and disclosure fields collected on every
// booking form.
type IntakeDetails struct {
	Name             string `json:"name" binding:"required"`
	Email            string `json:"email" binding:"required,email"`
	Phone            string `json:"phone"`
	HealthConditions string `json:"health_conditions"`
	AgreeTerms       bool   `json:"agree_terms" binding:"required"`
}

// CreateBookingRequest represents the data needed to create a pending booking
type CreateBookingRequest struct {
	UserID   *string
	EventID  *string
	BundleID *string
	Intake   IntakeDetails
}

// BookingFilter represents filtering options for booking queries
type BookingFilter struct {
	UserID        string
	Status        string
	PaymentStatus string
	Limit         int
	Offset        int
}

// ===============================
// API DTOs (External)
// ===============================

// CreateBookingAPIRequest represents the API request to create a booking
type CreateBookingAPIRequest struct {
	EventID  string        `json:"event_id"`
	BundleID string        `json:"bundle_id"`
	Intake   IntakeDetails `json:"intake" binding:"required"`
}

// BookingResponse represents the API response after booking creation
type BookingResponse struct {
	BookingID     string `json:"booking_id"`
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
	Message       string `json:"message"`
	StatusURL     string `json:"status_url"`
}

// BookingStatusResponse represents the detailed booking status response
type BookingStatusResponse struct {
	BookingID     string     `json:"booking_id"`
	EventID       *string    `json:"event_id,omitempty"`
	BundleID      *string    `json:"bundle_id,omitempty"`
	Status        string     `json:"status"`
	PaymentStatus string     `json:"payment_status"`
	DeclineReason *string    `json:"decline_reason,omitempty"`
	CancelledAt   *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// ToBookingStatusResponse converts a Booking entity to a status response
func (b *Booking) ToBookingStatusResponse() *BookingStatusResponse {
	return &BookingStatusResponse{
		BookingID:     b.ID,
		EventID:       b.EventID,
		BundleID:      b.BundleID,
		Status:        b.Status,
		PaymentStatus: b.PaymentStatus,
		DeclineReason: b.DeclineReason,
		CancelledAt:   b.CancelledAt,
		CreatedAt:     b.CreatedAt,
	}
}

// UserBookingsResponse represents the list of a user's bookings
type UserBookingsResponse struct {
	Bookings []BookingStatusResponse `json:"bookings"`
	Total    int                     `json:"total"`
}

// BookingStatusUpdate represents the cached status record polled by the
// post-checkout return page.
type BookingStatusUpdate struct {
	BookingID     string    `json:"booking_id"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status"`
	Message       string    `json:"message"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CancelBookingAPIRequest represents the API request to cancel a booking.
// ApplyPolicy selects between the refund/credit policy path and the plain
// decline path; the pointer keeps "absent" distinct from "false" so the
// policy path is the default.
type CancelBookingAPIRequest struct {
	Reason      string `json:"reason"`
	ApplyPolicy *bool  `json:"apply_policy"`
}

// CancelBookingResponse reports the outcome of a cancellation
type CancelBookingResponse struct {
	BookingID    string  `json:"booking_id"`
	RefundAmount float64 `json:"refund_amount"`
	CreditAmount float64 `json:"credit_amount"`
	Message      string  `json:"message"`
}
