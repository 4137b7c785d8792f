package model

import (
	"fmt"
	"time"
)

// ===============================
// Database Entities (Internal)
// ===============================

// Notification statuses
const (
	NotificationStatusQueued = "queued"
	NotificationStatusSent   = "sent"
	NotificationStatusFailed = "failed"
)

// Notification types
const (
	NotificationBookingConfirmed = "booking_confirmed"
	NotificationBookingCancelled = "booking_cancelled"
	NotificationBookingDeclined  = "booking_declined"
)

// Notification is the durable record of a queued email. Delivery is
// best-effort: the triggering operation never fails on notification errors.
type Notification struct {
	ID             string `gorm:"primary_key;default:gen_random_uuid()"`
	Type           string `gorm:"type:varchar(50);not null"`
	RecipientEmail string `gorm:"type:varchar(255);not null"`
	Subject        string `gorm:"type:varchar(255);not null"`
	Body           string `gorm:"type:text;not null"`
	Status         string `gorm:"type:varchar(20);not null;default:'queued'"`
	Attempts       int    `gorm:"not null;default:0"`
	LastError      *string `gorm:"type:text"`
	SentAt         *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName sets the table name for GORM
func (Notification) TableName() string {
	return "notifications"
}

// ============================================================================
// KAFKA MESSAGE STRUCTURES
// ============================================================================

// NotificationMessage is the message published to the notification topic and
// consumed by the worker. It carries the rendered content so the worker can
// deliver without a database round trip.
type NotificationMessage struct {
	NotificationID string    `json:"notification_id"`
	Type           string    `json:"type"`
	RecipientEmail string    `json:"recipient_email"`
	Subject        string    `json:"subject"`
	Body           string    `json:"body"`
	Attempts       int       `json:"attempts"`
	Timestamp      time.Time `json:"timestamp"`
}

// ============================================================================
// EMAIL GENERATION
// ============================================================================

// EmailTemplate represents a rendered email ready for the provider
type EmailTemplate struct {
	To      string
	Subject string
	Body    string
}

// NotificationBookingData carries the booking facts email templates render
type NotificationBookingData struct {
	BookingID    string
	Name         string
	EventName    string
	Location     string
	EventDate    time.Time
	Amount       float64
	RefundAmount float64
	CreditAmount float64
	Reason       string
}

// GenerateBookingConfirmationEmail renders the paid-booking confirmation
func GenerateBookingConfirmationEmail(to string, data NotificationBookingData) *EmailTemplate {
	subject := "Booking Confirmed - " + data.EventName

	body := "Dear " + data.Name + ",\n\n" +
		"Your booking has been confirmed!\n\n" +
		"Class: " + data.EventName + "\n" +
		"Location: " + data.Location + "\n" +
		"Date: " + data.EventDate.Format("2006-01-02 15:04") + "\n" +
		"Amount: " + fmt.Sprintf("£%.2f", data.Amount) + "\n" +
		"Booking ID: " + data.BookingID + "\n\n" +
		"We look forward to seeing you on the mat.\n\n" +
		"Willow Yoga Studio"

	return &EmailTemplate{To: to, Subject: subject, Body: body}
}

// GenerateCancellationEmail renders the cancellation outcome for the customer
func GenerateCancellationEmail(to string, data NotificationBookingData) *EmailTemplate {
	subject := "Booking Cancelled - " + data.EventName

	body := "Dear " + data.Name + ",\n\n" +
		"Your booking has been cancelled.\n\n" +
		"Class: " + data.EventName + "\n" +
		"Booking ID: " + data.BookingID + "\n" +
		"Refund: " + fmt.Sprintf("£%.2f", data.RefundAmount) + "\n" +
		"Studio credit: " + fmt.Sprintf("£%.2f", data.CreditAmount) + "\n\n"

	if data.RefundAmount > 0 {
		body += "Refunds are returned to the original payment method within 5-10 business days.\n"
	}
	if data.CreditAmount > 0 {
		body += "Your credit is valid for one year and is applied automatically at your next checkout.\n"
	}

	body += "\nWillow Yoga Studio"

	return &EmailTemplate{To: to, Subject: subject, Body: body}
}

// GenerateDeclineNoticeEmail renders the admin notice for a declined booking
func GenerateDeclineNoticeEmail(to string, data NotificationBookingData) *EmailTemplate {
	subject := "Participation declined - " + data.EventName

	body := "A customer has declined their place.\n\n" +
		"Class: " + data.EventName + "\n" +
		"Booking ID: " + data.BookingID + "\n" +
		"Customer: " + data.Name + "\n"

	if data.Reason != "" {
		body += "Reason: " + data.Reason + "\n"
	}

	return &EmailTemplate{To: to, Subject: subject, Body: body}
}
