package repository

import (
	"errors"
	"time"

	"github.com/willowyoga/studiobooking/model"
	"gorm.io/gorm"
)

// Sentinel errors surfaced by repository implementations. Handlers translate
// these into the API error taxonomy; raw storage errors never reach clients.
var (
	ErrEventNotFound         = errors.New("event not found")
	ErrBundleNotFound        = errors.New("bundle not found")
	ErrBookingNotFound       = errors.New("booking not found")
	ErrUserNotFound          = errors.New("user not found")
	ErrEmailExists           = errors.New("email already exists")
	ErrDuplicateBooking      = errors.New("duplicate booking")
	ErrBookingBlocked        = errors.New("booking blocked")
	ErrAlreadyCancelled      = errors.New("booking already cancelled")
	ErrEventFull             = errors.New("event is fully booked")
	ErrBookingNotPending     = errors.New("booking is not pending payment")
	ErrEventAlreadyProcessed = errors.New("webhook event already processed")
	ErrNotBookingOwner       = errors.New("booking belongs to another user")
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	CreateUser(req model.CreateUserRequest) (*model.User, error)
	GetUserByEmail(email string) (*model.User, error)
	GetUserByID(userID string) (*model.User, error)
	ValidatePassword(user *model.User, password string) bool
}

// EventRepository defines the interface for event data operations
type EventRepository interface {
	CreateEvent(req model.CreateEventRequest) (*model.Event, error)
	GetEventByID(eventID string) (*model.Event, error)
	ListEvents(filter model.EventFilter) ([]model.Event, int, error)
	UpdateEvent(req model.UpdateEventRequest) (*model.Event, error)
	DeleteEvent(eventID string) error
}

// BundleRepository defines the interface for bundle data operations
type BundleRepository interface {
	CreateBundle(req model.CreateBundleRequest) (*model.Bundle, []model.Event, error)
	GetBundleByID(bundleID string) (*model.Bundle, []model.Event, error)
	ListBundles(filter model.BundleFilter) ([]model.Bundle, int, error)
}

// BookingRepository defines the interface for booking data operations.
// ConfirmCheckout and CancelBooking each run their full multi-statement
// sequence inside one database transaction.
type BookingRepository interface {
	CreateBooking(req model.CreateBookingRequest) (*model.Booking, error)
	GetBookingByID(bookingID string) (*model.Booking, error)
	ListBookings(filter model.BookingFilter) ([]model.Booking, int, error)
	EnsureBookable(userID, eventID, bundleID *string) error
	ConfirmCheckout(req model.ConfirmCheckoutRequest) (*model.ConfirmCheckoutResult, error)
	RecordFailedPayment(req model.FailedPaymentRequest) error
	CancelBooking(req model.CancelBookingRequest) (*model.CancelBookingOutcome, error)
}

// CreditRepository defines the interface for stored-credit reads. Credit is
// spent only inside the checkout-confirmation transaction; a failed
// confirmation rolls the spend back with everything else.
type CreditRepository interface {
	ListUserCredits(userID string) ([]model.EventCredit, error)
	AvailableCredit(userID string, now time.Time) (float64, error)
}

// PaymentRepository defines the interface for payment record queries
type PaymentRepository interface {
	ListPayments(filter model.PaymentFilter) ([]model.Payment, int, error)
}

// ClientRepository defines the interface for the CRM aggregate
type ClientRepository interface {
	ListClients(filter model.ClientFilter) ([]model.Client, int, error)
}

// NotificationRepository defines the interface for the notification queue
type NotificationRepository interface {
	CreateNotification(n *model.Notification) error
	MarkNotificationSent(notificationID string, sentAt time.Time) error
	MarkNotificationFailed(notificationID string, attempts int, lastError string) error
}

// Repository aggregates all data operations backed by one database
type Repository interface {
	UserRepository
	EventRepository
	BundleRepository
	BookingRepository
	CreditRepository
	PaymentRepository
	ClientRepository
	NotificationRepository

	// Health check
	GetDB() *gorm.DB
}
