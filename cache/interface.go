package cache

import (
	"time"

	"github.com/willowyoga/studiobooking/model"
)

// CacheRepository defines the interface for read-side caching operations
type CacheRepository interface {
	// Booking status caching for the polling endpoint
	GetBookingStatus(bookingID string) (*model.BookingStatusUpdate, error)
	SetBookingStatus(bookingID string, status *model.BookingStatusUpdate, ttl time.Duration) error
	InvalidateBookingStatus(bookingID string) error

	// Event detail caching for the public catalogue
	GetEvent(eventID string) (*model.EventResponse, error)
	SetEvent(eventID string, event *model.EventResponse, ttl time.Duration) error
	InvalidateEvent(eventID string) error

	// Health check
	Ping() error
}
