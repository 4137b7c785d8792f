package model

import (
	"time"
)

// Client is the email-keyed CRM aggregate maintained for the back office.
// It is upserted inside the payment-confirmation transaction rather than
// rebuilt by scanning booking records.
type Client struct {
	ID           string `gorm:"primary_key;default:gen_random_uuid()"`
	Email        string `gorm:"type:varchar(255);uniqueIndex;not null"`
	Name         string `gorm:"type:varchar(255)"`
	Phone        string `gorm:"type:varchar(50)"`
	BookingCount int    `gorm:"not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName sets the table name for GORM
func (Client) TableName() string {
	return "clients"
}

// ClientResponse represents client data in admin API responses
type ClientResponse struct {
	ClientID     string    `json:"client_id"`
	Email        string    `json:"email"`
	Name         string    `json:"name,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	BookingCount int       `json:"booking_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// ToClientResponse converts database Client to API response
func (c *Client) ToClientResponse() *ClientResponse {
	return &ClientResponse{
		ClientID:     c.ID,
		Email:        c.Email,
		Name:         c.Name,
		Phone:        c.Phone,
		BookingCount: c.BookingCount,
		CreatedAt:    c.CreatedAt,
	}
}

// ClientListResponse represents the admin client listing
type ClientListResponse struct {
	Clients    []ClientResponse `json:"clients"`
	Pagination Pagination       `json:"pagination"`
}

// ClientFilter represents filtering options for client queries
type ClientFilter struct {
	Search string
	Limit  int
	Offset int
}

// WebhookEvent is the idempotency ledger for processor callbacks. The unique
// (provider, provider_event_id) pair makes redelivered events conflict on
// insert, which is what keeps at-least-once delivery from double-applying
// money state.
type WebhookEvent struct {
	ID              string `gorm:"primary_key;default:gen_random_uuid()"`
	Provider        string `gorm:"type:varchar(20);not null;index:ux_webhook_events_provider_event,unique,priority:1"`
	ProviderEventID string `gorm:"type:varchar(191);not null;index:ux_webhook_events_provider_event,unique,priority:2"`
	EventType       string `gorm:"type:varchar(100);not null;index"`
	ProcessedAt     *time.Time
	CreatedAt       time.Time
}

// TableName sets the table name for GORM
func (WebhookEvent) TableName() string {
	return "webhook_events"
}
