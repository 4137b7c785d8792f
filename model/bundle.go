package model

import (
	"time"
)

// ===============================
// Database Entities (Internal)
// ===============================

// Bundle statuses
const (
	BundleStatusActive   = "active"
	BundleStatusArchived = "archived"
)

// Bundle size limits enforced at the call sites that create or update bundles.
const (
	MinBundleEvents = 2
	MaxBundleEvents = 5
)

// Bundle represents a discounted package of events sold as one purchase
type Bundle struct {
	ID                 string `gorm:"primary_key;default:gen_random_uuid()"`
	Name               string `gorm:"not null"`
	Description        string
	DiscountPercentage float64 `gorm:"not null"`
	OriginalPrice      float64 `gorm:"type:decimal(10,2);not null"`
	TotalPrice         float64 `gorm:"type:decimal(10,2);not null"`
	Status             string  `gorm:"type:varchar(20);not null;default:'active'"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// TableName sets the table name for GORM
func (Bundle) TableName() string {
	return "bundles"
}

// BundleEvent links a bundle to one of its member events
type BundleEvent struct {
	ID       string `gorm:"primary_key;default:gen_random_uuid()"`
	BundleID string `gorm:"not null;index"`
	EventID  string `gorm:"not null;index"`

	Bundle Bundle `gorm:"foreignKey:BundleID"`
	Event  Event  `gorm:"foreignKey:EventID"`
}

// TableName sets the table name for GORM
func (BundleEvent) TableName() string {
	return "bundle_events"
}

// ===============================
// Repository DTOs (Internal)
// ===============================

// CreateBundleRequest represents input for creating a bundle in repository layer
type CreateBundleRequest struct {
	Name        string
	Description string
	EventIDs    []string
}

// BundleFilter represents filtering options for repository layer
type BundleFilter struct {
	Status string
	Limit  int
	Offset int
}

// ===============================
// API DTOs (External)
// ===============================

// CreateBundleAPIRequest represents the API request for creating a bundle
type CreateBundleAPIRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	EventIDs    []string `json:"event_ids" binding:"required,min=2,max=5"`
}

// ToCreateBundleRequest converts API request to repository request
func (r *CreateBundleAPIRequest) ToCreateBundleRequest() CreateBundleRequest {
	return CreateBundleRequest{
		Name:        r.Name,
		Description: r.Description,
		EventIDs:    r.EventIDs,
	}
}

// BundleResponse represents bundle data in API responses
type BundleResponse struct {
	BundleID           string          `json:"bundle_id"`
	Name               string          `json:"name"`
	Description        string          `json:"description,omitempty"`
	DiscountPercentage float64         `json:"discount_percentage"`
	OriginalPrice      float64         `json:"original_price"`
	TotalPrice         float64         `json:"total_price"`
	Status             string          `json:"status"`
	Events             []EventResponse `json:"events,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
}

// ToBundleResponse converts database Bundle to API response
func (b *Bundle) ToBundleResponse(events []Event) *BundleResponse {
	response := &BundleResponse{
		BundleID:           b.ID,
		Name:               b.Name,
		Description:        b.Description,
		DiscountPercentage: b.DiscountPercentage,
		OriginalPrice:      b.OriginalPrice,
		TotalPrice:         b.TotalPrice,
		Status:             b.Status,
		CreatedAt:          b.CreatedAt,
	}

	for i := range events {
		response.Events = append(response.Events, *events[i].ToEventResponse())
	}

	return response
}

// BundleListResponse represents the response for listing bundles
type BundleListResponse struct {
	Bundles    []BundleResponse `json:"bundles"`
	Pagination Pagination       `json:"pagination"`
}
