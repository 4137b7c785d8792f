package model

import (
	"time"
)

// ===============================
// Database Entities (Internal)
// ===============================

// Event statuses
const (
	EventStatusActive    = "active"
	EventStatusCancelled = "cancelled"
	EventStatusCompleted = "completed"
)

// Event represents a single class or workshop on the studio schedule
type Event struct {
	ID              string `gorm:"primary_key;default:gen_random_uuid()"`
	Name            string `gorm:"not null"`
	Description     string
	Category        string `gorm:"not null;index"`
	InstructorName  string `gorm:"type:varchar(255);not null"`
	Location        string `gorm:"type:varchar(255);not null"`
	ImageURL        string
	Price           float64   `gorm:"type:decimal(10,2);not null"`
	EventDate       time.Time `gorm:"not null;index"`
	Capacity        int       `gorm:"not null"`
	CurrentBookings int       `gorm:"not null;default:0"`
	Status          string    `gorm:"type:varchar(20);not null;default:'active'"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName sets the table name for GORM
func (Event) TableName() string {
	return "events"
}

// SpotsRemaining returns how many places are still bookable.
func (e *Event) SpotsRemaining() int {
	remaining := e.Capacity - e.CurrentBookings
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ===============================
// Repository DTOs (Internal)
// ===============================

// CreateEventRequest represents input for creating an event in repository layer
type CreateEventRequest struct {
	Name           string
	Description    string
	Category       string
	InstructorName string
	Location       string
	ImageURL       string
	Price          float64
	EventDate      time.Time
	Capacity       int
}

// UpdateEventRequest represents input for updating an event in repository layer
type UpdateEventRequest struct {
	ID             string
	Name           string
	Description    string
	Category       string
	InstructorName string
	Location       string
	ImageURL       string
	Price          float64
	EventDate      time.Time
	Capacity       int
	Status         string
}

// EventFilter represents filtering options for repository layer
type EventFilter struct {
	Category string
	DateFrom *time.Time
	DateTo   *time.Time
	Status   string
	Limit    int
	Offset   int
}

// ===============================
// API DTOs (External)
// ===============================

// CreateEventAPIRequest represents the API request for creating an event
type CreateEventAPIRequest struct {
	Name           string    `json:"name" binding:"required"`
	Description    string    `json:"description"`
	Category       string    `json:"category" binding:"required"`
	InstructorName string    `json:"instructor_name" binding:"required"`
	Location       string    `json:"location" binding:"required"`
	ImageURL       string    `json:"image_url"`
	Price          float64   `json:"price" binding:"required,min=0"`
	EventDate      time.Time `json:"event_date" binding:"required"`
	Capacity       int       `json:"capacity" binding:"required,min=1,max=500"`
}

// ToCreateEventRequest converts API request to repository request
func (r *CreateEventAPIRequest) ToCreateEventRequest() CreateEventRequest {
	return CreateEventRequest{
		Name:           r.Name,
		Description:    r.Description,
		Category:       r.Category,
		InstructorName: r.InstructorName,
		Location:       r.Location,
		ImageURL:       r.ImageURL,
		Price:          r.Price,
		EventDate:      r.EventDate,
		Capacity:       r.Capacity,
	}
}

// UpdateEventAPIRequest represents the API request for updating an event
type UpdateEventAPIRequest struct {
	Name           string    `json:"name" binding:"required"`
	Description    string    `json:"description"`
	Category       string    `json:"category" binding:"required"`
	InstructorName string    `json:"instructor_name" binding:"required"`
	Location       string    `json:"location" binding:"required"`
	ImageURL       string    `json:"image_url"`
	Price          float64   `json:"price" binding:"required,min=0"`
	EventDate      time.Time `json:"event_date" binding:"required"`
	Capacity       int       `json:"capacity" binding:"required,min=1,max=500"`
	Status         string    `json:"status" binding:"required,oneof=active cancelled completed"`
}

// EventResponse represents event data in API responses
type EventResponse struct {
	EventID        string    `json:"event_id"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	Category       string    `json:"category"`
	InstructorName string    `json:"instructor_name"`
	Location       string    `json:"location"`
	ImageURL       string    `json:"image_url,omitempty"`
	Price          float64   `json:"price"`
	EventDate      time.Time `json:"event_date"`
	Capacity       int       `json:"capacity"`
	SpotsRemaining int       `json:"spots_remaining"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

// ToEventResponse converts database Event to API response
func (e *Event) ToEventResponse() *EventResponse {
	return &EventResponse{
		EventID:        e.ID,
		Name:           e.Name,
		Description:    e.Description,
		Category:       e.Category,
		InstructorName: e.InstructorName,
		Location:       e.Location,
		ImageURL:       e.ImageURL,
		Price:          e.Price,
		EventDate:      e.EventDate,
		Capacity:       e.Capacity,
		SpotsRemaining: e.SpotsRemaining(),
		Status:         e.Status,
		CreatedAt:      e.CreatedAt,
	}
}

// EventListResponse represents the response for listing events
type EventListResponse struct {
	Events     []EventResponse `json:"events"`
	Pagination Pagination      `json:"pagination"`
}
