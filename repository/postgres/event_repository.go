package postgres

import (
	"errors"
	"fmt"

	"github.com/willowyoga/studiobooking/model"
	"github.com/willowyoga/studiobooking/repository"
	"gorm.io/gorm"
)

// CreateEvent creates a new event
func (r *Repository) CreateEvent(req model.CreateEventRequest) (*model.Event, error) {
	event := model.Event{
		Name:           req.Name,
		Description:    req.Description,
		Category:       req.Category,
		InstructorName: req.InstructorName,
		Location:       req.Location,
		ImageURL:       req.ImageURL,
		Price:          req.Price,
		EventDate:      req.EventDate,
		Capacity:       req.Capacity,
		Status:         model.EventStatusActive,
	}

	if err := r.db.Create(&event).Error; err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	return &event, nil
}

// GetEventByID retrieves an event by its ID
func (r *Repository) GetEventByID(eventID string) (*model.Event, error) {
	var event model.Event
	if err := r.db.Where("id = ?", eventID).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return &event, nil
}

// ListEvents retrieves events with filtering and pagination
func (r *Repository) ListEvents(filter model.EventFilter) ([]model.Event, int, error) {
	var events []model.Event
	var total int64

	query := r.db.Model(&model.Event{})

	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.DateFrom != nil {
		query = query.Where("event_date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("event_date <= ?", *filter.DateTo)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count events: %w", err)
	}

	if err := query.Order("event_date ASC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&events).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list events: %w", err)
	}

	return events, int(total), nil
}

// UpdateEvent updates an existing event
func (r *Repository) UpdateEvent(req model.UpdateEventRequest) (*model.Event, error) {
	var event model.Event
	if err := r.db.Where("id = ?", req.ID).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	event.Name = req.Name
	event.Description = req.Description
	event.Category = req.Category
	event.InstructorName = req.InstructorName
	event.Location = req.Location
	event.ImageURL = req.ImageURL
	event.Price = req.Price
	event.EventDate = req.EventDate
	event.Capacity = req.Capacity
	event.Status = req.Status

	if err := r.db.Save(&event).Error; err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	return &event, nil
}

// DeleteEvent removes an event
func (r *Repository) DeleteEvent(eventID string) error {
	result := r.db.Where("id = ?", eventID).Delete(&model.Event{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete event: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrEventNotFound
	}
	return nil
}

// incrementEventBookings bumps the booking counter for one event inside tx.
// The bounded atomic UPDATE is what keeps concurrent confirmations from
// losing updates or overselling capacity.
func incrementEventBookings(tx *gorm.DB, eventID string) error {
	result := tx.Exec(
		`UPDATE events
			SET current_bookings = current_bookings + 1, updated_at = NOW()
			WHERE id = ? AND current_bookings < capacity`,
		eventID,
	)
	if result.Error != nil {
		return fmt.Errorf("failed to increment bookings for event %s: %w", eventID, result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrEventFull
	}
	return nil
}

// decrementEventBookings releases one place on an event inside tx
func decrementEventBookings(tx *gorm.DB, eventID string) error {
	result := tx.Exec(
		`UPDATE events
			SET current_bookings = current_bookings - 1, updated_at = NOW()
			WHERE id = ? AND current_bookings > 0`,
		eventID,
	)
	if result.Error != nil {
		return fmt.Errorf("failed to decrement bookings for event %s: %w", eventID, result.Error)
	}
	return nil
}
