package main

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/willowyoga/studiobooking/model"
	"github.com/willowyoga/studiobooking/repository"
)

// parsePagination reads limit/offset query parameters with sane bounds
func parsePagination(c *gin.Context) (int, int) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 20
	}

	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	return limit, offset
}

// ListEvents returns the public class schedule
func (h *Handler) ListEvents(c *gin.Context) {
	limit, offset := parsePagination(c)

	filter := model.EventFilter{
		Category: c.Query("category"),
		Status:   c.DefaultQuery("status", model.EventStatusActive),
		Limit:    limit,
		Offset:   offset,
	}

	if from := c.Query("date_from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			c.JSON(http.StatusBadRequest, model.ErrorResponse{
				Error:   "validation_failed",
				Message: "date_from must be RFC3339",
			})
			return
		}
		filter.DateFrom = &t
	}
	if to := c.Query("date_to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			c.JSON(http.StatusBadRequest, model.ErrorResponse{
				Error:   "validation_failed",
				Message: "date_to must be RFC3339",
			})
			return
		}
		filter.DateTo = &t
	}

	events, total, err := h.repo.ListEvents(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to list events",
		})
		return
	}

	responses := make([]model.EventResponse, 0, len(events))
	for i := range events {
		responses = append(responses, *events[i].ToEventResponse())
	}

	c.JSON(http.StatusOK, model.EventListResponse{
		Events:     responses,
		Pagination: model.NewPagination(total, limit, offset),
	})
}

// GetEvent returns one event, served from cache when possible
func (h *Handler) GetEvent(c *gin.Context) {
	eventID := c.Param("eventId")

	if cached, err := h.cache.GetEvent(eventID); err == nil && cached != nil {
		c.JSON(http.StatusOK, cached)
		return
	}

	event, err := h.repo.GetEventByID(eventID)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			c.JSON(http.StatusNotFound, model.ErrorResponse{
				Error:   "event_not_found",
				Message: "Event not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to get event",
		})
		return
	}

	response := event.ToEventResponse()
	if err := h.cache.SetEvent(eventID, response, eventCacheTTL); err != nil {
		log.Printf("Failed to cache event %s: %v", eventID, err)
	}

	c.JSON(http.StatusOK, response)
}

// CreateEvent creates a new event (admin only)
func (h *Handler) CreateEvent(c *gin.Context) {
	var req model.CreateEventAPIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error:   "validation_failed",
			Message: err.Error(),
		})
		return
	}

	event, err := h.repo.CreateEvent(req.ToCreateEventRequest())
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to create event",
		})
		return
	}

	c.JSON(http.StatusCreated, event.ToEventResponse())
}

// UpdateEvent updates an event (admin only)
func (h *Handler) UpdateEvent(c *gin.Context) {
	eventID := c.Param("eventId")

	var req model.UpdateEventAPIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error:   "validation_failed",
			Message: err.Error(),
		})
		return
	}

	event, err := h.repo.UpdateEvent(model.UpdateEventRequest{
		ID:             eventID,
		Name:           req.Name,
		Description:    req.Description,
		Category:       req.Category,
		InstructorName: req.InstructorName,
		Location:       req.Location,
		ImageURL:       req.ImageURL,
		Price:          req.Price,
		EventDate:      req.EventDate,
		Capacity:       req.Capacity,
		Status:         req.Status,
	})
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			c.JSON(http.StatusNotFound, model.ErrorResponse{
				Error:   "event_not_found",
				Message: "Event not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to update event",
		})
		return
	}

	if err := h.cache.InvalidateEvent(eventID); err != nil {
		log.Printf("Failed to invalidate event cache %s: %v", eventID, err)
	}

	c.JSON(http.StatusOK, event.ToEventResponse())
}

// DeleteEvent removes an event (admin only)
func (h *Handler) DeleteEvent(c *gin.Context) {
	eventID := c.Param("eventId")

	if err := h.repo.DeleteEvent(eventID); err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			c.JSON(http.StatusNotFound, model.ErrorResponse{
				Error:   "event_not_found",
				Message: "Event not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to delete event",
		})
		return
	}

	if err := h.cache.InvalidateEvent(eventID); err != nil {
		log.Printf("Failed to invalidate event cache %s: %v", eventID, err)
	}

	c.Status(http.StatusNoContent)
}
