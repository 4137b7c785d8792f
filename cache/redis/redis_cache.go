package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/willowyoga/studiobooking/model"
)

type RedisCacheRepository struct {
	client *redis.Client
	ctx    context.Context
}

func NewRedisCacheRepository(redisURL, password string, db int) (*RedisCacheRepository, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     redisURL,
		Password: password,
		DB:       db,
	})

	ctx := context.Background()

	// Test connection
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCacheRepository{
		client: client,
		ctx:    ctx,
	}, nil
}

// Cache key generators
func (r *RedisCacheRepository) bookingStatusKey(bookingID string) string {
	return fmt.Sprintf("booking_status:%s", bookingID)
}

func (r *RedisCacheRepository) eventKey(eventID string) string {
	return fmt.Sprintf("event:%s", eventID)
}

// GetBookingStatus retrieves booking status update from cache
func (r *RedisCacheRepository) GetBookingStatus(bookingID string) (*model.BookingStatusUpdate, error) {
	statusData, err := r.client.Get(r.ctx, r.bookingStatusKey(bookingID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var status model.BookingStatusUpdate
	if err := json.Unmarshal([]byte(statusData), &status); err != nil {
		return nil, err
	}

	return &status, nil
}

// SetBookingStatus stores booking status update in cache
func (r *RedisCacheRepository) SetBookingStatus(bookingID string, status *model.BookingStatusUpdate, ttl time.Duration) error {
	statusData, err := json.Marshal(status)
	if err != nil {
		return err
	}

	return r.client.Set(r.ctx, r.bookingStatusKey(bookingID), statusData, ttl).Err()
}

// InvalidateBookingStatus removes booking status from cache
func (r *RedisCacheRepository) InvalidateBookingStatus(bookingID string) error {
	return r.client.Del(r.ctx, r.bookingStatusKey(bookingID)).Err()
}

// GetEvent retrieves a cached event detail response
func (r *RedisCacheRepository) GetEvent(eventID string) (*model.EventResponse, error) {
	eventData, err := r.client.Get(r.ctx, r.eventKey(eventID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var event model.EventResponse
	if err := json.Unmarshal([]byte(eventData), &event); err != nil {
		return nil, err
	}

	return &event, nil
}

// SetEvent stores an event detail response in cache
func (r *RedisCacheRepository) SetEvent(eventID string, event *model.EventResponse, ttl time.Duration) error {
	eventData, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return r.client.Set(r.ctx, r.eventKey(eventID), eventData, ttl).Err()
}

// InvalidateEvent removes an event detail from cache
func (r *RedisCacheRepository) InvalidateEvent(eventID string) error {
	return r.client.Del(r.ctx, r.eventKey(eventID)).Err()
}

// Ping checks if Redis is healthy
func (r *RedisCacheRepository) Ping() error {
	return r.client.Ping(r.ctx).Err()
}
