package postgres

import (
	"fmt"
	"time"

	"github.com/willowyoga/studiobooking/model"
)

// CreateNotification stores a queued notification record
func (r *Repository) CreateNotification(n *model.Notification) error {
	if err := r.db.Create(n).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// MarkNotificationSent records a successful delivery
func (r *Repository) MarkNotificationSent(notificationID string, sentAt time.Time) error {
	err := r.db.Model(&model.Notification{}).
		Where("id = ?", notificationID).
		Updates(map[string]interface{}{
			"status":  model.NotificationStatusSent,
			"sent_at": sentAt,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to mark notification sent: %w", err)
	}
	return nil
}

// MarkNotificationFailed records a delivery failure and the attempt count
func (r *Repository) MarkNotificationFailed(notificationID string, attempts int, lastError string) error {
	err := r.db.Model(&model.Notification{}).
		Where("id = ?", notificationID).
		Updates(map[string]interface{}{
			"status":     model.NotificationStatusFailed,
			"attempts":   attempts,
			"last_error": lastError,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to mark notification failed: %w", err)
	}
	return nil
}
