package postgres

import (
	"fmt"

	"github.com/willowyoga/studiobooking/model"
)

// ListPayments retrieves payment records with filtering and pagination
func (r *Repository) ListPayments(filter model.PaymentFilter) ([]model.Payment, int, error) {
	var payments []model.Payment
	var total int64

	query := r.db.Model(&model.Payment{})

	if filter.BookingID != "" {
		query = query.Where("booking_id = ?", filter.BookingID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count payments: %w", err)
	}

	if err := query.Order("created_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&payments).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list payments: %w", err)
	}

	return payments, int(total), nil
}
