package postgres

import (
	"errors"
	"fmt"

	"github.com/willowyoga/studiobooking/model"
	"github.com/willowyoga/studiobooking/repository"
	"gorm.io/gorm"
)

// CreateBundle creates a bundle with its member events and derived pricing.
// Callers validate the [2,5] size rule before reaching the repository; the
// event lookups here catch unknown IDs.
func (r *Repository) CreateBundle(req model.CreateBundleRequest) (*model.Bundle, []model.Event, error) {
	var bundle model.Bundle
	var events []model.Event

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id IN ?", req.EventIDs).Find(&events).Error; err != nil {
			return fmt.Errorf("failed to load bundle events: %w", err)
		}
		if len(events) != len(req.EventIDs) {
			return repository.ErrEventNotFound
		}

		breakdown := model.ComputeBundlePrice(events)

		bundle = model.Bundle{
			Name:               req.Name,
			Description:        req.Description,
			DiscountPercentage: breakdown.DiscountPercentage,
			OriginalPrice:      breakdown.OriginalTotal,
			TotalPrice:         breakdown.DiscountedTotal,
			Status:             model.BundleStatusActive,
		}
		if err := tx.Create(&bundle).Error; err != nil {
			return fmt.Errorf("failed to create bundle: %w", err)
		}

		for _, eventID := range req.EventIDs {
			link := model.BundleEvent{BundleID: bundle.ID, EventID: eventID}
			if err := tx.Create(&link).Error; err != nil {
				return fmt.Errorf("failed to link bundle event: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return &bundle, events, nil
}

// GetBundleByID retrieves a bundle together with its member events
func (r *Repository) GetBundleByID(bundleID string) (*model.Bundle, []model.Event, error) {
	var bundle model.Bundle
	if err := r.db.Where("id = ?", bundleID).First(&bundle).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, repository.ErrBundleNotFound
		}
		return nil, nil, fmt.Errorf("failed to get bundle: %w", err)
	}

	events, err := r.getBundleEvents(r.db, bundleID)
	if err != nil {
		return nil, nil, err
	}

	return &bundle, events, nil
}

// ListBundles retrieves bundles with filtering and pagination
func (r *Repository) ListBundles(filter model.BundleFilter) ([]model.Bundle, int, error) {
	var bundles []model.Bundle
	var total int64

	query := r.db.Model(&model.Bundle{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bundles: %w", err)
	}

	if err := query.Order("created_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&bundles).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bundles: %w", err)
	}

	return bundles, int(total), nil
}

// getBundleEvents loads the member events of a bundle, earliest first
func (r *Repository) getBundleEvents(tx *gorm.DB, bundleID string) ([]model.Event, error) {
	var events []model.Event
	err := tx.
		Joins("JOIN bundle_events ON bundle_events.event_id = events.id").
		Where("bundle_events.bundle_id = ?", bundleID).
		Order("events.event_date ASC").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load bundle events: %w", err)
	}
	return events, nil
}
