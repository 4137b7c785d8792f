package postgres

import (
	"fmt"
	"time"

	"github.com/willowyoga/studiobooking/model"
	"github.com/willowyoga/studiobooking/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ListClients retrieves CRM client records with search and pagination
func (r *Repository) ListClients(filter model.ClientFilter) ([]model.Client, int, error) {
	var clients []model.Client
	var total int64

	query := r.db.Model(&model.Client{})
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("email ILIKE ? OR name ILIKE ?", pattern, pattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count clients: %w", err)
	}

	if err := query.Order("created_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&clients).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list clients: %w", err)
	}

	return clients, int(total), nil
}

// clientIntake assembles the contact details for the CRM upsert. The booking
// row is authoritative; the processor payload only fills gaps, never
// overwrites.
func clientIntake(booking *model.Booking, fallback model.IntakeDetails) model.IntakeDetails {
	intake := model.IntakeDetails{
		Name:  booking.ContactName,
		Email: booking.ContactEmail,
		Phone: booking.ContactPhone,
	}
	if intake.Name == "" {
		intake.Name = fallback.Name
	}
	if intake.Email == "" {
		intake.Email = fallback.Email
	}
	if intake.Phone == "" {
		intake.Phone = fallback.Phone
	}
	return intake
}

// upsertClientTx maintains the email-keyed client aggregate inside the
// payment-confirmation transaction. An existing client gets its contact
// details refreshed and its booking count bumped; empty incoming fields
// never blank out stored ones.
func upsertClientTx(tx *gorm.DB, intake model.IntakeDetails) error {
	if intake.Email == "" {
		return nil
	}

	client := model.Client{
		Email:        intake.Email,
		Name:         intake.Name,
		Phone:        intake.Phone,
		BookingCount: 1,
	}

	err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "email"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"name":          gorm.Expr("COALESCE(NULLIF(?, ''), clients.name)", intake.Name),
			"phone":         gorm.Expr("COALESCE(NULLIF(?, ''), clients.phone)", intake.Phone),
			"booking_count": gorm.Expr("clients.booking_count + 1"),
			"updated_at":    gorm.Expr("NOW()"),
		}),
	}).Create(&client).Error
	if err != nil {
		return fmt.Errorf("failed to upsert client: %w", err)
	}

	return nil
}

// markWebhookProcessedTx inserts into the idempotency ledger. A conflict on
// (provider, provider_event_id) means the event was already applied, and the
// whole surrounding transaction must stop with ErrEventAlreadyProcessed.
func markWebhookProcessedTx(tx *gorm.DB, provider, providerEventID, eventType string, now time.Time) error {
	processedAt := now
	entry := model.WebhookEvent{
		Provider:        provider,
		ProviderEventID: providerEventID,
		EventType:       eventType,
		ProcessedAt:     &processedAt,
	}

	res := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "provider"}, {Name: "provider_event_id"}},
		DoNothing: true,
	}).Create(&entry)
	if res.Error != nil {
		return fmt.Errorf("failed to record webhook event: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.ErrEventAlreadyProcessed
	}

	return nil
}
