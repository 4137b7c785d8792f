package postgres

import (
	"fmt"
	"time"

	"github.com/willowyoga/studiobooking/model"
	"gorm.io/gorm"
)

// ListUserCredits retrieves all credits for a user, newest first
func (r *Repository) ListUserCredits(userID string) ([]model.EventCredit, error) {
	var credits []model.EventCredit
	if err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&credits).Error; err != nil {
		return nil, fmt.Errorf("failed to list credits: %w", err)
	}
	return credits, nil
}

// AvailableCredit returns the unexpired, unspent balance for a user
func (r *Repository) AvailableCredit(userID string, now time.Time) (float64, error) {
	var balance float64
	err := r.db.Model(&model.EventCredit{}).
		Select("COALESCE(SUM(credit_amount - used_amount), 0)").
		Where("user_id = ? AND status = ? AND expires_at > ?",
			userID, model.CreditStatusActive, now).
		Scan(&balance).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum credits: %w", err)
	}
	return balance, nil
}

// consumeCreditTx draws credit inside an existing transaction. Credits are
// spent soonest-expiring first. Each draw is a conditional UPDATE guarded on
// used_amount, so a concurrent spend of the same credit simply reduces what
// this call can take.
func consumeCreditTx(tx *gorm.DB, userID string, amount float64, now time.Time) (float64, error) {
	var credits []model.EventCredit
	if err := tx.Where("user_id = ? AND status = ? AND expires_at > ?",
		userID, model.CreditStatusActive, now).
		Order("expires_at ASC").
		Find(&credits).Error; err != nil {
		return 0, fmt.Errorf("failed to load credits: %w", err)
	}

	var applied float64
	remaining := amount

	for i := range credits {
		if remaining <= 0 {
			break
		}

		take := credits[i].Remaining()
		if take > remaining {
			take = remaining
		}
		if take <= 0 {
			continue
		}

		res := tx.Model(&model.EventCredit{}).
			Where("id = ? AND used_amount + ? <= credit_amount", credits[i].ID, take).
			Updates(map[string]interface{}{
				"used_amount": gorm.Expr("used_amount + ?", take),
			})
		if res.Error != nil {
			return 0, fmt.Errorf("failed to spend credit: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			// Lost a race with another spend on this credit; move on.
			continue
		}

		if credits[i].UsedAmount+take >= credits[i].CreditAmount {
			if err := tx.Model(&model.EventCredit{}).
				Where("id = ? AND used_amount >= credit_amount", credits[i].ID).
				Update("status", model.CreditStatusUsed).Error; err != nil {
				return 0, fmt.Errorf("failed to close credit: %w", err)
			}
		}

		applied += take
		remaining -= take
	}

	return applied, nil
}
