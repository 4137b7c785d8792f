package postgres

import (
	"fmt"
	"log"
	"time"

	"github.com/willowyoga/studiobooking/config"
	"github.com/willowyoga/studiobooking/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Repository is the Postgres-backed implementation of repository.Repository
type Repository struct {
	db *gorm.DB
}

func NewRepository(cfg *config.Database) (*Repository, error) {
	db, err := gorm.Open(postgres.Open(cfg.GetDatabaseURL()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)

	if err := db.AutoMigrate(
		&model.User{},
		&model.Event{},
		&model.Bundle{},
		&model.BundleEvent{},
		&model.Booking{},
		&model.Payment{},
		&model.EventCredit{},
		&model.Client{},
		&model.WebhookEvent{},
		&model.Notification{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	// One paid booking per user per event/bundle, enforced in storage rather
	// than by application-level check-then-act.
	partialIndexes := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_bookings_user_event_paid
			ON bookings (user_id, event_id)
			WHERE payment_status = 'paid' AND user_id IS NOT NULL AND event_id IS NOT NULL`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_bookings_user_bundle_paid
			ON bookings (user_id, bundle_id)
			WHERE payment_status = 'paid' AND user_id IS NOT NULL AND bundle_id IS NOT NULL`,
	}
	for _, stmt := range partialIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			return nil, fmt.Errorf("failed to create index: %w", err)
		}
	}

	log.Println("Database connected and tables migrated successfully")

	return &Repository{db: db}, nil
}

// GetDB returns the database instance for health checks
func (r *Repository) GetDB() *gorm.DB {
	return r.db
}
