package repository

import (
	"fundis/internal/domain"

	"gorm.io/gorm"
)

// AutoMigrate creates or updates the schema for every table this package owns.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&postModel{},
		&commentModel{},
		&categoryModel{},
		&bookingModel{},
		&domain.PaymentSession{},
	)
}
