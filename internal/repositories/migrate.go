package repositories

import (
	"fmt"

	"gorm.io/gorm"

	"catalog/internal/models"
)

// Migrate creates the products table when it does not exist yet. It is safe to
// run on every start.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Product{}); err != nil {
		return fmt.Errorf("failed to migrate products table: %w", err)
	}
	return nil
}
