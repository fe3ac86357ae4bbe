package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/noah-isme/spk-prodi-api/internal/models"
)

// Migrate creates or updates every table the service owns.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Criterion{},
		&models.SubCriterion{},
		&models.Alternative{},
		&models.Question{},
		&models.Answer{},
		&models.ActivityLog{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
