package db

import (
	"fmt"

	"gorm.io/gorm"

	types "github.com/yungbote/production-portal-backend/internal/domain"
	"github.com/yungbote/production-portal-backend/internal/domain/catalog"
)

// AutoMigrateAll creates or updates every table the service owns, catalogs included.
func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(types.Models()...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	for _, kind := range catalog.Kinds() {
		if err := db.Table(kind.Table()).AutoMigrate(&catalog.Entry{}); err != nil {
			return fmt.Errorf("automigrate catalog %s: %w", kind, err)
		}
	}
	return nil
}
