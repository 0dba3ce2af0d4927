package db

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/yungbote/production-portal-backend/internal/domain/catalog"
	"github.com/yungbote/production-portal-backend/internal/platform/logger"
)

//go:embed seed/catalogs.yaml
var catalogSeed []byte

// CatalogSeed parses the embedded catalog file.
func CatalogSeed() (map[catalog.Kind][]catalog.Entry, error) {
	raw := map[string][]catalog.Entry{}
	if err := yaml.Unmarshal(catalogSeed, &raw); err != nil {
		return nil, fmt.Errorf("parse catalog seed: %w", err)
	}
	out := make(map[catalog.Kind][]catalog.Entry, len(raw))
	for name, entries := range raw {
		kind, err := catalog.ParseKind(name)
		if err != nil {
			return nil, err
		}
		out[kind] = entries
	}
	return out, nil
}

// SeedCatalogs fills empty catalog tables from the embedded file. Tables that already
// hold rows are left alone.
func SeedCatalogs(db *gorm.DB, logg *logger.Logger) error {
	seed, err := CatalogSeed()
	if err != nil {
		return err
	}
	return db.Transaction(func(tx *gorm.DB) error {
		for _, kind := range catalog.Kinds() {
			entries := seed[kind]
			if len(entries) == 0 {
				continue
			}
			var count int64
			if err := tx.Table(kind.Table()).Count(&count).Error; err != nil {
				return fmt.Errorf("count %s: %w", kind, err)
			}
			if count > 0 {
				continue
			}
			if err := tx.Table(kind.Table()).Create(&entries).Error; err != nil {
				return fmt.Errorf("seed %s: %w", kind, err)
			}
			logg.Info("Seeded catalog", "kind", string(kind), "rows", len(entries))
		}
		return nil
	})
}
