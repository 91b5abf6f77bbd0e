package db

import (
	"fmt"
	"log"

	"github.com/terraincognita07/clarity/internal/models"
	"gorm.io/gorm"
)

// SeedIfNeeded writes the default block set and settings when no
// settings row exists. It reports whether anything was written.
func (store *Store) SeedIfNeeded() (bool, error) {
	seeded := false
	now := store.timestamp()
	err := store.database.Transaction(func(tx *gorm.DB) error {
		_, found, err := loadSettings(tx)
		if err != nil {
			return err
		}
		if found {
			return nil
		}

		defaults := models.DefaultSettings()
		if err := replaceBlocks(tx, defaults.Blocks); err != nil {
			return err
		}
		if err := writeSettings(tx, defaults, now); err != nil {
			return err
		}
		seeded = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("seed defaults: %w", err)
	}
	return seeded, nil
}

var legacyZeroBackfills = []struct {
	table  string
	column string
}{
	{"block_entries", "anxiety_score"},
	{"block_entries", "distress_score"},
	{"daily_meta", "sleep_score"},
}

// MigrateDefaults rewrites legacy zero scores to models.DefaultScore and
// returns the number of rows changed. It is best effort: failures are
// logged and the whole backfill is rolled back.
func (store *Store) MigrateDefaults() int64 {
	var updated int64
	err := store.database.Transaction(func(tx *gorm.DB) error {
		for _, backfill := range legacyZeroBackfills {
			statement := fmt.Sprintf(
				`UPDATE %s SET %s = ? WHERE %s = 0 OR %s IS NULL`,
				backfill.table, backfill.column, backfill.column, backfill.column,
			)
			result := tx.Exec(statement, models.DefaultScore)
			if result.Error != nil {
				return fmt.Errorf("backfill %s.%s: %w", backfill.table, backfill.column, result.Error)
			}
			updated += result.RowsAffected
		}
		return nil
	})
	if err != nil {
		log.Printf("migrate defaults skipped: %v", err)
		return 0
	}
	return updated
}

// ClearAll removes every entry and daily meta row. Blocks and settings stay.
func (store *Store) ClearAll() error {
	return store.database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.BlockEntry{}).Error; err != nil {
			return fmt.Errorf("clear entries: %w", err)
		}
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.DailyMeta{}).Error; err != nil {
			return fmt.Errorf("clear daily meta: %w", err)
		}
		return nil
	})
}
