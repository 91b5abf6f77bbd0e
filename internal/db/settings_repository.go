package db

import (
	"fmt"
	"time"

	"github.com/terraincognita07/clarity/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const settingsRowID = 1

type settingsRecord struct {
	ID        int             `gorm:"primaryKey"`
	Data      models.Settings `gorm:"serializer:json;not null"`
	UpdatedAt time.Time
}

func (settingsRecord) TableName() string {
	return "settings"
}

// GetSettings reports found=false when the store was never seeded.
func (store *Store) GetSettings() (models.Settings, bool, error) {
	return loadSettings(store.database)
}

// UpdateSettings replaces the whole settings blob and reconciles the
// blocks table to its block list.
func (store *Store) UpdateSettings(settings models.Settings) error {
	_, err := store.ApplySettings(settings)
	return err
}

// ApplySettings saves the blob and reconciles the block table to the
// same block list in one transaction. Blocks without an id get one.
func (store *Store) ApplySettings(settings models.Settings) (models.Settings, error) {
	settings.Blocks = assignBlockIDs(settings.Blocks)
	if err := settings.Validate(); err != nil {
		return models.Settings{}, err
	}

	now := store.timestamp()
	err := store.database.Transaction(func(tx *gorm.DB) error {
		if err := replaceBlocks(tx, settings.Blocks); err != nil {
			return err
		}
		return writeSettings(tx, settings, now)
	})
	if err != nil {
		return models.Settings{}, err
	}
	return settings, nil
}

func loadSettings(database *gorm.DB) (models.Settings, bool, error) {
	record := settingsRecord{}
	result := database.Where("id = ?", settingsRowID).Limit(1).Find(&record)
	if result.Error != nil {
		return models.Settings{}, false, fmt.Errorf("load settings: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return models.Settings{}, false, nil
	}
	return record.Data, true, nil
}

func writeSettings(database *gorm.DB, settings models.Settings, now time.Time) error {
	record := settingsRecord{ID: settingsRowID, Data: settings, UpdatedAt: now}
	if err := database.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&record).Error; err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}
