package db

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/terraincognita07/clarity/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (store *Store) GetBlocks() ([]models.TimeframeBlock, error) {
	blocks := make([]models.TimeframeBlock, 0)
	if err := store.database.Order("display_order ASC, id ASC").Find(&blocks).Error; err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}
	return blocks, nil
}

// ReplaceBlocks reconciles the stored block set to blocks: rows whose id
// is missing from the list are deleted, every listed block is upserted.
// A seeded settings blob gets the same block list in the same
// transaction. Entries logged against a deleted block are kept.
func (store *Store) ReplaceBlocks(blocks []models.TimeframeBlock) ([]models.TimeframeBlock, error) {
	normalized := assignBlockIDs(blocks)
	if err := models.ValidateBlockSet(normalized); err != nil {
		return nil, err
	}

	now := store.timestamp()
	if err := store.database.Transaction(func(tx *gorm.DB) error {
		if err := replaceBlocks(tx, normalized); err != nil {
			return err
		}
		settings, found, err := loadSettings(tx)
		if err != nil || !found {
			return err
		}
		settings.Blocks = normalized
		return writeSettings(tx, settings, now)
	}); err != nil {
		return nil, err
	}
	return normalized, nil
}

func replaceBlocks(tx *gorm.DB, blocks []models.TimeframeBlock) error {
	ids := make([]string, 0, len(blocks))
	for _, block := range blocks {
		ids = append(ids, block.ID)
	}

	deletion := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
	if len(ids) > 0 {
		deletion = tx.Where("id NOT IN ?", ids)
	}
	if err := deletion.Delete(&models.TimeframeBlock{}).Error; err != nil {
		return fmt.Errorf("delete removed blocks: %w", err)
	}

	if len(blocks) == 0 {
		return nil
	}
	rows := make([]models.TimeframeBlock, len(blocks))
	copy(rows, blocks)
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"label", "start_time", "end_time", "display_order", "active"}),
	}).Create(&rows).Error; err != nil {
		return fmt.Errorf("upsert blocks: %w", err)
	}
	return nil
}

func assignBlockIDs(blocks []models.TimeframeBlock) []models.TimeframeBlock {
	normalized := make([]models.TimeframeBlock, len(blocks))
	copy(normalized, blocks)
	for index := range normalized {
		if normalized[index].ID == "" {
			normalized[index].ID = uuid.NewString()
		}
	}
	return normalized
}
