package db

import (
	"fmt"
	"sort"

	"github.com/terraincognita07/clarity/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var entryUpdateColumns = []string{
	"rumination",
	"compulsion",
	"avoidance",
	"anxiety_score",
	"distress_score",
	"note",
	"updated_at",
}

// EntrySummary is one date of GetEntriesSummary: the metric total over
// all blocks plus the per-block breakdown.
type EntrySummary struct {
	Date   string         `json:"date"`
	Total  int            `json:"total"`
	Blocks map[string]int `json:"blocks"`
}

func (store *Store) GetEntriesForDate(date string) ([]models.BlockEntry, error) {
	if err := models.ValidateDate("date", date); err != nil {
		return nil, err
	}
	return listEntriesForDate(store.database, date)
}

func (store *Store) GetEntry(date string, blockID string) (models.BlockEntry, bool, error) {
	if err := models.ValidateDate("date", date); err != nil {
		return models.BlockEntry{}, false, err
	}
	return findEntry(store.database, models.EntryID(date, blockID))
}

// UpsertEntry writes an entry keyed by (date, block). The first write
// fixes created_at; every write refreshes updated_at.
func (store *Store) UpsertEntry(entry models.BlockEntry) (models.BlockEntry, error) {
	entry.ApplyDefaults()
	if err := entry.Validate(); err != nil {
		return models.BlockEntry{}, err
	}

	now := store.timestamp()
	entry.CreatedAt = now
	entry.UpdatedAt = now

	stored := models.BlockEntry{}
	err := store.database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns(entryUpdateColumns),
		}).Create(&entry).Error; err != nil {
			return fmt.Errorf("upsert entry: %w", err)
		}
		if err := tx.Where("id = ?", entry.ID).First(&stored).Error; err != nil {
			return fmt.Errorf("reload entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.BlockEntry{}, err
	}
	return stored, nil
}

// CreateEmptyDay inserts a zero entry for every active block that has
// none on date yet and returns the rows it created.
func (store *Store) CreateEmptyDay(date string) ([]models.BlockEntry, error) {
	if err := models.ValidateDate("date", date); err != nil {
		return nil, err
	}

	now := store.timestamp()
	created := make([]models.BlockEntry, 0)
	err := store.database.Transaction(func(tx *gorm.DB) error {
		blocks := make([]models.TimeframeBlock, 0)
		if err := tx.Find(&blocks).Error; err != nil {
			return fmt.Errorf("list blocks: %w", err)
		}

		for _, block := range models.ActiveBlocks(blocks) {
			entry := models.NewEmptyEntry(date, block.ID)
			entry.CreatedAt = now
			entry.UpdatedAt = now
			result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&entry)
			if result.Error != nil {
				return fmt.Errorf("create empty entry %s: %w", entry.ID, result.Error)
			}
			if result.RowsAffected > 0 {
				created = append(created, entry)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetEntriesRange returns entries with start <= date <= end, newest date first.
func (store *Store) GetEntriesRange(start string, end string) ([]models.BlockEntry, error) {
	if err := models.ValidateDateRange(start, end); err != nil {
		return nil, err
	}

	entries := make([]models.BlockEntry, 0)
	if err := store.database.
		Where("date >= ? AND date <= ?", start, end).
		Order("date DESC, block_id ASC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list entries range: %w", err)
	}
	return entries, nil
}

type entrySummaryRow struct {
	Date    string `gorm:"column:date"`
	BlockID string `gorm:"column:block_id"`
	Total   int    `gorm:"column:total"`
}

// GetEntriesSummary totals metric per date over the limit most recent
// dates that have at least one entry.
func (store *Store) GetEntriesSummary(metric models.Metric, limit int) ([]EntrySummary, error) {
	if _, err := models.ParseMetric(string(metric)); err != nil {
		return nil, err
	}
	column := metric.Column()
	if limit < 1 {
		return nil, &models.ValidationError{Field: "limit", Reason: fmt.Sprintf("must be positive, got %d", limit)}
	}

	rows := make([]entrySummaryRow, 0)
	err := store.database.Transaction(func(tx *gorm.DB) error {
		var dates []struct {
			Date string `gorm:"column:date"`
		}
		if err := tx.Raw(
			`SELECT DISTINCT date FROM block_entries ORDER BY date DESC LIMIT ?`,
			limit,
		).Scan(&dates).Error; err != nil {
			return fmt.Errorf("list summary dates: %w", err)
		}
		if len(dates) == 0 {
			return nil
		}

		keys := make([]string, 0, len(dates))
		for _, row := range dates {
			keys = append(keys, row.Date)
		}
		if err := tx.Model(&models.BlockEntry{}).
			Select("date, block_id, SUM("+column+") AS total").
			Where("date IN ?", keys).
			Group("date, block_id").
			Scan(&rows).Error; err != nil {
			return fmt.Errorf("sum %s per block: %w", column, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	byDate := make(map[string]*EntrySummary)
	summaries := make([]*EntrySummary, 0)
	for _, row := range rows {
		summary, ok := byDate[row.Date]
		if !ok {
			summary = &EntrySummary{Date: row.Date, Blocks: make(map[string]int)}
			byDate[row.Date] = summary
			summaries = append(summaries, summary)
		}
		summary.Blocks[row.BlockID] += row.Total
		summary.Total += row.Total
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Date > summaries[j].Date
	})

	result := make([]EntrySummary, 0, len(summaries))
	for _, summary := range summaries {
		result = append(result, *summary)
	}
	return result, nil
}

func listEntriesForDate(database *gorm.DB, date string) ([]models.BlockEntry, error) {
	entries := make([]models.BlockEntry, 0)
	if err := database.Where("date = ?", date).Order("block_id ASC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list entries for %s: %w", date, err)
	}
	return entries, nil
}

func findEntry(database *gorm.DB, id string) (models.BlockEntry, bool, error) {
	entry := models.BlockEntry{}
	result := database.Where("id = ?", id).Limit(1).Find(&entry)
	if result.Error != nil {
		return models.BlockEntry{}, false, fmt.Errorf("load entry %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return models.BlockEntry{}, false, nil
	}
	return entry, true, nil
}
