package db

import (
	"fmt"
	"time"

	"github.com/terraincognita07/clarity/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var dailyMetaUpdateColumns = []string{
	"sleep_score",
	"exercise_minutes",
	"notes",
	"clarity_score",
	"tracked",
	"updated_at",
}

func (store *Store) GetDailyMeta(date string) (models.DailyMeta, bool, error) {
	if err := models.ValidateDate("date", date); err != nil {
		return models.DailyMeta{}, false, err
	}
	return findDailyMeta(store.database, date)
}

// UpsertDailyMeta stores meta exactly as given. It does not merge with
// the stored row: a zero Tracked or nil ClarityScore overwrites what was
// there, and a zero SleepScore is written as models.DefaultScore.
// Callers wanting merge semantics use PatchDailyMeta.
func (store *Store) UpsertDailyMeta(meta models.DailyMeta) (models.DailyMeta, error) {
	meta.ApplyDefaults()
	if err := meta.Validate(); err != nil {
		return models.DailyMeta{}, err
	}

	now := store.timestamp()
	stored := models.DailyMeta{}
	err := store.database.Transaction(func(tx *gorm.DB) error {
		var err error
		stored, err = upsertDailyMeta(tx, meta, now)
		return err
	})
	if err != nil {
		return models.DailyMeta{}, err
	}
	return stored, nil
}

// PatchDailyMeta applies patch on top of the stored row (or on top of
// the default row when the date has none) inside one transaction.
func (store *Store) PatchDailyMeta(date string, patch models.DailyMetaPatch) (models.DailyMeta, error) {
	if err := models.ValidateDate("date", date); err != nil {
		return models.DailyMeta{}, err
	}

	now := store.timestamp()
	stored := models.DailyMeta{}
	err := store.database.Transaction(func(tx *gorm.DB) error {
		current, found, err := findDailyMeta(tx, date)
		if err != nil {
			return err
		}
		if !found {
			current = models.DefaultDailyMeta(date)
		}

		next := patch.Apply(current)
		if err := next.Validate(); err != nil {
			return err
		}
		stored, err = upsertDailyMeta(tx, next, now)
		return err
	})
	if err != nil {
		return models.DailyMeta{}, err
	}
	return stored, nil
}

// SetDayScore caches a computed day score (nil marks it stale).
func (store *Store) SetDayScore(date string, score *float64) (models.DailyMeta, error) {
	return store.PatchDailyMeta(date, models.DailyMetaPatch{ClarityScoreSet: true, ClarityScore: score})
}

// GetDailyMetaRange returns meta with start <= date <= end, newest first.
func (store *Store) GetDailyMetaRange(start string, end string) ([]models.DailyMeta, error) {
	if err := models.ValidateDateRange(start, end); err != nil {
		return nil, err
	}

	metas := make([]models.DailyMeta, 0)
	if err := store.database.
		Where("date >= ? AND date <= ?", start, end).
		Order("date DESC").
		Find(&metas).Error; err != nil {
		return nil, fmt.Errorf("list daily meta range: %w", err)
	}
	return metas, nil
}

func upsertDailyMeta(tx *gorm.DB, meta models.DailyMeta, now time.Time) (models.DailyMeta, error) {
	meta.CreatedAt = now
	meta.UpdatedAt = now
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}},
		DoUpdates: clause.AssignmentColumns(dailyMetaUpdateColumns),
	}).Create(&meta).Error; err != nil {
		return models.DailyMeta{}, fmt.Errorf("upsert daily meta: %w", err)
	}

	stored, found, err := findDailyMeta(tx, meta.Date)
	if err != nil {
		return models.DailyMeta{}, err
	}
	if !found {
		return models.DailyMeta{}, fmt.Errorf("reload daily meta %s: row missing after upsert", meta.Date)
	}
	return stored, nil
}

func findDailyMeta(database *gorm.DB, date string) (models.DailyMeta, bool, error) {
	meta := models.DailyMeta{}
	result := database.Where("date = ?", date).Limit(1).Find(&meta)
	if result.Error != nil {
		return models.DailyMeta{}, false, fmt.Errorf("load daily meta %s: %w", date, result.Error)
	}
	if result.RowsAffected == 0 {
		return models.DailyMeta{}, false, nil
	}
	return meta, true, nil
}
