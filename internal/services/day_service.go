package services

import (
	"errors"
	"fmt"

	"github.com/terraincognita07/clarity/internal/models"
)

var (
	ErrDayLoadFailed       = errors.New("load day failed")
	ErrDayInitializeFailed = errors.New("initialize day failed")
	ErrEntrySaveFailed     = errors.New("save entry failed")
	ErrDailyMetaSaveFailed = errors.New("save daily meta failed")
	ErrDayScoreFailed      = errors.New("refresh day score failed")
)

type DayRepository interface {
	GetEntriesForDate(date string) ([]models.BlockEntry, error)
	UpsertEntry(entry models.BlockEntry) (models.BlockEntry, error)
	CreateEmptyDay(date string) ([]models.BlockEntry, error)
	GetDailyMeta(date string) (models.DailyMeta, bool, error)
	UpsertDailyMeta(meta models.DailyMeta) (models.DailyMeta, error)
	PatchDailyMeta(date string, patch models.DailyMetaPatch) (models.DailyMeta, error)
	SetDayScore(date string, score *float64) (models.DailyMeta, error)
}

type SettingsLoader interface {
	Load() (models.Settings, error)
}

// DaySnapshot is one day as the entry screen sees it.
type DaySnapshot struct {
	Date    string              `json:"date"`
	Entries []models.BlockEntry `json:"entries"`
	Meta    models.DailyMeta    `json:"meta"`
	Score   *float64            `json:"score"`
	Band    ColorBand           `json:"band"`
}

type DayService struct {
	days     DayRepository
	settings SettingsLoader
}

func NewDayService(days DayRepository, settings SettingsLoader) *DayService {
	return &DayService{
		days:     days,
		settings: settings,
	}
}

// InitializeDay creates the empty entries and untracked meta for a day
// without overwriting anything already logged.
func (service *DayService) InitializeDay(date string) (DaySnapshot, error) {
	if err := models.ValidateDate("date", date); err != nil {
		return DaySnapshot{}, err
	}
	// Loading seeds the default blocks on a fresh store.
	if _, err := service.settings.Load(); err != nil {
		return DaySnapshot{}, err
	}
	if _, err := service.days.CreateEmptyDay(date); err != nil {
		return DaySnapshot{}, fmt.Errorf("%w: %w", ErrDayInitializeFailed, err)
	}

	_, found, err := service.days.GetDailyMeta(date)
	if err != nil {
		return DaySnapshot{}, fmt.Errorf("%w: %w", ErrDayInitializeFailed, err)
	}
	if !found {
		if _, err := service.days.UpsertDailyMeta(models.DefaultDailyMeta(date)); err != nil {
			return DaySnapshot{}, fmt.Errorf("%w: %w", ErrDayInitializeFailed, err)
		}
	}
	return service.FetchDay(date)
}

// FetchDay never writes. A day without meta reports the default meta.
func (service *DayService) FetchDay(date string) (DaySnapshot, error) {
	if err := models.ValidateDate("date", date); err != nil {
		return DaySnapshot{}, err
	}
	settings, err := service.settings.Load()
	if err != nil {
		return DaySnapshot{}, err
	}
	entries, err := service.days.GetEntriesForDate(date)
	if err != nil {
		return DaySnapshot{}, fmt.Errorf("%w: %w", ErrDayLoadFailed, err)
	}
	meta, found, err := service.days.GetDailyMeta(date)
	if err != nil {
		return DaySnapshot{}, fmt.Errorf("%w: %w", ErrDayLoadFailed, err)
	}
	if !found {
		meta = models.DefaultDailyMeta(date)
	}

	snapshot := DaySnapshot{
		Date:    date,
		Entries: entries,
		Meta:    meta,
		Score:   meta.ClarityScore,
	}
	if snapshot.Score == nil && found && len(entries) > 0 {
		score := RecomputeDayScore(entries, meta, settings)
		snapshot.Score = &score
	}
	snapshot.Band = ClassifyOptionalScore(snapshot.Score, settings.Thresholds)
	return snapshot, nil
}

// LogEntry saves one block entry, marks the day tracked and refreshes the
// persisted day score.
func (service *DayService) LogEntry(entry models.BlockEntry) (models.BlockEntry, models.DailyMeta, error) {
	saved, err := service.days.UpsertEntry(entry)
	if err != nil {
		return models.BlockEntry{}, models.DailyMeta{}, wrapUnlessValidation(ErrEntrySaveFailed, err)
	}

	tracked := true
	if _, err := service.days.PatchDailyMeta(saved.Date, models.DailyMetaPatch{Tracked: &tracked}); err != nil {
		return models.BlockEntry{}, models.DailyMeta{}, fmt.Errorf("%w: %w", ErrDailyMetaSaveFailed, err)
	}
	meta, err := service.RefreshDayScore(saved.Date)
	if err != nil {
		return models.BlockEntry{}, models.DailyMeta{}, err
	}
	return saved, meta, nil
}

// SaveDailyMeta merges the patch into the stored meta. Saving meta counts
// as tracking the day unless the patch says otherwise.
func (service *DayService) SaveDailyMeta(date string, patch models.DailyMetaPatch) (models.DailyMeta, error) {
	if patch.Tracked == nil {
		tracked := true
		patch.Tracked = &tracked
	}
	patch.ClarityScoreSet = false
	patch.ClarityScore = nil

	if _, err := service.days.PatchDailyMeta(date, patch); err != nil {
		return models.DailyMeta{}, wrapUnlessValidation(ErrDailyMetaSaveFailed, err)
	}
	return service.RefreshDayScore(date)
}

// ReplaceDailyMeta overwrites every meta field, then refreshes the score.
func (service *DayService) ReplaceDailyMeta(meta models.DailyMeta) (models.DailyMeta, error) {
	meta.ClarityScore = nil
	if _, err := service.days.UpsertDailyMeta(meta); err != nil {
		return models.DailyMeta{}, wrapUnlessValidation(ErrDailyMetaSaveFailed, err)
	}
	return service.RefreshDayScore(meta.Date)
}

// RefreshDayScore recomputes the day score from the stored entries and meta
// and persists it. A day with no entries has its score cleared to nil
// instead of caching ComputeDayScore's 0, so an untouched day reads as
// band none rather than worst case. Callers wanting the 0 use
// RecomputeDayScore directly.
func (service *DayService) RefreshDayScore(date string) (models.DailyMeta, error) {
	if err := models.ValidateDate("date", date); err != nil {
		return models.DailyMeta{}, err
	}
	settings, err := service.settings.Load()
	if err != nil {
		return models.DailyMeta{}, err
	}
	entries, err := service.days.GetEntriesForDate(date)
	if err != nil {
		return models.DailyMeta{}, fmt.Errorf("%w: %w", ErrDayScoreFailed, err)
	}
	meta, found, err := service.days.GetDailyMeta(date)
	if err != nil {
		return models.DailyMeta{}, fmt.Errorf("%w: %w", ErrDayScoreFailed, err)
	}
	if !found {
		meta = models.DefaultDailyMeta(date)
	}

	var score *float64
	if len(entries) > 0 {
		value := RecomputeDayScore(entries, meta, settings)
		score = &value
	}
	updated, err := service.days.SetDayScore(date, score)
	if err != nil {
		return models.DailyMeta{}, fmt.Errorf("%w: %w", ErrDayScoreFailed, err)
	}
	return updated, nil
}

func wrapUnlessValidation(sentinel error, err error) error {
	if errors.Is(err, models.ErrValidation) {
		return err
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}
