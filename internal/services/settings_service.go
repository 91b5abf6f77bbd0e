package services

import (
	"errors"
	"fmt"

	"github.com/terraincognita07/clarity/internal/models"
)

var (
	ErrSettingsLoadFailed = errors.New("load settings failed")
	ErrSettingsSaveFailed = errors.New("save settings failed")
	ErrSettingsMissing    = errors.New("settings missing after seeding")
)

type SettingsRepository interface {
	GetSettings() (models.Settings, bool, error)
	SeedIfNeeded() (bool, error)
	ApplySettings(settings models.Settings) (models.Settings, error)
}

type SettingsService struct {
	settings SettingsRepository
}

func NewSettingsService(settings SettingsRepository) *SettingsService {
	return &SettingsService{settings: settings}
}

// Load returns the stored settings, seeding defaults on first use.
func (service *SettingsService) Load() (models.Settings, error) {
	settings, found, err := service.settings.GetSettings()
	if err != nil {
		return models.Settings{}, fmt.Errorf("%w: %w", ErrSettingsLoadFailed, err)
	}
	if found {
		return settings, nil
	}

	if _, err := service.settings.SeedIfNeeded(); err != nil {
		return models.Settings{}, fmt.Errorf("%w: %w", ErrSettingsLoadFailed, err)
	}
	settings, found, err = service.settings.GetSettings()
	if err != nil {
		return models.Settings{}, fmt.Errorf("%w: %w", ErrSettingsLoadFailed, err)
	}
	if !found {
		return models.Settings{}, ErrSettingsMissing
	}
	return settings, nil
}

// Save validates before touching storage so callers get field-level errors.
func (service *SettingsService) Save(settings models.Settings) (models.Settings, error) {
	if err := settings.Validate(); err != nil {
		return models.Settings{}, err
	}
	saved, err := service.settings.ApplySettings(settings)
	if err != nil {
		if errors.Is(err, models.ErrValidation) {
			return models.Settings{}, err
		}
		return models.Settings{}, fmt.Errorf("%w: %w", ErrSettingsSaveFailed, err)
	}
	return saved, nil
}

// SaveBlocks replaces only the block list and keeps the rest of the settings.
func (service *SettingsService) SaveBlocks(blocks []models.TimeframeBlock) ([]models.TimeframeBlock, error) {
	settings, err := service.Load()
	if err != nil {
		return nil, err
	}
	settings.Blocks = blocks
	saved, err := service.Save(settings)
	if err != nil {
		return nil, err
	}
	return saved.Blocks, nil
}
