package services

import (
	"errors"
	"sort"

	"github.com/terraincognita07/clarity/internal/models"
)

var errStubStorage = errors.New("stub storage failure")

type storeStub struct {
	settings      *models.Settings
	entries       map[string]models.BlockEntry
	metas         map[string]models.DailyMeta
	seedCalls     int
	applyCalls    int
	upsertErr     error
	getSettingErr error
}

func newStoreStub() *storeStub {
	return &storeStub{
		entries: make(map[string]models.BlockEntry),
		metas:   make(map[string]models.DailyMeta),
	}
}

func newSeededStoreStub() *storeStub {
	stub := newStoreStub()
	settings := models.DefaultSettings()
	stub.settings = &settings
	return stub
}

func (stub *storeStub) GetSettings() (models.Settings, bool, error) {
	if stub.getSettingErr != nil {
		return models.Settings{}, false, stub.getSettingErr
	}
	if stub.settings == nil {
		return models.Settings{}, false, nil
	}
	return *stub.settings, true, nil
}

func (stub *storeStub) SeedIfNeeded() (bool, error) {
	stub.seedCalls++
	if stub.settings != nil {
		return false, nil
	}
	settings := models.DefaultSettings()
	stub.settings = &settings
	return true, nil
}

func (stub *storeStub) ApplySettings(settings models.Settings) (models.Settings, error) {
	stub.applyCalls++
	for index := range settings.Blocks {
		if settings.Blocks[index].ID == "" {
			settings.Blocks[index].ID = "generated"
		}
	}
	if err := settings.Validate(); err != nil {
		return models.Settings{}, err
	}
	stub.settings = &settings
	return settings, nil
}

func (stub *storeStub) GetEntriesForDate(date string) ([]models.BlockEntry, error) {
	entries := make([]models.BlockEntry, 0)
	for _, entry := range stub.entries {
		if entry.Date == date {
			entries = append(entries, entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].BlockID < entries[j].BlockID
	})
	return entries, nil
}

func (stub *storeStub) UpsertEntry(entry models.BlockEntry) (models.BlockEntry, error) {
	if stub.upsertErr != nil {
		return models.BlockEntry{}, stub.upsertErr
	}
	entry.ApplyDefaults()
	if err := entry.Validate(); err != nil {
		return models.BlockEntry{}, err
	}
	stub.entries[entry.ID] = entry
	return entry, nil
}

func (stub *storeStub) CreateEmptyDay(date string) ([]models.BlockEntry, error) {
	created := make([]models.BlockEntry, 0)
	for _, block := range models.ActiveBlocks(stub.settings.Blocks) {
		entry := models.NewEmptyEntry(date, block.ID)
		if _, exists := stub.entries[entry.ID]; exists {
			continue
		}
		stub.entries[entry.ID] = entry
		created = append(created, entry)
	}
	return created, nil
}

func (stub *storeStub) GetDailyMeta(date string) (models.DailyMeta, bool, error) {
	meta, ok := stub.metas[date]
	return meta, ok, nil
}

func (stub *storeStub) UpsertDailyMeta(meta models.DailyMeta) (models.DailyMeta, error) {
	meta.ApplyDefaults()
	return stub.putDailyMeta(meta)
}

func (stub *storeStub) putDailyMeta(meta models.DailyMeta) (models.DailyMeta, error) {
	if err := meta.Validate(); err != nil {
		return models.DailyMeta{}, err
	}
	stub.metas[meta.Date] = meta
	return meta, nil
}

func (stub *storeStub) PatchDailyMeta(date string, patch models.DailyMetaPatch) (models.DailyMeta, error) {
	meta, ok := stub.metas[date]
	if !ok {
		meta = models.DefaultDailyMeta(date)
	}
	return stub.putDailyMeta(patch.Apply(meta))
}

func (stub *storeStub) SetDayScore(date string, score *float64) (models.DailyMeta, error) {
	return stub.PatchDailyMeta(date, models.DailyMetaPatch{ClarityScoreSet: true, ClarityScore: score})
}

func (stub *storeStub) GetEntriesRange(start string, end string) ([]models.BlockEntry, error) {
	entries := make([]models.BlockEntry, 0)
	for _, entry := range stub.entries {
		if entry.Date >= start && entry.Date <= end {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

func (stub *storeStub) GetDailyMetaRange(start string, end string) ([]models.DailyMeta, error) {
	metas := make([]models.DailyMeta, 0)
	for _, meta := range stub.metas {
		if meta.Date >= start && meta.Date <= end {
			metas = append(metas, meta)
		}
	}
	return metas, nil
}
