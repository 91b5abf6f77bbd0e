package db

import (
	"errors"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/terraincognita07/clarity/internal/models"
)

type fakeClock struct {
	current time.Time
}

func (clock *fakeClock) Now() time.Time {
	return clock.current
}

func (clock *fakeClock) Advance(step time.Duration) {
	clock.current = clock.current.Add(step)
}

func newFakeClock() *fakeClock {
	return &fakeClock{current: time.Date(2025, time.January, 10, 8, 0, 0, 0, time.UTC)}
}

func openTestStore(t *testing.T, options ...Option) *Store {
	t.Helper()

	store, err := Open(MemoryPath, options...)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func openSeededTestStore(t *testing.T, options ...Option) *Store {
	t.Helper()

	store := openTestStore(t, options...)
	if _, err := store.SeedIfNeeded(); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	return store
}

func assertValidationField(t *testing.T, err error, field string) {
	t.Helper()

	var validationErr *models.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected validation error on %s, got %v", field, err)
	}
	if validationErr.Field != field {
		t.Fatalf("expected validation field %q, got %q (%v)", field, validationErr.Field, err)
	}
}

func TestUpsertEntryIsIdempotentAndKeepsCreatedAt(t *testing.T) {
	clock := newFakeClock()
	store := openTestStore(t, WithClock(clock.Now))

	first, err := store.UpsertEntry(models.BlockEntry{Date: "2025-01-10", BlockID: "morning", Rumination: 2})
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if first.ID != "2025-01-10:morning" || first.AnxietyScore != models.DefaultScore || first.DistressScore != models.DefaultScore {
		t.Fatalf("expected derived id and default scores, got %+v", first)
	}

	clock.Advance(time.Hour)
	second, err := store.UpsertEntry(models.BlockEntry{Date: "2025-01-10", BlockID: "morning", Rumination: 4, Note: "again"})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	entries, err := store.GetEntriesForDate("2025-01-10")
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one row per date and block, got %d", len(entries))
	}
	if second.Rumination != 4 || second.Note != "again" {
		t.Fatalf("expected updated values, got %+v", second)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Fatalf("expected created_at to stay %v, got %v", first.CreatedAt, second.CreatedAt)
	}
	if !second.UpdatedAt.After(first.UpdatedAt) {
		t.Fatalf("expected updated_at to advance past %v, got %v", first.UpdatedAt, second.UpdatedAt)
	}
}

func TestUpsertEntryRejectsInvalidInput(t *testing.T) {
	store := openTestStore(t)

	tests := []struct {
		name  string
		entry models.BlockEntry
		field string
	}{
		{name: "impossible date", entry: models.BlockEntry{Date: "2025-04-31", BlockID: "morning"}, field: "date"},
		{name: "malformed date", entry: models.BlockEntry{Date: "2025/01/10", BlockID: "morning"}, field: "date"},
		{name: "missing block", entry: models.BlockEntry{Date: "2025-01-10"}, field: "block_id"},
		{name: "negative counter", entry: models.BlockEntry{Date: "2025-01-10", BlockID: "morning", Compulsion: -1}, field: "compulsion"},
		{name: "score above range", entry: models.BlockEntry{Date: "2025-01-10", BlockID: "morning", DistressScore: 11}, field: "distress_score"},
		{name: "mismatched id", entry: models.BlockEntry{ID: "other", Date: "2025-01-10", BlockID: "morning"}, field: "id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.UpsertEntry(tt.entry)
			if !errors.Is(err, models.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			assertValidationField(t, err, tt.field)
		})
	}
}

func TestCreateEmptyDayIsIdempotent(t *testing.T) {
	store := openSeededTestStore(t)

	created, err := store.CreateEmptyDay("2025-01-10")
	if err != nil {
		t.Fatalf("first create empty day: %v", err)
	}
	if len(created) != len(models.DefaultBlocks()) {
		t.Fatalf("expected %d created entries, got %d", len(models.DefaultBlocks()), len(created))
	}

	if _, err := store.UpsertEntry(models.BlockEntry{Date: "2025-01-10", BlockID: "morning", Avoidance: 3}); err != nil {
		t.Fatalf("log entry: %v", err)
	}

	createdAgain, err := store.CreateEmptyDay("2025-01-10")
	if err != nil {
		t.Fatalf("second create empty day: %v", err)
	}
	if len(createdAgain) != 0 {
		t.Fatalf("expected no new entries on second call, got %d", len(createdAgain))
	}

	entries, err := store.GetEntriesForDate("2025-01-10")
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(entries) != len(models.DefaultBlocks()) {
		t.Fatalf("expected %d entries, got %d", len(models.DefaultBlocks()), len(entries))
	}
	entry, found, err := store.GetEntry("2025-01-10", "morning")
	if err != nil || !found {
		t.Fatalf("load morning entry: found=%v err=%v", found, err)
	}
	if entry.Avoidance != 3 {
		t.Fatalf("expected logged avoidance to survive, got %d", entry.Avoidance)
	}
}

func TestCreateEmptyDaySkipsInactiveBlocks(t *testing.T) {
	store := openTestStore(t)
	blocks := []models.TimeframeBlock{
		{ID: "on", Label: "On", StartTime: "06:00", EndTime: "12:00", DisplayOrder: 0, Active: true},
		{ID: "off", Label: "Off", StartTime: "12:00", EndTime: "18:00", DisplayOrder: 1, Active: false},
	}
	if _, err := store.ReplaceBlocks(blocks); err != nil {
		t.Fatalf("replace blocks: %v", err)
	}

	created, err := store.CreateEmptyDay("2025-01-10")
	if err != nil {
		t.Fatalf("create empty day: %v", err)
	}
	if len(created) != 1 || created[0].BlockID != "on" {
		t.Fatalf("expected only the active block, got %+v", created)
	}
}

func TestReplaceBlocksRemovesBlocksMissingFromList(t *testing.T) {
	store := openSeededTestStore(t)

	blocks, err := store.ReplaceBlocks([]models.TimeframeBlock{
		{ID: "morning", Label: "Early", StartTime: "05:00", EndTime: "12:00", DisplayOrder: 0, Active: true},
		{Label: "Late", StartTime: "12:00", EndTime: "23:00", DisplayOrder: 1, Active: true},
		{ID: "night", Label: "Night", StartTime: "23:00", EndTime: "23:59", DisplayOrder: 2, Active: false},
	})
	if err != nil {
		t.Fatalf("replace blocks: %v", err)
	}
	if blocks[1].ID == "" {
		t.Fatal("expected generated id for new block")
	}

	stored, err := store.GetBlocks()
	if err != nil {
		t.Fatalf("list blocks: %v", err)
	}
	if len(stored) != 3 || stored[0].Label != "Early" || stored[2].Active {
		t.Fatalf("unexpected stored blocks: %+v", stored)
	}

	if _, err := store.ReplaceBlocks([]models.TimeframeBlock{
		{ID: "morning", Label: "All day", StartTime: "00:00", EndTime: "23:59", DisplayOrder: 0, Active: true},
	}); err != nil {
		t.Fatalf("shrink blocks: %v", err)
	}
	stored, err = store.GetBlocks()
	if err != nil {
		t.Fatalf("list blocks: %v", err)
	}
	if len(stored) != 1 || stored[0].ID != "morning" {
		t.Fatalf("expected exactly the morning block, got %+v", stored)
	}
}

func TestReplaceBlocksRejectsInvalidSetWithoutWriting(t *testing.T) {
	store := openSeededTestStore(t)

	_, err := store.ReplaceBlocks([]models.TimeframeBlock{
		{ID: "a", Label: "A", StartTime: "06:00", EndTime: "10:00", DisplayOrder: 0, Active: true},
		{ID: "b", Label: "B", StartTime: "10:00", EndTime: "09:00", DisplayOrder: 1, Active: true},
	})
	assertValidationField(t, err, "blocks[1].end_time")

	stored, err := store.GetBlocks()
	if err != nil {
		t.Fatalf("list blocks: %v", err)
	}
	if len(stored) != len(models.DefaultBlocks()) {
		t.Fatalf("expected default blocks untouched, got %d", len(stored))
	}
}

func TestGetEntriesRangeOrdersNewestFirst(t *testing.T) {
	store := openTestStore(t)
	for _, entry := range []models.BlockEntry{
		{Date: "2025-01-08", BlockID: "morning"},
		{Date: "2025-01-10", BlockID: "night"},
		{Date: "2025-01-10", BlockID: "evening"},
		{Date: "2025-01-09", BlockID: "morning"},
		{Date: "2025-01-12", BlockID: "morning"},
	} {
		if _, err := store.UpsertEntry(entry); err != nil {
			t.Fatalf("upsert %s: %v", entry.Date, err)
		}
	}

	entries, err := store.GetEntriesRange("2025-01-08", "2025-01-10")
	if err != nil {
		t.Fatalf("list range: %v", err)
	}
	got := make([]string, 0, len(entries))
	for _, entry := range entries {
		got = append(got, entry.ID)
	}
	want := []string{"2025-01-10:evening", "2025-01-10:night", "2025-01-09:morning", "2025-01-08:morning"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected order: got %v want %v", got, want)
	}

	_, err = store.GetEntriesRange("2025-01-10", "2025-01-08")
	if !errors.Is(err, models.ErrValidation) {
		t.Fatalf("expected reversed range to be rejected, got %v", err)
	}
}

func TestGetEntriesSummary(t *testing.T) {
	store := openTestStore(t)
	for _, entry := range []models.BlockEntry{
		{Date: "2025-01-08", BlockID: "morning", Rumination: 9},
		{Date: "2025-01-09", BlockID: "morning", Rumination: 1},
		{Date: "2025-01-10", BlockID: "morning", Rumination: 2},
		{Date: "2025-01-10", BlockID: "evening", Rumination: 3, Compulsion: 7},
	} {
		if _, err := store.UpsertEntry(entry); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	summaries, err := store.GetEntriesSummary(models.MetricRumination, 2)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	want := []EntrySummary{
		{Date: "2025-01-10", Total: 5, Blocks: map[string]int{"morning": 2, "evening": 3}},
		{Date: "2025-01-09", Total: 1, Blocks: map[string]int{"morning": 1}},
	}
	if !reflect.DeepEqual(summaries, want) {
		t.Fatalf("unexpected summary: got %+v want %+v", summaries, want)
	}

	compulsion, err := store.GetEntriesSummary(models.MetricCompulsion, 1)
	if err != nil {
		t.Fatalf("compulsion summary: %v", err)
	}
	if len(compulsion) != 1 || compulsion[0].Total != 7 {
		t.Fatalf("unexpected compulsion summary: %+v", compulsion)
	}

	_, err = store.GetEntriesSummary(models.Metric("sleep"), 2)
	assertValidationField(t, err, "metric")
	_, err = store.GetEntriesSummary(models.MetricRumination, 0)
	assertValidationField(t, err, "limit")
}

func TestGetEntriesSummaryEmptyStore(t *testing.T) {
	store := openTestStore(t)
	summaries, err := store.GetEntriesSummary(models.MetricAvoidance, 7)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summaries == nil || len(summaries) != 0 {
		t.Fatalf("expected empty non-nil summary, got %#v", summaries)
	}
}

func TestSeedIfNeededRunsOnce(t *testing.T) {
	store := openTestStore(t)

	seeded, err := store.SeedIfNeeded()
	if err != nil || !seeded {
		t.Fatalf("expected first seed to write, seeded=%v err=%v", seeded, err)
	}

	settings, found, err := store.GetSettings()
	if err != nil || !found {
		t.Fatalf("load settings: found=%v err=%v", found, err)
	}
	if !reflect.DeepEqual(settings, models.DefaultSettings()) {
		t.Fatalf("expected default settings, got %+v", settings)
	}

	settings.Thresholds = models.Thresholds{Green: 0.9, Yellow: 0.5}
	if err := store.UpdateSettings(settings); err != nil {
		t.Fatalf("update settings: %v", err)
	}

	seeded, err = store.SeedIfNeeded()
	if err != nil || seeded {
		t.Fatalf("expected second seed to be a no-op, seeded=%v err=%v", seeded, err)
	}
	reloaded, _, err := store.GetSettings()
	if err != nil {
		t.Fatalf("reload settings: %v", err)
	}
	if reloaded.Thresholds.Green != 0.9 {
		t.Fatalf("expected seeding to keep user settings, got %+v", reloaded.Thresholds)
	}

	blocks, err := store.GetBlocks()
	if err != nil {
		t.Fatalf("list blocks: %v", err)
	}
	if len(blocks) != len(models.DefaultBlocks()) {
		t.Fatalf("expected default blocks, got %d", len(blocks))
	}
}

func TestGetSettingsBeforeSeed(t *testing.T) {
	store := openTestStore(t)
	_, found, err := store.GetSettings()
	if err != nil {
		t.Fatalf("load settings: %v", err)
	}
	if found {
		t.Fatal("expected no settings before seeding")
	}
}

func TestApplySettingsReconcilesBlocks(t *testing.T) {
	store := openSeededTestStore(t)

	settings := models.DefaultSettings()
	settings.Blocks = []models.TimeframeBlock{
		{Label: "Day", StartTime: "06:00", EndTime: "18:00", DisplayOrder: 0, Active: true},
		{Label: "Night", StartTime: "18:00", EndTime: "23:59", DisplayOrder: 1, Active: true},
	}
	saved, err := store.ApplySettings(settings)
	if err != nil {
		t.Fatalf("apply settings: %v", err)
	}

	blocks, err := store.GetBlocks()
	if err != nil {
		t.Fatalf("list blocks: %v", err)
	}
	if len(blocks) != 2 || blocks[0].ID != saved.Blocks[0].ID || blocks[1].ID != saved.Blocks[1].ID {
		t.Fatalf("expected block table to match settings, blocks=%+v saved=%+v", blocks, saved.Blocks)
	}

	reloaded, _, err := store.GetSettings()
	if err != nil {
		t.Fatalf("reload settings: %v", err)
	}
	if !reflect.DeepEqual(reloaded.Blocks, saved.Blocks) {
		t.Fatalf("expected stored blob to carry generated ids, got %+v", reloaded.Blocks)
	}
}

func TestUpdateSettingsRejectsInvalidWeights(t *testing.T) {
	store := openSeededTestStore(t)

	settings := models.DefaultSettings()
	settings.Weights.Rumination = 0.45
	settings.Weights.Distress = 0.40
	assertValidationField(t, store.UpdateSettings(settings), "weights")

	settings = models.DefaultSettings()
	settings.Thresholds = models.Thresholds{Green: 0.2, Yellow: 0.5}
	assertValidationField(t, store.UpdateSettings(settings), "thresholds.green")
}

func TestMigrateDefaultsBackfillsZeroScoresOnce(t *testing.T) {
	store := openTestStore(t)
	if err := store.database.Exec(
		`INSERT INTO block_entries (id, date, block_id, anxiety_score, distress_score) VALUES (?, ?, ?, 0, 5)`,
		"2025-01-10:morning", "2025-01-10", "morning",
	).Error; err != nil {
		t.Fatalf("insert legacy entry: %v", err)
	}
	if err := store.database.Exec(
		`INSERT INTO daily_meta (date, sleep_score) VALUES (?, 0)`,
		"2025-01-10",
	).Error; err != nil {
		t.Fatalf("insert legacy meta: %v", err)
	}

	if updated := store.MigrateDefaults(); updated != 2 {
		t.Fatalf("expected 2 backfilled rows, got %d", updated)
	}
	if updated := store.MigrateDefaults(); updated != 0 {
		t.Fatalf("expected second run to change nothing, got %d", updated)
	}

	entry, found, err := store.GetEntry("2025-01-10", "morning")
	if err != nil || !found {
		t.Fatalf("load entry: found=%v err=%v", found, err)
	}
	if entry.AnxietyScore != models.DefaultScore {
		t.Fatalf("expected anxiety backfilled to %d, got %d", models.DefaultScore, entry.AnxietyScore)
	}
	meta, found, err := store.GetDailyMeta("2025-01-10")
	if err != nil || !found {
		t.Fatalf("load meta: found=%v err=%v", found, err)
	}
	if meta.SleepScore != models.DefaultScore {
		t.Fatalf("expected sleep backfilled to %d, got %d", models.DefaultScore, meta.SleepScore)
	}
}

func TestUpsertDailyMetaReplacesWhilePatchMerges(t *testing.T) {
	store := openTestStore(t)
	score := 0.7

	if _, err := store.UpsertDailyMeta(models.DailyMeta{
		Date: "2025-01-10", SleepScore: 8, ExerciseMinutes: 30, Notes: "run", ClarityScore: &score, Tracked: true,
	}); err != nil {
		t.Fatalf("upsert meta: %v", err)
	}

	exercise := 45
	patched, err := store.PatchDailyMeta("2025-01-10", models.DailyMetaPatch{ExerciseMinutes: &exercise})
	if err != nil {
		t.Fatalf("patch meta: %v", err)
	}
	if patched.SleepScore != 8 || patched.ExerciseMinutes != 45 || patched.Notes != "run" || !patched.Tracked {
		t.Fatalf("expected patch to merge, got %+v", patched)
	}
	if patched.ClarityScore == nil || *patched.ClarityScore != 0.7 {
		t.Fatalf("expected score untouched by patch, got %v", patched.ClarityScore)
	}

	replaced, err := store.UpsertDailyMeta(models.DailyMeta{Date: "2025-01-10", SleepScore: 3})
	if err != nil {
		t.Fatalf("replace meta: %v", err)
	}
	if replaced.ExerciseMinutes != 0 || replaced.Notes != "" || replaced.ClarityScore != nil || replaced.Tracked {
		t.Fatalf("expected upsert to replace every field, got %+v", replaced)
	}
}

func TestUpsertDailyMetaWritesDefaultSleepWhenOmitted(t *testing.T) {
	store := openTestStore(t)

	stored, err := store.UpsertDailyMeta(models.DailyMeta{Date: "2025-01-10", ExerciseMinutes: 20})
	if err != nil {
		t.Fatalf("upsert meta without sleep: %v", err)
	}
	if stored.SleepScore != models.DefaultScore || stored.ExerciseMinutes != 20 {
		t.Fatalf("expected sleep %d and exercise 20, got %+v", models.DefaultScore, stored)
	}

	_, err = store.UpsertDailyMeta(models.DailyMeta{Date: "2025-01-10", SleepScore: -1})
	assertValidationField(t, err, "sleep_score")
}

func TestPatchDailyMetaStartsFromDefaults(t *testing.T) {
	store := openTestStore(t)

	notes := "first"
	meta, err := store.PatchDailyMeta("2025-01-11", models.DailyMetaPatch{Notes: &notes})
	if err != nil {
		t.Fatalf("patch meta: %v", err)
	}
	if meta.SleepScore != models.DefaultScore || meta.Notes != "first" || meta.Tracked {
		t.Fatalf("expected default row plus patch, got %+v", meta)
	}

	sleep := 12
	_, err = store.PatchDailyMeta("2025-01-11", models.DailyMetaPatch{SleepScore: &sleep})
	assertValidationField(t, err, "sleep_score")
}

func TestSetDayScore(t *testing.T) {
	store := openTestStore(t)
	score := 0.42

	meta, err := store.SetDayScore("2025-01-10", &score)
	if err != nil {
		t.Fatalf("set score: %v", err)
	}
	if meta.ClarityScore == nil || *meta.ClarityScore != 0.42 {
		t.Fatalf("expected cached score, got %v", meta.ClarityScore)
	}

	meta, err = store.SetDayScore("2025-01-10", nil)
	if err != nil {
		t.Fatalf("clear score: %v", err)
	}
	if meta.ClarityScore != nil {
		t.Fatalf("expected cleared score, got %v", *meta.ClarityScore)
	}

	outOfRange := 1.5
	_, err = store.SetDayScore("2025-01-10", &outOfRange)
	assertValidationField(t, err, "clarity_score")
}

func TestGetDailyMetaRangeOrdersNewestFirst(t *testing.T) {
	store := openTestStore(t)
	for _, date := range []string{"2025-01-09", "2025-01-11", "2025-01-10"} {
		if _, err := store.UpsertDailyMeta(models.DefaultDailyMeta(date)); err != nil {
			t.Fatalf("upsert %s: %v", date, err)
		}
	}

	metas, err := store.GetDailyMetaRange("2025-01-09", "2025-01-10")
	if err != nil {
		t.Fatalf("list range: %v", err)
	}
	if len(metas) != 2 || metas[0].Date != "2025-01-10" || metas[1].Date != "2025-01-09" {
		t.Fatalf("unexpected range: %+v", metas)
	}
}

func TestReadsDistinguishNotFoundFromEmpty(t *testing.T) {
	store := openTestStore(t)

	entries, err := store.GetEntriesForDate("2025-01-10")
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if entries == nil || len(entries) != 0 {
		t.Fatalf("expected empty non-nil entries, got %#v", entries)
	}

	if _, found, err := store.GetEntry("2025-01-10", "morning"); err != nil || found {
		t.Fatalf("expected missing entry, found=%v err=%v", found, err)
	}
	if _, found, err := store.GetDailyMeta("2025-01-10"); err != nil || found {
		t.Fatalf("expected missing meta, found=%v err=%v", found, err)
	}

	_, _, err = store.GetDailyMeta("2025-02-30")
	assertValidationField(t, err, "date")
}

func TestClearAllKeepsBlocksAndSettings(t *testing.T) {
	store := openSeededTestStore(t)
	if _, err := store.CreateEmptyDay("2025-01-10"); err != nil {
		t.Fatalf("create empty day: %v", err)
	}
	if _, err := store.UpsertDailyMeta(models.DefaultDailyMeta("2025-01-10")); err != nil {
		t.Fatalf("upsert meta: %v", err)
	}

	if err := store.ClearAll(); err != nil {
		t.Fatalf("clear all: %v", err)
	}

	entries, err := store.GetEntriesRange("2025-01-01", "2025-12-31")
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected entries cleared, got %d", len(entries))
	}
	if _, found, _ := store.GetDailyMeta("2025-01-10"); found {
		t.Fatal("expected meta cleared")
	}
	if _, found, _ := store.GetSettings(); !found {
		t.Fatal("expected settings to survive")
	}
}

func TestStoresAreIsolated(t *testing.T) {
	first := openTestStore(t)
	second := openTestStore(t)

	if _, err := first.UpsertEntry(models.BlockEntry{Date: "2025-01-10", BlockID: "morning", Rumination: 1}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	entries, err := second.GetEntriesForDate("2025-01-10")
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected isolated stores, second saw %d entries", len(entries))
	}
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	databasePath := filepath.Join(t.TempDir(), "nested", "clarity.db")

	store, err := Open(databasePath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if _, err := store.UpsertEntry(models.BlockEntry{Date: "2025-01-10", BlockID: "morning", Compulsion: 2}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}
	if err := store.Close(); !errors.Is(err, ErrStoreClosed) {
		t.Fatalf("expected ErrStoreClosed on second close, got %v", err)
	}

	reopened, err := Open(databasePath)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	t.Cleanup(func() {
		_ = reopened.Close()
	})
	entry, found, err := reopened.GetEntry("2025-01-10", "morning")
	if err != nil || !found {
		t.Fatalf("load entry after reopen: found=%v err=%v", found, err)
	}
	if entry.Compulsion != 2 {
		t.Fatalf("expected compulsion 2 after reopen, got %d", entry.Compulsion)
	}
	if reopened.Path() != databasePath {
		t.Fatalf("expected path %q, got %q", databasePath, reopened.Path())
	}
}

func TestConcurrentCloseReportsClosedOnce(t *testing.T) {
	store, err := Open(MemoryPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}

	const closers = 8
	results := make(chan error, closers)
	var wg sync.WaitGroup
	for i := 0; i < closers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- store.Close()
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case !errors.Is(err, ErrStoreClosed):
			t.Fatalf("unexpected close error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly one successful close, got %d", succeeded)
	}
}

func TestReplaceBlocksKeepsSettingsBlobInStep(t *testing.T) {
	store := openSeededTestStore(t)

	blocks, err := store.ReplaceBlocks([]models.TimeframeBlock{
		{ID: "morning", Label: "All day", StartTime: "00:00", EndTime: "23:59", DisplayOrder: 0, Active: true},
	})
	if err != nil {
		t.Fatalf("replace blocks: %v", err)
	}

	settings, _, err := store.GetSettings()
	if err != nil {
		t.Fatalf("load settings: %v", err)
	}
	if !reflect.DeepEqual(settings.Blocks, blocks) {
		t.Fatalf("expected settings blob blocks %+v, got %+v", blocks, settings.Blocks)
	}
}

func TestUpdateSettingsKeepsBlockTableInStep(t *testing.T) {
	store := openSeededTestStore(t)

	settings := models.DefaultSettings()
	settings.Blocks = settings.Blocks[:2]
	if err := store.UpdateSettings(settings); err != nil {
		t.Fatalf("update settings: %v", err)
	}

	blocks, err := store.GetBlocks()
	if err != nil {
		t.Fatalf("list blocks: %v", err)
	}
	if !reflect.DeepEqual(blocks, settings.Blocks) {
		t.Fatalf("expected block table %+v, got %+v", settings.Blocks, blocks)
	}
}
