package models

import "time"

const (
	MinScore     = 1
	MaxScore     = 10
	DefaultScore = 5

	MaxNoteLength  = 2000
	MaxLabelLength = 80
)

type BlockEntry struct {
	ID            string    `gorm:"primaryKey" json:"id"`
	Date          string    `gorm:"not null;uniqueIndex:uidx_block_entries_date_block;index:idx_block_entries_date" json:"date"`
	BlockID       string    `gorm:"not null;uniqueIndex:uidx_block_entries_date_block" json:"block_id"`
	Rumination    int       `gorm:"not null" json:"rumination"`
	Compulsion    int       `gorm:"not null" json:"compulsion"`
	Avoidance     int       `gorm:"not null" json:"avoidance"`
	AnxietyScore  int       `gorm:"not null" json:"anxiety_score"`
	DistressScore int       `gorm:"not null" json:"distress_score"`
	Note          string    `json:"note"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (BlockEntry) TableName() string {
	return "block_entries"
}

// EntryID is the deterministic composite key of an entry.
func EntryID(date string, blockID string) string {
	return date + ":" + blockID
}

func NewEmptyEntry(date string, blockID string) BlockEntry {
	return BlockEntry{
		ID:            EntryID(date, blockID),
		Date:          date,
		BlockID:       blockID,
		AnxietyScore:  DefaultScore,
		DistressScore: DefaultScore,
	}
}

// ApplyDefaults fills the derived id and replaces absent (zero) scores
// with DefaultScore. Counters already default to zero.
func (entry *BlockEntry) ApplyDefaults() {
	if entry.ID == "" {
		entry.ID = EntryID(entry.Date, entry.BlockID)
	}
	if entry.AnxietyScore == 0 {
		entry.AnxietyScore = DefaultScore
	}
	if entry.DistressScore == 0 {
		entry.DistressScore = DefaultScore
	}
}

func (entry BlockEntry) Counter(metric Metric) int {
	switch metric {
	case MetricRumination:
		return entry.Rumination
	case MetricCompulsion:
		return entry.Compulsion
	case MetricAvoidance:
		return entry.Avoidance
	default:
		return 0
	}
}

func (entry BlockEntry) Validate() error {
	if err := ValidateDate("date", entry.Date); err != nil {
		return err
	}
	if entry.BlockID == "" {
		return invalidField("block_id", "is required")
	}
	if entry.ID != "" && entry.ID != EntryID(entry.Date, entry.BlockID) {
		return invalidField("id", "%q does not match date and block", entry.ID)
	}
	counters := []struct {
		field string
		value int
	}{
		{"rumination", entry.Rumination},
		{"compulsion", entry.Compulsion},
		{"avoidance", entry.Avoidance},
	}
	for _, counter := range counters {
		if counter.value < 0 {
			return invalidField(counter.field, "must not be negative, got %d", counter.value)
		}
	}
	if err := validateScore("anxiety_score", entry.AnxietyScore); err != nil {
		return err
	}
	if err := validateScore("distress_score", entry.DistressScore); err != nil {
		return err
	}
	if len(entry.Note) > MaxNoteLength {
		return invalidField("note", "must be at most %d characters", MaxNoteLength)
	}
	return nil
}

func validateScore(field string, value int) error {
	if value < MinScore || value > MaxScore {
		return invalidField(field, "must be between %d and %d, got %d", MinScore, MaxScore, value)
	}
	return nil
}
