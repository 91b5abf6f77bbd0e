package models

import (
	"math"
	"time"
)

type DailyMeta struct {
	Date            string    `gorm:"primaryKey" json:"date"`
	SleepScore      int       `gorm:"not null" json:"sleep_score"`
	ExerciseMinutes int       `gorm:"not null" json:"exercise_minutes"`
	Notes           string    `json:"notes"`
	ClarityScore    *float64  `json:"clarity_score"`
	Tracked         bool      `gorm:"not null" json:"tracked"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (DailyMeta) TableName() string {
	return "daily_meta"
}

// DefaultDailyMeta is the untracked record written when a day is
// auto-initialized.
func DefaultDailyMeta(date string) DailyMeta {
	return DailyMeta{
		Date:       date,
		SleepScore: DefaultScore,
	}
}

// DailyMetaPatch carries only the fields a caller wants to change.
// Nil pointers leave the stored value untouched; ClarityScoreSet is
// needed because a nil score is itself a meaningful value.
type DailyMetaPatch struct {
	SleepScore      *int     `json:"sleep_score,omitempty"`
	ExerciseMinutes *int     `json:"exercise_minutes,omitempty"`
	Notes           *string  `json:"notes,omitempty"`
	Tracked         *bool    `json:"tracked,omitempty"`
	ClarityScoreSet bool     `json:"clarity_score_set,omitempty"`
	ClarityScore    *float64 `json:"clarity_score,omitempty"`
}

func (patch DailyMetaPatch) Apply(meta DailyMeta) DailyMeta {
	if patch.SleepScore != nil {
		meta.SleepScore = *patch.SleepScore
	}
	if patch.ExerciseMinutes != nil {
		meta.ExerciseMinutes = *patch.ExerciseMinutes
	}
	if patch.Notes != nil {
		meta.Notes = *patch.Notes
	}
	if patch.Tracked != nil {
		meta.Tracked = *patch.Tracked
	}
	if patch.ClarityScoreSet {
		meta.ClarityScore = copyScore(patch.ClarityScore)
	}
	return meta
}

// ApplyDefaults replaces an absent (zero) sleep score with DefaultScore.
func (meta *DailyMeta) ApplyDefaults() {
	if meta.SleepScore == 0 {
		meta.SleepScore = DefaultScore
	}
}

func (meta DailyMeta) Validate() error {
	if err := ValidateDate("date", meta.Date); err != nil {
		return err
	}
	if err := validateScore("sleep_score", meta.SleepScore); err != nil {
		return err
	}
	if meta.ExerciseMinutes < 0 {
		return invalidField("exercise_minutes", "must not be negative, got %d", meta.ExerciseMinutes)
	}
	if len(meta.Notes) > MaxNoteLength {
		return invalidField("notes", "must be at most %d characters", MaxNoteLength)
	}
	if meta.ClarityScore != nil && !unitInterval(*meta.ClarityScore) {
		return invalidField("clarity_score", "must be within [0,1], got %v", *meta.ClarityScore)
	}
	return nil
}

func copyScore(score *float64) *float64 {
	if score == nil {
		return nil
	}
	value := *score
	return &value
}

// unitInterval is false for NaN as well as out-of-range values.
func unitInterval(value float64) bool {
	return value >= 0 && value <= 1 && !math.IsNaN(value)
}
