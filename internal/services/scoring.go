package services

import (
	"math"

	"github.com/terraincognita07/clarity/internal/models"
)

// The scoring functions are pure and never fail: every input is clamped,
// and NaN collapses to 0 instead of propagating.

func NormalizeCount(value float64, cap float64) float64 {
	if cap <= 0 || math.IsNaN(cap) {
		return 0
	}
	if value < 0 {
		value = 0
	}
	return clamp01(value / cap)
}

// NormalizeScore maps the 1..10 scale onto [0,1].
func NormalizeScore(value float64) float64 {
	if math.IsNaN(value) || value < models.MinScore {
		value = models.MinScore
	}
	if value > models.MaxScore {
		value = models.MaxScore
	}
	return (value - models.MinScore) / (models.MaxScore - models.MinScore)
}

func NormalizeExercise(minutes float64, targetMinutes float64) float64 {
	if targetMinutes <= 0 || math.IsNaN(targetMinutes) {
		return 0
	}
	return clamp01(minutes / targetMinutes)
}

// ComputeBlockScore is 1 minus the weighted symptom burden of one entry.
func ComputeBlockScore(entry models.BlockEntry, weights models.Weights, caps models.Caps) float64 {
	burden := weights.Rumination*NormalizeCount(float64(entry.Rumination), float64(caps.Rumination)) +
		weights.Compulsion*NormalizeCount(float64(entry.Compulsion), float64(caps.Compulsion)) +
		weights.Avoidance*NormalizeCount(float64(entry.Avoidance), float64(caps.Avoidance)) +
		weights.Anxiety*NormalizeScore(float64(entry.AnxietyScore)) +
		weights.Distress*NormalizeScore(float64(entry.DistressScore))
	return clamp01(1 - burden)
}

// ComputeDayScore averages the block scores and adds the sleep and
// exercise bonuses. Without block scores the day scores 0.
func ComputeDayScore(blockScores []float64, meta models.DailyMeta, weights models.Weights, goals models.Goals) float64 {
	if len(blockScores) == 0 {
		return 0
	}

	sum := 0.0
	for _, score := range blockScores {
		sum += score
	}
	mean := sum / float64(len(blockScores))

	bonus := weights.Sleep*NormalizeScore(float64(meta.SleepScore)) +
		weights.Exercise*NormalizeExercise(float64(meta.ExerciseMinutes), float64(goals.ExerciseMinutes))
	return clamp01(mean + bonus)
}

// RecomputeDayScore scores one day from its entries and meta.
func RecomputeDayScore(entries []models.BlockEntry, meta models.DailyMeta, settings models.Settings) float64 {
	blockScores := make([]float64, 0, len(entries))
	for _, entry := range entries {
		blockScores = append(blockScores, ComputeBlockScore(entry, settings.Weights, settings.Caps))
	}
	return ComputeDayScore(blockScores, meta, settings.Weights, settings.Goals)
}

func clamp01(value float64) float64 {
	if math.IsNaN(value) || value <= 0 {
		return 0
	}
	if value >= 1 {
		return 1
	}
	return value
}
