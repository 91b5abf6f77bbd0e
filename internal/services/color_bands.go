package services

import "github.com/terraincognita07/clarity/internal/models"

type ColorBand string

const (
	BandHigh   ColorBand = "high"
	BandMedium ColorBand = "medium"
	BandLow    ColorBand = "low"
	BandNone   ColorBand = "none"
)

func ClassifyScore(score float64, thresholds models.Thresholds) ColorBand {
	switch {
	case score >= thresholds.Green:
		return BandHigh
	case score >= thresholds.Yellow:
		return BandMedium
	default:
		return BandLow
	}
}

// ClassifyCount inverts the ratio because fewer occurrences are better.
// A zero count is always high.
func ClassifyCount(count int, cap int, thresholds models.Thresholds) ColorBand {
	if count <= 0 {
		return BandHigh
	}
	ratio := NormalizeCount(float64(count), float64(cap))
	return ClassifyScore(1-ratio, thresholds)
}

func ClassifyScores(scores []float64, thresholds models.Thresholds) []ColorBand {
	bands := make([]ColorBand, len(scores))
	for index, score := range scores {
		bands[index] = ClassifyScore(score, thresholds)
	}
	return bands
}

func ClassifyOptionalScore(score *float64, thresholds models.Thresholds) ColorBand {
	if score == nil {
		return BandNone
	}
	return ClassifyScore(*score, thresholds)
}
