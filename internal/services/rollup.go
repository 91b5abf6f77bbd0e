package services

import (
	"math"
	"sort"

	"github.com/terraincognita07/clarity/internal/models"
)

const SevenDayWindow = 7

type BlockTotals struct {
	Rumination int `json:"rumination"`
	Compulsion int `json:"compulsion"`
	Avoidance  int `json:"avoidance"`
}

func (totals BlockTotals) Of(metric models.Metric) int {
	switch metric {
	case models.MetricRumination:
		return totals.Rumination
	case models.MetricCompulsion:
		return totals.Compulsion
	case models.MetricAvoidance:
		return totals.Avoidance
	default:
		return 0
	}
}

func (totals *BlockTotals) add(entry models.BlockEntry) {
	totals.Rumination += entry.Counter(models.MetricRumination)
	totals.Compulsion += entry.Counter(models.MetricCompulsion)
	totals.Avoidance += entry.Counter(models.MetricAvoidance)
}

func (totals BlockTotals) Activity() int {
	return totals.Rumination + totals.Compulsion + totals.Avoidance
}

// DayAggregate.Score is nil when the day has neither a persisted score
// nor meta to derive one from.
type DayAggregate struct {
	Date         string                 `json:"date"`
	Totals       BlockTotals            `json:"totals"`
	Blocks       map[string]BlockTotals `json:"blocks"`
	Score        *float64               `json:"score"`
	ScoreDerived bool                   `json:"score_derived"`
	Band         ColorBand              `json:"band"`
	Meta         *models.DailyMeta      `json:"meta,omitempty"`
}

type KPIs struct {
	Today           *DayAggregate `json:"today"`
	TodayBand       ColorBand     `json:"today_band"`
	SevenDayAverage *float64      `json:"seven_day_average"`
	SevenDayBand    ColorBand     `json:"seven_day_band"`
	Streak          int           `json:"streak"`
}

type SparklinePoint struct {
	Date  string  `json:"date"`
	Score float64 `json:"score"`
}

// BuildDayAggregates groups entries by date, most recent first. Days with
// meta but no persisted score get a score derived from their entries.
func BuildDayAggregates(entries []models.BlockEntry, metas []models.DailyMeta, settings models.Settings) []DayAggregate {
	entriesByDate := make(map[string][]models.BlockEntry)
	for _, entry := range entries {
		entriesByDate[entry.Date] = append(entriesByDate[entry.Date], entry)
	}
	metaByDate := make(map[string]models.DailyMeta, len(metas))
	for _, meta := range metas {
		metaByDate[meta.Date] = meta
	}

	aggregates := make([]DayAggregate, 0, len(entriesByDate))
	for date, dayEntries := range entriesByDate {
		aggregate := DayAggregate{
			Date:   date,
			Blocks: make(map[string]BlockTotals, len(dayEntries)),
		}
		for _, entry := range dayEntries {
			block := aggregate.Blocks[entry.BlockID]
			block.add(entry)
			aggregate.Blocks[entry.BlockID] = block
			aggregate.Totals.add(entry)
		}

		if meta, ok := metaByDate[date]; ok {
			metaCopy := meta
			aggregate.Meta = &metaCopy
			if meta.ClarityScore != nil {
				score := *meta.ClarityScore
				aggregate.Score = &score
			} else {
				score := RecomputeDayScore(dayEntries, meta, settings)
				aggregate.Score = &score
				aggregate.ScoreDerived = true
			}
		}
		aggregate.Band = ClassifyOptionalScore(aggregate.Score, settings.Thresholds)
		aggregates = append(aggregates, aggregate)
	}

	sort.Slice(aggregates, func(i, j int) bool {
		return aggregates[i].Date > aggregates[j].Date
	})
	return aggregates
}

func ComputeKPIs(aggregates []DayAggregate, settings models.Settings) KPIs {
	kpis := KPIs{TodayBand: BandNone, SevenDayBand: BandNone}
	if len(aggregates) == 0 {
		return kpis
	}

	today := aggregates[0]
	kpis.Today = &today
	kpis.TodayBand = ClassifyOptionalScore(today.Score, settings.Thresholds)

	sum := 0.0
	scored := 0
	for _, aggregate := range firstAggregates(aggregates, SevenDayWindow) {
		if aggregate.Score == nil {
			continue
		}
		sum += *aggregate.Score
		scored++
	}
	if scored > 0 {
		average := sum / float64(scored)
		kpis.SevenDayAverage = &average
		kpis.SevenDayBand = ClassifyScore(average, settings.Thresholds)
	}

	for _, aggregate := range aggregates {
		if aggregate.Totals.Activity() <= 0 {
			break
		}
		kpis.Streak++
	}
	return kpis
}

// BuildSparkline returns the first span aggregates oldest first. Missing
// scores plot as 0.
func BuildSparkline(aggregates []DayAggregate, span int) []SparklinePoint {
	window := firstAggregates(aggregates, span)
	points := make([]SparklinePoint, len(window))
	for index, aggregate := range window {
		point := SparklinePoint{Date: aggregate.Date}
		if aggregate.Score != nil {
			point.Score = *aggregate.Score
		}
		points[len(window)-1-index] = point
	}
	return points
}

// BuildBlockAverages divides each block's metric sum by the number of days
// the block appears in, rounded to the nearest integer.
func BuildBlockAverages(aggregates []DayAggregate, metric models.Metric, span int) map[string]int {
	sums := make(map[string]int)
	days := make(map[string]int)
	for _, aggregate := range firstAggregates(aggregates, span) {
		for blockID, totals := range aggregate.Blocks {
			sums[blockID] += totals.Of(metric)
			days[blockID]++
		}
	}

	averages := make(map[string]int, len(sums))
	for blockID, sum := range sums {
		averages[blockID] = int(math.Round(float64(sum) / float64(days[blockID])))
	}
	return averages
}

func firstAggregates(aggregates []DayAggregate, span int) []DayAggregate {
	if span <= 0 {
		return nil
	}
	if span > len(aggregates) {
		span = len(aggregates)
	}
	return aggregates[:span]
}
