package services

import (
	"errors"
	"fmt"

	"github.com/terraincognita07/clarity/internal/models"
)

const DefaultSparklineSpan = 7

var ErrDashboardLoadFailed = errors.New("load dashboard failed")

type DashboardRepository interface {
	GetEntriesRange(start string, end string) ([]models.BlockEntry, error)
	GetDailyMetaRange(start string, end string) ([]models.DailyMeta, error)
}

type DashboardRequest struct {
	From   string
	To     string
	Span   int
	Metric models.Metric
}

type Dashboard struct {
	From          string           `json:"from"`
	To            string           `json:"to"`
	Metric        models.Metric    `json:"metric"`
	Days          []DayAggregate   `json:"days"`
	KPIs          KPIs             `json:"kpis"`
	Sparkline     []SparklinePoint `json:"sparkline"`
	BlockAverages map[string]int   `json:"block_averages"`

	// BlockBands colors each block average against the metric's cap.
	BlockBands map[string]ColorBand `json:"block_bands"`

	// SparklineBands is index-aligned with Sparkline.
	SparklineBands []ColorBand `json:"sparkline_bands"`
}

type DashboardService struct {
	days     DashboardRepository
	settings SettingsLoader
}

func NewDashboardService(days DashboardRepository, settings SettingsLoader) *DashboardService {
	return &DashboardService{
		days:     days,
		settings: settings,
	}
}

func (service *DashboardService) Build(request DashboardRequest) (Dashboard, error) {
	if err := models.ValidateDateRange(request.From, request.To); err != nil {
		return Dashboard{}, err
	}
	metric := request.Metric
	if metric == "" {
		metric = models.MetricRumination
	}
	if _, err := models.ParseMetric(string(metric)); err != nil {
		return Dashboard{}, err
	}
	span := request.Span
	if span <= 0 {
		span = DefaultSparklineSpan
	}

	settings, err := service.settings.Load()
	if err != nil {
		return Dashboard{}, err
	}
	entries, err := service.days.GetEntriesRange(request.From, request.To)
	if err != nil {
		return Dashboard{}, fmt.Errorf("%w: %w", ErrDashboardLoadFailed, err)
	}
	metas, err := service.days.GetDailyMetaRange(request.From, request.To)
	if err != nil {
		return Dashboard{}, fmt.Errorf("%w: %w", ErrDashboardLoadFailed, err)
	}

	aggregates := BuildDayAggregates(entries, metas, settings)
	sparkline := BuildSparkline(aggregates, span)
	averages := BuildBlockAverages(aggregates, metric, span)
	return Dashboard{
		From:           request.From,
		To:             request.To,
		Metric:         metric,
		Days:           aggregates,
		KPIs:           ComputeKPIs(aggregates, settings),
		Sparkline:      sparkline,
		BlockAverages:  averages,
		BlockBands:     classifyBlockAverages(averages, settings.Caps.For(metric), settings.Thresholds),
		SparklineBands: ClassifyScores(sparklineScores(sparkline), settings.Thresholds),
	}, nil
}

func classifyBlockAverages(averages map[string]int, limit int, thresholds models.Thresholds) map[string]ColorBand {
	bands := make(map[string]ColorBand, len(averages))
	for blockID, average := range averages {
		bands[blockID] = ClassifyCount(average, limit, thresholds)
	}
	return bands
}

func sparklineScores(points []SparklinePoint) []float64 {
	scores := make([]float64, len(points))
	for index, point := range points {
		scores[index] = point.Score
	}
	return scores
}
