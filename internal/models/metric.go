package models

type Metric string

const (
	MetricRumination Metric = "rumination"
	MetricCompulsion Metric = "compulsion"
	MetricAvoidance  Metric = "avoidance"
)

func Metrics() []Metric {
	return []Metric{MetricRumination, MetricCompulsion, MetricAvoidance}
}

func ParseMetric(raw string) (Metric, error) {
	metric := Metric(raw)
	switch metric {
	case MetricRumination, MetricCompulsion, MetricAvoidance:
		return metric, nil
	default:
		return "", invalidField("metric", "unknown metric %q", raw)
	}
}

// Column is the block_entries column holding the metric's counter.
func (metric Metric) Column() string {
	switch metric {
	case MetricRumination, MetricCompulsion, MetricAvoidance:
		return string(metric)
	default:
		return ""
	}
}
