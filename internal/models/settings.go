package models

import "sort"

// WeightSumTolerance absorbs float rounding when the core weights add up to 1.
const WeightSumTolerance = 1e-4

type Settings struct {
	Blocks     []TimeframeBlock `json:"blocks"`
	Goals      Goals            `json:"goals"`
	Weights    Weights          `json:"weights"`
	Thresholds Thresholds       `json:"thresholds"`
	Caps       Caps             `json:"caps"`
}

type Goals struct {
	Rumination      int `json:"rumination"`
	Compulsion      int `json:"compulsion"`
	Avoidance       int `json:"avoidance"`
	ExerciseMinutes int `json:"exercise_minutes"`
	SleepScore      int `json:"sleep_score"`
}

type Weights struct {
	Rumination float64 `json:"rumination"`
	Compulsion float64 `json:"compulsion"`
	Avoidance  float64 `json:"avoidance"`
	Anxiety    float64 `json:"anxiety"`
	Distress   float64 `json:"distress"`
	Sleep      float64 `json:"sleep"`
	Exercise   float64 `json:"exercise"`
}

// CoreSum excludes the sleep and exercise bonus weights.
func (weights Weights) CoreSum() float64 {
	return weights.Rumination + weights.Compulsion + weights.Avoidance + weights.Anxiety + weights.Distress
}

type Thresholds struct {
	Green  float64 `json:"green"`
	Yellow float64 `json:"yellow"`
}

type Caps struct {
	Rumination int `json:"rumination"`
	Compulsion int `json:"compulsion"`
	Avoidance  int `json:"avoidance"`
}

func (caps Caps) For(metric Metric) int {
	switch metric {
	case MetricRumination:
		return caps.Rumination
	case MetricCompulsion:
		return caps.Compulsion
	case MetricAvoidance:
		return caps.Avoidance
	default:
		return 0
	}
}

func DefaultWeights() Weights {
	return Weights{
		Rumination: 0.25,
		Compulsion: 0.20,
		Avoidance:  0.15,
		Anxiety:    0.20,
		Distress:   0.20,
		Sleep:      0.10,
		Exercise:   0.10,
	}
}

func DefaultThresholds() Thresholds {
	return Thresholds{Green: 0.66, Yellow: 0.33}
}

func DefaultCaps() Caps {
	return Caps{Rumination: 10, Compulsion: 10, Avoidance: 10}
}

func DefaultGoals() Goals {
	return Goals{Rumination: 2, Compulsion: 2, Avoidance: 2, ExerciseMinutes: 30, SleepScore: 7}
}

func DefaultSettings() Settings {
	return Settings{
		Blocks:     DefaultBlocks(),
		Goals:      DefaultGoals(),
		Weights:    DefaultWeights(),
		Thresholds: DefaultThresholds(),
		Caps:       DefaultCaps(),
	}
}

func (settings Settings) Validate() error {
	if err := ValidateBlockSet(settings.Blocks); err != nil {
		return err
	}
	if err := settings.Weights.Validate(); err != nil {
		return err
	}
	if err := settings.Thresholds.Validate(); err != nil {
		return err
	}
	if err := settings.Caps.Validate(); err != nil {
		return err
	}
	return settings.Goals.Validate()
}

func (weights Weights) Validate() error {
	components := []struct {
		field string
		value float64
	}{
		{"weights.rumination", weights.Rumination},
		{"weights.compulsion", weights.Compulsion},
		{"weights.avoidance", weights.Avoidance},
		{"weights.anxiety", weights.Anxiety},
		{"weights.distress", weights.Distress},
		{"weights.sleep", weights.Sleep},
		{"weights.exercise", weights.Exercise},
	}
	for _, component := range components {
		if !unitInterval(component.value) {
			return invalidField(component.field, "must be within [0,1], got %v", component.value)
		}
	}
	if sum := weights.CoreSum(); sum > 1+WeightSumTolerance {
		return invalidField("weights", "core weights sum to %.4f, must not exceed 1", sum)
	}
	return nil
}

func (thresholds Thresholds) Validate() error {
	if !unitInterval(thresholds.Green) {
		return invalidField("thresholds.green", "must be within [0,1], got %v", thresholds.Green)
	}
	if !unitInterval(thresholds.Yellow) {
		return invalidField("thresholds.yellow", "must be within [0,1], got %v", thresholds.Yellow)
	}
	if thresholds.Green < thresholds.Yellow {
		return invalidField("thresholds.green", "%v is below yellow %v", thresholds.Green, thresholds.Yellow)
	}
	return nil
}

func (caps Caps) Validate() error {
	for _, metric := range Metrics() {
		if value := caps.For(metric); value <= 0 {
			return invalidField("caps."+string(metric), "must be positive, got %d", value)
		}
	}
	return nil
}

func (goals Goals) Validate() error {
	targets := []struct {
		field string
		value int
	}{
		{"goals.rumination", goals.Rumination},
		{"goals.compulsion", goals.Compulsion},
		{"goals.avoidance", goals.Avoidance},
		{"goals.exercise_minutes", goals.ExerciseMinutes},
	}
	for _, target := range targets {
		if target.value < 0 {
			return invalidField(target.field, "must not be negative, got %d", target.value)
		}
	}
	if goals.SleepScore != 0 {
		if err := validateScore("goals.sleep_score", goals.SleepScore); err != nil {
			return err
		}
	}
	return nil
}

// ActiveBlocks returns the active blocks in display order.
func ActiveBlocks(blocks []TimeframeBlock) []TimeframeBlock {
	active := make([]TimeframeBlock, 0, len(blocks))
	for _, block := range blocks {
		if block.Active {
			active = append(active, block)
		}
	}
	sort.Slice(active, func(i, j int) bool {
		return active[i].DisplayOrder < active[j].DisplayOrder
	})
	return active
}
