package service

import (
	"github.com/turtacn/riskscore360/internal/domain/models"
)

// Aggregate is the composite part of a report.
type Aggregate struct {
	TotalRaw    int
	MaxPossible int
	RiskScore   int
	RiskLevel   models.RiskLevel
}

// Aggregator sums component scores, normalizes them to 0..100 and classifies
// the result.
type Aggregator struct {
	maxPossible int
	levels      models.LevelThresholds
}

// NewAggregator creates an Aggregator.
func NewAggregator(maxPossible int, levels models.LevelThresholds) Aggregator {
	return Aggregator{maxPossible: maxPossible, levels: levels}
}

// Aggregate computes the composite score and level of the five results.
func (a Aggregator) Aggregate(details models.ComponentDetails) Aggregate {
	total := 0
	hasCritical := false
	for _, c := range details.Ordered() {
		total += c.Score
		if c.Severity == models.SeverityCritical {
			hasCritical = true
		}
	}

	score := 0
	if a.maxPossible > 0 {
		score = int(float64(total) / float64(a.maxPossible) * 100)
	}
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}

	return Aggregate{
		TotalRaw:    total,
		MaxPossible: a.maxPossible,
		RiskScore:   score,
		RiskLevel:   a.Classify(score, hasCritical),
	}
}

// Classify maps a normalized score to a risk level. A critical component
// raises any score at or above the override threshold to Critical.
func (a Aggregator) Classify(score int, hasCritical bool) models.RiskLevel {
	l := a.levels
	if hasCritical && score >= l.CriticalOverrideMin {
		return models.RiskLevelCritical
	}
	switch {
	case score >= l.Critical:
		return models.RiskLevelCritical
	case score >= l.High:
		return models.RiskLevelHigh
	case score >= l.MediumHigh:
		return models.RiskLevelMediumHigh
	case score >= l.Medium:
		return models.RiskLevelMedium
	case score >= l.LowMedium:
		return models.RiskLevelLowMedium
	default:
		return models.RiskLevelLow
	}
}
