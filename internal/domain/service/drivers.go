package service

import (
	"sort"

	"github.com/turtacn/riskscore360/internal/domain/models"
	"github.com/turtacn/riskscore360/pkg/utils"
)

// DriverAnalyzer computes the score distribution and top risk drivers.
type DriverAnalyzer struct {
	limit int
}

// NewDriverAnalyzer creates a DriverAnalyzer returning at most limit drivers.
func NewDriverAnalyzer(limit int) DriverAnalyzer {
	return DriverAnalyzer{limit: limit}
}

// Analyze returns each component's share of the total and the highest-scoring
// components. The distribution is empty when every score is zero; it is never nil.
func (a DriverAnalyzer) Analyze(details models.ComponentDetails) (map[string]models.DistributionEntry, []models.RiskDriver) {
	ordered := details.Ordered()

	total := 0
	for _, c := range ordered {
		total += c.Score
	}

	distribution := make(map[string]models.DistributionEntry, len(ordered))
	if total > 0 {
		for _, c := range ordered {
			distribution[c.Component] = models.DistributionEntry{
				Score:      c.Score,
				Percentage: utils.RoundHalfEven(float64(c.Score)/float64(total)*100, 1),
				Severity:   c.Severity,
			}
		}
	}

	ranked := make([]models.NamedResult, 0, len(ordered))
	for _, c := range ordered {
		if c.Score > 0 {
			ranked = append(ranked, c)
		}
	}
	// Ties keep canonical component order.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	if a.limit >= 0 && len(ranked) > a.limit {
		ranked = ranked[:a.limit]
	}

	drivers := make([]models.RiskDriver, 0, len(ranked))
	for _, c := range ranked {
		drivers = append(drivers, models.RiskDriver{
			Component: c.Component,
			Score:     c.Score,
			Severity:  c.Severity,
		})
	}
	return distribution, drivers
}
