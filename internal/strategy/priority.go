package strategy

import (
	"RevenueSentinel/internal/config"
	"RevenueSentinel/internal/model"
)

// baseScores anchors each category's priority. The dollar-impact bonus is
// capped below the smallest gap between distinct bases, so dollar amounts
// nudge a score within its band but never let a lower-urgency category
// outscore a higher one.
var baseScores = map[model.Category]int{
	model.CategoryChurnRisk:           80,
	model.CategoryRecentDip:           60,
	model.CategoryExpansion:           50,
	model.CategoryVolatile:            40,
	model.CategoryStable:              10,
	model.CategoryInsufficientHistory: 0,
}

const maxImpactBonus = 10

// DollarImpact computes dollars-at-risk and dollars-of-opportunity for a
// category from the signal set. At-risk applies to the declining categories,
// opportunity only to expansion; all other categories carry zero impact.
func DollarImpact(category model.Category, s model.SignalSet) (atRisk, opportunity float64) {
	switch category {
	case model.CategoryChurnRisk, model.CategoryRecentDip, model.CategoryVolatile:
		atRisk = s.AvgRevenue * abs(s.TrendSlope)
		if atRisk < 0 {
			atRisk = 0
		}
	case model.CategoryExpansion:
		opportunity = s.AvgRevenue * pos(s.TrendSlope)
	}
	return atRisk, opportunity
}

// PriorityScore maps category plus dollar impact to a sortable 0-100 score.
// The category base dominates; impact relative to the strategic revenue tier
// adds a bounded bonus.
func PriorityScore(category model.Category, atRisk, opportunity float64, cfg config.Analysis) int {
	score := baseScores[category]

	impact := atRisk
	if opportunity > impact {
		impact = opportunity
	}
	score += impactBonus(impact, cfg)

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

// impactBonus scales linearly with impact up to the strategic threshold.
func impactBonus(impact float64, cfg config.Analysis) int {
	if impact <= 0 || cfg.StrategicThreshold <= 0 {
		return 0
	}
	bonus := int(float64(maxImpactBonus) * impact / cfg.StrategicThreshold)
	if bonus > maxImpactBonus {
		bonus = maxImpactBonus
	}
	return bonus
}
