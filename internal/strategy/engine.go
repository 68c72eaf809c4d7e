package strategy

import (
	"RevenueSentinel/internal/config"
	"RevenueSentinel/internal/model"
)

// Evaluate runs the classifier and prioritizer over one signal set and
// returns the resulting classification. The result is pure: identical
// signals and thresholds always produce an identical classification
// (ComputedAt and the previous-generation fields are filled by the store).
func Evaluate(s model.SignalSet, cfg config.Analysis) model.Classification {
	m := classify(s, cfg)
	atRisk, opportunity := DollarImpact(m.category, s)

	c := model.Classification{
		CustomerID:     s.CustomerID,
		Bucket:         s.Bucket,
		Category:       m.category,
		Action:         ActionFor(m.category),
		Confidence:     confidence(s, m, cfg),
		PriorityScore:  PriorityScore(m.category, atRisk, opportunity, cfg),
		DollarsAtRisk:  atRisk,
		DollarsOpp:     opportunity,
		Rationale:      rationale(s, m, cfg),
		MonthsAnalyzed: s.FinalizedMonths,
		AvgRevenue:     s.AvgRevenue,
		LatestRevenue:  s.LatestRevenue,
	}
	if s.TrendSlope.Defined {
		c.TrendSlope = s.TrendSlope.Value
	}
	return c
}
