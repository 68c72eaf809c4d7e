package strategy

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"RevenueSentinel/internal/calculator"
	"RevenueSentinel/internal/config"
	"RevenueSentinel/internal/model"
)

// actions is the fixed category -> recommended action table.
var actions = map[model.Category]string{
	model.CategoryChurnRisk:           "Check-in (Urgent)",
	model.CategoryRecentDip:           "Check-in",
	model.CategoryExpansion:           "Expansion conversation",
	model.CategoryVolatile:            "Monitor",
	model.CategoryStable:              "Monitor",
	model.CategoryInsufficientHistory: "Await more data",
}

// ActionFor returns the recommended action for a category.
func ActionFor(c model.Category) string { return actions[c] }

// match is the outcome of the rule chain: the category, the signals the
// matched rule consulted (undefined ones cap confidence at MEDIUM), and
// whether the low-revenue gate forced the result.
type match struct {
	category model.Category
	used     []model.Ratio
	gated    bool
}

// classify applies the decision rules in fixed priority order, most urgent
// first; the first matching rule wins.
func classify(s model.SignalSet, cfg config.Analysis) match {
	if s.InsufficientData {
		return match{category: model.CategoryInsufficientHistory}
	}

	// Eligibility gate: low-dollar accounts are tracked, never flagged.
	if s.AvgRevenue < cfg.MinRevenueForOutreach {
		return match{category: model.CategoryStable, gated: true}
	}

	if s.TrendSlope.Below(cfg.SteepDeclineThreshold) &&
		s.Volatility.Above(cfg.VolatilityFloor) &&
		s.CurrentVsMax.Below(cfg.PeakDepletionThreshold) {
		return match{
			category: model.CategoryChurnRisk,
			used:     []model.Ratio{s.TrendSlope, s.Volatility, s.CurrentVsMax},
		}
	}

	if s.TwoMonthChange.Below(cfg.RecentDropThreshold) {
		return match{
			category: model.CategoryRecentDip,
			used:     []model.Ratio{s.TwoMonthChange, s.TrendSlope},
		}
	}

	if s.Volatility.Above(cfg.VolatilityFloor) && s.AvgRevenue >= cfg.VolatileMinRevenue {
		return match{
			category: model.CategoryVolatile,
			used:     []model.Ratio{s.Volatility},
		}
	}

	if s.TrendSlope.Above(cfg.ExpansionGrowthThreshold) {
		return match{
			category: model.CategoryExpansion,
			used:     []model.Ratio{s.TrendSlope},
		}
	}

	return match{
		category: model.CategoryStable,
		used:     []model.Ratio{s.TrendSlope, s.Volatility},
	}
}

// confidence grades a match by window depth and signal quality.
func confidence(s model.SignalSet, m match, cfg config.Analysis) model.Confidence {
	if s.InsufficientData || s.FinalizedMonths < cfg.HighConfidenceMonths {
		if s.InsufficientData {
			return model.ConfidenceLow
		}
		return model.ConfidenceMedium
	}
	for _, r := range m.used {
		if !r.Defined {
			return model.ConfidenceMedium
		}
	}
	return model.ConfidenceHigh
}

// rationale builds the deterministic explanation for a match. It cites only
// values derivable from the SignalSet, so identical inputs always produce the
// identical sentence.
func rationale(s model.SignalSet, m match, cfg config.Analysis) string {
	switch m.category {
	case model.CategoryInsufficientHistory:
		return fmt.Sprintf("Only %d finalized months of history; need at least %d.",
			s.FinalizedMonths, calculator.MinFinalizedMonths)
	case model.CategoryChurnRisk:
		return fmt.Sprintf("Declining %s/month | volatility %s | at %s of historical peak | ~$%s/month at risk.",
			fmtPct(s.TrendSlope), fmtRatio(s.Volatility), fmtRatio(s.CurrentVsMax),
			dollars(s.AvgRevenue*abs(s.TrendSlope)))
	case model.CategoryRecentDip:
		return fmt.Sprintf("Down %s over two months | overall trend %s/month.",
			fmtPct(s.TwoMonthChange), fmtPct(s.TrendSlope))
	case model.CategoryVolatile:
		return fmt.Sprintf("High volatility %s | max drawdown %.0f%% | avg $%s/month.",
			fmtRatio(s.Volatility), s.MaxDrawdown*100, dollars(s.AvgRevenue))
	case model.CategoryExpansion:
		return fmt.Sprintf("Growing %s/month | ~$%s/month expansion opportunity.",
			fmtPct(s.TrendSlope), dollars(s.AvgRevenue*pos(s.TrendSlope)))
	default:
		if m.gated {
			return fmt.Sprintf("Average revenue $%s below outreach floor of $%s; tracked only.",
				dollars(s.AvgRevenue), dollars(cfg.MinRevenueForOutreach))
		}
		return fmt.Sprintf("Trend %s/month | volatility %s | no flagged signals.",
			fmtPct(s.TrendSlope), fmtRatio(s.Volatility))
	}
}

// fmtPct renders a signed change signal, "n/a" when undefined.
func fmtPct(r model.Ratio) string {
	if !r.Defined {
		return "n/a"
	}
	return fmt.Sprintf("%+.1f%%", r.Value*100)
}

// fmtRatio renders an unsigned level signal, "n/a" when undefined.
func fmtRatio(r model.Ratio) string {
	if !r.Defined {
		return "n/a"
	}
	return fmt.Sprintf("%.0f%%", r.Value*100)
}

func dollars(v float64) string {
	return humanize.CommafWithDigits(v, 0)
}

func abs(r model.Ratio) float64 {
	if !r.Defined || r.Value >= 0 {
		return pos(r)
	}
	return -r.Value
}

func pos(r model.Ratio) float64 {
	if !r.Defined || r.Value < 0 {
		return 0
	}
	return r.Value
}
