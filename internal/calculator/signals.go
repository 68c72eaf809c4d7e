package calculator

import (
	"RevenueSentinel/internal/model"
)

// MinFinalizedMonths is the smallest finalized window the extractor will
// compute signals over. Shorter series are flagged insufficient.
const MinFinalizedMonths = 3

// ExtractSignals computes the SignalSet for one (customer, bucket) series.
// Observations must be ordered by month ascending. The trailing
// provisionalMonths observations are excluded before anything is computed:
// the newest figures in a feed are subject to revision and would skew trend
// and volatility.
func ExtractSignals(key model.PairKey, obs []model.RevenueObservation, provisionalMonths int) model.SignalSet {
	if provisionalMonths < 0 {
		provisionalMonths = 0
	}

	finalized := len(obs) - provisionalMonths
	if finalized < MinFinalizedMonths {
		return model.SignalSet{
			CustomerID:       key.CustomerID,
			Bucket:           key.Bucket,
			InsufficientData: true,
		}
	}

	revenues := make([]float64, finalized)
	for i := 0; i < finalized; i++ {
		revenues[i] = obs[i].Revenue
	}

	n := len(revenues)
	avg := Mean(revenues)
	latest := revenues[n-1]

	s := model.SignalSet{
		CustomerID:      key.CustomerID,
		Bucket:          key.Bucket,
		FinalizedMonths: n,
		AvgRevenue:      avg,
		LatestRevenue:   latest,
		MaxDrawdown:     MaxDrawdown(revenues),
	}

	// Trend slope, normalized by the window mean so it is comparable across
	// customers of different scale.
	if slope, ok := LinearSlope(revenues); ok && avg > 0 {
		s.TrendSlope = model.DefinedRatio(slope / avg)
	}

	s.MonthOverMonth = ratioOfChange(latest, revenues[n-2])
	s.TwoMonthChange = ratioOfChange(latest, revenues[n-3])

	if avg > 0 {
		s.Volatility = model.DefinedRatio(StdDev(revenues) / avg)
		s.CurrentVsAvg = model.DefinedRatio(latest / avg)
	}

	if peak := Max(revenues); peak > 0 {
		s.CurrentVsMax = model.DefinedRatio(latest / peak)
	}

	return s
}

// ratioOfChange returns (current-base)/base, undefined when base is zero.
func ratioOfChange(current, base float64) model.Ratio {
	if base == 0 {
		return model.UndefinedRatio()
	}
	return model.DefinedRatio((current - base) / base)
}
