package model

// Ratio is a division result that may be undefined when the denominator was
// zero. Undefined is distinct from zero: classification rules skip undefined
// signals instead of treating them as 0%.
type Ratio struct {
	Value   float64
	Defined bool
}

// DefinedRatio wraps a computed value.
func DefinedRatio(v float64) Ratio { return Ratio{Value: v, Defined: true} }

// UndefinedRatio marks a division whose denominator was zero.
func UndefinedRatio() Ratio { return Ratio{} }

// Below reports whether the ratio is defined and strictly less than threshold.
func (r Ratio) Below(threshold float64) bool { return r.Defined && r.Value < threshold }

// Above reports whether the ratio is defined and strictly greater than threshold.
func (r Ratio) Above(threshold float64) bool { return r.Defined && r.Value > threshold }

// SignalSet holds the statistical descriptors computed from one
// (customer, bucket) monthly series. All values cover finalized months only;
// the trailing provisional months are excluded before anything is computed.
type SignalSet struct {
	CustomerID string
	Bucket     Bucket

	// InsufficientData is set when fewer than the minimum finalized months
	// remain after excluding provisional ones. All other fields are zero.
	InsufficientData bool

	FinalizedMonths int
	AvgRevenue      float64
	LatestRevenue   float64 // latest finalized month

	// TrendSlope is the least-squares slope normalized by the window mean,
	// expressed as fractional change per month (-0.05 = shrinking 5%/month).
	TrendSlope Ratio

	MonthOverMonth Ratio // latest finalized vs. prior
	TwoMonthChange Ratio // latest finalized vs. two months prior

	Volatility   Ratio // coefficient of variation (stddev / mean)
	MaxDrawdown  float64
	CurrentVsMax Ratio // latest finalized / historical peak
	CurrentVsAvg Ratio // latest finalized / window average
}
