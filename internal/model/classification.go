package model

import "time"

// Category is the engine's health verdict for one (customer, bucket) pair.
type Category string

const (
	CategoryInsufficientHistory Category = "INSUFFICIENT_HISTORY"
	CategoryChurnRisk           Category = "CHURN_RISK"
	CategoryRecentDip           Category = "RECENT_DIP"
	CategoryVolatile            Category = "VOLATILE"
	CategoryExpansion           Category = "EXPANSION_OPPORTUNITY"
	CategoryStable              Category = "STABLE"
)

// UrgencyRank orders categories by how urgently they need attention.
// Higher is more urgent. Used by the change tracker, not the prioritizer.
func (c Category) UrgencyRank() int {
	switch c {
	case CategoryChurnRisk:
		return 5
	case CategoryRecentDip:
		return 4
	case CategoryVolatile:
		return 3
	case CategoryExpansion:
		return 2
	case CategoryStable:
		return 1
	default:
		return 0
	}
}

// Urgent reports whether the category warrants an alert on the dashboard.
func (c Category) Urgent() bool {
	switch c {
	case CategoryChurnRisk, CategoryRecentDip, CategoryVolatile:
		return true
	}
	return false
}

// Confidence expresses how much history backs a classification.
type Confidence string

const (
	ConfidenceLow    Confidence = "LOW"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceHigh   Confidence = "HIGH"
)

// Classification is the persisted decision for a (customer, bucket) pair.
// Exactly one current row exists per pair; a re-run overwrites it, keeping the
// prior category and priority for one generation back.
type Classification struct {
	CustomerID string
	Bucket     Bucket

	Category      Category
	Action        string
	Confidence    Confidence
	PriorityScore int // 0-100
	DollarsAtRisk float64
	DollarsOpp    float64
	Rationale     string

	MonthsAnalyzed int
	AvgRevenue     float64
	LatestRevenue  float64
	TrendSlope     float64 // fraction/month, 0 when undefined

	ComputedAt time.Time

	// One generation of change-tracking history.
	PreviousCategory Category
	PreviousPriority int
	StatusChangedAt  time.Time
}

// ChangeType describes how a pair's classification moved between two runs.
type ChangeType string

const (
	ChangeNewAlert  ChangeType = "NEW_ALERT"
	ChangeResolved  ChangeType = "RESOLVED"
	ChangeWorsened  ChangeType = "WORSENED"
	ChangeImproved  ChangeType = "IMPROVED"
	ChangeUnchanged ChangeType = "UNCHANGED"
)

// ChangeEvent is surfaced to the dashboard after each batch run.
type ChangeEvent struct {
	CustomerID string
	Bucket     Bucket
	Change     ChangeType
	From       Category
	To         Category
}
