package store

import (
	"time"

	"RevenueSentinel/internal/model"
)

// Query filters stored classifications. Zero values mean "no filter".
// Results are always sorted by priority score descending.
type Query struct {
	CustomerID  string
	Bucket      model.Bucket
	Categories  []model.Category
	Action      string
	MinPriority int
	Limit       int
}

// RunRecord summarizes one batch analysis run.
type RunRecord struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Analyzed   int
	Actionable int
	Skipped    int
	Failed     int
}

// Store persists revenue observations and classification results.
//
// Implementations must serialize classification writes: two racing writers
// for the same (customer, bucket) must not both read the same previous
// snapshot and each believe they are the sole successor.
type Store interface {
	// UpsertObservation inserts or overwrites the observation for its
	// (customer, bucket, month) triple.
	UpsertObservation(o model.RevenueObservation) error

	// Series returns all observations for a pair, ordered by month ascending.
	Series(key model.PairKey) ([]model.RevenueObservation, error)

	// Pairs lists every (customer, bucket) with at least one observation.
	Pairs() ([]model.PairKey, error)

	// Classification returns the current classification for a pair, or nil
	// if the pair has never been analyzed.
	Classification(key model.PairKey) (*model.Classification, error)

	// SaveClassification overwrites the pair's current classification,
	// filling c's previous-generation fields from whatever row existed
	// immediately before. It returns that prior row (nil on first save).
	SaveClassification(c *model.Classification) (*model.Classification, error)

	// ListClassifications returns stored classifications matching q.
	ListClassifications(q Query) ([]model.Classification, error)

	// RecordRun appends a batch run summary.
	RecordRun(run *RunRecord) error

	Close() error
}

// fillPrevious applies the one-generation history rules to c given the row
// that is being overwritten.
func fillPrevious(c *model.Classification, existing *model.Classification) {
	if existing == nil {
		return
	}
	c.PreviousCategory = existing.Category
	c.PreviousPriority = existing.PriorityScore
	if existing.Category != c.Category {
		c.StatusChangedAt = c.ComputedAt
	} else {
		c.StatusChangedAt = existing.StatusChangedAt
	}
}
