// Package analyzer runs the classification engine over every
// (customer, bucket) pair in the history store.
package analyzer

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"RevenueSentinel/internal/calculator"
	"RevenueSentinel/internal/config"
	"RevenueSentinel/internal/model"
	"RevenueSentinel/internal/store"
	"RevenueSentinel/internal/strategy"
	"RevenueSentinel/internal/tracker"
)

// PairError isolates one pair's failure from the rest of the batch.
type PairError struct {
	Key model.PairKey
	Err error
}

func (e PairError) Error() string {
	return fmt.Sprintf("%s: %v", e.Key, e.Err)
}

// Summary is the outcome of one batch run.
type Summary struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time

	Analyzed   int
	Actionable int // classifications whose action is not "Monitor"/"Await more data"
	Skipped    int // pairs with no observations
	Failed     int

	Changes []model.ChangeEvent
	Errors  []PairError
}

// Analyzer wires the engine stages to a store.
type Analyzer struct {
	Store store.Store
	Cfg   config.Analysis
}

func New(st store.Store, cfg config.Analysis) *Analyzer {
	return &Analyzer{Store: st, Cfg: cfg}
}

// Run analyzes every pair in the store. A failure on one pair is recorded and
// the batch continues; the computation itself is pure, so a failed pair can
// simply be retried on the next run.
func (a *Analyzer) Run() (*Summary, error) {
	sum := &Summary{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}
	log.Printf("[INFO] analysis run %s starting", sum.RunID)

	pairs, err := a.Store.Pairs()
	if err != nil {
		return nil, fmt.Errorf("list pairs: %w", err)
	}

	for _, key := range pairs {
		evt, actionable, err := a.analyzePair(key, sum.StartedAt)
		if err != nil {
			sum.Failed++
			sum.Errors = append(sum.Errors, PairError{Key: key, Err: err})
			log.Printf("[ERROR] analyze %s: %v", key, err)
			continue
		}
		if evt == nil {
			sum.Skipped++
			continue
		}
		sum.Analyzed++
		if actionable {
			sum.Actionable++
		}
		if evt.Change != model.ChangeUnchanged {
			sum.Changes = append(sum.Changes, *evt)
		}
	}

	sum.FinishedAt = time.Now().UTC()
	if err := a.Store.RecordRun(&store.RunRecord{
		ID:         sum.RunID,
		StartedAt:  sum.StartedAt,
		FinishedAt: sum.FinishedAt,
		Analyzed:   sum.Analyzed,
		Actionable: sum.Actionable,
		Skipped:    sum.Skipped,
		Failed:     sum.Failed,
	}); err != nil {
		log.Printf("[WARN] record run summary: %v", err)
	}

	log.Printf("[INFO] analysis run %s done: %d analyzed, %d actionable, %d skipped, %d failed",
		sum.RunID, sum.Analyzed, sum.Actionable, sum.Skipped, sum.Failed)
	return sum, nil
}

// AnalyzePair recomputes a single pair on demand (manual re-analysis).
func (a *Analyzer) AnalyzePair(key model.PairKey) (*model.ChangeEvent, error) {
	evt, _, err := a.analyzePair(key, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if evt == nil {
		return nil, fmt.Errorf("%s: no observations", key)
	}
	return evt, nil
}

func (a *Analyzer) analyzePair(key model.PairKey, now time.Time) (*model.ChangeEvent, bool, error) {
	series, err := a.Store.Series(key)
	if err != nil {
		return nil, false, fmt.Errorf("load series: %w", err)
	}
	if len(series) == 0 {
		return nil, false, nil
	}

	signals := calculator.ExtractSignals(key, series, a.Cfg.ProvisionalMonths)
	c := strategy.Evaluate(signals, a.Cfg)
	c.ComputedAt = now

	previous, err := a.Store.SaveClassification(&c)
	if err != nil {
		return nil, false, fmt.Errorf("save classification: %w", err)
	}

	evt := tracker.Describe(previous, &c, a.Cfg.PriorityNoise)
	actionable := c.Category.Urgent() || c.Category == model.CategoryExpansion
	return &evt, actionable, nil
}
