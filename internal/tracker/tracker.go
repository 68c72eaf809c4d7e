// Package tracker diffs a freshly computed classification against the
// previous one for the same (customer, bucket) and names the transition.
package tracker

import (
	"RevenueSentinel/internal/model"
)

// Describe determines the change descriptor between the prior classification
// (nil on first run) and the new one. Descriptors are checked most specific
// first: a fresh alert or a resolution wins over a generic rank move.
func Describe(previous *model.Classification, current *model.Classification, priorityNoise int) model.ChangeEvent {
	evt := model.ChangeEvent{
		CustomerID: current.CustomerID,
		Bucket:     current.Bucket,
		To:         current.Category,
	}
	if previous != nil {
		evt.From = previous.Category
	}

	prevCalm := previous == nil ||
		previous.Category == model.CategoryStable ||
		previous.Category == model.CategoryInsufficientHistory

	if prevCalm && current.Category.Urgent() {
		evt.Change = model.ChangeNewAlert
		return evt
	}

	if previous != nil && previous.Category.Urgent() && current.Category == model.CategoryStable {
		evt.Change = model.ChangeResolved
		return evt
	}

	if previous == nil {
		evt.Change = model.ChangeUnchanged
		return evt
	}

	prevRank := previous.Category.UrgencyRank()
	curRank := current.Category.UrgencyRank()
	priorityDelta := current.PriorityScore - previous.PriorityScore

	switch {
	case curRank > prevRank:
		evt.Change = model.ChangeWorsened
	case curRank < prevRank:
		evt.Change = model.ChangeImproved
	case priorityDelta > priorityNoise:
		evt.Change = model.ChangeWorsened
	case priorityDelta < -priorityNoise:
		evt.Change = model.ChangeImproved
	default:
		evt.Change = model.ChangeUnchanged
	}
	return evt
}
