package store

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"RevenueSentinel/internal/model"
)

// MemoryStore is an in-memory Store used in tests and when no SQLite path is
// configured. SaveErr lets tests inject per-pair persistence failures.
type MemoryStore struct {
	mu              sync.Mutex
	observations    map[model.PairKey]map[string]model.RevenueObservation
	classifications map[model.PairKey]model.Classification
	runs            []RunRecord

	SaveErr map[model.PairKey]error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		observations:    make(map[model.PairKey]map[string]model.RevenueObservation),
		classifications: make(map[model.PairKey]model.Classification),
	}
}

func (m *MemoryStore) UpsertObservation(o model.RevenueObservation) error {
	if err := o.Validate(); err != nil {
		return fmt.Errorf("invalid observation: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := model.PairKey{CustomerID: o.CustomerID, Bucket: o.Bucket}
	if m.observations[key] == nil {
		m.observations[key] = make(map[string]model.RevenueObservation)
	}
	o.UpdatedAt = time.Now().UTC()
	m.observations[key][o.Month.Format(monthLayout)] = o
	return nil
}

func (m *MemoryStore) Series(key model.PairKey) ([]model.RevenueObservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	series := make([]model.RevenueObservation, 0, len(m.observations[key]))
	for _, o := range m.observations[key] {
		series = append(series, o)
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Month.Before(series[j].Month) })
	return series, nil
}

func (m *MemoryStore) Pairs() ([]model.PairKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pairs := make([]model.PairKey, 0, len(m.observations))
	for key := range m.observations {
		pairs = append(pairs, key)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].CustomerID != pairs[j].CustomerID {
			return pairs[i].CustomerID < pairs[j].CustomerID
		}
		return pairs[i].Bucket < pairs[j].Bucket
	})
	return pairs, nil
}

func (m *MemoryStore) Classification(key model.PairKey) (*model.Classification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.classificationLocked(key), nil
}

func (m *MemoryStore) classificationLocked(key model.PairKey) *model.Classification {
	c, ok := m.classifications[key]
	if !ok {
		return nil
	}
	return &c
}

func (m *MemoryStore) SaveClassification(c *model.Classification) (*model.Classification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := model.PairKey{CustomerID: c.CustomerID, Bucket: c.Bucket}
	if err := m.SaveErr[key]; err != nil {
		return nil, err
	}

	existing := m.classificationLocked(key)
	fillPrevious(c, existing)
	m.classifications[key] = *c
	return existing, nil
}

func (m *MemoryStore) ListClassifications(q Query) ([]model.Classification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []model.Classification
	for _, c := range m.classifications {
		if q.CustomerID != "" && c.CustomerID != q.CustomerID {
			continue
		}
		if q.Bucket != "" && c.Bucket != q.Bucket {
			continue
		}
		if q.Action != "" && c.Action != q.Action {
			continue
		}
		if q.MinPriority > 0 && c.PriorityScore < q.MinPriority {
			continue
		}
		if len(q.Categories) > 0 && !containsCategory(q.Categories, c.Category) {
			continue
		}
		out = append(out, c)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].PriorityScore != out[j].PriorityScore {
			return out[i].PriorityScore > out[j].PriorityScore
		}
		return out[i].CustomerID < out[j].CustomerID
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (m *MemoryStore) RecordRun(run *RunRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, *run)
	return nil
}

// Runs returns recorded batch summaries, oldest first.
func (m *MemoryStore) Runs() []RunRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]RunRecord(nil), m.runs...)
}

func (m *MemoryStore) Close() error { return nil }

func containsCategory(cats []model.Category, c model.Category) bool {
	for _, cat := range cats {
		if cat == c {
			return true
		}
	}
	return false
}
