package analyzer

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RevenueSentinel/internal/config"
	"RevenueSentinel/internal/model"
	"RevenueSentinel/internal/store"
)

func seed(t *testing.T, st store.Store, customer string, bucket model.Bucket, revenues []float64) {
	t.Helper()
	month := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, r := range revenues {
		require.NoError(t, st.UpsertObservation(model.RevenueObservation{
			CustomerID: customer,
			Bucket:     bucket,
			Month:      month.AddDate(0, i, 0),
			Revenue:    r,
		}))
	}
}

func TestRun_Batch(t *testing.T) {
	st := store.NewMemoryStore()
	// Declining account (last month provisional), a flat one, a short one.
	seed(t, st, "acme", model.BucketCore, []float64{10000, 9500, 8000, 6500, 5000})
	seed(t, st, "globex", model.BucketCore, []float64{5000, 5050, 4980, 5020, 5010, 4990, 5000})
	seed(t, st, "initech", model.BucketAnalytics, []float64{4000, 4100})

	a := New(st, config.DefaultAnalysis())
	sum, err := a.Run()
	require.NoError(t, err)

	assert.Equal(t, 3, sum.Analyzed)
	assert.Equal(t, 1, sum.Actionable)
	assert.Equal(t, 0, sum.Failed)
	assert.NotEmpty(t, sum.RunID)

	// First run: the declining account surfaces as a fresh alert.
	require.Len(t, sum.Changes, 1)
	assert.Equal(t, model.ChangeNewAlert, sum.Changes[0].Change)
	assert.Equal(t, "acme", sum.Changes[0].CustomerID)

	short, err := st.Classification(model.PairKey{CustomerID: "initech", Bucket: model.BucketAnalytics})
	require.NoError(t, err)
	require.NotNil(t, short)
	assert.Equal(t, model.CategoryInsufficientHistory, short.Category)

	runs := st.Runs()
	require.Len(t, runs, 1)
	assert.Equal(t, 3, runs[0].Analyzed)
}

func TestRun_StatusTransitionAcrossRuns(t *testing.T) {
	st := store.NewMemoryStore()
	seed(t, st, "acme", model.BucketCore, []float64{9000, 9100, 9050, 9000})

	a := New(st, config.DefaultAnalysis())
	sum, err := a.Run()
	require.NoError(t, err)
	assert.Empty(t, sum.Changes)

	first, err := st.Classification(model.PairKey{CustomerID: "acme", Bucket: model.BucketCore})
	require.NoError(t, err)
	assert.Equal(t, model.CategoryStable, first.Category)

	// New deliveries collapse the account.
	seed(t, st, "acme", model.BucketCore, []float64{9000, 9100, 9050, 4000, 2500, 1500})

	sum, err = a.Run()
	require.NoError(t, err)
	require.Len(t, sum.Changes, 1)
	assert.Equal(t, model.ChangeNewAlert, sum.Changes[0].Change)
	assert.Equal(t, model.CategoryStable, sum.Changes[0].From)

	second, err := st.Classification(model.PairKey{CustomerID: "acme", Bucket: model.BucketCore})
	require.NoError(t, err)
	assert.Equal(t, model.CategoryStable, second.PreviousCategory)
	assert.True(t, second.Category.Urgent())
}

func TestRun_FailureIsolation(t *testing.T) {
	st := store.NewMemoryStore()
	seed(t, st, "acme", model.BucketCore, []float64{10000, 9500, 8000, 6500, 5000})
	seed(t, st, "globex", model.BucketCore, []float64{5000, 5050, 4980, 5020, 5010, 4990})
	st.SaveErr = map[model.PairKey]error{
		{CustomerID: "acme", Bucket: model.BucketCore}: errors.New("disk full"),
	}

	a := New(st, config.DefaultAnalysis())
	sum, err := a.Run()
	require.NoError(t, err)

	assert.Equal(t, 1, sum.Analyzed)
	assert.Equal(t, 1, sum.Failed)
	require.Len(t, sum.Errors, 1)
	assert.Equal(t, "acme", sum.Errors[0].Key.CustomerID)

	// The healthy pair still got classified.
	c, err := st.Classification(model.PairKey{CustomerID: "globex", Bucket: model.BucketCore})
	require.NoError(t, err)
	require.NotNil(t, c)
}

func TestAnalyzePair_NoObservations(t *testing.T) {
	a := New(store.NewMemoryStore(), config.DefaultAnalysis())
	_, err := a.AnalyzePair(model.PairKey{CustomerID: "nobody", Bucket: model.BucketCore})
	assert.Error(t, err)
}
