package strategy

import (
	"reflect"
	"testing"
	"time"

	"RevenueSentinel/internal/calculator"
	"RevenueSentinel/internal/config"
	"RevenueSentinel/internal/model"
)

func signalsFor(revenues []float64, provisional int) model.SignalSet {
	key := model.PairKey{CustomerID: "acme", Bucket: model.BucketCore}
	obs := make([]model.RevenueObservation, len(revenues))
	month := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, r := range revenues {
		obs[i] = model.RevenueObservation{
			CustomerID: key.CustomerID,
			Bucket:     key.Bucket,
			Month:      month.AddDate(0, i, 0),
			Revenue:    r,
		}
	}
	return calculator.ExtractSignals(key, obs, provisional)
}

func TestEvaluate_SteepDecline(t *testing.T) {
	// Four finalized months in steady decline, fifth provisional excluded.
	s := signalsFor([]float64{10000, 9500, 8000, 6500, 5000}, 1)
	c := Evaluate(s, config.DefaultAnalysis())

	if c.Category != model.CategoryChurnRisk {
		t.Fatalf("expected CHURN_RISK, got %s (%s)", c.Category, c.Rationale)
	}
	if c.Confidence != model.ConfidenceMedium {
		t.Errorf("expected MEDIUM confidence for 4-month window, got %s", c.Confidence)
	}
	if c.Action != "Check-in (Urgent)" {
		t.Errorf("unexpected action %q", c.Action)
	}
	if c.DollarsAtRisk <= 0 {
		t.Errorf("expected positive dollars at risk, got %.0f", c.DollarsAtRisk)
	}
	if c.DollarsOpp != 0 {
		t.Errorf("expected zero opportunity, got %.0f", c.DollarsOpp)
	}
}

func TestEvaluate_FlatRevenue(t *testing.T) {
	s := signalsFor([]float64{5000, 5050, 4980, 5020, 5010, 4990}, 0)
	c := Evaluate(s, config.DefaultAnalysis())

	if c.Category != model.CategoryStable {
		t.Fatalf("expected STABLE, got %s (%s)", c.Category, c.Rationale)
	}
	if c.Confidence != model.ConfidenceHigh {
		t.Errorf("expected HIGH confidence for 6 defined months, got %s", c.Confidence)
	}
	if c.DollarsAtRisk != 0 || c.DollarsOpp != 0 {
		t.Errorf("expected zero impact, got at_risk=%.0f opp=%.0f", c.DollarsAtRisk, c.DollarsOpp)
	}
}

func TestEvaluate_Growth(t *testing.T) {
	s := signalsFor([]float64{3000, 3600, 4300, 5100}, 0)
	c := Evaluate(s, config.DefaultAnalysis())

	if c.Category != model.CategoryExpansion {
		t.Fatalf("expected EXPANSION_OPPORTUNITY, got %s (%s)", c.Category, c.Rationale)
	}
	if c.Action != "Expansion conversation" {
		t.Errorf("unexpected action %q", c.Action)
	}
	if c.DollarsOpp <= 0 {
		t.Errorf("expected positive opportunity, got %.0f", c.DollarsOpp)
	}
	if c.DollarsAtRisk != 0 {
		t.Errorf("expected zero dollars at risk, got %.0f", c.DollarsAtRisk)
	}
}

func TestEvaluate_InsufficientHistory(t *testing.T) {
	// Three observations minus one provisional leaves only two finalized.
	s := signalsFor([]float64{4000, 4200, 4100}, 1)
	c := Evaluate(s, config.DefaultAnalysis())

	if c.Category != model.CategoryInsufficientHistory {
		t.Fatalf("expected INSUFFICIENT_HISTORY, got %s", c.Category)
	}
	if c.Confidence != model.ConfidenceLow {
		t.Errorf("expected LOW confidence, got %s", c.Confidence)
	}
	if c.PriorityScore != 0 {
		t.Errorf("expected priority 0, got %d", c.PriorityScore)
	}
	if c.Action != "Await more data" {
		t.Errorf("unexpected action %q", c.Action)
	}
}

func TestEvaluate_ExactlyThreeFinalizedMonths(t *testing.T) {
	s := signalsFor([]float64{4000, 4200, 4100, 9999}, 1)
	if s.InsufficientData {
		t.Fatal("three finalized months should be enough for signals")
	}
	if s.FinalizedMonths != 3 {
		t.Errorf("expected 3 finalized months, got %d", s.FinalizedMonths)
	}
}

func TestEvaluate_LowRevenueGate(t *testing.T) {
	// Steep decline, high volatility, deep below peak - but the average is
	// under the outreach floor, so the account is tracked, never flagged.
	s := signalsFor([]float64{2900, 2000, 1500, 900}, 0)
	c := Evaluate(s, config.DefaultAnalysis())

	if c.Category != model.CategoryStable {
		t.Fatalf("expected gated STABLE, got %s (%s)", c.Category, c.Rationale)
	}
	if c.Action != "Monitor" {
		t.Errorf("unexpected action %q", c.Action)
	}
}

func TestEvaluate_ZeroMonthDoesNotPanic(t *testing.T) {
	// Prior month is zero: month-over-month change is undefined, not an error.
	s := signalsFor([]float64{6000, 8000, 0, 8200}, 0)
	if s.MonthOverMonth.Defined {
		t.Error("month-over-month change should be undefined when prior month is zero")
	}

	c := Evaluate(s, config.DefaultAnalysis())
	if c.Category != model.CategoryVolatile {
		t.Errorf("expected VOLATILE for swing to zero and back, got %s (%s)", c.Category, c.Rationale)
	}
}

func TestEvaluate_Idempotent(t *testing.T) {
	cfg := config.DefaultAnalysis()
	s := signalsFor([]float64{10000, 9500, 8000, 6500, 5000}, 1)

	c1 := Evaluate(s, cfg)
	c2 := Evaluate(s, cfg)
	if !reflect.DeepEqual(c1, c2) {
		t.Errorf("identical inputs produced different classifications:\n%+v\n%+v", c1, c2)
	}
}

func TestPriority_CategoryRanking(t *testing.T) {
	cfg := config.DefaultAnalysis()

	// A modest churn-risk account must outrank a huge stable one.
	churn := Evaluate(signalsFor([]float64{10000, 9500, 8000, 6500}, 0), cfg)
	stable := Evaluate(signalsFor([]float64{1000000, 1000000, 1000000, 1000000, 1000000, 1000000}, 0), cfg)

	if churn.Category != model.CategoryChurnRisk {
		t.Fatalf("setup: expected CHURN_RISK, got %s", churn.Category)
	}
	if stable.Category != model.CategoryStable {
		t.Fatalf("setup: expected STABLE, got %s", stable.Category)
	}
	if churn.PriorityScore < stable.PriorityScore {
		t.Errorf("CHURN_RISK (%d) must not score below STABLE (%d)",
			churn.PriorityScore, stable.PriorityScore)
	}
}

func TestPriority_MonotonicInRevenue(t *testing.T) {
	cfg := config.DefaultAnalysis()

	small := Evaluate(signalsFor([]float64{10000, 9500, 8000, 6500}, 0), cfg)
	large := Evaluate(signalsFor([]float64{1000000, 950000, 800000, 650000}, 0), cfg)

	if small.Category != large.Category {
		t.Fatalf("setup: categories differ: %s vs %s", small.Category, large.Category)
	}
	if large.PriorityScore < small.PriorityScore {
		t.Errorf("larger account scored %d below smaller account's %d",
			large.PriorityScore, small.PriorityScore)
	}
}

func TestPriority_Bounds(t *testing.T) {
	cfg := config.DefaultAnalysis()
	series := [][]float64{
		{10000, 9500, 8000, 6500},
		{3000, 3600, 4300, 5100},
		{1000000, 100000, 900000, 50000, 800000, 20000},
		{5000, 5050, 4980, 5020, 5010, 4990},
	}
	for _, revs := range series {
		c := Evaluate(signalsFor(revs, 0), cfg)
		if c.PriorityScore < 0 || c.PriorityScore > 100 {
			t.Errorf("priority %d out of bounds for %s", c.PriorityScore, c.Category)
		}
	}
}

func TestActionTable(t *testing.T) {
	tests := []struct {
		category model.Category
		action   string
	}{
		{model.CategoryChurnRisk, "Check-in (Urgent)"},
		{model.CategoryRecentDip, "Check-in"},
		{model.CategoryExpansion, "Expansion conversation"},
		{model.CategoryVolatile, "Monitor"},
		{model.CategoryStable, "Monitor"},
		{model.CategoryInsufficientHistory, "Await more data"},
	}
	for _, tt := range tests {
		if got := ActionFor(tt.category); got != tt.action {
			t.Errorf("%s: expected %q, got %q", tt.category, tt.action, got)
		}
	}
}

func TestClassify_RecentDip(t *testing.T) {
	// Healthy level overall but the last two finalized months fell hard.
	s := signalsFor([]float64{9000, 9200, 9100, 9000, 7200}, 0)
	c := Evaluate(s, config.DefaultAnalysis())

	if c.Category != model.CategoryRecentDip {
		t.Fatalf("expected RECENT_DIP, got %s (%s)", c.Category, c.Rationale)
	}
	if c.Action != "Check-in" {
		t.Errorf("unexpected action %q", c.Action)
	}
	if c.DollarsAtRisk < 0 {
		t.Errorf("dollars at risk must be non-negative, got %.0f", c.DollarsAtRisk)
	}
}
