package model

import (
	"fmt"
	"time"
)

// Bucket is a product grouping within which a customer's revenue is tracked.
type Bucket string

const (
	BucketCore      Bucket = "Core"
	BucketAnalytics Bucket = "Analytics"
	BucketModern    Bucket = "Modern"
)

// PairKey identifies one (customer, bucket) revenue series.
type PairKey struct {
	CustomerID string
	Bucket     Bucket
}

func (k PairKey) String() string {
	return fmt.Sprintf("%s/%s", k.CustomerID, k.Bucket)
}

// RevenueObservation is one customer's revenue in one product bucket for one
// calendar month. At most one observation exists per (customer, bucket, month);
// a newer feed delivery for the same month overwrites in place.
type RevenueObservation struct {
	CustomerID string
	Bucket     Bucket
	Month      time.Time // first of month, UTC
	Revenue    float64
	UpdatedAt  time.Time
}

// MonthStart normalizes t to the first of its month at midnight UTC.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// Validate rejects malformed observations at the ingestion boundary.
func (o *RevenueObservation) Validate() error {
	if o.CustomerID == "" {
		return fmt.Errorf("customer id is required")
	}
	if o.Bucket == "" {
		return fmt.Errorf("bucket is required")
	}
	if o.Month.IsZero() {
		return fmt.Errorf("month is required")
	}
	if !o.Month.Equal(MonthStart(o.Month)) {
		return fmt.Errorf("month %s is not a first-of-month date", o.Month.Format("2006-01-02"))
	}
	if o.Revenue < 0 {
		return fmt.Errorf("revenue must be non-negative, got %.2f", o.Revenue)
	}
	return nil
}
