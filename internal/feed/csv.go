// Package feed ingests monthly revenue deliveries into the history store.
// Rows are validated at the boundary: a canonical first-of-month date and a
// non-negative decimal amount, or the row is rejected. Malformed rows never
// reach the statistics.
package feed

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v3"

	"RevenueSentinel/internal/model"
	"RevenueSentinel/internal/store"
)

// Expected column order of a delivery file.
// customer_id,bucket,month,revenue
const expectedColumns = 4

// RowError reports one rejected delivery row.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// Result summarizes one delivery import.
type Result struct {
	Imported int
	Rejected []RowError
}

// ImportFile reads a CSV delivery from disk and upserts its rows.
func ImportFile(path string, st store.Store) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open delivery: %w", err)
	}
	defer f.Close()

	res, err := Import(f, st)
	if err != nil {
		return nil, err
	}
	log.Printf("[INFO] feed import %s: %d rows imported, %d rejected", path, res.Imported, len(res.Rejected))
	return res, nil
}

// Import reads delivery rows from r. Rejections are per-row: one bad row
// never aborts the rest of the delivery.
func Import(r io.Reader, st store.Store) (*Result, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = expectedColumns
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if !strings.EqualFold(header[0], "customer_id") {
		return nil, fmt.Errorf("unexpected header %q, want customer_id,bucket,month,revenue", strings.Join(header, ","))
	}

	res := &Result{}
	line := 1
	for {
		line++
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			res.Rejected = append(res.Rejected, RowError{Line: line, Err: err})
			continue
		}

		obs, err := parseRow(record)
		if err != nil {
			res.Rejected = append(res.Rejected, RowError{Line: line, Err: err})
			continue
		}
		if err := st.UpsertObservation(obs); err != nil {
			res.Rejected = append(res.Rejected, RowError{Line: line, Err: err})
			continue
		}
		res.Imported++
	}
	return res, nil
}

func parseRow(record []string) (model.RevenueObservation, error) {
	var obs model.RevenueObservation

	obs.CustomerID = strings.TrimSpace(record[0])
	obs.Bucket = model.Bucket(strings.TrimSpace(record[1]))

	month, err := parseMonth(strings.TrimSpace(record[2]))
	if err != nil {
		return obs, err
	}
	obs.Month = month

	revenue, err := parseRevenue(strings.TrimSpace(record[3]))
	if err != nil {
		return obs, err
	}
	obs.Revenue = revenue

	if err := obs.Validate(); err != nil {
		return obs, err
	}
	return obs, nil
}

// parseMonth accepts "2006-01" or "2006-01-02" and canonicalizes to the
// first of the month in UTC.
func parseMonth(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return model.MonthStart(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable month %q", s)
}

// parseRevenue validates the amount as an exact decimal before converting.
// Infinities, NaNs, and negative amounts are rejected here rather than
// propagated into the statistics.
func parseRevenue(s string) (float64, error) {
	d, _, err := apd.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid revenue %q: %w", s, err)
	}
	if d.Form != apd.Finite {
		return 0, fmt.Errorf("non-finite revenue %q", s)
	}
	if d.Negative {
		return 0, fmt.Errorf("negative revenue %q", s)
	}
	f, err := d.Float64()
	if err != nil {
		return 0, fmt.Errorf("revenue %q out of range: %w", s, err)
	}
	return f, nil
}
