package store

import (
	"database/sql"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"RevenueSentinel/internal/model"
)

const monthLayout = "2006-01-02"

// SQLiteStore persists observations and classifications to a SQLite database.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (or creates) the database and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so dashboard reads don't block batch writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite store opened: %s", dbPath)
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS revenue_observations (
			customer_id TEXT NOT NULL,
			bucket      TEXT NOT NULL,
			month       TEXT NOT NULL,
			revenue     REAL NOT NULL,
			updated_at  INTEGER NOT NULL,
			PRIMARY KEY (customer_id, bucket, month)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_obs_pair ON revenue_observations(customer_id, bucket)`,

		`CREATE TABLE IF NOT EXISTS classifications (
			customer_id       TEXT NOT NULL,
			bucket            TEXT NOT NULL,
			category          TEXT NOT NULL,
			action            TEXT NOT NULL,
			confidence        TEXT NOT NULL,
			priority_score    INTEGER NOT NULL,
			dollars_at_risk   REAL NOT NULL,
			dollars_opp       REAL NOT NULL,
			rationale         TEXT NOT NULL,
			months_analyzed   INTEGER NOT NULL,
			avg_revenue       REAL NOT NULL,
			latest_revenue    REAL NOT NULL,
			trend_slope       REAL NOT NULL,
			computed_at       INTEGER NOT NULL,
			previous_category TEXT,
			previous_priority INTEGER,
			status_changed_at INTEGER,
			PRIMARY KEY (customer_id, bucket)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_class_priority ON classifications(priority_score)`,

		`CREATE TABLE IF NOT EXISTS analysis_runs (
			run_id      TEXT PRIMARY KEY,
			started_at  INTEGER NOT NULL,
			finished_at INTEGER NOT NULL,
			analyzed    INTEGER NOT NULL,
			actionable  INTEGER NOT NULL,
			skipped     INTEGER NOT NULL,
			failed      INTEGER NOT NULL
		)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

func (s *SQLiteStore) UpsertObservation(o model.RevenueObservation) error {
	if err := o.Validate(); err != nil {
		return fmt.Errorf("invalid observation: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`INSERT INTO revenue_observations
		(customer_id, bucket, month, revenue, updated_at)
		VALUES (?,?,?,?,?)
		ON CONFLICT(customer_id, bucket, month)
		DO UPDATE SET revenue = excluded.revenue, updated_at = excluded.updated_at`,
		o.CustomerID, string(o.Bucket), o.Month.Format(monthLayout),
		o.Revenue, time.Now().Unix(),
	)
	return err
}

func (s *SQLiteStore) Series(key model.PairKey) ([]model.RevenueObservation, error) {
	rows, err := s.db.Query(`SELECT month, revenue, updated_at
		FROM revenue_observations
		WHERE customer_id = ? AND bucket = ?
		ORDER BY month ASC`,
		key.CustomerID, string(key.Bucket))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var series []model.RevenueObservation
	for rows.Next() {
		var monthStr string
		var revenue float64
		var updatedAt int64
		if err := rows.Scan(&monthStr, &revenue, &updatedAt); err != nil {
			return nil, err
		}
		month, err := time.ParseInLocation(monthLayout, monthStr, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("parse month %q: %w", monthStr, err)
		}
		series = append(series, model.RevenueObservation{
			CustomerID: key.CustomerID,
			Bucket:     key.Bucket,
			Month:      month,
			Revenue:    revenue,
			UpdatedAt:  time.Unix(updatedAt, 0).UTC(),
		})
	}
	return series, rows.Err()
}

func (s *SQLiteStore) Pairs() ([]model.PairKey, error) {
	rows, err := s.db.Query(`SELECT DISTINCT customer_id, bucket
		FROM revenue_observations ORDER BY customer_id, bucket`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pairs []model.PairKey
	for rows.Next() {
		var key model.PairKey
		var bucket string
		if err := rows.Scan(&key.CustomerID, &bucket); err != nil {
			return nil, err
		}
		key.Bucket = model.Bucket(bucket)
		pairs = append(pairs, key)
	}
	return pairs, rows.Err()
}

func (s *SQLiteStore) Classification(key model.PairKey) (*model.Classification, error) {
	row := s.db.QueryRow(`SELECT `+classColumns+`
		FROM classifications WHERE customer_id = ? AND bucket = ?`,
		key.CustomerID, string(key.Bucket))
	c, err := scanClassification(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return c, err
}

// SaveClassification holds the store lock across the read-modify-write so a
// racing writer cannot observe the same previous snapshot.
func (s *SQLiteStore) SaveClassification(c *model.Classification) (*model.Classification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.Classification(model.PairKey{CustomerID: c.CustomerID, Bucket: c.Bucket})
	if err != nil {
		return nil, fmt.Errorf("read existing classification: %w", err)
	}
	fillPrevious(c, existing)

	_, err = s.db.Exec(`INSERT INTO classifications
		(customer_id, bucket, category, action, confidence, priority_score,
		 dollars_at_risk, dollars_opp, rationale, months_analyzed,
		 avg_revenue, latest_revenue, trend_slope, computed_at,
		 previous_category, previous_priority, status_changed_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(customer_id, bucket) DO UPDATE SET
			category = excluded.category,
			action = excluded.action,
			confidence = excluded.confidence,
			priority_score = excluded.priority_score,
			dollars_at_risk = excluded.dollars_at_risk,
			dollars_opp = excluded.dollars_opp,
			rationale = excluded.rationale,
			months_analyzed = excluded.months_analyzed,
			avg_revenue = excluded.avg_revenue,
			latest_revenue = excluded.latest_revenue,
			trend_slope = excluded.trend_slope,
			computed_at = excluded.computed_at,
			previous_category = excluded.previous_category,
			previous_priority = excluded.previous_priority,
			status_changed_at = excluded.status_changed_at`,
		c.CustomerID, string(c.Bucket), string(c.Category), c.Action,
		string(c.Confidence), c.PriorityScore, c.DollarsAtRisk, c.DollarsOpp,
		c.Rationale, c.MonthsAnalyzed, c.AvgRevenue, c.LatestRevenue,
		c.TrendSlope, c.ComputedAt.Unix(),
		string(c.PreviousCategory), c.PreviousPriority, unixOrZero(c.StatusChangedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("upsert classification: %w", err)
	}
	return existing, nil
}

func (s *SQLiteStore) ListClassifications(q Query) ([]model.Classification, error) {
	var conds []string
	var args []any

	if q.CustomerID != "" {
		conds = append(conds, "customer_id = ?")
		args = append(args, q.CustomerID)
	}
	if q.Bucket != "" {
		conds = append(conds, "bucket = ?")
		args = append(args, string(q.Bucket))
	}
	if len(q.Categories) > 0 {
		ph := make([]string, len(q.Categories))
		for i, cat := range q.Categories {
			ph[i] = "?"
			args = append(args, string(cat))
		}
		conds = append(conds, "category IN ("+strings.Join(ph, ",")+")")
	}
	if q.Action != "" {
		conds = append(conds, "action = ?")
		args = append(args, q.Action)
	}
	if q.MinPriority > 0 {
		conds = append(conds, "priority_score >= ?")
		args = append(args, q.MinPriority)
	}

	query := `SELECT ` + classColumns + ` FROM classifications`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY priority_score DESC, customer_id ASC"
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Classification
	for rows.Next() {
		c, err := scanClassification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) RecordRun(run *RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`INSERT INTO analysis_runs
		(run_id, started_at, finished_at, analyzed, actionable, skipped, failed)
		VALUES (?,?,?,?,?,?,?)`,
		run.ID, run.StartedAt.Unix(), run.FinishedAt.Unix(),
		run.Analyzed, run.Actionable, run.Skipped, run.Failed,
	)
	return err
}

func (s *SQLiteStore) Close() error {
	log.Println("[INFO] closing sqlite store")
	return s.db.Close()
}

const classColumns = `customer_id, bucket, category, action, confidence,
	priority_score, dollars_at_risk, dollars_opp, rationale, months_analyzed,
	avg_revenue, latest_revenue, trend_slope, computed_at,
	previous_category, previous_priority, status_changed_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClassification(row rowScanner) (*model.Classification, error) {
	var c model.Classification
	var bucket, category, confidence, prevCategory string
	var computedAt, statusChangedAt int64
	err := row.Scan(&c.CustomerID, &bucket, &category, &c.Action, &confidence,
		&c.PriorityScore, &c.DollarsAtRisk, &c.DollarsOpp, &c.Rationale,
		&c.MonthsAnalyzed, &c.AvgRevenue, &c.LatestRevenue, &c.TrendSlope,
		&computedAt, &prevCategory, &c.PreviousPriority, &statusChangedAt)
	if err != nil {
		return nil, err
	}
	c.Bucket = model.Bucket(bucket)
	c.Category = model.Category(category)
	c.Confidence = model.Confidence(confidence)
	c.PreviousCategory = model.Category(prevCategory)
	c.ComputedAt = time.Unix(computedAt, 0).UTC()
	if statusChangedAt > 0 {
		c.StatusChangedAt = time.Unix(statusChangedAt, 0).UTC()
	}
	return &c, nil
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}
