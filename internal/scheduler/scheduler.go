package scheduler

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/robfig/cron/v3"

	"RevenueSentinel/internal/analyzer"
	"RevenueSentinel/internal/config"
	"RevenueSentinel/internal/feed"
	"RevenueSentinel/internal/report"
	"RevenueSentinel/internal/store"
)

// Scheduler triggers batch analysis runs. The engine itself has no internal
// timer; re-analysis happens only on these external triggers: the cron
// schedule, a feed delivery, or a manual run.
type Scheduler struct {
	Cron     *cron.Cron
	Analyzer *analyzer.Analyzer
	Store    store.Store
	Cfg      *config.Config
	Ctx      context.Context
}

func NewScheduler(ctx context.Context, a *analyzer.Analyzer, st store.Store, cfg *config.Config) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Analyzer: a,
		Store:    st,
		Cfg:      cfg,
		Ctx:      ctx,
	}
}

// RegisterAll registers the scheduled analysis task.
func (s *Scheduler) RegisterAll(analyzeCron string) error {
	if _, err := s.Cron.AddFunc(analyzeCron, s.analyzeTask); err != nil {
		return fmt.Errorf("register analyze task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunNow executes a batch analysis immediately (manual re-analyze trigger).
func (s *Scheduler) RunNow() {
	s.analyzeTask()
}

// ImportDelivery ingests a CSV delivery and immediately re-analyzes.
func (s *Scheduler) ImportDelivery(path string) error {
	res, err := feed.ImportFile(path, s.Store)
	if err != nil {
		return fmt.Errorf("import delivery: %w", err)
	}
	for _, re := range res.Rejected {
		log.Printf("[WARN] rejected row: %v", re)
	}
	s.analyzeTask()
	return nil
}

func (s *Scheduler) analyzeTask() {
	if s.Cfg.Feed.WatchDir != "" {
		s.importPending()
	}

	sum, err := s.Analyzer.Run()
	if err != nil {
		log.Printf("[ERROR] analysis run: %v", err)
		return
	}

	fmt.Print(report.FormatRunSummary(sum))
	fmt.Print(report.FormatChangeDigest(sum.Changes))

	classifications, err := s.Store.ListClassifications(store.Query{})
	if err != nil {
		log.Printf("[ERROR] list classifications: %v", err)
		return
	}
	fmt.Print(report.FormatAttentionList(classifications, s.Cfg.Analysis))
}

// importPending ingests any CSV deliveries waiting in the watch directory,
// oldest first, renaming each to *.done afterwards so it is not re-read.
func (s *Scheduler) importPending() {
	entries, err := filepath.Glob(filepath.Join(s.Cfg.Feed.WatchDir, "*.csv"))
	if err != nil {
		log.Printf("[ERROR] scan feed dir: %v", err)
		return
	}
	sort.Strings(entries)

	for _, path := range entries {
		res, err := feed.ImportFile(path, s.Store)
		if err != nil {
			log.Printf("[ERROR] import %s: %v", path, err)
			continue
		}
		for _, re := range res.Rejected {
			log.Printf("[WARN] %s: rejected row: %v", path, re)
		}
		if err := os.Rename(path, path+".done"); err != nil {
			log.Printf("[WARN] mark %s done: %v", path, err)
		}
	}
}
