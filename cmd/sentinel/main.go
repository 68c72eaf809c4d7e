package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"RevenueSentinel/internal/analyzer"
	"RevenueSentinel/internal/config"
	"RevenueSentinel/internal/scheduler"
	"RevenueSentinel/internal/store"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] RevenueSentinel starting...")

	importPath := flag.String("import", "", "import a CSV delivery, re-analyze, and exit")
	once := flag.Bool("once", false, "run one analysis batch and exit")
	flag.Parse()

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Init store
	var st store.Store
	if cfg.Database.SQLitePath != "" {
		ss, err := store.NewSQLiteStore(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite store failed, using in-memory: %v", err)
			st = store.NewMemoryStore()
		} else {
			st = ss
			defer ss.Close()
		}
	} else {
		st = store.NewMemoryStore()
	}

	// Init engine
	eng := analyzer.New(st, cfg.Analysis)

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.NewScheduler(ctx, eng, st, cfg)

	// One-shot modes
	if *importPath != "" {
		if err := sched.ImportDelivery(*importPath); err != nil {
			log.Fatalf("[FATAL] import delivery: %v", err)
		}
		return
	}
	if *once {
		sched.RunNow()
		return
	}

	// Scheduled mode
	if err := sched.RegisterAll(cfg.Schedule.AnalyzeCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing analysis now")
		go sched.RunNow()
	}

	log.Println("[INFO] RevenueSentinel is running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] RevenueSentinel stopped")
}
