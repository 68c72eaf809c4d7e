package config

import (
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

// Analysis holds the named numeric thresholds the engine reads once per batch
// run. It is passed explicitly through every call, never read from a global.
type Analysis struct {
	// Revenue gates
	MinRevenueForOutreach float64 `yaml:"min_revenue_for_outreach"`
	MinDollarImpact       float64 `yaml:"min_dollar_impact"`
	AtRiskOverride        float64 `yaml:"at_risk_override"`
	OpportunityOverride   float64 `yaml:"opportunity_override"`

	// Revenue tiers
	HighValueThreshold float64 `yaml:"high_value_threshold"`
	StrategicThreshold float64 `yaml:"strategic_threshold"`

	// Category thresholds
	VolatileMinRevenue       float64 `yaml:"volatile_min_revenue"`
	RecentDropThreshold      float64 `yaml:"recent_drop_threshold"`
	ExpansionGrowthThreshold float64 `yaml:"expansion_growth_threshold"`
	SteepDeclineThreshold    float64 `yaml:"steep_decline_threshold"`
	VolatilityFloor          float64 `yaml:"volatility_floor"`
	PeakDepletionThreshold   float64 `yaml:"peak_depletion_threshold"`

	// Window handling
	ProvisionalMonths    int `yaml:"provisional_months"`
	HighConfidenceMonths int `yaml:"high_confidence_months"`

	// Change tracking
	PriorityNoise int `yaml:"priority_noise"`
}

// Config holds all application configuration.
type Config struct {
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Feed struct {
		WatchDir string `yaml:"watch_dir"`
	} `yaml:"feed"`
	Schedule struct {
		AnalyzeCron string `yaml:"analyze_cron"`
	} `yaml:"schedule"`
	Analysis Analysis `yaml:"analysis"`
}

// DefaultAnalysis returns the documented default thresholds.
func DefaultAnalysis() Analysis {
	return Analysis{
		MinRevenueForOutreach:    3000,
		MinDollarImpact:          1000,
		AtRiskOverride:           2000,
		OpportunityOverride:      1500,
		HighValueThreshold:       25000,
		StrategicThreshold:       50000,
		VolatileMinRevenue:       5000,
		RecentDropThreshold:      -0.15,
		ExpansionGrowthThreshold: 0.08,
		SteepDeclineThreshold:    -0.10,
		VolatilityFloor:          0.15,
		PeakDepletionThreshold:   0.70,
		ProvisionalMonths:        1,
		HighConfidenceMonths:     6,
		PriorityNoise:            5,
	}
}

// Load reads config from a YAML file, then applies environment variable
// overrides. A missing file is not an error; defaults are substituted for
// any missing or malformed threshold and the substitution is logged.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("FEED_WATCH_DIR"); v != "" {
		cfg.Feed.WatchDir = v
	}
	if v := os.Getenv("CRON_ANALYZE"); v != "" {
		cfg.Schedule.AnalyzeCron = v
	}

	// Defaults
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/revenue_sentinel.db"
	}
	if cfg.Schedule.AnalyzeCron == "" {
		cfg.Schedule.AnalyzeCron = "0 0 7 * * *"
	}
	cfg.Analysis = cfg.Analysis.withDefaults()

	return cfg, nil
}

// withDefaults substitutes documented defaults for zero or nonsensical
// thresholds so a single missing value never fails a batch run.
func (a Analysis) withDefaults() Analysis {
	def := DefaultAnalysis()
	sub := func(name string, field *float64, fallback float64, bad bool) {
		if bad {
			log.Printf("[WARN] config: analysis.%s missing or invalid, using default %g", name, fallback)
			*field = fallback
		}
	}

	sub("min_revenue_for_outreach", &a.MinRevenueForOutreach, def.MinRevenueForOutreach, a.MinRevenueForOutreach <= 0)
	sub("min_dollar_impact", &a.MinDollarImpact, def.MinDollarImpact, a.MinDollarImpact <= 0)
	sub("at_risk_override", &a.AtRiskOverride, def.AtRiskOverride, a.AtRiskOverride <= 0)
	sub("opportunity_override", &a.OpportunityOverride, def.OpportunityOverride, a.OpportunityOverride <= 0)
	sub("high_value_threshold", &a.HighValueThreshold, def.HighValueThreshold, a.HighValueThreshold <= 0)
	sub("strategic_threshold", &a.StrategicThreshold, def.StrategicThreshold, a.StrategicThreshold <= 0)
	sub("volatile_min_revenue", &a.VolatileMinRevenue, def.VolatileMinRevenue, a.VolatileMinRevenue <= 0)
	sub("recent_drop_threshold", &a.RecentDropThreshold, def.RecentDropThreshold, a.RecentDropThreshold >= 0)
	sub("expansion_growth_threshold", &a.ExpansionGrowthThreshold, def.ExpansionGrowthThreshold, a.ExpansionGrowthThreshold <= 0)
	sub("steep_decline_threshold", &a.SteepDeclineThreshold, def.SteepDeclineThreshold, a.SteepDeclineThreshold >= 0)
	sub("volatility_floor", &a.VolatilityFloor, def.VolatilityFloor, a.VolatilityFloor <= 0)
	sub("peak_depletion_threshold", &a.PeakDepletionThreshold, def.PeakDepletionThreshold, a.PeakDepletionThreshold <= 0 || a.PeakDepletionThreshold >= 1)

	if a.ProvisionalMonths <= 0 {
		a.ProvisionalMonths = def.ProvisionalMonths
	}
	if a.HighConfidenceMonths <= 0 {
		log.Printf("[WARN] config: analysis.high_confidence_months missing, using default %d", def.HighConfidenceMonths)
		a.HighConfidenceMonths = def.HighConfidenceMonths
	}
	if a.PriorityNoise <= 0 {
		a.PriorityNoise = def.PriorityNoise
	}
	return a
}

// Validate checks that the loaded configuration is internally consistent.
func (c *Config) Validate() error {
	if c.Database.SQLitePath == "" {
		return fmt.Errorf("database.sqlite_path is required")
	}
	if c.Analysis.StrategicThreshold < c.Analysis.HighValueThreshold {
		return fmt.Errorf("analysis.strategic_threshold must be >= high_value_threshold")
	}
	if c.Analysis.SteepDeclineThreshold >= 0 {
		return fmt.Errorf("analysis.steep_decline_threshold must be negative")
	}
	if c.Analysis.RecentDropThreshold >= 0 {
		return fmt.Errorf("analysis.recent_drop_threshold must be negative")
	}
	return nil
}
