// Package report renders batch results for the dashboard collaborators.
package report

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"RevenueSentinel/internal/analyzer"
	"RevenueSentinel/internal/config"
	"RevenueSentinel/internal/model"
)

// FormatRunSummary formats one batch run's outcome.
func FormatRunSummary(sum *analyzer.Summary) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Revenue analysis run %s | %s\n", sum.RunID, sum.StartedAt.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("  analyzed: %d | actionable: %d | skipped: %d | failed: %d\n",
		sum.Analyzed, sum.Actionable, sum.Skipped, sum.Failed))

	if len(sum.Errors) > 0 {
		b.WriteString("  failures:\n")
		for _, e := range sum.Errors {
			b.WriteString(fmt.Sprintf("    %s\n", e.Error()))
		}
	}
	return b.String()
}

// FormatChangeDigest lists what changed since the previous run.
func FormatChangeDigest(changes []model.ChangeEvent) string {
	if len(changes) == 0 {
		return "No status changes since last run.\n"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Status changes (%d):\n", len(changes)))
	for _, c := range changes {
		from := string(c.From)
		if from == "" {
			from = "(new)"
		}
		b.WriteString(fmt.Sprintf("  [%s] %s/%s: %s -> %s\n",
			c.Change, c.CustomerID, c.Bucket, from, c.To))
	}
	return b.String()
}

// FormatAttentionList renders the classifications that clear the dashboard
// inclusion gates: at-risk dollars at or above the at-risk override, or
// opportunity dollars at or above the opportunity override. The overrides
// gate inclusion only; they never cap the computed values.
func FormatAttentionList(classifications []model.Classification, cfg config.Analysis) string {
	var b strings.Builder
	b.WriteString("Accounts needing attention:\n")

	shown := 0
	for _, c := range classifications {
		if c.DollarsAtRisk < cfg.AtRiskOverride && c.DollarsOpp < cfg.OpportunityOverride {
			continue
		}
		shown++
		impact := c.DollarsAtRisk
		impactLabel := "at risk"
		if c.DollarsOpp > impact {
			impact = c.DollarsOpp
			impactLabel = "opportunity"
		}
		b.WriteString(fmt.Sprintf("  %3d | %s/%s | %s | %s | ~$%s/mo %s\n",
			c.PriorityScore, c.CustomerID, c.Bucket, c.Category, c.Action,
			humanize.CommafWithDigits(impact, 0), impactLabel))
		b.WriteString(fmt.Sprintf("        %s\n", c.Rationale))
	}

	if shown == 0 {
		return "Accounts needing attention: none above dollar-impact gates.\n"
	}
	return b.String()
}
