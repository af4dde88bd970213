package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/pankaj-dahiya-devops/deploy-bootstrap/internal/models"
)

// ANSI color codes for rule state output (used when Colored=true).
const (
	ansiReset   = "\033[0m"
	ansiBoldRed = "\033[1;31m"
	ansiGreen   = "\033[0;32m"
	ansiYellow  = "\033[0;33m"
)

// TableOptions controls how tables are rendered.
type TableOptions struct {
	// Colored wraps rule states with ANSI codes. Default false (CI-safe).
	Colored bool
}

// NamedTarget pairs a repository name with its deployment target.
type NamedTarget struct {
	Repository string                  `json:"repository"`
	Target     models.DeploymentTarget `json:"target"`
}

// ColorState wraps a rule state with ANSI codes when colored is true.
// When colored is false the string is returned unchanged (CI-safe default).
func ColorState(state models.RuleState, colored bool) string {
	s := string(state)
	if !colored {
		return s
	}
	switch state {
	case models.RuleTriggered:
		return ansiBoldRed + s + ansiReset
	case models.RuleOK:
		return ansiGreen + s + ansiReset
	case models.RuleUnknown:
		return ansiYellow + s + ansiReset
	default:
		return s
	}
}

// ShortenMessage truncates msg to at most max runes, appending "..." when truncated.
// max is treated as at least 4 to guarantee space for the ellipsis.
func ShortenMessage(msg string, max int) string {
	if max < 4 {
		max = 4
	}
	runes := []rune(msg)
	if len(runes) <= max {
		return msg
	}
	return string(runes[:max-3]) + "..."
}

// stateCell returns the state padded to width characters.
// When colored, ANSI codes wrap only the text; trailing padding spaces are plain
// so subsequent columns stay visually aligned regardless of terminal ANSI support.
func stateCell(state models.RuleState, width int, colored bool) string {
	text := string(state)
	if !colored {
		return fmt.Sprintf("%-*s", width, text)
	}
	spaces := width - len(text)
	if spaces < 0 {
		spaces = 0
	}
	return ColorState(state, true) + strings.Repeat(" ", spaces)
}

// truncateField shortens s to at most max bytes for ID/label columns.
func truncateField(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "~"
}

// RenderTargets writes the known repository table to w.
//
// Column order:
//
//	REPOSITORY  APP  CLUSTER  SERVICE  REGISTRY
func RenderTargets(w io.Writer, rows []NamedTarget) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No targets.")
		return
	}

	const (
		wRepo    = 20
		wApp     = 20
		wCluster = 20
		wService = 22
	)

	header := fmt.Sprintf("%-*s  %-*s  %-*s  %-*s  %s",
		wRepo, "REPOSITORY", wApp, "APP", wCluster, "CLUSTER", wService, "SERVICE", "REGISTRY")
	fmt.Fprintln(w, header)
	fmt.Fprintln(w, strings.Repeat("-", len(header)+40))

	for _, r := range rows {
		fmt.Fprintf(w, "%-*s  %-*s  %-*s  %-*s  %s\n",
			wRepo, truncateField(r.Repository, wRepo),
			wApp, truncateField(r.Target.AppName, wApp),
			wCluster, truncateField(r.Target.Cluster, wCluster),
			wService, truncateField(r.Target.Service, wService),
			r.Target.Registry,
		)
	}
}

// RenderBudgetReport writes a budget status summary followed by one row per
// alert rule.
//
// Column order:
//
//	THRESHOLD  TYPE  LIMIT  COMPARED  STATE  RECIPIENTS
func RenderBudgetReport(w io.Writer, report *models.BudgetReport, opts TableOptions) {
	s := report.Spend

	fmt.Fprintf(w, "Budget:   %s\n", report.Name)
	fmt.Fprintf(w, "Account:  %s\n", report.AccountID)
	fmt.Fprintf(w, "Profile:  %s\n", report.Profile)
	fmt.Fprintf(w, "Period:   %s .. %s (%s", s.PeriodStart, s.PeriodEnd, s.Source)
	if s.Metric != "" {
		fmt.Fprintf(w, ", %s", s.Metric)
	}
	fmt.Fprintln(w, ")")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Limit:     $%.2f\n", report.LimitUSD)
	fmt.Fprintf(w, "Actual:    $%.2f\n", s.ActualUSD)
	if s.HasForecast {
		fmt.Fprintf(w, "Forecast:  $%.2f\n", s.ForecastUSD)
	} else {
		fmt.Fprintln(w, "Forecast:  unavailable")
	}
	fmt.Fprintln(w)

	if len(report.Evaluations) == 0 {
		fmt.Fprintln(w, "No alert rules.")
		return
	}

	const (
		wThreshold = 9
		wType      = 10
		wAmount    = 12
		wState     = 10
		wRecip     = 50
	)

	header := fmt.Sprintf("%-*s  %-*s  %-*s  %-*s  %-*s  %s",
		wThreshold, "THRESHOLD", wType, "TYPE", wAmount, "LIMIT", wAmount, "COMPARED", wState, "STATE", "RECIPIENTS")
	fmt.Fprintln(w, header)
	fmt.Fprintln(w, strings.Repeat("-", len(header)+wRecip-len("RECIPIENTS")))

	for _, ev := range report.Evaluations {
		compared := "-"
		if ev.State != models.RuleUnknown {
			compared = fmt.Sprintf("$%.2f", ev.ComparedUSD)
		}
		fmt.Fprintf(w, "%-*s  %-*s  %-*s  %-*s  %s  %s\n",
			wThreshold, fmt.Sprintf("%g%%", ev.Rule.ThresholdPercentage),
			wType, string(ev.Rule.ThresholdType),
			wAmount, fmt.Sprintf("$%.2f", ev.ThresholdUSD),
			wAmount, compared,
			stateCell(ev.State, wState, opts.Colored),
			ShortenMessage(strings.Join(ev.Rule.EmailAddresses, ", "), wRecip),
		)
	}
}
