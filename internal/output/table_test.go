package output_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pankaj-dahiya-devops/deploy-bootstrap/internal/models"
	"github.com/pankaj-dahiya-devops/deploy-bootstrap/internal/output"
)

// ── helpers ───────────────────────────────────────────────────────────────────

func makeReport(evals []models.RuleEvaluation, hasForecast bool) *models.BudgetReport {
	return &models.BudgetReport{
		Name:      "cineos-monthly",
		AccountID: "738605694078",
		Profile:   "billing",
		LimitUSD:  1500,
		Spend: models.SpendSnapshot{
			Source:      "costexplorer",
			Metric:      "UnblendedCost",
			PeriodStart: "2026-10-01",
			PeriodEnd:   "2026-10-20",
			ActualUSD:   1100,
			ForecastUSD: 1700,
			HasForecast: hasForecast,
		},
		Evaluations: evals,
	}
}

func eval(pct float64, typ models.ThresholdType, state models.RuleState) models.RuleEvaluation {
	return models.RuleEvaluation{
		Rule: models.BudgetAlertRule{
			ThresholdPercentage: pct,
			ThresholdType:       typ,
			EmailAddresses:      []string{"platform@cineos.io", "finance@cineos.io"},
		},
		ThresholdUSD: 1500 * pct / 100,
		ComparedUSD:  1100,
		State:        state,
	}
}

func render(report *models.BudgetReport, opts output.TableOptions) string {
	var buf bytes.Buffer
	output.RenderBudgetReport(&buf, report, opts)
	return buf.String()
}

// ── RenderBudgetReport ───────────────────────────────────────────────────────

func TestRenderBudgetReport_Header(t *testing.T) {
	out := render(makeReport(nil, true), output.TableOptions{})

	for _, want := range []string{"cineos-monthly", "738605694078", "billing", "2026-10-01", "UnblendedCost", "$1500.00", "$1100.00", "$1700.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\ngot:\n%s", want, out)
		}
	}
	if !strings.Contains(out, "No alert rules.") {
		t.Errorf("expected empty-rules message\ngot:\n%s", out)
	}
}

func TestRenderBudgetReport_ForecastUnavailable(t *testing.T) {
	out := render(makeReport(nil, false), output.TableOptions{})
	if !strings.Contains(out, "Forecast:  unavailable") {
		t.Errorf("expected unavailable forecast\ngot:\n%s", out)
	}
}

func TestRenderBudgetReport_Rows(t *testing.T) {
	evals := []models.RuleEvaluation{
		eval(70, models.ThresholdActual, models.RuleTriggered),
		eval(100, models.ThresholdActual, models.RuleOK),
		eval(110, models.ThresholdForecasted, models.RuleUnknown),
	}
	out := render(makeReport(evals, false), output.TableOptions{})

	for _, want := range []string{"THRESHOLD", "RECIPIENTS", "70%", "110%", "FORECASTED", "TRIGGERED", "UNKNOWN", "$1050.00", "platform@cineos.io, finance@cineos.io"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\ngot:\n%s", want, out)
		}
	}

	// The UNKNOWN row shows no compared amount.
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "UNKNOWN") && strings.Contains(line, "$1100.00") {
			t.Errorf("UNKNOWN row should not show a compared amount: %q", line)
		}
	}
}

func TestRenderBudgetReport_NoColorByDefault(t *testing.T) {
	out := render(makeReport([]models.RuleEvaluation{eval(70, models.ThresholdActual, models.RuleTriggered)}, true), output.TableOptions{})
	if strings.Contains(out, "\033[") {
		t.Errorf("output must not contain ANSI codes when Colored=false\ngot:\n%q", out)
	}
}

func TestRenderBudgetReport_Colored(t *testing.T) {
	out := render(makeReport([]models.RuleEvaluation{eval(70, models.ThresholdActual, models.RuleTriggered)}, true), output.TableOptions{Colored: true})
	if !strings.Contains(out, "\033[1;31mTRIGGERED\033[0m") {
		t.Errorf("expected red TRIGGERED\ngot:\n%q", out)
	}
}

// ── ColorState / ShortenMessage ──────────────────────────────────────────────

func TestColorState(t *testing.T) {
	if got := output.ColorState(models.RuleOK, false); got != "OK" {
		t.Errorf("uncolored = %q", got)
	}
	if got := output.ColorState(models.RuleUnknown, true); !strings.HasPrefix(got, "\033[0;33m") {
		t.Errorf("UNKNOWN should be yellow; got %q", got)
	}
}

func TestShortenMessage(t *testing.T) {
	if got := output.ShortenMessage("short", 10); got != "short" {
		t.Errorf("got %q", got)
	}
	if got := output.ShortenMessage("abcdefghijkl", 8); got != "abcde..." {
		t.Errorf("got %q", got)
	}
	if got := output.ShortenMessage("abcdefgh", 1); got != "a..." {
		t.Errorf("min width: got %q", got)
	}
}

// ── RenderTargets ────────────────────────────────────────────────────────────

func TestRenderTargets(t *testing.T) {
	var buf bytes.Buffer
	output.RenderTargets(&buf, []output.NamedTarget{
		{Repository: "cineos", Target: models.DeploymentTarget{
			AppName: "cineos", Registry: "738605694078.dkr.ecr.us-east-1.amazonaws.com/cineos",
			Cluster: "cineos-prod", Service: "cineos-prod",
		}},
		{Repository: "cineos-website", Target: models.DeploymentTarget{
			AppName: "cineos-website", Registry: "N/A", Cluster: "N/A", Service: "N/A",
		}},
	})
	out := buf.String()

	for _, want := range []string{"REPOSITORY", "REGISTRY", "cineos-prod", "738605694078.dkr.ecr.us-east-1.amazonaws.com/cineos", "cineos-website", "N/A"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\ngot:\n%s", want, out)
		}
	}
}

func TestRenderTargets_Empty(t *testing.T) {
	var buf bytes.Buffer
	output.RenderTargets(&buf, nil)
	if strings.TrimSpace(buf.String()) != "No targets." {
		t.Errorf("got %q", buf.String())
	}
}
