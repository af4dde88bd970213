package engine

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/pankaj-dahiya-devops/deploy-bootstrap/internal/budget"
	"github.com/pankaj-dahiya-devops/deploy-bootstrap/internal/models"
	"github.com/pankaj-dahiya-devops/deploy-bootstrap/internal/providers/aws/common"
	"github.com/pankaj-dahiya-devops/deploy-bootstrap/internal/providers/aws/spend"
)

type stubProvider struct {
	profile *common.ProfileConfig
	err     error
}

func (p stubProvider) LoadProfile(context.Context, string) (*common.ProfileConfig, error) {
	return p.profile, p.err
}

type stubCollector struct {
	snap *models.SpendSnapshot
	err  error
	opts spend.Options
}

func (c *stubCollector) CollectSpend(_ context.Context, _ *common.ProfileConfig, opts spend.Options) (*models.SpendSnapshot, error) {
	c.opts = opts
	return c.snap, c.err
}

var billingProfile = &common.ProfileConfig{ProfileName: "billing", AccountID: "738605694078"}

func TestBudgetEngine_Status(t *testing.T) {
	cfg, err := budget.Default()
	if err != nil {
		t.Fatal(err)
	}
	cfg.UseBlended = true

	col := &stubCollector{snap: &models.SpendSnapshot{ActualUSD: 1100, ForecastUSD: 1400, HasForecast: true}}
	eng := NewBudgetEngine(stubProvider{profile: billingProfile}, col, nil)

	report, err := eng.Status(context.Background(), cfg, BudgetOptions{Source: spend.SourceCostExplorer})
	if err != nil {
		t.Fatalf("Status error: %v", err)
	}

	if report.AccountID != "738605694078" || report.Profile != "billing" || report.LimitUSD != 1500 {
		t.Errorf("unexpected report header %+v", report)
	}
	if col.opts.Metric != budget.MetricBlended {
		t.Errorf("collector metric = %q, want %q", col.opts.Metric, budget.MetricBlended)
	}
	if col.opts.Source != spend.SourceCostExplorer {
		t.Errorf("collector source = %q", col.opts.Source)
	}

	// 1100 crosses 70% (1050) only; forecast 1400 stays under 110% (1650).
	var states []models.RuleState
	for _, ev := range report.Evaluations {
		states = append(states, ev.State)
	}
	want := []models.RuleState{models.RuleTriggered, models.RuleOK, models.RuleOK, models.RuleOK}
	for i := range want {
		if states[i] != want[i] {
			t.Errorf("states = %v, want %v", states, want)
			break
		}
	}
}

func TestBudgetEngine_InvalidDeclaration(t *testing.T) {
	cfg, _ := budget.Default()
	cfg.MonthlyBudgetLimit = 0

	col := &stubCollector{}
	_, err := NewBudgetEngine(stubProvider{profile: billingProfile}, col, nil).
		Status(context.Background(), cfg, BudgetOptions{})
	if err == nil || !strings.Contains(err.Error(), "monthly_budget_limit") {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestBudgetEngine_ProfileError(t *testing.T) {
	cfg, _ := budget.Default()
	_, err := NewBudgetEngine(stubProvider{err: errors.New("no credentials")}, &stubCollector{}, nil).
		Status(context.Background(), cfg, BudgetOptions{Profile: "x"})
	if err == nil || !strings.Contains(err.Error(), "no credentials") {
		t.Fatalf("expected profile error, got %v", err)
	}
}

func TestBudgetEngine_CollectError(t *testing.T) {
	cfg, _ := budget.Default()
	col := &stubCollector{err: errors.New("AccessDeniedException")}
	_, err := NewBudgetEngine(stubProvider{profile: billingProfile}, col, nil).
		Status(context.Background(), cfg, BudgetOptions{})
	if err == nil || !strings.Contains(err.Error(), "AccessDeniedException") {
		t.Fatalf("expected collector error, got %v", err)
	}
}
