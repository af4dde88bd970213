package budget_test

import (
	"strings"
	"testing"

	"github.com/pankaj-dahiya-devops/deploy-bootstrap/internal/budget"
	"github.com/pankaj-dahiya-devops/deploy-bootstrap/internal/models"
)

func validConfig() *budget.Config {
	return &budget.Config{
		Version:             1,
		Name:                "test",
		MonthlyBudgetLimit:  100,
		AlertEmailAddresses: []string{"ops@example.com"},
		NotificationThresholds: []models.BudgetAlertRule{
			{ThresholdPercentage: 80, ThresholdType: models.ThresholdActual, EmailAddresses: []string{"ops@example.com"}},
			{ThresholdPercentage: 120, ThresholdType: models.ThresholdForecasted, EmailAddresses: []string{"cfo@example.com"}},
		},
		CostTypes: budget.DefaultCostTypes(),
	}
}

// ── happy path ────────────────────────────────────────────────────────────────

func TestValidate_Valid(t *testing.T) {
	if errs := budget.Validate(validConfig()); len(errs) != 0 {
		t.Errorf("expected no errors; got %d: %v", len(errs), errs)
	}
}

func TestValidate_NoThresholdsIsValid(t *testing.T) {
	cfg := validConfig()
	cfg.NotificationThresholds = nil
	if errs := budget.Validate(cfg); len(errs) != 0 {
		t.Errorf("expected no errors; got %v", errs)
	}
}

// ── individual failures ──────────────────────────────────────────────────────

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*budget.Config)
		want   string
	}{
		{"nil-safe version", func(c *budget.Config) { c.Version = 3 }, "version"},
		{"empty name", func(c *budget.Config) { c.Name = "" }, "name"},
		{"zero limit", func(c *budget.Config) { c.MonthlyBudgetLimit = 0 }, "monthly_budget_limit"},
		{"negative limit", func(c *budget.Config) { c.MonthlyBudgetLimit = -5 }, "monthly_budget_limit"},
		{"no alert addresses", func(c *budget.Config) { c.AlertEmailAddresses = nil }, "alert_email_addresses"},
		{"bad alert address", func(c *budget.Config) { c.AlertEmailAddresses = []string{"not-an-email"} }, "alert_email_addresses[0]"},
		{"display name address", func(c *budget.Config) { c.AlertEmailAddresses = []string{"Ops <ops@example.com>"} }, "alert_email_addresses[0]"},
		{"negative percentage", func(c *budget.Config) { c.NotificationThresholds[0].ThresholdPercentage = -1 }, "notification_thresholds[0].threshold_percentage"},
		{"fractional percentage", func(c *budget.Config) { c.NotificationThresholds[0].ThresholdPercentage = 70.5 }, "notification_thresholds[0].threshold_percentage: must be a whole number"},
		{"bad threshold type", func(c *budget.Config) { c.NotificationThresholds[1].ThresholdType = "PREDICTED" }, "notification_thresholds[1].threshold_type"},
		{"lowercase threshold type", func(c *budget.Config) { c.NotificationThresholds[0].ThresholdType = "actual" }, "notification_thresholds[0].threshold_type"},
		{"empty recipients", func(c *budget.Config) { c.NotificationThresholds[0].EmailAddresses = nil }, "notification_thresholds[0].email_addresses"},
		{"bad recipient", func(c *budget.Config) { c.NotificationThresholds[1].EmailAddresses = []string{"cfo@"} }, "notification_thresholds[1].email_addresses[0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			errs := budget.Validate(cfg)
			if len(errs) != 1 {
				t.Fatalf("expected 1 error; got %d: %v", len(errs), errs)
			}
			if !strings.Contains(errs[0].Error(), tt.want) {
				t.Errorf("error %q does not mention %q", errs[0], tt.want)
			}
		})
	}
}

func TestValidate_PercentAbove100IsValid(t *testing.T) {
	cfg := validConfig()
	cfg.NotificationThresholds[0].ThresholdPercentage = 250
	if errs := budget.Validate(cfg); len(errs) != 0 {
		t.Errorf("expected no errors; got %v", errs)
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := &budget.Config{
		Version: 2,
		NotificationThresholds: []models.BudgetAlertRule{
			{ThresholdPercentage: -1, ThresholdType: "X"},
		},
	}
	errs := budget.Validate(cfg)
	// version, name, limit, alert addresses, percentage, type, recipients
	if len(errs) != 7 {
		t.Errorf("expected 7 errors; got %d: %v", len(errs), errs)
	}
}

func TestValidate_Nil(t *testing.T) {
	if errs := budget.Validate(nil); len(errs) != 1 {
		t.Errorf("expected 1 error for nil config; got %v", errs)
	}
}
