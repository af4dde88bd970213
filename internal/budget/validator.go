package budget

import (
	"fmt"
	"math"
	"net/mail"

	"github.com/pankaj-dahiya-devops/deploy-bootstrap/internal/models"
)

// Validate checks cfg for structural correctness and returns every problem
// found. An empty slice means the declaration is valid.
//
// Checks performed:
//   - version must be 1
//   - name must be set
//   - monthly_budget_limit must be positive
//   - alert_email_addresses must be non-empty and every entry a valid address
//   - each notification threshold must have a non-negative whole-number
//     percentage, a threshold type of ACTUAL or FORECASTED, and a non-empty
//     list of valid addresses
//
// Cross-field rules (for example amortized and blended together) are left to
// the external budget module.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{fmt.Errorf("budget config is nil")}
	}

	var errs []error

	if cfg.Version != 1 {
		errs = append(errs, fmt.Errorf("version: unsupported value %d; must be 1", cfg.Version))
	}
	if cfg.Name == "" {
		errs = append(errs, fmt.Errorf("name: must not be empty"))
	}
	if cfg.MonthlyBudgetLimit <= 0 {
		errs = append(errs, fmt.Errorf("monthly_budget_limit: must be positive; got %v", cfg.MonthlyBudgetLimit))
	}

	if len(cfg.AlertEmailAddresses) == 0 {
		errs = append(errs, fmt.Errorf("alert_email_addresses: must contain at least one address"))
	}
	errs = append(errs, validateAddresses("alert_email_addresses", cfg.AlertEmailAddresses)...)

	for i, rule := range cfg.NotificationThresholds {
		field := fmt.Sprintf("notification_thresholds[%d]", i)
		if rule.ThresholdPercentage < 0 {
			errs = append(errs, fmt.Errorf("%s.threshold_percentage: must not be negative; got %v", field, rule.ThresholdPercentage))
		}
		if rule.ThresholdPercentage != math.Trunc(rule.ThresholdPercentage) {
			errs = append(errs, fmt.Errorf("%s.threshold_percentage: must be a whole number; got %v", field, rule.ThresholdPercentage))
		}
		switch rule.ThresholdType {
		case models.ThresholdActual, models.ThresholdForecasted:
		default:
			errs = append(errs, fmt.Errorf("%s.threshold_type: invalid value %q; valid values: ACTUAL, FORECASTED", field, rule.ThresholdType))
		}
		if len(rule.EmailAddresses) == 0 {
			errs = append(errs, fmt.Errorf("%s.email_addresses: must contain at least one address", field))
		}
		errs = append(errs, validateAddresses(field+".email_addresses", rule.EmailAddresses)...)
	}

	return errs
}

// validateAddresses returns one error per entry that is not a bare RFC 5322
// address. Display-name forms ("Ops <ops@x>") are rejected because the budget
// API accepts plain addresses only.
func validateAddresses(field string, addrs []string) []error {
	var errs []error
	for i, a := range addrs {
		parsed, err := mail.ParseAddress(a)
		if err != nil || parsed.Address != a {
			errs = append(errs, fmt.Errorf("%s[%d]: invalid email address %q", field, i, a))
		}
	}
	return errs
}
