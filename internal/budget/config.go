package budget

import "github.com/pankaj-dahiya-devops/deploy-bootstrap/internal/models"

// Config is a budget declaration: the inputs of the external budget module.
type Config struct {
	Version int    `yaml:"version" json:"-"`
	Name    string `yaml:"name"    json:"budget_name"`

	// MonthlyBudgetLimit is in the unit of the external module (USD).
	MonthlyBudgetLimit float64 `yaml:"monthly_budget_limit" json:"monthly_budget_limit"`

	AlertEmailAddresses    []string                 `yaml:"alert_email_addresses"   json:"alert_email_addresses"`
	NotificationThresholds []models.BudgetAlertRule `yaml:"notification_thresholds" json:"notification_thresholds"`

	models.CostTypes `yaml:",inline"`

	Tags map[string]string `yaml:"tags" json:"tags"`
}

// DefaultCostTypes mirrors the defaults of the external module: every cost
// category included, unblended and unamortized accounting.
func DefaultCostTypes() models.CostTypes {
	return models.CostTypes{
		IncludeCredit:            true,
		IncludeDiscount:          true,
		IncludeOtherSubscription: true,
		IncludeRecurring:         true,
		IncludeRefund:            true,
		IncludeSubscription:      true,
		IncludeSupport:           true,
		IncludeTax:               true,
		IncludeUpfront:           true,
	}
}
