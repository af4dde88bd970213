package models

// ThresholdType selects which spend figure a budget alert rule is compared
// against.
type ThresholdType string

const (
	ThresholdActual     ThresholdType = "ACTUAL"
	ThresholdForecasted ThresholdType = "FORECASTED"
)

// BudgetAlertRule is one notification threshold of a budget declaration.
// Percentages above 100 are valid and conventionally paired with
// ThresholdForecasted to warn about a projected overage.
type BudgetAlertRule struct {
	ThresholdPercentage float64       `yaml:"threshold_percentage" json:"threshold_percentage"`
	ThresholdType       ThresholdType `yaml:"threshold_type"       json:"threshold_type"`
	EmailAddresses      []string      `yaml:"email_addresses"      json:"email_addresses"`

	// SNSTopicARN is an optional notification channel in addition to email.
	SNSTopicARN string `yaml:"sns_topic_arn,omitempty" json:"sns_topic_arn,omitempty"`
}

// CostTypes holds the cost-category inclusion flags and accounting-mode flags
// consumed verbatim by the external budget module.
type CostTypes struct {
	IncludeCredit            bool `yaml:"include_credit"             json:"include_credit"`
	IncludeDiscount          bool `yaml:"include_discount"           json:"include_discount"`
	IncludeOtherSubscription bool `yaml:"include_other_subscription" json:"include_other_subscription"`
	IncludeRecurring         bool `yaml:"include_recurring"          json:"include_recurring"`
	IncludeRefund            bool `yaml:"include_refund"             json:"include_refund"`
	IncludeSubscription      bool `yaml:"include_subscription"       json:"include_subscription"`
	IncludeSupport           bool `yaml:"include_support"            json:"include_support"`
	IncludeTax               bool `yaml:"include_tax"                json:"include_tax"`
	IncludeUpfront           bool `yaml:"include_upfront"            json:"include_upfront"`
	UseAmortized             bool `yaml:"use_amortized"              json:"use_amortized"`
	UseBlended               bool `yaml:"use_blended"                json:"use_blended"`
}

// RuleState is the outcome of evaluating one alert rule against spend data.
type RuleState string

const (
	RuleTriggered RuleState = "TRIGGERED"
	RuleOK        RuleState = "OK"
	RuleUnknown   RuleState = "UNKNOWN"
)

// SpendSnapshot is the spend data used to evaluate a budget.
type SpendSnapshot struct {
	// Source names the API the figures came from ("costexplorer" or "cloudwatch").
	Source string `json:"source"`

	// Metric is the Cost Explorer metric name, empty for CloudWatch.
	Metric string `json:"metric,omitempty"`

	PeriodStart string  `json:"period_start"`
	PeriodEnd   string  `json:"period_end"`
	ActualUSD   float64 `json:"actual_usd"`

	// ForecastUSD is the projected end-of-month spend. HasForecast is false
	// when the source cannot provide one.
	ForecastUSD float64 `json:"forecast_usd"`
	HasForecast bool    `json:"has_forecast"`
}

// RuleEvaluation pairs a rule with its computed state.
type RuleEvaluation struct {
	Rule         BudgetAlertRule `json:"rule"`
	ThresholdUSD float64         `json:"threshold_usd"`
	ComparedUSD  float64         `json:"compared_usd"`
	State        RuleState       `json:"state"`
}

// BudgetReport is the output of dpb budget status.
type BudgetReport struct {
	Name        string           `json:"name"`
	AccountID   string           `json:"account_id"`
	Profile     string           `json:"profile"`
	LimitUSD    float64          `json:"limit_usd"`
	Spend       SpendSnapshot    `json:"spend"`
	Evaluations []RuleEvaluation `json:"evaluations"`
}
