package budget

import "github.com/pankaj-dahiya-devops/deploy-bootstrap/internal/models"

// Cost Explorer metric names selected by the accounting-mode flags.
const (
	MetricUnblended = "UnblendedCost"
	MetricBlended   = "BlendedCost"
	MetricAmortized = "AmortizedCost"
)

// MetricFor returns the Cost Explorer metric matching the accounting mode of
// ct. Amortized wins over blended when both are set, as in the AWS Budgets
// API.
func MetricFor(ct models.CostTypes) string {
	switch {
	case ct.UseAmortized:
		return MetricAmortized
	case ct.UseBlended:
		return MetricBlended
	default:
		return MetricUnblended
	}
}

// Evaluate compares spend against every notification threshold of cfg, in
// declaration order.
//
// An ACTUAL rule is TRIGGERED when actual spend reaches limit × pct / 100.
// A FORECASTED rule compares the forecast instead and is UNKNOWN when the
// snapshot carries no forecast.
func Evaluate(cfg *Config, spend models.SpendSnapshot) []models.RuleEvaluation {
	evals := make([]models.RuleEvaluation, 0, len(cfg.NotificationThresholds))
	for _, rule := range cfg.NotificationThresholds {
		threshold := cfg.MonthlyBudgetLimit * rule.ThresholdPercentage / 100

		ev := models.RuleEvaluation{Rule: rule, ThresholdUSD: threshold}
		switch rule.ThresholdType {
		case models.ThresholdForecasted:
			if !spend.HasForecast {
				ev.State = models.RuleUnknown
				evals = append(evals, ev)
				continue
			}
			ev.ComparedUSD = spend.ForecastUSD
		default:
			ev.ComparedUSD = spend.ActualUSD
		}

		if ev.ComparedUSD >= threshold {
			ev.State = models.RuleTriggered
		} else {
			ev.State = models.RuleOK
		}
		evals = append(evals, ev)
	}
	return evals
}

// CountTriggered returns the number of evaluations in the TRIGGERED state.
func CountTriggered(evals []models.RuleEvaluation) int {
	n := 0
	for _, ev := range evals {
		if ev.State == models.RuleTriggered {
			n++
		}
	}
	return n
}
