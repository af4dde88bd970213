package spend

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	ce "github.com/aws/aws-sdk-go-v2/service/costexplorer"
	cetypes "github.com/aws/aws-sdk-go-v2/service/costexplorer/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pankaj-dahiya-devops/deploy-bootstrap/internal/models"
)

// forecastMetrics maps GetCostAndUsage metric names to the enum accepted by
// GetCostForecast.
var forecastMetrics = map[string]cetypes.Metric{
	"UnblendedCost": cetypes.MetricUnblendedCost,
	"BlendedCost":   cetypes.MetricBlendedCost,
	"AmortizedCost": cetypes.MetricAmortizedCost,
}

// collectFromCostExplorer queries month-to-date spend and, when days remain,
// the forecast for the rest of the month. The two calls run concurrently.
//
// The forecast is non-fatal: Cost Explorer refuses forecasts for accounts
// with too little history, in which case HasForecast is false.
func collectFromCostExplorer(
	ctx context.Context,
	client spendCEClient,
	period monthPeriod,
	opts Options,
	logger *zap.Logger,
) (*models.SpendSnapshot, error) {
	metric := opts.Metric
	if metric == "" {
		metric = "UnblendedCost"
	}
	forecastMetric, ok := forecastMetrics[metric]
	if !ok {
		return nil, fmt.Errorf("unsupported Cost Explorer metric %q", metric)
	}
	filter := recordTypeFilter(opts.CostTypes)

	var (
		actual      float64
		remaining   float64
		hasForecast bool
	)

	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		v, err := monthToDate(egCtx, client, period, metric, filter)
		if err != nil {
			return err
		}
		actual = v
		return nil
	})

	if period.HasRemainingDays() {
		eg.Go(func() error {
			v, err := forecastRemaining(egCtx, client, period, forecastMetric, filter)
			if err != nil {
				logger.Warn("cost forecast unavailable", zap.Error(err))
				return nil
			}
			remaining = v
			hasForecast = true
			return nil
		})
	} else {
		// Last day of the month: month-to-date is the month total.
		hasForecast = true
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	snap := &models.SpendSnapshot{
		Source:      string(SourceCostExplorer),
		Metric:      metric,
		PeriodStart: period.StartDate(),
		PeriodEnd:   period.EndDate(),
		ActualUSD:   actual,
		HasForecast: hasForecast,
	}
	if hasForecast {
		snap.ForecastUSD = actual + remaining
	}
	return snap, nil
}

// monthToDate sums metric over [period.Start, period.Tomorrow) across all
// result pages.
func monthToDate(
	ctx context.Context,
	client spendCEClient,
	period monthPeriod,
	metric string,
	filter *cetypes.Expression,
) (float64, error) {
	var total float64
	var nextToken *string
	for {
		out, err := client.GetCostAndUsage(ctx, &ce.GetCostAndUsageInput{
			TimePeriod: &cetypes.DateInterval{
				Start: aws.String(period.StartDate()),
				End:   aws.String(period.EndDate()),
			},
			Granularity:   cetypes.GranularityMonthly,
			Metrics:       []string{metric},
			Filter:        filter,
			NextPageToken: nextToken,
		})
		if err != nil {
			return 0, fmt.Errorf("GetCostAndUsage: %w", err)
		}

		for _, result := range out.ResultsByTime {
			m, ok := result.Total[metric]
			if !ok {
				continue
			}
			total += parseCostFloat(m.Amount)
		}

		if out.NextPageToken == nil {
			break
		}
		nextToken = out.NextPageToken
	}
	return total, nil
}

// forecastRemaining returns the forecast for [period.Tomorrow, period.NextMonth).
func forecastRemaining(
	ctx context.Context,
	client spendCEClient,
	period monthPeriod,
	metric cetypes.Metric,
	filter *cetypes.Expression,
) (float64, error) {
	out, err := client.GetCostForecast(ctx, &ce.GetCostForecastInput{
		TimePeriod: &cetypes.DateInterval{
			Start: aws.String(period.Tomorrow.Format(dateLayout)),
			End:   aws.String(period.NextMonth.Format(dateLayout)),
		},
		Granularity: cetypes.GranularityMonthly,
		Metric:      metric,
		Filter:      filter,
	})
	if err != nil {
		return 0, fmt.Errorf("GetCostForecast: %w", err)
	}
	if out.Total == nil {
		return 0, fmt.Errorf("GetCostForecast returned no total")
	}
	return parseCostFloat(out.Total.Amount), nil
}

// recordTypeFilter builds a Cost Explorer filter excluding the record types
// whose include flag is false. Only flags with a direct RECORD_TYPE value are
// mapped; discount and subscription flags have no single equivalent and are
// left to the budget module. Returns nil when nothing is excluded.
func recordTypeFilter(ct models.CostTypes) *cetypes.Expression {
	flags := []struct {
		include    bool
		recordType string
	}{
		{ct.IncludeCredit, "Credit"},
		{ct.IncludeRefund, "Refund"},
		{ct.IncludeTax, "Tax"},
		{ct.IncludeSupport, "Support"},
		{ct.IncludeUpfront, "Upfront"},
		{ct.IncludeRecurring, "Recurring"},
	}

	var excluded []string
	for _, f := range flags {
		if !f.include {
			excluded = append(excluded, f.recordType)
		}
	}
	if len(excluded) == 0 {
		return nil
	}
	return &cetypes.Expression{
		Not: &cetypes.Expression{
			Dimensions: &cetypes.DimensionValues{
				Key:    cetypes.DimensionRecordType,
				Values: excluded,
			},
		},
	}
}

// parseCostFloat parses a Cost Explorer amount string. Nil or malformed
// values count as zero.
func parseCostFloat(s *string) float64 {
	if s == nil {
		return 0
	}
	v, _ := strconv.ParseFloat(*s, 64)
	return v
}
