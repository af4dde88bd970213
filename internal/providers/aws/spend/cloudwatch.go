package spend

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/pankaj-dahiya-devops/deploy-bootstrap/internal/models"
)

// collectFromCloudWatch reads the maximum AWS/Billing EstimatedCharges value
// recorded since the start of the month. The metric is cumulative and resets
// monthly, so the maximum is the month-to-date charge.
func collectFromCloudWatch(ctx context.Context, cw spendCWClient, period monthPeriod) (*models.SpendSnapshot, error) {
	out, err := cw.GetMetricStatistics(ctx, &cloudwatch.GetMetricStatisticsInput{
		Namespace:  aws.String("AWS/Billing"),
		MetricName: aws.String("EstimatedCharges"),
		Dimensions: []cwtypes.Dimension{
			{
				Name:  aws.String("Currency"),
				Value: aws.String("USD"),
			},
		},
		StartTime:  aws.Time(period.Start),
		EndTime:    aws.Time(period.Now),
		Period:     aws.Int32(21600), // billing metrics are published every ~6h
		Statistics: []cwtypes.Statistic{cwtypes.StatisticMaximum},
	})
	if err != nil {
		return nil, fmt.Errorf("GetMetricStatistics (EstimatedCharges): %w", err)
	}
	if len(out.Datapoints) == 0 {
		return nil, fmt.Errorf("no EstimatedCharges datapoints since %s; are billing alerts enabled?", period.StartDate())
	}

	var peak float64
	for _, dp := range out.Datapoints {
		if dp.Maximum != nil && *dp.Maximum > peak {
			peak = *dp.Maximum
		}
	}

	return &models.SpendSnapshot{
		Source:      string(SourceCloudWatch),
		PeriodStart: period.StartDate(),
		PeriodEnd:   period.EndDate(),
		ActualUSD:   peak,
	}, nil
}
