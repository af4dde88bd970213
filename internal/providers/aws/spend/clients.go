package spend

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	ce "github.com/aws/aws-sdk-go-v2/service/costexplorer"
)

// ---------------------------------------------------------------------------
// Narrow client interfaces
//
// Each interface lists only the SDK operations used by this package.
// The real *costexplorer.Client and *cloudwatch.Client satisfy them.
// ---------------------------------------------------------------------------

// spendCEClient covers the Cost Explorer operations used for spend and
// forecast queries. Cost Explorer is a global service; always use us-east-1.
type spendCEClient interface {
	GetCostAndUsage(
		ctx context.Context,
		params *ce.GetCostAndUsageInput,
		optFns ...func(*ce.Options),
	) (*ce.GetCostAndUsageOutput, error)

	GetCostForecast(
		ctx context.Context,
		params *ce.GetCostForecastInput,
		optFns ...func(*ce.Options),
	) (*ce.GetCostForecastOutput, error)
}

// spendCWClient covers the CloudWatch operations used to read the
// AWS/Billing EstimatedCharges metric, which is published in us-east-1 only.
type spendCWClient interface {
	GetMetricStatistics(
		ctx context.Context,
		params *cloudwatch.GetMetricStatisticsInput,
		optFns ...func(*cloudwatch.Options),
	) (*cloudwatch.GetMetricStatisticsOutput, error)
}

// spendClients holds the clients needed for one collection run.
type spendClients struct {
	CE spendCEClient
	CW spendCWClient
}

// spendClientFactory creates spendClients from an aws.Config.
type spendClientFactory func(cfg aws.Config) *spendClients

// newDefaultSpendClients is the production spendClientFactory. Both clients
// are pinned to us-east-1 where billing data lives.
func newDefaultSpendClients(cfg aws.Config) *spendClients {
	billingCfg := cfg
	billingCfg.Region = "us-east-1"
	return &spendClients{
		CE: ce.NewFromConfig(billingCfg),
		CW: cloudwatch.NewFromConfig(billingCfg),
	}
}
