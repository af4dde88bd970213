package engine

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/pankaj-dahiya-devops/deploy-bootstrap/internal/budget"
	"github.com/pankaj-dahiya-devops/deploy-bootstrap/internal/models"
	"github.com/pankaj-dahiya-devops/deploy-bootstrap/internal/providers/aws/common"
	"github.com/pankaj-dahiya-devops/deploy-bootstrap/internal/providers/aws/spend"
)

// BudgetOptions configures a single budget status run.
type BudgetOptions struct {
	// Profile is the named AWS profile to use. Empty means the default profile.
	Profile string

	// Source selects where spend figures come from.
	Source spend.Source
}

// BudgetEngine evaluates a budget declaration against live spend.
// It never calls the AWS SDK directly.
type BudgetEngine struct {
	provider  common.AWSClientProvider
	collector spend.SpendCollector
	logger    *zap.Logger
}

// NewBudgetEngine constructs a BudgetEngine.
func NewBudgetEngine(provider common.AWSClientProvider, collector spend.SpendCollector, logger *zap.Logger) *BudgetEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BudgetEngine{provider: provider, collector: collector, logger: logger}
}

// Status loads the profile, collects spend with the metric implied by the
// declaration's accounting flags, and evaluates every alert rule.
func (e *BudgetEngine) Status(ctx context.Context, cfg *budget.Config, opts BudgetOptions) (*models.BudgetReport, error) {
	if errs := budget.Validate(cfg); len(errs) > 0 {
		return nil, fmt.Errorf("invalid budget declaration: %w", errors.Join(errs...))
	}

	profile, err := e.provider.LoadProfile(ctx, opts.Profile)
	if err != nil {
		return nil, fmt.Errorf("load profile %q: %w", opts.Profile, err)
	}

	snap, err := e.collector.CollectSpend(ctx, profile, spend.Options{
		Source:    opts.Source,
		Metric:    budget.MetricFor(cfg.CostTypes),
		CostTypes: cfg.CostTypes,
	})
	if err != nil {
		return nil, fmt.Errorf("collect spend for profile %q: %w", profile.ProfileName, err)
	}

	evals := budget.Evaluate(cfg, *snap)
	e.logger.Debug("evaluated budget",
		zap.String("budget", cfg.Name),
		zap.Float64("actual_usd", snap.ActualUSD),
		zap.Int("triggered", budget.CountTriggered(evals)),
	)

	return &models.BudgetReport{
		Name:        cfg.Name,
		AccountID:   profile.AccountID,
		Profile:     profile.ProfileName,
		LimitUSD:    cfg.MonthlyBudgetLimit,
		Spend:       *snap,
		Evaluations: evals,
	}, nil
}
