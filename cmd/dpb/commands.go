package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pankaj-dahiya-devops/deploy-bootstrap/internal/budget"
	"github.com/pankaj-dahiya-devops/deploy-bootstrap/internal/config"
	"github.com/pankaj-dahiya-devops/deploy-bootstrap/internal/engine"
	"github.com/pankaj-dahiya-devops/deploy-bootstrap/internal/output"
	"github.com/pankaj-dahiya-devops/deploy-bootstrap/internal/providers/aws/common"
	"github.com/pankaj-dahiya-devops/deploy-bootstrap/internal/providers/aws/spend"
	"github.com/pankaj-dahiya-devops/deploy-bootstrap/internal/targets"
	"github.com/pankaj-dahiya-devops/deploy-bootstrap/internal/version"
)

// errSilentFailure makes main exit non-zero without printing; the command has
// already reported the problem.
var errSilentFailure = errors.New("silent failure")

// deps holds the process-level collaborators of the command tree. Tests
// replace individual fields.
type deps struct {
	getwd          func() (string, error)
	lookPath       func(string) (string, error)
	newLogger      func(verbose bool) (*zap.Logger, error)
	awsProvider    func(region string) common.AWSClientProvider
	spendCollector func(logger *zap.Logger) spend.SpendCollector
}

func defaultDeps() *deps {
	return &deps{
		getwd:    os.Getwd,
		lookPath: exec.LookPath,
		newLogger: func(verbose bool) (*zap.Logger, error) {
			cfg := zap.NewProductionConfig()
			if verbose {
				cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			return cfg.Build()
		},
		awsProvider: func(region string) common.AWSClientProvider {
			return common.NewDefaultAWSClientProvider(region)
		},
		spendCollector: func(logger *zap.Logger) spend.SpendCollector {
			return spend.NewDefaultSpendCollector(logger)
		},
	}
}

// app is the state shared by every command after PersistentPreRunE.
type app struct {
	deps   *deps
	logger *zap.Logger
	cfg    *config.Config

	verbose    bool
	configPath string
}

func newRootCmd() *cobra.Command {
	return newRootCmdWithDeps(defaultDeps())
}

func newRootCmdWithDeps(d *deps) *cobra.Command {
	a := &app{deps: d, logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "dpb",
		Short: "Bootstrap the deploy workflow into an application repository",
		Long: `dpb writes .github/workflows/deploy.yml into the current repository.

The repository is identified from $REPOSITORY (set by the bulk-execution
harness), then the git origin remote, then the directory name. Unknown
repositories are rejected and nothing is written.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := d.newLogger(a.verbose)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			a.logger = logger

			cfg, err := config.NewFileLoader(a.configPath).Load()
			if err != nil {
				return err
			}
			a.cfg = cfg
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBootstrap(cmd)
		},
	}

	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (default: $DPB_CONFIG or ~/.config/deploy-bootstrap/config.yaml)")

	root.AddCommand(newTargetsCmd(a))
	root.AddCommand(newResolveCmd(a))
	root.AddCommand(newBudgetCmd(a))
	root.AddCommand(newDoctorCmd(a))
	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), version.Info())
		},
	}
}

// ── bootstrap ────────────────────────────────────────────────────────────────

// registry returns the targets table: the configured override file when set,
// otherwise the embedded table.
func (a *app) registry() (*targets.Registry, error) {
	if a.cfg != nil && a.cfg.Targets.File != "" {
		return targets.Load(a.cfg.Targets.File)
	}
	return targets.Default()
}

func (a *app) bootstrapper() (*engine.Bootstrapper, string, error) {
	dir, err := a.deps.getwd()
	if err != nil {
		return nil, "", fmt.Errorf("get working directory: %w", err)
	}
	reg, err := a.registry()
	if err != nil {
		return nil, "", err
	}
	return engine.NewDefaultBootstrapper(dir, reg, a.logger), dir, nil
}

func (a *app) runBootstrap(cmd *cobra.Command) error {
	b, dir, err := a.bootstrapper()
	if err != nil {
		return err
	}
	res, err := b.Run(cmd.Context(), dir)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s for %s (cluster: %s, service: %s)\n",
		res.WorkflowPath, res.Target.AppName, res.Target.Cluster, res.Target.Service)
	return nil
}

func newResolveCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Show the repository identity and deployment target without writing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, _, err := a.bootstrapper()
			if err != nil {
				return err
			}
			res, err := b.Resolve(cmd.Context())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if format == string(engine.ReportFormatJSON) {
				return printJSON(w, res)
			}
			fmt.Fprintf(w, "Repository:  %s (from %s)\n", res.Identity.Repository, res.Identity.Provider)
			fmt.Fprintf(w, "App:         %s\n", res.Target.AppName)
			fmt.Fprintf(w, "Registry:    %s\n", res.Target.Registry)
			fmt.Fprintf(w, "Cluster:     %s\n", res.Target.Cluster)
			fmt.Fprintf(w, "Service:     %s\n", res.Target.Service)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "table", "Output format: json or table")
	return cmd
}

func newTargetsCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "targets",
		Short: "List known repositories and their deployment targets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.registry()
			if err != nil {
				return err
			}
			rows := make([]output.NamedTarget, 0, reg.Len())
			for _, name := range reg.Names() {
				t, _ := reg.Lookup(name)
				rows = append(rows, output.NamedTarget{Repository: name, Target: t})
			}

			if format == string(engine.ReportFormatJSON) {
				return printJSON(cmd.OutOrStdout(), rows)
			}
			output.RenderTargets(cmd.OutOrStdout(), rows)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "table", "Output format: json or table")
	return cmd
}

// ── budget ───────────────────────────────────────────────────────────────────

func newBudgetCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Validate, render and check the AWS budget declaration",
	}
	cmd.AddCommand(newBudgetValidateCmd(a))
	cmd.AddCommand(newBudgetTFVarsCmd(a))
	cmd.AddCommand(newBudgetStatusCmd(a))
	return cmd
}

// loadBudget reads the declaration from path, the configured file, or the
// embedded default, in that order. The returned label names the source.
func (a *app) loadBudget(path string) (*budget.Config, string, error) {
	if path == "" && a.cfg != nil {
		path = a.cfg.Budget.File
	}
	if path == "" {
		cfg, err := budget.Default()
		return cfg, "embedded", err
	}
	cfg, err := budget.Load(path)
	return cfg, path, err
}

func newBudgetValidateCmd(a *app) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a budget declaration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, source, err := a.loadBudget(file)
			if err != nil {
				return fmt.Errorf("load budget: %w", err)
			}
			w := cmd.OutOrStdout()
			errs := budget.Validate(cfg)
			if len(errs) == 0 {
				fmt.Fprintf(w, "Budget %q (%s) is valid: limit $%.2f, %d alert rule(s)\n",
					cfg.Name, source, cfg.MonthlyBudgetLimit, len(cfg.NotificationThresholds))
				return nil
			}
			for _, e := range errs {
				fmt.Fprintf(w, "  %v\n", e)
			}
			return fmt.Errorf("budget declaration %s is invalid: %d error(s)", source, len(errs))
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Budget declaration (default: config budget.file or the embedded declaration)")
	return cmd
}

func newBudgetTFVarsCmd(a *app) *cobra.Command {
	var (
		file string
		out  string
	)

	cmd := &cobra.Command{
		Use:   "tfvars",
		Short: "Render the budget declaration as terraform.tfvars.json",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, source, err := a.loadBudget(file)
			if err != nil {
				return fmt.Errorf("load budget: %w", err)
			}
			if errs := budget.Validate(cfg); len(errs) > 0 {
				return fmt.Errorf("budget declaration %s is invalid: %w", source, errors.Join(errs...))
			}

			if out != "" {
				if err := budget.WriteTFVars(out, cfg); err != nil {
					return err
				}
				a.logger.Info("wrote budget variables", zap.String("path", out))
				return nil
			}
			data, err := budget.RenderTFVars(cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Budget declaration (default: config budget.file or the embedded declaration)")
	cmd.Flags().StringVar(&out, "output", "", "Write variables to this file instead of stdout")
	return cmd
}

func newBudgetStatusCmd(a *app) *cobra.Command {
	var (
		file    string
		profile string
		region  string
		source  string
		format  string
		colored bool
		failOn  bool
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Evaluate the budget alert rules against month-to-date spend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := a.loadBudget(file)
			if err != nil {
				return fmt.Errorf("load budget: %w", err)
			}

			if profile == "" {
				profile = a.cfg.AWS.DefaultProfile
			}
			if region == "" {
				region = a.cfg.AWS.DefaultRegion
			}
			if source == "" {
				source = a.cfg.Budget.Source
			}
			if source == "" {
				source = string(spend.SourceCostExplorer)
			}
			src, err := spend.ParseSource(source)
			if err != nil {
				return err
			}

			eng := engine.NewBudgetEngine(a.deps.awsProvider(region), a.deps.spendCollector(a.logger), a.logger)
			report, err := eng.Status(cmd.Context(), cfg, engine.BudgetOptions{Profile: profile, Source: src})
			if err != nil {
				return fmt.Errorf("budget status failed: %w", err)
			}

			w := cmd.OutOrStdout()
			if format == string(engine.ReportFormatJSON) {
				if err := printJSON(w, report); err != nil {
					return err
				}
			} else {
				output.RenderBudgetReport(w, report, output.TableOptions{Colored: colored})
			}

			if failOn && budget.CountTriggered(report.Evaluations) > 0 {
				return errSilentFailure
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Budget declaration (default: config budget.file or the embedded declaration)")
	cmd.Flags().StringVar(&profile, "profile", "", "AWS profile name (default: config aws.default_profile or the credential chain)")
	cmd.Flags().StringVar(&region, "region", "", "AWS region for the profile (billing data is always read from us-east-1)")
	cmd.Flags().StringVar(&source, "source", "", "Spend source: costexplorer or cloudwatch (default: costexplorer)")
	cmd.Flags().StringVar(&format, "format", "table", "Output format: json or table")
	cmd.Flags().BoolVar(&colored, "color", false, "Colour rule states with ANSI codes")
	cmd.Flags().BoolVar(&failOn, "fail-on-triggered", false, "Exit 1 when any alert rule is triggered")
	return cmd
}

// printJSON writes v as indented JSON to w.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
