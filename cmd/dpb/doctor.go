package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pankaj-dahiya-devops/deploy-bootstrap/internal/budget"
	"github.com/pankaj-dahiya-devops/deploy-bootstrap/internal/engine"
	"github.com/pankaj-dahiya-devops/deploy-bootstrap/internal/identity"
	"github.com/pankaj-dahiya-devops/deploy-bootstrap/internal/providers/aws/common"
	"github.com/pankaj-dahiya-devops/deploy-bootstrap/internal/targets"
)

// DoctorResult is the structured output of dpb doctor. It can be serialised to
// JSON via --format=json or rendered as a human-readable table (default).
type DoctorResult struct {
	Identity struct {
		Repository string `json:"repository,omitempty"`
		Provider   string `json:"provider,omitempty"`
		Error      string `json:"error,omitempty"`
	} `json:"identity"`

	Target struct {
		Found         bool   `json:"found"`
		Entries       int    `json:"entries"`
		Cluster       string `json:"ecs_cluster,omitempty"`
		Service       string `json:"ecs_service,omitempty"`
		Containerized bool   `json:"containerized"`
		Error         string `json:"error,omitempty"`
	} `json:"target"`

	Git struct {
		Found bool   `json:"found"`
		Path  string `json:"path,omitempty"`
	} `json:"git"`

	AWS struct {
		Profile     string `json:"profile,omitempty"`
		Credentials bool   `json:"credentials_ok"`
		AccountID   string `json:"account_id,omitempty"`
		Error       string `json:"error,omitempty"`
	} `json:"aws"`

	Budget struct {
		Source string   `json:"source,omitempty"`
		Valid  bool     `json:"valid"`
		Errors []string `json:"errors,omitempty"`
	} `json:"budget"`

	OverallHealthy bool `json:"overall_healthy"`
}

// doctorEnv carries the collaborators the checks run against.
type doctorEnv struct {
	resolver    engine.Resolver
	registry    func() (*targets.Registry, error)
	lookPath    func(string) (string, error)
	awsProvider common.AWSClientProvider
	budget      func() (*budget.Config, string, error)
}

func newDoctorCmd(a *app) *cobra.Command {
	var (
		format  string
		profile string
		region  string
	)

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Run environment diagnostics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := a.deps.getwd()
			if err != nil {
				return fmt.Errorf("get working directory: %w", err)
			}
			if profile == "" {
				profile = a.cfg.AWS.DefaultProfile
			}
			if region == "" {
				region = a.cfg.AWS.DefaultRegion
			}

			env := doctorEnv{
				resolver:    identity.NewDefaultChain(a.logger, dir),
				registry:    a.registry,
				lookPath:    a.deps.lookPath,
				awsProvider: a.deps.awsProvider(region),
				budget:      func() (*budget.Config, string, error) { return a.loadBudget("") },
			}
			result, err := runDoctor(cmd.Context(), env, cmd.OutOrStdout(), format, profile)
			if err != nil {
				return err
			}
			if !result.OverallHealthy {
				return errSilentFailure
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "table", `Output format: "table" or "json"`)
	cmd.Flags().StringVar(&profile, "profile", "", "AWS profile to use (default: config aws.default_profile or the credential chain)")
	cmd.Flags().StringVar(&region, "region", "", "AWS region for the profile")
	return cmd
}

// runDoctor collects all diagnostic results, renders them to w in the
// requested format, and returns the result.
// The returned error covers only rendering failures. Callers inspect
// result.OverallHealthy to decide the exit status.
func runDoctor(ctx context.Context, env doctorEnv, w io.Writer, format, profile string) (DoctorResult, error) {
	result := collectDoctorResult(ctx, env, profile)

	switch format {
	case "json":
		if err := json.NewEncoder(w).Encode(result); err != nil {
			return result, fmt.Errorf("encode doctor result: %w", err)
		}
	default:
		renderDoctorTable(result, w)
	}

	return result, nil
}

// collectDoctorResult runs all environment checks and populates a DoctorResult.
// AWS and git are informational: the bootstrap itself needs neither.
func collectDoctorResult(ctx context.Context, env doctorEnv, profile string) DoctorResult {
	var result DoctorResult

	// Identity: chain → target table lookup.
	id, err := env.resolver.Resolve(ctx)
	if err != nil {
		result.Identity.Error = err.Error()
	} else {
		result.Identity.Repository = id.Repository
		result.Identity.Provider = id.Provider
	}

	reg, err := env.registry()
	if err != nil {
		result.Target.Error = err.Error()
	} else {
		result.Target.Entries = reg.Len()
		if result.Identity.Error == "" {
			t, err := reg.Lookup(id.Repository)
			if err != nil {
				result.Target.Error = err.Error()
			} else {
				result.Target.Found = true
				result.Target.Cluster = t.Cluster
				result.Target.Service = t.Service
				result.Target.Containerized = t.Containerized()
			}
		}
	}

	if path, err := env.lookPath("git"); err == nil {
		result.Git.Found = true
		result.Git.Path = path
	}

	// AWS: credentials → STS account ID.
	if profile != "" {
		result.AWS.Profile = profile
	}
	profileCfg, err := env.awsProvider.LoadProfile(ctx, profile)
	if err != nil {
		result.AWS.Error = err.Error()
	} else {
		result.AWS.Credentials = true
		result.AWS.AccountID = profileCfg.AccountID
	}

	cfg, source, err := env.budget()
	result.Budget.Source = source
	if err != nil {
		result.Budget.Errors = []string{err.Error()}
	} else if errs := budget.Validate(cfg); len(errs) > 0 {
		for _, e := range errs {
			result.Budget.Errors = append(result.Budget.Errors, e.Error())
		}
	} else {
		result.Budget.Valid = true
	}

	result.OverallHealthy = result.Identity.Error == "" &&
		result.Target.Found &&
		result.Budget.Valid

	return result
}

// renderDoctorTable writes the human-readable diagnostic output from result to w.
func renderDoctorTable(result DoctorResult, w io.Writer) {
	fmt.Fprintln(w, "Environment Diagnostics")

	fmt.Fprintln(w, "\nRepository:")
	if result.Identity.Error != "" {
		doctorPrint(w, "Identity", "FAIL", result.Identity.Error)
		doctorPrint(w, "Deployment target", "FAIL", "skipped")
	} else {
		doctorPrint(w, "Identity", "OK", result.Identity.Repository+" from "+result.Identity.Provider)
		switch {
		case !result.Target.Found:
			doctorPrint(w, "Deployment target", "FAIL", result.Target.Error)
		case result.Target.Containerized:
			doctorPrint(w, "Deployment target", "OK", result.Target.Cluster+"/"+result.Target.Service)
		default:
			doctorPrint(w, "Deployment target", "OK", "not containerized")
		}
	}
	if result.Git.Found {
		doctorPrint(w, "git", "OK", result.Git.Path)
	} else {
		doctorPrint(w, "git", "Not found (optional)", "")
	}

	if result.AWS.Profile != "" {
		fmt.Fprintf(w, "\nAWS (profile: %s):\n", result.AWS.Profile)
	} else {
		fmt.Fprintln(w, "\nAWS:")
	}
	if !result.AWS.Credentials {
		doctorPrint(w, "Credentials", "WARN", result.AWS.Error)
		doctorPrint(w, "STS Identity", "WARN", "skipped")
	} else {
		doctorPrint(w, "Credentials", "OK", "")
		doctorPrint(w, "STS Identity", "OK", "Account: "+result.AWS.AccountID)
	}

	fmt.Fprintln(w, "\nBudget:")
	doctorPrint(w, "Declaration", result.Budget.Source, "")
	if result.Budget.Valid {
		doctorPrint(w, "Budget valid", "OK", "")
	} else {
		for _, e := range result.Budget.Errors {
			doctorPrint(w, "Budget valid", "FAIL", e)
		}
	}
}

// doctorPrint writes a single diagnostic check line to w.
// When detail is non-empty it is appended in parentheses.
func doctorPrint(w io.Writer, label, status, detail string) {
	if detail != "" {
		fmt.Fprintf(w, "  %s: %s (%s)\n", label, status, detail)
	} else {
		fmt.Fprintf(w, "  %s: %s\n", label, status)
	}
}
