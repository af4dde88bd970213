// Package targets holds the table of known application repositories and the
// deployment target each one resolves to.
package targets

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/pankaj-dahiya-devops/deploy-bootstrap/internal/models"
)

var (
	// ErrEmptyName is returned by Lookup when called with an empty name.
	ErrEmptyName = errors.New("repository name is empty")

	// ErrUnknownRepository is returned by Lookup when the name is not in the
	// table. The CLI treats it as fatal: deploying to a guessed target is unsafe.
	ErrUnknownRepository = errors.New("unknown repository")
)

//go:embed targets.yaml
var defaultTable []byte

// tableFile is the on-disk schema of a targets table.
type tableFile struct {
	Version int                                `yaml:"version"`
	Targets map[string]models.DeploymentTarget `yaml:"targets"`
}

// Registry is an immutable name → DeploymentTarget lookup table.
// It is built once at startup and safe for concurrent reads.
type Registry struct {
	targets map[string]models.DeploymentTarget
}

// Default returns the registry built from the embedded table.
func Default() (*Registry, error) {
	return Parse(defaultTable)
}

// Load reads a targets table from path. The file uses the same schema as the
// embedded table and replaces it entirely.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read targets file %q: %w", path, err)
	}
	r, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("targets file %q: %w", path, err)
	}
	return r, nil
}

// Parse decodes a YAML targets table and validates every entry.
// Duplicate repository keys are rejected by the YAML decoder.
func Parse(data []byte) (*Registry, error) {
	var tf tableFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("parse targets table: %w", err)
	}
	if tf.Version != 1 {
		return nil, fmt.Errorf("unsupported targets table version %d", tf.Version)
	}
	return New(tf.Targets)
}

// New builds a Registry from targets after validating each entry. The map is
// copied; later changes to targets do not affect the registry.
func New(targets map[string]models.DeploymentTarget) (*Registry, error) {
	if len(targets) == 0 {
		return nil, errors.New("targets table is empty")
	}

	var errs []error
	copied := make(map[string]models.DeploymentTarget, len(targets))
	for name, t := range targets {
		if err := validateTarget(name, t); err != nil {
			errs = append(errs, err)
			continue
		}
		copied[name] = t
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return &Registry{targets: copied}, nil
}

// Lookup returns the target registered for name. Matching is exact.
func (r *Registry) Lookup(name string) (models.DeploymentTarget, error) {
	if name == "" {
		return models.DeploymentTarget{}, ErrEmptyName
	}
	t, ok := r.targets[name]
	if !ok {
		return models.DeploymentTarget{}, fmt.Errorf("%w: %q", ErrUnknownRepository, name)
	}
	return t, nil
}

// Names returns every known repository name in lexical order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.targets))
	for name := range r.targets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of known repositories.
func (r *Registry) Len() int {
	return len(r.targets)
}

// validateTarget checks that every field is populated and that the N/A
// sentinel is used all-or-nothing.
func validateTarget(name string, t models.DeploymentTarget) error {
	if name == "" {
		return errors.New("targets: empty repository name")
	}
	fields := []struct {
		key, val string
	}{
		{"app_name", t.AppName},
		{"registry", t.Registry},
		{"cluster", t.Cluster},
		{"service", t.Service},
	}
	for _, f := range fields {
		if f.val == "" {
			return fmt.Errorf("targets.%s.%s: must not be empty", name, f.key)
		}
	}
	if t.AppName == models.NotApplicable {
		return fmt.Errorf("targets.%s.app_name: %s is not allowed", name, models.NotApplicable)
	}

	na := 0
	for _, f := range fields[1:] {
		if f.val == models.NotApplicable {
			na++
		}
	}
	if na != 0 && na != 3 {
		return fmt.Errorf("targets.%s: registry, cluster and service must all be %s or none of them", name, models.NotApplicable)
	}
	return nil
}
