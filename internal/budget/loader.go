package budget

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed budget.yaml
var defaultDeclaration []byte

// Default returns the budget declaration shipped with the repository.
func Default() (*Config, error) {
	return Parse(defaultDeclaration)
}

// Load reads a budget declaration from path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("budget file %q: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a YAML budget declaration. Cost-type flags absent from the
// document keep the values from DefaultCostTypes.
func Parse(data []byte) (*Config, error) {
	cfg := Config{CostTypes: DefaultCostTypes()}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if cfg.Version != 1 {
		return nil, errors.New("unsupported budget version")
	}

	if cfg.Tags == nil {
		cfg.Tags = make(map[string]string)
	}

	return &cfg, nil
}
