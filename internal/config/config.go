// Package config loads the optional dpb configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// PathEnvVar overrides the configuration file location.
const PathEnvVar = "DPB_CONFIG"

// Config is the top-level application configuration.
// It is loaded from ~/.config/deploy-bootstrap/config.yaml. Every field is
// optional; a missing file yields the zero Config.
type Config struct {
	AWS     AWSConfig     `yaml:"aws"     json:"aws"`
	Budget  BudgetConfig  `yaml:"budget"  json:"budget"`
	Targets TargetsConfig `yaml:"targets" json:"targets"`
}

// AWSConfig holds AWS-specific defaults used when flags are not provided.
type AWSConfig struct {
	// DefaultRegion is used when no region flag or profile region is set.
	DefaultRegion string `yaml:"default_region" json:"default_region"`

	// DefaultProfile is used when no --profile flag is provided.
	DefaultProfile string `yaml:"default_profile" json:"default_profile"`
}

// BudgetConfig points at the budget declaration used by dpb budget commands.
type BudgetConfig struct {
	// File is the budget declaration path. Empty selects the embedded one.
	File string `yaml:"file" json:"file"`

	// Source is the default spend source: "costexplorer" or "cloudwatch".
	Source string `yaml:"source" json:"source"`
}

// TargetsConfig allows replacing the embedded repository table.
type TargetsConfig struct {
	// File is a targets table with the same schema as the embedded one.
	File string `yaml:"file" json:"file"`
}

// Loader is the interface for reading Config from disk.
type Loader interface {
	// Load reads and parses the configuration file.
	Load() (*Config, error)

	// ConfigPath returns the absolute path to the configuration file.
	ConfigPath() string
}

// FileLoader is the default Loader.
type FileLoader struct {
	path string
}

// NewFileLoader returns a loader for path. An empty path selects $DPB_CONFIG,
// then ~/.config/deploy-bootstrap/config.yaml.
func NewFileLoader(path string) *FileLoader {
	if path == "" {
		path = os.Getenv(PathEnvVar)
	}
	if path == "" {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, ".config", "deploy-bootstrap", "config.yaml")
		}
	}
	return &FileLoader{path: path}
}

// ConfigPath implements Loader.
func (l *FileLoader) ConfigPath() string {
	return l.path
}

// Load implements Loader. A missing file is not an error.
func (l *FileLoader) Load() (*Config, error) {
	cfg := &Config{}
	if l.path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %q: %w", l.path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %q: %w", l.path, err)
	}
	return cfg, nil
}
