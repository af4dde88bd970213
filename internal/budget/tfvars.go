package budget

import (
	"encoding/json"
	"fmt"
	"os"
)

// RenderTFVars serialises cfg as a Terraform JSON variable file
// (terraform.tfvars.json) for the external budget module. Keys are emitted in
// a fixed order and tags are sorted, so the output is stable across runs.
func RenderTFVars(cfg *Config) ([]byte, error) {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal budget variables: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteTFVars renders cfg and writes it to path, creating or overwriting the
// file.
func WriteTFVars(path string, cfg *Config) error {
	data, err := RenderTFVars(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write variables file %q: %w", path, err)
	}
	return nil
}
